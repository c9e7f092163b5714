package service

import (
	"testing"
	"time"

	"github.com/sportline-next/internal/config"
)

func TestNextAvailableAtAllowsWhenWindowsUnsaturated(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := Policy{Windows: []Window{
		{Duration: 24 * time.Hour, MaxAttempts: 10},
		{Duration: 5 * time.Minute, MaxAttempts: 5},
	}}

	attempts := []time.Time{
		now.Add(-time.Minute),
		now.Add(-2 * time.Minute),
		now.Add(-3 * time.Minute),
		now.Add(-4 * time.Minute),
	}
	if retryAt := NextAvailableAt(now, attempts, policy); !retryAt.IsZero() {
		t.Fatalf("expected zero retry time, got %v", retryAt)
	}
}

func TestNextAvailableAtNoAttempts(t *testing.T) {
	now := time.Now()
	policy := defaultEmailSendPolicy
	if retryAt := NextAvailableAt(now, nil, policy); !retryAt.IsZero() {
		t.Fatalf("expected zero retry time for empty history, got %v", retryAt)
	}
}

func TestNextAvailableAtShortWindowRetryInstant(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := Policy{Windows: []Window{
		{Duration: 24 * time.Hour, MaxAttempts: 10},
		{Duration: 5 * time.Minute, MaxAttempts: 5},
	}}

	// 5 分钟内 5 次：第 5 新一次尝试加 5 分钟后解除
	attempts := []time.Time{
		now.Add(-30 * time.Second),
		now.Add(-60 * time.Second),
		now.Add(-90 * time.Second),
		now.Add(-120 * time.Second),
		now.Add(-150 * time.Second),
	}
	retryAt := NextAvailableAt(now, attempts, policy)
	want := now.Add(-150 * time.Second).Add(5 * time.Minute)
	if !retryAt.Equal(want) {
		t.Fatalf("expected retry at %v, got %v", want, retryAt)
	}
}

func TestNextAvailableAtNineSendsScenario(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := Policy{Windows: []Window{
		{Duration: 24 * time.Hour, MaxAttempts: 10},
		{Duration: 5 * time.Minute, MaxAttempts: 5},
	}}

	// 5 分钟内 9 次尝试，30 秒间隔；解除时间应为第 5 新一次尝试加 5 分钟
	attempts := make([]time.Time, 0, 9)
	for i := 1; i <= 9; i++ {
		attempts = append(attempts, now.Add(-time.Duration(i*30)*time.Second))
	}
	retryAt := NextAvailableAt(now, attempts, policy)
	want := now.Add(-150 * time.Second).Add(5 * time.Minute)
	if !retryAt.Equal(want) {
		t.Fatalf("expected retry at %v, got %v", want, retryAt)
	}
}

func TestNextAvailableAtLongestWindowCheckedFirst(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := Policy{Windows: []Window{
		{Duration: 5 * time.Minute, MaxAttempts: 5},
		{Duration: 24 * time.Hour, MaxAttempts: 10},
	}}

	// 两个窗口同时超限：长窗口先判，解除时间按长窗口计算
	attempts := make([]time.Time, 0, 12)
	for i := 1; i <= 12; i++ {
		attempts = append(attempts, now.Add(-time.Duration(i)*time.Second))
	}
	retryAt := NextAvailableAt(now, attempts, policy)
	want := now.Add(-10 * time.Second).Add(24 * time.Hour)
	if !retryAt.Equal(want) {
		t.Fatalf("expected the long window to govern with retry at %v, got %v", want, retryAt)
	}
}

func TestNextAvailableAtAttemptOrderIrrelevant(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := Policy{Windows: []Window{{Duration: 5 * time.Minute, MaxAttempts: 2}}}

	ordered := []time.Time{now.Add(-time.Minute), now.Add(-2 * time.Minute)}
	shuffled := []time.Time{now.Add(-2 * time.Minute), now.Add(-time.Minute)}

	a := NextAvailableAt(now, ordered, policy)
	b := NextAvailableAt(now, shuffled, policy)
	if !a.Equal(b) {
		t.Fatalf("expected identical result regardless of input order, got %v and %v", a, b)
	}
	want := now.Add(-2 * time.Minute).Add(5 * time.Minute)
	if !a.Equal(want) {
		t.Fatalf("expected retry at %v, got %v", want, a)
	}
}

func TestNextAvailableAtOldAttemptsOutsideWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := Policy{Windows: []Window{{Duration: 5 * time.Minute, MaxAttempts: 2}}}

	attempts := []time.Time{
		now.Add(-6 * time.Minute),
		now.Add(-7 * time.Minute),
		now.Add(-time.Minute),
	}
	if retryAt := NextAvailableAt(now, attempts, policy); !retryAt.IsZero() {
		t.Fatalf("attempts outside the window must not count, got %v", retryAt)
	}
}

func TestPolicyFromConfig(t *testing.T) {
	policy := PolicyFromConfig([]config.WindowConfig{
		{WindowMinutes: 60, MaxAttempts: 3},
		{WindowMinutes: 0, MaxAttempts: 5},
	}, defaultEmailSendPolicy)
	if len(policy.Windows) != 1 {
		t.Fatalf("expected invalid windows skipped, got %d windows", len(policy.Windows))
	}
	if policy.Windows[0].Duration != time.Hour || policy.Windows[0].MaxAttempts != 3 {
		t.Fatalf("unexpected window %+v", policy.Windows[0])
	}

	fallback := PolicyFromConfig(nil, defaultEmailSendPolicy)
	if len(fallback.Windows) != len(defaultEmailSendPolicy.Windows) {
		t.Fatalf("expected fallback to defaults, got %+v", fallback)
	}
}
