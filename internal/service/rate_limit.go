package service

import (
	"sort"
	"time"

	"github.com/sportline-next/internal/config"
)

// Window 滑动窗口：窗口时长内最多允许 MaxAttempts 次尝试
type Window struct {
	Duration    time.Duration
	MaxAttempts int
}

// Policy 限流策略，由若干滑动窗口组成
type Policy struct {
	Windows []Window
}

// LongestWindow 返回策略中最长的窗口时长
func (p Policy) LongestWindow() time.Duration {
	var longest time.Duration
	for _, window := range p.Windows {
		if window.Duration > longest {
			longest = window.Duration
		}
	}
	return longest
}

// NextAvailableAt 计算下一次允许尝试的时间
// attempts 为窗口内历史尝试时间，顺序不限；返回零值表示当前即可尝试。
// 窗口按时长从长到短逐个检查，命中第一个已满的窗口即返回，
// 该窗口内第 N 新一次尝试加上窗口时长就是解除时间（N 为窗口允许的次数）。
func NextAvailableAt(now time.Time, attempts []time.Time, policy Policy) time.Time {
	if len(policy.Windows) == 0 || len(attempts) == 0 {
		return time.Time{}
	}

	// 新到旧排序，方便取第 N 新
	sorted := make([]time.Time, len(attempts))
	copy(sorted, attempts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	windows := make([]Window, len(policy.Windows))
	copy(windows, policy.Windows)
	sort.Slice(windows, func(i, j int) bool { return windows[i].Duration > windows[j].Duration })

	for _, window := range windows {
		if window.MaxAttempts <= 0 {
			continue
		}
		// 严格晚于窗口起点才计数，使解除时间恰好可用
		windowStart := now.Add(-window.Duration)
		count := 0
		for _, at := range sorted {
			if at.After(windowStart) {
				count++
			}
		}
		if count >= window.MaxAttempts {
			nth := sorted[window.MaxAttempts-1]
			return nth.Add(window.Duration)
		}
	}
	return time.Time{}
}

// PolicyFromConfig 由配置构建策略，配置为空时使用给定默认值
func PolicyFromConfig(windows []config.WindowConfig, fallback Policy) Policy {
	if len(windows) == 0 {
		return fallback
	}
	policy := Policy{Windows: make([]Window, 0, len(windows))}
	for _, window := range windows {
		if window.WindowMinutes <= 0 || window.MaxAttempts <= 0 {
			continue
		}
		policy.Windows = append(policy.Windows, Window{
			Duration:    time.Duration(window.WindowMinutes) * time.Minute,
			MaxAttempts: window.MaxAttempts,
		})
	}
	if len(policy.Windows) == 0 {
		return fallback
	}
	return policy
}

// 原始策略默认值
var (
	defaultEmailSendPolicy = Policy{Windows: []Window{
		{Duration: 24 * time.Hour, MaxAttempts: 10},
		{Duration: 5 * time.Minute, MaxAttempts: 5},
	}}
	defaultEmailPresentPolicy = Policy{Windows: []Window{
		{Duration: 5 * time.Minute, MaxAttempts: 5},
	}}
	defaultPhoneSendPolicy = Policy{Windows: []Window{
		{Duration: 24 * time.Hour, MaxAttempts: 10},
		{Duration: 3 * time.Minute, MaxAttempts: 1},
	}}
	defaultPhonePresentPolicy = Policy{Windows: []Window{
		{Duration: 3 * time.Minute, MaxAttempts: 5},
	}}
)
