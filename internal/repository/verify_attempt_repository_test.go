package repository

import (
	"testing"
	"time"

	"github.com/sportline-next/internal/constants"
	"github.com/sportline-next/internal/models"
)

func TestListEmailSinceIncludesBoundary(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVerifyAttemptRepository(db)

	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recordAttemptAt(t, db, models.VerifyAttempt{
		Kind:  constants.AttemptKindEmailSend,
		Email: "a@example.com",
	}, since.Add(-time.Second))
	recordAttemptAt(t, db, models.VerifyAttempt{
		Kind:  constants.AttemptKindEmailSend,
		Email: "a@example.com",
	}, since)
	recordAttemptAt(t, db, models.VerifyAttempt{
		Kind:  constants.AttemptKindEmailSend,
		Email: "a@example.com",
	}, since.Add(time.Minute))

	times, err := repo.ListEmailSince("a@example.com", constants.AttemptKindEmailSend, since)
	if err != nil {
		t.Fatalf("ListEmailSince: %v", err)
	}
	if len(times) != 2 {
		t.Fatalf("expected 2 attempts at or after since, got %d", len(times))
	}
	if !times[0].After(times[1]) {
		t.Fatalf("expected attempts in descending order, got %v then %v", times[0], times[1])
	}
}

func TestListEmailSinceFiltersKindAndSubject(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVerifyAttemptRepository(db)

	now := time.Now()
	recordAttemptAt(t, db, models.VerifyAttempt{
		Kind:  constants.AttemptKindEmailSend,
		Email: "a@example.com",
	}, now)
	recordAttemptAt(t, db, models.VerifyAttempt{
		Kind:  constants.AttemptKindEmailPresent,
		Email: "a@example.com",
	}, now)
	recordAttemptAt(t, db, models.VerifyAttempt{
		Kind:  constants.AttemptKindEmailSend,
		Email: "b@example.com",
	}, now)

	times, err := repo.ListEmailSince("a@example.com", constants.AttemptKindEmailSend, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListEmailSince: %v", err)
	}
	if len(times) != 1 {
		t.Fatalf("expected 1 attempt for subject+kind, got %d", len(times))
	}
}

func TestListPhoneSinceCountsSamePhoneOnOtherAccount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVerifyAttemptRepository(db)

	now := time.Now()
	userA, userB := uint(1), uint(2)
	recordAttemptAt(t, db, models.VerifyAttempt{
		Kind:   constants.AttemptKindPhoneSend,
		UserID: &userA,
		Phone:  "13800000001",
	}, now)
	recordAttemptAt(t, db, models.VerifyAttempt{
		Kind:   constants.AttemptKindPhoneSend,
		UserID: &userB,
		Phone:  "13800000001",
	}, now)
	recordAttemptAt(t, db, models.VerifyAttempt{
		Kind:   constants.AttemptKindPhoneSend,
		UserID: &userB,
		Phone:  "13800000002",
	}, now)

	times, err := repo.ListPhoneSince(userA, "13800000001", constants.AttemptKindPhoneSend, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListPhoneSince: %v", err)
	}
	if len(times) != 2 {
		t.Fatalf("expected attempts from user A plus user B on the same phone, got %d", len(times))
	}
}

func TestListPhoneSinceEmptyPhoneDoesNotMatchEverything(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVerifyAttemptRepository(db)

	now := time.Now()
	userA, userB := uint(1), uint(2)
	recordAttemptAt(t, db, models.VerifyAttempt{
		Kind:   constants.AttemptKindPhoneSend,
		UserID: &userB,
		Phone:  "",
	}, now)

	times, err := repo.ListPhoneSince(userA, "", constants.AttemptKindPhoneSend, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListPhoneSince: %v", err)
	}
	if len(times) != 0 {
		t.Fatalf("empty phone must not match other users' rows, got %d", len(times))
	}
}
