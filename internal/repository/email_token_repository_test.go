package repository

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sportline-next/internal/models"
)

func TestEmailTokenReplaceKeepsSingleRowAndResetsUsedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmailTokenRepository(db)

	first := &models.EmailVerifyToken{Email: "a@example.com", Token: "token-1"}
	if err := repo.Replace(first); err != nil {
		t.Fatalf("first Replace: %v", err)
	}
	if err := repo.MarkUsed("a@example.com", time.Now()); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}

	second := &models.EmailVerifyToken{Email: "a@example.com", Token: "token-2"}
	if err := repo.Replace(second); err != nil {
		t.Fatalf("second Replace: %v", err)
	}

	var count int64
	if err := db.Model(&models.EmailVerifyToken{}).
		Where("email = ?", "a@example.com").
		Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single live row, got %d", count)
	}

	record, err := repo.Get("a@example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record after Replace")
	}
	if record.Token != "token-2" {
		t.Fatalf("expected replaced token, got %q", record.Token)
	}
	if record.UsedAt != nil {
		t.Fatal("Replace must reset used_at")
	}
}

func TestEmailTokenGetMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmailTokenRepository(db)

	record, err := repo.Get("missing@example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil for missing email, got %+v", record)
	}
}

func TestEmailTokenMarkUsedMissingReturnsNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmailTokenRepository(db)

	err := repo.MarkUsed("missing@example.com", time.Now())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}
