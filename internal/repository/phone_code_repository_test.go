package repository

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sportline-next/internal/models"
)

func TestPhoneCodeReplaceCarriesPendingPhone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPhoneCodeRepository(db)

	if err := repo.Replace(&models.PhoneVerifyCode{UserID: 7, Phone: "13800000001", Code: "111111"}); err != nil {
		t.Fatalf("first Replace: %v", err)
	}
	if err := repo.MarkUsed(7, time.Now()); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	if err := repo.Replace(&models.PhoneVerifyCode{UserID: 7, Phone: "13800000002", Code: "222222"}); err != nil {
		t.Fatalf("second Replace: %v", err)
	}

	record, err := repo.Get(7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record after Replace")
	}
	if record.Phone != "13800000002" || record.Code != "222222" {
		t.Fatalf("expected replaced pending phone and code, got %+v", record)
	}
	if record.UsedAt != nil {
		t.Fatal("Replace must reset used_at")
	}

	var count int64
	if err := db.Model(&models.PhoneVerifyCode{}).Where("user_id = ?", 7).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single live row, got %d", count)
	}
}

func TestPhoneCodeMarkUsedMissingReturnsNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPhoneCodeRepository(db)

	err := repo.MarkUsed(42, time.Now())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}
