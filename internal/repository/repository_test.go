package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sportline-next/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.VerifyAttempt{},
		&models.EmailVerifyToken{},
		&models.PhoneVerifyCode{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func recordAttemptAt(t *testing.T, db *gorm.DB, attempt models.VerifyAttempt, at time.Time) {
	t.Helper()
	if err := db.Create(&attempt).Error; err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	if err := db.Model(&models.VerifyAttempt{}).
		Where("id = ?", attempt.ID).
		Update("created_at", at).Error; err != nil {
		t.Fatalf("backdate attempt: %v", err)
	}
}
