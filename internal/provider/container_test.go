package provider

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sportline-next/internal/config"
	"github.com/sportline-next/internal/models"
)

func TestNewContainerWiresInjectedDB(t *testing.T) {
	dsn := fmt.Sprintf("file:container_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	cfg := &config.Config{}
	c := NewContainer(cfg, db)

	if c.DB != db {
		t.Fatalf("container should hold the injected db handle")
	}
	if c.UserRepo == nil || c.AttemptRepo == nil || c.EmailTokenRepo == nil || c.PhoneCodeRepo == nil {
		t.Fatalf("repositories should be initialized")
	}
	if c.AuthService == nil || c.VerificationService == nil {
		t.Fatalf("services should be initialized")
	}
	if c.SessionStore == nil {
		t.Fatalf("session store should be initialized")
	}
	if c.QueueClient != nil {
		t.Fatalf("queue client should stay nil while the queue is disabled")
	}

	// 仓库确实绑定到注入的连接
	user := &models.User{Email: "wired@example.com", PasswordHash: "x", Status: "active"}
	if err := c.UserRepo.Create(user); err != nil {
		t.Fatalf("create user through container repo: %v", err)
	}
	stored, err := c.UserRepo.GetByEmail("wired@example.com")
	if err != nil || stored == nil {
		t.Fatalf("user should be readable through the injected db, err=%v", err)
	}
}
