package main

import (
	"github.com/sportline-next/internal/config"
	"github.com/sportline-next/internal/constants"
	"github.com/sportline-next/internal/logger"
	"github.com/sportline-next/internal/models"
	"github.com/sportline-next/internal/service"
)

func main() {
	// 连接数据库
	cfg, err := config.Load()
	if err != nil {
		logger.StdLogger().Fatalf("配置加载失败: %v", err)
	}
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	db, err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.MaxOpenConns,
		MaxIdleConns:           cfg.Database.MaxIdleConns,
		ConnMaxLifetimeMinutes: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(db); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 演示账号
	demoUsers := []struct {
		Email       string
		Password    string
		DisplayName string
		Status      string
	}{
		{Email: "demo@sportline.dev", Password: "demo-pass-123", DisplayName: "Demo", Status: constants.UserStatusActive},
		{Email: "coach@sportline.dev", Password: "coach-pass-123", DisplayName: "Coach", Status: constants.UserStatusActive},
		{Email: "banned@sportline.dev", Password: "banned-pass-123", DisplayName: "Banned", Status: constants.UserStatusDisabled},
	}

	for _, seed := range demoUsers {
		var existing models.User
		if err := db.Where("email = ?", seed.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", seed.Email)
			continue
		}

		hash, err := service.HashPassword(seed.Password)
		if err != nil {
			stdLog.Printf("Failed to hash password for %s: %v", seed.Email, err)
			continue
		}
		user := models.User{
			Email:        seed.Email,
			PasswordHash: hash,
			DisplayName:  seed.DisplayName,
			Status:       seed.Status,
		}
		if err := db.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", seed.Email, err)
		} else {
			stdLog.Printf("Created user: %s", seed.Email)
		}
	}

	stdLog.Println("Seed completed")
}
