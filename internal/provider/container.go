package provider

import (
	"gorm.io/gorm"

	"github.com/sportline-next/internal/cache"
	"github.com/sportline-next/internal/config"
	"github.com/sportline-next/internal/logger"
	"github.com/sportline-next/internal/queue"
	"github.com/sportline-next/internal/repository"
	"github.com/sportline-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config       *config.Config
	DB           *gorm.DB
	QueueClient  *queue.Client
	SessionStore cache.SessionStore

	// Repositories
	UserRepo       repository.UserRepository
	AttemptRepo    repository.VerifyAttemptRepository
	EmailTokenRepo repository.EmailTokenRepository
	PhoneCodeRepo  repository.PhoneCodeRepository

	// Services
	AuthService         *service.AuthService
	VerificationService *service.VerificationService
	EmailSender         *service.SMTPEmailSender
	SMSSender           *service.HTTPSMSSender
	CaptchaService      *service.CaptchaService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config, db *gorm.DB) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue, &cfg.Redis)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:       cfg,
		DB:           db,
		QueueClient:  queueClient,
		SessionStore: cache.NewSessionStore(),
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := c.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.AttemptRepo = repository.NewVerifyAttemptRepository(db)
	c.EmailTokenRepo = repository.NewEmailTokenRepository(db)
	c.PhoneCodeRepo = repository.NewPhoneCodeRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	c.EmailSender = service.NewSMTPEmailSender(&cfg.Email)
	c.SMSSender = service.NewHTTPSMSSender(&cfg.SMS)
	c.CaptchaService = service.NewCaptchaService(cfg.Captcha)
	c.AuthService = service.NewAuthService(c.UserRepo)
	c.VerificationService = service.NewVerificationService(
		cfg,
		c.DB,
		c.UserRepo,
		c.AttemptRepo,
		c.EmailTokenRepo,
		c.PhoneCodeRepo,
		c.EmailSender,
		c.SMSSender,
	)
}
