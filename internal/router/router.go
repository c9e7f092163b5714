package router

import (
	"fmt"
	"strings"

	"github.com/sportline-next/internal/cache"
	"github.com/sportline-next/internal/config"
	publichandlers "github.com/sportline-next/internal/http/handlers/public"
	"github.com/sportline-next/internal/logger"
	"github.com/sportline-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.NewHandler(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sl"
	}
	redisClient := cache.Client()
	signinRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:signin", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
	}
	if !cfg.Security.LoginRateLimit.Enabled {
		redisClient = nil
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	sessionAuth := SessionAuthMiddleware(cfg.Session.CookieName, c.SessionStore, c.UserRepo)

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/captcha/image", publicHandler.CaptchaImage)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/locateAccount", publicHandler.LocateAccount)
			auth.POST("/flow/email", publicHandler.SendEmailFlow)
			auth.POST("/flow/email/session", publicHandler.CreateEmailSession)
			auth.GET("/flow/email/session", publicHandler.GetEmailSession)
			auth.POST("/flow/email/resetPassword", publicHandler.ResetPassword)
			auth.POST("/signin", RateLimitMiddleware(redisClient, signinRule, KeyByIPAndJSONField("email")), publicHandler.SignIn)
			auth.POST("/signout", publicHandler.SignOut)
			auth.GET("/status", sessionAuth, publicHandler.Status)
			if gin.Mode() == gin.DebugMode {
				auth.POST("/fakeSignin", publicHandler.FakeSignIn)
			}
		}

		me := apiV1.Group("/me", sessionAuth)
		{
			me.POST("/phone", publicHandler.RequestPhoneCode)
			me.POST("/phone/verify", publicHandler.VerifyPhoneCode)
		}
	}

	return r
}
