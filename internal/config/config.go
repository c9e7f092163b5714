package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sportline-next/internal/logger"
)

// Config 应用配置
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Queue        QueueConfig        `mapstructure:"queue"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Security     SecurityConfig     `mapstructure:"security"`
	Email        EmailConfig        `mapstructure:"email"`
	SMS          SMSConfig          `mapstructure:"sms"`
	Captcha      CaptchaConfig      `mapstructure:"captcha"`
	Verification VerificationConfig `mapstructure:"verification"`
	Session      SessionConfig      `mapstructure:"session"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为日志初始化选项
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit RateLimitConfig `mapstructure:"login_rate_limit"`
}

// RateLimitConfig 固定窗口限流配置
type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxRequests   int  `mapstructure:"max_requests"`
	WindowSeconds int  `mapstructure:"window_seconds"`
	BlockSeconds  int  `mapstructure:"block_seconds"`
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	From            string `mapstructure:"from"`
	FromName        string `mapstructure:"from_name"`
	Encryption      string `mapstructure:"encryption"`
	URLTemplate     string `mapstructure:"url_template"`
	TokenMaxAgeMins int    `mapstructure:"token_max_age_minutes"`

	// 测试收件人：配置后所有验证邮件改投 Telegram
	TestingReceiverToken  string `mapstructure:"testing_receiver_token"`
	TestingReceiverChatID int64  `mapstructure:"testing_receiver_chat_id"`
}

// SMSConfig 短信配置
type SMSConfig struct {
	APIURL         string `mapstructure:"api_url"`
	APIKey         string `mapstructure:"api_key"`
	Sender         string `mapstructure:"sender"`
	CodeMaxAgeMins int    `mapstructure:"code_max_age_minutes"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CaptchaConfig 人机验证配置
type CaptchaConfig struct {
	Provider        string `mapstructure:"provider"`
	TurnstileSecret string `mapstructure:"turnstile_secret"`
	ImageWidth      int    `mapstructure:"image_width"`
	ImageHeight     int    `mapstructure:"image_height"`
	ImageLength     int    `mapstructure:"image_length"`
	ExpireMinutes   int    `mapstructure:"expire_minutes"`
}

// WindowConfig 滑动窗口配置
type WindowConfig struct {
	WindowMinutes int `mapstructure:"window_minutes"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// VerificationConfig 验证流程配置
type VerificationConfig struct {
	EmailSend    []WindowConfig `mapstructure:"email_send"`
	EmailPresent []WindowConfig `mapstructure:"email_present"`
	PhoneSend    []WindowConfig `mapstructure:"phone_send"`
	PhonePresent []WindowConfig `mapstructure:"phone_present"`
}

// SessionConfig 会话配置
type SessionConfig struct {
	EmailTTLMinutes int    `mapstructure:"email_ttl_minutes"`
	UserTTLMinutes  int    `mapstructure:"user_ttl_minutes"`
	CookieName      string `mapstructure:"cookie_name"`
	CookieDomain    string `mapstructure:"cookie_domain"`
	CookieSecure    bool   `mapstructure:"cookie_secure"`
}

// UserTTL 用户会话存活时长
func (c SessionConfig) UserTTL() time.Duration {
	minutes := c.UserTTLMinutes
	if minutes <= 0 {
		minutes = 7 * 24 * 60
	}
	return time.Duration(minutes) * time.Minute
}

// EmailTTL 邮箱会话存活时长
func (c SessionConfig) EmailTTL() time.Duration {
	minutes := c.EmailTTLMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

// Load 加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("SPORTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "sportline.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "sportline.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 60)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sl")

	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.concurrency", 10)

	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.allow_credentials", true)

	v.SetDefault("security.login_rate_limit.enabled", true)
	v.SetDefault("security.login_rate_limit.max_requests", 10)
	v.SetDefault("security.login_rate_limit.window_seconds", 60)
	v.SetDefault("security.login_rate_limit.block_seconds", 300)

	v.SetDefault("email.host", "")
	v.SetDefault("email.port", 465)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.from_name", "Sportline")
	v.SetDefault("email.encryption", "ssl")
	v.SetDefault("email.url_template", "https://sportline.example/verify?email={email}&token={token}&flow={flow}")
	v.SetDefault("email.token_max_age_minutes", 30)
	v.SetDefault("email.testing_receiver_token", "")
	v.SetDefault("email.testing_receiver_chat_id", 0)

	v.SetDefault("sms.api_url", "")
	v.SetDefault("sms.api_key", "")
	v.SetDefault("sms.sender", "")
	v.SetDefault("sms.code_max_age_minutes", 10)
	v.SetDefault("sms.timeout_seconds", 10)

	v.SetDefault("captcha.provider", "none")
	v.SetDefault("captcha.turnstile_secret", "")
	v.SetDefault("captcha.image_width", 240)
	v.SetDefault("captcha.image_height", 80)
	v.SetDefault("captcha.image_length", 5)
	v.SetDefault("captcha.expire_minutes", 5)

	v.SetDefault("verification.email_send", []map[string]interface{}{
		{"window_minutes": 24 * 60, "max_attempts": 10},
		{"window_minutes": 5, "max_attempts": 5},
	})
	v.SetDefault("verification.email_present", []map[string]interface{}{
		{"window_minutes": 5, "max_attempts": 5},
	})
	v.SetDefault("verification.phone_send", []map[string]interface{}{
		{"window_minutes": 24 * 60, "max_attempts": 10},
		{"window_minutes": 3, "max_attempts": 1},
	})
	v.SetDefault("verification.phone_present", []map[string]interface{}{
		{"window_minutes": 3, "max_attempts": 5},
	})

	v.SetDefault("session.email_ttl_minutes", 60)
	v.SetDefault("session.user_ttl_minutes", 7*24*60)
	v.SetDefault("session.cookie_name", "sportline_session")
	v.SetDefault("session.cookie_domain", "")
	v.SetDefault("session.cookie_secure", false)
}
