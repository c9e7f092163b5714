package service

import (
	"errors"
	"fmt"
	"time"
)

// 服务层哨兵错误
var (
	ErrVerifyNotFound    = errors.New("verification record not found")
	ErrVerifyExpired     = errors.New("verification record expired")
	ErrVerifyAlreadyUsed = errors.New("verification record already used")
	ErrVerifyCodeInvalid = errors.New("verification code invalid")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserDisabled      = errors.New("user disabled")
	ErrPasswordIncorrect = errors.New("password incorrect")
	ErrCaptchaInvalid    = errors.New("captcha invalid")
	ErrDeliveryFailed    = errors.New("delivery failed")
)

// RateLimitedError 触发限流，RetryAt 为最早可重试时间
type RateLimitedError struct {
	RetryAt time.Time
}

// Error 实现 error 接口
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// NewRateLimitedError 创建限流错误
func NewRateLimitedError(retryAt time.Time) *RateLimitedError {
	return &RateLimitedError{RetryAt: retryAt}
}

// AsRateLimited 判断并提取限流错误
func AsRateLimited(err error) (*RateLimitedError, bool) {
	var rateLimited *RateLimitedError
	if errors.As(err, &rateLimited) {
		return rateLimited, true
	}
	return nil, false
}
