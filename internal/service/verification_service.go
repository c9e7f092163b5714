package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/sportline-next/internal/config"
	"github.com/sportline-next/internal/constants"
	"github.com/sportline-next/internal/models"
	"github.com/sportline-next/internal/repository"
)

const (
	emailTokenBytes             = 32
	phoneCodeLength             = 6
	defaultEmailTokenMaxAgeMins = 30
	defaultPhoneCodeMaxAgeMins  = 10
)

// EmailSender 验证邮件发送接口
type EmailSender interface {
	SendVerification(email, token, flow string) error
}

// SMSSender 验证短信发送接口
type SMSSender interface {
	SendCode(phone, code string) error
}

// VerificationService 验证流程服务
// 发送与记录在同一事务内，投递失败整体回滚
type VerificationService struct {
	cfg         *config.Config
	db          *gorm.DB
	userRepo    repository.UserRepository
	attemptRepo repository.VerifyAttemptRepository
	emailTokens repository.EmailTokenRepository
	phoneCodes  repository.PhoneCodeRepository
	emailSender EmailSender
	smsSender   SMSSender
	now         func() time.Time
}

// NewVerificationService 创建验证流程服务
func NewVerificationService(
	cfg *config.Config,
	db *gorm.DB,
	userRepo repository.UserRepository,
	attemptRepo repository.VerifyAttemptRepository,
	emailTokens repository.EmailTokenRepository,
	phoneCodes repository.PhoneCodeRepository,
	emailSender EmailSender,
	smsSender SMSSender,
) *VerificationService {
	return &VerificationService{
		cfg:         cfg,
		db:          db,
		userRepo:    userRepo,
		attemptRepo: attemptRepo,
		emailTokens: emailTokens,
		phoneCodes:  phoneCodes,
		emailSender: emailSender,
		smsSender:   smsSender,
		now:         time.Now,
	}
}

// RequestEmailToken 发送邮箱验证令牌
// 返回本次流程类型（register 或 reset_password）
func (s *VerificationService) RequestEmailToken(email string) (string, error) {
	now := s.now()
	policy := PolicyFromConfig(s.cfg.Verification.EmailSend, defaultEmailSendPolicy)
	if err := s.checkEmailLimit(email, constants.AttemptKindEmailSend, policy, now); err != nil {
		return "", err
	}

	flow, err := s.flowForEmail(email)
	if err != nil {
		return "", err
	}

	token, err := generateEmailToken()
	if err != nil {
		return "", err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.emailTokens.WithTx(tx).Replace(&models.EmailVerifyToken{
			Email:     email,
			Token:     token,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := s.emailSender.SendVerification(email, token, flow); err != nil {
			return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
		return s.attemptRepo.WithTx(tx).Record(&models.VerifyAttempt{
			Kind:      constants.AttemptKindEmailSend,
			Email:     email,
			CreatedAt: now,
		})
	})
	if err != nil {
		return "", err
	}
	return flow, nil
}

// PresentEmailToken 校验邮箱验证令牌
// 令牌不匹配同样计入尝试流水；成功时标记已用并返回流程类型
func (s *VerificationService) PresentEmailToken(email, token string) (string, error) {
	now := s.now()
	policy := PolicyFromConfig(s.cfg.Verification.EmailPresent, defaultEmailPresentPolicy)
	if err := s.checkEmailLimit(email, constants.AttemptKindEmailPresent, policy, now); err != nil {
		return "", err
	}

	record, err := s.emailTokens.Get(email)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", ErrVerifyNotFound
	}
	if now.Sub(record.CreatedAt) > s.emailTokenMaxAge() {
		return "", ErrVerifyExpired
	}
	if record.UsedAt != nil {
		return "", ErrVerifyAlreadyUsed
	}
	if subtle.ConstantTimeCompare([]byte(record.Token), []byte(token)) != 1 {
		if err := s.attemptRepo.Record(&models.VerifyAttempt{
			Kind:      constants.AttemptKindEmailPresent,
			Email:     email,
			CreatedAt: now,
		}); err != nil {
			return "", err
		}
		return "", ErrVerifyCodeInvalid
	}

	flow, err := s.flowForEmail(email)
	if err != nil {
		return "", err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.emailTokens.WithTx(tx).MarkUsed(email, now); err != nil {
			return err
		}
		return s.attemptRepo.WithTx(tx).Record(&models.VerifyAttempt{
			Kind:      constants.AttemptKindEmailPresent,
			Email:     email,
			CreatedAt: now,
		})
	})
	if err != nil {
		return "", err
	}
	return flow, nil
}

// RequestPhoneCode 发送手机验证码，phone 为待绑定号码
func (s *VerificationService) RequestPhoneCode(userID uint, phone string) error {
	now := s.now()
	policy := PolicyFromConfig(s.cfg.Verification.PhoneSend, defaultPhoneSendPolicy)
	if err := s.checkPhoneLimit(userID, phone, constants.AttemptKindPhoneSend, policy, now); err != nil {
		return err
	}

	code, err := randomNumericCode(phoneCodeLength)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.phoneCodes.WithTx(tx).Replace(&models.PhoneVerifyCode{
			UserID:    userID,
			Phone:     phone,
			Code:      code,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := s.smsSender.SendCode(phone, code); err != nil {
			return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
		uid := userID
		return s.attemptRepo.WithTx(tx).Record(&models.VerifyAttempt{
			Kind:      constants.AttemptKindPhoneSend,
			UserID:    &uid,
			Phone:     phone,
			CreatedAt: now,
		})
	})
}

// PresentPhoneCode 校验手机验证码，成功时把待绑定号码写入用户
func (s *VerificationService) PresentPhoneCode(userID uint, code string) error {
	now := s.now()
	policy := PolicyFromConfig(s.cfg.Verification.PhonePresent, defaultPhonePresentPolicy)
	if err := s.checkPhoneLimit(userID, "", constants.AttemptKindPhonePresent, policy, now); err != nil {
		return err
	}

	record, err := s.phoneCodes.Get(userID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrVerifyNotFound
	}
	if now.Sub(record.CreatedAt) > s.phoneCodeMaxAge() {
		return ErrVerifyExpired
	}
	if record.UsedAt != nil {
		return ErrVerifyAlreadyUsed
	}
	if record.Code != code {
		uid := userID
		if err := s.attemptRepo.Record(&models.VerifyAttempt{
			Kind:      constants.AttemptKindPhonePresent,
			UserID:    &uid,
			Phone:     record.Phone,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		return ErrVerifyCodeInvalid
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.phoneCodes.WithTx(tx).MarkUsed(userID, now); err != nil {
			return err
		}
		user.Phone = record.Phone
		user.PhoneVerifiedAt = &now
		if err := s.userRepo.WithTx(tx).Update(user); err != nil {
			return err
		}
		uid := userID
		return s.attemptRepo.WithTx(tx).Record(&models.VerifyAttempt{
			Kind:      constants.AttemptKindPhonePresent,
			UserID:    &uid,
			Phone:     record.Phone,
			CreatedAt: now,
		})
	})
}

// PendingPhone 返回用户当前待绑定的手机号
func (s *VerificationService) PendingPhone(userID uint) (string, error) {
	record, err := s.phoneCodes.Get(userID)
	if err != nil {
		return "", err
	}
	if record == nil || record.UsedAt != nil {
		return "", nil
	}
	return record.Phone, nil
}

func (s *VerificationService) checkEmailLimit(email, kind string, policy Policy, now time.Time) error {
	attempts, err := s.attemptRepo.ListEmailSince(email, kind, now.Add(-policy.LongestWindow()))
	if err != nil {
		return err
	}
	if retryAt := NextAvailableAt(now, attempts, policy); !retryAt.IsZero() {
		return NewRateLimitedError(retryAt)
	}
	return nil
}

func (s *VerificationService) checkPhoneLimit(userID uint, phone, kind string, policy Policy, now time.Time) error {
	attempts, err := s.attemptRepo.ListPhoneSince(userID, phone, kind, now.Add(-policy.LongestWindow()))
	if err != nil {
		return err
	}
	if retryAt := NextAvailableAt(now, attempts, policy); !retryAt.IsZero() {
		return NewRateLimitedError(retryAt)
	}
	return nil
}

// flowForEmail 根据邮箱是否已注册判定流程类型
func (s *VerificationService) flowForEmail(email string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return constants.FlowRegister, nil
	}
	return constants.FlowResetPassword, nil
}

func (s *VerificationService) emailTokenMaxAge() time.Duration {
	minutes := s.cfg.Email.TokenMaxAgeMins
	if minutes <= 0 {
		minutes = defaultEmailTokenMaxAgeMins
	}
	return time.Duration(minutes) * time.Minute
}

func (s *VerificationService) phoneCodeMaxAge() time.Duration {
	minutes := s.cfg.SMS.CodeMaxAgeMins
	if minutes <= 0 {
		minutes = defaultPhoneCodeMaxAgeMins
	}
	return time.Duration(minutes) * time.Minute
}

// generateEmailToken 生成 URL 安全的随机令牌
func generateEmailToken() (string, error) {
	buf := make([]byte, emailTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// randomNumericCode 生成指定长度的数字验证码
func randomNumericCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
