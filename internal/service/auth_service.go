package service

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sportline-next/internal/constants"
	"github.com/sportline-next/internal/models"
	"github.com/sportline-next/internal/repository"
)

// AuthService 账号认证服务
type AuthService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo, now: time.Now}
}

// HashPassword 生成密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 校验密码
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsEmailRegistered 判断邮箱是否已注册
func (s *AuthService) IsEmailRegistered(email string) (bool, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// SignIn 密码登录，成功时更新最后登录时间
func (s *AuthService) SignIn(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status == constants.UserStatusDisabled {
		return nil, ErrUserDisabled
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrPasswordIncorrect
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetPasswordByEmail 设置该邮箱的密码，账号不存在时创建
// 返回用户和是否为新建账号
func (s *AuthService) SetPasswordByEmail(email, password string) (*models.User, bool, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		user = &models.User{
			Email:        email,
			PasswordHash: hash,
			DisplayName:  displayNameFromEmail(email),
			Status:       constants.UserStatusActive,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, false, err
		}
		return user, true, nil
	}

	user.PasswordHash = hash
	if err := s.userRepo.Update(user); err != nil {
		return nil, false, err
	}
	return user, false, nil
}

func displayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
