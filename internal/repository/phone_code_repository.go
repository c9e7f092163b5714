package repository

import (
	"errors"
	"time"

	"github.com/sportline-next/internal/models"

	"gorm.io/gorm"
)

// PhoneCodeRepository 手机验证码数据访问接口
// 每个用户至多一条记录，Replace 整行替换并重置使用状态
type PhoneCodeRepository interface {
	WithTx(tx *gorm.DB) PhoneCodeRepository
	Replace(code *models.PhoneVerifyCode) error
	Get(userID uint) (*models.PhoneVerifyCode, error)
	MarkUsed(userID uint, usedAt time.Time) error
}

// GormPhoneCodeRepository GORM 实现
type GormPhoneCodeRepository struct {
	db *gorm.DB
}

// NewPhoneCodeRepository 创建手机验证码仓库
func NewPhoneCodeRepository(db *gorm.DB) *GormPhoneCodeRepository {
	return &GormPhoneCodeRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *GormPhoneCodeRepository) WithTx(tx *gorm.DB) PhoneCodeRepository {
	return &GormPhoneCodeRepository{db: tx}
}

// Replace 替换该用户的验证码记录，旧记录连同使用状态一并丢弃
func (r *GormPhoneCodeRepository) Replace(code *models.PhoneVerifyCode) error {
	if err := r.db.Where("user_id = ?", code.UserID).
		Delete(&models.PhoneVerifyCode{}).Error; err != nil {
		return err
	}
	code.ID = 0
	code.UsedAt = nil
	return r.db.Create(code).Error
}

// Get 获取该用户的验证码记录
func (r *GormPhoneCodeRepository) Get(userID uint) (*models.PhoneVerifyCode, error) {
	var record models.PhoneVerifyCode
	if err := r.db.Where("user_id = ?", userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// MarkUsed 标记验证码已使用；记录不存在时返回 gorm.ErrRecordNotFound
func (r *GormPhoneCodeRepository) MarkUsed(userID uint, usedAt time.Time) error {
	result := r.db.Model(&models.PhoneVerifyCode{}).
		Where("user_id = ?", userID).
		Update("used_at", usedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
