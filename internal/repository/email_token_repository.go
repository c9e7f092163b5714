package repository

import (
	"errors"
	"time"

	"github.com/sportline-next/internal/models"

	"gorm.io/gorm"
)

// EmailTokenRepository 邮箱验证令牌数据访问接口
// 每个邮箱至多一条记录，Replace 整行替换并重置使用状态
type EmailTokenRepository interface {
	WithTx(tx *gorm.DB) EmailTokenRepository
	Replace(token *models.EmailVerifyToken) error
	Get(email string) (*models.EmailVerifyToken, error)
	MarkUsed(email string, usedAt time.Time) error
}

// GormEmailTokenRepository GORM 实现
type GormEmailTokenRepository struct {
	db *gorm.DB
}

// NewEmailTokenRepository 创建邮箱令牌仓库
func NewEmailTokenRepository(db *gorm.DB) *GormEmailTokenRepository {
	return &GormEmailTokenRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *GormEmailTokenRepository) WithTx(tx *gorm.DB) EmailTokenRepository {
	return &GormEmailTokenRepository{db: tx}
}

// Replace 替换该邮箱的令牌记录，旧记录连同使用状态一并丢弃
func (r *GormEmailTokenRepository) Replace(token *models.EmailVerifyToken) error {
	if err := r.db.Where("email = ?", token.Email).
		Delete(&models.EmailVerifyToken{}).Error; err != nil {
		return err
	}
	token.ID = 0
	token.UsedAt = nil
	return r.db.Create(token).Error
}

// Get 获取该邮箱的令牌记录
func (r *GormEmailTokenRepository) Get(email string) (*models.EmailVerifyToken, error) {
	var record models.EmailVerifyToken
	if err := r.db.Where("email = ?", email).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// MarkUsed 标记令牌已使用；记录不存在时返回 gorm.ErrRecordNotFound
func (r *GormEmailTokenRepository) MarkUsed(email string, usedAt time.Time) error {
	result := r.db.Model(&models.EmailVerifyToken{}).
		Where("email = ?", email).
		Update("used_at", usedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
