package repository

import (
	"time"

	"github.com/sportline-next/internal/models"

	"gorm.io/gorm"
)

// VerifyAttemptRepository 验证尝试流水数据访问接口
// 流水只追加；时间窗口查询供限流统计使用
type VerifyAttemptRepository interface {
	WithTx(tx *gorm.DB) VerifyAttemptRepository
	Record(attempt *models.VerifyAttempt) error
	ListEmailSince(email, kind string, since time.Time) ([]time.Time, error)
	ListPhoneSince(userID uint, phone, kind string, since time.Time) ([]time.Time, error)
}

// GormVerifyAttemptRepository GORM 实现
type GormVerifyAttemptRepository struct {
	db *gorm.DB
}

// NewVerifyAttemptRepository 创建验证尝试仓库
func NewVerifyAttemptRepository(db *gorm.DB) *GormVerifyAttemptRepository {
	return &GormVerifyAttemptRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *GormVerifyAttemptRepository) WithTx(tx *gorm.DB) VerifyAttemptRepository {
	return &GormVerifyAttemptRepository{db: tx}
}

// Record 追加一条尝试记录
func (r *GormVerifyAttemptRepository) Record(attempt *models.VerifyAttempt) error {
	return r.db.Create(attempt).Error
}

// ListEmailSince 按邮箱统计指定时间之后的尝试时间，倒序返回
func (r *GormVerifyAttemptRepository) ListEmailSince(email, kind string, since time.Time) ([]time.Time, error) {
	var attempts []models.VerifyAttempt
	if err := r.db.Select("created_at").
		Where("kind = ? AND email = ? AND created_at >= ?", kind, email, since).
		Order("created_at desc").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attemptTimes(attempts), nil
}

// ListPhoneSince 按用户或手机号统计指定时间之后的尝试时间，倒序返回
// 同一手机号换账号重试也会被计入
func (r *GormVerifyAttemptRepository) ListPhoneSince(userID uint, phone, kind string, since time.Time) ([]time.Time, error) {
	var attempts []models.VerifyAttempt
	if err := r.db.Select("created_at").
		Where("kind = ? AND created_at >= ?", kind, since).
		Where("user_id = ? OR (phone <> '' AND phone = ?)", userID, phone).
		Order("created_at desc").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attemptTimes(attempts), nil
}

func attemptTimes(attempts []models.VerifyAttempt) []time.Time {
	times := make([]time.Time, 0, len(attempts))
	for _, attempt := range attempts {
		times = append(times, attempt.CreatedAt)
	}
	return times
}
