package models

import "time"

// VerifyAttempt 验证尝试流水表
// 只追加，不修改不删除；限流按时间窗口统计该表
type VerifyAttempt struct {
	ID        uint      `gorm:"primarykey" json:"id"`             // 主键
	Kind      string    `gorm:"index;not null" json:"kind"`       // 尝试类型
	Email     string    `gorm:"index;default:''" json:"email"`    // 邮箱主体（邮箱流程）
	UserID    *uint     `gorm:"index" json:"user_id"`             // 用户主体（手机流程）
	Phone     string    `gorm:"index;default:''" json:"phone"`    // 手机号主体（手机流程）
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"` // 尝试时间
}

// TableName 指定表名
func (VerifyAttempt) TableName() string {
	return "verify_attempts"
}
