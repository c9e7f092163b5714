package models

import "time"

// EmailVerifyToken 邮箱验证令牌表
// 每个邮箱至多保留一条有效记录，重新发送时整行替换
type EmailVerifyToken struct {
	ID        uint       `gorm:"primarykey" json:"id"`              // 主键
	Email     string     `gorm:"uniqueIndex;not null" json:"email"` // 邮箱
	Token     string     `gorm:"not null" json:"-"`                 // 令牌（不返回给前端）
	CreatedAt time.Time  `gorm:"index" json:"created_at"`           // 签发时间
	UsedAt    *time.Time `json:"used_at"`                           // 使用时间
}

// TableName 指定表名
func (EmailVerifyToken) TableName() string {
	return "email_verify_tokens"
}
