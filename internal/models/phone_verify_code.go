package models

import "time"

// PhoneVerifyCode 手机验证码表
// 每个用户至多保留一条有效记录；Phone 记录待绑定号码，验证成功后回写到用户
type PhoneVerifyCode struct {
	ID        uint       `gorm:"primarykey" json:"id"`                // 主键
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"` // 用户
	Phone     string     `gorm:"index;not null" json:"phone"`         // 待绑定手机号
	Code      string     `gorm:"not null" json:"-"`                   // 验证码（不返回给前端）
	CreatedAt time.Time  `gorm:"index" json:"created_at"`             // 签发时间
	UsedAt    *time.Time `json:"used_at"`                             // 使用时间
}

// TableName 指定表名
func (PhoneVerifyCode) TableName() string {
	return "phone_verify_codes"
}
