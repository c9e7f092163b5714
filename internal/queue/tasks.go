package queue

import (
	"encoding/json"

	"github.com/sportline-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskSecurityNotice 账号安全提醒邮件任务
	TaskSecurityNotice = constants.TaskSecurityNotice
)

// SecurityNoticePayload 安全提醒任务载荷
type SecurityNoticePayload struct {
	Email string `json:"email"`
	Event string `json:"event"`
	Phone string `json:"phone,omitempty"`
}

// NewSecurityNoticeTask 创建安全提醒任务
func NewSecurityNoticeTask(payload SecurityNoticePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSecurityNotice, body), nil
}
