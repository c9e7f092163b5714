package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sportline-next/internal/constants"
	"github.com/sportline-next/internal/logger"
	"github.com/sportline-next/internal/provider"
	"github.com/sportline-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSecurityNotice, c.handleSecurityNotice)
}

func (c *Consumer) handleSecurityNotice(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_security_notice_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SecurityNoticePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_security_notice_unmarshal_failed", "error", err)
		return err
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" {
		logger.Debugw("worker_security_notice_skip_empty_receiver")
		return nil
	}
	if c.EmailSender == nil {
		logger.Warnw("worker_security_notice_skip_email_sender_nil", "email", email)
		return nil
	}

	subject, body := buildSecurityNoticeContent(payload)
	if subject == "" {
		logger.Debugw("worker_security_notice_skip_unknown_event", "event", payload.Event)
		return nil
	}
	if err := c.EmailSender.SendNotice(email, subject, body); err != nil {
		logger.Warnw("worker_security_notice_send_failed", "email", email, "event", payload.Event, "error", err)
		return err
	}
	return nil
}

func buildSecurityNoticeContent(payload queue.SecurityNoticePayload) (string, string) {
	switch payload.Event {
	case constants.SecurityEventPassword:
		return "账号密码已修改", "你的账号密码刚刚通过邮箱验证完成修改。如非本人操作，请立即重新发起重置密码流程。"
	case constants.SecurityEventPhone:
		phone := maskPhone(payload.Phone)
		return "账号已绑定手机号", "你的账号刚刚绑定了手机号 " + phone + "。如非本人操作，请尽快联系我们。"
	default:
		return "", ""
	}
}

// maskPhone 保留首尾，中间打码
func maskPhone(phone string) string {
	if len(phone) <= 6 {
		return phone
	}
	return phone[:3] + "****" + phone[len(phone)-3:]
}
