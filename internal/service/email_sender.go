package service

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sportline-next/internal/config"
	"github.com/sportline-next/internal/constants"
)

var (
	ErrEmailNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// SMTPEmailSender 验证邮件发送服务
// 配置了测试收件人时，邮件改投 Telegram 并去除可点击链接
type SMTPEmailSender struct {
	cfg *config.EmailConfig
}

// NewSMTPEmailSender 创建邮件发送服务
func NewSMTPEmailSender(cfg *config.EmailConfig) *SMTPEmailSender {
	return &SMTPEmailSender{cfg: cfg}
}

// SendVerification 发送验证链接邮件
func (s *SMTPEmailSender) SendVerification(email, token, flow string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	subject, body := buildVerificationContent(s.cfg.URLTemplate, email, token, flow)

	if s.cfg.TestingReceiverToken != "" && s.cfg.TestingReceiverChatID != 0 {
		return s.sendToTestingReceiver(email, subject, body)
	}
	return s.sendTextEmail(email, subject, body)
}

// SendNotice 发送安全提醒等普通通知邮件
func (s *SMTPEmailSender) SendNotice(email, subject, body string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	if s.cfg.TestingReceiverToken != "" && s.cfg.TestingReceiverChatID != 0 {
		return s.sendToTestingReceiver(email, subject, body)
	}
	return s.sendTextEmail(email, subject, body)
}

// sendToTestingReceiver 把邮件内容投递到 Telegram 测试会话
// 链接协议改写为 hxxp，避免测试群里被误点
func (s *SMTPEmailSender) sendToTestingReceiver(email, subject, body string) error {
	bot, err := tgbotapi.NewBotAPI(s.cfg.TestingReceiverToken)
	if err != nil {
		return err
	}
	defanged := strings.ReplaceAll(body, "https://", "hxxps://")
	defanged = strings.ReplaceAll(defanged, "http://", "hxxp://")
	text := fmt.Sprintf("To: %s\nSubject: %s\n\n%s", email, subject, defanged)
	_, err = bot.Send(tgbotapi.NewMessage(s.cfg.TestingReceiverChatID, text))
	return err
}

func (s *SMTPEmailSender) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailNotConfigured
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	switch strings.ToLower(strings.TrimSpace(s.cfg.Encryption)) {
	case "ssl":
		return sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
	case "starttls", "tls":
		return sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
	default:
		return sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
	}
}

// buildVerificationContent 按流程类型生成邮件主题与正文
func buildVerificationContent(template, email, token, flow string) (string, string) {
	link := buildVerificationURL(template, email, token, flow)
	if flow == constants.FlowResetPassword {
		subject := "重置密码"
		body := fmt.Sprintf("请点击以下链接重置密码：\n\n%s\n\n链接 30 分钟内有效，如非本人操作请忽略。", link)
		return subject, body
	}
	subject := "完成注册"
	body := fmt.Sprintf("欢迎加入，请点击以下链接完成注册：\n\n%s\n\n链接 30 分钟内有效，如非本人操作请忽略。", link)
	return subject, body
}

// buildVerificationURL 填充链接模板中的 {email}/{token}/{flow} 占位符
func buildVerificationURL(template, email, token, flow string) string {
	link := strings.ReplaceAll(template, "{email}", url.QueryEscape(email))
	link = strings.ReplaceAll(link, "{token}", url.QueryEscape(token))
	link = strings.ReplaceAll(link, "{flow}", url.QueryEscape(flow))
	return link
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
