package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sportline-next/internal/config"
)

var ErrSMSNotConfigured = errors.New("sms service not configured")

// HTTPSMSSender 短信网关客户端
type HTTPSMSSender struct {
	cfg    *config.SMSConfig
	client *http.Client
}

// NewHTTPSMSSender 创建短信发送服务
func NewHTTPSMSSender(cfg *config.SMSConfig) *HTTPSMSSender {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSMSSender{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type smsSendRequest struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
	From      string `json:"from,omitempty"`
}

type smsSendResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SendCode 发送验证码短信
func (s *HTTPSMSSender) SendCode(phone, code string) error {
	if s.cfg.APIURL == "" || s.cfg.APIKey == "" {
		return ErrSMSNotConfigured
	}

	payload, err := json.Marshal(smsSendRequest{
		Recipient: phone,
		Text:      s.codeMessage(code),
		From:      s.cfg.Sender,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var result smsSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if result.Code != 0 {
		return fmt.Errorf("sms gateway error %d: %s", result.Code, result.Message)
	}
	return nil
}

// codeMessage 渲染验证码短信文案，有效期取配置值
func (s *HTTPSMSSender) codeMessage(code string) string {
	minutes := s.cfg.CodeMaxAgeMins
	if minutes <= 0 {
		minutes = defaultPhoneCodeMaxAgeMins
	}
	return fmt.Sprintf("验证码：%s，%d 分钟内有效。", code, minutes)
}
