package public

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sportline-next/internal/cache"
	"github.com/sportline-next/internal/constants"
	"github.com/sportline-next/internal/http/response"
	"github.com/sportline-next/internal/logger"
	"github.com/sportline-next/internal/queue"
	"github.com/sportline-next/internal/service"
)

// CaptchaPayloadRequest 人机验证请求载荷
type CaptchaPayloadRequest struct {
	CaptchaID      string `json:"captcha_id"`
	CaptchaCode    string `json:"captcha_code"`
	TurnstileToken string `json:"turnstile_token"`
}

// ToServicePayload 转换为服务层载荷
func (r CaptchaPayloadRequest) ToServicePayload() service.CaptchaVerifyPayload {
	return service.CaptchaVerifyPayload{
		CaptchaID:      r.CaptchaID,
		CaptchaCode:    r.CaptchaCode,
		TurnstileToken: r.TurnstileToken,
	}
}

// LocateAccountRequest 账号定位请求
type LocateAccountRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LocateAccount 查询邮箱是否已注册
func (h *Handler) LocateAccount(c *gin.Context) {
	var req LocateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	registered, err := h.AuthService.IsEmailRegistered(normalizeEmail(req.Email))
	if err != nil {
		respondError(c, response.CodeInternal, "查询失败", err)
		return
	}
	response.Success(c, gin.H{"email_registered": registered})
}

// SendEmailFlowRequest 发起邮箱验证请求
type SendEmailFlowRequest struct {
	Email          string                `json:"email" binding:"required,email"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// SendEmailFlow 发送邮箱验证邮件
func (h *Handler) SendEmailFlow(c *gin.Context) {
	var req SendEmailFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}
	if !h.verifyCaptcha(c, req.CaptchaPayload) {
		return
	}

	flow, err := h.VerificationService.RequestEmailToken(normalizeEmail(req.Email))
	if err != nil {
		h.respondVerificationError(c, err, "发送验证邮件失败")
		return
	}
	response.Success(c, gin.H{"sent": true, "flow": flow})
}

// CreateEmailSessionRequest 出示邮箱令牌请求
type CreateEmailSessionRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required"`
}

// CreateEmailSession 出示邮箱令牌并建立邮箱会话
func (h *Handler) CreateEmailSession(c *gin.Context) {
	var req CreateEmailSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	email := normalizeEmail(req.Email)
	flow, err := h.VerificationService.PresentEmailToken(email, req.Token)
	if err != nil {
		h.respondVerificationError(c, err, "令牌校验失败")
		return
	}

	sessionID, err := h.SessionStore.PutEmailSession(c.Request.Context(), cache.EmailSession{
		Email:     email,
		Flow:      flow,
		CreatedAt: time.Now(),
	}, h.Config.Session.EmailTTL())
	if err != nil {
		respondError(c, response.CodeInternal, "创建会话失败", err)
		return
	}
	response.Success(c, gin.H{
		"session_id": sessionID,
		"email":      email,
		"flow":       flow,
	})
}

// GetEmailSession 查询邮箱会话状态
func (h *Handler) GetEmailSession(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		respondError(c, response.CodeBadRequest, "缺少会话标识", nil)
		return
	}
	session, err := h.SessionStore.GetEmailSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, response.CodeInternal, "查询会话失败", err)
		return
	}
	if session == nil {
		response.Unauthorized(c, "会话不存在或已过期")
		return
	}
	response.Success(c, gin.H{
		"email": session.Email,
		"flow":  session.Flow,
	})
}

// ResetPasswordRequest 设置密码请求
type ResetPasswordRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
}

// ResetPassword 通过邮箱会话设置密码，邮箱未注册时创建账号
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	ctx := c.Request.Context()
	session, err := h.SessionStore.GetEmailSession(ctx, req.SessionID)
	if err != nil {
		respondError(c, response.CodeInternal, "查询会话失败", err)
		return
	}
	if session == nil {
		response.Unauthorized(c, "会话不存在或已过期")
		return
	}

	user, created, err := h.AuthService.SetPasswordByEmail(session.Email, req.Password)
	if err != nil {
		respondError(c, response.CodeInternal, "设置密码失败", err)
		return
	}

	// 会话一次性使用
	if err := h.SessionStore.DelEmailSession(ctx, req.SessionID); err != nil {
		logger.Warnw("email_session_delete_failed", "error", err)
	}

	if !created && h.QueueClient != nil {
		if err := h.QueueClient.EnqueueSecurityNotice(queue.SecurityNoticePayload{
			Email: user.Email,
			Event: constants.SecurityEventPassword,
		}); err != nil {
			logger.Warnw("security_notice_enqueue_failed", "email", user.Email, "error", err)
		}
	}

	response.Success(c, gin.H{
		"created": created,
		"flow":    session.Flow,
	})
}

// SignInRequest 登录请求
type SignInRequest struct {
	Email          string                `json:"email" binding:"required,email"`
	Password       string                `json:"password" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// SignIn 密码登录
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}
	if !h.verifyCaptcha(c, req.CaptchaPayload) {
		return
	}

	user, err := h.AuthService.SignIn(normalizeEmail(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrPasswordIncorrect):
			respondError(c, response.CodeUnauthorized, "邮箱或密码不正确", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "账号已被禁用", nil)
		default:
			respondError(c, response.CodeInternal, "登录失败", err)
		}
		return
	}

	h.establishUserSession(c, user.ID, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"phone":        user.Phone,
		"display_name": user.DisplayName,
	})
}

// SignOut 退出登录
func (h *Handler) SignOut(c *gin.Context) {
	cookieName := h.Config.Session.CookieName
	sessionID, err := c.Cookie(cookieName)
	if err == nil && sessionID != "" {
		if err := h.SessionStore.DelUserSession(c.Request.Context(), sessionID); err != nil {
			logger.Warnw("user_session_delete_failed", "error", err)
		}
	}
	c.SetCookie(cookieName, "", -1, "/", h.Config.Session.CookieDomain, h.Config.Session.CookieSecure, true)
	response.Success(c, gin.H{"signed_out": true})
}

// Status 查询登录状态
func (h *Handler) Status(c *gin.Context) {
	userID := c.GetUint("user_id")
	user, err := h.UserRepo.GetByID(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "查询用户失败", err)
		return
	}
	if user == nil {
		response.Unauthorized(c, "用户不存在")
		return
	}
	response.Success(c, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"phone":        user.Phone,
		"display_name": user.DisplayName,
	})
}

// FakeSignInRequest 调试登录请求
type FakeSignInRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// FakeSignIn 调试模式免密登录，邮箱不存在时自动建号
// 仅在 debug 模式注册该路由
func (h *Handler) FakeSignIn(c *gin.Context) {
	var req FakeSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	email := normalizeEmail(req.Email)
	user, err := h.UserRepo.GetByEmail(email)
	if err != nil {
		respondError(c, response.CodeInternal, "查询用户失败", err)
		return
	}
	if user == nil {
		user, _, err = h.AuthService.SetPasswordByEmail(email, cache.NewSessionID())
		if err != nil {
			respondError(c, response.CodeInternal, "创建用户失败", err)
			return
		}
	}

	h.establishUserSession(c, user.ID, gin.H{
		"id":    user.ID,
		"email": user.Email,
	})
}

// establishUserSession 创建登录会话并写入 Cookie
func (h *Handler) establishUserSession(c *gin.Context, userID uint, payload gin.H) {
	ttl := h.Config.Session.UserTTL()
	sessionID, err := h.SessionStore.PutUserSession(c.Request.Context(), cache.UserSession{
		UserID:    userID,
		CreatedAt: time.Now(),
	}, ttl)
	if err != nil {
		respondError(c, response.CodeInternal, "创建会话失败", err)
		return
	}

	c.SetCookie(
		h.Config.Session.CookieName,
		sessionID,
		int(ttl/time.Second),
		"/",
		h.Config.Session.CookieDomain,
		h.Config.Session.CookieSecure,
		true,
	)
	response.Success(c, gin.H{"user": payload})
}

// verifyCaptcha 校验人机验证，失败时已写出响应
func (h *Handler) verifyCaptcha(c *gin.Context, payload CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	if err := h.CaptchaService.Verify(payload.ToServicePayload(), c.ClientIP()); err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaRequired):
			respondError(c, response.CodeBadRequest, "请完成人机验证", nil)
		case errors.Is(err, service.ErrCaptchaInvalid):
			respondError(c, response.CodeBadRequest, "人机验证不通过", nil)
		default:
			respondError(c, response.CodeInternal, "人机验证失败", err)
		}
		return false
	}
	return true
}

// respondVerificationError 把验证流程错误映射为响应
func (h *Handler) respondVerificationError(c *gin.Context, err error, fallbackMsg string) {
	if rateLimited, ok := service.AsRateLimited(err); ok {
		response.TooManyRequests(c, "操作过于频繁，请稍后再试", rateLimited.RetryAt.Format(time.RFC3339))
		return
	}
	switch {
	case errors.Is(err, service.ErrVerifyNotFound):
		respondError(c, response.CodeNotFound, "验证记录不存在", nil)
	case errors.Is(err, service.ErrVerifyExpired):
		respondError(c, response.CodeGone, "验证已过期，请重新发起", nil)
	case errors.Is(err, service.ErrVerifyAlreadyUsed):
		respondError(c, response.CodeGone, "验证已被使用，请重新发起", nil)
	case errors.Is(err, service.ErrVerifyCodeInvalid):
		respondError(c, response.CodeForbidden, "验证信息不正确", nil)
	case errors.Is(err, service.ErrDeliveryFailed):
		respondError(c, response.CodeInternal, "发送失败，请稍后再试", err)
	case errors.Is(err, service.ErrInvalidEmail):
		respondError(c, response.CodeBadRequest, "邮箱格式不正确", nil)
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, response.CodeNotFound, "用户不存在", nil)
	default:
		respondError(c, response.CodeInternal, fallbackMsg, err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
