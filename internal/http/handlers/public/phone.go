package public

import (
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/sportline-next/internal/constants"
	"github.com/sportline-next/internal/http/response"
	"github.com/sportline-next/internal/logger"
	"github.com/sportline-next/internal/queue"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

// RequestPhoneCodeRequest 发送手机验证码请求
type RequestPhoneCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// RequestPhoneCode 发送手机验证码，开始绑定流程
func (h *Handler) RequestPhoneCode(c *gin.Context) {
	var req RequestPhoneCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}
	if !phonePattern.MatchString(req.Phone) {
		respondError(c, response.CodeBadRequest, "手机号格式不正确", nil)
		return
	}

	userID := c.GetUint("user_id")
	if err := h.VerificationService.RequestPhoneCode(userID, req.Phone); err != nil {
		h.respondVerificationError(c, err, "发送验证码失败")
		return
	}
	response.Success(c, gin.H{"sent": true})
}

// VerifyPhoneCodeRequest 校验手机验证码请求
type VerifyPhoneCodeRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// VerifyPhoneCode 校验手机验证码并绑定手机号
func (h *Handler) VerifyPhoneCode(c *gin.Context) {
	var req VerifyPhoneCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	userID := c.GetUint("user_id")
	if err := h.VerificationService.PresentPhoneCode(userID, req.Code); err != nil {
		h.respondVerificationError(c, err, "验证码校验失败")
		return
	}

	user, err := h.UserRepo.GetByID(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "查询用户失败", err)
		return
	}
	if user == nil {
		response.Unauthorized(c, "用户不存在")
		return
	}

	if h.QueueClient != nil {
		if err := h.QueueClient.EnqueueSecurityNotice(queue.SecurityNoticePayload{
			Email: user.Email,
			Event: constants.SecurityEventPhone,
			Phone: user.Phone,
		}); err != nil {
			logger.Warnw("security_notice_enqueue_failed", "email", user.Email, "error", err)
		}
	}

	response.Success(c, gin.H{"phone": user.Phone})
}
