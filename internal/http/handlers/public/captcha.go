package public

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sportline-next/internal/http/response"
	"github.com/sportline-next/internal/service"
)

// CaptchaImage 获取图片验证码挑战
func (h *Handler) CaptchaImage(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		if errors.Is(err, service.ErrCaptchaConfigInvalid) {
			respondError(c, response.CodeBadRequest, "当前未启用图片验证码", nil)
			return
		}
		respondError(c, response.CodeInternal, "生成验证码失败", err)
		return
	}
	response.Success(c, challenge)
}
