package public

import (
	"github.com/sportline-next/internal/provider"
)

// Handler 公共接口处理器
type Handler struct {
	*provider.Container
}

// NewHandler 创建处理器
func NewHandler(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
