package drama

import (
	"shotmove/internal/service/drama"
)

// Handler 短剧任务处理器
// 所有短剧相关的Handler方法都通过这个结构体访问Service
type Handler struct {
	dramaService *drama.Service
}

// NewHandler 创建短剧任务处理器
func NewHandler(dramaService *drama.Service) *Handler {
	return &Handler{
		dramaService: dramaService,
	}
}
