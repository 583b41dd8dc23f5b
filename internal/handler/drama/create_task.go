package drama

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shotmove/internal/service/drama"
)

// CreateTask 创建短剧生成任务
// @Summary      创建短剧生成任务
// @Description  提交剧本，异步执行分镜、配音、逐镜生成和音画合成
// @Tags         短剧任务
// @Accept       json
// @Produce      json
// @Param        request  body      drama.CreateTaskRequest  true  "任务参数"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/drama/tasks [post]
func (h *Handler) CreateTask(c *gin.Context) {
	var req drama.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	task, err := h.dramaService.CreateTask(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, drama.ErrGenerationNotConfigured) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    40002,
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"task": toTaskInfo(task),
		},
	})
}
