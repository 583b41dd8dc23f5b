package drama

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetTaskRequest 查询任务请求
type GetTaskRequest struct {
	TaskID string `uri:"task_id" binding:"required"` // 任务ID（必填）
}

// GetTask 查询任务状态和产物
// @Summary      查询短剧任务
// @Description  根据任务ID查询状态、分镜规划和成片地址，适合客户端轮询
// @Tags         短剧任务
// @Accept       json
// @Produce      json
// @Param        task_id  path      string  true  "任务ID"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      404      {object}  ErrorResponse  "任务不存在"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/drama/tasks/{task_id} [get]
func (h *Handler) GetTask(c *gin.Context) {
	var req GetTaskRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid task_id",
			Detail:  err.Error(),
		})
		return
	}

	task, err := h.dramaService.GetTask(c.Request.Context(), req.TaskID)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001
		if strings.Contains(err.Error(), "not found") {
			code = http.StatusNotFound
			errorCode = 40401
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
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
