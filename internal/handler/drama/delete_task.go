package drama

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeleteTaskRequest 删除任务请求
type DeleteTaskRequest struct {
	TaskID string `uri:"task_id" binding:"required"` // 任务ID（必填）
}

// DeleteTask 删除任务
// @Summary      删除短剧任务
// @Description  软删除任务记录，已上传的产物不受影响
// @Tags         短剧任务
// @Accept       json
// @Produce      json
// @Param        task_id  path      string  true  "任务ID"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/drama/tasks/{task_id} [delete]
func (h *Handler) DeleteTask(c *gin.Context) {
	var req DeleteTaskRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid task_id",
			Detail:  err.Error(),
		})
		return
	}

	if err := h.dramaService.DeleteTask(c.Request.Context(), req.TaskID); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}
