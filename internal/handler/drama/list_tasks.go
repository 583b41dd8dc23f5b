package drama

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListTasksRequest 任务列表请求
type ListTasksRequest struct {
	Status   string `form:"status"`    // 按状态过滤，可选
	Page     int    `form:"page"`      // 页码，从1开始
	PageSize int    `form:"page_size"` // 每页条数
}

// ListTasks 分页查询任务列表
// @Summary      查询短剧任务列表
// @Description  按状态过滤并分页返回任务列表
// @Tags         短剧任务
// @Accept       json
// @Produce      json
// @Param        status     query     string  false  "任务状态"
// @Param        page       query     int     false  "页码"
// @Param        page_size  query     int     false  "每页条数"
// @Success      200        {object}  map[string]interface{}  "成功响应"
// @Failure      500        {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/drama/tasks [get]
func (h *Handler) ListTasks(c *gin.Context) {
	var req ListTasksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid query parameters",
			Detail:  err.Error(),
		})
		return
	}

	tasks, total, err := h.dramaService.ListTasks(c.Request.Context(), req.Status, req.Page, req.PageSize)
	if err != nil {
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
			"tasks": toTaskInfoList(tasks),
			"total": total,
		},
	})
}
