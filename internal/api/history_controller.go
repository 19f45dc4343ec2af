package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/utils"
)

// HistoryController 完成记录查询控制器
type HistoryController struct {
	history service.HistoryService
}

// NewHistoryController 创建完成记录查询控制器
func NewHistoryController(history service.HistoryService) *HistoryController {
	return &HistoryController{history: history}
}

// List 分页列出完成记录
// GET /api/v1/submissions?task=&completed_by=&from=&to=&page=&page_size=&order=asc|desc
func (c *HistoryController) List(ctx *gin.Context) {
	filter := service.HistoryFilter{
		TaskID:      ctx.Query("task"),
		CompletedBy: ctx.Query("completed_by"),
		From:        ctx.Query("from"),
		To:          ctx.Query("to"),
	}
	if filter.TaskID != "" {
		if err := utils.ValidateTaskID(filter.TaskID); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid task ID", err.Error())
			return
		}
	}

	var err error
	if filter.Page, err = intQuery(ctx, "page"); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid page", err.Error())
		return
	}
	if filter.PageSize, err = intQuery(ctx, "page_size"); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid page_size", err.Error())
		return
	}
	switch ctx.DefaultQuery("order", "desc") {
	case "desc":
		filter.Desc = true
	case "asc":
	default:
		Error(ctx, http.StatusBadRequest, "invalid order", "order must be asc or desc")
		return
	}

	page, err := c.history.List(ctx.Request.Context(), sessionFrom(ctx), filter)
	if err != nil {
		fail(ctx, err)
		return
	}
	Paginated(ctx, page.Submissions, NewPaginationInfo(page.Page, page.PageSize, page.Total))
}

// intQuery 读取可选的非负整数参数
func intQuery(ctx *gin.Context, key string) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &utils.ValidationError{Code: "INVALID_NUMBER", Message: key + " must be a non-negative integer"}
	}
	return n, nil
}
