package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/auth"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/utils"
)

// AnswersRequest 保存草稿和提交的请求体
type AnswersRequest struct {
	Date    string           `json:"date"` // YYYY-MM-DD,为空表示今天
	Answers answer.AnswerSet `json:"answers"`
}

// TaskController 任务控制器
type TaskController struct {
	catalog service.CatalogService
	state   service.TaskStateService
}

// NewTaskController 创建任务控制器
func NewTaskController(catalog service.CatalogService, state service.TaskStateService) *TaskController {
	return &TaskController{
		catalog: catalog,
		state:   state,
	}
}

// sessionFrom 从认证中间件写入的上下文构造会话
func sessionFrom(ctx *gin.Context) service.SessionContext {
	return service.SessionContext{
		UserID:    ctx.GetString(auth.ContextUserID),
		CompanyID: ctx.GetString(auth.ContextCompanyID),
	}
}

// fail 写入错误响应并记录到 gin 上下文
func fail(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	writeError(ctx, toErrorResponse(err))
}

// taskParams 校验路径中的任务 ID 和可选的日期参数
func (c *TaskController) taskParams(ctx *gin.Context) (string, string, bool) {
	id := ctx.Param("id")
	if err := utils.ValidateTaskID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid task ID", err.Error())
		return "", "", false
	}
	date := strings.TrimSpace(ctx.Query("date"))
	if err := utils.ValidateDateParam(date); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid date", err.Error())
		return "", "", false
	}
	return id, date, true
}

// bindAnswers 解析请求体
func (c *TaskController) bindAnswers(ctx *gin.Context) (*AnswersRequest, bool) {
	var req AnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return nil, false
	}
	if !req.Answers.Kind.Valid() {
		Error(ctx, http.StatusBadRequest, "invalid request", "answers.kind is required")
		return nil, false
	}
	if err := utils.ValidateDateParam(req.Date); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid date", err.Error())
		return nil, false
	}
	return &req, true
}

// List 列出当前公司的任务定义
// GET /api/v1/tasks?kind=checklist&list=<listID>
func (c *TaskController) List(ctx *gin.Context) {
	filter := &repository.TaskFilter{}
	if kind := ctx.Query("kind"); kind != "" {
		if !answer.Kind(kind).Valid() {
			Error(ctx, http.StatusBadRequest, "invalid kind", kind)
			return
		}
		filter.Kind = &kind
	}
	if listID := ctx.Query("list"); listID != "" {
		if err := utils.ValidateListID(listID); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid list ID", err.Error())
			return
		}
		filter.ListID = &listID
	}

	defs, err := c.catalog.List(ctx.Request.Context(), sessionFrom(ctx), filter)
	if err != nil {
		fail(ctx, err)
		return
	}
	Success(ctx, defs)
}

// Get 获取任务定义
// GET /api/v1/tasks/:id
func (c *TaskController) Get(ctx *gin.Context) {
	id, _, ok := c.taskParams(ctx)
	if !ok {
		return
	}

	def, err := c.catalog.Get(ctx.Request.Context(), sessionFrom(ctx), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	Success(ctx, def)
}

// State 获取任务在某日的表单状态
// GET /api/v1/tasks/:id/state?date=YYYY-MM-DD
func (c *TaskController) State(ctx *gin.Context) {
	id, date, ok := c.taskParams(ctx)
	if !ok {
		return
	}

	state, err := c.state.Load(ctx.Request.Context(), sessionFrom(ctx), id, date)
	if err != nil {
		fail(ctx, err)
		return
	}
	Success(ctx, state)
}

// Completion 查询任务在某日的完成情况
// GET /api/v1/tasks/:id/completion?date=YYYY-MM-DD
func (c *TaskController) Completion(ctx *gin.Context) {
	id, date, ok := c.taskParams(ctx)
	if !ok {
		return
	}

	completion, err := c.state.Completion(ctx.Request.Context(), sessionFrom(ctx), id, date)
	if err != nil {
		fail(ctx, err)
		return
	}
	Success(ctx, completion)
}

// GetDraft 读取草稿,没有草稿时 data 为 null
// GET /api/v1/tasks/:id/draft
func (c *TaskController) GetDraft(ctx *gin.Context) {
	id, _, ok := c.taskParams(ctx)
	if !ok {
		return
	}

	set, err := c.state.LoadDraft(ctx.Request.Context(), sessionFrom(ctx), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	Success(ctx, set)
}

// SaveDraft 保存草稿
// PUT /api/v1/tasks/:id/draft
func (c *TaskController) SaveDraft(ctx *gin.Context) {
	id, _, ok := c.taskParams(ctx)
	if !ok {
		return
	}
	req, ok := c.bindAnswers(ctx)
	if !ok {
		return
	}

	set, err := c.state.SaveDraft(ctx.Request.Context(), sessionFrom(ctx), id, req.Date, req.Answers)
	if err != nil {
		fail(ctx, err)
		return
	}
	Success(ctx, set)
}

// ClearDraft 删除草稿
// DELETE /api/v1/tasks/:id/draft
func (c *TaskController) ClearDraft(ctx *gin.Context) {
	id, _, ok := c.taskParams(ctx)
	if !ok {
		return
	}

	if err := c.state.ClearDraft(ctx.Request.Context(), sessionFrom(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	Success(ctx, nil)
}

// Submit 提交任务完成记录
// POST /api/v1/tasks/:id/submit
func (c *TaskController) Submit(ctx *gin.Context) {
	id, _, ok := c.taskParams(ctx)
	if !ok {
		return
	}
	req, ok := c.bindAnswers(ctx)
	if !ok {
		return
	}

	sub, err := c.state.Submit(ctx.Request.Context(), sessionFrom(ctx), id, req.Date, req.Answers)
	if err != nil {
		fail(ctx, err)
		return
	}
	Created(ctx, sub)
}
