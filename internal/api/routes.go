package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/auth"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/kvstore"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	DB         *gorm.DB
	DraftStore kvstore.Store
	Tasks      *TaskController
	History    *HistoryController
	Hub        *websocket.Hub
	Validator  *auth.TokenValidator
	Membership auth.CompanyLookup
	Cache      *auth.MembershipCache
	Logger     logrus.FieldLogger

	RateLimitRPS   float64
	RateLimitBurst int
	// TracingName 非空时启用 otelgin 中间件
	TracingName string
}

// SetupRoutes 配置路由
func SetupRoutes(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if deps.TracingName != "" {
		router.Use(TracingMiddleware(deps.TracingName))
	}
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware(deps.Logger))
	router.Use(ErrorHandlerMiddleware())

	health := NewHealthController(deps.DB, deps.DraftStore)
	router.GET("/health", health.Check)
	router.GET("/metrics", MetricsHandler())

	if deps.Hub != nil && deps.Validator != nil {
		router.GET("/ws/tasks/:id", websocket.Handler(deps.Hub, deps.Validator, deps.Membership, deps.Cache))
	}

	v1 := router.Group("/api/v1")
	if deps.Validator != nil {
		v1.Use(auth.Middleware(deps.Validator, deps.Membership, deps.Cache))
	}
	if deps.RateLimitRPS > 0 {
		v1.Use(RateLimitMiddleware(deps.RateLimitRPS, deps.RateLimitBurst))
	}

	if deps.Tasks != nil {
		tasks := v1.Group("/tasks")
		{
			tasks.GET("", deps.Tasks.List)
			tasks.GET("/:id", deps.Tasks.Get)
			tasks.GET("/:id/state", deps.Tasks.State)
			tasks.GET("/:id/completion", deps.Tasks.Completion)
			tasks.GET("/:id/draft", deps.Tasks.GetDraft)
			tasks.PUT("/:id/draft", deps.Tasks.SaveDraft)
			tasks.DELETE("/:id/draft", deps.Tasks.ClearDraft)
			tasks.POST("/:id/submit", deps.Tasks.Submit)
		}
	}

	if deps.History != nil {
		v1.GET("/submissions", deps.History.List)
	}

	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
