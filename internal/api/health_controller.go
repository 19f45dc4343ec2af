package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/kvstore"
	"gorm.io/gorm"
)

const healthProbeKey = "health/probe"

// HealthController 健康检查控制器
type HealthController struct {
	db     *gorm.DB
	drafts kvstore.Store
}

// NewHealthController 创建健康检查控制器,drafts 为草稿存储后端
func NewHealthController(db *gorm.DB, drafts kvstore.Store) *HealthController {
	return &HealthController{db: db, drafts: drafts}
}

// Check 健康检查
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	record := func(name string, configured bool, check func(context.Context) error) {
		if !configured {
			checks[name] = "not configured"
			return
		}
		if err := check(ctx.Request.Context()); err != nil {
			status = "unhealthy"
			checks[name] = "unhealthy: " + err.Error()
			return
		}
		checks[name] = "healthy"
	}

	record("database", c.db != nil, c.checkDatabase)
	record("draft_store", c.drafts != nil, c.checkDraftStore)

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	ctx.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// checkDatabase 检查数据库连接
func (c *HealthController) checkDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

// checkDraftStore 读取一个探测键,不存在不算失败
func (c *HealthController) checkDraftStore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.drafts.Get(ctx, healthProbeKey)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return err
	}
	return nil
}
