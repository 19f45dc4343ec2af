package container

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/api"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/auth"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/config"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/database"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/draft"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/kvstore"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/metrics"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理数据库、草稿存储、服务和实时推送等应用依赖
type Container struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB

	draftStore kvstore.Store
	drafts     *draft.Store
	hub        *websocket.Hub
	validator  *auth.TokenValidator
	membership service.MembershipResolver
	cache      *auth.MembershipCache

	catalog service.CatalogService
	state   service.TaskStateService
	history service.HistoryService

	collector *metrics.Collector
	started   bool
}

// NewContainer 创建依赖注入容器
// 连接数据库(带重试)并执行迁移,然后初始化其余组件
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	// 默认重试 3 次,初始间隔 1 秒,指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return New(cfg, db, logger)
}

// New 基于已有数据库连接创建容器
func New(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (*Container, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	draftStore, err := NewDraftBackend(cfg.Draft, db, logger)
	if err != nil {
		return nil, err
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		// 仅开发环境允许,生产环境在加载配置时已校验
		logger.Warn("auth.secret is empty, using an insecure development secret")
		secret = "monitoringhub-dev-secret"
	}

	c := &Container{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		draftStore: draftStore,
		drafts:     draft.NewStore(draftStore, logger),
		hub:        websocket.NewHub(logger),
		validator:  auth.NewTokenValidator(secret, cfg.Auth.Issuer),
		membership: service.NewFallbackMembershipResolver(repository.NewMembershipRepository(db), logger),
		cache:      auth.NewMembershipCache(5 * time.Minute),
	}

	audit := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	submissions := repository.NewSubmissionRepository(db)

	c.catalog = service.NewCatalogService(repository.NewTaskDefinitionRepository(db), cfg.App.CatalogCacheTTL)
	resolver := service.NewCompletionResolver(submissions, logger)
	committer := service.NewSubmissionCommitter(submissions, c.drafts, service.CommitterDeps{
		TaskLists: repository.NewTaskListRepository(db),
		Audit:     audit,
		Publisher: c.hub,
		Logger:    logger,
	})
	calendar := service.NewCalendar(loc)
	c.state = service.NewTaskStateService(
		c.catalog, c.drafts, resolver, committer,
		service.NewProfileService(repository.NewUserProfileRepository(db), logger),
		audit, calendar, logger,
	)
	c.history = service.NewHistoryService(submissions, calendar, logger)

	c.collector = metrics.NewCollector(db, c.hub.GetClientCount, 15*time.Second)
	return c, nil
}

// NewDraftBackend 根据配置创建草稿存储后端
func NewDraftBackend(cfg config.DraftConfig, db *gorm.DB, logger logrus.FieldLogger) (kvstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return kvstore.NewMemoryStore(), nil
	case "file":
		store, err := kvstore.NewFileStore(cfg.Dir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open draft directory: %w", err)
		}
		return store, nil
	case "database", "":
		if db == nil {
			return nil, fmt.Errorf("draft backend %q requires a database", "database")
		}
		return kvstore.NewDatabaseStore(repository.NewKVEntryRepository(db)), nil
	default:
		return nil, fmt.Errorf("unknown draft backend %q", cfg.Backend)
	}
}

// Router 创建 HTTP 路由
func (c *Container) Router() *gin.Engine {
	deps := api.RouterDeps{
		DB:             c.db,
		DraftStore:     c.draftStore,
		Tasks:          api.NewTaskController(c.catalog, c.state),
		History:        api.NewHistoryController(c.history),
		Hub:            c.hub,
		Validator:      c.validator,
		Membership:     c.membership,
		Cache:          c.cache,
		Logger:         c.logger,
		RateLimitRPS:   c.cfg.RateLimit.RPS,
		RateLimitBurst: c.cfg.RateLimit.Burst,
	}
	if c.cfg.Tracing.Enabled {
		deps.TracingName = c.cfg.Tracing.ServiceName
	}
	return api.SetupRoutes(deps)
}

// Start 启动后台组件
func (c *Container) Start() {
	if c.started {
		return
	}
	c.started = true
	go c.hub.Run()
	c.collector.Start()
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Validator 获取 Token 验证器
func (c *Container) Validator() *auth.TokenValidator {
	return c.validator
}

// Catalog 获取任务目录服务
func (c *Container) Catalog() service.CatalogService {
	return c.catalog
}

// TaskState 获取任务状态服务
func (c *Container) TaskState() service.TaskStateService {
	return c.state
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.started {
		c.collector.Stop()
		c.hub.Close()
	}
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}
