package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/config"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取连接池配置,未设置的字段使用默认值
func GetPoolConfig(cfg config.DatabaseConfig) *PoolConfig {
	pool := &PoolConfig{
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
	if pool.MaxIdleConns == 0 {
		pool.MaxIdleConns = 10
	}
	if pool.MaxOpenConns == 0 {
		pool.MaxOpenConns = 100
	}
	if pool.ConnMaxLifetime == 0 {
		pool.ConnMaxLifetime = 3600
	}
	if pool.ConnMaxIdleTime == 0 {
		pool.ConnMaxIdleTime = 600
	}
	return pool
}

// Open 根据驱动类型创建 gorm 连接
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch cfg.Driver {
	case "", "postgres":
		return gorm.Open(postgres.Open(BuildDSN(cfg)), gormCfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// Connect 连接数据库并配置连接池
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	pool := GetPoolConfig(cfg)
	if cfg.Driver == "sqlite" {
		// SQLite 单写者
		pool.MaxOpenConns = 1
		pool.MaxIdleConns = 1
	}

	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb,手动建表并使用 TEXT
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		if err := db.AutoMigrate(
			&model.CompanyModel{},
			&model.CompanyUserModel{},
			&model.MembershipModel{},
			&model.UserProfileModel{},
			&model.TaskListModel{},
			&model.TaskDefinitionModel{},
			&model.SubmissionModel{},
			&model.KVEntryModel{},
			&model.AuditLogModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

var sqliteTables = []struct {
	name string
	ddl  string
}{
	{"companies", `
		CREATE TABLE IF NOT EXISTS companies (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			created_at DATETIME NOT NULL
		)`},
	{"company_users", `
		CREATE TABLE IF NOT EXISTS company_users (
			company_id VARCHAR(64) NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			role VARCHAR(32),
			created_at DATETIME NOT NULL,
			PRIMARY KEY (company_id, user_id)
		)`},
	{"memberships", `
		CREATE TABLE IF NOT EXISTS memberships (
			user_id VARCHAR(64) PRIMARY KEY,
			company_id VARCHAR(64) NOT NULL,
			updated_at DATETIME NOT NULL
		)`},
	{"user_profiles", `
		CREATE TABLE IF NOT EXISTS user_profiles (
			id VARCHAR(64) PRIMARY KEY,
			display_name VARCHAR(255),
			avatar_url TEXT,
			email VARCHAR(255),
			updated_at DATETIME NOT NULL
		)`},
	{"task_lists", `
		CREATE TABLE IF NOT EXISTS task_lists (
			id VARCHAR(64) PRIMARY KEY,
			company_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			last_activity_at DATETIME,
			last_activity_by VARCHAR(64),
			last_activity_text TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`},
	{"task_definitions", `
		CREATE TABLE IF NOT EXISTS task_definitions (
			id VARCHAR(64) PRIMARY KEY,
			company_id VARCHAR(64) NOT NULL,
			list_id VARCHAR(64),
			title VARCHAR(255) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			schema TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`},
	{"submissions", `
		CREATE TABLE IF NOT EXISTS submissions (
			id VARCHAR(64) PRIMARY KEY,
			company_id VARCHAR(64) NOT NULL,
			task_id VARCHAR(64) NOT NULL,
			date VARCHAR(10) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			completed_by VARCHAR(64) NOT NULL,
			completed_at DATETIME NOT NULL,
			answers TEXT NOT NULL,
			entries TEXT NOT NULL,
			completed_items INTEGER NOT NULL DEFAULT 0,
			not_completed_items INTEGER NOT NULL DEFAULT 0,
			deviations TEXT,
			filled_fields INTEGER NOT NULL DEFAULT 0,
			out_of_range_fields INTEGER NOT NULL DEFAULT 0
		)`},
	{"kv_entries", `
		CREATE TABLE IF NOT EXISTS kv_entries (
			entry_key VARCHAR(255) PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at DATETIME NOT NULL
		)`},
	{"audit_logs", `
		CREATE TABLE IF NOT EXISTS audit_logs (
			id VARCHAR(64) PRIMARY KEY,
			company_id VARCHAR(64),
			user_id VARCHAR(64) NOT NULL,
			action VARCHAR(64) NOT NULL,
			task_id VARCHAR(64) NOT NULL,
			date VARCHAR(10),
			request_id VARCHAR(64),
			details TEXT,
			created_at DATETIME NOT NULL
		)`},
}

// createSQLiteTables 为 SQLite 手动创建表
func createSQLiteTables(db *gorm.DB) error {
	for _, t := range sqliteTables {
		if err := db.Exec(t.ddl).Error; err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}
	return nil
}

var indexes = []struct {
	name string
	sql  string
}{
	{"idx_submissions_task_date", "CREATE INDEX IF NOT EXISTS idx_submissions_task_date ON submissions(task_id, date)"},
	{"idx_submissions_company_id", "CREATE INDEX IF NOT EXISTS idx_submissions_company_id ON submissions(company_id)"},
	{"idx_submissions_completed_by", "CREATE INDEX IF NOT EXISTS idx_submissions_completed_by ON submissions(completed_by)"},
	{"idx_task_definitions_company_id", "CREATE INDEX IF NOT EXISTS idx_task_definitions_company_id ON task_definitions(company_id)"},
	{"idx_task_definitions_list_id", "CREATE INDEX IF NOT EXISTS idx_task_definitions_list_id ON task_definitions(list_id)"},
	{"idx_task_lists_company_id", "CREATE INDEX IF NOT EXISTS idx_task_lists_company_id ON task_lists(company_id)"},
	{"idx_company_users_user_id", "CREATE INDEX IF NOT EXISTS idx_company_users_user_id ON company_users(user_id)"},
	{"idx_memberships_company_id", "CREATE INDEX IF NOT EXISTS idx_memberships_company_id ON memberships(company_id)"},
	{"idx_audit_task_id", "CREATE INDEX IF NOT EXISTS idx_audit_task_id ON audit_logs(task_id)"},
	{"idx_audit_user_id", "CREATE INDEX IF NOT EXISTS idx_audit_user_id ON audit_logs(user_id)"},
	{"idx_audit_created_at", "CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_logs(created_at)"},
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", idx.name, err)
		}
	}

	// PostgreSQL 特定的 GIN 索引
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_task_definitions_schema_gin ON task_definitions USING GIN (schema)").Error; err != nil {
			return fmt.Errorf("failed to create idx_task_definitions_schema_gin: %w", err)
		}
	}

	return nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}
