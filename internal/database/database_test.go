package database_test

import (
	"path/filepath"
	"testing"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/config"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildDSN 测试 PostgreSQL DSN 构建
func TestBuildDSN(t *testing.T) {
	dsn := database.BuildDSN(config.DatabaseConfig{
		Host: "db", Port: 5432, User: "hub", Password: "secret", DBName: "monitoringhub", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=hub password=secret dbname=monitoringhub sslmode=disable", dsn)
}

// TestGetPoolConfig 测试连接池默认值
func TestGetPoolConfig(t *testing.T) {
	pool := database.GetPoolConfig(config.DatabaseConfig{MaxOpenConns: 7})
	assert.Equal(t, 7, pool.MaxOpenConns)
	assert.Equal(t, 10, pool.MaxIdleConns)
	assert.Equal(t, 3600, pool.ConnMaxLifetime)
	assert.Equal(t, 600, pool.ConnMaxIdleTime)
}

// TestOpen_UnsupportedDriver 测试不支持的驱动
func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

// TestMigrate_SQLite 测试 SQLite 迁移可重复执行
func TestMigrate_SQLite(t *testing.T) {
	db, err := database.Connect(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "hub.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Migrate(db))
	assert.True(t, database.CheckHealth(db))

	for _, table := range []string{"companies", "memberships", "task_definitions", "submissions", "kv_entries", "audit_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

// TestCheckHealth_Nil 测试空连接
func TestCheckHealth_Nil(t *testing.T) {
	assert.False(t, database.CheckHealth(nil))
}
