package container_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/config"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/container"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/kvstore"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewDraftBackend 测试按配置选择草稿存储后端
func TestNewDraftBackend(t *testing.T) {
	logger, _ := test.NewNullLogger()
	db := testutil.NewTestDB(t)

	store, err := container.NewDraftBackend(config.DraftConfig{Backend: "memory"}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &kvstore.MemoryStore{}, store)

	store, err = container.NewDraftBackend(config.DraftConfig{Backend: "file", Dir: t.TempDir()}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &kvstore.FileStore{}, store)

	store, err = container.NewDraftBackend(config.DraftConfig{Backend: "database"}, db, logger)
	require.NoError(t, err)
	assert.IsType(t, &kvstore.DatabaseStore{}, store)

	_, err = container.NewDraftBackend(config.DraftConfig{Backend: "database"}, nil, logger)
	assert.Error(t, err)

	_, err = container.NewDraftBackend(config.DraftConfig{Backend: "redis"}, db, logger)
	assert.Error(t, err)
}

// TestNewDraftBackend_CorruptFile 测试损坏的草稿文件不阻塞启动
func TestNewDraftBackend_CorruptFile(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kv.json"), []byte("{not json"), 0o644))

	store, err := container.NewDraftBackend(config.DraftConfig{Backend: "file", Dir: dir}, nil, logger)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "draft/u1/T1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

// TestContainer_EndToEnd 测试容器组装的路由可以完成一次提交
func TestContainer_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	db := testutil.NewTestDB(t)

	cfg := config.Default()
	cfg.Auth.Secret = "container-secret"
	cfg.Draft.Backend = "database"
	cfg.App.Timezone = "UTC"
	cfg.RateLimit.RPS = 0

	c, err := container.New(cfg, db, logger)
	require.NoError(t, err)
	c.Start()
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Catalog().Save(context.Background(), answer.TaskDefinition{
		ID: "T1", CompanyID: "company-1", Title: "Wash hands", Kind: answer.KindPersonal,
	}))

	token, err := c.Validator().IssueToken("user-alice", "company-1", time.Hour)
	require.NoError(t, err)

	router := c.Router()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	sub, err := c.TaskState().Submit(context.Background(),
		service.SessionContext{UserID: "user-alice", CompanyID: "company-1"}, "T1", "", answer.AnswerSet{Kind: answer.KindPersonal})
	require.NoError(t, err)
	assert.True(t, sub.Answers.Done)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tasks/T1/completion", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
}

// TestContainer_InvalidTimezone 测试非法时区配置
func TestContainer_InvalidTimezone(t *testing.T) {
	cfg := config.Default()
	cfg.App.Timezone = "Nowhere/Atlantis"
	_, err := container.New(cfg, testutil.NewTestDB(t), nil)
	assert.Error(t, err)
}
