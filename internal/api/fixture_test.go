package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/api"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/auth"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/draft"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// flakySubmissionRepo 可注入写入失败的完成记录仓储
type flakySubmissionRepo struct {
	repository.SubmissionRepository
	createErr error
}

func (r *flakySubmissionRepo) Create(ctx context.Context, m *model.SubmissionModel) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.SubmissionRepository.Create(ctx, m)
}

type apiFixture struct {
	router      *gin.Engine
	validator   *auth.TokenValidator
	submissions *flakySubmissionRepo
	kv          *testutil.FakeStore
}

func newAPIFixture(t *testing.T, rps float64) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, _ := test.NewNullLogger()
	db := testutil.NewTestDB(t)
	now := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)

	f := &apiFixture{
		validator:   auth.NewTokenValidator(testSecret, "monitoringhub"),
		submissions: &flakySubmissionRepo{SubmissionRepository: repository.NewSubmissionRepository(db)},
		kv:          testutil.NewFakeStore(),
	}

	catalog := service.NewCatalogService(repository.NewTaskDefinitionRepository(db), time.Minute)
	drafts := draft.NewStore(f.kv, logger)
	audit := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	resolver := service.NewCompletionResolver(f.submissions, logger)
	committer := service.NewSubmissionCommitter(f.submissions, drafts, service.CommitterDeps{
		TaskLists: repository.NewTaskListRepository(db),
		Audit:     audit,
		Logger:    logger,
		Now:       func() time.Time { return now },
	})
	calendar := service.NewCalendar(time.UTC).WithClock(func() time.Time { return now })
	state := service.NewTaskStateService(catalog, drafts, resolver, committer,
		service.NewProfileService(repository.NewUserProfileRepository(db), logger), audit, calendar, logger)

	ctx := context.Background()
	require.NoError(t, catalog.Save(ctx, answer.TaskDefinition{
		ID: "T1", CompanyID: "company-1", Title: "Opening checks", Kind: answer.KindChecklist,
		Checklist: []answer.ChecklistItem{{Title: "Fridge"}, {Title: "Freezer"}},
	}))
	require.NoError(t, catalog.Save(ctx, answer.TaskDefinition{
		ID: "T2", CompanyID: "company-1", Title: "Wash hands", Kind: answer.KindPersonal,
	}))
	require.NoError(t, catalog.Save(ctx, answer.TaskDefinition{
		ID: "T9", CompanyID: "company-2", Title: "Other", Kind: answer.KindPersonal,
	}))

	membership := repository.NewMembershipRepository(db)
	require.NoError(t, membership.SaveIndex(ctx, "user-dave", "company-1"))

	f.router = api.SetupRoutes(api.RouterDeps{
		DB:             db,
		DraftStore:     f.kv,
		Tasks:          api.NewTaskController(catalog, state),
		History:        api.NewHistoryController(service.NewHistoryService(f.submissions, calendar, logger)),
		Validator:      f.validator,
		Membership:     service.NewFallbackMembershipResolver(membership, logger),
		Cache:          auth.NewMembershipCache(time.Minute),
		Logger:         logger,
		RateLimitRPS:   rps,
		RateLimitBurst: 1,
	})
	return f
}

func (f *apiFixture) token(t *testing.T, userID, companyID string) string {
	t.Helper()
	token, err := f.validator.IssueToken(userID, companyID, time.Hour)
	require.NoError(t, err)
	return token
}

// do 发送请求并返回响应,body 为 nil 时不带请求体
func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// envelope 统一响应,Data 延迟解析
type envelope struct {
	Code       int                 `json:"code"`
	Message    string              `json:"message"`
	Data       json.RawMessage     `json:"data"`
	Detail     string              `json:"detail"`
	Pagination *api.PaginationInfo `json:"pagination"`
	Remaining  *int                `json:"remaining"`
	Retryable  bool                `json:"retryable"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}
