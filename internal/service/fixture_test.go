package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/draft"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/testutil"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	alice = service.SessionContext{UserID: "user-alice", CompanyID: "company-1"}
	bob   = service.SessionContext{UserID: "user-bob", CompanyID: "company-1"}
)

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (p *recordingPublisher) Publish(e websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []websocket.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]websocket.Event(nil), p.events...)
}

// failingSubmissionRepo 可注入错误的完成记录仓储
type failingSubmissionRepo struct {
	repository.SubmissionRepository
	createErr error
	findErr   error
}

func (r *failingSubmissionRepo) Create(ctx context.Context, m *model.SubmissionModel) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.SubmissionRepository.Create(ctx, m)
}

func (r *failingSubmissionRepo) FindByTaskAndDate(ctx context.Context, companyID, taskID, date string) ([]*model.SubmissionModel, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.SubmissionRepository.FindByTaskAndDate(ctx, companyID, taskID, date)
}

type fixture struct {
	db          *gorm.DB
	kv          *testutil.FakeStore
	drafts      *draft.Store
	submissions *failingSubmissionRepo
	taskLists   repository.TaskListRepository
	auditRepo   repository.AuditLogRepository
	profiles    repository.UserProfileRepository
	catalog     service.CatalogService
	resolver    service.CompletionResolver
	committer   service.SubmissionCommitter
	state       service.TaskStateService
	history     service.HistoryService
	publisher   *recordingPublisher
	hook        *test.Hook
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureIn(t, time.UTC)
}

// newFixtureIn 创建日历使用 loc 时区的测试夹具
func newFixtureIn(t *testing.T, loc *time.Location) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	db := testutil.NewTestDB(t)

	f := &fixture{
		db:          db,
		kv:          testutil.NewFakeStore(),
		submissions: &failingSubmissionRepo{SubmissionRepository: repository.NewSubmissionRepository(db)},
		taskLists:   repository.NewTaskListRepository(db),
		auditRepo:   repository.NewAuditLogRepository(db),
		profiles:    repository.NewUserProfileRepository(db),
		publisher:   &recordingPublisher{},
		hook:        hook,
		now:         time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC),
	}
	f.drafts = draft.NewStore(f.kv, logger)
	f.catalog = service.NewCatalogService(repository.NewTaskDefinitionRepository(db), time.Minute)
	f.resolver = service.NewCompletionResolver(f.submissions, logger)
	audit := service.NewAuditLogService(f.auditRepo)
	f.committer = service.NewSubmissionCommitter(f.submissions, f.drafts, service.CommitterDeps{
		TaskLists: f.taskLists,
		Audit:     audit,
		Publisher: f.publisher,
		Logger:    logger,
		Now:       func() time.Time { return f.now },
	})
	calendar := service.NewCalendar(loc).WithClock(func() time.Time { return f.now })
	f.history = service.NewHistoryService(f.submissions, calendar, logger)
	f.state = service.NewTaskStateService(
		f.catalog, f.drafts, f.resolver, f.committer,
		service.NewProfileService(f.profiles, logger), audit, calendar, logger,
	)

	ctx := context.Background()
	require.NoError(t, f.taskLists.Save(ctx, &model.TaskListModel{
		ID: "list-1", CompanyID: "company-1", Name: "Kitchen", CreatedAt: f.now, UpdatedAt: f.now,
	}))
	require.NoError(t, f.profiles.Save(ctx, &model.UserProfileModel{
		ID: alice.UserID, DisplayName: "Alice Martin", AvatarURL: "https://example.com/a.png", UpdatedAt: f.now,
	}))
	return f
}

func (f *fixture) addTask(t *testing.T, def answer.TaskDefinition) answer.TaskDefinition {
	t.Helper()
	if def.CompanyID == "" {
		def.CompanyID = "company-1"
	}
	require.NoError(t, f.catalog.Save(context.Background(), def))
	return def
}

func (f *fixture) count(t *testing.T, taskID, date string) int64 {
	t.Helper()
	n, err := f.submissions.CountByTaskAndDate(context.Background(), "company-1", taskID, date)
	require.NoError(t, err)
	return n
}

func checklistTask(id string, titles ...string) answer.TaskDefinition {
	items := make([]answer.ChecklistItem, len(titles))
	for i, title := range titles {
		items[i] = answer.ChecklistItem{Title: title}
	}
	return answer.TaskDefinition{
		ID:        id,
		ListID:    "list-1",
		Title:     "Opening checks",
		Kind:      answer.KindChecklist,
		Checklist: items,
	}
}

func detailTask(id string) answer.TaskDefinition {
	return answer.TaskDefinition{
		ID:     id,
		ListID: "list-1",
		Title:  "Goods receipt",
		Kind:   answer.KindDetail,
		Fields: []answer.FieldDescriptor{
			{ID: "temp", Label: "Core temperature", Required: true,
				Config: answer.TemperatureConfig{Min: answer.Float(0), Max: answer.Float(5), Unit: answer.Celsius}},
			{ID: "supplier", Label: "Supplier", Config: answer.TextConfig{}},
			{ID: "weight", Label: "Weight", Config: answer.AmountConfig{Max: answer.Float(2), Unit: answer.Kilogram}},
		},
	}
}

var errBoom = errors.New("backend unavailable")
