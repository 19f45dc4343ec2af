package draft_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/draft"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/metrics"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checklistDef(n int) answer.TaskDefinition {
	items := make([]answer.ChecklistItem, n)
	for i := range items {
		items[i] = answer.ChecklistItem{Title: "item"}
	}
	return answer.TaskDefinition{ID: "task-001", Title: "Opening checks", Kind: answer.KindChecklist, Checklist: items}
}

func newStore(t *testing.T) (*draft.Store, *testutil.FakeStore, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	kv := testutil.NewFakeStore()
	return draft.NewStore(kv, logger), kv, hook
}

// TestKey_String 测试键格式
func TestKey_String(t *testing.T) {
	key := draft.Key{Kind: answer.KindChecklist, TaskID: "t1"}
	assert.Equal(t, "draft/checklist/t1", key.String())
	assert.NoError(t, key.Validate())

	assert.Error(t, draft.Key{Kind: "bogus", TaskID: "t1"}.Validate())
	assert.Error(t, draft.Key{Kind: answer.KindDetail, TaskID: " "}.Validate())
}

// TestStore_RoundTrip 测试保存后读取得到相同答案
func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)
	def := checklistDef(3)
	key := draft.Key{Kind: answer.KindChecklist, TaskID: def.ID}

	set := answer.Defaults(def)
	require.NoError(t, set.SetStatus(0, answer.StatusCompleted))
	require.NoError(t, set.SetStatus(2, answer.StatusNotCompleted))
	require.NoError(t, set.SetDeviation(2, "sink blocked"))

	require.NoError(t, s.Save(ctx, key, set))

	got := s.Load(ctx, key)
	require.NotNil(t, got)
	assert.Equal(t, set, *got)
}

// TestStore_DetailRoundTrip 测试详情表单字段值的保存与读取
func TestStore_DetailRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)
	def := answer.TaskDefinition{
		ID:    "task-002",
		Title: "Delivery",
		Kind:  answer.KindDetail,
		Fields: []answer.FieldDescriptor{
			{ID: "temp", Label: "Temperature", Config: answer.TemperatureConfig{Unit: answer.Celsius}},
			{ID: "note", Label: "Note", Config: answer.TextConfig{}},
		},
	}
	key := draft.Key{Kind: answer.KindDetail, TaskID: def.ID}

	set := answer.Defaults(def)
	require.NoError(t, set.SetField("temp", answer.TemperatureValue{Temperature: answer.Float(3.5), Unit: answer.Celsius}))

	require.NoError(t, s.Save(ctx, key, set))
	got := s.Load(ctx, key)
	require.NotNil(t, got)
	assert.Equal(t, set, *got)
}

// TestStore_LoadMissing 测试不存在的草稿返回 nil 且不记录警告
func TestStore_LoadMissing(t *testing.T) {
	s, _, hook := newStore(t)
	assert.Nil(t, s.Load(context.Background(), draft.Key{Kind: answer.KindChecklist, TaskID: "none"}))
	assert.Empty(t, hook.AllEntries())
}

// TestStore_LoadMalformed 测试损坏的草稿被丢弃
func TestStore_LoadMalformed(t *testing.T) {
	ctx := context.Background()
	s, kv, hook := newStore(t)
	key := draft.Key{Kind: answer.KindChecklist, TaskID: "t1"}

	require.NoError(t, kv.MemoryStore.Set(ctx, key.String(), []byte("{garbage")))

	assert.Nil(t, s.Load(ctx, key))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

// TestStore_LoadIdentityMismatch 测试内容与键不符的草稿被丢弃
func TestStore_LoadIdentityMismatch(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newStore(t)
	key := draft.Key{Kind: answer.KindChecklist, TaskID: "t1"}

	raw := `{"taskId":"other","kind":"checklist","answerSet":{"kind":"checklist","items":[{"status":"completed"}]},"savedAt":"2024-01-01T00:00:00Z"}`
	require.NoError(t, kv.MemoryStore.Set(ctx, key.String(), []byte(raw)))

	assert.Nil(t, s.Load(ctx, key))
}

// TestStore_LoadStorageError 测试读取失败时返回 nil
func TestStore_LoadStorageError(t *testing.T) {
	s, kv, hook := newStore(t)
	kv.GetErr = errors.New("disk unavailable")

	assert.Nil(t, s.Load(context.Background(), draft.Key{Kind: answer.KindChecklist, TaskID: "t1"}))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "failed to read draft", hook.LastEntry().Message)
}

// TestStore_SaveError 测试写入失败时返回错误
func TestStore_SaveError(t *testing.T) {
	s, kv, _ := newStore(t)
	kv.SetErr = errors.New("quota exceeded")

	err := s.Save(context.Background(), draft.Key{Kind: answer.KindChecklist, TaskID: "t1"}, answer.Defaults(checklistDef(1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.SetErr)

	var saveErr *draft.SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.True(t, saveErr.Retryable())
	assert.Equal(t, "t1", saveErr.Key.TaskID)
}

// TestStore_SoftFailuresAreCounted 测试读取和删除失败虽不返回错误但计入指标
func TestStore_SoftFailuresAreCounted(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newStore(t)
	key := draft.Key{Kind: answer.KindChecklist, TaskID: "t-metrics"}

	kv.GetErr = errors.New("storage offline")
	assert.Nil(t, s.Load(ctx, key))
	kv.DeleteErr = errors.New("storage offline")
	s.Clear(ctx, key)

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `draft_operations_total{operation="load",result="error"}`)
	assert.Contains(t, body, `draft_operations_total{operation="clear",result="error"}`)
}

// TestStore_SaveKindMismatch 测试答案类型与键类型不符时拒绝保存
func TestStore_SaveKindMismatch(t *testing.T) {
	s, kv, _ := newStore(t)

	err := s.Save(context.Background(), draft.Key{Kind: answer.KindDetail, TaskID: "t1"}, answer.Defaults(checklistDef(1)))
	assert.ErrorIs(t, err, answer.ErrKindMismatch)
	assert.Zero(t, kv.Sets)
}

// TestStore_LastWriteWins 测试同键后写覆盖先写
func TestStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)
	def := checklistDef(2)
	key := draft.Key{Kind: answer.KindChecklist, TaskID: def.ID}

	first := answer.Defaults(def)
	require.NoError(t, first.SetStatus(0, answer.StatusCompleted))
	second := answer.Defaults(def)
	require.NoError(t, second.SetStatus(1, answer.StatusNotCompleted))

	require.NoError(t, s.Save(ctx, key, first))
	require.NoError(t, s.Save(ctx, key, second))

	got := s.Load(ctx, key)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)
}

// TestStore_Clear 测试删除草稿
func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s, kv, hook := newStore(t)
	key := draft.Key{Kind: answer.KindChecklist, TaskID: "t1"}

	require.NoError(t, s.Save(ctx, key, answer.Defaults(checklistDef(1))))
	s.Clear(ctx, key)
	assert.Nil(t, s.Load(ctx, key))

	// 删除失败只记录日志
	kv.DeleteErr = errors.New("locked")
	s.Clear(ctx, key)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "failed to clear draft", hook.LastEntry().Message)
}

// TestStore_KindsDoNotCollide 测试相同 ID 的不同类型任务草稿互不影响
func TestStore_KindsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)

	checklist := answer.Defaults(checklistDef(1))
	require.NoError(t, checklist.SetStatus(0, answer.StatusCompleted))
	personal := answer.AnswerSet{Kind: answer.KindPersonal, Done: true}

	ck := draft.Key{Kind: answer.KindChecklist, TaskID: "shared-id"}
	pk := draft.Key{Kind: answer.KindPersonal, TaskID: "shared-id"}
	require.NoError(t, s.Save(ctx, ck, checklist))
	require.NoError(t, s.Save(ctx, pk, personal))

	gotC := s.Load(ctx, ck)
	gotP := s.Load(ctx, pk)
	require.NotNil(t, gotC)
	require.NotNil(t, gotP)
	assert.Equal(t, checklist, *gotC)
	assert.Equal(t, personal, *gotP)

	s.Clear(ctx, pk)
	assert.NotNil(t, s.Load(ctx, ck))
}

// TestStore_ForUser 测试不同用户的草稿互相隔离
func TestStore_ForUser(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)
	key := draft.Key{Kind: answer.KindPersonal, TaskID: "t1"}

	alice := s.ForUser("alice")
	bob := s.ForUser("bob")
	require.NoError(t, alice.Save(ctx, key, answer.AnswerSet{Kind: answer.KindPersonal, Done: true}))

	assert.NotNil(t, alice.Load(ctx, key))
	assert.Nil(t, bob.Load(ctx, key))
	assert.Nil(t, s.Load(ctx, key))
}

// TestStore_SchemaGrowth 测试旧草稿在 schema 变长后补齐
func TestStore_SchemaGrowth(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)
	key := draft.Key{Kind: answer.KindChecklist, TaskID: "task-001"}

	old := answer.Defaults(checklistDef(5))
	for i := 0; i < 5; i++ {
		require.NoError(t, old.SetStatus(i, answer.StatusCompleted))
	}
	require.NoError(t, s.Save(ctx, key, old))

	loaded := s.Load(ctx, key)
	require.NotNil(t, loaded)
	got := answer.Reconcile(checklistDef(7), loaded)

	require.Len(t, got.Items, 7)
	for i := 0; i < 5; i++ {
		assert.Equal(t, answer.StatusCompleted, got.Items[i].Status)
	}
	assert.Equal(t, answer.StatusUnset, got.Items[5].Status)
	assert.Equal(t, answer.StatusUnset, got.Items[6].Status)
}

// TestStore_LoadWithSavedAt 测试读取草稿时返回保存时间
func TestStore_LoadWithSavedAt(t *testing.T) {
	ctx := context.Background()
	base, _, _ := newStore(t)
	at := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	s := base.WithClock(func() time.Time { return at })
	key := draft.Key{Kind: answer.KindPersonal, TaskID: "t1"}

	set, savedAt := s.LoadWithSavedAt(ctx, key)
	assert.Nil(t, set)
	assert.True(t, savedAt.IsZero())

	require.NoError(t, s.Save(ctx, key, answer.AnswerSet{Kind: answer.KindPersonal, Done: true}))
	set, savedAt = s.LoadWithSavedAt(ctx, key)
	require.NotNil(t, set)
	assert.True(t, set.Done)
	assert.True(t, at.Equal(savedAt))
}
