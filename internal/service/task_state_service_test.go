package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/draft"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults 测试没有草稿也未完成时使用默认值
func TestLoad_Defaults(t *testing.T) {
	f := newFixture(t)
	def := f.addTask(t, checklistTask("T1", "A", "B"))

	state, err := f.state.Load(context.Background(), alice, "T1", "")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-05", state.Date)
	assert.Equal(t, answer.Defaults(def), state.Answers)
	assert.Equal(t, answer.SourceDefaults, state.Source)
	assert.Equal(t, service.StatusNotCompleted, state.Status)
	assert.True(t, state.Editable)
	assert.False(t, state.Undetermined)
	assert.Nil(t, state.DraftSavedAt)
	assert.False(t, state.HasUnsavedChanges)
}

// TestLoad_DraftOverDefaults 测试未完成时草稿优先,旧草稿按新 schema 补齐
func TestLoad_DraftOverDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := checklistTask("T1", "A", "B", "C", "D", "E")
	f.addTask(t, old)
	set := answer.Defaults(old)
	require.NoError(t, set.SetStatus(0, answer.StatusCompleted))
	require.NoError(t, set.SetStatus(1, answer.StatusCompleted))
	_, err := f.state.SaveDraft(ctx, alice, "T1", "", set)
	require.NoError(t, err)

	// schema 在下次加载前变为 7 项
	f.addTask(t, checklistTask("T1", "A", "B", "C", "D", "E", "F", "G"))

	state, err := f.state.Load(ctx, alice, "T1", "")
	require.NoError(t, err)
	assert.Equal(t, answer.SourceDraft, state.Source)
	assert.True(t, state.HasDraft)
	require.NotNil(t, state.DraftSavedAt)
	assert.False(t, state.DraftSavedAt.IsZero())
	assert.True(t, state.HasUnsavedChanges)
	require.Len(t, state.Answers.Items, 7)
	assert.Equal(t, answer.StatusCompleted, state.Answers.Items[1].Status)
	assert.Equal(t, answer.StatusUnset, state.Answers.Items[6].Status)

	// 其他用户看不到该草稿
	other, err := f.state.Load(ctx, bob, "T1", "")
	require.NoError(t, err)
	assert.Equal(t, answer.SourceDefaults, other.Source)
}

// TestLoad_SubmissionOverDraft 测试已完成时使用完成记录,草稿不被删除
func TestLoad_SubmissionOverDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	def := f.addTask(t, checklistTask("T1", "A"))

	// bob 完成,alice 仍有草稿
	draftSet := answer.Defaults(def)
	require.NoError(t, draftSet.SetStatus(0, answer.StatusNotCompleted))
	require.NoError(t, f.drafts.ForUser(alice.UserID).Save(ctx, draft.Key{Kind: def.Kind, TaskID: def.ID}, draftSet))
	sub := completeChecklist(t, f, def, bob, "2024-01-05")

	state, err := f.state.Load(ctx, alice, "T1", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, answer.SourceSubmission, state.Source)
	assert.True(t, state.Completed)
	assert.False(t, state.Editable)
	assert.True(t, state.HasDraft)
	assert.Equal(t, sub.Answers, state.Answers)
	require.NotNil(t, state.CompletedBy)
	assert.Equal(t, service.UnknownUserName, state.CompletedBy.Name)

	assert.NotNil(t, f.drafts.ForUser(alice.UserID).Load(ctx, draft.Key{Kind: def.Kind, TaskID: def.ID}))
}

// TestLoad_ResolveFailureStaysEditable 测试查询失败时表单仍可编辑
func TestLoad_ResolveFailureStaysEditable(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, checklistTask("T1", "A"))
	f.submissions.findErr = errBoom

	state, err := f.state.Load(context.Background(), alice, "T1", "")
	require.NoError(t, err)
	assert.Equal(t, service.StatusUndetermined, state.Status)
	assert.True(t, state.Undetermined)
	assert.True(t, state.Editable)
	assert.False(t, state.Completed)
}

// TestLoad_UnknownTask 测试任务不存在或属于其他公司
func TestLoad_UnknownTask(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, answer.TaskDefinition{ID: "T9", CompanyID: "company-2", Title: "Other", Kind: answer.KindPersonal})

	_, err := f.state.Load(context.Background(), alice, "missing", "")
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	_, err = f.state.Load(context.Background(), alice, "T9", "")
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

// TestLoad_InvalidDate 测试非法日期
func TestLoad_InvalidDate(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, checklistTask("T1", "A"))

	_, err := f.state.Load(context.Background(), alice, "T1", "05/01/2024")
	assert.ErrorIs(t, err, service.ErrInvalidDate)
}

// TestCompletion_Profile 测试完成人信息补充
func TestCompletion_Profile(t *testing.T) {
	f := newFixture(t)
	def := f.addTask(t, checklistTask("T1", "A"))
	completeChecklist(t, f, def, alice, "2024-01-05")

	c, err := f.state.Completion(context.Background(), bob, "T1", "2024-01-05")
	require.NoError(t, err)
	require.True(t, c.Completed())
	require.NotNil(t, c.CompletedBy)
	assert.Equal(t, "Alice Martin", c.CompletedBy.Name)
	assert.Equal(t, "https://example.com/a.png", c.CompletedBy.AvatarURL)

	none, err := f.state.Completion(context.Background(), bob, "T1", "2024-01-04")
	require.NoError(t, err)
	assert.Nil(t, none.CompletedBy)
}

// TestSaveDraft_RejectedWhenCompleted 测试已完成的任务不能保存草稿
func TestSaveDraft_RejectedWhenCompleted(t *testing.T) {
	f := newFixture(t)
	def := f.addTask(t, checklistTask("T1", "A"))
	completeChecklist(t, f, def, bob, "2024-01-05")

	_, err := f.state.SaveDraft(context.Background(), alice, "T1", "2024-01-05", answer.Defaults(def))
	assert.ErrorIs(t, err, answer.ErrReadOnly)
}

// TestDraftLifecycle 测试草稿读写删除及审计
func TestDraftLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	def := f.addTask(t, detailTask("T2"))

	got, err := f.state.LoadDraft(ctx, alice, "T2")
	require.NoError(t, err)
	assert.Nil(t, got)

	set := answer.Defaults(def)
	require.NoError(t, set.SetField("supplier", answer.TextValue{Text: "Acme"}))
	// 多余的键在保存时被丢弃
	set.Fields["legacy"] = answer.FieldAnswer{Value: answer.TextValue{Text: "old"}}

	saved, err := f.state.SaveDraft(ctx, alice, "T2", "", set)
	require.NoError(t, err)
	assert.NotContains(t, saved.Fields, "legacy")

	got, err = f.state.LoadDraft(ctx, alice, "T2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.Fields["supplier"], got.Fields["supplier"])
	assert.Len(t, got.Fields, 3)

	require.NoError(t, f.state.ClearDraft(ctx, alice, "T2"))
	got, err = f.state.LoadDraft(ctx, alice, "T2")
	require.NoError(t, err)
	assert.Nil(t, got)

	logs, err := f.auditRepo.FindByUserID(ctx, alice.UserID)
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.ElementsMatch(t, []string{service.ActionSaveDraft, service.ActionClearDraft}, actions)
}

// TestStateSubmit_UsesToday 测试未指定日期时按今天提交
func TestStateSubmit_UsesToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	def := f.addTask(t, answer.TaskDefinition{ID: "T3", Title: "Wash hands", Kind: answer.KindPersonal})

	sub, err := f.state.Submit(ctx, alice, def.ID, "", answer.AnswerSet{Kind: answer.KindPersonal})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", sub.Date)

	state, err := f.state.Load(ctx, alice, def.ID, "")
	require.NoError(t, err)
	assert.True(t, state.Completed)
}

// TestCalendar_LocalDay 测试日期按配置时区计算
func TestCalendar_LocalDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 本地 23:50,UTC 已是次日 04:50
	at := time.Date(2024, 1, 5, 23, 50, 0, 0, loc)
	c := service.NewCalendar(loc).WithClock(func() time.Time { return at })

	assert.Equal(t, "2024-01-05", c.Today())
	assert.Equal(t, "2024-01-06", service.DateBucket(at, time.UTC))

	got, err := c.Resolve(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	_, err = c.Resolve("2023-02-29")
	assert.ErrorIs(t, err, service.ErrInvalidDate)
}

// TestStateSubmit_LocalDayBucket 测试本地深夜提交归入本地当天
func TestStateSubmit_LocalDayBucket(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	f := newFixtureIn(t, loc)
	f.now = time.Date(2024, 1, 5, 23, 50, 0, 0, loc)
	ctx := context.Background()
	def := f.addTask(t, answer.TaskDefinition{ID: "T3", Title: "Wash hands", Kind: answer.KindPersonal})

	sub, err := f.state.Submit(ctx, alice, def.ID, "", answer.AnswerSet{Kind: answer.KindPersonal})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", sub.Date)
	assert.Equal(t, "2024-01-06", sub.CompletedAt.UTC().Format(service.DateLayout))

	state, err := f.state.Load(ctx, alice, def.ID, "2024-01-05")
	require.NoError(t, err)
	assert.True(t, state.Completed)

	state, err = f.state.Load(ctx, alice, def.ID, "2024-01-06")
	require.NoError(t, err)
	assert.False(t, state.Completed)
}
