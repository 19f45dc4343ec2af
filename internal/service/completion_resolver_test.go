package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeChecklist(t *testing.T, f *fixture, def answer.TaskDefinition, sess service.SessionContext, date string) *service.Submission {
	t.Helper()
	set := answer.Defaults(def)
	for i := range set.Items {
		require.NoError(t, set.SetStatus(i, answer.StatusCompleted))
	}
	sub, err := f.committer.Submit(context.Background(), sess, def, date, set)
	require.NoError(t, err)
	return sub
}

// TestResolve_StableForDate 测试同一天多次查询返回同一条记录,其他日期未完成
func TestResolve_StableForDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	def := f.addTask(t, checklistTask("T1", "Fridge"))
	sub := completeChecklist(t, f, def, alice, "2024-01-05")

	for i := 0; i < 3; i++ {
		res := f.resolver.Resolve(ctx, alice, "T1", "2024-01-05")
		require.True(t, res.Completed())
		assert.Equal(t, sub.ID, res.Submission.ID)
		assert.Equal(t, sub.Summary.CompletedItems, res.Submission.Summary.CompletedItems)
		assert.Len(t, res.Submission.Entries, len(sub.Entries))
	}

	next := f.resolver.Resolve(ctx, alice, "T1", "2024-01-06")
	assert.Equal(t, service.StatusNotCompleted, next.Status)
	assert.Nil(t, next.Submission)
}

// TestResolve_OtherCompanyIgnored 测试其他公司的完成记录不可见
func TestResolve_OtherCompanyIgnored(t *testing.T) {
	f := newFixture(t)
	def := f.addTask(t, checklistTask("T1", "Fridge"))
	completeChecklist(t, f, def, alice, "2024-01-05")

	other := service.SessionContext{UserID: "user-x", CompanyID: "company-2"}
	res := f.resolver.Resolve(context.Background(), other, "T1", "2024-01-05")
	assert.Equal(t, service.StatusNotCompleted, res.Status)
}

// TestResolve_EarliestWins 测试存在多条记录时以最早的为准并记录警告
func TestResolve_EarliestWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	def := f.addTask(t, checklistTask("T1", "Fridge"))

	base := f.now
	f.now = base.Add(time.Minute)
	later := completeChecklist(t, f, def, bob, "2024-01-05")
	f.now = base
	earlier := completeChecklist(t, f, def, alice, "2024-01-05")
	require.NotEqual(t, later.ID, earlier.ID)

	res := f.resolver.Resolve(ctx, alice, "T1", "2024-01-05")
	require.True(t, res.Completed())
	assert.Equal(t, earlier.ID, res.Submission.ID)
	assert.Equal(t, "multiple submissions for task and date, using the earliest", f.hook.LastEntry().Message)
}

// TestResolve_LookupFailure 测试查询失败时结果为未确定
func TestResolve_LookupFailure(t *testing.T) {
	f := newFixture(t)
	f.submissions.findErr = errBoom

	res := f.resolver.Resolve(context.Background(), alice, "T1", "2024-01-05")
	assert.Equal(t, service.StatusUndetermined, res.Status)
	assert.False(t, res.Completed())
}

// TestResolve_CorruptRecord 测试无法解析的记录视为未确定
func TestResolve_CorruptRecord(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&model.SubmissionModel{
		ID: "s1", CompanyID: "company-1", TaskID: "T1", Date: "2024-01-05", Kind: "checklist",
		CompletedBy: alice.UserID, CompletedAt: f.now, Answers: []byte("{broken"), Entries: []byte("[]"),
	}).Error)

	res := f.resolver.Resolve(context.Background(), alice, "T1", "2024-01-05")
	assert.Equal(t, service.StatusUndetermined, res.Status)
}
