package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/draft"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/metrics"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/websocket"
	"github.com/sirupsen/logrus"
)

// EventPublisher 实时事件发布
type EventPublisher interface {
	Publish(event websocket.Event)
}

// SubmissionCommitter 校验并写入完成记录
//
// 不检查同一天是否已有完成记录,重复提交会产生多条记录,
// 查询时以最早的一条为准。
type SubmissionCommitter interface {
	Submit(ctx context.Context, sess SessionContext, def answer.TaskDefinition, date string, answers answer.AnswerSet) (*Submission, error)
}

// CommitterDeps 提交器的次要依赖,均可为 nil
type CommitterDeps struct {
	TaskLists repository.TaskListRepository
	Audit     AuditLogService
	Publisher EventPublisher
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

type submissionCommitter struct {
	repo      repository.SubmissionRepository
	drafts    *draft.Store
	taskLists repository.TaskListRepository
	audit     AuditLogService
	publisher EventPublisher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewSubmissionCommitter 创建提交器
func NewSubmissionCommitter(repo repository.SubmissionRepository, drafts *draft.Store, deps CommitterDeps) SubmissionCommitter {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &submissionCommitter{
		repo:      repo,
		drafts:    drafts,
		taskLists: deps.TaskLists,
		audit:     deps.Audit,
		publisher: deps.Publisher,
		logger:    logger.WithField("component", "submission_committer"),
		now:       now,
	}
}

// Submit 提交答案
// 检查清单有未设置的检查项时返回 *IncompleteError,不写入任何数据;
// 写入失败时返回 *CommitError,草稿保留。
func (c *submissionCommitter) Submit(ctx context.Context, sess SessionContext, def answer.TaskDefinition, date string, answers answer.AnswerSet) (*Submission, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if answers.Kind != def.Kind {
		return nil, fmt.Errorf("%w: task is %s, answers are %s", answer.ErrKindMismatch, def.Kind, answers.Kind)
	}

	set := answer.Reconcile(def, &answers)

	// 只有检查清单要求全部填写,详情表单允许留空
	if def.Kind == answer.KindChecklist {
		if remaining := set.Remaining(); remaining > 0 {
			metrics.RecordSubmission(string(def.Kind), "incomplete")
			return nil, &IncompleteError{Remaining: remaining}
		}
	}
	if def.Kind == answer.KindPersonal {
		set.Done = true
	}

	entries, summary := buildEntries(def, set)
	sub := &Submission{
		ID:          uuid.New().String(),
		CompanyID:   sess.CompanyID,
		TaskID:      def.ID,
		Date:        date,
		Kind:        def.Kind,
		CompletedBy: sess.UserID,
		CompletedAt: c.now().UTC(),
		Answers:     set,
		Entries:     entries,
		Summary:     summary,
	}

	m, err := sub.toModel()
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	log := c.logger.WithFields(logrus.Fields{
		"company_id": sess.CompanyID,
		"task_id":    def.ID,
		"date":       date,
		"user_id":    sess.UserID,
	})

	if err := c.repo.Create(ctx, m); err != nil {
		metrics.RecordSubmission(string(def.Kind), "failed")
		log.WithError(err).Error("failed to persist submission")
		return nil, &CommitError{Err: err}
	}
	metrics.RecordSubmission(string(def.Kind), "committed")
	log.WithField("submission_id", sub.ID).Info("submission committed")

	if c.drafts != nil {
		c.drafts.ForUser(sess.UserID).Clear(ctx, draft.Key{Kind: def.Kind, TaskID: def.ID})
	}

	c.afterCommit(ctx, sess, def, sub, log)
	return sub, nil
}

// afterCommit 次要写入,失败不影响已写入的完成记录
func (c *submissionCommitter) afterCommit(ctx context.Context, sess SessionContext, def answer.TaskDefinition, sub *Submission, log logrus.FieldLogger) {
	if c.taskLists != nil && def.ListID != "" {
		text := fmt.Sprintf("%s completed", def.Title)
		if err := c.taskLists.UpdateLastActivity(ctx, def.ListID, sub.CompletedAt, sess.UserID, text); err != nil {
			log.WithError(err).WithField("list_id", def.ListID).Warn("failed to update task list activity")
		}
	}

	if c.audit != nil {
		details := map[string]interface{}{
			"submission_id": sub.ID,
			"summary":       sub.Summary,
		}
		if err := c.audit.RecordAction(ctx, sess, ActionSubmit, def.ID, sub.Date, details); err != nil {
			log.WithError(err).Warn("failed to record audit log")
		}
	}

	if c.publisher != nil {
		c.publisher.Publish(websocket.Event{
			Type:      websocket.EventSubmissionCreated,
			CompanyID: sess.CompanyID,
			TaskID:    def.ID,
			Date:      sub.Date,
			Data:      sub,
		})
	}
}
