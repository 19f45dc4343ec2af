package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/draft"
	"github.com/sirupsen/logrus"
)

// TaskState 任务在某个日历日的表单状态
type TaskState struct {
	Definition        answer.TaskDefinition `json:"definition"`
	Date              string                `json:"date"`
	Answers           answer.AnswerSet      `json:"answers"`
	Source            answer.Source         `json:"source"`
	Status            CompletionStatus      `json:"status"`
	Completed         bool                  `json:"completed"`
	Undetermined      bool                  `json:"undetermined"` // 完成状态查询失败,表单保持可编辑
	Editable          bool                  `json:"editable"`
	HasDraft          bool                  `json:"has_draft"`
	DraftSavedAt      *time.Time            `json:"draft_saved_at,omitempty"`
	HasUnsavedChanges bool                  `json:"has_unsaved_changes"`
	Submission        *Submission           `json:"submission,omitempty"`
	CompletedBy       *Profile              `json:"completed_by,omitempty"`
}

// Completion 完成状态及完成人信息
type Completion struct {
	Resolution
	CompletedBy *Profile `json:"completed_by,omitempty"`
}

// TaskStateService 组合草稿、完成状态和任务定义
type TaskStateService interface {
	Load(ctx context.Context, sess SessionContext, taskID, date string) (*TaskState, error)
	Completion(ctx context.Context, sess SessionContext, taskID, date string) (*Completion, error)
	LoadDraft(ctx context.Context, sess SessionContext, taskID string) (*answer.AnswerSet, error)
	SaveDraft(ctx context.Context, sess SessionContext, taskID, date string, answers answer.AnswerSet) (*answer.AnswerSet, error)
	ClearDraft(ctx context.Context, sess SessionContext, taskID string) error
	Submit(ctx context.Context, sess SessionContext, taskID, date string, answers answer.AnswerSet) (*Submission, error)
}

type taskStateService struct {
	catalog   CatalogService
	drafts    *draft.Store
	resolver  CompletionResolver
	committer SubmissionCommitter
	profiles  ProfileService
	audit     AuditLogService
	calendar  *Calendar
	logger    logrus.FieldLogger
}

// NewTaskStateService 创建任务状态服务,audit 可为 nil
func NewTaskStateService(
	catalog CatalogService,
	drafts *draft.Store,
	resolver CompletionResolver,
	committer SubmissionCommitter,
	profiles ProfileService,
	audit AuditLogService,
	calendar *Calendar,
	logger logrus.FieldLogger,
) TaskStateService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if calendar == nil {
		calendar = NewCalendar(nil)
	}
	return &taskStateService{
		catalog:   catalog,
		drafts:    drafts,
		resolver:  resolver,
		committer: committer,
		profiles:  profiles,
		audit:     audit,
		calendar:  calendar,
		logger:    logger.WithField("component", "task_state_service"),
	}
}

// Load 并发读取草稿和完成状态,按 完成记录 > 草稿 > 默认值 合成表单状态
func (s *taskStateService) Load(ctx context.Context, sess SessionContext, taskID, date string) (*TaskState, error) {
	def, err := s.catalog.Get(ctx, sess, taskID)
	if err != nil {
		return nil, err
	}
	day, err := s.calendar.Resolve(date)
	if err != nil {
		return nil, err
	}

	session := answer.NewSession(*def)
	key := draft.Key{Kind: def.Kind, TaskID: def.ID}

	var res Resolution
	var savedAt time.Time
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var d *answer.AnswerSet
		d, savedAt = s.drafts.ForUser(sess.UserID).LoadWithSavedAt(ctx, key)
		session.ApplyDraft(d)
	}()
	go func() {
		defer wg.Done()
		res = s.resolver.Resolve(ctx, sess, def.ID, day)
		switch {
		case res.Completed():
			session.ApplyCompletion(&res.Submission.Answers)
		case res.Status == StatusUndetermined:
			session.ApplyResolveFailure()
		default:
			session.ApplyCompletion(nil)
		}
	}()
	wg.Wait()

	state := &TaskState{
		Definition:        *def,
		Date:              day,
		Answers:           session.Answers(),
		Source:            session.Source(),
		Status:            res.Status,
		Completed:         session.Completed(),
		Undetermined:      session.Undetermined(),
		Editable:          session.Editable(),
		HasDraft:          session.HasDraft(),
		HasUnsavedChanges: session.HasUnsavedChanges(),
		Submission:        res.Submission,
	}
	if session.HasDraft() {
		state.DraftSavedAt = &savedAt
	}
	if res.Completed() {
		p := s.profiles.Display(ctx, res.Submission.CompletedBy)
		state.CompletedBy = &p
	}
	return state, nil
}

// Completion 查询完成状态并补充完成人信息
func (s *taskStateService) Completion(ctx context.Context, sess SessionContext, taskID, date string) (*Completion, error) {
	def, err := s.catalog.Get(ctx, sess, taskID)
	if err != nil {
		return nil, err
	}
	day, err := s.calendar.Resolve(date)
	if err != nil {
		return nil, err
	}

	out := &Completion{Resolution: s.resolver.Resolve(ctx, sess, def.ID, day)}
	if out.Completed() {
		p := s.profiles.Display(ctx, out.Submission.CompletedBy)
		out.CompletedBy = &p
	}
	return out, nil
}

// LoadDraft 读取草稿并按当前任务定义对齐,没有草稿时返回 nil
func (s *taskStateService) LoadDraft(ctx context.Context, sess SessionContext, taskID string) (*answer.AnswerSet, error) {
	def, err := s.catalog.Get(ctx, sess, taskID)
	if err != nil {
		return nil, err
	}
	d := s.drafts.ForUser(sess.UserID).Load(ctx, draft.Key{Kind: def.Kind, TaskID: def.ID})
	if d == nil {
		return nil, nil
	}
	set := answer.Reconcile(*def, d)
	return &set, nil
}

// SaveDraft 保存草稿,当天已完成的任务不再接受草稿
func (s *taskStateService) SaveDraft(ctx context.Context, sess SessionContext, taskID, date string, answers answer.AnswerSet) (*answer.AnswerSet, error) {
	def, err := s.catalog.Get(ctx, sess, taskID)
	if err != nil {
		return nil, err
	}
	if answers.Kind != def.Kind {
		return nil, fmt.Errorf("%w: task is %s, answers are %s", answer.ErrKindMismatch, def.Kind, answers.Kind)
	}
	day, err := s.calendar.Resolve(date)
	if err != nil {
		return nil, err
	}
	if s.resolver.Resolve(ctx, sess, def.ID, day).Completed() {
		return nil, answer.ErrReadOnly
	}

	set := answer.Reconcile(*def, &answers)
	if err := s.drafts.ForUser(sess.UserID).Save(ctx, draft.Key{Kind: def.Kind, TaskID: def.ID}, set); err != nil {
		return nil, err
	}

	s.record(ctx, sess, ActionSaveDraft, def.ID, day)
	return &set, nil
}

// ClearDraft 删除草稿
func (s *taskStateService) ClearDraft(ctx context.Context, sess SessionContext, taskID string) error {
	def, err := s.catalog.Get(ctx, sess, taskID)
	if err != nil {
		return err
	}
	s.drafts.ForUser(sess.UserID).Clear(ctx, draft.Key{Kind: def.Kind, TaskID: def.ID})

	s.record(ctx, sess, ActionClearDraft, def.ID, "")
	return nil
}

// Submit 提交答案
func (s *taskStateService) Submit(ctx context.Context, sess SessionContext, taskID, date string, answers answer.AnswerSet) (*Submission, error) {
	def, err := s.catalog.Get(ctx, sess, taskID)
	if err != nil {
		return nil, err
	}
	day, err := s.calendar.Resolve(date)
	if err != nil {
		return nil, err
	}
	return s.committer.Submit(ctx, sess, *def, day, answers)
}

func (s *taskStateService) record(ctx context.Context, sess SessionContext, action, taskID, date string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordAction(ctx, sess, action, taskID, date, nil); err != nil {
		s.logger.WithError(err).WithField("action", action).Warn("failed to record audit log")
	}
}
