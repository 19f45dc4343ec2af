package service

import (
	"context"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/metrics"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/sirupsen/logrus"
)

// CompletionStatus 完成状态
type CompletionStatus string

const (
	StatusCompleted    CompletionStatus = "completed"
	StatusNotCompleted CompletionStatus = "not_completed"
	// StatusUndetermined 查询失败,调用方按未完成处理
	StatusUndetermined CompletionStatus = "undetermined"
)

// Resolution 完成状态查询结果
type Resolution struct {
	Status     CompletionStatus `json:"status"`
	Submission *Submission      `json:"submission,omitempty"`
}

// Completed 是否已完成
func (r Resolution) Completed() bool {
	return r.Status == StatusCompleted && r.Submission != nil
}

// CompletionResolver 查询任务在某个日历日是否已完成
type CompletionResolver interface {
	// Resolve 查询失败不返回错误,结果为 undetermined
	Resolve(ctx context.Context, sess SessionContext, taskID, date string) Resolution
}

type completionResolver struct {
	repo   repository.SubmissionRepository
	logger logrus.FieldLogger
}

// NewCompletionResolver 创建完成状态查询器
func NewCompletionResolver(repo repository.SubmissionRepository, logger logrus.FieldLogger) CompletionResolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &completionResolver{repo: repo, logger: logger.WithField("component", "completion_resolver")}
}

func (r *completionResolver) Resolve(ctx context.Context, sess SessionContext, taskID, date string) Resolution {
	res := r.resolve(ctx, sess, taskID, date)
	metrics.RecordCompletionResolve(string(res.Status))
	return res
}

func (r *completionResolver) resolve(ctx context.Context, sess SessionContext, taskID, date string) Resolution {
	log := r.logger.WithFields(logrus.Fields{
		"company_id": sess.CompanyID,
		"task_id":    taskID,
		"date":       date,
	})

	rows, err := r.repo.FindByTaskAndDate(ctx, sess.CompanyID, taskID, date)
	if err != nil {
		log.WithError(err).Warn("completion lookup failed")
		return Resolution{Status: StatusUndetermined}
	}
	if len(rows) == 0 {
		return Resolution{Status: StatusNotCompleted}
	}
	if len(rows) > 1 {
		// 按完成时间升序,最早的一条为准
		log.WithField("count", len(rows)).Warn("multiple submissions for task and date, using the earliest")
		metrics.RecordDuplicateSubmissions()
	}

	sub, err := submissionFromModel(rows[0])
	if err != nil {
		log.WithError(err).Warn("failed to decode submission")
		return Resolution{Status: StatusUndetermined}
	}
	return Resolution{Status: StatusCompleted, Submission: sub}
}
