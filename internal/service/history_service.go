package service

import (
	"context"
	"fmt"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/sirupsen/logrus"
)

// MaxPageSize 单页最多返回的完成记录数
const MaxPageSize = 100

// HistoryFilter 完成记录查询条件
type HistoryFilter struct {
	TaskID      string
	CompletedBy string
	From        string // YYYY-MM-DD,为空不限
	To          string
	Page        int
	PageSize    int
	Desc        bool
}

// HistoryPage 分页结果
type HistoryPage struct {
	Submissions []*Submission
	Page        int
	PageSize    int
	Total       int64
}

// HistoryService 完成记录查询服务
type HistoryService interface {
	List(ctx context.Context, sess SessionContext, filter HistoryFilter) (*HistoryPage, error)
}

type historyService struct {
	repo     repository.SubmissionRepository
	calendar *Calendar
	logger   logrus.FieldLogger
}

// NewHistoryService 创建完成记录查询服务
func NewHistoryService(repo repository.SubmissionRepository, calendar *Calendar, logger logrus.FieldLogger) HistoryService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if calendar == nil {
		calendar = NewCalendar(nil)
	}
	return &historyService{
		repo:     repo,
		calendar: calendar,
		logger:   logger.WithField("component", "history_service"),
	}
}

// List 列出当前公司的完成记录
func (s *historyService) List(ctx context.Context, sess SessionContext, filter HistoryFilter) (*HistoryPage, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	q := repository.SubmissionFilter{
		CompanyID: sess.CompanyID,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Desc:      filter.Desc,
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if filter.TaskID != "" {
		q.TaskID = &filter.TaskID
	}
	if filter.CompletedBy != "" {
		q.CompletedBy = &filter.CompletedBy
	}

	// 空日期不限制,非空时必须合法
	for _, bound := range []struct {
		in  string
		out **string
	}{{filter.From, &q.From}, {filter.To, &q.To}} {
		if bound.in == "" {
			continue
		}
		day, err := s.calendar.Resolve(bound.in)
		if err != nil {
			return nil, err
		}
		*bound.out = &day
	}

	models, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	page := &HistoryPage{Page: q.Page, PageSize: q.PageSize, Total: total}
	page.Submissions = make([]*Submission, 0, len(models))
	for _, m := range models {
		sub, err := submissionFromModel(m)
		if err != nil {
			// 无法解析的历史记录跳过,不影响其余结果
			s.logger.WithError(err).WithField("submission_id", m.ID).Warn("skipping unreadable submission")
			continue
		}
		page.Submissions = append(page.Submissions, sub)
	}
	return page, nil
}
