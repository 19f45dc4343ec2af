package repository

import (
	"context"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"gorm.io/gorm"
)

// SubmissionRepository 完成记录仓储接口
// 只支持创建和查询,完成记录不可修改
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.SubmissionModel) error
	FindByTaskAndDate(ctx context.Context, companyID, taskID, date string) ([]*model.SubmissionModel, error)
	CountByTaskAndDate(ctx context.Context, companyID, taskID, date string) (int64, error)
	List(ctx context.Context, filter SubmissionFilter) ([]*model.SubmissionModel, int64, error)
}

// SubmissionFilter 完成记录查询过滤器,日期为 YYYY-MM-DD 闭区间
type SubmissionFilter struct {
	CompanyID   string
	TaskID      *string
	CompletedBy *string
	From        *string
	To          *string
	Page        int
	PageSize    int
	Desc        bool
}

// submissionRepository 完成记录仓储实现
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository 创建完成记录仓储
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create 创建完成记录
func (r *submissionRepository) Create(ctx context.Context, submission *model.SubmissionModel) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// FindByTaskAndDate 根据任务和日期查找完成记录,按完成时间升序
func (r *submissionRepository) FindByTaskAndDate(ctx context.Context, companyID, taskID, date string) ([]*model.SubmissionModel, error) {
	var submissions []*model.SubmissionModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND task_id = ? AND date = ?", companyID, taskID, date).
		Order("completed_at ASC").
		Find(&submissions).Error
	return submissions, err
}

// CountByTaskAndDate 统计公司任务在某日的完成记录数
func (r *submissionRepository) CountByTaskAndDate(ctx context.Context, companyID, taskID, date string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SubmissionModel{}).
		Where("company_id = ? AND task_id = ? AND date = ?", companyID, taskID, date).
		Count(&count).Error
	return count, err
}

// List 分页查询公司的完成记录,按日期和完成时间排序
func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]*model.SubmissionModel, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.SubmissionModel{}).Where("company_id = ?", filter.CompanyID)

	if filter.TaskID != nil {
		query = query.Where("task_id = ?", *filter.TaskID)
	}
	if filter.CompletedBy != nil {
		query = query.Where("completed_by = ?", *filter.CompletedBy)
	}
	// 日期固定为 YYYY-MM-DD,字符串比较即日期比较
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "date ASC, completed_at ASC"
	if filter.Desc {
		order = "date DESC, completed_at DESC"
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var submissions []*model.SubmissionModel
	err := query.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&submissions).Error
	return submissions, total, err
}
