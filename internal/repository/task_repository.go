package repository

import (
	"context"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"gorm.io/gorm"
)

// TaskDefinitionRepository 任务定义仓储接口
type TaskDefinitionRepository interface {
	Save(ctx context.Context, task *model.TaskDefinitionModel) error
	FindByID(ctx context.Context, id string) (*model.TaskDefinitionModel, error)
	FindByCompany(ctx context.Context, companyID string, filter *TaskFilter) ([]*model.TaskDefinitionModel, error)
}

// TaskFilter 任务查询过滤器
type TaskFilter struct {
	Kind   *string
	ListID *string
}

// taskDefinitionRepository 任务定义仓储实现
type taskDefinitionRepository struct {
	db *gorm.DB
}

// NewTaskDefinitionRepository 创建任务定义仓储
func NewTaskDefinitionRepository(db *gorm.DB) TaskDefinitionRepository {
	return &taskDefinitionRepository{db: db}
}

// Save 保存任务定义
func (r *taskDefinitionRepository) Save(ctx context.Context, task *model.TaskDefinitionModel) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// FindByID 根据 ID 查找任务定义
func (r *taskDefinitionRepository) FindByID(ctx context.Context, id string) (*model.TaskDefinitionModel, error) {
	var task model.TaskDefinitionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByCompany 查找公司下的任务定义
func (r *taskDefinitionRepository) FindByCompany(ctx context.Context, companyID string, filter *TaskFilter) ([]*model.TaskDefinitionModel, error) {
	var tasks []*model.TaskDefinitionModel
	query := r.db.WithContext(ctx).Model(&model.TaskDefinitionModel{}).Where("company_id = ?", companyID)

	if filter != nil {
		if filter.Kind != nil {
			query = query.Where("kind = ?", *filter.Kind)
		}
		if filter.ListID != nil {
			query = query.Where("list_id = ?", *filter.ListID)
		}
	}

	err := query.Order("title ASC").Find(&tasks).Error
	return tasks, err
}
