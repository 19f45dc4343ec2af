package repository

import (
	"context"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"gorm.io/gorm"
)

// TaskListRepository 任务列表仓储接口
type TaskListRepository interface {
	Save(ctx context.Context, list *model.TaskListModel) error
	FindByID(ctx context.Context, id string) (*model.TaskListModel, error)
	UpdateLastActivity(ctx context.Context, id string, at time.Time, by string, text string) error
}

// taskListRepository 任务列表仓储实现
type taskListRepository struct {
	db *gorm.DB
}

// NewTaskListRepository 创建任务列表仓储
func NewTaskListRepository(db *gorm.DB) TaskListRepository {
	return &taskListRepository{db: db}
}

// Save 保存任务列表
func (r *taskListRepository) Save(ctx context.Context, list *model.TaskListModel) error {
	return r.db.WithContext(ctx).Save(list).Error
}

// FindByID 根据 ID 查找任务列表
func (r *taskListRepository) FindByID(ctx context.Context, id string) (*model.TaskListModel, error) {
	var list model.TaskListModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateLastActivity 更新最近活动摘要
func (r *taskListRepository) UpdateLastActivity(ctx context.Context, id string, at time.Time, by string, text string) error {
	result := r.db.WithContext(ctx).Model(&model.TaskListModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_activity_at":   at,
			"last_activity_by":   by,
			"last_activity_text": text,
			"updated_at":         at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
