package model

import (
	"errors"
	"time"
)

// TaskDefinitionModel 任务定义数据模型
type TaskDefinitionModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	CompanyID string    `gorm:"type:varchar(64);not null;index"`
	ListID    string    `gorm:"type:varchar(64);index"` // 所属任务列表
	Title     string    `gorm:"type:varchar(255);not null"`
	Kind      string    `gorm:"type:varchar(16);not null"` // personal/checklist/detail
	Schema    []byte    `gorm:"type:jsonb;not null"`       // 检查项或字段定义
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (TaskDefinitionModel) TableName() string {
	return "task_definitions"
}

// Validate 验证任务定义模型
func (m *TaskDefinitionModel) Validate() error {
	if m.ID == "" {
		return errors.New("task ID is required")
	}
	if m.CompanyID == "" {
		return errors.New("company ID is required")
	}
	if m.Kind == "" {
		return errors.New("task kind is required")
	}
	if len(m.Schema) == 0 {
		return errors.New("task schema is required")
	}
	return nil
}

// TaskListModel 任务列表(提交的父容器),保存最近活动摘要
type TaskListModel struct {
	ID               string     `gorm:"primaryKey;type:varchar(64)"`
	CompanyID        string     `gorm:"type:varchar(64);not null;index"`
	Name             string     `gorm:"type:varchar(255);not null"`
	LastActivityAt   *time.Time `gorm:"index"`
	LastActivityBy   string     `gorm:"type:varchar(64)"`
	LastActivityText string     `gorm:"type:text"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName 指定表名
func (TaskListModel) TableName() string {
	return "task_lists"
}
