package model

import (
	"errors"
	"time"
)

// SubmissionModel 任务完成记录数据模型
// 创建后不再修改
type SubmissionModel struct {
	ID                string    `gorm:"primaryKey;type:varchar(64)"`
	CompanyID         string    `gorm:"type:varchar(64);not null;index"`
	TaskID            string    `gorm:"type:varchar(64);not null;index:idx_submissions_task_date,priority:1"`
	Date              string    `gorm:"type:varchar(10);not null;index:idx_submissions_task_date,priority:2"` // YYYY-MM-DD
	Kind              string    `gorm:"type:varchar(16);not null"`
	CompletedBy       string    `gorm:"type:varchar(64);not null;index"`
	CompletedAt       time.Time `gorm:"not null"`
	Answers           []byte    `gorm:"type:jsonb;not null"` // 原始答案集合
	Entries           []byte    `gorm:"type:jsonb;not null"` // 带标签的答案快照
	CompletedItems    int       `gorm:"not null;default:0"`
	NotCompletedItems int       `gorm:"not null;default:0"`
	Deviations        []byte    `gorm:"type:jsonb"`
	FilledFields      int       `gorm:"not null;default:0"`
	OutOfRangeFields  int       `gorm:"not null;default:0"`
}

// TableName 指定表名
func (SubmissionModel) TableName() string {
	return "submissions"
}

// Validate 验证完成记录模型
func (m *SubmissionModel) Validate() error {
	if m.ID == "" {
		return errors.New("submission ID is required")
	}
	if m.TaskID == "" {
		return errors.New("task ID is required")
	}
	if len(m.Date) != len("2006-01-02") {
		return errors.New("submission date must be YYYY-MM-DD")
	}
	if m.CompletedBy == "" {
		return errors.New("completed by is required")
	}
	if len(m.Answers) == 0 {
		return errors.New("submission answers are required")
	}
	return nil
}
