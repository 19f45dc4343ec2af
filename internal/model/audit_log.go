package model

import (
	"errors"
	"time"
)

// AuditLogModel 审计日志数据模型
type AuditLogModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	CompanyID string    `gorm:"type:varchar(64);index"`
	UserID    string    `gorm:"type:varchar(64);not null;index"`
	Action    string    `gorm:"type:varchar(64);not null;index"` // submit/save_draft/clear_draft
	TaskID    string    `gorm:"type:varchar(64);not null;index"`
	Date      string    `gorm:"type:varchar(10)"`
	RequestID string    `gorm:"type:varchar(64);index"`
	Details   []byte    `gorm:"type:jsonb"` // 操作详情
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// Validate 验证审计日志模型
func (m *AuditLogModel) Validate() error {
	if m.ID == "" {
		return errors.New("audit log ID is required")
	}
	if m.UserID == "" {
		return errors.New("user ID is required")
	}
	if m.Action == "" {
		return errors.New("action is required")
	}
	if m.TaskID == "" {
		return errors.New("task ID is required")
	}
	return nil
}
