package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
)

// 审计动作
const (
	ActionSubmit     = "submit"
	ActionSaveDraft  = "save_draft"
	ActionClearDraft = "clear_draft"
)

// AuditLogService 审计日志服务
type AuditLogService interface {
	RecordAction(ctx context.Context, sess SessionContext, action, taskID, date string, details interface{}) error
}

// auditLogService 审计日志服务实现
type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{
		auditRepo: auditRepo,
	}
}

// RecordAction 记录操作审计日志
func (s *auditLogService) RecordAction(ctx context.Context, sess SessionContext, action, taskID, date string, details interface{}) error {
	var detailsJSON []byte
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = b
	}

	log := &model.AuditLogModel{
		ID:        uuid.New().String(),
		CompanyID: sess.CompanyID,
		UserID:    sess.UserID,
		Action:    action,
		TaskID:    taskID,
		Date:      date,
		RequestID: RequestIDFromContext(ctx),
		Details:   detailsJSON,
		CreatedAt: time.Now(),
	}
	if err := log.Validate(); err != nil {
		return err
	}

	return s.auditRepo.Save(ctx, log)
}
