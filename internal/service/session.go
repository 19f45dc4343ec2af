package service

import (
	"context"
	"errors"
)

// ErrNoSession 缺少用户或公司信息
var ErrNoSession = errors.New("session context requires user and company")

// SessionContext 当前操作者及其所属公司,显式传入每个服务调用
type SessionContext struct {
	UserID    string
	CompanyID string
}

// Validate 验证会话
func (s SessionContext) Validate() error {
	if s.UserID == "" || s.CompanyID == "" {
		return ErrNoSession
	}
	return nil
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID 在 context 中携带请求 ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext 从 context 获取请求 ID
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
