package utils

import (
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateTaskID 验证任务 ID 格式
func ValidateTaskID(id string) error {
	return validateID(id)
}

// ValidateListID 验证任务列表 ID 格式
func ValidateListID(id string) error {
	return validateID(id)
}

// validateID 只允许字母、数字、连字符、下划线,最长 64 字符
func validateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(id) > 64 {
		return ErrIDTooLong
	}
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}
	return nil
}

// ValidateDateParam 验证日期查询参数的基本形式,空值表示今天
func ValidateDateParam(date string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil
	}
	if len(date) != len("2006-01-02") {
		return ErrInvalidDate
	}
	return nil
}

// 错误定义
var (
	ErrEmptyID         = &ValidationError{Code: "EMPTY_ID", Message: "id cannot be empty"}
	ErrInvalidIDFormat = &ValidationError{Code: "INVALID_ID_FORMAT", Message: "id contains invalid characters"}
	ErrIDTooLong       = &ValidationError{Code: "ID_TOO_LONG", Message: "id exceeds maximum length"}
	ErrInvalidDate     = &ValidationError{Code: "INVALID_DATE", Message: "date must be formatted as YYYY-MM-DD"}
)

// ValidationError 验证错误
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
