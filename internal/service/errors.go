package service

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
	ErrNoMembership = errors.New("user is not a member of any company")
	ErrInvalidTask  = errors.New("invalid task definition")
)

// IncompleteError 检查清单仍有未设置状态的检查项
type IncompleteError struct {
	Remaining int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("checklist incomplete: %d item(s) remaining", e.Remaining)
}

// CommitError 完成记录写入失败,草稿保留,调用方可重试
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to commit submission: %v", e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Retryable 提交失败总是可以重试
func (e *CommitError) Retryable() bool {
	return true
}
