package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/draft"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/utils"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
// 处理器通过 c.Error 记录的最后一个错误转换为 JSON 响应
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, toErrorResponse(c.Errors.Last().Err))
	}
}

// toErrorResponse 将服务层错误映射为 HTTP 状态码
func toErrorResponse(err error) ErrorResponse {
	var (
		apiErr        *APIError
		incomplete    *service.IncompleteError
		commitErr     *service.CommitError
		saveErr       *draft.SaveError
		validationErr *utils.ValidationError
	)

	switch {
	case errors.As(err, &apiErr):
		return ErrorResponse{Code: apiErr.Code, Message: apiErr.Message, Detail: apiErr.Detail}
	case errors.As(err, &incomplete):
		remaining := incomplete.Remaining
		return ErrorResponse{
			Code:      http.StatusUnprocessableEntity,
			Message:   "checklist incomplete",
			Detail:    err.Error(),
			Remaining: &remaining,
		}
	case errors.As(err, &commitErr):
		return ErrorResponse{
			Code:      http.StatusServiceUnavailable,
			Message:   "failed to save submission, draft kept",
			Detail:    err.Error(),
			Retryable: commitErr.Retryable(),
		}
	case errors.As(err, &saveErr):
		return ErrorResponse{
			Code:      http.StatusServiceUnavailable,
			Message:   "failed to save draft",
			Detail:    err.Error(),
			Retryable: saveErr.Retryable(),
		}
	case errors.Is(err, service.ErrTaskNotFound):
		return ErrorResponse{Code: http.StatusNotFound, Message: "task not found", Detail: err.Error()}
	case errors.Is(err, answer.ErrReadOnly):
		return ErrorResponse{Code: http.StatusConflict, Message: "task already completed", Detail: err.Error()}
	case errors.Is(err, service.ErrNoSession), errors.Is(err, service.ErrNoMembership):
		return ErrorResponse{Code: http.StatusForbidden, Message: "no company for user", Detail: err.Error()}
	case errors.As(err, &validationErr),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, answer.ErrKindMismatch),
		errors.Is(err, answer.ErrFieldTypeMismatch),
		errors.Is(err, answer.ErrUnknownField),
		errors.Is(err, answer.ErrInvalidStatus),
		errors.Is(err, answer.ErrIndexOutOfRange):
		return ErrorResponse{Code: http.StatusBadRequest, Message: "invalid request", Detail: err.Error()}
	default:
		return ErrorResponse{Code: http.StatusInternalServerError, Message: "internal server error", Detail: err.Error()}
	}
}
