// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 资源错误 (3xxx)
	CodeProjectNotFound ErrorCode = "3001"
	CodeChapterNotFound ErrorCode = "3002"

	// 业务错误 (4xxx)
	CodeInitialGenerationFailed ErrorCode = "4001"
	CodeChapterGenerationFailed ErrorCode = "4002"
	CodeMalformedOutput         ErrorCode = "4003"
	CodeIdentifierMismatch      ErrorCode = "4007"

	// 外部服务错误 (5xxx)
	CodeStorageError       ErrorCode = "5001"
	CodeCacheError         ErrorCode = "5002"
	CodeGatewayError       ErrorCode = "5005"
	CodeGatewayUnavailable ErrorCode = "5006"
	CodeEmptyResponse      ErrorCode = "5007"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码判断相等，使预定义错误可与 errors.Is 配合使用
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if stderrors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// WithDetail 添加详细信息（返回副本，预定义错误不被修改）
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误（返回副本，预定义错误不被修改）
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeIdentifierMismatch:
		return http.StatusBadRequest
	case CodeNotFound, CodeProjectNotFound, CodeChapterNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable, CodeGatewayUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrProjectNotFound = New(CodeProjectNotFound, "project not found")
	ErrChapterNotFound = New(CodeChapterNotFound, "chapter not found")

	ErrInitialGenerationFailed = New(CodeInitialGenerationFailed, "initial story generation failed")
	ErrChapterGenerationFailed = New(CodeChapterGenerationFailed, "chapter content generation failed")
	ErrMalformedOutput         = New(CodeMalformedOutput, "model output is not valid JSON")
	ErrIdentifierMismatch      = New(CodeIdentifierMismatch, "identifier in body does not match path")

	ErrGatewayError       = New(CodeGatewayError, "completion gateway error")
	ErrGatewayUnavailable = New(CodeGatewayUnavailable, "completion gateway unavailable")
	ErrEmptyResponse      = New(CodeEmptyResponse, "completion gateway returned empty response")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// HasCode 检查错误链中是否存在指定错误码
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Unwrap()
	}
	return false
}
