package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/fyerfyer/citeai/api/model"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 定义应用中的错误类型常量
const (
	ErrorTypeValidation = "VALIDATION_ERROR" // 输入验证错误
	ErrorTypeNotFound   = "NOT_FOUND_ERROR"  // 资源不存在错误
	ErrorTypeInternal   = "INTERNAL_ERROR"   // 内部服务器错误
)

// AppError 应用错误结构体
type AppError struct {
	Type    string // 错误类型
	Message string // 错误消息
	Details string // 详细错误信息
	Code    int    // 错误代码
}

// Error 实现error接口的方法
func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError 创建输入验证错误
func NewValidationError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(message string) AppError {
	return AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

// NewInternalError 创建内部服务器错误
func NewInternalError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusInternalServerError,
	}
}

// ErrorMiddleware 统一错误处理中间件
// 处理器通过 HandleError 登记错误，这里统一转换为 model.Response 并中止请求；
// panic 同样被转换为 500 响应
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestFields(c).WithFields(logrus.Fields{
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("Recovered from panic")

				message := "An unexpected error occurred"
				if gin.IsDebugging() {
					message = fmt.Sprintf("panic: %v", r)
				}
				abortWithError(c, http.StatusInternalServerError, message)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var (
			appErr    AppError
			appErrPtr *AppError
		)
		switch {
		case errors.As(err, &appErrPtr) && appErrPtr != nil:
			appErr = *appErrPtr
		case errors.As(err, &appErr):
		default:
			appErr = NewInternalError("Internal server error", err.Error())
		}

		entry := requestFields(c).WithFields(logrus.Fields{
			"error_type": appErr.Type,
			"status":     appErr.Code,
		})
		if appErr.Details != "" {
			entry = entry.WithField("details", appErr.Details)
		}
		if appErr.Code >= http.StatusInternalServerError {
			entry.Error(appErr.Message)
		} else {
			entry.Warn(appErr.Message)
		}

		message := appErr.Message
		if appErr.Type == ErrorTypeValidation && appErr.Details != "" {
			message = fmt.Sprintf("%s: %s", appErr.Message, appErr.Details)
		} else if appErr.Type == ErrorTypeInternal && gin.IsDebugging() && appErr.Details != "" {
			message = appErr.Details
		}
		abortWithError(c, appErr.Code, message)
	}
}

// abortWithError 写入带追踪ID的错误响应并中止请求
func abortWithError(c *gin.Context, status int, message string) {
	resp := model.NewErrorResponse(status, message)
	resp.TraceID = c.GetString("TraceID")
	c.AbortWithStatusJSON(status, resp)
}

// requestFields 当前请求的公共日志字段
func requestFields(c *gin.Context) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		FieldTraceID: c.GetString("TraceID"),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	})
}

// HandleError 登记处理器中的错误，由 ErrorMiddleware 统一输出
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
}
