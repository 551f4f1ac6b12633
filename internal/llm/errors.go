package llm

import (
	"errors"
	"fmt"
)

// LLMError 文本生成调用错误类型
type LLMError struct {
	Code       int    // 错误码
	Message    string // 错误消息
	StatusCode int    // 上游HTTP状态码（如果有）
	Err        error  // 原始错误（如果有）
}

// Error 实现error接口
func (e LLMError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm error (code=%d, status=%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm error (code=%d): %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e LLMError) Unwrap() error {
	return e.Err
}

// 错误码常量
const (
	ErrCodeInvalidAPIKey  = 1001 // 无效的API密钥
	ErrCodeInvalidRequest = 1002 // 无效的请求
	ErrCodeNetworkError   = 1003 // 网络连接错误
	ErrCodeRateLimited    = 1004 // 请求频率超限
	ErrCodeServerError    = 1005 // 服务器错误
	ErrCodeTimeout        = 1006 // 请求超时
	ErrCodeEmptyPrompt    = 1007 // 提示词为空
	ErrCodeEmptyResponse  = 1008 // 服务端没有返回内容
)

// 错误消息常量
const (
	ErrMsgInvalidAPIKey  = "invalid API key"
	ErrMsgInvalidRequest = "invalid request parameters"
	ErrMsgRateLimited    = "too many requests, rate limit exceeded"
	ErrMsgServerError    = "server error occurred"
	ErrMsgTimeout        = "request timed out"
	ErrMsgEmptyPrompt    = "prompt cannot be empty"
	ErrMsgNetworkError   = "network connection error"
	ErrMsgEmptyResponse  = "empty response from API"
)

// NewLLMError 创建新的错误
func NewLLMError(code int, message string) LLMError {
	return LLMError{
		Code:    code,
		Message: message,
	}
}

// WrapError 包装普通错误为LLMError
func WrapError(err error, code int) LLMError {
	if err == nil {
		return LLMError{Code: code, Message: "unknown error"}
	}

	// 如果已经是LLMError类型，则直接返回
	var llmErr LLMError
	if errors.As(err, &llmErr) {
		return llmErr
	}

	return LLMError{
		Code:    code,
		Message: err.Error(),
		Err:     err,
	}
}

// IsTimeout 判断错误是否为超时
func IsTimeout(err error) bool {
	var llmErr LLMError
	return errors.As(err, &llmErr) && llmErr.Code == ErrCodeTimeout
}
