package services

import "errors"

var (
	// ErrAPIKeyMissing 服务端未配置文本生成服务的密钥
	ErrAPIKeyMissing = errors.New("API key not configured on server")

	// ErrProviderUnavailable 文本生成服务调用失败
	ErrProviderUnavailable = errors.New("AI request failed")

	// ErrProviderTimeout 文本生成服务超时
	ErrProviderTimeout = errors.New("AI request timed out")

	// ErrInvalidPaperRequest 生成请求参数不合法
	ErrInvalidPaperRequest = errors.New("invalid paper request")
)
