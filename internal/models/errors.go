package models

import "errors"

var (
	// ErrGenerationNotFound 生成记录不存在错误
	ErrGenerationNotFound = errors.New("generation not found")

	// ErrInvalidGenerationStatus 无效的生成状态错误
	ErrInvalidGenerationStatus = errors.New("invalid generation status")
)
