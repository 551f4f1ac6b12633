package cache

import (
	"context"
	"time"
)

// NoopCache 关闭缓存时使用的空实现
type NoopCache struct{}

// NewNoopCache 创建空缓存
func NewNoopCache() Cache {
	return NoopCache{}
}

func (NoopCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (NoopCache) Set(context.Context, string, string, time.Duration) error { return nil }

func (NoopCache) Delete(context.Context, string) error { return nil }

func (NoopCache) Clear(context.Context) error { return nil }

func (NoopCache) Close() error { return nil }
