package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Cache 生成稿缓存接口
// 只缓存文本生成服务返回的原始文本，切分和打分每次请求都会重新执行
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Factory 缓存工厂函数类型
type Factory func(config Config) (Cache, error)

// 注册的缓存实现
var registry = make(map[string]Factory)

// RegisterCache 注册缓存实现
func RegisterCache(name string, factory Factory) {
	registry[name] = factory
}

// NewCache 创建缓存实例
func NewCache(config Config) (Cache, error) {
	if !config.Enable {
		return NewNoopCache(), nil
	}
	if factory, ok := registry[config.Type]; ok {
		return factory(config)
	}
	// 未知类型默认使用内存缓存
	return NewMemoryCache(config)
}

// Config 缓存配置
type Config struct {
	// 是否启用缓存，关闭时使用空实现
	Enable bool
	// 缓存类型: "memory", "redis"
	Type string
	// Redis连接地址 (仅Redis缓存使用)
	RedisAddr string
	// Redis密码 (仅Redis缓存使用)
	RedisPassword string
	// Redis数据库编号 (仅Redis缓存使用)
	RedisDB int
	// Redis键前缀 (仅Redis缓存使用)，Clear只删除带该前缀的键
	KeyPrefix string
	// 默认缓存过期时间
	DefaultTTL time.Duration
	// 自动清理间隔时间 (仅内存缓存使用)
	CleanupInterval time.Duration
}

// DefaultConfig 返回默认缓存配置
func DefaultConfig() Config {
	return Config{
		Enable:          true,
		Type:            "memory",
		KeyPrefix:       "citeai:",
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute * 10,
	}
}

// GenerateCacheKey 生成标准化的缓存键
func GenerateCacheKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

// DraftKey 根据生成请求的参数计算生成稿缓存键
// 标题顺序会影响提示词，因此参与计算
func DraftKey(model, topic string, wordLimit int, sections []string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d", model, strings.TrimSpace(topic), wordLimit)
	for _, s := range sections {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	return GenerateCacheKey("draft", hex.EncodeToString(h.Sum(nil)))
}
