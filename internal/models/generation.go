package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenerationStatus 生成请求的结果状态
type GenerationStatus string

const (
	// GenStatusSuccess 生成并切分成功
	GenStatusSuccess GenerationStatus = "success"
	// GenStatusFailed 文本生成服务调用失败
	GenStatusFailed GenerationStatus = "failed"
	// GenStatusTimeout 文本生成服务超时
	GenStatusTimeout GenerationStatus = "timeout"
)

// Valid 判断状态是否合法
func (s GenerationStatus) Valid() bool {
	switch s {
	case GenStatusSuccess, GenStatusFailed, GenStatusTimeout:
		return true
	}
	return false
}

// GenerationLog 生成请求审计记录
// 只记录请求参数和运行指标，不保存生成的正文
type GenerationLog struct {
	ID              string           `gorm:"primaryKey;size:36"`     // 记录ID
	TraceID         string           `gorm:"size:64;index"`          // 请求追踪ID
	Topic           string           `gorm:"type:text;not null"`     // 论文主题
	Model           string           `gorm:"size:100;index"`         // 使用的模型
	WordLimit       int              `gorm:"not null"`               // 请求的字数
	Sections        datatypes.JSON   `gorm:"type:json"`              // 请求的章节标题列表
	MatchedSections int              `gorm:"not null;default:0"`     // 成功匹配的章节数量
	Status          GenerationStatus `gorm:"size:20;not null;index"` // 状态
	Error           string           `gorm:"type:text"`              // 错误信息
	CacheHit        bool             `gorm:"not null;default:false"` // 是否命中生成稿缓存
	TokenCount      int              `gorm:"not null;default:0"`     // 消耗的token数
	LatencyMs       int64            `gorm:"not null;default:0"`     // 处理耗时（毫秒）
	CreatedAt       time.Time        `gorm:"not null;index"`         // 创建时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (g *GenerationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	return nil
}

// TableName 明确指定表名
func (GenerationLog) TableName() string {
	return "generation_logs"
}

// GenerationStats 生成记录统计
type GenerationStats struct {
	Total        int64                      `json:"total"`          // 总请求数
	ByStatus     map[GenerationStatus]int64 `json:"by_status"`      // 各状态数量
	CacheHits    int64                      `json:"cache_hits"`     // 缓存命中次数
	AvgLatencyMs float64                    `json:"avg_latency_ms"` // 平均耗时
	TotalTokens  int64                      `json:"total_tokens"`   // 累计token
}
