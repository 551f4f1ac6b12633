package model

import (
	"encoding/json"
	"time"

	"github.com/fyerfyer/citeai/internal/models"
	"github.com/fyerfyer/citeai/internal/paper"
)

// 兼容前端的状态值
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// PaperResponse 论文生成响应
// 保持前端读取的扁平结构，plagiarism_score与originality_score取值相同
type PaperResponse struct {
	Status           string          `json:"status"`            // success
	Sections         *paper.Sections `json:"sections"`          // 按匹配顺序排列的章节
	WordCount        int             `json:"word_count"`        // 总词数
	ReadabilityScore int             `json:"readability_score"` // 可读性分数
	OriginalityScore int             `json:"originality_score"` // 原创度占位分数
	PlagiarismScore  int             `json:"plagiarism_score"`  // 旧字段名
}

// NewPaperResponse 由切分打分结果创建响应
func NewPaperResponse(result *paper.Result) *PaperResponse {
	return &PaperResponse{
		Status:           StatusSuccess,
		Sections:         result.Sections,
		WordCount:        result.WordCount,
		ReadabilityScore: result.ReadabilityScore,
		OriginalityScore: result.OriginalityScore,
		PlagiarismScore:  result.OriginalityScore,
	}
}

// StatusResponse 简单的状态响应，失败时也使用这个结构
type StatusResponse struct {
	Status  string `json:"status"`            // 状态
	Message string `json:"message,omitempty"` // 消息
}

// NewPaperErrorResponse 创建论文接口的错误响应
func NewPaperErrorResponse(message string) *StatusResponse {
	return &StatusResponse{
		Status:  StatusError,
		Message: message,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status           string `json:"status"`             // healthy
	Version          string `json:"version"`            // 服务版本
	APIKeyConfigured bool   `json:"api_key_configured"` // 是否配置了文本生成服务密钥
}

// GenerationInfo 生成记录信息
type GenerationInfo struct {
	ID              string    `json:"id"`               // 记录ID
	TraceID         string    `json:"trace_id"`         // 请求追踪ID
	Topic           string    `json:"topic"`            // 论文主题
	Model           string    `json:"model"`            // 使用的模型
	WordLimit       int       `json:"word_limit"`       // 请求的字数
	Sections        []string  `json:"sections"`         // 请求的章节标题
	MatchedSections int       `json:"matched_sections"` // 成功匹配的章节数量
	Status          string    `json:"status"`           // 状态
	Error           string    `json:"error,omitempty"`  // 错误信息
	CacheHit        bool      `json:"cache_hit"`        // 是否命中缓存
	TokenCount      int       `json:"token_count"`      // 消耗的token数
	LatencyMs       int64     `json:"latency_ms"`       // 处理耗时
	CreatedAt       time.Time `json:"created_at"`       // 创建时间
}

// GenerationListResponse 生成记录列表响应
type GenerationListResponse struct {
	PaginationResponse
	Generations []GenerationInfo `json:"generations"` // 记录列表
}

// ConvertToGenerationInfo 将生成记录转换为响应结构
func ConvertToGenerationInfo(logs []*models.GenerationLog) []GenerationInfo {
	if len(logs) == 0 {
		return []GenerationInfo{}
	}

	infos := make([]GenerationInfo, len(logs))
	for i, l := range logs {
		var sections []string
		// 解析失败时返回空列表
		_ = json.Unmarshal(l.Sections, &sections)
		infos[i] = GenerationInfo{
			ID:              l.ID,
			TraceID:         l.TraceID,
			Topic:           l.Topic,
			Model:           l.Model,
			WordLimit:       l.WordLimit,
			Sections:        sections,
			MatchedSections: l.MatchedSections,
			Status:          string(l.Status),
			Error:           l.Error,
			CacheHit:        l.CacheHit,
			TokenCount:      l.TokenCount,
			LatencyMs:       l.LatencyMs,
			CreatedAt:       l.CreatedAt,
		}
	}
	return infos
}

// PaginationResponse 分页响应信息
type PaginationResponse struct {
	Total    int64 `json:"total"`     // 总记录数
	Page     int   `json:"page"`      // 当前页码
	PageSize int   `json:"page_size"` // 每页大小
}
