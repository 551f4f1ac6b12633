package model

import "github.com/fyerfyer/citeai/internal/models"

// 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// Offset 计算分页偏移量
func (p *PaginationRequest) Offset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// PaperRequest 论文生成请求
type PaperRequest struct {
	Topic     string   `json:"topic" binding:"required,max=500"`                // 论文主题
	WordLimit int      `json:"word_limit" binding:"required,min=1"`             // 期望字数
	Sections  []string `json:"sections" binding:"omitempty,dive,section_title"` // 章节标题，按顺序排列
}

// ExportSection 待导出的章节
type ExportSection struct {
	Title   string `json:"title" binding:"section_title"` // 章节标题
	Content string `json:"content"`                       // 章节内容
}

// ExportRequest 论文导出请求
type ExportRequest struct {
	Title    string          `json:"title" binding:"max=300"`                              // 论文标题
	Format   string          `json:"format" binding:"required,oneof=markdown md html pdf"` // 导出格式
	Sections []ExportSection `json:"sections" binding:"required,min=1,max=50,dive"`        // 章节列表
}

// GenerationListRequest 生成记录列表请求
type GenerationListRequest struct {
	PaginationRequest
	Status string `form:"status" json:"status" binding:"omitempty,oneof=success failed timeout"` // 状态过滤
	Model  string `form:"model" json:"model" binding:"omitempty"`                                // 模型过滤
}

// Filters 构建仓储查询条件
func (r *GenerationListRequest) Filters() map[string]interface{} {
	filters := make(map[string]interface{})
	if r.Status != "" {
		filters["status"] = models.GenerationStatus(r.Status)
	}
	if r.Model != "" {
		filters["model"] = r.Model
	}
	return filters
}
