package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fyerfyer/citeai/internal/database"
	"github.com/fyerfyer/citeai/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenerationRepository 生成记录仓储接口
// 负责生成请求审计记录的存储和检索
type GenerationRepository interface {
	// Create 创建生成记录
	Create(log *models.GenerationLog) error

	// GetByID 根据ID获取生成记录
	GetByID(id string) (*models.GenerationLog, error)

	// List 列出生成记录，支持分页和筛选
	List(offset, limit int, filters map[string]interface{}) ([]*models.GenerationLog, int64, error)

	// Stats 汇总生成记录
	Stats() (*models.GenerationStats, error)

	// WithContext 创建带有上下文的仓储
	WithContext(ctx context.Context) GenerationRepository
}

// generationRepo 生成记录仓储实现
type generationRepo struct {
	db *gorm.DB // 数据库连接
}

// NewGenerationRepository 使用全局连接创建生成记录仓储
func NewGenerationRepository() GenerationRepository {
	return &generationRepo{
		db: database.MustDB(),
	}
}

// NewGenerationRepositoryWithDB 使用指定的数据库连接创建生成记录仓储
func NewGenerationRepositoryWithDB(db *gorm.DB) GenerationRepository {
	return &generationRepo{
		db: db,
	}
}

// WithContext 创建带有上下文的仓储
func (r *generationRepo) WithContext(ctx context.Context) GenerationRepository {
	return &generationRepo{
		db: r.db.WithContext(ctx),
	}
}

// Create 创建生成记录
func (r *generationRepo) Create(log *models.GenerationLog) error {
	if log == nil {
		return errors.New("generation log cannot be nil")
	}
	if !log.Status.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidGenerationStatus, log.Status)
	}

	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	return r.db.Create(log).Error
}

// GetByID 根据ID获取生成记录
func (r *generationRepo) GetByID(id string) (*models.GenerationLog, error) {
	var log models.GenerationLog
	err := r.db.Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrGenerationNotFound, id)
		}
		return nil, err
	}
	return &log, nil
}

// List 列出生成记录，按创建时间倒序
// 支持的筛选条件：status、model、cache_hit、start_time、end_time
func (r *generationRepo) List(offset, limit int, filters map[string]interface{}) ([]*models.GenerationLog, int64, error) {
	var logs []*models.GenerationLog
	var total int64

	query := r.db.Model(&models.GenerationLog{})

	for key, value := range filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "model":
			query = query.Where("model = ?", value)
		case "cache_hit":
			query = query.Where("cache_hit = ?", value)
		case "start_time":
			query = query.Where("created_at >= ?", value)
		case "end_time":
			query = query.Where("created_at <= ?", value)
		}
	}

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 应用排序和分页
	err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// Stats 汇总生成记录
func (r *generationRepo) Stats() (*models.GenerationStats, error) {
	stats := &models.GenerationStats{
		ByStatus: make(map[models.GenerationStatus]int64),
	}

	var totals struct {
		Total        int64
		CacheHits    int64
		AvgLatencyMs float64
		TotalTokens  int64
	}
	err := r.db.Model(&models.GenerationLog{}).
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN cache_hit THEN 1 ELSE 0 END), 0) AS cache_hits, " +
			"COALESCE(AVG(latency_ms), 0) AS avg_latency_ms, " +
			"COALESCE(SUM(token_count), 0) AS total_tokens").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	stats.Total = totals.Total
	stats.CacheHits = totals.CacheHits
	stats.AvgLatencyMs = totals.AvgLatencyMs
	stats.TotalTokens = totals.TotalTokens

	// 按状态分组统计
	var groups []struct {
		Status models.GenerationStatus
		Count  int64
	}
	err = r.db.Model(&models.GenerationLog{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&groups).Error
	if err != nil {
		return nil, err
	}

	for _, g := range groups {
		stats.ByStatus[g.Status] = g.Count
	}

	return stats, nil
}
