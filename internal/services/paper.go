package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fyerfyer/citeai/internal/cache"
	"github.com/fyerfyer/citeai/internal/llm"
	"github.com/fyerfyer/citeai/internal/models"
	"github.com/fyerfyer/citeai/internal/paper"
	"github.com/fyerfyer/citeai/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// DefaultSections 默认的论文章节
var DefaultSections = []string{
	"Abstract",
	"Introduction",
	"Literature Review",
	"Methodology",
	"Results",
	"Discussion",
	"Conclusion",
	"References",
}

// PaperRequest 论文生成请求
type PaperRequest struct {
	Topic     string   // 论文主题
	WordLimit int      // 期望字数
	Sections  []string // 章节标题，nil 时使用默认章节，空列表保持为空
	TraceID   string   // 请求追踪ID
}

// PaperResult 论文生成结果
type PaperResult struct {
	*paper.Result
	Model      string // 使用的模型
	CacheHit   bool   // 是否命中生成稿缓存
	TokenCount int    // 消耗的token数
}

// PaperService 论文生成服务
// 负责协调提示词构造、文本生成、生成稿缓存、章节切分与打分
type PaperService struct {
	llm             llm.Client                      // 文本生成客户端，未配置密钥时为nil
	assembler       *paper.Assembler                // 切分与打分
	cache           cache.Cache                     // 生成稿缓存
	cacheTTL        time.Duration                   // 缓存有效期
	repo            repository.GenerationRepository // 生成记录仓储，可选
	logger          *logrus.Logger                  // 日志记录器
	defaultSections []string                        // 默认章节
	generateOpts    []llm.GenerateOption            // 生成参数
}

// PaperOption 论文生成服务配置选项
type PaperOption func(*PaperService)

// NewPaperService 创建论文生成服务实例
// llmClient为nil表示服务端未配置密钥，Generate会返回ErrAPIKeyMissing
func NewPaperService(llmClient llm.Client, assembler *paper.Assembler, c cache.Cache, opts ...PaperOption) *PaperService {
	service := &PaperService{
		llm:             llmClient,
		assembler:       assembler,
		cache:           c,
		cacheTTL:        time.Hour,
		logger:          logrus.StandardLogger(),
		defaultSections: DefaultSections,
	}

	for _, opt := range opts {
		opt(service)
	}

	if service.cache == nil {
		service.cache = cache.NewNoopCache()
	}

	return service
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) PaperOption {
	return func(s *PaperService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCacheTTL 设置生成稿缓存时间
func WithCacheTTL(ttl time.Duration) PaperOption {
	return func(s *PaperService) {
		s.cacheTTL = ttl
	}
}

// WithGenerationRepository 设置生成记录仓储
func WithGenerationRepository(repo repository.GenerationRepository) PaperOption {
	return func(s *PaperService) {
		s.repo = repo
	}
}

// WithDefaultSections 设置默认章节
func WithDefaultSections(sections []string) PaperOption {
	return func(s *PaperService) {
		if len(sections) > 0 {
			s.defaultSections = sections
		}
	}
}

// WithGenerateOptions 设置调用文本生成服务时的参数
func WithGenerateOptions(opts ...llm.GenerateOption) PaperOption {
	return func(s *PaperService) {
		s.generateOpts = append(s.generateOpts, opts...)
	}
}

// ProviderConfigured 是否已配置文本生成服务
func (s *PaperService) ProviderConfigured() bool {
	return s.llm != nil
}

// DefaultSections 返回默认章节的副本
func (s *PaperService) DefaultSections() []string {
	out := make([]string, len(s.defaultSections))
	copy(out, s.defaultSections)
	return out
}

// Generate 生成论文并返回切分和打分结果
func (s *PaperService) Generate(ctx context.Context, req PaperRequest) (*PaperResult, error) {
	start := time.Now()

	if s.llm == nil {
		s.logger.Error("API key not configured on server")
		return nil, ErrAPIKeyMissing
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic cannot be empty", ErrInvalidPaperRequest)
	}
	if req.WordLimit <= 0 {
		return nil, fmt.Errorf("%w: word limit must be positive", ErrInvalidPaperRequest)
	}

	titles := req.Sections
	if titles == nil {
		titles = s.DefaultSections()
	}

	model := s.llm.Name()
	fields := logrus.Fields{
		"trace_id": req.TraceID,
		"model":    model,
		"topic":    topic,
	}
	s.logger.WithFields(fields).Info("Received request to generate paper")

	record := &models.GenerationLog{
		TraceID:   req.TraceID,
		Topic:     topic,
		Model:     model,
		WordLimit: req.WordLimit,
	}
	if raw, err := json.Marshal(titles); err == nil {
		record.Sections = datatypes.JSON(raw)
	}

	text, cacheHit, tokens, err := s.draft(ctx, model, topic, req.WordLimit, titles)
	record.CacheHit = cacheHit
	record.TokenCount = tokens
	if err != nil {
		record.Status = models.GenStatusFailed
		if errors.Is(err, ErrProviderTimeout) {
			record.Status = models.GenStatusTimeout
		}
		record.Error = err.Error()
		record.LatencyMs = time.Since(start).Milliseconds()
		s.record(ctx, record)

		s.logger.WithFields(fields).WithError(err).Error("Paper generation failed")
		return nil, err
	}

	result := s.assembler.Produce(text, titles)

	record.Status = models.GenStatusSuccess
	record.MatchedSections = result.Sections.Len()
	record.LatencyMs = time.Since(start).Milliseconds()
	s.record(ctx, record)

	s.logger.WithFields(fields).WithFields(logrus.Fields{
		"cache_hit":         cacheHit,
		"matched_sections":  result.Sections.Len(),
		"word_count":        result.WordCount,
		"readability_score": result.ReadabilityScore,
	}).Info("Paper generated")

	return &PaperResult{
		Result:     result,
		Model:      model,
		CacheHit:   cacheHit,
		TokenCount: tokens,
	}, nil
}

// draft 获取原始生成稿，优先读取缓存
func (s *PaperService) draft(ctx context.Context, model, topic string, wordLimit int, titles []string) (string, bool, int, error) {
	key := cache.DraftKey(model, topic, wordLimit, titles)

	cached, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read draft cache")
	} else if found {
		s.logger.WithField("key", key).Debug("Draft cache hit")
		return cached, true, 0, nil
	}

	prompt := BuildPrompt(topic, wordLimit, titles)
	s.logger.WithField("model", model).Info("Sending request to text generation provider")

	resp, err := s.llm.Generate(ctx, prompt, s.generateOpts...)
	if err != nil {
		return "", false, 0, providerError(ctx, err)
	}

	if err := s.cache.Set(ctx, key, resp.Text, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to write draft cache")
	}

	return resp.Text, false, resp.TokenCount, nil
}

// record 写入生成记录，失败只记录日志
func (s *PaperService) record(ctx context.Context, log *models.GenerationLog) {
	if s.repo == nil {
		return
	}
	// 请求超时或取消后仍然写入
	if err := s.repo.WithContext(context.WithoutCancel(ctx)).Create(log); err != nil {
		s.logger.WithError(err).Warn("Failed to save generation log")
	}
}

// providerError 将文本生成服务错误映射为服务层错误
func providerError(ctx context.Context, err error) error {
	if llm.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrProviderTimeout, err)
	}

	var llmErr llm.LLMError
	if errors.As(err, &llmErr) {
		return fmt.Errorf("%w: %s", ErrProviderUnavailable, llmErr.Message)
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
