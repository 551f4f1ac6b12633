package paper

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultOriginalityMin 原创度占位分数下限（含）
	DefaultOriginalityMin = 1
	// DefaultOriginalityMax 原创度占位分数上限（含）
	DefaultOriginalityMax = 15
)

// RandomSource 原创度分数使用的随机数来源
type RandomSource interface {
	// IntN 返回 [0, n) 内的随机整数
	IntN(n int) int
}

// lockedSource 并发安全的随机数来源
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource 使用给定种子创建并发安全的随机数来源
func NewRandomSource(seed uint64) RandomSource {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Metrics 论文指标
type Metrics struct {
	WordCount        int `json:"word_count"`        // 所有章节的词数之和
	ReadabilityScore int `json:"readability_score"` // 可读性分数 0-100
	// OriginalityScore 仅为占位值，与文本内容无关，不能当作真实的查重结果
	OriginalityScore int `json:"originality_score"`
}

// Result 结构化的论文结果
type Result struct {
	Sections *Sections `json:"sections"`
	Metrics
}

// Assembler 组合章节切分与指标计算
type Assembler struct {
	segmenter *Segmenter
	scorer    ReadabilityScorer
	random    RandomSource
	minScore  int
	maxScore  int
}

// AssemblerOption 组装器配置选项
type AssemblerOption func(*Assembler)

// WithRandomSource 注入随机数来源，测试时可使用固定种子
func WithRandomSource(src RandomSource) AssemblerOption {
	return func(a *Assembler) {
		a.random = src
	}
}

// WithOriginalityRange 设置原创度占位分数范围（闭区间）
func WithOriginalityRange(lo, hi int) AssemblerOption {
	return func(a *Assembler) {
		a.minScore = lo
		a.maxScore = hi
	}
}

// WithSegmenter 设置章节切分器
func WithSegmenter(segmenter *Segmenter) AssemblerOption {
	return func(a *Assembler) {
		a.segmenter = segmenter
	}
}

// NewAssembler 创建结果组装器
func NewAssembler(opts ...AssemblerOption) (*Assembler, error) {
	a := &Assembler{
		scorer:   NewReadabilityScorer(),
		minScore: DefaultOriginalityMin,
		maxScore: DefaultOriginalityMax,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.minScore > a.maxScore {
		return nil, fmt.Errorf("invalid originality range: min %d > max %d", a.minScore, a.maxScore)
	}
	if a.segmenter == nil {
		a.segmenter = NewSegmenter()
	}
	if a.random == nil {
		a.random = NewRandomSource(uint64(time.Now().UnixNano()))
	}

	return a, nil
}

// Produce 切分原始文本并计算指标
func (a *Assembler) Produce(raw string, titles []string) *Result {
	sections := a.segmenter.Segment(raw, titles)
	return &Result{
		Sections: sections,
		Metrics:  a.Assemble(sections),
	}
}

// Assemble 根据切分结果计算论文指标
func (a *Assembler) Assemble(sections *Sections) Metrics {
	values := sections.Values()

	words := 0
	for _, content := range values {
		words += CountWords(content)
	}

	return Metrics{
		WordCount:        words,
		ReadabilityScore: a.scorer.Score(strings.Join(values, " ")),
		OriginalityScore: a.drawOriginality(),
	}
}

// OriginalityRange 返回原创度占位分数的范围
func (a *Assembler) OriginalityRange() (int, int) {
	return a.minScore, a.maxScore
}

func (a *Assembler) drawOriginality() int {
	return a.minScore + a.random.IntN(a.maxScore-a.minScore+1)
}
