package paper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceSource 按顺序返回预设值的随机数来源
type sequenceSource struct {
	values []int
	calls  int
}

func (s *sequenceSource) IntN(n int) int {
	v := s.values[s.calls%len(s.values)] % n
	s.calls++
	return v
}

const samplePaper = `Abstract
This paper studies how short sentences affect the perceived quality of generated academic prose in practice.

Introduction:
Generated prose tends to vary in sentence length. We measure that variation and report a simple score.

Results
Scores cluster near the target length. Outliers are rare and easy to explain.
`

// TestAssemblerProduce 测试完整的结果组装
func TestAssemblerProduce(t *testing.T) {
	a, err := NewAssembler(WithRandomSource(&sequenceSource{values: []int{4}}))
	require.NoError(t, err)

	titles := []string{"Abstract", "Introduction", "Results", "Conclusion"}
	result := a.Produce(samplePaper, titles)

	assert.Equal(t, []string{"abstract", "introduction", "results"}, result.Sections.Keys())

	words := 0
	for _, v := range result.Sections.Values() {
		words += CountWords(v)
	}
	assert.Equal(t, words, result.WordCount)
	assert.Equal(t, 5, result.OriginalityScore, "min 1 + drawn 4")

	joined := ""
	for i, v := range result.Sections.Values() {
		if i > 0 {
			joined += " "
		}
		joined += v
	}
	assert.Equal(t, NewReadabilityScorer().Score(joined), result.ReadabilityScore)
}

// TestAssemblerDeterministicSegmentation 同样的输入得到同样的切分和分数
func TestAssemblerDeterministicSegmentation(t *testing.T) {
	a, err := NewAssembler(WithRandomSource(&sequenceSource{values: []int{0, 7, 13}}))
	require.NoError(t, err)

	titles := []string{"Abstract", "Introduction", "Results"}
	first := a.Produce(samplePaper, titles)
	second := a.Produce(samplePaper, titles)

	assert.Equal(t, first.Sections.List(), second.Sections.List())
	assert.Equal(t, first.WordCount, second.WordCount)
	assert.Equal(t, first.ReadabilityScore, second.ReadabilityScore)
	// 原创度分数与内容无关，每次调用单独抽取
	assert.NotEqual(t, first.OriginalityScore, second.OriginalityScore)
}

// TestAssemblerOriginalityRange 原创度分数始终位于配置的区间内
func TestAssemblerOriginalityRange(t *testing.T) {
	a, err := NewAssembler(WithRandomSource(NewRandomSource(42)))
	require.NoError(t, err)

	lo, hi := a.OriginalityRange()
	assert.Equal(t, DefaultOriginalityMin, lo)
	assert.Equal(t, DefaultOriginalityMax, hi)

	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		score := a.Assemble(NewSections()).OriginalityScore
		assert.GreaterOrEqual(t, score, lo)
		assert.LessOrEqual(t, score, hi)
		seen[score] = true
	}
	assert.Len(t, seen, hi-lo+1, "every value in the range should eventually be drawn")

	custom, err := NewAssembler(WithOriginalityRange(70, 70))
	require.NoError(t, err)
	assert.Equal(t, 70, custom.Assemble(NewSections()).OriginalityScore)
}

// TestAssemblerInvalidRange 非法区间
func TestAssemblerInvalidRange(t *testing.T) {
	_, err := NewAssembler(WithOriginalityRange(10, 1))
	assert.Error(t, err)
}

// TestAssembleEmpty 没有任何章节时
func TestAssembleEmpty(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	result := a.Produce("no headings at all", []string{"Abstract"})
	assert.Equal(t, 0, result.Sections.Len())
	assert.Equal(t, 0, result.WordCount)
	assert.Equal(t, 0, result.ReadabilityScore)
}
