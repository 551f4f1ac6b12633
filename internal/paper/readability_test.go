package paper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func repeatWords(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

// TestReadabilityScore 测试可读性评分
func TestReadabilityScore(t *testing.T) {
	scorer := NewReadabilityScorer()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t ", 0},
		{"fewer than ten words", "One two three. Four five six!", 0},
		// 35 个词，句末一个句点，切分得到两段，平均句长正好 17.5
		{"on target", repeatWords(35) + ".", 100},
		// 20 个词且没有句末标点：按一句计算，20 -> 93.75
		{"no terminators", repeatWords(20), 94},
		// 41 个词两段，平均 20.5，原始分 92.5，向偶数舍入
		{"half rounds to even", repeatWords(41) + ".", 92},
		// 连续的句末标点视为一个分隔
		{"terminator runs", "a b c d e!?! f g h i j.", 65},
		{"clamped at zero", repeatWords(100), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.Score(tt.text))
		})
	}
}

// TestReadabilityRange 任意输入的分数都在 [0, 100]
func TestReadabilityRange(t *testing.T) {
	scorer := NewReadabilityScorer()
	inputs := []string{
		"",
		"!!!",
		"...... ...... ...... ...... ...... ...... ...... ...... ...... ......",
		repeatWords(500),
		strings.Repeat("Short one. ", 50),
		strings.Repeat("This sentence has exactly eight words in it. ", 20),
	}

	for _, in := range inputs {
		score := scorer.Score(in)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

// TestCountWords 测试词数统计
func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 3, CountWords("  one\ttwo\nthree  "))
}
