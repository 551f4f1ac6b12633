package paper

import (
	"math"
	"regexp"
	"strings"
)

const (
	// 低于该词数的文本不参与打分
	minScoredWords = 10
	// 目标平均句长（词）
	targetSentenceLength = 17.5
	// 平均句长每偏离一个词扣除的分数
	sentenceLengthPenalty = 2.5
)

var sentenceTerminators = regexp.MustCompile(`[.!?]+`)

// ReadabilityScorer 基于平均句长的可读性评分，范围 0-100
type ReadabilityScorer struct{}

// NewReadabilityScorer 创建可读性评分器
func NewReadabilityScorer() ReadabilityScorer {
	return ReadabilityScorer{}
}

// Raw 返回未取整的分数，已限制在 [0, 100]
func (ReadabilityScorer) Raw(text string) float64 {
	words := CountWords(text)
	if words < minScoredWords {
		return 0
	}

	sentences := len(sentenceTerminators.Split(text, -1))
	if sentences == 0 {
		sentences = 1
	}

	avg := float64(words) / float64(sentences)
	score := 100 - math.Abs(avg-targetSentenceLength)*sentenceLengthPenalty
	return math.Max(0, math.Min(100, score))
}

// Score 返回取整后的分数，采用银行家舍入
func (r ReadabilityScorer) Score(text string) int {
	return int(math.RoundToEven(r.Raw(text)))
}

// CountWords 统计以空白分隔的词数
func CountWords(text string) int {
	return len(strings.Fields(text))
}
