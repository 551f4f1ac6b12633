package services

import (
	"fmt"
	"strings"
)

// BuildPrompt 构造学术论文生成提示词
// 要求每个章节标题单独占一行，切分依赖这一点
func BuildPrompt(topic string, wordLimit int, sections []string) string {
	return fmt.Sprintf(
		"Generate a rigorous academic paper on '%s' with approximately %d words. "+
			"Structure the paper with the following clearly labeled sections: %s. "+
			"Maintain a formal academic tone throughout. Include proper citations in APA format "+
			"and reference academic sources where appropriate. Make the paper detail-oriented with factual "+
			"content. Ensure each section starts with its title on a new line.",
		topic, wordLimit, strings.Join(sections, ", "),
	)
}
