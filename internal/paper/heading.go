package paper

import (
	"fmt"
	"regexp"
)

// Heading 标题行在文本中的位置
type Heading struct {
	Start int // 标题行起始偏移（包含其前面的换行符）
	End   int // 标题行之后的偏移，即章节正文的起点
}

// HeadingMatcher 判断某一行是否为指定章节的标题行
// 标题必须位于行首，后面可以跟冒号、句点或空白，然后是换行或文本结尾，大小写不敏感
type HeadingMatcher struct {
	title   string
	pattern *regexp.Regexp
}

// headingDelimiters 标题后允许的分隔符：冒号、句点以及全部Unicode空白
// Go 的 \s 只包含ASCII空白，这里补上 \v、\x1c-\x1f、U+0085 和 \p{Z}
const headingDelimiters = `[:.\s\v\x1c-\x1f\x{85}\p{Z}]`

// NewHeadingMatcher 为章节标题构建匹配器
func NewHeadingMatcher(title string) (*HeadingMatcher, error) {
	expr := fmt.Sprintf(`(?i)(?:^|\n)(%s%s*?)(?:\n|$)`, regexp.QuoteMeta(title), headingDelimiters)
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile heading pattern for %q: %w", title, err)
	}

	return &HeadingMatcher{
		title:   title,
		pattern: re,
	}, nil
}

// Title 返回匹配器对应的章节标题
func (m *HeadingMatcher) Title() string {
	return m.title
}

// Locate 查找文本中第一个标题行
// 未找到时返回 false，这是正常结果而不是错误
func (m *HeadingMatcher) Locate(text string) (Heading, bool) {
	loc := m.pattern.FindStringIndex(text)
	if loc == nil {
		return Heading{}, false
	}
	return Heading{Start: loc[0], End: loc[1]}, true
}
