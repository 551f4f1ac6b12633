package paper

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Segmenter 根据章节标题把原始文本切分成章节
type Segmenter struct {
	logger *logrus.Logger
}

// SegmenterOption 切分器配置选项
type SegmenterOption func(*Segmenter)

// WithSegmenterLogger 设置日志记录器
func WithSegmenterLogger(logger *logrus.Logger) SegmenterOption {
	return func(s *Segmenter) {
		s.logger = logger
	}
}

// NewSegmenter 创建章节切分器
func NewSegmenter(opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment 按调用方给出的标题顺序提取每个章节
//
// 章节结束位置的确定方式：在标题列表中筛选出字典序大于当前标题的那些标题，
// 按它们在列表中的顺序依次在当前章节起点之后查找，第一个找到的标题行即为结束位置；
// 都找不到时章节延伸到文本末尾。注意这里比较的是标题文本而不是列表位置。
//
// 找不到标题或正文为空的章节不会出现在结果中。
func (s *Segmenter) Segment(text string, titles []string) *Sections {
	result := NewSections()
	matchers := make(map[string]*HeadingMatcher, len(titles))

	for _, title := range titles {
		matcher := s.matcher(matchers, title)
		if matcher == nil {
			continue
		}

		heading, found := matcher.Locate(text)
		if !found {
			s.logger.WithField("section", title).Debug("Section heading not found")
			continue
		}

		start := heading.End
		end := len(text)
		for _, next := range titles {
			if next <= title {
				continue
			}
			nextMatcher := s.matcher(matchers, next)
			if nextMatcher == nil {
				continue
			}
			if boundary, ok := nextMatcher.Locate(text[start:]); ok {
				end = start + boundary.Start
				break
			}
		}

		content := strings.TrimSpace(text[start:end])
		if content == "" {
			continue
		}
		result.Set(strings.ToLower(title), content)
	}

	return result
}

// matcher 获取（必要时构建）标题匹配器，构建失败时记录日志并返回 nil
func (s *Segmenter) matcher(matchers map[string]*HeadingMatcher, title string) *HeadingMatcher {
	if m, ok := matchers[title]; ok {
		return m
	}

	m, err := NewHeadingMatcher(title)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"section": title,
			"error":   err.Error(),
		}).Warn("Failed to build section heading matcher")
	}
	matchers[title] = m
	return m
}
