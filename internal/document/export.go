package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fyerfyer/citeai/internal/paper"
)

// Exporter 论文导出器接口
// 负责将切分后的论文渲染为不同格式
type Exporter interface {
	// Export 渲染论文，返回文件内容
	Export(doc *Paper) ([]byte, error)

	// ContentType 返回导出内容的MIME类型
	ContentType() string

	// Extension 返回导出文件的扩展名
	Extension() string
}

// Format 导出格式
type Format string

const (
	// FormatMarkdown Markdown格式
	FormatMarkdown Format = "markdown"
	// FormatHTML HTML格式
	FormatHTML Format = "html"
	// FormatPDF PDF格式
	FormatPDF Format = "pdf"
)

// DefaultTitle 未提供标题时使用的标题
const DefaultTitle = "Research Paper"

// ErrUnsupportedFormat 不支持的导出格式
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Paper 待导出的论文
type Paper struct {
	Title    string          // 论文标题
	Sections []paper.Section // 按顺序排列的章节
}

// NewPaper 由切分结果创建待导出的论文
func NewPaper(title string, sections *paper.Sections) *Paper {
	return &Paper{
		Title:    title,
		Sections: sections.List(),
	}
}

// title 返回标题，为空时使用默认标题
func (p *Paper) title() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return DefaultTitle
}

// ExporterFactory 根据导出格式创建对应的导出器
func ExporterFactory(format string) (Exporter, error) {
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case FormatMarkdown, "md":
		return NewMarkdownExporter(), nil
	case FormatHTML:
		return NewHTMLExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// FileName 根据标题生成下载文件名
func FileName(title string, exporter Exporter) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "paper"
	}
	return name + exporter.Extension()
}
