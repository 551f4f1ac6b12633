package document

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownExporter Markdown导出器
type MarkdownExporter struct{}

// NewMarkdownExporter 创建Markdown导出器
func NewMarkdownExporter() Exporter {
	return &MarkdownExporter{}
}

// Export 将论文渲染为Markdown
func (e *MarkdownExporter) Export(doc *Paper) ([]byte, error) {
	return []byte(renderMarkdown(doc)), nil
}

// ContentType 返回MIME类型
func (e *MarkdownExporter) ContentType() string {
	return "text/markdown; charset=utf-8"
}

// Extension 返回文件扩展名
func (e *MarkdownExporter) Extension() string {
	return ".md"
}

// renderMarkdown 标题为一级标题，章节为二级标题
func renderMarkdown(doc *Paper) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(doc.title())
	b.WriteString("\n")

	for _, section := range doc.Sections {
		b.WriteString("\n## ")
		b.WriteString(displayTitle(section.Title))
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(section.Content))
		b.WriteString("\n")
	}
	return b.String()
}

// displayTitle 章节键是小写的，导出时恢复首字母大写
func displayTitle(title string) string {
	words := strings.Fields(title)
	for i, w := range words {
		if w == strings.ToLower(w) {
			r, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}

// HTMLExporter HTML导出器
type HTMLExporter struct{}

// NewHTMLExporter 创建HTML导出器
func NewHTMLExporter() Exporter {
	return &HTMLExporter{}
}

// Export 将论文渲染为完整的HTML页面
func (e *HTMLExporter) Export(doc *Paper) ([]byte, error) {
	// 创建Markdown解析器
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)

	// 解析Markdown内容
	ast := mdParser.Parse([]byte(renderMarkdown(doc)))

	// 创建HTML渲染器
	htmlFlags := html.CommonFlags | html.HrefTargetBlank | html.CompletePage
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: htmlFlags,
		Title: doc.title(),
	})

	return markdown.Render(ast, renderer), nil
}

// ContentType 返回MIME类型
func (e *HTMLExporter) ContentType() string {
	return "text/html; charset=utf-8"
}

// Extension 返回文件扩展名
func (e *HTMLExporter) Extension() string {
	return ".html"
}
