package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFExporter PDF导出器
type PDFExporter struct {
	fontFamily string  // 字体
	lineHeight float64 // 正文行高（毫米）
}

// NewPDFExporter 创建PDF导出器
func NewPDFExporter() Exporter {
	return &PDFExporter{
		fontFamily: "Times",
		lineHeight: 6,
	}
}

// Export 将论文渲染为A4 PDF，并在返回前校验文件结构
func (e *PDFExporter) Export(doc *Paper) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(25, 25, 25)
	pdf.SetAutoPageBreak(true, 25)
	pdf.SetTitle(doc.title(), true)
	pdf.SetCreator("CiteAI", false)

	// 内置字体只支持cp1252，正文先做转换
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(e.fontFamily, "B", 18)
	pdf.MultiCell(0, 9, tr(doc.title()), "", "C", false)
	pdf.Ln(6)

	for _, section := range doc.Sections {
		pdf.SetFont(e.fontFamily, "B", 14)
		pdf.MultiCell(0, 8, tr(displayTitle(section.Title)), "", "L", false)
		pdf.Ln(2)

		pdf.SetFont(e.fontFamily, "", 11)
		for _, para := range paragraphs(section.Content) {
			pdf.MultiCell(0, e.lineHeight, tr(para), "", "J", false)
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	if err := ValidatePDF(buf.Bytes()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentType 返回MIME类型
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Extension 返回文件扩展名
func (e *PDFExporter) Extension() string {
	return ".pdf"
}

// ValidatePDF 使用pdfcpu校验PDF文件结构
func ValidatePDF(data []byte) error {
	conf := model.NewDefaultConfiguration()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("invalid PDF output: %w", err)
	}
	return nil
}

// PageCount 返回PDF的页数
func PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to count PDF pages: %w", err)
	}
	return n, nil
}

// paragraphs 按空行拆分段落，段内换行合并为空格
func paragraphs(content string) []string {
	var out []string
	for _, block := range strings.Split(strings.TrimSpace(content), "\n\n") {
		text := strings.Join(strings.Fields(block), " ")
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}
