package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fyerfyer/citeai/api/middleware"
	"github.com/fyerfyer/citeai/api/model"
	"github.com/fyerfyer/citeai/internal/document"
	"github.com/fyerfyer/citeai/internal/paper"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ExportHandler 处理论文导出请求
type ExportHandler struct {
	logger *logrus.Logger // 日志记录器
}

// NewExportHandler 创建新的导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{
		logger: middleware.GetLogger(),
	}
}

// Export 将论文导出为Markdown、HTML或PDF
// POST /api/export
func (h *ExportHandler) Export(c *gin.Context) {
	var req model.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid export request")

		middleware.HandleError(c, middleware.NewValidationError(model.ValidationMessage(err)))
		return
	}

	exporter, err := document.ExporterFactory(req.Format)
	if err != nil {
		if errors.Is(err, document.ErrUnsupportedFormat) {
			middleware.HandleError(c, middleware.NewValidationError(err.Error()))
			return
		}
		middleware.HandleError(c, err)
		return
	}

	doc := &document.Paper{
		Title:    req.Title,
		Sections: make([]paper.Section, len(req.Sections)),
	}
	for i, s := range req.Sections {
		doc.Sections[i] = paper.Section{Title: s.Title, Content: s.Content}
	}

	data, err := exporter.Export(doc)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":  err.Error(),
			"format": req.Format,
		}).Error("Failed to export paper")

		middleware.HandleError(c, middleware.NewInternalError("failed to export paper", err.Error()))
		return
	}

	disposition := "inline"
	if exporter.Extension() == ".pdf" {
		disposition = "attachment"
	}
	filename := document.FileName(doc.Title, exporter)
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))

	h.logger.WithFields(logrus.Fields{
		"format":   req.Format,
		"sections": len(doc.Sections),
		"bytes":    len(data),
	}).Info("Paper exported")

	c.Data(http.StatusOK, exporter.ContentType(), data)
}
