package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fyerfyer/citeai/api/middleware"
	"github.com/fyerfyer/citeai/api/model"
	"github.com/fyerfyer/citeai/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version 服务版本
const Version = "1.0.0"

// PaperLimits 论文生成请求的上限
type PaperLimits struct {
	MaxWordLimit int // 最大字数
	MaxSections  int // 最多章节数
}

// DefaultPaperLimits 返回默认上限
func DefaultPaperLimits() PaperLimits {
	return PaperLimits{
		MaxWordLimit: 20000,
		MaxSections:  30,
	}
}

// PaperHandler 处理论文生成相关的API请求
type PaperHandler struct {
	paperService *services.PaperService // 论文生成服务
	limits       PaperLimits            // 请求上限
	logger       *logrus.Logger         // 日志记录器
}

// NewPaperHandler 创建新的论文处理器
func NewPaperHandler(paperService *services.PaperService, limits PaperLimits) *PaperHandler {
	return &PaperHandler{
		paperService: paperService,
		limits:       limits,
		logger:       middleware.GetLogger(),
	}
}

// CreateContent 生成论文
// POST /api/create-content
func (h *PaperHandler) CreateContent(c *gin.Context) {
	// 绑定请求参数
	var req model.PaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid paper request")

		c.JSON(http.StatusBadRequest, model.NewPaperErrorResponse(model.ValidationMessage(err)))
		return
	}

	if h.limits.MaxWordLimit > 0 && req.WordLimit > h.limits.MaxWordLimit {
		c.JSON(http.StatusBadRequest, model.NewPaperErrorResponse(
			fmt.Sprintf("word_limit must be at most %d", h.limits.MaxWordLimit),
		))
		return
	}
	if h.limits.MaxSections > 0 && len(req.Sections) > h.limits.MaxSections {
		c.JSON(http.StatusBadRequest, model.NewPaperErrorResponse(
			fmt.Sprintf("at most %d sections can be requested", h.limits.MaxSections),
		))
		return
	}

	result, err := h.paperService.Generate(c.Request.Context(), services.PaperRequest{
		Topic:     req.Topic,
		WordLimit: req.WordLimit,
		Sections:  req.Sections,
		TraceID:   c.GetString("TraceID"),
	})
	if err != nil {
		status, message := paperErrorStatus(err)
		c.JSON(status, model.NewPaperErrorResponse(message))
		return
	}

	c.JSON(http.StatusOK, model.NewPaperResponse(result.Result))
}

// paperErrorStatus 将服务层错误映射为HTTP状态码和返回给前端的消息
func paperErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidPaperRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrAPIKeyMissing):
		return http.StatusInternalServerError, services.ErrAPIKeyMissing.Error()
	case errors.Is(err, services.ErrProviderTimeout):
		return http.StatusGatewayTimeout, "Request timed out. Please try again."
	case errors.Is(err, services.ErrProviderUnavailable):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// Health 健康检查
// GET /health
func (h *PaperHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:           "healthy",
		Version:          Version,
		APIKeyConfigured: h.paperService.ProviderConfigured(),
	})
}

// Status 服务状态
// GET /api/status
func (h *PaperHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, model.StatusResponse{
		Status:  "online",
		Message: "API is operational",
	})
}
