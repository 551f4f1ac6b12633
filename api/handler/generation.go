package handler

import (
	"errors"
	"net/http"

	"github.com/fyerfyer/citeai/api/middleware"
	"github.com/fyerfyer/citeai/api/model"
	"github.com/fyerfyer/citeai/internal/models"
	"github.com/fyerfyer/citeai/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GenerationHandler 处理生成记录查询请求
type GenerationHandler struct {
	repo   repository.GenerationRepository // 生成记录仓储
	logger *logrus.Logger                  // 日志记录器
}

// NewGenerationHandler 创建新的生成记录处理器
func NewGenerationHandler(repo repository.GenerationRepository) *GenerationHandler {
	return &GenerationHandler{
		repo:   repo,
		logger: middleware.GetLogger(),
	}
}

// ListGenerations 分页列出生成记录
// GET /api/generations
func (h *GenerationHandler) ListGenerations(c *gin.Context) {
	var req model.GenerationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("invalid query parameters", model.ValidationMessage(err)))
		return
	}

	logs, total, err := h.repo.WithContext(c.Request.Context()).List(req.Offset(), req.GetPageSize(), req.Filters())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list generations")
		middleware.HandleError(c, middleware.NewInternalError("failed to list generations", err.Error()))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.GenerationListResponse{
		PaginationResponse: model.PaginationResponse{
			Total:    total,
			Page:     req.GetPage(),
			PageSize: req.GetPageSize(),
		},
		Generations: model.ConvertToGenerationInfo(logs),
	}))
}

// GetGeneration 获取单条生成记录
// GET /api/generations/:id
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	id := c.Param("id")

	log, err := h.repo.WithContext(c.Request.Context()).GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrGenerationNotFound) {
			middleware.HandleError(c, middleware.NewNotFoundError("generation not found"))
			return
		}
		h.logger.WithError(err).WithField("id", id).Error("Failed to get generation")
		middleware.HandleError(c, middleware.NewInternalError("failed to get generation", err.Error()))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ConvertToGenerationInfo([]*models.GenerationLog{log})[0]))
}

// Stats 汇总生成记录
// GET /api/generations/stats
func (h *GenerationHandler) Stats(c *gin.Context) {
	stats, err := h.repo.WithContext(c.Request.Context()).Stats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute generation stats")
		middleware.HandleError(c, middleware.NewInternalError("failed to compute generation stats", err.Error()))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(stats))
}
