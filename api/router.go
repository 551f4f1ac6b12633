package api

import (
	"net/http"

	"github.com/fyerfyer/citeai/api/handler"
	"github.com/fyerfyer/citeai/api/middleware"
	"github.com/fyerfyer/citeai/api/model"
	"github.com/gin-gonic/gin"
)

// Handlers 路由使用的处理器
// Generation为nil时不注册生成记录相关路由
type Handlers struct {
	Paper      *handler.PaperHandler
	Export     *handler.ExportHandler
	Generation *handler.GenerationHandler
}

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(h Handlers, cors middleware.CORSConfig) *gin.Engine {
	model.RegisterValidators()

	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.Cors(cors))

	// 在调试模式下记录请求体和响应体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
		router.Use(middleware.ResponseLogger())
	}

	// 健康检查 - GET /health
	router.GET("/health", h.Paper.Health)

	api := router.Group("/api")
	{
		// 服务状态 - GET /api/status
		api.GET("/status", h.Paper.Status)

		// 生成论文 - POST /api/create-content
		api.POST("/create-content", h.Paper.CreateContent)

		// 导出论文 - POST /api/export
		api.POST("/export", h.Export.Export)

		// 生成记录API，数据库关闭时不注册
		if h.Generation != nil {
			genGroup := api.Group("/generations")
			{
				// 记录列表 - GET /api/generations
				genGroup.GET("", h.Generation.ListGenerations)

				// 统计信息 - GET /api/generations/stats
				genGroup.GET("/stats", h.Generation.Stats)

				// 单条记录 - GET /api/generations/:id
				genGroup.GET("/:id", h.Generation.GetGeneration)
			}
		}

		// 预检请求由Cors中间件应答
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	}

	return router
}
