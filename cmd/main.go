package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fyerfyer/citeai/api"
	"github.com/fyerfyer/citeai/api/handler"
	"github.com/fyerfyer/citeai/api/middleware"
	appconfig "github.com/fyerfyer/citeai/config"
	"github.com/fyerfyer/citeai/internal/cache"
	"github.com/fyerfyer/citeai/internal/database"
	"github.com/fyerfyer/citeai/internal/llm"
	"github.com/fyerfyer/citeai/internal/paper"
	"github.com/fyerfyer/citeai/internal/repository"
	"github.com/fyerfyer/citeai/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// 命令行参数，显式设置时覆盖配置文件
type flags struct {
	ConfigFile string // 配置文件路径
	EnvFile    string // .env文件路径
	Port       int    // 服务端口
	Mode       string // 运行模式 (debug/release)
	LogLevel   string // 日志级别
	LLMModel   string // 模型名称
	CacheType  string // 缓存类型
	NoDB       bool   // 关闭生成记录
}

func main() {
	// 解析命令行参数
	f := parseFlags()

	// 加载.env，文件不存在不是错误
	if err := godotenv.Load(f.EnvFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Failed to load %s: %v", f.EnvFile, err)
	}

	// 加载配置文件
	cfg, err := appconfig.Load(f.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, f)

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 初始化日志
	logger, logCloser := setupLogger(cfg.Log)
	defer logCloser()
	logger.Info("Starting CiteAI backend server...")

	// 初始化数据库（可选）
	var genRepo repository.GenerationRepository
	if cfg.Database.Enable {
		if err := database.Setup(&database.Config{Type: cfg.Database.Type, DSN: cfg.Database.DSN}, logger); err != nil {
			logger.Fatalf("Failed to initialize database: %v", err)
		}
		defer database.Close()
		genRepo = repository.NewGenerationRepository()
	}

	// 创建缓存服务
	cacheService, err := setupCache(cfg.Cache)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}
	defer cacheService.Close()

	// 创建文本生成客户端，未配置密钥时服务仍然启动
	llmClient, err := setupLLM(cfg.LLM)
	if err != nil {
		logger.WithError(err).Error("OpenRouter API key is not properly configured, paper generation is disabled")
	}

	// 切分与打分
	assembler, err := paper.NewAssembler(
		paper.WithOriginalityRange(cfg.Paper.OriginalityMin, cfg.Paper.OriginalityMax),
		paper.WithSegmenter(paper.NewSegmenter(paper.WithSegmenterLogger(logger))),
	)
	if err != nil {
		logger.Fatalf("Failed to initialize assembler: %v", err)
	}

	// 初始化业务服务
	paperOptions := []services.PaperOption{
		services.WithLogger(logger),
		services.WithCacheTTL(time.Duration(cfg.Cache.TTL) * time.Second),
		services.WithDefaultSections(cfg.Paper.DefaultSections),
	}
	if genRepo != nil {
		paperOptions = append(paperOptions, services.WithGenerationRepository(genRepo))
	}
	paperService := services.NewPaperService(llmClient, assembler, cacheService, paperOptions...)

	// 初始化API处理器
	handlers := api.Handlers{
		Paper: handler.NewPaperHandler(paperService, handler.PaperLimits{
			MaxWordLimit: cfg.Paper.MaxWordLimit,
			MaxSections:  cfg.Paper.MaxSections,
		}),
		Export: handler.NewExportHandler(),
	}
	if genRepo != nil {
		handlers.Generation = handler.NewGenerationHandler(genRepo)
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	}
	if cfg.CORS.MaxAge > 0 {
		corsConfig.MaxAge = cfg.CORS.MaxAge
	}

	// 设置路由
	r := api.SetupRouter(handlers, corsConfig)

	// 启动HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 优雅关闭
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":  srv.Addr,
			"model": cfg.LLM.Model,
		}).Info("Server is running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// 创建带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() flags {
	f := flags{}

	flag.StringVar(&f.ConfigFile, "config", "config.yaml", "Path to config file")
	flag.StringVar(&f.EnvFile, "env", ".env", "Path to .env file")
	flag.IntVar(&f.Port, "port", 8000, "Server port")
	flag.StringVar(&f.Mode, "mode", "release", "Run mode (debug/release)")
	flag.StringVar(&f.LogLevel, "log-level", "info", "Log level (debug/info/warn/error)")
	flag.StringVar(&f.LLMModel, "llm-model", llm.ModelDeepSeekR1ZeroFree, "Text generation model name")
	flag.StringVar(&f.CacheType, "cache", "memory", "Enable the draft cache with the given type (memory/redis)")
	flag.BoolVar(&f.NoDB, "no-db", false, "Disable the generation log database")

	flag.Parse()
	return f
}

// applyFlags 只用命令行上明确设置的参数覆盖配置
func applyFlags(cfg *appconfig.Config, f flags) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			cfg.Server.Port = f.Port
		case "mode":
			cfg.Server.Mode = f.Mode
		case "log-level":
			cfg.Log.Level = f.LogLevel
		case "llm-model":
			cfg.LLM.Model = f.LLMModel
		case "cache":
			cfg.Cache.Enable = true
			cfg.Cache.Type = f.CacheType
		case "no-db":
			cfg.Database.Enable = !f.NoDB
		}
	})
}

// setupLogger 设置日志系统
func setupLogger(cfg appconfig.LogConfig) (*logrus.Logger, func()) {
	closer := middleware.SetupLogger(middleware.LogConfig{
		Level:      cfg.Level,
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	})
	return middleware.GetLogger(), func() { _ = closer.Close() }
}

// setupLLM 设置文本生成客户端
func setupLLM(cfg appconfig.LLMConfig) (llm.Client, error) {
	if !cfg.APIKeyConfigured() {
		return nil, fmt.Errorf("LLM API key is required")
	}

	opts := []llm.Option{
		llm.WithAPIKey(cfg.APIKey),
		llm.WithModel(cfg.Model),
		llm.WithReferer(cfg.Referer),
		llm.WithAppName(cfg.AppName),
		llm.WithTimeout(cfg.Timeout),
		llm.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, llm.WithBaseURL(cfg.Endpoint))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(cfg.Temperature))
	}

	return llm.NewClient(cfg.Provider, opts...)
}

// setupCache 设置缓存服务
func setupCache(cfg appconfig.CacheConfig) (cache.Cache, error) {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Enable = cfg.Enable
	cacheConfig.Type = cfg.Type
	if cfg.TTL > 0 {
		cacheConfig.DefaultTTL = time.Duration(cfg.TTL) * time.Second
	}
	if cfg.KeyPrefix != "" {
		cacheConfig.KeyPrefix = cfg.KeyPrefix
	}

	// 如果配置了Redis，添加Redis配置
	if cfg.Type == "redis" {
		cacheConfig.RedisAddr = cfg.Address
		cacheConfig.RedisPassword = cfg.Password
		cacheConfig.RedisDB = cfg.DB
	}

	return cache.NewCache(cacheConfig)
}
