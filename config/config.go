package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PlaceholderAPIKey 示例配置中的占位密钥，视为未配置
const PlaceholderAPIKey = "your_openrouter_api_key_here"

// Config 应用程序配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Paper    PaperConfig    `mapstructure:"paper"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`          // 服务器主机
	Port         int           `mapstructure:"port"`          // 服务器端口
	Mode         string        `mapstructure:"mode"`          // 运行模式：debug 或 release
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // 读取超时
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 写入超时，需要大于生成超时
}

// LLMConfig 文本生成服务配置
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`    // 提供商：openrouter
	Model       string        `mapstructure:"model"`       // 模型名称
	APIKey      string        `mapstructure:"api_key"`     // API密钥
	Endpoint    string        `mapstructure:"endpoint"`    // API端点
	Referer     string        `mapstructure:"referer"`     // HTTP-Referer请求头
	AppName     string        `mapstructure:"app_name"`    // X-Title请求头
	MaxTokens   int           `mapstructure:"max_tokens"`  // 最大生成token数量，0表示不限制
	Temperature float32       `mapstructure:"temperature"` // 采样温度，0表示使用服务端默认值
	Timeout     time.Duration `mapstructure:"timeout"`     // 请求超时
	MaxRetries  int           `mapstructure:"max_retries"` // 最大重试次数
}

// APIKeyConfigured 是否配置了有效的API密钥
func (c LLMConfig) APIKeyConfigured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != PlaceholderAPIKey && !strings.HasPrefix(key, "${")
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable    bool   `mapstructure:"enable"`     // 是否启用缓存
	Type      string `mapstructure:"type"`       // 缓存类型：memory 或 redis
	Address   string `mapstructure:"address"`    // Redis地址
	Password  string `mapstructure:"password"`   // Redis密码
	DB        int    `mapstructure:"db"`         // Redis数据库
	KeyPrefix string `mapstructure:"key_prefix"` // Redis键前缀
	TTL       int    `mapstructure:"ttl"`        // 缓存TTL（秒）
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enable bool   `mapstructure:"enable"` // 是否记录生成日志
	Type   string `mapstructure:"type"`   // 数据库类型: sqlite
	DSN    string `mapstructure:"dsn"`    // 数据源名称
}

// PaperConfig 论文生成配置
type PaperConfig struct {
	DefaultSections []string `mapstructure:"default_sections"` // 默认章节
	OriginalityMin  int      `mapstructure:"originality_min"`  // 原创度占位分数下限
	OriginalityMax  int      `mapstructure:"originality_max"`  // 原创度占位分数上限
	MaxWordLimit    int      `mapstructure:"max_word_limit"`   // 最大字数
	MaxSections     int      `mapstructure:"max_sections"`     // 最多章节数
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`        // 日志级别
	File       string `mapstructure:"file"`         // 日志文件，为空时只输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单个文件最大尺寸
	MaxBackups int    `mapstructure:"max_backups"`  // 保留的旧文件数量
	MaxAgeDays int    `mapstructure:"max_age_days"` // 旧文件保留天数
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string      `mapstructure:"allow_origins"` // 允许的来源
	MaxAge       time.Duration `mapstructure:"max_age"`       // 预检结果缓存时间
}

// Load 从文件和环境变量加载配置
// 配置文件不存在时使用默认值
func Load(configPath string) (*Config, error) {
	var config Config

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml" // 默认在当前目录寻找config.yaml
	}

	// 初始化viper
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径和类型
	v.SetConfigFile(configPath)

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 支持环境变量覆盖
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置到结构体
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	expandEnvironmentVariables(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Paper.OriginalityMin > c.Paper.OriginalityMax {
		return fmt.Errorf("paper.originality_min (%d) must not exceed paper.originality_max (%d)",
			c.Paper.OriginalityMin, c.Paper.OriginalityMax)
	}
	if c.Paper.MaxWordLimit <= 0 {
		return fmt.Errorf("paper.max_word_limit must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// expandEnvironmentVariables 展开密钥类配置中的${VAR}占位符
// 环境变量为空时保留原值
func expandEnvironmentVariables(cfg *Config) {
	for _, field := range []*string{&cfg.LLM.APIKey, &cfg.Cache.Password, &cfg.LLM.Endpoint} {
		*field = expandEnv(*field)
	}
}

func expandEnv(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	envVar := value[2 : len(value)-1]
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")

	// 文本生成服务默认配置
	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.model", "deepseek/deepseek-r1-zero:free")
	v.SetDefault("llm.api_key", "${OPENROUTER_API_KEY}")
	v.SetDefault("llm.endpoint", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("llm.referer", "http://localhost:5173")
	v.SetDefault("llm.app_name", "CiteAI")
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.temperature", 0)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_retries", 2)

	// 缓存默认配置
	v.SetDefault("cache.enable", false) // 默认每次请求都重新生成
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.key_prefix", "citeai:")
	v.SetDefault("cache.ttl", 3600) // 1小时

	// 数据库默认配置
	v.SetDefault("database.enable", true)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/citeai.db")

	// 论文生成默认配置
	v.SetDefault("paper.default_sections", []string{
		"Abstract", "Introduction", "Literature Review", "Methodology",
		"Results", "Discussion", "Conclusion", "References",
	})
	v.SetDefault("paper.originality_min", 1)
	v.SetDefault("paper.originality_max", 15)
	v.SetDefault("paper.max_word_limit", 20000)
	v.SetDefault("paper.max_sections", 30)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/api.log")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	// 跨域默认配置
	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.max_age", "24h")
}
