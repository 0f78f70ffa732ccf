package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/config"
	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/storage"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName 配置目录与环境变量前缀
const AppName = "hosterscan"

// Config 应用程序配置
type Config struct {
	Crawl    models.CrawlConfig `mapstructure:"crawl"`
	Inputs   InputsConfig       `mapstructure:"inputs"`
	Output   OutputConfig       `mapstructure:"output"`
	Report   ReportConfig       `mapstructure:"report"`
	HTTP     HTTPConfig         `mapstructure:"http"`
	Logging  LoggingConfig      `mapstructure:"logging"`
	Resource ResourceConfig     `mapstructure:"resource"`

	// 实际使用的配置文件,未找到时为空
	File string `mapstructure:"-"`
}

// InputsConfig 输入文件路径
type InputsConfig struct {
	Hosters           string `mapstructure:"hosters"`
	Products          string `mapstructure:"products"`
	ListingSites      string `mapstructure:"listing_sites"`
	BlockedHosters    string `mapstructure:"blocked_hosters"`
	BlockedURLEndings string `mapstructure:"blocked_url_endings"`
	Strict            bool   `mapstructure:"strict"` // 格式错误的行直接失败
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir             string `mapstructure:"dir"`
	PageKeywords    string `mapstructure:"page_keywords"` // none | csv | sqlite
	MarkdownSummary bool   `mapstructure:"markdown_summary"`
}

// ReportConfig 统计输出配置
type ReportConfig struct {
	TopUsers int `mapstructure:"top_users"` // 产品表中列出的站点数
}

// HTTPConfig 请求配置
type HTTPConfig struct {
	Headers models.HeaderSet `mapstructure:"headers"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Console  bool           `mapstructure:"console"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// ResourceConfig 资源限制
type ResourceConfig struct {
	MinFreeMemoryMB uint64 `mapstructure:"min_free_memory_mb"` // 0表示不检查
}

// ConfigSearchPaths 未指定配置文件时的搜索目录
func ConfigSearchPaths() []string {
	paths := []string{"./configs", ".", filepath.Join(xdg.ConfigHome, AppName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+AppName))
	}
	return paths
}

// DefaultConfigFile init命令默认写入的位置
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// LoadConfig 加载配置文件
// configPath为空时按 ConfigSearchPaths 搜索 config.yaml,找不到时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		if err := config.CheckFileSize(configPath); err != nil {
			return nil, err
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range ConfigSearchPaths() {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: fmt.Errorf("解析配置失败: %w", err)}
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

// DefaultConfig 只含默认值的配置
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("默认配置无效: %v", err))
	}
	return &cfg
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.max_pages", 50)
	v.SetDefault("crawl.collect_max_pages", 500)
	v.SetDefault("crawl.full_scan_pages", 100)
	v.SetDefault("crawl.timeout_seconds", 30)
	v.SetDefault("crawl.user_agent", "")
	v.SetDefault("crawl.requests_per_second", 0.0)
	v.SetDefault("crawl.insecure_skip_verify", false)

	v.SetDefault("inputs.hosters", "input/hosters.csv")
	v.SetDefault("inputs.products", "input/products.csv")
	v.SetDefault("inputs.listing_sites", "input/listing_sites.txt")
	v.SetDefault("inputs.blocked_hosters", "input/blocked_hosters.txt")
	v.SetDefault("inputs.blocked_url_endings", "input/blocked_url_endings.txt")
	v.SetDefault("inputs.strict", false)

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.page_keywords", storage.PageKeywordsNone)
	v.SetDefault("output.markdown_summary", true)

	v.SetDefault("report.top_users", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("resource.min_free_memory_mb", 256)
}

// LogConfig 转换为日志系统配置
func (c *Config) LogConfig(runID string) utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
		Console:    c.Logging.Console,
		RunID:      runID,
	}
}

// CrawlFlags 命令行中与爬取相关的参数,零值表示未指定
type CrawlFlags struct {
	MaxPages   int
	FullScan   bool
	StartAt    int
	StopAt     int
	Timeout    int
	RateLimit  float64
	Strict     bool
	Hosters    string
	Products   string
	Listing    string
	URLEndings string
}

// CrawlConfigFor 生成某个模式的最终爬取配置
// 优先级: 命令行 > 配置文件 > 默认值
func (c *Config) CrawlConfigFor(mode models.RunMode, flags CrawlFlags) models.CrawlConfig {
	cc := c.Crawl
	if mode == models.ModeCollect && cc.CollectMaxPages > 0 {
		cc.MaxPages = cc.CollectMaxPages
	}
	if flags.FullScan && mode == models.ModeScan && cc.FullScanPages > 0 {
		cc.MaxPages = cc.FullScanPages
	}
	if flags.MaxPages > 0 {
		cc.MaxPages = flags.MaxPages
	}
	if flags.Timeout > 0 {
		cc.TimeoutSeconds = flags.Timeout
	}
	if flags.RateLimit > 0 {
		cc.RequestsPerSecond = flags.RateLimit
	}
	cc.StartAt = flags.StartAt
	cc.StopAt = flags.StopAt
	return cc
}

// MergeCLIFlags 合并命令行中的输入文件路径到配置
func (c *Config) MergeCLIFlags(flags CrawlFlags) {
	if flags.Hosters != "" {
		c.Inputs.Hosters = flags.Hosters
	}
	if flags.Products != "" {
		c.Inputs.Products = flags.Products
	}
	if flags.Listing != "" {
		c.Inputs.ListingSites = flags.Listing
	}
	if flags.URLEndings != "" {
		c.Inputs.BlockedURLEndings = flags.URLEndings
	}
	if flags.Strict {
		c.Inputs.Strict = true
	}
}
