package models

import (
	"fmt"
	"time"
)

// RunMode 运行模式
type RunMode string

const (
	ModeCollect RunMode = "collect" // 爬取列表站点,收集托管商URL
	ModeScan    RunMode = "scan"    // 爬取托管商网站,统计产品关键词
)

// CrawlConfig 爬取配置
type CrawlConfig struct {
	MaxPages          int           `mapstructure:"max_pages" json:"max_pages"`                     // 每个站点最多访问的页面数
	CollectMaxPages   int           `mapstructure:"collect_max_pages" json:"collect_max_pages"`     // 列表站点模式默认页数
	FullScanPages     int           `mapstructure:"full_scan_pages" json:"full_scan_pages"`         // --full-scan 时的页数
	TimeoutSeconds    int           `mapstructure:"timeout_seconds" json:"timeout_seconds"`         // 单次请求超时(秒)
	UserAgent         string        `mapstructure:"user_agent" json:"user_agent"`                   // 浏览器标识
	RequestsPerSecond float64       `mapstructure:"requests_per_second" json:"requests_per_second"` // 0表示不限速
	InsecureSkipTLS   bool          `mapstructure:"insecure_skip_verify" json:"insecure_skip_verify"`
	StartAt           int           `mapstructure:"-" json:"start_at"`
	StopAt            int           `mapstructure:"-" json:"stop_at"`
	Timeout           time.Duration `mapstructure:"-" json:"-"`
}

// RequestTimeout 返回单次请求超时
func (c *CrawlConfig) RequestTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return 30 * time.Second
}

// Validate 验证配置
func (c *CrawlConfig) Validate() error {
	if c.MaxPages < 1 {
		return fmt.Errorf("每站点页数必须大于0,当前值: %d", c.MaxPages)
	}
	if c.TimeoutSeconds < 0 || c.TimeoutSeconds > 600 {
		return fmt.Errorf("请求超时必须在0-600秒之间,当前值: %d", c.TimeoutSeconds)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("限速不能为负数: %.2f", c.RequestsPerSecond)
	}
	if c.StartAt < 0 || c.StopAt < c.StartAt {
		return fmt.Errorf("站点范围无效: %d-%d", c.StartAt, c.StopAt)
	}
	return nil
}

// RunStats 运行统计
type RunStats struct {
	SitesTotal       int     `json:"sites_total"`        // 输入中的站点数
	SitesChecked     int     `json:"sites_checked"`      // 已检查站点数(含历史)
	SitesNew         int     `json:"sites_new"`          // 本次爬取的站点数
	SitesWithMatches int     `json:"sites_with_matches"` // 至少命中一个产品的站点数
	URLsCrawled      int     `json:"urls_crawled"`       // 已爬取URL数(含历史)
	CrawlErrors      int     `json:"crawl_errors"`       // 失败URL数(含历史)
	CandidatesFound  int     `json:"candidates_found"`   // 候选托管商URL数(含历史)
	RowsSkipped      int     `json:"rows_skipped"`       // 输入中被跳过的格式错误行
	Duration         float64 `json:"duration"`           // 总耗时(秒)
}

// ErrorRate 返回失败率(0-1)
func (s RunStats) ErrorRate() float64 {
	if s.URLsCrawled == 0 || s.CrawlErrors == 0 {
		return 0
	}
	return float64(s.CrawlErrors) / float64(s.URLsCrawled)
}
