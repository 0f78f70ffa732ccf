package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/HosterScan/internal/models"
)

// Layout 一种运行模式下所有输出文件的路径
type Layout struct {
	Dir  string
	Mode models.RunMode

	CrawledLog    string // 已爬取URL
	ErroredLog    string // 下载失败URL
	CrawlErrorLog string // 人类可读的错误日志

	Results    string // 扫描模式结果表
	Candidates string // 列表站点模式候选URL
	Products   string
	Keywords   string

	PageKeywords string // 每页命中关键词(CSV)
	SiteKeywords string // 每站点命中关键词并集(CSV)
	PageDB       string // 每页命中关键词(SQLite)

	Summary string // summary.md
	Report  string // run_report.json
}

// NewLayout 按运行模式生成文件路径
func NewLayout(dir string, mode models.RunMode) Layout {
	l := Layout{
		Dir:           dir,
		Mode:          mode,
		CrawlErrorLog: filepath.Join(dir, "crawling_errors.log"),
		Summary:       filepath.Join(dir, fmt.Sprintf("summary_%s.md", mode)),
		Report:        filepath.Join(dir, fmt.Sprintf("run_report_%s.json", mode)),
	}

	switch mode {
	case models.ModeCollect:
		l.CrawledLog = filepath.Join(dir, "listing_site_urls_crawled.txt")
		l.ErroredLog = filepath.Join(dir, "listing_site_urls_with_errors.txt")
		l.Candidates = filepath.Join(dir, "possible_hoster_urls_found.txt")
	default:
		l.CrawledLog = filepath.Join(dir, "urls_crawled.txt")
		l.ErroredLog = filepath.Join(dir, "urls_with_errors.txt")
		l.Results = filepath.Join(dir, "products_mentioned_by_hosters.csv")
		l.Products = filepath.Join(dir, "products.txt")
		l.Keywords = filepath.Join(dir, "keywords.txt")
		l.PageKeywords = filepath.Join(dir, "keywords_by_page.csv")
		l.SiteKeywords = filepath.Join(dir, "keywords_by_hoster.csv")
		l.PageDB = filepath.Join(dir, "keywords.db")
	}
	return l
}

// EnsureDir 创建输出目录
func (l Layout) EnsureDir() error {
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	return nil
}

// StateFiles 返回 --reset 时删除的文件
// 人类可读的错误日志在两种模式间共享,不删除
func (l Layout) StateFiles() []string {
	files := []string{l.CrawledLog, l.ErroredLog}
	for _, f := range []string{l.Results, l.Candidates, l.PageKeywords, l.SiteKeywords, l.PageDB} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Reset 删除本模式的状态文件,不存在的文件忽略
func (l Layout) Reset() error {
	for _, f := range l.StateFiles() {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("删除文件失败 [%s]: %w", f, err)
		}
	}
	return nil
}
