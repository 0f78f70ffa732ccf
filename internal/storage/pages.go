package storage

import (
	"fmt"
	"os"
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/models"
)

// 每页关键词的存储方式
const (
	PageKeywordsNone   = "none"
	PageKeywordsCSV    = "csv"
	PageKeywordsSQLite = "sqlite"
)

// PageRecorder 记录每个页面命中的关键词和每个站点的关键词并集
type PageRecorder interface {
	RecordSite(result *models.CrawlResult) error
	Close() error
}

// NewPageRecorder 按配置创建记录器
func NewPageRecorder(kind string, layout Layout) (PageRecorder, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", PageKeywordsNone:
		return nopRecorder{}, nil
	case PageKeywordsCSV:
		return NewCSVPageRecorder(layout.PageKeywords, layout.SiteKeywords)
	case PageKeywordsSQLite:
		return NewSQLitePageRecorder(layout.PageDB)
	default:
		return nil, fmt.Errorf("未知的关键词记录方式: %s (可选: none, csv, sqlite)", kind)
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordSite(*models.CrawlResult) error { return nil }
func (nopRecorder) Close() error                         { return nil }

// 关键词列表在单元格内的分隔符
const keywordSeparator = "; "

// CSVPageRecorder 写入两个CSV文件
type CSVPageRecorder struct {
	pagePath string
	sitePath string
}

// NewCSVPageRecorder 创建CSV记录器,文件不存在时写入表头
func NewCSVPageRecorder(pagePath, sitePath string) (*CSVPageRecorder, error) {
	headers := map[string][]string{
		pagePath: {"HosterID", "Page URL", "Keywords"},
		sitePath: {"HosterID", "Name", "URL", "Keywords"},
	}
	for path, header := range headers {
		if fileExists(path) {
			continue
		}
		if err := writeCSV(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, [][]string{header}); err != nil {
			return nil, err
		}
	}
	return &CSVPageRecorder{pagePath: pagePath, sitePath: sitePath}, nil
}

// RecordSite 追加站点的页面记录和并集记录
func (r *CSVPageRecorder) RecordSite(result *models.CrawlResult) error {
	if len(result.Pages) > 0 {
		records := make([][]string, 0, len(result.Pages))
		for _, p := range result.Pages {
			records = append(records, []string{p.SiteKey, p.PageURL, strings.Join(p.Keywords, keywordSeparator)})
		}
		if err := writeCSV(r.pagePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, records); err != nil {
			return err
		}
	}

	site := result.Target.Site
	row := []string{site.Key(), site.Name, result.Target.URL, strings.Join(result.SiteKeywords(), keywordSeparator)}
	return writeCSV(r.sitePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, [][]string{row})
}

// Close 实现PageRecorder
func (r *CSVPageRecorder) Close() error {
	return nil
}
