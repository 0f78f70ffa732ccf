package storage

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
)

// CrawlErrorLog 人类可读的下载错误日志
// 每次失败立即追加一行: Error downloading page {url} from {site}: {err}
type CrawlErrorLog struct {
	path  string
	runID string

	mu          sync.Mutex
	wroteHeader bool
}

// NewCrawlErrorLog 创建错误日志,runID写在本次运行第一条错误之前
func NewCrawlErrorLog(path, runID string) *CrawlErrorLog {
	return &CrawlErrorLog{path: path, runID: runID}
}

// FormatFetchError 生成一行错误记录
func FormatFetchError(site string, fe *models.FetchError) string {
	return fmt.Sprintf("Error downloading page %s from %s: %v", fe.URL, site, fe.Cause)
}

// RecordFetchError 实现crawlers.ErrorSink
func (l *CrawlErrorLog) RecordFetchError(target models.CrawlTarget, fe *models.FetchError) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := make([]string, 0, 2)
	if !l.wroteHeader && l.runID != "" {
		lines = append(lines, fmt.Sprintf("# run %s %s", l.runID, time.Now().Format(time.RFC3339)))
	}
	lines = append(lines, FormatFetchError(target.Site.Label(), fe))

	if err := AppendLines(l.path, lines); err != nil {
		utils.Warnf("写入错误日志失败: %v", err)
		return
	}
	l.wroteHeader = true
}

// Path 返回日志路径
func (l *CrawlErrorLog) Path() string {
	return l.path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
