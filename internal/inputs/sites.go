package inputs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
)

// LoadOptions 输入加载选项
type LoadOptions struct {
	// Strict 为true时遇到格式错误的行立即返回 *models.RowError,否则跳过并警告
	Strict bool
}

// SiteList 加载的站点列表
type SiteList struct {
	Sites     []models.Site
	Malformed []*models.RowError // 列数不足而跳过的行
	NotURL    int                // URL列不是http(s)链接的行(含表头)
	Blocked   int                // 在屏蔽列表中的站点
}

// handleRow 按策略处理格式错误的行
func (o LoadOptions) handleRow(list *SiteList, rowErr *models.RowError) error {
	if o.Strict {
		return rowErr
	}
	utils.Warnf("%v,已跳过", rowErr)
	list.Malformed = append(list.Malformed, rowErr)
	return nil
}

// LoadHosters 读取托管商CSV: 第1列ID,第2列名称,第3列网址
// 网址不以http(s)://开头的行跳过,网址在屏蔽列表中的行跳过
func LoadHosters(path string, block *models.BlockPolicy, opts LoadOptions) (*SiteList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &models.MissingInputError{Role: "hosters", Path: path}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	list := &SiteList{Sites: make([]models.Site, 0)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取托管商文件失败 [%s]: %w", path, err)
		}
		line, _ := reader.FieldPos(0)

		if len(record) < 3 {
			rowErr := &models.RowError{File: path, Line: line, Reason: fmt.Sprintf("需要3列(ID, 名称, 网址),实际%d列", len(record))}
			if err := opts.handleRow(list, rowErr); err != nil {
				return nil, err
			}
			continue
		}

		rawURL := strings.TrimSpace(record[2])
		if !models.HasURLPrefix(strings.ToLower(rawURL)) {
			list.NotURL++
			continue
		}
		if block != nil && block.IsBlockedURL(rawURL) {
			list.Blocked++
			continue
		}

		list.Sites = append(list.Sites, models.Site{
			ID:   strings.TrimSpace(record[0]),
			Name: strings.TrimSpace(record[1]),
			URL:  models.Normalize(rawURL),
		})
	}

	utils.Infof("从 %s 加载了 %d 个托管商 (屏蔽 %d, 格式错误 %d)", path, len(list.Sites), list.Blocked, len(list.Malformed))
	return list, nil
}

// LoadListingSites 读取列表站点文本文件,每行一个网址
func LoadListingSites(path string) (*SiteList, error) {
	lines, err := readTextLines(path)
	if err != nil {
		return nil, &models.MissingInputError{Role: "listing sites", Path: path}
	}

	list := &SiteList{Sites: make([]models.Site, 0, len(lines))}
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		u := models.NormalizeRule(line)
		if !models.HasURLPrefix(u) {
			list.NotURL++
			utils.Warnf("跳过非http(s)列表站点: %s", line)
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		list.Sites = append(list.Sites, models.Site{Name: models.Domain(u), URL: u})
	}

	utils.Infof("从 %s 加载了 %d 个列表站点", path, len(list.Sites))
	return list, nil
}

// URLs 返回所有站点网址
func (l *SiteList) URLs() []string {
	out := make([]string, 0, len(l.Sites))
	for _, s := range l.Sites {
		out = append(out, s.URL)
	}
	return out
}

// Range 返回下标在[start, stop]内的站点(闭区间)
func (l *SiteList) Range(start, stop int) []models.Site {
	if start < 0 {
		start = 0
	}
	if stop >= len(l.Sites) {
		stop = len(l.Sites) - 1
	}
	if start > stop {
		return []models.Site{}
	}
	return l.Sites[start : stop+1]
}
