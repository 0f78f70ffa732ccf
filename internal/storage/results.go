package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
)

// ResultsFixedColumns 结果表固定列,其后每个关键词一列
var ResultsFixedColumns = []string{"HosterID", "Name", "URL", "Number of Matched Technologies"}

// ResultsHeader 生成结果表表头
func ResultsHeader(keywords []string) []string {
	return append(append([]string(nil), ResultsFixedColumns...), keywords...)
}

// ResultsFile 扫描模式结果表(CSV)
// 已存在的文件保留原表头;关键词列按名称映射,追加的行按原表头的列顺序写入
type ResultsFile struct {
	path     string
	keywords []string // 当前关键词列表
	columns  []string // 文件中实际的表头
}

// LoadedResults 从结果表导入的历史数据
type LoadedResults struct {
	Rows     []models.SiteResult
	SiteURLs []string // 每行的站点URL(规范化后)
	Skipped  int      // URL列无效的行
}

// NewResultsFile 创建结果表句柄
func NewResultsFile(path string, keywords []string) *ResultsFile {
	return &ResultsFile{path: path, keywords: keywords}
}

// Path 返回文件路径
func (f *ResultsFile) Path() string {
	return f.path
}

// EnsureHeader 文件不存在或没有表头时写入表头
func (f *ResultsFile) EnsureHeader() error {
	if f.columns != nil {
		return nil
	}
	if info, err := os.Stat(f.path); err == nil && info.Size() > 0 {
		if _, err := f.Load(); err != nil {
			return err
		}
		if f.columns != nil {
			return nil
		}
		utils.Warnf("结果表缺少表头,重新写入: %s", f.path)
	}

	header := ResultsHeader(f.keywords)
	if err := writeCSV(f.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, [][]string{header}); err != nil {
		return err
	}
	f.columns = header
	return nil
}

// Load 读取已有结果
// 文件不存在时返回空结果
func (f *ResultsFile) Load() (*LoadedResults, error) {
	loaded := &LoadedResults{}

	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return loaded, nil
	}
	if err != nil {
		return nil, fmt.Errorf("打开结果表失败: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return loaded, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取结果表表头失败: %w", err)
	}
	f.columns = trimAll(header)
	positions := f.keywordPositions()

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("读取结果表失败 [%s:%d]: %w", f.path, line, err)
		}
		if len(record) < 3 {
			loaded.Skipped++
			continue
		}

		siteURL := models.Normalize(record[2])
		if !models.HasURLPrefix(siteURL) {
			loaded.Skipped++
			continue
		}

		matches := make([]int, len(f.keywords))
		for col, pos := range positions {
			if col >= len(record) {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(record[col]))
			if err != nil {
				utils.Warnf("结果表数值无效 [%s:%d] 列 %q: %q", f.path, line, f.columns[col], record[col])
				continue
			}
			matches[pos] = n
		}

		loaded.Rows = append(loaded.Rows, models.SiteResult{
			Site:    models.Site{ID: strings.TrimSpace(record[0]), Name: strings.TrimSpace(record[1]), URL: siteURL},
			Matches: matches,
		})
		loaded.SiteURLs = append(loaded.SiteURLs, siteURL)
	}

	return loaded, nil
}

// Append 追加一行
func (f *ResultsFile) Append(row models.SiteResult) error {
	if err := f.EnsureHeader(); err != nil {
		return err
	}
	if len(f.columns) < len(ResultsFixedColumns) {
		return fmt.Errorf("结果表表头不完整 [%s]: %v", f.path, f.columns)
	}

	byName := make(map[string]int, len(f.keywords))
	for i, kw := range f.keywords {
		if i < len(row.Matches) {
			byName[kw] = row.Matches[i]
		}
	}

	record := make([]string, len(f.columns))
	for col, name := range f.columns {
		switch col {
		case 0:
			record[col] = row.Site.ID
		case 1:
			record[col] = row.Site.Name
		case 2:
			record[col] = row.Site.URL
		case 3:
			record[col] = strconv.Itoa(row.Total())
		default:
			record[col] = strconv.Itoa(byName[name])
		}
	}

	return writeCSV(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, [][]string{record})
}

// MissingColumns 返回当前关键词中不在文件表头里的部分
func (f *ResultsFile) MissingColumns() []string {
	present := make(map[string]struct{}, len(f.columns))
	for _, c := range f.columns {
		present[c] = struct{}{}
	}
	missing := make([]string, 0)
	for _, kw := range f.keywords {
		if _, ok := present[kw]; !ok {
			missing = append(missing, kw)
		}
	}
	return missing
}

// keywordPositions 文件列下标 -> 当前关键词下标
func (f *ResultsFile) keywordPositions() map[int]int {
	current := make(map[string]int, len(f.keywords))
	for i, kw := range f.keywords {
		current[kw] = i
	}
	positions := make(map[int]int)
	for col := len(ResultsFixedColumns); col < len(f.columns); col++ {
		if pos, ok := current[f.columns[col]]; ok {
			positions[col] = pos
		}
	}
	return positions
}

func writeCSV(path string, flag int, records [][]string) error {
	file, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return fmt.Errorf("打开文件失败 [%s]: %w", path, err)
	}
	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		file.Close()
		return fmt.Errorf("写入CSV失败 [%s]: %w", path, err)
	}
	return file.Close()
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
