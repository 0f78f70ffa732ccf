package inputs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
)

// SourceKind 合并来源的文件格式
type SourceKind int

const (
	SourceText    SourceKind = iota // 每行一个网址
	SourceURLCSV                    // 第1列网址,第2列公司名(可选)
	SourceHosters                   // 托管商CSV: ID, 名称, 网址
)

// PrepareSource 一个合并来源
type PrepareSource struct {
	Path string
	Kind SourceKind
}

// DefaultPrepareSources 默认的合并来源,不存在的文件跳过
func DefaultPrepareSources(inputDir, outputDir string) []PrepareSource {
	return []PrepareSource{
		{Path: filepath.Join(inputDir, "hosters.csv"), Kind: SourceHosters},
		{Path: filepath.Join(inputDir, "cpanel_hosters.csv"), Kind: SourceURLCSV},
		{Path: filepath.Join(inputDir, "salesforce_accounts.csv"), Kind: SourceURLCSV},
		{Path: filepath.Join(inputDir, "url.txt"), Kind: SourceText},
		{Path: filepath.Join(outputDir, "possible_hoster_urls_found.txt"), Kind: SourceText},
		{Path: filepath.Join(outputDir, "urls_crawled.txt"), Kind: SourceText},
		{Path: filepath.Join(inputDir, "whmcs_users.csv"), Kind: SourceURLCSV},
	}
}

// DetectSource 根据扩展名推断格式
func DetectSource(path string) PrepareSource {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return PrepareSource{Path: path, Kind: SourceURLCSV}
	}
	return PrepareSource{Path: path, Kind: SourceText}
}

// PrepareStats 合并统计
type PrepareStats struct {
	Sources             []string // 实际读取的文件
	Imported            int      // 读取到的有效网址
	ImportedWithCompany int
	Exported            int // 去重后写出的网址(每个域名一个)
	ExportedWithCompany int
	Companies           int
	HosterIDs           int
}

type preparedEntry struct {
	url, name, id string
}

// PrepareHosters 合并所有来源,每个域名保留第一次出现的记录,写出可直接用于扫描的托管商CSV
// 输出列: HosterID, CompanyName, URL
func PrepareHosters(sources []PrepareSource, output string) (*PrepareStats, error) {
	stats := &PrepareStats{}
	order := make([]string, 0)
	entries := make(map[string]preparedEntry)
	companies := make(map[string]struct{})
	ids := make(map[string]struct{})

	add := func(rawURL, name, id string) {
		u := models.Normalize(rawURL)
		if u == "" || models.ValidateURL(u) != nil {
			return
		}
		stats.Imported++
		if name == "-" {
			name = ""
		}
		if name != "" {
			stats.ImportedWithCompany++
		}

		d := models.Domain(u)
		if _, exists := entries[d]; exists {
			return
		}
		// 除英文子目录外只保留BaseURL
		if !strings.Contains(u, "/en") {
			u = models.BaseURL(u)
		}
		entries[d] = preparedEntry{url: u, name: name, id: id}
		order = append(order, d)

		if name != "" {
			stats.ExportedWithCompany++
			companies[name] = struct{}{}
		}
		if id != "" {
			ids[id] = struct{}{}
		}
	}

	for _, src := range sources {
		if _, err := os.Stat(src.Path); err != nil {
			continue
		}
		utils.Infof("导入网址: %s", src.Path)
		stats.Sources = append(stats.Sources, src.Path)

		if src.Kind == SourceText {
			lines, err := readTextLines(src.Path)
			if err != nil {
				return nil, err
			}
			for _, line := range lines {
				add(line, "", "")
			}
			continue
		}

		if err := readCSVRows(src.Path, func(row []string) {
			switch {
			case src.Kind == SourceHosters && len(row) >= 3:
				add(row[2], strings.TrimSpace(row[1]), strings.TrimSpace(row[0]))
			case src.Kind == SourceURLCSV:
				name := ""
				if len(row) > 1 {
					name = strings.TrimSpace(row[1])
				}
				add(row[0], name, "")
			}
		}); err != nil {
			return nil, err
		}
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	file, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("创建输出文件失败: %w", err)
	}
	w := csv.NewWriter(file)
	w.Write([]string{"HosterID", "CompanyName", "URL"})
	for _, d := range order {
		e := entries[d]
		w.Write([]string{e.id, e.name, e.url})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return nil, fmt.Errorf("写入输出文件失败: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, err
	}

	stats.Exported = len(order)
	stats.Companies = len(companies)
	stats.HosterIDs = len(ids)
	return stats, nil
}

func readCSVRows(path string, fn func(row []string)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开文件失败 [%s]: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("读取CSV失败 [%s]: %w", path, err)
		}
		if len(row) > 0 {
			fn(row)
		}
	}
}
