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

// LoadKeywordIndex 读取产品CSV: 第1列为产品名,其余列为拼写变体
// 关键词归属于第一次出现它的产品
func LoadKeywordIndex(path string, opts LoadOptions) (*models.KeywordIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &models.MissingInputError{Role: "products", Path: path}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	index := models.NewKeywordIndex()
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取产品文件失败 [%s]: %w", path, err)
		}
		line, _ := reader.FieldPos(0)

		product := strings.TrimSpace(record[0])
		if product == "" {
			rowErr := &models.RowError{File: path, Line: line, Reason: "产品名为空"}
			if opts.Strict {
				return nil, rowErr
			}
			utils.Warnf("%v,已跳过", rowErr)
			skipped++
			continue
		}

		terms := make([]string, 0, len(record))
		terms = append(terms, product)
		for _, kw := range record[1:] {
			if kw = strings.TrimSpace(kw); kw != "" {
				terms = append(terms, kw)
			}
		}
		if !index.AddProduct(product, terms) {
			utils.Debugf("重复的产品已忽略: %s (%s:%d)", product, path, line)
		}
	}

	utils.Infof("从 %s 加载了 %d 个产品, %d 个关键词", path, len(index.Products()), index.Len())
	return index, nil
}
