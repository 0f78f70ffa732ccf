package models

import (
	"encoding/json"
	"time"
)

// RunReport 一次运行的报告
type RunReport struct {
	RunID     string    `json:"run_id"`
	Mode      RunMode   `json:"mode"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Stats RunStats `json:"stats"`

	ProductCount int              `json:"product_count,omitempty"`
	KeywordCount int              `json:"keyword_count,omitempty"`
	Keywords     []KeywordSummary `json:"keywords,omitempty"`
	Products     []ProductSummary `json:"products,omitempty"`

	// 输出路径
	OutputDir string            `json:"output_dir"`
	Files     map[string]string `json:"files"`

	Config CrawlConfig `json:"config"`
}

// KeywordSummary 关键词统计
type KeywordSummary struct {
	Keyword string  `json:"keyword"`
	Sites   int     `json:"sites"`
	Share   float64 `json:"share"` // 占有命中站点的比例
}

// ProductSummary 产品统计
type ProductSummary struct {
	Product  string   `json:"product"`
	Sites    int      `json:"sites"`
	Share    float64  `json:"share"`
	TopUsers []string `json:"top_users"`
}

// ToJSON 序列化为JSON
func (r *RunReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *RunReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
