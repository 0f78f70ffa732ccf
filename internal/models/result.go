package models

// PageKeywords 单个页面上命中的关键词
type PageKeywords struct {
	SiteKey  string
	PageURL  string
	Keywords []string
}

// CrawlResult 单个站点一次爬取的产出
type CrawlResult struct {
	Target CrawlTarget

	// Matches 每个关键词的页面命中数(一个页面最多+1),下标与KeywordIndex一致
	Matches []int

	NewCrawled    []string      // 本次新爬取的URL
	NewErrored    []string      // 本次新失败的URL
	NewCandidates []string      // 本次新发现的外部候选(BaseURL粒度)
	FetchErrors   []*FetchError // 失败详情,与NewErrored一一对应
	Pages         []PageKeywords

	PagesVisited int
}

// NewCrawlResult 创建站点结果,keywordCount为关键词数量(列表站点模式为0)
func NewCrawlResult(target CrawlTarget, keywordCount int) *CrawlResult {
	return &CrawlResult{
		Target:  target,
		Matches: make([]int, keywordCount),
	}
}

// TotalMatches 返回所有关键词命中数之和
func (r *CrawlResult) TotalMatches() int {
	total := 0
	for _, m := range r.Matches {
		total += m
	}
	return total
}

// SiteKeywords 返回站点所有页面命中关键词的并集(按首次出现顺序)
func (r *CrawlResult) SiteKeywords() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range r.Pages {
		for _, kw := range p.Keywords {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// SiteResult 结果表中的一行
type SiteResult struct {
	Site    Site
	Matches []int
}

// Total 返回该行总命中数
func (sr SiteResult) Total() int {
	total := 0
	for _, m := range sr.Matches {
		total += m
	}
	return total
}

// ResultTable 按插入顺序保存每个站点的结果行
type ResultTable struct {
	order []string
	rows  map[string]SiteResult
}

// NewResultTable 创建空结果表
func NewResultTable() *ResultTable {
	return &ResultTable{rows: make(map[string]SiteResult)}
}

// Put 写入或覆盖一行,首次写入决定顺序
func (t *ResultTable) Put(row SiteResult) {
	key := row.Site.Key()
	if _, exists := t.rows[key]; !exists {
		t.order = append(t.order, key)
	}
	t.rows[key] = row
}

// Has 判断站点是否已有结果行
func (t *ResultTable) Has(key string) bool {
	_, ok := t.rows[key]
	return ok
}

// Get 获取站点结果行
func (t *ResultTable) Get(key string) (SiteResult, bool) {
	row, ok := t.rows[key]
	return row, ok
}

// Rows 按插入顺序返回所有行
func (t *ResultTable) Rows() []SiteResult {
	out := make([]SiteResult, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.rows[key])
	}
	return out
}

// Len 返回行数
func (t *ResultTable) Len() int {
	return len(t.order)
}

// SitesWithMatches 返回至少命中一个关键词的站点数
func (t *ResultTable) SitesWithMatches() int {
	n := 0
	for _, row := range t.rows {
		if row.Total() > 0 {
			n++
		}
	}
	return n
}

// SitesWithKeyword 返回命中指定关键词下标的站点数
func (t *ResultTable) SitesWithKeyword(i int) int {
	n := 0
	for _, row := range t.rows {
		if i < len(row.Matches) && row.Matches[i] > 0 {
			n++
		}
	}
	return n
}
