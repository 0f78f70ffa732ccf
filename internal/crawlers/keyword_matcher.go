package crawlers

import (
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/models"
)

// KeywordMatcher 页面文本关键词匹配
// 不区分大小写的子串匹配,同一页面每个关键词最多计一次
type KeywordMatcher struct {
	keywords []string
	lowered  []string
}

// NewKeywordMatcher 由关键词索引创建匹配器
func NewKeywordMatcher(index *models.KeywordIndex) *KeywordMatcher {
	keywords := index.Keywords()
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &KeywordMatcher{keywords: keywords, lowered: lowered}
}

// Match 返回页面中出现的关键词下标(升序)
func (m *KeywordMatcher) Match(text string) []int {
	text = strings.ToLower(text)
	hits := make([]int, 0)
	for i, kw := range m.lowered {
		if kw != "" && strings.Contains(text, kw) {
			hits = append(hits, i)
		}
	}
	return hits
}

// Keyword 返回下标对应的关键词原文
func (m *KeywordMatcher) Keyword(i int) string {
	return m.keywords[i]
}

// Len 返回关键词数量
func (m *KeywordMatcher) Len() int {
	return len(m.keywords)
}

// PageHandler 页面回调,由运行模式注入
// Slots 返回每站点计数数组的长度
type PageHandler interface {
	Slots() int
	HandlePage(result *models.CrawlResult, pageURL, text string)
}

// NoopHandler 列表站点模式: 只发现URL,不处理页面内容
type NoopHandler struct{}

// Slots 实现PageHandler
func (NoopHandler) Slots() int { return 0 }

// HandlePage 实现PageHandler
func (NoopHandler) HandlePage(*models.CrawlResult, string, string) {}

// KeywordHandler 托管商扫描模式: 累计关键词页面命中数
type KeywordHandler struct {
	matcher *KeywordMatcher
}

// NewKeywordHandler 创建关键词回调
func NewKeywordHandler(matcher *KeywordMatcher) *KeywordHandler {
	return &KeywordHandler{matcher: matcher}
}

// Slots 实现PageHandler
func (h *KeywordHandler) Slots() int { return h.matcher.Len() }

// HandlePage 实现PageHandler
func (h *KeywordHandler) HandlePage(result *models.CrawlResult, pageURL, text string) {
	hits := h.matcher.Match(text)
	if len(hits) == 0 {
		return
	}

	found := make([]string, 0, len(hits))
	for _, i := range hits {
		if i < len(result.Matches) {
			result.Matches[i]++
		}
		found = append(found, h.matcher.Keyword(i))
	}
	result.Pages = append(result.Pages, models.PageKeywords{
		SiteKey:  result.Target.Site.Key(),
		PageURL:  pageURL,
		Keywords: found,
	})
}
