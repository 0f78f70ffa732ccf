package models

import "sort"

// KeywordIndex 产品与关键词索引
// 每个关键词只归属一个产品(CSV中首次出现者胜出)
type KeywordIndex struct {
	products   []string
	variations map[string][]string // 产品 -> 变体(不含产品本身)
	keywords   []string            // 所有关键词,按首次出现顺序
	owner      map[string]string   // 关键词 -> 所属产品
	position   map[string]int      // 关键词 -> keywords中的下标
}

// NewKeywordIndex 创建空索引
func NewKeywordIndex() *KeywordIndex {
	return &KeywordIndex{
		variations: make(map[string][]string),
		owner:      make(map[string]string),
		position:   make(map[string]int),
	}
}

// AddProduct 注册一个产品及其拼写变体
// terms 为CSV整行(第一列即产品名本身);已注册的产品或关键词会被忽略
// 返回 false 表示产品已存在
func (ki *KeywordIndex) AddProduct(product string, terms []string) bool {
	if product == "" {
		return false
	}
	if _, exists := ki.variations[product]; exists {
		return false
	}

	ki.products = append(ki.products, product)
	variations := make([]string, 0)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if _, taken := ki.owner[term]; taken {
			continue
		}
		ki.position[term] = len(ki.keywords)
		ki.keywords = append(ki.keywords, term)
		ki.owner[term] = product
		if term != product {
			variations = append(variations, term)
		}
	}
	ki.variations[product] = variations
	return true
}

// Products 返回产品列表
func (ki *KeywordIndex) Products() []string {
	return append([]string(nil), ki.products...)
}

// Keywords 返回关键词列表
func (ki *KeywordIndex) Keywords() []string {
	return append([]string(nil), ki.keywords...)
}

// Variations 返回产品的变体列表
func (ki *KeywordIndex) Variations(product string) []string {
	return append([]string(nil), ki.variations[product]...)
}

// Owner 返回关键词所属产品
func (ki *KeywordIndex) Owner(keyword string) (string, bool) {
	p, ok := ki.owner[keyword]
	return p, ok
}

// Position 返回关键词在计数数组中的下标
func (ki *KeywordIndex) Position(keyword string) (int, bool) {
	i, ok := ki.position[keyword]
	return i, ok
}

// Len 返回关键词数量
func (ki *KeywordIndex) Len() int {
	return len(ki.keywords)
}

// Mentions 计算产品的总提及数: 产品本身与所有变体的命中计数之和
func (ki *KeywordIndex) Mentions(product string, matches []int) int {
	total := 0
	for i, kw := range ki.keywords {
		if i >= len(matches) {
			break
		}
		if ki.owner[kw] == product {
			total += matches[i]
		}
	}
	return total
}

// TopUsers 按产品提及数降序返回站点名称
// 同分按结果表中的先后顺序(稳定排序),最多 limit 个
func (ki *KeywordIndex) TopUsers(product string, table *ResultTable, limit int) []string {
	type user struct {
		name     string
		mentions int
	}

	users := make([]user, 0)
	for _, row := range table.Rows() {
		if m := ki.Mentions(product, row.Matches); m > 0 {
			users = append(users, user{name: row.Site.Label(), mentions: m})
		}
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].mentions > users[j].mentions
	})

	if limit < 0 {
		limit = 0
	}
	top := make([]string, 0, limit)
	for _, u := range users {
		if len(top) >= limit {
			break
		}
		top = append(top, u.name)
	}
	return top
}
