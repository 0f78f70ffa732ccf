package models

// URLSet 保持插入顺序的URL集合,成员判断O(1)
type URLSet struct {
	items map[string]struct{}
	order []string
}

// NewURLSet 创建集合
func NewURLSet(urls ...string) *URLSet {
	s := &URLSet{items: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		s.Add(u)
	}
	return s
}

// Add 添加URL,返回 false 表示已存在
func (s *URLSet) Add(u string) bool {
	if _, ok := s.items[u]; ok {
		return false
	}
	s.items[u] = struct{}{}
	s.order = append(s.order, u)
	return true
}

// Has 判断URL是否存在
func (s *URLSet) Has(u string) bool {
	_, ok := s.items[u]
	return ok
}

// Len 返回元素个数
func (s *URLSet) Len() int {
	return len(s.order)
}

// List 按插入顺序返回所有URL
func (s *URLSet) List() []string {
	return append([]string(nil), s.order...)
}

// RunState 一次运行中由驱动器持有的全部可变状态
// 启动时从持久化文件加载,随每个站点完成而增长
type RunState struct {
	Crawled    *URLSet      // 历史+本次已爬取URL
	Errored    *URLSet      // 历史+本次失败URL
	Candidates *URLSet      // 列表站点模式: 已记录的外部候选BaseURL
	Results    *ResultTable // 托管商扫描模式: 站点结果表
}

// NewRunState 创建空状态
func NewRunState() *RunState {
	return &RunState{
		Crawled:    NewURLSet(),
		Errored:    NewURLSet(),
		Candidates: NewURLSet(),
		Results:    NewResultTable(),
	}
}

// Known 判断URL是否已在爬取日志或错误日志中
func (s *RunState) Known(u string) bool {
	return s.Crawled.Has(u) || s.Errored.Has(u)
}
