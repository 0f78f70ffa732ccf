package crawlers

// Frontier 单个站点会话内的待爬队列
// 职责: FIFO队列 + 已访问集合 + 已入队集合,三者均为O(1)
// 每个会话新建一个实例,不跨站点共享,因此不需要加锁
type Frontier struct {
	pending []string
	head    int

	visited map[string]struct{}
	queued  map[string]struct{}

	// 页面上限: 已访问数达到后Next不再返回URL
	maxPages int

	// 持久化日志中的URL(历史爬取或失败),不会再次入队
	known func(string) bool
}

// NewFrontier 创建队列,种子URL直接入队
func NewFrontier(seed string, maxPages int, known func(string) bool) *Frontier {
	if known == nil {
		known = func(string) bool { return false }
	}
	f := &Frontier{
		pending:  make([]string, 0, 64),
		visited:  make(map[string]struct{}),
		queued:   make(map[string]struct{}),
		maxPages: maxPages,
		known:    known,
	}
	if seed != "" {
		f.pending = append(f.pending, seed)
		f.queued[seed] = struct{}{}
	}
	return f
}

// Next 取出下一个待爬URL
// 队列为空或已访问数达到上限时返回false
func (f *Frontier) Next() (string, bool) {
	if len(f.visited) >= f.maxPages || f.head >= len(f.pending) {
		return "", false
	}
	u := f.pending[f.head]
	f.pending[f.head] = ""
	f.head++
	delete(f.queued, u)

	// 回收已出队部分
	if f.head > 1024 && f.head*2 > len(f.pending) {
		f.pending = append(make([]string, 0, len(f.pending)-f.head), f.pending[f.head:]...)
		f.head = 0
	}
	return u, true
}

// MarkVisited 标记URL为已访问
func (f *Frontier) MarkVisited(u string) {
	f.visited[u] = struct{}{}
}

// Offer 尝试入队,已访问/已入队/历史已知的URL被拒绝
func (f *Frontier) Offer(u string) bool {
	if u == "" || f.IsVisited(u) || f.IsQueued(u) || f.known(u) {
		return false
	}
	f.pending = append(f.pending, u)
	f.queued[u] = struct{}{}
	return true
}

// IsVisited 检查URL是否已访问
func (f *Frontier) IsVisited(u string) bool {
	_, ok := f.visited[u]
	return ok
}

// IsQueued 检查URL是否在队列中
func (f *Frontier) IsQueued(u string) bool {
	_, ok := f.queued[u]
	return ok
}

// VisitedCount 返回已访问数
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// PendingCount 返回队列中等待的URL数
func (f *Frontier) PendingCount() int {
	return len(f.pending) - f.head
}
