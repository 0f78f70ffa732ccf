package models

// Site 一个待爬取的站点(托管商或列表站点)
type Site struct {
	ID   string // 托管商ID (列表站点为空)
	Name string // 显示名称
	URL  string // 规范化后的种子URL
}

// Key 返回站点在结果表中的标识,没有ID时退回到URL
func (s Site) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.URL
}

// Label 返回用于日志和错误日志的站点名称
func (s Site) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

// CrawlTarget 标识一次站点爬取会话
type CrawlTarget struct {
	Site    Site
	URL     string // 种子URL (已规范化)
	BaseURL string // 种子的协议+主机
	Host    string // 种子的主机名
}

// NewCrawlTarget 由站点创建爬取目标
func NewCrawlTarget(site Site) CrawlTarget {
	seed := Normalize(site.URL)
	return CrawlTarget{
		Site:    site,
		URL:     seed,
		BaseURL: BaseURL(seed),
		Host:    Domain(seed),
	}
}
