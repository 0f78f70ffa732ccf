package models

import "strings"

// DefaultBlockedSuffixes 默认禁止跟随的URL结尾
//
// ".doc/about" 保持原有规则集的字面值: 原列表中 ".doc" 与 "/about" 之间缺少分隔,
// 两条规则合并成了一条。是否拆分需要规则维护者确认。
var DefaultBlockedSuffixes = []string{
	".exe", ".zip", ".pdf", ".jpg", ".jpeg", ".png", ".ico", ".mp3", ".avi", ".mov", ".mp4",
	".mpg", ".mpeg", ".xlsx", ".pptx", ".docx", ".doc/about",
	"/about-us", "/agb", "/api", "/blog", "/careers", "/cart.php", "/company", "/contact",
	"/contact-us", "/cookies", "/datenschutz", "/docs", "/events", "/facebook", "/help", "/hilfe",
	"/history", "/impressum", "/instagram", "/kb", "/kontakt", "/jobs", "/legal", "/linkedin",
	"/login", "/our-team", "/privacy", "/privacy-policy", "/recruitment", "/team", "/terms",
	"/terms-conditions", "/terms-of-service", "/twitter", "/ueber-uns", "/unternehmen",
	"/warenkorb", "/wiki", "/wp-admin",
}

// CollectBlockedSubstrings 列表站点模式下禁止出现的子串
var CollectBlockedSubstrings = []string{"/blog", "/wp-admin", "instagram", "twitter", "facebook", "linkedin"}

// ScanBlockedSubstrings 托管商扫描模式下禁止出现的子串
var ScanBlockedSubstrings = []string{"/blog/", "/wp-admin/"}

// DefaultBlockedURLs 永远不视为托管商的站点(通用基础设施厂商)
var DefaultBlockedURLs = []string{
	"https://www.akamai.com",
	"https://www.cloudflare.com",
	"https://cpanel.net",
	"https://plesk.com",
}

// BlockPolicy URL屏蔽规则,加载后只读
type BlockPolicy struct {
	suffixes   []string
	substrings []string
	exact      map[string]struct{}
}

// NewBlockPolicy 创建屏蔽规则
// 结尾规则与精确URL统一小写并去除末尾'/';子串规则只转小写,末尾'/'有意义
func NewBlockPolicy(suffixes, substrings, exactURLs []string) *BlockPolicy {
	lowered := make([]string, 0, len(substrings))
	for _, s := range substrings {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			lowered = append(lowered, s)
		}
	}
	p := &BlockPolicy{
		suffixes:   cleanRules(suffixes),
		substrings: lowered,
		exact:      make(map[string]struct{}, len(exactURLs)),
	}
	for _, u := range cleanRules(exactURLs) {
		p.exact[u] = struct{}{}
	}
	return p
}

// NormalizeRule 统一规则格式: 去除空白、末尾'/',转小写
func NormalizeRule(rule string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(rule), "/"))
}

func cleanRules(rules []string) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if r = NormalizeRule(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// BlockedSuffix 返回命中的结尾规则
func (p *BlockPolicy) BlockedSuffix(u string) (string, bool) {
	for _, s := range p.suffixes {
		if strings.HasSuffix(u, s) {
			return s, true
		}
	}
	return "", false
}

// BlockedSubstring 返回命中的子串规则
func (p *BlockPolicy) BlockedSubstring(u string) (string, bool) {
	for _, s := range p.substrings {
		if strings.Contains(u, s) {
			return s, true
		}
	}
	return "", false
}

// IsBlockedURL 判断URL是否在精确屏蔽列表中
func (p *BlockPolicy) IsBlockedURL(u string) bool {
	_, ok := p.exact[NormalizeRule(u)]
	return ok
}

// Suffixes 返回结尾规则副本
func (p *BlockPolicy) Suffixes() []string {
	return append([]string(nil), p.suffixes...)
}
