package crawlers

import (
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/models"
)

// LinkRoute 链接去向
type LinkRoute int

const (
	RouteDiscard   LinkRoute = iota // 丢弃
	RouteFollow                     // 同站点,加入Frontier
	RouteCandidate                  // 外部候选,记录BaseURL
)

func (r LinkRoute) String() string {
	switch r {
	case RouteFollow:
		return "follow"
	case RouteCandidate:
		return "candidate"
	default:
		return "discard"
	}
}

// LinkDecision 单个链接的分类结果
type LinkDecision struct {
	URL       string // 规范化后的链接
	Route     LinkRoute
	Candidate string // RouteCandidate时为外部链接的BaseURL
	Reason    string // 丢弃原因
}

// ClassifierPolicy 分类策略,由运行模式注入
type ClassifierPolicy struct {
	Block *models.BlockPolicy

	// 为true时外部链接作为候选记录(列表站点模式),否则直接丢弃(托管商扫描模式)
	CollectCandidates bool

	// 已知站点URL: 外部链接的域名若是其中任一URL的子串则不作为候选
	KnownSites []string
}

// LinkClassifier 站点会话内的链接分类器
type LinkClassifier struct {
	policy     ClassifierPolicy
	target     models.CrawlTarget
	frontier   *Frontier
	candidates *models.URLSet
}

// NewLinkClassifier 创建分类器
// candidates 为本次运行已记录的候选集合(含历史),分类时只读
func NewLinkClassifier(policy ClassifierPolicy, target models.CrawlTarget, frontier *Frontier, candidates *models.URLSet) *LinkClassifier {
	if candidates == nil {
		candidates = models.NewURLSet()
	}
	return &LinkClassifier{
		policy:     policy,
		target:     target,
		frontier:   frontier,
		candidates: candidates,
	}
}

// Classify 对页面中的一个href分类
// responseBase 为当前页面最终URL的BaseURL
func (lc *LinkClassifier) Classify(href, responseBase string) LinkDecision {
	u := models.Normalize(href)
	d := LinkDecision{URL: u, Route: RouteDiscard}

	switch {
	case u == "":
		d.Reason = "empty"
		return d
	case !models.HasURLPrefix(u):
		d.Reason = "not http(s)"
		return d
	}
	if lc.policy.Block != nil {
		if rule, hit := lc.policy.Block.BlockedSuffix(u); hit {
			d.Reason = "blocked suffix " + rule
			return d
		}
		if rule, hit := lc.policy.Block.BlockedSubstring(u); hit {
			d.Reason = "blocked substring " + rule
			return d
		}
	}
	if lc.frontier.IsVisited(u) || lc.frontier.IsQueued(u) {
		d.Reason = "seen"
		return d
	}

	if (lc.target.BaseURL != "" && strings.HasPrefix(u, lc.target.BaseURL)) || (responseBase != "" && strings.HasPrefix(u, responseBase)) {
		d.Route = RouteFollow
		return d
	}

	if !lc.policy.CollectCandidates {
		d.Reason = "external"
		return d
	}

	base := models.BaseURL(u)
	switch {
	case lc.candidates.Has(base):
		d.Reason = "candidate exists"
	case lc.isKnownSite(models.Domain(base)):
		d.Reason = "known site"
	case lc.policy.Block != nil && lc.policy.Block.IsBlockedURL(base):
		d.Reason = "blocked url"
	default:
		d.Route = RouteCandidate
		d.Candidate = base
	}
	return d
}

func (lc *LinkClassifier) isKnownSite(domain string) bool {
	for _, site := range lc.policy.KnownSites {
		if strings.Contains(site, domain) {
			return true
		}
	}
	return false
}
