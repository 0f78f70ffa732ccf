package crawlers

import (
	"context"
	"errors"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
	"golang.org/x/time/rate"
)

// ErrorSink 接收每个传输层失败,用于写入人类可读的错误日志
type ErrorSink interface {
	RecordFetchError(target models.CrawlTarget, fe *models.FetchError)
}

// EngineOption 引擎可选配置
type EngineOption func(*Engine)

// WithRateLimit 每次下载前等待限速器,rps<=0表示不限速
func WithRateLimit(rps float64) EngineOption {
	return func(e *Engine) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithErrorSink 设置失败记录器
func WithErrorSink(sink ErrorSink) EngineOption {
	return func(e *Engine) {
		e.errorSink = sink
	}
}

// Engine 单站点广度优先爬取引擎
// 两种运行模式共用同一个引擎,差异只在注入的分类策略和页面回调
type Engine struct {
	fetcher   Fetcher
	policy    ClassifierPolicy
	handler   PageHandler
	maxPages  int
	limiter   *rate.Limiter
	errorSink ErrorSink
}

// NewEngine 创建引擎
func NewEngine(fetcher Fetcher, policy ClassifierPolicy, handler PageHandler, maxPages int, opts ...EngineOption) *Engine {
	if handler == nil {
		handler = NoopHandler{}
	}
	if maxPages < 1 {
		maxPages = 1
	}
	e := &Engine{
		fetcher:  fetcher,
		policy:   policy,
		handler:  handler,
		maxPages: maxPages,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxPages 返回每站点页面上限
func (e *Engine) MaxPages() int {
	return e.maxPages
}

// CrawlSite 爬取一个站点直到Frontier耗尽
// state 中的集合随爬取即时增长;返回的结果只包含本次新增内容,由调用方持久化
// ctx取消时返回已完成的部分结果和ctx错误
func (e *Engine) CrawlSite(ctx context.Context, target models.CrawlTarget, state *models.RunState) (*models.CrawlResult, error) {
	result := models.NewCrawlResult(target, e.handler.Slots())

	frontier := NewFrontier(target.URL, e.maxPages, state.Known)
	classifier := NewLinkClassifier(e.policy, target, frontier, state.Candidates)

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		u, ok := frontier.Next()
		if !ok {
			break
		}
		frontier.MarkVisited(u)
		result.PagesVisited++

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return result, err
			}
		}

		utils.Debugf("      %s", u)
		page, err := e.fetcher.Fetch(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			e.recordFailure(target, state, result, u, err)
			continue
		}

		if state.Crawled.Add(u) {
			result.NewCrawled = append(result.NewCrawled, u)
		}

		// 重定向到其他主机时单独记录最终URL
		final := models.Normalize(page.FinalURL)
		if final != "" && models.Domain(final) != target.Host && state.Crawled.Add(final) {
			result.NewCrawled = append(result.NewCrawled, final)
		}

		parsed, err := ParsePage(page)
		if err != nil {
			utils.Warnf("%v", err)
			continue
		}

		e.handler.HandlePage(result, final, parsed.Text)

		responseBase := models.BaseURL(final)
		for _, href := range parsed.Links {
			decision := classifier.Classify(href, responseBase)
			switch decision.Route {
			case RouteFollow:
				frontier.Offer(decision.URL)
			case RouteCandidate:
				if state.Candidates.Add(decision.Candidate) {
					result.NewCandidates = append(result.NewCandidates, decision.Candidate)
					utils.Debugf("发现候选托管商: %s (来自 %s)", decision.Candidate, final)
				}
			}
		}
	}

	utils.Debugf("站点完成 [%s]: 访问 %d 页, 失败 %d, 新候选 %d",
		target.Site.Label(), result.PagesVisited, len(result.NewErrored), len(result.NewCandidates))
	return result, nil
}

func (e *Engine) recordFailure(target models.CrawlTarget, state *models.RunState, result *models.CrawlResult, u string, err error) {
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		fe = models.NewFetchError(u, err)
	}

	if state.Errored.Add(u) {
		result.NewErrored = append(result.NewErrored, u)
		result.FetchErrors = append(result.FetchErrors, fe)
	}
	utils.Warnf("下载失败 [%s] 来自 %s: %v", u, target.Site.Label(), fe.Cause)

	if e.errorSink != nil {
		e.errorSink.RecordFetchError(target, fe)
	}
}
