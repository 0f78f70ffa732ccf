// Package crawlers 实现单站点的广度优先爬取
//
// # 核心组件
//
// ## Frontier
//
// 每个站点会话一个实例: FIFO待爬队列 + 已访问集合 + 已入队集合。
// 已访问数达到页面上限后不再返回URL,持久化日志中已出现的URL不会入队。
//
// ## Fetcher
//
// CollyFetcher 基于Colly的同步下载器,一次只发一个请求,不重试。
// HTTP 4xx/5xx 照常返回页面,只有传输层失败(超时、DNS、TLS、连接)返回 *models.FetchError。
//
//	fetcher := NewCollyFetcher(FetcherOptions{Timeout: 30 * time.Second, Headers: headerManager})
//	page, err := fetcher.Fetch(ctx, "https://example.com")
//
// ## LinkClassifier
//
// 对页面中的每个链接按顺序判断: 非http(s) → 屏蔽结尾 → 屏蔽子串 → 已见过 →
// 同站(种子或响应的BaseURL前缀)则跟随,否则在列表站点模式下作为候选托管商(BaseURL粒度)。
//
// ## Engine
//
// 两种运行模式共用一个引擎,差异通过 ClassifierPolicy 与 PageHandler 注入:
//
//	// 列表站点模式: 收集外部候选,不处理页面内容
//	engine := NewEngine(fetcher, ClassifierPolicy{Block: block, CollectCandidates: true, KnownSites: seeds}, NoopHandler{}, 500)
//
//	// 托管商扫描模式: 只跟随同站链接,统计关键词页面命中数
//	engine := NewEngine(fetcher, ClassifierPolicy{Block: block}, NewKeywordHandler(NewKeywordMatcher(index)), 50)
//
//	result, err := engine.CrawlSite(ctx, target, state)
//
// 引擎不写文件: 返回的 CrawlResult 只含本次新增的记录,由调用方在站点结束后持久化。
package crawlers
