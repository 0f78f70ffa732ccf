package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RecoveryAshes/HosterScan/internal/crawlers"
	"github.com/RecoveryAshes/HosterScan/internal/inputs"
	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/storage"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
)

// RunOptions 一次爬取运行的参数
type RunOptions struct {
	Mode  models.RunMode
	Crawl models.CrawlConfig

	Reset      bool
	ImportURLs string   // 列表站点模式: 预先导入的候选URL文件
	Headers    []string // 命令行 -H
	PrintSites bool     // 爬取前打印每个站点
	ShowBar    bool

	Out io.Writer // 统计输出,nil为标准输出
}

// Runner 驱动一次运行: 加载输入与历史状态,按顺序爬取站点,每站点完成后持久化
type Runner struct {
	cfg   *Config
	opts  RunOptions
	runID string

	fetcher crawlers.Fetcher
	memory  *utils.ResourceMonitor
}

// NewRunner 创建运行器
func NewRunner(cfg *Config, opts RunOptions, runID string) *Runner {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Runner{
		cfg:    cfg,
		opts:   opts,
		runID:  runID,
		memory: utils.NewResourceMonitor(cfg.Resource.MinFreeMemoryMB, nil),
	}
}

// WithFetcher 替换下载器
func (r *Runner) WithFetcher(f crawlers.Fetcher) *Runner {
	r.fetcher = f
	return r
}

// modeSetup 一种模式的输入与注入策略
type modeSetup struct {
	sites   *inputs.SiteList
	seeds   []models.Site
	index   *models.KeywordIndex // 仅扫描模式
	policy  crawlers.ClassifierPolicy
	handler crawlers.PageHandler
}

// requirements 返回必需的输入文件
func (r *Runner) requirements() []inputs.Requirement {
	in := r.cfg.Inputs
	var reqs []inputs.Requirement
	switch r.opts.Mode {
	case models.ModeCollect:
		reqs = append(reqs, inputs.Requirement{Role: "listing sites", Path: in.ListingSites})
		if r.opts.ImportURLs != "" {
			reqs = append(reqs, inputs.Requirement{Role: "import urls", Path: r.opts.ImportURLs})
		}
	default:
		reqs = append(reqs,
			inputs.Requirement{Role: "hosters", Path: in.Hosters},
			inputs.Requirement{Role: "products", Path: in.Products},
		)
	}
	return reqs
}

// setup 加载输入文件并组装模式策略
func (r *Runner) setup() (*modeSetup, error) {
	in := r.cfg.Inputs
	loadOpts := inputs.LoadOptions{Strict: in.Strict}

	suffixes, err := inputs.LoadRules(in.BlockedURLEndings, models.DefaultBlockedSuffixes)
	if err != nil {
		return nil, err
	}
	blockedURLs, err := inputs.LoadRules(in.BlockedHosters, models.DefaultBlockedURLs)
	if err != nil {
		return nil, err
	}

	ms := &modeSetup{}
	switch r.opts.Mode {
	case models.ModeCollect:
		block := models.NewBlockPolicy(suffixes, models.CollectBlockedSubstrings, blockedURLs)
		if ms.sites, err = inputs.LoadListingSites(in.ListingSites); err != nil {
			return nil, err
		}
		ms.seeds = ms.sites.Sites
		ms.policy = crawlers.ClassifierPolicy{Block: block, CollectCandidates: true, KnownSites: ms.sites.URLs()}
		ms.handler = crawlers.NoopHandler{}
	default:
		block := models.NewBlockPolicy(suffixes, models.ScanBlockedSubstrings, blockedURLs)
		if ms.sites, err = inputs.LoadHosters(in.Hosters, block, loadOpts); err != nil {
			return nil, err
		}
		if ms.index, err = inputs.LoadKeywordIndex(in.Products, loadOpts); err != nil {
			return nil, err
		}
		ms.seeds = ms.sites.Range(r.opts.Crawl.StartAt, r.opts.Crawl.StopAt)
		ms.policy = crawlers.ClassifierPolicy{Block: block}
		ms.handler = crawlers.NewKeywordHandler(crawlers.NewKeywordMatcher(ms.index))
	}
	return ms, nil
}

// Run 执行一次完整运行
// ctx取消时当前站点不提交,已完成站点的记录保留,返回部分报告与ctx错误
func (r *Runner) Run(ctx context.Context) (*models.RunReport, error) {
	start := time.Now()
	cc := r.opts.Crawl
	if err := cc.Validate(); err != nil {
		return nil, fmt.Errorf("爬取配置无效: %w", err)
	}

	// 所有必需文件在任何网络请求之前检查
	if err := inputs.RequireFiles(r.requirements()...); err != nil {
		return nil, err
	}
	ms, err := r.setup()
	if err != nil {
		return nil, err
	}

	layout := storage.NewLayout(r.cfg.Output.Dir, r.opts.Mode)
	if r.opts.Reset {
		utils.Infof("删除 %s 模式的历史数据", r.opts.Mode)
		if err := layout.Reset(); err != nil {
			return nil, err
		}
	}
	if err := layout.EnsureDir(); err != nil {
		return nil, err
	}

	var keywords []string
	var recorder storage.PageRecorder
	if ms.index != nil {
		keywords = ms.index.Keywords()
		if recorder, err = storage.NewPageRecorder(r.cfg.Output.PageKeywords, layout); err != nil {
			return nil, err
		}
	}
	store := storage.NewStateStore(layout, keywords, recorder, r.runID)
	defer func() {
		if cerr := store.Close(); cerr != nil {
			utils.Warnf("关闭状态存储失败: %v", cerr)
		}
	}()

	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	r.memory.Check()

	if r.opts.Mode == models.ModeCollect && r.opts.ImportURLs != "" {
		raw, err := storage.ReadLines(r.opts.ImportURLs)
		if err != nil {
			return nil, err
		}
		n, err := store.ImportCandidates(state, raw)
		if err != nil {
			return nil, fmt.Errorf("导入候选URL失败: %w", err)
		}
		utils.Infof("从 %s 导入了 %d 个新的候选URL", r.opts.ImportURLs, n)
	}
	if ms.index != nil {
		if err := storage.WriteLines(layout.Products, ms.index.Products()); err != nil {
			return nil, err
		}
		if err := storage.WriteLines(layout.Keywords, ms.index.Keywords()); err != nil {
			return nil, err
		}
	}

	fetcher := r.fetcher
	if fetcher == nil {
		hm, err := NewHeaderManager(cc.UserAgent, r.cfg.HTTP.Headers, r.opts.Headers)
		if err != nil {
			return nil, err
		}
		if err := hm.Validate(); err != nil {
			return nil, err
		}
		fetcher = crawlers.NewCollyFetcher(crawlers.FetcherOptions{
			Timeout:            cc.RequestTimeout(),
			UserAgent:          cc.UserAgent,
			InsecureSkipVerify: cc.InsecureSkipTLS,
			Headers:            hm,
		})
	}
	engine := crawlers.NewEngine(fetcher, ms.policy, ms.handler, cc.MaxPages,
		crawlers.WithRateLimit(cc.RequestsPerSecond),
		crawlers.WithErrorSink(store.ErrorLog()),
	)

	stats := models.RunStats{SitesTotal: len(ms.sites.Sites), RowsSkipped: len(ms.sites.Malformed)}
	crawlErr := r.crawlSites(ctx, engine, store, state, ms.seeds, &stats)
	if crawlErr != nil && !errors.Is(crawlErr, context.Canceled) && !errors.Is(crawlErr, context.DeadlineExceeded) {
		return nil, crawlErr
	}

	report := r.buildReport(start, ms, layout, state, stats)
	if err := r.writeReport(report, layout); err != nil {
		return report, err
	}
	return report, crawlErr
}

// crawlSites 按输入顺序逐个爬取站点
func (r *Runner) crawlSites(ctx context.Context, engine *crawlers.Engine, store *storage.StateStore,
	state *models.RunState, seeds []models.Site, stats *models.RunStats) error {

	var bar interface{ Add(int) error }
	if r.opts.ShowBar && len(seeds) > 0 {
		pb := utils.NewProgressBar(len(seeds), fmt.Sprintf("[%s]", r.opts.Mode))
		defer pb.Finish()
		bar = pb
	}

	for _, site := range seeds {
		if err := ctx.Err(); err != nil {
			utils.Warnf("运行被中断,已完成 %d 个站点", stats.SitesNew)
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}

		target := models.NewCrawlTarget(site)
		if !models.HasURLPrefix(target.URL) {
			continue
		}
		// 已有结果行或已在日志中的种子视为已处理
		if state.Results.Has(site.Key()) || state.Known(target.URL) {
			utils.Debugf("跳过已处理站点: %s", target.URL)
			continue
		}

		if r.opts.PrintSites {
			utils.Infof("%s (%s)", site.Label(), target.URL)
		} else {
			utils.Debugf("%s (%s)", site.Label(), target.URL)
		}
		if ok, reason := r.memory.Check(); !ok {
			utils.Debugf("继续爬取: %s", reason)
		}

		result, err := engine.CrawlSite(ctx, target, state)
		if err != nil {
			utils.Warnf("站点 %s 未完成,本站点记录不保存: %v", target.URL, err)
			return err
		}
		if err := store.CommitSite(result); err != nil {
			return fmt.Errorf("保存站点 %s 失败: %w", target.URL, err)
		}
		if r.opts.Mode == models.ModeScan {
			row := models.SiteResult{Site: site, Matches: result.Matches}
			row.Site.URL = target.URL
			state.Results.Put(row)
		}
		stats.SitesNew++
	}
	return nil
}

// buildReport 汇总统计,计数包含历史记录
func (r *Runner) buildReport(start time.Time, ms *modeSetup, layout storage.Layout,
	state *models.RunState, stats models.RunStats) *models.RunReport {

	in := r.cfg.Inputs
	stats.URLsCrawled = state.Crawled.Len()
	stats.CrawlErrors = state.Errored.Len()
	stats.CandidatesFound = state.Candidates.Len()

	report := &models.RunReport{
		RunID:     r.runID,
		Mode:      r.opts.Mode,
		StartTime: start,
		OutputDir: layout.Dir,
		Files: map[string]string{
			"crawled": layout.CrawledLog,
			"errored": layout.ErroredLog,
			"errors":  layout.CrawlErrorLog,
		},
		Config: r.opts.Crawl,
	}

	if ms.index != nil {
		stats.SitesChecked = state.Results.Len()
		stats.SitesWithMatches = state.Results.SitesWithMatches()
		report.ProductCount = len(ms.index.Products())
		report.KeywordCount = ms.index.Len()
		report.Keywords = utils.SummarizeKeywords(ms.index, state.Results)
		report.Products = utils.SummarizeProducts(ms.index, state.Results, r.cfg.Report.TopUsers)
		report.Files["hosters"] = in.Hosters
		report.Files["products"] = in.Products
		report.Files["results"] = layout.Results
	} else {
		for _, s := range ms.sites.Sites {
			if state.Known(s.URL) {
				stats.SitesChecked++
			}
		}
		report.Files["listing_sites"] = in.ListingSites
		report.Files["candidates"] = layout.Candidates
	}

	report.EndTime = time.Now()
	stats.Duration = report.EndTime.Sub(start).Seconds()
	report.Stats = stats
	return report
}

// writeReport 打印统计并写入JSON/Markdown报告
func (r *Runner) writeReport(report *models.RunReport, layout storage.Layout) error {
	if err := utils.NewReporter(r.opts.Out).PrintSummary(report); err != nil {
		return err
	}
	if err := utils.WriteJSONReport(layout.Report, report); err != nil {
		return err
	}
	if r.cfg.Output.MarkdownSummary {
		if err := utils.WriteMarkdownSummary(layout.Summary, report); err != nil {
			return err
		}
	}
	utils.Infof("运行完成: 新爬取站点 %d, 耗时 %.1fs, 报告: %s", report.Stats.SitesNew, report.Stats.Duration, layout.Report)
	return nil
}
