package main

import (
	"github.com/RecoveryAshes/HosterScan/internal/core"
	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
	"github.com/spf13/cobra"
)

// crawlSpec 一个爬取子命令的描述
type crawlSpec struct {
	mode  models.RunMode
	short string
	long  string
}

var scanSpec = crawlSpec{
	mode:  models.ModeScan,
	short: "爬取托管商网站,统计产品关键词",
	long: `按顺序爬取托管商CSV中的每个网站(只跟随同站链接),统计每个产品关键词
出现在多少个页面上。每个站点完成后追加结果,重新运行会跳过已处理的站点。`,
}

var collectSpec = crawlSpec{
	mode:  models.ModeCollect,
	short: "爬取列表站点,收集可能的托管商网址",
	long: `按顺序爬取列表站点(只跟随同站链接),把指向其他网站的链接按BaseURL
记录为候选托管商。每个站点完成后追加结果,重新运行会跳过已处理的站点。`,
}

// crawlOptions 爬取子命令的参数
type crawlOptions struct {
	core.CrawlFlags

	maxDepth   int
	reset      bool
	importURLs string
	topUsers   int
	printSites bool
	noProgress bool

	listSites    bool
	listHosters  bool
	listProducts bool
}

func newCrawlCommand(spec crawlSpec) *cobra.Command {
	o := &crawlOptions{}
	cmd := &cobra.Command{
		Use:   string(spec.mode),
		Short: spec.short,
		Long:  spec.long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, spec.mode, o)
		},
	}

	f := cmd.Flags()
	f.IntVar(&o.MaxPages, "max-pages", 0, "每个站点最多访问的页面数 (默认: scan 50, collect 500)")
	f.IntVar(&o.maxDepth, "max-depth", 0, "同 --max-pages")
	_ = f.MarkDeprecated("max-depth", "请使用 --max-pages (含义为页面数上限,不是链接深度)")
	f.BoolVar(&o.reset, "reset", false, "删除本模式的历史数据,从头开始")
	f.BoolVar(&o.Strict, "strict", false, "输入文件中存在格式错误的行时直接失败")
	f.StringVar(&o.URLEndings, "blocked-url-endings", "", "屏蔽的URL结尾列表文件(每行一条)")
	f.IntVar(&o.Timeout, "timeout", 0, "单次请求超时(秒)")
	f.Float64Var(&o.RateLimit, "rate", 0, "每秒请求数上限 (0 使用配置文件)")
	f.BoolVar(&o.noProgress, "no-progress", false, "不显示进度条")

	switch spec.mode {
	case models.ModeScan:
		f.StringVar(&o.Hosters, "hosters", "", "托管商CSV (ID, 名称, 网址)")
		f.StringVar(&o.Products, "products", "", "产品CSV (产品名, 拼写变体...)")
		f.IntVar(&o.StartAt, "start-at", 0, "从该下标的托管商开始")
		f.IntVar(&o.StopAt, "stop-at", 10000, "到该下标的托管商结束(包含)")
		f.BoolVar(&o.FullScan, "full-scan", false, "使用 crawl.full_scan_pages 作为页面上限")
		f.IntVar(&o.topUsers, "max-hosters", 0, "产品表中每个产品列出的托管商数量")
		f.BoolVar(&o.printSites, "print-hosters", false, "爬取前打印每个托管商")
		f.BoolVar(&o.listHosters, "list-hosters", false, "打印选中的托管商后退出")
		f.BoolVar(&o.listProducts, "list-products", false, "打印产品及其拼写变体后退出")
	case models.ModeCollect:
		f.StringVar(&o.Listing, "listing-sites", "", "列表站点文件(每行一个网址)")
		f.StringVar(&o.importURLs, "import-urls", "", "预先导入为候选的网址文件(每行一个)")
		f.BoolVar(&o.printSites, "print-sites", false, "爬取前打印每个列表站点")
		f.BoolVar(&o.listSites, "list-sites", false, "打印列表站点后退出")
	}
	return cmd
}

func runCrawl(cmd *cobra.Command, mode models.RunMode, o *crawlOptions) error {
	if o.MaxPages == 0 && o.maxDepth > 0 {
		o.MaxPages = o.maxDepth
	}
	if err := validateCrawlFlags(mode, o.CrawlFlags); err != nil {
		return err
	}

	appConfig.MergeCLIFlags(o.CrawlFlags)
	if o.topUsers > 0 {
		appConfig.Report.TopUsers = o.topUsers
	}

	out := cmd.OutOrStdout()
	switch {
	case o.listSites:
		return core.ListSites(out, appConfig)
	case o.listHosters:
		return core.ListHosters(out, appConfig, o.StartAt, o.StopAt)
	case o.listProducts:
		return core.ListProducts(out, appConfig)
	}

	opts := core.RunOptions{
		Mode:       mode,
		Crawl:      appConfig.CrawlConfigFor(mode, o.CrawlFlags),
		Reset:      o.reset,
		ImportURLs: o.importURLs,
		Headers:    headers,
		PrintSites: o.printSites,
		ShowBar:    !o.noProgress,
		Out:        out,
	}
	utils.Infof("开始 %s: 每站点最多 %d 页, 输出目录 %s", mode, opts.Crawl.MaxPages, appConfig.Output.Dir)

	_, err := core.NewRunner(appConfig, opts, runID).Run(cmd.Context())
	return err
}
