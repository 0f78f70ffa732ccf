package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
)

// SummarizeKeywords 统计每个关键词被多少站点提及
// 只保留至少一个站点命中的关键词,按站点数降序(同数保持关键词顺序)
func SummarizeKeywords(index *models.KeywordIndex, table *models.ResultTable) []models.KeywordSummary {
	withMatches := table.SitesWithMatches()
	out := make([]models.KeywordSummary, 0)
	for i, kw := range index.Keywords() {
		n := table.SitesWithKeyword(i)
		if n == 0 {
			continue
		}
		out = append(out, models.KeywordSummary{
			Keyword: kw,
			Sites:   n,
			Share:   Share(n, withMatches),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sites > out[j].Sites })
	return out
}

// SummarizeProducts 统计每个产品被多少站点提及,并附带提及最多的站点
func SummarizeProducts(index *models.KeywordIndex, table *models.ResultTable, topUsers int) []models.ProductSummary {
	withMatches := table.SitesWithMatches()
	rows := table.Rows()
	out := make([]models.ProductSummary, 0)
	for _, product := range index.Products() {
		n := 0
		for _, row := range rows {
			if index.Mentions(product, row.Matches) > 0 {
				n++
			}
		}
		if n == 0 {
			continue
		}
		out = append(out, models.ProductSummary{
			Product:  product,
			Sites:    n,
			Share:    Share(n, withMatches),
			TopUsers: index.TopUsers(product, table, topUsers),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sites > out[j].Sites })
	return out
}

// Reporter 运行结束后输出统计
type Reporter struct {
	out io.Writer
}

// NewReporter 创建报告生成器,out为nil时写到标准输出
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out}
}

// PrintSummary 打印关键词表、产品表与统计行
func (r *Reporter) PrintSummary(report *models.RunReport) error {
	if report.Mode == models.ModeScan {
		if err := r.renderKeywordTable(report.Keywords); err != nil {
			return err
		}
		if err := r.renderProductTable(report.Products); err != nil {
			return err
		}
	}
	for _, line := range SummaryLines(report) {
		fmt.Fprintln(r.out, line)
	}
	return nil
}

func (r *Reporter) renderKeywordTable(rows []models.KeywordSummary) error {
	table := tablewriter.NewWriter(r.out)
	table.Header("Keyword", "Hosters", "%")
	for _, k := range rows {
		if err := table.Append([]string{k.Keyword, strconv.Itoa(k.Sites), percent(k.Share)}); err != nil {
			return fmt.Errorf("渲染关键词表失败: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("渲染关键词表失败: %w", err)
	}
	fmt.Fprintln(r.out)
	return nil
}

func (r *Reporter) renderProductTable(rows []models.ProductSummary) error {
	table := tablewriter.NewWriter(r.out)
	table.Header("Product", "Hosters", "%", "Examples")
	for _, p := range rows {
		row := []string{p.Product, strconv.Itoa(p.Sites), percent(p.Share), strings.Join(p.TopUsers, ", ")}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("渲染产品表失败: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("渲染产品表失败: %w", err)
	}
	fmt.Fprintln(r.out)
	return nil
}

// SummaryLines 返回统计行,格式与模式相关
func SummaryLines(report *models.RunReport) []string {
	s := report.Stats
	files := report.Files
	lines := make([]string, 0, 12)

	if report.Mode == models.ModeCollect {
		lines = append(lines,
			fmt.Sprintf("%s listing sites crawled from %s", FormatCount(s.SitesChecked), files["listing_sites"]),
			fmt.Sprintf("%s URLs crawled and saved to %s", FormatCount(s.URLsCrawled), files["crawled"]),
			fmt.Sprintf("%s URLs skipped (%s) due to crawling errors and saved to %s",
				FormatCount(s.CrawlErrors), FormatPercent(s.CrawlErrors, s.URLsCrawled), files["errored"]),
			fmt.Sprintf("%s possible Hoster URLs found and saved to %s", FormatCount(s.CandidatesFound), files["candidates"]),
		)
	} else {
		lines = append(lines,
			fmt.Sprintf("%s products in %s", FormatCount(report.ProductCount), files["products"]),
			fmt.Sprintf("%s search terms for those products in total", FormatCount(report.KeywordCount)),
			"",
			fmt.Sprintf("%s hosters imported from %s", FormatCount(s.SitesTotal), files["hosters"]),
			fmt.Sprintf("%s hosters checked (%s)", FormatCount(s.SitesChecked), FormatPercent(s.SitesChecked, s.SitesTotal)),
			fmt.Sprintf("%s hosters mentioning at least one of the products (%s)",
				FormatCount(s.SitesWithMatches), FormatPercent(s.SitesWithMatches, s.SitesChecked)),
			"",
			fmt.Sprintf("%s URLs crawled", FormatCount(s.URLsCrawled)),
			fmt.Sprintf("%s URLs skipped due to crawling errors (%s)",
				FormatCount(s.CrawlErrors), FormatPercent(s.CrawlErrors, s.URLsCrawled)),
		)
	}
	if s.RowsSkipped > 0 {
		lines = append(lines, fmt.Sprintf("%s malformed input rows skipped", FormatCount(s.RowsSkipped)))
	}
	return lines
}

// WriteJSONReport 保存JSON报告
func WriteJSONReport(path string, report *models.RunReport) error {
	data, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}
	Debugf("保存报告: %s", path)
	return nil
}

// WriteMarkdownSummary 保存Markdown摘要
func WriteMarkdownSummary(path string, report *models.RunReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建摘要文件失败: %w", err)
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)
	md.H1(fmt.Sprintf("HosterScan %s", report.Mode))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Started", report.StartTime.Format("2006-01-02 15:04:05 MST")},
			{"Finished", report.EndTime.Format("2006-01-02 15:04:05 MST")},
			{"Duration", fmt.Sprintf("%.1fs", report.Stats.Duration)},
			{"Max pages per site", strconv.Itoa(report.Config.MaxPages)},
		},
	})
	md.PlainText("")

	md.H2("Statistics")
	md.PlainText("")
	stats := make([]string, 0)
	for _, line := range SummaryLines(report) {
		if line = strings.TrimSpace(line); line != "" {
			stats = append(stats, line)
		}
	}
	md.BulletList(stats...)
	md.PlainText("")

	if report.Mode == models.ModeScan {
		md.H2("Keywords")
		md.PlainText("")
		if len(report.Keywords) == 0 {
			md.PlainText("No keyword was found on any hoster.")
		} else {
			rows := make([][]string, 0, len(report.Keywords))
			for _, k := range report.Keywords {
				rows = append(rows, []string{k.Keyword, strconv.Itoa(k.Sites), percent(k.Share)})
			}
			md.Table(markdown.TableSet{Header: []string{"Keyword", "Hosters", "%"}, Rows: rows})
		}
		md.PlainText("")

		md.H2("Products")
		md.PlainText("")
		if len(report.Products) == 0 {
			md.PlainText("No product was found on any hoster.")
		} else {
			rows := make([][]string, 0, len(report.Products))
			for _, p := range report.Products {
				rows = append(rows, []string{p.Product, strconv.Itoa(p.Sites), percent(p.Share), strings.Join(p.TopUsers, ", ")})
			}
			md.Table(markdown.TableSet{Header: []string{"Product", "Hosters", "%", "Examples"}, Rows: rows})
		}
		md.PlainText("")
	}

	md.H2("Files")
	md.PlainText("")
	keys := make([]string, 0, len(report.Files))
	for k := range report.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	files := make([]string, 0, len(keys))
	for _, k := range keys {
		files = append(files, fmt.Sprintf("%s: `%s`", k, report.Files[k]))
	}
	md.BulletList(files...)

	if err := md.Build(); err != nil {
		return fmt.Errorf("写入摘要文件失败: %w", err)
	}
	Debugf("保存摘要: %s", path)
	return nil
}

func percent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

// NewProgressBar 创建进度条,输出到stderr
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
