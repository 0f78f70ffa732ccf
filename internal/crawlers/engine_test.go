package crawlers

import (
	"context"
	"testing"

	"github.com/RecoveryAshes/HosterScan/internal/models"
)

// fakeFetcher 按URL返回预设页面或错误
type fakeFetcher struct {
	pages    map[string]string
	redirect map[string]string
	failures map[string]error
	calls    []string
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) (*Page, error) {
	f.calls = append(f.calls, u)
	if err, ok := f.failures[u]; ok {
		return nil, models.NewFetchError(u, err)
	}
	final := u
	if r, ok := f.redirect[u]; ok {
		final = r
	}
	body, ok := f.pages[u]
	if !ok {
		return &Page{RequestURL: u, FinalURL: final, StatusCode: 404, Body: []byte("<html>not found</html>")}, nil
	}
	return &Page{RequestURL: u, FinalURL: final, StatusCode: 200, ContentType: "text/html", Body: []byte(body)}, nil
}

type sinkRecorder struct {
	errs []*models.FetchError
}

func (s *sinkRecorder) RecordFetchError(_ models.CrawlTarget, fe *models.FetchError) {
	s.errs = append(s.errs, fe)
}

func collectPolicy(known ...string) ClassifierPolicy {
	return ClassifierPolicy{
		Block:             models.NewBlockPolicy([]string{".pdf"}, nil, nil),
		CollectCandidates: true,
		KnownSites:        known,
	}
}

func TestEngine_CollectScenario(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://a.com": `<a href="https://a.com/about.pdf">pdf</a>
			<a href="https://a.com/products">p</a>
			<a href="https://partner.com/">partner</a>`,
		"https://a.com/products": `<p>no links</p>`,
	}}
	engine := NewEngine(fetcher, collectPolicy("https://a.com"), NoopHandler{}, 10)
	state := models.NewRunState()
	target := models.NewCrawlTarget(models.Site{URL: "https://a.com"})

	result, err := engine.CrawlSite(context.Background(), target, state)
	if err != nil {
		t.Fatalf("爬取失败: %v", err)
	}

	wantCalls := []string{"https://a.com", "https://a.com/products"}
	if len(fetcher.calls) != len(wantCalls) {
		t.Fatalf("期望访问 %v, 实际 %v", wantCalls, fetcher.calls)
	}
	for i, u := range wantCalls {
		if fetcher.calls[i] != u {
			t.Errorf("第%d次访问期望 %s, 实际 %s", i+1, u, fetcher.calls[i])
		}
	}
	if len(result.NewCandidates) != 1 || result.NewCandidates[0] != "https://partner.com" {
		t.Errorf("期望候选 [https://partner.com], 实际 %v", result.NewCandidates)
	}
	if !state.Candidates.Has("https://partner.com") {
		t.Error("候选应写入运行状态")
	}
	if result.PagesVisited != 2 || len(result.NewCrawled) != 2 {
		t.Errorf("期望访问并记录2页, 实际 visited=%d crawled=%v", result.PagesVisited, result.NewCrawled)
	}
}

func TestEngine_TimeoutRecordedOnce(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://a.com":      `<a href="/rel">r</a><a href="https://a.com/slow">s</a><a href="https://a.com/fast">f</a>`,
			"https://a.com/fast": `<a href="https://a.com/slow">again</a><a href="https://a.com/">home</a>`,
		},
		failures: map[string]error{"https://a.com/slow": context.DeadlineExceeded},
	}
	sink := &sinkRecorder{}
	engine := NewEngine(fetcher, collectPolicy(), NoopHandler{}, 10, WithErrorSink(sink))
	state := models.NewRunState()

	result, err := engine.CrawlSite(context.Background(), models.NewCrawlTarget(models.Site{URL: "https://a.com"}), state)
	if err != nil {
		t.Fatalf("爬取失败: %v", err)
	}

	if len(result.NewErrored) != 1 || result.NewErrored[0] != "https://a.com/slow" {
		t.Errorf("期望失败URL只记录一次, 实际 %v", result.NewErrored)
	}
	if result.FetchErrors[0].Kind != models.FetchTimeout {
		t.Errorf("期望超时类型, 实际 %s", result.FetchErrors[0].Kind)
	}
	if len(sink.errs) != 1 {
		t.Errorf("错误日志期望1条, 实际 %d", len(sink.errs))
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("期望3次请求(种子/slow/fast), 实际 %v", fetcher.calls)
	}
	if !state.Errored.Has("https://a.com/slow") || state.Crawled.Has("https://a.com/slow") {
		t.Error("失败URL应只出现在错误集合中")
	}
}

func TestEngine_MaxPagesAndKnownURLs(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://a.com": `<a href="https://a.com/1">1</a><a href="https://a.com/2">2</a><a href="https://a.com/3">3</a>`,
	}}
	state := models.NewRunState()
	state.Crawled.Add("https://a.com/1")

	engine := NewEngine(fetcher, collectPolicy(), NoopHandler{}, 2)
	result, err := engine.CrawlSite(context.Background(), models.NewCrawlTarget(models.Site{URL: "https://a.com"}), state)
	if err != nil {
		t.Fatalf("爬取失败: %v", err)
	}

	if result.PagesVisited != 2 {
		t.Errorf("期望访问2页, 实际 %d", result.PagesVisited)
	}
	for _, u := range fetcher.calls {
		if u == "https://a.com/1" {
			t.Error("历史已爬取的URL不应再次请求")
		}
	}
}

func TestEngine_RedirectBookkeeping(t *testing.T) {
	fetcher := &fakeFetcher{
		pages:    map[string]string{"https://a.com": `<a href="https://b.net/next">n</a>`, "https://b.net/next": ""},
		redirect: map[string]string{"https://a.com": "https://b.net/Landing/"},
	}
	engine := NewEngine(fetcher, ClassifierPolicy{Block: models.NewBlockPolicy(nil, nil, nil)}, NoopHandler{}, 10)
	state := models.NewRunState()

	result, err := engine.CrawlSite(context.Background(), models.NewCrawlTarget(models.Site{URL: "https://a.com"}), state)
	if err != nil {
		t.Fatalf("爬取失败: %v", err)
	}

	if !state.Crawled.Has("https://b.net/landing") {
		t.Errorf("重定向后的站外URL应记录为已爬取: %v", result.NewCrawled)
	}
	// 最终URL的BaseURL视为同站点
	if !state.Crawled.Has("https://b.net/next") {
		t.Errorf("重定向目标站点的链接应被跟随: %v", fetcher.calls)
	}
}

func TestEngine_RedirectHostCompare(t *testing.T) {
	tests := []struct {
		name     string
		redirect string
		recorded bool
	}{
		{"路径中含种子主机名的站外URL", "https://other.net/a.com-landing", true},
		{"同主机的其他路径", "https://a.com/home", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{
				pages:    map[string]string{"https://a.com": ""},
				redirect: map[string]string{"https://a.com": tt.redirect},
			}
			engine := NewEngine(fetcher, ClassifierPolicy{Block: models.NewBlockPolicy(nil, nil, nil)}, NoopHandler{}, 10)
			state := models.NewRunState()

			if _, err := engine.CrawlSite(context.Background(), models.NewCrawlTarget(models.Site{URL: "https://a.com"}), state); err != nil {
				t.Fatalf("爬取失败: %v", err)
			}
			if got := state.Crawled.Has(tt.redirect); got != tt.recorded {
				t.Errorf("最终URL %s 记录状态 = %v, 期望 %v", tt.redirect, got, tt.recorded)
			}
		})
	}
}

func TestEngine_KeywordScanAndCancel(t *testing.T) {
	index := models.NewKeywordIndex()
	index.AddProduct("Acme", []string{"Acme"})
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://a.com":   `<p>Acme Acme</p><a href="https://a.com/b">b</a><a href="https://ext.com">e</a>`,
		"https://a.com/b": `<p>acme</p>`,
	}}
	engine := NewEngine(fetcher, ClassifierPolicy{Block: models.NewBlockPolicy(nil, models.ScanBlockedSubstrings, nil)},
		NewKeywordHandler(NewKeywordMatcher(index)), 10)
	state := models.NewRunState()
	target := models.NewCrawlTarget(models.Site{ID: "9", Name: "A", URL: "https://a.com"})

	result, err := engine.CrawlSite(context.Background(), target, state)
	if err != nil {
		t.Fatalf("爬取失败: %v", err)
	}
	if result.Matches[0] != 2 {
		t.Errorf("期望2个页面命中, 实际 %d", result.Matches[0])
	}
	if len(result.NewCandidates) != 0 || len(fetcher.calls) != 2 {
		t.Errorf("扫描模式不应记录或访问外部链接: %v %v", result.NewCandidates, fetcher.calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.CrawlSite(ctx, models.NewCrawlTarget(models.Site{URL: "https://c.com"}), models.NewRunState()); err == nil {
		t.Error("ctx已取消时应返回错误")
	}
}
