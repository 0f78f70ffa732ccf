package utils

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		value   string
		wantErr bool
	}{
		{"普通头部", "Accept-Language", "en-US,en;q=0.9", false},
		{"禁止的头部", "Host", "example.com", true},
		{"禁止的头部大小写", "content-length", "10", true},
		{"名称非法字符", "X Bad", "v", true},
		{"空名称", "", "v", true},
		{"值含控制字符", "X-Test", "a\x01b", true},
		{"值过长", "X-Test", strings.Repeat("a", MaxHeaderValueLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeader(tt.header, tt.value)
			if tt.wantErr {
				var ve *models.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.header, ve.HeaderName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abcdefghijklmnop")
	h.Set("X-Api-Key", "1234567890abcdef")
	h.Set("Cookie", "a=1")
	h.Set("Accept", "text/html")

	got := RedactHeaders(h)
	assert.Equal(t, []string{
		"Accept: text/html",
		"Authorization: Bearer ***",
		"Cookie: ***",
		"X-Api-Key: 1234***cdef",
	}, got)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "  1,234", FormatCount(1234))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "25.0%", FormatPercent(1, 4))
	assert.Equal(t, "0.0%", FormatPercent(3, 0))
	assert.InDelta(t, 0.5, Share(1, 2), 1e-9)
}

func scanFixture() (*models.KeywordIndex, *models.ResultTable) {
	index := models.NewKeywordIndex()
	index.AddProduct("Nextcloud", []string{"Nextcloud", "NextCloud"})
	index.AddProduct("WordPress", []string{"WordPress"})

	table := models.NewResultTable()
	table.Put(models.SiteResult{Site: models.Site{ID: "1", Name: "Alpha"}, Matches: []int{2, 0, 1}})
	table.Put(models.SiteResult{Site: models.Site{ID: "2", Name: "Beta"}, Matches: []int{0, 0, 4}})
	table.Put(models.SiteResult{Site: models.Site{ID: "3", Name: "Gamma"}, Matches: []int{0, 0, 0}})
	return index, table
}

func TestSummarize(t *testing.T) {
	index, table := scanFixture()

	keywords := SummarizeKeywords(index, table)
	require.Len(t, keywords, 2)
	assert.Equal(t, "WordPress", keywords[0].Keyword)
	assert.Equal(t, 2, keywords[0].Sites)
	assert.InDelta(t, 1.0, keywords[0].Share, 1e-9)
	assert.Equal(t, "Nextcloud", keywords[1].Keyword)

	products := SummarizeProducts(index, table, 5)
	require.Len(t, products, 2)
	assert.Equal(t, "WordPress", products[0].Product)
	assert.Equal(t, []string{"Beta", "Alpha"}, products[0].TopUsers)
	assert.Equal(t, []string{"Alpha"}, products[1].TopUsers)
}

func sampleReport(mode models.RunMode) *models.RunReport {
	index, table := scanFixture()
	return &models.RunReport{
		RunID:        "run-1",
		Mode:         mode,
		StartTime:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC),
		Stats:        models.RunStats{SitesTotal: 4, SitesChecked: 3, SitesWithMatches: 2, URLsCrawled: 1200, CrawlErrors: 12},
		ProductCount: 2,
		KeywordCount: 3,
		Keywords:     SummarizeKeywords(index, table),
		Products:     SummarizeProducts(index, table, 5),
		Files:        map[string]string{"hosters": "input/hosters.csv", "products": "input/products.csv"},
		Config:       models.CrawlConfig{MaxPages: 50},
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf).PrintSummary(sampleReport(models.ModeScan)))

	out := buf.String()
	assert.Contains(t, out, "WordPress")
	assert.Contains(t, out, "Beta, Alpha")
	assert.Contains(t, out, "  1,200 URLs crawled")
	assert.Contains(t, out, "hosters checked (75.0%)")
	assert.Contains(t, out, "URLs skipped due to crawling errors (1.0%)")
}

func TestSummaryLinesCollect(t *testing.T) {
	report := &models.RunReport{
		Mode:  models.ModeCollect,
		Stats: models.RunStats{SitesChecked: 2, URLsCrawled: 10, CrawlErrors: 1, CandidatesFound: 7},
		Files: map[string]string{"candidates": "output/possible_hoster_urls_found.txt"},
	}
	lines := SummaryLines(report)
	require.Len(t, lines, 4)
	assert.Equal(t, "      7 possible Hoster URLs found and saved to output/possible_hoster_urls_found.txt", lines[3])
	assert.Contains(t, lines[2], "(10.0%)")
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()
	report := sampleReport(models.ModeScan)

	mdPath := filepath.Join(dir, "summary_scan.md")
	require.NoError(t, WriteMarkdownSummary(mdPath, report))
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# HosterScan scan")
	assert.Contains(t, string(md), "## Products")
	assert.Contains(t, string(md), "run-1")

	jsonPath := filepath.Join(dir, "run_report_scan.json")
	require.NoError(t, WriteJSONReport(jsonPath, report))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var loaded models.RunReport
	require.NoError(t, loaded.FromJSON(data))
	assert.Equal(t, report.Stats, loaded.Stats)
	assert.Equal(t, 2, loaded.ProductCount)
}

func TestResourceMonitor(t *testing.T) {
	calls := 0
	low := func() (MemorySample, error) {
		calls++
		return MemorySample{TotalMB: 1024, AvailableMB: 100}, nil
	}

	rm := NewResourceMonitor(256, low)
	ok, reason := rm.Check()
	assert.False(t, ok)
	assert.Contains(t, reason, "100MB")

	disabled := NewResourceMonitor(0, low)
	ok, _ = disabled.Check()
	assert.True(t, ok)
	assert.Equal(t, 1, calls)

	failing := NewResourceMonitor(256, func() (MemorySample, error) { return MemorySample{}, errors.New("boom") })
	ok, _ = failing.Check()
	assert.True(t, ok)
}
