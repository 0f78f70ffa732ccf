package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, AppendLines(path, []string{"https://a.com", "https://b.com"}))
	require.NoError(t, AppendLines(path, nil))
	require.NoError(t, AppendLines(path, []string{" https://c.com "}))

	lines, err = ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com", "https://b.com", "https://c.com"}, lines)

	require.NoError(t, WriteLines(path, []string{"x"}))
	lines, err = ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, lines)
}

func TestLayoutReset(t *testing.T) {
	dir := t.TempDir()
	layout := NewLayout(dir, models.ModeCollect)
	require.NoError(t, AppendLines(layout.CrawledLog, []string{"a"}))
	require.NoError(t, AppendLines(layout.Candidates, []string{"b"}))
	require.NoError(t, AppendLines(layout.CrawlErrorLog, []string{"c"}))

	require.NoError(t, layout.Reset())
	assert.NoFileExists(t, layout.CrawledLog)
	assert.NoFileExists(t, layout.Candidates)
	assert.FileExists(t, layout.CrawlErrorLog)

	// 再次重置不报错
	require.NoError(t, layout.Reset())
}

func TestResultsFile_HeaderAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	f := NewResultsFile(path, []string{"cPanel", "Plesk"})

	require.NoError(t, f.EnsureHeader())
	require.NoError(t, f.Append(models.SiteResult{
		Site:    models.Site{ID: "1", Name: "Alpha, Inc", URL: "https://alpha.com"},
		Matches: []int{3, 0},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "HosterID,Name,URL,Number of Matched Technologies,cPanel,Plesk", lines[0])
	assert.Equal(t, `1,"Alpha, Inc",https://alpha.com,3,3,0`, lines[1])

	loaded, err := NewResultsFile(path, []string{"cPanel", "Plesk"}).Load()
	require.NoError(t, err)
	require.Len(t, loaded.Rows, 1)
	assert.Equal(t, "Alpha, Inc", loaded.Rows[0].Site.Name)
	assert.Equal(t, []int{3, 0}, loaded.Rows[0].Matches)
	assert.Equal(t, []string{"https://alpha.com"}, loaded.SiteURLs)
}

func TestResultsFile_MapsColumnsByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	content := "HosterID,Name,URL,Number of Matched Technologies,Plesk,Old\n" +
		"7,Seven,HTTPS://Seven.com/,5,2,3\n" +
		"8,Eight,not-a-url,0,0,0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	f := NewResultsFile(path, []string{"cPanel", "Plesk"})
	loaded, err := f.Load()
	require.NoError(t, err)

	require.Len(t, loaded.Rows, 1)
	assert.Equal(t, 1, loaded.Skipped)
	assert.Equal(t, []int{0, 2}, loaded.Rows[0].Matches)
	assert.Equal(t, "https://seven.com", loaded.Rows[0].Site.URL)
	assert.Equal(t, []string{"cPanel"}, f.MissingColumns())

	// 追加按原表头列顺序
	require.NoError(t, f.Append(models.SiteResult{Site: models.Site{ID: "9", Name: "Nine", URL: "https://nine.com"}, Matches: []int{4, 1}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "9,Nine,https://nine.com,5,1,0\n")
}

func TestResultsFile_EmptyFileGetsHeader(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"空文件", ""},
		{"只有空行", "\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "results.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			f := NewResultsFile(path, []string{"cPanel"})
			loaded, err := f.Load()
			require.NoError(t, err)
			assert.Empty(t, loaded.Rows)

			require.NoError(t, f.EnsureHeader())
			require.NoError(t, f.Append(models.SiteResult{
				Site:    models.Site{ID: "1", Name: "One", URL: "https://one.com"},
				Matches: []int{3},
			}))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "HosterID,Name,URL,Number of Matched Technologies,cPanel\n1,One,https://one.com,3,3\n", string(data))

			reloaded, err := NewResultsFile(path, []string{"cPanel"}).Load()
			require.NoError(t, err)
			require.Len(t, reloaded.Rows, 1)
			assert.Equal(t, []int{3}, reloaded.Rows[0].Matches)
		})
	}
}

func TestResultsFile_AppendRejectsShortHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("HosterID,Name\n"), 0644))

	f := NewResultsFile(path, []string{"cPanel"})
	err := f.Append(models.SiteResult{Site: models.Site{ID: "1", Name: "One", URL: "https://one.com"}, Matches: []int{1}})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "HosterID,Name\n", string(data), "表头不完整时不应写入")
}

func TestStateStore_EmptyResultsFile(t *testing.T) {
	layout := NewLayout(t.TempDir(), models.ModeScan)
	require.NoError(t, layout.EnsureDir())
	require.NoError(t, os.WriteFile(layout.Results, nil, 0644))

	store := NewStateStore(layout, []string{"cpanel"}, nil, "run-1")
	_, err := store.Load()
	require.NoError(t, err)

	result := models.NewCrawlResult(models.NewCrawlTarget(models.Site{ID: "1", Name: "One", URL: "https://one.com"}), 1)
	result.Matches[0] = 1
	require.NoError(t, store.CommitSite(result))
	require.NoError(t, store.Close())

	reloaded, err := NewStateStore(layout, []string{"cpanel"}, nil, "run-2").Load()
	require.NoError(t, err)
	assert.True(t, reloaded.Results.Has("1"))
}

func TestStateStore_CommitAndReload(t *testing.T) {
	dir := t.TempDir()
	layout := NewLayout(dir, models.ModeScan)
	keywords := []string{"cpanel"}

	store := NewStateStore(layout, keywords, nil, "run-1")
	state, err := store.Load()
	require.NoError(t, err)
	assert.FileExists(t, layout.Results)
	assert.Equal(t, 0, state.Crawled.Len())

	target := models.NewCrawlTarget(models.Site{ID: "1", Name: "One", URL: "https://one.com/"})
	result := models.NewCrawlResult(target, 1)
	result.Matches[0] = 2
	result.NewCrawled = []string{"https://one.com", "https://one.com/a"}
	result.NewErrored = []string{"https://one.com/b"}
	require.NoError(t, store.CommitSite(result))
	require.NoError(t, store.Close())

	reloaded, err := NewStateStore(layout, keywords, nil, "run-2").Load()
	require.NoError(t, err)
	assert.True(t, reloaded.Crawled.Has("https://one.com/a"))
	assert.True(t, reloaded.Errored.Has("https://one.com/b"))
	assert.True(t, reloaded.Results.Has("1"))
	row, _ := reloaded.Results.Get("1")
	assert.Equal(t, []int{2}, row.Matches)
	assert.Equal(t, "https://one.com", row.Site.URL)
}

func TestStateStore_CollectCandidates(t *testing.T) {
	layout := NewLayout(t.TempDir(), models.ModeCollect)
	store := NewStateStore(layout, nil, nil, "")
	state, err := store.Load()
	require.NoError(t, err)

	n, err := store.ImportCandidates(state, []string{"https://x.com/", "ftp://y.com", "HTTPS://X.com", "http://z.org?a=1"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	result := models.NewCrawlResult(models.NewCrawlTarget(models.Site{URL: "https://list.com"}), 0)
	result.NewCandidates = []string{"https://partner.com"}
	require.NoError(t, store.CommitSite(result))

	lines, err := ReadLines(layout.Candidates)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x.com", "http://z.org", "https://partner.com"}, lines)
	assert.NoFileExists(t, layout.Results)
}

func TestCrawlErrorLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawling_errors.log")
	log := NewCrawlErrorLog(path, "abc")
	target := models.NewCrawlTarget(models.Site{Name: "Acme", URL: "https://acme.com"})

	log.RecordFetchError(target, models.NewFetchError("https://acme.com/x", context.DeadlineExceeded))
	log.RecordFetchError(target, models.NewFetchError("https://acme.com/y", context.DeadlineExceeded))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "# run abc "))
	assert.Equal(t, "Error downloading page https://acme.com/x from Acme: context deadline exceeded", lines[1])
}

func pageResult() *models.CrawlResult {
	target := models.NewCrawlTarget(models.Site{ID: "5", Name: "Five", URL: "https://five.com"})
	result := models.NewCrawlResult(target, 2)
	result.Pages = []models.PageKeywords{
		{SiteKey: "5", PageURL: "https://five.com", Keywords: []string{"cpanel"}},
		{SiteKey: "5", PageURL: "https://five.com/b", Keywords: []string{"cpanel", "plesk"}},
	}
	return result
}

func TestCSVPageRecorder(t *testing.T) {
	layout := NewLayout(t.TempDir(), models.ModeScan)
	rec, err := NewPageRecorder("csv", layout)
	require.NoError(t, err)
	require.NoError(t, rec.RecordSite(pageResult()))
	require.NoError(t, rec.Close())

	pages, err := ReadLines(layout.PageKeywords)
	require.NoError(t, err)
	assert.Equal(t, []string{"HosterID,Page URL,Keywords", "5,https://five.com,cpanel", "5,https://five.com/b,cpanel; plesk"}, pages)

	sites, err := ReadLines(layout.SiteKeywords)
	require.NoError(t, err)
	assert.Equal(t, "5,Five,https://five.com,cpanel; plesk", sites[1])
}

func TestSQLitePageRecorder(t *testing.T) {
	rec, err := NewSQLitePageRecorder(filepath.Join(t.TempDir(), "db", "keywords.db"))
	require.NoError(t, err)
	defer rec.Close()

	require.NoError(t, rec.RecordSite(pageResult()))

	n, err := rec.PageCount("5")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	kws, err := rec.SiteKeywords("5")
	require.NoError(t, err)
	assert.Equal(t, []string{"cpanel", "plesk"}, kws)
}

func TestNewPageRecorder_Unknown(t *testing.T) {
	_, err := NewPageRecorder("xml", NewLayout(t.TempDir(), models.ModeScan))
	assert.Error(t, err)
}
