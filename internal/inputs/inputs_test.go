package inputs

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/RecoveryAshes/HosterScan/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	return path
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "endings.txt", " .PDF \n\n/About/\n")

	rules, err := LoadRules(path, []string{".exe"})
	if err != nil {
		t.Fatalf("加载规则失败: %v", err)
	}
	if !reflect.DeepEqual(rules, []string{".pdf", "/about"}) {
		t.Errorf("规则不正确: %v", rules)
	}

	rules, err = LoadRules(filepath.Join(dir, "missing.txt"), []string{".exe"})
	if err != nil || !reflect.DeepEqual(rules, []string{".exe"}) {
		t.Errorf("文件不存在时应使用内置规则: %v %v", rules, err)
	}
}

func TestRequireFiles(t *testing.T) {
	dir := t.TempDir()
	present := writeFile(t, dir, "hosters.csv", "")

	if err := RequireFiles(Requirement{Role: "hosters", Path: present}); err != nil {
		t.Errorf("文件存在时不应报错: %v", err)
	}

	err := RequireFiles(
		Requirement{Role: "hosters", Path: present},
		Requirement{Role: "products", Path: filepath.Join(dir, "products.csv")},
		Requirement{Role: "listing sites", Path: dir},
	)
	var missing *models.MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("期望 MissingInputError, 实际 %v", err)
	}
	if missing.Role != "products" {
		t.Errorf("第一个缺失的应是products, 实际 %s", missing.Role)
	}
	if !strings.Contains(err.Error(), "listing sites") {
		t.Errorf("目录不能作为输入文件: %v", err)
	}
}

func TestLoadHosters(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hosters.csv", strings.Join([]string{
		"HosterID,Name,URL",
		"1,Alpha,https://Alpha.com/",
		"2,Broken",
		"3,Cloudflare,https://www.cloudflare.com/",
		"4,Beta,http://beta.net/en?x=1",
		"5,NoURL,beta.net",
	}, "\n"))
	block := models.NewBlockPolicy(nil, nil, models.DefaultBlockedURLs)

	list, err := LoadHosters(path, block, LoadOptions{})
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	want := []models.Site{
		{ID: "1", Name: "Alpha", URL: "https://alpha.com"},
		{ID: "4", Name: "Beta", URL: "http://beta.net/en"},
	}
	if !reflect.DeepEqual(list.Sites, want) {
		t.Errorf("站点不正确: %+v", list.Sites)
	}
	if len(list.Malformed) != 1 || list.Malformed[0].Line != 3 {
		t.Errorf("期望第3行格式错误: %+v", list.Malformed)
	}
	if list.Blocked != 1 || list.NotURL != 2 {
		t.Errorf("屏蔽=%d 非URL=%d", list.Blocked, list.NotURL)
	}

	_, err = LoadHosters(path, block, LoadOptions{Strict: true})
	var rowErr *models.RowError
	if !errors.As(err, &rowErr) {
		t.Errorf("严格模式应返回RowError, 实际 %v", err)
	}

	_, err = LoadHosters(filepath.Join(dir, "none.csv"), block, LoadOptions{})
	var missing *models.MissingInputError
	if !errors.As(err, &missing) {
		t.Errorf("期望 MissingInputError, 实际 %v", err)
	}
}

func TestSiteListRange(t *testing.T) {
	list := &SiteList{Sites: []models.Site{{ID: "0"}, {ID: "1"}, {ID: "2"}, {ID: "3"}}}

	if got := list.Range(1, 2); len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("Range(1,2) = %+v", got)
	}
	if got := list.Range(0, 10000); len(got) != 4 {
		t.Errorf("Range(0,10000) 应返回全部, 实际 %d", len(got))
	}
	if got := list.Range(5, 10); len(got) != 0 {
		t.Errorf("越界范围应为空, 实际 %d", len(got))
	}
}

func TestLoadListingSites(t *testing.T) {
	path := writeFile(t, t.TempDir(), "listing_sites.txt", "HTTPS://List.com/hosters/\nnot a url\nhttps://list.com/hosters\n")

	list, err := LoadListingSites(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if len(list.Sites) != 1 || list.Sites[0].URL != "https://list.com/hosters" || list.Sites[0].Name != "list.com" {
		t.Errorf("列表站点不正确: %+v", list.Sites)
	}
	if list.NotURL != 1 {
		t.Errorf("期望1个非URL行, 实际 %d", list.NotURL)
	}
}

func TestLoadKeywordIndex(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "products.csv", strings.Join([]string{
		"cPanel,cpanel,c-panel",
		" ,orphan",
		"Plesk,plesk,cpanel",
		"cPanel,duplicate",
	}, "\n"))

	index, err := LoadKeywordIndex(path, LoadOptions{})
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if !reflect.DeepEqual(index.Products(), []string{"cPanel", "Plesk"}) {
		t.Errorf("产品不正确: %v", index.Products())
	}
	if !reflect.DeepEqual(index.Keywords(), []string{"cPanel", "cpanel", "c-panel", "Plesk", "plesk"}) {
		t.Errorf("关键词不正确: %v", index.Keywords())
	}
	if owner, _ := index.Owner("cpanel"); owner != "cPanel" {
		t.Errorf("cpanel 应归属 cPanel, 实际 %s", owner)
	}

	if _, err := LoadKeywordIndex(path, LoadOptions{Strict: true}); err == nil {
		t.Error("严格模式下空产品名应报错")
	}
}

func TestPrepareHosters(t *testing.T) {
	dir := t.TempDir()
	hosters := writeFile(t, dir, "hosters.csv", "HosterID,Name,URL\n10,Alpha,https://alpha.com/products\n")
	accounts := writeFile(t, dir, "accounts.csv", "https://alpha.com/other,Dup\nhttps://beta.com/en/,Beta\nhttps://gamma.com,-\n")
	urls := writeFile(t, dir, "url.txt", "https://delta.org/x?y\nnot-a-url\n")
	output := filepath.Join(dir, "out", "hosters_to_be_crawled.csv")

	stats, err := PrepareHosters([]PrepareSource{
		{Path: hosters, Kind: SourceHosters},
		{Path: accounts, Kind: SourceURLCSV},
		{Path: urls, Kind: SourceText},
		{Path: filepath.Join(dir, "missing.csv"), Kind: SourceURLCSV},
	}, output)
	if err != nil {
		t.Fatalf("合并失败: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("读取输出失败: %v", err)
	}
	want := "HosterID,CompanyName,URL\n" +
		"10,Alpha,https://alpha.com\n" +
		",Beta,https://beta.com/en\n" +
		",,https://gamma.com\n" +
		",,https://delta.org\n"
	if string(data) != want {
		t.Errorf("输出不正确:\n%s", data)
	}
	if stats.Imported != 5 || stats.Exported != 4 || stats.ImportedWithCompany != 3 || stats.Companies != 2 || stats.HosterIDs != 1 {
		t.Errorf("统计不正确: %+v", stats)
	}
	if len(stats.Sources) != 3 {
		t.Errorf("期望读取3个文件, 实际 %v", stats.Sources)
	}
}
