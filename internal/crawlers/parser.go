package crawlers

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// ParsedPage 解析后的页面
type ParsedPage struct {
	Links []string // 所有 <a> 的 href 原文,未做相对路径解析
	Text  string   // 页面全部文本
}

// ParsePage 转为UTF-8后解析HTML
// 未转码的响应按Content-Type、<meta>声明或内容嗅探确定字符集
func ParsePage(page *Page) (*ParsedPage, error) {
	var body io.Reader = bytes.NewReader(page.Body)
	if !page.Decoded {
		if r, err := charset.NewReader(body, page.ContentType); err == nil {
			body = r
		} else {
			body = bytes.NewReader(page.Body)
		}
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败 [%s]: %w", page.FinalURL, err)
	}

	parsed := &ParsedPage{Links: make([]string, 0)}
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			parsed.Links = append(parsed.Links, href)
		}
	})
	parsed.Text = doc.Text()

	return parsed, nil
}
