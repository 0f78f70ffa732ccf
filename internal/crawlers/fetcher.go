package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
)

// DefaultUserAgent 固定的浏览器标识
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36"

// DefaultFetchTimeout 单次请求超时
const DefaultFetchTimeout = 30 * time.Second

const responseCtxKey = "response"

// Page 一次下载的结果
type Page struct {
	RequestURL  string // 请求的URL
	FinalURL    string // 跟随重定向后的最终URL
	StatusCode  int    // 4xx/5xx同样返回,由调用方照常解析
	ContentType string
	Body        []byte // 已解压的响应体

	// Colly在Content-Type声明字符集时已转为UTF-8
	Decoded bool
}

// Fetcher 页面下载器
// 传输层失败返回 *models.FetchError,HTTP错误状态码不视为失败
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// FetcherOptions 下载器配置
type FetcherOptions struct {
	Timeout            time.Duration
	UserAgent          string
	InsecureSkipVerify bool
	Headers            models.HeaderProvider
}

// CollyFetcher 基于Colly的同步下载器
// 每次Fetch只发出一个请求,不跟随页面内链接,不重试
type CollyFetcher struct {
	collector *colly.Collector
	headers   models.HeaderProvider
}

// NewCollyFetcher 创建下载器
func NewCollyFetcher(opts FetcherOptions) *CollyFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	// 同一个URL可能在不同站点会话中再次出现,去重由Frontier负责
	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(opts.Timeout)
	c.ParseHTTPErrorResponse = true

	if opts.InsecureSkipVerify {
		c.WithTransport(&http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
		utils.Debugf("下载器: TLS证书验证已禁用")
	}

	c.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(responseCtxKey, r)
	})

	utils.Debugf("下载器: 超时=%s, UA=%s", opts.Timeout, opts.UserAgent)

	return &CollyFetcher{
		collector: c,
		headers:   opts.Headers,
	}
}

// Fetch 下载单个页面
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hdr http.Header
	if f.headers != nil {
		h, err := f.headers.GetHeaders()
		if err != nil {
			utils.Warnf("获取HTTP头部失败: %v", err)
		} else {
			hdr = h.Clone()
		}
	}

	reqCtx := colly.NewContext()
	if err := f.collector.Request(http.MethodGet, rawURL, nil, reqCtx, hdr); err != nil {
		return nil, models.NewFetchError(rawURL, err)
	}

	resp, ok := reqCtx.GetAny(responseCtxKey).(*colly.Response)
	if !ok || resp == nil {
		return nil, models.NewFetchError(rawURL, errors.New("未收到响应"))
	}

	page := &Page{
		RequestURL: rawURL,
		FinalURL:   rawURL,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		page.FinalURL = resp.Request.URL.String()
	}
	if resp.Headers != nil {
		page.ContentType = resp.Headers.Get("Content-Type")
		page.Decoded = strings.Contains(strings.ToLower(page.ContentType), "charset=")

		// gzip已由Colly解压
		if enc := resp.Headers.Get("Content-Encoding"); enc != "" {
			body, err := decompressBody(enc, resp.Body)
			if err != nil {
				return nil, models.NewFetchError(rawURL, fmt.Errorf("解压响应失败 (编码=%s): %w", enc, err))
			}
			page.Body = body
		}
	}

	if page.StatusCode >= 400 {
		utils.Debugf("HTTP状态码 %d,继续解析: %s", page.StatusCode, rawURL)
	}
	return page, nil
}

// decompressBody 解压Colly未处理的编码
func decompressBody(contentEncoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "br":
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return out, nil
	case "deflate":
		// HTTP的deflate是zlib封装,少数服务器发送裸deflate流
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err == nil {
			defer zr.Close()
			out, err := io.ReadAll(zr)
			if err != nil {
				return nil, fmt.Errorf("deflate(zlib)读取失败: %w", err)
			}
			return out, nil
		}
		if !errors.Is(err, zlib.ErrHeader) {
			return nil, fmt.Errorf("deflate(zlib)读取失败: %w", err)
		}
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()
		out, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return out, nil
	default:
		return body, nil
	}
}
