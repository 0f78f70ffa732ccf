package models

import (
	"strings"
	"unicode"
)

// URL前缀 (仅接受http/https)
const (
	PrefixHTTPS = "https://"
	PrefixHTTP  = "http://"
)

// Normalize 将原始链接文本转换为统一的可比较形式
// 规则: 去除首尾空白 → 截断第一个'?'和'#' → 去除末尾'/' → 小写
// 幂等: Normalize(Normalize(x)) == Normalize(x)
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.IndexByte(s, '?'); idx != -1 {
		s = s[:idx]
	}
	if idx := strings.IndexByte(s, '#'); idx != -1 {
		s = s[:idx]
	}

	// 截断后可能暴露出新的末尾空白,与'/'一并去除
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	})

	return strings.ToLower(s)
}

// HasURLPrefix 判断字符串是否以http://或https://开头
func HasURLPrefix(s string) bool {
	return strings.HasPrefix(s, PrefixHTTPS) || strings.HasPrefix(s, PrefixHTTP)
}

// BaseURL 返回协议+主机部分,不含路径
// 非http(s)链接返回空字符串
func BaseURL(normalized string) string {
	s := strings.ToLower(strings.TrimSpace(normalized))

	var scheme string
	switch {
	case strings.HasPrefix(s, PrefixHTTPS):
		scheme = PrefixHTTPS
	case strings.HasPrefix(s, PrefixHTTP):
		scheme = PrefixHTTP
	default:
		return ""
	}

	rest := s[len(scheme):]
	if idx := strings.IndexByte(rest, '/'); idx != -1 {
		rest = rest[:idx]
	}
	return scheme + rest
}

// Domain 返回去掉协议后的主机部分
func Domain(normalized string) string {
	s := strings.ToLower(strings.TrimSpace(normalized))
	s = strings.TrimPrefix(s, PrefixHTTPS)
	s = strings.TrimPrefix(s, PrefixHTTP)

	if idx := strings.IndexByte(s, '/'); idx != -1 {
		s = s[:idx]
	}
	return s
}
