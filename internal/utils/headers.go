package utils

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/models"
)

// MaxHeaderValueLength 头部值最大长度(字节)
const MaxHeaderValueLength = 8192

var (
	// ForbiddenHeaders 由HTTP客户端管理,不允许自定义
	ForbiddenHeaders = []string{"Host", "Content-Length", "Transfer-Encoding", "Connection"}

	// SensitiveKeywords 名称包含这些关键字的头部在日志中脱敏
	SensitiveKeywords = []string{"authorization", "token", "key", "secret", "password", "credential", "cookie"}

	headerNameRe  = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	headerValueRe = regexp.MustCompile(`^[\x20-\x7E\t]*$`)
)

// ValidateHeader 按RFC 7230检查单个头部
func ValidateHeader(name, value string) error {
	for _, f := range ForbiddenHeaders {
		if strings.EqualFold(f, name) {
			return &models.ValidationError{
				HeaderName: name,
				Reason:     "此头部由HTTP客户端自动管理,不允许自定义",
				Suggestion: fmt.Sprintf("移除 '%s' 头部配置", name),
			}
		}
	}
	if name == "" || !headerNameRe.MatchString(name) {
		return &models.ValidationError{
			HeaderName: name,
			Reason:     "头部名称为空或包含非法字符",
			Suggestion: "仅使用字母、数字和连字符",
		}
	}
	if len(value) > MaxHeaderValueLength {
		return &models.ValidationError{
			HeaderName: name,
			Reason:     fmt.Sprintf("头部值过长: %d 字节 (最大 %d)", len(value), MaxHeaderValueLength),
		}
	}
	if !headerValueRe.MatchString(value) {
		return &models.ValidationError{
			HeaderName: name,
			Reason:     "头部值包含非法字符 (仅允许可打印ASCII字符)",
			Suggestion: "移除控制字符和非ASCII字符",
		}
	}
	return nil
}

// ValidateHeaders 检查全部头部,返回第一个错误
func ValidateHeaders(headers http.Header) error {
	for name, values := range headers {
		for _, v := range values {
			if err := ValidateHeader(name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsSensitiveHeader 判断头部是否需要脱敏
func IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range SensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RedactHeaderValue 脱敏单个值
func RedactHeaderValue(name, value string) string {
	switch {
	case !IsSensitiveHeader(name):
		return value
	case strings.HasPrefix(value, "Bearer "):
		return "Bearer ***"
	case len(value) > 8:
		return value[:4] + "***" + value[len(value)-4:]
	default:
		return "***"
	}
}

// RedactHeaders 返回脱敏后的 "Name: Value" 列表,按名称排序
func RedactHeaders(headers http.Header) []string {
	out := make([]string, 0, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		out = append(out, name+": "+RedactHeaderValue(name, values[0]))
	}
	sort.Strings(out)
	return out
}
