package models

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FetchErrorKind 传输层失败类型
type FetchErrorKind string

const (
	FetchTimeout    FetchErrorKind = "timeout"
	FetchDNS        FetchErrorKind = "dns"
	FetchTLS        FetchErrorKind = "tls"
	FetchConnection FetchErrorKind = "connection"
	FetchOther      FetchErrorKind = "other"
)

// FetchError 页面下载失败(超时/DNS/连接重置/TLS)
// HTTP错误状态码不属于此类
type FetchError struct {
	URL   string
	Kind  FetchErrorKind
	Cause error
}

// NewFetchError 创建下载错误并归类
func NewFetchError(url string, cause error) *FetchError {
	return &FetchError{
		URL:   url,
		Kind:  ClassifyFetchError(cause),
		Cause: cause,
	}
}

// Error 实现error接口
func (e *FetchError) Error() string {
	return fmt.Sprintf("下载失败 [%s] (%s): %v", e.URL, e.Kind, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ClassifyFetchError 根据底层错误判断失败类型
func ClassifyFetchError(err error) FetchErrorKind {
	if err == nil {
		return FetchOther
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FetchDNS
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTimeout
	}

	var (
		recordErr   tls.RecordHeaderError
		certErr     *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidErr  x509.CertificateInvalidError
	)
	if errors.As(err, &recordErr) || errors.As(err, &certErr) || errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) || errors.As(err, &invalidErr) {
		return FetchTLS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FetchConnection
	}

	// colly等库有时只返回字符串化的错误
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return FetchTimeout
	case strings.Contains(msg, "no such host"):
		return FetchDNS
	case strings.Contains(msg, "tls"), strings.Contains(msg, "x509"), strings.Contains(msg, "certificate"):
		return FetchTLS
	case strings.Contains(msg, "connection"), strings.Contains(msg, "eof"):
		return FetchConnection
	}
	return FetchOther
}

// RowError 输入文件中的格式错误行
type RowError struct {
	File   string
	Line   int
	Reason string
}

// Error 实现error接口
func (e *RowError) Error() string {
	return fmt.Sprintf("输入行格式错误 [%s:%d]: %s", e.File, e.Line, e.Reason)
}

// MissingInputError 必需的输入文件不存在
type MissingInputError struct {
	Role string // hosters, products, listing sites ...
	Path string
}

// Error 实现error接口
func (e *MissingInputError) Error() string {
	return fmt.Sprintf("缺少必需的输入文件 (%s): %s", e.Role, e.Path)
}
