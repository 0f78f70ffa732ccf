package models

import (
	"fmt"
	"net/http"
	"strings"
)

// HeaderSet 配置文件 http.headers 段,键为头部名称
type HeaderSet map[string]string

// CliHeaders 命令行 --header 参数,每项形如 "Name: Value"
type CliHeaders []string

// Parse 解析为 http.Header,同名头部后者覆盖前者
func (ch CliHeaders) Parse() (http.Header, error) {
	out := make(http.Header, len(ch))
	for i, raw := range ch {
		name, value, ok := strings.Cut(raw, ":")
		if !ok {
			return nil, fmt.Errorf("--header 第%d项缺少冒号,应为 'Name: Value': %q", i+1, raw)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("--header 第%d项头部名称为空", i+1)
		}
		out.Set(name, strings.TrimSpace(value))
	}
	return out, nil
}

// HeaderProvider 提供每次请求使用的HTTP头部
// 合并优先级: 默认 < 配置文件 < 命令行
type HeaderProvider interface {
	GetHeaders() (http.Header, error)
}

// ValidationError 头部验证失败
type ValidationError struct {
	HeaderName string
	Reason     string
	Suggestion string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("头部验证失败 [%s]: %s", e.HeaderName, e.Reason)
	if e.Suggestion != "" {
		msg += " (建议: " + e.Suggestion + ")"
	}
	return msg
}

// ConfigError 配置文件无法读取或解析
type ConfigError struct {
	FilePath string
	Cause    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置文件错误 [%s]: %v", e.FilePath, e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
