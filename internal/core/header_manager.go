package core

import (
	"net/http"

	"github.com/RecoveryAshes/HosterScan/internal/crawlers"
	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
)

// HeaderManager 合并并验证每次请求使用的HTTP头部
// 实现 models.HeaderProvider
type HeaderManager struct {
	defaults http.Header // 内置默认头部
	config   http.Header // 配置文件 http.headers
	cli      http.Header // 命令行 -H

	merged    http.Header
	validated bool
}

// NewHeaderManager 创建头部管理器
// userAgent为空时使用内置浏览器标识
func NewHeaderManager(userAgent string, configHeaders models.HeaderSet, cliHeaders []string) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults: DefaultHeaders(userAgent),
		config:   make(http.Header, len(configHeaders)),
		cli:      make(http.Header),
	}
	for name, value := range configHeaders {
		hm.config.Set(name, value)
	}

	if len(cliHeaders) > 0 {
		parsed, err := models.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, err
		}
		hm.cli = parsed
	}
	return hm, nil
}

// DefaultHeaders 返回内置默认头部
func DefaultHeaders(userAgent string) http.Header {
	if userAgent == "" {
		userAgent = crawlers.DefaultUserAgent
	}
	return http.Header{
		"User-Agent":      []string{userAgent},
		"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"Accept-Encoding": []string{"gzip, deflate, br"},
	}
}

// Validate 依次验证默认、配置文件、命令行头部
func (hm *HeaderManager) Validate() error {
	if err := utils.ValidateHeaders(hm.defaults); err != nil {
		utils.Errorf("默认头部验证失败: %v", err)
		return err
	}
	if err := utils.ValidateHeaders(hm.config); err != nil {
		utils.Errorf("配置文件头部验证失败: %v", err)
		return err
	}
	if err := utils.ValidateHeaders(hm.cli); err != nil {
		utils.Errorf("命令行头部验证失败: %v", err)
		return err
	}
	return nil
}

// GetMergedHeaders 按优先级合并头部 (default < config < cli)
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, layer := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range layer {
			result[name] = values
		}
	}
	return result
}

// GetSafeHeaders 返回脱敏后的头部,用于日志
func (hm *HeaderManager) GetSafeHeaders() []string {
	return utils.RedactHeaders(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider 接口
// 首次调用时验证,之后返回缓存的合并结果副本
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if !hm.validated {
		if err := hm.Validate(); err != nil {
			return nil, err
		}
		hm.merged = hm.GetMergedHeaders()
		hm.validated = true
		utils.Debugf("HTTP头部: %v", hm.GetSafeHeaders())
	}
	return hm.merged.Clone(), nil
}
