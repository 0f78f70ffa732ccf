package main

import (
	"fmt"

	"github.com/RecoveryAshes/HosterScan/internal/core"
	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/spf13/cobra"
)

// validateCrawlFlags 验证命令行标志
func validateCrawlFlags(mode models.RunMode, f core.CrawlFlags) error {
	if f.MaxPages < 0 {
		return fmt.Errorf("页面数不能为负数,当前值: %d", f.MaxPages)
	}
	if f.Timeout < 0 || f.Timeout > 600 {
		return fmt.Errorf("请求超时必须在0-600秒之间,当前值: %d", f.Timeout)
	}
	if f.RateLimit < 0 {
		return fmt.Errorf("限速不能为负数,当前值: %.2f", f.RateLimit)
	}
	if mode == models.ModeScan {
		if f.StartAt < 0 {
			return fmt.Errorf("--start-at 不能为负数,当前值: %d", f.StartAt)
		}
		if f.StopAt < f.StartAt {
			return fmt.Errorf("--stop-at (%d) 不能小于 --start-at (%d)", f.StopAt, f.StartAt)
		}
	}
	return nil
}

// runValidateConfig 验证配置与HTTP头部并打印生效值(脱敏)
func runValidateConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	if appConfig.File != "" {
		fmt.Fprintf(out, "配置文件: %s\n", appConfig.File)
	} else {
		fmt.Fprintln(out, "未找到配置文件,使用内置默认值")
	}

	for _, mode := range []models.RunMode{models.ModeScan, models.ModeCollect} {
		cc := appConfig.CrawlConfigFor(mode, core.CrawlFlags{StopAt: 10000})
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("配置验证失败 (%s): %w", mode, err)
		}
	}

	hm, err := core.NewHeaderManager(appConfig.Crawl.UserAgent, appConfig.HTTP.Headers, headers)
	if err != nil {
		return err
	}
	if err := hm.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	safe := hm.GetSafeHeaders()
	fmt.Fprintln(out, "配置验证通过")
	fmt.Fprintf(out, "当前有效的HTTP头部 (%d个):\n", len(safe))
	for _, line := range safe {
		fmt.Fprintf(out, "  %s\n", line)
	}
	return nil
}
