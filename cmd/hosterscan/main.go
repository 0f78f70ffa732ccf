package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/HosterScan/internal/core"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 全局参数
var (
	configFile     string
	verbose        bool
	logLevel       string
	headers        []string
	validateConfig bool
)

// 由 PersistentPreRunE 初始化
var (
	appConfig *core.Config
	runID     string
)

var rootCmd = &cobra.Command{
	Use:   "hosterscan",
	Short: "托管商网站爬取与产品统计工具",
	Long: `HosterScan - 爬取托管商网站并统计其提及的产品

子命令:
  collect   爬取列表站点,收集可能的托管商网址
  prepare   合并托管商/网址列表为 scan 的输入文件
  scan      爬取托管商网站,统计产品关键词
  init      生成默认配置文件

示例:
  hosterscan collect --import-urls input/url.txt
  hosterscan prepare
  hosterscan scan --start-at 0 --stop-at 99 -H "Accept-Language: en-US"
  hosterscan scan --list-products

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "init" {
			return nil
		}

		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig = cfg
		runID = uuid.NewString()

		logConfig := cfg.LogConfig(runID)
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if verbose {
			logConfig.Level = "debug"
		}
		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if cfg.File != "" {
			utils.Debugf("使用配置文件: %s", cfg.File)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateConfig {
			return runValidateConfig(cmd)
		}
		return cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "HosterScan %s\n", Version)
		fmt.Fprintf(cmd.OutOrStdout(), "构建时间: %s\n", BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式 (等同 --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.Flags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件与HTTP头部后退出")

	rootCmd.AddCommand(versionCmd, initCmd, prepareCmd, newCrawlCommand(scanSpec), newCrawlCommand(collectSpec))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "已中断: 已完成站点的记录已保存,重新运行将从中断处继续")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
