package main

import (
	"fmt"
	"path/filepath"

	"github.com/RecoveryAshes/HosterScan/internal/inputs"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
	"github.com/spf13/cobra"
)

var (
	prepareOutput   string
	prepareInputDir string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare [file...]",
	Short: "合并托管商/网址列表为 scan 的输入文件",
	Long: `读取输入目录中的已知列表(hosters.csv, cpanel_hosters.csv, salesforce_accounts.csv,
whmcs_users.csv, url.txt)以及 collect 的输出,加上命令行给出的文件(.csv 第1列为网址,
其他为每行一个网址),每个域名保留第一次出现的记录。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := inputs.DefaultPrepareSources(prepareInputDir, appConfig.Output.Dir)
		for _, path := range args {
			sources = append(sources, inputs.DetectSource(path))
		}

		output := prepareOutput
		if output == "" {
			output = filepath.Join(prepareInputDir, "hosters_to_be_crawled.csv")
		}
		stats, err := inputs.PrepareHosters(sources, output)
		if err != nil {
			return err
		}
		if len(stats.Sources) == 0 {
			utils.Warnf("没有找到任何输入文件 (目录: %s)", prepareInputDir)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s urls imported in total\n", utils.FormatCount(stats.Imported))
		fmt.Fprintf(out, "%s urls imported mentioned a company name\n", utils.FormatCount(stats.ImportedWithCompany))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s urls exported in total\n", utils.FormatCount(stats.Exported))
		fmt.Fprintf(out, "%s urls exported mentioned a company name\n", utils.FormatCount(stats.ExportedWithCompany))
		fmt.Fprintf(out, "%s companies exported in total\n", utils.FormatCount(stats.Companies))
		fmt.Fprintf(out, "%s companies exported having a hosterID in total\n", utils.FormatCount(stats.HosterIDs))
		fmt.Fprintf(out, "\nSaved to %s\n", output)
		return nil
	},
}

func init() {
	prepareCmd.Flags().StringVarP(&prepareOutput, "output", "o", "", "输出CSV (默认 <input-dir>/hosters_to_be_crawled.csv)")
	prepareCmd.Flags().StringVar(&prepareInputDir, "input-dir", "input", "已知列表所在目录")
}
