package main

import (
	"fmt"

	"github.com/RecoveryAshes/HosterScan/internal/config"
	"github.com/RecoveryAshes/HosterScan/internal/core"
	"github.com/spf13/cobra"
)

var (
	initOutput string
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "生成默认配置文件",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := initOutput
		if path == "" {
			path = core.DefaultConfigFile()
		}
		if err := config.WriteTemplate(path, initForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已生成配置文件: %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "", "配置文件路径 (默认 $XDG_CONFIG_HOME/hosterscan/config.yaml)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "覆盖已存在的文件")
}
