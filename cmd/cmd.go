package cmd

import (
	"os"

	"github.com/dszqbsm/scrapetree/cmd/convert"
	"github.com/dszqbsm/scrapetree/cmd/scrape"
	"github.com/dszqbsm/scrapetree/version"
	"github.com/spf13/cobra"
)

// scrape 对页面求值规则树，convert 将任意格式的规则文件转换为显式格式，version 打印版本信息

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

func Execute() {
	var rootCmd = &cobra.Command{
		Use:          "scrapetree",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(scrape.ScrapeCmd, convert.ConvertCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
