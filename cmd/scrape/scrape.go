package scrape

import (
	"os"
	"os/signal"

	"github.com/dszqbsm/scrapetree/codec"
	"github.com/dszqbsm/scrapetree/config"
	"github.com/dszqbsm/scrapetree/log"
	"github.com/dszqbsm/scrapetree/rule"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ScrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "evaluate a rule tree against a page.",
	Long:  "fetch the start page, evaluate the rule tree from --rule against it and print the result.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd, args[0])
	},
}

var (
	rulePath   string
	configPath string
	output     string
	selector   string
)

func init() {
	ScrapeCmd.Flags().StringVarP(&rulePath, "rule", "r", "", "rule tree file, json or yaml")
	ScrapeCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file, toml, yaml or json")
	ScrapeCmd.Flags().StringVarP(&output, "output", "o", "json", "result format, json or yaml")
	ScrapeCmd.Flags().StringVar(&selector, "selector", "", "query language, xpath or css; overrides the config")
	ScrapeCmd.MarkFlagRequired("rule")
}

/*
输入一个命令和起始地址，输出一个错误

该方法用于加载配置与规则树，按配置组装采集器和查询引擎，求值后按output指定的格式写到命令的标准输出，收到中断信号时取消求值
*/
func Run(cmd *cobra.Command, rawURL string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if selector != "" {
		cfg.Selector = selector
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger, closer := log.New(level, cfg.LogFile)
	defer closer.Close()
	defer logger.Sync()

	data, err := os.ReadFile(rulePath)
	if err != nil {
		return errors.Wrap(err, "read rule file")
	}
	root, err := codec.Decode(data)
	if err != nil {
		return err
	}
	if root == nil {
		return errors.Errorf("rule file %q declares no rule tree", rulePath)
	}

	f, err := cfg.NewFetcher(logger.Named("fetch"))
	if err != nil {
		return err
	}
	engine, err := cfg.Engine()
	if err != nil {
		return err
	}
	agent := rule.NewAgent(
		rule.WithFetcher(f),
		rule.WithEngine(engine),
		rule.WithLogger(logger.Named("rule")),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("scrape start", zap.String("url", rawURL), zap.String("rule", rulePath), zap.String("selector", engine.Name()))
	result, err := agent.Scrape(ctx, root, rawURL)
	if err != nil {
		logger.Error("scrape failed", zap.String("url", rawURL), zap.Error(err))
		return err
	}

	var out []byte
	switch output {
	case "json":
		out, err = codec.EncodeResultJSON(root, result)
	case "yaml":
		out, err = codec.EncodeResultYAML(root, result)
	default:
		return errors.Errorf("unknown output format %q", output)
	}
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}
