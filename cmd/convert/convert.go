package convert

import (
	"os"

	"github.com/dszqbsm/scrapetree/codec"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var ConvertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "rewrite a rule tree in explicit form.",
	Long:  "decode a rule tree written in explicit or shorthand form, json or yaml, and print it in explicit form.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd, args[0])
	},
}

var output string

func init() {
	ConvertCmd.Flags().StringVarP(&output, "output", "o", "json", "output format, json or yaml")
}

// Run 解码规则文件并以显式格式输出，空规则文件输出为空
func Run(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read rule file")
	}
	root, err := codec.Decode(data)
	if err != nil {
		return err
	}

	var out []byte
	switch output {
	case "json":
		out, err = codec.EncodeJSON(root)
	case "yaml":
		out, err = codec.EncodeYAML(root)
	default:
		return errors.Errorf("unknown output format %q", output)
	}
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}
