package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/shipshape/core/label"
	slogobs "github.com/leofalp/shipshape/providers/observability/slog"
)

func newExtractCmd(opts *globalOptions) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "extract [text | -]",
		Short: "Extract a structured address from free-form text",
		Long: `Extract a structured address from free-form text and print it as JSON.

The text is taken from the arguments, or from stdin when it is "-" or absent.

Examples:
  shipshape extract "John Smith, 123 Main St, Springfield, IL, USA, 555-1234"
  pbpaste | shipshape extract --target receiver`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedTarget, err := label.ParseTarget(target)
			if err != nil {
				return err
			}
			text, err := readText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := opts.logger(cfg, os.Stderr, false)
			ext, err := opts.newExtractor(cfg, logger, slogobs.New(logger))
			if err != nil {
				return err
			}

			result, err := ext.ExtractFor(cmd.Context(), parsedTarget, text)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", string(label.TargetSender), "address section: sender or receiver")
	return cmd
}
