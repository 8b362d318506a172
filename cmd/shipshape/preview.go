package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/shipshape/core/form"
	"github.com/leofalp/shipshape/core/label"
	"github.com/leofalp/shipshape/core/render"
	slogobs "github.com/leofalp/shipshape/providers/observability/slog"
)

type previewOptions struct {
	senderText   string
	receiverText string
	service      string
	weight       float64
	unit         string
	dimensions   string
	format       string
}

func newPreviewCmd(opts *globalOptions) *cobra.Command {
	p := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a label, autofilling addresses from free-form text",
		Long: `Render a label preview.

Sender and receiver are extracted from the given texts with Gemini. A failed
extraction leaves that address blank and is reported on stderr; the label is
still rendered.

Examples:
  shipshape preview --receiver-text "Jane Doe, 1 Elm St, Portland, OR, USA"
  shipshape preview --service express --format html > label.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, opts, p)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&p.senderText, "sender-text", "", "free-form sender address")
	flags.StringVar(&p.receiverText, "receiver-text", "", "free-form receiver address")
	flags.StringVar(&p.service, "service", "standard", "service: standard, express or priority")
	flags.Float64Var(&p.weight, "weight", label.DefaultWeight, "package weight")
	flags.StringVar(&p.unit, "unit", string(label.DefaultWeightUnit), "weight unit: lbs or kg")
	flags.StringVar(&p.dimensions, "dimensions", label.DefaultDimensions, "package dimensions LxWxH")
	flags.StringVar(&p.format, "format", "markdown", "output format: markdown or html")
	return cmd
}

func runPreview(cmd *cobra.Command, opts *globalOptions, p *previewOptions) error {
	format := strings.ToLower(p.format)
	if format != "markdown" && format != "html" {
		return fmt.Errorf("unknown format %q", p.format)
	}
	service, err := label.ParseServiceType(p.service)
	if err != nil {
		return err
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := opts.logger(cfg, os.Stderr, false)

	var extractor form.Extractor
	if p.senderText != "" || p.receiverText != "" {
		ext, err := opts.newExtractor(cfg, logger, slogobs.New(logger))
		if err != nil {
			return err
		}
		extractor = ext
	}

	f := form.New(extractor, form.WithLogger(logger))
	pkg := f.Snapshot().Package
	pkg.ServiceType = service
	pkg.Weight = p.weight
	pkg.WeightUnit = label.WeightUnit(p.unit)
	pkg.Dimensions = p.dimensions
	if err := f.SetPackage(pkg); err != nil {
		return err
	}

	for target, text := range map[label.Target]string{
		label.TargetSender:   p.senderText,
		label.TargetReceiver: p.receiverText,
	} {
		if text == "" {
			continue
		}
		if _, err := f.AutoFill(cmd.Context(), target, text); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s autofill failed: %v\n", target, err)
		}
	}

	data := f.Snapshot()
	if format == "html" {
		return render.HTML(cmd.OutOrStdout(), data)
	}
	md, err := render.Markdown(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), md)
	return err
}
