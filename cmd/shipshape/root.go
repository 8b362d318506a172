package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/shipshape/core/client/middleware"
	"github.com/leofalp/shipshape/core/extract"
	"github.com/leofalp/shipshape/internal/config"
	slogobs "github.com/leofalp/shipshape/providers/observability/slog"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	envFile  string
	logLevel string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "shipshape",
		Short: "Shipping label tool with AI address autofill",
		Long: `shipshape builds 4x6 shipping labels.

It generates tracking numbers, turns free-form address text into structured
sender and receiver addresses with Gemini, and renders a printable preview.
Autofill needs GEMINI_API_KEY (or API_KEY) in the environment or a .env file;
everything else works without it.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default: ./.env if present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (default: $LOG_LEVEL or info)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log model requests and replies (contains personal data)")

	cmd.AddCommand(
		newServeCmd(opts),
		newExtractCmd(opts),
		newTrackCmd(),
		newPreviewCmd(opts),
	)
	return cmd
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	var files []string
	if o.envFile != "" {
		files = append(files, o.envFile)
	}
	return config.Load(files...)
}

// logger builds the process logger. Servers default to JSON, CLI commands
// always log text to stderr.
func (o *globalOptions) logger(cfg *config.Config, w io.Writer, allowJSON bool) *slog.Logger {
	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	return slogobs.NewLogger(w, slogobs.ParseLogLevel(level), allowJSON && cfg.JSONLogs())
}

// newExtractor wires the Gemini extractor with logging and metrics.
func (o *globalOptions) newExtractor(cfg *config.Config, logger *slog.Logger, observer *slogobs.Observer) (*extract.Extractor, error) {
	logLevel := middleware.LogLevelStandard
	if o.verbose {
		logLevel = middleware.LogLevelVerbose
	}

	ext, err := extract.NewGemini(cfg.Extract(),
		extract.WithObserver(observer),
		extract.WithLogger(logger, logLevel),
	)
	if err != nil {
		return nil, fmt.Errorf("create extractor: %w", err)
	}
	if !ext.Available() {
		logger.Warn("Gemini API key missing, autofill is disabled")
	}
	return ext, nil
}

// readText returns args joined by spaces, or the whole of stdin when the only
// argument is "-" or there are none.
func readText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(raw), nil
}
