package main

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/leofalp/shipshape/core/form"
	"github.com/leofalp/shipshape/core/tracking"
	"github.com/leofalp/shipshape/internal/server"
	slogobs "github.com/leofalp/shipshape/providers/observability/slog"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the shipshape HTTP API.

The server provides:
  - /healthz                          liveness
  - /metrics                          Prometheus metrics
  - /api/status                       whether autofill is configured
  - /api/forms/...                    label forms, autofill and preview
  - /api/extract                      stateless address extraction
  - /api/tracking-number              a fresh tracking number

Examples:
  shipshape serve                       # listen on $SHIPSHAPE_HTTP_ADDR or :8080
  shipshape serve --addr 127.0.0.1:3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			logger := opts.logger(cfg, os.Stdout, true)

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			observer := slogobs.New(logger, slogobs.WithRegisterer(registry))

			ext, err := opts.newExtractor(cfg, logger, observer)
			if err != nil {
				return err
			}

			generator := tracking.NewGenerator(nil)
			forms := form.NewStore(func() *form.Form {
				return form.New(ext, form.WithTracking(generator), form.WithLogger(logger))
			}, cfg.MaxForms, form.WithIdleTTL(cfg.FormIdleTTL))

			handler := server.NewRouter(server.Deps{
				Extractor: ext,
				Forms:     forms,
				Tracking:  generator,
				Logger:    logger,
				Registry:  registry,
			})

			logger.Info("starting shipshape",
				slog.Bool("autofill", ext.Available()),
				slog.String("model", ext.Model()),
			)
			return server.Run(cmd.Context(), cfg.HTTPAddr, handler, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (overrides SHIPSHAPE_HTTP_ADDR)")
	return cmd
}
