package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"netgraphx/internal/config"
	"netgraphx/internal/logging"
	"netgraphx/internal/metrics"
	"netgraphx/internal/runner"
	"netgraphx/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reconciliation over HTTP",
	Long: `Start an HTTP server that reconciles uploaded configuration documents.

Endpoints:
  POST /api/v1/reconcile   multipart upload, field "file"
  GET  /healthz            liveness
  GET  /metrics            Prometheus metrics

Example:
  netgraphx serve --listen :8080
  curl -F file=@office.yaml http://localhost:8080/api/v1/reconcile`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAndMerge(cmd, args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := runner.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(reg)

	engine := server.NewEngine(server.NewHandler(r, logger), reg)
	if err := server.Run(ctx, engine, cfg.Server.Listen, logger); err != nil {
		logger.Error("http server failed", zap.Error(err))
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "Address the HTTP server listens on")
	serveCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().String("model", "gemini-2.0-flash", "Gemini model used for both oracle calls")
}
