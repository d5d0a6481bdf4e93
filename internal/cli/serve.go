package cli

import (
	"os/signal"
	"syscall"

	"github.com/ppiankov/sportcheck/internal/pipeline"
	"github.com/ppiankov/sportcheck/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fact-check HTTP API",
	Long: `Serve starts the HTTP API:
  POST /fact-check   {"claim": "..."}
  GET  /health
  GET  /metrics      Prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default: server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker, err := pipeline.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = checker.Close() }()

	return server.New(checker, server.Options{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}).Start(ctx)
}
