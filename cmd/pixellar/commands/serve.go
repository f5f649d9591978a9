package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/pixellar/internal/api"
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API in the foreground until interrupted.

Routes:
  GET  /healthz
  GET  /api/v1/canvas
  GET  /api/v1/pixels
  GET  /api/v1/pixels/:x/:y
  PUT  /api/v1/pixels/:x/:y          (Authorization: Bearer <token>)
  GET  /api/v1/stream                (websocket)
  POST /api/v1/canvas/initialize     (admin token when configured)
  POST /api/v1/games/:id/start|end   (admin token when configured)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireSecret(); err != nil {
		return printer.Error("no auth secret", "The API needs an auth secret to verify painter tokens.", []string{
			"Set auth.secret in pixellar.yml or PIXELLAR_AUTH_SECRET",
		})
	}

	addr := cfg.HTTP.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if logrus.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.NewServer(store, cfg.HTTP.AdminToken)
	if err := server.Start(addr); err != nil {
		return printer.Error("failed to start server", err.Error(), nil)
	}
	printer.Success("Serving canvas '%s' on %s\n", cfg.Instance, addr)

	<-ctx.Done()
	printer.Step("Shutting down...\n")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
