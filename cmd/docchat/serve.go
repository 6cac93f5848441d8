package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/transport/httpapi"
	"github.com/sandevgo/docchat/internal/transport/telegram"
	"github.com/sandevgo/docchat/pkg/log"
	"github.com/sandevgo/docchat/pkg/srv"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and, when enabled, the Telegram bot",
	Long:  `Serves document upload and streamed chat over HTTP. The Telegram bot starts alongside when DOCCHAT_TELEGRAM_ENABLED is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, nil)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting docchat")

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}

		services, err := newServices(ctx, app)
		if err != nil {
			_ = app.Close(ctx)
			return err
		}

		// A service that fails to start stops the whole process.
		ctx, fail := context.WithCancelCause(ctx)
		defer fail(nil)
		srv.StartServices(ctx, services, fail)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		err = srv.ShutdownServices(ctx, shutdownCtx, services)

		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		logger.Info().Msg("docchat has been shut down gracefully")
		return err
	},
}

// newServices lists services in start order; the cleanup service goes first
// so the database closes last.
func newServices(ctx context.Context, app *App) ([]srv.Service, error) {
	services := []srv.Service{
		app.cleanup,
		httpapi.NewServer(app.httpCfg, app.sessions, app.pipeline, app.ingest, app.store),
	}

	tgCfg := config.NewTelegramConfig(ctx)
	if tgCfg.Enabled {
		bot, err := telegram.NewBot(log.WithComponent(ctx, "telegram"), tgCfg, app.sessions, app.pipeline, app.ingest, app.router, app.httpCfg.MaxUploadBytes)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}
	return services, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
