package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"Gin_postgres_redis_lending/app"
	"Gin_postgres_redis_lending/routes"

	"github.com/spf13/cobra"
)

var noSweep bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the overdue sweeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		application, err := app.New(cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		routes.RegisterRoutes(application.Router, application)

		sweepDone := make(chan struct{})
		if noSweep {
			close(sweepDone)
		} else {
			go func() {
				defer close(sweepDone)
				application.Sweeper.Run(ctx)
			}()
		}

		srv := &http.Server{Addr: ":" + cfg.Port, Handler: application.Router}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			if err != nil {
				stop()
				<-sweepDone
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
		<-sweepDone
		logger.Info("server stopped")
		return err
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noSweep, "no-sweep", false, "do not run the overdue sweeper in this process")
}
