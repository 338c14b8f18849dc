package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LeagueSync/internal/api"
	"LeagueSync/internal/scheduler"
	"LeagueSync/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	a, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer a.close()

	guard := &service.RunGuard{}

	gin.SetMode(a.cfg.Server.Mode)
	r := gin.Default()
	if a.cfg.Server.Pprof {
		pprof.Register(r)
	}
	a.logger.Infof("gin mode: %s", a.cfg.Server.Mode)

	api.RegisterRoutes(r,
		api.NewSyncHandler(a.sync, guard, a.logger),
		api.NewLeagueHandler(a.query, a.logger),
	)

	if a.cfg.Sync.Schedule != "" {
		sched, err := scheduler.New(a.cfg.Sync.Schedule, a.sync, guard, a.logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler: r,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("server listening on port %d", a.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
