package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/straye-as/projecthub/internal/gateway"
	"github.com/straye-as/projecthub/internal/jobs"
	"github.com/straye-as/projecthub/internal/metrics"
	"go.uber.org/zap"
)

func newConsoleCmd(a *app) *cobra.Command {
	var (
		port int
		host string
	)
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Serve the browser console gateway on localhost",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				a.cfg.Console.Port = port
			}
			if host != "" {
				a.cfg.Console.Host = host
			}
			return a.serveConsole()
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "listen interface (default loopback)")
	return cmd
}

func (a *app) serveConsole() error {
	log := a.log

	log.Info("Starting console gateway",
		zap.String("app", a.cfg.App.Name),
		zap.String("env", a.cfg.App.Environment),
		zap.String("addr", a.cfg.Console.Addr()),
		zap.String("api_url", a.cfg.API.BaseURL),
	)

	srv := gateway.NewServer(a.cfg, log, a.client, a.registry, metrics.NewGatewayMetrics(a.registry)).NewHTTPServer()

	scheduler := jobs.NewScheduler(log)
	registered, err := jobs.RegisterSessionRefreshJob(
		scheduler,
		a.services.Users,
		a.store,
		log,
		a.cfg.Console.RefreshCron,
		a.cfg.API.TimeoutDuration(),
	)
	if err != nil {
		return fmt.Errorf("failed to register session refresh job: %w", err)
	}
	if registered {
		scheduler.Start()
	} else {
		log.Info("Session refresh disabled", zap.String("cron", a.cfg.Console.RefreshCron))
		scheduler = nil
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()
	fmt.Fprintf(a.errOut, "console listening on http://%s\n", srv.Addr)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
