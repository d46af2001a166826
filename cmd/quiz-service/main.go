package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sheet-quiz/internal/bootstrap"
	"sheet-quiz/internal/httpapi"
	"sheet-quiz/internal/metrics"
)

func main() {
	configDir := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collectors := metrics.New()
	rt, err := bootstrap.Open(ctx, bootstrap.Options{ConfigDir: *configDir, Observer: collectors})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer rt.Close()

	cfg := rt.Config
	handler := httpapi.NewRouter(httpapi.NewAPI(rt.Service, rt.Logger.Named("http")), httpapi.RouterOptions{
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		Logger:             rt.Logger.Named("http"),
		Metrics:            collectors,
		MetricsHandler:     collectors.Handler(),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		rt.Logger.Info("quiz-service listening", zap.String("addr", cfg.Server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.Logger.Error("server failed", zap.Error(err))
			_ = rt.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		rt.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			rt.Logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
