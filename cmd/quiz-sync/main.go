package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"sheet-quiz/internal/bootstrap"
)

// quiz-sync refreshes the question cache once, for cron or CI.
func main() {
	configDir := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, bootstrap.Options{ConfigDir: *configDir})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	info, err := rt.Service.Sync(ctx)
	if err != nil {
		rt.Logger.Error("sync failed", zap.Error(err))
		_ = rt.Close()
		os.Exit(1)
	}
	rt.Logger.Info("sync complete",
		zap.Int("questions", info.QuestionCount),
		zap.Time("synced_at", info.SyncedAt))
	_ = rt.Close()
}
