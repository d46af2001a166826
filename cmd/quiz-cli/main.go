package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"sheet-quiz/internal/bootstrap"
	"sheet-quiz/internal/cli"
	"sheet-quiz/internal/terminal"
)

func main() {
	configDir := flag.String("config", ".", "directory holding config.yaml")
	logLevel := flag.String("log-level", "warn", "log level for terminal use")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := bootstrap.Open(ctx, bootstrap.Options{ConfigDir: *configDir, LogLevel: *logLevel, LogOutput: os.Stderr})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	app := &cli.App{Service: rt.Service, View: terminal.ResultsView{NoColor: *noColor}}
	err = app.Run(ctx, flag.Args(), os.Stdin, os.Stdout)
	_ = rt.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
