package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bdobrica/karsb/common/version"
	"github.com/bdobrica/karsb/internal/karsb/app"
	"github.com/bdobrica/karsb/internal/karsb/observability"
)

func main() {
	fmt.Println(version.Info())

	config, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	observability.Setup(config.LogLevel, config.LogFormat, config.Secrets()...)

	karsb, err := app.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize kARsb: %v\n", err)
		os.Exit(1)
	}
	defer karsb.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := karsb.Run(ctx); err != nil {
		slog.Error("kARsb stopped", "err", err)
		karsb.Stop()
		os.Exit(1)
	}
}
