package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"filedesk/internal/config"
	"filedesk/internal/ui"
	"filedesk/internal/util/logx"
	"filedesk/internal/version"
)

func main() {
	logx.SetLevelFromEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	if cfg.ShowVersion {
		fmt.Println("filedesk", version.String())
		return
	}

	// Setup cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logx.Infof("starting filedesk %s: %s", version.String(), cfg.String())
	if err := ui.Run(ctx, cfg); err != nil {
		logx.Errorf("filedesk exited with error: %v", err)
		fmt.Fprintln(os.Stderr, "filedesk:", err)
		os.Exit(1)
	}
}
