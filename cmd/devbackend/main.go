package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filedesk/internal/devbackend"
	"filedesk/internal/util/logx"
)

func main() {
	var (
		addr           string
		seed           bool
		seedValue      int64
		requireSession bool
		requestLog     bool
	)
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.BoolVar(&seed, "seed", true, "preload sample files")
	flag.Int64Var(&seedValue, "seed-value", 0, "random seed for sample data; 0 uses the clock")
	flag.BoolVar(&requireSession, "require-session", true, "reject data requests without a valid session")
	flag.BoolVar(&requestLog, "log", false, "write an access log to stdout")
	flag.Parse()

	logx.SetLevelFromEnv()

	store := devbackend.NewStore()
	if seed {
		if seedValue == 0 {
			seedValue = time.Now().UnixNano()
		}
		devbackend.Seed(store, rand.New(rand.NewSource(seedValue)))
		logx.Infof("devbackend: seeded %d files", len(store.List()))
	}
	srv := devbackend.New(store, devbackend.Options{RequireSession: requireSession, RequestLog: requestLog})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()
	fmt.Fprintf(os.Stderr, "devbackend listening on %s\n", addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintln(os.Stderr, "devbackend:", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintln(os.Stderr, "devbackend: shutdown:", err)
		}
	}
}
