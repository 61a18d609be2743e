package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// forceExit is replaced in tests.
var forceExit = os.Exit

// interruptContext returns a context canceled by the first SIGINT/SIGTERM.
// A second signal exits the process. The first one lets an in-flight upload
// or login wait unwind, so a pending verifier is discarded before exit.
// Callers must call stop once the command finishes to release the handler.
func interruptContext(parent context.Context, logger *slog.Logger) (ctx context.Context, stop context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	released := make(chan struct{})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("interrupted, canceling", slog.String("signal", sig.String()))
			cancel()
		case <-released:
			return
		}

		select {
		case sig := <-sigCh:
			logger.Warn("second interrupt, exiting", slog.String("signal", sig.String()))
			forceExit(1)
		case <-released:
		}
	}()

	var once sync.Once

	return ctx, func() {
		once.Do(func() {
			cancel()
			close(released)
		})
	}
}
