package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// exitFunc is replaced in tests.
var exitFunc = os.Exit

// SetupSignalHandler returns a context that is canceled on SIGINT or
// SIGTERM. A second signal exits the process with ExitFailure. The returned
// stop function releases the signal handler.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
		})
		cancel()
	}

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received shutdown signal", "signal", sig.String())
			cancel()
		case <-done:
			return
		}

		select {
		case sig := <-sigChan:
			slog.Warn("received second signal, exiting", "signal", sig.String())
			exitFunc(ExitFailure)
		case <-done:
		}
	}()

	return ctx, stop
}
