package collector

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

var shutdownSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT}

// SetupSignalHandler returns a context cancelled by the first SIGTERM or
// SIGINT. onShutdown runs before the cancel; a second signal exits with 1.
func SetupSignalHandler(onShutdown func(context.Context)) context.Context {
	return watchSignals(context.Background(), onShutdown, os.Exit)
}

func watchSignals(parent context.Context, onShutdown func(context.Context), exit func(int)) context.Context {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, shutdownSignals...)

	go func() {
		defer signal.Stop(sigCh)
		var first os.Signal
		select {
		case first = <-sigCh:
		case <-parent.Done():
			cancel()
			return
		}
		log.Printf("[Shutdown] %v: draining, send again to force", first)
		if onShutdown != nil {
			onShutdown(ctx)
		}
		cancel()

		if again, ok := <-sigCh; ok {
			log.Printf("[Shutdown] %v: forcing exit", again)
			exit(1)
		}
	}()
	return ctx
}
