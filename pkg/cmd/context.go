package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/synthwatch/synthwatch/pkg/logging"
)

var (
	rootCtx  context.Context
	rootOnce sync.Once
)

// ProcessContext returns the context backing one CLI invocation. The first
// SIGINT or SIGTERM cancels it, letting the run unwind and flush its
// reporters; a second signal aborts the process immediately.
func ProcessContext() context.Context {
	rootOnce.Do(func() {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		rootCtx = ctx

		go func() {
			<-ctx.Done()
			stop()

			abort := make(chan os.Signal, 1)
			signal.Notify(abort, syscall.SIGINT, syscall.SIGTERM)
			<-abort
			logging.S().Error("interrupted twice, aborting")
			os.Exit(130)
		}()
	})
	return rootCtx
}
