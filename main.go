// main is the entry point for the gitwalk CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/gitwalk/cmd"
	"github.com/huangsam/gitwalk/internal/iocache"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseCaching()

	if err := cmd.Execute(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
