package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iambrandonn/envcheck/internal/cli"
)

func main() {
	// SIGINT/SIGTERM cancel the context, which kills the child process
	// group as part of cleanup.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	os.Exit(cli.Execute(ctx))
}
