package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// preenchidos via -ldflags no build
var (
	commit = ""
	date   = ""
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
