// Package main is the todoctl administration CLI. It shares configuration,
// storage wiring and the todo service with the HTTP server and exposes the
// operations that have no HTTP route: schema migrations, bulk seeding and
// purging every todo.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
