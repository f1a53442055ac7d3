// Package main is the entry point for the yobatis CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yobatis-go/yobatis/cmd/yobatis/commands"
	"github.com/yobatis-go/yobatis/internal/ui"
)

func main() {
	if err := run(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.NewRootCommand().ExecuteContext(ctx)
}
