package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// defaultHome returns ~/.delgists, or a relative .delgists when the home
// directory is unknown.
func defaultHome() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".delgists"
	}
	return filepath.Join(homeDir, ".delgists")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newCLIApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
