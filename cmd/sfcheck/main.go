// Package main is the entry point for the sfcheck CLI.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/yaklabco/sfcheck/internal/cli"
	"github.com/yaklabco/sfcheck/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)
	logger := logging.Default()

	if err := rootCmd.ExecuteContext(logging.WithLogger(ctx, logger)); err != nil {
		// ErrIssuesFound only selects the exit code.
		if !errors.Is(err, cli.ErrIssuesFound) {
			logger.Error("command failed", logging.FieldError, err)
		}
		return 1
	}

	return 0
}
