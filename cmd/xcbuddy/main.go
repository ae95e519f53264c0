package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/xcbuddy/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// main is the entrypoint for the xcbuddy application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render(exitErr.Message))
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render(err.Error()))
		stop()
		os.Exit(cli.ExitFailure)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	return cli.Execute(ctx, args, outW, errW, version)
}
