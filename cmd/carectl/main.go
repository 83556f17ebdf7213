package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/nkiryanov/carectl/internal/apiclient"
	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/validate"
)

func main() {
	// Initialize context that cancelled on SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx, os.Getenv, os.Getwd, os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		printError(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

// run builds commands from .env, environment and args, then executes the one args name
func run(ctx context.Context, getenv func(string) string, getwd func() (string, error), args []string, stdout io.Writer, stderr io.Writer) error {
	c := NewConfig()

	if err := c.LoadDotEnv(getwd); err != nil {
		return fmt.Errorf("error while loading .env. Err: %w", err)
	}
	c.LoadEnv(getenv)

	commands := &cli{config: c, stdout: stdout, stderr: stderr}
	defer commands.close()

	root := commands.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.ExecuteContext(ctx)
}

func printError(w io.Writer, err error) {
	var fields validate.Errors
	var apiErr *apiclient.APIError

	switch {
	case errors.As(err, &fields):
		fmt.Fprintln(w, "invalid input:")
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
		}

	case errors.Is(err, apperrors.ErrSessionExpired):
		fmt.Fprintln(w, "error: session expired")

	case errors.As(err, &apiErr) && !errors.Is(err, apperrors.ErrRotationIncomplete):
		fmt.Fprintf(w, "error: %s (%d)\n", apiErr.Message, apiErr.StatusCode)

	default:
		fmt.Fprintf(w, "error: %v\n", err)
	}
}
