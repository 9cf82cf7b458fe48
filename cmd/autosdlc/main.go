package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/autosdlc/autosdlc/internal/cmd"
	"github.com/autosdlc/autosdlc/internal/exitcode"
	"github.com/autosdlc/autosdlc/internal/ux"
)

func main() {
	exitcode.Exit(run(os.Stderr))
}

func run(stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitcode.Success
	case ctx.Err() != nil:
		fmt.Fprintln(stderr, "\nInterrupted")
		return exitcode.Interrupted
	default:
		fmt.Fprintf(stderr, "Error: %v\n", ux.EnhanceError(err))
		return exitcode.DetermineExitCode(err)
	}
}
