// The main package for the ogimage executable.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// main defers all execution to the Cobra root command.
func main() {
	os.Exit(execute())
}

// execute runs the root command and maps any returned error to exit status 1.
func execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ogimage:", err)
		return 1
	}
	return 0
}
