// ./main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/listdrain/cmd"
)

// main is the entry point for the listdrain application. The context is
// wired to the interrupt signals so Ctrl-C unwinds the run cleanly; the
// sentinel file remains the preferred stop mechanism mid-action.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
