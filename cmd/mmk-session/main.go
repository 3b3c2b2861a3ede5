package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/mmk-ui-session/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Args[1:], cli.Options{})
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mmk-session:", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal failure to shell scripts
	}
}
