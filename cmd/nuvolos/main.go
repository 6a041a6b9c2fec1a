package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nuvolos-cloud/nuvolos-cli/cmd/nuvolos/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	appCtx := commands.NewContext(version, commit, date)
	err := commands.NewRootCommand(appCtx).ExecuteContext(ctx)

	_ = appCtx.Close()

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
