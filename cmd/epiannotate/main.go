// Command epiannotate annotates outbreak reports with resolved place names.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/EpiAnnotator/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

//Personal.AI order the ending
