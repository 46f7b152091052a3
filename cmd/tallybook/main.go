// Command tallybook manages addressable todo and vote records.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/roach88/tallybook/internal/cli"
)

func slogPrintf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "tallybook")
}

func main() {
	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
