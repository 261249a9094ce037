package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bashhack/linklock/internal/config"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	app := NewDefaultApp(versionInfo)

	// Cancelling the context makes a waiting Acquire return and a held lock be
	// released before the command exits
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	code := app.Execute(ctx, os.Args[1:])
	stop()

	app.exit(code)
}
