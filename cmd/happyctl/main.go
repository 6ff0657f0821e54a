package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"happythings/internal/app"
	"happythings/internal/cli"
	"happythings/internal/config"
	"happythings/internal/logging"
)

var CLI struct {
	Migrate         cli.MigrateCmd         `cmd:"" help:"Apply database migrations."`
	EnsureToday     cli.EnsureTodayCmd     `cmd:"" help:"Create an empty entry for today (or a given date) if none exists."`
	Collage         cli.CollageCmd         `cmd:"" help:"Generate and upload the collage for a week."`
	CleanupSessions cli.CleanupSessionsCmd `cmd:"" help:"Delete expired admin sessions."`
	UploadToken     cli.UploadTokenCmd     `cmd:"" help:"Print a signed token for the image upload endpoint."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("happyctl"),
		kong.Description("Maintenance commands for Things to be Happy About"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	err = kctx.Run(&cli.Context{Ctx: ctx, App: a, Out: os.Stdout})
	a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
