package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"github.com/spec-kit/lottery-auth/cmd/authctl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Register      commands.RegisterCmd      `cmd:"" help:"Create an account"`
		Sessions      commands.SessionsCmd      `cmd:"" help:"Show session counts"`
		PurgeSessions commands.PurgeSessionsCmd `cmd:"" help:"Delete lapsed sessions"`
		Hash          commands.HashCmd          `cmd:"" help:"Print the stored digest for a password"`
		Migrate       commands.MigrateCmd       `cmd:"" help:"Apply database migrations"`
		Debug         bool                      `help:"Enable debug logging."`
		Version       kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("authctl"),
		kong.Description("Account and session maintenance for lottery-auth."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Out: os.Stdout})
	cmd.FatalIfErrorf(err)
}
