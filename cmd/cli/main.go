package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/clarkmarket/marketctl/cmd/cli/internal/commands"
	"github.com/clarkmarket/marketctl/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Login    commands.LoginCmd    `cmd:"" help:"Log in with email and password"`
		Logout   commands.LogoutCmd   `cmd:"" help:"Clear the stored session"`
		Register commands.RegisterCmd `cmd:"" help:"Register a new account"`
		Whoami   commands.WhoamiCmd   `cmd:"" help:"Show the current user profile"`
		Profile  commands.ProfileCmd  `cmd:"" help:"Manage the current user profile"`
		Products commands.ProductsCmd `cmd:"" help:"Inspect product listings"`
		Promote  commands.PromoteCmd  `cmd:"" help:"Purchase a premium promotion for a product"`
		Payment  commands.PaymentCmd  `cmd:"" help:"Check or wait on an outstanding payment"`
		Debug    bool                 `help:"Enable debug mode."`
		Version  kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
