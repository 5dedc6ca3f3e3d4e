package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webupdate/cmd/webupdate/commands"
	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
	"git.home.luguber.info/inful/webupdate/internal/version"
)

func main() {
	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("webupdate"),
		kong.Description("Inject update notifications into a built web application."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := parser.Run(&commands.Global{Logger: slog.Default()}, &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
