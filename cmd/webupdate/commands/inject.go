package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/webupdate/internal/config"
	"git.home.luguber.info/inful/webupdate/internal/host"
	"git.home.luguber.info/inful/webupdate/internal/logfields"
	"git.home.luguber.info/inful/webupdate/internal/pipeline"
)

// InjectCmd implements the 'inject' command.
type InjectCmd struct {
	OutputFlags `embed:""`
}

func (i *InjectCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config, i.OutputFlags)
	if err != nil {
		return err
	}
	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := RunInject(context.Background(), cfg, svc, g.Logger)
	if err != nil {
		return err
	}
	switch {
	case res.Injected:
		fmt.Printf("Injected update notice into %s\n", res.HTMLPath)
	case res.Skipped:
		fmt.Printf("%s already injected\n", res.HTMLPath)
	default:
		fmt.Printf("Assets emitted; %s was not injected\n", res.HTMLPath)
	}
	return nil
}

// RunInject runs the pipeline once against the configured output directory.
func RunInject(ctx context.Context, cfg *config.Config, svc *services, logger *slog.Logger) (*pipeline.Result, error) {
	opts := append(svc.options(), pipeline.WithLogger(logger))
	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer svc.flushMetrics()

	slog.Info("Starting webupdate injection",
		logfields.Path(cfg.Output.Dir),
		logfields.VersionType(string(cfg.Version.Type)),
		logfields.BuildID(p.BuildID()))
	return p.Run(ctx, host.NewDirHost(cfg.Output.Dir))
}
