package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/webupdate/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	OutputFlags `embed:""`
	Debounce time.Duration `help:"Wait for writes to settle before re-injecting" default:"500ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config, w.OutputFlags)
	if err != nil {
		return err
	}
	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	entry := filepath.Join(cfg.Output.Dir, filepath.FromSlash(cfg.HTMLPath()))
	watcher, err := watch.New(entry, func(ctx context.Context) error {
		_, err := RunInject(ctx, cfg, svc, g.Logger)
		return err
	}, w.Debounce)
	if err != nil {
		return err
	}

	err = watcher.Run(ctx)
	slog.Info("Watcher stopped")
	return err
}
