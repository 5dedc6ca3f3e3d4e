package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/webupdate/internal/config"
	"git.home.luguber.info/inful/webupdate/internal/eventstore"
	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of builds to show" default:"10"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return errors.ConfigError("history.path is not configured").Build()
	}
	if _, err := os.Stat(cfg.History.Path); err != nil {
		return errors.WrapError(err, errors.CategoryStore, "history database not found").
			WithContext("path", cfg.History.Path).Build()
	}

	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := eventstore.History(context.Background(), store, h.Limit)
	if err != nil {
		return err
	}
	return printHistory(runs)
}

func printHistory(runs []eventstore.RunSummary) error {
	if len(runs) == 0 {
		fmt.Println("No builds recorded")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "EMITTED\tVERSION\tTYPE\tOUTCOME\tMODE\tBUILD")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.EmittedAt.Format(time.RFC3339), r.Version, r.VersionType, r.Outcome, r.Mode, r.BuildID)
	}
	return tw.Flush()
}
