package commands

import (
	"fmt"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
	"git.home.luguber.info/inful/webupdate/internal/inject"
	"git.home.luguber.info/inful/webupdate/internal/verify"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	OutputFlags `embed:""`
}

func (v *VerifyCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config, v.OutputFlags)
	if err != nil {
		return err
	}

	mode := inject.ModeLinked
	if cfg.InlineMode() {
		mode = inject.ModeInline
	}
	report, err := verify.Verify(verify.Options{
		Root:               cfg.Output.Dir,
		HTMLPath:           cfg.HTMLPath(),
		Base:               cfg.Inject.Base,
		Mode:               mode,
		Hidden:             cfg.Notification.Hidden,
		CustomNotification: cfg.CustomNotification(),
	})
	if err != nil {
		return err
	}

	if report.OK() {
		fmt.Printf("%s: ok (version %s)\n", report.Path, report.ManifestVersion)
		return nil
	}
	for _, p := range report.Problems {
		fmt.Printf("%s: %s\n", report.Path, p)
	}
	return errors.ValidationError("output verification failed").
		WithContext("path", report.Path).
		WithContext("problems", len(report.Problems)).Build()
}
