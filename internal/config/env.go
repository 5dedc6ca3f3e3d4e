package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

// loadEnvFiles loads the first of .env/.env.local that exists. Existing process
// environment variables are not overwritten.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			return
		}
	}
}

// envOverrides holds WEBUPDATE_* variables; nil pointers mean unset.
type envOverrides struct {
	VersionType   *string `env:"WEBUPDATE_VERSION_TYPE"`
	CustomVersion *string `env:"WEBUPDATE_CUSTOM_VERSION"`
	ProjectDir    *string `env:"WEBUPDATE_PROJECT_DIR"`
	OutputDir     *string `env:"WEBUPDATE_OUTPUT_DIR"`
	HTML          *string `env:"WEBUPDATE_HTML"`
	Base          *string `env:"WEBUPDATE_BASE"`
	Inline        *bool   `env:"WEBUPDATE_INLINE"`
	Hidden        *bool   `env:"WEBUPDATE_HIDDEN_NOTIFICATION"`
	Silence       *bool   `env:"WEBUPDATE_SILENCE"`
	HistoryPath   *string `env:"WEBUPDATE_HISTORY_PATH"`
	NATSURL       *string `env:"WEBUPDATE_NATS_URL"`
	Textfile      *string `env:"WEBUPDATE_METRICS_TEXTFILE"`
}

func applyEnvOverrides(c *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid WEBUPDATE_* environment").Fatal().Build()
	}
	setString(&c.ProjectDir, o.ProjectDir)
	if o.VersionType != nil {
		c.Version.Type = VersionType(*o.VersionType)
	}
	setString(&c.Version.Custom, o.CustomVersion)
	setString(&c.Output.Dir, o.OutputDir)
	setString(&c.Output.HTML, o.HTML)
	setString(&c.Inject.Base, o.Base)
	setBool(&c.Inject.Inline, o.Inline)
	setBool(&c.Notification.Hidden, o.Hidden)
	setBool(&c.Silence, o.Silence)
	setString(&c.History.Path, o.HistoryPath)
	setString(&c.Announce.NATSURL, o.NATSURL)
	setString(&c.Metrics.Textfile, o.Textfile)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
