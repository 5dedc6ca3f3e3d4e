package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/webupdate/internal/announce"
	"git.home.luguber.info/inful/webupdate/internal/config"
	"git.home.luguber.info/inful/webupdate/internal/eventstore"
	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
	"git.home.luguber.info/inful/webupdate/internal/logfields"
	"git.home.luguber.info/inful/webupdate/internal/metrics"
	"git.home.luguber.info/inful/webupdate/internal/pipeline"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"webupdate.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Inject  InjectCmd  `cmd:"" help:"Emit notification assets and inject them into the entry document"`
	Verify  VerifyCmd  `cmd:"" help:"Check an injected build output"`
	Watch   WatchCmd   `cmd:"" help:"Re-inject whenever the host build rewrites the entry document"`
	History HistoryCmd `cmd:"" help:"List recent builds from the history database"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honors WEBUPDATE_LOG_LEVEL, then the verbose flag.
func parseLogLevel(verbose bool) slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("WEBUPDATE_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// OutputFlags override the output location from the configuration.
type OutputFlags struct {
	Output string `short:"o" help:"Build output directory (overrides output.dir)"`
	HTML   string `name:"html" help:"Entry document relative to the output directory (overrides output.html)"`
}

// LoadConfig loads the configuration and applies the output overrides.
func LoadConfig(configPath string, flags OutputFlags) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if flags.Output != "" {
		cfg.Output.Dir = flags.Output
	}
	if flags.HTML != "" {
		cfg.Output.HTML = flags.HTML
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// services holds the optional collaborators shared across pipeline runs.
type services struct {
	registry  *prom.Registry
	recorder  *metrics.PrometheusRecorder
	history   *eventstore.SQLiteStore
	announcer *announce.NATSAnnouncer
	textfile  string
}

// openServices connects what cfg enables. An unreachable NATS server only disables
// announcements.
func openServices(cfg *config.Config) (*services, error) {
	s := &services{textfile: cfg.Metrics.Textfile}
	if s.textfile != "" {
		s.registry = prom.NewRegistry()
		s.recorder = metrics.NewPrometheusRecorder(s.registry)
	}
	if cfg.History.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o750); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create history directory").
				WithContext("path", cfg.History.Path).Build()
		}
		store, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		s.history = store
	}
	if cfg.Announce.NATSURL != "" {
		a, err := announce.Connect(cfg.Announce.NATSURL, cfg.Announce.Subject)
		if err != nil {
			slog.Warn("Announcements disabled", logfields.Error(err))
		} else {
			s.announcer = a
		}
	}
	return s, nil
}

func (s *services) options() []pipeline.Option {
	var opts []pipeline.Option
	if s.recorder != nil {
		opts = append(opts, pipeline.WithRecorder(s.recorder))
	}
	if s.history != nil {
		opts = append(opts, pipeline.WithHistory(s.history))
	}
	if s.announcer != nil {
		opts = append(opts, pipeline.WithAnnouncer(s.announcer))
	}
	return opts
}

// flushMetrics writes the textfile, if configured. Failures are logged only.
func (s *services) flushMetrics() {
	if s.registry == nil {
		return
	}
	if err := metrics.WriteTextfile(s.textfile, s.registry); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(s.textfile), logfields.Error(err))
	}
}

func (s *services) Close() {
	s.announcer.Close()
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			slog.Warn("Failed to close history database", logfields.Error(err))
		}
	}
}
