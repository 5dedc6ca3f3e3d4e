package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "webupdate.yaml"

// VersionType selects how the build version is derived.
type VersionType string

const (
	VersionHash          VersionType = "hash"
	VersionGitCommitHash VersionType = "git_commit_hash" // alias of hash
	VersionPkg           VersionType = "pkg_version"
	VersionTimestamp     VersionType = "build_timestamp"
	VersionCustom        VersionType = "custom"
)

// Config represents the webupdate configuration. It is immutable once loaded.
type Config struct {
	ProjectDir   string             `yaml:"project_dir,omitempty"`
	Version      VersionConfig      `yaml:"version"`
	Output       OutputConfig       `yaml:"output"`
	Inject       InjectConfig       `yaml:"inject"`
	Notification NotificationConfig `yaml:"notification"`
	// Silence suppresses console diagnostics of the generated client script.
	Silence   bool            `yaml:"silence"`
	Client    map[string]any  `yaml:"client,omitempty"` // passed through to the client script
	Templates TemplatesConfig `yaml:"templates,omitempty"`
	History   HistoryConfig   `yaml:"history,omitempty"`
	Announce  AnnounceConfig  `yaml:"announce,omitempty"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty"`
}

// VersionConfig configures version derivation.
type VersionConfig struct {
	Type   VersionType `yaml:"type"`
	Custom string      `yaml:"custom,omitempty"`
}

// OutputConfig locates the host build output.
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	HTML string `yaml:"html"` // entry file, relative to Dir
}

// InjectConfig controls how the entry document is rewritten.
type InjectConfig struct {
	Base     string `yaml:"base"`
	Inline   bool   `yaml:"inline"`
	MicroApp bool   `yaml:"micro_app,omitempty"`
}

// NotificationConfig controls the default notification UI.
type NotificationConfig struct {
	Hidden         bool   `yaml:"hidden"`
	CustomHTML     string `yaml:"custom_html,omitempty"`
	CustomMarkdown string `yaml:"custom_markdown,omitempty"` // file path
}

// TemplatesConfig overrides the embedded client templates.
type TemplatesConfig struct {
	Script string `yaml:"script,omitempty"`
	Style  string `yaml:"style,omitempty"`
}

// HistoryConfig enables the SQLite build history.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// AnnounceConfig enables publishing new versions to NATS.
type AnnounceConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// MetricsConfig enables writing a Prometheus textfile after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Load reads configuration from configPath, applies .env files, WEBUPDATE_* overrides
// and defaults, then validates. An empty configPath, or DefaultPath when it does not
// exist, yields a configuration built from defaults and environment only.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(filepath.Clean(configPath))
		switch {
		case err == nil:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
					Fatal().WithContext("path", configPath).Build()
			}
		case os.IsNotExist(err) && configPath == DefaultPath:
			// Optional default file.
		case os.IsNotExist(err):
			return nil, errors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
		default:
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration").
				Fatal().WithContext("path", configPath).Build()
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init writes a starter configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Version: VersionConfig{Type: VersionHash},
		Output:  OutputConfig{Dir: "dist", HTML: "index.html"},
		Inject:  InjectConfig{Base: "/"},
		Client: map[string]any{
			"checkInterval":        600000,
			"checkOnWindowFocus":   true,
			"checkImmediately":     true,
			"checkOnLoadFileError": true,
			"logVersion":           true,
			"notificationProps": map[string]any{
				"title":       "System update",
				"description": "A new version is available, please refresh the page",
				"buttonText":  "Refresh",
			},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// HTMLPath returns the entry document path relative to the output directory.
func (c *Config) HTMLPath() string {
	return c.Output.HTML
}

// InlineMode reports whether assets are embedded into the entry document.
func (c *Config) InlineMode() bool {
	return c.Inject.Inline || c.Inject.MicroApp
}

// CustomNotification reports whether a custom notification UI replaces the default one.
func (c *Config) CustomNotification() bool {
	return c.Notification.CustomHTML != "" || c.Notification.CustomMarkdown != ""
}
