package config

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

// Validate checks option combinations. All failures are fatal configuration errors.
func (c *Config) Validate() error {
	switch c.Version.Type {
	case VersionHash, VersionGitCommitHash, VersionPkg, VersionTimestamp:
	case VersionCustom:
		if strings.TrimSpace(c.Version.Custom) == "" {
			return errors.ConfigError("version type custom requires a custom version").
				WithContext("version_type", string(c.Version.Type)).Build()
		}
	default:
		return errors.ConfigError("unknown version type").
			WithContext("version_type", string(c.Version.Type)).
			WithContext("valid", strings.Join(versionTypes.ValidKeys(), ", ")).Build()
	}

	if filepath.IsAbs(c.Output.HTML) || strings.HasPrefix(filepath.Clean(c.Output.HTML), "..") {
		return errors.ConfigError("output.html must be relative to the output directory").
			WithContext("path", c.Output.HTML).Build()
	}
	if c.Notification.CustomHTML != "" && c.Notification.CustomMarkdown != "" {
		return errors.ConfigError("notification.custom_html and notification.custom_markdown are mutually exclusive").Build()
	}
	return nil
}
