package config

import (
	"strings"

	"git.home.luguber.info/inful/webupdate/internal/foundation/normalization"
)

const (
	defaultOutputDir       = "dist"
	defaultHTML            = "index.html"
	defaultBase            = "/"
	defaultAnnounceSubject = "webupdate.version"
)

// versionTypes accepts the documented type names; git_commit_hash is an alias of hash.
var versionTypes = normalization.NewNormalizer(map[string]VersionType{
	string(VersionHash):          VersionHash,
	string(VersionGitCommitHash): VersionHash,
	string(VersionPkg):           VersionPkg,
	string(VersionTimestamp):     VersionTimestamp,
	string(VersionCustom):        VersionCustom,
}, VersionHash)

// ApplyDefaults fills unset fields. It is idempotent.
func (c *Config) ApplyDefaults() {
	if c.ProjectDir == "" {
		c.ProjectDir = "."
	}
	if strings.TrimSpace(string(c.Version.Type)) == "" {
		c.Version.Type = VersionHash
	}
	// Unknown types are left for Validate to report.
	if t, err := versionTypes.NormalizeWithError(string(c.Version.Type)); err == nil {
		c.Version.Type = t
	}
	if c.Output.Dir == "" {
		c.Output.Dir = defaultOutputDir
	}
	if c.Output.HTML == "" {
		c.Output.HTML = defaultHTML
	}
	c.Inject.Base = NormalizeBase(c.Inject.Base)
	if c.Announce.NATSURL != "" && c.Announce.Subject == "" {
		c.Announce.Subject = defaultAnnounceSubject
	}
}

// NormalizeBase returns base with a guaranteed trailing slash; empty means "/".
func NormalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return defaultBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
