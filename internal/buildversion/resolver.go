// Package buildversion derives the version identifier of the current build.
package buildversion

import (
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/webupdate/internal/config"
	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

// ShortLength is the number of hex characters of hash-derived versions.
const ShortLength = 8

// Resolver derives versions for a project directory.
type Resolver struct {
	ProjectDir string
	// Exclude lists directories, relative to ProjectDir, ignored by the working tree
	// hash. The build output directory belongs here so injection cannot change it.
	Exclude []string
	Now     func() time.Time
}

// NewResolver returns a Resolver for projectDir.
func NewResolver(projectDir string, exclude ...string) *Resolver {
	return &Resolver{ProjectDir: projectDir, Exclude: exclude, Now: time.Now}
}

// Resolve returns the version for strategy. customVersion is only consulted for the
// custom strategy, where it is mandatory.
func (r *Resolver) Resolve(strategy config.VersionType, customVersion string) (string, error) {
	switch strategy {
	case config.VersionCustom:
		if strings.TrimSpace(customVersion) == "" {
			return "", errors.ConfigError("version type custom requires a custom version").
				WithContext("version_type", string(strategy)).Build()
		}
		return customVersion, nil
	case config.VersionHash, config.VersionGitCommitHash, "":
		return r.hashVersion()
	case config.VersionPkg:
		return packageVersion(r.ProjectDir)
	case config.VersionTimestamp:
		now := time.Now
		if r.Now != nil {
			now = r.Now
		}
		return strconv.FormatInt(now().UnixMilli(), 10), nil
	default:
		return "", errors.ConfigError("unknown version type").
			WithContext("version_type", string(strategy)).Build()
	}
}

func (r *Resolver) hashVersion() (string, error) {
	commit, err := commitHash(r.ProjectDir)
	if err == nil {
		return commit, nil
	}
	if !isNoCommit(err) {
		return "", errors.WrapError(err, errors.CategoryGit, "failed to read HEAD commit").
			WithContext("path", r.ProjectDir).Build()
	}
	sum, err := workdirHash(r.ProjectDir, r.Exclude)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to hash project directory").
			WithContext("path", r.ProjectDir).Build()
	}
	return sum[:ShortLength], nil
}
