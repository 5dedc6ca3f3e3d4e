// Package version holds the webupdate tool's own release metadata.
package version

import "fmt"

// Set via ldflags in release builds:
// go build -ldflags "-X git.home.luguber.info/inful/webupdate/internal/version.Version=v0.3.0".
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// String renders the metadata for --version.
func String() string {
	s := "webupdate " + Version
	if GitCommit != "" {
		s += fmt.Sprintf(" (%s)", GitCommit)
	}
	if BuildTime != "" {
		s += " built " + BuildTime
	}
	return s
}
