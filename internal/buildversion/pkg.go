package buildversion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

// packageVersion reads the version field of the project's package.json.
func packageVersion(projectDir string) (string, error) {
	path := filepath.Join(projectDir, "package.json")
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryConfig, "pkg_version requires a readable package.json").
			Fatal().WithContext("path", path).Build()
	}
	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", errors.WrapError(err, errors.CategoryConfig, "invalid package.json").
			Fatal().WithContext("path", path).Build()
	}
	if strings.TrimSpace(pkg.Version) == "" {
		return "", errors.ConfigError("package.json has no version").WithContext("path", path).Build()
	}
	return pkg.Version, nil
}
