// Package host adapts a built static output directory to the pipeline's two
// extension points, so the pipeline can run as a post-build step of any web build tool.
package host

import (
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

// DirHost treats Root as the host's output directory.
type DirHost struct {
	Root string
}

// NewDirHost returns a DirHost for root.
func NewDirHost(root string) *DirHost {
	return &DirHost{Root: root}
}

// EmitAsset writes content to the slash-separated path under Root.
func (h *DirHost) EmitAsset(path string, content []byte) error {
	target, err := h.OutputPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create asset directory").
			Fatal().WithContext("path", filepath.Dir(target)).Build()
	}
	// #nosec G306 -- generated web assets are served publicly.
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write asset").
			Fatal().WithContext("path", target).Build()
	}
	return nil
}

// OutputPath resolves rel inside Root. Paths escaping Root are rejected.
func (h *DirHost) OutputPath(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.ValidationError("output path escapes the output directory").
			WithContext("path", rel).Build()
	}
	return filepath.Join(h.Root, clean), nil
}
