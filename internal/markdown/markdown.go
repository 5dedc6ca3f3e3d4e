// Package markdown renders custom notification content written in Markdown.
package markdown

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

// Render converts a Markdown notification body into an HTML fragment. Raw HTML in
// the source is kept so authors can add buttons with their own handlers.
func Render(source []byte) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	var buf bytes.Buffer
	if err := md.Convert(source, &buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryAsset, "failed to render notification markdown").Fatal().Build()
	}
	return strings.TrimSpace(buf.String()), nil
}

// RenderFile reads and renders the Markdown file at path.
func RenderFile(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryAsset, "failed to read notification markdown").
			Fatal().WithContext("path", path).Build()
	}
	return Render(data)
}
