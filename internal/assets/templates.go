package assets

import (
	"embed"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

//go:embed templates/inject.js templates/inject.css
var embedded embed.FS

const (
	embeddedScript = "templates/inject.js"
	embeddedStyle  = "templates/inject.css"
)

// Templates holds the sources the script and stylesheet are generated from.
type Templates struct {
	Script string
	Style  string
}

// LoadTemplates returns the embedded templates, replaced by the files at scriptPath
// or stylePath when those are non-empty. Any unreadable template is a fatal
// asset read error. Override templates used in inline mode must pass CheckInline.
func LoadTemplates(scriptPath, stylePath string) (Templates, error) {
	script, err := readTemplate(scriptPath, embeddedScript)
	if err != nil {
		return Templates{}, err
	}
	style, err := readTemplate(stylePath, embeddedStyle)
	if err != nil {
		return Templates{}, err
	}
	return Templates{Script: script, Style: style}, nil
}

func readTemplate(override, fallback string) (string, error) {
	if override == "" {
		data, err := embedded.ReadFile(fallback)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryAsset, "failed to read embedded template").
				Fatal().WithContext("path", fallback).Build()
		}
		return string(data), nil
	}
	data, err := os.ReadFile(filepath.Clean(override))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryAsset, "failed to read template").
			Fatal().WithContext("path", override).Build()
	}
	return string(data), nil
}

// CheckInline rejects templates that cannot be embedded verbatim in an HTML
// document: a closing script, style or body tag would end the element early or
// move the body marker the anchor is placed before.
func (t Templates) CheckInline() error {
	checks := []struct {
		name, content string
		tags          []string
	}{
		{"script", t.Script, []string{"</script", "</body"}},
		{"style", t.Style, []string{"</style", "</body"}},
	}
	for _, c := range checks {
		lower := strings.ToLower(c.content)
		for _, tag := range c.tags {
			if strings.Contains(lower, tag) {
				return errors.ConfigError("template cannot be embedded inline").
					WithContext("template", c.name).
					WithContext("tag", tag+">").Build()
			}
		}
	}
	return nil
}
