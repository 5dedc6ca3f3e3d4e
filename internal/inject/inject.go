// Package inject rewrites an HTML entry document so that it loads the generated
// notification assets.
//
// Injection is a literal, first-occurrence text splice after "<head>" and before
// "</body>". The document is never parsed, so arbitrary markup survives byte for byte
// outside the two insertion points. Documents without both markers are rejected.
package inject

import (
	"strings"

	"git.home.luguber.info/inful/webupdate/internal/assets"
	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

const (
	headMarker = "<head>"
	bodyMarker = "</body>"
	indent     = "\n    "
)

// Mode selects how assets are referenced from the document.
type Mode string

const (
	// ModeLinked references the hash-suffixed files by URL.
	ModeLinked Mode = "linked"
	// ModeInline embeds the generated content, for pages whose host does not serve
	// this application's output (micro-frontends, syndicated pages).
	ModeInline Mode = "inline"
)

// Options controls what is injected.
type Options struct {
	Mode Mode
	// Base prefixes asset URLs in linked mode; it must end with "/".
	Base               string
	HiddenNotification bool
	CustomNotification bool
}

// Assets carries the generated assets. Linked mode reads the hashes, inline mode the
// contents. Style fields are empty when no stylesheet was generated.
type Assets struct {
	StyleHash  string
	ScriptHash string
	Style      string
	Script     string
}

// Inject returns html with the assets, the version assignment and, unless hidden,
// the notification anchor inserted.
func Inject(html, version string, opts Options, a Assets) (string, error) {
	if !strings.Contains(html, headMarker) || !strings.Contains(html, bodyMarker) {
		return "", errors.InjectionError("entry document lacks <head> or </body>").
			WithContext("mode", string(opts.Mode)).Build()
	}

	var head []string
	switch opts.Mode {
	case ModeInline:
		head = inlineTags(opts, a)
	case ModeLinked, "":
		head = linkedTags(opts, a)
	default:
		return "", errors.InternalError("unknown injection mode").WithContext("mode", string(opts.Mode)).Build()
	}
	head = append(head, "<script>"+assets.VersionAssignment(version)+"</script>")

	out := strings.Replace(html, headMarker, headMarker+indent+strings.Join(head, indent), 1)
	if !opts.HiddenNotification {
		out = strings.Replace(out, bodyMarker, AnchorElement()+bodyMarker, 1)
	}
	return out, nil
}

func linkedTags(opts Options, a Assets) []string {
	base := opts.Base
	if base == "" {
		base = "/"
	}
	var tags []string
	if wantsStyle(opts) && a.StyleHash != "" {
		tags = append(tags, `<link rel="stylesheet" href="`+base+assets.StylePath(a.StyleHash)+`">`)
	}
	return append(tags, `<script src="`+base+assets.ScriptPath(a.ScriptHash)+`"></script>`)
}

func inlineTags(opts Options, a Assets) []string {
	var tags []string
	if wantsStyle(opts) && a.Style != "" {
		tags = append(tags, "<style>"+a.Style+"</style>")
	}
	return append(tags, "<script>"+a.Script+"</script>")
}

// wantsStyle reports whether the default notification stylesheet is referenced.
func wantsStyle(opts Options) bool {
	return !opts.HiddenNotification && !opts.CustomNotification
}

// AnchorElement returns the notification anchor markup.
func AnchorElement() string {
	return `<div class="` + assets.AnchorClass + `"></div>`
}

const (
	versionScriptOpen  = "<script>window." + assets.VersionGlobal + " = '"
	versionScriptClose = "';</script>"
)

// AlreadyInjected reports whether html carries a version assignment from a previous
// injection.
func AlreadyInjected(html string) bool {
	return strings.Contains(html, versionScriptOpen)
}

// InjectedVersion returns the version assigned by a previous injection, in its
// JavaScript-escaped form.
func InjectedVersion(html string) (string, bool) {
	i := strings.Index(html, versionScriptOpen)
	if i < 0 {
		return "", false
	}
	rest := html[i+len(versionScriptOpen):]
	j := strings.Index(rest, versionScriptClose)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

// Strip removes a previous injection so that Inject(Strip(Inject(html))) equals
// Inject(html). The head block is recognized by its layout: it starts right after
// the first "<head>" and ends with the version script. It reports false when html
// does not carry an injection in that form.
func Strip(html string) (string, bool) {
	i := strings.Index(html, headMarker)
	if i < 0 {
		return "", false
	}
	start := i + len(headMarker)
	rest := html[start:]
	if !strings.HasPrefix(rest, indent) {
		return "", false
	}
	j := strings.Index(rest, indent+versionScriptOpen)
	if j < 0 {
		return "", false
	}
	k := strings.Index(rest[j:], versionScriptClose)
	if k < 0 {
		return "", false
	}
	end := start + j + k + len(versionScriptClose)

	out := html[:start] + html[end:]
	return strings.Replace(out, AnchorElement()+bodyMarker, bodyMarker, 1), true
}
