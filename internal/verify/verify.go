// Package verify checks an injected build output: the entry document, the
// manifest and the hash-suffixed assets it references.
package verify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/webupdate/internal/assets"
	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
	"git.home.luguber.info/inful/webupdate/internal/inject"
)

// Options describes the expected injection.
type Options struct {
	Root     string // build output directory
	HTMLPath string // entry document, relative to Root
	Base     string
	Mode     inject.Mode
	Hidden   bool
	// CustomNotification means no stylesheet is referenced.
	CustomNotification bool
}

// Report lists the problems found. An empty Problems slice means the output is valid.
type Report struct {
	Path            string
	ManifestVersion string
	Problems        []string
}

// OK reports whether no problems were found.
func (r *Report) OK() bool { return len(r.Problems) == 0 }

func (r *Report) addf(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// element is a script, link, style or anchor element found in the document.
type element struct {
	tag  string
	src  string
	href string
	rel  string
	text string
}

// Verify inspects the output under opts.Root. It returns an error only when the
// entry document cannot be read or parsed; invariant violations go into the Report.
func Verify(opts Options) (*Report, error) {
	htmlPath := filepath.Join(opts.Root, filepath.FromSlash(opts.HTMLPath))
	report := &Report{Path: htmlPath}

	// #nosec G304 -- path is inside the configured output directory
	data, err := os.ReadFile(htmlPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read entry document").
			WithContext("path", htmlPath).Build()
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse entry document").
			WithContext("path", htmlPath).Build()
	}

	var elems []element
	anchors := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "link":
				elems = append(elems, element{
					tag:  n.Data,
					src:  getAttr(n, "src"),
					href: getAttr(n, "href"),
					rel:  getAttr(n, "rel"),
					text: textOf(n),
				})
			case "div":
				if hasClass(n, assets.AnchorClass) {
					anchors++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	report.ManifestVersion = checkManifest(opts.Root, report)
	checkVersionScript(elems, report)

	wantAnchors := 1
	if opts.Hidden {
		wantAnchors = 0
	}
	if anchors != wantAnchors {
		report.addf("expected %d notification anchor(s), found %d", wantAnchors, anchors)
	}

	switch opts.Mode {
	case inject.ModeInline:
		checkInline(elems, opts, report)
	default:
		checkLinked(elems, opts, report)
	}
	return report, nil
}

func checkManifest(root string, report *Report) string {
	p := filepath.Join(root, filepath.FromSlash(assets.ManifestPath()))
	// #nosec G304 -- fixed path under the output directory
	data, err := os.ReadFile(p)
	if err != nil {
		report.addf("manifest %s not readable: %v", assets.ManifestPath(), err)
		return ""
	}
	var m assets.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		report.addf("manifest %s is not valid JSON: %v", assets.ManifestPath(), err)
		return ""
	}
	if m.Version == "" {
		report.addf("manifest %s has no version", assets.ManifestPath())
	}
	return m.Version
}

// checkVersionScript requires exactly one standalone inline script assigning the
// manifest's version.
func checkVersionScript(elems []element, report *Report) {
	prefix := "window." + assets.VersionGlobal + " = '"
	var found []string
	for _, e := range elems {
		text := strings.TrimSpace(e.text)
		if e.tag == "script" && e.src == "" && strings.HasPrefix(text, prefix) && !strings.Contains(text, "\n") {
			found = append(found, text)
		}
	}
	if len(found) != 1 {
		report.addf("expected exactly one version script, found %d", len(found))
		return
	}
	if report.ManifestVersion != "" && found[0] != assets.VersionAssignment(report.ManifestVersion) {
		report.addf("version script %q does not match manifest version %q", found[0], report.ManifestVersion)
	}
}

func checkLinked(elems []element, opts Options, report *Report) {
	prefix := opts.Base + assets.DirName + "/"
	var scripts, styles []string
	for _, e := range elems {
		switch {
		case e.tag == "script" && strings.HasPrefix(e.src, prefix):
			scripts = append(scripts, e.src)
		case e.tag == "link" && e.rel == "stylesheet" && strings.HasPrefix(e.href, prefix):
			styles = append(styles, e.href)
		}
	}

	if len(scripts) != 1 {
		report.addf("expected exactly one script reference, found %d", len(scripts))
	}
	wantStyles := 1
	if opts.Hidden || opts.CustomNotification {
		wantStyles = 0
	}
	if len(styles) != wantStyles {
		report.addf("expected %d stylesheet reference(s), found %d", wantStyles, len(styles))
	}

	for _, ref := range append(scripts, styles...) {
		checkHashedFile(opts.Root, strings.TrimPrefix(ref, opts.Base), report)
	}
}

// checkHashedFile verifies that rel exists and its filename hash matches its content.
func checkHashedFile(root, rel string, report *Report) {
	_, hash, _, ok := assets.SplitHashedName(path.Base(rel))
	if !ok {
		report.addf("asset %s is not hash-suffixed", rel)
		return
	}
	// #nosec G304 -- referenced asset under the output directory
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		report.addf("referenced asset %s not readable: %v", rel, err)
		return
	}
	if got := assets.Hash(content); got != hash {
		report.addf("asset %s content hash %s does not match filename", rel, got)
	}
}

func checkInline(elems []element, opts Options, report *Report) {
	setups := 0
	for _, e := range elems {
		switch {
		case e.tag == "script" && strings.Contains(e.src, assets.DirName):
			report.addf("inline mode references external script %s", e.src)
		case e.tag == "link" && strings.Contains(e.href, assets.DirName):
			report.addf("inline mode references external stylesheet %s", e.href)
		case e.tag == "script" && strings.Contains(e.text, "window.__checkUpdateSetup__("):
			setups++
		}
	}
	if setups != 1 {
		report.addf("expected exactly one inline client script, found %d", setups)
	}
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
