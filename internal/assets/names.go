package assets

import (
	"path"
	"strings"
)

const (
	// DirName is the directory under the build output root holding all generated files.
	DirName = "pluginWebUpdateNotice"
	// ManifestFile is never hash-suffixed: clients poll it at a fixed path.
	ManifestFile = "web_version_by_plugin.json"
	StyleBase    = "webUpdateNoticeInjectStyle"
	ScriptBase   = "webUpdateNoticeInjectScript"

	// AnchorClass marks the element the client renders the notification into.
	AnchorClass = "plugin-web-update-notice-anchor"
	// VersionGlobal is the window property carrying the running build's version.
	VersionGlobal = "pluginWebUpdateNotice_version"
)

// ManifestPath returns the slash-separated manifest path relative to the output root.
func ManifestPath() string {
	return path.Join(DirName, ManifestFile)
}

// StylePath returns the hash-suffixed stylesheet path relative to the output root.
func StylePath(hash string) string {
	return path.Join(DirName, StyleBase+"."+hash+".css")
}

// ScriptPath returns the hash-suffixed script path relative to the output root.
func ScriptPath(hash string) string {
	return path.Join(DirName, ScriptBase+"."+hash+".js")
}

// SplitHashedName splits "<base>.<hash>.<ext>" into its parts.
func SplitHashedName(name string) (base, hash, ext string, ok bool) {
	name = path.Base(name)
	parts := strings.Split(name, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// VersionAssignment returns the statement assigning version to the well-known global.
func VersionAssignment(version string) string {
	return "window." + VersionGlobal + " = '" + jsSingleQuoted(version) + "';"
}

var jsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
	"</", `<\/`,
)

// jsSingleQuoted escapes s for use inside a single-quoted JavaScript string that may
// itself be embedded in an HTML script element.
func jsSingleQuoted(s string) string {
	return jsEscaper.Replace(s)
}
