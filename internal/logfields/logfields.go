package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyVersion     = "version"
	KeyVersionType = "version_type"
	KeyAsset       = "asset"
	KeyPath        = "path"
	KeyHash        = "hash"
	KeyPhase       = "phase"
	KeyMode        = "mode"
	KeyBuildID     = "build_id"
	KeyDurationMS  = "duration_ms"
	KeySubject     = "subject"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func VersionType(t string) slog.Attr  { return slog.String(KeyVersionType, t) }
func Asset(name string) slog.Attr     { return slog.String(KeyAsset, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Hash(h string) slog.Attr         { return slog.String(KeyHash, h) }
func Phase(p string) slog.Attr        { return slog.String(KeyPhase, p) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
