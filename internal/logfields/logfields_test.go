package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Version", KeyVersion, "1.2.3", Version("1.2.3")},
		{"VersionType", KeyVersionType, "custom", VersionType("custom")},
		{"Asset", KeyAsset, "script", Asset("script")},
		{"Path", KeyPath, "/tmp/dist/index.html", Path("/tmp/dist/index.html")},
		{"Hash", KeyHash, "0123abcd", Hash("0123abcd")},
		{"Phase", KeyPhase, "finalize", Phase("finalize")},
		{"Mode", KeyMode, "inline", Mode("inline")},
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Subject", KeySubject, "webupdate.version", Subject("webupdate.version")},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Fatalf("%s key mismatch: got %s want %s", c.name, c.attr.Key, c.attrKey)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Fatalf("%s value mismatch: got %s want %s", c.name, c.attr.Value.String(), c.attrVal)
		}
	}
}

func TestErrorHelper(t *testing.T) {
	if got := Error(nil); got.Value.String() != "" {
		t.Fatalf("nil error should render empty, got %q", got.Value.String())
	}
	if got := Error(errors.New("boom")); got.Key != KeyError || got.Value.String() != "boom" {
		t.Fatalf("unexpected error attr: %v", got)
	}
}
