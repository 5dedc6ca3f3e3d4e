package eventstore

import (
	"encoding/json"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

// Event types written by the pipeline.
const (
	TypeAssetsEmitted    = "assets_emitted"
	TypeHTMLInjected     = "html_injected"
	TypeInjectionSkipped = "injection_skipped"
	TypeInjectionFailed  = "injection_failed"
)

// AssetsEmitted records the version and the content hashes of one emission.
type AssetsEmitted struct {
	Version     string `json:"version"`
	VersionType string `json:"version_type"`
	StyleHash   string `json:"style_hash,omitempty"`
	ScriptHash  string `json:"script_hash"`
}

// HTMLInjection records the outcome of the finalize phase.
type HTMLInjection struct {
	Path  string `json:"path"`
	Mode  string `json:"mode"`
	Error string `json:"error,omitempty"`
}

// Encode marshals an event payload.
func Encode(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "failed to marshal event payload").Build()
	}
	return data, nil
}

// DecodeAssetsEmitted unmarshals the payload of an assets_emitted event.
func DecodeAssetsEmitted(e Event) (AssetsEmitted, error) {
	var p AssetsEmitted
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return p, errors.WrapError(err, errors.CategoryStore, "failed to unmarshal event payload").
			WithContext("event_type", e.Type).Build()
	}
	return p, nil
}

// DecodeHTMLInjection unmarshals the payload of an injection event.
func DecodeHTMLInjection(e Event) (HTMLInjection, error) {
	var p HTMLInjection
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return p, errors.WrapError(err, errors.CategoryStore, "failed to unmarshal event payload").
			WithContext("event_type", e.Type).Build()
	}
	return p, nil
}
