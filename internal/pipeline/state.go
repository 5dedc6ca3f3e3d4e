package pipeline

import "fmt"

// Phase is the lifecycle state of a Pipeline.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAssetsEmitted
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAssetsEmitted:
		return "assets_emitted"
	case PhaseFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// GeneratedAsset is one emitted build artifact. For hash-suffixed assets Path embeds
// Hash, and Hash is always the content hash of Content.
type GeneratedAsset struct {
	Name    string
	Path    string
	Content []byte
	Hash    string
}

// Emitted is the state handed from the emission phase to the finalize phase.
type Emitted struct {
	BuildID  string
	Version  string
	Manifest GeneratedAsset
	// Style is nil when the default notification is hidden.
	Style  *GeneratedAsset
	Script GeneratedAsset
}

// Assets returns every emitted asset, manifest first.
func (e *Emitted) Assets() []GeneratedAsset {
	out := []GeneratedAsset{e.Manifest}
	if e.Style != nil {
		out = append(out, *e.Style)
	}
	return append(out, e.Script)
}

// Result reports the outcome of the finalize phase.
type Result struct {
	HTMLPath string
	Injected bool
	// Skipped is set when the document already carried this exact injection.
	Skipped bool
	// PreviousVersion is the version of a replaced earlier injection, if any.
	PreviousVersion string
	// Err holds the non-fatal injection failure, if any.
	Err error
}
