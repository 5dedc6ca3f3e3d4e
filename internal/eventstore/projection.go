package eventstore

import (
	"context"
	"time"
)

// Outcome of one pipeline run as seen from its events.
const (
	OutcomeEmitted  = "emitted" // finalize never recorded
	OutcomeInjected = "injected"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// RunSummary is a read model of a single pipeline run.
type RunSummary struct {
	BuildID     string    `json:"build_id"`
	Version     string    `json:"version"`
	VersionType string    `json:"version_type"`
	ScriptHash  string    `json:"script_hash"`
	StyleHash   string    `json:"style_hash,omitempty"`
	EmittedAt   time.Time `json:"emitted_at"`
	Outcome     string    `json:"outcome"`
	HTMLPath    string    `json:"html_path,omitempty"`
	Mode        string    `json:"mode,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// History summarizes the most recent pipeline runs, newest first. It scans at most
// limit*4 events, which covers limit runs of up to four events each.
func History(ctx context.Context, store Store, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	events, err := store.Recent(ctx, limit*4)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*RunSummary)
	var order []string
	for _, e := range events {
		run, ok := byID[e.BuildID]
		if !ok {
			run = &RunSummary{BuildID: e.BuildID, Outcome: OutcomeEmitted}
			byID[e.BuildID] = run
			order = append(order, e.BuildID)
		}
		switch e.Type {
		case TypeAssetsEmitted:
			p, err := DecodeAssetsEmitted(e)
			if err != nil {
				return nil, err
			}
			run.Version = p.Version
			run.VersionType = p.VersionType
			run.ScriptHash = p.ScriptHash
			run.StyleHash = p.StyleHash
			run.EmittedAt = e.Timestamp
		case TypeHTMLInjected, TypeInjectionSkipped, TypeInjectionFailed:
			p, err := DecodeHTMLInjection(e)
			if err != nil {
				return nil, err
			}
			run.HTMLPath = p.Path
			run.Mode = p.Mode
			run.Error = p.Error
			run.Outcome = outcomeFor(e.Type)
		}
	}

	runs := make([]RunSummary, 0, len(order))
	for _, id := range order {
		// Runs whose emission fell outside the scanned window are incomplete.
		if byID[id].Version == "" {
			continue
		}
		runs = append(runs, *byID[id])
		if len(runs) == limit {
			break
		}
	}
	return runs, nil
}

func outcomeFor(eventType string) string {
	switch eventType {
	case TypeHTMLInjected:
		return OutcomeInjected
	case TypeInjectionSkipped:
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}
