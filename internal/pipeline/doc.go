// Package pipeline orchestrates version resolution, asset generation and HTML
// injection against a host build tool's lifecycle.
//
// A host drives two extension points exactly once each, in order:
//
//	emitted, err := p.EmitAssets(ctx, sink)      // Idle -> AssetsEmitted
//	result, err := p.Finalize(ctx, emitted, out) // AssetsEmitted -> Finalized
//
// EmitAssets failures (configuration, unreadable templates, unwritable output) abort
// the build. Finalize never fails the build because of the entry document: a missing
// or marker-less document is logged and reported in the Result.
//
// A Pipeline carries per-build state; use one instance per output target.
package pipeline
