// Package metrics records pipeline observations.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	p, _ := pipeline.New(cfg, pipeline.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// A one-shot CLI run has no scrape endpoint; WriteTextfile exports the registry in
// the node_exporter textfile collector format instead.
package metrics
