package pipeline

// AssetSink registers a generated file with the host build. path is slash-separated
// and relative to the host's output root.
type AssetSink interface {
	EmitAsset(path string, content []byte) error
}

// OutputResolver resolves a path relative to the host's finalized output directory.
type OutputResolver interface {
	OutputPath(rel string) (string, error)
}

// Host provides both extension points.
type Host interface {
	AssetSink
	OutputResolver
}
