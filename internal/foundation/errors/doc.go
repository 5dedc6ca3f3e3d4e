// Package errors provides the classified error primitives used across webupdate.
//
// Every failure the pipeline can produce falls into one of three families:
//
//   - configuration errors (CategoryConfig): invalid or missing options, fatal at setup
//   - asset read errors (CategoryAsset): a script/style template cannot be read, fatal
//   - HTML injection errors (CategoryInjection): the entry document is missing or lacks
//     its markers; reported with the resolved path but never fatal to the build
//
// Errors are built with a fluent API:
//
//	err := errors.ConfigError("custom version type requires a custom version").
//		WithContext("version_type", "custom").
//		Build()
package errors
