package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "webupdate.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		assert.Equal(t, "webupdate.yaml", file)
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		assert.True(t, ConfigError("x").Build().IsFatal())
		assert.True(t, AssetReadError("x").Build().IsFatal())
		assert.False(t, InjectionError("x").Build().IsFatal())
		assert.Equal(t, SeverityWarning, InjectionError("x").Build().Severity())
	})

	t.Run("Wrapped chain detection", func(t *testing.T) {
		root := stderrors.New("no such file")
		classified := WrapError(root, CategoryAsset, "read script template").Fatal().Build()
		wrapped := fmt.Errorf("generate assets: %w", classified)

		assert.True(t, IsClassified(wrapped))
		assert.True(t, HasCategory(wrapped, CategoryAsset))
		assert.Equal(t, SeverityFatal, GetSeverity(wrapped))
		assert.True(t, stderrors.Is(wrapped, root))
		assert.Equal(t, CategoryInternal, GetCategory(root))
	})

	t.Run("WithContext does not mutate the original", func(t *testing.T) {
		base := ConfigError("bad").Build()
		derived := base.WithContext("key", "value")

		_, ok := base.Context().Get("key")
		assert.False(t, ok)
		v, ok := derived.Context().GetString("key")
		assert.True(t, ok)
		assert.Equal(t, "value", v)
	})
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "config error", err: ConfigError("missing custom version").Build(), expected: 7},
		{name: "validation error", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "asset read error", err: AssetReadError("template unreadable").Build(), expected: 11},
		{name: "injection error is not fatal", err: InjectionError("entry html missing").Build(), expected: 0},
		{name: "git error", err: GitError("no repository").Build(), expected: 8},
		{name: "unclassified error", err: stderrors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger)
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("custom version required").WithContext("path", "webupdate.yaml").Build())

	assert.Equal(t, 7, code)
	assert.Contains(t, out.String(), "custom version required (webupdate.yaml)")
	assert.Contains(t, logs.String(), "category=config")
	assert.Contains(t, logs.String(), "level=ERROR")
}
