package buildversion

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webupdate/internal/config"
	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func commitAll(t *testing.T, repo *git.Repository, msg string) string {
	t.Helper()
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(".")
	require.NoError(t, err)
	commit, err := w.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Unix(1700000000, 0)},
	})
	require.NoError(t, err)
	return commit.String()
}

func TestResolve_Custom(t *testing.T) {
	r := NewResolver(t.TempDir())

	v, err := r.Resolve(config.VersionCustom, "1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	v, err = r.Resolve(config.VersionCustom, "release 2024-05 'rc'")
	require.NoError(t, err)
	assert.Equal(t, "release 2024-05 'rc'", v)
}

func TestResolve_CustomWithoutVersion(t *testing.T) {
	r := NewResolver(t.TempDir())

	for _, custom := range []string{"", "   "} {
		_, err := r.Resolve(config.VersionCustom, custom)
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	}
}

func TestResolve_UnknownStrategy(t *testing.T) {
	_, err := NewResolver(t.TempDir()).Resolve("semver", "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestResolve_GitCommitHash(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "src", "main.ts"), "console.log('hi')")
	commit := commitAll(t, repo, "initial")

	r := NewResolver(dir)
	v, err := r.Resolve(config.VersionHash, "")
	require.NoError(t, err)
	assert.Equal(t, commit[:ShortLength], v)

	alias, err := r.Resolve(config.VersionGitCommitHash, "")
	require.NoError(t, err)
	assert.Equal(t, v, alias)

	// Subdirectories resolve to the enclosing repository.
	sub, err := NewResolver(filepath.Join(dir, "src")).Resolve(config.VersionHash, "")
	require.NoError(t, err)
	assert.Equal(t, v, sub)

	writeFile(t, filepath.Join(dir, "src", "main.ts"), "console.log('changed')")
	next := commitAll(t, repo, "second")
	v2, err := r.Resolve(config.VersionHash, "")
	require.NoError(t, err)
	assert.Equal(t, next[:ShortLength], v2)
	assert.NotEqual(t, v, v2)
}

func TestResolve_HashFallsBackToWorkdir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "app.js"), "export default 1")
	writeFile(t, filepath.Join(dir, "dist", "index.html"), "<html></html>")

	r := NewResolver(dir, "dist")
	v1, err := r.Resolve(config.VersionHash, "")
	require.NoError(t, err)
	assert.Len(t, v1, ShortLength)

	// Output directory and hidden files do not influence the version.
	writeFile(t, filepath.Join(dir, "dist", "index.html"), "<html><head></head></html>")
	writeFile(t, filepath.Join(dir, ".cache", "x"), "tmp")
	v2, err := r.Resolve(config.VersionHash, "")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	writeFile(t, filepath.Join(dir, "src", "app.js"), "export default 2")
	v3, err := r.Resolve(config.VersionHash, "")
	require.NoError(t, err)
	assert.NotEqual(t, v1, v3)
}

func TestResolve_HashInEmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "index.ts"), "x")

	v, err := NewResolver(dir).Resolve(config.VersionHash, "")
	require.NoError(t, err)
	assert.Len(t, v, ShortLength)
}

func TestResolve_PackageVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name":"app","version":"3.4.5"}`)

	v, err := NewResolver(dir).Resolve(config.VersionPkg, "")
	require.NoError(t, err)
	assert.Equal(t, "3.4.5", v)
}

func TestResolve_PackageVersionMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := NewResolver(dir).Resolve(config.VersionPkg, "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	writeFile(t, filepath.Join(dir, "package.json"), `{"name":"app"}`)
	_, err = NewResolver(dir).Resolve(config.VersionPkg, "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestResolve_BuildTimestamp(t *testing.T) {
	r := NewResolver(t.TempDir())
	r.Now = func() time.Time { return time.UnixMilli(1717171717171) }

	v, err := r.Resolve(config.VersionTimestamp, "")
	require.NoError(t, err)
	assert.Equal(t, "1717171717171", v)
}
