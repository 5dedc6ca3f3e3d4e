package inject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webupdate/internal/assets"
	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
)

const minimalHTML = "<html><head></head><body></body></html>"

var testAssets = Assets{
	StyleHash:  "aaaaaaaaaaaaaaaa",
	ScriptHash: "bbbbbbbbbbbbbbbb",
	Style:      ".plugin-web-update-notice-anchor{position:fixed}",
	Script:     "window.__checkUpdateSetup__({});",
}

func TestInject_LinkedDefault(t *testing.T) {
	out, err := Inject(minimalHTML, "1.2.3", Options{Mode: ModeLinked, Base: "/"}, testAssets)
	require.NoError(t, err)

	assert.Contains(t, out, `<link rel="stylesheet" href="/pluginWebUpdateNotice/webUpdateNoticeInjectStyle.aaaaaaaaaaaaaaaa.css">`)
	assert.Contains(t, out, `<script src="/pluginWebUpdateNotice/webUpdateNoticeInjectScript.bbbbbbbbbbbbbbbb.js"></script>`)
	assert.Contains(t, out, "window.pluginWebUpdateNotice_version = '1.2.3';")
	assert.Contains(t, out, `<div class="plugin-web-update-notice-anchor"></div></body>`)
	assert.Equal(t, 1, strings.Count(out, assets.AnchorClass))

	// Everything is inserted right after <head>.
	headIdx := strings.Index(out, "<head>")
	linkIdx := strings.Index(out, "<link")
	scriptIdx := strings.Index(out, "<script src=")
	versionIdx := strings.Index(out, "<script>window.")
	closeIdx := strings.Index(out, "</head>")
	assert.True(t, headIdx < linkIdx && linkIdx < scriptIdx && scriptIdx < versionIdx && versionIdx < closeIdx)
}

func TestInject_LinkedExactOutput(t *testing.T) {
	out, err := Inject(minimalHTML, "1.2.3", Options{Mode: ModeLinked, Base: "/"}, testAssets)
	require.NoError(t, err)

	want := "<html><head>\n" +
		`    <link rel="stylesheet" href="/pluginWebUpdateNotice/webUpdateNoticeInjectStyle.aaaaaaaaaaaaaaaa.css">` + "\n" +
		`    <script src="/pluginWebUpdateNotice/webUpdateNoticeInjectScript.bbbbbbbbbbbbbbbb.js"></script>` + "\n" +
		`    <script>window.pluginWebUpdateNotice_version = '1.2.3';</script>` +
		`</head><body><div class="plugin-web-update-notice-anchor"></div></body></html>`
	assert.Equal(t, want, out)
}

func TestInject_HiddenNotification(t *testing.T) {
	out, err := Inject(minimalHTML, "1.2.3", Options{Mode: ModeLinked, HiddenNotification: true}, testAssets)
	require.NoError(t, err)

	assert.NotContains(t, out, "<link")
	assert.NotContains(t, out, assets.AnchorClass)
	assert.Contains(t, out, `<script src="/pluginWebUpdateNotice/webUpdateNoticeInjectScript.bbbbbbbbbbbbbbbb.js"></script>`)
	assert.Contains(t, out, "window.pluginWebUpdateNotice_version = '1.2.3';")
}

func TestInject_CustomNotificationOmitsStylesheet(t *testing.T) {
	out, err := Inject(minimalHTML, "1.2.3", Options{Mode: ModeLinked, CustomNotification: true}, testAssets)
	require.NoError(t, err)

	assert.NotContains(t, out, "<link")
	assert.Equal(t, 1, strings.Count(out, assets.AnchorClass), "custom UI still renders into the anchor")

	inline, err := Inject(minimalHTML, "1.2.3", Options{Mode: ModeInline, CustomNotification: true}, testAssets)
	require.NoError(t, err)
	assert.NotContains(t, inline, "<style>")
}

func TestInject_Inline(t *testing.T) {
	out, err := Inject(minimalHTML, "1.2.3", Options{Mode: ModeInline, Base: "/"}, testAssets)
	require.NoError(t, err)

	assert.Contains(t, out, "<style>"+testAssets.Style+"</style>")
	assert.Contains(t, out, "<script>"+testAssets.Script+"</script>")
	assert.Contains(t, out, "<script>window.pluginWebUpdateNotice_version = '1.2.3';</script>")
	assert.Contains(t, out, `<div class="plugin-web-update-notice-anchor"></div></body>`)
	assert.NotContains(t, out, "<link")
	assert.NotContains(t, out, "<script src=")
}

func TestInject_InlineHidden(t *testing.T) {
	out, err := Inject(minimalHTML, "1.2.3", Options{Mode: ModeInline, HiddenNotification: true}, testAssets)
	require.NoError(t, err)

	assert.NotContains(t, out, "<style>")
	assert.NotContains(t, out, assets.AnchorClass)
	assert.Contains(t, out, "<script>"+testAssets.Script+"</script>")
	assert.Contains(t, out, "<script>window.pluginWebUpdateNotice_version = '1.2.3';</script>")
	assert.True(t, strings.HasSuffix(out, "<body></body></html>"))
}

func TestInject_LinkedNeverEmbedsBodies(t *testing.T) {
	out, err := Inject(minimalHTML, "1.2.3", Options{Mode: ModeLinked}, testAssets)
	require.NoError(t, err)

	assert.NotContains(t, out, "<style>")
	assert.NotContains(t, out, testAssets.Script)
}

func TestInject_Base(t *testing.T) {
	out, err := Inject(minimalHTML, "v", Options{Mode: ModeLinked, Base: "https://cdn.example.com/app/"}, testAssets)
	require.NoError(t, err)
	assert.Contains(t, out, `href="https://cdn.example.com/app/pluginWebUpdateNotice/`)
	assert.Contains(t, out, `src="https://cdn.example.com/app/pluginWebUpdateNotice/`)
}

func TestInject_FirstOccurrenceOnly(t *testing.T) {
	html := "<html><head></head><body><template><head></head></template></body><!-- </body> --></html>"
	out, err := Inject(html, "1", Options{Mode: ModeLinked}, testAssets)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "<script>window.pluginWebUpdateNotice_version"))
	assert.Equal(t, 1, strings.Count(out, assets.AnchorClass))
	assert.Contains(t, out, "<template><head></head></template>")
	assert.Contains(t, out, "<!-- </body> -->")
}

func TestInject_PreservesSurroundingMarkup(t *testing.T) {
	html := "<!doctype html>\n<html lang=\"en\">\n  <head>\n  <meta charset=\"utf-8\">\n</head>\n<body class=x>\n<div id=app></div>\n</body>\n</html>\n"
	out, err := Inject(html, "1", Options{Mode: ModeLinked, HiddenNotification: true}, testAssets)
	require.NoError(t, err)

	prefix := "<!doctype html>\n<html lang=\"en\">\n  <head>"
	suffix := "\n  <meta charset=\"utf-8\">\n</head>\n<body class=x>\n<div id=app></div>\n</body>\n</html>\n"
	assert.True(t, strings.HasPrefix(out, prefix))
	assert.True(t, strings.HasSuffix(out, suffix))
}

func TestInject_MissingMarkers(t *testing.T) {
	for _, html := range []string{
		"<html><body></body></html>",
		"<html><head></head><body>",
		`<html><head lang="x"></head><body></body></html>`,
		"",
	} {
		_, err := Inject(html, "1", Options{Mode: ModeLinked}, testAssets)
		require.Error(t, err, html)
		assert.True(t, errors.HasCategory(err, errors.CategoryInjection))
	}
}

func TestInject_Deterministic(t *testing.T) {
	first, err := Inject(minimalHTML, "1.2.3", Options{Mode: ModeLinked}, testAssets)
	require.NoError(t, err)
	second, err := Inject(minimalHTML, "1.2.3", Options{Mode: ModeLinked}, testAssets)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAlreadyInjected(t *testing.T) {
	assert.False(t, AlreadyInjected(minimalHTML))

	for _, mode := range []Mode{ModeLinked, ModeInline} {
		out, err := Inject(minimalHTML, "1.2.3", Options{Mode: mode}, testAssets)
		require.NoError(t, err)
		assert.True(t, AlreadyInjected(out), mode)
	}
}

func TestInjectedVersion(t *testing.T) {
	_, ok := InjectedVersion(minimalHTML)
	assert.False(t, ok)

	out, err := Inject(minimalHTML, "it's 2.0", Options{Mode: ModeLinked}, testAssets)
	require.NoError(t, err)
	v, ok := InjectedVersion(out)
	require.True(t, ok)
	assert.Equal(t, `it\'s 2.0`, v)
}

func TestStrip_RestoresOriginal(t *testing.T) {
	docs := []string{
		minimalHTML,
		"<!doctype html>\n<html>\n<head>\n  <title>app</title>\n</head>\n<body>\n<main></main>\n</body>\n</html>\n",
	}
	options := []Options{
		{Mode: ModeLinked, Base: "/"},
		{Mode: ModeLinked, HiddenNotification: true},
		{Mode: ModeLinked, CustomNotification: true},
		{Mode: ModeInline},
		{Mode: ModeInline, HiddenNotification: true},
	}
	for _, doc := range docs {
		for _, opts := range options {
			out, err := Inject(doc, "1.0.0", opts, testAssets)
			require.NoError(t, err)

			stripped, ok := Strip(out)
			require.True(t, ok, opts)
			assert.Equal(t, doc, stripped, opts)
		}
	}
}

func TestStrip_EmptyScriptTemplate(t *testing.T) {
	a := testAssets
	a.Script = "window.pluginWebUpdateNotice_version = '1.0.0';\nwindow.__checkUpdateSetup__({});\n"
	out, err := Inject(minimalHTML, "1.0.0", Options{Mode: ModeInline}, a)
	require.NoError(t, err)

	stripped, ok := Strip(out)
	require.True(t, ok)
	assert.Equal(t, minimalHTML, stripped)
}

func TestStrip_ReinjectReplacesVersion(t *testing.T) {
	first, err := Inject(minimalHTML, "1.0.0", Options{Mode: ModeInline}, testAssets)
	require.NoError(t, err)
	stripped, ok := Strip(first)
	require.True(t, ok)

	second, err := Inject(stripped, "2.0.0", Options{Mode: ModeLinked}, testAssets)
	require.NoError(t, err)
	fresh, err := Inject(minimalHTML, "2.0.0", Options{Mode: ModeLinked}, testAssets)
	require.NoError(t, err)
	assert.Equal(t, fresh, second)
	assert.NotContains(t, second, "'1.0.0'")
}

func TestStrip_NotInjected(t *testing.T) {
	_, ok := Strip(minimalHTML)
	assert.False(t, ok)

	// A version script written by hand elsewhere in the head is not ours to remove.
	_, ok = Strip("<html><head><title>x</title><script>window.pluginWebUpdateNotice_version = '1';</script></head><body></body></html>")
	assert.False(t, ok)
}
