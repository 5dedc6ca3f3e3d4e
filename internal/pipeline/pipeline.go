package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/webupdate/internal/announce"
	"git.home.luguber.info/inful/webupdate/internal/assets"
	"git.home.luguber.info/inful/webupdate/internal/buildversion"
	"git.home.luguber.info/inful/webupdate/internal/config"
	"git.home.luguber.info/inful/webupdate/internal/eventstore"
	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
	"git.home.luguber.info/inful/webupdate/internal/inject"
	"git.home.luguber.info/inful/webupdate/internal/logfields"
	"git.home.luguber.info/inful/webupdate/internal/markdown"
	"git.home.luguber.info/inful/webupdate/internal/metrics"
)

const (
	phaseEmit     = "emit_assets"
	phaseFinalize = "finalize"
)

// VersionResolver derives the build version.
type VersionResolver interface {
	Resolve(strategy config.VersionType, customVersion string) (string, error)
}

// History is the subset of eventstore.Store the pipeline writes to.
type History interface {
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error
}

// Announcer publishes finalized builds.
type Announcer interface {
	Announce(ctx context.Context, an announce.Announcement) error
}

// Pipeline runs one build's emission and finalize phases.
type Pipeline struct {
	cfg       *config.Config
	templates assets.Templates
	// customHTML is the rendered custom notification, if any.
	customHTML string

	resolver  VersionResolver
	recorder  metrics.Recorder
	history   History
	announcer Announcer
	logger    *slog.Logger
	buildID   string

	phase Phase
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithResolver replaces the default version resolver.
func WithResolver(r VersionResolver) Option {
	return func(p *Pipeline) { p.resolver = r }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithHistory records build events to h.
func WithHistory(h History) Option {
	return func(p *Pipeline) { p.history = h }
}

// WithAnnouncer publishes successful builds through a.
func WithAnnouncer(a Announcer) Option {
	return func(p *Pipeline) { p.announcer = a }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithBuildID overrides the generated build ID.
func WithBuildID(id string) Option {
	return func(p *Pipeline) { p.buildID = id }
}

// New validates cfg and prepares a Pipeline. Configuration problems and unreadable
// templates are returned here, before any host lifecycle step runs.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.ConfigError("configuration is required").Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	templates, err := assets.LoadTemplates(cfg.Templates.Script, cfg.Templates.Style)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:        cfg,
		templates:  templates,
		customHTML: cfg.Notification.CustomHTML,
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if cfg.Notification.CustomMarkdown != "" {
		rendered, err := markdown.RenderFile(cfg.Notification.CustomMarkdown)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(rendered) == "" {
			return nil, errors.ConfigError("custom notification markdown renders to empty HTML").
				WithContext("path", cfg.Notification.CustomMarkdown).Build()
		}
		p.customHTML = rendered
	}
	if cfg.InlineMode() {
		if err := templates.CheckInline(); err != nil {
			return nil, err
		}
	}
	if p.resolver == nil {
		p.resolver = defaultResolver(cfg)
	}
	if p.buildID == "" {
		p.buildID = uuid.NewString()
	}
	p.logger = p.logger.With(logfields.BuildID(p.buildID))
	return p, nil
}

// defaultResolver excludes the files this tool writes from the working tree hash
// when they live inside the project directory: the build output, the history
// database and the metrics textfile.
func defaultResolver(cfg *config.Config) *buildversion.Resolver {
	var exclude []string
	if projectAbs, err := filepath.Abs(cfg.ProjectDir); err == nil {
		for _, owned := range []string{cfg.Output.Dir, cfg.History.Path, cfg.Metrics.Textfile} {
			if rel, ok := insideDir(projectAbs, owned); ok {
				exclude = append(exclude, rel)
			}
		}
	}
	return buildversion.NewResolver(cfg.ProjectDir, exclude...)
}

// insideDir returns path relative to dir when path lies strictly inside dir.
func insideDir(dir, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// BuildID returns the identifier of this build.
func (p *Pipeline) BuildID() string { return p.buildID }

// Phase returns the current lifecycle phase.
func (p *Pipeline) Phase() Phase { return p.phase }

// Run drives both phases against a host implementing both extension points.
func (p *Pipeline) Run(ctx context.Context, host Host) (*Result, error) {
	emitted, err := p.EmitAssets(ctx, host)
	if err != nil {
		return nil, err
	}
	return p.Finalize(ctx, emitted, host)
}

// EmitAssets resolves the version, generates the manifest, stylesheet and script,
// and registers them with sink.
func (p *Pipeline) EmitAssets(ctx context.Context, sink AssetSink) (*Emitted, error) {
	if p.phase != PhaseIdle {
		return nil, errors.InternalError("assets already emitted").
			WithContext("phase", p.phase.String()).Build()
	}
	start := time.Now()
	emitted, err := p.emit(ctx, sink)
	p.recorder.ObservePhaseDuration(phaseEmit, time.Since(start))
	if err != nil {
		p.recorder.IncPhaseResult(phaseEmit, metrics.ResultFatal)
		return nil, err
	}
	p.recorder.IncPhaseResult(phaseEmit, metrics.ResultSuccess)
	p.phase = PhaseAssetsEmitted
	return emitted, nil
}

func (p *Pipeline) emit(ctx context.Context, sink AssetSink) (*Emitted, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := p.cfg
	version, err := p.resolver.Resolve(cfg.Version.Type, cfg.Version.Custom)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Resolved build version",
		logfields.Version(version), logfields.VersionType(string(cfg.Version.Type)))

	manifest := []byte(assets.GenerateManifest(version, cfg.Silence))
	emitted := &Emitted{
		BuildID: p.buildID,
		Version: version,
		Manifest: GeneratedAsset{
			Name:    assets.ManifestFile,
			Path:    assets.ManifestPath(),
			Content: manifest,
			Hash:    assets.Hash(manifest),
		},
	}

	if !cfg.Notification.Hidden {
		style := []byte(assets.GenerateStyle(p.templates.Style))
		hash := assets.Hash(style)
		emitted.Style = &GeneratedAsset{
			Name:    assets.StyleBase,
			Path:    assets.StylePath(hash),
			Content: style,
			Hash:    hash,
		}
	}

	script, err := assets.GenerateScript(p.templates.Script, version, assets.ScriptOptions{
		InjectFileBase:            cfg.Inject.Base,
		HiddenDefaultNotification: cfg.Notification.Hidden,
		CustomNotificationHTML:    p.customHTML,
		Extra:                     cfg.Client,
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to generate client script").Fatal().Build()
	}
	scriptHash := assets.Hash([]byte(script))
	emitted.Script = GeneratedAsset{
		Name:    assets.ScriptBase,
		Path:    assets.ScriptPath(scriptHash),
		Content: []byte(script),
		Hash:    scriptHash,
	}

	for _, a := range emitted.Assets() {
		if err := sink.EmitAsset(a.Path, a.Content); err != nil {
			return nil, err
		}
		p.recorder.SetAssetBytes(a.Name, len(a.Content))
		p.logger.Debug("Emitted asset", logfields.Asset(a.Path), logfields.Hash(a.Hash))
	}

	payload := eventstore.AssetsEmitted{
		Version:     version,
		VersionType: string(cfg.Version.Type),
		ScriptHash:  emitted.Script.Hash,
	}
	if emitted.Style != nil {
		payload.StyleHash = emitted.Style.Hash
	}
	p.record(ctx, eventstore.TypeAssetsEmitted, payload)
	return emitted, nil
}

// Finalize injects the emitted assets into the entry document under outputs. Entry
// document problems are logged and reported through Result; they never fail the build.
func (p *Pipeline) Finalize(ctx context.Context, emitted *Emitted, outputs OutputResolver) (*Result, error) {
	if p.phase != PhaseAssetsEmitted {
		return nil, errors.InternalError("finalize called before assets were emitted").
			WithContext("phase", p.phase.String()).Build()
	}
	if emitted == nil {
		return nil, errors.InternalError("finalize called without emitted assets").Build()
	}
	p.phase = PhaseFinalized

	start := time.Now()
	res := p.finalize(ctx, emitted, outputs)
	p.recorder.ObservePhaseDuration(phaseFinalize, time.Since(start))

	mode := string(p.mode())
	switch {
	case res.Err != nil:
		p.recorder.IncPhaseResult(phaseFinalize, metrics.ResultWarning)
		p.recorder.IncInjection(mode, metrics.ResultWarning)
		p.logger.Error("HTML injection failed",
			logfields.Path(res.HTMLPath), logfields.Mode(mode), logfields.Error(res.Err))
		p.record(ctx, eventstore.TypeInjectionFailed, eventstore.HTMLInjection{
			Path: res.HTMLPath, Mode: mode, Error: res.Err.Error(),
		})
	case res.Skipped:
		p.recorder.IncPhaseResult(phaseFinalize, metrics.ResultSkipped)
		p.recorder.IncInjection(mode, metrics.ResultSkipped)
		p.logger.Info("Entry document already up to date, skipping", logfields.Path(res.HTMLPath))
		p.record(ctx, eventstore.TypeInjectionSkipped, eventstore.HTMLInjection{Path: res.HTMLPath, Mode: mode})
	default:
		if res.PreviousVersion != "" {
			p.logger.Info("Replaced previous injection",
				logfields.Path(res.HTMLPath), slog.String("previous_version", res.PreviousVersion))
		}
		p.recorder.IncPhaseResult(phaseFinalize, metrics.ResultSuccess)
		p.recorder.IncInjection(mode, metrics.ResultSuccess)
		p.logger.Info("Injected update notice",
			logfields.Path(res.HTMLPath), logfields.Mode(mode), logfields.Version(emitted.Version))
		p.record(ctx, eventstore.TypeHTMLInjected, eventstore.HTMLInjection{Path: res.HTMLPath, Mode: mode})
		p.announce(ctx, emitted)
	}
	return res, nil
}

func (p *Pipeline) finalize(ctx context.Context, emitted *Emitted, outputs OutputResolver) *Result {
	res := &Result{HTMLPath: p.cfg.HTMLPath()}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	path, err := outputs.OutputPath(p.cfg.HTMLPath())
	if err != nil {
		res.Err = err
		return res
	}
	res.HTMLPath = path

	info, err := os.Stat(path)
	if err != nil {
		res.Err = errors.WrapError(err, errors.CategoryInjection, "entry document not readable").
			Warning().WithContext("path", path).Build()
		return res
	}
	// #nosec G304 -- path is resolved inside the host output directory
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = errors.WrapError(err, errors.CategoryInjection, "entry document not readable").
			Warning().WithContext("path", path).Build()
		return res
	}

	html := string(data)
	base := html
	if inject.AlreadyInjected(html) {
		previous, _ := inject.InjectedVersion(html)
		stripped, ok := inject.Strip(html)
		if !ok {
			res.Err = errors.InjectionError("entry document carries an injection that cannot be replaced").
				WithContext("path", path).
				WithContext("injected_version", previous).
				WithContext("version", emitted.Version).Build()
			return res
		}
		base = stripped
		res.PreviousVersion = previous
	}

	out, err := inject.Inject(base, emitted.Version, p.injectOptions(), injectAssets(emitted))
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			err = ce.WithContext("path", path)
		}
		res.Err = err
		return res
	}
	if out == html {
		res.Skipped = true
		return res
	}

	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		res.Err = errors.WrapError(err, errors.CategoryInjection, "failed to write entry document").
			Warning().WithContext("path", path).Build()
		return res
	}
	res.Injected = true
	return res
}

func (p *Pipeline) mode() inject.Mode {
	if p.cfg.InlineMode() {
		return inject.ModeInline
	}
	return inject.ModeLinked
}

func (p *Pipeline) injectOptions() inject.Options {
	return inject.Options{
		Mode:               p.mode(),
		Base:               p.cfg.Inject.Base,
		HiddenNotification: p.cfg.Notification.Hidden,
		CustomNotification: p.cfg.CustomNotification(),
	}
}

func injectAssets(e *Emitted) inject.Assets {
	a := inject.Assets{
		ScriptHash: e.Script.Hash,
		Script:     string(e.Script.Content),
	}
	if e.Style != nil {
		a.StyleHash = e.Style.Hash
		a.Style = string(e.Style.Content)
	}
	return a
}

// record appends an event to the history. History is best effort.
func (p *Pipeline) record(ctx context.Context, eventType string, payload any) {
	if p.history == nil {
		return
	}
	data, err := eventstore.Encode(payload)
	if err == nil {
		err = p.history.Append(ctx, p.buildID, eventType, data, map[string]string{
			"version_type": string(p.cfg.Version.Type),
		})
	}
	if err != nil {
		p.logger.Warn("Failed to record build event", slog.String("type", eventType), logfields.Error(err))
	}
}

func (p *Pipeline) announce(ctx context.Context, e *Emitted) {
	if p.announcer == nil {
		return
	}
	an := announce.Announcement{
		BuildID:    e.BuildID,
		Version:    e.Version,
		Silence:    p.cfg.Silence,
		ScriptHash: e.Script.Hash,
	}
	if e.Style != nil {
		an.StyleHash = e.Style.Hash
	}
	if err := p.announcer.Announce(ctx, an); err != nil {
		p.logger.Warn("Failed to announce version", logfields.Version(e.Version), logfields.Error(err))
		return
	}
	p.logger.Debug("Announced version", logfields.Version(e.Version))
}
