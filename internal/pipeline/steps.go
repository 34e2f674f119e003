package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/nao1215/linkcheck/internal/config"
	"github.com/nao1215/linkcheck/internal/crawler"
	"github.com/nao1215/linkcheck/internal/link"
	"github.com/nao1215/linkcheck/internal/model"
	"github.com/nao1215/linkcheck/internal/probe"
)

// DiscoverStep walks the root, reads every document and extracts its
// references and anchors. After this step the document set is fixed.
type DiscoverStep struct {
	fsys   fs.FS
	opts   []crawler.WalkerOption
	logger *slog.Logger
}

// DiscoverStepOption configures a DiscoverStep.
type DiscoverStepOption func(*DiscoverStep)

// WithDiscoverLogger sets a custom logger for the discover step.
func WithDiscoverLogger(logger *slog.Logger) DiscoverStepOption {
	return func(s *DiscoverStep) {
		s.logger = logger
	}
}

// WithWalkerOptions passes options through to the walker.
func WithWalkerOptions(opts ...crawler.WalkerOption) DiscoverStepOption {
	return func(s *DiscoverStep) {
		s.opts = append(s.opts, opts...)
	}
}

// NewDiscoverStep creates a discover step over the root filesystem.
func NewDiscoverStep(fsys fs.FS, opts ...DiscoverStepOption) *DiscoverStep {
	s := &DiscoverStep{
		fsys:   fsys,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *DiscoverStep) Name() string {
	return "discover"
}

// Do executes the discover step.
func (s *DiscoverStep) Do(ctx context.Context, run *model.Run) error {
	walkerOpts := append([]crawler.WalkerOption{crawler.WithLogger(s.logger)}, s.opts...)
	result, err := crawler.NewWalker(s.fsys, walkerOpts...).Walk(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan documents: %w", err)
	}

	run.Documents = result.Documents
	run.Files = result.Files

	s.logger.Info("documents discovered",
		"documents", len(result.Documents),
		"skipped", len(result.Skipped),
	)
	return nil
}

// ClassifyStep classifies every reference of every document, once, in
// discovery order.
type ClassifyStep struct {
	classifier *link.Classifier
	logger     *slog.Logger
}

// NewClassifyStep creates a classify step that ignores the given schemes.
func NewClassifyStep(ignoreSchemes []string, logger *slog.Logger) *ClassifyStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifyStep{
		classifier: link.NewClassifier(ignoreSchemes),
		logger:     logger,
	}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do executes the classify step.
func (s *ClassifyStep) Do(_ context.Context, run *model.Run) error {
	run.References = run.References[:0]
	for i, doc := range run.Documents {
		run.References = append(run.References, s.classifier.ClassifyDocument(i, doc)...)
	}

	counts := make(map[model.Kind]int)
	for _, ref := range run.References {
		counts[ref.Kind]++
	}
	run.ExternalTotal = counts[model.KindExternal]

	s.logger.Debug("references classified",
		"total", len(run.References),
		"external", counts[model.KindExternal],
		"ignored", counts[model.KindIgnored],
	)
	return nil
}

// ResolveStep checks every local reference against the anchor table and the
// filesystem.
type ResolveStep struct {
	fsys   fs.FS
	opts   []link.ResolverOption
	logger *slog.Logger
}

// NewResolveStep creates a resolve step over the root filesystem.
func NewResolveStep(fsys fs.FS, logger *slog.Logger, opts ...link.ResolverOption) *ResolveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveStep{fsys: fsys, opts: opts, logger: logger}
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do executes the resolve step.
func (s *ResolveStep) Do(_ context.Context, run *model.Run) error {
	opts := append([]link.ResolverOption{link.WithLogger(s.logger)}, s.opts...)
	resolver := link.NewResolver(s.fsys, run.AnchorTable(), run.Files, opts...)

	findings := resolver.ResolveAll(run.References)
	for _, f := range findings {
		run.AddFinding(f)
	}

	s.logger.Info("local references resolved", "broken", len(findings))
	return nil
}

// ProbeStep checks a sample of external references over the network.
// Cancellation during probing does not fail the step: the run is marked as
// interrupted and keeps the results gathered so far.
type ProbeStep struct {
	prober *probe.Prober
	logger *slog.Logger
}

// NewProbeStep creates a probe step.
func NewProbeStep(prober *probe.Prober, logger *slog.Logger) *ProbeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProbeStep{prober: prober, logger: logger}
}

// Name returns the step name.
func (s *ProbeStep) Name() string {
	return "probe"
}

// Do executes the probe step.
func (s *ProbeStep) Do(ctx context.Context, run *model.Run) error {
	result := s.prober.Probe(ctx, run.ExternalReferences())

	for _, f := range result.Findings {
		run.AddFinding(f)
	}
	run.ExternalProbed = result.Probed
	run.Interrupted = result.Interrupted

	if result.Interrupted {
		s.logger.Warn("external probing interrupted", "probed", result.Probed)
	} else {
		s.logger.Info("external links probed",
			"probed", result.Probed,
			"broken", len(result.Findings),
		)
	}
	return nil
}

// DefaultPipeline creates the standard link check pipeline for cfg:
// discover, classify, resolve and, when external probing is enabled, probe.
// The first variadic parameter accepts pipeline options (WithLogger, etc).
func DefaultPipeline(cfg *config.Config, fsys fs.FS, logger *slog.Logger, pipelineOpts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := New(append([]Option{WithLogger(logger)}, pipelineOpts...)...)

	parser := crawler.NewParser(crawler.WithResources(cfg.CheckResources))

	p.AddSteps(
		NewDiscoverStep(fsys,
			WithDiscoverLogger(logger),
			WithWalkerOptions(
				crawler.WithExtensions(cfg.Extensions),
				crawler.WithExcludeDirs(cfg.ExcludeDirs),
				crawler.WithExcludePatterns(cfg.ExcludePatterns),
				crawler.WithParser(parser),
			),
		),
		NewClassifyStep(cfg.IgnoreSchemes, logger),
		NewResolveStep(fsys, logger,
			link.WithParser(parser),
			link.WithStrictFragments(cfg.StrictFragments),
		),
	)

	if !cfg.External {
		return p, nil
	}

	client, err := probe.NewHTTPClient(probe.ClientOptions{
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		Proxy:     cfg.Proxy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create probe client: %w", err)
	}
	p.AddStep(NewProbeStep(newProber(client, cfg, logger), logger))

	return p, nil
}

func newProber(client *http.Client, cfg *config.Config, logger *slog.Logger) *probe.Prober {
	return probe.NewProber(client,
		probe.WithSampleSize(cfg.SampleSize),
		probe.WithConcurrency(cfg.Concurrency),
		probe.WithLogger(logger),
	)
}
