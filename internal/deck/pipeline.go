package deck

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/generation"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/retry"
)

// Result is the outcome of one deck build.
type Result struct {
	Content domain.AnalyzedContent
	Images  domain.ImageMap

	// Err is set when the content request failed for good. Content then holds
	// the error placeholder in every entry.
	Err error
}

// Status maps the result onto a deck status.
func (r Result) Status() domain.DeckStatus {
	if r.Err != nil {
		return domain.DeckStatusFailed
	}
	for _, k := range domain.SlideKeys() {
		if r.Content.IsError(k) || r.Images.State(k) == domain.ImageStateError {
			return domain.DeckStatusCompletedWithErrors
		}
	}
	return domain.DeckStatusCompleted
}

// Options configure a Pipeline.
type Options struct {
	Retry            retry.Policy
	ImageMode        ImageMode
	ImageWorkers     int
	ProgressInterval time.Duration
	ProgressStep     int
	Cache            ImageCache
}

// Pipeline builds decks: content analysis, then illustration.
type Pipeline struct {
	text   generation.TextGenerator
	images generation.ImageGenerator
	opts   Options
	logger *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	text generation.TextGenerator,
	images generation.ImageGenerator,
	opts Options,
	log *slog.Logger,
) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if opts.ImageMode == "" {
		opts.ImageMode = ImageModePerSlide
	}
	return &Pipeline{text: text, images: images, opts: opts, logger: log}
}

// NewProgress returns a counter configured with the pipeline's tick settings.
func (p *Pipeline) NewProgress() *Progress {
	return NewProgress(p.opts.ProgressInterval, p.opts.ProgressStep)
}

// Build runs the whole pipeline for in. Text generation finishes before any
// image request is made. progress may be nil; when set it is started, reset on
// every rate-limit wait and completed when Build returns.
func (p *Pipeline) Build(ctx context.Context, in domain.LessonInput, progress *Progress) Result {
	log := logger.FromContextOrDefault(ctx, p.logger)

	var hooks []retry.Option
	if progress != nil {
		progress.Start()
		defer progress.Complete()
		hooks = append(hooks, retry.WithWaitHook(func(int, time.Duration, error) { progress.Reset() }))
	}
	rc := retry.New(p.opts.Retry, append(hooks, retry.WithLogger(p.logger))...)

	if err := in.Validate(); err != nil {
		content := domain.ErrorContent()
		return Result{Content: content, Images: p.illustrator(rc).Illustrate(ctx, content), Err: err}
	}

	start := time.Now()
	content, err := NewAnalyzer(p.text, rc, p.logger).Analyze(ctx, in)
	log.InfoContext(ctx, "content analyzed",
		"duration_ms", time.Since(start).Milliseconds(),
		"failed", err != nil)

	start = time.Now()
	images := p.illustrator(rc).Illustrate(ctx, content)
	log.InfoContext(ctx, "slides illustrated",
		"duration_ms", time.Since(start).Milliseconds(),
		"mode", p.opts.ImageMode)

	return Result{Content: content, Images: images, Err: err}
}

func (p *Pipeline) illustrator(rc *retry.Controller) *Illustrator {
	return NewIllustrator(p.text, p.images, rc, p.logger,
		WithImageMode(p.opts.ImageMode),
		WithWorkers(p.opts.ImageWorkers),
		WithImageCache(p.opts.Cache),
	)
}
