package deck

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/generation"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/redact"
	"github.com/phrazzld/lessondeck/internal/retry"
	"golang.org/x/sync/errgroup"
)

// ImageMode selects how slide images are requested.
type ImageMode string

// Image modes
const (
	// ImageModePerSlide sends one image request per slide.
	ImageModePerSlide ImageMode = "per_slide"
	// ImageModeCombined sends a single request describing every scene.
	ImageModeCombined ImageMode = "combined"
)

// ImageCache stores generated images by prompt hash.
type ImageCache interface {
	Get(ctx context.Context, key string) (generation.Image, bool, error)
	Set(ctx context.Context, key string, img generation.Image) error
}

// PromptHash is the cache key for a visual prompt.
func PromptHash(prompt string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(prompt)))
	return hex.EncodeToString(sum[:])
}

// Illustrator produces the image map for analyzed content.
type Illustrator struct {
	text    generation.TextGenerator
	images  generation.ImageGenerator
	retry   *retry.Controller
	cache   ImageCache
	workers int
	mode    ImageMode
	logger  *slog.Logger
}

// IllustratorOption configures an Illustrator.
type IllustratorOption func(*Illustrator)

// WithWorkers bounds concurrent per-slide requests. Values below 1 mean 1.
func WithWorkers(n int) IllustratorOption {
	return func(il *Illustrator) {
		if n < 1 {
			n = 1
		}
		il.workers = n
	}
}

// WithImageMode selects per-slide or combined requests.
func WithImageMode(m ImageMode) IllustratorOption {
	return func(il *Illustrator) { il.mode = m }
}

// WithImageCache enables the image cache. A nil cache disables it.
func WithImageCache(c ImageCache) IllustratorOption {
	return func(il *Illustrator) { il.cache = c }
}

// NewIllustrator creates an Illustrator that processes slides one at a time
// unless WithWorkers says otherwise.
func NewIllustrator(
	text generation.TextGenerator,
	images generation.ImageGenerator,
	rc *retry.Controller,
	log *slog.Logger,
	opts ...IllustratorOption,
) *Illustrator {
	if log == nil {
		log = slog.Default()
	}
	il := &Illustrator{
		text:    text,
		images:  images,
		retry:   rc,
		workers: 1,
		mode:    ImageModePerSlide,
		logger:  log,
	}
	for _, opt := range opts {
		opt(il)
	}
	return il
}

// Illustrate returns an image map for content. Keys whose text is the error
// placeholder are marked as errors without any request; keys with empty text
// stay absent. A failure on one slide never affects another.
func (il *Illustrator) Illustrate(ctx context.Context, content domain.AnalyzedContent) domain.ImageMap {
	images := domain.NewImageMap()
	var usable []domain.SlideKey
	for _, k := range domain.SlideKeys() {
		switch {
		case content.IsError(k):
			images[k] = domain.ImageErrorMarker
		case content.Usable(k):
			usable = append(usable, k)
		}
	}
	if len(usable) == 0 {
		return images
	}

	if il.mode == ImageModeCombined {
		il.illustrateCombined(ctx, content, usable, images)
	} else {
		il.illustratePerSlide(ctx, content, usable, images)
	}
	return images
}

func (il *Illustrator) illustratePerSlide(
	ctx context.Context,
	content domain.AnalyzedContent,
	keys []domain.SlideKey,
	images domain.ImageMap,
) {
	results := make([]string, len(keys))

	var g errgroup.Group
	g.SetLimit(il.workers)
	for i, k := range keys {
		g.Go(func() error {
			results[i] = il.illustrateSlide(ctx, k, content[k])
			return nil
		})
	}
	_ = g.Wait()

	for i, k := range keys {
		images[k] = results[i]
	}
}

func (il *Illustrator) illustrateSlide(ctx context.Context, key domain.SlideKey, text string) string {
	log := logger.FromContextOrDefault(ctx, il.logger).With("slide", key)

	visual := il.visualPrompt(ctx, log, text)
	img, err := il.image(ctx, log, visual)
	if err != nil {
		log.WarnContext(ctx, "image generation failed", "error", redact.Error(err))
		return domain.ImageErrorMarker
	}
	log.DebugContext(ctx, "image generated", "mime_type", img.MIMEType, "bytes", len(img.Data))
	return img.DataURI()
}

// visualPrompt derives a drawable scene from slide text, falling back to the
// text itself.
func (il *Illustrator) visualPrompt(ctx context.Context, log *slog.Logger, text string) string {
	prompt, err := BuildVisualPrompt(text)
	if err != nil {
		return text
	}
	scene, err := retry.Do(ctx, il.retry, func(ctx context.Context) (string, error) {
		return il.text.GenerateText(ctx, prompt)
	})
	scene = strings.TrimSpace(scene)
	if err != nil || scene == "" {
		if err != nil {
			log.WarnContext(ctx, "visual prompt request failed, using slide text", "error", redact.Error(err))
		}
		return text
	}
	return scene
}

func (il *Illustrator) image(ctx context.Context, log *slog.Logger, prompt string) (generation.Image, error) {
	key := PromptHash(prompt)
	if il.cache != nil {
		img, ok, err := il.cache.Get(ctx, key)
		if err != nil {
			log.WarnContext(ctx, "image cache read failed", "error", redact.Error(err))
		} else if ok {
			log.DebugContext(ctx, "image cache hit")
			return img, nil
		}
	}

	imgs, err := retry.Do(ctx, il.retry, func(ctx context.Context) ([]generation.Image, error) {
		return il.images.GenerateImages(ctx, prompt)
	})
	if err != nil {
		return generation.Image{}, err
	}
	if len(imgs) == 0 {
		return generation.Image{}, generation.ErrNoImage
	}

	if il.cache != nil {
		if err := il.cache.Set(ctx, key, imgs[0]); err != nil {
			log.WarnContext(ctx, "image cache write failed", "error", redact.Error(err))
		}
	}
	return imgs[0], nil
}

// illustrateCombined requests all scenes at once and assigns the returned
// images to keys in order. Keys left without an image are marked as errors.
func (il *Illustrator) illustrateCombined(
	ctx context.Context,
	content domain.AnalyzedContent,
	keys []domain.SlideKey,
	images domain.ImageMap,
) {
	log := logger.FromContextOrDefault(ctx, il.logger)

	scenes := make([]string, len(keys))
	for i, k := range keys {
		scenes[i] = il.visualPrompt(ctx, log.With("slide", k), content[k])
	}

	for _, k := range keys {
		images[k] = domain.ImageErrorMarker
	}

	prompt, err := BuildCombinedImagePrompt(scenes)
	if err != nil {
		log.ErrorContext(ctx, "combined image prompt failed", "error", err)
		return
	}
	imgs, err := retry.Do(ctx, il.retry, func(ctx context.Context) ([]generation.Image, error) {
		return il.images.GenerateImages(ctx, prompt)
	})
	if err != nil {
		log.WarnContext(ctx, "combined image request failed", "error", redact.Error(err))
		return
	}
	if len(imgs) < len(keys) {
		log.WarnContext(ctx, "combined image response is short",
			"expected", len(keys),
			"received", len(imgs))
	}

	for i, k := range keys {
		if i >= len(imgs) {
			break
		}
		images[k] = imgs[i].DataURI()
	}
}

// String implements fmt.Stringer for log output.
func (m ImageMode) String() string {
	return string(m)
}

// ParseImageMode validates a configured image mode.
func ParseImageMode(s string) (ImageMode, error) {
	switch m := ImageMode(s); m {
	case ImageModePerSlide, ImageModeCombined:
		return m, nil
	case "":
		return ImageModePerSlide, nil
	default:
		return "", fmt.Errorf("unknown image mode %q", s)
	}
}
