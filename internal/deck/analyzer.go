package deck

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/generation"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/redact"
	"github.com/phrazzld/lessondeck/internal/retry"
)

// Analyzer turns a lesson input into analyzed slide content.
type Analyzer struct {
	text   generation.TextGenerator
	retry  *retry.Controller
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. Every text call goes through rc.
func NewAnalyzer(text generation.TextGenerator, rc *retry.Controller, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{text: text, retry: rc, logger: log}
}

// Analyze runs the content request and the game-idea request.
//
// When the content request fails for good, or its reply has no section marker,
// every entry is the error placeholder and the error is returned. A failed
// game-idea request only replaces the gameIdea entry. The closing entry is
// composed from the lesson title without a request.
func (a *Analyzer) Analyze(ctx context.Context, in domain.LessonInput) (domain.AnalyzedContent, error) {
	log := logger.FromContextOrDefault(ctx, a.logger).With("lesson", in.Lesson)

	prompt, err := BuildContentPrompt(in)
	if err != nil {
		return domain.ErrorContent(), err
	}

	reply, err := retry.Do(ctx, a.retry, func(ctx context.Context) (string, error) {
		return a.text.GenerateText(ctx, prompt)
	})
	if err != nil {
		log.ErrorContext(ctx, "content request failed", "error", redact.Error(err))
		return domain.ErrorContent(), fmt.Errorf("content request: %w", err)
	}

	parsed, err := ParseSections(reply, in)
	if err != nil {
		log.ErrorContext(ctx, "content reply could not be parsed",
			"error", err,
			"reply_length", len(reply))
		return domain.ErrorContent(), err
	}
	if len(parsed.Missing) > 0 {
		log.WarnContext(ctx, "content reply has parse gaps", "missing", parsed.Missing)
	}

	content := domain.NewAnalyzedContent()
	for k, v := range parsed.Sections {
		content[k] = v
	}

	content[domain.SlideKeyGameIdea] = a.gameIdea(ctx, log, in)
	content[domain.SlideKeyClosing] = ClosingText(content[domain.SlideKeyLesson])

	return content, nil
}

func (a *Analyzer) gameIdea(ctx context.Context, log *slog.Logger, in domain.LessonInput) string {
	prompt, err := BuildGameIdeaPrompt(in)
	if err != nil {
		log.ErrorContext(ctx, "game idea prompt failed", "error", err)
		return domain.ContentErrorPlaceholder
	}

	reply, err := retry.Do(ctx, a.retry, func(ctx context.Context) (string, error) {
		return a.text.GenerateText(ctx, prompt)
	})
	if err != nil {
		log.WarnContext(ctx, "game idea request failed", "error", redact.Error(err))
		return domain.ContentErrorPlaceholder
	}

	idea := ParseGameIdea(reply)
	if idea == "" {
		return domain.ContentErrorPlaceholder
	}
	return idea
}
