package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/lessondeck/internal/config"
	"github.com/phrazzld/lessondeck/internal/generation"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"google.golang.org/genai"
)

// imageModalities asks the image model for both text and inline image parts.
var imageModalities = []string{"TEXT", "IMAGE"}

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator talks to the Gemini API.
type Generator struct {
	logger     *slog.Logger
	models     contentGenerator
	textModel  string
	imageModel string
}

var (
	_ generation.TextGenerator  = (*Generator)(nil)
	_ generation.ImageGenerator = (*Generator)(nil)
)

// NewGenerator creates a Generator from the llm configuration section.
func NewGenerator(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.TextModel == "" || cfg.ImageModel == "" {
		return nil, fmt.Errorf("%w: text and image model names are required", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(log, client.Models, cfg.TextModel, cfg.ImageModel), nil
}

func newGenerator(log *slog.Logger, models contentGenerator, textModel, imageModel string) *Generator {
	return &Generator{
		logger:     log,
		models:     models,
		textModel:  textModel,
		imageModel: imageModel,
	}
}

// GenerateText sends prompt to the text model and returns the joined text parts
// of the first candidate.
func (g *Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	log := logger.FromContextOrDefault(ctx, g.logger)
	log.DebugContext(ctx, "calling text model", "model", g.textModel, "prompt_length", len(prompt))

	resp, err := g.models.GenerateContent(ctx, g.textModel, userContent(prompt), nil)
	if err != nil {
		return "", mapError(err)
	}

	parts, err := firstCandidateParts(resp)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, p := range parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: no text in response", generation.ErrInvalidResponse)
	}

	log.DebugContext(ctx, "text model replied", "model", g.textModel, "reply_length", len(text))
	return text, nil
}

// GenerateImages sends prompt to the image model with TEXT and IMAGE response
// modalities and returns every inline image part in order.
func (g *Generator) GenerateImages(ctx context.Context, prompt string) ([]generation.Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	log := logger.FromContextOrDefault(ctx, g.logger)
	log.DebugContext(ctx, "calling image model", "model", g.imageModel, "prompt_length", len(prompt))

	resp, err := g.models.GenerateContent(ctx, g.imageModel, userContent(prompt), &genai.GenerateContentConfig{
		ResponseModalities: imageModalities,
	})
	if err != nil {
		return nil, mapError(err)
	}

	parts, err := firstCandidateParts(resp)
	if err != nil {
		return nil, err
	}

	var images []generation.Image
	for _, p := range parts {
		if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		images = append(images, generation.Image{
			MIMEType: p.InlineData.MIMEType,
			Data:     p.InlineData.Data,
		})
	}
	if len(images) == 0 {
		return nil, generation.ErrNoImage
	}

	log.DebugContext(ctx, "image model replied", "model", g.imageModel, "images", len(images))
	return images, nil
}

func userContent(prompt string) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
}

func firstCandidateParts(resp *genai.GenerateContentResponse) ([]*genai.Part, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("%w: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, cand.FinishReason)
	}
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty content", generation.ErrInvalidResponse)
	}
	return cand.Content.Parts, nil
}
