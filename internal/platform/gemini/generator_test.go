package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/lessondeck/internal/config"
	"github.com/phrazzld/lessondeck/internal/generation"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	model  string
	config *genai.GenerateContentConfig
	prompt string
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func respWith(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func newTestGenerator(f *fakeModels) *Generator {
	_, log := logger.NewCaptureLogger()
	return newGenerator(log, f, "text-model", "image-model")
}

func TestGenerateText(t *testing.T) {
	t.Parallel()
	f := &fakeModels{resp: respWith(
		&genai.Part{Text: "thinking...", Thought: true},
		&genai.Part{Text: "LessonTitle: Số 85000\n"},
		&genai.Part{Text: "StartUp: đếm"},
	)}
	g := newTestGenerator(f)

	text, err := g.GenerateText(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "LessonTitle: Số 85000\nStartUp: đếm", text)
	assert.Equal(t, "text-model", f.model)
	assert.Nil(t, f.config)
	assert.Equal(t, "prompt", f.prompt)
}

func TestGenerateTextErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		err  error
		want error
	}{
		{"nil response", nil, nil, generation.ErrInvalidResponse},
		{"no candidates", &genai.GenerateContentResponse{}, nil, generation.ErrInvalidResponse},
		{"empty text", respWith(&genai.Part{Text: "  "}), nil, generation.ErrInvalidResponse},
		{
			"safety",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
			nil,
			generation.ErrContentBlocked,
		},
		{"transport", nil, errors.New("connection reset"), generation.ErrGenerationFailed},
		{"cancelled", nil, context.Canceled, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := newTestGenerator(&fakeModels{resp: tt.resp, err: tt.err})
			_, err := g.GenerateText(context.Background(), "prompt")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAPIErrorKeepsStatus(t *testing.T) {
	t.Parallel()
	g := newTestGenerator(&fakeModels{err: genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}})

	_, err := g.GenerateText(context.Background(), "prompt")

	var se *generation.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 429, se.Code)
	assert.True(t, generation.IsRateLimited(err))
}

func TestGenerateImages(t *testing.T) {
	t.Parallel()
	f := &fakeModels{resp: respWith(
		&genai.Part{Text: "Here is your image"},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{1, 2}}},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte{3}}},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png"}},
	)}
	g := newTestGenerator(f)

	images, err := g.GenerateImages(context.Background(), "a classroom")

	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "image/png", images[0].MIMEType)
	assert.Equal(t, "image/jpeg", images[1].MIMEType)
	assert.Equal(t, "image-model", f.model)
	require.NotNil(t, f.config)
	assert.Equal(t, []string{"TEXT", "IMAGE"}, f.config.ResponseModalities)
}

func TestGenerateImagesWithoutImagePart(t *testing.T) {
	t.Parallel()
	g := newTestGenerator(&fakeModels{resp: respWith(&genai.Part{Text: "sorry"})})

	_, err := g.GenerateImages(context.Background(), "a classroom")

	assert.ErrorIs(t, err, generation.ErrNoImage)
}

func TestEmptyPrompt(t *testing.T) {
	t.Parallel()
	f := &fakeModels{}
	g := newTestGenerator(f)

	_, err := g.GenerateText(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	_, err = g.GenerateImages(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Empty(t, f.model, "no request is made")
}

func TestNewGeneratorValidatesConfig(t *testing.T) {
	t.Parallel()
	_, log := logger.NewCaptureLogger()

	_, err := NewGenerator(context.Background(), nil, config.LLMConfig{})
	require.Error(t, err)

	_, err = NewGenerator(context.Background(), log, config.LLMConfig{TextModel: "t", ImageModel: "i"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewGenerator(context.Background(), log, config.LLMConfig{GeminiAPIKey: "k", TextModel: "t"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
