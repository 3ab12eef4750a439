package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/service"
)

// CreateLessonPlanRequest defines the payload for creating a lesson plan.
type CreateLessonPlanRequest struct {
	Module   string `json:"module"   validate:"max=200"`
	Grade    int    `json:"grade"    validate:"min=0,max=12"`
	Lesson   string `json:"lesson"   validate:"required,max=500"`
	StartUp  string `json:"start_up" validate:"max=10000"`
	Practice string `json:"practice" validate:"max=10000"`
	Apply    string `json:"apply"    validate:"max=10000"`
}

// DeckResponse is a deck's status without the raw image payloads, which are
// served per slide.
type DeckResponse struct {
	ID           uuid.UUID                             `json:"id"`
	LessonPlanID uuid.UUID                             `json:"lesson_plan_id"`
	Status       domain.DeckStatus                     `json:"status"`
	Progress     int                                   `json:"progress"`
	Content      domain.AnalyzedContent                `json:"content"`
	ImageStates  map[domain.SlideKey]domain.ImageState `json:"image_states"`
	ErrorMessage string                                `json:"error_message,omitempty"`
	CreatedAt    time.Time                             `json:"created_at"`
	UpdatedAt    time.Time                             `json:"updated_at"`
}

func deckToResponse(d *domain.Deck, progress int, states map[domain.SlideKey]domain.ImageState) DeckResponse {
	if states == nil {
		states = make(map[domain.SlideKey]domain.ImageState, domain.SlideCount)
		for _, k := range domain.SlideKeys() {
			states[k] = d.Images.State(k)
		}
	}
	return DeckResponse{
		ID:           d.ID,
		LessonPlanID: d.LessonPlanID,
		Status:       d.Status,
		Progress:     progress,
		Content:      d.Content,
		ImageStates:  states,
		ErrorMessage: d.ErrorMessage,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func deckViewToResponse(v *service.DeckStatusView) DeckResponse {
	return deckToResponse(v.Deck, v.Progress, v.ImageStates)
}
