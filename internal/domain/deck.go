package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DeckStatus represents the processing state of a deck
type DeckStatus string

// Possible deck status values
const (
	DeckStatusPending             DeckStatus = "pending"
	DeckStatusProcessing          DeckStatus = "processing"
	DeckStatusCompleted           DeckStatus = "completed"
	DeckStatusCompletedWithErrors DeckStatus = "completed_with_errors"
	DeckStatusFailed              DeckStatus = "failed"
)

// Common validation errors for Deck
var (
	ErrEmptyDeckID           = errors.New("deck ID cannot be empty")
	ErrEmptyDeckUserID       = errors.New("deck user ID cannot be empty")
	ErrEmptyDeckLessonPlanID = errors.New("deck lesson plan ID cannot be empty")
)

// Deck is the generated presentation for one lesson plan export.
type Deck struct {
	ID           uuid.UUID       `json:"id"`
	LessonPlanID uuid.UUID       `json:"lesson_plan_id"`
	UserID       uuid.UUID       `json:"user_id"`
	Status       DeckStatus      `json:"status"`
	Content      AnalyzedContent `json:"content"`
	Images       ImageMap        `json:"images"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewDeck creates a pending deck for the given lesson plan.
func NewDeck(userID, lessonPlanID uuid.UUID) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:           uuid.New(),
		LessonPlanID: lessonPlanID,
		UserID:       userID,
		Status:       DeckStatusPending,
		Content:      NewAnalyzedContent(),
		Images:       NewImageMap(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDeckID
	}

	if d.UserID == uuid.Nil {
		return ErrEmptyDeckUserID
	}

	if d.LessonPlanID == uuid.Nil {
		return ErrEmptyDeckLessonPlanID
	}

	if !isValidDeckStatus(d.Status) {
		return ErrInvalidDeckStatus
	}

	for k := range d.Content {
		if !k.Valid() {
			return ErrInvalidSlideKey
		}
	}
	for k := range d.Images {
		if !k.Valid() {
			return ErrInvalidSlideKey
		}
	}

	return nil
}

// UpdateStatus updates the deck's status and the UpdatedAt timestamp.
func (d *Deck) UpdateStatus(status DeckStatus) error {
	if !isValidDeckStatus(status) {
		return ErrInvalidDeckStatus
	}

	d.Status = status
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Generating reports whether the deck is still being produced.
func (d *Deck) Generating() bool {
	return d.Status == DeckStatusPending || d.Status == DeckStatusProcessing
}

// Normalize fills in missing keys so Content and Images always carry the full
// fixed key set.
func (d *Deck) Normalize() {
	if d.Content == nil {
		d.Content = NewAnalyzedContent()
	}
	if d.Images == nil {
		d.Images = NewImageMap()
	}
	for _, k := range SlideKeys() {
		if _, ok := d.Content[k]; !ok {
			d.Content[k] = ""
		}
		if _, ok := d.Images[k]; !ok {
			d.Images[k] = ""
		}
	}
}

func isValidDeckStatus(status DeckStatus) bool {
	switch status {
	case DeckStatusPending, DeckStatusProcessing, DeckStatusCompleted,
		DeckStatusCompletedWithErrors, DeckStatusFailed:
		return true
	default:
		return false
	}
}
