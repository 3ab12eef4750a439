package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for LessonPlan
var (
	ErrEmptyLessonPlanID     = errors.New("lesson plan ID cannot be empty")
	ErrEmptyLessonPlanUserID = errors.New("lesson plan user ID cannot be empty")
	ErrEmptyLessonTitle      = errors.New("lesson title cannot be empty")
	ErrInvalidGrade          = errors.New("grade must be between 0 and 12")
)

// LessonPlan is a teacher's plan for a single lesson. The four text fields are the
// raw material the deck pipeline works from.
type LessonPlan struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Module    string    `json:"module"`
	Grade     int       `json:"grade"`
	Lesson    string    `json:"lesson"`
	StartUp   string    `json:"start_up"`
	Practice  string    `json:"practice"`
	Apply     string    `json:"apply"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLessonPlan creates a new LessonPlan with a fresh ID and timestamps.
// Returns an error if validation fails.
func NewLessonPlan(userID uuid.UUID, grade int, module, lesson, startUp, practice, apply string) (*LessonPlan, error) {
	now := time.Now().UTC()
	plan := &LessonPlan{
		ID:        uuid.New(),
		UserID:    userID,
		Module:    strings.TrimSpace(module),
		Grade:     grade,
		Lesson:    strings.TrimSpace(lesson),
		StartUp:   startUp,
		Practice:  practice,
		Apply:     apply,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return plan, nil
}

// Validate checks if the LessonPlan has valid data.
func (p *LessonPlan) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyLessonPlanID
	}

	if p.UserID == uuid.Nil {
		return ErrEmptyLessonPlanUserID
	}

	if strings.TrimSpace(p.Lesson) == "" {
		return ErrEmptyLessonTitle
	}

	// Grade 0 means "not assigned".
	if p.Grade < 0 || p.Grade > 12 {
		return ErrInvalidGrade
	}

	return nil
}

// Input returns the immutable snapshot the deck pipeline consumes.
func (p *LessonPlan) Input() LessonInput {
	return LessonInput{
		Lesson:    p.Lesson,
		StartUp:   p.StartUp,
		Practice:  p.Practice,
		Apply:     p.Apply,
		Module:    p.Module,
		CreatedAt: p.CreatedAt,
	}
}

// LessonInput holds the lesson fields used for one export. It is a value type so
// the pipeline can never mutate the stored plan.
type LessonInput struct {
	Lesson    string    `json:"lesson"`
	StartUp   string    `json:"startUp"`
	Practice  string    `json:"practice"`
	Apply     string    `json:"apply"`
	Module    string    `json:"module"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate reports whether the input has enough content to build a deck.
func (in LessonInput) Validate() error {
	if strings.TrimSpace(in.Lesson) == "" {
		return ErrEmptyLessonTitle
	}
	return nil
}
