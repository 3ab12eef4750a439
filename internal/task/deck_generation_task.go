package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/deck"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/redact"
)

// Common errors
var (
	ErrNilBuilder   = errors.New("deck builder cannot be nil")
	ErrNilStore     = errors.New("store cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
	ErrEmptyDeckID  = errors.New("deck ID cannot be empty")
	ErrEmptyPayload = errors.New("task payload cannot be empty")
)

// DeckBuilder runs the generation pipeline.
type DeckBuilder interface {
	NewProgress() *deck.Progress
	Build(ctx context.Context, in domain.LessonInput, progress *deck.Progress) deck.Result
}

// LessonPlanReader loads the plan a deck is generated from.
type LessonPlanReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LessonPlan, error)
}

// DeckRepository loads and saves the deck being generated.
type DeckRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)
	Update(ctx context.Context, d *domain.Deck) error
}

// ProgressTracker publishes the progress of running generations.
type ProgressTracker interface {
	Track(deckID uuid.UUID, p *deck.Progress)
	Forget(deckID uuid.UUID)
}

type deckGenerationPayload struct {
	DeckID uuid.UUID `json:"deck_id"`
}

// DeckGenerationTask generates the content and images of one deck and stores
// the outcome on it.
type DeckGenerationTask struct {
	id      uuid.UUID
	deckID  uuid.UUID
	deps    *DeckGenerationTaskFactory
	logger  *slog.Logger
	payload []byte
}

// ID returns the task's unique identifier
func (t *DeckGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *DeckGenerationTask) Type() string {
	return TaskTypeDeckGeneration
}

// Payload returns the task data as a byte slice
func (t *DeckGenerationTask) Payload() []byte {
	return t.payload
}

// Status reports the status a freshly built task starts in; the runner owns
// the stored status from then on.
func (t *DeckGenerationTask) Status() TaskStatus {
	return TaskStatusPending
}

// DeckID returns the deck this task generates.
func (t *DeckGenerationTask) DeckID() uuid.UUID {
	return t.deckID
}

// Execute loads the deck and its lesson plan, runs the pipeline and saves the
// result. It returns an error when the content request failed for good, so the
// task is recorded as failed; partial image failures still complete the task.
// When ctx is cancelled by shutdown the deck is left untouched for recovery.
func (t *DeckGenerationTask) Execute(ctx context.Context) error {
	log := t.logger
	log.Info("starting deck generation task")

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	d, err := t.deps.decks.GetByID(ctx, t.deckID)
	if err != nil {
		log.Error("failed to retrieve deck", "error", redact.Error(err))
		return fmt.Errorf("failed to retrieve deck: %w", err)
	}

	plan, err := t.deps.plans.GetByID(ctx, d.LessonPlanID)
	if err != nil {
		log.Error("failed to retrieve lesson plan", "error", redact.Error(err))
		t.fail(ctx, d, "lesson plan is no longer available")
		return fmt.Errorf("failed to retrieve lesson plan: %w", err)
	}

	if err := d.UpdateStatus(domain.DeckStatusProcessing); err != nil {
		return err
	}
	if err := t.deps.decks.Update(ctx, d); err != nil {
		log.Error("failed to mark deck as processing", "error", redact.Error(err))
		return fmt.Errorf("failed to update deck status to processing: %w", err)
	}

	progress := t.deps.builder.NewProgress()
	t.deps.tracker.Track(t.deckID, progress)
	defer t.deps.tracker.Forget(t.deckID)

	result := t.deps.builder.Build(ctx, plan.Input(), progress)

	if errors.Is(ctx.Err(), context.Canceled) {
		log.Warn("deck generation interrupted")
		return ctx.Err()
	}

	// The deck must be saved even when the deadline expired during Build.
	saveCtx := context.WithoutCancel(ctx)

	d.Content = result.Content
	d.Images = result.Images
	d.Normalize()
	d.ErrorMessage = ""
	if result.Err != nil {
		d.ErrorMessage = "content generation failed: " + redact.Error(result.Err)
	}
	if err := d.UpdateStatus(result.Status()); err != nil {
		return err
	}
	if err := t.deps.decks.Update(saveCtx, d); err != nil {
		log.Error("failed to save generated deck", "error", redact.Error(err))
		return fmt.Errorf("failed to save generated deck: %w", err)
	}

	if result.Err != nil {
		log.Error("deck generation failed", "error", redact.Error(result.Err))
		return fmt.Errorf("deck generation failed: %w", result.Err)
	}

	log.Info("deck generation task completed", "deck_status", d.Status)
	return nil
}

// fail records a terminal failure on the deck. Errors are only logged; the
// caller is already returning one.
func (t *DeckGenerationTask) fail(ctx context.Context, d *domain.Deck, msg string) {
	d.ErrorMessage = msg
	d.Status = domain.DeckStatusFailed
	if err := t.deps.decks.Update(context.WithoutCancel(ctx), d); err != nil {
		t.logger.Error("failed to mark deck as failed", "error", redact.Error(err))
	}
}

// DeckGenerationTaskFactory creates DeckGenerationTask instances, both fresh
// and rebuilt from stored records.
type DeckGenerationTaskFactory struct {
	builder DeckBuilder
	plans   LessonPlanReader
	decks   DeckRepository
	tracker ProgressTracker
	logger  *slog.Logger
}

// NewDeckGenerationTaskFactory creates a new factory for DeckGenerationTasks
func NewDeckGenerationTaskFactory(
	builder DeckBuilder,
	plans LessonPlanReader,
	decks DeckRepository,
	tracker ProgressTracker,
	logger *slog.Logger,
) (*DeckGenerationTaskFactory, error) {
	if builder == nil {
		return nil, ErrNilBuilder
	}
	if plans == nil || decks == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if tracker == nil {
		tracker = deck.NewProgressRegistry()
	}

	return &DeckGenerationTaskFactory{
		builder: builder,
		plans:   plans,
		decks:   decks,
		tracker: tracker,
		logger:  logger.With("component", "deck_generation_task_factory"),
	}, nil
}

// CreateTask creates a new DeckGenerationTask for the specified deck
func (f *DeckGenerationTaskFactory) CreateTask(deckID uuid.UUID) (*DeckGenerationTask, error) {
	return f.newTask(uuid.New(), deckID)
}

// Rehydrate implements Constructor for stored deck generation tasks.
func (f *DeckGenerationTaskFactory) Rehydrate(rec Record) (Task, error) {
	if len(rec.Payload) == 0 {
		return nil, ErrEmptyPayload
	}
	var p deckGenerationPayload
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode deck generation payload: %w", err)
	}
	return f.newTask(rec.ID, p.DeckID)
}

// Register installs the factory in reg.
func (f *DeckGenerationTaskFactory) Register(reg *Registry) {
	reg.Register(TaskTypeDeckGeneration, f.Rehydrate)
}

func (f *DeckGenerationTaskFactory) newTask(id, deckID uuid.UUID) (*DeckGenerationTask, error) {
	if deckID == uuid.Nil {
		return nil, ErrEmptyDeckID
	}

	payload, err := json.Marshal(deckGenerationPayload{DeckID: deckID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode deck generation payload: %w", err)
	}

	return &DeckGenerationTask{
		id:      id,
		deckID:  deckID,
		deps:    f,
		payload: payload,
		logger: f.logger.With(
			"task_id", id,
			"task_type", TaskTypeDeckGeneration,
			"deck_id", deckID),
	}, nil
}
