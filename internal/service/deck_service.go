package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/deck"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/redact"
	"github.com/phrazzld/lessondeck/internal/render"
	"github.com/phrazzld/lessondeck/internal/store"
	"github.com/phrazzld/lessondeck/internal/task"
)

// TaskRunner defines the interface for submitting background tasks
type TaskRunner interface {
	Submit(ctx context.Context, t task.Task) error
}

// DeckTaskFactory creates generation tasks for new decks.
type DeckTaskFactory interface {
	CreateTask(deckID uuid.UUID) (*task.DeckGenerationTask, error)
}

// ProgressReader reports the progress of running generations.
type ProgressReader interface {
	Value(deckID uuid.UUID) (int, bool)
}

// DeckExporter renders finished decks.
type DeckExporter interface {
	DeckPDF(w io.Writer, d *domain.Deck) error
	DeckDoc(w io.Writer, d *domain.Deck) error
}

// DeckStatusView is a deck together with its generation progress.
type DeckStatusView struct {
	*domain.Deck
	Progress int `json:"progress"`
	// ImageStates maps every slide key to absent, error or ready.
	ImageStates map[domain.SlideKey]domain.ImageState `json:"image_states"`
}

// DeckService provides deck operations.
type DeckService interface {
	// CreateDeck stores a pending deck for the lesson plan and queues its generation.
	CreateDeck(ctx context.Context, userID, lessonPlanID uuid.UUID) (*domain.Deck, error)

	// GetDeck returns the caller's deck with its progress.
	GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*DeckStatusView, error)

	// GetSlide composes slide index of the caller's deck.
	GetSlide(ctx context.Context, userID, deckID uuid.UUID, index int) (render.SlideView, error)

	// ExportDeckPDF renders a finished deck as a PDF.
	ExportDeckPDF(ctx context.Context, userID, deckID uuid.UUID) ([]byte, error)

	// ExportDeckDoc renders a finished deck as a Word document.
	ExportDeckDoc(ctx context.Context, userID, deckID uuid.UUID) ([]byte, error)
}

// DeckServiceDeps groups the collaborators of a DeckService.
type DeckServiceDeps struct {
	// DB runs deck creation in a transaction. When nil the stores are used
	// directly.
	DB       *sql.DB
	Plans    store.LessonPlanStore
	Decks    store.DeckStore
	Runner   TaskRunner
	Factory  DeckTaskFactory
	Progress ProgressReader
	Exporter DeckExporter
}

type deckServiceImpl struct {
	deps   DeckServiceDeps
	logger *slog.Logger
}

// NewDeckService creates a DeckService.
// It returns an error if any of the required dependencies are nil.
func NewDeckService(deps DeckServiceDeps, logger *slog.Logger) (DeckService, error) {
	switch {
	case deps.Plans == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "plans cannot be nil"}
	case deps.Decks == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "decks cannot be nil"}
	case deps.Runner == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "runner cannot be nil"}
	case deps.Factory == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "factory cannot be nil"}
	case deps.Exporter == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "exporter cannot be nil"}
	}
	if deps.Progress == nil {
		deps.Progress = deck.NewProgressRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		deps:   deps,
		logger: logger.With("component", "deck_service"),
	}, nil
}

func (s *deckServiceImpl) CreateDeck(ctx context.Context, userID, lessonPlanID uuid.UUID) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	d, err := domain.NewDeck(userID, lessonPlanID)
	if err != nil {
		return nil, NewServiceError("create_deck", "invalid deck", errors.Join(ErrInvalidInput, err))
	}

	create := func(ctx context.Context, plans store.LessonPlanStore, decks store.DeckStore) error {
		if _, err := plans.GetByID(ctx, lessonPlanID); err != nil {
			return err
		}
		return decks.Create(ctx, d)
	}

	if s.deps.DB != nil {
		err = store.RunInTransaction(ctx, s.deps.DB, func(ctx context.Context, tx *sql.Tx) error {
			return create(ctx, s.deps.Plans.WithTx(tx), s.deps.Decks.WithTx(tx))
		})
	} else {
		err = create(ctx, s.deps.Plans, s.deps.Decks)
	}
	if err != nil {
		log.Error("failed to create deck",
			"error", redact.Error(err),
			"lesson_plan_id", lessonPlanID)
		return nil, NewServiceError("create_deck", "failed to save deck", err)
	}

	t, err := s.deps.Factory.CreateTask(d.ID)
	if err != nil {
		s.markFailed(ctx, d, "failed to create generation task")
		return nil, NewServiceError("create_deck", "failed to create generation task", err)
	}

	if err := s.deps.Runner.Submit(ctx, t); err != nil {
		log.Error("failed to submit deck generation",
			"error", redact.Error(err),
			"deck_id", d.ID)
		if errors.Is(err, task.ErrQueueFull) {
			s.markFailed(ctx, d, "generation queue is full")
			return nil, ErrBusy
		}
		s.markFailed(ctx, d, "failed to queue generation")
		return nil, NewServiceError("create_deck", "failed to submit generation task", err)
	}

	log.Info("deck generation queued",
		"deck_id", d.ID,
		"task_id", t.ID(),
		"lesson_plan_id", lessonPlanID)
	return d, nil
}

// markFailed records a submission failure on the deck; errors are only logged.
func (s *deckServiceImpl) markFailed(ctx context.Context, d *domain.Deck, msg string) {
	d.Status = domain.DeckStatusFailed
	d.ErrorMessage = msg
	if err := s.deps.Decks.Update(ctx, d); err != nil {
		s.logger.Error("failed to mark deck as failed", "error", redact.Error(err), "deck_id", d.ID)
	}
}

func (s *deckServiceImpl) GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*DeckStatusView, error) {
	d, err := s.ownedDeck(ctx, "get_deck", userID, deckID)
	if err != nil {
		return nil, err
	}

	view := &DeckStatusView{
		Deck:        d,
		Progress:    deck.ProgressComplete,
		ImageStates: make(map[domain.SlideKey]domain.ImageState, domain.SlideCount),
	}
	if d.Generating() {
		view.Progress = 0
		if v, ok := s.deps.Progress.Value(deckID); ok {
			view.Progress = v
		}
	}
	for _, k := range domain.SlideKeys() {
		view.ImageStates[k] = d.Images.State(k)
	}
	return view, nil
}

func (s *deckServiceImpl) GetSlide(
	ctx context.Context,
	userID, deckID uuid.UUID,
	index int,
) (render.SlideView, error) {
	d, err := s.ownedDeck(ctx, "get_slide", userID, deckID)
	if err != nil {
		return render.SlideView{}, err
	}

	view, err := render.ComposeSlide(d.Content, d.Images, index, d.Generating())
	if err != nil {
		return render.SlideView{}, errors.Join(ErrInvalidInput, err)
	}
	return view, nil
}

func (s *deckServiceImpl) ExportDeckPDF(ctx context.Context, userID, deckID uuid.UUID) ([]byte, error) {
	return s.export(ctx, "export_deck_pdf", userID, deckID, s.deps.Exporter.DeckPDF)
}

func (s *deckServiceImpl) ExportDeckDoc(ctx context.Context, userID, deckID uuid.UUID) ([]byte, error) {
	return s.export(ctx, "export_deck_doc", userID, deckID, s.deps.Exporter.DeckDoc)
}

func (s *deckServiceImpl) export(
	ctx context.Context,
	op string,
	userID, deckID uuid.UUID,
	write func(io.Writer, *domain.Deck) error,
) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	d, err := s.ownedDeck(ctx, op, userID, deckID)
	if err != nil {
		return nil, err
	}
	if d.Generating() {
		return nil, ErrDeckNotReady
	}

	var buf bytes.Buffer
	if err := write(&buf, d); err != nil {
		log.Error("failed to render deck export", "error", err, "deck_id", deckID, "operation", op)
		return nil, NewServiceError(op, "failed to render export", err)
	}
	return buf.Bytes(), nil
}

func (s *deckServiceImpl) ownedDeck(ctx context.Context, op string, userID, deckID uuid.UUID) (*domain.Deck, error) {
	d, err := s.deps.Decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, NewServiceError(op, "failed to retrieve deck", err)
	}
	if d.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("deck access denied",
			"deck_id", deckID,
			"user_id", userID)
		return nil, ErrNotOwned
	}
	return d, nil
}
