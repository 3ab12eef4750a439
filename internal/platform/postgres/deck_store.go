package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/store"
)

// PostgresDeckStore implements store.DeckStore on PostgreSQL. Content and
// images are stored as JSONB objects keyed by slide key.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a deck store. If logger is nil, the default
// logger is used.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

var _ store.DeckStore = (*PostgresDeckStore)(nil)

// Create implements store.DeckStore.Create.
// Returns store.ErrInvalidEntity if the lesson plan does not exist.
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	content, images, err := marshalDeckMaps(deck)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO decks (id, lesson_plan_id, user_id, status, content, images, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		deck.ID,
		deck.LessonPlanID,
		deck.UserID,
		deck.Status,
		content,
		images,
		deck.ErrorMessage,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during deck creation",
				slog.String("deck_id", deck.ID.String()),
				slog.String("lesson_plan_id", deck.LessonPlanID.String()))
			return fmt.Errorf("%w: lesson plan with ID %s not found",
				store.ErrInvalidEntity, deck.LessonPlanID)
		}
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return MapError(err, nil)
	}

	log.Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("lesson_plan_id", deck.LessonPlanID.String()),
		slog.String("status", string(deck.Status)))
	return nil
}

// GetByID implements store.DeckStore.GetByID.
func (s *PostgresDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, lesson_plan_id, user_id, status, content, images, error_message, created_at, updated_at
		FROM decks
		WHERE id = $1
	`

	var (
		deck            domain.Deck
		status          string
		content, images []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&deck.ID,
		&deck.LessonPlanID,
		&deck.UserID,
		&status,
		&content,
		&images,
		&deck.ErrorMessage,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err, store.ErrDeckNotFound)
		if store.IsNotFoundError(mapped) {
			log.Debug("deck not found", slog.String("deck_id", id.String()))
		} else {
			log.Error("failed to get deck",
				slog.String("error", err.Error()),
				slog.String("deck_id", id.String()))
		}
		return nil, mapped
	}

	deck.Status = domain.DeckStatus(status)
	if err := json.Unmarshal(content, &deck.Content); err != nil {
		return nil, fmt.Errorf("failed to decode deck content: %w", err)
	}
	if err := json.Unmarshal(images, &deck.Images); err != nil {
		return nil, fmt.Errorf("failed to decode deck images: %w", err)
	}
	deck.Normalize()

	return &deck, nil
}

// Update implements store.DeckStore.Update. UpdatedAt is refreshed on the
// passed deck.
func (s *PostgresDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during update",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	content, images, err := marshalDeckMaps(deck)
	if err != nil {
		return err
	}
	deck.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE decks
		SET status = $1, content = $2, images = $3, error_message = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		deck.Status,
		content,
		images,
		deck.ErrorMessage,
		deck.UpdatedAt,
		deck.ID,
	)
	if err != nil {
		log.Error("failed to update deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return MapError(err, nil)
	}

	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		log.Debug("deck update affected no rows", slog.String("deck_id", deck.ID.String()))
		return err
	}

	log.Debug("deck updated",
		slog.String("deck_id", deck.ID.String()),
		slog.String("status", string(deck.Status)))
	return nil
}

// WithTx implements store.DeckStore.WithTx.
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{
		db:     tx,
		logger: s.logger,
	}
}

func marshalDeckMaps(deck *domain.Deck) ([]byte, []byte, error) {
	content, err := json.Marshal(deck.Content)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode deck content: %w", err)
	}
	images, err := json.Marshal(deck.Images)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode deck images: %w", err)
	}
	return content, images, nil
}
