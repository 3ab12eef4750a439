package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/store"
)

const lessonPlanColumns = `id, user_id, module, grade, lesson, start_up, practice, apply, created_at, updated_at`

// sortColumns whitelists the ORDER BY expressions a list may use. The
// normalized store.SortField is the only input that reaches the query text.
var sortColumns = map[store.SortField]string{
	store.SortByCreatedAt: "created_at",
	store.SortByLesson:    "lesson",
	store.SortByModule:    "module",
}

// PostgresLessonPlanStore implements store.LessonPlanStore on PostgreSQL.
type PostgresLessonPlanStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLessonPlanStore creates a lesson plan store. If logger is nil,
// the default logger is used.
func NewPostgresLessonPlanStore(db store.DBTX, logger *slog.Logger) *PostgresLessonPlanStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLessonPlanStore{
		db:     db,
		logger: logger.With(slog.String("component", "lesson_plan_store")),
	}
}

var _ store.LessonPlanStore = (*PostgresLessonPlanStore)(nil)

// Create implements store.LessonPlanStore.Create.
func (s *PostgresLessonPlanStore) Create(ctx context.Context, plan *domain.LessonPlan) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := plan.Validate(); err != nil {
		log.Warn("lesson plan validation failed during create",
			slog.String("error", err.Error()),
			slog.String("lesson_plan_id", plan.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO lesson_plans (` + lessonPlanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		plan.ID,
		plan.UserID,
		plan.Module,
		plan.Grade,
		plan.Lesson,
		plan.StartUp,
		plan.Practice,
		plan.Apply,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create lesson plan",
			slog.String("error", err.Error()),
			slog.String("lesson_plan_id", plan.ID.String()))
		return MapError(err, nil)
	}

	log.Info("lesson plan created",
		slog.String("lesson_plan_id", plan.ID.String()),
		slog.String("user_id", plan.UserID.String()),
		slog.Int("grade", plan.Grade))
	return nil
}

// GetByID implements store.LessonPlanStore.GetByID.
func (s *PostgresLessonPlanStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LessonPlan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + lessonPlanColumns + ` FROM lesson_plans WHERE id = $1`

	plan, err := scanLessonPlan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		mapped := MapError(err, store.ErrLessonPlanNotFound)
		if store.IsNotFoundError(mapped) {
			log.Debug("lesson plan not found", slog.String("lesson_plan_id", id.String()))
		} else {
			log.Error("failed to get lesson plan",
				slog.String("error", err.Error()),
				slog.String("lesson_plan_id", id.String()))
		}
		return nil, mapped
	}

	return plan, nil
}

// List implements store.LessonPlanStore.List.
func (s *PostgresLessonPlanStore) List(ctx context.Context, params store.ListParams) (*store.LessonPlanPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	params = params.Normalize()

	where, args := buildLessonPlanFilter(params)

	var total int
	countQuery := `SELECT COUNT(*) FROM lesson_plans` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count lesson plans", slog.String("error", err.Error()))
		return nil, MapError(err, nil)
	}

	query, listArgs := buildLessonPlanListQuery(params, where, args)
	rows, err := s.db.QueryContext(ctx, query, listArgs...)
	if err != nil {
		log.Error("failed to list lesson plans", slog.String("error", err.Error()))
		return nil, MapError(err, nil)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close lesson plan rows", slog.String("error", cerr.Error()))
		}
	}()

	items := make([]*domain.LessonPlan, 0, params.PageSize)
	for rows.Next() {
		plan, err := scanLessonPlan(rows)
		if err != nil {
			log.Error("failed to scan lesson plan row", slog.String("error", err.Error()))
			return nil, err
		}
		items = append(items, plan)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating lesson plan rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed lesson plans",
		slog.Int("count", len(items)),
		slog.Int("total", total),
		slog.Int("page", params.Page))

	return &store.LessonPlanPage{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// WithTx implements store.LessonPlanStore.WithTx.
func (s *PostgresLessonPlanStore) WithTx(tx *sql.Tx) store.LessonPlanStore {
	return &PostgresLessonPlanStore{
		db:     tx,
		logger: s.logger,
	}
}

// buildLessonPlanFilter returns the WHERE clause (with a leading space, or
// empty) and its positional arguments.
func buildLessonPlanFilter(params store.ListParams) (string, []any) {
	var conds []string
	var args []any

	if params.Search != "" {
		args = append(args, "%"+escapeLike(params.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(lesson ILIKE $%d OR module ILIKE $%d)", n, n))
	}
	if params.Grade != nil {
		args = append(args, *params.Grade)
		conds = append(conds, fmt.Sprintf("grade = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildLessonPlanListQuery appends ordering and paging to the filter. params
// must already be normalized.
func buildLessonPlanListQuery(params store.ListParams, where string, args []any) (string, []any) {
	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[store.SortByCreatedAt]
	}
	dir := "DESC"
	if params.SortDir == store.SortAsc {
		dir = "ASC"
	}

	out := make([]any, 0, len(args)+2)
	out = append(out, args...)
	out = append(out, params.PageSize, params.Offset())
	n := len(out)

	// id breaks ties so paging is stable.
	query := fmt.Sprintf(`SELECT %s FROM lesson_plans%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		lessonPlanColumns, where, column, dir, dir, n-1, n)
	return query, out
}

// escapeLike escapes the LIKE wildcards so search text matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLessonPlan(row rowScanner) (*domain.LessonPlan, error) {
	var p domain.LessonPlan
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Module,
		&p.Grade,
		&p.Lesson,
		&p.StartUp,
		&p.Practice,
		&p.Apply,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
