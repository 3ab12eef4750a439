package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/store"
)

// CreateLessonPlanInput holds the fields of a new lesson plan.
type CreateLessonPlanInput struct {
	Module   string
	Grade    int
	Lesson   string
	StartUp  string
	Practice string
	Apply    string
}

// LessonPlanExporter renders a lesson plan document.
type LessonPlanExporter interface {
	LessonPlanPDF(w io.Writer, p *domain.LessonPlan) error
}

// LessonPlanService provides lesson plan operations.
type LessonPlanService interface {
	// CreateLessonPlan validates and stores a new plan owned by userID.
	CreateLessonPlan(ctx context.Context, userID uuid.UUID, in CreateLessonPlanInput) (*domain.LessonPlan, error)

	// GetLessonPlan retrieves a plan by its ID.
	GetLessonPlan(ctx context.Context, id uuid.UUID) (*domain.LessonPlan, error)

	// ListLessonPlans returns one page of plans.
	ListLessonPlans(ctx context.Context, params store.ListParams) (*store.LessonPlanPage, error)

	// ExportLessonPlanPDF renders the plan's field listing as a PDF.
	ExportLessonPlanPDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type lessonPlanServiceImpl struct {
	plans    store.LessonPlanStore
	exporter LessonPlanExporter
	logger   *slog.Logger
}

// NewLessonPlanService creates a LessonPlanService.
// It returns an error if any of the required dependencies are nil.
func NewLessonPlanService(
	plans store.LessonPlanStore,
	exporter LessonPlanExporter,
	logger *slog.Logger,
) (LessonPlanService, error) {
	if plans == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "plans cannot be nil"}
	}
	if exporter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "exporter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &lessonPlanServiceImpl{
		plans:    plans,
		exporter: exporter,
		logger:   logger.With("component", "lesson_plan_service"),
	}, nil
}

func (s *lessonPlanServiceImpl) CreateLessonPlan(
	ctx context.Context,
	userID uuid.UUID,
	in CreateLessonPlanInput,
) (*domain.LessonPlan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	plan, err := domain.NewLessonPlan(userID, in.Grade, in.Module, in.Lesson, in.StartUp, in.Practice, in.Apply)
	if err != nil {
		log.Debug("lesson plan rejected", "error", err, "user_id", userID)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		log.Error("failed to save lesson plan", "error", err, "lesson_plan_id", plan.ID)
		return nil, NewServiceError("create_lesson_plan", "failed to save lesson plan", err)
	}

	return plan, nil
}

func (s *lessonPlanServiceImpl) GetLessonPlan(ctx context.Context, id uuid.UUID) (*domain.LessonPlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_lesson_plan", "failed to retrieve lesson plan", err)
	}
	return plan, nil
}

func (s *lessonPlanServiceImpl) ListLessonPlans(
	ctx context.Context,
	params store.ListParams,
) (*store.LessonPlanPage, error) {
	page, err := s.plans.List(ctx, params.Normalize())
	if err != nil {
		return nil, NewServiceError("list_lesson_plans", "failed to list lesson plans", err)
	}
	return page, nil
}

func (s *lessonPlanServiceImpl) ExportLessonPlanPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	plan, err := s.GetLessonPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.exporter.LessonPlanPDF(&buf, plan); err != nil {
		log.Error("failed to render lesson plan pdf", "error", err, "lesson_plan_id", id)
		return nil, NewServiceError("export_lesson_plan", "failed to render pdf", err)
	}
	return buf.Bytes(), nil
}
