package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/deck"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/store"
	"github.com/phrazzld/lessondeck/internal/task"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockLessonPlanStore mocks store.LessonPlanStore
type MockLessonPlanStore struct {
	mock.Mock
}

func (m *MockLessonPlanStore) Create(ctx context.Context, plan *domain.LessonPlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *MockLessonPlanStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LessonPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LessonPlan), args.Error(1)
}

func (m *MockLessonPlanStore) List(ctx context.Context, params store.ListParams) (*store.LessonPlanPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.LessonPlanPage), args.Error(1)
}

func (m *MockLessonPlanStore) WithTx(*sql.Tx) store.LessonPlanStore { return m }

// MockDeckStore mocks store.DeckStore
type MockDeckStore struct {
	mock.Mock
}

func (m *MockDeckStore) Create(ctx context.Context, d *domain.Deck) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deck), args.Error(1)
}

func (m *MockDeckStore) Update(ctx context.Context, d *domain.Deck) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDeckStore) WithTx(*sql.Tx) store.DeckStore { return m }

// MockTaskRunner mocks TaskRunner
type MockTaskRunner struct {
	mock.Mock
}

func (m *MockTaskRunner) Submit(ctx context.Context, t task.Task) error {
	return m.Called(ctx, t).Error(0)
}

// MockExporter mocks DeckExporter and LessonPlanExporter
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) DeckPDF(w io.Writer, d *domain.Deck) error {
	args := m.Called(w, d)
	_, _ = io.WriteString(w, "%PDF-deck")
	return args.Error(0)
}

func (m *MockExporter) DeckDoc(w io.Writer, d *domain.Deck) error {
	args := m.Called(w, d)
	_, _ = io.WriteString(w, "<html>deck</html>")
	return args.Error(0)
}

func (m *MockExporter) LessonPlanPDF(w io.Writer, p *domain.LessonPlan) error {
	args := m.Called(w, p)
	_, _ = io.WriteString(w, "%PDF-plan")
	return args.Error(0)
}

// idleBuilder satisfies task.DeckBuilder for factories whose tasks are never run.
type idleBuilder struct{}

func (idleBuilder) NewProgress() *deck.Progress { return deck.NewProgress(0, 0) }

func (idleBuilder) Build(context.Context, domain.LessonInput, *deck.Progress) deck.Result {
	return deck.Result{}
}
