package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/render"
	"github.com/phrazzld/lessondeck/internal/service"
	"github.com/phrazzld/lessondeck/internal/store"
	"github.com/stretchr/testify/mock"
)

type MockLessonPlanService struct {
	mock.Mock
}

func (m *MockLessonPlanService) CreateLessonPlan(
	ctx context.Context,
	userID uuid.UUID,
	in service.CreateLessonPlanInput,
) (*domain.LessonPlan, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LessonPlan), args.Error(1)
}

func (m *MockLessonPlanService) GetLessonPlan(ctx context.Context, id uuid.UUID) (*domain.LessonPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LessonPlan), args.Error(1)
}

func (m *MockLessonPlanService) ListLessonPlans(ctx context.Context, params store.ListParams) (*store.LessonPlanPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.LessonPlanPage), args.Error(1)
}

func (m *MockLessonPlanService) ExportLessonPlanPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type MockDeckService struct {
	mock.Mock
}

func (m *MockDeckService) CreateDeck(ctx context.Context, userID, lessonPlanID uuid.UUID) (*domain.Deck, error) {
	args := m.Called(ctx, userID, lessonPlanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deck), args.Error(1)
}

func (m *MockDeckService) GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*service.DeckStatusView, error) {
	args := m.Called(ctx, userID, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeckStatusView), args.Error(1)
}

func (m *MockDeckService) GetSlide(ctx context.Context, userID, deckID uuid.UUID, index int) (render.SlideView, error) {
	args := m.Called(ctx, userID, deckID, index)
	v, _ := args.Get(0).(render.SlideView)
	return v, args.Error(1)
}

func (m *MockDeckService) ExportDeckPDF(ctx context.Context, userID, deckID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, userID, deckID)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockDeckService) ExportDeckDoc(ctx context.Context, userID, deckID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, userID, deckID)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }
