package task

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/deck"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuilder struct {
	result   deck.Result
	registry *deck.ProgressRegistry
	deckID   uuid.UUID
	// tracked records whether the deck's progress was visible during Build.
	tracked bool
	gotIn   domain.LessonInput
	block   bool
}

func (b *fakeBuilder) NewProgress() *deck.Progress {
	return deck.NewProgress(0, 0)
}

func (b *fakeBuilder) Build(ctx context.Context, in domain.LessonInput, _ *deck.Progress) deck.Result {
	b.gotIn = in
	if b.registry != nil {
		_, b.tracked = b.registry.Value(b.deckID)
	}
	if b.block {
		<-ctx.Done()
		return deck.Result{Content: domain.ErrorContent(), Images: domain.NewImageMap(), Err: ctx.Err()}
	}
	return b.result
}

type fakePlans struct {
	plans map[uuid.UUID]*domain.LessonPlan
}

func (f *fakePlans) GetByID(_ context.Context, id uuid.UUID) (*domain.LessonPlan, error) {
	if p, ok := f.plans[id]; ok {
		return p, nil
	}
	return nil, store.ErrLessonPlanNotFound
}

type fakeDecks struct {
	mu      sync.Mutex
	decks   map[uuid.UUID]domain.Deck
	updates []domain.DeckStatus
}

func (f *fakeDecks) GetByID(_ context.Context, id uuid.UUID) (*domain.Deck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return &d, nil
}

func (f *fakeDecks) Update(_ context.Context, d *domain.Deck) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decks[d.ID] = *d
	f.updates = append(f.updates, d.Status)
	return nil
}

func (f *fakeDecks) get(id uuid.UUID) domain.Deck {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decks[id]
}

type generationFixture struct {
	plan     *domain.LessonPlan
	deck     *domain.Deck
	plans    *fakePlans
	decks    *fakeDecks
	builder  *fakeBuilder
	registry *deck.ProgressRegistry
	factory  *DeckGenerationTaskFactory
}

func newGenerationFixture(t *testing.T, result deck.Result) *generationFixture {
	t.Helper()

	plan, err := domain.NewLessonPlan(uuid.New(), 3, "Toán", "Phân số", "Đếm", "Tô màu", "Chia bánh")
	require.NoError(t, err)
	d, err := domain.NewDeck(plan.UserID, plan.ID)
	require.NoError(t, err)

	registry := deck.NewProgressRegistry()
	fx := &generationFixture{
		plan:     plan,
		deck:     d,
		plans:    &fakePlans{plans: map[uuid.UUID]*domain.LessonPlan{plan.ID: plan}},
		decks:    &fakeDecks{decks: map[uuid.UUID]domain.Deck{d.ID: *d}},
		builder:  &fakeBuilder{result: result, registry: registry, deckID: d.ID},
		registry: registry,
	}
	fx.factory, err = NewDeckGenerationTaskFactory(fx.builder, fx.plans, fx.decks, registry, discardLogger())
	require.NoError(t, err)
	return fx
}

func completedResult() deck.Result {
	content := domain.NewAnalyzedContent()
	images := domain.NewImageMap()
	for _, k := range domain.SlideKeys() {
		content[k] = "nội dung " + string(k)
		images[k] = "data:image/png;base64,AAAA"
	}
	return deck.Result{Content: content, Images: images}
}

func TestDeckGenerationTask_Execute(t *testing.T) {
	t.Parallel()

	t.Run("stores generated deck", func(t *testing.T) {
		t.Parallel()
		fx := newGenerationFixture(t, completedResult())
		task, err := fx.factory.CreateTask(fx.deck.ID)
		require.NoError(t, err)

		require.NoError(t, task.Execute(context.Background()))

		got := fx.decks.get(fx.deck.ID)
		assert.Equal(t, domain.DeckStatusCompleted, got.Status)
		assert.Equal(t, "nội dung lesson", got.Content[domain.SlideKeyLesson])
		assert.Empty(t, got.ErrorMessage)
		assert.Equal(t, []domain.DeckStatus{domain.DeckStatusProcessing, domain.DeckStatusCompleted}, fx.decks.updates)
		assert.Equal(t, fx.plan.Input(), fx.builder.gotIn)

		assert.True(t, fx.builder.tracked, "progress must be tracked while building")
		_, tracked := fx.registry.Value(fx.deck.ID)
		assert.False(t, tracked, "progress must be forgotten afterwards")
	})

	t.Run("partial image failure completes with errors", func(t *testing.T) {
		t.Parallel()
		result := completedResult()
		result.Images[domain.SlideKeyGameIdea] = domain.ImageErrorMarker
		fx := newGenerationFixture(t, result)
		task, err := fx.factory.CreateTask(fx.deck.ID)
		require.NoError(t, err)

		require.NoError(t, task.Execute(context.Background()))
		assert.Equal(t, domain.DeckStatusCompletedWithErrors, fx.decks.get(fx.deck.ID).Status)
	})

	t.Run("content failure fails task and deck", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("rate limit exhausted after 3 attempts")
		fx := newGenerationFixture(t, deck.Result{
			Content: domain.ErrorContent(),
			Images:  domain.NewImageMap(),
			Err:     cause,
		})
		task, err := fx.factory.CreateTask(fx.deck.ID)
		require.NoError(t, err)

		err = task.Execute(context.Background())
		assert.ErrorIs(t, err, cause)

		got := fx.decks.get(fx.deck.ID)
		assert.Equal(t, domain.DeckStatusFailed, got.Status)
		assert.Contains(t, got.ErrorMessage, "content generation failed")
		assert.True(t, got.Content.IsError(domain.SlideKeyPractice))
	})

	t.Run("missing lesson plan fails deck", func(t *testing.T) {
		t.Parallel()
		fx := newGenerationFixture(t, completedResult())
		delete(fx.plans.plans, fx.plan.ID)
		task, err := fx.factory.CreateTask(fx.deck.ID)
		require.NoError(t, err)

		err = task.Execute(context.Background())
		assert.ErrorIs(t, err, store.ErrLessonPlanNotFound)
		assert.Equal(t, domain.DeckStatusFailed, fx.decks.get(fx.deck.ID).Status)
	})

	t.Run("missing deck", func(t *testing.T) {
		t.Parallel()
		fx := newGenerationFixture(t, completedResult())
		task, err := fx.factory.CreateTask(uuid.New())
		require.NoError(t, err)

		assert.ErrorIs(t, task.Execute(context.Background()), store.ErrDeckNotFound)
	})

	t.Run("cancellation leaves deck processing", func(t *testing.T) {
		t.Parallel()
		fx := newGenerationFixture(t, completedResult())
		fx.builder.block = true
		task, err := fx.factory.CreateTask(fx.deck.ID)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- task.Execute(ctx) }()

		assert.Eventually(t, func() bool {
			return fx.decks.get(fx.deck.ID).Status == domain.DeckStatusProcessing
		}, waitFor, tick)
		cancel()

		assert.ErrorIs(t, <-done, context.Canceled)
		assert.Equal(t, domain.DeckStatusProcessing, fx.decks.get(fx.deck.ID).Status)
	})
}

func TestDeckGenerationTaskFactory(t *testing.T) {
	t.Parallel()

	fx := newGenerationFixture(t, completedResult())

	t.Run("rehydrates stored task", func(t *testing.T) {
		t.Parallel()
		created, err := fx.factory.CreateTask(fx.deck.ID)
		require.NoError(t, err)

		reg := NewRegistry()
		fx.factory.Register(reg)
		rebuilt, err := reg.Rehydrate(Record{
			ID:      created.ID(),
			Type:    created.Type(),
			Payload: created.Payload(),
		})
		require.NoError(t, err)

		assert.Equal(t, created.ID(), rebuilt.ID())
		assert.Equal(t, fx.deck.ID, rebuilt.(*DeckGenerationTask).DeckID())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		t.Parallel()
		_, err := fx.factory.CreateTask(uuid.Nil)
		assert.ErrorIs(t, err, ErrEmptyDeckID)

		_, err = fx.factory.Rehydrate(Record{ID: uuid.New(), Type: TaskTypeDeckGeneration})
		assert.ErrorIs(t, err, ErrEmptyPayload)

		_, err = fx.factory.Rehydrate(Record{ID: uuid.New(), Payload: []byte("not json")})
		assert.Error(t, err)
	})

	t.Run("validates dependencies", func(t *testing.T) {
		t.Parallel()
		_, err := NewDeckGenerationTaskFactory(nil, fx.plans, fx.decks, nil, discardLogger())
		assert.ErrorIs(t, err, ErrNilBuilder)
		_, err = NewDeckGenerationTaskFactory(fx.builder, nil, fx.decks, nil, discardLogger())
		assert.ErrorIs(t, err, ErrNilStore)
		_, err = NewDeckGenerationTaskFactory(fx.builder, fx.plans, fx.decks, nil, nil)
		assert.ErrorIs(t, err, ErrNilLogger)
	})
}
