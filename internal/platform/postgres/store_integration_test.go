//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/platform/postgres"
	"github.com/phrazzld/lessondeck/internal/store"
	"github.com/phrazzld/lessondeck/internal/task"
	"github.com/phrazzld/lessondeck/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlan(t *testing.T, grade int, lesson, module string) *domain.LessonPlan {
	t.Helper()
	plan, err := domain.NewLessonPlan(uuid.New(), grade, module, lesson, "khởi động", "luyện tập", "vận dụng")
	require.NoError(t, err)
	return plan
}

func TestLessonPlanStore_Integration(t *testing.T) {
	testdb.WithTx(t, testdb.Open(t), func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		plans := postgres.NewPostgresLessonPlanStore(tx, nil)

		fractions := newPlan(t, 3, "Phân số", "Toán")
		shapes := newPlan(t, 3, "Hình tròn", "Toán")
		reading := newPlan(t, 4, "Đọc hiểu", "Tiếng Việt")
		for _, p := range []*domain.LessonPlan{fractions, shapes, reading} {
			require.NoError(t, plans.Create(ctx, p))
		}

		got, err := plans.GetByID(ctx, fractions.ID)
		require.NoError(t, err)
		assert.Equal(t, fractions.Lesson, got.Lesson)
		assert.Equal(t, fractions.Apply, got.Apply)

		_, err = plans.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrLessonPlanNotFound)

		grade := 3
		page, err := plans.List(ctx, store.ListParams{Grade: &grade, SortBy: store.SortByLesson, SortDir: store.SortAsc})
		require.NoError(t, err)
		require.GreaterOrEqual(t, page.Total, 2)
		assert.Equal(t, 1, page.Page)

		page, err = plans.List(ctx, store.ListParams{Search: "phân"})
		require.NoError(t, err)
		require.NotEmpty(t, page.Items)
		for _, item := range page.Items {
			assert.Contains(t, []string{"Phân số"}, item.Lesson)
		}
	})
}

func TestDeckStore_Integration(t *testing.T) {
	testdb.WithTx(t, testdb.Open(t), func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		plans := postgres.NewPostgresLessonPlanStore(tx, nil)
		decks := postgres.NewPostgresDeckStore(tx, nil)

		plan := newPlan(t, 2, "Phép cộng", "Toán")
		require.NoError(t, plans.Create(ctx, plan))

		d, err := domain.NewDeck(plan.UserID, plan.ID)
		require.NoError(t, err)
		require.NoError(t, decks.Create(ctx, d))

		d.Content[domain.SlideKeyLesson] = "Phép cộng"
		d.Images[domain.SlideKeyLesson] = domain.ImageErrorMarker
		require.NoError(t, d.UpdateStatus(domain.DeckStatusCompletedWithErrors))
		require.NoError(t, decks.Update(ctx, d))

		got, err := decks.GetByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DeckStatusCompletedWithErrors, got.Status)
		assert.Equal(t, "Phép cộng", got.Content[domain.SlideKeyLesson])
		assert.Equal(t, domain.ImageStateError, got.Images.State(domain.SlideKeyLesson))
		assert.Len(t, got.Content, len(domain.SlideKeys()))

		missing, err := domain.NewDeck(plan.UserID, plan.ID)
		require.NoError(t, err)
		assert.ErrorIs(t, decks.Update(ctx, missing), store.ErrDeckNotFound)

		// The foreign key violation aborts the transaction, so this goes last.
		orphan, err := domain.NewDeck(plan.UserID, uuid.New())
		require.NoError(t, err)
		assert.ErrorIs(t, decks.Create(ctx, orphan), store.ErrInvalidEntity)
	})
}

type storedTask struct {
	id      uuid.UUID
	payload []byte
}

func (s storedTask) ID() uuid.UUID                 { return s.id }
func (s storedTask) Type() string                  { return task.TaskTypeDeckGeneration }
func (s storedTask) Payload() []byte               { return s.payload }
func (s storedTask) Status() task.TaskStatus       { return task.TaskStatusPending }
func (s storedTask) Execute(context.Context) error { return nil }

func TestTaskStore_Integration(t *testing.T) {
	testdb.WithTx(t, testdb.Open(t), func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		tasks := postgres.NewPostgresTaskStore(tx, nil)

		payload, err := json.Marshal(map[string]string{"deck_id": uuid.NewString()})
		require.NoError(t, err)
		st := storedTask{id: uuid.New(), payload: payload}
		require.NoError(t, tasks.SaveTask(ctx, st))

		pending, err := tasks.GetPendingTasks(ctx)
		require.NoError(t, err)
		assert.True(t, containsRecord(pending, st.id))

		require.NoError(t, tasks.UpdateTaskStatus(ctx, st.id, task.TaskStatusProcessing, ""))

		processing, err := tasks.GetProcessingTasks(ctx, 0)
		require.NoError(t, err)
		assert.True(t, containsRecord(processing, st.id))

		stuck, err := tasks.GetProcessingTasks(ctx, time.Hour)
		require.NoError(t, err)
		assert.False(t, containsRecord(stuck, st.id))

		err = tasks.UpdateTaskStatus(ctx, uuid.New(), task.TaskStatusFailed, "gone")
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func containsRecord(recs []task.Record, id uuid.UUID) bool {
	for _, r := range recs {
		if r.ID == id {
			return true
		}
	}
	return false
}
