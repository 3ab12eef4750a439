package postgres

import (
	"testing"

	"github.com/phrazzld/lessondeck/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestBuildLessonPlanFilter(t *testing.T) {
	t.Parallel()

	t.Run("no filter", func(t *testing.T) {
		t.Parallel()
		where, args := buildLessonPlanFilter(store.ListParams{}.Normalize())
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("search and grade", func(t *testing.T) {
		t.Parallel()
		grade := 3
		params := store.ListParams{Search: "50%_off", Grade: &grade}.Normalize()

		where, args := buildLessonPlanFilter(params)

		assert.Equal(t, " WHERE (lesson ILIKE $1 OR module ILIKE $1) AND grade = $2", where)
		assert.Equal(t, []any{`%50\%\_off%`, 3}, args)
	})
}

func TestBuildLessonPlanListQuery(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		params := store.ListParams{}.Normalize()

		query, args := buildLessonPlanListQuery(params, "", nil)

		assert.Contains(t, query, "ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2")
		assert.Equal(t, []any{10, 0}, args)
	})

	t.Run("paging follows filter args", func(t *testing.T) {
		t.Parallel()
		params := store.ListParams{Page: 2, PageSize: 5, SortBy: "module", SortDir: "asc", Search: "toán"}.Normalize()
		where, filterArgs := buildLessonPlanFilter(params)

		query, args := buildLessonPlanListQuery(params, where, filterArgs)

		assert.Contains(t, query, "FROM lesson_plans WHERE (lesson ILIKE $1 OR module ILIKE $1)")
		assert.Contains(t, query, "ORDER BY module ASC, id ASC LIMIT $2 OFFSET $3")
		assert.Equal(t, []any{"%toán%", 5, 5}, args)
		assert.Len(t, filterArgs, 1, "filter args must not be mutated")
	})

	t.Run("unnormalized sort never reaches the query", func(t *testing.T) {
		t.Parallel()
		params := store.ListParams{Page: 1, PageSize: 10, SortBy: "grade; DROP TABLE decks"}

		query, _ := buildLessonPlanListQuery(params, "", nil)

		assert.NotContains(t, query, "DROP")
		assert.Contains(t, query, "ORDER BY created_at DESC")
	})
}

func TestNewStoresPanicOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresLessonPlanStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresDeckStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresTaskStore(nil, nil) })
}
