package store_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/phrazzld/lessondeck/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestListParamsNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   store.ListParams
		want store.ListParams
	}{
		{
			name: "zero value gets defaults",
			in:   store.ListParams{},
			want: store.ListParams{Page: 1, PageSize: 10, SortBy: store.SortByCreatedAt, SortDir: store.SortDesc},
		},
		{
			name: "page size is clamped",
			in:   store.ListParams{Page: 3, PageSize: 1000},
			want: store.ListParams{Page: 3, PageSize: 100, SortBy: store.SortByCreatedAt, SortDir: store.SortDesc},
		},
		{
			name: "huge page is clamped",
			in:   store.ListParams{Page: math.MaxInt / 100, PageSize: 100},
			want: store.ListParams{Page: store.MaxPage, PageSize: 100, SortBy: store.SortByCreatedAt, SortDir: store.SortDesc},
		},
		{
			name: "unknown sort column falls back",
			in:   store.ListParams{SortBy: "id; DROP TABLE decks", SortDir: "sideways"},
			want: store.ListParams{Page: 1, PageSize: 10, SortBy: store.SortByCreatedAt, SortDir: store.SortDesc},
		},
		{
			name: "sort is case insensitive",
			in:   store.ListParams{SortBy: "Lesson", SortDir: "ASC", Search: "  phân số "},
			want: store.ListParams{Page: 1, PageSize: 10, Search: "phân số", SortBy: store.SortByLesson, SortDir: store.SortAsc},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestListParamsOffset(t *testing.T) {
	t.Parallel()

	p := store.ListParams{Page: 3, PageSize: 20}.Normalize()
	assert.Equal(t, 40, p.Offset())

	last := store.ListParams{Page: math.MaxInt, PageSize: math.MaxInt}.Normalize()
	assert.Positive(t, last.Offset())
	assert.LessOrEqual(t, last.Offset(), math.MaxInt32)
}

func TestNotFoundErrors(t *testing.T) {
	t.Parallel()

	for _, err := range []error{store.ErrLessonPlanNotFound, store.ErrDeckNotFound, store.ErrTaskNotFound} {
		wrapped := fmt.Errorf("lookup: %w", err)
		assert.True(t, store.IsNotFoundError(wrapped), err.Error())
		assert.False(t, store.IsDuplicateError(wrapped))
	}
	assert.False(t, store.IsNotFoundError(errors.New("boom")))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := store.NewStoreError("deck", "update", "write failed", cause)

	assert.Equal(t, "update operation on deck failed: write failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := store.NewStoreError("deck", "create", "invalid", nil)
	assert.Equal(t, "create operation on deck failed: invalid", bare.Error())
}
