package task

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	t.Parallel()

	t.Run("enqueue until full", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(1, discardLogger())

		require.NoError(t, q.Enqueue(newStubTask(nil)))
		err := q.Enqueue(newStubTask(nil))
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.Len(t, q.GetChannel(), 1)
	})

	t.Run("closed queue rejects tasks", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(2, discardLogger())
		q.Close()
		q.Close()

		assert.ErrorIs(t, q.Enqueue(newStubTask(nil)), ErrQueueClosed)
		_, ok := <-q.GetChannel()
		assert.False(t, ok)
	})

	t.Run("close races with enqueue", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(64, discardLogger())

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 8 {
					_ = q.Enqueue(newStubTask(nil))
				}
			}()
		}
		q.Close()
		wg.Wait()
	})
}
