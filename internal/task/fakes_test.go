package task

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/goleak"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryStore is an in-memory TaskStore.
type memoryStore struct {
	mu       sync.Mutex
	records  map[uuid.UUID]*Record
	history  map[uuid.UUID][]TaskStatus
	saveErr  error
	queryErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		records: make(map[uuid.UUID]*Record),
		history: make(map[uuid.UUID][]TaskStatus),
	}
}

func (s *memoryStore) SaveTask(_ context.Context, t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	now := time.Now().UTC()
	s.records[t.ID()] = &Record{
		ID:        t.ID(),
		Type:      t.Type(),
		Payload:   t.Payload(),
		Status:    t.Status(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.history[t.ID()] = append(s.history[t.ID()], t.Status())
	return nil
}

// put stores rec directly, as if left behind by an earlier run.
func (s *memoryStore) put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = &rec
}

func (s *memoryStore) UpdateTaskStatus(_ context.Context, id uuid.UUID, status TaskStatus, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return errors.New("task not found")
	}
	rec.Status = status
	rec.ErrorMessage = msg
	rec.UpdatedAt = time.Now().UTC()
	s.history[id] = append(s.history[id], status)
	return nil
}

func (s *memoryStore) GetPendingTasks(context.Context) ([]Record, error) {
	return s.byStatus(TaskStatusPending, 0)
}

func (s *memoryStore) GetProcessingTasks(_ context.Context, olderThan time.Duration) ([]Record, error) {
	return s.byStatus(TaskStatusProcessing, olderThan)
}

func (s *memoryStore) WithTx(*sql.Tx) TaskStore { return s }

func (s *memoryStore) byStatus(status TaskStatus, olderThan time.Duration) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	var out []Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && !rec.UpdatedAt.Before(cutoff) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (s *memoryStore) status(id uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		return rec.Status
	}
	return ""
}

func (s *memoryStore) historyOf(id uuid.UUID) []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TaskStatus(nil), s.history[id]...)
}

func (s *memoryStore) message(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		return rec.ErrorMessage
	}
	return ""
}

// stubTask runs fn on Execute.
type stubTask struct {
	id    uuid.UUID
	fn    func(ctx context.Context) error
	calls chan struct{}
}

func newStubTask(fn func(ctx context.Context) error) *stubTask {
	return &stubTask{id: uuid.New(), fn: fn, calls: make(chan struct{}, 8)}
}

func (t *stubTask) ID() uuid.UUID       { return t.id }
func (t *stubTask) Type() string        { return "stub" }
func (t *stubTask) Payload() []byte     { return []byte(`{}`) }
func (t *stubTask) Status() TaskStatus  { return TaskStatusPending }
func (t *stubTask) Execute(ctx context.Context) error {
	t.calls <- struct{}{}
	if t.fn == nil {
		return nil
	}
	return t.fn(ctx)
}
