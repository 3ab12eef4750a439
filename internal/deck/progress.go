package deck

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Progress bounds
const (
	ProgressCeiling  = 95
	ProgressComplete = 100
)

// Progress is a simulated progress counter. A ticker advances it by a fixed
// step until it reaches ProgressCeiling; only Complete moves it to 100.
// All methods are safe for concurrent use.
type Progress struct {
	value    atomic.Int32
	interval time.Duration
	step     int32

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

// NewProgress creates a stopped counter at 0.
func NewProgress(interval time.Duration, step int) *Progress {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if step <= 0 {
		step = 5
	}
	return &Progress{
		interval: interval,
		step:     int32(step),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker. Calling it more than once, or after Stop, has no
// effect.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	go p.run()
}

func (p *Progress) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.advance()
		}
	}
}

func (p *Progress) advance() {
	for {
		cur := p.value.Load()
		if cur >= ProgressCeiling {
			return
		}
		next := min(cur+p.step, ProgressCeiling)
		if p.value.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Value returns the current percentage.
func (p *Progress) Value() int {
	return int(p.value.Load())
}

// Reset moves the counter back to 0 unless it has completed. The retry
// controller calls it while waiting out a rate limit.
func (p *Progress) Reset() {
	for {
		cur := p.value.Load()
		if cur >= ProgressComplete {
			return
		}
		if p.value.CompareAndSwap(cur, 0) {
			return
		}
	}
}

// Complete stops the ticker and forces the counter to 100.
func (p *Progress) Complete() {
	p.Stop()
	p.value.Store(ProgressComplete)
}

// Stop halts the ticker and waits for it to exit. The value is kept.
func (p *Progress) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.stop)
	}
	started := p.started
	p.mu.Unlock()

	if started {
		<-p.done
	}
}

// ProgressRegistry tracks the counters of in-flight decks so the API can poll
// them.
type ProgressRegistry struct {
	mu    sync.RWMutex
	decks map[uuid.UUID]*Progress
}

// NewProgressRegistry creates an empty registry.
func NewProgressRegistry() *ProgressRegistry {
	return &ProgressRegistry{decks: make(map[uuid.UUID]*Progress)}
}

// Track registers p for deckID, replacing any previous counter.
func (r *ProgressRegistry) Track(deckID uuid.UUID, p *Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decks[deckID] = p
}

// Forget removes the counter for deckID.
func (r *ProgressRegistry) Forget(deckID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.decks, deckID)
}

// Value returns the progress of deckID and whether it is tracked.
func (r *ProgressRegistry) Value(deckID uuid.UUID) (int, bool) {
	r.mu.RLock()
	p, ok := r.decks[deckID]
	r.mu.RUnlock()
	if !ok {
		return 0, false
	}
	return p.Value(), true
}
