package form

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"qc-console/internal/model"
)

// Registry holds in-progress drafts keyed by an opaque id, so a browser can
// drive one draft across several requests. Abandoned drafts are swept after
// a TTL; a swept draft simply requires starting the form again.
type Registry[T any] struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*entry[T]
}

type entry[T any] struct {
	draft   T
	touched time.Time
}

func NewRegistry[T any](ttl time.Duration) *Registry[T] {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}

	return &Registry[T]{ttl: ttl, entries: map[string]*entry[T]{}}
}

func (r *Registry[T]) Put(draft T) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.entries[id] = &entry[T]{draft: draft, touched: time.Now()}
	r.mu.Unlock()

	return id
}

// Get returns the draft and refreshes its TTL.
func (r *Registry[T]) Get(id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		var zero T
		return zero, model.ErrDraftNotFound
	}

	e.touched = time.Now()
	return e.draft, nil
}

func (r *Registry[T]) Remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

func (r *Registry[T]) sweep() int {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if e.touched.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}

	return removed
}

// StartSweeper prunes expired drafts until ctx is cancelled.
func (r *Registry[T]) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.sweep(); removed > 0 {
				slog.Info("swept expired drafts", "count", removed)
			}
		}
	}
}
