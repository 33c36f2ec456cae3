package notices

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds the visible notices keyed by identity. A repeated message refreshes its
// notice instead of adding a new one.
type Registry struct {
	mu      sync.Mutex
	notices map[string]*Notice
	timeout time.Duration
	now     func() time.Time
	forward func(Notice)
}

func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Registry{
		notices: make(map[string]*Notice),
		timeout: timeout,
		now:     time.Now,
	}
}

// OnNew registers a hook called for every newly added notice. Refreshes are not forwarded.
func (r *Registry) OnNew(forward func(Notice)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.forward = forward
}

// Notify adds a notice and returns its identity.
func (r *Registry) Notify(level Level, title, message string, force bool) string {
	r.mu.Lock()

	id := message
	if force {
		id = uuid.NewString()
	}

	now := r.now()
	if n, ok := r.notices[id]; ok {
		n.Created = now
		r.mu.Unlock()
		return id
	}

	n := Notice{
		ID:      id,
		Level:   level,
		Title:   title,
		Message: message,
		Created: now,
		Forced:  force,
	}
	r.notices[id] = &n
	forward := r.forward
	r.mu.Unlock()

	slog.Info("notice", "level", level, "title", title, "message", message)

	if forward != nil {
		forward(n)
	}

	return id
}

// Expire removes every notice older than the timeout and returns how many were removed.
func (r *Registry) Expire(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, n := range r.notices {
		if now.Sub(n.Created) > r.timeout {
			delete(r.notices, id)
			removed++
		}
	}

	return removed
}

// Sweep expires against the registry clock.
func (r *Registry) Sweep() int {
	return r.Expire(r.now())
}

// List returns the visible notices, oldest first.
func (r *Registry) List() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]Notice, 0, len(r.notices))
	for _, n := range r.notices {
		list = append(list, *n)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Created.Equal(list[j].Created) {
			return list[i].ID < list[j].ID
		}
		return list[i].Created.Before(list[j].Created)
	})

	return list
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.notices)
}
