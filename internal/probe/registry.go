package probe

import (
	"sync"
	"time"

	"weatherbtc/internal/source"
)

// Status is the last observed health of one upstream source. The registry
// holds only health facts, never fetched weather or price values.
type Status struct {
	Source    string      `json:"source"`
	Domain    string      `json:"domain"`
	Healthy   bool        `json:"healthy"`
	Kind      source.Kind `json:"kind,omitempty"`
	Message   string      `json:"message,omitempty"`
	ElapsedMS int64       `json:"elapsed_ms"`
	CheckedAt time.Time   `json:"checked_at"`
}

// Registry is a concurrency-safe in-memory view of source health. Entries
// are listed in the order they were first recorded, which follows the
// configured priority order.
type Registry struct {
	mu       sync.RWMutex
	statuses map[string]Status
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{
		statuses: make(map[string]Status),
	}
}

func key(domain, src string) string {
	return domain + ":" + src
}

// Set records the latest probe outcome for a source.
func (r *Registry) Set(st Status) {
	k := key(st.Domain, st.Source)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.statuses[k]; !seen {
		r.order = append(r.order, k)
	}
	r.statuses[k] = st
}

// All returns every recorded status in first-seen order.
func (r *Registry) All() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Status, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.statuses[k])
	}
	return out
}

// Get returns the status of one source, if it has been probed.
func (r *Registry) Get(domain, src string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.statuses[key(domain, src)]
	return st, ok
}
