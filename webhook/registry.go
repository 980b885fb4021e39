package webhook

import (
	"context"
	"sort"
	"sync"
)

// Handler reacts to one event name. It receives a context carrying the
// dispatch deadline and must honor cancellation; it also must be idempotent,
// since the same event may be delivered more than once.
type Handler func(ctx context.Context, e Event) error

/* Registry maps event names to business handlers
 * Registration happens at process startup, before traffic; the mutex only
 * keeps introspection reads race-free against the dispatch path
 */
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to an event name; re-registration overwrites
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Unregister removes the handler bound to an event name
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// Lookup returns the handler for an event name, if any
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Len returns the number of registered handlers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Names returns the registered event names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
