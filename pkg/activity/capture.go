package activity

import (
	"context"
	"sync"
)

// CaptureHook records store events for assertions in tests. A non-empty
// Scope keeps only events raised by that scope; Err is returned for every
// kept event.
type CaptureHook struct {
	Scope  string
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify records the event when it matches the scope filter.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	event = NormalizeEvent(event)
	if h.Scope != "" && EventScope(event) != h.Scope {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event)
	return h.Err
}

// Verbs returns the recorded verbs in order.
func (h *CaptureHook) Verbs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	verbs := make([]string, 0, len(h.Events))
	for _, event := range h.Events {
		verbs = append(verbs, event.Verb)
	}
	return verbs
}

// UpdatedKeys returns the keys of recorded state updates in order.
func (h *CaptureHook) UpdatedKeys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var keys []string
	for _, event := range h.Events {
		if event.Verb == VerbStateUpdated {
			keys = append(keys, EventKey(event))
		}
	}
	return keys
}
