package store

import (
	"context"

	"github.com/goliatone/go-scoped-store/internal/jsonvalue"
	"github.com/goliatone/go-scoped-store/pkg/activity"
)

func (s *Store) emitScopeEntered() {
	if !s.cfg.activity.Enabled() {
		return
	}
	s.emit(activity.BuildScopeEnteredEvent(activity.StoreEventInput{
		Scope:    s.id,
		Instance: s.instance,
		Parents:  s.parents(),
	}), "")
}

func (s *Store) emitScopeExited() {
	if !s.cfg.activity.Enabled() {
		return
	}
	s.emit(activity.BuildScopeExitedEvent(activity.StoreEventInput{
		Scope:    s.id,
		Instance: s.instance,
	}), "")
}

func (s *Store) emitStateUpdated(key string, prev, next Value, listeners int) {
	if !s.cfg.activity.Enabled() {
		return
	}
	s.emit(activity.BuildStateUpdatedEvent(activity.StoreEventInput{
		Scope:     s.id,
		Instance:  s.instance,
		Key:       key,
		OldValue:  jsonvalue.Clone(prev),
		NewValue:  jsonvalue.Clone(next),
		Listeners: listeners,
	}), key)
}

// emit reports hook failures through the logger; they never fail the store
// operation that produced the event.
func (s *Store) emit(event activity.Event, key string) {
	if err := s.cfg.activity.Emit(context.Background(), event); err != nil {
		s.cfg.logger.LogEvent(LogEvent{Op: OpActivity, Scope: s.id, Key: key, Err: err})
	}
}
