package activity

import (
	"strings"
	"time"
)

const (
	VerbScopeEntered = "store.scope.entered"
	VerbScopeExited  = "store.scope.exited"
	VerbStateUpdated = "store.state.updated"

	ObjectTypeScope = "store.scope"
	ObjectTypeState = "store.state"
)

// StoreEventInput carries the fields shared by store events.
type StoreEventInput struct {
	Scope      string
	Instance   string
	Parents    []string
	Key        string
	OldValue   any
	NewValue   any
	Listeners  int
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildScopeEnteredEvent describes a scope being entered.
func BuildScopeEnteredEvent(input StoreEventInput) Event {
	event := buildStoreEvent(VerbScopeEntered, ObjectTypeScope, input)
	if len(input.Parents) > 0 {
		event.Metadata = ensureMetadata(event.Metadata)
		event.Metadata["parents"] = append([]string{}, input.Parents...)
	}
	return event
}

// BuildScopeExitedEvent describes a scope being exited.
func BuildScopeExitedEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbScopeExited, ObjectTypeScope, input)
}

// BuildStateUpdatedEvent describes a write to one key. The object id is
// "<scope>/<key>".
func BuildStateUpdatedEvent(input StoreEventInput) Event {
	event := buildStoreEvent(VerbStateUpdated, ObjectTypeState, input)
	event.Metadata = ensureMetadata(event.Metadata)
	event.Metadata["key"] = input.Key
	event.Metadata["old_value"] = input.OldValue
	event.Metadata["new_value"] = input.NewValue
	event.Metadata["listeners"] = input.Listeners
	return event
}

func buildStoreEvent(verb, objectType string, input StoreEventInput) Event {
	metadata := cloneMap(input.Metadata)
	scope := strings.TrimSpace(input.Scope)
	if scope != "" {
		metadata = ensureMetadata(metadata)
		metadata["scope"] = scope
	}
	if instance := strings.TrimSpace(input.Instance); instance != "" {
		metadata = ensureMetadata(metadata)
		metadata["instance"] = instance
	}

	objectID := scope
	if objectType == ObjectTypeState {
		objectID = scope + "/" + strings.TrimSpace(input.Key)
	}

	return Event{
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}

// EventScope returns the scope id recorded on a store event.
func EventScope(event Event) string {
	scope, _ := event.Metadata["scope"].(string)
	return scope
}

// EventKey returns the key of a state update event.
func EventKey(event Event) string {
	key, _ := event.Metadata["key"].(string)
	return key
}
