package activity

import "testing"

func TestBuildStateUpdatedEvent(t *testing.T) {
	event := BuildStateUpdatedEvent(StoreEventInput{
		Scope:     "Global",
		Instance:  "inst-1",
		Key:       "foo",
		OldValue:  "Hi",
		NewValue:  123,
		Listeners: 2,
		Metadata:  map[string]any{"source": "test"},
	})

	if event.Verb != VerbStateUpdated || event.ObjectType != ObjectTypeState || event.ObjectID != "Global/foo" {
		t.Fatalf("unexpected event identity: %+v", event)
	}
	want := map[string]any{
		"source":    "test",
		"scope":     "Global",
		"instance":  "inst-1",
		"key":       "foo",
		"old_value": "Hi",
		"new_value": 123,
		"listeners": 2,
	}
	for key, value := range want {
		if event.Metadata[key] != value {
			t.Fatalf("metadata %q: want %v got %v", key, value, event.Metadata[key])
		}
	}
}

func TestBuildScopeEventsCopyParents(t *testing.T) {
	parents := []string{"Global"}
	entered := BuildScopeEnteredEvent(StoreEventInput{Scope: "A", Parents: parents})
	if entered.Verb != VerbScopeEntered || entered.ObjectID != "A" {
		t.Fatalf("unexpected entered event: %+v", entered)
	}
	parents[0] = "mutated"
	got := entered.Metadata["parents"].([]string)
	if got[0] != "Global" {
		t.Fatalf("expected parents copied, got %v", got)
	}

	exited := BuildScopeExitedEvent(StoreEventInput{Scope: "A"})
	if exited.Verb != VerbScopeExited || exited.ObjectType != ObjectTypeScope || !exited.Valid() {
		t.Fatalf("unexpected exited event: %+v", exited)
	}
}

func TestBuildEventWithoutScopeIsInvalid(t *testing.T) {
	if BuildScopeEnteredEvent(StoreEventInput{}).Valid() {
		t.Fatalf("event without scope should not be valid")
	}
}
