package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-scoped-store/pkg/activity"
)

func TestActivityHooksReceiveLifecycleAndWrites(t *testing.T) {
	capture := &activity.CaptureHook{}

	root, err := Bootstrap("Global", State{"foo": "Hi"}, WithActivityHooks(nil, capture))
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	child, err := EnterScope(root, "A", State{"bar": "Hello"})
	if err != nil {
		t.Fatalf("enter: %v", err)
	}
	if err := child.SetState("bar", "Bye"); err != nil {
		t.Fatalf("set: %v", err)
	}
	child.Close()

	want := []string{
		activity.VerbScopeEntered,
		activity.VerbScopeEntered,
		activity.VerbStateUpdated,
		activity.VerbScopeExited,
	}
	if got := capture.Verbs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("verbs = %v, want %v", got, want)
	}

	entered := capture.Events[1]
	if entered.ObjectID != "A" || entered.Channel != activity.DefaultChannel {
		t.Fatalf("unexpected entered event: %+v", entered)
	}
	if parents, _ := entered.Metadata["parents"].([]string); !reflect.DeepEqual(parents, []string{"Global"}) {
		t.Fatalf("expected parents [Global], got %v", entered.Metadata["parents"])
	}

	updated := capture.Events[2]
	if updated.ObjectID != "A/bar" || updated.Metadata["old_value"] != "Hello" || updated.Metadata["new_value"] != "Bye" {
		t.Fatalf("unexpected update event: %+v", updated)
	}
	if updated.Metadata["instance"] != child.Instance() {
		t.Fatalf("expected instance %s, got %v", child.Instance(), updated.Metadata["instance"])
	}
}

func TestActivityHookErrorsAreLoggedNotReturned(t *testing.T) {
	boom := errors.New("sink down")
	capture := &activity.CaptureHook{Err: boom}
	var logged []LogEvent

	s, err := Bootstrap("Global", State{"foo": 1},
		WithActivityHooks(capture),
		WithLogger(LoggerFunc(func(event LogEvent) {
			if event.Op == OpActivity {
				logged = append(logged, event)
			}
		})),
	)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := s.SetState("foo", 2); err != nil {
		t.Fatalf("set should not fail on hook error: %v", err)
	}

	if len(logged) != 2 {
		t.Fatalf("expected 2 activity log events, got %d", len(logged))
	}
	if !errors.Is(logged[1].Err, boom) || logged[1].Key != "foo" {
		t.Fatalf("unexpected log event: %+v", logged[1])
	}
}

func TestActivityDisabledWithoutHooks(t *testing.T) {
	s, err := Bootstrap("Global", State{"foo": 1}, WithActivityHooks())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if s.cfg.activity.Enabled() {
		t.Fatalf("expected emitter disabled without hooks")
	}
}

func TestWithActivityFromEnv(t *testing.T) {
	t.Setenv("STORE_ACTIVITY_ENABLED", "true")
	t.Setenv("STORE_ACTIVITY_CHANNEL", "audit")
	capture := &activity.CaptureHook{}

	opt, err := WithActivityFromEnv(capture)
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if _, err := Bootstrap("Global", nil, opt); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if len(capture.Events) != 1 || capture.Events[0].Channel != "audit" {
		t.Fatalf("unexpected events: %+v", capture.Events)
	}
}
