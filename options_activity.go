package store

import "github.com/goliatone/go-scoped-store/pkg/activity"

// WithActivityHooks emits scope and state events to hooks with the default
// channel. Nil hooks are dropped; with no hooks left, emission is disabled.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	emitter := activity.NewEmitter(activity.Hooks(hooks), activity.Config{
		Enabled: true,
		Channel: activity.DefaultChannel,
	})
	return WithActivity(emitter)
}

// WithActivityFromEnv builds the emitter from STORE_ACTIVITY_* variables.
// Emission stays off unless STORE_ACTIVITY_ENABLED is true.
func WithActivityFromEnv(hooks ...activity.ActivityHook) (Option, error) {
	cfg, err := activity.LoadConfig()
	if err != nil {
		return nil, err
	}
	return WithActivity(activity.NewEmitter(activity.Hooks(hooks), cfg)), nil
}
