package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "store"

// Config controls emission defaults. It can be filled from the environment
// with LoadConfig.
type Config struct {
	Enabled  bool   `env:"STORE_ACTIVITY_ENABLED" envDefault:"false"`
	Channel  string `env:"STORE_ACTIVITY_CHANNEL" envDefault:"store"`
	ActorID  string `env:"STORE_ACTIVITY_ACTOR_ID"`
	TenantID string `env:"STORE_ACTIVITY_TENANT_ID"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("activity: load config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFrom reads Config from the supplied variables instead of the
// process environment.
func LoadConfigFrom(environment map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environment})
	if err != nil {
		return Config{}, fmt.Errorf("activity: load config: %w", err)
	}
	return cfg, nil
}

// Emitter forwards events to hooks, filling channel, actor and tenant
// defaults from Config.
type Emitter struct {
	hooks    Hooks
	enabled  bool
	channel  string
	actorID  string
	tenantID string
}

// NewEmitter constructs an emitter. It is disabled unless cfg.Enabled is set
// and at least one non-nil hook is supplied.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	normalized := compactHooks(hooks)
	return &Emitter{
		hooks:    normalized,
		enabled:  cfg.Enabled && len(normalized) > 0,
		channel:  channel,
		actorID:  strings.TrimSpace(cfg.ActorID),
		tenantID: strings.TrimSpace(cfg.TenantID),
	}
}

// Enabled reports whether emissions will reach any hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit applies defaults and notifies every hook.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.actorID
	}
	if strings.TrimSpace(event.TenantID) == "" {
		event.TenantID = e.tenantID
	}
	return e.hooks.Notify(ctx, event)
}

func compactHooks(hooks Hooks) Hooks {
	var out Hooks
	for _, hook := range hooks {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}
