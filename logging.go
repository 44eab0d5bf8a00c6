package store

import (
	"context"
	"log/slog"
	"time"
)

// Op names a store operation in log events.
type Op string

const (
	OpEnter       Op = "enter"
	OpExit        Op = "exit"
	OpSet         Op = "set"
	OpSubscribe   Op = "subscribe"
	OpUnsubscribe Op = "unsubscribe"
	OpEvaluate    Op = "evaluate"
	OpActivity    Op = "activity"
	OpRegister    Op = "register"
)

// LogEvent describes one store operation for logging.
type LogEvent struct {
	Op        Op
	Scope     string
	Key       string
	Listeners int
	Engine    string
	Expr      string
	Duration  time.Duration
	Err       error
}

// Logger records store events.
type Logger interface {
	LogEvent(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvent implements Logger.
func (f LoggerFunc) LogEvent(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvent(LogEvent) {}

// WithLogger attaches a logger to the store and its descendants.
func WithLogger(logger Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// SlogLogger forwards events to a slog.Logger. Successful operations log at
// debug level, failures at warn.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) LogEvent(event LogEvent) {
	attrs := []slog.Attr{
		slog.String("op", string(event.Op)),
		slog.String("scope", event.Scope),
	}
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}
	if event.Op == OpSet {
		attrs = append(attrs, slog.Int("listeners", event.Listeners))
	}
	if event.Engine != "" {
		attrs = append(attrs, slog.String("engine", event.Engine))
	}
	if event.Expr != "" {
		attrs = append(attrs, slog.String("expr", event.Expr))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	level := slog.LevelDebug
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, "store "+string(event.Op), attrs...)
}
