package diagnostics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Severity classifies a diagnostic event.
type Severity string

const (
	SeverityDebug Severity = "debug"
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Event is a single structured diagnostic emitted by an engine component.
type Event struct {
	Time      time.Time      `json:"time"`
	Severity  Severity       `json:"severity"`
	Component string         `json:"component"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Emitter receives diagnostic events. Implementations must be safe for
// concurrent use; the engine emits from multiple goroutines.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// New builds an event stamped with the current time.
func New(severity Severity, component, message string, fields map[string]any) Event {
	return Event{
		Time:      time.Now().UTC(),
		Severity:  severity,
		Component: component,
		Message:   message,
		Fields:    fields,
	}
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, Event) {}

// Nop returns an emitter that discards every event.
func Nop() Emitter {
	return nopEmitter{}
}

// SlogEmitter forwards events to a slog.Logger, mapping severities onto log
// levels. This is the default sink for CLI runs.
type SlogEmitter struct {
	logger *slog.Logger
}

// NewSlogEmitter creates a slog-backed emitter. A nil logger falls back to
// slog.Default.
func NewSlogEmitter(logger *slog.Logger) *SlogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogEmitter{logger: logger}
}

// Emit logs the event with its component and fields as attributes.
func (e *SlogEmitter) Emit(ctx context.Context, ev Event) {
	attrs := make([]any, 0, 2+2*len(ev.Fields))
	attrs = append(attrs, slog.String("component", ev.Component))
	for k, v := range ev.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}

	switch ev.Severity {
	case SeverityDebug:
		e.logger.DebugContext(ctx, ev.Message, attrs...)
	case SeverityWarn:
		e.logger.WarnContext(ctx, ev.Message, attrs...)
	case SeverityError:
		e.logger.ErrorContext(ctx, ev.Message, attrs...)
	default:
		e.logger.InfoContext(ctx, ev.Message, attrs...)
	}
}

// Broadcaster fans events out to every attached emitter. The web front end
// attaches both the slog emitter and the WebSocket hub.
type Broadcaster struct {
	mu       sync.RWMutex
	emitters []Emitter
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(emitters ...Emitter) *Broadcaster {
	return &Broadcaster{emitters: emitters}
}

// Attach registers an additional emitter.
func (b *Broadcaster) Attach(e Emitter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emitters = append(b.emitters, e)
}

// Emit forwards the event to every attached emitter in attachment order.
func (b *Broadcaster) Emit(ctx context.Context, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.emitters {
		e.Emit(ctx, ev)
	}
}

// Collector records events in memory. Used by tests to assert on emitted
// diagnostics.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Emit appends the event to the collector.
func (c *Collector) Emit(_ context.Context, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

// Events returns a copy of the recorded events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}
