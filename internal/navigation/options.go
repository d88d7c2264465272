package navigation

import (
	"log/slog"
	"time"

	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
)

// DefaultLoadTimeout bounds a single content source call.
const DefaultLoadTimeout = 10 * time.Second

// Formatter turns a node's text and side-channel values into display text.
type Formatter func(text string, meta map[string]string) string

// Labels are the captions of the control buttons.
type Labels struct {
	Prev string
	Next string
	Up   string
}

// DefaultLabels are used unless WithLabels is given.
var DefaultLabels = Labels{
	Prev: "⬅️",
	Next: "➡️",
	Up:   "Back",
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource sets the default content source.
func WithSource(src ports.ContentSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithNamedSource registers a source that nodes select through Config.Source.
func WithNamedSource(name string, src ports.ContentSource) Option {
	return func(e *Engine) {
		if e.sources == nil {
			e.sources = make(map[string]ports.ContentSource)
		}
		e.sources[name] = src
	}
}

// WithRenderer sets the renderer used by Render and Handle.
func WithRenderer(r ports.Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithFormatter sets the display text formatter.
func WithFormatter(f Formatter) Option {
	return func(e *Engine) {
		e.formatter = f
	}
}

// WithGlobalActions sets buttons merged into every rendered page.
func WithGlobalActions(buttons ...domain.Button) Option {
	return func(e *Engine) {
		e.globals = append([]domain.Button(nil), buttons...)
	}
}

// WithLabels overrides the control button captions.
func WithLabels(l Labels) Option {
	return func(e *Engine) {
		e.labels = l
	}
}

// WithLoadTimeout bounds each content source call. Zero keeps the default.
func WithLoadTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers lifecycle hooks for source loads and renders.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}
