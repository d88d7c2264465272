package scene

import (
	"log/slog"
	"time"

	"github.com/cthstore/storefront/internal/navigation"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
)

// DefaultCurrency is the ISO 4217 code prices are shown and invoiced in.
const DefaultCurrency = "USD"

// Option configures a Machine.
type Option func(*Machine)

// WithCheckout enables the cart's checkout action.
func WithCheckout(c ports.Checkout) Option {
	return func(m *Machine) {
		m.checkout = c
	}
}

// WithPageSize sets the page size of the catalog, cart and FAQ trees.
func WithPageSize(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// WithCurrency sets the shop currency.
func WithCurrency(code string) Option {
	return func(m *Machine) {
		if code != "" {
			m.currency = code
		}
	}
}

// WithLoadTimeout bounds each content source call.
func WithLoadTimeout(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.loadTimeout = d
		}
	}
}

// WithLabels overrides the navigation control captions.
func WithLabels(l navigation.Labels) Option {
	return func(m *Machine) {
		m.labels = l
	}
}

// WithLogger sets the logger for the machine and its engines.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithHooks registers lifecycle hooks, passed on to every engine.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithMaxInputSize bounds accepted text messages, in bytes.
func WithMaxInputSize(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxInput = n
		}
	}
}
