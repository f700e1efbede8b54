// Package hotkey watches system-wide key-down events and fires a trigger when
// one exactly matches the configured binding.
package hotkey

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"midclick/internal/config"
	"midclick/internal/runloop"
)

// ErrMonitorRegistrationFailed means the OS declined to install the global
// key monitor. It is reported to the caller and not retried.
var ErrMonitorRegistrationFailed = errors.New("global key monitor registration failed")

// KeyEvent is a key-down event as delivered by the OS.
type KeyEvent struct {
	KeyCode uint16
	// Flags is the raw modifier flags word of the event.
	Flags uint64
	// Repeat marks autorepeat key-downs from a held key. They never trigger,
	// so holding the chord yields one click.
	Repeat bool
}

// Monitor is the OS global key-event subscription primitive.
type Monitor interface {
	// Install subscribes to key-down events and returns an opaque token for
	// Remove. onKeyDown may be called on any OS thread. Backends that can
	// only watch a single chord use the binding to choose it.
	Install(b config.Binding, onKeyDown func(KeyEvent)) (any, error)
	// Remove unsubscribes. After it returns onKeyDown is not called again.
	Remove(token any)
}

// registration is the opaque handle of an installed monitor.
type registration struct {
	id    uuid.UUID
	token any
}

// Handler owns at most one installed monitor. All methods must run on the
// execution context passed to New; monitor callbacks are posted there too.
type Handler struct {
	monitor   Monitor
	exec      runloop.Executor
	onTrigger func()
	binding   config.Binding
	reg       *registration
}

// New creates a handler that calls onTrigger on an exact match.
func New(monitor Monitor, exec runloop.Executor, onTrigger func()) *Handler {
	if exec == nil {
		exec = runloop.Inline{}
	}
	return &Handler{
		monitor:   monitor,
		exec:      exec,
		onTrigger: onTrigger,
	}
}

// Matches reports whether ev triggers b: same key code and exactly the same
// logical modifiers. Extra held modifiers do not match.
func Matches(b config.Binding, ev KeyEvent) bool {
	return b.Enabled &&
		ev.KeyCode == b.KeyCode &&
		config.ModifiersFromFlags(ev.Flags) == b.Modifiers
}

// Register installs a monitor for b, replacing any previous one. A disabled
// binding is a no-op.
func (h *Handler) Register(b config.Binding) error {
	if !b.Enabled {
		return nil
	}
	h.Unregister()

	log.Printf("Registering hotkey: %s", b)
	h.binding = b
	id := uuid.New()
	token, err := h.monitor.Install(b, func(ev KeyEvent) {
		h.exec.Post(func() { h.dispatch(id, ev) })
	})
	if err != nil {
		log.Printf("Failed to register hotkey monitor: %v", err)
		if errors.Is(err, ErrMonitorRegistrationFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrMonitorRegistrationFailed, err)
	}

	h.reg = &registration{id: id, token: token}
	log.Printf("Hotkey monitor registered: %s (%s)", b, id)
	return nil
}

func (h *Handler) dispatch(id uuid.UUID, ev KeyEvent) {
	// Events queued before Unregister still arrive here once.
	if h.reg == nil || h.reg.id != id || ev.Repeat {
		return
	}
	if !Matches(h.binding, ev) {
		return
	}
	log.Printf("Hotkey triggered: %s", h.binding)
	if h.onTrigger != nil {
		h.onTrigger()
	}
}

// Unregister removes the installed monitor, if any.
func (h *Handler) Unregister() {
	if h.reg == nil {
		return
	}
	reg := h.reg
	h.reg = nil
	h.monitor.Remove(reg.token)
	log.Printf("Hotkey monitor removed (%s)", reg.id)
}

// Cleanup is Unregister, for shutdown paths.
func (h *Handler) Cleanup() {
	h.Unregister()
}

// UpdateConfiguration tears down the current monitor and installs one for b.
// The old monitor is always gone before the new one is installed.
func (h *Handler) UpdateConfiguration(b config.Binding) error {
	h.Unregister()
	h.binding = b
	return h.Register(b)
}

// Active reports whether a monitor is installed.
func (h *Handler) Active() bool {
	return h.reg != nil
}

// Current returns the binding of the last registration or update.
func (h *Handler) Current() config.Binding {
	return h.binding
}
