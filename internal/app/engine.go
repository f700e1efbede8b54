package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"midclick/internal/bus"
	"midclick/internal/config"
	"midclick/internal/hotkey"
	"midclick/internal/inject"
	"midclick/internal/permission"
	"midclick/internal/runloop"
)

// ErrStopped is returned by Start on an engine that was already stopped.
var ErrStopped = errors.New("engine stopped")

// Hooks are optional observers. They run on the engine loop and must not
// block it.
type Hooks struct {
	OnClick         func(inject.Result)
	OnRegisterError func(error)
}

// Deps are the collaborators of an Engine. Store, Trust, Monitor and
// Injection are required.
type Deps struct {
	Store     *config.Store
	Trust     permission.Platform
	Monitor   hotkey.Monitor
	Injection inject.Platform
	Explainer permission.Explainer
	OpenURL   func(url string) error
	Hooks     Hooks
}

// Engine wires the permission gate, the hotkey handler and the click
// injector to one serialized loop. Its exported methods may be called from
// any goroutine except the loop itself.
type Engine struct {
	store    *config.Store
	loop     *runloop.Loop
	changes  *bus.Bus[permission.Change]
	gate     *permission.Gate
	hotkey   *hotkey.Handler
	injector *inject.Injector
	hooks    Hooks

	mu      sync.Mutex
	started bool
	stopped bool
	poll    *permission.Poll
	every   time.Duration
	cancel  context.CancelFunc
}

// NewEngine builds an engine. Nothing runs until Start.
func NewEngine(d Deps) (*Engine, error) {
	if d.Store == nil || d.Monitor == nil || d.Injection == nil {
		return nil, errors.New("engine: store, monitor and injection platform are required")
	}

	e := &Engine{
		store:   d.Store,
		loop:    runloop.New(),
		changes: bus.New[permission.Change](),
		hooks:   d.Hooks,
	}

	gate, err := permission.NewGate(permission.Options{
		Platform:  d.Trust,
		Bus:       e.changes,
		Exec:      e.loop,
		Explainer: d.Explainer,
		OpenURL:   d.OpenURL,
	})
	if err != nil {
		return nil, err
	}
	e.gate = gate
	e.injector = inject.New(gate, d.Injection)
	e.hotkey = hotkey.New(d.Monitor, e.loop, e.trigger)

	// A monitor that could not be installed while untrusted gets another
	// chance once trust is granted.
	e.changes.Subscribe(func(c permission.Change) {
		if !c.HasPermissions || e.hotkey.Active() {
			return
		}
		if b := e.store.Binding(); b.Enabled {
			e.register(b)
		}
	})
	return e, nil
}

// Changes is the bus that carries accessibility trust transitions.
// Subscribers run on the engine loop.
func (e *Engine) Changes() *bus.Bus[permission.Change] {
	return e.changes
}

// Start runs the loop, installs the hotkey monitor, checks trust (prompting
// once if missing) and starts polling. A registration failure is
// returned but leaves the engine running.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return ErrStopped
	}
	if e.started {
		e.mu.Unlock()
		return nil
	}
	e.started = true
	ctx, e.cancel = context.WithCancel(ctx)
	e.mu.Unlock()

	go e.loop.Run(ctx)

	e.store.OnBindingChange(func(b config.Binding) {
		e.loop.Post(func() {
			if err := e.hotkey.UpdateConfiguration(b); err != nil {
				e.registerFailed(err)
			}
		})
	})

	var regErr error
	if !e.loop.Call(func() {
		regErr = e.register(e.store.Binding())
		e.gate.Refresh()
		if !e.gate.State().Trusted {
			e.gate.RequestTrusted()
		}
	}) {
		return ErrStopped
	}

	e.mu.Lock()
	if !e.stopped {
		e.every = e.store.PollInterval()
		e.poll = e.gate.StartPolling(e.every)
	}
	e.mu.Unlock()

	log.Printf("MidClick started, hotkey %s", e.store.Binding())
	return regErr
}

// Stop removes the monitor, stops polling and ends the loop. It is safe to
// call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	started, poll, cancel := e.started, e.poll, e.cancel
	e.mu.Unlock()

	e.store.OnBindingChange(nil)
	if poll != nil {
		poll.Cancel()
	}
	if !started {
		e.loop.Stop()
		return
	}
	e.loop.Call(e.hotkey.Cleanup)
	e.loop.Stop()
	cancel()
	<-e.loop.Done()
	log.Printf("MidClick stopped")
}

// SetPollInterval restarts trust polling at d if the engine is running and
// the interval differs from the current one.
func (e *Engine) SetPollInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || e.poll == nil || d == e.every {
		return
	}
	e.poll.Cancel()
	e.every = d
	e.poll = e.gate.StartPolling(d)
	log.Printf("Trust polling every %s", d)
}

// UpdateBinding validates b and makes it the active binding.
func (e *Engine) UpdateBinding(b config.Binding) error {
	return e.store.SetBinding(b)
}

// SetEnabled turns the hotkey on or off and returns the new binding.
func (e *Engine) SetEnabled(enabled bool) config.Binding {
	return e.store.SetEnabled(enabled)
}

// Binding returns the active binding.
func (e *Engine) Binding() config.Binding {
	return e.store.Binding()
}

// RequestAccess asks the OS for trust again, showing the explanation if it
// is still missing.
func (e *Engine) RequestAccess() {
	e.loop.Post(func() {
		e.gate.RequestTrusted()
	})
}

// Trusted returns the last observed trust value.
func (e *Engine) Trusted() bool {
	var trusted bool
	e.loop.Call(func() {
		trusted = e.gate.State().Trusted
	})
	return trusted
}

// Stats returns the click counters.
func (e *Engine) Stats() inject.Stats {
	var stats inject.Stats
	e.loop.Call(func() {
		stats = e.injector.Stats()
	})
	return stats
}

func (e *Engine) trigger() {
	res := e.injector.Trigger()
	if e.hooks.OnClick != nil {
		e.hooks.OnClick(res)
	}
}

func (e *Engine) register(b config.Binding) error {
	err := e.hotkey.Register(b)
	if err != nil {
		e.registerFailed(err)
	}
	return err
}

func (e *Engine) registerFailed(err error) {
	log.Printf("Hotkey not active: %v", err)
	if e.hooks.OnRegisterError != nil {
		e.hooks.OnRegisterError(err)
	}
}
