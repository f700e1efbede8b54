package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"midclick/internal/config"
	"midclick/internal/hotkey"
	"midclick/internal/inject"
	"midclick/internal/permission"
)

type fakeTrust struct {
	trusted atomic.Bool
	prompts atomic.Int32
}

func (f *fakeTrust) IsTrusted() bool { return f.trusted.Load() }

func (f *fakeTrust) IsTrustedWithOptions(opts permission.TrustOptions) (bool, error) {
	if opts.Prompt {
		f.prompts.Add(1)
	}
	return f.trusted.Load(), nil
}

// fakeMonitor hands key events to whatever callback is installed. Events are
// delivered from the test goroutine, like an OS callback thread would.
type fakeMonitor struct {
	mu       sync.Mutex
	next     int
	live     map[int]func(hotkey.KeyEvent)
	bindings map[int]config.Binding
	fail     error
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{
		live:     make(map[int]func(hotkey.KeyEvent)),
		bindings: make(map[int]config.Binding),
	}
}

func (m *fakeMonitor) Install(b config.Binding, fn func(hotkey.KeyEvent)) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	m.next++
	m.live[m.next] = fn
	m.bindings[m.next] = b
	return m.next, nil
}

func (m *fakeMonitor) Remove(token any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, token.(int))
	delete(m.bindings, token.(int))
}

func (m *fakeMonitor) press(ev hotkey.KeyEvent) {
	m.mu.Lock()
	fns := make([]func(hotkey.KeyEvent), 0, len(m.live))
	for _, fn := range m.live {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (m *fakeMonitor) installed() []config.Binding {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]config.Binding, 0, len(m.bindings))
	for _, b := range m.bindings {
		out = append(out, b)
	}
	return out
}

func (m *fakeMonitor) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

type fakeScreen struct {
	mu     sync.Mutex
	at     inject.Point
	height float64
	posted []inject.ClickEvent
}

func (s *fakeScreen) Location() (inject.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.at, nil
}

func (s *fakeScreen) DisplayHeight(inject.Point) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height, true
}

func (s *fakeScreen) PrimaryHeight() (float64, bool) { return s.DisplayHeight(inject.Point{}) }

func (s *fakeScreen) Post(ev inject.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posted = append(s.posted, ev)
	return nil
}

func (s *fakeScreen) events() []inject.ClickEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]inject.ClickEvent(nil), s.posted...)
}

type fakeExplainer struct{ shown chan struct{} }

func (f fakeExplainer) ExplainTrust() (bool, error) {
	f.shown <- struct{}{}
	return false, nil
}

type harness struct {
	engine   *Engine
	store    *config.Store
	trust    *fakeTrust
	monitor  *fakeMonitor
	screen   *fakeScreen
	explains chan struct{}
	clicks   chan inject.Result
}

func newHarness(t *testing.T, trusted bool) *harness {
	t.Helper()
	store, err := config.Open("")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	h := &harness{
		store:    store,
		trust:    &fakeTrust{},
		monitor:  newFakeMonitor(),
		screen:   &fakeScreen{at: inject.Point{X: 500, Y: 300}, height: 1080},
		explains: make(chan struct{}, 4),
		clicks:   make(chan inject.Result, 16),
	}
	h.trust.trusted.Store(trusted)

	h.engine, err = NewEngine(Deps{
		Store:     store,
		Trust:     h.trust,
		Monitor:   h.monitor,
		Injection: h.screen,
		Explainer: fakeExplainer{shown: h.explains},
		OpenURL:   func(string) error { return nil },
		Hooks: Hooks{
			OnClick: func(r inject.Result) { h.clicks <- r },
		},
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(h.engine.Stop)
	return h
}

func (h *harness) start(t *testing.T) error {
	t.Helper()
	return h.engine.Start(context.Background())
}

// sync waits until everything posted to the engine loop so far has run.
func (h *harness) sync() {
	h.engine.loop.Call(func() {})
}

func (h *harness) pressDefault() {
	h.monitor.press(hotkey.KeyEvent{
		KeyCode: config.KeyCodeM,
		Flags:   uint64(config.ModCommand | config.ModShift),
	})
	h.sync()
}

func TestEngineInjectsMiddleClickOnHotkey(t *testing.T) {
	h := newHarness(t, true)
	if err := h.start(t); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := h.monitor.installed(); len(got) != 1 || got[0] != config.DefaultBinding() {
		t.Fatalf("expected default binding monitor, got %+v", got)
	}

	h.pressDefault()

	want := []inject.ClickEvent{
		{Point: inject.Point{X: 500, Y: 780}, Button: inject.ButtonMiddle, Phase: inject.PhaseDown},
		{Point: inject.Point{X: 500, Y: 780}, Button: inject.ButtonMiddle, Phase: inject.PhaseUp},
	}
	got := h.screen.events()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if res := <-h.clicks; res.State != inject.StateInjected {
		t.Fatalf("expected injected, got %v", res.State)
	}
	if h.trust.prompts.Load() != 0 {
		t.Fatalf("trusted start must not prompt")
	}
}

func TestEngineUntrustedStartPromptsOnceAndDenies(t *testing.T) {
	h := newHarness(t, false)
	changes := make(chan permission.Change, 4)
	h.engine.Changes().Subscribe(func(c permission.Change) { changes <- c })

	if err := h.start(t); err != nil {
		t.Fatalf("start: %v", err)
	}
	if h.trust.prompts.Load() != 1 {
		t.Fatalf("expected one prompt, got %d", h.trust.prompts.Load())
	}
	select {
	case <-h.explains:
	case <-time.After(time.Second):
		t.Fatalf("explanation was not shown")
	}

	h.pressDefault()
	if len(h.screen.events()) != 0 {
		t.Fatalf("untrusted trigger posted events")
	}
	if res := <-h.clicks; res.State != inject.StateDenied || !errors.Is(res.Err, inject.ErrPermissionDenied) {
		t.Fatalf("expected denial, got %v (%v)", res.State, res.Err)
	}
	if h.engine.Stats().Denied != 1 {
		t.Fatalf("expected one denial recorded")
	}

	h.trust.trusted.Store(true)
	h.engine.loop.Call(func() { h.engine.gate.Refresh() })
	select {
	case c := <-changes:
		if !c.HasPermissions {
			t.Fatalf("expected granted change")
		}
	default:
		t.Fatalf("trust grant was not published")
	}
	if !h.engine.Trusted() {
		t.Fatalf("engine should report trusted")
	}

	h.pressDefault()
	if len(h.screen.events()) != 2 {
		t.Fatalf("expected click after grant, got %d events", len(h.screen.events()))
	}
}

func TestEngineRegistersAfterTrustGranted(t *testing.T) {
	h := newHarness(t, false)
	h.monitor.setFail(errors.New("tap refused"))

	err := h.start(t)
	if !errors.Is(err, hotkey.ErrMonitorRegistrationFailed) {
		t.Fatalf("expected registration failure, got %v", err)
	}
	<-h.explains

	h.monitor.setFail(nil)
	h.trust.trusted.Store(true)
	h.engine.loop.Call(func() { h.engine.gate.Refresh() })

	if got := h.monitor.installed(); len(got) != 1 {
		t.Fatalf("expected monitor after grant, got %d", len(got))
	}
}

func TestEngineBindingUpdates(t *testing.T) {
	h := newHarness(t, true)
	if err := h.start(t); err != nil {
		t.Fatalf("start: %v", err)
	}

	space := config.Binding{KeyCode: config.KeyCodeSpace, Modifiers: config.ModControl, Enabled: true}
	if err := h.engine.UpdateBinding(space); err != nil {
		t.Fatalf("update: %v", err)
	}
	h.sync()
	if got := h.monitor.installed(); len(got) != 1 || got[0] != space {
		t.Fatalf("expected one monitor for %s, got %+v", space, got)
	}

	h.pressDefault()
	if len(h.screen.events()) != 0 {
		t.Fatalf("old chord must not click after update")
	}

	if b := h.engine.SetEnabled(false); b.Enabled || b.KeyCode != space.KeyCode {
		t.Fatalf("unexpected binding after disable: %+v", b)
	}
	h.sync()
	if got := h.monitor.installed(); len(got) != 0 {
		t.Fatalf("disabled binding left %d monitors", len(got))
	}

	h.engine.SetEnabled(true)
	h.sync()
	if got := h.monitor.installed(); len(got) != 1 || got[0] != space {
		t.Fatalf("expected monitor back after enable, got %+v", got)
	}

	bad := config.Binding{KeyCode: 0x200, Enabled: true}
	if err := h.engine.UpdateBinding(bad); !errors.Is(err, config.ErrInvalidBinding) {
		t.Fatalf("expected ErrInvalidBinding, got %v", err)
	}
}

func TestEngineStopRemovesMonitor(t *testing.T) {
	h := newHarness(t, true)
	if err := h.start(t); err != nil {
		t.Fatalf("start: %v", err)
	}

	h.engine.Stop()
	h.engine.Stop()

	if got := h.monitor.installed(); len(got) != 0 {
		t.Fatalf("expected no monitor after stop, got %d", len(got))
	}
	if err := h.engine.Start(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped on restart, got %v", err)
	}
}

func TestEngineStopBeforeStart(t *testing.T) {
	h := newHarness(t, true)
	h.engine.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if h.engine.Trusted() {
			t.Errorf("stopped engine reported trusted")
		}
		if s := h.engine.Stats(); s != (inject.Stats{}) {
			t.Errorf("expected zero stats, got %+v", s)
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("queries on an engine stopped before start blocked")
	}

	if err := h.start(t); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestEngineSetPollIntervalRestartsPolling(t *testing.T) {
	h := newHarness(t, false)
	changes := make(chan permission.Change, 4)
	h.engine.Changes().Subscribe(func(c permission.Change) { changes <- c })

	// Before Start there is no poll to restart.
	h.engine.SetPollInterval(10 * time.Millisecond)
	if err := h.start(t); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-h.explains

	h.trust.trusted.Store(true)
	h.engine.SetPollInterval(10 * time.Millisecond)

	select {
	case c := <-changes:
		if !c.HasPermissions {
			t.Fatalf("expected granted change")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("poll did not pick up the shorter interval")
	}
}
