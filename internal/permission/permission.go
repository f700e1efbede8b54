// Package permission tracks the accessibility trust the OS grants to the
// process. Without it global key events are not delivered and synthetic
// clicks are dropped.
package permission

import (
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/pkg/browser"

	"midclick/internal/bus"
	"midclick/internal/runloop"
)

// ErrPromptUnavailable means the OS trust prompt could not be shown, for
// example under a sandbox. Trust is then treated as not granted.
var ErrPromptUnavailable = errors.New("accessibility prompt unavailable")

// SettingsURL opens System Settings at Privacy & Security > Accessibility.
const SettingsURL = "x-apple.systempreferences:com.apple.preference.security?Privacy_Accessibility"

// DefaultPollInterval is used when StartPolling gets a non-positive interval.
const DefaultPollInterval = 2 * time.Second

// ChangeTopic names the broadcast that carries Change events.
const ChangeTopic = "accessibilityPermissionsChanged"

// TrustOptions are passed to the OS trust check.
type TrustOptions struct {
	// Prompt asks the OS to show its own permission prompt if untrusted.
	Prompt bool
}

// Platform is the OS trust primitive.
type Platform interface {
	IsTrusted() bool
	IsTrustedWithOptions(opts TrustOptions) (bool, error)
}

// Explainer shows the modal explaining why trust is needed. It reports
// whether the user chose to open the settings page.
type Explainer interface {
	ExplainTrust() (openSettings bool, err error)
}

// TrustState is an immutable snapshot of the last observed trust value.
type TrustState struct {
	Trusted       bool
	LastCheckedAt time.Time
}

// Change is published when the observed trust value flips.
type Change struct {
	HasPermissions bool
	At             time.Time
}

// Options configure a Gate. Platform is required.
type Options struct {
	Platform  Platform
	Bus       *bus.Bus[Change]
	Exec      runloop.Executor
	Explainer Explainer
	OpenURL   func(url string) error
	Clock     func() time.Time
}

// Gate queries and polls trust and publishes transitions. Apart from the
// modal, all of its methods must run on the execution context passed as
// Options.Exec.
type Gate struct {
	platform   Platform
	bus        *bus.Bus[Change]
	exec       runloop.Executor
	explainer  Explainer
	openURL    func(string) error
	clock      func() time.Time
	state      TrustState
	explaining atomic.Bool
}

// NewGate validates options and constructs a gate. The gate starts out
// untrusted.
func NewGate(opts Options) (*Gate, error) {
	if opts.Platform == nil {
		return nil, errors.New("permission platform must not be nil")
	}
	exec := opts.Exec
	if exec == nil {
		exec = runloop.Inline{}
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = browser.OpenURL
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Gate{
		platform:  opts.Platform,
		bus:       opts.Bus,
		exec:      exec,
		explainer: opts.Explainer,
		openURL:   openURL,
		clock:     clock,
	}, nil
}

// CheckTrusted asks the OS whether the process is trusted. It does not
// prompt and does not change the published state.
func (g *Gate) CheckTrusted() bool {
	return g.platform.IsTrusted()
}

// RequestTrusted asks the OS to prompt for trust if the process is not
// trusted yet. If the OS still reports untrusted, the explanation modal is
// shown without blocking the caller. It returns the trust value after the
// request.
func (g *Gate) RequestTrusted() bool {
	if g.platform.IsTrusted() {
		return true
	}

	trusted, err := g.platform.IsTrustedWithOptions(TrustOptions{Prompt: true})
	if err != nil {
		log.Printf("Accessibility prompt failed: %v", err)
		return false
	}
	if trusted {
		log.Printf("Accessibility permissions granted")
		return true
	}

	log.Printf("Accessibility permissions not granted")
	if g.explainer != nil && g.explaining.CompareAndSwap(false, true) {
		go g.explain()
	}
	return false
}

func (g *Gate) explain() {
	defer g.explaining.Store(false)

	openSettings, err := g.explainer.ExplainTrust()
	if err != nil {
		log.Printf("Permission dialog: %v", err)
		return
	}
	if !openSettings {
		return
	}
	if err := g.openURL(SettingsURL); err != nil {
		log.Printf("Open accessibility settings: %v", err)
	}
}

// Refresh re-checks trust and records the snapshot. A Change is published
// only when the value differs from the previous snapshot.
func (g *Gate) Refresh() (Change, bool) {
	trusted := g.platform.IsTrusted()
	now := g.clock()
	prev := g.state
	g.state = TrustState{Trusted: trusted, LastCheckedAt: now}

	if trusted == prev.Trusted {
		return Change{}, false
	}

	change := Change{HasPermissions: trusted, At: now}
	log.Printf("%s: %v -> %v", ChangeTopic, prev.Trusted, trusted)
	if g.bus != nil {
		g.bus.Publish(change)
	}
	return change, true
}

// State returns the last recorded snapshot.
func (g *Gate) State() TrustState {
	return g.state
}
