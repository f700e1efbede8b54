// Package inject posts a synthetic middle click at the pointer location.
package inject

import (
	"errors"
	"fmt"
	"log"
)

var (
	// ErrPermissionDenied is recorded when a trigger arrives without trust.
	ErrPermissionDenied = errors.New("accessibility permission denied")
	// ErrInjectionPostFailed means the OS did not accept a synthetic event.
	ErrInjectionPostFailed = errors.New("synthetic event post failed")
	// ErrNoDisplay means no display height was available for the flip.
	ErrNoDisplay = errors.New("no display available")
	// ErrUnsupported is returned by platforms without event injection.
	ErrUnsupported = errors.New("event injection unsupported on this platform")
)

// Point is a screen location.
type Point struct {
	X, Y float64
}

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Phase is the press or release half of a click.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseUp
)

func (p Phase) String() string {
	if p == PhaseUp {
		return "up"
	}
	return "down"
}

// ClickEvent is one synthetic button event in injection coordinates
// (origin top-left).
type ClickEvent struct {
	Point  Point
	Button Button
	Phase  Phase
}

// Pointer reads the pointer in native coordinates (origin bottom-left) and
// the display geometry needed to flip them.
type Pointer interface {
	Location() (Point, error)
	// DisplayHeight returns the height of the display containing p.
	DisplayHeight(p Point) (float64, bool)
	PrimaryHeight() (float64, bool)
}

// Poster is the OS synthetic-event injection primitive.
type Poster interface {
	Post(ev ClickEvent) error
}

// Platform combines both OS primitives.
type Platform interface {
	Pointer
	Poster
}

// TrustChecker is the part of the permission gate the injector consults.
type TrustChecker interface {
	CheckTrusted() bool
}

// State is the terminal state of one trigger.
type State int

const (
	StateTriggered State = iota
	StatePermissionChecked
	StateInjected
	StateDenied
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateTriggered:
		return "triggered"
	case StatePermissionChecked:
		return "permission-checked"
	case StateInjected:
		return "injected"
	case StateDenied:
		return "denied"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result describes one trigger.
type Result struct {
	State State
	// Point is where the click was posted, in injection coordinates.
	Point Point
	Err   error
}

// Stats counts trigger outcomes.
type Stats struct {
	Injected int
	Denied   int
	Failed   int
}

// Injector turns triggers into middle clicks. Trigger must run on the same
// execution context as the permission gate.
type Injector struct {
	gate     TrustChecker
	platform Platform
	stats    Stats
	lastErr  error
}

// New creates an injector.
func New(gate TrustChecker, platform Platform) *Injector {
	return &Injector{gate: gate, platform: platform}
}

// ToInjectionSpace flips a native point (origin bottom-left) into injection
// space (origin top-left) for a display of the given height.
func ToInjectionSpace(p Point, height float64) Point {
	return Point{X: p.X, Y: height - p.Y}
}

// Trigger checks trust, reads the pointer and posts a middle-button press
// immediately followed by a release at the same point. Nothing is retried.
func (inj *Injector) Trigger() Result {
	if !inj.gate.CheckTrusted() {
		inj.stats.Denied++
		inj.lastErr = ErrPermissionDenied
		log.Printf("Middle click skipped: %v", ErrPermissionDenied)
		return Result{State: StateDenied, Err: ErrPermissionDenied}
	}

	at, err := inj.clickPoint()
	if err != nil {
		return inj.fail(Point{}, err)
	}

	log.Printf("Simulating middle click at (%.1f, %.1f)", at.X, at.Y)
	for _, phase := range []Phase{PhaseDown, PhaseUp} {
		ev := ClickEvent{Point: at, Button: ButtonMiddle, Phase: phase}
		if err := inj.platform.Post(ev); err != nil {
			return inj.fail(at, fmt.Errorf("%w: middle %s: %w", ErrInjectionPostFailed, phase, err))
		}
	}

	inj.stats.Injected++
	return Result{State: StateInjected, Point: at}
}

func (inj *Injector) clickPoint() (Point, error) {
	loc, err := inj.platform.Location()
	if err != nil {
		return Point{}, fmt.Errorf("%w: read pointer: %w", ErrInjectionPostFailed, err)
	}
	height, ok := inj.platform.DisplayHeight(loc)
	if !ok {
		height, ok = inj.platform.PrimaryHeight()
	}
	if !ok {
		return Point{}, fmt.Errorf("%w: %w", ErrInjectionPostFailed, ErrNoDisplay)
	}
	return ToInjectionSpace(loc, height), nil
}

func (inj *Injector) fail(at Point, err error) Result {
	inj.stats.Failed++
	inj.lastErr = err
	log.Printf("Middle click failed: %v", err)
	return Result{State: StateFailed, Point: at, Err: err}
}

// Stats returns the outcome counters.
func (inj *Injector) Stats() Stats {
	return inj.stats
}

// LastError returns the most recent recorded error, or nil.
func (inj *Injector) LastError() error {
	return inj.lastErr
}
