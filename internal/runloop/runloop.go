// Package runloop provides the single serialized execution context that owns
// all hotkey, permission and injection state.
//
// OS callbacks, timer ticks and menu actions never touch that state directly:
// they post a function to the loop, which runs posted functions one at a
// time in posting order.
package runloop

import (
	"context"
	"sync"
)

// Executor runs functions on a serialized context.
type Executor interface {
	// Post schedules fn. It reports false if fn will never run.
	Post(fn func()) bool
}

// Inline runs posted functions immediately on the caller's goroutine.
// Tests use it where the caller already is the only goroutine.
type Inline struct{}

// Post runs fn and returns true.
func (Inline) Post(fn func()) bool {
	fn()
	return true
}

// Loop is an unbounded FIFO of functions drained by a single goroutine.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
	done    chan struct{}
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post appends fn to the queue. It never blocks, so it is safe to call from
// the loop itself and from OS callback threads.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call posts fn and waits for it to finish. It must not be called from the
// loop goroutine. It reports false if the loop stopped before fn ran.
func (l *Loop) Call(fn func()) bool {
	ran := make(chan struct{})
	if !l.Post(func() {
		fn()
		close(ran)
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Run drains the queue until ctx is done or Stop is called. Functions still
// queued at that point are dropped.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	defer l.Stop()

	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
			if l.isStopped() {
				return
			}
		}
	}
}

// Stop makes further Post calls fail and ends Run.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.queue = nil
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) isStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}
