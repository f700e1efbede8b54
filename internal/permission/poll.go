package permission

import (
	"sync"
	"sync/atomic"
	"time"
)

// Poll is a running trust poller returned by StartPolling.
type Poll struct {
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	stopped atomic.Bool
}

// StartPolling refreshes trust every interval on the gate's execution
// context until the returned poll is cancelled.
func (g *Gate) StartPolling(interval time.Duration) *Poll {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p := &Poll{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go p.run(interval, func() {
		g.exec.Post(func() {
			// A tick queued before Cancel must not run after it.
			if p.stopped.Load() {
				return
			}
			g.Refresh()
		})
	})
	return p
}

func (p *Poll) run(interval time.Duration, tick func()) {
	defer close(p.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			tick()
		}
	}
}

// Cancel stops future ticks. It is safe to call more than once.
func (p *Poll) Cancel() {
	p.once.Do(func() {
		p.stopped.Store(true)
		close(p.stop)
	})
	<-p.done
}
