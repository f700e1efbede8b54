//go:build linux || windows

package hotkey

import (
	"fmt"
	"log"
	"time"

	"golang.design/x/hotkey"

	"midclick/internal/config"
)

// unregisterTimeout bounds hotkey.Unregister, which can stall on some
// desktops when the event loop is busy.
const unregisterTimeout = 500 * time.Millisecond

// chordMonitor grabs exactly the configured chord through the desktop's
// hotkey API, since X11 and Win32 have no listen-only global key monitor.
type chordMonitor struct{}

// NewMonitor returns the chord-grabbing monitor.
func NewMonitor() Monitor {
	return chordMonitor{}
}

type chord struct {
	hk   *hotkey.Hotkey
	stop chan struct{}
	done chan struct{}
}

func (chordMonitor) Install(b config.Binding, onKeyDown func(KeyEvent)) (any, error) {
	key, ok := keyMap[b.KeyCode]
	if !ok {
		return nil, fmt.Errorf("%w: key %s has no mapping on this platform", ErrMonitorRegistrationFailed, config.KeyName(b.KeyCode))
	}
	mods := make([]hotkey.Modifier, 0, len(modifierMap))
	for _, m := range b.Modifiers.List() {
		if mod, ok := modifierMap[m]; ok {
			mods = append(mods, mod)
		}
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMonitorRegistrationFailed, err)
	}

	c := &chord{hk: hk, stop: make(chan struct{}), done: make(chan struct{})}
	// The grab only fires for this exact chord, so it is reported back with
	// the binding's own key code and modifiers.
	ev := KeyEvent{KeyCode: b.KeyCode, Flags: uint64(b.Modifiers)}
	go c.listen(func() { onKeyDown(ev) })
	return c, nil
}

func (c *chord) listen(fire func()) {
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			return
		case _, ok := <-c.hk.Keydown():
			if !ok {
				return
			}
			fire()
		case _, ok := <-c.hk.Keyup():
			if !ok {
				return
			}
		}
	}
}

func (chordMonitor) Remove(token any) {
	c, ok := token.(*chord)
	if !ok {
		return
	}
	close(c.stop)
	<-c.done

	done := make(chan struct{})
	go func() {
		if err := c.hk.Unregister(); err != nil {
			log.Printf("Hotkey unregister: %v", err)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(unregisterTimeout):
		log.Printf("Hotkey unregister timeout")
	}
}
