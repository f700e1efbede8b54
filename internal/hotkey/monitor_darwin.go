//go:build darwin

package hotkey

/*
#cgo darwin LDFLAGS: -framework CoreGraphics -framework ApplicationServices -framework CoreFoundation
#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdint.h>

extern CGEventRef goKeyTapEvent(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *userInfo);

static CFRunLoopSourceRef mcStartKeyTap(uintptr_t id, CFMachPortRef *portOut) {
        CFMachPortRef port = CGEventTapCreate(kCGSessionEventTap,
                                              kCGHeadInsertEventTap,
                                              kCGEventTapOptionListenOnly,
                                              CGEventMaskBit(kCGEventKeyDown),
                                              goKeyTapEvent,
                                              (void *)id);
        if (port == NULL) {
                return NULL;
        }
        CFRunLoopSourceRef source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, port, 0);
        if (source == NULL) {
                CFRelease(port);
                return NULL;
        }
        CFRunLoopAddSource(CFRunLoopGetCurrent(), source, kCFRunLoopCommonModes);
        CGEventTapEnable(port, true);
        *portOut = port;
        return source;
}

static void mcRunSlice(double seconds) {
        CFRunLoopRunInMode(kCFRunLoopDefaultMode, seconds, false);
}

static void mcStopKeyTap(CFMachPortRef port, CFRunLoopSourceRef source) {
        CGEventTapEnable(port, false);
        CFRunLoopSourceInvalidate(source);
        CFMachPortInvalidate(port);
}

static void mcEnableKeyTap(CFMachPortRef port) {
        CGEventTapEnable(port, true);
}

static uint16_t mcKeyCode(CGEventRef event) {
        return (uint16_t)CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
}

static uint64_t mcFlags(CGEventRef event) {
        return (uint64_t)CGEventGetFlags(event);
}

static int mcIsRepeat(CGEventRef event) {
        return CGEventGetIntegerValueField(event, kCGKeyboardEventAutorepeat) != 0;
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"midclick/internal/config"
)

// runSlice bounds how long the tap thread sleeps in its run loop before it
// re-checks for removal.
const runSlice = 0.25

// keyTap is a listen-only CGEventTap for key-down events, running on its
// own locked OS thread and CFRunLoop.
type keyTap struct {
	id       uintptr
	onKey    func(KeyEvent)
	port     C.CFMachPortRef
	loop     C.CFRunLoopRef
	stopping atomic.Bool
	done     chan struct{}
}

var (
	tapsMu    sync.Mutex
	taps      = make(map[uintptr]*keyTap)
	lastTapID uintptr
)

type tapMonitor struct{}

// NewMonitor returns the CGEventTap key monitor. Installing it fails unless
// the process holds accessibility trust.
func NewMonitor() Monitor {
	return tapMonitor{}
}

func (tapMonitor) Install(_ config.Binding, onKeyDown func(KeyEvent)) (any, error) {
	tapsMu.Lock()
	lastTapID++
	t := &keyTap{id: lastTapID, onKey: onKeyDown, done: make(chan struct{})}
	taps[t.id] = t
	tapsMu.Unlock()

	ready := make(chan error, 1)
	go t.run(ready)
	if err := <-ready; err != nil {
		tapsMu.Lock()
		delete(taps, t.id)
		tapsMu.Unlock()
		<-t.done
		return nil, err
	}
	return t, nil
}

func (tapMonitor) Remove(token any) {
	t, ok := token.(*keyTap)
	if !ok {
		return
	}
	tapsMu.Lock()
	delete(taps, t.id)
	loop := t.loop
	tapsMu.Unlock()

	t.stopping.Store(true)
	if loop != 0 {
		C.CFRunLoopStop(loop)
	}
	<-t.done
}

func (t *keyTap) run(ready chan<- error) {
	defer close(t.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var port C.CFMachPortRef
	source := C.mcStartKeyTap(C.uintptr_t(t.id), &port)
	if source == 0 {
		ready <- fmt.Errorf("%w: CGEventTapCreate returned NULL", ErrMonitorRegistrationFailed)
		return
	}
	defer C.CFRelease(C.CFTypeRef(port))
	defer C.CFRelease(C.CFTypeRef(source))

	tapsMu.Lock()
	t.port = port
	t.loop = C.CFRunLoopGetCurrent()
	tapsMu.Unlock()
	ready <- nil

	for !t.stopping.Load() {
		C.mcRunSlice(C.double(runSlice))
	}
	C.mcStopKeyTap(port, source)
}

//export goKeyTapEvent
func goKeyTapEvent(_ C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, userInfo unsafe.Pointer) C.CGEventRef {
	tapsMu.Lock()
	t := taps[uintptr(userInfo)]
	tapsMu.Unlock()
	if t == nil {
		return event
	}

	switch eventType {
	case C.kCGEventTapDisabledByTimeout, C.kCGEventTapDisabledByUserInput:
		C.mcEnableKeyTap(t.port)
	case C.kCGEventKeyDown:
		t.onKey(KeyEvent{
			KeyCode: uint16(C.mcKeyCode(event)),
			Flags:   uint64(C.mcFlags(event)),
			Repeat:  C.mcIsRepeat(event) != 0,
		})
	}
	return event
}
