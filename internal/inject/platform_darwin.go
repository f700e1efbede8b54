//go:build darwin

package inject

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework CoreGraphics -framework CoreFoundation
#import <Cocoa/Cocoa.h>
#include <CoreGraphics/CoreGraphics.h>

// Native coordinates: origin at the bottom-left of the primary display.
static void mcPointerLocation(double *x, double *y) {
    @autoreleasepool {
        NSPoint p = [NSEvent mouseLocation];
        *x = p.x;
        *y = p.y;
    }
}

static int mcPrimaryHeight(double *h) {
    CGRect bounds = CGDisplayBounds(CGMainDisplayID());
    if (bounds.size.height <= 0) {
        return 0;
    }
    *h = bounds.size.height;
    return 1;
}

static int mcDisplayHeightAt(double x, double y, double *h) {
    double primary;
    if (!mcPrimaryHeight(&primary)) {
        return 0;
    }
    // CGGetDisplaysWithPoint takes global coordinates with a top-left origin.
    CGPoint p = CGPointMake(x, primary - y);
    CGDirectDisplayID display;
    uint32_t count = 0;
    if (CGGetDisplaysWithPoint(p, 1, &display, &count) != kCGErrorSuccess || count == 0) {
        return 0;
    }
    CGRect bounds = CGDisplayBounds(display);
    if (bounds.size.height <= 0) {
        return 0;
    }
    *h = bounds.size.height;
    return 1;
}

static int mcPostMiddle(double x, double y, int up) {
    CGEventType type = up ? kCGEventOtherMouseUp : kCGEventOtherMouseDown;
    CGEventRef event = CGEventCreateMouseEvent(NULL, type, CGPointMake(x, y), kCGMouseButtonCenter);
    if (event == NULL) {
        return 0;
    }
    CGEventPost(kCGHIDEventTap, event);
    CFRelease(event);
    return 1;
}
*/
import "C"

import "fmt"

type cgPlatform struct{}

// NewPlatform returns the CoreGraphics pointer reader and event poster.
func NewPlatform() Platform {
	return cgPlatform{}
}

func (cgPlatform) Location() (Point, error) {
	var x, y C.double
	C.mcPointerLocation(&x, &y)
	return Point{X: float64(x), Y: float64(y)}, nil
}

func (cgPlatform) DisplayHeight(p Point) (float64, bool) {
	var h C.double
	if C.mcDisplayHeightAt(C.double(p.X), C.double(p.Y), &h) == 0 {
		return 0, false
	}
	return float64(h), true
}

func (cgPlatform) PrimaryHeight() (float64, bool) {
	var h C.double
	if C.mcPrimaryHeight(&h) == 0 {
		return 0, false
	}
	return float64(h), true
}

func (cgPlatform) Post(ev ClickEvent) error {
	if ev.Button != ButtonMiddle {
		return fmt.Errorf("button %d: %w", ev.Button, ErrUnsupported)
	}
	up := C.int(0)
	if ev.Phase == PhaseUp {
		up = 1
	}
	if C.mcPostMiddle(C.double(ev.Point.X), C.double(ev.Point.Y), up) == 0 {
		return fmt.Errorf("CGEventCreateMouseEvent returned NULL")
	}
	return nil
}
