//go:build windows

package inject

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	user32               = syscall.NewLazyDLL("user32.dll")
	procSendInput        = user32.NewProc("SendInput")
	procGetCursorPos     = user32.NewProc("GetCursorPos")
	procSetCursorPos     = user32.NewProc("SetCursorPos")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
)

const (
	inputMouse            = 0
	smCYScreen            = 1
	mouseEventFLeftDown   = 0x0002
	mouseEventFLeftUp     = 0x0004
	mouseEventFRightDown  = 0x0008
	mouseEventFRightUp    = 0x0010
	mouseEventFMiddleDown = 0x0020
	mouseEventFMiddleUp   = 0x0040
)

type mouseInput struct {
	dx          int32
	dy          int32
	mouseData   uint32
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	mi        mouseInput
}

type winPoint struct {
	x, y int32
}

// winPlatform uses user32. Windows reports top-left coordinates, so Location
// flips them into the native bottom-left convention.
type winPlatform struct{}

// NewPlatform returns the SendInput pointer reader and event poster.
func NewPlatform() Platform {
	return winPlatform{}
}

func (p winPlatform) Location() (Point, error) {
	var pt winPoint
	if r, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt))); r == 0 {
		return Point{}, fmt.Errorf("GetCursorPos: %w", err)
	}
	h, ok := p.PrimaryHeight()
	if !ok {
		return Point{}, ErrNoDisplay
	}
	return Point{X: float64(pt.x), Y: h - float64(pt.y)}, nil
}

func (p winPlatform) DisplayHeight(Point) (float64, bool) {
	return p.PrimaryHeight()
}

func (winPlatform) PrimaryHeight() (float64, bool) {
	h, _, _ := procGetSystemMetrics.Call(smCYScreen)
	if int32(h) <= 0 {
		return 0, false
	}
	return float64(int32(h)), true
}

func (winPlatform) Post(ev ClickEvent) error {
	flags, err := mouseFlags(ev)
	if err != nil {
		return err
	}
	if r, _, err := procSetCursorPos.Call(uintptr(int32(ev.Point.X)), uintptr(int32(ev.Point.Y))); r == 0 {
		return fmt.Errorf("SetCursorPos: %w", err)
	}

	in := input{inputType: inputMouse, mi: mouseInput{dwFlags: flags}}
	r, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if r != 1 {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}

func mouseFlags(ev ClickEvent) (uint32, error) {
	up := ev.Phase == PhaseUp
	switch ev.Button {
	case ButtonLeft:
		if up {
			return mouseEventFLeftUp, nil
		}
		return mouseEventFLeftDown, nil
	case ButtonRight:
		if up {
			return mouseEventFRightUp, nil
		}
		return mouseEventFRightDown, nil
	case ButtonMiddle:
		if up {
			return mouseEventFMiddleUp, nil
		}
		return mouseEventFMiddleDown, nil
	default:
		return 0, fmt.Errorf("button %d: %w", ev.Button, ErrUnsupported)
	}
}
