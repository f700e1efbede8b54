//go:build linux

package inject

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// xdoPlatform drives X11 through xdotool. X11 reports top-left coordinates,
// so Location flips them into the native bottom-left convention.
type xdoPlatform struct {
	useWayland bool
	run        func(args ...string) ([]byte, error)
}

// NewPlatform returns the xdotool pointer reader and event poster.
func NewPlatform() Platform {
	return &xdoPlatform{
		useWayland: os.Getenv("WAYLAND_DISPLAY") != "",
		run: func(args ...string) ([]byte, error) {
			return exec.Command("xdotool", args...).Output()
		},
	}
}

func (p *xdoPlatform) Location() (Point, error) {
	if p.useWayland {
		return Point{}, fmt.Errorf("wayland: %w", ErrUnsupported)
	}
	out, err := p.run("getmouselocation", "--shell")
	if err != nil {
		return Point{}, fmt.Errorf("xdotool getmouselocation: %w", err)
	}
	x, y, err := parseMouseLocation(out)
	if err != nil {
		return Point{}, err
	}
	h, ok := p.PrimaryHeight()
	if !ok {
		return Point{}, ErrNoDisplay
	}
	return Point{X: x, Y: h - y}, nil
}

// DisplayHeight reports the X screen height; X11 exposes one logical screen.
func (p *xdoPlatform) DisplayHeight(Point) (float64, bool) {
	return p.PrimaryHeight()
}

func (p *xdoPlatform) PrimaryHeight() (float64, bool) {
	if p.useWayland {
		return 0, false
	}
	out, err := p.run("getdisplaygeometry")
	if err != nil {
		return 0, false
	}
	_, h, err := parseGeometry(out)
	if err != nil {
		return 0, false
	}
	return h, true
}

func (p *xdoPlatform) Post(ev ClickEvent) error {
	if p.useWayland {
		return fmt.Errorf("wayland: %w", ErrUnsupported)
	}
	button, err := xButton(ev.Button)
	if err != nil {
		return err
	}
	action := "mousedown"
	if ev.Phase == PhaseUp {
		action = "mouseup"
	}
	x := strconv.Itoa(int(ev.Point.X))
	y := strconv.Itoa(int(ev.Point.Y))
	if _, err := p.run("mousemove", "--sync", x, y, action, button); err != nil {
		return fmt.Errorf("xdotool %s: %w", action, err)
	}
	return nil
}

func xButton(b Button) (string, error) {
	switch b {
	case ButtonLeft:
		return "1", nil
	case ButtonMiddle:
		return "2", nil
	case ButtonRight:
		return "3", nil
	default:
		return "", fmt.Errorf("button %d: %w", b, ErrUnsupported)
	}
}

// parseMouseLocation reads the X= and Y= lines of `getmouselocation --shell`.
func parseMouseLocation(out []byte) (x, y float64, err error) {
	var haveX, haveY bool
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "X":
			x, err = strconv.ParseFloat(value, 64)
			haveX = err == nil
		case "Y":
			y, err = strconv.ParseFloat(value, 64)
			haveY = err == nil
		}
		if err != nil {
			return 0, 0, fmt.Errorf("parse pointer %s: %w", key, err)
		}
	}
	if !haveX || !haveY {
		return 0, 0, fmt.Errorf("parse pointer: no coordinates in %q", out)
	}
	return x, y, nil
}

// parseGeometry reads the "width height" output of getdisplaygeometry.
func parseGeometry(out []byte) (w, h float64, err error) {
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("parse geometry: %q", out)
	}
	if w, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return 0, 0, fmt.Errorf("parse geometry width: %w", err)
	}
	if h, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return 0, 0, fmt.Errorf("parse geometry height: %w", err)
	}
	if h <= 0 {
		return 0, 0, fmt.Errorf("parse geometry: height %v", h)
	}
	return w, h, nil
}
