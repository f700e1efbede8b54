//go:build !darwin && !linux && !windows

package hotkey

import (
	"fmt"
	"runtime"

	"midclick/internal/config"
)

type unsupportedMonitor struct{}

// NewMonitor returns a monitor that always fails to install.
func NewMonitor() Monitor {
	return unsupportedMonitor{}
}

func (unsupportedMonitor) Install(config.Binding, func(KeyEvent)) (any, error) {
	return nil, fmt.Errorf("%w: global key monitor unsupported on %s", ErrMonitorRegistrationFailed, runtime.GOOS)
}

func (unsupportedMonitor) Remove(any) {}
