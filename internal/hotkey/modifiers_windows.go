//go:build windows

package hotkey

import (
	"golang.design/x/hotkey"

	"midclick/internal/config"
)

// modifierMap maps logical modifiers to RegisterHotKey modifier flags.
var modifierMap = map[config.ModifierSet]hotkey.Modifier{
	config.ModControl: hotkey.ModCtrl,
	config.ModShift:   hotkey.ModShift,
	config.ModOption:  hotkey.ModAlt,
	config.ModCommand: hotkey.ModWin,
}
