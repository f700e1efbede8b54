//go:build linux

package hotkey

import (
	"golang.design/x/hotkey"

	"midclick/internal/config"
)

// modifierMap maps logical modifiers to X11 modifier masks.
var modifierMap = map[config.ModifierSet]hotkey.Modifier{
	config.ModControl: hotkey.ModCtrl,
	config.ModShift:   hotkey.ModShift,
	config.ModOption:  hotkey.Mod1, // Alt is Mod1 on X11
	config.ModCommand: hotkey.Mod4, // Super is Mod4 on X11
}
