package config

import (
	"fmt"
	"strings"
)

// ModifierSet is a set of held modifier keys. The bit values are the
// device-independent modifier flags reported by the macOS event system.
type ModifierSet uint64

const (
	ModShift   ModifierSet = 1 << 17
	ModControl ModifierSet = 1 << 18
	ModOption  ModifierSet = 1 << 19
	ModCommand ModifierSet = 1 << 20
)

// DeviceIndependentMask keeps the logical modifier keys of a raw flags word.
// Caps lock, fn and numeric-pad bits fall outside of it.
const DeviceIndependentMask = ModShift | ModControl | ModOption | ModCommand

// modifierOrder is the display order: command, shift, option, control.
var modifierOrder = []ModifierSet{ModCommand, ModShift, ModOption, ModControl}

var modifierNames = map[ModifierSet]string{
	ModCommand: "cmd",
	ModShift:   "shift",
	ModOption:  "option",
	ModControl: "ctrl",
}

// ModifiersFromFlags restricts a raw event flags word to the logical modifier bits.
func ModifiersFromFlags(flags uint64) ModifierSet {
	return ModifierSet(flags) & DeviceIndependentMask
}

// Has reports whether every modifier in mod is held.
func (m ModifierSet) Has(mod ModifierSet) bool {
	return mod != 0 && m&mod == mod
}

// List returns the individual modifiers in display order.
func (m ModifierSet) List() []ModifierSet {
	mods := make([]ModifierSet, 0, len(modifierOrder))
	for _, mod := range modifierOrder {
		if m&mod != 0 {
			mods = append(mods, mod)
		}
	}
	return mods
}

// String returns e.g. "cmd+shift".
func (m ModifierSet) String() string {
	parts := make([]string, 0, len(modifierOrder))
	for _, mod := range m.List() {
		parts = append(parts, modifierNames[mod])
	}
	return strings.Join(parts, "+")
}

// ParseModifier accepts the usual spellings of a single modifier key.
func ParseModifier(name string) (ModifierSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cmd", "command", "super", "meta":
		return ModCommand, nil
	case "shift":
		return ModShift, nil
	case "option", "opt", "alt":
		return ModOption, nil
	case "ctrl", "control":
		return ModControl, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownModifier, name)
	}
}

// ParseModifiers folds a list of modifier names into a set.
func ParseModifiers(names []string) (ModifierSet, error) {
	var set ModifierSet
	for _, name := range names {
		mod, err := ParseModifier(name)
		if err != nil {
			return 0, err
		}
		set |= mod
	}
	return set, nil
}

// macOS virtual key codes (kVK_ANSI_*, kVK_*).
const (
	KeyCodeA     uint16 = 0x00
	KeyCodeM     uint16 = 0x2E
	KeyCodeSpace uint16 = 0x31

	// MaxKeyCode is the largest virtual key code the keyboard layer reports.
	MaxKeyCode uint16 = 0x7F
)

var keyCodes = map[string]uint16{
	"a": 0x00, "s": 0x01, "d": 0x02, "f": 0x03, "h": 0x04, "g": 0x05, "z": 0x06, "x": 0x07,
	"c": 0x08, "v": 0x09, "b": 0x0B, "q": 0x0C, "w": 0x0D, "e": 0x0E, "r": 0x0F, "y": 0x10,
	"t": 0x11, "o": 0x1F, "u": 0x20, "i": 0x22, "p": 0x23, "l": 0x25, "j": 0x26, "k": 0x28,
	"n": 0x2D, "m": 0x2E,

	"1": 0x12, "2": 0x13, "3": 0x14, "4": 0x15, "6": 0x16, "5": 0x17, "9": 0x19, "7": 0x1A,
	"8": 0x1C, "0": 0x1D,

	"return": 0x24, "tab": 0x30, "space": 0x31, "escape": 0x35,

	"f1": 0x7A, "f2": 0x78, "f3": 0x63, "f4": 0x76, "f5": 0x60, "f6": 0x61,
	"f7": 0x62, "f8": 0x64, "f9": 0x65, "f10": 0x6D, "f11": 0x67, "f12": 0x6F,
}

var keyNames = func() map[uint16]string {
	names := make(map[uint16]string, len(keyCodes))
	for name, code := range keyCodes {
		names[code] = name
	}
	return names
}()

// KeyCodeFor resolves a key name ("m", "space", "f5") to its virtual key code.
func KeyCodeFor(name string) (uint16, error) {
	code, ok := keyCodes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return code, nil
}

// KeyName returns the name of a virtual key code, or its hex value when the
// code has no name.
func KeyName(code uint16) string {
	if name, ok := keyNames[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", code)
}

// AvailableKeys returns the named keys in picker order.
func AvailableKeys() []string {
	keys := []string{"space", "return", "tab", "escape"}
	for c := 'a'; c <= 'z'; c++ {
		keys = append(keys, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		keys = append(keys, string(c))
	}
	for i := 1; i <= 12; i++ {
		keys = append(keys, fmt.Sprintf("f%d", i))
	}
	return keys
}

// AvailableModifiers returns the modifiers in display order.
func AvailableModifiers() []ModifierSet {
	return append([]ModifierSet(nil), modifierOrder...)
}
