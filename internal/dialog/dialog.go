// Package dialog provides the modal dialogs of the application.
package dialog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ncruces/zenity"

	"midclick/internal/config"
	"midclick/internal/i18n"
)

// ErrCanceled is returned when the user dismisses a picker.
var ErrCanceled = zenity.ErrCanceled

// TrustExplainer shows why accessibility access is needed and offers to open
// the settings page.
type TrustExplainer struct{}

// ExplainTrust blocks until the user answers. Cancel is not an error.
func (TrustExplainer) ExplainTrust() (bool, error) {
	err := zenity.Question(
		i18n.T("permission_message"),
		zenity.Title(i18n.T("permission_title")),
		zenity.OKLabel(i18n.T("permission_open")),
		zenity.CancelLabel(i18n.T("permission_cancel")),
		zenity.WarningIcon,
	)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, zenity.ErrCanceled):
		return false, nil
	default:
		return false, err
	}
}

// SelectHotkey asks for the modifiers, then for the key. The returned binding
// keeps the enabled flag of current. Cancelling either step returns current
// and ErrCanceled.
func SelectHotkey(current config.Binding) (config.Binding, error) {
	selectedMods, err := zenity.ListMultiple(
		i18n.T("settings_modifiers"),
		modifierLabels(config.AvailableModifiers()),
		zenity.Title(i18n.T("settings_modifiers_title")),
		zenity.DefaultItems(modifierLabels(current.Modifiers.List())...),
	)
	if err != nil {
		return current, err
	}
	mods, err := modifiersFromLabels(selectedMods)
	if err != nil {
		return current, err
	}

	selectedKey, err := zenity.List(
		i18n.T("settings_key"),
		keyLabels(config.AvailableKeys()),
		zenity.Title(i18n.T("settings_key_title")),
		zenity.DefaultItems(keyLabel(config.KeyName(current.KeyCode))),
	)
	if err != nil {
		return current, err
	}
	code, err := config.KeyCodeFor(selectedKey)
	if err != nil {
		return current, err
	}

	b := config.Binding{KeyCode: code, Modifiers: mods, Enabled: current.Enabled}
	if err := b.Validate(); err != nil {
		return current, err
	}
	return b, nil
}

// ShowError shows an error message.
func ShowError(title, message string) {
	zenity.Error(message, zenity.Title(title))
}

var modifierKeys = map[config.ModifierSet]string{
	config.ModCommand: "mod_cmd",
	config.ModShift:   "mod_shift",
	config.ModOption:  "mod_option",
	config.ModControl: "mod_ctrl",
}

func modifierLabels(mods []config.ModifierSet) []string {
	labels := make([]string, 0, len(mods))
	for _, m := range mods {
		labels = append(labels, i18n.T(modifierKeys[m]))
	}
	return labels
}

func modifiersFromLabels(labels []string) (config.ModifierSet, error) {
	var set config.ModifierSet
	for _, label := range labels {
		found := false
		for mod, key := range modifierKeys {
			if i18n.T(key) == label {
				set |= mod
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", config.ErrUnknownModifier, label)
		}
	}
	return set, nil
}

// keyLabel renders "space" as "Space" and "m" as "M". KeyCodeFor is
// case-insensitive, so the label parses back directly.
func keyLabel(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func keyLabels(names []string) []string {
	labels := make([]string, 0, len(names))
	for _, n := range names {
		labels = append(labels, keyLabel(n))
	}
	return labels
}
