package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultBinding(t *testing.T) {
	b := DefaultBinding()
	if b.KeyCode != 46 {
		t.Fatalf("expected key code 46, got %d", b.KeyCode)
	}
	if b.Modifiers != ModCommand|ModShift {
		t.Fatalf("expected cmd+shift, got %s", b.Modifiers)
	}
	if !b.Enabled {
		t.Fatalf("expected default binding to be enabled")
	}
	if got := b.String(); got != "cmd+shift+m" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestBindingValidate(t *testing.T) {
	cases := map[string]struct {
		binding Binding
		wantErr error
	}{
		"default":        {DefaultBinding(), nil},
		"bare key":       {Binding{KeyCode: KeyCodeSpace}, nil},
		"key too large":  {Binding{KeyCode: 0x80, Modifiers: ModCommand}, ErrInvalidBinding},
		"caps lock flag": {Binding{KeyCode: KeyCodeM, Modifiers: ModCommand | 1<<16}, ErrUnknownModifier},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.binding.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestModifiersFromFlagsDropsDeviceBits(t *testing.T) {
	const capsLock, numericPad, function = 1 << 16, 1 << 21, 1 << 23
	flags := uint64(ModCommand|ModShift) | capsLock | numericPad | function | 0x100
	if got := ModifiersFromFlags(flags); got != ModCommand|ModShift {
		t.Fatalf("expected cmd+shift, got %s", got)
	}
}

func TestParseModifiers(t *testing.T) {
	set, err := ParseModifiers([]string{"Command", "alt", "ctrl", " shift "})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set != DeviceIndependentMask {
		t.Fatalf("expected all modifiers, got %s", set)
	}
	if _, err := ParseModifiers([]string{"hyper"}); !errors.Is(err, ErrUnknownModifier) {
		t.Fatalf("expected ErrUnknownModifier, got %v", err)
	}
}

func TestKeyNames(t *testing.T) {
	for _, name := range AvailableKeys() {
		code, err := KeyCodeFor(name)
		if err != nil {
			t.Fatalf("key %q: %v", name, err)
		}
		if got := KeyName(code); got != name {
			t.Fatalf("round trip %q -> %d -> %q", name, code, got)
		}
	}
	if got := KeyName(0x7E); got != "0x7E" {
		t.Fatalf("expected hex fallback, got %q", got)
	}
}

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Binding() != DefaultBinding() {
		t.Fatalf("expected default binding, got %+v", s.Binding())
	}
	if s.PollInterval() != DefaultPollInterval {
		t.Fatalf("expected default poll interval, got %s", s.PollInterval())
	}
	if !s.NotificationsEnabled() {
		t.Fatalf("expected notifications on by default")
	}
}

func TestOpenOverridesFromFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
hotkey:
  key: space
  modifiers: [ctrl, option]
poll_interval: 500ms
notifications: false
ui_language: ru
`)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	want := Binding{KeyCode: KeyCodeSpace, Modifiers: ModControl | ModOption, Enabled: true}
	if s.Binding() != want {
		t.Fatalf("expected %+v, got %+v", want, s.Binding())
	}
	if s.PollInterval() != 500*time.Millisecond {
		t.Fatalf("unexpected poll interval %s", s.PollInterval())
	}
	if s.NotificationsEnabled() {
		t.Fatalf("expected notifications off")
	}
	if s.UILanguage() != "ru" {
		t.Fatalf("unexpected language %q", s.UILanguage())
	}
}

func TestModifiersMustBeExplicitlyEmpty(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(writeConfig(t, dir, "hotkey:\n  key: f5\n"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Binding().Modifiers != ModCommand|ModShift {
		t.Fatalf("absent modifiers should keep the default chord, got %s", s.Binding().Modifiers)
	}

	s, err = Open(writeConfig(t, dir, "hotkey:\n  key: f5\n  modifiers: []\n"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Binding().Modifiers != 0 {
		t.Fatalf("explicit empty list should clear modifiers, got %s", s.Binding().Modifiers)
	}
}

func TestOpenRejectsBrokenFile(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "hotkey:\n  key: banana\n",
		"unknown modifier": "hotkey:\n  modifiers: [hyper]\n",
		"key code range":   "hotkey:\n  key_code: 300\n",
		"bad interval":     "poll_interval: soon\n",
		"negative":         "poll_interval: -1s\n",
		"not yaml":         "hotkey: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Open(writeConfig(t, t.TempDir(), body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSetBindingReplacesAndNotifies(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var got []Binding
	s.OnBindingChange(func(b Binding) { got = append(got, b) })

	next := Binding{KeyCode: KeyCodeA, Modifiers: ModControl, Enabled: true}
	if err := s.SetBinding(next); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetBinding(next); err != nil {
		t.Fatalf("set again: %v", err)
	}
	if err := s.SetBinding(Binding{KeyCode: 0xFF}); !errors.Is(err, ErrInvalidBinding) {
		t.Fatalf("expected ErrInvalidBinding, got %v", err)
	}
	if len(got) != 1 || got[0] != next {
		t.Fatalf("expected exactly one change callback with %+v, got %+v", next, got)
	}
	if s.Binding() != next {
		t.Fatalf("invalid binding must not replace the active one")
	}

	disabled := s.SetEnabled(false)
	if disabled.Enabled || s.Binding().Enabled {
		t.Fatalf("expected binding to be disabled")
	}
	if len(got) != 2 {
		t.Fatalf("expected SetEnabled to fire the callback")
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "hotkey:\n  key: m\n")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	changed, err := s.Reload()
	if err != nil || changed {
		t.Fatalf("expected no change, got changed=%v err=%v", changed, err)
	}

	writeConfig(t, dir, "hotkey:\n  key: k\n")
	changed, err = s.Reload()
	if err != nil || !changed {
		t.Fatalf("expected change, got changed=%v err=%v", changed, err)
	}
	if s.Binding().KeyCode != 0x28 {
		t.Fatalf("expected key k, got %s", s.Binding())
	}

	writeConfig(t, dir, "")
	changed, err = s.Reload()
	if err != nil || changed {
		t.Fatalf("empty file should keep settings, got changed=%v err=%v", changed, err)
	}
	if s.Binding().KeyCode != 0x28 {
		t.Fatalf("empty file must not reset the binding")
	}
}

func TestReloadKeepsInMemoryChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "hotkey:\n  key: m\npoll_interval: 3s\n")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	reloads := 0
	s.OnReload(func() { reloads++ })

	s.SetEnabled(false)
	if s.ToggleNotifications() {
		t.Fatalf("expected notifications to turn off")
	}

	writeConfig(t, dir, "hotkey:\n  key: m\npoll_interval: 5s\n")
	changed, err := s.Reload()
	if err != nil || changed {
		t.Fatalf("expected no binding change, got changed=%v err=%v", changed, err)
	}
	if s.Binding().Enabled {
		t.Fatalf("reload must keep the hotkey disabled")
	}
	if s.NotificationsEnabled() {
		t.Fatalf("reload must keep notifications off")
	}
	if s.PollInterval() != 5*time.Second {
		t.Fatalf("expected poll interval 5s, got %v", s.PollInterval())
	}
	if reloads != 1 {
		t.Fatalf("expected one reload callback, got %d", reloads)
	}

	writeConfig(t, dir, "hotkey:\n  enabled: true\nnotifications: true\n")
	if _, err := s.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !s.Binding().Enabled || !s.NotificationsEnabled() {
		t.Fatalf("keys present in the file must win")
	}
	if reloads != 2 {
		t.Fatalf("expected two reload callbacks, got %d", reloads)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "hotkey:\n  key: m\n")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	changes := make(chan Binding, 16)
	s.OnBindingChange(func(b Binding) { changes <- b })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, s) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "hotkey:\n  key: j\n  modifiers: [ctrl]\n")

	want := Binding{KeyCode: 0x26, Modifiers: ModControl, Enabled: true}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case b := <-changes:
			if b == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for reload, binding is %+v", s.Binding())
		}
	}
}
