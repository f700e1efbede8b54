// Package config holds the active hotkey binding and application settings.
//
// Settings start from built-in defaults and may be overridden by a read-only
// YAML file next to the executable. Nothing is ever written back to disk.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	ErrInvalidBinding  = errors.New("invalid hotkey binding")
	ErrUnknownKey      = errors.New("unknown key")
	ErrUnknownModifier = errors.New("unknown modifier")
)

const (
	// DefaultPollInterval is how often the accessibility trust is re-checked.
	DefaultPollInterval = 2 * time.Second

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "MIDCLICK_CONFIG"

	fileName = "config.yml"
)

// Binding is a global hotkey chord. It is a value: a new binding replaces the
// old one wholesale.
type Binding struct {
	KeyCode   uint16
	Modifiers ModifierSet
	Enabled   bool
}

// DefaultBinding returns command+shift+M, enabled.
func DefaultBinding() Binding {
	return Binding{
		KeyCode:   KeyCodeM,
		Modifiers: ModCommand | ModShift,
		Enabled:   true,
	}
}

// Validate checks that the key code is in range and only logical modifiers are set.
func (b Binding) Validate() error {
	if b.KeyCode > MaxKeyCode {
		return fmt.Errorf("%w: key code %d out of range", ErrInvalidBinding, b.KeyCode)
	}
	if extra := b.Modifiers &^ DeviceIndependentMask; extra != 0 {
		return fmt.Errorf("%w: %w: flags %#x", ErrInvalidBinding, ErrUnknownModifier, uint64(extra))
	}
	return nil
}

// String returns e.g. "cmd+shift+m".
func (b Binding) String() string {
	key := KeyName(b.KeyCode)
	if b.Modifiers == 0 {
		return key
	}
	return b.Modifiers.String() + "+" + key
}

// Store owns the active binding and the remaining settings.
type Store struct {
	mu              sync.RWMutex
	binding         Binding
	pollInterval    time.Duration
	notifications   bool
	uiLanguage      string
	path            string
	onBindingChange func(Binding)
	onReload        func()
}

type settings struct {
	binding       Binding
	pollInterval  time.Duration
	notifications bool
	uiLanguage    string
}

func defaults() settings {
	return settings{
		binding:       DefaultBinding(),
		pollInterval:  DefaultPollInterval,
		notifications: true,
		uiLanguage:    "en",
	}
}

// New creates a store from defaults and the config file, if one exists.
// A broken file is logged and ignored.
func New() *Store {
	path := DefaultPath()
	s, err := Open(path)
	if err != nil {
		log.Printf("Config %s ignored: %v", path, err)
		s = &Store{path: path}
		s.apply(defaults())
	}
	return s
}

// Open creates a store from defaults overridden by the file at path.
// A missing file is not an error. An empty path means no file.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	cfg := defaults()
	if path != "" {
		loaded, err := loadFile(path, cfg)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, os.ErrNotExist), errors.Is(err, errEmptyFile):
		default:
			return nil, err
		}
	}
	s.apply(cfg)
	return s, nil
}

// DefaultPath resolves the config file: $MIDCLICK_CONFIG, or config.yml next
// to the executable.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return filepath.Clean(p)
	}
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(execPath), fileName)
}

func (s *Store) snapshot() settings {
	return settings{
		binding:       s.binding,
		pollInterval:  s.pollInterval,
		notifications: s.notifications,
		uiLanguage:    s.uiLanguage,
	}
}

func (s *Store) apply(cfg settings) {
	s.binding = cfg.binding
	s.pollInterval = cfg.pollInterval
	s.notifications = cfg.notifications
	s.uiLanguage = cfg.uiLanguage
}

// Path returns the config file path, or "" when there is none.
func (s *Store) Path() string {
	return s.path
}

// Binding returns a copy of the active binding.
func (s *Store) Binding() Binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.binding
}

// SetBinding validates b and replaces the active binding. The change callback
// runs only when the binding actually differs.
func (s *Store) SetBinding(b Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	changed := s.binding != b
	s.binding = b
	callback := s.onBindingChange
	s.mu.Unlock()

	if changed && callback != nil {
		callback(b)
	}
	return nil
}

// SetEnabled replaces the binding with a copy whose Enabled flag is enabled.
func (s *Store) SetEnabled(enabled bool) Binding {
	b := s.Binding()
	b.Enabled = enabled
	// A copy of a valid binding with a flipped flag is still valid.
	_ = s.SetBinding(b)
	return b
}

// OnBindingChange sets the callback for binding replacements.
func (s *Store) OnBindingChange(fn func(Binding)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onBindingChange = fn
}

// OnReload sets the callback that runs after a successful Reload.
func (s *Store) OnReload(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = fn
}

// PollInterval returns the trust polling interval.
func (s *Store) PollInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pollInterval
}

// NotificationsEnabled reports whether desktop notifications are on.
func (s *Store) NotificationsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications
}

// ToggleNotifications flips the notifications flag (in memory only).
func (s *Store) ToggleNotifications() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = !s.notifications
	return s.notifications
}

// UILanguage returns the interface language code.
func (s *Store) UILanguage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uiLanguage
}

// Reload re-reads the config file and lays the keys present in it over the
// current settings, so in-memory changes to keys the file does not mention
// survive. It reports whether the binding changed; the change callback fires
// in that case and the reload callback fires after every successful reload.
// An empty or missing file keeps the current settings.
func (s *Store) Reload() (bool, error) {
	if s.path == "" {
		return false, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	loaded, err := parse(data, s.snapshot())
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, errEmptyFile) {
			return false, nil
		}
		return false, err
	}
	changed := s.binding != loaded.binding
	s.apply(loaded)
	onBinding, onReload := s.onBindingChange, s.onReload
	s.mu.Unlock()

	if changed && onBinding != nil {
		onBinding(loaded.binding)
	}
	if onReload != nil {
		onReload()
	}
	return changed, nil
}
