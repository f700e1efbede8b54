package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

var errEmptyFile = errors.New("config file is empty")

// fileData mirrors config.yml. Pointer fields distinguish "absent" from zero.
type fileData struct {
	Hotkey        *hotkeyData `yaml:"hotkey"`
	PollInterval  string      `yaml:"poll_interval"`
	Notifications *bool       `yaml:"notifications"`
	UILanguage    string      `yaml:"ui_language"`
}

type hotkeyData struct {
	Key       string    `yaml:"key"`
	KeyCode   *uint16   `yaml:"key_code"`
	Modifiers *[]string `yaml:"modifiers"`
	Enabled   *bool     `yaml:"enabled"`
}

func loadFile(path string, base settings) (settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	return parse(data, base)
}

// parse overlays the YAML document on base. An absent modifiers key keeps the
// base chord; an explicit empty list configures a bare key.
func parse(data []byte, base settings) (settings, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return base, errEmptyFile
	}

	var raw fileData
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return base, fmt.Errorf("parse config: %w", err)
	}

	cfg := base
	if hk := raw.Hotkey; hk != nil {
		b := cfg.binding
		switch {
		case hk.KeyCode != nil:
			b.KeyCode = *hk.KeyCode
		case hk.Key != "":
			code, err := KeyCodeFor(hk.Key)
			if err != nil {
				return base, err
			}
			b.KeyCode = code
		}
		if hk.Modifiers != nil {
			mods, err := ParseModifiers(*hk.Modifiers)
			if err != nil {
				return base, err
			}
			b.Modifiers = mods
		}
		if hk.Enabled != nil {
			b.Enabled = *hk.Enabled
		}
		if err := b.Validate(); err != nil {
			return base, err
		}
		cfg.binding = b
	}

	if raw.PollInterval != "" {
		d, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return base, fmt.Errorf("parse poll_interval: %w", err)
		}
		if d <= 0 {
			return base, fmt.Errorf("poll_interval must be positive, got %s", d)
		}
		cfg.pollInterval = d
	}
	if raw.Notifications != nil {
		cfg.notifications = *raw.Notifications
	}
	if raw.UILanguage != "" {
		cfg.uiLanguage = raw.UILanguage
	}
	return cfg, nil
}
