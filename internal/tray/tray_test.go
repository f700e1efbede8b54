package tray

import (
	"bytes"
	"testing"

	"midclick/embedded"
)

func TestStatusPresentation(t *testing.T) {
	cases := []struct {
		name   string
		status Status
		icon   []byte
		label  string
		toggle string
	}{
		{"active", Status{Trusted: true, Enabled: true}, embedded.IconTrusted, "tray_trusted", "tray_disable"},
		{"untrusted", Status{Enabled: true}, embedded.IconUntrusted, "tray_untrusted", "tray_disable"},
		{"disabled", Status{Trusted: true}, embedded.IconDisabled, "tray_disabled", "tray_enable"},
		{"disabled and untrusted", Status{}, embedded.IconDisabled, "tray_untrusted", "tray_enable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !bytes.Equal(tc.status.Icon(), tc.icon) {
				t.Fatalf("wrong icon")
			}
			if tc.status.Label() != tc.label {
				t.Fatalf("expected label %q, got %q", tc.label, tc.status.Label())
			}
			if tc.status.ToggleLabel() != tc.toggle {
				t.Fatalf("expected toggle %q, got %q", tc.toggle, tc.status.ToggleLabel())
			}
		})
	}
}

func TestSetStatusBeforeMenuIsBuilt(t *testing.T) {
	tr := New(Callbacks{}, Status{}, true)
	want := Status{Trusted: true, Enabled: true, Hotkey: "cmd+shift+m"}
	tr.SetStatus(want)
	if tr.current != want {
		t.Fatalf("expected pending status %+v, got %+v", want, tr.current)
	}
}

func TestSetNotificationsBeforeMenuIsBuilt(t *testing.T) {
	tr := New(Callbacks{}, Status{}, true)
	tr.SetNotifications(false)
	if tr.Notifications() {
		t.Fatalf("expected notifications checkbox to be pending unchecked")
	}
}

func TestIconsAreEmbedded(t *testing.T) {
	pngMagic := []byte("\x89PNG\r\n\x1a\n")
	for _, icon := range [][]byte{embedded.IconTrusted, embedded.IconUntrusted, embedded.IconDisabled} {
		if !bytes.HasPrefix(icon, pngMagic) {
			t.Fatalf("icon is not a png")
		}
	}
}
