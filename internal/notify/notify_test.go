package notify

import (
	"strings"
	"testing"

	"midclick/internal/permission"
)

type sent struct{ title, message string }

func newRecording(enabled bool) (*Notifier, *[]sent) {
	var out []sent
	n := New(enabled)
	n.send = func(title, message, _ string) error {
		out = append(out, sent{title, message})
		return nil
	}
	return n, &out
}

func TestTrustChanged(t *testing.T) {
	n, out := newRecording(true)

	n.TrustChanged(permission.Change{HasPermissions: true})
	n.TrustChanged(permission.Change{HasPermissions: false})

	if len(*out) != 2 {
		t.Fatalf("expected two notifications, got %d", len(*out))
	}
	if !strings.Contains((*out)[0].title, "granted") || !strings.Contains((*out)[1].title, "revoked") {
		t.Fatalf("unexpected titles %+v", *out)
	}
	for _, s := range *out {
		if !strings.HasPrefix(s.title, appName+": ") {
			t.Fatalf("title %q lacks app name", s.title)
		}
	}
}

func TestDisabledNotifierIsSilent(t *testing.T) {
	n, out := newRecording(false)
	n.Ready("cmd+shift+m")
	n.TrustChanged(permission.Change{HasPermissions: true})
	if len(*out) != 0 {
		t.Fatalf("disabled notifier sent %d notifications", len(*out))
	}

	n.SetEnabled(true)
	n.Ready("cmd+shift+m")
	if len(*out) != 1 || !strings.Contains((*out)[0].message, "cmd+shift+m") {
		t.Fatalf("expected ready notification with hotkey, got %+v", *out)
	}
}

func TestErrorIsTruncated(t *testing.T) {
	n, out := newRecording(true)
	n.Error(strings.Repeat("x", 150))
	if got := len((*out)[0].message); got != 103 {
		t.Fatalf("expected truncated message of 103 bytes, got %d", got)
	}
}
