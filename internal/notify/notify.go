// Package notify provides system notifications.
package notify

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/gen2brain/beeep"

	"midclick/internal/i18n"
	"midclick/internal/permission"
)

const appName = "MidClick"

// Notifier sends system notifications.
type Notifier struct {
	enabled atomic.Bool
	send    func(title, message, icon string) error
}

// New creates a new Notifier.
func New(enabled bool) *Notifier {
	n := &Notifier{send: func(title, message, icon string) error {
		return beeep.Notify(title, message, icon)
	}}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled turns notifications on or off.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// Enabled reports whether notifications are shown.
func (n *Notifier) Enabled() bool {
	return n.enabled.Load()
}

// Ready announces the running application and its hotkey.
func (n *Notifier) Ready(hotkey string) {
	n.notify(i18n.T("notify_ready"), fmt.Sprintf(i18n.T("notify_ready_hint"), hotkey))
}

// TrustChanged is a bus subscriber for accessibility trust transitions.
func (n *Notifier) TrustChanged(c permission.Change) {
	if c.HasPermissions {
		n.notify(i18n.T("notify_granted"), i18n.T("notify_granted_hint"))
		return
	}
	n.notify(i18n.T("notify_revoked"), i18n.T("notify_revoked_hint"))
}

// Error shows an error notification.
func (n *Notifier) Error(msg string) {
	if len(msg) > 100 {
		msg = msg[:100] + "..."
	}
	n.notify(i18n.T("notify_error"), msg)
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled.Load() {
		return
	}
	// Notification failures are not critical
	if err := n.send(appName+": "+title, message, ""); err != nil {
		log.Printf("Notification failed: %v", err)
	}
}
