// Package tray provides the menu bar item and its menu.
package tray

import (
	"fmt"
	"log"
	"sync"

	"github.com/getlantern/systray"

	"midclick/embedded"
	"midclick/internal/i18n"
)

// Title is shown next to the icon in the menu bar.
const Title = "⌘🖱"

// Status is what the menu bar item currently shows.
type Status struct {
	Trusted bool
	Enabled bool
	Hotkey  string
}

// Icon returns the icon for the status.
func (s Status) Icon() []byte {
	switch {
	case !s.Enabled:
		return embedded.IconDisabled
	case !s.Trusted:
		return embedded.IconUntrusted
	default:
		return embedded.IconTrusted
	}
}

// Label returns the translation key of the status line.
func (s Status) Label() string {
	switch {
	case !s.Trusted:
		return "tray_untrusted"
	case !s.Enabled:
		return "tray_disabled"
	default:
		return "tray_trusted"
	}
}

// ToggleLabel returns the translation key of the enable/disable item.
func (s Status) ToggleLabel() string {
	if s.Enabled {
		return "tray_disable"
	}
	return "tray_enable"
}

// Callbacks holds the menu handlers. They run on the menu goroutine.
type Callbacks struct {
	// OnToggleEnabled flips the binding and returns the new status.
	OnToggleEnabled       func() Status
	OnGrantAccess         func()
	OnNotificationsToggle func() bool
	OnSettingsClick       func()
	OnQuit                func()
}

// Tray manages the menu bar item.
type Tray struct {
	callbacks Callbacks

	mu            sync.Mutex
	current       Status
	notifications bool
	built         bool

	status      *systray.MenuItem
	hotkey      *systray.MenuItem
	toggle      *systray.MenuItem
	grant       *systray.MenuItem
	notifyOn    *systray.MenuItem
	settingsBtn *systray.MenuItem
	quitBtn     *systray.MenuItem
}

// New creates a new Tray.
func New(callbacks Callbacks, initial Status, notifications bool) *Tray {
	return &Tray{
		callbacks:     callbacks,
		current:       initial,
		notifications: notifications,
	}
}

// Run starts the menu bar item. It blocks and must be called on the main
// goroutine.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle(Title)
	systray.SetTooltip(i18n.T("app_tooltip"))

	t.status = systray.AddMenuItem("", "")
	t.status.Disable()
	t.hotkey = systray.AddMenuItem("", "")
	t.hotkey.Disable()

	systray.AddSeparator()

	t.toggle = systray.AddMenuItem("", i18n.T("tray_enable_hint"))
	t.grant = systray.AddMenuItem(i18n.T("tray_grant"), i18n.T("tray_grant_hint"))
	t.mu.Lock()
	notifications := t.notifications
	t.mu.Unlock()
	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), notifications)
	t.settingsBtn = systray.AddMenuItem(i18n.T("tray_settings"), i18n.T("tray_settings_hint"))

	systray.AddSeparator()

	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))

	t.mu.Lock()
	t.built = true
	t.apply(t.current)
	t.applyNotifications(t.notifications)
	t.mu.Unlock()

	go t.handleMenuEvents()
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		case <-t.toggle.ClickedCh:
			if t.callbacks.OnToggleEnabled != nil {
				t.SetStatus(t.callbacks.OnToggleEnabled())
			}

		case <-t.grant.ClickedCh:
			if t.callbacks.OnGrantAccess != nil {
				t.callbacks.OnGrantAccess()
			}

		case <-t.notifyOn.ClickedCh:
			if t.callbacks.OnNotificationsToggle != nil {
				t.SetNotifications(t.callbacks.OnNotificationsToggle())
			}

		case <-t.settingsBtn.ClickedCh:
			if t.callbacks.OnSettingsClick != nil {
				t.callbacks.OnSettingsClick()
			}

		case <-t.quitBtn.ClickedCh:
			if t.callbacks.OnQuit != nil {
				t.callbacks.OnQuit()
			}
			systray.Quit()
			return
		}
	}
}

// SetStatus updates the icon and the menu. It may be called before the menu
// is built; the latest status is applied once it is.
func (t *Tray) SetStatus(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = s
	if t.built {
		t.apply(s)
	}
}

// Status returns the last status passed to SetStatus.
func (t *Tray) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// SetNotifications sets the notifications checkbox.
func (t *Tray) SetNotifications(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notifications = on
	if t.built {
		t.applyNotifications(on)
	}
}

// Notifications reports whether the notifications checkbox is checked.
func (t *Tray) Notifications() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notifications
}

func (t *Tray) applyNotifications(on bool) {
	if on {
		t.notifyOn.Check()
	} else {
		t.notifyOn.Uncheck()
	}
}

func (t *Tray) apply(s Status) {
	systray.SetIcon(s.Icon())
	systray.SetTooltip("MidClick - " + i18n.T(s.Label()))
	t.status.SetTitle(i18n.T(s.Label()))
	t.hotkey.SetTitle(fmt.Sprintf(i18n.T("tray_hotkey"), s.Hotkey))
	t.toggle.SetTitle(i18n.T(s.ToggleLabel()))
	if s.Trusted {
		t.grant.Hide()
	} else {
		t.grant.Show()
	}
}

func (t *Tray) onExit() {
	log.Printf("Menu bar item closed")
}

// Quit closes the menu bar item.
func (t *Tray) Quit() {
	systray.Quit()
}
