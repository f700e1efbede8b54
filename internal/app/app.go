// Package app contains the main application logic.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"midclick/internal/config"
	"midclick/internal/dialog"
	"midclick/internal/hotkey"
	"midclick/internal/i18n"
	"midclick/internal/inject"
	"midclick/internal/notify"
	"midclick/internal/permission"
	"midclick/internal/tray"
)

// App is the menu bar application around an Engine.
type App struct {
	mu       sync.Mutex
	config   *config.Store
	engine   *Engine
	notifier *notify.Notifier
	tray     *tray.Tray
	ctx      context.Context
	cancel   context.CancelFunc
	picking  atomic.Bool
	closed   bool
}

// New creates a new application.
func New() (*App, error) {
	cfg := config.New()

	// UI language from the config
	if uiLang := cfg.UILanguage(); uiLang != "" {
		i18n.SetLanguage(i18n.Language(uiLang))
	}

	notifier := notify.New(cfg.NotificationsEnabled())

	app := &App{
		config:   cfg,
		notifier: notifier,
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	engine, err := NewEngine(Deps{
		Store:     cfg,
		Trust:     permission.NewPlatform(),
		Monitor:   hotkey.NewMonitor(),
		Injection: inject.NewPlatform(),
		Explainer: dialog.TrustExplainer{},
		Hooks: Hooks{
			OnClick:         app.onClick,
			OnRegisterError: app.onRegisterError,
		},
	})
	if err != nil {
		app.cancel()
		return nil, err
	}
	app.engine = engine
	cfg.OnReload(app.onReload)

	// Menu bar handlers
	app.tray = tray.New(tray.Callbacks{
		OnToggleEnabled: func() tray.Status {
			b := app.engine.SetEnabled(!app.engine.Binding().Enabled)
			log.Printf("Hotkey enabled: %v", b.Enabled)
			return app.status(app.engine.Trusted())
		},
		OnGrantAccess: func() {
			app.engine.RequestAccess()
		},
		OnNotificationsToggle: func() bool {
			enabled := app.config.ToggleNotifications()
			app.notifier.SetEnabled(enabled)
			return enabled
		},
		OnSettingsClick: func() {
			go app.pickHotkey()
		},
		OnQuit: func() {
			app.Close()
		},
	}, app.status(false), cfg.NotificationsEnabled())

	// Trust transitions drive the menu and the notifications
	engine.Changes().Subscribe(func(c permission.Change) {
		app.tray.SetStatus(app.status(c.HasPermissions))
		go app.notifier.TrustChanged(c)
	})

	return app, nil
}

// Run starts the application. It blocks until the menu bar item quits and
// must be called on the main goroutine.
func (a *App) Run() {
	a.tray.Run(func() {
		// Start the engine once the menu bar item exists
		if err := a.engine.Start(a.ctx); err != nil && !errors.Is(err, hotkey.ErrMonitorRegistrationFailed) {
			log.Printf("Engine start failed: %v", err)
			return
		}
		a.tray.SetStatus(a.status(a.engine.Trusted()))
		go a.notifier.Ready(a.engine.Binding().String())

		go func() {
			if err := config.Watch(a.ctx, a.config); err != nil {
				log.Printf("Config watcher stopped: %v", err)
			}
		}()
	})
}

// Close releases the application resources.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true

	a.cancel()
	if a.engine != nil {
		a.engine.Stop()
	}
}

func (a *App) status(trusted bool) tray.Status {
	b := a.config.Binding()
	return tray.Status{
		Trusted: trusted,
		Enabled: b.Enabled,
		Hotkey:  b.String(),
	}
}

func (a *App) pickHotkey() {
	if !a.picking.CompareAndSwap(false, true) {
		return
	}
	defer a.picking.Store(false)

	b, err := dialog.SelectHotkey(a.engine.Binding())
	if errors.Is(err, dialog.ErrCanceled) {
		return
	}
	if err == nil {
		err = a.engine.UpdateBinding(b)
	}
	if err != nil {
		log.Printf("Hotkey change rejected: %v", err)
		dialog.ShowError(i18n.T("settings_title"), err.Error())
		return
	}
	a.tray.SetStatus(a.status(a.engine.Trusted()))
}

// onReload runs on the config watcher goroutine after the file was re-read.
func (a *App) onReload() {
	if lang := a.config.UILanguage(); lang != "" {
		i18n.SetLanguage(i18n.Language(lang))
	}
	notifications := a.config.NotificationsEnabled()
	a.notifier.SetEnabled(notifications)
	a.tray.SetNotifications(notifications)
	a.engine.SetPollInterval(a.config.PollInterval())
	a.tray.SetStatus(a.status(a.engine.Trusted()))
}

// onClick runs on the engine loop.
func (a *App) onClick(res inject.Result) {
	if res.State == inject.StateFailed {
		go a.notifier.Error(i18n.T("error_click") + ": " + res.Err.Error())
	}
}

// onRegisterError runs on the engine loop.
func (a *App) onRegisterError(err error) {
	go a.notifier.Error(i18n.T("error_hotkey_register") + ": " + err.Error())
}
