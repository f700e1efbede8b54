// Package i18n provides internationalization support.
package i18n

import "sync"

// Language represents a UI language.
type Language string

const (
	EN Language = "en"
	RU Language = "ru"
)

var (
	mu      sync.RWMutex
	current = EN // Default language
)

// Translations for all supported languages.
var translations = map[Language]map[string]string{
	EN: {
		// App
		"app_name":    "MidClick",
		"app_tooltip": "MidClick - middle click from the keyboard",

		// Tray menu
		"tray_trusted":            "Accessibility access granted",
		"tray_untrusted":          "Accessibility access required",
		"tray_disabled":           "Hotkey disabled",
		"tray_enable":             "Enable MidClick",
		"tray_disable":            "Disable MidClick",
		"tray_enable_hint":        "Turn the middle click hotkey on or off",
		"tray_grant":              "Grant Access...",
		"tray_grant_hint":         "Open Privacy & Security > Accessibility",
		"tray_hotkey":             "Hotkey: %s",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show notifications",
		"tray_settings":           "Settings...",
		"tray_settings_hint":      "Choose the hotkey",
		"tray_quit":               "Quit MidClick",
		"tray_quit_hint":          "Close application",

		// Notifications
		"notify_ready":        "MidClick is running",
		"notify_ready_hint":   "Press %s for a middle click",
		"notify_granted":      "Accessibility access granted",
		"notify_granted_hint": "The hotkey is active",
		"notify_revoked":      "Accessibility access revoked",
		"notify_revoked_hint": "Middle clicks are blocked until access is restored",
		"notify_error":        "Error",

		// Permission dialog
		"permission_title":   "Accessibility Access Required",
		"permission_message": "MidClick needs accessibility access to watch the hotkey and post middle clicks.\n\n1. Open System Settings\n2. Go to Privacy & Security > Accessibility\n3. Turn on MidClick\n\nYou may need to restart MidClick after granting access.",
		"permission_open":    "Open System Settings",
		"permission_cancel":  "Cancel",

		// Settings dialogs
		"settings_title":           "Hotkey Settings",
		"settings_modifiers":       "Select modifiers (none for a bare key):",
		"settings_modifiers_title": "Hotkey Settings - Modifiers",
		"settings_key":             "Select key:",
		"settings_key_title":       "Hotkey Settings - Key",

		// Modifier names
		"mod_cmd":    "Command",
		"mod_shift":  "Shift",
		"mod_option": "Option",
		"mod_ctrl":   "Control",

		// Errors
		"error_hotkey_register": "Could not register hotkey",
		"error_click":           "Could not post middle click",
	},

	RU: {
		// App
		"app_name":    "MidClick",
		"app_tooltip": "MidClick - средний клик с клавиатуры",

		// Tray menu
		"tray_trusted":            "Доступ к универсальному доступу есть",
		"tray_untrusted":          "Нужен универсальный доступ",
		"tray_disabled":           "Горячая клавиша выключена",
		"tray_enable":             "Включить MidClick",
		"tray_disable":            "Выключить MidClick",
		"tray_enable_hint":        "Включить или выключить горячую клавишу",
		"tray_grant":              "Выдать доступ...",
		"tray_grant_hint":         "Открыть Конфиденциальность и безопасность > Универсальный доступ",
		"tray_hotkey":             "Клавиша: %s",
		"tray_notifications":      "Уведомления",
		"tray_notifications_hint": "Показывать уведомления",
		"tray_settings":           "Настройки...",
		"tray_settings_hint":      "Выбор горячей клавиши",
		"tray_quit":               "Выйти из MidClick",
		"tray_quit_hint":          "Закрыть приложение",

		// Notifications
		"notify_ready":        "MidClick запущен",
		"notify_ready_hint":   "Нажмите %s для среднего клика",
		"notify_granted":      "Доступ выдан",
		"notify_granted_hint": "Горячая клавиша работает",
		"notify_revoked":      "Доступ отозван",
		"notify_revoked_hint": "Средний клик недоступен, пока доступ не вернут",
		"notify_error":        "Ошибка",

		// Permission dialog
		"permission_title":   "Нужен универсальный доступ",
		"permission_message": "MidClick нужен универсальный доступ, чтобы слушать горячую клавишу и отправлять средний клик.\n\n1. Откройте Системные настройки\n2. Перейдите в Конфиденциальность и безопасность > Универсальный доступ\n3. Включите MidClick\n\nПосле выдачи доступа может понадобиться перезапуск MidClick.",
		"permission_open":    "Открыть Системные настройки",
		"permission_cancel":  "Отмена",

		// Settings dialogs
		"settings_title":           "Настройка горячей клавиши",
		"settings_modifiers":       "Выберите модификаторы (можно ни одного):",
		"settings_modifiers_title": "Настройка горячей клавиши - Модификаторы",
		"settings_key":             "Выберите клавишу:",
		"settings_key_title":       "Настройка горячей клавиши - Клавиша",

		// Modifier names
		"mod_cmd":    "Command",
		"mod_shift":  "Shift",
		"mod_option": "Option",
		"mod_ctrl":   "Control",

		// Errors
		"error_hotkey_register": "Не удалось зарегистрировать горячую клавишу",
		"error_click":           "Не удалось отправить средний клик",
	},
}

// T returns the translation for the given key.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if strings, ok := translations[current]; ok {
		if s, ok := strings[key]; ok {
			return s
		}
	}
	// Fallback to English, then to the key itself
	if s, ok := translations[EN][key]; ok {
		return s
	}
	return key
}

// SetLanguage sets the current UI language. Unknown languages fall back to
// English.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := translations[lang]; !ok {
		lang = EN
	}
	current = lang
}

// GetLanguage returns the current UI language.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// AvailableLanguages returns list of supported languages.
func AvailableLanguages() []Language {
	return []Language{EN, RU}
}

// LanguageName returns display name for a language.
func LanguageName(lang Language) string {
	switch lang {
	case RU:
		return "Русский"
	case EN:
		return "English"
	default:
		return string(lang)
	}
}
