// Package embedded holds the built-in application resources.
package embedded

import (
	_ "embed"
)

// IconTrusted is shown while the hotkey is active.
//
//go:embed icon_trusted.png
var IconTrusted []byte

// IconUntrusted is shown while accessibility access is missing (red).
//
//go:embed icon_untrusted.png
var IconUntrusted []byte

// IconDisabled is shown while the hotkey is turned off (gray).
//
//go:embed icon_disabled.png
var IconDisabled []byte
