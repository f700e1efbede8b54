package permission

import (
	"os"
	"strings"
)

// EnvAccessibility overrides the trust value on platforms without an OS
// trust model, and in tests.
const EnvAccessibility = "MIDCLICK_ACCESSIBILITY"

// LookupEnvFunc exposes environment probing for testability.
type LookupEnvFunc func(string) (string, bool)

// EnvPlatform reports trust from EnvAccessibility. Without an override the
// process counts as trusted, since there is nothing to grant.
type EnvPlatform struct {
	Lookup LookupEnvFunc
}

// IsTrusted implements Platform.
func (p EnvPlatform) IsTrusted() bool {
	lookup := p.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(EnvAccessibility)
	if !ok {
		return true
	}
	trusted, known := interpretFlag(value)
	if !known {
		return true
	}
	return trusted
}

// IsTrustedWithOptions implements Platform. There is no OS prompt to show,
// so a prompt request while untrusted fails with ErrPromptUnavailable.
func (p EnvPlatform) IsTrustedWithOptions(opts TrustOptions) (bool, error) {
	trusted := p.IsTrusted()
	if !trusted && opts.Prompt {
		return false, ErrPromptUnavailable
	}
	return trusted, nil
}

func interpretFlag(value string) (trusted, known bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "granted", "allow", "allowed", "yes", "true", "1":
		return true, true
	case "denied", "no", "false", "blocked", "0":
		return false, true
	default:
		return false, false
	}
}
