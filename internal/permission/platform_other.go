//go:build !darwin

package permission

// NewPlatform returns the environment-driven trust probe.
func NewPlatform() Platform {
	return EnvPlatform{}
}
