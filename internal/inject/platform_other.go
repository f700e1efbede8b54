//go:build !darwin && !linux && !windows

package inject

type unsupportedPlatform struct{}

// NewPlatform returns a platform whose every call fails with ErrUnsupported.
func NewPlatform() Platform {
	return unsupportedPlatform{}
}

func (unsupportedPlatform) Location() (Point, error) {
	return Point{}, ErrUnsupported
}

func (unsupportedPlatform) DisplayHeight(Point) (float64, bool) {
	return 0, false
}

func (unsupportedPlatform) PrimaryHeight() (float64, bool) {
	return 0, false
}

func (unsupportedPlatform) Post(ClickEvent) error {
	return ErrUnsupported
}
