//go:build darwin

package permission

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>

static int mcIsTrusted(void) {
    return AXIsProcessTrusted() ? 1 : 0;
}

// Returns -1 when the options dictionary cannot be built.
static int mcIsTrustedWithOptions(int prompt) {
    const void *keys[] = { kAXTrustedCheckOptionPrompt };
    const void *values[] = { prompt ? kCFBooleanTrue : kCFBooleanFalse };
    CFDictionaryRef options = CFDictionaryCreate(kCFAllocatorDefault, keys, values, 1,
                                                 &kCFTypeDictionaryKeyCallBacks,
                                                 &kCFTypeDictionaryValueCallBacks);
    if (options == NULL) {
        return -1;
    }
    Boolean trusted = AXIsProcessTrustedWithOptions(options);
    CFRelease(options);
    return trusted ? 1 : 0;
}
*/
import "C"

type axPlatform struct{}

// NewPlatform returns the ApplicationServices trust check.
func NewPlatform() Platform {
	return axPlatform{}
}

func (axPlatform) IsTrusted() bool {
	return C.mcIsTrusted() != 0
}

func (axPlatform) IsTrustedWithOptions(opts TrustOptions) (bool, error) {
	prompt := C.int(0)
	if opts.Prompt {
		prompt = 1
	}
	switch C.mcIsTrustedWithOptions(prompt) {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, ErrPromptUnavailable
	}
}
