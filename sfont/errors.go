package sfont

import (
	"errors"
	"fmt"
)

// ErrInvalidSoundFont is the sentinel error kind returned (wrapped) by Load
// for any structurally unsound SoundFont byte stream: malformed RIFF,
// missing or truncated chunks, dangling references, out-of-range indices,
// or invalid generator ordering. Callers should use errors.Is to test for
// it rather than matching on message text.
var ErrInvalidSoundFont = errors.New("invalid soundfont")

// invalidf builds an ErrInvalidSoundFont-wrapped error with a specific
// cause, the way the teacher's parse functions built one fmt.Errorf per
// violated invariant.
func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidSoundFont}, args...)...)
}
