package synth

import "errors"

// Error kinds (§7). Compare with errors.Is; wrap with fmt.Errorf("%w: ...")
// for additional context, matching sfont.ErrInvalidSoundFont's idiom.
var (
	// ErrInvalidSoundFont is re-surfaced from sfont.Load by LoadBank.
	ErrInvalidSoundFont = errors.New("synth: invalid soundfont")

	// ErrInvalidSampleRate is returned by Init for a rate outside
	// [8000, 96000] (§6).
	ErrInvalidSampleRate = errors.New("synth: sample rate out of range [8000, 96000]")

	// errInvalidMidiEvent marks an event submission with out-of-range data
	// bytes or an unrecognized status; per §7 it is never propagated past
	// SubmitEvent, so it stays unexported.
	errInvalidMidiEvent = errors.New("synth: invalid midi event")
)
