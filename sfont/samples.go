package sfont

import (
	"encoding/binary"
	"io"
)

// readSamplePool reads the sdta list's smpl sub-chunk: one contiguous pool
// of 16-bit little-endian PCM samples (§3, §4.1). SoundFont 3's compressed
// samples and the sm24 24-bit extension are out of scope (Non-goals, §1;
// §3's data model is 16-bit PCM only); an sm24 sub-chunk, if present, is
// skipped rather than rejected.
func readSamplePool(r io.Reader) ([]int16, error) {
	if err := expectLiteral(r, []byte("sdta")); err != nil {
		return nil, err
	}

	var smpl riffChunk
	if err := smpl.expect(r, [4]byte{'s', 'm', 'p', 'l'}); err != nil {
		return nil, invalidf("sdta list missing smpl sub-chunk: %v", err)
	}
	if smpl.size%2 != 0 {
		return nil, invalidf("smpl sub-chunk size %d is not a whole number of 16-bit samples", smpl.size)
	}

	pool := make([]int16, smpl.size/2)
	for i := range pool {
		pool[i] = int16(binary.LittleEndian.Uint16(smpl.data[2*i:]))
	}

	// an optional sm24 sub-chunk may follow; it is not part of the
	// supported data model, so it is read (to stay positioned at the end
	// of the sdta list) and discarded.
	var sm24 riffChunk
	if err := sm24.parse(r); err != nil && err != io.EOF {
		return nil, err
	}

	return pool, nil
}
