package sfont

import (
	"bytes"
	"encoding/binary"
	"io"
)

// SoundFont files use the RIFF (Resource Interchange File Format) container:
// a chunk id, a little-endian size, and size bytes of data.
type riffChunk struct {
	// id is the chunk id, normally four ASCII characters.
	id [4]byte
	// size is the size of the chunk data, little endian.
	size uint32
	// data is the chunk data.
	data []byte
}

// maxChunkSize guards against a corrupt size field forcing an enormous
// allocation before the truncation is even noticed.
const maxChunkSize = 1 << 30

// parse reads a chunk from r.
func (ck *riffChunk) parse(r io.Reader) error {
	if _, err := io.ReadFull(r, ck.id[:]); err != nil {
		return err
	}

	if err := binary.Read(r, binary.LittleEndian, &ck.size); err != nil {
		return err
	}
	if ck.size > maxChunkSize {
		return invalidf("chunk %q declares implausible size %d", ck.id[:], ck.size)
	}

	ck.data = make([]byte, ck.size)
	if _, err := io.ReadFull(r, ck.data); err != nil {
		return invalidf("truncated chunk %q: %v", ck.id[:], err)
	}

	// RIFF pads odd-sized chunks to a word boundary with one extra byte
	// that is not part of the chunk's data.
	if ck.size%2 == 1 {
		var pad [1]byte
		if _, err := io.ReadFull(r, pad[:]); err != nil {
			return invalidf("truncated chunk %q: missing pad byte: %v", ck.id[:], err)
		}
	}

	return nil
}

// expect reads a chunk from r and checks that its id matches want.
func (ck *riffChunk) expect(r io.Reader, want [4]byte) error {
	if err := ck.parse(r); err != nil {
		return err
	}
	if ck.id != want {
		return invalidf("expected chunk id %q, got %q", want[:], ck.id[:])
	}
	return nil
}

// newReader returns a reader over the chunk's data.
func (ck *riffChunk) newReader() io.Reader {
	return bytes.NewReader(ck.data)
}

// expectLiteral reads len(want) bytes from r and checks that they match want,
// used for the "sfbk"/"INFO"/"sdta"/"pdta" form-type literals that sit
// inside a chunk's data rather than being chunks themselves.
func expectLiteral(r io.Reader, want []byte) error {
	buf := make([]byte, len(want))
	if _, err := io.ReadFull(r, buf); err != nil {
		return invalidf("reading literal %q: %v", want, err)
	}
	if !bytes.Equal(buf, want) {
		return invalidf("expected %q, got %q", want, buf)
	}
	return nil
}
