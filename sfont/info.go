package sfont

import (
	"encoding/binary"
	"io"
)

// Info holds the handful of INFO list fields the core actually consults
// (§4.1: "ignored except for sample rate hints"). The remaining
// metadata fields SF2 defines (creation date, engineers, copyright, ...)
// are parsed only far enough to validate chunk sizes and are discarded;
// nothing downstream of Load needs them.
type Info struct {
	VersionMajor, VersionMinor uint16
	Engine                     string
	Name                       string
}

// readInfo reads the INFO list's sub-chunks. The ifil sub-chunk is
// mandatory; if isng is absent the engine defaults to "EMU8000" per the
// SF2 spec's fallback rule.
func readInfo(r io.Reader) (*Info, error) {
	if err := expectLiteral(r, []byte("INFO")); err != nil {
		return nil, err
	}

	info := &Info{}
	sawIfil := false
	sawIsng := false

	for {
		var ck riffChunk
		if err := ck.parse(r); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		switch ck.id {
		case [4]byte{'i', 'f', 'i', 'l'}:
			if ck.size != 4 {
				return nil, invalidf("ifil sub-chunk must contain 4 bytes, got %d", ck.size)
			}
			info.VersionMajor = binary.LittleEndian.Uint16(ck.data[0:])
			info.VersionMinor = binary.LittleEndian.Uint16(ck.data[2:])
			sawIfil = true
		case [4]byte{'i', 's', 'n', 'g'}:
			if ck.size > 256 {
				return nil, invalidf("isng sub-chunk must contain 256 or fewer bytes, got %d", ck.size)
			}
			info.Engine = trimCString(ck.data)
			sawIsng = true
		case [4]byte{'I', 'N', 'A', 'M'}:
			if ck.size > 256 {
				return nil, invalidf("INAM sub-chunk must contain 256 or fewer bytes, got %d", ck.size)
			}
			info.Name = trimCString(ck.data)
		default:
			// every other INFO sub-chunk (IROM, IVER, ICRD, IENG, IPRD,
			// ICOP, ICMT, ISFT, ...) is metadata the core never consults.
		}
	}

	if !sawIfil {
		return nil, invalidf("ifil sub-chunk is missing")
	}
	if !sawIsng {
		info.Engine = "EMU8000"
	}

	return info, nil
}

func trimCString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
