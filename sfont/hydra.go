package sfont

import (
	"bytes"
	"encoding/binary"
	"io"
)

// rawPresetHeader is one 38-byte phdr record.
type rawPresetHeader struct {
	Name         [20]byte
	Preset       uint16
	Bank         uint16
	PresetBagNdx uint16
	Library      uint32
	Genre        uint32
	Morphology   uint32
}

// rawBag is one 4-byte pbag/ibag record: an index into the matching
// generator and modulator lists.
type rawBag struct {
	GenIndex, ModIndex uint16
}

// rawModulator is one 10-byte pmod/imod record.
type rawModulator struct {
	SrcOper    uint16
	DestOper   uint16
	Amount     int16
	AmtSrcOper uint16
	TransOper  uint16
}

// rawGenerator is one 4-byte pgen/igen record.
type rawGenerator struct {
	Oper   uint16
	Amount int16
}

// rawInstrument is one 22-byte inst record.
type rawInstrument struct {
	Name   [20]byte
	BagNdx uint16
}

// rawSampleHeader is one 46-byte shdr record.
type rawSampleHeader struct {
	Name            [20]byte
	Start           uint32
	End             uint32
	Startloop       uint32
	Endloop         uint32
	SampleRate      uint32
	OriginalPitch   uint8
	PitchCorrection int8
	SampleLink      uint16
	SampleType      uint16
}

// hydra is the raw, unresolved pdta list: the nine fixed-order sub-chunks
// read straight off disk, each as a slice of fixed-size records (§4.1).
type hydra struct {
	presetHeaders []rawPresetHeader
	pbag          []rawBag
	pmod          []rawModulator
	pgen          []rawGenerator
	instruments   []rawInstrument
	ibag          []rawBag
	imod          []rawModulator
	igen          []rawGenerator
	sampleHeaders []rawSampleHeader
}

const (
	sizePresetHeader = 38
	sizeBag          = 4
	sizeModulator    = 10
	sizeGenerator    = 4
	sizeInstrument   = 22
	sizeSampleHeader = 46
)

func readBags(data []byte, recordSize int, name string) ([]rawBag, error) {
	if len(data)%recordSize != 0 {
		return nil, invalidf("%s: size %d is not a multiple of %d", name, len(data), recordSize)
	}
	out := make([]rawBag, len(data)/recordSize)
	for i := range out {
		out[i].GenIndex = binary.LittleEndian.Uint16(data[recordSize*i:])
		out[i].ModIndex = binary.LittleEndian.Uint16(data[recordSize*i+2:])
	}
	return out, nil
}

func readFixed[T any](data []byte, recordSize int, name string) ([]T, error) {
	if len(data)%recordSize != 0 {
		return nil, invalidf("%s: size %d is not a multiple of %d", name, len(data), recordSize)
	}
	out := make([]T, len(data)/recordSize)
	cr := bytes.NewReader(data)
	for i := range out {
		if err := binary.Read(cr, binary.LittleEndian, &out[i]); err != nil {
			return nil, invalidf("%s record %d: %v", name, i, err)
		}
	}
	return out, nil
}

// readHydra reads the nine pdta sub-chunks in their required order (§4.1).
// All nine must be present and each must satisfy its fixed record size;
// once all nine are read, phdr/pbag/inst/ibag/shdr must each hold at least
// their terminal sentinel record. Sample offsets are checked later, by
// buildBank, against the sample pool length.
func readHydra(r io.Reader) (*hydra, error) {
	h := &hydra{}

	want := []struct {
		id   [4]byte
		name string
	}{
		{[4]byte{'p', 'h', 'd', 'r'}, "phdr"},
		{[4]byte{'p', 'b', 'a', 'g'}, "pbag"},
		{[4]byte{'p', 'm', 'o', 'd'}, "pmod"},
		{[4]byte{'p', 'g', 'e', 'n'}, "pgen"},
		{[4]byte{'i', 'n', 's', 't'}, "inst"},
		{[4]byte{'i', 'b', 'a', 'g'}, "ibag"},
		{[4]byte{'i', 'm', 'o', 'd'}, "imod"},
		{[4]byte{'i', 'g', 'e', 'n'}, "igen"},
		{[4]byte{'s', 'h', 'd', 'r'}, "shdr"},
	}

	for _, w := range want {
		var ck riffChunk
		if err := ck.expect(r, w.id); err != nil {
			return nil, invalidf("missing or out-of-order %s chunk: %v", w.name, err)
		}

		var err error
		switch w.id {
		case [4]byte{'p', 'h', 'd', 'r'}:
			h.presetHeaders, err = readFixed[rawPresetHeader](ck.data, sizePresetHeader, w.name)
		case [4]byte{'p', 'b', 'a', 'g'}:
			h.pbag, err = readBags(ck.data, sizeBag, w.name)
		case [4]byte{'p', 'm', 'o', 'd'}:
			h.pmod, err = readFixed[rawModulator](ck.data, sizeModulator, w.name)
		case [4]byte{'p', 'g', 'e', 'n'}:
			h.pgen, err = readFixed[rawGenerator](ck.data, sizeGenerator, w.name)
		case [4]byte{'i', 'n', 's', 't'}:
			h.instruments, err = readFixed[rawInstrument](ck.data, sizeInstrument, w.name)
		case [4]byte{'i', 'b', 'a', 'g'}:
			h.ibag, err = readBags(ck.data, sizeBag, w.name)
		case [4]byte{'i', 'm', 'o', 'd'}:
			h.imod, err = readFixed[rawModulator](ck.data, sizeModulator, w.name)
		case [4]byte{'i', 'g', 'e', 'n'}:
			h.igen, err = readFixed[rawGenerator](ck.data, sizeGenerator, w.name)
		case [4]byte{'s', 'h', 'd', 'r'}:
			h.sampleHeaders, err = readFixed[rawSampleHeader](ck.data, sizeSampleHeader, w.name)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(h.presetHeaders) < 1 {
		return nil, invalidf("phdr must contain a terminal EOP record")
	}
	if len(h.instruments) < 1 {
		return nil, invalidf("inst must contain a terminal EOI record")
	}
	if len(h.sampleHeaders) < 1 {
		return nil, invalidf("shdr must contain a terminal EOS record")
	}
	if len(h.pbag) < 1 || len(h.ibag) < 1 {
		return nil, invalidf("pbag/ibag must contain a terminal record")
	}

	return h, nil
}
