package sfont

import "bytes"

// SampleType classifies a sample per the SF2 sampleType field (§3).
type SampleType uint16

const (
	SampleMono  SampleType = 1
	SampleRight SampleType = 2
	SampleLeft  SampleType = 4
	SampleLink  SampleType = 8
)

// Sample is one entry of the shdr list, indexing into the bank's shared
// 16-bit PCM sample pool (§3).
type Sample struct {
	Name            string
	Start           uint32
	End             uint32
	LoopStart       uint32
	LoopEnd         uint32
	SampleRate      uint32
	OriginalPitch   uint8
	PitchCorrection int8
	SampleLink      uint16
	SampleType      SampleType
}

// Instrument is an ordered list of instrument zones plus an optional
// global zone (§3).
type Instrument struct {
	Name   string
	Zones  []Zone
	Global *Zone
}

// Preset is the MIDI-addressable (bank, program) sound (§3, GLOSSARY).
type Preset struct {
	Name    string
	Bank    uint16
	Program uint16
	Zones   []Zone
	Global  *Zone
}

type presetKey struct {
	Bank, Program uint16
}

// Bank is the fully resolved, immutable-after-load in-memory SoundFont
// (§3). All references (zone -> instrument, zone -> sample) are guaranteed
// to resolve: Load never returns a Bank with a dangling reference.
type Bank struct {
	Name        string
	SamplePool  []int16
	Samples     []Sample
	Instruments []Instrument
	presets     map[presetKey]*Preset
}

// Preset looks up a preset by (bank, program); returns nil, false if there
// is none (§4.2 "zero voice requests if no zones match").
func (b *Bank) Preset(bank, program uint16) (*Preset, bool) {
	p, ok := b.presets[presetKey{Bank: bank, Program: program}]
	return p, ok
}

// trimName strips the trailing zero-padding from a fixed-size ASCII name
// field (§4.1: "unused terminal characters filled with zero valued byte").
func trimName(b [20]byte) string {
	if i := bytes.IndexByte(b[:], 0); i >= 0 {
		return string(b[:i])
	}
	return string(b[:])
}

// buildBank resolves a hydra's raw records into instruments and presets,
// validating every reference along the way (§3 invariants). The sample
// pool itself is supplied separately (it comes from the sdta chunk parsed
// by readSamplePool, not from pdta).
func buildBank(h *hydra, pool []int16, name string) (*Bank, error) {
	samples, err := buildSamples(h.sampleHeaders, pool)
	if err != nil {
		return nil, err
	}

	instruments := make([]Instrument, 0, len(h.instruments)-1)
	for i := 0; i < len(h.instruments)-1; i++ {
		lo, hi := int(h.instruments[i].BagNdx), int(h.instruments[i+1].BagNdx)
		zones, global, err := buildZones(h.ibag, lo, hi, h.igen, h.imod, false)
		if err != nil {
			return nil, invalidf("instrument %d (%s): %v", i, trimName(h.instruments[i].Name), err)
		}
		for zi, z := range zones {
			if int(z.SampleID) >= len(samples) {
				return nil, invalidf("instrument %d zone %d: sampleID %d out of range (have %d samples)", i, zi, z.SampleID, len(samples))
			}
		}
		instruments = append(instruments, Instrument{
			Name:   trimName(h.instruments[i].Name),
			Zones:  zones,
			Global: global,
		})
	}

	presets := make(map[presetKey]*Preset, len(h.presetHeaders)-1)
	for i := 0; i < len(h.presetHeaders)-1; i++ {
		ph := h.presetHeaders[i]
		lo, hi := int(ph.PresetBagNdx), int(h.presetHeaders[i+1].PresetBagNdx)
		zones, global, err := buildZones(h.pbag, lo, hi, h.pgen, h.pmod, true)
		if err != nil {
			return nil, invalidf("preset %d (%s): %v", i, trimName(ph.Name), err)
		}
		for zi, z := range zones {
			if int(z.InstrumentID) >= len(instruments) {
				return nil, invalidf("preset %d zone %d: instrument %d out of range (have %d instruments)", i, zi, z.InstrumentID, len(instruments))
			}
		}

		key := presetKey{Bank: ph.Bank, Program: ph.Preset}
		if _, dup := presets[key]; dup {
			return nil, invalidf("duplicate preset (bank %d, program %d)", ph.Bank, ph.Preset)
		}
		presets[key] = &Preset{
			Name:    trimName(ph.Name),
			Bank:    ph.Bank,
			Program: ph.Preset,
			Zones:   zones,
			Global:  global,
		}
	}

	return &Bank{
		Name:        name,
		SamplePool:  pool,
		Samples:     samples,
		Instruments: instruments,
		presets:     presets,
	}, nil
}

func buildSamples(raw []rawSampleHeader, pool []int16) ([]Sample, error) {
	// raw includes the terminal sentinel record; drop it.
	samples := make([]Sample, 0, len(raw)-1)
	for i := 0; i < len(raw)-1; i++ {
		r := raw[i]
		if r.Startloop > r.Endloop || r.Endloop > r.End || r.End > uint32(len(pool)) {
			return nil, invalidf("sample %d (%s): invalid offsets start=%d loop=[%d,%d) end=%d pool=%d",
				i, trimName(r.Name), r.Start, r.Startloop, r.Endloop, r.End, len(pool))
		}
		if r.Start > r.End {
			return nil, invalidf("sample %d (%s): start %d after end %d", i, trimName(r.Name), r.Start, r.End)
		}
		pitch := r.OriginalPitch
		if pitch > 127 {
			pitch = 60
		}
		samples = append(samples, Sample{
			Name:            trimName(r.Name),
			Start:           r.Start,
			End:             r.End,
			LoopStart:       r.Startloop,
			LoopEnd:         r.Endloop,
			SampleRate:      r.SampleRate,
			OriginalPitch:   pitch,
			PitchCorrection: r.PitchCorrection,
			SampleLink:      r.SampleLink,
			SampleType:      SampleType(r.SampleType &^ 0x8000), // drop the ROM bit; no ROM sample support
		})
	}
	return samples, nil
}
