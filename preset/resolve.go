// Package preset implements the Preset Resolver (§4.2): given (bank,
// program, key, velocity), it walks the matching preset and instrument
// zones of a *sfont.Bank and emits one VoiceRequest per matching
// instrument zone.
package preset

import "github.com/sfcore/emu8000synth/sfont"

// VoiceRequest is everything the Voice Manager needs to instantiate one
// voice: the sample to play, its baked generator values (instrument-zone
// value plus preset-zone value, merged per §4.2), and the merged
// modulator list.
type VoiceRequest struct {
	Sample     *sfont.Sample
	SampleID   int
	Generators sfont.GenSet
	Modulators []sfont.Modulator
}

// Resolve returns one VoiceRequest per instrument zone whose key/velocity
// range covers (key, vel) within a preset zone that also covers it
// (§4.2). It returns an empty (nil) slice if nothing matches — "no
// sound" is a valid, deterministic outcome, not an error.
func Resolve(bank *sfont.Bank, bankNum, program uint16, key, vel uint8) []VoiceRequest {
	preset, ok := bank.Preset(bankNum, program)
	if !ok {
		return nil
	}

	var reqs []VoiceRequest
	for _, pz := range preset.Zones {
		if !pz.CoversKeyVel(key, vel) {
			continue
		}
		if int(pz.InstrumentID) >= len(bank.Instruments) {
			continue // unreachable if Load validated references, kept defensive
		}
		instrument := bank.Instruments[pz.InstrumentID]

		for _, iz := range instrument.Zones {
			if !iz.CoversKeyVel(key, vel) {
				continue
			}
			if int(iz.SampleID) >= len(bank.Samples) {
				continue
			}

			reqs = append(reqs, VoiceRequest{
				Sample:     &bank.Samples[iz.SampleID],
				SampleID:   int(iz.SampleID),
				Generators: mergeGenerators(instrument.Global, &iz, preset.Global, &pz),
				Modulators: mergeModulators(instrument.Global, &iz, preset.Global, &pz),
			})
		}
	}

	return reqs
}

// mergeGenerators bakes one generator set per §4.2: the instrument zone's
// value (falling back to its global zone, falling back to the SF2
// default) combined with the preset zone's value (falling back to its
// global zone) — added together for additive generators, or replaced by
// the preset-side value for the handful of generators the SF2 spec marks
// non-additive (sfont.Additive).
func mergeGenerators(instGlobal, inst, presetGlobal, preset *sfont.Zone) sfont.GenSet {
	out := sfont.DefaultGenerators()

	for id := sfont.GeneratorID(0); id < sfont.NumGenerators; id++ {
		instVal, instSet := zoneGenerator(instGlobal, inst, id)
		presetVal, presetSet := zoneGenerator(presetGlobal, preset, id)

		switch {
		case !instSet && !presetSet:
			continue
		case sfont.Additive(id):
			if instSet {
				out[id] = instVal
			}
			out[id] += presetVal
		case presetSet:
			out[id] = presetVal
		default:
			out[id] = instVal
		}
	}

	return out
}

func zoneGenerator(global, z *sfont.Zone, id sfont.GeneratorID) (int16, bool) {
	if z != nil && z.GenSet[id] {
		return z.Gens[id], true
	}
	if global != nil && global.GenSet[id] {
		return global.Gens[id], true
	}
	return 0, false
}

// mergeModulators combines instrument and preset modulator lists: a
// preset-zone modulator overrides an instrument-zone (or default)
// modulator sharing the same source/destination pair (§4.4).
func mergeModulators(instGlobal, inst, presetGlobal, preset *sfont.Zone) []sfont.Modulator {
	merged := make([]sfont.Modulator, 0, 12)
	merged = append(merged, sfont.DefaultModulators()...)
	merged = appendOverriding(merged, zoneModulators(instGlobal, inst)...)
	merged = appendOverriding(merged, zoneModulators(presetGlobal, preset)...)
	return merged
}

func zoneModulators(global, z *sfont.Zone) []sfont.Modulator {
	var out []sfont.Modulator
	if global != nil {
		out = append(out, global.Mods...)
	}
	if z != nil {
		out = append(out, z.Mods...)
	}
	return out
}

// appendOverriding appends each of add to base, first removing any
// existing entry in base with a matching source/destination pair.
func appendOverriding(base []sfont.Modulator, add ...sfont.Modulator) []sfont.Modulator {
	for _, m := range add {
		filtered := base[:0:0]
		for _, existing := range base {
			if !sfont.SameSourceDest(existing, m) {
				filtered = append(filtered, existing)
			}
		}
		base = append(filtered, m)
	}
	return base
}
