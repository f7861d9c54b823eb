package sfont

// Zone is a resolved (key range, velocity range, generators, modulators)
// tuple (GLOSSARY). A zone without an explicit key/velocity range covers
// the full [0,127] range; if it is also the first zone in its list and
// carries no sample/instrument reference, it is the global zone and
// contributes defaults to its siblings (§3).
type Zone struct {
	KeyLo, KeyHi uint8
	VelLo, VelHi uint8

	Gens   GenSet
	GenSet [NumGenerators]bool
	Mods   []Modulator

	SampleID      uint16
	HasSample     bool
	InstrumentID  uint16
	HasInstrument bool
}

func newZone() Zone {
	return Zone{KeyLo: 0, KeyHi: 127, VelLo: 0, VelHi: 127, Gens: DefaultGenerators()}
}

// CoversKeyVel reports whether the zone's key/velocity range covers
// (key, vel), inclusive on both ends (§8 boundary behavior).
func (z Zone) CoversKeyVel(key, vel uint8) bool {
	return key >= z.KeyLo && key <= z.KeyHi && vel >= z.VelLo && vel <= z.VelHi
}

// buildZone resolves one zone's generator and modulator slices. The 43
// (keyRange) and 44 (velRange) generators, if present, must be the zone's
// first generator (§4.1, enforced here, not merely documented).
func buildZone(gens []rawGenerator, mods []rawModulator, isPreset bool) (Zone, error) {
	z := newZone()
	seenOther := false

	for _, g := range gens {
		id := GeneratorID(g.Oper)
		if id >= NumGenerators {
			continue // unknown/undefined generator: ignored per spec
		}

		switch id {
		case GenKeyRange, GenVelRange:
			if seenOther {
				return Zone{}, invalidf("generator %d (key/velocity range) must precede all other generators in its zone", id)
			}
			au := uint16(g.Amount)
			lo, hi := uint8(au&0xFF), uint8(au>>8)
			if id == GenKeyRange {
				z.KeyLo, z.KeyHi = lo, hi
			} else {
				z.VelLo, z.VelHi = lo, hi
			}
		case GenInstrument:
			if !isPreset {
				return Zone{}, invalidf("generator 41 (instrument) may only appear in a preset zone")
			}
			z.InstrumentID = uint16(g.Amount)
			z.HasInstrument = true
			seenOther = true
		case GenSampleID:
			if isPreset {
				return Zone{}, invalidf("generator 53 (sampleID) may only appear in an instrument zone")
			}
			z.SampleID = uint16(g.Amount)
			z.HasSample = true
			seenOther = true
		default:
			z.Gens[id] = g.Amount
			z.GenSet[id] = true
			seenOther = true
		}
	}

	z.Mods = make([]Modulator, 0, len(mods))
	for _, m := range mods {
		z.Mods = append(z.Mods, Modulator{
			Source:    decodeModSource(m.SrcOper),
			Dest:      GeneratorID(m.DestOper),
			Amount:    m.Amount,
			AmountSrc: decodeModSource(m.AmtSrcOper),
			Transform: m.TransOper,
		})
	}

	return z, nil
}

// buildZones resolves every zone in bags[zoneLo:zoneHi] (a half-open range
// of zone *indices*, not generator indices) against the full gens/mods
// arrays, splitting off a leading global zone when present.
func buildZones(bags []rawBag, zoneLo, zoneHi int, gens []rawGenerator, mods []rawModulator, isPreset bool) ([]Zone, *Zone, error) {
	if zoneLo < 0 || zoneHi < zoneLo || zoneHi >= len(bags) {
		return nil, nil, invalidf("zone bag range [%d,%d] out of bounds (have %d bags)", zoneLo, zoneHi, len(bags))
	}

	all := make([]Zone, 0, zoneHi-zoneLo)
	for i := zoneLo; i < zoneHi; i++ {
		genLo, genHi := bags[i].GenIndex, bags[i+1].GenIndex
		modLo, modHi := bags[i].ModIndex, bags[i+1].ModIndex
		if genHi < genLo || int(genHi) > len(gens) {
			return nil, nil, invalidf("zone %d: generator range [%d,%d) out of bounds (have %d)", i, genLo, genHi, len(gens))
		}
		if modHi < modLo || int(modHi) > len(mods) {
			return nil, nil, invalidf("zone %d: modulator range [%d,%d) out of bounds (have %d)", i, modLo, modHi, len(mods))
		}
		z, err := buildZone(gens[genLo:genHi], mods[modLo:modHi], isPreset)
		if err != nil {
			return nil, nil, err
		}
		all = append(all, z)
	}

	var global *Zone
	zones := all
	if len(all) > 0 {
		first := all[0]
		if !first.HasInstrument && !first.HasSample {
			g := first
			global = &g
			zones = all[1:]
		}
	}

	for i := range zones {
		if !isPreset && !zones[i].HasSample {
			return nil, nil, invalidf("instrument zone %d has no sampleID generator and is not the global zone", i)
		}
		if isPreset && !zones[i].HasInstrument {
			return nil, nil, invalidf("preset zone %d has no instrument generator and is not the global zone", i)
		}
	}

	return zones, global, nil
}
