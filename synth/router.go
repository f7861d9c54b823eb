package synth

import "github.com/sfcore/emu8000synth/sfont"

// SourceValues is the live source state the Modulation Router reads on
// every query (§4.4): MIDI controllers live on the channel, velocity/key
// are latched once at note-on, poly pressure is per-note.
type SourceValues struct {
	Channel      *ChannelState
	Key          uint8
	Velocity     uint8
	PolyPressure uint8
}

// GenOffsets is the sum of modulator contributions per destination
// generator (§4.4): "the sum is added to the baked generator value before
// the generator's unit conversion is applied."
type GenOffsets [sfont.NumGenerators]float64

// Evaluate computes the current offset for every generator a voice's
// modulator list touches. It is called once per sample on the render path
// (§4.3 step 3) and must not allocate: GenOffsets is a fixed array, not a
// map.
func Evaluate(mods []sfont.Modulator, sv SourceValues) GenOffsets {
	var out GenOffsets
	for _, m := range mods {
		raw1, max1 := rawSourceValue(m.Source, sv)
		c1 := normalize(m.Source, raw1, max1)

		c2 := 1.0
		if !isAlwaysOn(m.AmountSrc) {
			raw2, max2 := rawSourceValue(m.AmountSrc, sv)
			c2 = normalize(m.AmountSrc, raw2, max2)
		}

		contribution := float64(m.Amount) * c1 * c2
		if m.Transform == 2 {
			if contribution < 0 {
				contribution = -contribution
			}
		}
		out[m.Dest] += contribution
	}
	return out
}

func isAlwaysOn(src sfont.ModSource) bool {
	return !src.IsCC && src.Index == sfont.SrcNone
}

// rawSourceValue returns a modulator source's current raw reading and the
// value that reading saturates at, for normalize to divide by.
func rawSourceValue(src sfont.ModSource, sv SourceValues) (value, max float64) {
	if src.IsCC {
		return float64(ccValue(sv.Channel, src.Index)), 127
	}
	switch src.Index {
	case sfont.SrcNone:
		return 1, 1
	case sfont.SrcNoteOnVelocity:
		return float64(sv.Velocity), 127
	case sfont.SrcNoteOnKey:
		return float64(sv.Key), 127
	case sfont.SrcPolyPressure:
		return float64(sv.PolyPressure), 127
	case sfont.SrcChannelPressure:
		return float64(sv.Channel.ChannelPressure), 127
	case sfont.SrcPitchWheel:
		return float64(sv.Channel.PitchBend) - 8192, 8192
	case sfont.SrcPitchWheelSensitivity:
		return float64(sv.Channel.PitchBendRangeSemis), 127
	default:
		return 0, 1
	}
}

func ccValue(ch *ChannelState, cc int) uint8 {
	switch cc {
	case CCModulation:
		return ch.Modulation
	case CCVolume:
		return ch.Volume
	case CCPan:
		return ch.Pan
	case CCExpression:
		return ch.Expression
	case CCReverbSend:
		return ch.ReverbSend
	case CCChorusSend:
		return ch.ChorusSend
	default:
		return 0
	}
}

// normalize maps a raw source reading to its curved, polarity- and
// direction-adjusted value (§4.4): unipolar sources land in [0,1], bipolar
// sources (and the pitch wheel, which is always centered) land in [-1,1].
func normalize(src sfont.ModSource, raw, max float64) float64 {
	bipolar := src.Bipolar || src.Index == sfont.SrcPitchWheel
	if max == 0 {
		max = 1
	}
	n := raw / max
	if bipolar {
		if src.Index != sfont.SrcPitchWheel {
			n = 2*n - 1
		}
	}

	if src.MaxToMin {
		if bipolar {
			n = -n
		} else {
			n = 1 - n
		}
	}

	return applyCurve(n, src.Curve, bipolar)
}

// applyCurve shapes a normalized source value per its transfer curve
// (§4.4, §9 "model as a tagged variant, not virtual calls"). For bipolar
// values the curve is applied to the magnitude, preserving sign.
func applyCurve(n float64, curve sfont.Curve, bipolar bool) float64 {
	sign := 1.0
	mag := n
	if bipolar {
		if n < 0 {
			sign = -1
			mag = -n
		}
	}
	if mag > 1 {
		mag = 1
	}
	if mag < 0 {
		mag = 0
	}

	switch curve {
	case sfont.CurveLinear:
		// mag unchanged
	case sfont.CurveConcave:
		mag = mag * mag
	case sfont.CurveConvex:
		mag = 1 - (1-mag)*(1-mag)
	case sfont.CurveSwitch:
		if mag >= 0.5 {
			mag = 1
		} else {
			mag = 0
		}
	}

	return sign * mag
}
