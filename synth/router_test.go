package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sfcore/emu8000synth/sfont"
)

func TestEvaluate_VelocityToAttenuationDefaultModulator(t *testing.T) {
	mods := sfont.DefaultModulators()
	ch := newChannelState()

	loud := Evaluate(mods, SourceValues{Channel: &ch, Velocity: 127})
	quiet := Evaluate(mods, SourceValues{Channel: &ch, Velocity: 1})

	// the default modulator is max->min (louder velocity = less
	// attenuation), so full velocity must attenuate less than low velocity.
	assert.Less(t, loud[sfont.GenInitialAttenuation], quiet[sfont.GenInitialAttenuation])
}

func TestEvaluate_PanCCIsBipolar(t *testing.T) {
	mods := sfont.DefaultModulators()
	ch := newChannelState()
	ch.Pan = 127 // hard right

	offsets := Evaluate(mods, SourceValues{Channel: &ch})
	assert.Greater(t, offsets[sfont.GenPan], 0.0)

	ch.Pan = 0 // hard left
	offsets = Evaluate(mods, SourceValues{Channel: &ch})
	assert.Less(t, offsets[sfont.GenPan], 0.0)
}

func TestEvaluate_NoModulatorsYieldsZeroOffsets(t *testing.T) {
	ch := newChannelState()
	offsets := Evaluate(nil, SourceValues{Channel: &ch})
	var zero GenOffsets
	assert.Equal(t, zero, offsets)
}

func TestApplyCurve_SwitchIsStep(t *testing.T) {
	assert.Equal(t, 0.0, applyCurve(0.4, sfont.CurveSwitch, false))
	assert.Equal(t, 1.0, applyCurve(0.6, sfont.CurveSwitch, false))
}
