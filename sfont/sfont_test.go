package sfont_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfcore/emu8000synth/internal/sftest"
	"github.com/sfcore/emu8000synth/sfont"
)

func TestLoad_EmptyBank(t *testing.T) {
	bank, err := sfont.Load(sftest.EmptyBank())
	require.NoError(t, err)
	require.NotNil(t, bank)

	assert.Empty(t, bank.Instruments)
	_, ok := bank.Preset(0, 0)
	assert.False(t, ok, "empty bank must not resolve any preset")
}

func TestLoad_SingleSinePreset(t *testing.T) {
	b := sftest.New()
	sampleIdx := b.AddSineSample("sine440", 1024, 440, 44100, 69)
	instIdx := b.AddInstrument("sine instrument", sampleIdx, 0, 127, 0, 127)
	b.AddPreset("sine preset", 0, 0, instIdx)

	bank, err := sfont.Load(b.Build())
	require.NoError(t, err)

	preset, ok := bank.Preset(0, 0)
	require.True(t, ok)
	require.Len(t, preset.Zones, 1)

	instrument := bank.Instruments[preset.Zones[0].InstrumentID]
	require.Len(t, instrument.Zones, 1)

	zone := instrument.Zones[0]
	require.True(t, zone.HasSample)
	sample := bank.Samples[zone.SampleID]
	assert.Equal(t, uint8(69), sample.OriginalPitch)
	assert.Equal(t, uint32(1024), sample.End-sample.Start)
	assert.True(t, zone.CoversKeyVel(69, 127))
}

func TestLoad_RejectsTruncatedRIFF(t *testing.T) {
	data := sftest.EmptyBank()
	_, err := sfont.Load(data[:len(data)-10])
	require.Error(t, err)
}

func TestLoad_RejectsDanglingInstrumentReference(t *testing.T) {
	b := sftest.New()
	sampleIdx := b.AddSineSample("sine440", 64, 440, 44100, 69)
	b.AddInstrument("inst", sampleIdx, 0, 127, 0, 127)
	// preset references an instrument index that doesn't exist
	b.AddPreset("bad preset", 0, 0, 5)

	_, err := sfont.Load(b.Build())
	require.Error(t, err)
	assert.ErrorIs(t, err, sfont.ErrInvalidSoundFont)
}

func TestGeneratorConversions(t *testing.T) {
	assert.InDelta(t, 1.0, sfont.TimecentsToSeconds(0), 1e-9)
	assert.InDelta(t, 2.0, sfont.TimecentsToSeconds(1200), 1e-9)
	assert.InDelta(t, 0.0, sfont.TimecentsToSeconds(-32768), 1e-9)

	assert.InDelta(t, 8.176, sfont.AbsoluteCentsToHz(0), 1e-6)
	assert.InDelta(t, 16.352, sfont.AbsoluteCentsToHz(1200), 1e-3)

	assert.InDelta(t, -6.0, sfont.CentibelsToDb(-60), 1e-9)
}

func TestDefaultGenerators_EnvelopeTimingsAreNearInstantNotOneSecond(t *testing.T) {
	g := sfont.DefaultGenerators()
	// a generator left unset must default to "as fast as possible", not
	// the 1-second duration that 0 timecents would otherwise mean.
	for _, id := range []sfont.GeneratorID{
		sfont.GenDelayVolEnv, sfont.GenAttackVolEnv, sfont.GenHoldVolEnv,
		sfont.GenDecayVolEnv, sfont.GenReleaseVolEnv,
		sfont.GenDelayModEnv, sfont.GenAttackModEnv, sfont.GenHoldModEnv,
		sfont.GenDecayModEnv, sfont.GenReleaseModEnv,
		sfont.GenDelayModLFO, sfont.GenDelayVibLFO,
	} {
		assert.Less(t, sfont.TimecentsToSeconds(g[id]), 0.01)
	}
}

func TestDefaultModulators_ContainsVelocityToAttenuation(t *testing.T) {
	mods := sfont.DefaultModulators()
	found := false
	for _, m := range mods {
		if m.Source.Index == sfont.SrcNoteOnVelocity && m.Dest == sfont.GenInitialAttenuation {
			found = true
		}
	}
	assert.True(t, found)
}
