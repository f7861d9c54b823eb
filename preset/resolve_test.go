package preset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfcore/emu8000synth/internal/sftest"
	"github.com/sfcore/emu8000synth/preset"
	"github.com/sfcore/emu8000synth/sfont"
)

func TestResolve_NoBankLoaded(t *testing.T) {
	bank := &sfont.Bank{}
	reqs := preset.Resolve(bank, 0, 0, 60, 100)
	assert.Empty(t, reqs)
}

func TestResolve_SingleZoneMatch(t *testing.T) {
	b := sftest.New()
	sampleIdx := b.AddSineSample("sine440", 256, 440, 44100, 69)
	instIdx := b.AddInstrument("inst", sampleIdx, 60, 72, 1, 127)
	b.AddPreset("preset", 0, 0, instIdx)

	bank, err := sfont.Load(b.Build())
	require.NoError(t, err)

	reqs := preset.Resolve(bank, 0, 0, 69, 100)
	require.Len(t, reqs, 1)
	assert.Equal(t, sampleIdx, reqs[0].SampleID)

	// outside the instrument zone's key range: no voices requested.
	assert.Empty(t, preset.Resolve(bank, 0, 0, 30, 100))
}

func TestResolve_AdditiveGenerators(t *testing.T) {
	b := sftest.New()
	sampleIdx := b.AddSineSample("sine440", 256, 440, 44100, 69)
	instIdx := b.AddInstrument("inst", sampleIdx, 0, 127, 0, 127,
		sftest.Gen{Op: sfont.GenInitialAttenuation, Amount: 50})
	b.AddPreset("preset", 0, 0, instIdx)

	bank, err := sfont.Load(b.Build())
	require.NoError(t, err)

	reqs := preset.Resolve(bank, 0, 0, 60, 100)
	require.Len(t, reqs, 1)
	assert.EqualValues(t, 50, reqs[0].Generators[sfont.GenInitialAttenuation])
}
