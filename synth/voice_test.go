package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfcore/emu8000synth/internal/sftest"
	"github.com/sfcore/emu8000synth/preset"
	"github.com/sfcore/emu8000synth/sfont"
)

func sineVoiceRequest(t *testing.T) (preset.VoiceRequest, *sfont.Bank) {
	t.Helper()
	b := sftest.New()
	sampleIdx := b.AddSineSample("sine440", 4096, 440, 44100, 69)
	instIdx := b.AddInstrument("sine inst", sampleIdx, 0, 127, 0, 127)
	b.AddPreset("sine preset", 0, 0, instIdx)

	bank, err := sfont.Load(b.Build())
	require.NoError(t, err)

	reqs := preset.Resolve(bank, 0, 0, 69, 100)
	require.Len(t, reqs, 1)
	return reqs[0], bank
}

func TestVoice_StartPutsCursorAtSampleStart(t *testing.T) {
	req, _ := sineVoiceRequest(t)
	var v Voice
	v.Start(req, 0, 69, 100, 0, 44100)

	assert.Equal(t, VoiceSounding, v.State)
	assert.Equal(t, float64(req.Sample.Start), v.cursor)
	assert.Equal(t, StageDelay, v.volEnv.Stage)
}

func TestVoice_PitchBendAtExtremesShiftsByExactlyTheBendRange(t *testing.T) {
	req, bank := sineVoiceRequest(t)

	render := func(bend uint16) float64 {
		var v Voice
		v.Start(req, 0, 69, 100, 0, 44100)
		ch := newChannelState()
		ch.PitchBend = bend
		ch.PitchBendRangeSemis = 2

		outL := make([]float32, 1)
		outR := make([]float32, 1)
		sr := make([]float32, 1)
		sc := make([]float32, 1)
		v.Render(1, bank.SamplePool, &ch, 0, outL, outR, sr, sc)
		return v.cursor
	}

	centerCursor := render(8192)
	upCursor := render(16384)
	downCursor := render(0)

	// bending up advances the cursor faster than center, bending down slower.
	assert.Greater(t, upCursor, centerCursor)
	assert.Less(t, downCursor, centerCursor)

	// one rendered sample at full bend moves the cursor by exactly ±2
	// semitones' worth of pitch ratio (range 2, sample rate = output rate).
	start := float64(req.Sample.Start)
	assert.InDelta(t, math.Exp2(2.0/12), upCursor-start, 1e-6)
	assert.InDelta(t, math.Exp2(-2.0/12), downCursor-start, 1e-6)
}

func TestVoice_KillEndsVoiceImmediatelyWithoutRelease(t *testing.T) {
	req, _ := sineVoiceRequest(t)
	var v Voice
	v.Start(req, 0, 69, 100, 0, 44100)

	v.Kill()

	assert.Equal(t, VoiceFinished, v.State)
	assert.Equal(t, StageFinished, v.volEnv.Stage)
}

func TestVoice_NoteOffMovesEnvelopeToRelease(t *testing.T) {
	req, bank := sineVoiceRequest(t)
	var v Voice
	v.Start(req, 0, 69, 100, 0, 44100)

	// advance the envelope partway through its delay/attack stages first;
	// NoteOff must force a release transition from whatever stage it's in.
	ch := newChannelState()
	outL := make([]float32, 16)
	outR := make([]float32, 16)
	sr := make([]float32, 16)
	sc := make([]float32, 16)
	v.Render(16, bank.SamplePool, &ch, 0, outL, outR, sr, sc)

	v.NoteOff()

	assert.True(t, v.released)
	assert.Equal(t, StageRelease, v.volEnv.Stage)
}

func TestVoice_RenderStopsEarlyOnceFinished(t *testing.T) {
	req, bank := sineVoiceRequest(t)
	var v Voice
	v.Start(req, 0, 69, 100, 0, 44100)
	v.Kill()

	outL := make([]float32, 8)
	outR := make([]float32, 8)
	sr := make([]float32, 8)
	sc := make([]float32, 8)
	ch := newChannelState()

	// Render on a finished voice must be a no-op, not a panic or a write.
	v.Render(8, bank.SamplePool, &ch, 0, outL, outR, sr, sc)
	for _, s := range outL {
		assert.Zero(t, s)
	}
}
