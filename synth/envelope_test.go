package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEnvelope_FullCycleReachesSustainThenFloor(t *testing.T) {
	var e Envelope
	e.Start(EnvelopeParams{
		DelaySamples: 10, AttackSamples: 100, HoldSamples: 10,
		DecaySamples: 100, SustainLevel: 0.5, ReleaseSamples: 100,
	})

	for i := 0; i < 10; i++ {
		require.Zero(t, e.Advance(), "delay stage must output silence")
	}
	require.Equal(t, StageAttack, e.Stage)

	for i := 0; i < 100; i++ {
		e.Advance()
	}
	assert.Equal(t, StageHold, e.Stage)
	assert.InDelta(t, 1.0, float64(e.Level), 1e-6)

	for i := 0; i < 10; i++ {
		e.Advance()
	}
	assert.Equal(t, StageDecay, e.Stage)

	for i := 0; i < 100; i++ {
		e.Advance()
	}
	assert.Equal(t, StageSustain, e.Stage)
	assert.InDelta(t, 0.5, float64(e.Level), 1e-3)

	e.NoteOff()
	assert.Equal(t, StageRelease, e.Stage)
	for i := 0; i < 500; i++ {
		e.Advance()
	}
	assert.True(t, e.Finished())
	assert.Zero(t, e.Level)
}

func TestEnvelope_ZeroDurationStagesAreSkipped(t *testing.T) {
	var e Envelope
	e.Start(EnvelopeParams{SustainLevel: 1})
	assert.Equal(t, StageSustain, e.Stage)
	assert.Equal(t, float32(1), e.Level)
}

func TestEnvelope_MonotonicDuringAttackDecayRelease(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		attack := rapid.IntRange(1, 500).Draw(t, "attack")
		decay := rapid.IntRange(1, 500).Draw(t, "decay")
		release := rapid.IntRange(1, 500).Draw(t, "release")
		sustain := rapid.Float32Range(0, 0.9).Draw(t, "sustain")

		var e Envelope
		e.Start(EnvelopeParams{
			AttackSamples: attack, DecaySamples: decay,
			SustainLevel: sustain, ReleaseSamples: release,
		})

		var prev float32
		for i := 0; i < attack; i++ {
			level := e.Advance()
			if level < prev {
				t.Fatalf("attack not monotonically non-decreasing at sample %d: %f < %f", i, level, prev)
			}
			prev = level
		}

		for i := 0; i < decay+5; i++ {
			level := e.Advance()
			if level > prev+1e-6 {
				t.Fatalf("decay not monotonically non-increasing at sample %d: %f > %f", i, level, prev)
			}
			prev = level
		}

		e.NoteOff()
		prev = e.Level
		for i := 0; i < release+5; i++ {
			level := e.Advance()
			if level > prev+1e-6 {
				t.Fatalf("release not monotonically non-increasing at sample %d: %f > %f", i, level, prev)
			}
			prev = level
		}
	})
}

func TestEnvelope_KillIsImmediate(t *testing.T) {
	var e Envelope
	e.Start(EnvelopeParams{AttackSamples: 1000, SustainLevel: 1})
	e.Advance()
	e.Kill()
	assert.True(t, e.Finished())
	assert.Zero(t, e.Level)
}
