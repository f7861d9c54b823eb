package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectsBus_BypassesQuietBlocks(t *testing.T) {
	bus := NewEffectsBus(44100)
	const n = 64
	send := make([]float32, n)
	outL := make([]float32, n)
	outR := make([]float32, n)

	bus.Process(n, send, send, outL, outR)
	for i := range outL {
		assert.Zero(t, outL[i])
		assert.Zero(t, outR[i])
	}
}

func TestEffectsBus_ProducesWetSignalAboveThreshold(t *testing.T) {
	bus := NewEffectsBus(44100)
	// longer than the longest internal delay line so the wet tail has time
	// to emerge from the comb/allpass/chorus buffers.
	const n = 4000
	send := make([]float32, n)
	for i := range send {
		send[i] = 1
	}
	outL := make([]float32, n)
	outR := make([]float32, n)

	bus.Process(n, send, send, outL, outR)

	nonZero := 0
	for i := range outL {
		if outL[i] != 0 || outR[i] != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 0)
}

func TestComb_DelaysInput(t *testing.T) {
	c := newComb(4, 0, 0)
	for i := 0; i < 4; i++ {
		assert.Zero(t, c.process(1))
	}
	assert.Equal(t, float32(1), c.process(0))
}
