package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelState_ResolvedBankForcesDrumBankOnChannel10(t *testing.T) {
	c := newChannelState()
	c.BankMSB, c.BankLSB = 3, 0

	assert.Equal(t, uint16(3)<<7, c.ResolvedBank(0))
	assert.Equal(t, uint16(DrumBank), c.ResolvedBank(DrumChannel))
}

func TestChannelState_PitchBendSemitonesAtExtremes(t *testing.T) {
	c := newChannelState()
	c.PitchBendRangeSemis = 2

	c.PitchBend = 8192 // center
	assert.Zero(t, c.PitchBendSemitones())

	c.PitchBend = 0 // full bend down
	assert.InDelta(t, -2.0, c.PitchBendSemitones(), 1e-9)

	c.PitchBend = 16384 // full bend up (one past the 14-bit max, by construction)
	assert.InDelta(t, 2.0, c.PitchBendSemitones(), 1e-9)
}

func TestChannelState_ResetDefaultCanKeepProgramAndBank(t *testing.T) {
	c := newChannelState()
	c.BankMSB, c.Program = 1, 5
	c.Volume = 40
	c.Sustain = true
	c.HeldKeys[60] = true

	c.resetDefault(true)

	assert.Equal(t, uint8(1), c.BankMSB)
	assert.Equal(t, uint8(5), c.Program)
	assert.Equal(t, uint8(100), c.Volume)
	assert.False(t, c.Sustain)
	assert.False(t, c.HeldKeys[60])
}

func TestChannelState_ResetDefaultClearsProgramAndBankWhenNotKept(t *testing.T) {
	c := newChannelState()
	c.BankMSB, c.Program = 1, 5

	c.resetDefault(false)

	assert.Zero(t, c.BankMSB)
	assert.Zero(t, c.Program)
}
