package synth

// ChannelState is one of the 16 independent per-channel records (§3): bank/
// program selection, pitch bend, and the controller latches the Modulation
// Router and Voice Manager read. HeldKeys is a fixed array, not a map or
// slice, so note-on/off never allocates on the render path (§5).
type ChannelState struct {
	BankMSB, BankLSB uint8
	Program          uint8

	PitchBend            uint16 // 14-bit, center = 8192 (§3)
	PitchBendRangeSemis  uint8  // RPN 0 MSB, default 2 (§3)
	PitchBendRangeCents  uint8  // RPN 0 LSB, default 0

	Modulation uint8 // CC1, default 0
	Volume     uint8 // CC7, default 100
	Pan        uint8 // CC10, default 64 (center)
	Expression uint8 // CC11, default 127
	Sustain    bool  // CC64 >= 64
	ChannelPressure uint8
	ReverbSend uint8 // CC91, default 0
	ChorusSend uint8 // CC93, default 0

	RPNMSB, RPNLSB   uint8
	NRPNActive       bool
	DataEntryMSB     uint8

	HeldKeys [128]bool
}

// ResolvedBank returns the bank number this channel addresses, forcing the
// percussion bank on the drum channel (§4.5).
func (c *ChannelState) ResolvedBank(channel uint8) uint16 {
	if channel == DrumChannel {
		return DrumBank
	}
	return uint16(c.BankMSB)<<7 | uint16(c.BankLSB)
}

// PitchBendSemitones converts the current pitch bend value to a signed
// semitone offset, scaled by the channel's bend range (§4.3 step 4, §8
// "pitch bend at ±8192 produces exactly ±(pitch bend range) semitones").
func (c *ChannelState) PitchBendSemitones() float64 {
	norm := (float64(c.PitchBend) - 8192) / 8192
	rangeSemis := float64(c.PitchBendRangeSemis) + float64(c.PitchBendRangeCents)/100
	return norm * rangeSemis
}

// resetDefault resets a channel to its power-on defaults (§4.5 CC121
// "reset all controllers", and full Reset()), optionally preserving
// program/bank per CC121's contract.
func (c *ChannelState) resetDefault(keepProgramBank bool) {
	bankMSB, bankLSB, program := c.BankMSB, c.BankLSB, c.Program
	*c = ChannelState{
		PitchBend:           8192,
		PitchBendRangeSemis: 2,
		Volume:              100,
		Pan:                 64,
		Expression:          127,
	}
	if keepProgramBank {
		c.BankMSB, c.BankLSB, c.Program = bankMSB, bankLSB, program
	}
}

// newChannelState returns a channel at its power-on defaults.
func newChannelState() ChannelState {
	var c ChannelState
	c.resetDefault(false)
	return c
}
