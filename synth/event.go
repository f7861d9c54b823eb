package synth

// EventType is the MIDI-derived event kind the core recognizes (§3, §6).
type EventType uint8

const (
	EventNoteOff EventType = iota
	EventNoteOn
	EventPolyPressure
	EventControlChange
	EventProgramChange
	EventChannelPressure
	EventPitchBend
	EventBankSelect
)

// Control change numbers §4.5/§6 singles out.
const (
	CCModulation    = 1
	CCVolume        = 7
	CCPan           = 10
	CCExpression    = 11
	CCBankSelectMSB = 0
	CCDataEntryMSB  = 6
	CCSustain       = 64
	CCReverbSend    = 91
	CCChorusSend    = 93
	CCNRPNLSB       = 98
	CCNRPNMSB       = 99
	CCRPNLSB        = 100
	CCRPNMSB        = 101
	CCAllSoundOff   = 120
	CCResetAll      = 121
	CCAllNotesOff   = 123
	CCBankSelectLSB = 32
)

// DrumChannel is the zero-based channel index forced to the percussion
// bank regardless of its stored bank select (§4.5).
const DrumChannel = 9

// DrumBank is the bank number substituted on DrumChannel.
const DrumBank = 128

// Event is one scheduled MIDI-derived event (§3): a sample timestamp, a
// channel, a type, and up to two data bytes.
type Event struct {
	Timestamp int64
	Channel   uint8
	Type      EventType
	Data1     uint8
	Data2     uint8
}

// DecodeStatusByte decodes a standard 3-byte MIDI message (§6) into an
// Event at the given timestamp. It reports ok=false for status bytes the
// core does not recognize (the caller should drop the event, per §7's
// "unknown status is ignored at scheduler level, never propagated to
// render").
func DecodeStatusByte(timestamp int64, status, data1, data2 byte) (Event, bool) {
	channel := status & 0x0F
	switch status & 0xF0 {
	case 0x80:
		return Event{Timestamp: timestamp, Channel: channel, Type: EventNoteOff, Data1: data1, Data2: data2}, true
	case 0x90:
		typ := EventNoteOn
		if data2 == 0 {
			typ = EventNoteOff // velocity 0 note-on is note-off, §8
		}
		return Event{Timestamp: timestamp, Channel: channel, Type: typ, Data1: data1, Data2: data2}, true
	case 0xA0:
		return Event{Timestamp: timestamp, Channel: channel, Type: EventPolyPressure, Data1: data1, Data2: data2}, true
	case 0xB0:
		return Event{Timestamp: timestamp, Channel: channel, Type: EventControlChange, Data1: data1, Data2: data2}, true
	case 0xC0:
		return Event{Timestamp: timestamp, Channel: channel, Type: EventProgramChange, Data1: data1}, true
	case 0xD0:
		return Event{Timestamp: timestamp, Channel: channel, Type: EventChannelPressure, Data1: data1}, true
	case 0xE0:
		return Event{Timestamp: timestamp, Channel: channel, Type: EventPitchBend, Data1: data1, Data2: data2}, true
	default:
		return Event{}, false
	}
}
