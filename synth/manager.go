package synth

import (
	"github.com/sfcore/emu8000synth/preset"
	"github.com/sfcore/emu8000synth/sfont"
)

// MaxVoices is the fixed polyphony budget (§4.5).
const MaxVoices = 32

// NumChannels is the number of independent MIDI channels (§3).
const NumChannels = 16

// Manager is the Voice Manager (§4.5): a fixed pool of voices plus the 16
// channel state records, owning allocation, stealing, and the MIDI
// event dispatch that drives them.
type Manager struct {
	voices   [MaxVoices]Voice
	channels [NumChannels]ChannelState

	bank              *sfont.Bank
	sampleRate        float64
	masterTuningCents float64

	log *ringLog
}

// NewManager returns a Manager with all channels at their power-on
// defaults and no active voices.
func NewManager(log *ringLog) *Manager {
	m := &Manager{log: log}
	for i := range m.channels {
		m.channels[i] = newChannelState()
	}
	return m
}

// SetBank installs the active bank (§5: "atomic pointer swap ... never
// mid-block" — the caller, Engine, only calls this between render calls).
func (m *Manager) SetBank(bank *sfont.Bank) { m.bank = bank }

// SetSampleRate records the output sample rate new voices are started at.
func (m *Manager) SetSampleRate(sr float64) { m.sampleRate = sr }

// Channel returns the live state for a channel, masking to [0,15].
func (m *Manager) Channel(channel uint8) *ChannelState { return &m.channels[channel&0x0F] }

// Reset clears every voice and channel back to power-on state (§5, §6).
func (m *Manager) Reset() {
	for i := range m.voices {
		m.voices[i] = Voice{}
	}
	for i := range m.channels {
		m.channels[i] = newChannelState()
	}
}

// ActiveVoiceCount reports how many voices are currently sounding (§8
// "the number of active voices is ≤ 32").
func (m *Manager) ActiveVoiceCount() int {
	n := 0
	for i := range m.voices {
		if m.voices[i].State == VoiceSounding {
			n++
		}
	}
	return n
}

// Dispatch applies one scheduled event to channel/voice state (§4.5).
func (m *Manager) Dispatch(ev Event, now int64) {
	ch := m.Channel(ev.Channel)
	switch ev.Type {
	case EventNoteOn:
		if ev.Data2 == 0 {
			m.noteOff(ev.Channel, ev.Data1)
			return
		}
		m.noteOn(ev.Channel, ev.Data1, ev.Data2, now)
	case EventNoteOff:
		m.noteOff(ev.Channel, ev.Data1)
	case EventControlChange:
		m.controlChange(ch, ev.Channel, ev.Data1, ev.Data2)
	case EventProgramChange:
		ch.Program = ev.Data1
	case EventPitchBend:
		ch.PitchBend = uint16(ev.Data1) | uint16(ev.Data2)<<7
	case EventChannelPressure:
		ch.ChannelPressure = ev.Data1
	case EventPolyPressure:
		// per-key poly pressure is not tracked separately in this
		// implementation; channel pressure covers the common case.
	case EventBankSelect:
		// bank select arrives as CC0/CC32 control changes in practice;
		// this event type exists for hosts that prefer to pre-decode it.
		if ev.Data1 == CCBankSelectMSB {
			ch.BankMSB = ev.Data2
		} else {
			ch.BankLSB = ev.Data2
		}
	}
}

func (m *Manager) controlChange(ch *ChannelState, channel, cc, value uint8) {
	switch cc {
	case CCBankSelectMSB:
		ch.BankMSB = value
	case CCBankSelectLSB:
		ch.BankLSB = value
	case CCModulation:
		ch.Modulation = value
	case CCVolume:
		ch.Volume = value
	case CCPan:
		ch.Pan = value
	case CCExpression:
		ch.Expression = value
	case CCDataEntryMSB:
		ch.DataEntryMSB = value
		m.applyRPN(ch)
	case CCSustain:
		wasHeld := ch.Sustain
		ch.Sustain = value >= 64
		if wasHeld && !ch.Sustain {
			m.releaseSustained(channel)
		}
	case CCReverbSend:
		ch.ReverbSend = value
	case CCChorusSend:
		ch.ChorusSend = value
	case CCRPNMSB:
		ch.RPNMSB, ch.NRPNActive = value, false
	case CCRPNLSB:
		ch.RPNLSB, ch.NRPNActive = value, false
	case CCNRPNMSB, CCNRPNLSB:
		ch.NRPNActive = true
	case CCAllSoundOff:
		for i := range m.voices {
			v := &m.voices[i]
			if v.State == VoiceSounding && v.Channel == channel {
				v.Kill()
			}
		}
	case CCResetAll:
		ch.resetDefault(true)
	case CCAllNotesOff:
		for i := range m.voices {
			v := &m.voices[i]
			if v.State == VoiceSounding && v.Channel == channel {
				v.NoteOff()
			}
		}
	}
}

// applyRPN handles RPN 0 (pitch bend range), the only registered parameter
// §3/§6 names explicitly.
func (m *Manager) applyRPN(ch *ChannelState) {
	if ch.NRPNActive {
		return
	}
	if ch.RPNMSB == 0 && ch.RPNLSB == 0 {
		ch.PitchBendRangeSemis = ch.DataEntryMSB
	}
}

// noteOn resolves preset zones and starts one voice per matching zone
// (§4.5 steps 1-4).
func (m *Manager) noteOn(channel, key, vel uint8, now int64) {
	if m.bank == nil {
		return
	}
	ch := m.Channel(channel)
	ch.HeldKeys[key] = true

	bankNum := ch.ResolvedBank(channel)
	reqs := preset.Resolve(m.bank, bankNum, uint16(ch.Program), key, vel)

	for _, req := range reqs {
		if class := req.Generators[sfont.GenExclusiveClass]; class != 0 {
			m.forceReleaseExclusive(channel, class)
		}
		idx := m.allocate(now)
		m.voices[idx].Start(req, channel, key, vel, now, m.sampleRate)
	}
}

// forceReleaseExclusive kills every sounding voice on channel sharing
// class, implementing hi-hat-style mutual exclusion (§4.5 step 3, §8
// scenario 6: "force-released within one sample").
func (m *Manager) forceReleaseExclusive(channel uint8, class int16) {
	for i := range m.voices {
		v := &m.voices[i]
		if v.State == VoiceSounding && v.Channel == channel && v.ExclusiveClass == class {
			v.Kill()
		}
	}
}

// allocate returns the index of a voice to (re)use: an idle voice, else a
// finished-but-not-reaped voice, else the best steal candidate (§4.5).
func (m *Manager) allocate(now int64) int {
	for i := range m.voices {
		if m.voices[i].State == VoiceIdle {
			return i
		}
	}
	for i := range m.voices {
		if m.voices[i].State == VoiceFinished {
			return i
		}
	}
	return m.steal(now)
}

// stealKey orders steal candidates: released voices first, then lowest
// envelope level, then oldest note-on (§4.5).
type stealKey struct {
	releasedRank int
	level        float32
	age          int64
}

func (a stealKey) less(b stealKey) bool {
	if a.releasedRank != b.releasedRank {
		return a.releasedRank < b.releasedRank
	}
	if a.level != b.level {
		return a.level < b.level
	}
	return a.age < b.age
}

func stealKeyOf(v *Voice) stealKey {
	rank := 1
	if v.released || v.volEnv.Stage == StageRelease {
		rank = 0
	}
	return stealKey{releasedRank: rank, level: v.volEnv.Level, age: v.StealPriority}
}

func (m *Manager) steal(now int64) int {
	best := 0
	bestKey := stealKeyOf(&m.voices[0])
	for i := 1; i < len(m.voices); i++ {
		k := stealKeyOf(&m.voices[i])
		if k.less(bestKey) {
			best, bestKey = i, k
		}
	}
	if m.log != nil {
		m.log.add("voice stolen for new note-on")
	}
	return best
}

// noteOff transitions matching voices to release, or marks them sustain-
// pending if the channel's pedal is down (§4.5).
func (m *Manager) noteOff(channel, key uint8) {
	ch := m.Channel(channel)
	ch.HeldKeys[key] = false
	for i := range m.voices {
		v := &m.voices[i]
		if v.State != VoiceSounding || v.Channel != channel || v.Key != key || v.released {
			continue
		}
		if ch.Sustain {
			v.sustainPending = true
		} else {
			v.NoteOff()
		}
	}
}

func (m *Manager) releaseSustained(channel uint8) {
	for i := range m.voices {
		v := &m.voices[i]
		if v.State == VoiceSounding && v.Channel == channel && v.sustainPending {
			v.sustainPending = false
			v.NoteOff()
		}
	}
}

// RenderBlock runs every sounding voice for n samples, accumulating into
// the shared output and send buffers (§4.5 "block processing"). Voices
// that finish partway through the block simply stop contributing; the
// Manager reaps them lazily on the next allocate call.
func (m *Manager) RenderBlock(n int, outL, outR, sendReverb, sendChorus []float32) {
	if m.bank == nil {
		return
	}
	pool := m.bank.SamplePool
	for i := range m.voices {
		v := &m.voices[i]
		if v.State != VoiceSounding {
			continue
		}
		ch := m.Channel(v.Channel)
		v.Render(n, pool, ch, m.masterTuningCents, outL, outR, sendReverb, sendChorus)
	}
}
