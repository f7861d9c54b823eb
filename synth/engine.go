// Package synth implements the runtime half of the core (§4.3-§4.8, §5-§7):
// voices, the modulation router, the voice manager, the effects bus, the
// MIDI scheduler, and the Engine that ties them into the host-facing
// operations of §6.
package synth

import (
	"fmt"

	"github.com/sfcore/emu8000synth/sfont"
)

// Engine is the Audio Block Driver (§4.8): the single opaque value a host
// owns (§9 "package as a single opaque engine value owned by the host; no
// process-wide globals").
type Engine struct {
	manager   *Manager
	effects   *EffectsBus
	scheduler *Scheduler
	log       *ringLog

	sampleRate        float64
	currentSampleTime int64

	// pendingBank is swapped into the manager at the next Render call
	// (§5: "an atomic pointer swap of the active bank ... never mid-block").
	pendingBank *sfont.Bank

	outL, outR, sendReverb, sendChorus []float32
	interleaved                        []float32
	drainBuf                           []Event
}

// NewEngine constructs an Engine with no bank loaded and no sample rate
// set; call Init before the first Render.
func NewEngine() *Engine {
	e := &Engine{log: &ringLog{}}
	e.scheduler = NewScheduler()
	e.manager = NewManager(e.log)
	return e
}

// Init prepares global state for a sample rate (§6).
func (e *Engine) Init(sampleRate float64) error {
	if sampleRate < 8000 || sampleRate > 96000 {
		return ErrInvalidSampleRate
	}
	e.sampleRate = sampleRate
	e.currentSampleTime = 0
	e.manager.SetSampleRate(sampleRate)
	e.effects = NewEffectsBus(sampleRate)
	return nil
}

// LoadBank parses data as a SoundFont and stages it to become active at
// the next Render call (§6, §7: "a failed bank load leaves the previous
// bank active").
func (e *Engine) LoadBank(data []byte) error {
	bank, err := sfont.Load(data)
	if err != nil {
		e.log.add("load_bank rejected: " + err.Error())
		return fmt.Errorf("%w: %v", ErrInvalidSoundFont, err)
	}
	e.pendingBank = bank
	return nil
}

// SubmitEvent enqueues a MIDI-derived event (§6). Events on an
// out-of-range channel are dropped and logged, never propagated (§7).
func (e *Engine) SubmitEvent(timestamp int64, channel uint8, typ EventType, data1, data2 uint8) {
	if channel >= NumChannels {
		e.log.add("dropped event: channel out of range")
		return
	}
	e.scheduler.Submit(Event{Timestamp: timestamp, Channel: channel, Type: typ, Data1: data1, Data2: data2})
}

// SelectPreset performs a bank-select (MSB+LSB) and program-change
// atomically at the current time (§6, SPEC_FULL "SelectPreset"
// convenience).
func (e *Engine) SelectPreset(channel uint8, bank, program uint16) {
	ch := e.manager.Channel(channel)
	ch.BankMSB = uint8(bank >> 7)
	ch.BankLSB = uint8(bank & 0x7F)
	ch.Program = uint8(program)
}

// Reset clears all voices, channel state, and the scheduler queue (§5,
// §6). It is idempotent: reset();reset() == reset() (§8).
func (e *Engine) Reset() {
	e.manager.Reset()
	e.scheduler.Reset()
	e.currentSampleTime = 0
}

// Diagnostics returns the logged diagnostic messages, oldest first (§7's
// debug interface). It allocates and must not be called from a real-time
// thread.
func (e *Engine) Diagnostics() []string { return e.log.snapshot() }

// SampleTime returns the current absolute sample position.
func (e *Engine) SampleTime() int64 { return e.currentSampleTime }

// ActiveVoices reports the number of currently sounding voices (§8).
func (e *Engine) ActiveVoices() int { return e.manager.ActiveVoiceCount() }

// Render produces blockLength samples of interleaved stereo audio (§4.8).
// It drains the scheduler, runs every active voice, mixes the effects
// bus, and returns [-1,1]-clipped float32 samples as [L0,R0,L1,R1,...].
// The returned slice is owned by the Engine and is only valid until the
// next Render call. Render never allocates once block buffers have grown
// to their steady-state size (§5).
func (e *Engine) Render(blockLength int) []float32 {
	if e.pendingBank != nil {
		e.manager.SetBank(e.pendingBank)
		e.pendingBank = nil
	}

	if blockLength <= 0 {
		return e.interleaved[:0]
	}

	e.ensureBlockBuffers(blockLength)

	e.drainBuf = e.scheduler.Drain(e.currentSampleTime+int64(blockLength), e.drainBuf[:0])
	for _, ev := range e.drainBuf {
		e.manager.Dispatch(ev, ev.Timestamp)
	}

	outL := e.outL[:blockLength]
	outR := e.outR[:blockLength]
	sendReverb := e.sendReverb[:blockLength]
	sendChorus := e.sendChorus[:blockLength]
	for i := 0; i < blockLength; i++ {
		outL[i], outR[i], sendReverb[i], sendChorus[i] = 0, 0, 0, 0
	}

	e.manager.RenderBlock(blockLength, outL, outR, sendReverb, sendChorus)
	e.effects.Process(blockLength, sendReverb, sendChorus, outL, outR)

	interleaved := e.interleaved[:blockLength*2]
	for i := 0; i < blockLength; i++ {
		interleaved[2*i] = clip(outL[i])
		interleaved[2*i+1] = clip(outR[i])
	}

	e.currentSampleTime += int64(blockLength)
	return interleaved
}

func clip(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}

// ensureBlockBuffers grows the block-scratch buffers to at least n
// samples (2n for the interleaved output). Growth only allocates the
// first time a block size is seen; a host that calls Render with a
// constant block_length allocates exactly once.
func (e *Engine) ensureBlockBuffers(n int) {
	if cap(e.outL) < n {
		e.outL = make([]float32, n)
		e.outR = make([]float32, n)
		e.sendReverb = make([]float32, n)
		e.sendChorus = make([]float32, n)
	}
	if cap(e.interleaved) < n*2 {
		e.interleaved = make([]float32, n*2)
	}
}
