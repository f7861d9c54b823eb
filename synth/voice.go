package synth

import (
	"math"

	"github.com/sfcore/emu8000synth/preset"
	"github.com/sfcore/emu8000synth/sfont"
)

// VoiceState is the coarse lifecycle stage a Voice is in (§3). The
// envelope's own Stage carries the fine-grained DAHDSR detail; VoiceState
// is what the Voice Manager needs to decide allocation and stealing.
type VoiceState uint8

const (
	VoiceIdle VoiceState = iota
	VoiceSounding
	VoiceFinished
)

// Voice is one self-contained sound source (§3): a sample cursor, a
// filter, two envelopes, two LFOs, and the computed parameter set baked
// from its originating preset/instrument zones. It holds a non-owning
// reference into the immutable bank (§9 "Cyclic graphs: none required").
type Voice struct {
	State VoiceState

	Channel        uint8
	Key            uint8
	Velocity       uint8
	ExclusiveClass int16

	req preset.VoiceRequest

	cursor         float64
	loopMode       sfont.SampleMode
	released       bool
	sustainPending bool

	volEnv Envelope
	modEnv Envelope
	modLFO LFO
	vibLFO LFO
	filter Biquad

	// StealPriority is the sample time this voice was started, the
	// oldest-first tiebreak for voice stealing (§4.5).
	StealPriority int64

	sampleRateOut float64
	rootKey       uint8
}

// Start initializes the voice from a resolved preset.VoiceRequest (§4.5
// step 4): sample cursor at the generator-adjusted start offset, envelopes
// in their delay stage, LFO phases at 0.
func (v *Voice) Start(req preset.VoiceRequest, channel, key, vel uint8, noteTime int64, sampleRateOut float64) {
	g := req.Generators

	v.State = VoiceSounding
	v.Channel = channel
	v.Key = key
	v.Velocity = vel
	v.ExclusiveClass = g[sfont.GenExclusiveClass]
	v.req = req
	v.released = false
	v.sustainPending = false
	v.StealPriority = noteTime
	v.sampleRateOut = sampleRateOut
	v.loopMode = sfont.SampleMode(g[sfont.GenSampleModes])

	v.rootKey = req.Sample.OriginalPitch
	if g[sfont.GenOverridingRootKey] >= 0 {
		v.rootKey = uint8(g[sfont.GenOverridingRootKey])
	}

	startOffset := int64(g[sfont.GenStartAddrsOffset]) + int64(g[sfont.GenStartAddrsCoarseOffset])*32768
	v.cursor = float64(int64(req.Sample.Start) + startOffset)

	v.filter.Reset()
	v.modLFO.Start(secToSamples(sfont.TimecentsToSeconds(g[sfont.GenDelayModLFO]), sampleRateOut),
		sfont.AbsoluteCentsToHz(g[sfont.GenFreqModLFO]), sampleRateOut)
	v.vibLFO.Start(secToSamples(sfont.TimecentsToSeconds(g[sfont.GenDelayVibLFO]), sampleRateOut),
		sfont.AbsoluteCentsToHz(g[sfont.GenFreqVibLFO]), sampleRateOut)

	v.volEnv.Start(bakeVolEnvParams(g, key, sampleRateOut))
	v.modEnv.Start(bakeModEnvParams(g, key, sampleRateOut))
}

// NoteOff transitions the voice to release (§4.5), unless the channel's
// sustain pedal defers it — the caller (Manager) is responsible for that
// check and calls NoteOff only once the pedal is accounted for.
func (v *Voice) NoteOff() {
	v.released = true
	v.volEnv.NoteOff()
	v.modEnv.NoteOff()
}

// Kill finishes the voice immediately with no release tail (§4.5 CC120,
// exclusive-class force-release, voice stealing).
func (v *Voice) Kill() {
	v.volEnv.Kill()
	v.modEnv.Kill()
	v.State = VoiceFinished
}

func (v *Voice) forceRelease() {
	if !v.released {
		v.NoteOff()
	}
}

// Level returns the current volume envelope level, the tiebreak for voice
// stealing (§4.5 "lowest current volume envelope level").
func (v *Voice) Level() float32 { return v.volEnv.Level }

// bakeVolEnvParams computes sample-rate-scaled DAHDSR timings for the
// volume envelope, applying the key-tracked hold/decay scaling (§4.3).
func bakeVolEnvParams(g sfont.GenSet, key uint8, sampleRate float64) EnvelopeParams {
	hold := sfont.TimecentsToSeconds(g[sfont.GenHoldVolEnv]) * keynumScale(g[sfont.GenKeynumToVolEnvHold], key)
	decay := sfont.TimecentsToSeconds(g[sfont.GenDecayVolEnv]) * keynumScale(g[sfont.GenKeynumToVolEnvDecay], key)
	sustainLevel := sfont.DbToLinear(sfont.CentibelsToDb(g[sfont.GenSustainVolEnv]))
	return EnvelopeParams{
		DelaySamples:   secToSamples(sfont.TimecentsToSeconds(g[sfont.GenDelayVolEnv]), sampleRate),
		AttackSamples:  secToSamples(sfont.TimecentsToSeconds(g[sfont.GenAttackVolEnv]), sampleRate),
		HoldSamples:    secToSamples(hold, sampleRate),
		DecaySamples:   secToSamples(decay, sampleRate),
		SustainLevel:   float32(sustainLevel),
		ReleaseSamples: secToSamples(sfont.TimecentsToSeconds(g[sfont.GenReleaseVolEnv]), sampleRate),
	}
}

// bakeModEnvParams is analogous to bakeVolEnvParams, but the modulation
// envelope's sustain generator is a linear 0..1000 "percent of full swing"
// value, not a dB attenuation (§4.1).
func bakeModEnvParams(g sfont.GenSet, key uint8, sampleRate float64) EnvelopeParams {
	hold := sfont.TimecentsToSeconds(g[sfont.GenHoldModEnv]) * keynumScale(g[sfont.GenKeynumToModEnvHold], key)
	decay := sfont.TimecentsToSeconds(g[sfont.GenDecayModEnv]) * keynumScale(g[sfont.GenKeynumToModEnvDecay], key)
	sustainLevel := 1 - float64(g[sfont.GenSustainModEnv])/1000
	if sustainLevel < 0 {
		sustainLevel = 0
	}
	return EnvelopeParams{
		DelaySamples:   secToSamples(sfont.TimecentsToSeconds(g[sfont.GenDelayModEnv]), sampleRate),
		AttackSamples:  secToSamples(sfont.TimecentsToSeconds(g[sfont.GenAttackModEnv]), sampleRate),
		HoldSamples:    secToSamples(hold, sampleRate),
		DecaySamples:   secToSamples(decay, sampleRate),
		SustainLevel:   float32(sustainLevel),
		ReleaseSamples: secToSamples(sfont.TimecentsToSeconds(g[sfont.GenReleaseModEnv]), sampleRate),
	}
}

func keynumScale(genVal int16, key uint8) float64 {
	return math.Exp2(float64(60-int(key)) * float64(genVal) / 1200.0)
}

func secToSamples(sec, sampleRate float64) int {
	n := int(sec * sampleRate)
	if n < 0 {
		n = 0
	}
	return n
}

// Render processes n samples of this voice's pipeline (§4.3), accumulating
// into outL/outR and the two effects sends. pool is the bank's shared
// 16-bit PCM sample pool; ch carries the channel/controller state the
// Modulation Router reads (pitch bend reaches the pitch through the
// router's pitch-wheel modulator). Render never allocates.
func (v *Voice) Render(n int, pool []int16, ch *ChannelState, masterTuningCents float64, outL, outR, sendReverb, sendChorus []float32) {
	sample := v.req.Sample
	g := v.req.Generators

	for i := 0; i < n && v.State == VoiceSounding; i++ {
		modLfoVal := v.modLFO.Advance()
		vibLfoVal := v.vibLFO.Advance()

		volLevel := v.volEnv.Advance()
		modLevel := v.modEnv.Advance()

		sv := SourceValues{Channel: ch, Key: v.Key, Velocity: v.Velocity}
		offs := Evaluate(v.req.Modulators, sv)

		rootKey := v.rootKey
		scaleTuning := float64(g[sfont.GenScaleTuning]) + offs[sfont.GenScaleTuning]
		coarseTune := float64(g[sfont.GenCoarseTune]) + offs[sfont.GenCoarseTune]
		fineTune := float64(g[sfont.GenFineTune]) + offs[sfont.GenFineTune]
		modEnvToPitch := float64(g[sfont.GenModEnvToPitch]) + offs[sfont.GenModEnvToPitch]
		modLfoToPitch := float64(g[sfont.GenModLfoToPitch]) + offs[sfont.GenModLfoToPitch]
		vibLfoToPitch := float64(g[sfont.GenVibLfoToPitch]) + offs[sfont.GenVibLfoToPitch]

		pitchCents := masterTuningCents
		pitchCents += coarseTune*100 + fineTune + float64(sample.PitchCorrection)
		pitchCents += scaleTuning * (float64(v.Key) - float64(rootKey))
		pitchCents += modEnvToPitch * float64(modLevel)
		pitchCents += modLfoToPitch * modLfoVal
		pitchCents += vibLfoToPitch * vibLfoVal

		pitchRatio := math.Exp2(pitchCents / 1200)

		v.advanceCursor(pitchRatio, sample)
		if v.State != VoiceSounding {
			break
		}

		raw := interpolate(pool, sample, v.cursor, v.loopMode, v.released)

		cutoffCents := float64(g[sfont.GenInitialFilterFc]) + offs[sfont.GenInitialFilterFc]
		modLfoToFc := float64(g[sfont.GenModLfoToFilterFc]) + offs[sfont.GenModLfoToFilterFc]
		modEnvToFc := float64(g[sfont.GenModEnvToFilterFc]) + offs[sfont.GenModEnvToFilterFc]
		cutoffCents += modLfoToFc*modLfoVal + modEnvToFc*float64(modLevel)
		cutoffHz := sfont.AbsoluteCentsToHz(int16(clampInt32(cutoffCents, -32768, 32767)))

		qCb := float64(g[sfont.GenInitialFilterQ]) + offs[sfont.GenInitialFilterQ]
		q := math.Pow(10, sfont.CentibelsToDb(int16(clampInt32(qCb, 0, 1000)))/20)
		if q < 0.5 {
			q = 0.5
		}
		v.filter.SetParams(cutoffHz, q, v.sampleRateOut)
		filtered := v.filter.Process(raw)

		attenCb := float64(g[sfont.GenInitialAttenuation]) + offs[sfont.GenInitialAttenuation]
		modLfoToVol := float64(g[sfont.GenModLfoToVolume]) + offs[sfont.GenModLfoToVolume]
		attenCb -= modLfoToVol * modLfoVal // positive excursion raises volume
		gain := float32(sfont.DbToLinear(sfont.CentibelsToDb(int16(clampInt32(attenCb, 0, 1440))))) * volLevel

		scaled := filtered * gain

		pan := float64(g[sfont.GenPan])+offs[sfont.GenPan]
		if pan > 500 {
			pan = 500
		}
		if pan < -500 {
			pan = -500
		}
		angle := (pan/500 + 1) * math.Pi / 4
		gainL := float32(math.Cos(angle))
		gainR := float32(math.Sin(angle))

		outL[i] += scaled * gainL
		outR[i] += scaled * gainR

		reverbSend := float64(g[sfont.GenReverbEffectsSend]) + offs[sfont.GenReverbEffectsSend]
		chorusSend := float64(g[sfont.GenChorusEffectsSend]) + offs[sfont.GenChorusEffectsSend]
		sendReverb[i] += scaled * float32(clamp01(reverbSend/1000))
		sendChorus[i] += scaled * float32(clamp01(chorusSend/1000))

		if v.volEnv.Finished() {
			v.State = VoiceFinished
		}
	}
}

func clampInt32(v float64, lo, hi int32) int32 {
	if v < float64(lo) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int32(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// advanceCursor moves the sample cursor by one sample's worth of pitch-
// scaled time and applies loop-mode wrapping (§4.3 step 6).
func (v *Voice) advanceCursor(pitchRatio float64, sample *sfont.Sample) {
	ratio := pitchRatio * float64(sample.SampleRate) / v.sampleRateOut
	v.cursor += ratio

	degenerateLoop := sample.LoopEnd <= sample.LoopStart

	switch v.loopMode {
	case sfont.SampleModeLoop:
		if degenerateLoop {
			v.forceRelease() // §8: loopStart == loopEnd releases immediately
			v.loopMode = sfont.SampleModeNoLoop
			return
		}
		loopLen := float64(sample.LoopEnd - sample.LoopStart)
		for v.cursor >= float64(sample.LoopEnd) {
			v.cursor -= loopLen
		}
	case sfont.SampleModeLoopUntilRelease:
		if !v.released {
			if degenerateLoop {
				v.forceRelease()
				return
			}
			loopLen := float64(sample.LoopEnd - sample.LoopStart)
			for v.cursor >= float64(sample.LoopEnd) {
				v.cursor -= loopLen
			}
		} else if v.cursor >= float64(sample.End) {
			v.State = VoiceFinished
		}
	default:
		if v.cursor >= float64(sample.End) {
			v.State = VoiceFinished
		}
	}
}

// interpolate linearly interpolates the two PCM samples adjacent to
// cursor (§4.3 step 7).
func interpolate(pool []int16, sample *sfont.Sample, cursor float64, loopMode sfont.SampleMode, released bool) float32 {
	idx := int64(cursor)
	frac := float32(cursor - float64(idx))

	next := idx + 1
	looping := loopMode == sfont.SampleModeLoop || (loopMode == sfont.SampleModeLoopUntilRelease && !released)
	if looping && sample.LoopEnd > sample.LoopStart && next >= int64(sample.LoopEnd) {
		next = int64(sample.LoopStart)
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= int64(len(pool)) {
		idx = int64(len(pool)) - 1
	}
	if next < 0 || next >= int64(len(pool)) {
		next = idx
	}

	a := float32(pool[idx]) / 32768
	b := float32(pool[next]) / 32768
	return a + (b-a)*frac
}
