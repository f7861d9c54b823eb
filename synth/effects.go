package synth

import "math"

// Effects Bus tuning (§4.6, §9 Open Question decision recorded in
// DESIGN.md): an 8-tap Schroeder-style reverb (4 parallel combs per
// channel, slightly detuned between L/R for stereo width, feeding 2
// series allpass filters per channel) and a single-LFO chorus with a 90°
// stereo phase offset.
const (
	reverbCombFeedback    = 0.84
	reverbDamp            = 0.2
	reverbAllpassFeedback = 0.5
	reverbWetGain         = 0.5

	chorusBaseDelayMs = 15.0
	chorusDepthMs     = 6.0
	chorusRateHz      = 0.5
	chorusFeedback    = 0.2
	chorusWetGain     = 0.7

	// sendBypassThreshold is 1/1000 of full scale (§4.6).
	sendBypassThreshold = 1.0 / 1000
)

// Reference comb/allpass delay lengths in samples at 44100 Hz (the classic
// Schroeder/Moorer constants), scaled to the actual output sample rate.
var (
	reverbCombBaseSamples    = [4]int{1557, 1617, 1491, 1422}
	reverbAllpassBaseSamples = [2]int{225, 556}
)

const reverbStereoOffsetSamples = 23

type comb struct {
	buf      []float32
	pos      int
	feedback float32
	damp     float32
	store    float32
}

func newComb(delaySamples int, feedback, damp float32) *comb {
	if delaySamples < 1 {
		delaySamples = 1
	}
	return &comb{buf: make([]float32, delaySamples), feedback: feedback, damp: damp}
}

func (c *comb) process(in float32) float32 {
	out := c.buf[c.pos]
	c.store = out*(1-c.damp) + c.store*c.damp
	c.buf[c.pos] = in + c.store*c.feedback
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

type allpass struct {
	buf      []float32
	pos      int
	feedback float32
}

func newAllpass(delaySamples int, feedback float32) *allpass {
	if delaySamples < 1 {
		delaySamples = 1
	}
	return &allpass{buf: make([]float32, delaySamples), feedback: feedback}
}

func (a *allpass) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.feedback
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

// Reverb is the mono-in, stereo-out Schroeder network (§4.6, §3 "reverb
// delay lines (multi-tap, up to 8 taps)").
type Reverb struct {
	combsL, combsR       [4]*comb
	allpassL, allpassR   [2]*allpass
}

func newReverb(sampleRate float64) *Reverb {
	scale := sampleRate / 44100
	r := &Reverb{}
	for i := 0; i < 4; i++ {
		n := int(float64(reverbCombBaseSamples[i]) * scale)
		r.combsL[i] = newComb(n, reverbCombFeedback, reverbDamp)
		r.combsR[i] = newComb(n+reverbStereoOffsetSamples, reverbCombFeedback, reverbDamp)
	}
	for i := 0; i < 2; i++ {
		n := int(float64(reverbAllpassBaseSamples[i]) * scale)
		r.allpassL[i] = newAllpass(n, reverbAllpassFeedback)
		r.allpassR[i] = newAllpass(n+reverbStereoOffsetSamples, reverbAllpassFeedback)
	}
	return r
}

func (r *Reverb) process(in float32) (l, rr float32) {
	var sumL, sumR float32
	for i := 0; i < 4; i++ {
		sumL += r.combsL[i].process(in)
		sumR += r.combsR[i].process(in)
	}
	for i := 0; i < 2; i++ {
		sumL = r.allpassL[i].process(sumL)
		sumR = r.allpassR[i].process(sumR)
	}
	return sumL, sumR
}

// Chorus is a modulated delay line: one sine LFO reads the same buffer at
// two points 90° apart for stereo width (§4.6, §3 "chorus delay line with
// LFO-modulated read pointer").
type Chorus struct {
	buf       []float32
	pos       int
	phase     float64
	phaseInc  float64
	baseDelay float64
	depth     float64
}

func newChorus(sampleRate float64) *Chorus {
	maxDelayMs := chorusBaseDelayMs + chorusDepthMs + 2
	n := int(sampleRate*maxDelayMs/1000) + 2
	return &Chorus{
		buf:       make([]float32, n),
		phaseInc:  chorusRateHz / sampleRate,
		baseDelay: chorusBaseDelayMs * sampleRate / 1000,
		depth:     chorusDepthMs * sampleRate / 1000,
	}
}

func (c *Chorus) process(in float32) (l, r float32) {
	lfoL := math.Sin(2 * math.Pi * c.phase)
	lfoR := math.Sin(2*math.Pi*c.phase + math.Pi/2)

	l = c.read(c.baseDelay + c.depth*lfoL)
	r = c.read(c.baseDelay + c.depth*lfoR)

	c.buf[c.pos] = in + l*chorusFeedback
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}

	c.phase += c.phaseInc
	if c.phase >= 1 {
		c.phase -= math.Trunc(c.phase)
	}
	return l, r
}

func (c *Chorus) read(delaySamples float64) float32 {
	readPos := float64(c.pos) - delaySamples
	for readPos < 0 {
		readPos += float64(len(c.buf))
	}
	i0 := int(readPos) % len(c.buf)
	i1 := (i0 + 1) % len(c.buf)
	frac := float32(readPos - math.Trunc(readPos))
	return c.buf[i0] + (c.buf[i1]-c.buf[i0])*frac
}

// EffectsBus mixes the per-voice reverb/chorus sends into the main stereo
// output (§4.6, §4.8 step 4).
type EffectsBus struct {
	reverb *Reverb
	chorus *Chorus
}

// NewEffectsBus allocates the delay lines for the given output sample
// rate. Called once from Engine.Init, never from Render.
func NewEffectsBus(sampleRate float64) *EffectsBus {
	return &EffectsBus{reverb: newReverb(sampleRate), chorus: newChorus(sampleRate)}
}

// Process runs the reverb and chorus networks over sendReverb/sendChorus
// (length n) and mixes the wet signal into outL/outR. Each bus bypasses
// itself for the block when its entire send buffer stays below
// sendBypassThreshold (§4.6's optimization contract).
func (b *EffectsBus) Process(n int, sendReverb, sendChorus, outL, outR []float32) {
	if !belowThreshold(sendReverb[:n]) {
		for i := 0; i < n; i++ {
			l, r := b.reverb.process(sendReverb[i])
			outL[i] += l * reverbWetGain
			outR[i] += r * reverbWetGain
		}
	}
	if !belowThreshold(sendChorus[:n]) {
		for i := 0; i < n; i++ {
			l, r := b.chorus.process(sendChorus[i])
			outL[i] += l * chorusWetGain
			outR[i] += r * chorusWetGain
		}
	}
}

func belowThreshold(buf []float32) bool {
	for _, v := range buf {
		if v > sendBypassThreshold || v < -sendBypassThreshold {
			return false
		}
	}
	return true
}
