package synth

import "math"

// LFO is a free-running sine oscillator with an initial delay (§4.1 gens
// 21-24, §4.3 step 1). Two independent instances drive pitch/filter/volume
// modulation (mod LFO) and vibrato (vib LFO) per voice.
type LFO struct {
	delaySamples int
	counter      int
	phase        float64 // 0..1, wrapped each cycle
	phaseInc     float64 // cycles per sample
}

// Start (re)starts the LFO: delaySamples of silence, then a sine running
// at freqHz against sampleRate.
func (l *LFO) Start(delaySamples int, freqHz, sampleRate float64) {
	l.delaySamples = delaySamples
	l.counter = 0
	l.phase = 0
	if sampleRate > 0 {
		l.phaseInc = freqHz / sampleRate
	}
}

// Advance steps the LFO by one sample and returns its bipolar [-1,1]
// output.
func (l *LFO) Advance() float64 {
	if l.counter < l.delaySamples {
		l.counter++
		return 0
	}
	v := math.Sin(2 * math.Pi * l.phase)
	l.phase += l.phaseInc
	if l.phase >= 1 {
		l.phase -= math.Trunc(l.phase)
	}
	return v
}
