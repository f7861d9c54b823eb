package synth

import "math"

// EnvelopeStage is one state of the DAHDSR state machine (§4.3).
type EnvelopeStage uint8

const (
	StageIdle EnvelopeStage = iota
	StageDelay
	StageAttack
	StageHold
	StageDecay
	StageSustain
	StageRelease
	StageFinished
)

// envelopeFloorDb is the level (§3) below which a voice is finalized.
const envelopeFloorDb = -100.0

var envelopeFloorLinear = float32(dbToLinear(envelopeFloorDb))

// EnvelopeParams are the baked, sample-rate-scaled stage durations for one
// envelope instance (§4.1, §4.3's key-tracked hold/decay scaling is applied
// before Start is called).
type EnvelopeParams struct {
	DelaySamples   int
	AttackSamples  int
	HoldSamples    int
	DecaySamples   int
	SustainLevel   float32 // linear 0..1
	ReleaseSamples int
}

// Envelope is a small per-sample state machine, not a suspended
// computation (Design Note §9): Start seeds it, Advance steps it by one
// sample and returns the current linear level, NoteOff/Kill force a
// transition.
type Envelope struct {
	Stage        EnvelopeStage
	Level        float32
	counter      int
	params       EnvelopeParams
	releaseStart float32
}

// Start begins the delay stage (or whichever stage a zero-length delay and
// attack skip forward to).
func (e *Envelope) Start(p EnvelopeParams) {
	e.params = p
	e.counter = 0
	e.Level = 0
	e.Stage = StageDelay
	e.advanceSkippingZeroStages()
}

// NoteOff transitions the envelope to release from whatever stage it is
// currently in (§4.3), capturing the level it releases from.
func (e *Envelope) NoteOff() {
	if e.Stage == StageFinished || e.Stage == StageIdle {
		return
	}
	e.releaseStart = e.Level
	e.Stage = StageRelease
	e.counter = 0
}

// Kill forces the envelope to Finished immediately (voice stealing with no
// fade, §4.5, or CC120 all-sound-off, §4.5).
func (e *Envelope) Kill() {
	e.Stage = StageFinished
	e.Level = 0
}

// Advance steps the envelope by one sample and returns the new level.
func (e *Envelope) Advance() float32 {
	switch e.Stage {
	case StageDelay:
		e.counter++
		if e.counter >= e.params.DelaySamples {
			e.Stage = StageAttack
			e.counter = 0
		}
	case StageAttack:
		e.counter++
		t := ramp(e.counter, e.params.AttackSamples)
		e.Level = convexRise(t)
		if t >= 1 {
			e.Level = 1
			e.Stage = StageHold
			e.counter = 0
		}
	case StageHold:
		e.counter++
		e.Level = 1
		if e.counter >= e.params.HoldSamples {
			e.Stage = StageDecay
			e.counter = 0
		}
	case StageDecay:
		e.counter++
		t := ramp(e.counter, e.params.DecaySamples)
		floor := e.params.SustainLevel
		if floor <= 0 {
			floor = envelopeFloorLinear
		}
		e.Level = dbLerp(1, floor, t)
		if t >= 1 {
			e.Level = e.params.SustainLevel
			e.Stage = StageSustain
		}
	case StageSustain:
		e.Level = e.params.SustainLevel
	case StageRelease:
		e.counter++
		t := ramp(e.counter, e.params.ReleaseSamples)
		from := e.releaseStart
		if from <= 0 {
			from = envelopeFloorLinear
		}
		e.Level = dbLerp(from, envelopeFloorLinear, t)
		if t >= 1 || e.Level <= envelopeFloorLinear {
			e.Stage = StageFinished
			e.Level = 0
		}
	case StageFinished, StageIdle:
		e.Level = 0
	}

	e.advanceSkippingZeroStages()
	return e.Level
}

// advanceSkippingZeroStages moves past any stage whose duration bakes to
// zero samples, so a zero delay/hold doesn't cost a sample of silence and
// a zero attack/decay snaps straight to the next stage's level.
func (e *Envelope) advanceSkippingZeroStages() {
	for {
		switch {
		case e.Stage == StageDelay && e.params.DelaySamples <= 0:
			e.Stage = StageAttack
			e.counter = 0
		case e.Stage == StageAttack && e.params.AttackSamples <= 0:
			e.Level = 1
			e.Stage = StageHold
			e.counter = 0
		case e.Stage == StageHold && e.params.HoldSamples <= 0:
			e.Level = 1
			e.Stage = StageDecay
			e.counter = 0
		case e.Stage == StageDecay && e.params.DecaySamples <= 0:
			e.Level = e.params.SustainLevel
			e.Stage = StageSustain
		default:
			return
		}
	}
}

// Finished reports whether the voice owning this envelope is reusable.
func (e *Envelope) Finished() bool { return e.Stage == StageFinished }

func ramp(counter, total int) float32 {
	if total <= 0 {
		return 1
	}
	t := float32(counter) / float32(total)
	if t > 1 {
		t = 1
	}
	return t
}

// convexRise is the attack curve (§4.3: "attack is convex"): it starts
// slow and accelerates toward 1.
func convexRise(t float32) float32 {
	return t * t
}

// dbLerp interpolates linearly in the dB domain between from and to,
// which is an exponential approach in the linear domain (§4.3: "decay/
// release are exponential toward the floor").
func dbLerp(from, to, t float32) float32 {
	fromDb := linearToDb(from)
	toDb := linearToDb(to)
	db := fromDb + (toDb-fromDb)*float64(t)
	return float32(dbToLinear(db))
}

func linearToDb(level float32) float64 {
	l := float64(level)
	if l < 1e-9 {
		l = 1e-9
	}
	return 20 * math.Log10(l)
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}
