package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfcore/emu8000synth/internal/sftest"
	"github.com/sfcore/emu8000synth/sfont"
)

func sustainedBank(t *testing.T) *sfont.Bank {
	t.Helper()
	b := sftest.New()
	sampleIdx := b.AddSineSample("sine", 4096, 440, 44100, 69)
	instIdx := b.AddInstrument("inst", sampleIdx, 0, 127, 0, 127,
		sftest.Gen{Op: sfont.GenSustainVolEnv, Amount: 0},
		sftest.Gen{Op: sfont.GenReleaseVolEnv, Amount: 6000}) // long release
	b.AddPreset("preset", 0, 0, instIdx)
	bank, err := sfont.Load(b.Build())
	require.NoError(t, err)
	return bank
}

func newTestManager(t *testing.T) *Manager {
	m := NewManager(&ringLog{})
	m.SetBank(sustainedBank(t))
	m.SetSampleRate(44100)
	return m
}

func TestManager_NoteOnAllocatesOneVoicePerMatchingZone(t *testing.T) {
	m := newTestManager(t)
	m.Dispatch(Event{Type: EventNoteOn, Channel: 0, Data1: 60, Data2: 100}, 0)
	assert.Equal(t, 1, m.ActiveVoiceCount())
}

func TestManager_NoteOnVelocityZeroIsNoteOff(t *testing.T) {
	m := newTestManager(t)
	m.Dispatch(Event{Type: EventNoteOn, Channel: 0, Data1: 60, Data2: 100}, 0)
	m.Dispatch(Event{Type: EventNoteOn, Channel: 0, Data1: 60, Data2: 0}, 100)
	// note-off transitions to release, not an immediate deallocation.
	require.Equal(t, 1, m.ActiveVoiceCount())
	assert.Equal(t, StageRelease, m.voices[0].volEnv.Stage)
}

func TestManager_VoiceStealingCapsAt32(t *testing.T) {
	m := newTestManager(t)
	for key := 0; key < 33; key++ {
		m.Dispatch(Event{Type: EventNoteOn, Channel: 0, Data1: uint8(key), Data2: 100}, int64(key))
	}
	assert.Equal(t, MaxVoices, m.ActiveVoiceCount())
}

func TestManager_SustainPedalDefersNoteOff(t *testing.T) {
	m := newTestManager(t)
	m.Dispatch(Event{Type: EventControlChange, Channel: 0, Data1: CCSustain, Data2: 127}, 0)
	m.Dispatch(Event{Type: EventNoteOn, Channel: 0, Data1: 60, Data2: 100}, 1)
	m.Dispatch(Event{Type: EventNoteOff, Channel: 0, Data1: 60}, 2)

	assert.Equal(t, StageDelay, m.voices[0].volEnv.Stage, "no Render call has advanced the envelope yet")
	require.True(t, m.voices[0].sustainPending)

	m.Dispatch(Event{Type: EventControlChange, Channel: 0, Data1: CCSustain, Data2: 0}, 3)
	assert.Equal(t, StageRelease, m.voices[0].volEnv.Stage)
}

func TestManager_ExclusiveClassForceReleases(t *testing.T) {
	b := sftest.New()
	sampleIdx := b.AddSineSample("hat", 4096, 440, 44100, 69)
	closedHat := b.AddInstrument("closed", sampleIdx, 0, 127, 0, 127,
		sftest.Gen{Op: sfont.GenExclusiveClass, Amount: 1})
	openHat := b.AddInstrument("open", sampleIdx, 0, 127, 0, 127,
		sftest.Gen{Op: sfont.GenExclusiveClass, Amount: 1})
	b.AddPreset("closed preset", 0, 0, closedHat)
	b.AddPreset("open preset", 0, 1, openHat)
	bank, err := sfont.Load(b.Build())
	require.NoError(t, err)

	m := NewManager(&ringLog{})
	m.SetBank(bank)
	m.SetSampleRate(44100)

	m.Dispatch(Event{Type: EventProgramChange, Channel: 0, Data1: 0}, 0)
	m.Dispatch(Event{Type: EventNoteOn, Channel: 0, Data1: 60, Data2: 100}, 0)
	require.Equal(t, VoiceSounding, m.voices[0].State)

	m.Dispatch(Event{Type: EventProgramChange, Channel: 0, Data1: 1}, 1)
	m.Dispatch(Event{Type: EventNoteOn, Channel: 0, Data1: 61, Data2: 100}, 1)

	assert.Equal(t, VoiceFinished, m.voices[0].State, "first hat voice must be force-released by the exclusive class")
}

func TestManager_AllSoundOffKillsWithoutRelease(t *testing.T) {
	m := newTestManager(t)
	m.Dispatch(Event{Type: EventNoteOn, Channel: 0, Data1: 60, Data2: 100}, 0)
	m.Dispatch(Event{Type: EventControlChange, Channel: 0, Data1: CCAllSoundOff, Data2: 127}, 1)
	assert.Equal(t, 0, m.ActiveVoiceCount())
}
