// Command sfrender loads a SoundFont bank, drives a small scripted MIDI
// event list through the synth core, and writes the rendered audio to a
// WAV file. It exists purely to exercise the core end to end outside of a
// browser-hosted audio callback; it is not part of the synthesis core.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/sfcore/emu8000synth/synth"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		sf2Path    = pflag.StringP("sf2", "i", "", "path to the .sf2 file to load (required)")
		outPath    = pflag.StringP("out", "o", "out.wav", "output WAV file path")
		sampleRate = pflag.IntP("sample-rate", "r", 44100, "output sample rate in Hz")
		blockLen   = pflag.IntP("block", "b", 512, "render block length in samples")
		duration   = pflag.Float64P("duration", "d", 2.0, "total render duration in seconds")
		noteOnFrac = pflag.Float64P("note-off-at", "f", 0.7, "fraction of the duration at which the note is released")
		channel    = pflag.Uint8P("channel", "c", 0, "MIDI channel to play on")
		bank       = pflag.Uint16P("bank", "B", 0, "bank number to select before playing")
		program    = pflag.Uint16P("program", "p", 0, "program number to select before playing")
		key        = pflag.Uint8P("key", "k", 60, "MIDI key (note number) to play")
		velocity   = pflag.Uint8P("velocity", "v", 100, "note-on velocity")
	)
	pflag.Parse()

	if *sf2Path == "" {
		fmt.Fprintln(os.Stderr, "sfrender: -i/--sf2 is required")
		pflag.Usage()
		return 2
	}

	data, err := os.ReadFile(*sf2Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sfrender: reading %s: %v\n", *sf2Path, err)
		return 1
	}

	e := synth.NewEngine()
	if err := e.Init(float64(*sampleRate)); err != nil {
		fmt.Fprintf(os.Stderr, "sfrender: %v\n", err)
		return 1
	}
	if err := e.LoadBank(data); err != nil {
		fmt.Fprintf(os.Stderr, "sfrender: loading bank: %v\n", err)
		return 1
	}

	e.SelectPreset(*channel, *bank, *program)

	totalSamples := int(*duration * float64(*sampleRate))
	noteOffSample := int64(*noteOnFrac * float64(*sampleRate) * *duration)

	e.SubmitEvent(0, *channel, synth.EventNoteOn, *key, *velocity)
	e.SubmitEvent(noteOffSample, *channel, synth.EventNoteOff, *key, 0)

	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sfrender: creating %s: %v\n", *outPath, err)
		return 1
	}
	defer out.Close()

	interleaved := make([]float32, 0, totalSamples*2)
	for rendered := 0; rendered < totalSamples; rendered += *blockLen {
		n := *blockLen
		if rendered+n > totalSamples {
			n = totalSamples - rendered
		}
		interleaved = append(interleaved, e.Render(n)...)
	}

	if err := writeWAV(out, *sampleRate, interleaved); err != nil {
		fmt.Fprintf(os.Stderr, "sfrender: writing %s: %v\n", *outPath, err)
		return 1
	}

	fmt.Printf("sfrender: wrote %s (%d samples, %d active voices at end)\n", *outPath, totalSamples, e.ActiveVoices())
	return 0
}
