package main

import (
	"encoding/binary"
	"io"
)

// writeWAV writes interleaved stereo float32 samples (in [-1, 1]) as a
// 16-bit PCM WAV file.
func writeWAV(w io.Writer, sampleRate int, interleaved []float32) error {
	const (
		numChannels   = 2
		bitsPerSample = 16
	)

	dataSize := len(interleaved) * 2 // int16 per sample
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	if err := writeChunkHeader(w, "RIFF", uint32(36+dataSize)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "WAVE"); err != nil {
		return err
	}

	if err := writeChunkHeader(w, "fmt ", 16); err != nil {
		return err
	}
	fmtFields := []any{
		uint16(1), // PCM
		uint16(numChannels),
		uint32(sampleRate),
		uint32(byteRate),
		uint16(blockAlign),
		uint16(bitsPerSample),
	}
	for _, f := range fmtFields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}

	if err := writeChunkHeader(w, "data", uint32(dataSize)); err != nil {
		return err
	}
	for _, s := range interleaved {
		if err := binary.Write(w, binary.LittleEndian, floatToInt16(s)); err != nil {
			return err
		}
	}
	return nil
}

func writeChunkHeader(w io.Writer, id string, size uint32) error {
	if _, err := io.WriteString(w, id); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, size)
}

func floatToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}
