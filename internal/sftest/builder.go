// Package sftest builds minimal, structurally valid SoundFont 2.0 byte
// streams for tests across the module (sfont, preset, synth). It is a
// test-only mirror of the RIFF structure sfont.Load consumes — production
// code never serializes a bank (§1: the core only parses banks supplied
// by the host).
package sftest

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/sfcore/emu8000synth/sfont"
)

// sampleSpec is one sample to bake into the sample pool.
type sampleSpec struct {
	name          string
	start, end    uint32
	loopStart     uint32
	loopEnd       uint32
	sampleRate    uint32
	originalPitch uint8
}

// Gen is a single (generator, amount) pair for an instrument zone.
type Gen struct {
	Op     sfont.GeneratorID
	Amount int16
}

// Builder assembles an in-memory SoundFont byte stream.
type Builder struct {
	samples []int16
	sHdrs   []sampleSpec

	instruments []instrumentSpec
	presets     []presetSpec
}

type instrumentSpec struct {
	name                       string
	sampleIdx                  int
	keyLo, keyHi, velLo, velHi uint8
	gens                       []Gen
}

type presetSpec struct {
	name          string
	bank, program uint16
	instrumentIdx int
}

func New() *Builder {
	return &Builder{}
}

// AddSineSample appends an n-sample sine wave, looped over its full
// length, returning its index.
func (b *Builder) AddSineSample(name string, n int, freq, sampleRate float64, rootKey uint8) int {
	start := uint32(len(b.samples))
	for i := 0; i < n; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		b.samples = append(b.samples, int16(v*32767))
	}
	for i := 0; i < 46; i++ { // required trailing zero points
		b.samples = append(b.samples, 0)
	}
	end := start + uint32(n)
	b.sHdrs = append(b.sHdrs, sampleSpec{
		name: name, start: start, end: end,
		loopStart: start, loopEnd: end,
		sampleRate: uint32(sampleRate), originalPitch: rootKey,
	})
	return len(b.sHdrs) - 1
}

// AddInstrument adds an instrument with a single zone covering
// [keyLo,keyHi]x[velLo,velHi] referencing sampleIdx, with extra generators.
func (b *Builder) AddInstrument(name string, sampleIdx int, keyLo, keyHi, velLo, velHi uint8, gens ...Gen) int {
	b.instruments = append(b.instruments, instrumentSpec{
		name: name, sampleIdx: sampleIdx,
		keyLo: keyLo, keyHi: keyHi, velLo: velLo, velHi: velHi,
		gens: gens,
	})
	return len(b.instruments) - 1
}

// AddPreset adds a preset with a single zone referencing instrumentIdx.
func (b *Builder) AddPreset(name string, bank, program uint16, instrumentIdx int) {
	b.presets = append(b.presets, presetSpec{name: name, bank: bank, program: program, instrumentIdx: instrumentIdx})
}

func writeChunk(buf *bytes.Buffer, id string, data []byte) {
	buf.WriteString(id)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(data)))
	buf.Write(size[:])
	buf.Write(data)
	if len(data)%2 != 0 {
		buf.WriteByte(0)
	}
}

func padName(s string) [20]byte {
	var b [20]byte
	copy(b[:], s)
	return b
}

func put16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func put32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// Build emits the full RIFF byte stream.
func (b *Builder) Build() []byte {
	var smplBuf bytes.Buffer
	for _, s := range b.samples {
		put16(&smplBuf, uint16(s))
	}
	var sdtaInner bytes.Buffer
	writeChunk(&sdtaInner, "smpl", smplBuf.Bytes())
	var sdtaBuf bytes.Buffer
	sdtaBuf.WriteString("sdta")
	sdtaBuf.Write(sdtaInner.Bytes())

	var infoInner bytes.Buffer
	var ifil bytes.Buffer
	put16(&ifil, 2)
	put16(&ifil, 1)
	writeChunk(&infoInner, "ifil", ifil.Bytes())
	writeChunk(&infoInner, "isng", []byte("EMU8000\x00"))
	writeChunk(&infoInner, "INAM", []byte("test bank\x00"))
	var infoBuf bytes.Buffer
	infoBuf.WriteString("INFO")
	infoBuf.Write(infoInner.Bytes())

	var phdr, pbag, pmod, pgen bytes.Buffer
	var inst, ibag, imod, igen bytes.Buffer
	var shdr bytes.Buffer

	genIdx := uint16(0)
	modIdx := uint16(0)
	for _, p := range b.presets {
		name := padName(p.name)
		phdr.Write(name[:])
		put16(&phdr, p.program)
		put16(&phdr, p.bank)
		put16(&phdr, uint16(pbag.Len()/4))
		put32(&phdr, 0)
		put32(&phdr, 0)
		put32(&phdr, 0)

		put16(&pbag, genIdx)
		put16(&pbag, modIdx)

		put16(&pgen, uint16(sfont.GenInstrument))
		put16(&pgen, uint16(p.instrumentIdx))
		genIdx++
	}
	{
		var term [20]byte
		phdr.Write(term[:])
		put16(&phdr, 0)
		put16(&phdr, 0)
		put16(&phdr, uint16(pbag.Len()/4))
		put32(&phdr, 0)
		put32(&phdr, 0)
		put32(&phdr, 0)
		put16(&pbag, genIdx)
		put16(&pbag, modIdx)
	}

	genIdx, modIdx = 0, 0
	for _, in := range b.instruments {
		name := padName(in.name)
		inst.Write(name[:])
		put16(&inst, uint16(ibag.Len()/4))

		put16(&ibag, genIdx)
		put16(&ibag, modIdx)

		writeGen := func(op sfont.GeneratorID, amount int16) {
			put16(&igen, uint16(op))
			put16(&igen, uint16(amount))
			genIdx++
		}
		if in.keyLo != 0 || in.keyHi != 127 {
			writeGen(sfont.GenKeyRange, int16(uint16(in.keyHi)<<8|uint16(in.keyLo)))
		}
		if in.velLo != 0 || in.velHi != 127 {
			writeGen(sfont.GenVelRange, int16(uint16(in.velHi)<<8|uint16(in.velLo)))
		}
		for _, g := range in.gens {
			writeGen(g.Op, g.Amount)
		}
		writeGen(sfont.GenSampleID, int16(in.sampleIdx))
	}
	{
		var term [20]byte
		inst.Write(term[:])
		put16(&inst, uint16(ibag.Len()/4))
		put16(&ibag, genIdx)
		put16(&ibag, modIdx)
	}

	for _, s := range b.sHdrs {
		name := padName(s.name)
		shdr.Write(name[:])
		put32(&shdr, s.start)
		put32(&shdr, s.end)
		put32(&shdr, s.loopStart)
		put32(&shdr, s.loopEnd)
		put32(&shdr, s.sampleRate)
		shdr.WriteByte(s.originalPitch)
		shdr.WriteByte(0) // pitch correction
		put16(&shdr, 0)   // sample link
		put16(&shdr, uint16(sfont.SampleMono))
	}
	{
		var term [20]byte
		shdr.Write(term[:])
		put32(&shdr, 0)
		put32(&shdr, 0)
		put32(&shdr, 0)
		put32(&shdr, 0)
		put32(&shdr, 0)
		shdr.WriteByte(0)
		shdr.WriteByte(0)
		put16(&shdr, 0)
		put16(&shdr, 0)
	}

	var pdtaInner bytes.Buffer
	writeChunk(&pdtaInner, "phdr", phdr.Bytes())
	writeChunk(&pdtaInner, "pbag", pbag.Bytes())
	writeChunk(&pdtaInner, "pmod", pmod.Bytes())
	writeChunk(&pdtaInner, "pgen", pgen.Bytes())
	writeChunk(&pdtaInner, "inst", inst.Bytes())
	writeChunk(&pdtaInner, "ibag", ibag.Bytes())
	writeChunk(&pdtaInner, "imod", imod.Bytes())
	writeChunk(&pdtaInner, "igen", igen.Bytes())
	writeChunk(&pdtaInner, "shdr", shdr.Bytes())
	var pdtaBuf bytes.Buffer
	pdtaBuf.WriteString("pdta")
	pdtaBuf.Write(pdtaInner.Bytes())

	var body bytes.Buffer
	body.WriteString("sfbk")
	writeChunk(&body, "LIST", infoBuf.Bytes())
	writeChunk(&body, "LIST", sdtaBuf.Bytes())
	writeChunk(&body, "LIST", pdtaBuf.Bytes())

	var out bytes.Buffer
	writeChunk(&out, "RIFF", body.Bytes())
	return out.Bytes()
}

// EmptyBank returns the minimal legal SoundFont: no presets, no
// instruments, no samples (§8 scenario 1).
func EmptyBank() []byte {
	return New().Build()
}
