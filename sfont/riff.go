package sfont

import "bytes"

// Load parses a RIFF/sfbk byte stream into a Bank (§4.1, §6 load_bank).
// The file must contain, in order, a "RIFF" chunk of form "sfbk" wrapping
// three LIST chunks: INFO, sdta, and pdta. A structurally unsound stream
// is rejected whole: Load never returns a partial Bank (§7).
func Load(data []byte) (*Bank, error) {
	r := bytes.NewReader(data)

	var riff riffChunk
	if err := riff.expect(r, [4]byte{'R', 'I', 'F', 'F'}); err != nil {
		return nil, invalidf("reading RIFF header: %v", err)
	}
	body := riff.newReader()

	if err := expectLiteral(body, []byte("sfbk")); err != nil {
		return nil, invalidf("not a SoundFont (expected form \"sfbk\"): %v", err)
	}

	var infoList riffChunk
	if err := infoList.expect(body, [4]byte{'L', 'I', 'S', 'T'}); err != nil {
		return nil, invalidf("reading INFO list: %v", err)
	}
	info, err := readInfo(infoList.newReader())
	if err != nil {
		return nil, err
	}

	var sdtaList riffChunk
	if err := sdtaList.expect(body, [4]byte{'L', 'I', 'S', 'T'}); err != nil {
		return nil, invalidf("reading sdta list: %v", err)
	}
	pool, err := readSamplePool(sdtaList.newReader())
	if err != nil {
		return nil, err
	}

	var pdtaList riffChunk
	if err := pdtaList.expect(body, [4]byte{'L', 'I', 'S', 'T'}); err != nil {
		return nil, invalidf("reading pdta list: %v", err)
	}
	pdtaReader := pdtaList.newReader()
	if err := expectLiteral(pdtaReader, []byte("pdta")); err != nil {
		return nil, invalidf("pdta list missing \"pdta\" form: %v", err)
	}
	h, err := readHydra(pdtaReader)
	if err != nil {
		return nil, err
	}

	bank, err := buildBank(h, pool, info.Name)
	if err != nil {
		return nil, err
	}

	return bank, nil
}
