package sfxr

// ----- Phaser ----- //

const phaserBufferSize = 1024

// phaser mixes in a copy of the signal delayed by a sweeping offset.
type phaser struct {
	enabled     bool
	offset      float64
	deltaOffset float64
	offsetInt   int
	cursor      int
	past        [phaserBufferSize]float64
}

func (ph *phaser) init(offset, sweep float64) {
	ph.enabled = offset != 0 || sweep != 0
	ph.offset = offset * offset * 1020.0
	if offset < 0 {
		ph.offset = -ph.offset
	}
	ph.deltaOffset = sweep * sweep * sweep * 0.2
	ph.offsetInt = 0
	ph.cursor = 0
	for i := range ph.past {
		ph.past[i] = 0
	}
}

// sweep moves the delay once per output sample.
func (ph *phaser) sweep() {
	if !ph.enabled {
		return
	}
	ph.offset += ph.deltaOffset
	ph.offsetInt = int(ph.offset)
	if ph.offsetInt < 0 {
		ph.offsetInt = -ph.offsetInt
	}
	if ph.offsetInt > phaserBufferSize-1 {
		ph.offsetInt = phaserBufferSize - 1
	}
}

func (ph *phaser) process(in float64) float64 {
	if !ph.enabled {
		return in
	}
	ph.past[ph.cursor&(phaserBufferSize-1)] = in
	out := in + ph.past[(ph.cursor-ph.offsetInt+phaserBufferSize)&(phaserBufferSize-1)]
	ph.cursor = (ph.cursor + 1) & (phaserBufferSize - 1)
	return out
}
