package sfxr

// ----- Wave Buffer ----- //

// WaveBuffer is a rendered sound. Its length is the full envelope length even
// when the frequency floor ended the note early; the tail is then silent.
type WaveBuffer struct {
	samples  []float32
	produced int
	version  uint64
}

func newWaveBuffer(length int, version uint64) *WaveBuffer {
	return &WaveBuffer{
		samples: make([]float32, length),
		version: version,
	}
}

// Len ...
func (w *WaveBuffer) Len() int {
	return len(w.samples)
}

// Produced is the number of samples the generator actually rendered.
func (w *WaveBuffer) Produced() int {
	return w.produced
}

// Samples returns the backing slice; callers must not modify it.
func (w *WaveBuffer) Samples() []float32 {
	return w.samples
}

// At ...
func (w *WaveBuffer) At(i int) float32 {
	return w.samples[i]
}

// Version is the Params version the buffer was rendered from.
func (w *WaveBuffer) Version() uint64 {
	return w.version
}

// ----- Mutation Set ----- //

// MutationSet holds variations rendered around one base version.
type MutationSet struct {
	buffers []*WaveBuffer
	target  int
	amount  float64
	version uint64
}

// Len ...
func (m *MutationSet) Len() int {
	return len(m.buffers)
}

// At ...
func (m *MutationSet) At(i int) *WaveBuffer {
	return m.buffers[i]
}

// Complete reports whether every requested variation is rendered.
func (m *MutationSet) Complete() bool {
	return len(m.buffers) >= m.target
}

// Amount is the mutation amount the set was built with.
func (m *MutationSet) Amount() float64 {
	return m.amount
}

// Version is the base Params version the set was built around.
func (m *MutationSet) Version() uint64 {
	return m.version
}
