package audio

import (
	"fmt"
	"math"
	"math/cmplx"
)

// ----- FFT ----- //

type fft struct {
	bitReverseTable []int
	wTable          []complex128
	buf             []complex128
}

func newFFT(length int) *fft {
	if length&(length-1) != 0 {
		panic(fmt.Sprintf("fft length must be a power of two: %v", length))
	}
	return &fft{
		bitReverseTable: makeBitReverseTable(length),
		wTable:          makeWTable(length),
		buf:             make([]complex128, length),
	}
}

func makeBitReverseTable(n int) []int {
	array := make([]int, n)
	for i := 0; i < n; i++ {
		array[i] = bitReverse(i, n)
	}
	return array
}

func bitReverse(k, n int) int {
	m := 0
	for ; n > 1; n = n >> 1 {
		m = m<<1 + k&1
		k = k >> 1
	}
	return m
}

func makeWTable(n int) []complex128 {
	array := make([]complex128, n)
	w := -2.0 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		array[i] = cmplx.Exp(complex(0, w*float64(i)))
	}
	return array
}

// calc transforms x in place.
func (f *fft) calc(x []complex128) {
	n := len(x)
	if n != len(f.bitReverseTable) {
		panic(fmt.Sprintf("length should be %v", len(f.bitReverseTable)))
	}
	for i := 0; i < n; i++ {
		rev := f.bitReverseTable[i]
		if i < rev {
			x[i], x[rev] = x[rev], x[i]
		}
	}
	for m := 1; m < n; m = m << 1 {
		step := m << 1
		for k := 0; k < m; k++ {
			w := f.wTable[n/step*k]
			for i := k; i < n; i += step {
				j := i + m
				tmp := x[j] * w
				x[j] = x[i] - tmp
				x[i] = x[i] + tmp
			}
		}
	}
}

// calcAbs replaces x with the magnitudes of its transform.
func (f *fft) calcAbs(x []float64) {
	for i, v := range x {
		f.buf[i] = complex(v, 0)
	}
	f.calc(f.buf)
	for i := range x {
		x[i] = cmplx.Abs(f.buf[i])
	}
}

// ----- Spectrum ----- //

// spectrum turns a block of output into a one-sided amplitude spectrum.
type spectrum struct {
	fft    *fft
	window []float64
	data   []float64
}

func newSpectrum(size int) *spectrum {
	return &spectrum{
		fft:    newFFT(size),
		window: hann(size),
		data:   make([]float64, size),
	}
}

// input is the buffer analyze reads from.
func (s *spectrum) input() []float64 {
	return s.data
}

func (s *spectrum) analyze() []float64 {
	n := len(s.data)
	for i, w := range s.window {
		s.data[i] *= w
	}
	s.fft.calcAbs(s.data)
	result := make([]float64, n/2)
	for i := range result {
		result[i] = s.data[i] * 2 / float64(n)
	}
	return result
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		x := float64(i) / float64(n)
		w[i] = 0.5 - 0.5*math.Cos(2.0*math.Pi*x)
	}
	return w
}
