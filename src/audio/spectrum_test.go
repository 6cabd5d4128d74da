package audio

import (
	"math"
	"testing"
)

func TestBitreverse(t *testing.T) {
	expectEqual(t, bitReverse(0, 8), 0)
	expectEqual(t, bitReverse(1, 8), 4)
	expectEqual(t, bitReverse(2, 8), 2)
	expectEqual(t, bitReverse(3, 8), 6)
	expectEqual(t, bitReverse(4, 8), 1)
	expectEqual(t, bitReverse(5, 8), 5)
	expectEqual(t, bitReverse(6, 8), 3)
	expectEqual(t, bitReverse(7, 8), 7)
}

func TestFFT(t *testing.T) {
	fft := newFFT(8)
	x := []float64{0, 0.25, 0.5, 0.75, 1, 0.75, 0.5, 0.25}
	// symmetric input has a real transform
	fft.calcAbs(x)
	expectNearlyEqual(t, x[0], 4)
	expectNearlyEqual(t, x[1], 1+math.Sqrt(2)/2)
	expectNearlyEqual(t, x[2], 0)
	expectNearlyEqual(t, x[3], 1-math.Sqrt(2)/2)
	expectNearlyEqual(t, x[4], 0)
	expectNearlyEqual(t, x[5], 1-math.Sqrt(2)/2)
	expectNearlyEqual(t, x[6], 0)
	expectNearlyEqual(t, x[7], 1+math.Sqrt(2)/2)
}

func TestSpectrumPeak(t *testing.T) {
	s := newSpectrum(fftSize)
	in := s.input()
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 64 * float64(i) / fftSize)
	}
	result := s.analyze()
	expectEqual(t, len(result), fftSize/2)
	peak := 0
	for i, v := range result {
		if v > result[peak] {
			peak = i
		}
	}
	expectEqual(t, peak, 64)
	// a Hann window halves the amplitude of a bin-centered sine
	expectNearlyEqual(t, result[64], 0.5)
	expectNearlyEqual(t, result[200], 0)
}

func TestGetFFT(t *testing.T) {
	audio := newAudio(nil, "", nil)
	for _, v := range audio.GetFFT() {
		expectEqual(t, v, 0.0)
	}
	expectNoError(t, audio.update([]string{"play"}))
	readCycles(t, audio, 2)
	sum := 0.0
	for _, v := range audio.GetFFT() {
		sum += v
	}
	if sum <= 0 {
		t.Errorf("expected a non-empty spectrum")
	}
}
