package sfxr

import (
	"math"
	"testing"
)

func defaultSound() *Params {
	p := NewParamsWithSeed(1)
	p.ResetToDefaults()
	return p
}

func TestEnvelopeLength(t *testing.T) {
	p := defaultSound()
	expectEqual(t, EnvelopeLength(p), 25010)
	w := Render(p)
	expectEqual(t, w.Len(), 25010)
	expectEqual(t, w.Produced(), 25010)
	expectEqual(t, w.Version(), p.Version())
}

func TestDecayEndsNearSilence(t *testing.T) {
	w := Render(defaultSound())
	samples := w.Samples()
	peak := 0.0
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	if peak < 0.05 {
		t.Errorf("sound is too quiet: %v", peak)
	}
	for _, s := range samples[len(samples)-10:] {
		if math.Abs(float64(s)) > 0.001 {
			t.Errorf("expected the tail to be near 0, but got: %v", s)
		}
	}
}

func TestEnvelopeFloorsLeaveParamsAlone(t *testing.T) {
	p := NewParamsWithSeed(1)
	p.Set(LPFilterCutoff, 1)
	length := EnvelopeLength(p)
	if length < 3249 || length > 3250 {
		t.Errorf("expected about 3250 samples, but got: %v", length)
	}
	Render(p)
	expectEqual(t, p.Get(SustainTime), 0.0)
	expectEqual(t, p.Get(AttackTime), 0.0)
	expectEqual(t, p.Get(DecayTime), 0.0)
}

func TestMinFrequencyStopsEarly(t *testing.T) {
	p := defaultSound()
	p.Set(MinFrequency, 0.2)
	p.Set(Slide, -1)

	// the period grows by the slide factor every sample
	period := 100.0 / (0.3*0.3 + 0.001)
	maxPeriod := 100.0 / (0.2*0.2 + 0.001)
	slide := 1.0 - (-1.0)*(-1.0)*(-1.0)*0.01
	expected := 0
	for period <= maxPeriod {
		period *= slide
		expected++
	}

	g := newGenerator(p, p.rng)
	buf := make([]float32, 100000)
	n, finished := g.generate(buf)
	expectEqual(t, finished, true)
	expectEqual(t, n, expected)
	if n >= g.length {
		t.Errorf("expected to stop before %v, but got: %v", g.length, n)
	}

	w := Render(p)
	expectEqual(t, w.Produced(), expected)
	expectEqual(t, w.Len(), EnvelopeLength(p))
}

func TestOverRequest(t *testing.T) {
	p := defaultSound()
	g := newGenerator(p, p.rng)
	buf := make([]float32, 20000)
	n, finished := g.generate(buf)
	expectEqual(t, n, 20000)
	expectEqual(t, finished, false)
	n, finished = g.generate(buf)
	expectEqual(t, n, 5010)
	expectEqual(t, finished, true)
	n, finished = g.generate(buf)
	expectEqual(t, n, 0)
	expectEqual(t, finished, true)
}

func TestChunkedMatchesWhole(t *testing.T) {
	p := NewParamsWithSeed(11)
	p.GeneratePowerup()
	p.SetWaveType(Sawtooth)
	whole := Render(p).Samples()

	g := newGenerator(p, p.rng)
	chunked := make([]float32, 0, len(whole))
	buf := make([]float32, 333)
	for {
		n, finished := g.generate(buf)
		chunked = append(chunked, buf[:n]...)
		if finished {
			break
		}
	}
	expectEqual(t, len(chunked), len(whole))
	for i := range chunked {
		if chunked[i] != whole[i] {
			t.Fatalf("sample %d: expected %v, but got: %v", i, whole[i], chunked[i])
		}
	}
}

func TestRenderIsRepeatable(t *testing.T) {
	for _, preset := range []Preset{PresetPickupCoin, PresetJump, PresetBlipSelect} {
		p := NewParamsWithSeed(21)
		p.Generate(preset)
		if p.WaveType() == Noise {
			continue
		}
		a := Render(p).Samples()
		b := Render(p).Samples()
		expectEqual(t, len(a), len(b))
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%s sample %d differs", preset, i)
			}
		}
	}
}

func TestNoiseIsSeeded(t *testing.T) {
	a := NewParamsWithSeed(8)
	a.GenerateExplosion()
	b := NewParamsWithSeed(8)
	b.GenerateExplosion()
	wa := Render(a).Samples()
	wb := Render(b).Samples()
	expectEqual(t, len(wa), len(wb))
	for i := range wa {
		if wa[i] != wb[i] {
			t.Fatalf("sample %d differs", i)
		}
	}
}

func TestOutputIsClamped(t *testing.T) {
	p := NewParamsWithSeed(4)
	for i := 0; i < 30; i++ {
		p.Randomize()
		p.Set(MasterVolume, 1)
		for _, s := range Render(p).Samples() {
			if s < -1 || s > 1 || math.IsNaN(float64(s)) {
				t.Fatalf("sample out of range: %v", s)
			}
		}
	}
}

func TestFastSin(t *testing.T) {
	expectNearlyEqual(t, fastSin(0), 0)
	expectNearlyEqual(t, fastSin(0.25), 1)
	expectNearlyEqual(t, fastSin(0.5), 0)
	expectNearlyEqual(t, fastSin(0.75), -1)
	for i := 0; i < 100; i++ {
		pos := float64(i) / 100
		if d := math.Abs(fastSin(pos) - math.Sin(2*math.Pi*pos)); d > 0.01 {
			t.Errorf("fastSin(%v) is off by %v", pos, d)
		}
	}
}

func TestEnvelopeStages(t *testing.T) {
	var e envelope
	e.init(0.1, 0.1, 0.1, 0.5)
	expectNearlyEqual(t, e.lengths[0], 1000)
	expectNearlyEqual(t, e.lengths[1], 1000)
	expectNearlyEqual(t, e.lengths[2], 1010)
	peak := 0.0
	steps := 0
	for !e.step() {
		peak = math.Max(peak, e.value)
		steps++
	}
	expectEqual(t, e.value, 0.0)
	expectNearlyEqual(t, peak, 2)
	if steps < e.fullLength() {
		t.Errorf("expected at least %v steps, but got: %v", e.fullLength(), steps)
	}
}

func TestPassThroughWhenDisabled(t *testing.T) {
	p := NewParams()
	p.Set(LPFilterCutoff, 1)
	var f filter
	f.init(p)
	expectEqual(t, f.enabled, false)
	expectEqual(t, f.process(0.3), 0.3)

	var ph phaser
	ph.init(0, 0)
	expectEqual(t, ph.enabled, false)
	expectEqual(t, ph.process(0.3), 0.3)

	var v vibrato
	v.init(0, 0.5)
	expectEqual(t, v.apply(100), 100.0)
}

func TestOscFloorsPeriod(t *testing.T) {
	var o osc
	o.init(Sawtooth, newRandom(1))
	o.setPeriod(3.5)
	expectEqual(t, o.periodInt, minPeriod)
	expectEqual(t, o.period, float64(minPeriod))
	o.setPeriod(20.5)
	expectEqual(t, o.periodInt, 20)
}
