package sfxr

// ----- Generator ----- //

const superSamples = 8

// generator holds the run-time state derived from a snapshot of Params and
// renders it sample by sample. One generator belongs to one rendering; it is
// never shared.
type generator struct {
	params *Params
	rng    *random

	masterVolume float64
	minFrequency float64

	period       float64
	maxPeriod    float64
	slide        float64
	deltaSlide   float64
	changeAmount float64
	changeTime   int
	changeLimit  int
	repeatTime   int
	repeatLimit  int

	osc    osc
	env    envelope
	vib    vibrato
	filter filter
	phaser phaser

	pos      int
	length   int
	finished bool
}

func newGenerator(p *Params, rng *random) *generator {
	g := &generator{params: p.Clone(), rng: rng}
	g.reset(true)
	return g
}

// reset recomputes the state from the snapshot. A partial reset, used by the
// repeat effect, only restarts pitch, duty and the note change.
func (g *generator) reset(total bool) {
	p := g.params
	v := &p.values

	g.osc.kind = p.waveType
	g.period = 100.0 / (v[StartFrequency]*v[StartFrequency] + 0.001)
	g.maxPeriod = 100.0 / (v[MinFrequency]*v[MinFrequency] + 0.001)
	g.slide = 1.0 - v[Slide]*v[Slide]*v[Slide]*0.01
	g.deltaSlide = -v[DeltaSlide] * v[DeltaSlide] * v[DeltaSlide] * 0.000001
	g.osc.initDuty(v[SquareDuty], v[DutySweep])

	if v[ChangeAmount] > 0 {
		g.changeAmount = 1.0 - v[ChangeAmount]*v[ChangeAmount]*0.9
	} else {
		g.changeAmount = 1.0 + v[ChangeAmount]*v[ChangeAmount]*10.0
	}
	g.changeTime = 0
	if v[ChangeSpeed] == 1.0 {
		g.changeLimit = 0
	} else {
		g.changeLimit = int((1-v[ChangeSpeed])*(1-v[ChangeSpeed])*20000 + 32)
	}

	if !total {
		return
	}

	g.masterVolume = v[MasterVolume] * v[MasterVolume]
	g.minFrequency = v[MinFrequency]
	g.osc.init(p.waveType, g.rng)
	g.env.init(v[AttackTime], v[SustainTime], v[DecayTime], v[SustainPunch])
	g.vib.init(v[VibratoDepth], v[VibratoSpeed])
	g.filter.init(p)
	g.phaser.init(v[PhaserOffset], v[PhaserSweep])

	g.repeatTime = 0
	if v[RepeatSpeed] == 0 {
		g.repeatLimit = 0
	} else {
		g.repeatLimit = int((1-v[RepeatSpeed])*(1-v[RepeatSpeed])*20000) + 32
	}

	g.pos = 0
	g.length = g.env.fullLength()
	g.finished = false
}

// generate writes successive samples into buf. It stops early when the sound
// ends and reports whether it has; asking for more than remains is fine.
func (g *generator) generate(buf []float32) (int, bool) {
	if g.finished {
		return 0, true
	}
	n := len(buf)
	if remaining := g.length - g.pos; n > remaining {
		n = remaining
	}
	for i := 0; i < n; i++ {
		buf[i] = float32(g.next())
		g.pos++
		if g.finished {
			return i + 1, true
		}
	}
	if g.pos >= g.length {
		g.finished = true
	}
	return n, g.finished
}

func (g *generator) next() float64 {
	if g.repeatLimit != 0 {
		g.repeatTime++
		if g.repeatTime >= g.repeatLimit {
			g.repeatTime = 0
			g.reset(false)
		}
	}

	if g.changeLimit != 0 {
		g.changeTime++
		if g.changeTime >= g.changeLimit {
			g.changeLimit = 0
			g.period *= g.changeAmount
		}
	}

	g.slide += g.deltaSlide
	g.period *= g.slide
	if g.period > g.maxPeriod {
		g.period = g.maxPeriod
		// the frequency floor ends the note regardless of the envelope
		if g.minFrequency > 0 {
			g.finished = true
		}
	}

	g.osc.setPeriod(g.vib.apply(g.period))
	g.osc.sweepDuty()

	if g.env.step() {
		g.finished = true
	}

	g.phaser.sweep()
	g.filter.sweep()

	superSample := 0.0
	for j := 0; j < superSamples; j++ {
		sample := g.osc.step(g.rng)
		sample = g.filter.process(sample)
		sample = g.phaser.process(sample)
		superSample += sample
	}

	superSample = g.masterVolume * g.env.value * superSample / superSamples
	return clamp(superSample, -1, 1)
}

// EnvelopeLength is the number of samples a sound described by p spans.
func EnvelopeLength(p *Params) int {
	lengths := envelopeLengths(p.values[AttackTime], p.values[SustainTime], p.values[DecayTime])
	return int(lengths[0] + lengths[1] + lengths[2])
}

// Render synthesizes p in one go, without touching any cache.
func Render(p *Params) *WaveBuffer {
	g := newGenerator(p, p.rng)
	w := newWaveBuffer(g.length, p.version)
	n, _ := g.generate(w.samples)
	w.produced = n
	return w
}
