package sfxr

// ----- OSC ----- //

const (
	noiseBufferSize = 32
	minPeriod       = 8
)

type osc struct {
	kind       WaveType
	phase      int
	period     float64 // vibrato-adjusted period
	periodInt  int
	squareDuty float64
	dutySweep  float64
	noise      [noiseBufferSize]float64
}

func (o *osc) init(kind WaveType, rng *random) {
	o.kind = kind
	o.phase = 0
	o.fillNoise(rng)
}

func (o *osc) fillNoise(rng *random) {
	for i := range o.noise {
		o.noise[i] = rng.float()*2 - 1
	}
}

func (o *osc) initDuty(squareDuty, dutySweep float64) {
	if o.kind != Square {
		return
	}
	o.squareDuty = 0.5 - squareDuty*0.5
	o.dutySweep = -dutySweep * 0.00005
}

func (o *osc) setPeriod(period float64) {
	o.period = period
	o.periodInt = int(period)
	if o.periodInt < minPeriod {
		o.period = minPeriod
		o.periodInt = minPeriod
	}
}

func (o *osc) sweepDuty() {
	if o.kind != Square {
		return
	}
	o.squareDuty += o.dutySweep
	if o.squareDuty < 0 {
		o.squareDuty = 0
	} else if o.squareDuty > 0.5 {
		o.squareDuty = 0.5
	}
}

// step advances one sub-sample.
func (o *osc) step(rng *random) float64 {
	o.phase++
	if o.phase >= o.periodInt {
		o.phase = o.phase % o.periodInt
		if o.kind == Noise {
			o.fillNoise(rng)
		}
	}
	pos := float64(o.phase) / o.period
	switch o.kind {
	case Square:
		if pos < o.squareDuty {
			return 0.5
		}
		return -0.5
	case Sawtooth:
		return 1 - pos*2
	case Sine:
		return fastSin(pos)
	case Noise:
		return o.noise[o.phase*noiseBufferSize/o.periodInt]
	}
	return 0
}

// fastSin approximates sin(2*pi*pos) for pos in [0,1) with a parabola plus a
// second-order correction. The slight error is part of the sound.
func fastSin(pos float64) float64 {
	if pos > 0.5 {
		pos = (pos - 1) * 6.28318531
	} else {
		pos = pos * 6.28318531
	}
	var v float64
	if pos < 0 {
		v = 1.27323954*pos + 0.405284735*pos*pos
	} else {
		v = 1.27323954*pos - 0.405284735*pos*pos
	}
	if v < 0 {
		return 0.225*(v*-v-v) + v
	}
	return 0.225*(v*v-v) + v
}
