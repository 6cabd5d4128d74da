package sfxr

// ----- Filter ----- //

const (
	maxLPCutoff = 0.1
	minHPCutoff = 0.00001
	maxHPCutoff = 0.1
	maxDamping  = 0.8
)

// filter is a resonant one-pole low-pass feeding a one-pole high-pass.
type filter struct {
	enabled bool
	lpOn    bool

	lpPos         float64
	lpOldPos      float64
	lpDeltaPos    float64
	lpCutoff      float64
	lpDeltaCutoff float64
	lpDamping     float64

	hpPos         float64
	hpCutoff      float64
	hpDeltaCutoff float64
}

func (f *filter) init(p *Params) {
	lpCutoff := p.values[LPFilterCutoff]
	hpCutoff := p.values[HPFilterCutoff]
	resonance := p.values[LPFilterResonance]

	f.enabled = lpCutoff != 1.0 || hpCutoff != 0.0
	f.lpOn = lpCutoff != 1.0

	f.lpPos = 0
	f.lpOldPos = 0
	f.lpDeltaPos = 0
	f.lpCutoff = lpCutoff * lpCutoff * lpCutoff * 0.1
	f.lpDeltaCutoff = 1.0 + p.values[LPFilterCutoffSweep]*0.0001
	f.lpDamping = 5.0 / (1.0 + resonance*resonance*20.0) * (0.01 + f.lpCutoff)
	if f.lpDamping > maxDamping {
		f.lpDamping = maxDamping
	}
	f.lpDamping = 1.0 - f.lpDamping

	f.hpPos = 0
	f.hpCutoff = hpCutoff * hpCutoff * 0.1
	f.hpDeltaCutoff = 1.0 + p.values[HPFilterCutoffSweep]*0.0003
}

// sweep moves the high-pass cutoff once per output sample.
func (f *filter) sweep() {
	if !f.enabled || f.hpDeltaCutoff == 1.0 {
		return
	}
	f.hpCutoff *= f.hpDeltaCutoff
	if f.hpCutoff < minHPCutoff {
		f.hpCutoff = minHPCutoff
	} else if f.hpCutoff > maxHPCutoff {
		f.hpCutoff = maxHPCutoff
	}
}

// process runs once per sub-sample; the low-pass cutoff sweeps here.
func (f *filter) process(in float64) float64 {
	if !f.enabled {
		return in
	}
	f.lpOldPos = f.lpPos
	f.lpCutoff *= f.lpDeltaCutoff
	if f.lpCutoff < 0 {
		f.lpCutoff = 0
	} else if f.lpCutoff > maxLPCutoff {
		f.lpCutoff = maxLPCutoff
	}
	if f.lpOn {
		f.lpDeltaPos += (in - f.lpPos) * f.lpCutoff
		f.lpDeltaPos *= f.lpDamping
	} else {
		f.lpPos = in
		f.lpDeltaPos = 0
	}
	f.lpPos += f.lpDeltaPos

	f.hpPos += f.lpPos - f.lpOldPos
	f.hpPos *= 1.0 - f.hpCutoff
	return f.hpPos
}
