package sfxr

import "math"

// ----- Vibrato ----- //

type vibrato struct {
	phase     float64
	speed     float64
	amplitude float64
}

func (v *vibrato) init(depth, speed float64) {
	v.phase = 0
	v.speed = speed * speed * 0.01
	v.amplitude = depth * 0.5
}

// apply advances the vibrato and returns the modulated period.
func (v *vibrato) apply(period float64) float64 {
	if v.amplitude <= 0 {
		return period
	}
	v.phase += v.speed
	return period * (1.0 + math.Sin(v.phase)*v.amplitude)
}
