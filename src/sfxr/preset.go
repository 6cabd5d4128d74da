package sfxr

import (
	"fmt"
	"strings"
)

// ----- Preset ----- //

// Preset names one of the built-in sound generators.
type Preset int

const (
	PresetPickupCoin Preset = iota
	PresetLaserShoot
	PresetExplosion
	PresetPowerup
	PresetHitHurt
	PresetJump
	PresetBlipSelect
	presetCount
)

var presetNames = [presetCount]string{
	"pickupCoin",
	"laserShoot",
	"explosion",
	"powerup",
	"hitHurt",
	"jump",
	"blipSelect",
}

func (p Preset) String() string {
	if p < 0 || p >= presetCount {
		return "unknown"
	}
	return presetNames[p]
}

// Presets lists every built-in preset.
func Presets() []Preset {
	presets := make([]Preset, presetCount)
	for i := range presets {
		presets[i] = Preset(i)
	}
	return presets
}

// PresetFromString also accepts the short aliases coin, laser, shoot, hit,
// hurt, blip and select.
func PresetFromString(s string) (Preset, error) {
	switch strings.ToLower(s) {
	case "pickupcoin", "pickup", "coin":
		return PresetPickupCoin, nil
	case "lasershoot", "laser", "shoot":
		return PresetLaserShoot, nil
	case "explosion":
		return PresetExplosion, nil
	case "powerup":
		return PresetPowerup, nil
	case "hithurt", "hit", "hurt":
		return PresetHitHurt, nil
	case "jump":
		return PresetJump, nil
	case "blipselect", "blip", "select":
		return PresetBlipSelect, nil
	}
	return 0, fmt.Errorf("unknown preset %q", s)
}

// Generate dispatches to the matching GenerateXxx method.
func (p *Params) Generate(preset Preset) {
	switch preset {
	case PresetPickupCoin:
		p.GeneratePickupCoin()
	case PresetLaserShoot:
		p.GenerateLaserShoot()
	case PresetExplosion:
		p.GenerateExplosion()
	case PresetPowerup:
		p.GeneratePowerup()
	case PresetHitHurt:
		p.GenerateHitHurt()
	case PresetJump:
		p.GenerateJump()
	case PresetBlipSelect:
		p.GenerateBlipSelect()
	}
}

// ResetToDefaults sets the baseline every preset starts from: a square wave at
// startFrequency 0.3 with sustain 0.3, decay 0.4 and the low-pass filter open.
// Master volume is kept.
func (p *Params) ResetToDefaults() {
	volume := p.values[MasterVolume]
	p.values = [paramCount]float64{}
	p.values[MasterVolume] = volume
	p.waveType = Square
	p.values[StartFrequency] = 0.3
	p.values[SustainTime] = 0.3
	p.values[DecayTime] = 0.4
	p.values[LPFilterCutoff] = 1.0
	p.touch()
}

func (p *Params) randomWave(n float64) WaveType {
	return WaveType(int(p.rng.float() * n))
}

// GeneratePickupCoin ...
func (p *Params) GeneratePickupCoin() {
	r := p.rng.float
	p.ResetToDefaults()
	p.Set(StartFrequency, 0.4+r()*0.5)
	p.Set(SustainTime, r()*0.1)
	p.Set(DecayTime, 0.1+r()*0.4)
	p.Set(SustainPunch, 0.3+r()*0.3)
	if r() < 0.5 {
		p.Set(ChangeSpeed, 0.5+r()*0.2)
		p.Set(ChangeAmount, 0.2+r()*0.4)
	}
}

// GenerateLaserShoot ...
func (p *Params) GenerateLaserShoot() {
	r := p.rng.float
	p.ResetToDefaults()
	p.SetWaveType(p.randomWave(3))
	if p.waveType == Sine && r() < 0.5 {
		p.SetWaveType(p.randomWave(2))
	}
	p.Set(StartFrequency, 0.5+r()*0.5)
	p.Set(MinFrequency, p.values[StartFrequency]-0.2-r()*0.6)
	if p.values[MinFrequency] < 0.2 {
		p.Set(MinFrequency, 0.2)
	}
	p.Set(Slide, -0.15-r()*0.2)
	if r() < 0.33 {
		p.Set(StartFrequency, 0.3+r()*0.6)
		p.Set(MinFrequency, r()*0.1)
		p.Set(Slide, -0.35-r()*0.3)
	}
	if r() < 0.5 {
		p.Set(SquareDuty, r()*0.5)
		p.Set(DutySweep, r()*0.2)
	} else {
		p.Set(SquareDuty, 0.4+r()*0.5)
		p.Set(DutySweep, -r()*0.7)
	}
	p.Set(SustainTime, 0.1+r()*0.2)
	p.Set(DecayTime, r()*0.4)
	if r() < 0.5 {
		p.Set(SustainPunch, r()*0.3)
	}
	if r() < 0.33 {
		p.Set(PhaserOffset, r()*0.2)
		p.Set(PhaserSweep, -r()*0.2)
	}
	if r() < 0.5 {
		p.Set(HPFilterCutoff, r()*0.3)
	}
}

// GenerateExplosion always uses noise; the start frequency is squared after
// being drawn so explosions sit low.
func (p *Params) GenerateExplosion() {
	r := p.rng.float
	p.ResetToDefaults()
	p.SetWaveType(Noise)
	if r() < 0.5 {
		p.Set(StartFrequency, 0.1+r()*0.4)
		p.Set(Slide, -0.1+r()*0.4)
	} else {
		p.Set(StartFrequency, 0.2+r()*0.7)
		p.Set(Slide, -0.2-r()*0.2)
	}
	p.Set(StartFrequency, p.values[StartFrequency]*p.values[StartFrequency])
	if r() < 0.2 {
		p.Set(Slide, 0)
	}
	if r() < 0.33 {
		p.Set(RepeatSpeed, 0.3+r()*0.5)
	}
	p.Set(SustainTime, 0.1+r()*0.3)
	p.Set(DecayTime, r()*0.5)
	p.Set(SustainPunch, 0.2+r()*0.6)
	if r() < 0.5 {
		p.Set(PhaserOffset, -0.3+r()*0.9)
		p.Set(PhaserSweep, -r()*0.3)
	}
	if r() < 0.33 {
		p.Set(ChangeSpeed, 0.6+r()*0.3)
		p.Set(ChangeAmount, 0.8-r()*1.6)
	}
}

// GeneratePowerup ...
func (p *Params) GeneratePowerup() {
	r := p.rng.float
	p.ResetToDefaults()
	if r() < 0.5 {
		p.SetWaveType(Sawtooth)
	} else {
		p.Set(SquareDuty, r()*0.6)
	}
	if r() < 0.5 {
		p.Set(StartFrequency, 0.2+r()*0.3)
		p.Set(Slide, 0.1+r()*0.4)
		p.Set(RepeatSpeed, 0.4+r()*0.4)
	} else {
		p.Set(StartFrequency, 0.2+r()*0.3)
		p.Set(Slide, 0.05+r()*0.2)
		if r() < 0.5 {
			p.Set(VibratoDepth, r()*0.7)
			p.Set(VibratoSpeed, r()*0.6)
		}
	}
	p.Set(SustainTime, r()*0.4)
	p.Set(DecayTime, 0.1+r()*0.4)
}

// GenerateHitHurt ...
func (p *Params) GenerateHitHurt() {
	r := p.rng.float
	p.ResetToDefaults()
	p.SetWaveType(p.randomWave(3))
	if p.waveType == Sine {
		p.SetWaveType(Noise)
	} else if p.waveType == Square {
		p.Set(SquareDuty, r()*0.6)
	}
	p.Set(StartFrequency, 0.2+r()*0.6)
	p.Set(Slide, -0.3-r()*0.4)
	p.Set(SustainTime, r()*0.1)
	p.Set(DecayTime, 0.1+r()*0.2)
	if r() < 0.5 {
		p.Set(HPFilterCutoff, r()*0.3)
	}
}

// GenerateJump ...
func (p *Params) GenerateJump() {
	r := p.rng.float
	p.ResetToDefaults()
	p.SetWaveType(Square)
	p.Set(SquareDuty, r()*0.6)
	p.Set(StartFrequency, 0.3+r()*0.3)
	p.Set(Slide, 0.1+r()*0.2)
	p.Set(SustainTime, 0.1+r()*0.3)
	p.Set(DecayTime, 0.1+r()*0.2)
	if r() < 0.5 {
		p.Set(HPFilterCutoff, r()*0.3)
	}
	if r() < 0.5 {
		p.Set(LPFilterCutoff, 1.0-r()*0.6)
	}
}

// GenerateBlipSelect ...
func (p *Params) GenerateBlipSelect() {
	r := p.rng.float
	p.ResetToDefaults()
	p.SetWaveType(p.randomWave(2))
	if p.waveType == Square {
		p.Set(SquareDuty, r()*0.6)
	}
	p.Set(StartFrequency, 0.2+r()*0.4)
	p.Set(SustainTime, 0.1+r()*0.1)
	p.Set(DecayTime, r()*0.2)
	p.Set(HPFilterCutoff, 0.1)
}

// ----- Randomize / Mutate ----- //

// Randomize draws every field except the master volume independently, then
// nudges combinations that would likely come out silent.
func (p *Params) Randomize() {
	r := p.rng.float
	p.SetWaveType(p.randomWave(4))
	p.Set(AttackTime, pow(r()*2-1, 4))
	p.Set(SustainTime, pow(r()*2-1, 2))
	p.Set(SustainPunch, pow(r()*0.8, 2))
	p.Set(DecayTime, r())
	if r() < 0.5 {
		p.Set(StartFrequency, pow(r()*2-1, 2))
	} else {
		p.Set(StartFrequency, pow(r()*0.5, 3)+0.5)
	}
	p.Set(MinFrequency, 0)
	p.Set(Slide, pow(r()*2-1, 5))
	p.Set(DeltaSlide, pow(r()*2-1, 3))
	p.Set(VibratoDepth, pow(r()*2-1, 3))
	p.Set(VibratoSpeed, r()*2-1)
	p.Set(ChangeAmount, r()*2-1)
	p.Set(ChangeSpeed, r()*2-1)
	p.Set(SquareDuty, r()*2-1)
	p.Set(DutySweep, pow(r()*2-1, 3))
	p.Set(RepeatSpeed, r()*2-1)
	p.Set(PhaserOffset, pow(r()*2-1, 3))
	p.Set(PhaserSweep, pow(r()*2-1, 3))
	p.Set(LPFilterCutoff, 1-pow(r(), 3))
	p.Set(LPFilterCutoffSweep, pow(r()*2-1, 3))
	p.Set(LPFilterResonance, r()*2-1)
	p.Set(HPFilterCutoff, pow(r(), 5))
	p.Set(HPFilterCutoffSweep, pow(r()*2-1, 5))

	v := &p.values
	if v[AttackTime]+v[SustainTime]+v[DecayTime] < 0.2 {
		p.Set(SustainTime, 0.2+r()*0.3)
		p.Set(DecayTime, 0.2+r()*0.3)
	}
	if (v[StartFrequency] > 0.7 && v[Slide] > 0.2) || (v[StartFrequency] < 0.2 && v[Slide] < -0.05) {
		p.Set(Slide, -v[Slide])
	}
	if v[LPFilterCutoff] < 0.1 && v[LPFilterCutoffSweep] < -0.05 {
		p.Set(LPFilterCutoffSweep, -v[LPFilterCutoffSweep])
	}
}

// DefaultMutationAmount is the mutation amount used when none is given.
const DefaultMutationAmount = 0.05

// Mutate flips a fair coin for each tunable field and, on heads, adds a
// uniform offset in [-amount, amount]. Wave type and master volume are never
// mutated.
func (p *Params) Mutate(amount float64) {
	r := p.rng.float
	for _, key := range mutableParams {
		if r() < 0.5 {
			p.Set(key, p.values[key]+r()*amount*2-amount)
		}
	}
}
