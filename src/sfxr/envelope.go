package sfxr

// ----- Envelope ----- //

const (
	stageAttack = iota
	stageSustain
	stageDecay
	stageFinished
)

// lengths are in samples
const (
	envelopeScale    = 100000.0
	decayLengthFloor = 10.0
	minSustainTime   = 0.01
	minEnvelopeTime  = 0.18
)

/*
  1+2p +    x
       |   /|`-._
     1 +  / |    `x
       | /  |      `-._
     0 +/---+-----+----`x--
       | a  |  s  |  d  |
*/
type envelope struct {
	stage       int
	time        float64
	length      float64
	lengths     [3]float64
	overLengths [3]float64
	punch       float64
	value       float64
}

// envelopeTimes applies the floors a total reset enforces: sustain at least
// 0.01 and the three times together at least 0.18, scaled up proportionally.
func envelopeTimes(attack, sustain, decay float64) (float64, float64, float64) {
	if sustain < minSustainTime {
		sustain = minSustainTime
	}
	total := attack + sustain + decay
	if total < minEnvelopeTime {
		multiplier := minEnvelopeTime / total
		attack *= multiplier
		sustain *= multiplier
		decay *= multiplier
	}
	return attack, sustain, decay
}

func envelopeLengths(attack, sustain, decay float64) [3]float64 {
	attack, sustain, decay = envelopeTimes(attack, sustain, decay)
	return [3]float64{
		attack * attack * envelopeScale,
		sustain * sustain * envelopeScale,
		decay*decay*envelopeScale + decayLengthFloor,
	}
}

func (e *envelope) init(attack, sustain, decay, punch float64) {
	e.lengths = envelopeLengths(attack, sustain, decay)
	for i, l := range e.lengths {
		e.overLengths[i] = 1 / l
	}
	e.stage = stageAttack
	e.time = 0
	e.length = e.lengths[stageAttack]
	e.punch = punch
	e.value = 0
}

func (e *envelope) fullLength() int {
	return int(e.lengths[0] + e.lengths[1] + e.lengths[2])
}

// step returns true once the envelope has run past decay.
func (e *envelope) step() bool {
	e.time++
	if e.time > e.length {
		e.time = 0
		e.stage++
		if e.stage < stageFinished {
			e.length = e.lengths[e.stage]
		}
	}
	switch e.stage {
	case stageAttack:
		e.value = e.time * e.overLengths[stageAttack]
	case stageSustain:
		e.value = 1 + (1-e.time*e.overLengths[stageSustain])*2*e.punch
	case stageDecay:
		e.value = 1 - e.time*e.overLengths[stageDecay]
	default:
		e.value = 0
		return true
	}
	return false
}
