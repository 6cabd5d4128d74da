package audio

import (
	"fmt"
	"strconv"
)

// ----- Delay ----- //

type delay struct {
	cursor int
	past   []float64
}

func (d *delay) setLength(millis float64) {
	if millis < 10 {
		millis = 10
	}
	length := int(sampleRate * millis / 1000)
	if cap(d.past) >= length {
		d.past = d.past[0:length]
	} else {
		d.past = make([]float64, length)
	}
	if d.cursor >= len(d.past) {
		d.cursor = 0
	}
}

func (d *delay) step(in float64) {
	d.past[d.cursor] = in
	d.cursor++
	if d.cursor >= len(d.past) {
		d.cursor = 0
	}
}

func (d *delay) getDelayed() float64 {
	return d.past[d.cursor]
}

// ----- Echo ----- //

// echo is a feedback delay on the master bus, off by default.
type echo struct {
	enabled      bool
	delayMillis  float64
	feedbackGain float64 // [0,1)
	mix          float64 // [0,1]
	delay        delay
}

func newEcho() *echo {
	e := &echo{delayMillis: 200, feedbackGain: 0.3, mix: 0.3}
	e.delay.setLength(e.delayMillis)
	return e
}

func (e *echo) set(key string, value string) error {
	switch key {
	case "enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		e.enabled = enabled
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("echo %s: %w", key, err)
	}
	switch key {
	case "delay":
		e.delayMillis = v
		e.delay.setLength(v)
	case "feedbackGain":
		if v < 0 {
			v = 0
		} else if v > 0.95 {
			v = 0.95
		}
		e.feedbackGain = v
	case "mix":
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		e.mix = v
	default:
		return fmt.Errorf("unknown echo parameter %q", key)
	}
	return nil
}

func (e *echo) process(buf []float64) {
	if !e.enabled {
		return
	}
	for i, in := range buf {
		delayed := e.delay.getDelayed()
		e.delay.step(in + delayed*e.feedbackGain)
		buf[i] = in + delayed*e.mix
	}
}
