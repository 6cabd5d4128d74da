package sfxr

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// ----- Wave Type ----- //

// WaveType is the oscillator shape.
type WaveType int

const (
	Square WaveType = iota
	Sawtooth
	Sine
	Noise
)

var waveTypeNames = []string{"square", "sawtooth", "sine", "noise"}

func (w WaveType) String() string {
	if w < Square || w > Noise {
		return waveTypeNames[Square]
	}
	return waveTypeNames[w]
}

// WaveTypeFromString accepts a name or the settings-string integer.
func WaveTypeFromString(s string) (WaveType, error) {
	for i, name := range waveTypeNames {
		if strings.EqualFold(s, name) {
			return WaveType(i), nil
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return Square, fmt.Errorf("invalid wave type %q", s)
	}
	return normalizeWaveType(v), nil
}

func normalizeWaveType(v int) WaveType {
	if v < int(Square) || v > int(Noise) {
		return Square
	}
	return WaveType(v)
}

// ----- Param ----- //

// Param identifies one of the 23 numeric fields, in settings-string order.
type Param int

const (
	AttackTime Param = iota
	SustainTime
	SustainPunch
	DecayTime
	StartFrequency
	MinFrequency
	Slide
	DeltaSlide
	VibratoDepth
	VibratoSpeed
	ChangeAmount
	ChangeSpeed
	SquareDuty
	DutySweep
	RepeatSpeed
	PhaserOffset
	PhaserSweep
	LPFilterCutoff
	LPFilterCutoffSweep
	LPFilterResonance
	HPFilterCutoff
	HPFilterCutoffSweep
	MasterVolume
	paramCount
)

var paramNames = [paramCount]string{
	"attackTime",
	"sustainTime",
	"sustainPunch",
	"decayTime",
	"startFrequency",
	"minFrequency",
	"slide",
	"deltaSlide",
	"vibratoDepth",
	"vibratoSpeed",
	"changeAmount",
	"changeSpeed",
	"squareDuty",
	"dutySweep",
	"repeatSpeed",
	"phaserOffset",
	"phaserSweep",
	"lpFilterCutoff",
	"lpFilterCutoffSweep",
	"lpFilterResonance",
	"hpFilterCutoff",
	"hpFilterCutoffSweep",
	"masterVolume",
}

// bipolar fields clamp to [-1,1], the rest to [0,1]
var paramBipolar = [paramCount]bool{
	Slide:               true,
	DeltaSlide:          true,
	ChangeAmount:        true,
	DutySweep:           true,
	PhaserOffset:        true,
	PhaserSweep:         true,
	LPFilterCutoffSweep: true,
	HPFilterCutoffSweep: true,
}

// fields touched by Mutate, in draw order
var mutableParams = []Param{
	StartFrequency,
	MinFrequency,
	Slide,
	DeltaSlide,
	SquareDuty,
	DutySweep,
	VibratoDepth,
	VibratoSpeed,
	AttackTime,
	SustainTime,
	DecayTime,
	SustainPunch,
	LPFilterCutoff,
	LPFilterCutoffSweep,
	LPFilterResonance,
	HPFilterCutoff,
	HPFilterCutoffSweep,
	PhaserOffset,
	PhaserSweep,
	RepeatSpeed,
	ChangeSpeed,
	ChangeAmount,
}

func (p Param) String() string {
	if p < 0 || p >= paramCount {
		return "unknown"
	}
	return paramNames[p]
}

// Bipolar reports whether the field ranges over [-1,1].
func (p Param) Bipolar() bool {
	return paramBipolar[p]
}

// ParamFromString looks a field up by its settings name (case-insensitive).
func ParamFromString(s string) (Param, bool) {
	for i, name := range paramNames {
		if strings.EqualFold(s, name) {
			return Param(i), true
		}
	}
	return 0, false
}

// Names returns the settings-string field names in order, wave type first.
func Names() []string {
	names := make([]string, 0, paramCount+1)
	names = append(names, "waveType")
	return append(names, paramNames[:]...)
}

// parseValue rejects NaN and infinities, which no field can hold.
func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// ----- Params ----- //

const settingsFieldNum = int(paramCount) + 1

// silentSettings parses to a zero-volume sound.
var silentSettings = strings.Repeat(",", settingsFieldNum-1)

var versionCounter uint64

func nextVersion() uint64 {
	return atomic.AddUint64(&versionCounter, 1)
}

// Params is the full description of one sound. Every setter clamps its value
// and stamps the set with a fresh version, which invalidates anything cached
// from an earlier version. Params is not safe for concurrent use; Synth.Edit
// serializes edits against playback.
type Params struct {
	waveType WaveType
	values   [paramCount]float64
	version  uint64
	rng      *random
}

// NewParams returns a square wave with half master volume and every other
// field at zero.
func NewParams() *Params {
	return newParamsWithRandom(newTimeSeededRandom())
}

// NewParamsWithSeed makes presets, Randomize and Mutate reproducible.
func NewParamsWithSeed(seed int64) *Params {
	return newParamsWithRandom(newRandom(seed))
}

func newParamsWithRandom(rng *random) *Params {
	p := &Params{rng: rng}
	p.values[MasterVolume] = 0.5
	p.version = nextVersion()
	return p
}

func (p *Params) touch() {
	p.version = nextVersion()
}

// Version changes on every mutation.
func (p *Params) Version() uint64 {
	return p.version
}

// WaveType ...
func (p *Params) WaveType() WaveType {
	return p.waveType
}

// SetWaveType normalizes out-of-range values to Square.
func (p *Params) SetWaveType(w WaveType) {
	p.waveType = normalizeWaveType(int(w))
	p.touch()
}

// Get ...
func (p *Params) Get(key Param) float64 {
	return p.values[key]
}

// Set clamps value to the field's range.
func (p *Params) Set(key Param, value float64) {
	if paramBipolar[key] {
		p.values[key] = clamp(value, -1, 1)
	} else {
		p.values[key] = clamp(value, 0, 1)
	}
	p.touch()
}

// SetByName sets a field from its textual form, as received over IPC.
func (p *Params) SetByName(key string, value string) error {
	if strings.EqualFold(key, "waveType") {
		w, err := WaveTypeFromString(value)
		if err != nil {
			return err
		}
		p.SetWaveType(w)
		return nil
	}
	param, ok := ParamFromString(key)
	if !ok {
		return fmt.Errorf("unknown parameter %q", key)
	}
	v, err := parseValue(value)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", key, err)
	}
	p.Set(param, v)
	return nil
}

// Clone copies values and version; the RNG is shared.
func (p *Params) Clone() *Params {
	c := &Params{rng: p.rng}
	c.restore(p)
	return c
}

// CopyFrom copies all values and marks the set dirty.
func (p *Params) CopyFrom(other *Params) {
	p.waveType = other.waveType
	p.values = other.values
	p.touch()
}

// restore brings back a saved set, version included, so caches built from it
// are valid again.
func (p *Params) restore(saved *Params) {
	p.waveType = saved.waveType
	p.values = saved.values
	p.version = saved.version
}

// Equal compares values only.
func (p *Params) Equal(other *Params) bool {
	return p.waveType == other.waveType && p.values == other.values
}

// ----- Settings String ----- //

// SettingsString serializes to the 24-field comma-separated form. Values are
// written with up to 4 decimals and near-zero values as an empty field.
func (p *Params) SettingsString() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(p.waveType)))
	for _, v := range p.values {
		b.WriteByte(',')
		b.WriteString(to4DP(v))
	}
	return b.String()
}

func to4DP(v float64) string {
	if v < 0.0001 && v > -0.0001 {
		return ""
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return ""
	}
	return s
}

// SetSettingsString parses s into p. It returns false, leaving p untouched,
// when s does not have exactly 24 fields; a field that is not a number is an
// error and also leaves p untouched.
func (p *Params) SetSettingsString(s string) (bool, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	if len(fields) != settingsFieldNum {
		return false, nil
	}
	waveType := Square
	if f := strings.TrimSpace(fields[0]); f != "" {
		v, err := strconv.Atoi(f)
		if err != nil {
			return false, fmt.Errorf("waveType: %w", err)
		}
		waveType = normalizeWaveType(v)
	}
	var values [paramCount]float64
	for i, f := range fields[1:] {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := parseValue(f)
		if err != nil {
			return false, fmt.Errorf("%s: %w", paramNames[i], err)
		}
		values[i] = v
	}
	p.SetWaveType(waveType)
	for i, v := range values {
		p.Set(Param(i), v)
	}
	return true, nil
}

// ----- JSON ----- //

type paramsJSON struct {
	WaveType            string  `json:"waveType"`
	AttackTime          float64 `json:"attackTime"`
	SustainTime         float64 `json:"sustainTime"`
	SustainPunch        float64 `json:"sustainPunch"`
	DecayTime           float64 `json:"decayTime"`
	StartFrequency      float64 `json:"startFrequency"`
	MinFrequency        float64 `json:"minFrequency"`
	Slide               float64 `json:"slide"`
	DeltaSlide          float64 `json:"deltaSlide"`
	VibratoDepth        float64 `json:"vibratoDepth"`
	VibratoSpeed        float64 `json:"vibratoSpeed"`
	ChangeAmount        float64 `json:"changeAmount"`
	ChangeSpeed         float64 `json:"changeSpeed"`
	SquareDuty          float64 `json:"squareDuty"`
	DutySweep           float64 `json:"dutySweep"`
	RepeatSpeed         float64 `json:"repeatSpeed"`
	PhaserOffset        float64 `json:"phaserOffset"`
	PhaserSweep         float64 `json:"phaserSweep"`
	LPFilterCutoff      float64 `json:"lpFilterCutoff"`
	LPFilterCutoffSweep float64 `json:"lpFilterCutoffSweep"`
	LPFilterResonance   float64 `json:"lpFilterResonance"`
	HPFilterCutoff      float64 `json:"hpFilterCutoff"`
	HPFilterCutoffSweep float64 `json:"hpFilterCutoffSweep"`
	MasterVolume        float64 `json:"masterVolume"`
}

// ApplyJSON ...
func (p *Params) ApplyJSON(data []byte) error {
	var j paramsJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("failed to apply JSON to params: %w", err)
	}
	w, err := WaveTypeFromString(j.WaveType)
	if err != nil {
		return err
	}
	p.SetWaveType(w)
	p.Set(AttackTime, j.AttackTime)
	p.Set(SustainTime, j.SustainTime)
	p.Set(SustainPunch, j.SustainPunch)
	p.Set(DecayTime, j.DecayTime)
	p.Set(StartFrequency, j.StartFrequency)
	p.Set(MinFrequency, j.MinFrequency)
	p.Set(Slide, j.Slide)
	p.Set(DeltaSlide, j.DeltaSlide)
	p.Set(VibratoDepth, j.VibratoDepth)
	p.Set(VibratoSpeed, j.VibratoSpeed)
	p.Set(ChangeAmount, j.ChangeAmount)
	p.Set(ChangeSpeed, j.ChangeSpeed)
	p.Set(SquareDuty, j.SquareDuty)
	p.Set(DutySweep, j.DutySweep)
	p.Set(RepeatSpeed, j.RepeatSpeed)
	p.Set(PhaserOffset, j.PhaserOffset)
	p.Set(PhaserSweep, j.PhaserSweep)
	p.Set(LPFilterCutoff, j.LPFilterCutoff)
	p.Set(LPFilterCutoffSweep, j.LPFilterCutoffSweep)
	p.Set(LPFilterResonance, j.LPFilterResonance)
	p.Set(HPFilterCutoff, j.HPFilterCutoff)
	p.Set(HPFilterCutoffSweep, j.HPFilterCutoffSweep)
	p.Set(MasterVolume, j.MasterVolume)
	return nil
}

// ToJSON ...
func (p *Params) ToJSON() []byte {
	bytes, err := json.Marshal(&paramsJSON{
		WaveType:            p.waveType.String(),
		AttackTime:          p.values[AttackTime],
		SustainTime:         p.values[SustainTime],
		SustainPunch:        p.values[SustainPunch],
		DecayTime:           p.values[DecayTime],
		StartFrequency:      p.values[StartFrequency],
		MinFrequency:        p.values[MinFrequency],
		Slide:               p.values[Slide],
		DeltaSlide:          p.values[DeltaSlide],
		VibratoDepth:        p.values[VibratoDepth],
		VibratoSpeed:        p.values[VibratoSpeed],
		ChangeAmount:        p.values[ChangeAmount],
		ChangeSpeed:         p.values[ChangeSpeed],
		SquareDuty:          p.values[SquareDuty],
		DutySweep:           p.values[DutySweep],
		RepeatSpeed:         p.values[RepeatSpeed],
		PhaserOffset:        p.values[PhaserOffset],
		PhaserSweep:         p.values[PhaserSweep],
		LPFilterCutoff:      p.values[LPFilterCutoff],
		LPFilterCutoffSweep: p.values[LPFilterCutoffSweep],
		LPFilterResonance:   p.values[LPFilterResonance],
		HPFilterCutoff:      p.values[HPFilterCutoff],
		HPFilterCutoffSweep: p.values[HPFilterCutoffSweep],
		MasterVolume:        p.values[MasterVolume],
	})
	if err != nil {
		panic(err)
	}
	return bytes
}
