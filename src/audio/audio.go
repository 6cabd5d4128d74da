package audio

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/hajimehoshi/oto"
	"github.com/jinjor/desktop-sfxr/src/sfxr"
)

const (
	sampleRate      = 44100
	channelNum      = 2
	bitDepthInBytes = 2
	samplesPerCycle = 1024
	fftSize         = 2048 // multiple of samplesPerCycle
)
const bytesPerSample = bitDepthInBytes * channelNum
const bufferSizeInBytes = samplesPerCycle * bytesPerSample // should be >= 4096
const defaultMutationCount = 15

// ----- Changes ----- //

// Changes ...
type Changes struct {
	sync.Mutex
	dict map[string]struct{}
}

// Add ...
func (c *Changes) Add(key string) {
	c.Lock()
	c.dict[key] = struct{}{}
	c.Unlock()
}

// Has ...
func (c *Changes) Has(key string) bool {
	c.Lock()
	_, ok := c.dict[key]
	c.Unlock()
	return ok
}

// Delete ...
func (c *Changes) Delete(key string) {
	c.Lock()
	delete(c.dict, key)
	c.Unlock()
}

// ----- Mixer ----- //

// mixer sums every playing synth. It has its own lock so that a synth can be
// attached while the command state is held.
type mixer struct {
	sync.Mutex
	voices  []*sfxr.Synth
	scratch []float32
}

func (m *mixer) attach(s *sfxr.Synth) {
	m.Lock()
	defer m.Unlock()
	for _, v := range m.voices {
		if v == s {
			return
		}
	}
	m.voices = append(m.voices, s)
}

func (m *mixer) active() int {
	m.Lock()
	defer m.Unlock()
	return len(m.voices)
}

// mix sums every voice into out and drops the ones that ended.
func (m *mixer) mix(out []float64) {
	m.Lock()
	defer m.Unlock()
	for i := range out {
		out[i] = 0
	}
	if len(m.scratch) < len(out) {
		m.scratch = make([]float32, len(out))
	}
	scratch := m.scratch[:len(out)]
	remaining := m.voices[:0]
	for _, v := range m.voices {
		more := v.Fill(scratch, 1)
		for i, x := range scratch {
			out[i] += float64(x)
		}
		if more {
			remaining = append(remaining, v)
		}
	}
	for i := len(remaining); i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = remaining
}

// ----- State ----- //

type state struct {
	sync.Mutex
	synth          *sfxr.Synth
	container      *sfxr.Container
	soundsPath     string
	scheduler      *sfxr.Scheduler
	title          string
	mutationAmount float64
	mutationCount  int
}

func newState(container *sfxr.Container, soundsPath string, scheduler *sfxr.Scheduler) *state {
	synth := sfxr.NewSynth()
	synth.Edit((*sfxr.Params).ResetToDefaults)
	return &state{
		synth:          synth,
		container:      container,
		soundsPath:     soundsPath,
		scheduler:      scheduler,
		mutationAmount: sfxr.DefaultMutationAmount,
		mutationCount:  defaultMutationCount,
	}
}

// ----- Bus ----- //

// bus is the master output after mixing. Read only ever waits on this lock,
// never on command processing.
type bus struct {
	sync.Mutex
	echo *echo
	pos  int64
	out  []float64 // length: fftSize
}

func newBus() *bus {
	return &bus{
		echo: newEcho(),
		out:  make([]float64, fftSize),
	}
}

func (b *bus) process(mixed []float64) {
	b.Lock()
	defer b.Unlock()
	b.echo.process(mixed)
	for i, value := range mixed {
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		mixed[i] = value
		b.out[(b.pos+int64(i))%fftSize] = value
	}
	b.pos += int64(len(mixed))
}

// ----- Audio ----- //

// Audio is the output device. It plays every attached Synth and owns the
// current sound edited through commands.
type Audio struct {
	ctx        context.Context
	otoContext *oto.Context
	CommandCh  chan []string
	state      *state
	mixer      *mixer
	bus        *bus
	Changes    *Changes
	spectrum   *spectrum
	mixBuf     []float64
}

// NewAudio opens the output device. container and scheduler back the load,
// save and asynchronous cache commands; soundsPath may be empty.
func NewAudio(container *sfxr.Container, soundsPath string, scheduler *sfxr.Scheduler) (*Audio, error) {
	otoContext, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	audio := newAudio(container, soundsPath, scheduler)
	audio.otoContext = otoContext
	go processCommands(audio, audio.CommandCh)
	return audio, nil
}

func newAudio(container *sfxr.Container, soundsPath string, scheduler *sfxr.Scheduler) *Audio {
	if container == nil {
		container = sfxr.NewContainer()
	}
	if scheduler == nil {
		scheduler = sfxr.NewScheduler(sfxr.DefaultSamplesPerTick)
	}
	audio := &Audio{
		ctx:       context.Background(),
		CommandCh: make(chan []string, 256),
		state:     newState(container, soundsPath, scheduler),
		mixer:     &mixer{},
		bus:       newBus(),
		Changes: &Changes{
			dict: make(map[string]struct{}),
		},
		spectrum: newSpectrum(fftSize),
		mixBuf:   make([]float64, samplesPerCycle),
	}
	audio.state.synth.SetOutput(audio)
	return audio
}

// Attach starts pulling s on the next cycle.
func (a *Audio) Attach(s *sfxr.Synth) {
	a.mixer.attach(s)
}

// Synth is the sound edited through commands.
func (a *Audio) Synth() *sfxr.Synth {
	return a.state.synth
}

func (a *Audio) Read(buf []byte) (int, error) {
	select {
	case <-a.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	bufSamples := len(buf) / bytesPerSample
	if len(a.mixBuf) < bufSamples {
		a.mixBuf = make([]float64, bufSamples)
	}
	mixed := a.mixBuf[:bufSamples]
	a.mixer.mix(mixed)
	a.bus.process(mixed)
	writeBuffer(mixed, buf, 0)
	writeBuffer(mixed, buf, 1)
	return bufSamples * bytesPerSample, nil
}

func writeBuffer(out []float64, buf []byte, ch int) {
	sampleLength := len(buf) / bytesPerSample
	for i := 0; i < sampleLength; i++ {
		value := out[i]
		switch bitDepthInBytes {
		case 1:
			const max = 127
			b := int(value * max)
			buf[bytesPerSample*i+ch] = byte(b + 128)
		case 2:
			const max = 32767
			b := int16(value * max)
			buf[bytesPerSample*i+2*ch] = byte(b)
			buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
		}
	}
}

func processCommands(audio *Audio, commandCh <-chan []string) {
	for command := range commandCh {
		if err := audio.update(command); err != nil {
			log.Printf("command %v failed: %v\n", command, err)
		}
	}
	log.Println("processCommands() ended.")
}

func parseFloatArg(args []string, i int, fallback float64) (float64, error) {
	if len(args) <= i || args[i] == "" || args[i] == "async" {
		return fallback, nil
	}
	return strconv.ParseFloat(args[i], 64)
}

func parseIntArg(args []string, i int, fallback int) (int, error) {
	if len(args) <= i || args[i] == "" || args[i] == "async" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(args[i], 10, 32)
	return int(v), err
}

func hasAsyncFlag(args []string) bool {
	return len(args) > 0 && args[len(args)-1] == "async"
}

func (a *Audio) update(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}
	a.state.Lock()
	defer a.state.Unlock()

	synth := a.state.synth
	args := command[1:]
	switch command[0] {
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("invalid key-value pair %v", args)
		}
		var err error
		synth.Edit(func(p *sfxr.Params) {
			err = p.SetByName(args[0], args[1])
		})
		if err != nil {
			return err
		}
		a.Changes.Add("settings")
	case "settings":
		if len(args) != 1 {
			return fmt.Errorf("settings takes one argument")
		}
		if err := a.applySettings(args[0]); err != nil {
			return err
		}
	case "json":
		if len(args) != 1 {
			return fmt.Errorf("json takes one argument")
		}
		var err error
		synth.Edit(func(p *sfxr.Params) {
			err = p.ApplyJSON([]byte(args[0]))
		})
		if err != nil {
			return err
		}
		a.Changes.Add("settings")
	case "preset":
		if len(args) != 1 {
			return fmt.Errorf("preset takes one argument")
		}
		preset, err := sfxr.PresetFromString(args[0])
		if err != nil {
			return err
		}
		synth.Edit(func(p *sfxr.Params) {
			p.Generate(preset)
		})
		a.Changes.Add("settings")
	case "randomize":
		synth.Edit((*sfxr.Params).Randomize)
		a.Changes.Add("settings")
	case "mutate":
		amount, err := parseFloatArg(args, 0, a.state.mutationAmount)
		if err != nil {
			return err
		}
		synth.Edit(func(p *sfxr.Params) {
			p.Mutate(amount)
		})
		a.Changes.Add("settings")
	case "defaults":
		synth.Edit((*sfxr.Params).ResetToDefaults)
		a.Changes.Add("settings")
	case "load":
		if len(args) != 1 {
			return fmt.Errorf("load takes one argument")
		}
		if err := a.applySettings(a.state.container.Sound(args[0])); err != nil {
			return err
		}
		a.state.title = strings.ToLower(args[0])
	case "save":
		title := a.state.title
		if len(args) > 0 {
			title = args[0]
		}
		if title == "" {
			return fmt.Errorf("no title to save as")
		}
		a.state.container.Replace(title, synth.SettingsString())
		a.state.title = strings.ToLower(title)
		if a.state.soundsPath != "" {
			if err := a.state.container.Save(a.state.soundsPath); err != nil {
				return fmt.Errorf("failed to save sounds: %w", err)
			}
		}
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("delete takes one argument")
		}
		a.state.container.Delete(args[0])
		if a.state.soundsPath != "" {
			if err := a.state.container.Save(a.state.soundsPath); err != nil {
				return fmt.Errorf("failed to save sounds: %w", err)
			}
		}
	case "echo":
		if len(args) != 2 {
			return fmt.Errorf("invalid key-value pair %v", args)
		}
		a.bus.Lock()
		err := a.bus.echo.set(args[0], args[1])
		a.bus.Unlock()
		if err != nil {
			return err
		}
	case "play":
		if !synth.Play() {
			log.Println("play ignored while caching")
		}
	case "play_mutated":
		amount, err := parseFloatArg(args, 0, a.state.mutationAmount)
		if err != nil {
			return err
		}
		count, err := parseIntArg(args, 1, a.state.mutationCount)
		if err != nil {
			return err
		}
		if count <= 0 {
			return fmt.Errorf("mutation count must be positive: %d", count)
		}
		a.state.mutationAmount = amount
		a.state.mutationCount = count
		if !synth.PlayMutated(amount, count) {
			log.Println("play_mutated ignored while caching")
		}
	case "stop":
		synth.Stop()
	case "cache":
		if hasAsyncFlag(args) {
			synth.CacheSoundAsync(a.state.scheduler, func() {
				a.Changes.Add("cached")
			})
		} else {
			synth.CacheSound()
			a.Changes.Add("cached")
		}
	case "cache_mutations":
		count, err := parseIntArg(args, 0, a.state.mutationCount)
		if err != nil {
			return err
		}
		if count <= 0 {
			return fmt.Errorf("mutation count must be positive: %d", count)
		}
		amount, err := parseFloatArg(args, 1, a.state.mutationAmount)
		if err != nil {
			return err
		}
		a.state.mutationAmount = amount
		a.state.mutationCount = count
		if hasAsyncFlag(args) {
			synth.CacheMutationsAsync(count, amount, a.state.scheduler, func() {
				a.Changes.Add("cached")
			})
		} else {
			synth.CacheMutations(count, amount)
			a.Changes.Add("cached")
		}
	default:
		return fmt.Errorf("unknown command %v", command[0])
	}
	return nil
}

func (a *Audio) applySettings(settings string) error {
	var ok bool
	var err error
	a.state.synth.Edit(func(p *sfxr.Params) {
		ok, err = p.SetSettingsString(settings)
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("settings string must have 24 fields: %q", settings)
	}
	a.Changes.Add("settings")
	return nil
}

// Close ...
func (a *Audio) Close() error {
	log.Println("Closing Audio...")
	close(a.CommandCh)
	if a.otoContext == nil {
		return nil
	}
	return a.otoContext.Close()
}

// Start ...
func (a *Audio) Start(ctx context.Context) error {
	p := a.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	a.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, a, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

// GetFFT returns the magnitude spectrum of the last fftSize output samples.
func (a *Audio) GetFFT() []float64 {
	a.bus.Lock()
	offset := int(a.bus.pos % fftSize)
	in := a.spectrum.input()
	// out:       | 4 | 1 | 2 | 3 |
	// offset:        ^
	// in:        | 1 | 2 | 3 | 4 |
	copy(in, a.bus.out[offset:])
	copy(in[fftSize-offset:], a.bus.out[:offset])
	a.bus.Unlock()
	return a.spectrum.analyze()
}

// GetSettings returns the current settings string once after each change.
func (a *Audio) GetSettings() (string, bool) {
	if !a.Changes.Has("settings") {
		return "", false
	}
	a.Changes.Delete("settings")
	return a.state.synth.SettingsString(), true
}

// AddMidiEvent plays a preset on note-on. The note picks the preset; notes
// on the drum channel play a mutation of the current sound instead.
func (a *Audio) AddMidiEvent(data []byte) {
	if len(data) < 3 || data[0]>>4 != 9 || data[2] == 0 {
		return
	}
	log.Printf("got note-on: %v\n", data)
	a.state.Lock()
	defer a.state.Unlock()
	synth := a.state.synth
	if data[0]&0x0f == 9 {
		synth.PlayMutated(a.state.mutationAmount, a.state.mutationCount)
		return
	}
	presets := sfxr.Presets()
	preset := presets[int(data[1])%len(presets)]
	synth.Edit(func(p *sfxr.Params) {
		p.Generate(preset)
		p.Set(sfxr.MasterVolume, float64(data[2])/127)
	})
	a.Changes.Add("settings")
	synth.Play()
}
