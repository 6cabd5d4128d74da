package audio

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/jinjor/desktop-sfxr/src/sfxr"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected float64) {
	t.Helper()
	if math.Abs(actual-expected) > 0.0001 {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Errorf("expected an error")
	}
}

func now() float64 {
	return float64(time.Now().UnixNano()) / 1000 / 1000 / 1000
}

func readCycles(t *testing.T, audio *Audio, cycles int) []byte {
	t.Helper()
	out := make([]byte, bufferSizeInBytes)
	for i := 0; i < cycles; i++ {
		n, err := audio.Read(out)
		expectNoError(t, err)
		expectEqual(t, n, bufferSizeInBytes)
	}
	return out
}

func hasSound(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return true
		}
	}
	return false
}

func TestEditCommands(t *testing.T) {
	audio := newAudio(nil, "", nil)
	expectNoError(t, audio.update([]string{"set", "startFrequency", "0.5"}))
	expectEqual(t, audio.Synth().Params().Get(sfxr.StartFrequency), 0.5)
	settings, ok := audio.GetSettings()
	expectEqual(t, ok, true)
	expectEqual(t, settings, audio.Synth().SettingsString())
	_, ok = audio.GetSettings()
	expectEqual(t, ok, false)

	expectNoError(t, audio.update([]string{"set", "waveType", "noise"}))
	expectEqual(t, audio.Synth().Params().WaveType(), sfxr.Noise)
	expectNoError(t, audio.update([]string{"preset", "coin"}))
	expectNoError(t, audio.update([]string{"randomize"}))
	expectNoError(t, audio.update([]string{"mutate"}))
	expectNoError(t, audio.update([]string{"mutate", "0.2"}))
	expectNoError(t, audio.update([]string{"defaults"}))
	expectEqual(t, audio.Synth().Params().Get(sfxr.DecayTime), 0.4)

	json := string(audio.Synth().Params().ToJSON())
	expectNoError(t, audio.update([]string{"json", json}))

	coin := "0,,0.032,0.4138,0.4365,0.834,,,,,,0.3117,0.6925,,,,,,1,,,,,0.5"
	expectNoError(t, audio.update([]string{"settings", coin}))
	expectEqual(t, audio.Synth().SettingsString(), coin)
}

func TestInvalidCommands(t *testing.T) {
	audio := newAudio(nil, "", nil)
	before := audio.Synth().SettingsString()
	expectError(t, audio.update([]string{}))
	expectError(t, audio.update([]string{"jump"}))
	expectError(t, audio.update([]string{"set", "startFrequency"}))
	expectError(t, audio.update([]string{"set", "loudness", "1"}))
	expectError(t, audio.update([]string{"settings", "0,1,2"}))
	expectError(t, audio.update([]string{"settings", "0,,,,,,,,,,,,,,,,,,,,,,,x"}))
	expectError(t, audio.update([]string{"json", "{"}))
	expectError(t, audio.update([]string{"preset", "kazoo"}))
	expectError(t, audio.update([]string{"mutate", "lots"}))
	expectError(t, audio.update([]string{"play_mutated", "0.1", "many"}))
	expectError(t, audio.update([]string{"play_mutated", "0.1", "0"}))
	expectError(t, audio.update([]string{"play_mutated", "0.1", "-3"}))
	expectError(t, audio.update([]string{"cache_mutations", "0"}))
	expectEqual(t, audio.mixer.active(), 0)
	expectEqual(t, audio.state.mutationCount, defaultMutationCount)
	expectError(t, audio.update([]string{"save"}))
	expectEqual(t, audio.Synth().SettingsString(), before)
}

func TestLibraryCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sounds.txt")
	container := sfxr.NewContainer()
	audio := newAudio(container, path, nil)

	expectNoError(t, audio.update([]string{"preset", "laser"}))
	expectNoError(t, audio.update([]string{"save", "Pew"}))
	expectEqual(t, container.Contains("pew"), true)
	loaded, err := sfxr.LoadContainer(path)
	expectNoError(t, err)
	expectEqual(t, loaded.Sound("pew"), audio.Synth().SettingsString())

	saved := audio.Synth().SettingsString()
	expectNoError(t, audio.update([]string{"defaults"}))
	expectNoError(t, audio.update([]string{"load", "PEW"}))
	expectEqual(t, audio.Synth().SettingsString(), saved)

	// a missing title loads silence
	expectNoError(t, audio.update([]string{"load", "nothing"}))
	expectEqual(t, audio.Synth().Params().Get(sfxr.MasterVolume), 0.0)

	expectNoError(t, audio.update([]string{"delete", "pew"}))
	loaded, err = sfxr.LoadContainer(path)
	expectNoError(t, err)
	expectEqual(t, loaded.IsEmpty(), true)
}

func TestPlayUntilEnd(t *testing.T) {
	audio := newAudio(nil, "", nil)
	expectNoError(t, audio.update([]string{"play"}))
	expectEqual(t, audio.mixer.active(), 1)
	out := readCycles(t, audio, 1)
	expectEqual(t, hasSound(out), true)

	// 25010 samples at 1024 per cycle
	readCycles(t, audio, 24)
	expectEqual(t, audio.mixer.active(), 1)
	readCycles(t, audio, 1)
	expectEqual(t, audio.mixer.active(), 0)
	expectEqual(t, audio.Synth().IsCached(), true)
	out = readCycles(t, audio, 1)
	expectEqual(t, hasSound(out), false)
}

func TestStopCommand(t *testing.T) {
	audio := newAudio(nil, "", nil)
	expectNoError(t, audio.update([]string{"play_mutated", "0.05", "3"}))
	readCycles(t, audio, 1)
	expectNoError(t, audio.update([]string{"stop"}))
	readCycles(t, audio, 1)
	expectEqual(t, audio.mixer.active(), 0)
	expectEqual(t, audio.Synth().State(), sfxr.Idle)
}

func TestCacheCommands(t *testing.T) {
	sched := sfxr.NewScheduler(0)
	audio := newAudio(nil, "", sched)
	expectNoError(t, audio.update([]string{"cache", "async"}))
	expectEqual(t, audio.Synth().State(), sfxr.CachingAsync)
	expectNoError(t, audio.update([]string{"play"}))
	expectEqual(t, audio.mixer.active(), 0)
	for sched.Tick() > 0 {
	}
	expectEqual(t, audio.Changes.Has("cached"), true)
	expectEqual(t, audio.Synth().IsCached(), true)

	expectNoError(t, audio.update([]string{"cache_mutations", "4", "0.1"}))
	expectEqual(t, audio.Synth().Mutations().Len(), 4)
	expectNoError(t, audio.update([]string{"play_mutated"}))
	expectEqual(t, audio.mixer.active(), 1)
}

func TestMixer(t *testing.T) {
	a := sfxr.NewSynthWithSeed(1)
	a.Edit((*sfxr.Params).ResetToDefaults)
	b := sfxr.NewSynthWithSeed(1)
	b.Edit((*sfxr.Params).ResetToDefaults)
	b.Edit(func(p *sfxr.Params) {
		p.Set(sfxr.DecayTime, 0.1)
	})
	m := &mixer{}
	a.SetOutput(outputFunc(m.attach))
	b.SetOutput(outputFunc(m.attach))
	a.Play()
	a.Play()
	b.Play()
	expectEqual(t, m.active(), 2)

	out := make([]float64, 512)
	m.mix(out)
	expected := sfxr.Render(a.Params()).Samples()
	for i, v := range out {
		// both start with the same attack and sustain
		if math.Abs(v-2*float64(expected[i])) > 1e-6 {
			t.Fatalf("sample %d: expected %v, but got: %v", i, 2*expected[i], v)
		}
	}
	for i := 0; i < 40; i++ {
		m.mix(out)
	}
	expectEqual(t, m.active(), 1)
}

type outputFunc func(s *sfxr.Synth)

func (f outputFunc) Attach(s *sfxr.Synth) {
	f(s)
}

func TestWriteBuffer(t *testing.T) {
	out := []float64{0.5, -1}
	buf := make([]byte, 2*bytesPerSample)
	writeBuffer(out, buf, 0)
	writeBuffer(out, buf, 1)
	expectEqual(t, int16(buf[0])|int16(buf[1])<<8, int16(16383))
	expectEqual(t, int16(buf[2])|int16(buf[3])<<8, int16(16383))
	expectEqual(t, int16(buf[4])|int16(buf[5])<<8, int16(-32767))
}

func TestEcho(t *testing.T) {
	e := newEcho()
	expectError(t, e.set("delay", "soon"))
	expectError(t, e.set("enabled", "maybe"))
	expectError(t, e.set("wobble", "1"))
	expectNoError(t, e.set("delay", "10"))
	expectNoError(t, e.set("mix", "0.5"))
	expectNoError(t, e.set("feedbackGain", "0"))

	length := sampleRate * 10 / 1000
	buf := make([]float64, length+1)
	buf[0] = 1
	e.process(buf)
	expectEqual(t, buf[length], 0.0)

	expectNoError(t, e.set("enabled", "true"))
	buf = make([]float64, length+1)
	buf[0] = 1
	e.process(buf)
	expectEqual(t, buf[0], 1.0)
	expectEqual(t, buf[length], 0.5)
}

func TestEchoCommand(t *testing.T) {
	audio := newAudio(nil, "", nil)
	expectNoError(t, audio.update([]string{"echo", "enabled", "true"}))
	expectEqual(t, audio.bus.echo.enabled, true)
	expectError(t, audio.update([]string{"echo", "enabled"}))
}

func TestMidiNoteOn(t *testing.T) {
	audio := newAudio(nil, "", nil)
	audio.AddMidiEvent([]byte{0x80, 60, 0})
	audio.AddMidiEvent([]byte{0x90, 60, 0})
	expectEqual(t, audio.mixer.active(), 0)

	audio.AddMidiEvent([]byte{0x90, 7, 127})
	expectEqual(t, audio.mixer.active(), 1)
	expectEqual(t, audio.Synth().Params().Get(sfxr.MasterVolume), 1.0)
	_, ok := audio.GetSettings()
	expectEqual(t, ok, true)

	before := audio.Synth().SettingsString()
	audio.AddMidiEvent([]byte{0x99, 36, 100})
	expectEqual(t, audio.Synth().State(), sfxr.Streaming)
	expectEqual(t, audio.Synth().SettingsString(), before)
}

func TestBenchmark(t *testing.T) {
	polyphony := 10
	times := 1000

	audio := newAudio(nil, "", nil)
	defer func() {
		expectNoError(t, audio.Close())
	}()
	synths := make([]*sfxr.Synth, polyphony)
	for i := range synths {
		synths[i] = sfxr.NewSynthWithSeed(int64(i))
		synths[i].SetOutput(audio)
		synths[i].Edit(func(p *sfxr.Params) {
			p.Randomize()
			p.Set(sfxr.RepeatSpeed, 0)
			p.Set(sfxr.MinFrequency, 0)
			p.Set(sfxr.SustainTime, 1)
		})
	}
	out := make([]byte, bufferSizeInBytes)
	start := now()
	for n := 0; n < times; n++ {
		if n%40 == 0 {
			for _, s := range synths {
				s.Play()
			}
		}
		_, err := audio.Read(out)
		expectNoError(t, err)
	}
	end := now()
	averageProcessTime := (end - start) / float64(times) * 1000
	fmt.Printf("average process time: %.2fms\n", averageProcessTime)
}
