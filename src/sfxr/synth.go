package sfxr

import (
	"sync"
)

// ----- State ----- //

// State is what the coordinator is doing with its sound.
type State int

const (
	Idle State = iota
	Streaming
	CachingSync
	CachingAsync
	Ready
)

var stateNames = []string{"idle", "streaming", "caching_sync", "caching_async", "ready"}

func (s State) String() string {
	if s < Idle || s > Ready {
		return "unknown"
	}
	return stateNames[s]
}

// Output receives a Synth whenever it starts playing and pulls it with Fill
// until Fill reports that nothing is left.
type Output interface {
	Attach(s *Synth)
}

// ----- Voice ----- //

// voice is one playback in progress. A streaming voice owns a generator and
// writes ahead into buf; a cached voice only reads.
type voice struct {
	buf     *WaveBuffer
	gen     *generator
	pos     int
	written int
	onDone  func()
}

func (v *voice) end() int {
	if v.gen != nil {
		return v.written
	}
	return v.buf.produced
}

func (v *voice) exhausted() bool {
	if v.gen != nil && !v.gen.finished {
		return false
	}
	return v.pos >= v.end()
}

// render makes sure up to frames samples past pos exist and returns how many.
func (v *voice) render(frames int) int {
	if v.gen != nil && !v.gen.finished {
		if need := v.pos + frames - v.written; need > 0 {
			end := v.written + need
			if end > len(v.buf.samples) {
				end = len(v.buf.samples)
			}
			n, finished := v.gen.generate(v.buf.samples[v.written:end])
			v.written += n
			if finished {
				v.buf.produced = v.written
			}
		}
	}
	available := v.end() - v.pos
	if available > frames {
		available = frames
	}
	return available
}

// ----- Synth ----- //

// Synth coordinates one sound: live streaming, cached playback, mutation
// variants and caching. All methods are safe for concurrent use; Fill is meant
// for the audio callback and never blocks.
type Synth struct {
	mu        sync.Mutex
	params    *Params
	rng       *random
	out       Output
	state     State
	cached    *WaveBuffer
	mutations *MutationSet
	original  *Params // base values while a streamed mutation is playing
	voice     *voice
	task      *CacheTask
}

// NewSynth ...
func NewSynth() *Synth {
	return newSynthWithParams(NewParams())
}

// NewSynthWithSeed makes noise and mutation draws reproducible.
func NewSynthWithSeed(seed int64) *Synth {
	return newSynthWithParams(NewParamsWithSeed(seed))
}

func newSynthWithParams(p *Params) *Synth {
	return &Synth{
		params: p,
		rng:    p.rng,
		state:  Idle,
	}
}

// SetOutput sets where playback is attached. Nil detaches nothing already
// playing but keeps later playback silent.
func (s *Synth) SetOutput(out Output) {
	s.mu.Lock()
	s.out = out
	s.mu.Unlock()
}

// Params returns a copy of the base values.
func (s *Synth) Params() *Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.original != nil {
		return s.original.Clone()
	}
	return s.params.Clone()
}

// SettingsString ...
func (s *Synth) SettingsString() string {
	return s.Params().SettingsString()
}

// Edit runs f on the base parameter set. Values mutated for a variation still
// playing are put back first so the edit is not rolled back later.
func (s *Synth) Edit(f func(p *Params)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	f(s.params)
}

// State ...
func (s *Synth) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Ready && !s.cacheValid() && !s.mutationsComplete(0) {
		return Idle
	}
	return s.state
}

// IsCached reports whether a cache built from the current values exists.
func (s *Synth) IsCached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cacheValid()
}

// IsPlaying ...
func (s *Synth) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice != nil
}

// Cached returns the cached buffer, or nil if it is missing or stale.
func (s *Synth) Cached() *WaveBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cacheValid() {
		return nil
	}
	return s.cached
}

// Mutations returns the mutation set, or nil if it is missing or stale. The
// set may be incomplete when built by PlayMutated.
func (s *Synth) Mutations() *MutationSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mutations == nil || s.mutations.version != s.baseVersion() {
		return nil
	}
	return s.mutations
}

func (s *Synth) baseVersion() uint64 {
	if s.original != nil {
		return s.original.version
	}
	return s.params.version
}

func (s *Synth) cacheValid() bool {
	return s.cached != nil && s.cached.version == s.baseVersion()
}

// mutationsComplete also accepts count 0 as "whatever was asked for".
func (s *Synth) mutationsComplete(count int) bool {
	m := s.mutations
	if m == nil || m.version != s.baseVersion() || len(m.buffers) == 0 {
		return false
	}
	if count == 0 {
		count = m.target
	}
	return len(m.buffers) >= count
}

// settle puts back the base values saved by a streamed mutation.
func (s *Synth) settle() {
	if s.original != nil {
		s.params.restore(s.original)
		s.original = nil
	}
}

func (s *Synth) busy() bool {
	return s.task != nil
}

// ----- Playback ----- //

// Play starts the sound. Without a valid cache it streams while recording
// into a new cache; with one it plays the cache. It returns false, doing
// nothing, while a cache is being built.
func (s *Synth) Play() bool {
	s.mu.Lock()
	if s.busy() {
		s.mu.Unlock()
		return false
	}
	s.settle()
	if s.cacheValid() {
		s.voice = &voice{buf: s.cached}
		s.state = Ready
	} else {
		s.cached = nil
		g := newGenerator(s.params, s.rng)
		buf := newWaveBuffer(g.length, s.params.version)
		s.voice = &voice{buf: buf, gen: g}
		s.voice.onDone = func() {
			s.cached = buf
		}
		s.state = Streaming
	}
	out := s.out
	s.mu.Unlock()

	if out != nil {
		out.Attach(s)
	}
	return true
}

// PlayMutated plays a variation of the sound. Until count variations exist,
// each call streams a new one (and keeps it); after that a stored one is
// picked at random. It returns false while a cache is being built.
func (s *Synth) PlayMutated(amount float64, count int) bool {
	if count <= 0 {
		return false
	}
	s.mu.Lock()
	if s.busy() {
		s.mu.Unlock()
		return false
	}
	s.settle()
	m := s.mutations
	if m == nil || m.version != s.params.version || m.amount != amount {
		m = &MutationSet{amount: amount, version: s.params.version}
		s.mutations = m
	}
	m.target = count
	if len(m.buffers) < count {
		s.original = s.params.Clone()
		s.params.Mutate(amount)
		g := newGenerator(s.params, s.rng)
		buf := newWaveBuffer(g.length, s.params.version)
		s.voice = &voice{buf: buf, gen: g}
		s.voice.onDone = func() {
			if s.mutations == m && len(m.buffers) < m.target {
				m.buffers = append(m.buffers, buf)
			}
			s.settle()
		}
		s.state = Streaming
	} else {
		s.voice = &voice{buf: m.buffers[s.rng.intn(len(m.buffers))]}
		s.state = Ready
	}
	out := s.out
	s.mu.Unlock()

	if out != nil {
		out.Attach(s)
	}
	return true
}

// Stop ends playback and any cache being built. Partial buffers are dropped
// and mutated values are put back.
func (s *Synth) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
}

func (s *Synth) stop() {
	if s.task != nil {
		s.task.cancel()
		s.task = nil
	}
	s.voice = nil
	s.settle()
	s.state = Idle
}

// Fill writes the next len(data)/channels mono samples, repeated on every
// channel, and reports whether more will follow. When the coordinator is busy
// it writes silence instead of waiting.
func (s *Synth) Fill(data []float32, channels int) bool {
	if channels <= 0 {
		channels = 1
	}
	if !s.mu.TryLock() {
		silence(data)
		return true
	}
	defer s.mu.Unlock()

	v := s.voice
	if v == nil {
		silence(data)
		return false
	}
	frames := len(data) / channels
	n := v.render(frames)
	samples := v.buf.samples[v.pos:]
	for i := 0; i < frames; i++ {
		var x float32
		if i < n {
			x = samples[i]
		}
		for c := 0; c < channels; c++ {
			data[i*channels+c] = x
		}
	}
	for i := frames * channels; i < len(data); i++ {
		data[i] = 0
	}
	v.pos += n

	if !v.exhausted() {
		return true
	}
	if v.onDone != nil {
		v.onDone()
	}
	s.voice = nil
	if s.state == Streaming {
		s.state = Ready
	}
	return false
}

func silence(data []float32) {
	for i := range data {
		data[i] = 0
	}
}

// ----- Caching ----- //

// CacheSound renders the whole sound now, stopping any playback first. A
// valid cache is kept as is.
func (s *Synth) CacheSound() {
	t := s.startCache(false, 0, 0, nil, nil)
	if t != nil {
		t.runToEnd()
	}
}

// CacheMutations renders count variations now, stopping any playback first.
// The base values are unchanged afterwards.
func (s *Synth) CacheMutations(count int, amount float64) {
	if count <= 0 {
		return
	}
	t := s.startCache(false, count, amount, nil, nil)
	if t != nil {
		t.runToEnd()
	}
}

// CacheSoundAsync queues rendering on sched; done runs once the cache is in
// place, right away if it already is. It returns nil when there is nothing to
// render or when another cache is in flight, which is otherwise ignored.
func (s *Synth) CacheSoundAsync(sched *Scheduler, done func()) *CacheTask {
	return s.startCache(true, 0, 0, sched, done)
}

// CacheMutationsAsync is the queued form of CacheMutations.
func (s *Synth) CacheMutationsAsync(count int, amount float64, sched *Scheduler, done func()) *CacheTask {
	if count <= 0 {
		return nil
	}
	return s.startCache(true, count, amount, sched, done)
}

func (s *Synth) startCache(async bool, count int, amount float64, sched *Scheduler, done func()) *CacheTask {
	s.mu.Lock()
	if s.busy() {
		s.mu.Unlock()
		return nil
	}
	if (count == 0 && s.cacheValid()) || (count > 0 && s.mutationsComplete(count) && s.mutations.amount == amount) {
		s.mu.Unlock()
		if done != nil {
			done()
		}
		return nil
	}
	s.stop()
	t := newCacheTask(s, s.params.Clone(), count, amount, done)
	s.task = t
	if async {
		s.state = CachingAsync
	} else {
		s.state = CachingSync
	}
	s.mu.Unlock()

	if async && sched != nil {
		sched.add(t)
	}
	return t
}

// publish installs what t built if t is still the current task.
func (s *Synth) publish(t *CacheTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task != t || t.cancelled.Load() {
		return false
	}
	if t.set != nil {
		s.mutations = t.set
	} else {
		s.cached = t.buf
	}
	s.task = nil
	s.state = Ready
	return true
}
