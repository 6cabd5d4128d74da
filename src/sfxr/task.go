package sfxr

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// ----- Cache Task ----- //

// DefaultSamplesPerTick is roughly 1/10 s of audio at 44.1kHz.
const DefaultSamplesPerTick = 4096

// CacheTask renders a cache in slices. Each Advance call does a bounded amount
// of work and the result is installed on the Synth only when everything is
// rendered and the task was not cancelled in between.
type CacheTask struct {
	mu     sync.Mutex
	synth  *Synth
	base   *Params
	count  int
	amount float64
	done   func()

	gen *generator
	buf *WaveBuffer
	set *MutationSet

	ended     bool
	completed bool
	cancelled atomic.Bool
	endOnce   sync.Once
	endCh     chan struct{}
}

func newCacheTask(s *Synth, base *Params, count int, amount float64, done func()) *CacheTask {
	t := &CacheTask{
		synth:  s,
		base:   base,
		count:  count,
		amount: amount,
		done:   done,
		endCh:  make(chan struct{}),
	}
	if count > 0 {
		t.set = &MutationSet{target: count, amount: amount, version: base.version}
	}
	return t
}

// Advance renders at most maxSamples samples and reports whether the task
// has ended, by completing or by being cancelled.
func (t *CacheTask) Advance(maxSamples int) bool {
	ended, completed := t.advance(maxSamples)
	if completed && t.done != nil {
		t.done()
	}
	return ended
}

func (t *CacheTask) advance(maxSamples int) (bool, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ended {
		return true, false
	}
	if t.cancelled.Load() {
		t.end()
		return true, false
	}
	for maxSamples > 0 {
		if t.gen == nil {
			t.start()
		}
		from := t.buf.produced
		to := from + maxSamples
		if to > len(t.buf.samples) {
			to = len(t.buf.samples)
		}
		n, finished := t.gen.generate(t.buf.samples[from:to])
		t.buf.produced += n
		maxSamples -= n
		if !finished {
			continue
		}
		t.gen = nil
		if t.set == nil {
			return t.finish()
		}
		t.set.buffers = append(t.set.buffers, t.buf)
		if len(t.set.buffers) >= t.count {
			return t.finish()
		}
	}
	// checked once per slice
	if t.cancelled.Load() {
		t.end()
		return true, false
	}
	return false, false
}

// start prepares the next buffer. Variations are mutated from a copy of the
// base, so the base itself is never left mutated.
func (t *CacheTask) start() {
	p := t.base
	if t.set != nil {
		p = t.base.Clone()
		p.Mutate(t.amount)
	}
	t.gen = newGenerator(p, t.synth.rng)
	t.buf = newWaveBuffer(t.gen.length, p.version)
}

func (t *CacheTask) finish() (bool, bool) {
	t.completed = t.synth.publish(t)
	t.end()
	return true, t.completed
}

func (t *CacheTask) end() {
	t.ended = true
	t.gen = nil
	if !t.completed {
		t.buf = nil
		t.set = nil
	}
	t.endOnce.Do(func() { close(t.endCh) })
}

// cancel may be called with the Synth locked, so it only flags the task.
func (t *CacheTask) cancel() {
	t.cancelled.Store(true)
	t.endOnce.Do(func() { close(t.endCh) })
}

// Cancel stops the task; the Synth goes back to Idle if it was still waiting
// for it.
func (t *CacheTask) Cancel() {
	s := t.synth
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == t {
		s.stop()
		return
	}
	t.cancel()
}

// Done is closed when the task ends either way.
func (t *CacheTask) Done() <-chan struct{} {
	return t.endCh
}

// Completed reports whether the result was installed.
func (t *CacheTask) Completed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

func (t *CacheTask) runToEnd() {
	for !t.Advance(DefaultSamplesPerTick) {
	}
}

// ----- Scheduler ----- //

// Scheduler advances queued cache tasks one slice per tick, from a single
// goroutine.
type Scheduler struct {
	mu             sync.Mutex
	tasks          []*CacheTask
	samplesPerTick int
}

// NewScheduler ...
func NewScheduler(samplesPerTick int) *Scheduler {
	if samplesPerTick <= 0 {
		samplesPerTick = DefaultSamplesPerTick
	}
	return &Scheduler{samplesPerTick: samplesPerTick}
}

func (sc *Scheduler) add(t *CacheTask) {
	sc.mu.Lock()
	sc.tasks = append(sc.tasks, t)
	sc.mu.Unlock()
}

// Pending ...
func (sc *Scheduler) Pending() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.tasks)
}

// Tick advances every queued task once and returns how many remain.
func (sc *Scheduler) Tick() int {
	sc.mu.Lock()
	tasks := make([]*CacheTask, len(sc.tasks))
	copy(tasks, sc.tasks)
	sc.mu.Unlock()

	ended := make(map[*CacheTask]bool)
	for _, t := range tasks {
		if t.Advance(sc.samplesPerTick) {
			ended[t] = true
		}
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	remaining := sc.tasks[:0]
	for _, t := range sc.tasks {
		if !ended[t] {
			remaining = append(remaining, t)
		}
	}
	sc.tasks = remaining
	return len(sc.tasks)
}

// Run ticks every interval until ctx is done.
func (sc *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler.Run() interrupted")
			break loop
		case <-t.C:
			sc.Tick()
		}
	}
	log.Println("Scheduler.Run() ended.")
	return nil
}
