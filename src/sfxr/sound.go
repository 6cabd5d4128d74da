package sfxr

import (
	"log"
	"sync"
)

// ----- Sound ----- //

// Sound is a titled entry of a Container bound to its own Synth. It loads its
// settings on the first Play and, when Cached is set, builds its cache then
// (in the background if a Scheduler is given) and plays once it is ready.
type Sound struct {
	Title          string
	Cached         bool
	Mutations      int
	MutationFactor float64

	container *Container
	sched     *Scheduler
	synth     *Synth
	initOnce  sync.Once
}

// NewSound returns a cached sound without mutations. sched may be nil, in
// which case caching happens inside the first Play.
func NewSound(title string, container *Container, sched *Scheduler) *Sound {
	return &Sound{
		Title:          title,
		Cached:         true,
		MutationFactor: DefaultMutationAmount,
		container:      container,
		sched:          sched,
		synth:          NewSynth(),
	}
}

// Synth gives access to the underlying coordinator.
func (s *Sound) Synth() *Synth {
	return s.synth
}

func (s *Sound) hasMutations() bool {
	return s.Mutations > 0
}

// Play plays the sound, or a random variation of it when Mutations > 0.
func (s *Sound) Play() {
	s.initOnce.Do(s.init)
	if s.hasMutations() {
		s.synth.PlayMutated(s.MutationFactor, s.Mutations)
	} else {
		s.synth.Play()
	}
}

// Stop ...
func (s *Sound) Stop() {
	s.synth.Stop()
}

func (s *Sound) init() {
	settings := s.container.Sound(s.Title)
	var ok bool
	var err error
	s.synth.Edit(func(p *Params) {
		ok, err = p.SetSettingsString(settings)
	})
	if err != nil {
		log.Printf("sound %q: %v\n", s.Title, err)
	} else if !ok {
		log.Printf("sound %q: malformed settings string\n", s.Title)
	}
	if s.Cached {
		s.cache()
	}
}

func (s *Sound) cache() {
	if s.sched == nil {
		if s.hasMutations() {
			s.synth.CacheMutations(s.Mutations, s.MutationFactor)
		} else {
			s.synth.CacheSound()
		}
		return
	}
	if s.hasMutations() {
		s.synth.CacheMutationsAsync(s.Mutations, s.MutationFactor, s.sched, func() {
			s.synth.PlayMutated(s.MutationFactor, s.Mutations)
		})
	} else {
		s.synth.CacheSoundAsync(s.sched, func() {
			s.synth.Play()
		})
	}
}
