package sfxr

import (
	"math/rand"
	"sync"
	"time"
)

// ----- Random ----- //

// random is shared by the generator (noise) and the mutation cycle, and the
// generator runs on the audio callback goroutine, so every draw is locked.
type random struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newRandom(seed int64) *random {
	return &random{r: rand.New(rand.NewSource(seed))}
}

func newTimeSeededRandom() *random {
	return newRandom(time.Now().UnixNano())
}

// float returns 0 <= n < 1
func (r *random) float() float64 {
	r.mu.Lock()
	v := r.r.Float64()
	r.mu.Unlock()
	return v
}

func (r *random) intn(n int) int {
	r.mu.Lock()
	v := r.r.Intn(n)
	r.mu.Unlock()
	return v
}

func (r *random) int63() int64 {
	r.mu.Lock()
	v := r.r.Int63()
	r.mu.Unlock()
	return v
}

func pow(base float64, power int) float64 {
	v := 1.0
	for i := 0; i < power; i++ {
		v *= base
	}
	return v
}
