package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// Gate releases samples from a source only as video frames are displayed.
// Each Release adds one frame's worth of samples to the budget; the speaker
// plays silence once the budget is spent. When the budget grows past the lag
// limit the surplus is skipped so the sound catches up with the picture.
type Gate struct {
	mu     sync.Mutex
	src    beep.Streamer
	budget int
	maxLag int
	done   bool
	skip   [][2]float64
}

var _ beep.Streamer = (*Gate)(nil)

// NewGate wraps src. maxLag is the largest number of samples allowed to queue
// before the surplus is dropped.
func NewGate(src beep.Streamer, maxLag int) *Gate {
	if maxLag <= 0 {
		maxLag = 1
	}
	return &Gate{src: src, maxLag: maxLag, skip: make([][2]float64, 512)}
}

// Release grants n more samples.
func (g *Gate) Release(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done || n <= 0 {
		return
	}
	g.budget += n
	if surplus := g.budget - g.maxLag; surplus > 0 {
		g.drain(surplus)
		g.budget = g.maxLag
	}
}

// Stream serves budgeted source samples followed by silence. It only reports
// exhaustion once the source is exhausted.
func (g *Gate) Stream(samples [][2]float64) (n int, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return 0, false
	}

	want := min(g.budget, len(samples))
	if want > 0 {
		got, more := g.src.Stream(samples[:want])
		g.budget -= got
		n = got
		if !more || got < want {
			g.done = true
		}
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	if g.done && n == 0 {
		return 0, false
	}
	return len(samples), true
}

// Err forwards the source error.
func (g *Gate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.src.Err()
}

// Done reports whether the source has been exhausted.
func (g *Gate) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

// Pending returns the unspent budget.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.budget
}

func (g *Gate) drain(n int) {
	for n > 0 && !g.done {
		k := min(n, len(g.skip))
		got, more := g.src.Stream(g.skip[:k])
		n -= got
		if !more || got < k {
			g.done = true
		}
	}
}
