package glow

import (
	"fmt"
	"math"
	"sync"
)

// Propagator computes a light's attenuation over a decay grid.
// [Sweeper] is the built-in implementation; custom implementations can
// swap in a different propagation model.
type Propagator interface {
	Propagate(decay *DecayGrid, light Light) (*AttenuationGrid, error)
}

var _ Propagator = (*Sweeper)(nil)

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithDiagonalMult sets the decay multiplier applied on diagonal steps.
// The default is √2, matching the Euclidean length of a diagonal step.
// A multiplier of 1 makes diagonal and orthogonal steps decay equally,
// producing square-shaped falloff.
func WithDiagonalMult(mult float32) Option {
	return func(s *Sweeper) { s.diagonalMult = mult }
}

// WithWorkers sets the number of workers used when propagating several
// lights at once (see [Sweeper.CombineLights] and
// [Sweeper.Interpolate]). Zero or negative selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Sweeper) { s.workers = n }
}

// Sweeper propagates light with four directional sweeps per pass.
//
// Each sweep visits cells in a fixed scan order and pulls light from
// the neighbors already visited in that order, so a single pass carries
// light arbitrarily far in its scan direction. Two passes with opposite
// sweep orders run concurrently and merge by per-cell maximum, giving
// symmetric results regardless of where the light sits.
//
// A Sweeper holds only configuration and is safe for concurrent use.
type Sweeper struct {
	diagonalMult float32
	workers      int
}

// NewSweeper creates a Sweeper with the given options applied over the
// defaults (diagonal multiplier √2, GOMAXPROCS workers).
func NewSweeper(opts ...Option) *Sweeper {
	s := &Sweeper{diagonalMult: float32(math.Sqrt2)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiagonalMult returns the configured diagonal decay multiplier.
func (s *Sweeper) DiagonalMult() float32 { return s.diagonalMult }

// Propagate computes the attenuation grid for a single light. The
// source cell receives exactly light.Intensity; every other cell
// receives the strongest value reachable through any sweep path.
// Returns [ErrLightOutOfBounds] if the light lies outside the grid.
// A zero-area grid yields an empty result without error.
func (s *Sweeper) Propagate(decay *DecayGrid, light Light) (*AttenuationGrid, error) {
	out := &AttenuationGrid{width: decay.width, height: decay.height}
	if decay.width == 0 || decay.height == 0 {
		return out, nil
	}
	if !decay.contains(light.X, light.Y) {
		return nil, fmt.Errorf("%w: (%d, %d) in %dx%d grid",
			ErrLightOutOfBounds, light.X, light.Y, decay.width, decay.height)
	}
	out.cells = s.run(decay, light.Y*decay.width+light.X, light.Intensity)
	return out, nil
}

// run executes the bidirectional sweep for a seed cell already known to
// be in bounds and returns the merged cell buffer.
func (s *Sweeper) run(decay *DecayGrid, seedIdx int, intensity float32) []float32 {
	w, h := decay.width, decay.height
	diag := s.diagonalMult

	forward := make([]float32, w*h)
	forward[seedIdx] = intensity

	reverse := make([]float32, w*h)
	reverse[seedIdx] = intensity

	// Forward and reverse passes touch independent buffers and only
	// read the decay grid, so they run concurrently.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepUp(decay.cells, reverse, w, h, diag)
		sweepDown(decay.cells, reverse, w, h, diag)
		sweepBRToTL(decay.cells, reverse, w, h, diag)
		sweepTLToBR(decay.cells, reverse, w, h, diag)
	}()

	sweepTLToBR(decay.cells, forward, w, h, diag)
	sweepBRToTL(decay.cells, forward, w, h, diag)
	sweepDown(decay.cells, forward, w, h, diag)
	sweepUp(decay.cells, forward, w, h, diag)
	wg.Wait()

	for i, v := range reverse {
		if v > forward[i] {
			forward[i] = v
		}
	}
	return forward
}

// propagated returns the light that reaches a cell from neighbor index
// ni: the neighbor's own decay gates how much light escapes it, scaled
// by mult for diagonal steps. Clamped at zero: decay*mult can exceed 1
// (decay near 1 with the √2 diagonal multiplier), and light never goes
// negative.
func propagated(att, decay []float32, ni int, mult float32) float32 {
	v := att[ni] * (1 - decay[ni]*mult)
	if v < 0 {
		return 0
	}
	return v
}

// sweepTLToBR scans top-left to bottom-right, pulling from the left,
// up and up-left neighbors.
func sweepTLToBR(decay, att []float32, w, h int, diag float32) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			best := att[idx]
			if x > 0 {
				if v := propagated(att, decay, idx-1, 1); v > best {
					best = v
				}
			}
			if y > 0 {
				if v := propagated(att, decay, idx-w, 1); v > best {
					best = v
				}
				if x > 0 {
					if v := propagated(att, decay, idx-w-1, diag); v > best {
						best = v
					}
				}
			}
			att[idx] = best
		}
	}
}

// sweepBRToTL scans bottom-right to top-left, pulling from the right,
// down and down-right neighbors.
func sweepBRToTL(decay, att []float32, w, h int, diag float32) {
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			idx := y*w + x
			best := att[idx]
			if x+1 < w {
				if v := propagated(att, decay, idx+1, 1); v > best {
					best = v
				}
			}
			if y+1 < h {
				if v := propagated(att, decay, idx+w, 1); v > best {
					best = v
				}
				if x+1 < w {
					if v := propagated(att, decay, idx+w+1, diag); v > best {
						best = v
					}
				}
			}
			att[idx] = best
		}
	}
}

// sweepDown scans top to bottom, pulling from the left, up and both
// upper diagonal neighbors.
func sweepDown(decay, att []float32, w, h int, diag float32) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			best := att[idx]
			if x > 0 {
				if v := propagated(att, decay, idx-1, 1); v > best {
					best = v
				}
			}
			if y > 0 {
				if v := propagated(att, decay, idx-w, 1); v > best {
					best = v
				}
				if x > 0 {
					if v := propagated(att, decay, idx-w-1, diag); v > best {
						best = v
					}
				}
				if x+1 < w {
					if v := propagated(att, decay, idx-w+1, diag); v > best {
						best = v
					}
				}
			}
			att[idx] = best
		}
	}
}

// sweepUp scans bottom to top, pulling from the right, down and both
// lower diagonal neighbors.
func sweepUp(decay, att []float32, w, h int, diag float32) {
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			idx := y*w + x
			best := att[idx]
			if x+1 < w {
				if v := propagated(att, decay, idx+1, 1); v > best {
					best = v
				}
			}
			if y+1 < h {
				if v := propagated(att, decay, idx+w, 1); v > best {
					best = v
				}
				if x > 0 {
					if v := propagated(att, decay, idx+w-1, diag); v > best {
						best = v
					}
				}
				if x+1 < w {
					if v := propagated(att, decay, idx+w+1, diag); v > best {
						best = v
					}
				}
			}
			att[idx] = best
		}
	}
}
