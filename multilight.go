package glow

import (
	"fmt"

	"github.com/gogpu/glow/internal/parallel"
)

// CombineLights propagates each light independently and merges the
// results by per-cell maximum. Overlapping lights therefore never sum
// above the brightest contributor; a cell lit to 0.8 by one light and
// 0.6 by another reads 0.8.
//
// All lights are validated up front: any out-of-bounds light fails the
// whole call with [ErrLightOutOfBounds] before propagation starts. An
// empty light list or a zero-area grid yields an all-zero result.
func (s *Sweeper) CombineLights(decay *DecayGrid, lights []Light) (*AttenuationGrid, error) {
	out := newAttenuationGrid(decay.width, decay.height)
	if decay.width == 0 || decay.height == 0 || len(lights) == 0 {
		return out, nil
	}
	for _, l := range lights {
		if !decay.contains(l.X, l.Y) {
			return nil, fmt.Errorf("%w: (%d, %d) in %dx%d grid",
				ErrLightOutOfBounds, l.X, l.Y, decay.width, decay.height)
		}
	}

	if len(lights) == 1 {
		out.cells = s.run(decay, lights[0].Y*decay.width+lights[0].X, lights[0].Intensity)
		return out, nil
	}

	Logger().Debug("glow: combining lights",
		"lights", len(lights), "width", decay.width, "height", decay.height)

	grids := make([][]float32, len(lights))
	work := make([]func(), len(lights))
	for i := range lights {
		i := i // Capture for closure
		work[i] = func() {
			l := lights[i]
			grids[i] = s.run(decay, l.Y*decay.width+l.X, l.Intensity)
		}
	}

	pool := parallel.NewWorkerPool(s.workers)
	defer pool.Close()
	pool.ExecuteAll(work)

	for _, g := range grids {
		for i, v := range g {
			if v > out.cells[i] {
				out.cells[i] = v
			}
		}
	}
	return out, nil
}
