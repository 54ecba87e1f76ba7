package glow

import (
	"math"

	"github.com/gogpu/glow/internal/parallel"
)

// Interpolate computes attenuation for a light at a fractional grid
// position. It propagates from the four integer cells surrounding
// (x, y) and blends the resulting grids bilinearly, so a light sliding
// across the grid brightens smoothly instead of snapping cell to cell.
//
// Positions outside the grid are clamped to the nearest edge cell. At
// exact integer coordinates only one corner carries weight and the
// result equals [Sweeper.Propagate] for that cell. A zero-area grid
// yields an empty result.
func (s *Sweeper) Interpolate(decay *DecayGrid, x, y float64) *AttenuationGrid {
	w, h := decay.width, decay.height
	out := &AttenuationGrid{width: w, height: h}
	if w == 0 || h == 0 {
		return out
	}

	cx := clampFloat(x, 0, float64(w-1))
	cy := clampFloat(y, 0, float64(h-1))
	x0 := int(math.Floor(cx))
	y0 := int(math.Floor(cy))
	fx := float32(cx - math.Floor(cx))
	fy := float32(cy - math.Floor(cy))
	x1 := x0 + 1
	if x1 > w-1 {
		x1 = w - 1
	}
	y1 := y0 + 1
	if y1 > h-1 {
		y1 = h - 1
	}

	seeds := [4]int{
		y0*w + x0,
		y0*w + x1,
		y1*w + x0,
		y1*w + x1,
	}
	weights := [4]float32{
		(1 - fx) * (1 - fy),
		fx * (1 - fy),
		(1 - fx) * fy,
		fx * fy,
	}

	var grids [4][]float32
	work := make([]func(), len(seeds))
	for i := range seeds {
		i := i // Capture for closure
		work[i] = func() {
			grids[i] = s.run(decay, seeds[i], 1)
		}
	}
	pool := parallel.NewWorkerPool(s.workers)
	defer pool.Close()
	pool.ExecuteAll(work)

	// Weighted blend. At integer positions three weights are exactly
	// zero, so the blend reproduces the single-corner grid bit for bit.
	cells := make([]float32, w*h)
	for i := range cells {
		cells[i] = weights[0]*grids[0][i] +
			weights[1]*grids[1][i] +
			weights[2]*grids[2][i] +
			weights[3]*grids[3][i]
	}
	out.cells = cells
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
