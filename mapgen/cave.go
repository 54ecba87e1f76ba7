// Package mapgen generates decay grids for the lighting engine using
// cellular automata.
package mapgen

import (
	"math/rand"

	"github.com/gogpu/glow"
)

// CaveConfig controls cave generation.
type CaveConfig struct {
	// Width and Height are the grid dimensions in cells. Non-positive
	// values are clamped to 1.
	Width, Height int

	// WallChance is the probability that a cell starts as wall before
	// smoothing.
	WallChance float64

	// Smoothing is the number of cellular automaton passes. Each pass
	// turns a cell into wall when five or more cells in its 3x3
	// neighborhood are walls, floor otherwise.
	Smoothing int

	// FloorDecay and WallDecay are the decay values written for floor
	// and wall cells.
	FloorDecay, WallDecay float32

	// Seed drives the initial noise. The same config always produces
	// the same cave.
	Seed int64
}

// DefaultCaveConfig returns a config producing open caverns with solid
// walls.
func DefaultCaveConfig(width, height int) CaveConfig {
	return CaveConfig{
		Width:      width,
		Height:     height,
		WallChance: 0.45,
		Smoothing:  5,
		FloorDecay: 0.1,
		WallDecay:  1,
	}
}

// Cave generates a cave-like decay grid. The second return value marks
// wall cells, matching the grid cell for cell; viewers use it to tint
// walls without re-deriving thresholds. The outer border is always
// wall.
func Cave(cfg CaveConfig) (*glow.DecayGrid, []bool) {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	cur := make([]bool, w*h)
	next := make([]bool, w*h)
	for i := range cur {
		cur[i] = rng.Float64() < cfg.WallChance
	}
	sealBorder(cur, w, h)

	for pass := 0; pass < cfg.Smoothing; pass++ {
		step(cur, next, w, h)
		cur, next = next, cur
		sealBorder(cur, w, h)
	}

	cells := make([]float32, w*h)
	for i, wall := range cur {
		if wall {
			cells[i] = cfg.WallDecay
		} else {
			cells[i] = cfg.FloorDecay
		}
	}

	glow.Logger().Debug("mapgen: cave generated",
		"width", w, "height", h, "seed", cfg.Seed, "passes", cfg.Smoothing)

	// Cannot fail: cells is sized w*h with non-negative dimensions.
	grid, _ := glow.NewDecayGrid(w, h, cells)
	return grid, cur
}

// step runs one automaton pass from cur into next. Cells outside the
// grid count as walls, which pulls the cave away from the edges.
func step(cur, next []bool, w, h int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			walls := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						walls++
					} else if cur[ny*w+nx] {
						walls++
					}
				}
			}
			// The cell itself counts toward the 3x3 total.
			next[y*w+x] = walls >= 5
		}
	}
}

func sealBorder(cells []bool, w, h int) {
	for x := 0; x < w; x++ {
		cells[x] = true
		cells[(h-1)*w+x] = true
	}
	for y := 0; y < h; y++ {
		cells[y*w] = true
		cells[y*w+w-1] = true
	}
}
