package glow

import (
	"fmt"
	"strings"
)

// DecayGrid holds per-cell light decay (opacity) values in row-major
// order. A value of 0 means fully transparent, 1 means the cell absorbs
// all light entering it. The grid is a read-only view: it aliases the
// slice passed to [NewDecayGrid], and the caller must not mutate that
// slice while a propagation is running.
type DecayGrid struct {
	width  int
	height int
	cells  []float32
}

// NewDecayGrid wraps cells as a width×height decay grid. It returns
// [ErrInvalidDimensions] for negative dimensions and [ErrShapeMismatch]
// when len(cells) != width*height. Zero-area grids are valid.
func NewDecayGrid(width, height int, cells []float32) (*DecayGrid, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("%w: %d cells for %dx%d grid (want %d)",
			ErrShapeMismatch, len(cells), width, height, width*height)
	}
	return &DecayGrid{width: width, height: height, cells: cells}, nil
}

// NewUniformDecayGrid creates a width×height grid filled with a single
// decay value. Negative dimensions are clamped to zero.
func NewUniformDecayGrid(width, height int, decay float32) *DecayGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cells := make([]float32, width*height)
	for i := range cells {
		cells[i] = decay
	}
	return &DecayGrid{width: width, height: height, cells: cells}
}

// Width returns the grid width in cells.
func (g *DecayGrid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *DecayGrid) Height() int { return g.height }

// At returns the decay value at (x, y). The coordinates must be in
// bounds.
func (g *DecayGrid) At(x, y int) float32 { return g.cells[y*g.width+x] }

// Cells returns the backing slice in row-major order. The slice is
// shared with the grid, not copied.
func (g *DecayGrid) Cells() []float32 { return g.cells }

func (g *DecayGrid) contains(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// AttenuationGrid holds the result of a propagation: the fraction of a
// light's intensity reaching each cell, row-major. Values are in
// [0, intensity] and a fresh grid is allocated per call, so results
// from concurrent propagations never alias.
type AttenuationGrid struct {
	width  int
	height int
	cells  []float32
}

func newAttenuationGrid(width, height int) *AttenuationGrid {
	return &AttenuationGrid{
		width:  width,
		height: height,
		cells:  make([]float32, width*height),
	}
}

// Width returns the grid width in cells.
func (g *AttenuationGrid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *AttenuationGrid) Height() int { return g.height }

// At returns the attenuation at (x, y). The coordinates must be in
// bounds.
func (g *AttenuationGrid) At(x, y int) float32 { return g.cells[y*g.width+x] }

// Cells returns the backing slice in row-major order.
func (g *AttenuationGrid) Cells() []float32 { return g.cells }

// Max returns the largest attenuation value in the grid, or 0 for an
// empty grid.
func (g *AttenuationGrid) Max() float32 {
	var m float32
	for _, v := range g.cells {
		if v > m {
			m = v
		}
	}
	return m
}

// String renders the grid as fixed-width rows of %.2f values, one row
// per line. Intended for debugging small grids.
func (g *AttenuationGrid) String() string {
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%5.2f", g.At(x, y))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
