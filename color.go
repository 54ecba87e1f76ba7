package glow

import (
	"fmt"
	"strings"
)

// RGBA is a color with float32 components. Light contributions are
// linear and unbounded above; values only drop back into [0, 1] after
// [Normalize] or export.
type RGBA struct {
	R, G, B, A float32
}

// Common colors.
var (
	Black = RGBA{0, 0, 0, 1}
	White = RGBA{1, 1, 1, 1}
)

// ColoredLight pairs a grid position with a light color and intensity.
// The position feeds the scalar engine; Color and Intensity scale the
// resulting attenuation into an RGBA contribution.
type ColoredLight struct {
	X, Y      int
	Color     RGBA
	Intensity float32
}

// Light returns the scalar engine light for this colored light. The
// seed intensity is always 1; Intensity is applied during
// [ApplyLightColor] instead, keeping attenuation grids normalized.
func (l ColoredLight) Light() Light {
	return Light{X: l.X, Y: l.Y, Intensity: 1}
}

// ColorGrid holds per-cell RGBA values in row-major order.
type ColorGrid struct {
	width  int
	height int
	pixels []RGBA
}

// NewColorGrid creates a width×height grid of black pixels. Negative
// dimensions are clamped to zero.
func NewColorGrid(width, height int) *ColorGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	pixels := make([]RGBA, width*height)
	for i := range pixels {
		pixels[i] = Black
	}
	return &ColorGrid{width: width, height: height, pixels: pixels}
}

// Width returns the grid width in cells.
func (g *ColorGrid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *ColorGrid) Height() int { return g.height }

// At returns the pixel at (x, y). The coordinates must be in bounds.
func (g *ColorGrid) At(x, y int) RGBA { return g.pixels[y*g.width+x] }

// Set replaces the pixel at (x, y). The coordinates must be in bounds.
func (g *ColorGrid) Set(x, y int, c RGBA) { g.pixels[y*g.width+x] = c }

// Pixels returns the backing slice in row-major order.
func (g *ColorGrid) Pixels() []RGBA { return g.pixels }

// String renders the grid as "(r,g,b)" triples, one row per line.
// Intended for debugging small grids.
func (g *ColorGrid) String() string {
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := g.At(x, y)
			fmt.Fprintf(&sb, "(%.1f,%.1f,%.1f) ", c.R, c.G, c.B)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ApplyLightColor converts an attenuation grid into an RGBA
// contribution: each pixel is light.Color scaled by light.Intensity
// and the cell's attenuation. Alpha is always 1.
func ApplyLightColor(att *AttenuationGrid, light ColoredLight) *ColorGrid {
	out := &ColorGrid{
		width:  att.width,
		height: att.height,
		pixels: make([]RGBA, len(att.cells)),
	}
	for i, a := range att.cells {
		s := light.Intensity * a
		out.pixels[i] = RGBA{
			R: light.Color.R * s,
			G: light.Color.G * s,
			B: light.Color.B * s,
			A: 1,
		}
	}
	return out
}

// BlendLights sums light contributions additively. All grids must
// share the shape of the first; alpha stays at 1. An empty slice
// yields an empty grid.
func BlendLights(contributions []*ColorGrid) *ColorGrid {
	if len(contributions) == 0 {
		return &ColorGrid{}
	}
	first := contributions[0]
	out := NewColorGrid(first.width, first.height)
	for _, c := range contributions {
		for i := range out.pixels {
			out.pixels[i].R += c.pixels[i].R
			out.pixels[i].G += c.pixels[i].G
			out.pixels[i].B += c.pixels[i].B
		}
	}
	return out
}
