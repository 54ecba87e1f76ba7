// Package viewer holds the display-independent state of the
// interactive light viewer: the editable wall layout, render settings
// and the fused render path that turns a frame's attenuation into
// pixels. The windowing shell lives in cmd/glowview; keeping the state
// here makes it testable without a display.
package viewer

import (
	"math"

	"github.com/gogpu/glow"
)

// Decay adjustment bounds for interactive +/- stepping.
const (
	DecayStep = 0.02
	minDecay  = 0.01
	maxDecay  = 0.5
)

// Config holds the initial viewer settings.
type Config struct {
	// Width and Height are the grid dimensions in cells.
	Width, Height int

	// Scale is the pixel size of a cell on screen.
	Scale int

	// BaseDecay is the decay of open cells; WallDecay of drawn walls.
	BaseDecay, WallDecay float32

	// Color tints the light.
	Color glow.RGBA

	// Mode and Level select the normalization applied per frame.
	Mode  glow.NormalizeMode
	Level float32

	// Subpixel enables 4-grid bilinear blending for smooth light
	// movement.
	Subpixel bool
}

// DefaultConfig returns the standard interactive setup: a 100×100 grid
// with a warm white light and perceptual normalization.
func DefaultConfig() Config {
	return Config{
		Width:     100,
		Height:    100,
		Scale:     8,
		BaseDecay: 0.1,
		WallDecay: 0.6,
		Color:     glow.RGBA{R: 1, G: 0.9, B: 0.7, A: 1},
		Mode:      glow.NormalizePerceptual,
		Level:     1,
		Subpixel:  true,
	}
}

// State is the viewer's mutable model. It is not safe for concurrent
// use; the render loop owns it.
type State struct {
	cfg     Config
	sweeper *glow.Sweeper

	decay []float32
	walls []bool

	// lastToggled debounces wall drawing: the cell most recently
	// toggled while the mouse button is held, -1 once released. Held
	// state lives on the viewer, so two viewers never share it.
	lastToggled int
}

// New creates a viewer state. Walls start empty and every cell carries
// the base decay. The walls slice, when given, seeds the initial
// layout (from mapgen, for example) and must have Width*Height cells.
func New(cfg Config, walls []bool) *State {
	if cfg.Width < 1 {
		cfg.Width = 1
	}
	if cfg.Height < 1 {
		cfg.Height = 1
	}
	if cfg.Scale < 1 {
		cfg.Scale = 1
	}

	s := &State{
		cfg:         cfg,
		sweeper:     glow.NewSweeper(),
		decay:       make([]float32, cfg.Width*cfg.Height),
		walls:       make([]bool, cfg.Width*cfg.Height),
		lastToggled: -1,
	}
	if len(walls) == len(s.walls) {
		copy(s.walls, walls)
	}
	s.rebuildDecay()
	return s
}

// Config returns the current settings, including any interactive decay
// adjustments.
func (s *State) Config() Config { return s.cfg }

// Decay returns the current decay grid.
func (s *State) Decay() *glow.DecayGrid {
	// Cannot fail: decay is sized Width*Height.
	grid, _ := glow.NewDecayGrid(s.cfg.Width, s.cfg.Height, s.decay)
	return grid
}

// IsWall reports whether the cell at (x, y) is a wall.
func (s *State) IsWall(x, y int) bool { return s.walls[y*s.cfg.Width+x] }

// Press handles the draw button being held over the given cell.
// Holding the button over one cell toggles it once; dragging across
// cells toggles each as it is entered, and crossing back re-toggles.
// Out-of-range coordinates are clamped to the grid.
func (s *State) Press(cellX, cellY int) {
	cellX = clampInt(cellX, 0, s.cfg.Width-1)
	cellY = clampInt(cellY, 0, s.cfg.Height-1)
	idx := cellY*s.cfg.Width + cellX
	if idx == s.lastToggled {
		return
	}
	s.toggleWall(idx)
	s.lastToggled = idx
}

// Release handles the draw button being let go, re-arming the cell it
// last toggled.
func (s *State) Release() { s.lastToggled = -1 }

// ToggleWall flips the wall at (x, y) immediately, without debounce.
func (s *State) ToggleWall(x, y int) { s.toggleWall(y*s.cfg.Width + x) }

func (s *State) toggleWall(idx int) {
	s.walls[idx] = !s.walls[idx]
	if s.walls[idx] {
		s.decay[idx] = s.cfg.WallDecay
	} else {
		s.decay[idx] = s.cfg.BaseDecay
	}
}

// ClearWalls removes every wall and restores the base decay.
func (s *State) ClearWalls() {
	for i := range s.walls {
		s.walls[i] = false
		s.decay[i] = s.cfg.BaseDecay
	}
}

// AdjustDecay steps the base decay by delta, clamped to [0.01, 0.5].
// Wall cells keep their decay. Returns the new base decay.
func (s *State) AdjustDecay(delta float32) float32 {
	d := s.cfg.BaseDecay + delta
	if d < minDecay {
		d = minDecay
	}
	if d > maxDecay {
		d = maxDecay
	}
	s.cfg.BaseDecay = d
	s.rebuildDecay()
	return d
}

func (s *State) rebuildDecay() {
	for i := range s.decay {
		if s.walls[i] {
			s.decay[i] = s.cfg.WallDecay
		} else {
			s.decay[i] = s.cfg.BaseDecay
		}
	}
}

// SetColor changes the light tint.
func (s *State) SetColor(c glow.RGBA) { s.cfg.Color = c }

// SetMode changes the normalization mode.
func (s *State) SetMode(m glow.NormalizeMode) { s.cfg.Mode = m }

// ToggleSubpixel flips bilinear blending and returns the new setting.
func (s *State) ToggleSubpixel() bool {
	s.cfg.Subpixel = !s.cfg.Subpixel
	return s.cfg.Subpixel
}

// Frame computes the attenuation for a light at the given fractional
// cell position. With subpixel blending enabled the position is
// interpolated bilinearly; otherwise it snaps to the nearest cell.
func (s *State) Frame(x, y float64) *glow.AttenuationGrid {
	decay := s.Decay()
	if s.cfg.Subpixel {
		return s.sweeper.Interpolate(decay, x, y)
	}
	cx := clampInt(int(math.Round(x)), 0, s.cfg.Width-1)
	cy := clampInt(int(math.Round(y)), 0, s.cfg.Height-1)
	// Cannot fail: the position is clamped to the grid.
	att, _ := s.sweeper.Propagate(decay, glow.NewLight(cx, cy))
	return att
}

// RenderRGBA writes a frame into dst as RGBA bytes at cell resolution
// (Width*Height*4 bytes). Color, normalization and the wall tint fuse
// into one pass over the grid; scaling up to screen size is the
// shell's job. dst must be exactly the right length.
func (s *State) RenderRGBA(att *glow.AttenuationGrid, dst []byte) {
	factor := glow.NormFactor(att.Max(), s.cfg.Color, s.cfg.Mode, s.cfg.Level)

	cells := att.Cells()
	for i, a := range cells {
		r := toByte(s.cfg.Color.R * a * factor)
		g := toByte(s.cfg.Color.G * a * factor)
		b := toByte(s.cfg.Color.B * a * factor)
		if s.walls[i] {
			// Walls stay faintly visible even in darkness.
			r = maxByte(r, 30)
			g = maxByte(g, 30)
			b = maxByte(b, 30)
		}
		o := i * 4
		dst[o] = r
		dst[o+1] = g
		dst[o+2] = b
		dst[o+3] = 255
	}
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

func maxByte(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
