package glow

// Light is a point light source on the grid. X and Y are cell
// coordinates; Intensity is the value seeded into the source cell
// before sweeping, typically 1.
type Light struct {
	X, Y      int
	Intensity float32
}

// NewLight returns a light at (x, y) with intensity 1.
func NewLight(x, y int) Light {
	return Light{X: x, Y: y, Intensity: 1}
}
