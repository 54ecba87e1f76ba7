package glow

import (
	"errors"
	"math"
	"testing"
)

// decayGrid builds a uniform grid and applies per-cell overrides.
func decayGrid(t *testing.T, w, h int, base float32, overrides map[[2]int]float32) *DecayGrid {
	t.Helper()
	cells := make([]float32, w*h)
	for i := range cells {
		cells[i] = base
	}
	for pos, v := range overrides {
		cells[pos[1]*w+pos[0]] = v
	}
	g, err := NewDecayGrid(w, h, cells)
	if err != nil {
		t.Fatalf("NewDecayGrid: %v", err)
	}
	return g
}

func propagate(t *testing.T, s *Sweeper, decay *DecayGrid, light Light) *AttenuationGrid {
	t.Helper()
	att, err := s.Propagate(decay, light)
	if err != nil {
		t.Fatalf("Propagate: %v", err)
	}
	return att
}

func TestSweeper_Defaults(t *testing.T) {
	s := NewSweeper()
	if got, want := s.DiagonalMult(), float32(math.Sqrt2); got != want {
		t.Errorf("DiagonalMult() = %v, want %v", got, want)
	}
}

func TestPropagate_Basic(t *testing.T) {
	s := NewSweeper()
	decay := NewUniformDecayGrid(5, 5, 0.1)

	att := propagate(t, s, decay, NewLight(2, 2))

	// Light source at full intensity.
	if got := att.At(2, 2); got != 1 {
		t.Errorf("source cell = %v, want 1", got)
	}
	// Adjacent cells carry roughly 1 - decay.
	if got := att.At(2, 1); got <= 0.85 || got >= 0.95 {
		t.Errorf("adjacent cell = %v, want in (0.85, 0.95)", got)
	}
}

func TestPropagate_TransparentGridFullyLit(t *testing.T) {
	s := NewSweeper()
	decay := NewUniformDecayGrid(9, 6, 0)

	att := propagate(t, s, decay, NewLight(4, 2))

	for i, v := range att.Cells() {
		if v != 1 {
			t.Fatalf("cell %d = %v, want 1 on a zero-decay grid", i, v)
		}
	}
}

func TestPropagate_Intensity(t *testing.T) {
	s := NewSweeper()
	decay := NewUniformDecayGrid(5, 5, 0.1)

	att := propagate(t, s, decay, Light{X: 2, Y: 2, Intensity: 2})

	if got := att.At(2, 2); got != 2 {
		t.Errorf("source cell = %v, want 2", got)
	}
	// Every other value scales with the seed.
	half := propagate(t, s, decay, NewLight(2, 2))
	for i := range att.Cells() {
		want := 2 * half.Cells()[i]
		if diff := math.Abs(float64(att.Cells()[i] - want)); diff > 1e-5 {
			t.Fatalf("cell %d = %v, want %v", i, att.Cells()[i], want)
		}
	}
}

func TestPropagate_StrongDecayAroundSource(t *testing.T) {
	s := NewSweeper()
	decay := decayGrid(t, 5, 5, 0.1, map[[2]int]float32{
		{1, 2}: 0.6, {3, 2}: 0.6, {2, 1}: 0.6, {2, 3}: 0.6, {1, 1}: 0.6,
	})

	att := propagate(t, s, decay, NewLight(2, 2))

	if got := att.At(2, 2); got != 1 {
		t.Errorf("source cell = %v, want 1 regardless of surrounding decay", got)
	}
}

func TestPropagate_DiagonalBarrierSymmetry(t *testing.T) {
	// Two single-cell barriers placed point-symmetrically around the
	// light. The opposite corners must match: the bidirectional merge
	// removes any dependence on sweep direction.
	s := NewSweeper()
	decay := decayGrid(t, 7, 7, 0.1, map[[2]int]float32{
		{1, 1}: 0.9,
		{5, 5}: 0.9,
	})

	att := propagate(t, s, decay, NewLight(3, 3))

	cornerA := att.At(0, 0)
	cornerB := att.At(6, 6)
	if diff := math.Abs(float64(cornerA - cornerB)); diff >= 0.001 {
		t.Errorf("asymmetry detected: A=%v, B=%v, diff=%v", cornerA, cornerB, diff)
	}
}

func TestPropagate_CavePocket(t *testing.T) {
	// An L-shaped wall with a pocket behind it. Light must bend around
	// the wall into the pocket, dimmer than the open side.
	s := NewSweeper()
	decay := decayGrid(t, 10, 10, 0.1, map[[2]int]float32{
		{6, 1}: 0.9, {6, 2}: 0.9, {6, 3}: 0.9, {6, 4}: 0.9, {6, 5}: 0.9, {6, 6}: 0.9,
		{3, 6}: 0.9, {4, 6}: 0.9, {5, 6}: 0.9,
		{7, 1}: 0.9, {7, 2}: 0.9, {8, 2}: 0.9, {7, 7}: 0.9,
	})

	att := propagate(t, s, decay, NewLight(5, 4))

	nearSource := att.At(4, 4)
	inPocket := att.At(8, 8)
	if inPocket <= 0 {
		t.Error("pocket should receive some light")
	}
	if inPocket >= nearSource {
		t.Errorf("pocket (%v) should be dimmer than near source (%v)", inPocket, nearSource)
	}
}

func TestPropagate_CupSymmetry(t *testing.T) {
	// A cup-shaped enclosure open at the top, light centered inside.
	// Attenuation must mirror left-right around the light column.
	overrides := map[[2]int]float32{}
	for y := 3; y < 11; y++ {
		overrides[[2]int{4, y}] = 1
		overrides[[2]int{10, y}] = 1
	}
	for x := 4; x < 11; x++ {
		overrides[[2]int{x, 10}] = 1
	}

	s := NewSweeper()
	decay := decayGrid(t, 15, 15, 0.1, overrides)
	att := propagate(t, s, decay, NewLight(7, 6))

	var maxDiff float64
	for y := 0; y < 15; y++ {
		for dx := 1; dx <= 7; dx++ {
			leftX := 7 - dx
			if leftX < 0 {
				leftX = 0
			}
			rightX := 7 + dx
			if rightX > 14 {
				rightX = 14
			}
			diff := math.Abs(float64(att.At(leftX, y) - att.At(rightX, y)))
			if diff > maxDiff {
				maxDiff = diff
			}
		}
	}
	if maxDiff >= 0.01 {
		t.Errorf("cup should be symmetric, max diff = %v\n%s", maxDiff, att)
	}
}

func TestPropagate_NeverNegative(t *testing.T) {
	// Fully opaque walls with the √2 diagonal multiplier push
	// decay*mult above 1; values must clamp at zero instead of going
	// negative.
	overrides := map[[2]int]float32{}
	for y := 0; y < 8; y++ {
		overrides[[2]int{4, y}] = 1
	}
	s := NewSweeper()
	decay := decayGrid(t, 9, 8, 0.1, overrides)

	att := propagate(t, s, decay, NewLight(1, 3))

	for i, v := range att.Cells() {
		if v < 0 {
			t.Fatalf("cell %d = %v, attenuation must never be negative", i, v)
		}
		if v > 1 {
			t.Fatalf("cell %d = %v, attenuation must never exceed the seed", i, v)
		}
	}
}

func TestPropagate_Deterministic(t *testing.T) {
	// The forward and reverse passes run concurrently; the merged
	// result must still be identical run to run.
	s := NewSweeper()
	decay := decayGrid(t, 20, 20, 0.15, map[[2]int]float32{
		{5, 5}: 0.9, {6, 5}: 0.9, {7, 5}: 0.9, {12, 14}: 1,
	})

	first := propagate(t, s, decay, NewLight(10, 10))
	for run := 0; run < 10; run++ {
		again := propagate(t, s, decay, NewLight(10, 10))
		for i := range first.Cells() {
			if first.Cells()[i] != again.Cells()[i] {
				t.Fatalf("run %d cell %d: %v != %v",
					run, i, again.Cells()[i], first.Cells()[i])
			}
		}
	}
}

func TestPropagate_DiagonalMultOne(t *testing.T) {
	// With a multiplier of 1 a diagonal step decays exactly like an
	// orthogonal one, so the direct diagonal neighbor matches the
	// direct orthogonal neighbor on a uniform grid.
	s := NewSweeper(WithDiagonalMult(1))
	decay := NewUniformDecayGrid(5, 5, 0.1)

	att := propagate(t, s, decay, NewLight(2, 2))

	if att.At(1, 1) != att.At(1, 2) {
		t.Errorf("diagonal %v != orthogonal %v with mult 1", att.At(1, 1), att.At(1, 2))
	}
}

func TestPropagate_OutOfBounds(t *testing.T) {
	s := NewSweeper()
	decay := NewUniformDecayGrid(5, 5, 0.1)

	tests := []struct {
		name string
		x, y int
	}{
		{"x past width", 5, 2},
		{"y past height", 2, 5},
		{"negative x", -1, 2},
		{"negative y", 2, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Propagate(decay, NewLight(tt.x, tt.y))
			if !errors.Is(err, ErrLightOutOfBounds) {
				t.Errorf("Propagate(%d, %d) error = %v, want ErrLightOutOfBounds",
					tt.x, tt.y, err)
			}
		})
	}
}

func TestPropagate_EmptyGrid(t *testing.T) {
	s := NewSweeper()
	decay, err := NewDecayGrid(0, 0, nil)
	if err != nil {
		t.Fatalf("NewDecayGrid: %v", err)
	}

	att, err := s.Propagate(decay, NewLight(0, 0))
	if err != nil {
		t.Fatalf("Propagate on empty grid: %v", err)
	}
	if len(att.Cells()) != 0 {
		t.Errorf("empty grid should produce empty attenuation, got %d cells", len(att.Cells()))
	}
}

func TestPropagate_SingleCell(t *testing.T) {
	s := NewSweeper()
	decay := NewUniformDecayGrid(1, 1, 0.9)

	att := propagate(t, s, decay, NewLight(0, 0))
	if got := att.At(0, 0); got != 1 {
		t.Errorf("single cell = %v, want 1", got)
	}
}
