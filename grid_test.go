package glow

import (
	"errors"
	"strings"
	"testing"
)

func TestNewDecayGrid(t *testing.T) {
	cells := make([]float32, 12)
	g, err := NewDecayGrid(4, 3, cells)
	if err != nil {
		t.Fatalf("NewDecayGrid: %v", err)
	}
	if g.Width() != 4 || g.Height() != 3 {
		t.Errorf("dimensions = %dx%d, want 4x3", g.Width(), g.Height())
	}
}

func TestNewDecayGrid_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		cells int
	}{
		{"too few cells", 4, 3, 11},
		{"too many cells", 4, 3, 13},
		{"cells for empty grid", 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecayGrid(tt.w, tt.h, make([]float32, tt.cells))
			if !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("error = %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestNewDecayGrid_NegativeDimensions(t *testing.T) {
	_, err := NewDecayGrid(-1, 3, nil)
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("error = %v, want ErrInvalidDimensions", err)
	}
	_, err = NewDecayGrid(3, -1, nil)
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("error = %v, want ErrInvalidDimensions", err)
	}
}

func TestNewDecayGrid_Empty(t *testing.T) {
	g, err := NewDecayGrid(0, 5, nil)
	if err != nil {
		t.Fatalf("zero-width grid should be valid: %v", err)
	}
	if g.Width() != 0 || g.Height() != 5 {
		t.Errorf("dimensions = %dx%d, want 0x5", g.Width(), g.Height())
	}
}

func TestNewDecayGrid_AliasesCells(t *testing.T) {
	cells := make([]float32, 4)
	g, err := NewDecayGrid(2, 2, cells)
	if err != nil {
		t.Fatalf("NewDecayGrid: %v", err)
	}

	// The grid is a view, not a copy: edits to the caller's slice show
	// through.
	cells[3] = 0.7
	if g.At(1, 1) != 0.7 {
		t.Errorf("At(1,1) = %v, want 0.7", g.At(1, 1))
	}
}

func TestNewUniformDecayGrid(t *testing.T) {
	g := NewUniformDecayGrid(3, 2, 0.25)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if g.At(x, y) != 0.25 {
				t.Fatalf("At(%d,%d) = %v, want 0.25", x, y, g.At(x, y))
			}
		}
	}
}

func TestNewUniformDecayGrid_ClampsNegative(t *testing.T) {
	g := NewUniformDecayGrid(-2, -3, 0.5)
	if g.Width() != 0 || g.Height() != 0 {
		t.Errorf("dimensions = %dx%d, want 0x0", g.Width(), g.Height())
	}
}

func TestDecayGrid_RowMajorIndexing(t *testing.T) {
	cells := []float32{
		0.0, 0.1, 0.2,
		0.3, 0.4, 0.5,
	}
	g, err := NewDecayGrid(3, 2, cells)
	if err != nil {
		t.Fatalf("NewDecayGrid: %v", err)
	}
	if g.At(2, 0) != 0.2 {
		t.Errorf("At(2,0) = %v, want 0.2", g.At(2, 0))
	}
	if g.At(0, 1) != 0.3 {
		t.Errorf("At(0,1) = %v, want 0.3", g.At(0, 1))
	}
}

func TestAttenuationGrid_Max(t *testing.T) {
	s := NewSweeper()
	att, err := s.Propagate(NewUniformDecayGrid(5, 5, 0.2), NewLight(2, 2))
	if err != nil {
		t.Fatalf("Propagate: %v", err)
	}
	if att.Max() != 1 {
		t.Errorf("Max() = %v, want 1", att.Max())
	}

	empty, err := s.Propagate(NewUniformDecayGrid(0, 0, 0), NewLight(0, 0))
	if err != nil {
		t.Fatalf("Propagate: %v", err)
	}
	if empty.Max() != 0 {
		t.Errorf("empty Max() = %v, want 0", empty.Max())
	}
}

func TestAttenuationGrid_String(t *testing.T) {
	s := NewSweeper()
	att, err := s.Propagate(NewUniformDecayGrid(3, 2, 0.1), NewLight(1, 0))
	if err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	out := att.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("String() has %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "1.00") {
		t.Errorf("first row should contain the source value 1.00:\n%s", out)
	}
}
