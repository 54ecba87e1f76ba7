package glow

import (
	"fmt"
	"testing"
)

func benchDecay(size int) *DecayGrid {
	cells := make([]float32, size*size)
	for i := range cells {
		cells[i] = 0.1
	}
	// A few walls keep the workload honest.
	for y := size / 4; y < 3*size/4; y++ {
		cells[y*size+size/3] = 0.9
	}
	g, _ := NewDecayGrid(size, size, cells)
	return g
}

func BenchmarkPropagate(b *testing.B) {
	for _, size := range []int{50, 100, 200} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			s := NewSweeper()
			decay := benchDecay(size)
			light := NewLight(size/2, size/2)

			b.ReportAllocs()
			for b.Loop() {
				if _, err := s.Propagate(decay, light); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkInterpolate(b *testing.B) {
	// The 4-corner bilinear path: the cost of smooth light movement.
	s := NewSweeper()
	decay := benchDecay(100)

	b.ReportAllocs()
	for b.Loop() {
		s.Interpolate(decay, 50.3, 49.7)
	}
}

func BenchmarkCombineLights(b *testing.B) {
	for _, n := range []int{2, 4, 8} {
		b.Run(fmt.Sprintf("lights-%d", n), func(b *testing.B) {
			s := NewSweeper()
			decay := benchDecay(100)

			lights := make([]Light, n)
			for i := range lights {
				lights[i] = NewLight(10+(i*80)/n, 50)
			}

			b.ReportAllocs()
			for b.Loop() {
				if _, err := s.CombineLights(decay, lights); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
