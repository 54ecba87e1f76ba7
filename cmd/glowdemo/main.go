// Command glowdemo renders a cave lit by colored lights to a PNG.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gogpu/glow"
	"github.com/gogpu/glow/mapgen"
)

func main() {
	var (
		width     = flag.Int("width", 100, "grid width in cells")
		height    = flag.Int("height", 100, "grid height in cells")
		seed      = flag.Int64("seed", 42, "cave generation seed")
		lights    = flag.Int("lights", 4, "number of lights to place")
		scale     = flag.Int("scale", 8, "output pixels per cell")
		output    = flag.String("output", "glow.png", "output file (.png or .ppm)")
		benchmark = flag.Bool("benchmark", false, "run timing scenarios instead of rendering")
	)
	flag.Parse()

	if *benchmark {
		runBenchmarks()
		return
	}

	decay, walls := mapgen.Cave(mapgen.CaveConfig{
		Width:      *width,
		Height:     *height,
		WallChance: 0.45,
		Smoothing:  5,
		FloorDecay: 0.1,
		WallDecay:  1,
		Seed:       *seed,
	})

	colored := placeLights(decay, walls, *lights, *seed)
	sweeper := glow.NewSweeper()

	img, err := renderScene(sweeper, decay, colored)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	if err := saveOutput(img, decay, *output, *scale); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Rendered %d lights to %s (%dx%d cells)\n",
		len(colored), *output, *width, *height)
}

// placeLights scatters colored lights on floor cells.
func placeLights(decay *glow.DecayGrid, walls []bool, count int, seed int64) []glow.ColoredLight {
	palette := []glow.RGBA{
		{R: 1, G: 0.6, B: 0.2, A: 1}, // torch
		{R: 0.4, G: 0.6, B: 1, A: 1}, // cold blue
		{R: 0.4, G: 1, B: 0.5, A: 1}, // green
		{R: 1, G: 0.3, B: 0.6, A: 1}, // magenta
	}

	rng := rand.New(rand.NewSource(seed + 1))
	w, h := decay.Width(), decay.Height()

	var lights []glow.ColoredLight
	for attempts := 0; len(lights) < count && attempts < count*200; attempts++ {
		x, y := rng.Intn(w), rng.Intn(h)
		if walls[y*w+x] {
			continue
		}
		lights = append(lights, glow.ColoredLight{
			X:         x,
			Y:         y,
			Color:     palette[len(lights)%len(palette)],
			Intensity: 1 + rng.Float32()*2,
		})
	}
	return lights
}

func renderScene(s *glow.Sweeper, decay *glow.DecayGrid, lights []glow.ColoredLight) (*glow.ColorGrid, error) {
	layers := make([]*glow.ColorGrid, 0, len(lights))
	for _, cl := range lights {
		att, err := s.Propagate(decay, cl.Light())
		if err != nil {
			return nil, err
		}
		layers = append(layers, glow.ApplyLightColor(att, cl))
	}
	combined := glow.BlendLights(layers)
	return glow.Normalize(combined, glow.NormalizePerceptual, 1), nil
}

func saveOutput(img *glow.ColorGrid, decay *glow.DecayGrid, path string, scale int) error {
	if len(path) > 4 && path[len(path)-4:] == ".ppm" {
		return img.SavePPMWithWalls(path, scale, decay, 0.5)
	}
	return img.SavePNG(path, scale)
}

// runBenchmarks times the main propagation paths on open grids with a
// wall column, mirroring the package benchmarks but from the CLI.
func runBenchmarks() {
	sweeper := glow.NewSweeper()

	for _, size := range []int{50, 100, 200} {
		decay := benchDecay(size)
		light := glow.NewLight(size/2, size/2)

		start := time.Now()
		const iters = 20
		for i := 0; i < iters; i++ {
			if _, err := sweeper.Propagate(decay, light); err != nil {
				log.Fatalf("propagate %dx%d: %v", size, size, err)
			}
		}
		fmt.Printf("propagate %4dx%-4d  %v/op\n", size, size, time.Since(start)/iters)
	}

	// Subpixel scenario: four propagations plus the bilinear blend.
	decay := benchDecay(100)
	start := time.Now()
	const iters = 20
	for i := 0; i < iters; i++ {
		sweeper.Interpolate(decay, 50.3, 49.7)
	}
	fmt.Printf("interpolate 100x100  %v/op\n", time.Since(start)/iters)

	lights := make([]glow.Light, 8)
	for i := range lights {
		lights[i] = glow.NewLight(10+i*10, 50)
	}
	start = time.Now()
	for i := 0; i < iters; i++ {
		if _, err := sweeper.CombineLights(decay, lights); err != nil {
			log.Fatalf("combine: %v", err)
		}
	}
	fmt.Printf("combine 8 lights     %v/op\n", time.Since(start)/iters)
}

func benchDecay(size int) *glow.DecayGrid {
	cells := make([]float32, size*size)
	for i := range cells {
		cells[i] = 0.1
	}
	for y := 0; y < size; y++ {
		if y == size/2 {
			continue
		}
		cells[y*size+size/3] = 0.9
	}
	grid, err := glow.NewDecayGrid(size, size, cells)
	if err != nil {
		log.Fatalf("build decay grid: %v", err)
	}
	return grid
}
