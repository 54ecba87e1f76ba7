package glow

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// toByte maps a [0, 1] value to a display byte, clamping out-of-range
// input.
func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

// ToImage converts the grid to an opaque image.RGBA at cell
// resolution. Values are expected in [0, 1]; run [Normalize] first for
// raw light contributions.
func (g *ColorGrid) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.width, g.height))
	for i, p := range g.pixels {
		o := i * 4
		img.Pix[o] = toByte(p.R)
		img.Pix[o+1] = toByte(p.G)
		img.Pix[o+2] = toByte(p.B)
		img.Pix[o+3] = 255
	}
	return img
}

// ToImageScaled converts the grid to an image magnified by an integer
// factor, replicating each cell as a scale×scale block. A scale of 1
// (or less) is equivalent to [ColorGrid.ToImage].
func (g *ColorGrid) ToImageScaled(scale int) *image.RGBA {
	src := g.ToImage()
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, g.width*scale, g.height*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// SavePNG writes the grid to a PNG file, magnified by scale.
func (g *ColorGrid) SavePNG(path string, scale int) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	if err := png.Encode(f, g.ToImageScaled(scale)); err != nil {
		return err
	}
	return f.Close()
}

// SavePPM writes the grid as a plain-text PPM (P3) file, magnified by
// scale. Values are expected in [0, 1].
func (g *ColorGrid) SavePPM(path string, scale int) error {
	return g.SavePPMWithWalls(path, scale, nil, 0)
}

// SavePPMWithWalls writes the grid as a PPM file with wall cells drawn
// as gray. A cell is a wall when its decay value meets wallThreshold.
// Pass a nil decay grid to skip the overlay.
func (g *ColorGrid) SavePPMWithWalls(path string, scale int, decay *DecayGrid, wallThreshold float32) error {
	if decay != nil && (decay.width != g.width || decay.height != g.height) {
		return fmt.Errorf("%w: decay %dx%d vs color %dx%d",
			ErrShapeMismatch, decay.width, decay.height, g.width, g.height)
	}
	if scale < 1 {
		scale = 1
	}

	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	w := bufio.NewWriter(f)
	imgW, imgH := g.width*scale, g.height*scale
	fmt.Fprintln(w, "P3")
	fmt.Fprintln(w, imgW, imgH)
	fmt.Fprintln(w, "255")

	const wallGray = 64
	for imgY := 0; imgY < imgH; imgY++ {
		for imgX := 0; imgX < imgW; imgX++ {
			x, y := imgX/scale, imgY/scale
			var r, gb, b uint8
			if decay != nil && decay.At(x, y) >= wallThreshold {
				r, gb, b = wallGray, wallGray, wallGray
			} else {
				p := g.At(x, y)
				r, gb, b = toByte(p.R), toByte(p.G), toByte(p.B)
			}
			fmt.Fprintf(w, "%d %d %d ", r, gb, b)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
