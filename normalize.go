package glow

// NormalizeMode selects how raw light contributions are mapped into
// displayable [0, 1] values.
type NormalizeMode int

const (
	// NormalizeStandard rescales the whole grid by its global maximum,
	// so the brightest pixel reads exactly 1.
	NormalizeStandard NormalizeMode = iota

	// NormalizeBrightnessLimit clamps per pixel: pixels whose brightest
	// component exceeds the level are scaled down to it, everything else
	// is divided by the level. Preserves local contrast between lights
	// of different strengths.
	NormalizeBrightnessLimit

	// NormalizePerceptual limits per-pixel Rec. 709 luminance to the
	// level, weighting green strongest the way human vision does.
	NormalizePerceptual
)

// String implements fmt.Stringer.
func (m NormalizeMode) String() string {
	switch m {
	case NormalizeStandard:
		return "standard"
	case NormalizeBrightnessLimit:
		return "brightness-limit"
	case NormalizePerceptual:
		return "perceptual"
	default:
		return "unknown"
	}
}

// Rec. 709 luminance weights.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Normalize maps a grid of raw light contributions into [0, 1]
// according to mode. level is the brightness or luminance target for
// the per-pixel modes and is ignored by [NormalizeStandard]. The input
// grid is not modified.
func Normalize(grid *ColorGrid, mode NormalizeMode, level float32) *ColorGrid {
	out := &ColorGrid{
		width:  grid.width,
		height: grid.height,
		pixels: make([]RGBA, len(grid.pixels)),
	}
	copy(out.pixels, grid.pixels)

	switch mode {
	case NormalizeStandard:
		var maxVal float32
		for _, p := range grid.pixels {
			if p.R > maxVal {
				maxVal = p.R
			}
			if p.G > maxVal {
				maxVal = p.G
			}
			if p.B > maxVal {
				maxVal = p.B
			}
		}
		if maxVal <= 0 {
			return out
		}
		scale := 1 / maxVal
		for i := range out.pixels {
			out.pixels[i].R *= scale
			out.pixels[i].G *= scale
			out.pixels[i].B *= scale
		}

	case NormalizeBrightnessLimit:
		for i, p := range grid.pixels {
			maxComp := p.R
			if p.G > maxComp {
				maxComp = p.G
			}
			if p.B > maxComp {
				maxComp = p.B
			}
			var scale float32
			if maxComp > level {
				scale = level / maxComp
			} else {
				scale = 1 / level
			}
			out.pixels[i].R = p.R * scale
			out.pixels[i].G = p.G * scale
			out.pixels[i].B = p.B * scale
		}

	case NormalizePerceptual:
		for i, p := range grid.pixels {
			lum := p.R*lumR + p.G*lumG + p.B*lumB
			switch {
			case lum > level:
				scale := level / lum
				out.pixels[i].R = p.R * scale
				out.pixels[i].G = p.G * scale
				out.pixels[i].B = p.B * scale
			case lum > 0:
				scale := float32(1)
				if level > 1 {
					scale = 1 / level
				}
				out.pixels[i].R = min1(p.R * scale)
				out.pixels[i].G = min1(p.G * scale)
				out.pixels[i].B = min1(p.B * scale)
			}
		}
	}
	return out
}

// NormFactor returns a single multiplicative factor equivalent to
// Normalize for a one-light frame: an attenuation grid whose maximum
// is maxAtt, tinted by color. Fused render paths (package viewer,
// package gpu) multiply each raw value by this factor instead of
// materializing an intermediate color grid.
func NormFactor(maxAtt float32, color RGBA, mode NormalizeMode, level float32) float32 {
	switch mode {
	case NormalizeBrightnessLimit:
		return 1 / level
	case NormalizePerceptual:
		maxLum := maxAtt * (color.R*lumR + color.G*lumG + color.B*lumB)
		if maxLum > 0 {
			return level / maxLum
		}
		return 1
	default:
		maxComp := color.R
		if color.G > maxComp {
			maxComp = color.G
		}
		if color.B > maxComp {
			maxComp = color.B
		}
		maxColored := maxAtt * maxComp
		if maxColored > 0 {
			return 1 / maxColored
		}
		return 1
	}
}

func min1(v float32) float32 {
	if v > 1 {
		return 1
	}
	return v
}
