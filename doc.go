// Package glow computes light attenuation over 2D tile grids.
//
// # Overview
//
// glow implements a sweeping-neighbor light propagation model for
// grid-based scenes (roguelikes, tile maps, cellular simulations).
// Each cell of a [DecayGrid] holds an opacity in [0, 1] describing how
// much light that cell absorbs. Placing a [Light] and running a
// [Sweeper] produces an [AttenuationGrid]: the fraction of the light's
// intensity that reaches every cell, with shadows that bend around
// obstacles instead of stopping at straight occlusion lines.
//
// # Quick Start
//
//	import "github.com/gogpu/glow"
//
//	decay := glow.NewUniformDecayGrid(32, 32, 0.1)
//	sw := glow.NewSweeper()
//
//	att, err := sw.Propagate(decay, glow.NewLight(16, 16))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(att.At(16, 16)) // 1.0 at the light itself
//
// # Model
//
// Light spreads from the source cell through four directional sweeps
// (two diagonal scan orders and two vertical ones), each pulling light
// from the neighbors already visited in that order. Two complementary
// sweep sequences run concurrently and merge by per-cell maximum, so
// the result is independent of which pass reaches a cell first.
// Diagonal steps decay faster than orthogonal ones by a configurable
// multiplier (√2 by default, matching Euclidean step length).
//
// # Layers
//
// The core engine is scalar. Color ([RGBA], [ColorGrid]), tone mapping
// ([Normalize]), image export, procedural maps (package mapgen), an
// interactive viewer (package viewer) and a GPU compositing mirror
// (package gpu) are layered on top and can be ignored by callers that
// only need attenuation values.
//
// # Coordinate System
//
// Grids are row-major with origin (0,0) at the top-left. X increases
// right, Y increases down.
package glow

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
