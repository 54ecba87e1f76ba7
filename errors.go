package glow

import "errors"

// Sentinel errors returned by grid constructors and propagation.
// Wrap sites add context; match with [errors.Is].
var (
	// ErrInvalidDimensions is returned when a grid is constructed with a
	// negative width or height.
	ErrInvalidDimensions = errors.New("glow: grid dimensions must be non-negative")

	// ErrShapeMismatch is returned when a cell buffer's length does not
	// equal width*height.
	ErrShapeMismatch = errors.New("glow: cell buffer does not match grid dimensions")

	// ErrLightOutOfBounds is returned when a light's position lies
	// outside the decay grid.
	ErrLightOutOfBounds = errors.New("glow: light position outside grid bounds")
)
