// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu mirrors the viewer's blend and normalize arithmetic on
// the GPU as a compute pass.
//
// The scalar sweeps stay on the CPU: their sequential data dependence
// fits badly on wide hardware. What the GPU takes over is everything
// per-pixel after the sweeps: the 4-grid bilinear blend, color and
// normalization, optional sRGB encoding and the wall tint, producing
// packed pixels without a CPU pass over the grid.
//
// A [Context] either opens its own Vulkan device or borrows one from a
// host application through [DeviceHandle]. [BlendPipeline] owns the
// shader, buffers and the two entry points (4-grid blend and single
// grid). The package compiles out under the nogpu build tag.
package gpu
