// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/blend.wgsl
var blendShaderWGSL string

const (
	// blendWorkgroupDim matches @workgroup_size in blend.wgsl.
	blendWorkgroupDim = 8

	blendFenceTimeout = 5 * time.Second

	// uniformsSize is the byte size of BlendUniforms on the GPU.
	uniformsSize = 48
)

// BlendUniforms mirrors the Uniforms struct in blend.wgsl, std140
// layout included.
type BlendUniforms struct {
	// Weights are the bilinear corner weights w00, w10, w01, w11.
	// A single grid uses [1, 0, 0, 0].
	Weights [4]float32

	// Color is the light tint in RGB.
	Color [3]float32

	// NormFactor is the precomputed normalization multiplier
	// (see glow.NormFactor).
	NormFactor float32

	GridWidth  uint32
	GridHeight uint32

	// ApplySRGB enables gamma encoding of the output when 1.
	ApplySRGB uint32

	Padding uint32
}

// toBytes serializes the uniforms little-endian for WriteBuffer.
func (u *BlendUniforms) toBytes() []byte {
	buf := make([]byte, 0, uniformsSize)
	putF32 := func(v float32) {
		bits := math.Float32bits(v)
		buf = append(buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	putU32 := func(v uint32) {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	for _, w := range u.Weights {
		putF32(w)
	}
	for _, c := range u.Color {
		putF32(c)
	}
	putF32(u.NormFactor)
	putU32(u.GridWidth)
	putU32(u.GridHeight)
	putU32(u.ApplySRGB)
	putU32(u.Padding)
	return buf
}

// PackWalls packs wall flags into u32 bit words, bit i%32 of word i/32.
func PackWalls(walls []bool) []uint32 {
	packed := make([]uint32, (len(walls)+31)/32)
	for i, isWall := range walls {
		if isWall {
			packed[i/32] |= 1 << (i % 32)
		}
	}
	return packed
}

// BlendPipeline owns the blend compute shader and its buffers for one
// grid size. Safe for concurrent use; dispatches serialize internally.
type BlendPipeline struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	shaderModule   hal.ShaderModule
	bgLayout       hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	blendPipeline  hal.ComputePipeline
	singlePipeline hal.ComputePipeline

	gridBufs   [4]hal.Buffer
	wallBuf    hal.Buffer
	uniformBuf hal.Buffer
	outputBuf  hal.Buffer

	width, height uint32
	closed        bool
}

// NewBlendPipeline compiles the shader and allocates buffers for a
// width×height grid. The caller owns ctx; the pipeline only borrows
// its device and queue.
func NewBlendPipeline(ctx *Context, width, height uint32) (*BlendPipeline, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("gpu: blend pipeline needs a non-empty grid, got %dx%d", width, height)
	}

	p := &BlendPipeline{
		device: ctx.Device(),
		queue:  ctx.Queue(),
		width:  width,
		height: height,
	}
	if err := p.init(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *BlendPipeline) init() error {
	// Compile WGSL to SPIR-V.
	spirvBytes, err := naga.Compile(blendShaderWGSL)
	if err != nil {
		return fmt.Errorf("gpu: compile blend shader: %w", err)
	}
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	p.shaderModule, err = p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "blend_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("gpu: create shader module: %w", err)
	}

	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}
	p.bgLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "blend_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{
			storageRO(0), // grid0
			storageRO(1), // grid1
			storageRO(2), // grid2
			storageRO(3), // grid3
			storageRO(4), // walls
			{
				Binding:    5, // output
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			},
			{
				Binding:    6, // uniforms
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group layout: %w", err)
	}

	p.pipelineLayout, err = p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "blend_pl",
		BindGroupLayouts: []hal.BindGroupLayout{p.bgLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}

	p.blendPipeline, err = p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "blend_main",
		Layout:  p.pipelineLayout,
		Compute: hal.ComputeState{Module: p.shaderModule, EntryPoint: "blend_main"},
	})
	if err != nil {
		return fmt.Errorf("gpu: create blend pipeline: %w", err)
	}
	p.singlePipeline, err = p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "single_main",
		Layout:  p.pipelineLayout,
		Compute: hal.ComputeState{Module: p.shaderModule, EntryPoint: "single_main"},
	})
	if err != nil {
		return fmt.Errorf("gpu: create single pipeline: %w", err)
	}

	cells := uint64(p.width) * uint64(p.height)
	gridSize := cells * 4
	wallSize := uint64((cells+31)/32) * 4
	outputSize := cells * 4

	for i := range p.gridBufs {
		p.gridBufs[i], err = p.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("blend_grid%d", i),
			Size:  gridSize,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("gpu: create grid buffer %d: %w", i, err)
		}
	}
	p.wallBuf, err = p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blend_walls",
		Size:  wallSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create wall buffer: %w", err)
	}
	p.uniformBuf, err = p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blend_uniforms",
		Size:  uniformsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create uniform buffer: %w", err)
	}
	p.outputBuf, err = p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blend_output",
		Size:  outputSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("gpu: create output buffer: %w", err)
	}

	slogger().Debug("gpu: blend pipeline ready",
		"width", p.width, "height", p.height, "gridBytes", gridSize)
	return nil
}

// UploadGrids writes four attenuation grids for the bilinear blend.
// Each grid must hold width*height cells.
func (p *BlendPipeline) UploadGrids(grids [4][]float32) error {
	cells := int(p.width) * int(p.height)
	for i, g := range grids {
		if len(g) != cells {
			return fmt.Errorf("gpu: grid %d has %d cells, want %d", i, len(g), cells)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, g := range grids {
		if err := p.queue.WriteBuffer(p.gridBufs[i], 0, floatBytes(g)); err != nil {
			return fmt.Errorf("gpu: upload grid %d: %w", i, err)
		}
	}
	return nil
}

// UploadSingle writes one attenuation grid for DispatchSingle.
func (p *BlendPipeline) UploadSingle(grid []float32) error {
	cells := int(p.width) * int(p.height)
	if len(grid) != cells {
		return fmt.Errorf("gpu: grid has %d cells, want %d", len(grid), cells)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.queue.WriteBuffer(p.gridBufs[0], 0, floatBytes(grid)); err != nil {
		return fmt.Errorf("gpu: upload grid: %w", err)
	}
	return nil
}

// UploadWalls writes wall flags, packed 32 cells per word.
func (p *BlendPipeline) UploadWalls(walls []bool) error {
	cells := int(p.width) * int(p.height)
	if len(walls) != cells {
		return fmt.Errorf("gpu: walls has %d cells, want %d", len(walls), cells)
	}
	packed := PackWalls(walls)
	buf := make([]byte, len(packed)*4)
	for i, w := range packed {
		buf[i*4] = byte(w)
		buf[i*4+1] = byte(w >> 8)
		buf[i*4+2] = byte(w >> 16)
		buf[i*4+3] = byte(w >> 24)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.queue.WriteBuffer(p.wallBuf, 0, buf); err != nil {
		return fmt.Errorf("gpu: upload walls: %w", err)
	}
	return nil
}

// UploadUniforms writes the per-frame uniforms. GridWidth and
// GridHeight are forced to the pipeline's dimensions.
func (p *BlendPipeline) UploadUniforms(u BlendUniforms) error {
	u.GridWidth = p.width
	u.GridHeight = p.height
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.queue.WriteBuffer(p.uniformBuf, 0, u.toBytes()); err != nil {
		return fmt.Errorf("gpu: upload uniforms: %w", err)
	}
	return nil
}

// DispatchBlend runs the 4-grid bilinear entry point and waits for
// completion.
func (p *BlendPipeline) DispatchBlend() error {
	return p.dispatch(p.blendPipeline, "blend_main")
}

// DispatchSingle runs the single-grid entry point and waits for
// completion.
func (p *BlendPipeline) DispatchSingle() error {
	return p.dispatch(p.singlePipeline, "single_main")
}

func (p *BlendPipeline) dispatch(pipeline hal.ComputePipeline, label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("gpu: blend pipeline is closed")
	}

	cells := uint64(p.width) * uint64(p.height)
	gridSize := cells * 4
	wallSize := uint64((cells+31)/32) * 4

	bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "blend_bg",
		Layout: p.bgLayout,
		Entries: []gputypes.BindGroupEntry{
			bufEntry(0, p.gridBufs[0], gridSize),
			bufEntry(1, p.gridBufs[1], gridSize),
			bufEntry(2, p.gridBufs[2], gridSize),
			bufEntry(3, p.gridBufs[3], gridSize),
			bufEntry(4, p.wallBuf, wallSize),
			bufEntry(5, p.outputBuf, gridSize),
			bufEntry(6, p.uniformBuf, uniformsSize),
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group: %w", err)
	}

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(
		(p.width+blendWorkgroupDim-1)/blendWorkgroupDim,
		(p.height+blendWorkgroupDim-1)/blendWorkgroupDim,
		1,
	)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	ok, err := p.device.Wait(fence, 1, blendFenceTimeout)
	if err != nil {
		return fmt.Errorf("gpu: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("gpu: GPU timeout after %v", blendFenceTimeout)
	}

	slogger().Debug("gpu: dispatched", "entry", label,
		"workgroupsX", (p.width+blendWorkgroupDim-1)/blendWorkgroupDim,
		"workgroupsY", (p.height+blendWorkgroupDim-1)/blendWorkgroupDim)
	return nil
}

// ReadPixels copies the output buffer back to the CPU: one packed
// 0xAARRGGBB word per cell, row-major.
func (p *BlendPipeline) ReadPixels() ([]uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("gpu: blend pipeline is closed")
	}

	size := uint64(p.width) * uint64(p.height) * 4
	staging, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blend_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer p.device.DestroyBuffer(staging)

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "blend_readback",
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("blend_readback"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(p.outputBuf, staging, []hal.BufferCopy{{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      size,
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("gpu: create fence: %w", err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("gpu: submit readback: %w", err)
	}
	ok, err := p.device.Wait(fence, 1, blendFenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("gpu: wait for readback: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("gpu: readback timeout after %v", blendFenceTimeout)
	}

	readback := make([]byte, size)
	if err := p.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("gpu: read staging buffer: %w", err)
	}

	pixels := make([]uint32, len(readback)/4)
	for i := range pixels {
		pixels[i] = uint32(readback[i*4]) |
			uint32(readback[i*4+1])<<8 |
			uint32(readback[i*4+2])<<16 |
			uint32(readback[i*4+3])<<24
	}
	return pixels, nil
}

// Destroy releases all GPU resources. Safe to call more than once.
func (p *BlendPipeline) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	if p.outputBuf != nil {
		p.device.DestroyBuffer(p.outputBuf)
		p.outputBuf = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.wallBuf != nil {
		p.device.DestroyBuffer(p.wallBuf)
		p.wallBuf = nil
	}
	for i, b := range p.gridBufs {
		if b != nil {
			p.device.DestroyBuffer(b)
			p.gridBufs[i] = nil
		}
	}
	if p.singlePipeline != nil {
		p.device.DestroyComputePipeline(p.singlePipeline)
		p.singlePipeline = nil
	}
	if p.blendPipeline != nil {
		p.device.DestroyComputePipeline(p.blendPipeline)
		p.blendPipeline = nil
	}
	if p.pipelineLayout != nil {
		p.device.DestroyPipelineLayout(p.pipelineLayout)
		p.pipelineLayout = nil
	}
	if p.bgLayout != nil {
		p.device.DestroyBindGroupLayout(p.bgLayout)
		p.bgLayout = nil
	}
	if p.shaderModule != nil {
		p.device.DestroyShaderModule(p.shaderModule)
		p.shaderModule = nil
	}
}

func bufEntry(binding uint32, buf hal.Buffer, size uint64) gputypes.BindGroupEntry {
	return gputypes.BindGroupEntry{
		Binding: binding,
		Resource: gputypes.BufferBinding{
			Buffer: buf.NativeHandle(),
			Offset: 0,
			Size:   size,
		},
	}
}

// blendPixelsCPU evaluates the blend shader arithmetic on the CPU.
// It produces the same packed 0xAARRGGBB words as DispatchBlend and
// backs the equivalence tests.
func blendPixelsCPU(grids [4][]float32, walls []bool, u *BlendUniforms) []uint32 {
	cells := int(u.GridWidth) * int(u.GridHeight)
	out := make([]uint32, cells)
	for i := 0; i < cells; i++ {
		att := grids[0][i]*u.Weights[0] +
			grids[1][i]*u.Weights[1] +
			grids[2][i]*u.Weights[2] +
			grids[3][i]*u.Weights[3]

		r := clamp01(att * u.Color[0] * u.NormFactor)
		g := clamp01(att * u.Color[1] * u.NormFactor)
		b := clamp01(att * u.Color[2] * u.NormFactor)
		if u.ApplySRGB != 0 {
			r = srgbEncode(r)
			g = srgbEncode(g)
			b = srgbEncode(b)
		}

		ri := uint32(r * 255)
		gi := uint32(g * 255)
		bi := uint32(b * 255)
		if walls[i] {
			ri = maxU32(ri, 30)
			gi = maxU32(gi, 30)
			bi = maxU32(bi, 30)
		}
		out[i] = 255<<24 | ri<<16 | gi<<8 | bi
	}
	return out
}

func srgbEncode(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*float32(math.Pow(float64(v), 1.0/2.4)) - 0.055
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func floatBytes(vals []float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		bits := math.Float32bits(v)
		buf[i*4] = byte(bits)
		buf[i*4+1] = byte(bits >> 8)
		buf[i*4+2] = byte(bits >> 16)
		buf[i*4+3] = byte(bits >> 24)
	}
	return buf
}
