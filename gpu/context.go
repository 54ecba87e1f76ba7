// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// DeviceHandle provides GPU device access from a host application.
//
// Hosts that already own a device (a gogpu.App, for example) implement
// gpucontext.DeviceProvider and pass it to [NewContextFromHandle], so
// the blend pipeline shares the device instead of opening a second one.
// DeviceHandle is an alias for gpucontext.DeviceProvider, keeping full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// Context bundles the HAL device and queue the blend pipeline runs on.
type Context struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// externalDevice is true when the device came from a host; Close
	// must not destroy a device it does not own.
	externalDevice bool
}

// NewContext opens a standalone Vulkan device, preferring a discrete
// or integrated GPU over software adapters.
func NewContext() (*Context, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	slogger().Info("gpu: device initialized (standalone)", "adapter", selected.Info.Name)

	return &Context{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
	}, nil
}

// NewContextFromHandle wraps a host-provided device. The handle must
// expose HAL types via HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewContextFromHandle(h DeviceHandle) (*Context, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := h.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: device handle does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: device handle HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: device handle HalQueue is not hal.Queue")
	}

	slogger().Info("gpu: using shared device from host")

	return &Context{
		device:         device,
		queue:          queue,
		externalDevice: true,
	}, nil
}

// Device returns the HAL device.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the HAL queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// Close releases the device and instance when the context owns them.
// Shared devices stay alive for the host.
func (c *Context) Close() {
	if c.externalDevice {
		c.device = nil
		c.queue = nil
		return
	}
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
}
