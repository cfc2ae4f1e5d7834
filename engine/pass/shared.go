package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/camera"
	"github.com/Carmen-Shannon/oxy-stereo/engine/light"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// Shared holds the resources several passes bind: the per-eye uniform blocks, the
// light storage buffer, one linear clamping sampler and the fallback textures.
// Passes reference these from their own bind groups without owning them.
type Shared struct {
	EyeBuffer        *wgpu.Buffer
	SurfaceEyeBuffer *wgpu.Buffer
	LightBuffer      *wgpu.Buffer
	Sampler          *wgpu.Sampler

	// Black is a 1x1 array with one zeroed layer per eye, bound in place of null composite slots.
	Black *renderer.ArrayTexture

	// White is the 1x1 base-color texture of untextured meshes.
	White *material.GPUTexture
}

// NewShared creates the shared resources.
//
// Parameters:
//   - dev: the device
//   - eyes: layer count of the black fallback
//
// Returns:
//   - *Shared: the resources
//   - error: an error if any resource cannot be created
func NewShared(dev Device, eyes int) (*Shared, error) {
	s := &Shared{}
	var eyeBlock camera.GPUEyeBlock
	var surfaceBlock camera.GPUSurfaceEyeBlock

	var err error
	if s.EyeBuffer, err = dev.CreateBuffer("Eye Block", uint64(eyeBlock.Size()), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst); err != nil {
		return nil, s.fail(err)
	}
	if s.SurfaceEyeBuffer, err = dev.CreateBuffer("Surface Eye Block", uint64(surfaceBlock.Size()), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst); err != nil {
		return nil, s.fail(err)
	}
	if s.LightBuffer, err = dev.CreateBuffer("Light Buffer", light.LightBufferSize, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst); err != nil {
		return nil, s.fail(err)
	}
	if s.Sampler, err = dev.CreateSampler("Linear Clamp Sampler", common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
	}); err != nil {
		return nil, s.fail(err)
	}
	if s.Black, err = dev.CreateArrayTexture(renderer.ArrayTextureDescriptor{
		Label:  "Black",
		Width:  1,
		Height: 1,
		Layers: uint32(max(eyes, 1)),
		Format: ColorFormat,
		Usage:  wgpu.TextureUsageTextureBinding,
	}); err != nil {
		return nil, s.fail(err)
	}
	tex, view, err := dev.UploadTexture("White", []byte{255, 255, 255, 255}, 1, 1)
	if err != nil {
		return nil, s.fail(err)
	}
	s.White = &material.GPUTexture{Texture: tex, View: view, Width: 1, Height: 1, Opaque: true}
	return s, nil
}

func (s *Shared) fail(err error) error {
	s.Release()
	return fmt.Errorf("shared resources: %w", err)
}

// Write uploads the eye blocks and the lights of a frame.
//
// Parameters:
//   - dev: the device
//   - f: the camera frame
//   - lights: the frame's lights; entries past light.MaxLights are dropped
//
// Returns:
//   - int: the number of lights written
func (s *Shared) Write(dev Device, f camera.Frame, lights []light.SpotLight) int {
	block := camera.NewGPUEyeBlock(f)
	dev.WriteBuffer(s.EyeBuffer, 0, block.Marshal())
	surface := camera.SurfaceEyeFromScene(block)
	dev.WriteBuffer(s.SurfaceEyeBuffer, 0, surface.Marshal())

	data, n := light.MarshalLights(lights)
	if n < len(lights) {
		common.Logger().Debug("lights dropped", "count", len(lights), "max", light.MaxLights)
	}
	dev.WriteBuffer(s.LightBuffer, 0, data)
	return n
}

// Release frees every shared resource.
func (s *Shared) Release() {
	if s == nil {
		return
	}
	if s.EyeBuffer != nil {
		s.EyeBuffer.Release()
		s.EyeBuffer = nil
	}
	if s.SurfaceEyeBuffer != nil {
		s.SurfaceEyeBuffer.Release()
		s.SurfaceEyeBuffer = nil
	}
	if s.LightBuffer != nil {
		s.LightBuffer.Release()
		s.LightBuffer = nil
	}
	if s.Sampler != nil {
		s.Sampler.Release()
		s.Sampler = nil
	}
	s.Black.Release()
	s.White.Release()
}
