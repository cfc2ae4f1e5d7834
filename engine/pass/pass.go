// Package pass implements the render passes of a stereo frame: the scene G-buffer,
// bright extraction, Kawase bloom, volumetric and surface lighting, the composite,
// the debug views and the uniform texture copy. Every target is a 2D array texture
// with one layer per eye, and every pass records one render pass per layer.
//
// A pass is set up once against a Device, then each frame Prepare uploads its
// per-frame data and Record appends its commands to the frame encoder. Nothing is
// submitted here; the caller submits the whole frame once.
package pass

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/camera"
	"github.com/Carmen-Shannon/oxy-stereo/engine/model"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNotInitialized is returned when a pass is used after Release or before its
// resources exist.
var ErrNotInitialized = errors.New("pass: not initialized")

// Device creates and updates the GPU resources of the passes.
type Device interface {
	SurfaceFormat() wgpu.TextureFormat
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	ReleasePipelines(keys ...string)
	CreateArrayTexture(desc renderer.ArrayTextureDescriptor) (*renderer.ArrayTexture, error)
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)
	UploadTexture(label string, pixels []byte, width, height uint32) (*wgpu.Texture, *wgpu.TextureView, error)
	CreateSampler(label string, samplerStagingData common.SamplerStagingData) (*wgpu.Sampler, error)
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)
}

// Encoder records the commands of one frame.
type Encoder interface {
	BeginPass(desc renderer.PassDescriptor) error
	SetPipeline(p pipeline.Pipeline) error
	SetBindGroup(group int, provider bind_group_provider.BindGroupProvider) error
	SetMesh(provider bind_group_provider.BindGroupProvider) error
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	EndPass()
	CopyBufferToTexture(src *wgpu.Buffer, bytesPerRow uint32, dst *wgpu.Texture, layer, width, height uint32) error
	AcquireSurfaceView() (*wgpu.TextureView, error)
}

// Renderer is everything a pass needs from the renderer.
type Renderer interface {
	Device
	Encoder
}

var _ Renderer = renderer.Renderer(nil)

// Drawable is one mesh instance of the scene.
type Drawable struct {
	WorldFromModel mgl32.Mat4
	Mesh           *model.MeshBinding

	// Material is optional. Without one the mesh is drawn flat white.
	Material material.Material
}

// Frame is the per-frame input shared by every pass.
type Frame struct {
	Camera    camera.Frame
	Drawables []Drawable

	// Lights is the number of lights in the shared light buffer this frame.
	Lights int
}

// Pass is one stage of the frame.
type Pass interface {
	// Name identifies the pass in logs and labels.
	Name() string

	// Prepare uploads the per-frame data of the pass.
	Prepare(dev Device, f *Frame) error

	// Record appends the render passes to the frame encoder.
	Record(enc Encoder, f *Frame) error

	// Release frees every GPU object the pass owns.
	Release()
}
