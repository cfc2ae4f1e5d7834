package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// ColorAttachment is one color target of a render pass.
type ColorAttachment struct {
	View *wgpu.TextureView
	// Clear is the clear color; nil loads the existing contents.
	Clear *wgpu.Color
}

// DepthAttachment is the depth target of a render pass.
type DepthAttachment struct {
	View *wgpu.TextureView
	// Clear is the depth clear value; nil loads the existing contents.
	Clear *float32
}

// PassDescriptor describes the attachments of one render pass.
type PassDescriptor struct {
	Label string
	Color []ColorAttachment
	Depth *DepthAttachment
}

func (d PassDescriptor) renderPassDescriptor() (*wgpu.RenderPassDescriptor, error) {
	if len(d.Color) == 0 && d.Depth == nil {
		return nil, fmt.Errorf("pass %q: no attachments", d.Label)
	}
	rp := &wgpu.RenderPassDescriptor{
		Label:            d.Label,
		ColorAttachments: make([]wgpu.RenderPassColorAttachment, len(d.Color)),
	}
	for i, c := range d.Color {
		if c.View == nil {
			return nil, fmt.Errorf("pass %q: color attachment %d has no view", d.Label, i)
		}
		a := wgpu.RenderPassColorAttachment{
			View:    c.View,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}
		if c.Clear != nil {
			a.LoadOp = wgpu.LoadOpClear
			a.ClearValue = *c.Clear
		}
		rp.ColorAttachments[i] = a
	}
	if d.Depth != nil {
		if d.Depth.View == nil {
			return nil, fmt.Errorf("pass %q: depth attachment has no view", d.Label)
		}
		a := &wgpu.RenderPassDepthStencilAttachment{
			View:         d.Depth.View,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		}
		if d.Depth.Clear != nil {
			a.DepthLoadOp = wgpu.LoadOpClear
			a.DepthClearValue = *d.Depth.Clear
		}
		rp.DepthStencilAttachment = a
	}
	return rp, nil
}

// Renderer defines the interface for the rendering system.
//
// It owns the GPU device, an optional presentation surface and a cache of built pipelines.
// A frame is recorded as a sequence of passes on one command encoder between BeginFrame and
// EndFrame and submitted once.
type Renderer interface {
	// Headless reports whether the renderer was created without a window.
	Headless() bool

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines builds the GPU pipeline of each given Pipeline and caches it by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// ReleasePipelines frees the GPU pipelines of the given keys and removes them from the cache.
	// Unknown keys are ignored.
	//
	// Parameters:
	//   - keys: the pipeline keys to release
	ReleasePipelines(keys ...string)

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SurfaceFormat returns the presentation surface format, or wgpu.TextureFormatUndefined when headless.
	SurfaceFormat() wgpu.TextureFormat

	// CreateArrayTexture creates a 2D array texture with a whole-array view for sampling and
	// one 2D view per layer for render attachments.
	//
	// Parameters:
	//   - desc: the texture size, layer count, format and usage
	//
	// Returns:
	//   - *ArrayTexture: the texture and its views
	//   - error: an error wrapping the label if creation fails
	CreateArrayTexture(desc ArrayTextureDescriptor) (*ArrayTexture, error)

	// CreateBuffer creates an unmapped GPU buffer.
	//
	// Parameters:
	//   - label: the debug label
	//   - size: the size in bytes
	//   - usage: the buffer usage flags
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: an error wrapping the label if creation fails
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// UploadTexture creates an RGBA8 sRGB texture from tightly packed RGBA pixels.
	//
	// Parameters:
	//   - label: the debug label
	//   - pixels: width*height*4 bytes
	//   - width, height: the texture size
	//
	// Returns:
	//   - *wgpu.Texture: the texture
	//   - *wgpu.TextureView: its default view
	//   - error: an error if the pixels are short or creation fails
	UploadTexture(label string, pixels []byte, width, height uint32) (*wgpu.Texture, *wgpu.TextureView, error)

	// ReadTexture copies one layer of a texture to host memory. It submits its own command
	// buffer and blocks until the GPU has finished the copy.
	//
	// Parameters:
	//   - tex: the source texture, which needs TextureUsageCopySrc
	//   - layer: the array layer
	//   - width, height: the layer size
	//   - bytesPerTexel: the texel size of the texture format
	//
	// Returns:
	//   - []byte: tightly packed rows
	//   - error: an error if the copy or mapping failed
	ReadTexture(tex *wgpu.Texture, layer, width, height, bytesPerTexel uint32) ([]byte, error)

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the bind group of provider. Texture views and samplers must
	// already be set on it; buffers it lacks are created, sized by bufferSizes or by the
	// binding's MinBindingSize.
	//
	// Parameters:
	//   - provider: the provider to complete
	//   - descriptor: the group layout
	//   - bufferSizes: buffer sizes keyed by binding (nil safe)
	//
	// Returns:
	//   - error: an error naming the binding that could not be filled
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error

	// CreateSampler creates a GPU sampler. Zero fields of the staging data fall back to linear filtering
	// and repeat addressing.
	//
	// Parameters:
	//   - label: the debug label
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	//   - error: an error if sampler creation fails
	CreateSampler(label string, samplerStagingData common.SamplerStagingData) (*wgpu.Sampler, error)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// WriteBuffer queues a write into buf. Queued writes land before the next submission.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the byte offset in buf
	//   - data: the bytes to write
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)

	// BeginFrame creates the command encoder of a frame. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if a frame is already open
	BeginFrame() error

	// BeginPass begins a render pass, ending the previous one if it is still open.
	//
	// Parameters:
	//   - desc: the pass attachments
	//
	// Returns:
	//   - error: an error if no frame is open or an attachment has no view
	BeginPass(desc PassDescriptor) error

	// SetPipeline binds a built pipeline on the open pass.
	//
	// Parameters:
	//   - p: the pipeline
	//
	// Returns:
	//   - error: an error if no pass is open or p is not built
	SetPipeline(p pipeline.Pipeline) error

	// SetBindGroup binds the provider's bind group on the open pass.
	//
	// Parameters:
	//   - group: the group index
	//   - provider: the provider holding an initialized bind group
	//
	// Returns:
	//   - error: an error if no pass is open or the provider has no bind group
	SetBindGroup(group int, provider bind_group_provider.BindGroupProvider) error

	// SetMesh binds the provider's vertex buffer and, if present, its uint32 index buffer.
	//
	// Parameters:
	//   - provider: the provider holding the mesh buffers
	//
	// Returns:
	//   - error: an error if no pass is open or the provider has no vertex buffer
	SetMesh(provider bind_group_provider.BindGroupProvider) error

	// Draw records a non-indexed draw on the open pass.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// DrawIndexed records an indexed draw on the open pass.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// EndPass ends the open pass, if any.
	EndPass()

	// CopyBufferToTexture records a buffer-to-texture copy into one texture layer. No pass may be open.
	//
	// Parameters:
	//   - src: the source buffer
	//   - bytesPerRow: the source row pitch, a multiple of CopyRowAlignment
	//   - dst: the destination texture
	//   - layer: the destination layer
	//   - width, height: the copy size in texels
	//
	// Returns:
	//   - error: an error if the copy cannot be recorded
	CopyBufferToTexture(src *wgpu.Buffer, bytesPerRow uint32, dst *wgpu.Texture, layer, width, height uint32) error

	// AcquireSurfaceView acquires the swapchain texture of the open frame.
	//
	// Returns:
	//   - *wgpu.TextureView: the swapchain view
	//   - error: an error if the renderer is headless or acquisition fails
	AcquireSurfaceView() (*wgpu.TextureView, error)

	// EndFrame ends the open pass and submits the frame's command buffer to the GPU.
	// Does not present the surface; call Present() after EndFrame to display the frame.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame. It does nothing if no surface view was acquired.
	Present()

	// Release frees every cached pipeline and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type. A nil window
// creates a headless renderer that renders only into textures it creates.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the platform surface, or nil for headless rendering
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var surfaceDescriptor *wgpu.SurfaceDescriptor
	if window != nil {
		surfaceDescriptor = window.SurfaceDescriptor()
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(surfaceDescriptor, r.forceFallbackAdapter)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	if window != nil {
		r.backend.ConfigureSurface(window.Width(), window.Height())
	}
	return r
}

func (r *renderer) Headless() bool {
	return r.backend.Headless()
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return err
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) ReleasePipelines(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		if p, ok := r.pipelineCache[key]; ok {
			p.Release()
			delete(r.pipelineCache, key)
		}
	}
}

func (r *renderer) CreateArrayTexture(desc ArrayTextureDescriptor) (*ArrayTexture, error) {
	return r.backend.CreateArrayTexture(desc)
}

func (r *renderer) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return r.backend.CreateBuffer(label, size, usage)
}

func (r *renderer) UploadTexture(label string, pixels []byte, width, height uint32) (*wgpu.Texture, *wgpu.TextureView, error) {
	return r.backend.UploadTexture(label, pixels, width, height)
}

func (r *renderer) ReadTexture(tex *wgpu.Texture, layer, width, height, bytesPerTexel uint32) ([]byte, error) {
	return r.backend.ReadTexture(tex, layer, width, height, bytesPerTexel)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferSizes)
}

func (r *renderer) CreateSampler(label string, samplerStagingData common.SamplerStagingData) (*wgpu.Sampler, error) {
	return r.backend.CreateSampler(label, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	r.backend.WriteBuffer(buf, offset, data)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) BeginPass(desc PassDescriptor) error {
	return r.backend.BeginPass(desc)
}

func (r *renderer) SetPipeline(p pipeline.Pipeline) error {
	return r.backend.SetPipeline(p)
}

func (r *renderer) SetBindGroup(group int, provider bind_group_provider.BindGroupProvider) error {
	return r.backend.SetBindGroup(group, provider)
}

func (r *renderer) SetMesh(provider bind_group_provider.BindGroupProvider) error {
	return r.backend.SetMesh(provider)
}

func (r *renderer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	r.backend.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (r *renderer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	r.backend.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (r *renderer) EndPass() {
	r.backend.EndPass()
}

func (r *renderer) CopyBufferToTexture(src *wgpu.Buffer, bytesPerRow uint32, dst *wgpu.Texture, layer, width, height uint32) error {
	return r.backend.CopyBufferToTexture(src, bytesPerRow, dst, layer, width, height)
}

func (r *renderer) AcquireSurfaceView() (*wgpu.TextureView, error) {
	return r.backend.AcquireSurfaceView()
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
