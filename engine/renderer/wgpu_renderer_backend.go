package renderer

import (
	"cmp"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface // nil when headless

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)

	// Frame state. Every pass of a frame is recorded on frameEncoder and submitted once by EndFrame.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

// wgpuRendererBackend is the device side of the Renderer. Methods that touch the
// device or the frame state hold the backend lock.
type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue

	// Headless reports whether there is no presentation surface.
	Headless() bool

	// ConfigureSurface (re)configures the swapchain for a new framebuffer size. Zero
	// sizes, as reported for a minimized window, and headless backends are ignored.
	ConfigureSurface(width, height int)

	// SetPresentMode takes effect at the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SurfaceFormat is the swapchain format, undefined until the surface is configured.
	SurfaceFormat() wgpu.TextureFormat

	// RegisterRenderPipeline compiles both stages of p, builds its pipeline layout from
	// the merged reflected bind groups and stores the result on p.
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// CreateArrayTexture creates a 2D array texture with a whole-array view and one view per layer.
	CreateArrayTexture(desc ArrayTextureDescriptor) (*ArrayTexture, error)

	// CreateBuffer creates an unmapped buffer.
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// UploadTexture creates an RGBA8 sRGB texture from tightly packed pixels.
	UploadTexture(label string, pixels []byte, width, height uint32) (*wgpu.Texture, *wgpu.TextureView, error)

	// ReadTexture copies one layer of tex to host memory and waits for the copy.
	//
	// Parameters:
	//   - tex: the source texture, which needs TextureUsageCopySrc
	//   - layer: the array layer to read
	//   - width, height: the layer size in texels
	//   - bytesPerTexel: the texel size of the texture format
	//
	// Returns:
	//   - []byte: tightly packed rows, top row first
	//   - error: an error if the copy or the mapping failed
	ReadTexture(tex *wgpu.Texture, layer, width, height, bytesPerTexel uint32) ([]byte, error)

	// InitMeshBuffers uploads a mesh and stores its buffers on provider. Empty data
	// leaves the matching buffer unset.
	//
	// Parameters:
	//   - provider: the mesh provider
	//   - vertexData: packed vertices
	//   - indexData: packed uint32 indices
	//   - indexCount: the number of indices in indexData
	//
	// Returns:
	//   - error: the first buffer creation error
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the bind group of provider from a layout descriptor. Texture
	// and sampler bindings must already be set; missing buffer bindings are created
	// with uniform or storage usage plus CopyDst.
	//
	// Parameters:
	//   - provider: the provider to complete
	//   - descriptor: the layout, usually from Pipeline.BindGroupLayoutDescriptor
	//   - bufferSizes: sizes of created buffers keyed by binding, defaulting to MinBindingSize (nil safe)
	//
	// Returns:
	//   - error: an error naming the first binding that could not be filled
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error

	// CreateSampler creates a sampler. Zero fields mean linear filtering, repeat addressing
	// and no anisotropy.
	CreateSampler(label string, samplerStagingData common.SamplerStagingData) (*wgpu.Sampler, error)

	// WriteBuffers queues every write whose provider has a buffer at the binding.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// WriteBuffer queues a write of data into buf at offset.
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)

	// BeginFrame opens the command encoder the passes of one frame record into.
	BeginFrame() error

	// BeginPass ends any open pass and begins a render pass on the frame encoder.
	BeginPass(desc PassDescriptor) error

	// SetPipeline binds a built render pipeline on the open pass.
	SetPipeline(p pipeline.Pipeline) error

	// SetBindGroup binds the provider's bind group at the given group index on the open pass.
	SetBindGroup(group int, provider bind_group_provider.BindGroupProvider) error

	// SetMesh binds the provider's vertex buffer to slot 0 and its index buffer as uint32 indices.
	SetMesh(provider bind_group_provider.BindGroupProvider) error

	// Draw records a non-indexed draw on the open pass.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// DrawIndexed records an indexed draw on the open pass.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// EndPass ends the open pass, if any.
	EndPass()

	// CopyBufferToTexture records a copy of height rows of src into one layer of dst.
	//
	// Parameters:
	//   - src: the source buffer, which needs BufferUsageCopySrc
	//   - bytesPerRow: the row pitch of src, a multiple of CopyRowAlignment
	//   - dst: the destination texture, which needs TextureUsageCopyDst
	//   - layer: the destination array layer
	//   - width, height: the copy size in texels
	//
	// Returns:
	//   - error: an error if no frame is open or a pass is still recording
	CopyBufferToTexture(src *wgpu.Buffer, bytesPerRow uint32, dst *wgpu.Texture, layer, width, height uint32) error

	// AcquireSurfaceView returns the swapchain view of the open frame, acquiring it on
	// the first call.
	AcquireSurfaceView() (*wgpu.TextureView, error)

	// EndFrame submits the frame encoder. The swapchain texture stays held until Present.
	EndFrame() error

	// Present shows and releases the swapchain texture acquired this frame, if any.
	Present()

	// Release frees the frame state, the device and the surface.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeImmediate,
		surfaceFormat: wgpu.TextureFormatUndefined,
	}
	if surfaceDescriptor != nil {
		w.surface = w.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	// the scene pass binds three groups, within the default limit of four
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "Stereo Device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: wgpu.DefaultLimits()},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w
}

func (b *wgpuRendererBackendImpl) Headless() bool {
	return b.surface == nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil || width <= 0 || height <= 0 {
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.presentMode = wgpu.PresentModeImmediate
	if mode == PresentModeVSync {
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	key := p.PipelineKey()
	vert, frag := p.Shader(shader.ShaderTypeVertex), p.Shader(shader.ShaderTypeFragment)
	if vert == nil || frag == nil {
		return fmt.Errorf("pipeline %q: needs a vertex and a fragment shader", key)
	}
	if err := pipeline.CheckVertexInputs(p); err != nil {
		return err
	}

	formats := p.ColorTargets()
	if len(formats) == 0 {
		surface := b.SurfaceFormat()
		if surface == wgpu.TextureFormatUndefined {
			return fmt.Errorf("pipeline %q: no color targets and no configured surface", key)
		}
		formats = []wgpu.TextureFormat{surface}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.shaderModule(vert)
	if err != nil {
		return fmt.Errorf("pipeline %q: %w", key, err)
	}
	defer vs.Release()
	fs, err := b.shaderModule(frag)
	if err != nil {
		return fmt.Errorf("pipeline %q: %w", key, err)
	}
	defer fs.Release()

	merged := MergeBindGroupLayouts(vert.BindGroupLayoutDescriptors(), frag.BindGroupLayoutDescriptors())
	layout, err := b.pipelineLayout(key, merged)
	if err != nil {
		return fmt.Errorf("pipeline %q: %w", key, err)
	}
	defer layout.Release()

	buffers := pipeline.ResolveVertexLayouts(p)

	targets := make([]wgpu.ColorTargetState, 0, len(formats))
	for _, format := range formats {
		targets = append(targets, wgpu.ColorTargetState{
			Format:    format,
			Blend:     p.BlendState(),
			WriteMask: wgpu.ColorWriteMaskAll,
		})
	}

	var depth *wgpu.DepthStencilState
	if format := p.DepthFormat(); format != wgpu.TextureFormatUndefined {
		always := wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways}
		depth = &wgpu.DepthStencilState{
			Format:            format,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      p.DepthCompare(),
			StencilFront:      always,
			StencilBack:       always,
		}
	}

	rp, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  key,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vert.EntryPoint(),
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: frag.EntryPoint(),
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample:  wgpu.MultisampleState{Count: 1, Mask: ^uint32(0)},
		DepthStencil: depth,
	})
	if err != nil {
		return fmt.Errorf("pipeline %q: %w", key, err)
	}

	p.SetBindGroupLayoutDescriptors(merged)
	p.SetRenderPipeline(rp)
	return nil
}

func (b *wgpuRendererBackendImpl) shaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	m, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.Source()},
	})
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", s.Key(), err)
	}
	return m, nil
}

// pipelineLayout creates one bind group layout per group index up to the highest
// used. Unused indices below it get an empty layout.
func (b *wgpuRendererBackendImpl) pipelineLayout(label string, groups map[int]wgpu.BindGroupLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	count := 0
	for g := range groups {
		count = max(count, g+1)
	}
	layouts := make([]*wgpu.BindGroupLayout, count)
	defer func() {
		for _, l := range layouts {
			if l != nil {
				l.Release()
			}
		}
	}()
	for g := range layouts {
		desc, ok := groups[g]
		if !ok {
			desc = wgpu.BindGroupLayoutDescriptor{Label: fmt.Sprintf("%s empty group %d", label, g)}
		}
		l, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("group %d layout: %w", g, err)
		}
		layouts[g] = l
	}
	return b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: layouts,
	})
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vb, err := b.uploadBuffer(provider.Label()+" vertices", vertexData, wgpu.BufferUsageVertex)
	if err != nil {
		return err
	}
	if vb != nil {
		provider.SetVertexBuffer(vb)
	}
	ib, err := b.uploadBuffer(provider.Label()+" indices", indexData, wgpu.BufferUsageIndex)
	if err != nil {
		return err
	}
	if ib != nil {
		provider.SetIndexBuffer(ib)
	}
	provider.SetIndexCount(indexCount)
	return nil
}

// uploadBuffer creates a CopyDst buffer holding data. It returns nil for empty data.
func (b *wgpuRendererBackendImpl) uploadBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	if len(data) == 0 {
		return nil, nil
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error {
	if len(descriptor.Entries) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	label := provider.Label()
	entries := make([]wgpu.BindGroupEntry, 0, len(descriptor.Entries))
	for _, le := range descriptor.Entries {
		binding := int(le.Binding)
		entry := wgpu.BindGroupEntry{Binding: le.Binding}
		switch {
		case le.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			if entry.TextureView = provider.TextureView(binding); entry.TextureView == nil {
				return fmt.Errorf("%s: binding %d has no texture view", label, binding)
			}
		case le.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			if entry.Sampler = provider.Sampler(binding); entry.Sampler == nil {
				return fmt.Errorf("%s: binding %d has no sampler", label, binding)
			}
		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				usage := wgpu.BufferUsageStorage
				if le.Buffer.Type == wgpu.BufferBindingTypeUniform {
					usage = wgpu.BufferUsageUniform
				}
				var err error
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s binding %d", label, binding),
					Size:  cmp.Or(bufferSizes[binding], le.Buffer.MinBindingSize),
					Usage: usage | wgpu.BufferUsageCopyDst,
				})
				if err != nil {
					return fmt.Errorf("%s: binding %d: %w", label, binding, err)
				}
				provider.SetBuffer(binding, buf)
			}
			entry.Buffer = buf
			entry.Size = wgpu.WholeSize
		}
		entries = append(entries, entry)
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		if layout, err = b.device.CreateBindGroupLayout(&descriptor); err != nil {
			return fmt.Errorf("%s: layout: %w", label, err)
		}
		provider.SetBindGroupLayout(layout)
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%s: bind group: %w", label, err)
	}
	provider.SetBindGroup(bg)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  cmp.Or(data.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  cmp.Or(data.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  cmp.Or(data.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     cmp.Or(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     cmp.Or(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  cmp.Or(data.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   data.LodMinClamp,
		LodMaxClamp:   cmp.Or(data.LodMaxClamp, 32),
		MaxAnisotropy: cmp.Or(data.MaxAnisotropy, 1),
		Compare:       data.Compare,
	})
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	if buf == nil || len(data) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteBuffer(buf, offset, data)
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder != nil {
		return errors.New("previous frame not yet ended")
	}
	// a surface texture still held means the previous frame was never presented
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "Frame Encoder"})
	if err != nil {
		return err
	}
	b.frameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) BeginPass(desc PassDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("begin pass: no frame")
	}
	rp, err := desc.renderPassDescriptor()
	if err != nil {
		return err
	}
	b.endPass()
	b.framePass = b.frameEncoder.BeginRenderPass(rp)
	return nil
}

func (b *wgpuRendererBackendImpl) SetPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("set pipeline: no open pass")
	}
	if p == nil || !p.Built() {
		return errors.New("set pipeline: pipeline not built")
	}
	b.framePass.SetPipeline(p.Pipeline())
	return nil
}

func (b *wgpuRendererBackendImpl) SetBindGroup(group int, provider bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("set bind group: no open pass")
	}
	if provider == nil || provider.BindGroup() == nil {
		return fmt.Errorf("set bind group %d: no bind group", group)
	}
	b.framePass.SetBindGroup(uint32(group), provider.BindGroup(), nil)
	return nil
}

func (b *wgpuRendererBackendImpl) SetMesh(provider bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("set mesh: no open pass")
	}
	if provider == nil || provider.VertexBuffer() == nil {
		return errors.New("set mesh: no vertex buffer")
	}
	b.framePass.SetVertexBuffer(0, provider.VertexBuffer(), 0, wgpu.WholeSize)
	if provider.IndexBuffer() != nil {
		b.framePass.SetIndexBuffer(provider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (b *wgpuRendererBackendImpl) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (b *wgpuRendererBackendImpl) EndPass() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endPass()
}

func (b *wgpuRendererBackendImpl) endPass() {
	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) CopyBufferToTexture(src *wgpu.Buffer, bytesPerRow uint32, dst *wgpu.Texture, layer, width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.frameEncoder == nil:
		return errors.New("copy buffer to texture: no frame")
	case b.framePass != nil:
		return errors.New("copy buffer to texture: a pass is still recording")
	case src == nil || dst == nil:
		return errors.New("copy buffer to texture: nil source or destination")
	case bytesPerRow%CopyRowAlignment != 0:
		return fmt.Errorf("copy buffer to texture: row pitch %d not a multiple of %d", bytesPerRow, CopyRowAlignment)
	}

	b.frameEncoder.CopyBufferToTexture(
		&wgpu.ImageCopyBuffer{
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: height,
			},
			Buffer: src,
		},
		&wgpu.ImageCopyTexture{
			Texture:  dst,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{Z: layer},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)
	return nil
}

func (b *wgpuRendererBackendImpl) AcquireSurfaceView() (*wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil {
		return nil, ErrHeadless
	}
	if b.frameView != nil {
		return b.frameView, nil
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, err
	}
	b.frameSurface = surfaceTexture
	b.frameView = view
	return view, nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return nil
	}
	b.endPass()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseSurfaceFrame()
		return fmt.Errorf("finish frame: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()
	b.releaseSurfaceFrame()
}

func (b *wgpuRendererBackendImpl) releaseSurfaceFrame() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.endPass()
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseSurfaceFrame()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

// MergeBindGroupLayouts joins the reflected bind groups of a vertex and a fragment
// shader. A binding both stages declare becomes one entry visible to both. Entries
// of every group are ordered by binding.
//
// Parameters:
//   - vertexLayouts: the vertex shader groups
//   - fragmentLayouts: the fragment shader groups
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged groups keyed by index
func MergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, max(len(vertexLayouts), len(fragmentLayouts)))
	for _, stage := range []map[int]wgpu.BindGroupLayoutDescriptor{vertexLayouts, fragmentLayouts} {
		for g, desc := range stage {
			group, seen := merged[g]
			if !seen {
				group.Label = desc.Label
			}
			for _, e := range desc.Entries {
				i := slices.IndexFunc(group.Entries, func(x wgpu.BindGroupLayoutEntry) bool { return x.Binding == e.Binding })
				if i < 0 {
					group.Entries = append(group.Entries, e)
					continue
				}
				group.Entries[i].Visibility |= e.Visibility
			}
			merged[g] = group
		}
	}
	for g, group := range merged {
		slices.SortFunc(group.Entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return cmp.Compare(a.Binding, b.Binding)
		})
		merged[g] = group
	}
	return merged
}
