// Package bind_group_provider holds the GPU resources behind one bind group, or
// behind one mesh's vertex and index buffers.
package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

type bindGroupProvider struct {
	label string

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout

	// resources keyed by binding index
	buffers      map[int]*wgpu.Buffer
	textureViews map[int]*wgpu.TextureView
	samplers     map[int]*wgpu.Sampler

	// shared bindings are owned elsewhere (render targets, the material texture
	// cache, the shared eye buffer) and survive Release
	shared map[int]bool

	// mesh providers only
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BindGroupProvider is the resource set a pass binds at one group index, or the
// buffers a mesh draws from.
//
// A pass creates the provider, attaches borrowed views and buffers with the SetShared
// methods, then calls Renderer.InitBindGroup, which creates whatever the layout still
// needs and the bind group itself. Per-frame data goes through Renderer.WriteBuffers.
type BindGroupProvider interface {
	// Release frees every owned resource and forgets the shared ones.
	Release()

	// Label is the debug label GPU objects created for the provider are named after.
	Label() string

	// BindGroup returns the bind group, nil before InitBindGroup.
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was created with.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer at binding, or nil.
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the texture view at binding, or nil.
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the sampler at binding, or nil.
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the mesh vertex buffer, or nil.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the mesh index buffer, or nil.
	IndexBuffer() *wgpu.Buffer

	// IndexCount is the number of indices drawn from IndexBuffer.
	IndexCount() int

	// SetBindGroup stores the bind group created by InitBindGroup.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout stores the layout created by InitBindGroup.
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores an owned buffer. Release frees it.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView stores an owned texture view. Release frees it.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler stores an owned sampler. Release frees it.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding int, s *wgpu.Sampler)

	// SetSharedTextureView stores a borrowed texture view.
	SetSharedTextureView(binding int, tv *wgpu.TextureView)

	// SetSharedBuffer stores a borrowed buffer.
	SetSharedBuffer(binding int, buf *wgpu.Buffer)

	// SetSharedSampler stores a borrowed sampler.
	SetSharedSampler(binding int, s *wgpu.Sampler)

	// Shared reports whether the resource at binding is borrowed.
	Shared(binding int) bool

	// SetVertexBuffer stores the mesh vertex buffer.
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetIndexBuffer stores the mesh index buffer.
	SetIndexBuffer(buf *wgpu.Buffer)

	// SetIndexCount sets the number of indices to draw.
	SetIndexCount(count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty BindGroupProvider.
//
// Parameters:
//   - label: the debug label, used as a prefix for the GPU objects created for it
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string) BindGroupProvider {
	return &bindGroupProvider{
		label:        label,
		shared:       make(map[int]bool),
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
}

// BufferWrite stages bytes for the buffer at Binding of Provider, starting at Offset.
// Passes batch their uniform updates into one Renderer.WriteBuffers call per frame.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

func (p *bindGroupProvider) Label() string                 { return p.label }
func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup     { return p.bindGroup }
func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer     { return p.vertexBuffer }
func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer      { return p.indexBuffer }
func (p *bindGroupProvider) IndexCount() int                { return p.indexCount }
func (p *bindGroupProvider) Shared(binding int) bool        { return p.shared[binding] }
func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer { return p.buffers[binding] }

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup)            { p.bindGroup = bg }
func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) { p.bindGroupLayout = bgl }
func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer)           { p.vertexBuffer = buf }
func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer)            { p.indexBuffer = buf }
func (p *bindGroupProvider) SetIndexCount(count int)                    { p.indexCount = count }

// Taking ownership of a binding clears its shared mark.

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
	delete(p.shared, binding)
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
	delete(p.shared, binding)
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
	delete(p.shared, binding)
}

func (p *bindGroupProvider) SetSharedTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
	p.shared[binding] = true
}

func (p *bindGroupProvider) SetSharedBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
	p.shared[binding] = true
}

func (p *bindGroupProvider) SetSharedSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
	p.shared[binding] = true
}

func (p *bindGroupProvider) Release() {
	releaseOwned(p.textureViews, p.shared)
	releaseOwned(p.samplers, p.shared)
	releaseOwned(p.buffers, p.shared)
	clear(p.shared)

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
}

type releaser interface {
	comparable
	Release()
}

// releaseOwned releases every non-shared, non-nil resource and empties m.
func releaseOwned[T releaser](m map[int]T, shared map[int]bool) {
	var zero T
	for binding, r := range m {
		if r != zero && !shared[binding] {
			r.Release()
		}
	}
	clear(m)
}
