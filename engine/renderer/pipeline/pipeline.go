// Package pipeline describes render pipelines. A Pipeline holds the shaders and fixed
// function state a pass draws with; the Renderer turns it into a GPU pipeline.
package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type pipeline struct {
	key string

	vertexShader, fragmentShader shader.Shader

	// nil until RegisterPipelines
	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts map[int]wgpu.BindGroupLayoutDescriptor

	colorTargets      []wgpu.TextureFormat
	vertexLayouts     []wgpu.VertexBufferLayout
	depthFormat       wgpu.TextureFormat
	depthCompare      wgpu.CompareFunction
	depthWriteEnabled bool
	cullMode          wgpu.CullMode
	frontFace         wgpu.FrontFace
	blendState        *wgpu.BlendState
}

// Pipeline is a render pipeline description plus, once registered, the GPU pipeline
// built from it. Every pipeline draws triangle lists into all color channels.
type Pipeline interface {
	// PipelineKey is the unique name the Renderer caches the pipeline under.
	PipelineKey() string

	// Shader returns the vertex or fragment shader.
	//
	// Parameters:
	//   - shaderType: the stage
	//
	// Returns:
	//   - shader.Shader: the shader, or nil for an unknown stage
	Shader(shaderType shader.ShaderType) shader.Shader

	// Pipeline returns the GPU pipeline, nil until registered.
	Pipeline() *wgpu.RenderPipeline

	// Built reports whether the GPU pipeline exists.
	Built() bool

	// ColorTargets lists the color attachment formats by @location. Empty means one
	// target in the surface format.
	ColorTargets() []wgpu.TextureFormat

	// VertexLayouts lists explicit vertex buffer layouts. Empty means the layouts
	// reflected from the vertex shader.
	VertexLayouts() []wgpu.VertexBufferLayout

	// DepthFormat is the depth attachment format, undefined when there is none.
	DepthFormat() wgpu.TextureFormat

	DepthCompare() wgpu.CompareFunction
	DepthWriteEnabled() bool
	CullMode() wgpu.CullMode
	FrontFace() wgpu.FrontFace

	// BlendState is applied to every color target. nil disables blending.
	BlendState() *wgpu.BlendState

	// BindGroupLayoutDescriptor returns the vertex and fragment layouts of a group
	// merged, as the pipeline layout was built from them.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the merged descriptor
	//   - bool: false if the pipeline does not use the group or is not built
	BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool)

	// SetBindGroupLayoutDescriptors is called by the Renderer when it builds the pipeline.
	SetBindGroupLayoutDescriptors(layouts map[int]wgpu.BindGroupLayoutDescriptor)

	// SetRenderPipeline is called by the Renderer when it builds the pipeline.
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release frees the GPU pipeline. The description stays, so it can be registered again.
	Release()
}

var _ Pipeline = &pipeline{}

// AdditiveBlend sums color and alpha into the target.
var AdditiveBlend = &wgpu.BlendState{
	Color: additive,
	Alpha: additive,
}

// AdditiveColorBlend sums color into the target and overwrites alpha.
var AdditiveColorBlend = &wgpu.BlendState{
	Color: additive,
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
}

var additive = wgpu.BlendComponent{
	SrcFactor: wgpu.BlendFactorOne,
	DstFactor: wgpu.BlendFactorOne,
	Operation: wgpu.BlendOperationAdd,
}

// NewPipeline describes a render pipeline. Without options it has no depth attachment,
// no blending and no culling. Once a depth format is set it tests GreaterEqual (the
// scene uses reverse depth) and writes depth.
//
// Parameters:
//   - key: the unique pipeline key
//   - opts: the pipeline options
//
// Returns:
//   - Pipeline: the unbuilt pipeline
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:               key,
		depthFormat:       wgpu.TextureFormatUndefined,
		depthCompare:      wgpu.CompareFunctionGreaterEqual,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		frontFace:         wgpu.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string                       { return p.key }
func (p *pipeline) Pipeline() *wgpu.RenderPipeline            { return p.renderPipeline }
func (p *pipeline) Built() bool                               { return p.renderPipeline != nil }
func (p *pipeline) ColorTargets() []wgpu.TextureFormat        { return p.colorTargets }
func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout  { return p.vertexLayouts }
func (p *pipeline) DepthFormat() wgpu.TextureFormat           { return p.depthFormat }
func (p *pipeline) DepthCompare() wgpu.CompareFunction        { return p.depthCompare }
func (p *pipeline) DepthWriteEnabled() bool                   { return p.depthWriteEnabled }
func (p *pipeline) CullMode() wgpu.CullMode                   { return p.cullMode }
func (p *pipeline) FrontFace() wgpu.FrontFace                 { return p.frontFace }
func (p *pipeline) BlendState() *wgpu.BlendState              { return p.blendState }
func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) { p.renderPipeline = rp }

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	}
	return nil
}

func (p *pipeline) BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool) {
	d, ok := p.bindGroupLayouts[group]
	return d, ok
}

func (p *pipeline) SetBindGroupLayoutDescriptors(layouts map[int]wgpu.BindGroupLayoutDescriptor) {
	p.bindGroupLayouts = layouts
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}

// ResolveVertexLayouts returns the explicit vertex layouts of p, or the layouts
// reflected from its vertex shader in argument order.
func ResolveVertexLayouts(p Pipeline) []wgpu.VertexBufferLayout {
	if layouts := p.VertexLayouts(); len(layouts) > 0 {
		return layouts
	}
	vert := p.Shader(shader.ShaderTypeVertex)
	if vert == nil {
		return nil
	}
	var layouts []wgpu.VertexBufferLayout
	for slot := range len(vert.VertexLayouts()) {
		layouts = append(layouts, vert.VertexLayout(slot)...)
	}
	return layouts
}

// CheckVertexInputs reports an error when a @location input of the vertex shader
// has no attribute in the resolved vertex layouts.
func CheckVertexInputs(p Pipeline) error {
	vert := p.Shader(shader.ShaderTypeVertex)
	if vert == nil {
		return fmt.Errorf("pipeline %q: no vertex shader", p.PipelineKey())
	}
	covered := make(map[uint32]bool)
	for _, layout := range ResolveVertexLayouts(p) {
		for _, attr := range layout.Attributes {
			covered[attr.ShaderLocation] = true
		}
	}
	for _, loc := range vert.InputLocations() {
		if !covered[loc] {
			return fmt.Errorf("pipeline %q: vertex input @location(%d) has no vertex attribute", p.PipelineKey(), loc)
		}
	}
	return nil
}
