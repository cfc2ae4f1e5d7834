package pipeline

import (
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption configures a Pipeline in NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex stage. Required.
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) { p.vertexShader = s }
}

// WithFragmentShader sets the fragment stage. Required.
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) { p.fragmentShader = s }
}

// WithColorTargets sets the color attachment formats.
//
// Parameters:
//   - formats: one format per fragment output @location, in order
//
// Returns:
//   - PipelineBuilderOption: the option
func WithColorTargets(formats ...wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) { p.colorTargets = formats }
}

// WithDepthFormat adds a depth attachment of the given format.
func WithDepthFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) { p.depthFormat = format }
}

// WithDepthCompare replaces the GreaterEqual depth test.
func WithDepthCompare(compare wgpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) { p.depthCompare = compare }
}

// WithDepthWriteEnabled turns depth writes on or off. The depth test still runs.
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) { p.depthWriteEnabled = enabled }
}

// WithVertexLayout overrides the vertex layouts reflected from the vertex shader.
//
// Parameters:
//   - layouts: one layout per vertex buffer slot
//
// Returns:
//   - PipelineBuilderOption: the option
func WithVertexLayout(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) { p.vertexLayouts = layouts }
}

// WithCullMode sets which faces are culled.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) { p.cullMode = mode }
}

// WithFrontFace sets the winding of front faces.
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) { p.frontFace = frontFace }
}

// WithBlendState blends every color target with blendState.
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) { p.blendState = blendState }
}
