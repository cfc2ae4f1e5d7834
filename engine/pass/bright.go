package pass

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/bright_frag.wgsl
var brightFragmentSource string

const brightPipelineKey = "pass.bright"

// Bright extracts the color above a soft luminance threshold into the half
// resolution bright target, the source of the bloom chain.
type Bright struct {
	dev      Device
	targets  *Targets
	pipeline pipeline.Pipeline
	groups   []boundGroup
	params   bind_group_provider.BindGroupProvider
	values   effect.BrightParams
	dirty    bool
}

var _ Pass = &Bright{}

// NewBright builds the bright-extraction pass reading the scene color target.
//
// Parameters:
//   - dev: the device
//   - targets: the frame targets
//   - shared: the shared sampler
//   - params: threshold and knee
//
// Returns:
//   - *Bright: the pass
//   - error: an error if the pipeline or a bind group cannot be created
func NewBright(dev Device, targets *Targets, shared *Shared, params effect.BrightParams) (*Bright, error) {
	fragment, err := shader.NewShader("bright_frag", shader.ShaderTypeFragment, brightFragmentSource)
	if err != nil {
		return nil, err
	}
	p, err := newFullscreenPipeline(dev, brightPipelineKey, fragment, ColorFormat)
	if err != nil {
		return nil, err
	}
	b := &Bright{dev: dev, targets: targets, pipeline: p, values: params, dirty: true}

	var gpu effect.GPUBrightParams
	group, prov, err := uniformGroup(dev, p, fragment, shader.AnnotationArgBrightParams, "Bright Params", nil, uint64(gpu.Size()))
	if err != nil {
		b.Release()
		return nil, err
	}
	b.groups = append(b.groups, boundGroup{group, prov})
	b.params = prov

	group, prov, err = textureGroup(dev, p, fragment, shader.AnnotationArgSource, "Bright Source",
		map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgColorTexture: targets.Color.View}, shared.Sampler)
	if err != nil {
		b.Release()
		return nil, err
	}
	b.groups = append(b.groups, boundGroup{group, prov})
	return b, nil
}

// Name returns "bright".
func (b *Bright) Name() string { return "bright" }

// SetParams changes the threshold and knee from the next frame on.
func (b *Bright) SetParams(params effect.BrightParams) {
	b.values = params
	b.dirty = true
}

// Params returns the current threshold and knee.
func (b *Bright) Params() effect.BrightParams { return b.values }

func (b *Bright) Prepare(dev Device, _ *Frame) error {
	if b.pipeline == nil {
		return ErrNotInitialized
	}
	if !b.dirty {
		return nil
	}
	gpu := effect.NewGPUBrightParams(b.values)
	dev.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: b.params, Binding: 0, Data: gpu.Marshal()}})
	b.dirty = false
	return nil
}

func (b *Bright) Record(enc Encoder, _ *Frame) error {
	if b.pipeline == nil {
		return ErrNotInitialized
	}
	return drawFullscreen(enc, "Bright", b.pipeline, b.targets.Bright, &opaqueBlack, b.groups)
}

func (b *Bright) Release() {
	releaseGroups(b.groups)
	b.groups = nil
	if b.pipeline != nil {
		b.dev.ReleasePipelines(b.pipeline.PipelineKey())
		b.pipeline = nil
	}
}
