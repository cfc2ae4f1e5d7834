package pass

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	//go:embed assets/copy_frag.wgsl
	copyFragmentSource string

	//go:embed assets/depth_to_color_frag.wgsl
	depthToColorFragmentSource string
)

const (
	debugCopyPipelineKey  = "pass.debug.copy"
	debugDepthPipelineKey = "pass.debug.depth"
)

// DebugSource selects the intermediate texture copied into the debug target.
type DebugSource int

const (
	DebugSourceNone DebugSource = iota
	DebugSourceScene
	DebugSourceDepth
	DebugSourceBright
	DebugSourceBloom
	DebugSourceLight
	DebugSourceComposite
)

var debugSourceNames = [...]string{"none", "scene", "depth", "bright", "bloom", "volume_light", "composite"}

func (d DebugSource) String() string {
	if d < 0 || int(d) >= len(debugSourceNames) {
		return fmt.Sprintf("DebugSource(%d)", int(d))
	}
	return debugSourceNames[d]
}

// Debug renders one intermediate texture into the RGBA8 debug target: depth through
// a depth-to-grey pass, everything else through a copy.
type Debug struct {
	dev    Device
	target *renderer.ArrayTexture
	copy   pipeline.Pipeline
	depth  pipeline.Pipeline
	groups map[DebugSource]boundGroup
	source DebugSource
}

var _ Pass = &Debug{}

// NewDebug builds the debug pass.
//
// Parameters:
//   - dev: the device
//   - targets: the frame targets, read as sources and written through Debug
//   - shared: the shared sampler
//   - bloom: the bloom target holding the final iteration
//
// Returns:
//   - *Debug: the pass, selecting DebugSourceNone
//   - error: an error if a pipeline or a bind group cannot be created
func NewDebug(dev Device, targets *Targets, shared *Shared, bloom *renderer.ArrayTexture) (*Debug, error) {
	copyFragment, err := shader.NewShader("copy_frag", shader.ShaderTypeFragment, copyFragmentSource)
	if err != nil {
		return nil, err
	}
	depthFragment, err := shader.NewShader("depth_to_color_frag", shader.ShaderTypeFragment, depthToColorFragmentSource)
	if err != nil {
		return nil, err
	}
	d := &Debug{dev: dev, target: targets.Debug, groups: make(map[DebugSource]boundGroup)}
	if d.copy, err = newFullscreenPipeline(dev, debugCopyPipelineKey, copyFragment, DebugFormat); err != nil {
		return nil, err
	}
	if d.depth, err = newFullscreenPipeline(dev, debugDepthPipelineKey, depthFragment, DebugFormat); err != nil {
		d.Release()
		return nil, err
	}

	copies := map[DebugSource]*renderer.ArrayTexture{
		DebugSourceScene:     targets.Color,
		DebugSourceBright:    targets.Bright,
		DebugSourceBloom:     bloom,
		DebugSourceLight:     targets.Light,
		DebugSourceComposite: targets.Composite,
	}
	for src, tex := range copies {
		group, prov, err := textureGroup(dev, d.copy, copyFragment, shader.AnnotationArgSource, "Debug "+src.String(),
			map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgColorTexture: tex.View}, shared.Sampler)
		if err != nil {
			d.Release()
			return nil, err
		}
		d.groups[src] = boundGroup{group, prov}
	}
	group, prov, err := textureGroup(dev, d.depth, depthFragment, shader.AnnotationArgSource, "Debug depth",
		map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgDepthTexture: targets.Depth.View}, nil)
	if err != nil {
		d.Release()
		return nil, err
	}
	d.groups[DebugSourceDepth] = boundGroup{group, prov}
	return d, nil
}

// Name returns "debug".
func (d *Debug) Name() string { return "debug" }

// SetSource selects the texture shown from the next recorded frame on.
func (d *Debug) SetSource(src DebugSource) { d.source = src }

// Source returns the selected texture.
func (d *Debug) Source() DebugSource { return d.source }

func (d *Debug) Prepare(Device, *Frame) error {
	if d.copy == nil {
		return ErrNotInitialized
	}
	return nil
}

// Record draws the selected source. Nothing is recorded for DebugSourceNone, which
// leaves the previous debug image in place.
func (d *Debug) Record(enc Encoder, _ *Frame) error {
	if d.copy == nil {
		return ErrNotInitialized
	}
	if d.source == DebugSourceNone {
		return nil
	}
	g, ok := d.groups[d.source]
	if !ok {
		return fmt.Errorf("debug: unknown source %v", d.source)
	}
	p := d.copy
	if d.source == DebugSourceDepth {
		p = d.depth
	}
	return drawFullscreen(enc, "Debug "+d.source.String(), p, d.target, &opaqueBlack, []boundGroup{g})
}

func (d *Debug) Release() {
	for src, g := range d.groups {
		if g.provider != nil {
			g.provider.Release()
		}
		delete(d.groups, src)
	}
	if d.copy != nil {
		d.dev.ReleasePipelines(d.copy.PipelineKey())
		d.copy = nil
	}
	if d.depth != nil {
		d.dev.ReleasePipelines(d.depth.PipelineKey())
		d.depth = nil
	}
}
