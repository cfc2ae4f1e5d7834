package pass

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/present_frag.wgsl
var presentFragmentSource string

const presentPipelineKey = "pass.present"

// Presenter draws the eye layers of the composite, or of the debug target while a
// debug source is selected, side by side onto the window surface.
type Presenter struct {
	dev       Device
	pipeline  pipeline.Pipeline
	composite boundGroup
	debug     boundGroup
	showDebug bool
}

var _ Pass = &Presenter{}

// NewPresenter builds the presenter for the configured surface format.
//
// Parameters:
//   - dev: the device, which must have a configured surface
//   - targets: the frame targets
//   - shared: the shared sampler
//
// Returns:
//   - *Presenter: the pass
//   - error: renderer.ErrHeadless without a surface, or a pipeline or bind group error
func NewPresenter(dev Device, targets *Targets, shared *Shared) (*Presenter, error) {
	format := dev.SurfaceFormat()
	if format == wgpu.TextureFormatUndefined {
		return nil, renderer.ErrHeadless
	}
	fragment, err := shader.NewShader("present_frag", shader.ShaderTypeFragment, presentFragmentSource)
	if err != nil {
		return nil, err
	}
	p, err := newFullscreenPipeline(dev, presentPipelineKey, fragment, format)
	if err != nil {
		return nil, err
	}
	pr := &Presenter{dev: dev, pipeline: p}

	group, prov, err := textureGroup(dev, p, fragment, shader.AnnotationArgSource, "Present Composite",
		map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgColorTexture: targets.Composite.View}, shared.Sampler)
	if err != nil {
		pr.Release()
		return nil, err
	}
	pr.composite = boundGroup{group, prov}
	group, prov, err = textureGroup(dev, p, fragment, shader.AnnotationArgSource, "Present Debug",
		map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgColorTexture: targets.Debug.View}, shared.Sampler)
	if err != nil {
		pr.Release()
		return nil, err
	}
	pr.debug = boundGroup{group, prov}
	return pr, nil
}

// Name returns "present".
func (pr *Presenter) Name() string { return "present" }

// ShowDebug switches the presented texture between the debug and composite targets.
func (pr *Presenter) ShowDebug(show bool) { pr.showDebug = show }

func (pr *Presenter) Prepare(Device, *Frame) error {
	if pr.pipeline == nil {
		return ErrNotInitialized
	}
	return nil
}

// Record draws onto the surface texture of the frame. A surface that cannot be
// acquired this frame, for example while minimized, skips the draw.
func (pr *Presenter) Record(enc Encoder, _ *Frame) error {
	if pr.pipeline == nil {
		return ErrNotInitialized
	}
	view, err := enc.AcquireSurfaceView()
	if err != nil {
		if errors.Is(err, renderer.ErrHeadless) {
			return err
		}
		return fmt.Errorf("present: %w", err)
	}
	g := pr.composite
	if pr.showDebug {
		g = pr.debug
	}
	if err := enc.BeginPass(renderer.PassDescriptor{
		Label: "Present",
		Color: []renderer.ColorAttachment{{View: view, Clear: &opaqueBlack}},
	}); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	defer enc.EndPass()
	if err := enc.SetPipeline(pr.pipeline); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	if err := enc.SetBindGroup(g.index, g.provider); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	enc.Draw(3, 1, 0, 0)
	return nil
}

func (pr *Presenter) Release() {
	releaseGroups([]boundGroup{pr.composite, pr.debug})
	pr.composite, pr.debug = boundGroup{}, boundGroup{}
	if pr.pipeline != nil {
		pr.dev.ReleasePipelines(pr.pipeline.PipelineKey())
		pr.pipeline = nil
	}
}
