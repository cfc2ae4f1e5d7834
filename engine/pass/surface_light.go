package pass

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/surface_light_frag.wgsl
var surfaceLightFragmentSource string

const surfaceLightPipelineKey = "pass.surface_light"

// SurfaceLight shades the G-buffer surfaces with every light and adds the result to
// the light target. Normals and positions come from the G-buffer, never from depth.
type SurfaceLight struct {
	dev      Device
	targets  *Targets
	pipeline pipeline.Pipeline
	groups   []boundGroup
}

var _ Pass = &SurfaceLight{}

// NewSurfaceLight builds the deferred surface light pass.
//
// Parameters:
//   - dev: the device
//   - targets: the frame targets
//   - shared: the surface eye and light buffers
//
// Returns:
//   - *SurfaceLight: the pass
//   - error: an error if the pipeline or a bind group cannot be created
func NewSurfaceLight(dev Device, targets *Targets, shared *Shared) (*SurfaceLight, error) {
	fragment, err := shader.NewShader("surface_light_frag", shader.ShaderTypeFragment, surfaceLightFragmentSource)
	if err != nil {
		return nil, err
	}
	p, err := newFullscreenPipeline(dev, surfaceLightPipelineKey, fragment, ColorFormat,
		pipeline.WithBlendState(pipeline.AdditiveColorBlend))
	if err != nil {
		return nil, err
	}
	s := &SurfaceLight{dev: dev, targets: targets, pipeline: p}

	group, prov, err := uniformGroup(dev, p, fragment, shader.AnnotationArgSurfaceEyeBlock, "Surface Light Eyes", shared.SurfaceEyeBuffer, 0)
	if err != nil {
		s.Release()
		return nil, err
	}
	s.groups = append(s.groups, boundGroup{group, prov})
	group, prov, err = uniformGroup(dev, p, fragment, shader.AnnotationArgLightBuffer, "Surface Light Lights", shared.LightBuffer, 0)
	if err != nil {
		s.Release()
		return nil, err
	}
	s.groups = append(s.groups, boundGroup{group, prov})
	group, prov, err = textureGroup(dev, p, fragment, shader.AnnotationArgGBuffer, "Surface Light G-Buffer",
		map[shader.AnnotationArg]*wgpu.TextureView{
			shader.AnnotationArgNormalTexture:       targets.Normal.View,
			shader.AnnotationArgViewPositionTexture: targets.ViewPosition.View,
		}, nil)
	if err != nil {
		s.Release()
		return nil, err
	}
	s.groups = append(s.groups, boundGroup{group, prov})
	return s, nil
}

// Name returns "surface_light".
func (s *SurfaceLight) Name() string { return "surface_light" }

func (s *SurfaceLight) Prepare(Device, *Frame) error {
	if s.pipeline == nil {
		return ErrNotInitialized
	}
	return nil
}

// Record adds the lit surfaces onto the light target. Nothing is recorded for a
// frame without lights.
func (s *SurfaceLight) Record(enc Encoder, f *Frame) error {
	if s.pipeline == nil {
		return ErrNotInitialized
	}
	if f.Lights <= 0 {
		common.Logger().Debug("surface light skipped", "reason", "no lights")
		return nil
	}
	return drawFullscreen(enc, "Surface Light", s.pipeline, s.targets.Light, nil, s.groups)
}

func (s *SurfaceLight) Release() {
	releaseGroups(s.groups)
	s.groups = nil
	if s.pipeline != nil {
		s.dev.ReleasePipelines(s.pipeline.PipelineKey())
		s.pipeline = nil
	}
}
