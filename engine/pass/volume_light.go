package pass

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/light"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	//go:embed assets/volume_light_vert.wgsl
	volumeLightVertexSource string

	//go:embed assets/volume_light_frag.wgsl
	volumeLightFragmentSource string
)

const volumeLightPipelineKey = "pass.volume_light"

// VolumeLight accumulates the light scattered inside each spot light cone. Every
// light is drawn as an instance of one cone mesh, depth tested against the scene
// and blended additively into the light target.
//
// The pass always clears the light target, so it runs before SurfaceLight.
type VolumeLight struct {
	dev      Device
	targets  *Targets
	pipeline pipeline.Pipeline
	cone     bind_group_provider.BindGroupProvider
	count    uint32
	groups   []boundGroup
}

var _ Pass = &VolumeLight{}

// NewVolumeLight builds the volumetric light pass and uploads the cone mesh.
//
// Parameters:
//   - dev: the device
//   - targets: the frame targets
//   - shared: the eye and light buffers
//
// Returns:
//   - *VolumeLight: the pass
//   - error: an error if the pipeline, the mesh or a bind group cannot be created
func NewVolumeLight(dev Device, targets *Targets, shared *Shared) (*VolumeLight, error) {
	vertex, err := shader.NewShader("volume_light_vert", shader.ShaderTypeVertex, volumeLightVertexSource)
	if err != nil {
		return nil, err
	}
	fragment, err := shader.NewShader("volume_light_frag", shader.ShaderTypeFragment, volumeLightFragmentSource)
	if err != nil {
		return nil, err
	}
	p := pipeline.NewPipeline(volumeLightPipelineKey,
		pipeline.WithVertexShader(vertex),
		pipeline.WithFragmentShader(fragment),
		pipeline.WithVertexLayout(light.ConeVertexLayout()),
		pipeline.WithColorTargets(ColorFormat),
		pipeline.WithDepthFormat(DepthFormat),
		pipeline.WithDepthCompare(wgpu.CompareFunctionGreaterEqual),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithBlendState(pipeline.AdditiveBlend),
		pipeline.WithCullMode(wgpu.CullModeBack),
	)
	if err := dev.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", volumeLightPipelineKey, err)
	}
	v := &VolumeLight{dev: dev, targets: targets, pipeline: p}

	vertices, indices, count := light.ConeMeshBytes()
	v.cone = bind_group_provider.NewBindGroupProvider("Light Cone Mesh")
	if err := dev.InitMeshBuffers(v.cone, vertices, indices, int(count)); err != nil {
		v.Release()
		return nil, fmt.Errorf("light cone mesh: %w", err)
	}
	v.count = count

	group, prov, err := uniformGroup(dev, p, vertex, shader.AnnotationArgEyeBlock, "Volume Light Eyes", shared.EyeBuffer, 0)
	if err != nil {
		v.Release()
		return nil, err
	}
	v.groups = append(v.groups, boundGroup{group, prov})
	group, prov, err = uniformGroup(dev, p, vertex, shader.AnnotationArgLightBuffer, "Volume Light Lights", shared.LightBuffer, 0)
	if err != nil {
		v.Release()
		return nil, err
	}
	v.groups = append(v.groups, boundGroup{group, prov})
	group, prov, err = textureGroup(dev, p, fragment, shader.AnnotationArgGBuffer, "Volume Light G-Buffer",
		map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgViewPositionTexture: targets.ViewPosition.View}, nil)
	if err != nil {
		v.Release()
		return nil, err
	}
	v.groups = append(v.groups, boundGroup{group, prov})
	return v, nil
}

// Name returns "volume_light".
func (v *VolumeLight) Name() string { return "volume_light" }

// Prepare has nothing to upload; the lights live in the shared buffer.
func (v *VolumeLight) Prepare(Device, *Frame) error {
	if v.pipeline == nil {
		return ErrNotInitialized
	}
	return nil
}

// Record clears the light target and, when the frame has lights, draws every
// light cone once per eye with firstInstance = eye * lights.
func (v *VolumeLight) Record(enc Encoder, f *Frame) error {
	if v.pipeline == nil {
		return ErrNotInitialized
	}
	lights := uint32(max(f.Lights, 0))
	if lights == 0 {
		common.Logger().Debug("volume light skipped", "reason", "no lights")
	}
	for eye := 0; eye < v.targets.Light.Layers(); eye++ {
		if err := enc.BeginPass(renderer.PassDescriptor{
			Label: fmt.Sprintf("Volume Light Eye %d", eye),
			Color: []renderer.ColorAttachment{{View: v.targets.Light.Layer(eye), Clear: &opaqueBlack}},
			Depth: &renderer.DepthAttachment{View: v.targets.Depth.Layer(eye)},
		}); err != nil {
			return fmt.Errorf("volume light: %w", err)
		}
		if lights > 0 {
			if err := v.draw(enc, uint32(eye), lights); err != nil {
				enc.EndPass()
				return fmt.Errorf("volume light: %w", err)
			}
		}
		enc.EndPass()
	}
	return nil
}

func (v *VolumeLight) draw(enc Encoder, eye, lights uint32) error {
	if err := enc.SetPipeline(v.pipeline); err != nil {
		return err
	}
	if err := setGroups(enc, v.groups); err != nil {
		return err
	}
	if err := enc.SetMesh(v.cone); err != nil {
		return err
	}
	enc.DrawIndexed(v.count, lights, 0, 0, eye*lights)
	return nil
}

func (v *VolumeLight) Release() {
	releaseGroups(v.groups)
	v.groups = nil
	if v.cone != nil {
		v.cone.Release()
		v.cone = nil
	}
	if v.pipeline != nil {
		v.dev.ReleasePipelines(v.pipeline.PipelineKey())
		v.pipeline = nil
	}
}
