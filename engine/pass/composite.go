package pass

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/composite_frag.wgsl
var compositeFragmentSource string

const compositePipelineKey = "pass.composite"

// Slots is the set of textures the composite adds to the scene color, indexed by
// effect.SlotScene, SlotBloom, SlotLight and SlotReserved. A nil slot is bound as
// black and its weight forced to zero.
type Slots [effect.CompositeSlots]*renderer.ArrayTexture

// Composite writes scene + sum(weight * slot) into the public composite target.
type Composite struct {
	dev      Device
	targets  *Targets
	pipeline pipeline.Pipeline
	groups   []boundGroup
	params   bind_group_provider.BindGroupProvider
	present  [effect.CompositeSlots]bool
	weights  [effect.CompositeSlots]float32
	dirty    bool
}

var _ Pass = &Composite{}

// NewComposite builds the composite pass.
//
// Parameters:
//   - dev: the device
//   - targets: the frame targets
//   - shared: the shared sampler and black fallback
//   - slots: the textures per slot; nil entries are null slots
//   - weights: the weight per slot, effect.DefaultCompositeWeights by default
//
// Returns:
//   - *Composite: the pass
//   - error: an error if the pipeline or a bind group cannot be created
func NewComposite(dev Device, targets *Targets, shared *Shared, slots Slots, weights [effect.CompositeSlots]float32) (*Composite, error) {
	fragment, err := shader.NewShader("composite_frag", shader.ShaderTypeFragment, compositeFragmentSource)
	if err != nil {
		return nil, err
	}
	p, err := newFullscreenPipeline(dev, compositePipelineKey, fragment, ColorFormat)
	if err != nil {
		return nil, err
	}
	c := &Composite{dev: dev, targets: targets, pipeline: p, weights: weights, dirty: true}

	var gpu effect.GPUCompositeParams
	group, prov, err := uniformGroup(dev, p, fragment, shader.AnnotationArgCompositeParams, "Composite Params", nil, uint64(gpu.Size()))
	if err != nil {
		c.Release()
		return nil, err
	}
	c.groups = append(c.groups, boundGroup{group, prov})
	c.params = prov

	group, prov, err = textureGroup(dev, p, fragment, shader.AnnotationArgSource, "Composite Scene",
		map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgColorTexture: targets.Color.View}, shared.Sampler)
	if err != nil {
		c.Release()
		return nil, err
	}
	c.groups = append(c.groups, boundGroup{group, prov})

	group, desc, err := groupLayout(p, fragment, shader.AnnotationArgSlots)
	if err != nil {
		c.Release()
		return nil, err
	}
	slotProvider := bind_group_provider.NewBindGroupProvider("Composite Slots")
	for i, tex := range slots {
		view := shared.Black.View
		if tex != nil {
			view = tex.View
			c.present[i] = true
		}
		slotProvider.SetSharedTextureView(i, view)
	}
	if err := dev.InitBindGroup(slotProvider, desc, nil); err != nil {
		c.Release()
		return nil, err
	}
	c.groups = append(c.groups, boundGroup{group, slotProvider})
	return c, nil
}

// Name returns "composite".
func (c *Composite) Name() string { return "composite" }

// SetWeights changes the slot weights from the next frame on.
func (c *Composite) SetWeights(weights [effect.CompositeSlots]float32) {
	c.weights = weights
	c.dirty = true
}

// Weights returns the weights the shader receives, with null slots zeroed.
func (c *Composite) Weights() [effect.CompositeSlots]float32 {
	return effect.EffectiveWeights(c.weights, c.present)
}

// Present reports which slots have a texture.
func (c *Composite) Present() [effect.CompositeSlots]bool { return c.present }

func (c *Composite) Prepare(dev Device, _ *Frame) error {
	if c.pipeline == nil {
		return ErrNotInitialized
	}
	if !c.dirty {
		return nil
	}
	gpu := effect.GPUCompositeParams{Weights: c.Weights()}
	dev.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: c.params, Binding: 0, Data: gpu.Marshal()}})
	c.dirty = false
	return nil
}

func (c *Composite) Record(enc Encoder, _ *Frame) error {
	if c.pipeline == nil {
		return ErrNotInitialized
	}
	return drawFullscreen(enc, "Composite", c.pipeline, c.targets.Composite, &opaqueBlack, c.groups)
}

func (c *Composite) Release() {
	releaseGroups(c.groups)
	c.groups = nil
	if c.pipeline != nil {
		c.dev.ReleasePipelines(c.pipeline.PipelineKey())
		c.pipeline = nil
	}
}
