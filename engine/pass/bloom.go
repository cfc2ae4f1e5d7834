package pass

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/bloom_frag.wgsl
var bloomFragmentSource string

const bloomPipelineKey = "pass.bloom"

// Bloom blurs the bright target with a fixed number of Kawase iterations that
// ping-pong between the two quarter resolution bloom targets.
type Bloom struct {
	dev        Device
	targets    *Targets
	pipeline   pipeline.Pipeline
	iterations int

	// params holds one uniform group per iteration so every write survives until the single submission.
	params []boundGroup

	// sources are indexed by effect.BrightSource+1: bright, ping 0, ping 1.
	sources [3]boundGroup
	steps   []effect.BloomStep
}

var _ Pass = &Bloom{}

// NewBloom builds the bloom pass.
//
// Parameters:
//   - dev: the device
//   - targets: the frame targets
//   - shared: the shared sampler
//   - iterations: the number of blur iterations, effect.BloomIterations by default
//
// Returns:
//   - *Bloom: the pass
//   - error: an error if the pipeline or a bind group cannot be created
func NewBloom(dev Device, targets *Targets, shared *Shared, iterations int) (*Bloom, error) {
	if iterations <= 0 {
		iterations = effect.BloomIterations
	}
	fragment, err := shader.NewShader("bloom_frag", shader.ShaderTypeFragment, bloomFragmentSource)
	if err != nil {
		return nil, err
	}
	p, err := newFullscreenPipeline(dev, bloomPipelineKey, fragment, ColorFormat)
	if err != nil {
		return nil, err
	}
	b := &Bloom{dev: dev, targets: targets, pipeline: p, iterations: iterations}

	var gpu effect.GPUBloomParams
	for i := 0; i < iterations; i++ {
		group, prov, err := uniformGroup(dev, p, fragment, shader.AnnotationArgBloomParams, fmt.Sprintf("Bloom Params %d", i), nil, uint64(gpu.Size()))
		if err != nil {
			b.Release()
			return nil, err
		}
		b.params = append(b.params, boundGroup{group, prov})
	}

	inputs := [3]*renderer.ArrayTexture{targets.Bright, targets.Bloom[0], targets.Bloom[1]}
	labels := [3]string{"Bloom Source Bright", "Bloom Source 0", "Bloom Source 1"}
	for i, tex := range inputs {
		group, prov, err := textureGroup(dev, p, fragment, shader.AnnotationArgSource, labels[i],
			map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgColorTexture: tex.View}, shared.Sampler)
		if err != nil {
			b.Release()
			return nil, err
		}
		b.sources[i] = boundGroup{group, prov}
	}
	return b, nil
}

// Name returns "bloom".
func (b *Bloom) Name() string { return "bloom" }

// Iterations returns the number of blur iterations.
func (b *Bloom) Iterations() int { return b.iterations }

// Output returns the bloom target holding the final iteration.
func (b *Bloom) Output() *renderer.ArrayTexture {
	return b.targets.Bloom[effect.BloomOutput(b.iterations)]
}

func (b *Bloom) Prepare(dev Device, f *Frame) error {
	if b.pipeline == nil {
		return ErrNotInitialized
	}
	b.steps = effect.BloomSchedule(f.Camera.AspectRatio(), b.iterations)
	writes := make([]bind_group_provider.BufferWrite, len(b.steps))
	for i, step := range b.steps {
		gpu := effect.GPUBloomParams{Offset: step.Offset}
		writes[i] = bind_group_provider.BufferWrite{Provider: b.params[i].provider, Binding: 0, Data: gpu.Marshal()}
	}
	dev.WriteBuffers(writes)
	return nil
}

func (b *Bloom) Record(enc Encoder, _ *Frame) error {
	if b.pipeline == nil {
		return ErrNotInitialized
	}
	for i, step := range b.steps {
		groups := []boundGroup{b.params[i], b.sources[step.Source-effect.BrightSource]}
		if err := drawFullscreen(enc, fmt.Sprintf("Bloom %d", i), b.pipeline, b.targets.Bloom[step.Target], &opaqueBlack, groups); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bloom) Release() {
	releaseGroups(b.params)
	releaseGroups(b.sources[:])
	b.params = nil
	b.sources = [3]boundGroup{}
	if b.pipeline != nil {
		b.dev.ReleasePipelines(b.pipeline.PipelineKey())
		b.pipeline = nil
	}
}
