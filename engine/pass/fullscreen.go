package pass

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/fullscreen_vert.wgsl
var fullscreenVertexSource string

// fullscreenVertex draws one triangle covering the target. The instance index is
// passed to the fragment stage as the eye layer.
var fullscreenVertex = shader.MustShader("fullscreen_vert", shader.ShaderTypeVertex, fullscreenVertexSource)

var opaqueBlack = wgpu.Color{A: 1}

// newFullscreenPipeline builds a full-screen pipeline rendering into one color format.
func newFullscreenPipeline(dev Device, key string, fragment shader.Shader, format wgpu.TextureFormat, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	p := pipeline.NewPipeline(key, append([]pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(fullscreenVertex),
		pipeline.WithFragmentShader(fragment),
		pipeline.WithColorTargets(format),
	}, opts...)...)
	if err := dev.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", key, err)
	}
	return p, nil
}

// drawFullscreen records one render pass per layer of target. A nil clear loads the
// previous contents.
func drawFullscreen(enc Encoder, label string, p pipeline.Pipeline, target *renderer.ArrayTexture, clear *wgpu.Color, groups []boundGroup) error {
	for eye := 0; eye < target.Layers(); eye++ {
		if err := enc.BeginPass(renderer.PassDescriptor{
			Label: fmt.Sprintf("%s Eye %d", label, eye),
			Color: []renderer.ColorAttachment{{View: target.Layer(eye), Clear: clear}},
		}); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
		if err := enc.SetPipeline(p); err != nil {
			enc.EndPass()
			return fmt.Errorf("%s: %w", label, err)
		}
		if err := setGroups(enc, groups); err != nil {
			enc.EndPass()
			return fmt.Errorf("%s: %w", label, err)
		}
		enc.Draw(3, 1, 0, uint32(eye))
		enc.EndPass()
	}
	return nil
}
