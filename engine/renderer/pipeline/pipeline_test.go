package pipeline

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const positionVertexSource = `struct PositionIn {
    @location(0) position: vec3<f32>,
}

@vertex
fn vs_main(in: PositionIn) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 1.0);
}
`

const indexVertexSource = `@vertex
fn vs_main(@builtin(vertex_index) vertex: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(f32(vertex), 0.0, 0.0, 1.0);
}
`

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("fullscreen")
	if p.PipelineKey() != "fullscreen" {
		t.Errorf("PipelineKey() = %q, want %q", p.PipelineKey(), "fullscreen")
	}
	if p.DepthFormat() != wgpu.TextureFormatUndefined {
		t.Errorf("DepthFormat() = %v, want undefined", p.DepthFormat())
	}
	if p.DepthCompare() != wgpu.CompareFunctionGreaterEqual {
		t.Errorf("DepthCompare() = %v, want GreaterEqual", p.DepthCompare())
	}
	if p.BlendState() != nil {
		t.Errorf("BlendState() = %v, want nil", p.BlendState())
	}
	if p.Built() || p.Pipeline() != nil {
		t.Error("new pipeline reports built")
	}
	if len(p.ColorTargets()) != 0 || len(p.VertexLayouts()) != 0 {
		t.Error("new pipeline has explicit targets or vertex layouts")
	}
	if _, ok := p.BindGroupLayoutDescriptor(0); ok {
		t.Error("BindGroupLayoutDescriptor(0) found before build")
	}
}

func TestPipelineOptions(t *testing.T) {
	layout := wgpu.VertexBufferLayout{ArrayStride: 12, StepMode: wgpu.VertexStepModeVertex}
	p := NewPipeline("volume",
		WithColorTargets(wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatRGBA16Float),
		WithDepthFormat(wgpu.TextureFormatDepth32Float),
		WithDepthCompare(wgpu.CompareFunctionLess),
		WithDepthWriteEnabled(false),
		WithVertexLayout(layout),
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
		WithBlendState(AdditiveBlend),
	)
	if got := p.ColorTargets(); len(got) != 2 || got[1] != wgpu.TextureFormatRGBA16Float {
		t.Errorf("ColorTargets() = %v, want two RGBA16Float", got)
	}
	if p.DepthFormat() != wgpu.TextureFormatDepth32Float {
		t.Errorf("DepthFormat() = %v, want Depth32Float", p.DepthFormat())
	}
	if p.DepthCompare() != wgpu.CompareFunctionLess {
		t.Errorf("DepthCompare() = %v, want Less", p.DepthCompare())
	}
	if p.DepthWriteEnabled() {
		t.Error("DepthWriteEnabled() = true, want false")
	}
	if got := p.VertexLayouts(); len(got) != 1 || got[0].ArrayStride != 12 {
		t.Errorf("VertexLayouts() = %v, want the explicit layout", got)
	}
	if p.CullMode() != wgpu.CullModeBack || p.FrontFace() != wgpu.FrontFaceCW {
		t.Errorf("CullMode(), FrontFace() = %v, %v, want Back, CW", p.CullMode(), p.FrontFace())
	}
	if p.BlendState() != AdditiveBlend {
		t.Errorf("BlendState() = %v, want AdditiveBlend", p.BlendState())
	}

	p.SetBindGroupLayoutDescriptors(map[int]wgpu.BindGroupLayoutDescriptor{1: {Label: "lights"}})
	if d, ok := p.BindGroupLayoutDescriptor(1); !ok || d.Label != "lights" {
		t.Errorf("BindGroupLayoutDescriptor(1) = %v, %v, want lights, true", d, ok)
	}
	p.Release()
	if p.Built() {
		t.Error("Built() = true after Release")
	}
}

func TestCheckVertexInputs(t *testing.T) {
	position := shader.MustShader("position_vert", shader.ShaderTypeVertex, positionVertexSource)
	index := shader.MustShader("index_vert", shader.ShaderTypeVertex, indexVertexSource)
	tests := []struct {
		name    string
		opts    []PipelineBuilderOption
		wantErr string
	}{
		{
			name: "reflected layout",
			opts: []PipelineBuilderOption{WithVertexShader(position)},
		},
		{
			name: "explicit layout",
			opts: []PipelineBuilderOption{WithVertexShader(position), WithVertexLayout(wgpu.VertexBufferLayout{
				ArrayStride: 12,
				Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x3, ShaderLocation: 0}},
			})},
		},
		{
			name: "explicit layout missing location",
			opts: []PipelineBuilderOption{WithVertexShader(position), WithVertexLayout(wgpu.VertexBufferLayout{
				ArrayStride: 12,
				Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x3, ShaderLocation: 1}},
			})},
			wantErr: "@location(0)",
		},
		{
			name: "builtin inputs only",
			opts: []PipelineBuilderOption{WithVertexShader(index)},
		},
		{
			name:    "no vertex shader",
			wantErr: "no vertex shader",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVertexInputs(NewPipeline("check", tt.opts...))
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("CheckVertexInputs() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("CheckVertexInputs() error = %v, want one mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveVertexLayoutsPrefersExplicit(t *testing.T) {
	position := shader.MustShader("position_vert", shader.ShaderTypeVertex, positionVertexSource)
	if got := ResolveVertexLayouts(NewPipeline("reflected", WithVertexShader(position))); len(got) != 1 || got[0].ArrayStride != 12 {
		t.Errorf("ResolveVertexLayouts() = %v, want the reflected stride 12 layout", got)
	}
	explicit := wgpu.VertexBufferLayout{ArrayStride: 16}
	got := ResolveVertexLayouts(NewPipeline("explicit", WithVertexShader(position), WithVertexLayout(explicit)))
	if len(got) != 1 || got[0].ArrayStride != 16 {
		t.Errorf("ResolveVertexLayouts() = %v, want the explicit layout", got)
	}
}
