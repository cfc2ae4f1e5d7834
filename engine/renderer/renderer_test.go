package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "eyes", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
		1: {Label: "model", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "eyes", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 2, Visibility: wgpu.ShaderStageFragment},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
		2: {Label: "material", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
	}

	merged := MergeBindGroupLayouts(vertex, fragment)
	if len(merged) != 3 {
		t.Fatalf("len(MergeBindGroupLayouts()) = %d, want 3", len(merged))
	}

	g0 := merged[0].Entries
	if len(g0) != 2 {
		t.Fatalf("group 0 has %d entries, want 2", len(g0))
	}
	if g0[0].Binding != 0 || g0[1].Binding != 2 {
		t.Errorf("group 0 bindings = %d, %d, want 0, 2", g0[0].Binding, g0[1].Binding)
	}
	if want := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment; g0[0].Visibility != want {
		t.Errorf("group 0 binding 0 visibility = %v, want %v", g0[0].Visibility, want)
	}
	if merged[1].Label != "model" || merged[2].Label != "material" {
		t.Errorf("single-stage groups = %q, %q, want model, material", merged[1].Label, merged[2].Label)
	}
}

func TestAlignedBytesPerRow(t *testing.T) {
	tests := []struct {
		width, texel, want uint32
	}{
		{4, 16, 256},
		{64, 4, 256},
		{65, 4, 512},
		{1920, 4, 7680},
		{1, 8, 256},
	}
	for _, tt := range tests {
		if got := AlignedBytesPerRow(tt.width, tt.texel); got != tt.want {
			t.Errorf("AlignedBytesPerRow(%d, %d) = %d, want %d", tt.width, tt.texel, got, tt.want)
		}
	}
}

func TestBytesPerTexel(t *testing.T) {
	tests := []struct {
		format wgpu.TextureFormat
		want   uint32
	}{
		{wgpu.TextureFormatRGBA8Unorm, 4},
		{wgpu.TextureFormatRGBA16Float, 8},
		{wgpu.TextureFormatRGBA32Float, 16},
		{wgpu.TextureFormatDepth32Float, 4},
		{wgpu.TextureFormatUndefined, 0},
	}
	for _, tt := range tests {
		if got := BytesPerTexel(tt.format); got != tt.want {
			t.Errorf("BytesPerTexel(%v) = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestArrayTextureDescriptorValidate(t *testing.T) {
	valid := ArrayTextureDescriptor{
		Label:  "color",
		Width:  64,
		Height: 32,
		Layers: 2,
		Format: wgpu.TextureFormatRGBA16Float,
		Usage:  wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*ArrayTextureDescriptor)
	}{
		{"zero width", func(d *ArrayTextureDescriptor) { d.Width = 0 }},
		{"zero layers", func(d *ArrayTextureDescriptor) { d.Layers = 0 }},
		{"undefined format", func(d *ArrayTextureDescriptor) { d.Format = wgpu.TextureFormatUndefined }},
		{"no usage", func(d *ArrayTextureDescriptor) { d.Usage = wgpu.TextureUsageNone }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			if err := d.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestArrayTextureNilSafe(t *testing.T) {
	var tex *ArrayTexture
	if tex.Layers() != 0 {
		t.Errorf("nil Layers() = %d, want 0", tex.Layers())
	}
	if tex.Layer(0) != nil {
		t.Error("nil Layer(0) != nil")
	}
	tex.Release()

	partial := &ArrayTexture{LayerViews: make([]*wgpu.TextureView, 2)}
	partial.Release()
	if partial.Layer(5) != nil {
		t.Error("Layer(5) out of range != nil")
	}
}

func TestPassDescriptor(t *testing.T) {
	view := &wgpu.TextureView{}
	clearDepth := float32(0)
	clearColor := wgpu.Color{A: 1}

	rp, err := PassDescriptor{
		Label: "scene",
		Color: []ColorAttachment{{View: view, Clear: &clearColor}, {View: view}},
		Depth: &DepthAttachment{View: view, Clear: &clearDepth},
	}.renderPassDescriptor()
	if err != nil {
		t.Fatalf("renderPassDescriptor() error = %v", err)
	}
	if rp.ColorAttachments[0].LoadOp != wgpu.LoadOpClear || rp.ColorAttachments[0].ClearValue != clearColor {
		t.Errorf("color 0 = %+v, want clear to %v", rp.ColorAttachments[0], clearColor)
	}
	if rp.ColorAttachments[1].LoadOp != wgpu.LoadOpLoad {
		t.Errorf("color 1 load op = %v, want load", rp.ColorAttachments[1].LoadOp)
	}
	if rp.DepthStencilAttachment.DepthLoadOp != wgpu.LoadOpClear || rp.DepthStencilAttachment.DepthClearValue != 0 {
		t.Errorf("depth = %+v, want clear to 0", rp.DepthStencilAttachment)
	}

	bad := []PassDescriptor{
		{Label: "empty"},
		{Label: "nil color", Color: []ColorAttachment{{}}},
		{Label: "nil depth", Color: []ColorAttachment{{View: view}}, Depth: &DepthAttachment{}},
	}
	for _, d := range bad {
		if _, err := d.renderPassDescriptor(); err == nil {
			t.Errorf("renderPassDescriptor(%q) error = nil, want error", d.Label)
		}
	}
}
