package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/engine/camera"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/uniform"
	"github.com/cogentcore/webgpu/wgpu"
)

// Target formats.
const (
	ColorFormat   = wgpu.TextureFormatRGBA16Float
	DepthFormat   = wgpu.TextureFormatDepth32Float
	DebugFormat   = wgpu.TextureFormatRGBA8Unorm
	UniformFormat = wgpu.TextureFormatRGBA32Float
)

const targetUsage = wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc

// Targets is the render target set of the frame. Every texture except Uniform has
// one layer per eye.
type Targets struct {
	Width, Height, Eyes int

	Color        *renderer.ArrayTexture
	Normal       *renderer.ArrayTexture
	ViewPosition *renderer.ArrayTexture
	Depth        *renderer.ArrayTexture

	// Bright is half the output size, the bloom ping-pong pair a quarter.
	Bright *renderer.ArrayTexture
	Bloom  [2]*renderer.ArrayTexture

	Light     *renderer.ArrayTexture
	Composite *renderer.ArrayTexture
	Debug     *renderer.ArrayTexture

	// Uniform is the single-layer texture holding the encoded camera matrices.
	Uniform *renderer.ArrayTexture
}

// NewTargets allocates the target set.
//
// Parameters:
//   - dev: the device creating the textures
//   - width, height: output size in pixels
//   - eyes: 1 or 2
//
// Returns:
//   - *Targets: the targets
//   - error: an error if the size or eye count is invalid or a texture cannot be created
func NewTargets(dev Device, width, height, eyes int) (*Targets, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("targets: size %dx%d", width, height)
	}
	if eyes < 1 || eyes > camera.MaxEyes {
		return nil, fmt.Errorf("targets: %d eyes", eyes)
	}
	t := &Targets{Width: width, Height: height, Eyes: eyes}

	w, h := uint32(width), uint32(height)
	layers := uint32(eyes)
	descs := []struct {
		dst  **renderer.ArrayTexture
		desc renderer.ArrayTextureDescriptor
	}{
		{&t.Color, renderer.ArrayTextureDescriptor{Label: "Scene Color", Width: w, Height: h, Format: ColorFormat}},
		{&t.Normal, renderer.ArrayTextureDescriptor{Label: "Scene Normal", Width: w, Height: h, Format: ColorFormat}},
		{&t.ViewPosition, renderer.ArrayTextureDescriptor{Label: "Scene View Position", Width: w, Height: h, Format: ColorFormat}},
		{&t.Depth, renderer.ArrayTextureDescriptor{Label: "Scene Depth", Width: w, Height: h, Format: DepthFormat}},
		{&t.Bright, renderer.ArrayTextureDescriptor{Label: "Bright", Width: max(w/2, 1), Height: max(h/2, 1), Format: ColorFormat}},
		{&t.Bloom[0], renderer.ArrayTextureDescriptor{Label: "Bloom 0", Width: max(w/4, 1), Height: max(h/4, 1), Format: ColorFormat}},
		{&t.Bloom[1], renderer.ArrayTextureDescriptor{Label: "Bloom 1", Width: max(w/4, 1), Height: max(h/4, 1), Format: ColorFormat}},
		{&t.Light, renderer.ArrayTextureDescriptor{Label: "Light", Width: w, Height: h, Format: ColorFormat}},
		{&t.Composite, renderer.ArrayTextureDescriptor{Label: "Composite", Width: w, Height: h, Format: ColorFormat}},
		{&t.Debug, renderer.ArrayTextureDescriptor{Label: "Debug", Width: w, Height: h, Format: DebugFormat}},
	}
	for _, d := range descs {
		d.desc.Layers = layers
		d.desc.Usage = targetUsage
		tex, err := dev.CreateArrayTexture(d.desc)
		if err != nil {
			t.Release()
			return nil, fmt.Errorf("targets: %w", err)
		}
		*d.dst = tex
	}

	var err error
	t.Uniform, err = dev.CreateArrayTexture(renderer.ArrayTextureDescriptor{
		Label:  "Uniform",
		Width:  uniform.Width,
		Height: uniform.Rows,
		Layers: 1,
		Format: UniformFormat,
		Usage:  wgpu.TextureUsageCopyDst | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("targets: %w", err)
	}
	return t, nil
}

// All returns every texture of the set, including ones not yet created.
func (t *Targets) All() []*renderer.ArrayTexture {
	return []*renderer.ArrayTexture{
		t.Color, t.Normal, t.ViewPosition, t.Depth,
		t.Bright, t.Bloom[0], t.Bloom[1],
		t.Light, t.Composite, t.Debug, t.Uniform,
	}
}

// Release frees every texture. It is safe on a partially created set.
func (t *Targets) Release() {
	if t == nil {
		return
	}
	for _, tex := range t.All() {
		tex.Release()
	}
}
