package renderer

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// CopyRowAlignment is the row pitch alignment WebGPU requires for buffer/texture copies.
const CopyRowAlignment = 256

// ArrayTextureDescriptor describes a 2D array texture, one layer per eye.
type ArrayTextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Layers uint32
	Format wgpu.TextureFormat
	Usage  wgpu.TextureUsage
}

// Validate reports descriptor values no texture can be created from.
func (d ArrayTextureDescriptor) Validate() error {
	switch {
	case d.Width == 0 || d.Height == 0:
		return fmt.Errorf("array texture %q: size %dx%d", d.Label, d.Width, d.Height)
	case d.Layers == 0:
		return fmt.Errorf("array texture %q: no layers", d.Label)
	case d.Format == wgpu.TextureFormatUndefined:
		return fmt.Errorf("array texture %q: undefined format", d.Label)
	case d.Usage == wgpu.TextureUsageNone:
		return fmt.Errorf("array texture %q: no usage", d.Label)
	}
	return nil
}

// ArrayTexture is a 2D array texture with a view of the whole array, for sampling,
// and one 2D view per layer, for render attachments.
type ArrayTexture struct {
	Descriptor ArrayTextureDescriptor
	Texture    *wgpu.Texture
	View       *wgpu.TextureView
	LayerViews []*wgpu.TextureView
}

// Layer returns the render-attachment view of layer i, or nil if i is out of range.
func (t *ArrayTexture) Layer(i int) *wgpu.TextureView {
	if t == nil || i < 0 || i >= len(t.LayerViews) {
		return nil
	}
	return t.LayerViews[i]
}

// Layers returns the number of layers.
func (t *ArrayTexture) Layers() int {
	if t == nil {
		return 0
	}
	return int(t.Descriptor.Layers)
}

// Release frees the views and the texture. It is safe to call on a nil or partially created texture.
func (t *ArrayTexture) Release() {
	if t == nil {
		return
	}
	for i, v := range t.LayerViews {
		if v != nil {
			v.Release()
		}
		t.LayerViews[i] = nil
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// AlignedBytesPerRow rounds a tightly packed row up to CopyRowAlignment.
//
// Parameters:
//   - width: row width in texels
//   - bytesPerTexel: size of one texel
//
// Returns:
//   - uint32: the padded row pitch
func AlignedBytesPerRow(width, bytesPerTexel uint32) uint32 {
	row := width * bytesPerTexel
	return (row + CopyRowAlignment - 1) / CopyRowAlignment * CopyRowAlignment
}

// BytesPerTexel returns the texel size of the uncompressed color formats used by the renderer.
// It returns 0 for formats it does not know.
func BytesPerTexel(format wgpu.TextureFormat) uint32 {
	switch format {
	case wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb,
		wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb,
		wgpu.TextureFormatR32Float, wgpu.TextureFormatDepth32Float:
		return 4
	case wgpu.TextureFormatRGBA16Float:
		return 8
	case wgpu.TextureFormatRGBA32Float:
		return 16
	}
	return 0
}

// ErrHeadless is returned by surface operations on a renderer created without a window.
var ErrHeadless = errors.New("renderer: no presentation surface")

func (b *wgpuRendererBackendImpl) CreateArrayTexture(desc ArrayTextureDescriptor) (*ArrayTexture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     desc.Usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.Layers,
		},
		Format:        desc.Format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", desc.Label, err)
	}
	out := &ArrayTexture{Descriptor: desc, Texture: tex, LayerViews: make([]*wgpu.TextureView, desc.Layers)}

	out.View, err = tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Label + " Array View",
		Format:          desc.Format,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: desc.Layers,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		out.Release()
		return nil, fmt.Errorf("create view %q: %w", desc.Label, err)
	}

	for i := uint32(0); i < desc.Layers; i++ {
		out.LayerViews[i], err = tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("%s Layer %d", desc.Label, i),
			Format:          desc.Format,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  i,
			ArrayLayerCount: 1,
			Aspect:          wgpu.TextureAspectAll,
		})
		if err != nil {
			out.Release()
			return nil, fmt.Errorf("create layer view %q %d: %w", desc.Label, i, err)
		}
	}
	return out, nil
}

func (b *wgpuRendererBackendImpl) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %q: %w", label, err)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) UploadTexture(label string, pixels []byte, width, height uint32) (*wgpu.Texture, *wgpu.TextureView, error) {
	if width == 0 || height == 0 || uint32(len(pixels)) < width*height*4 {
		return nil, nil, fmt.Errorf("upload texture %q: %d bytes for %dx%d", label, len(pixels), width, height)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create texture %q: %w", label, err)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("create view %q: %w", label, err)
	}
	return tex, view, nil
}

func (b *wgpuRendererBackendImpl) ReadTexture(tex *wgpu.Texture, layer, width, height, bytesPerTexel uint32) ([]byte, error) {
	if tex == nil {
		return nil, errors.New("read texture: nil texture")
	}
	pitch := AlignedBytesPerRow(width, bytesPerTexel)
	size := uint64(pitch) * uint64(height)

	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Readback Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("read texture: %w", err)
	}
	defer buf.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("read texture: %w", err)
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{Z: layer},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  pitch,
				RowsPerImage: height,
			},
			Buffer: buf,
		},
		&wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)
	commands, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		return nil, fmt.Errorf("read texture: %w", err)
	}
	b.queue.Submit(commands)
	commands.Release()

	status := wgpu.BufferMapAsyncStatusUnknown
	buf.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	b.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("read texture: map status %v", status)
	}
	defer buf.Unmap()

	mapped := buf.GetMappedRange(0, uint(size))
	row := width * bytesPerTexel
	out := make([]byte, row*height)
	for y := uint32(0); y < height; y++ {
		copy(out[y*row:(y+1)*row], mapped[y*pitch:y*pitch+row])
	}
	return out, nil
}
