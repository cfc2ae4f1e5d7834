// Package capture reads rendered array texture layers back to the host and
// writes them as WebP images.
package capture

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/HugoSmits86/nativewebp"
	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"
)

// ErrFormat is returned for textures whose format cannot be converted to 8-bit color.
var ErrFormat = errors.New("capture: unsupported texture format")

// Reader copies texture layers to host memory.
type Reader interface {
	ReadTexture(tex *wgpu.Texture, layer, width, height, bytesPerTexel uint32) ([]byte, error)
}

var _ Reader = renderer.Renderer(nil)

// Capture reads one layer of tex back as an 8-bit image.
//
// Parameters:
//   - r: the renderer to read through
//   - tex: an RGBA8, BGRA8 or RGBA16F array texture created with TextureUsageCopySrc
//   - layer: the array layer
//
// Returns:
//   - image.Image: the layer as *image.RGBA
//   - error: an error if the format is unsupported or the readback failed
func Capture(r Reader, tex *renderer.ArrayTexture, layer int) (image.Image, error) {
	if tex == nil {
		return nil, errors.New("capture: nil texture")
	}
	d := tex.Descriptor
	if layer < 0 || layer >= int(d.Layers) {
		return nil, fmt.Errorf("capture: layer %d of %q out of range [0, %d)", layer, d.Label, d.Layers)
	}

	var bpt uint32
	switch d.Format {
	case wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb,
		wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb:
		bpt = 4
	case wgpu.TextureFormatRGBA16Float:
		bpt = 8
	default:
		return nil, fmt.Errorf("%w: %q is %v", ErrFormat, d.Label, d.Format)
	}

	pixels, err := r.ReadTexture(tex.Texture, uint32(layer), d.Width, d.Height, bpt)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	if want := int(d.Width * d.Height * bpt); len(pixels) < want {
		return nil, fmt.Errorf("capture: read %d bytes, want %d", len(pixels), want)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(d.Width), int(d.Height)))
	switch d.Format {
	case wgpu.TextureFormatRGBA16Float:
		for i := range len(img.Pix) {
			img.Pix[i] = unorm8(halfToFloat(uint16(pixels[2*i]) | uint16(pixels[2*i+1])<<8))
		}
	case wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb:
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i+0] = pixels[i+2]
			img.Pix[i+1] = pixels[i+1]
			img.Pix[i+2] = pixels[i+0]
			img.Pix[i+3] = pixels[i+3]
		}
	default:
		copy(img.Pix, pixels)
	}
	return img, nil
}

// WriteWebP encodes img as a lossless WebP, scaled by scale with Catmull-Rom filtering.
//
// Parameters:
//   - w: the destination
//   - img: the image
//   - scale: the resize factor; values <= 0 or 1 keep the original size
//
// Returns:
//   - error: an error if encoding fails
func WriteWebP(w io.Writer, img image.Image, scale float64) error {
	if scale > 0 && scale != 1 {
		b := img.Bounds()
		dw := max(1, int(math.Round(float64(b.Dx())*scale)))
		dh := max(1, int(math.Round(float64(b.Dy())*scale)))
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.CatmullRom.Scale(dst, dst.Rect, img, b, draw.Src, nil)
		img = dst
	}
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("capture: webp encode: %w", err)
	}
	return nil
}

// SaveWebP captures one layer into dir, naming the file after the texture label,
// the layer and the capture time.
//
// Returns:
//   - string: the written path
//   - error: an error if the capture or the file write failed
func SaveWebP(r Reader, tex *renderer.ArrayTexture, layer int, dir string, scale float64, at time.Time) (string, error) {
	img, err := Capture(r, tex, layer)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d_%s.webp", fileLabel(tex.Descriptor.Label), layer, at.Format("20060102_150405.000")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	if err := WriteWebP(f, img, scale); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	return path, nil
}

func fileLabel(label string) string {
	out := []byte(label)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
		case c >= 'A' && c <= 'Z':
			out[i] = c + ('a' - 'A')
		default:
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "capture"
	}
	return string(out)
}

func unorm8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// halfToFloat widens an IEEE 754 binary16 value.
func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h) & 0x3ff
	switch {
	case exp == 0 && mant == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// subnormal
		f := float32(mant) / (1 << 24)
		if sign != 0 {
			return -f
		}
		return f
	case exp == 0x1f:
		return math.Float32frombits(sign | 0xff<<23 | mant<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
}
