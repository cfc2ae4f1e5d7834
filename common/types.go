// Package common holds the plain data types, math helpers and logger shared by the
// engine packages.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	_ "github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// SamplerStagingData describes a sampler before it is created. Zero fields take the
// renderer defaults: linear filtering, repeat addressing, no anisotropy.
type SamplerStagingData struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode

	MagFilter, MinFilter wgpu.FilterMode
	MipmapFilter         wgpu.MipmapFilterMode

	LodMinClamp, LodMaxClamp float32

	// Compare makes a comparison sampler when set.
	Compare wgpu.CompareFunction

	MaxAnisotropy uint16
}

// ImportedTexture is a material texture source, held as encoded bytes or as a path.
type ImportedTexture struct {
	// Name identifies the texture in logs and texture cache keys.
	Name string

	// Path is read when Data is empty.
	Path string

	// Data holds an encoded PNG, JPEG or TGA image.
	Data []byte

	// MaxSize caps the longer side of the decoded image. Larger images are scaled down
	// with Catmull-Rom. Zero disables the cap.
	MaxSize int

	// Width and Height are set by Decode.
	Width, Height int

	// SamplerData replaces the default sampler when non-nil.
	SamplerData *SamplerStagingData
}

// Decode decodes the image into tightly packed RGBA8 rows and records its size.
//
// Returns:
//   - []byte: the pixels, top row first
//   - uint32: the width
//   - uint32: the height
//   - error: an error if the texture has no source or cannot be decoded
func (t *ImportedTexture) Decode() ([]byte, uint32, uint32, error) {
	if t == nil {
		return nil, 0, 0, errors.New("nil texture")
	}

	var src io.Reader
	switch {
	case len(t.Data) > 0:
		src = bytes.NewReader(t.Data)
	case t.Path != "":
		f, err := os.Open(t.Path)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("texture %s: %w", t.Name, err)
		}
		defer f.Close()
		src = f
	default:
		return nil, 0, 0, fmt.Errorf("texture %s: no data and no path", t.Name)
	}

	img, format, err := image.Decode(src)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("texture %s: decode: %w", t.Name, err)
	}
	rgba := ToRGBA(img, t.MaxSize)
	t.Width, t.Height = rgba.Rect.Dx(), rgba.Rect.Dy()
	Logger().Debug("texture decoded", "name", t.Name, "format", format, "width", t.Width, "height", t.Height)
	return rgba.Pix, uint32(t.Width), uint32(t.Height), nil
}

// ToRGBA converts img to a tightly packed RGBA image anchored at the origin,
// downscaling so that neither side exceeds maxSize when maxSize > 0.
//
// Parameters:
//   - img: the source image
//   - maxSize: the cap on the larger side, or 0
//
// Returns:
//   - *image.RGBA: the converted image
func ToRGBA(img image.Image, maxSize int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		if w >= h {
			h = max(1, h*maxSize/w)
			w = maxSize
		} else {
			w = max(1, w*maxSize/h)
			h = maxSize
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Rect, img, b, draw.Src, nil)
		return dst
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}
