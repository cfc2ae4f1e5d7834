// Package uniform defines the wire layout of the uniform texture: the camera
// matrices of a frame stored in the pixels of a small RGBA32Float texture, so a
// consumer that can only sample textures can reproject the rendered output.
//
// Layout version 1 is 4 pixels wide and 5 rows high. Each row holds one 4x4
// matrix; pixel k of a row is column k of the matrix (column-major, RGBA = xyzw).
//
//	row 0: center (device) world-from-camera transform
//	row 1: left eye world-from-camera transform
//	row 2: right eye world-from-camera transform
//	row 3: left eye projection
//	row 4: right eye projection
//
// Mono frames repeat the single eye in both eye rows. Any change to this layout
// bumps LayoutVersion.
package uniform

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
)

// LayoutVersion identifies the row order and pixel layout described in the package doc.
const LayoutVersion = 1

// Texture geometry.
const (
	Width          = 4                  // pixels per row
	Rows           = 5                  // matrices
	PixelSize      = 16                 // bytes per RGBA32Float pixel
	RowSize        = Width * PixelSize  // bytes per tightly packed row
	Size           = Rows * RowSize     // bytes of the tightly packed texture
	StagedRowPitch = 256                // row pitch required by buffer-to-texture copies
	StagedSize     = Rows * StagedRowPitch
)

// Row indices.
const (
	RowCenter = iota
	RowLeft
	RowRight
	RowLeftProjection
	RowRightProjection
)

var (
	// ErrShortBuffer is returned when a buffer is smaller than the layout requires.
	ErrShortBuffer = errors.New("uniform: buffer too short")

	// ErrLayoutVersion is returned when a consumer expects a layout this encoder does not produce.
	ErrLayoutVersion = errors.New("uniform: unsupported layout version")
)

// Frame is the content of the uniform texture.
type Frame struct {
	Center      mgl32.Mat4
	Transforms  [2]mgl32.Mat4 // world from camera, left then right
	Projections [2]mgl32.Mat4
}

// FromCamera extracts the uniform texture content from a camera frame.
// A mono frame fills both eye slots with its only eye.
//
// Parameters:
//   - f: the camera frame
//
// Returns:
//   - Frame: the rows to encode
func FromCamera(f camera.Frame) Frame {
	var out Frame
	out.Center = f.Center
	for i := 0; i < 2; i++ {
		e := f.Eye(i)
		out.Transforms[i] = e.WorldFromCamera
		out.Projections[i] = e.Projection
	}
	return out
}

func (f Frame) rows() [Rows]mgl32.Mat4 {
	return [Rows]mgl32.Mat4{f.Center, f.Transforms[0], f.Transforms[1], f.Projections[0], f.Projections[1]}
}

func (f *Frame) setRow(i int, m mgl32.Mat4) {
	switch i {
	case RowCenter:
		f.Center = m
	case RowLeft, RowRight:
		f.Transforms[i-RowLeft] = m
	case RowLeftProjection, RowRightProjection:
		f.Projections[i-RowLeftProjection] = m
	}
}

// CheckVersion reports whether a consumer expecting layout version v can read
// the textures written by this package.
//
// Parameters:
//   - v: the version the consumer decodes
//
// Returns:
//   - error: nil, or an error wrapping ErrLayoutVersion
func CheckVersion(v int) error {
	if v != LayoutVersion {
		return fmt.Errorf("%w: consumer expects %d, encoder writes %d", ErrLayoutVersion, v, LayoutVersion)
	}
	return nil
}

// Encode packs f into Size tightly packed bytes.
//
// Parameters:
//   - f: the frame content
//
// Returns:
//   - []byte: the texture bytes, row 0 first
func Encode(f Frame) []byte {
	buf := make([]byte, Size)
	encodeRows(buf, RowSize, f)
	return buf
}

// Staged packs f with rows StagedRowPitch bytes apart, ready for a
// buffer-to-texture copy. Bytes between rows are zero.
//
// Parameters:
//   - f: the frame content
//
// Returns:
//   - []byte: StagedSize bytes
func Staged(f Frame) []byte {
	buf := make([]byte, StagedSize)
	encodeRows(buf, StagedRowPitch, f)
	return buf
}

func encodeRows(buf []byte, pitch int, f Frame) {
	for i, m := range f.rows() {
		common.PutMat4(buf[i*pitch:], m)
	}
}

// Decode unpacks tightly packed texture bytes, as read back from the texture.
//
// Parameters:
//   - buf: at least Size bytes
//
// Returns:
//   - Frame: the decoded content
//   - error: ErrShortBuffer if buf is too small
func Decode(buf []byte) (Frame, error) {
	return decodeRows(buf, RowSize)
}

// DecodeStaged unpacks bytes produced by Staged or read back with a
// StagedRowPitch row pitch.
//
// Parameters:
//   - buf: at least StagedSize - StagedRowPitch + RowSize bytes
//
// Returns:
//   - Frame: the decoded content
//   - error: ErrShortBuffer if buf is too small
func DecodeStaged(buf []byte) (Frame, error) {
	return decodeRows(buf, StagedRowPitch)
}

func decodeRows(buf []byte, pitch int) (Frame, error) {
	need := (Rows-1)*pitch + RowSize
	if len(buf) < need {
		return Frame{}, fmt.Errorf("%w: %d bytes, need %d", ErrShortBuffer, len(buf), need)
	}
	var f Frame
	for i := 0; i < Rows; i++ {
		f.setRow(i, common.ReadMat4(buf[i*pitch:]))
	}
	return f, nil
}

// Pixel returns the RGBA value of pixel (x, row) of f, which is column x of the row's matrix.
// It is what a sampling consumer reads at that texel.
//
// Parameters:
//   - f: the frame content
//   - x: pixel column in [0, Width)
//   - row: row index in [0, Rows)
//
// Returns:
//   - mgl32.Vec4: the texel
func Pixel(f Frame, x, row int) mgl32.Vec4 {
	return f.rows()[row].Col(x)
}
