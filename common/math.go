package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Mat4Size is the byte size of a column-major mat4x4<f32>.
const Mat4Size = 64

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// PutMat4 writes m into buf in column-major order as little-endian float32 values.
// buf must hold at least Mat4Size bytes.
//
// Parameters:
//   - buf: destination byte slice
//   - m: the matrix to write
func PutMat4(buf []byte, m mgl32.Mat4) {
	_ = buf[Mat4Size-1]
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

// ReadMat4 is the inverse of PutMat4.
//
// Parameters:
//   - buf: source byte slice of at least Mat4Size bytes
//
// Returns:
//   - mgl32.Mat4: the decoded column-major matrix
func ReadMat4(buf []byte) mgl32.Mat4 {
	_ = buf[Mat4Size-1]
	var m mgl32.Mat4
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return m
}

// PutVec3 writes v followed by w as a vec4<f32> (16 bytes).
func PutVec3(buf []byte, v mgl32.Vec3, w float32) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v[2]))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(w))
}

// PutFloat32s writes vs consecutively as little-endian float32 values.
func PutFloat32s(buf []byte, vs ...float32) {
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

// ReverseInfinitePerspective builds a right-handed perspective projection with
// an infinite far plane and reversed depth: the near plane maps to depth 1 and
// infinity maps to depth 0, matching WebGPU clip space [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near plane distance (must be > 0)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func ReverseInfinitePerspective(fovY, aspect, near float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, 0, -1,
		0, 0, near, 0,
	}
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of m embedded in
// a mat4, used to carry normals from model space to world space.
// A singular m yields the identity.
func NormalMatrix(m mgl32.Mat4) mgl32.Mat4 {
	m3 := m.Mat3()
	if m3.Det() == 0 {
		return mgl32.Ident4()
	}
	return m3.Inv().Transpose().Mat4()
}

// RotationBetween returns the rotation carrying unit vector from onto unit
// vector to. Antiparallel inputs rotate half a turn about an axis orthogonal to from.
func RotationBetween(from, to mgl32.Vec3) mgl32.Quat {
	from, to = from.Normalize(), to.Normalize()
	if from.Dot(to) < -0.999999 {
		axis := mgl32.Vec3{1, 0, 0}.Cross(from)
		if axis.Len() < 1e-6 {
			axis = mgl32.Vec3{0, 0, 1}.Cross(from)
		}
		return mgl32.QuatRotate(math.Pi, axis.Normalize())
	}
	return mgl32.QuatBetweenVectors(from, to)
}
