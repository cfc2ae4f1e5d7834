package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxEyes is the largest number of views a frame can carry.
const MaxEyes = 2

// EyeFrame holds the matrices of one eye for one frame.
type EyeFrame struct {
	WorldFromCamera   mgl32.Mat4
	CameraFromWorld   mgl32.Mat4
	Projection        mgl32.Mat4
	ProjectionInverse mgl32.Mat4
}

// ClipFromWorld returns Projection * CameraFromWorld.
func (e EyeFrame) ClipFromWorld() mgl32.Mat4 {
	return e.Projection.Mul4(e.CameraFromWorld)
}

// Frame is the immutable camera state of a single rendered frame.
// Eyes beyond EyeCount are zero.
type Frame struct {
	Center   mgl32.Mat4
	Eyes     [MaxEyes]EyeFrame
	EyeCount int
	Width    int
	Height   int
}

// Eye returns eye i. For mono frames every index maps to the single eye so that
// consumers expecting a stereo pair get the same view twice.
func (f Frame) Eye(i int) EyeFrame {
	if f.EyeCount <= 1 || i < 0 || i >= f.EyeCount {
		return f.Eyes[0]
	}
	return f.Eyes[i]
}

// AspectRatio returns P[1][1] / P[0][0] of eye 0, the factor applied to vertical
// sample offsets so they match horizontal ones on screen.
func (f Frame) AspectRatio() float32 {
	p := f.Eyes[0].Projection
	if p.At(0, 0) == 0 {
		return 1
	}
	return p.At(1, 1) / p.At(0, 0)
}

// OffsetEye moves the translation of worldFromDevice along the normalized right,
// up and forward columns of the device transform.
//
// Parameters:
//   - worldFromDevice: the device pose
//   - shift: offset in device axes (x right, y up, z forward)
//
// Returns:
//   - mgl32.Mat4: the eye pose in world space
func OffsetEye(worldFromDevice mgl32.Mat4, shift mgl32.Vec3) mgl32.Mat4 {
	axis := func(c int) mgl32.Vec3 {
		v := worldFromDevice.Col(c).Vec3()
		if v.Len() == 0 {
			return v
		}
		return v.Normalize()
	}
	offset := axis(0).Mul(shift[0]).Add(axis(1).Mul(shift[1])).Add(axis(2).Mul(shift[2]))
	out := worldFromDevice
	out[12] += offset[0]
	out[13] += offset[1]
	out[14] += offset[2]
	return out
}

// NewFrame builds the per-eye matrices for one frame.
//
// Parameters:
//   - profile: the device strategy supplying projections and eye offsets
//   - worldFromDevice: the tracked device pose
//   - eyes: 1 (mono, no eye offset) or 2
//   - width: output width in pixels
//   - height: output height in pixels
//
// Returns:
//   - Frame: the camera frame
func NewFrame(profile Profile, worldFromDevice mgl32.Mat4, eyes, width, height int) Frame {
	if eyes < 1 {
		eyes = 1
	}
	if eyes > MaxEyes {
		eyes = MaxEyes
	}
	f := Frame{
		Center:   worldFromDevice,
		EyeCount: eyes,
		Width:    width,
		Height:   height,
	}
	projections := profile.Projections(eyes, width, height)
	shift := profile.EyeShift()
	shifts := [MaxEyes]mgl32.Vec3{shift.Left, shift.Right}
	for i := 0; i < eyes; i++ {
		pose := worldFromDevice
		if eyes > 1 {
			pose = OffsetEye(worldFromDevice, shifts[i])
		}
		f.Eyes[i] = EyeFrame{
			WorldFromCamera:   pose,
			CameraFromWorld:   pose.Inv(),
			Projection:        projections[i],
			ProjectionInverse: projections[i].Inv(),
		}
	}
	return f
}
