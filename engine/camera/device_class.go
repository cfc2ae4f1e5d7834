package camera

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DeviceClass selects the projection and eye-offset strategy used to build camera frames.
type DeviceClass int

const (
	// DeviceClassSimulator uses one fixed reverse-infinite projection for both eyes and no eye offset.
	DeviceClassSimulator DeviceClass = iota
	// DeviceClassHeadset uses the fixed asymmetric per-eye projections measured on hardware.
	DeviceClassHeadset
	// DeviceClassDesktop derives a reverse-infinite projection from a vertical fov and the output aspect.
	DeviceClassDesktop
)

// SimulatorNear is the near plane of the simulator projection.
const SimulatorNear = 0.1

var deviceClassNames = map[DeviceClass]string{
	DeviceClassSimulator: "simulator",
	DeviceClassHeadset:   "headset",
	DeviceClassDesktop:   "desktop",
}

// String returns the configuration name of the device class.
func (d DeviceClass) String() string {
	if s, ok := deviceClassNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DeviceClass(%d)", int(d))
}

// ParseDeviceClass maps a configuration name to a DeviceClass.
//
// Parameters:
//   - name: one of "simulator", "headset", "desktop"
//
// Returns:
//   - DeviceClass: the matching class
//   - error: non-nil if the name is unknown
func ParseDeviceClass(name string) (DeviceClass, error) {
	for d, s := range deviceClassNames {
		if s == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown device class %q", name)
}

// EyeShift is the offset of each eye from the device origin, expressed along the
// device's right, up and forward axes.
type EyeShift struct {
	Left  mgl32.Vec3
	Right mgl32.Vec3
}

// NewEyeShift builds a symmetric shift: the left eye sits at -ipd/2 and the right at +ipd/2.
//
// Parameters:
//   - ipd: distance between the eyes in meters
//   - shiftY: offset along the device up axis
//   - shiftZ: offset along the device forward axis
//
// Returns:
//   - EyeShift: the per-eye offsets
func NewEyeShift(ipd, shiftY, shiftZ float32) EyeShift {
	return EyeShift{
		Left:  mgl32.Vec3{-ipd / 2, shiftY, shiftZ},
		Right: mgl32.Vec3{ipd / 2, shiftY, shiftZ},
	}
}

// DefaultEyeShift is the eye placement measured for the headset.
var DefaultEyeShift = NewEyeShift(0.064, -0.0261, -0.0212)

// Profile is the per-device strategy used by NewFrame.
type Profile interface {
	// Class returns the device class this profile implements.
	Class() DeviceClass

	// Projections returns the projection for each eye. Only the first eyes entries are meaningful.
	//
	// Parameters:
	//   - eyes: 1 or 2
	//   - width: output width in pixels
	//   - height: output height in pixels
	//
	// Returns:
	//   - [2]mgl32.Mat4: the per-eye projections
	Projections(eyes, width, height int) [2]mgl32.Mat4

	// EyeShift returns the per-eye offset from the device origin.
	EyeShift() EyeShift
}

type fixedProfile struct {
	class       DeviceClass
	projections [2]mgl32.Mat4
	shift       EyeShift
}

var _ Profile = &fixedProfile{}

func (p *fixedProfile) Class() DeviceClass { return p.class }

func (p *fixedProfile) Projections(eyes, width, height int) [2]mgl32.Mat4 {
	return p.projections
}

func (p *fixedProfile) EyeShift() EyeShift { return p.shift }

type desktopProfile struct {
	fovY  float32
	shift EyeShift
}

var _ Profile = &desktopProfile{}

func (p *desktopProfile) Class() DeviceClass { return DeviceClassDesktop }

func (p *desktopProfile) Projections(eyes, width, height int) [2]mgl32.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	proj := common.ReverseInfinitePerspective(p.fovY, aspect, SimulatorNear)
	return [2]mgl32.Mat4{proj, proj}
}

func (p *desktopProfile) EyeShift() EyeShift { return p.shift }

// SimulatorProjection is the fixed reverse-infinite projection used by the simulator class.
var SimulatorProjection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1.7777778, 0, 0,
	0, 0, 0, -1,
	0, 0, SimulatorNear, 0,
}

// HeadsetProjections are the measured left and right eye projections (column-major).
var HeadsetProjections = [2]mgl32.Mat4{
	{
		0.70956117, 2.7048769e-05, 0, 0.00025395412,
		1.6707818e-06, 0.8844015, 0, 6.786168e-06,
		-0.26731065, -0.08808379, 0, -1.0000936,
		0, 0, 0.09691928, 0,
	},
	{
		0.70965976, -1.7333849e-05, 0, -0.00025292352,
		2.0678665e-06, 0.8845193, 0, -8.016048e-06,
		0.2677407, -0.086908735, 0, -1.0000918,
		0, 0, 0.09693231, 0,
	},
}

// NewProfile returns the strategy for a device class.
//
// Parameters:
//   - class: the device class
//   - fovYDegrees: vertical field of view, only used by DeviceClassDesktop
//
// Returns:
//   - Profile: the strategy
func NewProfile(class DeviceClass, fovYDegrees float32) Profile {
	switch class {
	case DeviceClassHeadset:
		return &fixedProfile{class: class, projections: HeadsetProjections, shift: DefaultEyeShift}
	case DeviceClassDesktop:
		return &desktopProfile{
			fovY:  fovYDegrees * math.Pi / 180,
			shift: DefaultEyeShift,
		}
	default:
		return &fixedProfile{
			class:       DeviceClassSimulator,
			projections: [2]mgl32.Mat4{SimulatorProjection, SimulatorProjection},
		}
	}
}
