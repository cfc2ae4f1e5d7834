package camera

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

// near3 compares per component against an absolute tolerance.
func near3(a, b mgl32.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tol {
			return false
		}
	}
	return true
}

func near4x4(a, b mgl32.Mat4, tol float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tol {
			return false
		}
	}
	return true
}

func TestParseDeviceClass(t *testing.T) {
	for _, d := range []DeviceClass{DeviceClassSimulator, DeviceClassHeadset, DeviceClassDesktop} {
		got, err := ParseDeviceClass(d.String())
		if err != nil {
			t.Fatalf("ParseDeviceClass(%q) error = %v", d.String(), err)
		}
		if got != d {
			t.Errorf("ParseDeviceClass(%q) = %v, want %v", d.String(), got, d)
		}
	}
	if _, err := ParseDeviceClass("hologram"); err == nil {
		t.Error("ParseDeviceClass(hologram) error = nil, want error")
	}
}

func TestNewFrameMonoRepeatsEye(t *testing.T) {
	pose := mgl32.Translate3D(1, 2, 3)
	f := NewFrame(NewProfile(DeviceClassHeadset, 60), pose, 1, 640, 480)
	if f.EyeCount != 1 {
		t.Fatalf("EyeCount = %d, want 1", f.EyeCount)
	}
	if f.Eye(1) != f.Eye(0) {
		t.Error("Eye(1) != Eye(0) for a mono frame")
	}
	if !near4x4(f.Eye(0).WorldFromCamera, pose, eps) {
		t.Errorf("mono WorldFromCamera = %v, want %v", f.Eye(0).WorldFromCamera, pose)
	}
}

func TestNewFrameHeadsetEyeShift(t *testing.T) {
	f := NewFrame(NewProfile(DeviceClassHeadset, 60), mgl32.Ident4(), 2, 640, 480)

	tests := []struct {
		eye  int
		want mgl32.Vec3
	}{
		{0, mgl32.Vec3{-0.032, -0.0261, -0.0212}},
		{1, mgl32.Vec3{0.032, -0.0261, -0.0212}},
	}
	for _, tt := range tests {
		got := f.Eye(tt.eye).WorldFromCamera.Col(3).Vec3()
		if !near3(got, tt.want, eps) {
			t.Errorf("eye %d translation = %v, want %v", tt.eye, got, tt.want)
		}
		e := f.Eye(tt.eye)
		if !near4x4(e.CameraFromWorld.Mul4(e.WorldFromCamera), mgl32.Ident4(), eps) {
			t.Errorf("eye %d CameraFromWorld is not the inverse of WorldFromCamera", tt.eye)
		}
		if !near4x4(e.ProjectionInverse.Mul4(e.Projection), mgl32.Ident4(), 1e-3) {
			t.Errorf("eye %d ProjectionInverse is not the inverse of Projection", tt.eye)
		}
	}
	if f.Eye(0).Projection != HeadsetProjections[0] || f.Eye(1).Projection != HeadsetProjections[1] {
		t.Error("headset frame does not use the measured projections")
	}
}

func TestOffsetEyeFollowsDeviceAxes(t *testing.T) {
	// device turned 90 degrees about +Y: its right axis points along world -Z
	pose := mgl32.HomogRotate3DY(math.Pi / 2)
	got := OffsetEye(pose, mgl32.Vec3{1, 0, 0}).Col(3).Vec3()
	want := mgl32.Vec3{0, 0, -1}
	if !near3(got, want, eps) {
		t.Errorf("OffsetEye() translation = %v, want %v", got, want)
	}
}

func TestSimulatorHasNoEyeShift(t *testing.T) {
	pose := mgl32.Translate3D(0, 1.5, 2)
	f := NewFrame(NewProfile(DeviceClassSimulator, 60), pose, 2, 1280, 720)
	for i := 0; i < 2; i++ {
		if !near4x4(f.Eye(i).WorldFromCamera, pose, eps) {
			t.Errorf("eye %d WorldFromCamera = %v, want %v", i, f.Eye(i).WorldFromCamera, pose)
		}
	}
	if got := f.AspectRatio(); math.Abs(float64(got-1.7777778)) > eps {
		t.Errorf("AspectRatio() = %v, want 1.7777778", got)
	}
}

func TestDesktopAspect(t *testing.T) {
	f := NewFrame(NewProfile(DeviceClassDesktop, 60), mgl32.Ident4(), 2, 800, 400)
	if got := f.AspectRatio(); math.Abs(float64(got-2)) > eps {
		t.Errorf("AspectRatio() = %v, want 2", got)
	}
}

func TestGPUEyeBlockLayout(t *testing.T) {
	f := NewFrame(NewProfile(DeviceClassHeadset, 60), mgl32.Translate3D(0, 1, 0), 2, 320, 200)
	b := NewGPUEyeBlock(f)
	if got := b.Size(); got != 528 {
		t.Fatalf("GPUEyeBlock.Size() = %d, want 528", got)
	}
	buf := b.Marshal()
	if got := binary.LittleEndian.Uint32(buf[512:]); got != 2 {
		t.Errorf("eye_count = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(buf[520:]); got != 320 {
		t.Errorf("texture_size.x = %d, want 320", got)
	}
	if got := binary.LittleEndian.Uint32(buf[524:]); got != 200 {
		t.Errorf("texture_size.y = %d, want 200", got)
	}
	p1 := math.Float32frombits(binary.LittleEndian.Uint32(buf[256+128:]))
	if p1 != HeadsetProjections[1][0] {
		t.Errorf("right projection[0] = %v, want %v", p1, HeadsetProjections[1][0])
	}
}

func TestSurfaceEyeFromSceneMatchesScene(t *testing.T) {
	f := NewFrame(NewProfile(DeviceClassHeadset, 60), mgl32.Translate3D(2, 0, -1), 2, 64, 64)
	scene := NewGPUEyeBlock(f)
	surface := SurfaceEyeFromScene(scene)
	if got := surface.Size(); got != 400 {
		t.Fatalf("GPUSurfaceEyeBlock.Size() = %d, want 400", got)
	}
	for i := range scene.Eyes {
		if surface.Eyes[i].ProjectionInverse != scene.Eyes[i].ProjectionInverse {
			t.Errorf("eye %d projection inverse differs between scene and surface blocks", i)
		}
		if surface.Eyes[i].CameraFromWorld != scene.Eyes[i].CameraFromWorld {
			t.Errorf("eye %d camera-from-world differs between scene and surface blocks", i)
		}
		if surface.Eyes[i].WorldFromCamera != scene.Eyes[i].WorldFromCamera {
			t.Errorf("eye %d world-from-camera differs between scene and surface blocks", i)
		}
	}
	if surface.EyeCount != scene.EyeCount || surface.TextureSize != scene.TextureSize {
		t.Errorf("surface header = (%d, %v), want (%d, %v)", surface.EyeCount, surface.TextureSize, scene.EyeCount, scene.TextureSize)
	}
}

func TestOrbitPoseProviderLifecycle(t *testing.T) {
	epoch := time.Unix(1000, 0)
	p := NewOrbitPoseProvider(
		WithWarmup(0),
		WithAngularSpeed(0),
		WithRadius(2),
		WithElevation(0),
		WithTarget(mgl32.Vec3{0, 1, 0}),
		WithClock(func() time.Time { return epoch }),
	)
	if _, ok := p.Pose(epoch); ok {
		t.Fatal("Pose() ok = true before Start")
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !p.Ready() {
		t.Fatal("Ready() = false after Start")
	}
	pose, ok := p.Pose(epoch.Add(time.Second))
	if !ok {
		t.Fatal("Pose() ok = false after Start")
	}
	got := pose.Col(3).Vec3()
	want := mgl32.Vec3{0, 1, 2}
	if !near3(got, want, eps) {
		t.Errorf("Pose() position = %v, want %v", got, want)
	}
	// the device looks at the target along its -Z axis
	forward := pose.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	if !near3(forward, mgl32.Vec3{0, 0, -1}, eps) {
		t.Errorf("Pose() forward = %v, want (0, 0, -1)", forward)
	}
}

func TestOrbitPoseProviderZoomClamps(t *testing.T) {
	epoch := time.Unix(0, 0)
	p := NewOrbitPoseProvider(
		WithWarmup(0),
		WithAngularSpeed(0),
		WithElevation(0),
		WithTarget(mgl32.Vec3{}),
		WithRadius(1),
		WithRadiusBounds(0.5, 3),
		WithZoomSpeed(1),
		WithClock(func() time.Time { return epoch }),
	)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	p.Zoom(10)
	pose, _ := p.Pose(epoch)
	if got := pose.Col(3).Vec3().Len(); math.Abs(float64(got-0.5)) > eps {
		t.Errorf("radius after Zoom(10) = %v, want 0.5", got)
	}
	p.Zoom(-10)
	pose, _ = p.Pose(epoch)
	if got := pose.Col(3).Vec3().Len(); math.Abs(float64(got-3)) > eps {
		t.Errorf("radius after Zoom(-10) = %v, want 3", got)
	}
}

func TestOrbitPoseProviderStartCancelled(t *testing.T) {
	p := NewOrbitPoseProvider(WithWarmup(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want %v", err, context.Canceled)
	}
	if p.Ready() {
		t.Error("Ready() = true after a cancelled Start")
	}
}
