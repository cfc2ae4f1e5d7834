package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/engine/uniform"
	"github.com/cogentcore/webgpu/wgpu"
)

// UniformTexture encodes the frame's camera matrices into the uniform target. The
// rows are written to a staging buffer with the copy row pitch and copied into the
// texture on the frame encoder.
type UniformTexture struct {
	targets *Targets
	staging *wgpu.Buffer
	ready   bool
}

var _ Pass = &UniformTexture{}

// NewUniformTexture creates the staging buffer of the uniform texture.
func NewUniformTexture(dev Device, targets *Targets) (*UniformTexture, error) {
	staging, err := dev.CreateBuffer("Uniform Staging", uniform.StagedSize, wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("uniform texture: %w", err)
	}
	return &UniformTexture{targets: targets, staging: staging, ready: true}, nil
}

// Name returns "uniform_texture".
func (u *UniformTexture) Name() string { return "uniform_texture" }

func (u *UniformTexture) Prepare(dev Device, f *Frame) error {
	if !u.ready {
		return ErrNotInitialized
	}
	dev.WriteBuffer(u.staging, 0, uniform.Staged(uniform.FromCamera(f.Camera)))
	return nil
}

func (u *UniformTexture) Record(enc Encoder, _ *Frame) error {
	if !u.ready {
		return ErrNotInitialized
	}
	if err := enc.CopyBufferToTexture(u.staging, uniform.StagedRowPitch, u.targets.Uniform.Texture, 0, uniform.Width, uniform.Rows); err != nil {
		return fmt.Errorf("uniform texture: %w", err)
	}
	return nil
}

func (u *UniformTexture) Release() {
	if u.staging != nil {
		u.staging.Release()
		u.staging = nil
	}
	u.ready = false
}
