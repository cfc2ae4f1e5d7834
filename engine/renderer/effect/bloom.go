package effect

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BloomIterations is the number of Kawase blur passes.
const BloomIterations = 6

// BrightSource marks a BloomStep that reads the bright-extraction output.
const BrightSource = -1

// BloomStep is one blur iteration.
type BloomStep struct {
	// Offset is the diagonal sample distance in UV units.
	Offset mgl32.Vec2

	// Source is the ping-pong index read, or BrightSource.
	Source int

	// Target is the ping-pong index written.
	Target int
}

// BloomSchedule returns the blur iterations: offsets of 1, 2, 4 ... texels of a
// 1024-wide quarter-resolution target, divided by (1, aspect) so the kernel stays round.
//
// Parameters:
//   - aspect: P[1][1] / P[0][0] of the first eye, 1 if unknown
//   - iterations: number of passes, at least 1
//
// Returns:
//   - []BloomStep: the iterations in encode order
func BloomSchedule(aspect float32, iterations int) []BloomStep {
	if aspect == 0 {
		aspect = 1
	}
	iterations = max(iterations, 1)
	steps := make([]BloomStep, iterations)
	for i := range steps {
		texels := float32(int(1) << i)
		steps[i] = BloomStep{
			Offset: mgl32.Vec2{texels / 1024 / 4, texels / 1024 / 4 / aspect},
			Source: BrightSource,
			Target: i % 2,
		}
		if i > 0 {
			steps[i].Source = (i - 1) % 2
		}
	}
	return steps
}

// BloomOutput returns the ping-pong index holding the result after iterations passes.
func BloomOutput(iterations int) int {
	return (max(iterations, 1) - 1) % 2
}

// KawaseSample averages four bilinear taps at the diagonal offsets around uv.
// This is the bloom fragment shader on the CPU; sample stands in for the input texture.
//
// Parameters:
//   - sample: returns the filtered input color at a UV coordinate
//   - uv: the output texel center
//   - offset: the iteration's BloomStep.Offset
//
// Returns:
//   - mgl32.Vec3: the blurred color
func KawaseSample(sample func(mgl32.Vec2) mgl32.Vec3, uv, offset mgl32.Vec2) mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, d := range [4]mgl32.Vec2{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		sum = sum.Add(sample(uv.Add(mgl32.Vec2{d[0] * offset[0], d[1] * offset[1]})))
	}
	return sum.Mul(0.25)
}
