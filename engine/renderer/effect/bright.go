// Package effect holds the parameters of the full-screen post effects and the
// CPU reference of the math their fragment shaders run.
package effect

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Rec. 709 luminance weights.
var luminanceWeights = mgl32.Vec3{0.2126, 0.7152, 0.0722}

// BrightParams configures the bright-extraction pass.
type BrightParams struct {
	// Threshold is the luminance above which color passes into the bloom source.
	Threshold float32

	// Knee widens the transition below Threshold into a quadratic ramp. Zero is a hard cut.
	Knee float32
}

// DefaultBrightParams returns threshold 1 with a soft knee of 0.5.
func DefaultBrightParams() BrightParams {
	return BrightParams{Threshold: 1.0, Knee: 0.5}
}

// Luminance returns the Rec. 709 luminance of a linear RGB color.
func Luminance(c mgl32.Vec3) float32 {
	return c.Dot(luminanceWeights)
}

// Extract returns the part of c that passes the threshold. Colors far below the
// threshold map to black and colors far above it keep their excess.
//
// Parameters:
//   - c: linear scene color
//
// Returns:
//   - mgl32.Vec3: the bloom source color
func (p BrightParams) Extract(c mgl32.Vec3) mgl32.Vec3 {
	l := Luminance(c)
	if l <= 1e-5 {
		return mgl32.Vec3{}
	}
	soft := mgl32.Clamp(l-p.Threshold+p.Knee, 0, 2*p.Knee)
	soft = soft * soft / (4*p.Knee + 1e-5)
	contribution := max(soft, l-p.Threshold) / l
	return c.Mul(max(contribution, 0))
}
