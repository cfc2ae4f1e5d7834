package effect

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CompositeSlots is the number of overlay inputs of the composite pass.
const CompositeSlots = 4

// Composite slot indices.
const (
	SlotScene = iota
	SlotBloom
	SlotLight
	SlotReserved
)

// DefaultCompositeWeights: the scene is passed through separately, bloom is a
// faint overlay and the light accumulation is added at full strength.
var DefaultCompositeWeights = [CompositeSlots]float32{0, 0.25, 1, 2}

// EffectiveWeights zeroes the weight of every slot that has no input texture.
//
// Parameters:
//   - weights: configured per-slot weights
//   - present: whether each slot has a texture bound
//
// Returns:
//   - [CompositeSlots]float32: the weights uploaded to the shader
func EffectiveWeights(weights [CompositeSlots]float32, present [CompositeSlots]bool) [CompositeSlots]float32 {
	for i := range weights {
		if !present[i] {
			weights[i] = 0
		}
	}
	return weights
}

// Combine is the composite fragment shader on the CPU:
// scene + sum of weights[i] * slots[i].
//
// Parameters:
//   - scene: the scene color
//   - slots: the slot samples, zero for absent slots
//   - weights: effective weights
//
// Returns:
//   - mgl32.Vec3: the output color
func Combine(scene mgl32.Vec3, slots [CompositeSlots]mgl32.Vec3, weights [CompositeSlots]float32) mgl32.Vec3 {
	out := scene
	for i, s := range slots {
		out = out.Add(s.Mul(weights[i]))
	}
	return out
}
