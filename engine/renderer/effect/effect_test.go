package effect

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBrightExtract(t *testing.T) {
	p := DefaultBrightParams()
	tests := []struct {
		name string
		in   mgl32.Vec3
		want mgl32.Vec3
	}{
		{"black", mgl32.Vec3{}, mgl32.Vec3{}},
		{"far below threshold", mgl32.Vec3{0.1, 0.1, 0.1}, mgl32.Vec3{}},
		{"at threshold", mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0.125, 0.125, 0.125}},
		{"above knee", mgl32.Vec3{3, 3, 3}, mgl32.Vec3{2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Extract(tt.in); !got.ApproxEqualThreshold(tt.want, 1e-4) {
				t.Errorf("Extract(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	hard := BrightParams{Threshold: 1}
	if got := hard.Extract(mgl32.Vec3{0.9, 0.9, 0.9}); got != (mgl32.Vec3{}) {
		t.Errorf("hard Extract() below threshold = %v, want zero", got)
	}
}

func TestBloomSchedule(t *testing.T) {
	steps := BloomSchedule(2, BloomIterations)
	if len(steps) != BloomIterations {
		t.Fatalf("len(BloomSchedule()) = %d, want %d", len(steps), BloomIterations)
	}
	wantSources := []int{BrightSource, 0, 1, 0, 1, 0}
	for i, s := range steps {
		if s.Target != i%2 {
			t.Errorf("step %d target = %d, want %d", i, s.Target, i%2)
		}
		if s.Source != wantSources[i] {
			t.Errorf("step %d source = %d, want %d", i, s.Source, wantSources[i])
		}
		texels := float32(int(1) << i)
		want := mgl32.Vec2{texels / 4096, texels / 4096 / 2}
		if !s.Offset.ApproxEqual(want) {
			t.Errorf("step %d offset = %v, want %v", i, s.Offset, want)
		}
	}
	if got := BloomOutput(BloomIterations); got != steps[len(steps)-1].Target {
		t.Errorf("BloomOutput() = %d, want %d", got, steps[len(steps)-1].Target)
	}
	if got := BloomSchedule(0, 0); len(got) != 1 || got[0].Offset[1] != got[0].Offset[0] {
		t.Errorf("BloomSchedule(0, 0) = %v, want one square step", got)
	}
}

// runBloom blurs a 1D row of texels through the whole schedule, clamping at the edges.
func runBloom(row []mgl32.Vec3) []mgl32.Vec3 {
	n := len(row)
	sampler := func(src []mgl32.Vec3) func(mgl32.Vec2) mgl32.Vec3 {
		return func(uv mgl32.Vec2) mgl32.Vec3 {
			x := int(uv[0] * float32(n))
			x = min(max(x, 0), n-1)
			return src[x]
		}
	}
	ping := [2][]mgl32.Vec3{make([]mgl32.Vec3, n), make([]mgl32.Vec3, n)}
	for _, step := range BloomSchedule(1, BloomIterations) {
		src := row
		if step.Source != BrightSource {
			src = ping[step.Source]
		}
		out := make([]mgl32.Vec3, n)
		for x := range out {
			uv := mgl32.Vec2{(float32(x) + 0.5) / float32(n), 0.5}
			out[x] = KawaseSample(sampler(src), uv, step.Offset.Mul(256))
		}
		ping[step.Target] = out
	}
	return ping[BloomOutput(BloomIterations)]
}

func TestBloomZeroInputStaysZero(t *testing.T) {
	for x, c := range runBloom(make([]mgl32.Vec3, 64)) {
		if c != (mgl32.Vec3{}) {
			t.Fatalf("texel %d = %v, want zero", x, c)
		}
	}
}

func TestBloomIsLinear(t *testing.T) {
	row := make([]mgl32.Vec3, 64)
	row[32] = mgl32.Vec3{1, 0.5, 0.25}
	double := make([]mgl32.Vec3, 64)
	double[32] = row[32].Mul(2)

	a, b := runBloom(row), runBloom(double)
	for x := range a {
		if !a[x].Mul(2).ApproxEqualThreshold(b[x], 1e-6) {
			t.Fatalf("texel %d: 2*bloom(x) = %v, bloom(2x) = %v", x, a[x].Mul(2), b[x])
		}
	}
}

func TestEffectiveWeights(t *testing.T) {
	got := EffectiveWeights(DefaultCompositeWeights, [CompositeSlots]bool{true, true, false, false})
	want := [CompositeSlots]float32{0, 0.25, 0, 0}
	if got != want {
		t.Errorf("EffectiveWeights() = %v, want %v", got, want)
	}
	if DefaultCompositeWeights[SlotReserved] != 2 {
		t.Error("EffectiveWeights() modified DefaultCompositeWeights")
	}
}

func TestCombineWithAllSlotsNull(t *testing.T) {
	scene := mgl32.Vec3{0.2, 0.4, 0.6}
	// absent slots sample the black fallback texture
	weights := EffectiveWeights(DefaultCompositeWeights, [CompositeSlots]bool{})
	if got := Combine(scene, [CompositeSlots]mgl32.Vec3{}, weights); got != scene {
		t.Errorf("Combine() = %v, want %v", got, scene)
	}

	slots := [CompositeSlots]mgl32.Vec3{scene, {1, 1, 1}, {0.5, 0, 0}, {}}
	want := mgl32.Vec3{0.2 + 0.25 + 0.5, 0.4 + 0.25, 0.6 + 0.25}
	if got := Combine(scene, slots, DefaultCompositeWeights); !got.ApproxEqualThreshold(want, 1e-6) {
		t.Errorf("Combine() = %v, want %v", got, want)
	}
}

func TestGPUParamSizes(t *testing.T) {
	b := NewGPUBrightParams(DefaultBrightParams())
	bl := GPUBloomParams{Offset: [2]float32{1, 2}}
	c := GPUCompositeParams{Weights: DefaultCompositeWeights}
	for name, size := range map[string]int{
		"GPUBrightParams":    len(b.Marshal()),
		"GPUBloomParams":     len(bl.Marshal()),
		"GPUCompositeParams": len(c.Marshal()),
	} {
		if size != 16 {
			t.Errorf("%s size = %d, want 16", name, size)
		}
	}
}
