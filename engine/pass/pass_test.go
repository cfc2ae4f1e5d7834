package pass_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/camera"
	"github.com/Carmen-Shannon/oxy-stereo/engine/light"
	"github.com/Carmen-Shannon/oxy-stereo/engine/model"
	"github.com/Carmen-Shannon/oxy-stereo/engine/pass"
	"github.com/Carmen-Shannon/oxy-stereo/engine/pass/passtest"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-stereo/engine/uniform"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

func setup(t *testing.T, eyes int) (*passtest.Recorder, *pass.Targets, *pass.Shared) {
	t.Helper()
	rec := passtest.NewRecorder()
	targets, err := pass.NewTargets(rec, 640, 360, eyes)
	if err != nil {
		t.Fatalf("NewTargets() error = %v", err)
	}
	shared, err := pass.NewShared(rec, eyes)
	if err != nil {
		t.Fatalf("NewShared() error = %v", err)
	}
	t.Cleanup(func() {
		shared.Release()
		targets.Release()
	})
	rec.Reset()
	return rec, targets, shared
}

func newFrame(eyes, lights int, drawables ...pass.Drawable) *pass.Frame {
	profile := camera.NewProfile(camera.DeviceClassDesktop, 60)
	cam := camera.NewFrame(profile, mgl32.Translate3D(0, 0, 5), eyes, 640, 360)
	return &pass.Frame{Camera: cam, Drawables: drawables, Lights: lights}
}

// run prepares and records p inside one frame.
func run(t *testing.T, rec *passtest.Recorder, p pass.Pass, f *pass.Frame) {
	t.Helper()
	if err := p.Prepare(rec, f); err != nil {
		t.Fatalf("%s Prepare() error = %v", p.Name(), err)
	}
	if err := rec.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if err := p.Record(rec, f); err != nil {
		t.Fatalf("%s Record() error = %v", p.Name(), err)
	}
	if err := rec.EndFrame(); err != nil {
		t.Fatalf("EndFrame() error = %v", err)
	}
}

func TestNewTargets(t *testing.T) {
	for _, eyes := range []int{1, 2} {
		rec := passtest.NewRecorder()
		targets, err := pass.NewTargets(rec, 640, 360, eyes)
		if err != nil {
			t.Fatalf("NewTargets(%d eyes) error = %v", eyes, err)
		}
		all := targets.All()
		for _, tex := range all[:len(all)-1] {
			if tex.Layers() != eyes {
				t.Errorf("%s layers = %d, want %d", tex.Descriptor.Label, tex.Layers(), eyes)
			}
		}
		if d := targets.Bright.Descriptor; d.Width != 320 || d.Height != 180 {
			t.Errorf("Bright size = %dx%d, want 320x180", d.Width, d.Height)
		}
		for i, tex := range targets.Bloom {
			if d := tex.Descriptor; d.Width != 160 || d.Height != 90 {
				t.Errorf("Bloom[%d] size = %dx%d, want 160x90", i, d.Width, d.Height)
			}
		}
		if d := targets.Uniform.Descriptor; d.Width != uniform.Width || d.Height != uniform.Rows || d.Layers != 1 || d.Format != pass.UniformFormat {
			t.Errorf("Uniform descriptor = %+v, want %dx%d single-layer RGBA32F", d, uniform.Width, uniform.Rows)
		}
		if targets.Depth.Descriptor.Format != pass.DepthFormat {
			t.Errorf("Depth format = %v, want %v", targets.Depth.Descriptor.Format, pass.DepthFormat)
		}
		targets.Release()
	}
}

func TestNewTargetsInvalid(t *testing.T) {
	rec := passtest.NewRecorder()
	tests := []struct {
		name                 string
		width, height, eyes int
	}{
		{"zero width", 0, 360, 1},
		{"zero height", 640, 0, 1},
		{"no eyes", 640, 360, 0},
		{"three eyes", 640, 360, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := pass.NewTargets(rec, tt.width, tt.height, tt.eyes); err == nil {
				t.Errorf("NewTargets(%d, %d, %d) error = nil, want error", tt.width, tt.height, tt.eyes)
			}
		})
	}

	failing := passtest.NewRecorder()
	failing.Fail = map[string]error{"CreateArrayTexture": errors.New("out of memory")}
	if _, err := pass.NewTargets(failing, 640, 360, 2); err == nil {
		t.Error("NewTargets() with failing device error = nil, want error")
	}
}

func TestBrightRecord(t *testing.T) {
	rec, targets, shared := setup(t, 2)
	b, err := pass.NewBright(rec, targets, shared, effect.DefaultBrightParams())
	if err != nil {
		t.Fatalf("NewBright() error = %v", err)
	}
	defer b.Release()

	f := newFrame(2, 0)
	run(t, rec, b, f)
	if got := rec.Count("WriteBuffers"); got != 1 {
		t.Errorf("params writes after first frame = %d, want 1", got)
	}
	want := []string{"Bright Eye 0", "Bright Eye 1"}
	if got := rec.Labels("BeginPass"); !slices.Equal(got, want) {
		t.Errorf("passes = %v, want %v", got, want)
	}
	for i, c := range rec.Filter("Draw") {
		if want := []int{3, 1, 0, i}; !slices.Equal(c.Args, want) {
			t.Errorf("Draw %d args = %v, want %v", i, c.Args, want)
		}
	}

	rec.Reset()
	run(t, rec, b, f)
	if got := rec.Count("WriteBuffers"); got != 0 {
		t.Errorf("params writes without change = %d, want 0", got)
	}
	b.SetParams(effect.BrightParams{Threshold: 2})
	rec.Reset()
	run(t, rec, b, f)
	if got := rec.Count("WriteBuffers"); got != 1 {
		t.Errorf("params writes after SetParams = %d, want 1", got)
	}
}

func TestBloomRecord(t *testing.T) {
	rec, targets, shared := setup(t, 1)
	b, err := pass.NewBloom(rec, targets, shared, 0)
	if err != nil {
		t.Fatalf("NewBloom() error = %v", err)
	}
	defer b.Release()
	if b.Iterations() != effect.BloomIterations {
		t.Fatalf("Iterations() = %d, want %d", b.Iterations(), effect.BloomIterations)
	}
	if b.Output() != targets.Bloom[1] {
		t.Errorf("Output() is not Bloom[1]")
	}

	run(t, rec, b, newFrame(1, 0))
	if got := rec.Count("WriteBuffers"); got != effect.BloomIterations {
		t.Errorf("params writes = %d, want %d", got, effect.BloomIterations)
	}
	if got := rec.Count("BeginPass"); got != effect.BloomIterations {
		t.Errorf("passes = %d, want %d", got, effect.BloomIterations)
	}

	// every pass binds its params, then the texture written by the previous pass
	wantGroups := []string{
		"Bloom Params 0", "Bloom Source Bright",
		"Bloom Params 1", "Bloom Source 0",
		"Bloom Params 2", "Bloom Source 1",
		"Bloom Params 3", "Bloom Source 0",
		"Bloom Params 4", "Bloom Source 1",
		"Bloom Params 5", "Bloom Source 0",
	}
	if got := rec.Labels("SetBindGroup"); !slices.Equal(got, wantGroups) {
		t.Errorf("bind groups = %v, want %v", got, wantGroups)
	}
	for i, label := range rec.Labels("BeginPass") {
		if want := fmt.Sprintf("Bloom %d Eye 0", i); label != want {
			t.Errorf("pass %d = %q, want %q", i, label, want)
		}
	}
}

func TestCompositeWeights(t *testing.T) {
	rec, targets, shared := setup(t, 2)
	slots := pass.Slots{targets.Color, targets.Bloom[1], targets.Light, nil}
	c, err := pass.NewComposite(rec, targets, shared, slots, effect.DefaultCompositeWeights)
	if err != nil {
		t.Fatalf("NewComposite() error = %v", err)
	}
	defer c.Release()

	if got, want := c.Weights(), [4]float32{0, 0.25, 1, 0}; got != want {
		t.Errorf("Weights() = %v, want %v", got, want)
	}
	if got, want := c.Present(), [4]bool{true, true, true, false}; got != want {
		t.Errorf("Present() = %v, want %v", got, want)
	}

	c.SetWeights([4]float32{1, 1, 1, 1})
	run(t, rec, c, newFrame(2, 0))
	writes := rec.Filter("WriteBuffers")
	if len(writes) != 1 {
		t.Fatalf("params writes = %d, want 1", len(writes))
	}
	data := writes[0].Data
	for i, want := range []float32{1, 1, 1, 0} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		if got != want {
			t.Errorf("uploaded weight %d = %v, want %v", i, got, want)
		}
	}
	if got := rec.Count("BeginPass"); got != 2 {
		t.Errorf("passes = %d, want 2", got)
	}
}

func TestVolumeLightRecord(t *testing.T) {
	_, indices, count := light.ConeMeshBytes()
	if int(count)*4 != len(indices) {
		t.Fatalf("cone index count = %d, want %d", count, len(indices)/4)
	}

	t.Run("no lights", func(t *testing.T) {
		rec, targets, shared := setup(t, 2)
		v, err := pass.NewVolumeLight(rec, targets, shared)
		if err != nil {
			t.Fatalf("NewVolumeLight() error = %v", err)
		}
		defer v.Release()

		run(t, rec, v, newFrame(2, 0))
		if got := rec.Count("BeginPass"); got != 2 {
			t.Errorf("passes = %d, want 2 clearing passes", got)
		}
		if got := rec.Count("DrawIndexed"); got != 0 {
			t.Errorf("draws = %d, want 0", got)
		}
		for _, c := range rec.Filter("BeginPass") {
			if c.Pass.Color[0].Clear == nil {
				t.Errorf("%s loads the light target, want clear", c.Label)
			}
		}
	})

	t.Run("three lights", func(t *testing.T) {
		rec, targets, shared := setup(t, 2)
		v, err := pass.NewVolumeLight(rec, targets, shared)
		if err != nil {
			t.Fatalf("NewVolumeLight() error = %v", err)
		}
		defer v.Release()

		run(t, rec, v, newFrame(2, 3))
		draws := rec.Filter("DrawIndexed")
		if len(draws) != 2 {
			t.Fatalf("draws = %d, want 2", len(draws))
		}
		for eye, c := range draws {
			want := []int{int(count), 3, 0, 0, eye * 3}
			if !slices.Equal(c.Args, want) {
				t.Errorf("eye %d DrawIndexed args = %v, want %v", eye, c.Args, want)
			}
		}
		for _, c := range rec.Filter("BeginPass") {
			if c.Pass.Depth == nil || c.Pass.Depth.Clear != nil {
				t.Errorf("%s does not load scene depth", c.Label)
			}
		}
	})
}

func TestVolumeLightPipelineHasConeLayout(t *testing.T) {
	rec, targets, shared := setup(t, 2)
	v, err := pass.NewVolumeLight(rec, targets, shared)
	if err != nil {
		t.Fatalf("NewVolumeLight() error = %v", err)
	}
	defer v.Release()

	p := rec.Pipeline("pass.volume_light")
	if p == nil {
		t.Fatal("volume light pipeline not registered")
	}
	layouts := pipeline.ResolveVertexLayouts(p)
	if len(layouts) != 1 {
		t.Fatalf("len(ResolveVertexLayouts()) = %d, want 1", len(layouts))
	}
	want := light.ConeVertexLayout()
	if got := layouts[0].ArrayStride; got != want.ArrayStride {
		t.Errorf("ArrayStride = %d, want %d", got, want.ArrayStride)
	}
	if got := layouts[0].Attributes; !slices.Equal(got, want.Attributes) {
		t.Errorf("Attributes = %v, want %v", got, want.Attributes)
	}

	vertices, _, _ := light.ConeMeshBytes()
	if len(vertices)%int(want.ArrayStride) != 0 {
		t.Errorf("cone vertex bytes = %d, not a multiple of stride %d", len(vertices), want.ArrayStride)
	}
}

func TestRecorderRejectsUncoveredVertexInputs(t *testing.T) {
	rec := passtest.NewRecorder()
	vert := shader.MustShader("cone_vert", shader.ShaderTypeVertex, `struct ConeIn {
    @location(0) position: vec3<f32>,
}

@vertex
fn vs_main(in: ConeIn) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 1.0);
}
`)
	frag := shader.MustShader("flat_frag", shader.ShaderTypeFragment, `@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`)
	p := pipeline.NewPipeline("uncovered",
		pipeline.WithVertexShader(vert),
		pipeline.WithFragmentShader(frag),
		pipeline.WithVertexLayout(wgpu.VertexBufferLayout{ArrayStride: 12}),
	)
	if err := rec.RegisterPipelines(p); err == nil {
		t.Fatal("RegisterPipelines() error = nil, want an uncovered @location(0) error")
	}
	if rec.Pipeline("uncovered") != nil {
		t.Error("rejected pipeline was registered")
	}
}

func TestSurfaceLightRecord(t *testing.T) {
	rec, targets, shared := setup(t, 2)
	s, err := pass.NewSurfaceLight(rec, targets, shared)
	if err != nil {
		t.Fatalf("NewSurfaceLight() error = %v", err)
	}
	defer s.Release()

	run(t, rec, s, newFrame(2, 0))
	if got := rec.Count("BeginPass"); got != 0 {
		t.Errorf("passes without lights = %d, want 0", got)
	}

	rec.Reset()
	run(t, rec, s, newFrame(2, 4))
	passes := rec.Filter("BeginPass")
	if len(passes) != 2 {
		t.Fatalf("passes = %d, want 2", len(passes))
	}
	for _, c := range passes {
		if c.Pass.Color[0].Clear != nil {
			t.Errorf("%s clears the light target, want load", c.Label)
		}
	}
}

func TestUniformTextureRecord(t *testing.T) {
	rec, targets, _ := setup(t, 2)
	u, err := pass.NewUniformTexture(rec, targets)
	if err != nil {
		t.Fatalf("NewUniformTexture() error = %v", err)
	}
	defer u.Release()

	run(t, rec, u, newFrame(2, 0))
	writes := rec.Filter("WriteBuffer")
	if len(writes) != 1 || len(writes[0].Data) != uniform.StagedSize {
		t.Fatalf("staging writes = %v, want one of %d bytes", len(writes), uniform.StagedSize)
	}
	copies := rec.Filter("CopyBufferToTexture")
	if len(copies) != 1 {
		t.Fatalf("copies = %d, want 1", len(copies))
	}
	if want := []int{uniform.StagedRowPitch, 0, uniform.Width, uniform.Rows}; !slices.Equal(copies[0].Args, want) {
		t.Errorf("copy args = %v, want %v", copies[0].Args, want)
	}

	u.Release()
	if err := u.Prepare(rec, newFrame(2, 0)); !errors.Is(err, pass.ErrNotInitialized) {
		t.Errorf("Prepare() after Release error = %v, want ErrNotInitialized", err)
	}
}

func TestDebugRecord(t *testing.T) {
	rec, targets, shared := setup(t, 1)
	d, err := pass.NewDebug(rec, targets, shared, targets.Bloom[1])
	if err != nil {
		t.Fatalf("NewDebug() error = %v", err)
	}
	defer d.Release()

	run(t, rec, d, newFrame(1, 0))
	if got := rec.Count("BeginPass"); got != 0 {
		t.Errorf("passes with no source = %d, want 0", got)
	}

	tests := []struct {
		src      pass.DebugSource
		pipeline string
		group    string
	}{
		{pass.DebugSourceDepth, "pass.debug.depth", "Debug depth"},
		{pass.DebugSourceBloom, "pass.debug.copy", "Debug bloom"},
		{pass.DebugSourceLight, "pass.debug.copy", "Debug volume_light"},
	}
	for _, tt := range tests {
		t.Run(tt.src.String(), func(t *testing.T) {
			rec.Reset()
			d.SetSource(tt.src)
			run(t, rec, d, newFrame(1, 0))
			if got := rec.Labels("SetPipeline"); !slices.Equal(got, []string{tt.pipeline}) {
				t.Errorf("pipelines = %v, want [%s]", got, tt.pipeline)
			}
			if got := rec.Labels("SetBindGroup"); !slices.Equal(got, []string{tt.group}) {
				t.Errorf("groups = %v, want [%s]", got, tt.group)
			}
		})
	}

	if got := pass.DebugSource(42).String(); got != "DebugSource(42)" {
		t.Errorf("String() = %q, want %q", got, "DebugSource(42)")
	}
}

func TestPresenter(t *testing.T) {
	rec, targets, shared := setup(t, 2)
	if _, err := pass.NewPresenter(rec, targets, shared); !errors.Is(err, renderer.ErrHeadless) {
		t.Fatalf("NewPresenter() headless error = %v, want ErrHeadless", err)
	}

	rec.Surface = wgpu.TextureFormatBGRA8Unorm
	p, err := pass.NewPresenter(rec, targets, shared)
	if err != nil {
		t.Fatalf("NewPresenter() error = %v", err)
	}
	defer p.Release()

	run(t, rec, p, newFrame(2, 0))
	if got := rec.Count("AcquireSurfaceView"); got != 1 {
		t.Errorf("surface acquisitions = %d, want 1", got)
	}
	if got := rec.Labels("SetBindGroup"); !slices.Equal(got, []string{"Present Composite"}) {
		t.Errorf("groups = %v, want [Present Composite]", got)
	}

	p.ShowDebug(true)
	rec.Reset()
	run(t, rec, p, newFrame(2, 0))
	if got := rec.Labels("SetBindGroup"); !slices.Equal(got, []string{"Present Debug"}) {
		t.Errorf("groups = %v, want [Present Debug]", got)
	}
}

func cubeMesh(t *testing.T) *model.MeshBinding {
	t.Helper()
	vertices, indices := model.Cube(1)
	mesh, err := model.NewMeshBinding("cube", vertices, indices)
	if err != nil {
		t.Fatalf("NewMeshBinding() error = %v", err)
	}
	return mesh
}

func pngTexture(t *testing.T, alpha uint8) *common.ImportedTexture {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: alpha})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return &common.ImportedTexture{Name: "test", Data: buf.Bytes()}
}

func TestSceneRecord(t *testing.T) {
	rec, targets, shared := setup(t, 2)
	s, err := pass.NewScene(rec, targets, shared)
	if err != nil {
		t.Fatalf("NewScene() error = %v", err)
	}
	defer s.Release()

	mesh := cubeMesh(t)
	f := newFrame(2, 0,
		pass.Drawable{WorldFromModel: mgl32.Ident4(), Mesh: mesh},
		// behind the camera
		pass.Drawable{WorldFromModel: mgl32.Translate3D(0, 0, 100), Mesh: mesh},
	)
	run(t, rec, s, f)

	if got := rec.Count("WriteBuffers"); got != 2 {
		t.Errorf("model uniform writes = %d, want 2", got)
	}
	passes := rec.Filter("BeginPass")
	if len(passes) != 2 {
		t.Fatalf("passes = %d, want 2", len(passes))
	}
	for _, c := range passes {
		if len(c.Pass.Color) != 3 {
			t.Errorf("%s color attachments = %d, want 3", c.Label, len(c.Pass.Color))
		}
		if c.Pass.Depth == nil || c.Pass.Depth.Clear == nil || *c.Pass.Depth.Clear != 0 {
			t.Errorf("%s does not clear depth to 0", c.Label)
		}
	}
	draws := rec.Filter("DrawIndexed")
	if len(draws) != 2 {
		t.Fatalf("draws = %d, want one visible cube per eye", len(draws))
	}
	for eye, c := range draws {
		want := []int{mesh.IndexCount(), 1, 0, 0, eye}
		if !slices.Equal(c.Args, want) {
			t.Errorf("eye %d DrawIndexed args = %v, want %v", eye, c.Args, want)
		}
	}
	for _, key := range rec.Labels("SetPipeline") {
		if !strings.HasPrefix(key, "pass.scene.two_sided.") {
			t.Errorf("untextured mesh drawn with %s, want two-sided pipeline", key)
		}
	}
}

func TestSceneEmpty(t *testing.T) {
	rec, targets, shared := setup(t, 2)
	s, err := pass.NewScene(rec, targets, shared)
	if err != nil {
		t.Fatalf("NewScene() error = %v", err)
	}
	defer s.Release()

	run(t, rec, s, newFrame(2, 0))
	if got := rec.Count("BeginPass"); got != 2 {
		t.Errorf("passes = %d, want 2 clearing passes", got)
	}
	if got := rec.Count("DrawIndexed"); got != 0 {
		t.Errorf("draws = %d, want 0", got)
	}
}

func TestSceneMaterials(t *testing.T) {
	rec, targets, shared := setup(t, 1)
	s, err := pass.NewScene(rec, targets, shared, pass.WithTextureCacheCapacity(1))
	if err != nil {
		t.Fatalf("NewScene() error = %v", err)
	}
	defer s.Release()

	mesh := cubeMesh(t)
	opaque := material.NewMaterial(1, material.WithBaseColorTexture(pngTexture(t, 255)))
	translucent := material.NewMaterial(2, material.WithBaseColorTexture(pngTexture(t, 128)))

	uploads := func() int {
		n := 0
		for _, label := range rec.Labels("UploadTexture") {
			if strings.HasPrefix(label, "Material") {
				n++
			}
		}
		return n
	}

	single := newFrame(1, 0, pass.Drawable{WorldFromModel: mgl32.Ident4(), Mesh: mesh, Material: opaque})
	run(t, rec, s, single)
	run(t, rec, s, single)
	if got := uploads(); got != 1 {
		t.Errorf("uploads of a resident texture = %d, want 1", got)
	}
	if got := rec.Labels("SetPipeline"); len(got) == 0 || !strings.HasPrefix(got[0], "pass.scene.culled.") {
		t.Errorf("opaque textured mesh pipelines = %v, want culled", got)
	}

	rec.Reset()
	both := newFrame(1, 0,
		pass.Drawable{WorldFromModel: mgl32.Ident4(), Mesh: mesh, Material: opaque},
		pass.Drawable{WorldFromModel: mgl32.Ident4(), Mesh: mesh, Material: translucent},
	)
	run(t, rec, s, both)
	if got := uploads(); got != 1 {
		t.Errorf("uploads with one resident texture = %d, want 1", got)
	}
	if got := s.Cache().Len(); got != 1 {
		t.Errorf("Cache().Len() = %d, want 1", got)
	}
	if got := s.Cache().Stats().Evictions; got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}
	pipelines := rec.Labels("SetPipeline")
	if len(pipelines) != 2 || !strings.HasPrefix(pipelines[1], "pass.scene.two_sided.") {
		t.Errorf("pipelines = %v, want translucent mesh two-sided", pipelines)
	}
	if got := rec.Count("DrawIndexed"); got != 2 {
		t.Errorf("draws = %d, want 2", got)
	}
	// the evicted texture was drawn this frame, so its texture and group are held
	if got := s.Retired(); got != 2 {
		t.Errorf("Retired() after eviction = %d, want 2", got)
	}
	groups := rec.Labels("SetBindGroup")
	if !slices.Contains(groups, "Material 1") {
		t.Errorf("bind groups = %v, want the evicted Material 1 still drawn", groups)
	}
	run(t, rec, s, single)
	if got := s.Retired(); got != 2 {
		t.Errorf("Retired() after re-upload evicts again = %d, want 2", got)
	}
	run(t, rec, s, newFrame(1, 0))
	if got := s.Retired(); got != 0 {
		t.Errorf("Retired() after a frame without evictions = %d, want 0", got)
	}
}
