package pass

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/model"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	//go:embed assets/scene_vert.wgsl
	sceneVertexSource string

	//go:embed assets/scene_frag.wgsl
	sceneFragmentSource string
)

var white = mgl32.Vec4{1, 1, 1, 1}

// scenePipelines is the pipeline pair of one vertex layout. Culled is used for
// textured materials whose base-color texture is fully opaque, TwoSided for the rest.
type scenePipelines struct {
	culled   pipeline.Pipeline
	twoSided pipeline.Pipeline
}

type materialGroup struct {
	boundGroup
	opaque bool
}

// sceneDraw is a drawable resolved for recording.
type sceneDraw struct {
	pipeline pipeline.Pipeline
	model    boundGroup
	material boundGroup
	drawable *Drawable
}

// SceneOption configures a Scene during construction.
type SceneOption func(*Scene)

// WithTextureCacheCapacity sets the number of resident material textures.
// A non-positive capacity selects material.DefaultCacheCapacity.
func WithTextureCacheCapacity(capacity int) SceneOption {
	return func(s *Scene) {
		s.cacheCapacity = capacity
	}
}

// Scene rasterizes the drawables into the G-buffer: base color, view-space normal
// and view-space position with w = 1 wherever a surface was drawn, plus depth.
// Depth is reversed, cleared to 0 and tested with GreaterEqual.
//
// Material textures are uploaded on first use and kept in an LRU cache; an evicted
// material drops its bind group and is uploaded again when it is next drawn. The
// evicted texture and group are released at the start of the next Prepare.
type Scene struct {
	dev      Device
	targets  *Targets
	shared   *Shared
	vertex   shader.Shader
	fragment shader.Shader

	pipelines map[string]scenePipelines
	base      pipeline.Pipeline

	eyes      boundGroup
	models    []boundGroup
	flat      materialGroup
	materials map[material.Handle]materialGroup
	failed    map[material.Handle]bool
	retired   []releaser

	cacheCapacity int
	cache         *material.TextureCache
	draws         []sceneDraw
}

var _ Pass = &Scene{}

// NewScene builds the scene pass with the pipeline pair of model.VertexLayout.
//
// Parameters:
//   - dev: the device
//   - targets: the frame targets
//   - shared: the eye buffer, the sampler and the white fallback texture
//   - options: variadic list of SceneOption functions
//
// Returns:
//   - *Scene: the pass
//   - error: an error if a pipeline or a bind group cannot be created
func NewScene(dev Device, targets *Targets, shared *Shared, options ...SceneOption) (*Scene, error) {
	vertex, err := shader.NewShader("scene_vert", shader.ShaderTypeVertex, sceneVertexSource)
	if err != nil {
		return nil, err
	}
	fragment, err := shader.NewShader("scene_frag", shader.ShaderTypeFragment, sceneFragmentSource)
	if err != nil {
		return nil, err
	}
	s := &Scene{
		dev:       dev,
		targets:   targets,
		shared:    shared,
		vertex:    vertex,
		fragment:  fragment,
		pipelines: make(map[string]scenePipelines),
		materials: make(map[material.Handle]materialGroup),
		failed:    make(map[material.Handle]bool),
	}
	for _, opt := range options {
		opt(s)
	}
	s.cache = material.NewTextureCache(s.cacheCapacity, material.WithEvictCallback(s.onEvict))

	pair, err := s.pipelinesFor(model.VertexLayout())
	if err != nil {
		return nil, err
	}
	s.base = pair.culled

	group, prov, err := uniformGroup(dev, s.base, vertex, shader.AnnotationArgEyeBlock, "Scene Eyes", shared.EyeBuffer, 0)
	if err != nil {
		s.Release()
		return nil, err
	}
	s.eyes = boundGroup{group, prov}

	group, prov, err = textureGroup(dev, s.base, fragment, shader.AnnotationArgMaterial, "Scene Flat Material",
		map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgBaseColorTexture: shared.White.View}, shared.Sampler)
	if err != nil {
		s.Release()
		return nil, err
	}
	s.flat = materialGroup{boundGroup{group, prov}, false}
	return s, nil
}

// Name returns "scene".
func (s *Scene) Name() string { return "scene" }

// Cache returns the material texture cache.
func (s *Scene) Cache() *material.TextureCache { return s.cache }

// pipelinesFor returns the pipeline pair of a vertex layout, registering it on first use.
func (s *Scene) pipelinesFor(layout wgpu.VertexBufferLayout) (scenePipelines, error) {
	key := model.LayoutKey(layout)
	if pair, ok := s.pipelines[key]; ok {
		return pair, nil
	}
	build := func(name string, cull wgpu.CullMode) pipeline.Pipeline {
		return pipeline.NewPipeline(fmt.Sprintf("pass.scene.%s.%s", name, key),
			pipeline.WithVertexShader(s.vertex),
			pipeline.WithFragmentShader(s.fragment),
			pipeline.WithColorTargets(ColorFormat, ColorFormat, ColorFormat),
			pipeline.WithDepthFormat(DepthFormat),
			pipeline.WithDepthCompare(wgpu.CompareFunctionGreaterEqual),
			pipeline.WithDepthWriteEnabled(true),
			pipeline.WithVertexLayout(layout),
			pipeline.WithFrontFace(wgpu.FrontFaceCCW),
			pipeline.WithCullMode(cull),
		)
	}
	pair := scenePipelines{
		culled:   build("culled", wgpu.CullModeBack),
		twoSided: build("two_sided", wgpu.CullModeNone),
	}
	if err := s.dev.RegisterPipelines(pair.culled, pair.twoSided); err != nil {
		return scenePipelines{}, fmt.Errorf("scene pipelines %s: %w", key, err)
	}
	s.pipelines[key] = pair
	return pair, nil
}

// releaser is a GPU resource retired until the next Prepare.
type releaser interface{ Release() }

// onEvict retires the evicted texture and its bind group. Both may already be
// referenced by a draw queued for the current frame.
func (s *Scene) onEvict(h material.Handle, tex *material.GPUTexture) {
	if g, ok := s.materials[h]; ok {
		delete(s.materials, h)
		s.retired = append(s.retired, g.provider)
	}
	s.retired = append(s.retired, tex)
}

// Retired returns the number of evicted textures and bind groups waiting to be
// released by the next Prepare.
func (s *Scene) Retired() int { return len(s.retired) }

// materialFor returns the bind group of m, uploading its texture on a cache miss.
// Untextured materials, nil materials and textures that fail to decode use the
// flat white group.
func (s *Scene) materialFor(m material.Material) (materialGroup, error) {
	if m == nil || !m.Textured() || s.failed[m.Handle()] {
		return s.flat, nil
	}
	h := m.Handle()
	if _, hit := s.cache.Get(h); hit {
		if g, ok := s.materials[h]; ok {
			return g, nil
		}
	}

	pixels, w, hgt, err := m.BaseColorTexture().Decode()
	if err != nil {
		common.Logger().Warn("material texture not decoded, drawing flat", "material", m.Name(), "handle", h, "error", err)
		s.failed[h] = true
		return s.flat, nil
	}
	label := fmt.Sprintf("Material %d", h)
	tex, view, err := s.dev.UploadTexture(label, pixels, w, hgt)
	if err != nil {
		return materialGroup{}, fmt.Errorf("%s: %w", label, err)
	}
	gpu := &material.GPUTexture{Texture: tex, View: view, Width: w, Height: hgt, Opaque: material.OpaquePixels(pixels)}
	group, prov, err := textureGroup(s.dev, s.base, s.fragment, shader.AnnotationArgMaterial, label,
		map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgBaseColorTexture: view}, s.shared.Sampler)
	if err != nil {
		gpu.Release()
		return materialGroup{}, err
	}
	s.cache.Put(h, gpu)
	g := materialGroup{boundGroup{group, prov}, gpu.Opaque}
	s.materials[h] = g
	return g, nil
}

// modelGroup returns the i-th pooled model uniform group.
func (s *Scene) modelGroup(i int) (boundGroup, error) {
	for len(s.models) <= i {
		var block model.GPUModelUniform
		group, prov, err := uniformGroup(s.dev, s.base, s.vertex, shader.AnnotationArgModelUniform,
			fmt.Sprintf("Scene Model %d", len(s.models)), nil, uint64(block.Size()))
		if err != nil {
			return boundGroup{}, err
		}
		s.models = append(s.models, boundGroup{group, prov})
	}
	return s.models[i], nil
}

// Prepare uploads missing meshes and material textures and writes one model
// uniform per drawable.
func (s *Scene) Prepare(dev Device, f *Frame) error {
	if s.base == nil {
		return ErrNotInitialized
	}
	for _, r := range s.retired {
		r.Release()
	}
	clear(s.retired)
	s.retired = s.retired[:0]
	s.draws = s.draws[:0]

	writes := make([]bind_group_provider.BufferWrite, 0, len(f.Drawables))
	for i := range f.Drawables {
		d := &f.Drawables[i]
		if d.Mesh == nil {
			continue
		}
		if !d.Mesh.Uploaded() {
			if err := dev.InitMeshBuffers(d.Mesh.Provider(), d.Mesh.VertexData(), d.Mesh.IndexData(), d.Mesh.IndexCount()); err != nil {
				return fmt.Errorf("scene: mesh %s: %w", d.Mesh.Name(), err)
			}
		}
		pair, err := s.pipelinesFor(d.Mesh.Layout())
		if err != nil {
			return fmt.Errorf("scene: %w", err)
		}
		mat, err := s.materialFor(d.Material)
		if err != nil {
			return fmt.Errorf("scene: %w", err)
		}
		mg, err := s.modelGroup(len(s.draws))
		if err != nil {
			return fmt.Errorf("scene: %w", err)
		}

		color := white
		if d.Material != nil {
			color = mgl32.Vec4(d.Material.BaseColor())
		}
		block := model.NewGPUModelUniform(d.WorldFromModel, color)
		writes = append(writes, bind_group_provider.BufferWrite{Provider: mg.provider, Binding: 0, Data: block.Marshal()})

		p := pair.twoSided
		if mat.opaque {
			p = pair.culled
		}
		s.draws = append(s.draws, sceneDraw{pipeline: p, model: mg, material: mat.boundGroup, drawable: d})
	}
	if len(writes) > 0 {
		dev.WriteBuffers(writes)
	}
	return nil
}

// Record clears the G-buffer layers and draws every visible part, one render pass
// per eye. Parts whose bounds fall outside the eye frustum are skipped.
func (s *Scene) Record(enc Encoder, f *Frame) error {
	if s.base == nil {
		return ErrNotInitialized
	}
	if len(s.draws) == 0 {
		common.Logger().Debug("scene has nothing to draw")
	}
	zero := wgpu.Color{}
	clearDepth := float32(0)
	for eye := 0; eye < s.targets.Eyes; eye++ {
		if err := enc.BeginPass(renderer.PassDescriptor{
			Label: fmt.Sprintf("Scene Eye %d", eye),
			Color: []renderer.ColorAttachment{
				{View: s.targets.Color.Layer(eye), Clear: &opaqueBlack},
				{View: s.targets.Normal.Layer(eye), Clear: &zero},
				{View: s.targets.ViewPosition.Layer(eye), Clear: &zero},
			},
			Depth: &renderer.DepthAttachment{View: s.targets.Depth.Layer(eye), Clear: &clearDepth},
		}); err != nil {
			return fmt.Errorf("scene: %w", err)
		}
		clip := f.Camera.Eye(eye).ClipFromWorld()
		for _, d := range s.draws {
			if err := s.draw(enc, d, clip, uint32(eye)); err != nil {
				enc.EndPass()
				return fmt.Errorf("scene: %s: %w", d.drawable.Mesh.Name(), err)
			}
		}
		enc.EndPass()
	}
	return nil
}

func (s *Scene) draw(enc Encoder, d sceneDraw, clipFromWorld mgl32.Mat4, eye uint32) error {
	frustum := common.ExtractFrustumFromMatrix(clipFromWorld.Mul4(d.drawable.WorldFromModel))
	bound := false
	for _, part := range d.drawable.Mesh.Parts() {
		if part.IndexCount == 0 || !frustum.IntersectsAABB(part.Bounds) {
			continue
		}
		if !bound {
			if err := enc.SetPipeline(d.pipeline); err != nil {
				return err
			}
			if err := setGroups(enc, []boundGroup{s.eyes, d.model, d.material}); err != nil {
				return err
			}
			if err := enc.SetMesh(d.drawable.Mesh.Provider()); err != nil {
				return err
			}
			bound = true
		}
		enc.DrawIndexed(part.IndexCount, 1, part.FirstIndex, 0, eye)
	}
	return nil
}

func (s *Scene) Release() {
	for _, r := range s.retired {
		r.Release()
	}
	s.retired = nil
	for h, g := range s.materials {
		g.provider.Release()
		delete(s.materials, h)
	}
	if s.cache != nil {
		s.cache.Release()
	}
	if s.flat.provider != nil {
		s.flat.provider.Release()
		s.flat = materialGroup{}
	}
	if s.eyes.provider != nil {
		s.eyes.provider.Release()
		s.eyes = boundGroup{}
	}
	releaseGroups(s.models)
	s.models = nil
	s.draws = nil
	for key, pair := range s.pipelines {
		s.dev.ReleasePipelines(pair.culled.PipelineKey(), pair.twoSided.PipelineKey())
		delete(s.pipelines, key)
	}
	s.base = nil
}
