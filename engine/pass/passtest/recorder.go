// Package passtest provides a Renderer that records calls instead of talking to a GPU,
// for testing passes and the code driving them.
package passtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Call is one recorded renderer call.
type Call struct {
	Op    string
	Label string
	Args  []int
	Data  []byte

	// Pass is set for BeginPass.
	Pass *renderer.PassDescriptor
}

// Recorder implements renderer.Renderer without a device. Resources it creates
// are nil except array textures, which carry their descriptor and one nil view
// per layer. Pipelines are never built.
type Recorder struct {
	// Surface is returned by SurfaceFormat. Undefined, the default, makes the
	// recorder behave as a headless renderer.
	Surface wgpu.TextureFormat

	// Fail makes every call whose Op is a key return the error.
	Fail map[string]error

	// Pixels is returned by ReadTexture when set.
	Pixels func(layer, width, height, bytesPerTexel uint32) []byte

	mu        sync.Mutex
	calls     []Call
	pipelines map[string]pipeline.Pipeline
	inFrame   bool
	inPass    bool
	presented int
}

var _ renderer.Renderer = &Recorder{}

// NewRecorder creates a headless recorder.
func NewRecorder() *Recorder {
	return &Recorder{pipelines: make(map[string]pipeline.Pipeline)}
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.Fail[c.Op]
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Filter returns the calls with the given op.
func (r *Recorder) Filter(op string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of calls with the given op.
func (r *Recorder) Count(op string) int {
	return len(r.Filter(op))
}

// Labels returns the labels of the calls with the given op, in order.
func (r *Recorder) Labels(op string) []string {
	var out []string
	for _, c := range r.Filter(op) {
		out = append(out, c.Label)
	}
	return out
}

// Reset forgets the recorded calls. Registered pipelines are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Presented returns the number of Present calls after an acquired surface view.
func (r *Recorder) Presented() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presented
}

func (r *Recorder) Headless() bool { return r.Surface == wgpu.TextureFormatUndefined }

func (r *Recorder) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines[key]
}

// RegisterPipelines stores the pipelines with their merged bind group layouts.
// Keys already registered are skipped. A pipeline whose vertex inputs are not all
// covered by its vertex layouts is rejected, as the device would reject it.
func (r *Recorder) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		if err := r.record(Call{Op: "RegisterPipelines", Label: p.PipelineKey()}); err != nil {
			return err
		}
		r.mu.Lock()
		if r.pipelines == nil {
			r.pipelines = make(map[string]pipeline.Pipeline)
		}
		if _, ok := r.pipelines[p.PipelineKey()]; ok {
			r.mu.Unlock()
			continue
		}
		if err := pipeline.CheckVertexInputs(p); err != nil {
			r.mu.Unlock()
			return err
		}
		var vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor
		if vs := p.Shader(shader.ShaderTypeVertex); vs != nil {
			vertexLayouts = vs.BindGroupLayoutDescriptors()
		}
		if fs := p.Shader(shader.ShaderTypeFragment); fs != nil {
			fragmentLayouts = fs.BindGroupLayoutDescriptors()
		}
		p.SetBindGroupLayoutDescriptors(renderer.MergeBindGroupLayouts(vertexLayouts, fragmentLayouts))
		r.pipelines[p.PipelineKey()] = p
		r.mu.Unlock()
	}
	return nil
}

func (r *Recorder) ReleasePipelines(keys ...string) {
	for _, key := range keys {
		r.record(Call{Op: "ReleasePipelines", Label: key})
		r.mu.Lock()
		delete(r.pipelines, key)
		r.mu.Unlock()
	}
}

// Registered returns the number of registered pipelines.
func (r *Recorder) Registered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pipelines)
}

func (r *Recorder) Resize(width, height int) {
	r.record(Call{Op: "Resize", Args: []int{width, height}})
}

func (r *Recorder) SetPresentMode(mode renderer.PresentMode) {
	r.record(Call{Op: "SetPresentMode", Args: []int{int(mode)}})
}

func (r *Recorder) SurfaceFormat() wgpu.TextureFormat { return r.Surface }

func (r *Recorder) CreateArrayTexture(desc renderer.ArrayTextureDescriptor) (*renderer.ArrayTexture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if err := r.record(Call{Op: "CreateArrayTexture", Label: desc.Label, Args: []int{int(desc.Width), int(desc.Height), int(desc.Layers)}}); err != nil {
		return nil, err
	}
	return &renderer.ArrayTexture{Descriptor: desc, LayerViews: make([]*wgpu.TextureView, desc.Layers)}, nil
}

func (r *Recorder) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return nil, r.record(Call{Op: "CreateBuffer", Label: label, Args: []int{int(size), int(usage)}})
}

func (r *Recorder) UploadTexture(label string, pixels []byte, width, height uint32) (*wgpu.Texture, *wgpu.TextureView, error) {
	return nil, nil, r.record(Call{Op: "UploadTexture", Label: label, Args: []int{int(width), int(height)}, Data: pixels})
}

// ReadTexture returns Pixels, or zeroed tightly packed rows.
func (r *Recorder) ReadTexture(tex *wgpu.Texture, layer, width, height, bytesPerTexel uint32) ([]byte, error) {
	if err := r.record(Call{Op: "ReadTexture", Args: []int{int(layer), int(width), int(height), int(bytesPerTexel)}}); err != nil {
		return nil, err
	}
	if r.Pixels != nil {
		return r.Pixels(layer, width, height, bytesPerTexel), nil
	}
	return make([]byte, width*height*bytesPerTexel), nil
}

// InitMeshBuffers records the upload; the provider keeps no buffers.
func (r *Recorder) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.record(Call{Op: "InitMeshBuffers", Label: provider.Label(), Args: []int{len(vertexData), len(indexData), indexCount}})
}

// InitBindGroup records the group with one Args entry per layout binding.
func (r *Recorder) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, _ map[int]uint64) error {
	args := make([]int, 0, len(descriptor.Entries))
	for _, e := range descriptor.Entries {
		args = append(args, int(e.Binding))
	}
	return r.record(Call{Op: "InitBindGroup", Label: provider.Label(), Args: args})
}

func (r *Recorder) CreateSampler(label string, _ common.SamplerStagingData) (*wgpu.Sampler, error) {
	return nil, r.record(Call{Op: "CreateSampler", Label: label})
}

// WriteBuffers records one call per write.
func (r *Recorder) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		r.record(Call{Op: "WriteBuffers", Label: w.Provider.Label(), Args: []int{w.Binding, int(w.Offset)}, Data: w.Data})
	}
}

func (r *Recorder) WriteBuffer(_ *wgpu.Buffer, offset uint64, data []byte) {
	r.record(Call{Op: "WriteBuffer", Args: []int{int(offset)}, Data: data})
}

func (r *Recorder) BeginFrame() error {
	r.mu.Lock()
	open := r.inFrame
	r.inFrame = true
	r.mu.Unlock()
	if open {
		return errors.New("begin frame: frame already open")
	}
	return r.record(Call{Op: "BeginFrame"})
}

func (r *Recorder) BeginPass(desc renderer.PassDescriptor) error {
	r.mu.Lock()
	if !r.inFrame {
		r.mu.Unlock()
		return errors.New("begin pass: no open frame")
	}
	r.inPass = true
	r.mu.Unlock()
	return r.record(Call{Op: "BeginPass", Label: desc.Label, Args: []int{len(desc.Color)}, Pass: &desc})
}

func (r *Recorder) requirePass(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inPass {
		return fmt.Errorf("%s: no open pass", op)
	}
	return nil
}

// SetPipeline accepts registered pipelines whether or not they are built.
func (r *Recorder) SetPipeline(p pipeline.Pipeline) error {
	if err := r.requirePass("set pipeline"); err != nil {
		return err
	}
	if p == nil || r.Pipeline(p.PipelineKey()) == nil {
		return errors.New("set pipeline: pipeline not registered")
	}
	return r.record(Call{Op: "SetPipeline", Label: p.PipelineKey()})
}

func (r *Recorder) SetBindGroup(group int, provider bind_group_provider.BindGroupProvider) error {
	if err := r.requirePass("set bind group"); err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("set bind group %d: nil provider", group)
	}
	return r.record(Call{Op: "SetBindGroup", Label: provider.Label(), Args: []int{group}})
}

func (r *Recorder) SetMesh(provider bind_group_provider.BindGroupProvider) error {
	if err := r.requirePass("set mesh"); err != nil {
		return err
	}
	return r.record(Call{Op: "SetMesh", Label: provider.Label()})
}

func (r *Recorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	r.record(Call{Op: "Draw", Args: []int{int(vertexCount), int(instanceCount), int(firstVertex), int(firstInstance)}})
}

func (r *Recorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	r.record(Call{Op: "DrawIndexed", Args: []int{int(indexCount), int(instanceCount), int(firstIndex), int(baseVertex), int(firstInstance)}})
}

func (r *Recorder) EndPass() {
	r.mu.Lock()
	open := r.inPass
	r.inPass = false
	r.mu.Unlock()
	if open {
		r.record(Call{Op: "EndPass"})
	}
}

func (r *Recorder) CopyBufferToTexture(_ *wgpu.Buffer, bytesPerRow uint32, _ *wgpu.Texture, layer, width, height uint32) error {
	if r.inPassLocked() {
		return errors.New("copy buffer to texture: pass open")
	}
	return r.record(Call{Op: "CopyBufferToTexture", Args: []int{int(bytesPerRow), int(layer), int(width), int(height)}})
}

func (r *Recorder) inPassLocked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inPass
}

// AcquireSurfaceView returns renderer.ErrHeadless without a surface format, and
// a nil view otherwise.
func (r *Recorder) AcquireSurfaceView() (*wgpu.TextureView, error) {
	if r.Headless() {
		return nil, renderer.ErrHeadless
	}
	return nil, r.record(Call{Op: "AcquireSurfaceView"})
}

func (r *Recorder) EndFrame() error {
	r.EndPass()
	r.mu.Lock()
	open := r.inFrame
	r.inFrame = false
	r.mu.Unlock()
	if !open {
		return errors.New("end frame: no open frame")
	}
	return r.record(Call{Op: "EndFrame"})
}

func (r *Recorder) Present() {
	if r.Headless() {
		return
	}
	r.mu.Lock()
	r.presented++
	r.mu.Unlock()
	r.record(Call{Op: "Present"})
}

func (r *Recorder) Release() {
	r.record(Call{Op: "Release"})
	r.mu.Lock()
	clear(r.pipelines)
	r.mu.Unlock()
}
