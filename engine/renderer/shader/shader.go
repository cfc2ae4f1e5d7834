package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader source is reflected for.
type ShaderType int

const (
	ShaderTypeVertex ShaderType = iota
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	if t == ShaderTypeVertex {
		return "vertex"
	}
	return "fragment"
}

type shader struct {
	key           string
	source        string
	groups        map[int]wgpu.BindGroupLayoutDescriptor
	varNames      map[int]map[int]string
	vertexLayouts map[int][]wgpu.VertexBufferLayout
	inputs        []uint32
	entryPoint    string
	module        *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a pre-processed WGSL source together with what reflection found in it.
// Pipelines build their layouts from it; passes use its declarations to find the
// group each of their resources belongs in.
type Shader interface {
	// Key is the unique name of the shader, used as its pipeline and module label.
	Key() string

	// Source is the pre-processed WGSL.
	Source() string

	// BindGroupLayoutDescriptor returns the reflected layout of one group, or an empty
	// descriptor when the shader does not use the group.
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every reflected group layout keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable bound at group and binding, or "".
	BindGroupVarName(group, binding int) string

	// VertexLayout returns the vertex buffer layouts reflected for one vertex input
	// argument.
	//
	// Parameters:
	//   - index: the argument's position among the entry point's vertex inputs
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts, nil for fragment shaders or a bad index
	VertexLayout(index int) []wgpu.VertexBufferLayout

	// VertexLayouts returns every reflected vertex input layout.
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// InputLocations lists the @location inputs of a vertex entry point in ascending
	// order, including ones with no vertex format.
	InputLocations() []uint32

	// EntryPoint is the name of the entry point of the shader's stage.
	EntryPoint() string

	// Module is the descriptor the device compiles the shader from.
	Module() *wgpu.ShaderModuleDescriptor

	// DeclarationGroup finds the group a resource lives in. A provider annotation
	// matches on its identity and a group annotation on its struct.
	//
	// Parameters:
	//   - arg: a provider identity such as AnnotationArgGBuffer or a struct such as AnnotationArgEyeBlock
	//
	// Returns:
	//   - int: the group index, -1 when not declared
	//   - bool: true if the shader declares it
	DeclarationGroup(arg AnnotationArg) (int, bool)

	// DeclarationBinding finds the binding a provider role occupies.
	//
	// Parameters:
	//   - identity: the provider identity
	//   - role: the binding role
	//
	// Returns:
	//   - int: the binding index, -1 when not declared
	//   - bool: true if the shader declares it
	DeclarationBinding(identity, role AnnotationArg) (int, bool)
}

var _ Shader = &shader{}

// NewShader creates a new Shader from WGSL source. The source is run through the
// pre-processor, lowered to naga IR and reflected for its entry point, bind group
// layouts and, for vertex shaders, vertex buffer layouts.
//
// A naga validation failure is logged rather than returned: the wgpu device validates
// the module again when the pipeline is built and is the authority on what it accepts.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the stage the shader is reflected for
//   - source: the WGSL source, usually embedded from an asset file
//
// Returns:
//   - Shader: the reflected shader
//   - error: an error if the source is empty, an annotation is malformed or naga cannot lower it
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("shader: %s has no source", key)
	}
	s := &shader{
		key: key,
		pp:  NewPreProcessor(),
	}
	var err error
	if s.source, err = s.pp.Process(source); err != nil {
		return nil, fmt.Errorf("shader: pre-process %s: %w", key, err)
	}
	module, err := lower(s.source)
	if err != nil {
		return nil, fmt.Errorf("shader: lower %s: %w", key, err)
	}
	if err := validateModule(module); err != nil {
		common.Logger().Warn("shader validation", "shader", key, "error", err)
	}
	r, err := reflectModule(module, shaderType)
	if err != nil {
		return nil, fmt.Errorf("shader: reflect %s: %w", key, err)
	}
	s.entryPoint = r.entryPoint
	s.groups = r.groups
	s.varNames = r.varNames
	s.vertexLayouts = r.vertexLayouts
	s.inputs = r.inputLocations
	s.module = &wgpu.ShaderModuleDescriptor{
		Label:          key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.source},
	}
	return s, nil
}

// MustShader is like NewShader but panics on error. It is meant for embedded sources
// that are known to be well formed.
func MustShader(key string, shaderType ShaderType, source string) Shader {
	s, err := NewShader(key, shaderType, source)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexLayout(index int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[index]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) InputLocations() []uint32 {
	return s.inputs
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.groups[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.groups
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.varNames[group][binding]
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) DeclarationGroup(arg AnnotationArg) (int, bool) {
	for _, d := range s.pp.Declarations() {
		if d.Arg == arg {
			return d.Group, true
		}
	}
	return -1, false
}

func (s *shader) DeclarationBinding(identity, role AnnotationArg) (int, bool) {
	for _, d := range s.pp.Declarations() {
		if d.Kind == AnnotationProvider && d.Arg == identity && d.Role == role {
			return d.Binding, true
		}
	}
	return -1, false
}
