package shader

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// reflection is everything a pipeline needs to know about a shader that is not in
// its annotations: the entry point, the resource bindings and the vertex inputs.
type reflection struct {
	entryPoint     string
	groups         map[int]wgpu.BindGroupLayoutDescriptor
	varNames       map[int]map[int]string
	vertexLayouts  map[int][]wgpu.VertexBufferLayout
	inputLocations []uint32
}

// vertexFormatKey identifies a vertex attribute type by scalar kind and component count.
type vertexFormatKey struct {
	kind       ir.ScalarKind
	components uint8
}

// vertexFormats maps 32-bit scalar and vector types to their vertex format.
var vertexFormats = map[vertexFormatKey]wgpu.VertexFormat{
	{ir.ScalarFloat, 1}: wgpu.VertexFormatFloat32,
	{ir.ScalarFloat, 2}: wgpu.VertexFormatFloat32x2,
	{ir.ScalarFloat, 3}: wgpu.VertexFormatFloat32x3,
	{ir.ScalarFloat, 4}: wgpu.VertexFormatFloat32x4,
	{ir.ScalarSint, 1}:  wgpu.VertexFormatSint32,
	{ir.ScalarSint, 2}:  wgpu.VertexFormatSint32x2,
	{ir.ScalarSint, 3}:  wgpu.VertexFormatSint32x3,
	{ir.ScalarSint, 4}:  wgpu.VertexFormatSint32x4,
	{ir.ScalarUint, 1}:  wgpu.VertexFormatUint32,
	{ir.ScalarUint, 2}:  wgpu.VertexFormatUint32x2,
	{ir.ScalarUint, 3}:  wgpu.VertexFormatUint32x3,
	{ir.ScalarUint, 4}:  wgpu.VertexFormatUint32x4,
}

var textureDimensions = map[ir.ImageDimension]wgpu.TextureViewDimension{
	ir.Dim1D:   wgpu.TextureViewDimension1D,
	ir.Dim2D:   wgpu.TextureViewDimension2D,
	ir.Dim3D:   wgpu.TextureViewDimension3D,
	ir.DimCube: wgpu.TextureViewDimensionCube,
}

// Validate parses, lowers and validates WGSL source with naga.
//
// Parameters:
//   - source: pre-processed WGSL source
//
// Returns:
//   - error: nil if the module is valid, otherwise the parse error or every validation error joined
func Validate(source string) error {
	module, err := lower(source)
	if err != nil {
		return err
	}
	return validateModule(module)
}

// lower parses pre-processed WGSL and lowers it to naga IR.
func lower(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	return naga.LowerWithSource(ast, source)
}

func validateModule(module *ir.Module) error {
	issues, err := naga.Validate(module)
	if err != nil {
		return err
	}
	errs := make([]error, 0, len(issues))
	for _, issue := range issues {
		errs = append(errs, issue)
	}
	return errors.Join(errs...)
}

// reflectModule reads the entry point of the given stage and the module's resource
// bindings out of lowered IR. Every binding is made visible to that stage; the
// pipeline merges stages later.
//
// Parameters:
//   - module: the lowered shader module
//   - shaderType: the stage whose entry point is reflected
//
// Returns:
//   - reflection: the reflected layout metadata
//   - error: an error if the module has no entry point for the stage
func reflectModule(module *ir.Module, shaderType ShaderType) (reflection, error) {
	stage, visibility := stageOf(shaderType)
	r := reflection{
		groups:        make(map[int]wgpu.BindGroupLayoutDescriptor),
		varNames:      make(map[int]map[int]string),
		vertexLayouts: make(map[int][]wgpu.VertexBufferLayout),
	}

	var ep *ir.EntryPoint
	for i := range module.EntryPoints {
		if module.EntryPoints[i].Stage == stage {
			ep = &module.EntryPoints[i]
			break
		}
	}
	if ep == nil {
		return r, fmt.Errorf("no %s entry point", shaderType)
	}
	r.entryPoint = ep.Name

	if shaderType == ShaderTypeVertex {
		r.vertexLayouts = vertexInputs(module, &ep.Function)
		r.inputLocations = inputLocations(module, &ep.Function)
	}

	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		entry, ok := bindingEntry(module, gv, visibility)
		if !ok {
			return r, fmt.Errorf("binding %s has an unsupported type", gv.Name)
		}
		g, b := int(gv.Binding.Group), int(gv.Binding.Binding)
		entries[g] = append(entries[g], entry)
		if r.varNames[g] == nil {
			r.varNames[g] = make(map[int]string)
		}
		r.varNames[g][b] = gv.Name
	}
	for g, es := range entries {
		sort.Slice(es, func(i, j int) bool { return es[i].Binding < es[j].Binding })
		r.groups[g] = wgpu.BindGroupLayoutDescriptor{Entries: es}
	}
	return r, nil
}

func stageOf(shaderType ShaderType) (ir.ShaderStage, wgpu.ShaderStage) {
	if shaderType == ShaderTypeVertex {
		return ir.StageVertex, wgpu.ShaderStageVertex
	}
	return ir.StageFragment, wgpu.ShaderStageFragment
}

func typeInner(module *ir.Module, h ir.TypeHandle) ir.TypeInner {
	if int(h) >= len(module.Types) {
		return nil
	}
	return module.Types[h].Inner
}

// bindingEntry builds the layout entry of one bound global. Uniform and storage
// buffers carry their struct size as MinBindingSize so buffers can be created
// from the layout alone. Storage buffers are bound read-only.
func bindingEntry(module *ir.Module, gv ir.GlobalVariable, visibility wgpu.ShaderStage) (wgpu.BindGroupLayoutEntry, bool) {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    gv.Binding.Binding,
		Visibility: visibility,
	}
	switch gv.Space {
	case ir.SpaceUniform:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = byteSize(module, gv.Type)
		return entry, true
	case ir.SpaceStorage:
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		entry.Buffer.MinBindingSize = byteSize(module, gv.Type)
		return entry, true
	}

	switch t := typeInner(module, gv.Type).(type) {
	case ir.SamplerType:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		if t.Comparison {
			entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
		}
	case ir.ImageType:
		dim, ok := textureDimensions[t.Dim]
		if !ok || t.Class == ir.ImageClassStorage {
			return entry, false
		}
		if t.Arrayed {
			switch dim {
			case wgpu.TextureViewDimension2D:
				dim = wgpu.TextureViewDimension2DArray
			case wgpu.TextureViewDimensionCube:
				dim = wgpu.TextureViewDimensionCubeArray
			}
		}
		entry.Texture.ViewDimension = dim
		entry.Texture.Multisampled = t.Multisampled
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		if t.Class == ir.ImageClassDepth {
			entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		}
	default:
		return entry, false
	}
	return entry, true
}

// byteSize is the host-shareable size of a buffer type, or 0 when it is not fixed.
func byteSize(module *ir.Module, h ir.TypeHandle) uint64 {
	switch t := typeInner(module, h).(type) {
	case ir.StructType:
		return uint64(t.Span)
	case ir.ArrayType:
		if t.Size.Constant != nil {
			return uint64(t.Stride) * uint64(*t.Size.Constant)
		}
		return uint64(t.Stride)
	case ir.ScalarType:
		return 4
	case ir.VectorType:
		return 4 * uint64(t.Size)
	case ir.MatrixType:
		rows := uint64(t.Rows)
		if rows == 3 {
			rows = 4
		}
		return 4 * rows * uint64(t.Columns)
	}
	return 0
}

// vertexInputs turns the @location arguments of a vertex entry point into buffer
// layouts. Each struct argument is its own tightly packed buffer; loose location
// arguments share one buffer after them.
func vertexInputs(module *ir.Module, fn *ir.Function) map[int][]wgpu.VertexBufferLayout {
	layouts := make(map[int][]wgpu.VertexBufferLayout)
	var loose []ir.FunctionArgument
	for _, arg := range fn.Arguments {
		if arg.Binding != nil {
			if _, ok := (*arg.Binding).(ir.LocationBinding); ok {
				loose = append(loose, arg)
			}
			continue
		}
		st, ok := typeInner(module, arg.Type).(ir.StructType)
		if !ok {
			continue
		}
		layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
		for _, m := range st.Members {
			if !addAttribute(module, &layout, m.Binding, m.Type) {
				layout.Attributes = nil
				break
			}
		}
		if len(layout.Attributes) > 0 {
			layouts[len(layouts)] = []wgpu.VertexBufferLayout{layout}
		}
	}
	if len(loose) > 0 {
		layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
		for _, arg := range loose {
			addAttribute(module, &layout, arg.Binding, arg.Type)
		}
		if len(layout.Attributes) > 0 {
			layouts[len(layouts)] = []wgpu.VertexBufferLayout{layout}
		}
	}
	return layouts
}

// inputLocations lists every @location the entry point reads, whether or not it has
// a vertex format, in ascending order.
func inputLocations(module *ir.Module, fn *ir.Function) []uint32 {
	var locs []uint32
	add := func(binding *ir.Binding) {
		if binding == nil {
			return
		}
		if loc, ok := (*binding).(ir.LocationBinding); ok {
			locs = append(locs, loc.Location)
		}
	}
	for _, arg := range fn.Arguments {
		if arg.Binding != nil {
			add(arg.Binding)
			continue
		}
		if st, ok := typeInner(module, arg.Type).(ir.StructType); ok {
			for _, m := range st.Members {
				add(m.Binding)
			}
		}
	}
	slices.Sort(locs)
	return locs
}

// addAttribute appends a location-bound value to the end of layout. It reports
// false for builtins and for types with no vertex format.
func addAttribute(module *ir.Module, layout *wgpu.VertexBufferLayout, binding *ir.Binding, h ir.TypeHandle) bool {
	if binding == nil {
		return false
	}
	loc, ok := (*binding).(ir.LocationBinding)
	if !ok {
		return false
	}
	var key vertexFormatKey
	switch t := typeInner(module, h).(type) {
	case ir.ScalarType:
		key = vertexFormatKey{t.Kind, 1}
	case ir.VectorType:
		key = vertexFormatKey{t.Scalar.Kind, uint8(t.Size)}
	default:
		return false
	}
	format, ok := vertexFormats[key]
	if !ok {
		return false
	}
	layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
		Format:         format,
		Offset:         layout.ArrayStride,
		ShaderLocation: loc.Location,
	})
	layout.ArrayStride += 4 * uint64(key.components)
	return true
}
