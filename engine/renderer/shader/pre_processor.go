package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-stereo/engine/camera"
	"github.com/Carmen-Shannon/oxy-stereo/engine/light"
	"github.com/Carmen-Shannon/oxy-stereo/engine/model"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/effect"
)

// sharedStruct is a WGSL struct shared between shaders and the Go type that fills it.
type sharedStruct struct {
	source   string
	typeName string
}

// sharedStructs are the structs include and group annotations may name.
var sharedStructs = map[AnnotationArg]sharedStruct{
	AnnotationArgEyeBlock:        {camera.GPUEyeBlockSource, "EyeBlock"},
	AnnotationArgSurfaceEyeBlock: {camera.GPUSurfaceEyeBlockSource, "SurfaceEyeBlock"},
	annotationArgVertex:          {model.GPUVertexSource, "VertexInput"},
	annotationArgConeVertex:      {light.GPUConeVertexSource, "ConeVertexInput"},
	AnnotationArgModelUniform:    {model.GPUModelUniformSource, "ModelUniform"},
	AnnotationArgLightBuffer:     {light.GPULightBufferSource, "LightBuffer"},
	AnnotationArgBrightParams:    {effect.GPUBrightParamsSource, "BrightParams"},
	AnnotationArgBloomParams:     {effect.GPUBloomParamsSource, "BloomParams"},
	AnnotationArgCompositeParams: {effect.GPUCompositeParamsSource, "CompositeParams"},
}

var addressSpaces = map[AnnotationArg]string{
	annotationArgStorageTypeUniform: "var<uniform>",
	annotationArgStorageTypeRead:    "var<storage, read>",
}

// PreProcessor expands annotation directives into plain WGSL and remembers the
// group and provider declarations of the last source it processed.
type PreProcessor interface {
	// Process returns source with every include replaced by the struct definition,
	// every group replaced by its generated declaration and every provider line dropped.
	//
	// Parameters:
	//   - source: WGSL with annotation directives
	//
	// Returns:
	//   - string: plain WGSL
	//   - error: the first malformed or unknown directive
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations of the last Process call
	// in source order.
	Declarations() []Annotation
}

type preProcessor struct {
	declarations []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor returns a PreProcessor over the engine's shared structs.
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, ok, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if !ok {
			out = append(out, line)
			continue
		}
		switch a.Kind {
		case annotationInclude:
			st, known := sharedStructs[a.Arg]
			if !known {
				return "", fmt.Errorf("line %d: unknown struct %q", a.Line, a.Arg)
			}
			out = append(out, st.source)
		case AnnotationGroup:
			st, known := sharedStructs[a.Arg]
			if !known {
				return "", fmt.Errorf("line %d: unknown struct %q", a.Line, a.Arg)
			}
			space, known := addressSpaces[a.Space]
			if !known {
				return "", fmt.Errorf("line %d: unknown address space %q", a.Line, a.Space)
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", a.Group, a.Binding, space, a.Name, st.typeName))
			p.declarations = append(p.declarations, a)
		case AnnotationProvider:
			p.declarations = append(p.declarations, a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
