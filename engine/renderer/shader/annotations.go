package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// annotationPrefix starts every pre-processor directive. Directives live in WGSL line
// comments so the raw asset files stay readable by other WGSL tooling.
const annotationPrefix = "//@oxy:"

// AnnotationKind is the directive an annotation line carries.
//
//	//@oxy:include <struct>                              inject a shared struct definition
//	//@oxy:group <group> <binding> <space> <var> <struct> declare a buffer of a shared struct
//	//@oxy:provider <group> <binding> <identity> [role]   tag a hand-written binding
type AnnotationKind string

const (
	annotationInclude AnnotationKind = "include"

	// AnnotationGroup generates a @group/@binding buffer declaration. The pass that owns
	// the buffer finds the group through the struct it holds.
	AnnotationGroup AnnotationKind = "group"

	// AnnotationProvider produces no WGSL. It tells the pass which of its resources
	// fills the declaration written on the next line.
	AnnotationProvider AnnotationKind = "provider"
)

// Annotation is one parsed directive.
type Annotation struct {
	Kind AnnotationKind
	Line int

	// Group and Binding are set for group and provider annotations.
	Group   int
	Binding int

	// Arg is the struct for include and group annotations and the provider identity
	// for provider annotations.
	Arg AnnotationArg

	// Space and Name are the address space and variable name of a group annotation.
	Space AnnotationArg
	Name  string

	// Role is the optional binding role of a provider annotation.
	Role AnnotationArg
}

// AnnotationArg is a registered directive argument: a shared struct, an address
// space, a provider identity or a binding role.
type AnnotationArg string

// Shared structs. Each is defined by a .wgsl asset next to the Go type that
// marshals it.
const (
	AnnotationArgEyeBlock        AnnotationArg = "eye_block"
	AnnotationArgSurfaceEyeBlock AnnotationArg = "surface_eye_block"
	annotationArgVertex          AnnotationArg = "vertex"
	annotationArgConeVertex      AnnotationArg = "cone_vertex"
	AnnotationArgModelUniform    AnnotationArg = "model_uniform"
	AnnotationArgLightBuffer     AnnotationArg = "light_buffer"
	AnnotationArgBrightParams    AnnotationArg = "bright_params"
	AnnotationArgBloomParams     AnnotationArg = "bloom_params"
	AnnotationArgCompositeParams AnnotationArg = "composite_params"
)

// Address spaces of group annotations.
const (
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead    AnnotationArg = "storage_read"
)

// Provider identities.
const (
	// AnnotationArgMaterial is the per-material base color texture and sampler.
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgGBuffer is the scene pass normal and view-position targets.
	AnnotationArgGBuffer AnnotationArg = "gbuffer"

	// AnnotationArgSource is the sampled input of a full-screen pass.
	AnnotationArgSource AnnotationArg = "source"

	// AnnotationArgSlots is the set of composite input textures.
	AnnotationArgSlots AnnotationArg = "slots"
)

// Binding roles within a provider group.
const (
	AnnotationArgBaseColorTexture    AnnotationArg = "base_color_texture"
	AnnotationArgLinearSampler       AnnotationArg = "linear_sampler"
	AnnotationArgNormalTexture       AnnotationArg = "normal_texture"
	AnnotationArgViewPositionTexture AnnotationArg = "view_position_texture"
	AnnotationArgDepthTexture        AnnotationArg = "depth_texture"
	AnnotationArgColorTexture        AnnotationArg = "color_texture"
)

var (
	providerIdentities = set(AnnotationArgMaterial, AnnotationArgGBuffer, AnnotationArgSource, AnnotationArgSlots)
	bindingRoles       = set(
		AnnotationArgBaseColorTexture,
		AnnotationArgLinearSampler,
		AnnotationArgNormalTexture,
		AnnotationArgViewPositionTexture,
		AnnotationArgDepthTexture,
		AnnotationArgColorTexture,
	)
)

func set(args ...AnnotationArg) map[AnnotationArg]bool {
	m := make(map[AnnotationArg]bool, len(args))
	for _, a := range args {
		m[a] = true
	}
	return m
}

// parseAnnotation parses one source line. ok is false for ordinary WGSL lines.
// Struct and address space arguments are checked by the pre-processor, which owns
// those registries.
func parseAnnotation(line string, lineNum int) (a Annotation, ok bool, err error) {
	_, directive, found := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !found {
		return a, false, nil
	}
	fields := strings.Fields(directive)
	if len(fields) == 0 {
		return a, true, fmt.Errorf("line %d: empty annotation", lineNum)
	}
	a = Annotation{Kind: AnnotationKind(fields[0]), Line: lineNum}
	args := fields[1:]

	switch a.Kind {
	case annotationInclude:
		if len(args) != 1 {
			return a, true, fmt.Errorf("line %d: include takes one struct, got %d arguments", lineNum, len(args))
		}
		a.Arg = AnnotationArg(args[0])
	case AnnotationGroup:
		if len(args) != 5 {
			return a, true, fmt.Errorf("line %d: group takes group, binding, space, name and struct, got %d arguments", lineNum, len(args))
		}
		if a.Group, a.Binding, err = parseSlot(args, lineNum); err != nil {
			return a, true, err
		}
		a.Space, a.Name, a.Arg = AnnotationArg(args[2]), args[3], AnnotationArg(args[4])
	case AnnotationProvider:
		if len(args) != 3 && len(args) != 4 {
			return a, true, fmt.Errorf("line %d: provider takes group, binding, identity and an optional role, got %d arguments", lineNum, len(args))
		}
		if a.Group, a.Binding, err = parseSlot(args, lineNum); err != nil {
			return a, true, err
		}
		a.Arg = AnnotationArg(args[2])
		if !providerIdentities[a.Arg] {
			return a, true, fmt.Errorf("line %d: unknown provider %q", lineNum, a.Arg)
		}
		if len(args) == 4 {
			a.Role = AnnotationArg(args[3])
			if !bindingRoles[a.Role] {
				return a, true, fmt.Errorf("line %d: unknown binding role %q", lineNum, a.Role)
			}
		}
	default:
		return a, true, fmt.Errorf("line %d: unknown annotation %q", lineNum, a.Kind)
	}
	return a, true, nil
}

func parseSlot(args []string, lineNum int) (group, binding int, err error) {
	if group, err = strconv.Atoi(args[0]); err != nil || group < 0 {
		return 0, 0, fmt.Errorf("line %d: bad group %q", lineNum, args[0])
	}
	if binding, err = strconv.Atoi(args[1]); err != nil || binding < 0 {
		return 0, 0, fmt.Errorf("line %d: bad binding %q", lineNum, args[1])
	}
	return group, binding, nil
}
