package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// groupLayout finds the group a shader declares for arg and the layout the pipeline
// was built with for that group.
func groupLayout(p pipeline.Pipeline, s shader.Shader, arg shader.AnnotationArg) (int, wgpu.BindGroupLayoutDescriptor, error) {
	group, ok := s.DeclarationGroup(arg)
	if !ok {
		return -1, wgpu.BindGroupLayoutDescriptor{}, fmt.Errorf("shader %s declares no %s group", s.Key(), arg)
	}
	desc, ok := p.BindGroupLayoutDescriptor(group)
	if !ok {
		return -1, wgpu.BindGroupLayoutDescriptor{}, fmt.Errorf("pipeline %s has no layout for group %d", p.PipelineKey(), group)
	}
	return group, desc, nil
}

// uniformGroup creates the bind group holding the struct s declares with type arg.
// A non-nil shared buffer is bound as is; otherwise the group owns a new buffer of size bytes.
func uniformGroup(dev Device, p pipeline.Pipeline, s shader.Shader, arg shader.AnnotationArg, label string, shared *wgpu.Buffer, size uint64) (int, bind_group_provider.BindGroupProvider, error) {
	group, desc, err := groupLayout(p, s, arg)
	if err != nil {
		return -1, nil, err
	}
	prov := bind_group_provider.NewBindGroupProvider(label)
	sizes := make(map[int]uint64, len(desc.Entries))
	for _, entry := range desc.Entries {
		if entry.Buffer.Type == wgpu.BufferBindingTypeUndefined {
			continue
		}
		if shared != nil {
			prov.SetSharedBuffer(int(entry.Binding), shared)
		}
		sizes[int(entry.Binding)] = size
	}
	if err := dev.InitBindGroup(prov, desc, sizes); err != nil {
		prov.Release()
		return -1, nil, fmt.Errorf("%s: %w", label, err)
	}
	return group, prov, nil
}

// textureGroup creates the bind group of a provider identity, placing each view at the
// binding its role names. A non-nil sampler goes to the linear_sampler role.
func textureGroup(dev Device, p pipeline.Pipeline, s shader.Shader, identity shader.AnnotationArg, label string, views map[shader.AnnotationArg]*wgpu.TextureView, sampler *wgpu.Sampler) (int, bind_group_provider.BindGroupProvider, error) {
	group, desc, err := groupLayout(p, s, identity)
	if err != nil {
		return -1, nil, err
	}
	prov := bind_group_provider.NewBindGroupProvider(label)
	for role, view := range views {
		binding, ok := s.DeclarationBinding(identity, role)
		if !ok {
			return -1, nil, fmt.Errorf("%s: shader %s has no %s %s binding", label, s.Key(), identity, role)
		}
		prov.SetSharedTextureView(binding, view)
	}
	if sampler != nil {
		binding, ok := s.DeclarationBinding(identity, shader.AnnotationArgLinearSampler)
		if !ok {
			return -1, nil, fmt.Errorf("%s: shader %s has no %s sampler binding", label, s.Key(), identity)
		}
		prov.SetSharedSampler(binding, sampler)
	}
	if err := dev.InitBindGroup(prov, desc, nil); err != nil {
		prov.Release()
		return -1, nil, fmt.Errorf("%s: %w", label, err)
	}
	return group, prov, nil
}

// boundGroup pairs a provider with the group index it is set at.
type boundGroup struct {
	index    int
	provider bind_group_provider.BindGroupProvider
}

func setGroups(enc Encoder, groups []boundGroup) error {
	for _, g := range groups {
		if err := enc.SetBindGroup(g.index, g.provider); err != nil {
			return err
		}
	}
	return nil
}

func releaseGroups(groups []boundGroup) {
	for _, g := range groups {
		if g.provider != nil {
			g.provider.Release()
		}
	}
}
