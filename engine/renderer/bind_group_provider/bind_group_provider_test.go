package bind_group_provider

import (
	"testing"
)

func TestNewBindGroupProviderLabel(t *testing.T) {
	p := NewBindGroupProvider("Bloom 3")
	if got := p.Label(); got != "Bloom 3" {
		t.Errorf("Label() = %q, want %q", got, "Bloom 3")
	}
}

func TestSharedBindings(t *testing.T) {
	p := NewBindGroupProvider("composite")
	p.SetSharedTextureView(0, nil)
	p.SetSharedSampler(1, nil)
	p.SetBuffer(2, nil)

	if !p.Shared(0) || !p.Shared(1) {
		t.Errorf("Shared(0), Shared(1) = %v, %v, want true, true", p.Shared(0), p.Shared(1))
	}
	if p.Shared(2) {
		t.Error("Shared(2) = true for an owned buffer")
	}

	// taking ownership of a binding clears the shared mark
	p.SetTextureView(0, nil)
	if p.Shared(0) {
		t.Error("Shared(0) = true after SetTextureView")
	}
}

func TestReleaseForgetsEveryBinding(t *testing.T) {
	p := NewBindGroupProvider("scene")
	p.SetSharedTextureView(0, nil)
	p.SetSampler(1, nil)
	p.SetSharedBuffer(2, nil)
	p.SetIndexCount(36)

	p.Release()

	impl := p.(*bindGroupProvider)
	if n := len(impl.textureViews) + len(impl.samplers) + len(impl.buffers); n != 0 {
		t.Errorf("resources after Release() = %d, want 0", n)
	}
	if p.Shared(0) || p.Shared(2) {
		t.Error("shared marks survived Release()")
	}
	if p.IndexCount() != 0 {
		t.Errorf("IndexCount() = %d, want 0", p.IndexCount())
	}
	if p.BindGroup() != nil {
		t.Error("BindGroup() != nil after Release()")
	}
}
