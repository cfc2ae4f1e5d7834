package engine

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeResizer struct {
	width, height int
	calls         int
}

func (r *fakeResizer) Resize(width, height int) {
	r.width, r.height = width, height
	r.calls++
}

// runWithTimeout runs e and fails the test if it does not stop in time.
func runWithTimeout(t *testing.T, e Engine) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- e.Run() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		e.Quit()
		t.Fatal("Run() did not return")
		return nil
	}
}

func TestRunHeadless(t *testing.T) {
	e := NewEngine(WithProfiling(true))
	frames := 0
	e.SetRenderCallback(func(float32) (bool, error) {
		frames++
		if frames == 5 {
			e.Quit()
		}
		return frames%2 == 0, nil
	})
	if err := runWithTimeout(t, e); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if frames != 5 {
		t.Errorf("frames = %d, want 5", frames)
	}
	e.Quit()
}

func TestRenderErrors(t *testing.T) {
	frameErr := errors.New("device lost")
	e := NewEngine(WithMaxRenderErrors(3))
	calls := 0
	e.SetRenderCallback(func(float32) (bool, error) {
		calls++
		return false, frameErr
	})
	err := runWithTimeout(t, e)
	if !errors.Is(err, frameErr) {
		t.Fatalf("Run() error = %v, want %v", err, frameErr)
	}
	if calls != 3 {
		t.Errorf("render calls = %d, want 3", calls)
	}
}

func TestRenderErrorsReset(t *testing.T) {
	e := NewEngine(WithMaxRenderErrors(2))
	calls := 0
	e.SetRenderCallback(func(float32) (bool, error) {
		calls++
		if calls == 6 {
			e.Quit()
		}
		if calls%2 == 1 {
			return false, errors.New("transient")
		}
		return true, nil
	})
	if err := runWithTimeout(t, e); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

func TestRenderPanic(t *testing.T) {
	e := NewEngine()
	e.SetRenderCallback(func(float32) (bool, error) {
		panic("boom")
	})
	if err := runWithTimeout(t, e); err == nil {
		t.Error("Run() error = nil, want render panic")
	}
}

func TestResize(t *testing.T) {
	r := &fakeResizer{}
	e := NewEngine(WithResizer(r)).(*engine)
	e.pendingSize.Store(uint64(800)<<32 | 600)
	frames := 0
	e.SetRenderCallback(func(float32) (bool, error) {
		frames++
		if frames == 2 {
			e.Quit()
		}
		return true, nil
	})
	if err := runWithTimeout(t, e); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.calls != 1 || r.width != 800 || r.height != 600 {
		t.Errorf("Resize calls = %d (%dx%d), want 1 (800x600)", r.calls, r.width, r.height)
	}
}

func TestTick(t *testing.T) {
	e := NewEngine(WithTickRate(500))
	var ticks atomic.Int32
	e.SetTickCallback(func(dt float32) {
		if dt <= 0 {
			t.Errorf("tick dt = %v, want > 0", dt)
		}
		if ticks.Add(1) == 3 {
			e.Quit()
		}
	})
	e.SetRenderCallback(func(float32) (bool, error) { return false, nil })
	if err := runWithTimeout(t, e); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := ticks.Load(); got < 3 {
		t.Errorf("ticks = %d, want >= 3", got)
	}
}

func TestSetRenderFrameLimit(t *testing.T) {
	e := NewEngine().(*engine)
	e.SetRenderFrameLimit(50)
	if e.renderFrameLimit != 20*time.Millisecond {
		t.Errorf("renderFrameLimit = %v, want 20ms", e.renderFrameLimit)
	}
	e.SetRenderFrameLimit(0)
	if e.renderFrameLimit != 0 {
		t.Errorf("renderFrameLimit = %v, want 0", e.renderFrameLimit)
	}
	e.SetTickRate(0)
	if e.engineTickRate != time.Second/60 {
		t.Errorf("engineTickRate = %v, want %v", e.engineTickRate, time.Second/60)
	}
}
