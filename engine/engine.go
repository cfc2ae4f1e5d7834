package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/profiler"
	"github.com/Carmen-Shannon/oxy-stereo/engine/window"
)

// RenderFunc renders one frame. It reports whether anything was rendered; frames
// skipped while tracking starts are counted separately by the profiler.
type RenderFunc func(deltaTime float32) (rendered bool, err error)

// Resizer receives framebuffer size changes on the render goroutine.
type Resizer interface {
	Resize(width, height int)
}

// engine implements the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window  window.Window
	resizer Resizer
	// pendingSize holds the last framebuffer size reported by the window, packed
	// as width<<32 | height, until the render goroutine applies it
	pendingSize atomic.Uint64

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate   time.Duration
	tickCallback     func(deltaTime float32)
	renderCallback   RenderFunc
	updateCallback   func()
	renderFrameLimit time.Duration

	maxRenderErrors int
	errMu           sync.Mutex
	err             error
}

// Engine runs the preview loops: a fixed-rate tick loop for input and animation,
// a render loop, and the window message loop on the calling goroutine.
type Engine interface {
	// Window returns the window, or nil for a headless engine.
	Window() window.Window

	// Profiler returns the frame profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables the periodic frame stats log.
	EnableProfiler()

	// DisableProfiler disables the periodic frame stats log.
	DisableProfiler()

	// SetTickRate sets the tick loop rate.
	//
	// Parameters:
	//   - fps: ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each tick on the tick goroutine.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each frame on the render goroutine.
	//
	// Parameters:
	//   - callback: the frame function
	SetRenderCallback(callback RenderFunc)

	// SetUpdateCallback registers the function called after every window poll, on the
	// window goroutine. Window calls such as SetTitle belong here.
	SetUpdateCallback(callback func())

	// SetRenderFrameLimit caps the render loop rate. Pass 0 to uncap.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the loops and blocks until the window closes or Quit is called, and
	// the tick and render goroutines have returned. The window stays open; the caller
	// closes it after releasing the renderer. Run must be called on the goroutine that
	// created the window.
	//
	// Returns:
	//   - error: the render error that stopped the engine, if any
	Run() error

	// Quit stops the engine. Safe to call multiple times and from any goroutine.
	Quit()
}

// NewEngine creates a new Engine with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
		maxRenderErrors: 30,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(time.Second, nil)
	}
	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.pendingSize.Store(uint64(uint32(width))<<32 | uint64(uint32(height)))
		})
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run() error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine: already running")
	}
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()

	if e.window != nil {
		e.window.ProcessMessages(func() bool {
			if e.updateCallback != nil {
				e.updateCallback()
			}
			select {
			case <-e.quitChannel:
				return false
			default:
				return true
			}
		})
		e.signalQuit()
	} else {
		<-e.quitChannel
	}
	e.wg.Wait()
	e.running.Store(false)

	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) fail(err error) {
	e.errMu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.errMu.Unlock()
	e.signalQuit()
}

// handleEngine runs the fixed-rate tick loop and applies tick rate changes
// from tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()
	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		}
	}
}

// handleRender runs the render loop. Pending resizes are applied before each frame.
// A panic or maxRenderErrors consecutive failing frames stop the engine.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Warn("render goroutine recovered from panic", "panic", r)
			e.fail(fmt.Errorf("engine: render panic: %v", r))
		}
	}()

	lastRender := time.Now()
	failures := 0

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastRender).Seconds())
		lastRender = frameStart

		if size := e.pendingSize.Swap(0); size != 0 && e.resizer != nil {
			e.resizer.Resize(int(size>>32), int(uint32(size)))
		}

		rendered := false
		if e.renderCallback != nil {
			var err error
			rendered, err = e.renderCallback(dt)
			if err != nil {
				failures++
				common.Logger().Error("frame failed", "error", err, "consecutive", failures)
				if failures >= e.maxRenderErrors {
					e.fail(fmt.Errorf("engine: %d consecutive failed frames: %w", failures, err))
					return
				}
			} else {
				failures = 0
			}
		}

		if e.profilingEnabled.Load() {
			if rendered {
				e.profiler.Tick()
			} else {
				e.profiler.Skip()
			}
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		} else if !rendered {
			// nothing to wait on, e.g. while tracking starts
			time.Sleep(time.Millisecond)
		}
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the tick rate. A running engine picks the change up on its next tick.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// keep only the newest pending rate
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback RenderFunc) {
	e.renderCallback = callback
}

func (e *engine) SetUpdateCallback(callback func()) {
	e.updateCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
