// Package orchestrator drives the passes of a stereo frame. It owns the render
// targets and the passes, starts the pose provider on first use and records a
// whole frame on one encoder per Draw.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/camera"
	"github.com/Carmen-Shannon/oxy-stereo/engine/light"
	"github.com/Carmen-Shannon/oxy-stereo/engine/model"
	"github.com/Carmen-Shannon/oxy-stereo/engine/pass"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-stereo/engine/uniform"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultLookahead is the pose prediction interval.
const DefaultLookahead = 10 * time.Millisecond

// PoseProvider supplies the tracked device pose.
type PoseProvider interface {
	// Start blocks until tracking is available. It is called once, off the frame goroutine.
	Start(ctx context.Context) error

	// Ready reports whether Start has completed.
	Ready() bool

	// Pose returns the world-from-device transform predicted for at.
	Pose(at time.Time) (mgl32.Mat4, bool)
}

// State is the tracking state of an Orchestrator.
type State int32

const (
	// StateUninitialized is the state before the first Draw, and after Restart.
	StateUninitialized State = iota
	// StateStarting means PoseProvider.Start was submitted and has not yet reported ready.
	StateStarting
	// StateTracking means frames are rendered.
	StateTracking
	// StateFailed means PoseProvider.Start returned an error. Restart retries it.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateTracking:
		return "tracking"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Handle identifies an entity across frames.
type Handle uint32

// Entity is one mesh instance submitted to Draw.
type Entity struct {
	Handle         Handle
	WorldFromModel mgl32.Mat4
	Mesh           *model.MeshBinding

	// Material is optional; without one the mesh is drawn flat white.
	Material material.Material
}

// Outputs are the textures read by the consumer of the rendered frames.
type Outputs struct {
	// Composite is the final color, one layer per eye.
	Composite *renderer.ArrayTexture

	// Uniform holds the encoded camera matrices of the last frame.
	Uniform *renderer.ArrayTexture

	// Debug holds the selected debug view, one layer per eye.
	Debug *renderer.ArrayTexture
}

// Renderer is the renderer an Orchestrator records into.
type Renderer interface {
	pass.Renderer
	BeginFrame() error
	EndFrame() error
	Present()
}

// Orchestrator renders stereo frames.
type Orchestrator interface {
	// Draw renders one frame of the entities lit by lights. Until the pose
	// provider is ready Draw renders nothing and returns nil.
	//
	// Parameters:
	//   - entities: the meshes to draw
	//   - lights: the spot lights; entries past light.MaxLights are dropped
	//
	// Returns:
	//   - error: an error if a pass fails or the frame cannot be submitted
	Draw(entities []Entity, lights []light.SpotLight) error

	// State returns the tracking state.
	State() State

	// Restart lets a failed pose provider start again on the next Draw.
	//
	// Returns:
	//   - bool: false if the provider had not failed
	Restart() bool

	// SetDebugView selects the debug view. Safe to call from any goroutine.
	SetDebugView(view DebugView)

	// DebugView returns the selected debug view.
	DebugView() DebugView

	// Frame returns the camera frame of the last rendered frame.
	Frame() camera.Frame

	// Outputs returns the public textures.
	Outputs() Outputs

	// Targets returns every render target.
	Targets() *pass.Targets

	// TextureCache returns the material texture cache.
	TextureCache() *material.TextureCache

	// Release frees every GPU object owned by the orchestrator.
	Release()
}

type orchestrator struct {
	r    Renderer
	pose PoseProvider
	pool worker.DynamicWorkerPool

	ctx    context.Context
	cancel context.CancelFunc

	state     atomic.Int32
	debugView atomic.Int32
	starts    int

	width, height, eyes int
	profile             camera.Profile
	bright              effect.BrightParams
	bloomIterations     int
	weights             [effect.CompositeSlots]float32
	cacheCapacity       int
	uniformLayout       int
	lookahead           time.Duration
	now                 func() time.Time

	targets *pass.Targets
	shared  *pass.Shared

	scene     *pass.Scene
	debug     *pass.Debug
	presenter *pass.Presenter
	passes    []pass.Pass

	frame     camera.Frame
	drawables []pass.Drawable
}

var _ Orchestrator = &orchestrator{}

// NewOrchestrator creates the targets and passes.
//
// Parameters:
//   - r: the renderer; with a surface format the frame is also presented
//   - pose: the pose provider, started on the first Draw
//   - options: functional options to configure the orchestrator
//
// Returns:
//   - Orchestrator: the orchestrator, in StateUninitialized
//   - error: an error wrapping uniform.ErrLayoutVersion for an unsupported
//     consumer, or the first resource creation failure
func NewOrchestrator(r Renderer, pose PoseProvider, options ...OrchestratorOption) (Orchestrator, error) {
	if r == nil || pose == nil {
		return nil, errors.New("orchestrator: renderer and pose provider are required")
	}
	o := &orchestrator{
		r:             r,
		pose:          pose,
		width:         1280,
		height:        720,
		eyes:          2,
		profile:       camera.NewProfile(camera.DeviceClassSimulator, 0),
		bright:        effect.DefaultBrightParams(),
		weights:       effect.DefaultCompositeWeights,
		uniformLayout: uniform.LayoutVersion,
		lookahead:     DefaultLookahead,
		now:           time.Now,
	}
	for _, option := range options {
		option(o)
	}
	if err := uniform.CheckVersion(o.uniformLayout); err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	if err := o.build(); err != nil {
		o.Release()
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())
	// one worker; the pool only ever runs the pose provider start
	o.pool = worker.NewDynamicWorkerPool(1, 256, 1*time.Second)
	return o, nil
}

func (o *orchestrator) build() error {
	var err error
	if o.targets, err = pass.NewTargets(o.r, o.width, o.height, o.eyes); err != nil {
		return err
	}
	if o.shared, err = pass.NewShared(o.r, o.eyes); err != nil {
		return err
	}
	if o.scene, err = pass.NewScene(o.r, o.targets, o.shared, pass.WithTextureCacheCapacity(o.cacheCapacity)); err != nil {
		return err
	}
	o.passes = append(o.passes, o.scene)

	bright, err := pass.NewBright(o.r, o.targets, o.shared, o.bright)
	if err != nil {
		return err
	}
	o.passes = append(o.passes, bright)

	bloom, err := pass.NewBloom(o.r, o.targets, o.shared, o.bloomIterations)
	if err != nil {
		return err
	}
	o.passes = append(o.passes, bloom)

	volume, err := pass.NewVolumeLight(o.r, o.targets, o.shared)
	if err != nil {
		return err
	}
	o.passes = append(o.passes, volume)

	surface, err := pass.NewSurfaceLight(o.r, o.targets, o.shared)
	if err != nil {
		return err
	}
	o.passes = append(o.passes, surface)

	slots := pass.Slots{o.targets.Color, bloom.Output(), o.targets.Light, nil}
	composite, err := pass.NewComposite(o.r, o.targets, o.shared, slots, o.weights)
	if err != nil {
		return err
	}
	o.passes = append(o.passes, composite)

	if o.debug, err = pass.NewDebug(o.r, o.targets, o.shared, bloom.Output()); err != nil {
		return err
	}
	o.passes = append(o.passes, o.debug)

	uniformTexture, err := pass.NewUniformTexture(o.r, o.targets)
	if err != nil {
		return err
	}
	o.passes = append(o.passes, uniformTexture)

	o.presenter, err = pass.NewPresenter(o.r, o.targets, o.shared)
	switch {
	case errors.Is(err, renderer.ErrHeadless):
		o.presenter = nil
		common.Logger().Debug("no presentation surface, frames are not presented")
	case err != nil:
		return err
	default:
		o.passes = append(o.passes, o.presenter)
	}
	return nil
}

func (o *orchestrator) State() State { return State(o.state.Load()) }

func (o *orchestrator) Restart() bool {
	return o.state.CompareAndSwap(int32(StateFailed), int32(StateUninitialized))
}

func (o *orchestrator) SetDebugView(view DebugView) { o.debugView.Store(int32(view)) }

func (o *orchestrator) DebugView() DebugView { return DebugView(o.debugView.Load()) }

func (o *orchestrator) Frame() camera.Frame { return o.frame }

func (o *orchestrator) Outputs() Outputs {
	if o.targets == nil {
		return Outputs{}
	}
	return Outputs{Composite: o.targets.Composite, Uniform: o.targets.Uniform, Debug: o.targets.Debug}
}

func (o *orchestrator) Targets() *pass.Targets { return o.targets }

func (o *orchestrator) TextureCache() *material.TextureCache {
	if o.scene == nil {
		return nil
	}
	return o.scene.Cache()
}

// startTracking submits PoseProvider.Start to the worker pool.
func (o *orchestrator) startTracking() {
	if !o.state.CompareAndSwap(int32(StateUninitialized), int32(StateStarting)) {
		return
	}
	o.starts++
	common.Logger().Info("starting pose provider", "attempt", o.starts)
	o.pool.SubmitTask(worker.Task{
		ID: o.starts,
		Do: func() (any, error) {
			err := o.pose.Start(o.ctx)
			if err != nil {
				common.Logger().Error("pose provider failed to start", "error", err)
				o.state.CompareAndSwap(int32(StateStarting), int32(StateFailed))
			}
			return nil, err
		},
	})
}

// tracking advances the state machine and reports whether a frame can be drawn.
func (o *orchestrator) tracking() bool {
	switch o.State() {
	case StateUninitialized:
		o.startTracking()
		return false
	case StateStarting:
		if !o.pose.Ready() {
			return false
		}
		if o.state.CompareAndSwap(int32(StateStarting), int32(StateTracking)) {
			common.Logger().Info("pose provider tracking")
		}
		return o.State() == StateTracking
	case StateTracking:
		return true
	}
	return false
}

func (o *orchestrator) Draw(entities []Entity, lights []light.SpotLight) error {
	if o.targets == nil {
		return pass.ErrNotInitialized
	}
	if !o.tracking() {
		common.Logger().Debug("frame skipped", "state", o.State())
		return nil
	}
	worldFromDevice, ok := o.pose.Pose(o.now().Add(o.lookahead))
	if !ok {
		common.Logger().Debug("frame skipped", "reason", "no pose")
		return nil
	}

	o.frame = camera.NewFrame(o.profile, worldFromDevice, o.eyes, o.width, o.height)
	n := o.shared.Write(o.r, o.frame, lights)

	o.drawables = o.drawables[:0]
	for _, e := range entities {
		if e.Mesh == nil {
			common.Logger().Debug("entity without mesh skipped", "handle", e.Handle)
			continue
		}
		o.drawables = append(o.drawables, pass.Drawable{WorldFromModel: e.WorldFromModel, Mesh: e.Mesh, Material: e.Material})
	}
	f := &pass.Frame{Camera: o.frame, Drawables: o.drawables, Lights: n}

	view := o.DebugView()
	o.debug.SetSource(view.source())
	if o.presenter != nil {
		o.presenter.ShowDebug(view != DebugViewNone)
	}

	for _, p := range o.passes {
		if err := p.Prepare(o.r, f); err != nil {
			return fmt.Errorf("orchestrator: prepare %s: %w", p.Name(), err)
		}
	}

	if err := o.r.BeginFrame(); err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	for _, p := range o.passes {
		err := p.Record(o.r, f)
		if err == nil {
			continue
		}
		if p == pass.Pass(o.presenter) {
			// the surface can be lost for a frame, e.g. while minimized
			common.Logger().Warn("frame not presented", "error", err)
			continue
		}
		return errors.Join(fmt.Errorf("orchestrator: record %s: %w", p.Name(), err), o.r.EndFrame())
	}
	if err := o.r.EndFrame(); err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	if o.presenter != nil {
		o.r.Present()
	}
	return nil
}

func (o *orchestrator) Release() {
	if o.cancel != nil {
		o.cancel()
	}
	for i := len(o.passes) - 1; i >= 0; i-- {
		o.passes[i].Release()
	}
	o.passes = nil
	o.scene, o.debug, o.presenter = nil, nil, nil
	o.shared.Release()
	o.shared = nil
	o.targets.Release()
	o.targets = nil
}
