package camera

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitPoseProvider is a pose source that circles a target point. It stands in for
// a head tracker on hosts without one: Start simulates the tracker warm-up, and
// Pose reports a device transform for any requested timestamp.
type OrbitPoseProvider interface {
	// Start blocks until the provider is ready or ctx is done.
	//
	// Parameters:
	//   - ctx: cancels the warm-up
	//
	// Returns:
	//   - error: ctx.Err() if the warm-up was cancelled
	Start(ctx context.Context) error

	// Ready reports whether Start has completed successfully.
	Ready() bool

	// Pose returns the world-from-device transform at the given time.
	//
	// Parameters:
	//   - at: the sample time; orbit motion is extrapolated to it
	//
	// Returns:
	//   - mgl32.Mat4: the device pose
	//   - bool: false until the provider is ready
	Pose(at time.Time) (mgl32.Mat4, bool)

	// OrbitLeft rotates the orbit by one step counter-clockwise seen from above.
	OrbitLeft()

	// OrbitRight rotates the orbit by one step clockwise seen from above.
	OrbitRight()

	// Zoom moves the device toward (delta > 0) or away from the target, clamped to the radius bounds.
	//
	// Parameters:
	//   - delta: zoom input, scaled by the zoom speed
	Zoom(delta float32)

	// SetPaused stops or resumes the automatic orbit.
	//
	// Parameters:
	//   - paused: true to hold the current azimuth
	SetPaused(paused bool)

	// Paused reports whether the automatic orbit is stopped.
	Paused() bool
}

// orbitPoseProvider is the implementation of OrbitPoseProvider.
type orbitPoseProvider struct {
	mu *sync.Mutex

	ready atomic.Bool
	epoch time.Time

	target mgl32.Vec3

	radius    float32
	azimuth   float32 // offset applied on top of the timed orbit
	elevation float32

	minRadius float32
	maxRadius float32

	// angular velocity of the automatic orbit in radians per second
	angularSpeed float32
	orbitStep    float32
	zoomSpeed    float32

	paused    bool
	pausedAt  time.Time
	pausedFor time.Duration

	warmup time.Duration
	now    func() time.Time
}

var _ OrbitPoseProvider = &orbitPoseProvider{}

// NewOrbitPoseProvider creates an orbit pose provider with defaults suited to the demo scene:
// a 4 m orbit around (0, 1, 0), 15 degrees above the horizon.
//
// Parameters:
//   - options: functional options to configure the provider
//
// Returns:
//   - OrbitPoseProvider: the newly created provider
func NewOrbitPoseProvider(options ...OrbitPoseProviderOption) OrbitPoseProvider {
	p := &orbitPoseProvider{
		mu:     &sync.Mutex{},
		target: mgl32.Vec3{0, 1, 0},

		radius:    4.0,
		elevation: float32(math.Pi / 12),

		minRadius: 0.5,
		maxRadius: 50.0,

		angularSpeed: 0.2,
		orbitStep:    0.05,
		zoomSpeed:    0.25,

		warmup: 250 * time.Millisecond,
		now:    time.Now,
	}
	for _, option := range options {
		option(p)
	}
	p.epoch = p.now()
	return p
}

func (p *orbitPoseProvider) Start(ctx context.Context) error {
	if p.ready.Load() {
		return nil
	}
	timer := time.NewTimer(p.warmup)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	p.mu.Lock()
	p.epoch = p.now()
	p.mu.Unlock()
	p.ready.Store(true)
	return nil
}

func (p *orbitPoseProvider) Ready() bool {
	return p.ready.Load()
}

func (p *orbitPoseProvider) Pose(at time.Time) (mgl32.Mat4, bool) {
	if !p.ready.Load() {
		return mgl32.Ident4(), false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := at.Sub(p.epoch) - p.pausedFor
	if p.paused {
		elapsed = p.pausedAt.Sub(p.epoch) - p.pausedFor
	}
	if elapsed < 0 {
		elapsed = 0
	}
	azimuth := p.azimuth + p.angularSpeed*float32(elapsed.Seconds())
	return p.poseAt(azimuth), true
}

// poseAt returns the inverse of the look-at view matrix for the given azimuth.
// Caller must hold the mutex.
func (p *orbitPoseProvider) poseAt(azimuth float32) mgl32.Mat4 {
	cosElev := float32(math.Cos(float64(p.elevation)))
	sinElev := float32(math.Sin(float64(p.elevation)))
	cosAzim := float32(math.Cos(float64(azimuth)))
	sinAzim := float32(math.Sin(float64(azimuth)))

	eye := mgl32.Vec3{
		p.target[0] + p.radius*cosElev*sinAzim,
		p.target[1] + p.radius*sinElev,
		p.target[2] + p.radius*cosElev*cosAzim,
	}
	view := mgl32.LookAtV(eye, p.target, mgl32.Vec3{0, 1, 0})
	return view.Inv()
}

func (p *orbitPoseProvider) OrbitLeft() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.azimuth -= p.orbitStep
}

func (p *orbitPoseProvider) OrbitRight() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.azimuth += p.orbitStep
}

func (p *orbitPoseProvider) Zoom(delta float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.radius -= delta * p.zoomSpeed
	if p.radius < p.minRadius {
		p.radius = p.minRadius
	}
	if p.radius > p.maxRadius {
		p.radius = p.maxRadius
	}
}

func (p *orbitPoseProvider) SetPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if paused == p.paused {
		return
	}
	now := p.now()
	if paused {
		p.pausedAt = now
	} else {
		p.pausedFor += now.Sub(p.pausedAt)
	}
	p.paused = paused
}

func (p *orbitPoseProvider) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}
