package main

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/camera"
	"github.com/Carmen-Shannon/oxy-stereo/engine/orchestrator"
)

// dragPixelsPerStep is the horizontal drag distance that counts as one orbit step.
const dragPixelsPerStep = 24

// controls maps window input onto the pose provider and the orchestrator. Key and
// scroll events arrive on the window goroutine; everything they touch is atomic.
type controls struct {
	pose    camera.OrbitPoseProvider
	orch    orchestrator.Orchestrator
	capture atomic.Bool
	drag    float32
}

func (c *controls) key(key int, down bool) {
	if !down {
		return
	}
	if d, ok := common.DigitKey(key); ok {
		if d < orchestrator.DebugViewCount {
			v := orchestrator.DebugView(d)
			c.orch.SetDebugView(v)
			common.Logger().Info("debug view", "view", v)
		}
		return
	}
	switch key {
	case common.KeyA:
		c.pose.OrbitLeft()
	case common.KeyD:
		c.pose.OrbitRight()
	case common.KeyW:
		c.pose.Zoom(1)
	case common.KeyS:
		c.pose.Zoom(-1)
	case common.KeySpace:
		c.pose.SetPaused(!c.pose.Paused())
	case common.KeyC:
		c.capture.Store(true)
	}
}

func (c *controls) scroll(delta float32) {
	c.pose.Zoom(delta)
}

// dragged accumulates horizontal drag into whole orbit steps.
func (c *controls) dragged(dx, _ float32) {
	c.drag += dx
	for c.drag >= dragPixelsPerStep {
		c.drag -= dragPixelsPerStep
		c.pose.OrbitRight()
	}
	for c.drag <= -dragPixelsPerStep {
		c.drag += dragPixelsPerStep
		c.pose.OrbitLeft()
	}
}

// takeCapture reports and clears a pending capture request.
func (c *controls) takeCapture() bool {
	return c.capture.Swap(false)
}
