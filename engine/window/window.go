package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the preview window: a surface source plus the input the preview host
// turns into orbit, zoom and debug-view commands.
type Window interface {
	// SetResizeCallback sets the function called with the new framebuffer size.
	//
	// Parameters:
	//   - callback: function receiving width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the function called on key presses and releases. Held keys
	// repeat as presses. Escape closes the window and is not forwarded.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*) and whether it is down
	SetKeyCallback(callback func(key int, down bool))

	// SetScrollCallback sets the callback for vertical scroll events.
	//
	// Parameters:
	//   - callback: function receiving the scroll delta, positive away from the user
	SetScrollCallback(callback func(delta float32))

	// SetDragCallback sets the callback for cursor motion while the left button is held.
	//
	// Parameters:
	//   - callback: function receiving the cursor motion in pixels
	SetDragCallback(callback func(dx, dy float32))

	// SetTitle replaces the title bar text. Must be called on the window thread.
	SetTitle(title string)

	// SurfaceDescriptor returns the descriptor the renderer creates its surface from.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open.
	IsRunning() bool

	// Close destroys the window.
	Close() error

	// ProcessMessages polls events until the window closes or onUpdate returns false.
	// It must run on the goroutine that created the window.
	//
	// Parameters:
	//   - onUpdate: called after every poll (nil safe)
	ProcessMessages(onUpdate func() bool)

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

type engineWindow struct {
	title               string
	width, height       int
	minWidth, minHeight int
	maxWidth, maxHeight int
	resizable           bool

	dragging     bool
	lastX, lastY float64

	internalWindow any

	onResize func(width, height int)
	onKey    func(key int, down bool)
	onScroll func(delta float32)
	onDrag   func(dx, dy float32)
}

var _ Window = &engineWindow{}

// NewWindow creates the platform window. It locks the calling goroutine to its
// OS thread; every later window call must come from that goroutine.
//
// Parameters:
//   - options: functional options for the window
//
// Returns:
//   - Window: the open window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "stereo preview",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 180,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = max(w.width, w.minWidth)
	w.height = max(w.height, w.minHeight)
	if w.maxWidth > 0 {
		w.width = min(w.width, w.maxWidth)
	}
	if w.maxHeight > 0 {
		w.height = min(w.height, w.maxHeight)
	}
	return w
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyCallback(callback func(key int, down bool)) {
	w.onKey = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetDragCallback(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages(onUpdate func() bool) {
	for w.IsRunning() {
		if ok := platformProcessMessages(w); !ok {
			break
		}
		if onUpdate != nil && !onUpdate() {
			break
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// cursor tracks the cursor and reports the motion since the last event while dragging.
func (w *engineWindow) cursor(x, y float64) {
	dx, dy := x-w.lastX, y-w.lastY
	w.lastX, w.lastY = x, y
	if w.dragging && w.onDrag != nil && (dx != 0 || dy != 0) {
		w.onDrag(float32(dx), float32(dy))
	}
}

// resize records the framebuffer size. Zero sizes, reported while minimized, are dropped.
func (w *engineWindow) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
