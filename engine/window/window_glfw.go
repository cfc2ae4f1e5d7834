package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window  *glfw.Window
	running bool
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func glfwLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

// newPlatformWindow creates the GLFW window without a client API, WebGPU brings its own,
// and routes the GLFW input callbacks into the engineWindow.
//
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(w.resizable))

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("create GLFW window: %w", err)
	}
	win.SetSizeLimits(glfwLimit(w.minWidth), glfwLimit(w.minHeight), glfwLimit(w.maxWidth), glfwLimit(w.maxHeight))

	gw := &glfwWindow{window: win, running: true}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape {
			if action == glfw.Press {
				gw.running = false
				win.SetShouldClose(true)
			}
			return
		}
		if w.onKey == nil {
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.onKey(int(key), true)
		case glfw.Release:
			w.onKey(int(key), false)
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		w.dragging = action == glfw.Press
		w.lastX, w.lastY = win.GetCursorPos()
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.cursor(x, y)
	})

	// framebuffer size, not window size: they differ on high-DPI displays and the
	// surface is configured in pixels
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resize(width, height)
	})
	w.width, w.height = win.GetFramebufferSize()
	return nil
}

// platformGetSurfaceDescriptor bridges the GLFW window to a wgpu surface through
// wgpuglfw, which covers Windows, X11, Wayland and macOS.
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformSetTitle(w *engineWindow) {
	if gw, ok := w.internalWindow.(*glfwWindow); ok {
		gw.window.SetTitle(w.title)
	}
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return false
	}
	return gw.running && !gw.window.ShouldClose()
}

func platformCloseWindow(w *engineWindow) error {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return fmt.Errorf("window is not initialized")
	}
	gw.running = false
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages polls pending events without blocking.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
