// Command stereo-preview renders the demo scene through the stereo pass chain and
// shows the composite, or the selected debug view, in a window.
//
// Keys: A/D orbit, W/S or scroll zoom, space pauses the orbit, 0-6 select the debug
// view, C writes a WebP capture of every eye, Esc quits. With -frames the preview
// runs headless, renders that many frames and captures the last one.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine"
	"github.com/Carmen-Shannon/oxy-stereo/engine/camera"
	"github.com/Carmen-Shannon/oxy-stereo/engine/capture"
	"github.com/Carmen-Shannon/oxy-stereo/engine/orchestrator"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-stereo/engine/window"
	"github.com/Carmen-Shannon/oxy-stereo/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "stereo-preview:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	frames     int
	vsync      bool
	profile    bool
	software   bool
}

func parseFlags() (options, config.Flags) {
	var opts options
	var flags config.Flags
	flag.StringVar(&opts.configPath, "config", "", "JSON config file")
	flag.IntVar(&opts.frames, "frames", 0, "render this many frames headless, capture the last and exit")
	flag.BoolVar(&opts.vsync, "vsync", true, "wait for vertical blank when presenting")
	flag.BoolVar(&opts.profile, "profile", false, "log frame stats every second")
	flag.BoolVar(&opts.software, "software", false, "force the software fallback adapter")
	flag.IntVar(&flags.Width, "width", 0, "eye width in pixels")
	flag.IntVar(&flags.Height, "height", 0, "eye height in pixels")
	flag.IntVar(&flags.Eyes, "eyes", 0, "1 for mono, 2 for stereo")
	flag.StringVar(&flags.DeviceClass, "device", "", "device class: simulator, headset or desktop")
	flag.StringVar(&flags.DebugView, "debug", "", "initial debug view")
	flag.StringVar(&flags.TexturePath, "texture", "", "PNG, JPEG or TGA texture for the demo scene")
	flag.StringVar(&flags.CaptureDir, "captures", "", "capture output directory")
	flag.StringVar(&flags.LogLevel, "log", "", "log level: off, debug, info, warn or error")
	flag.Parse()
	return opts, flags
}

func run() error {
	opts, flags := parseFlags()

	var cfg config.Config
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return err
	}
	common.SetLogger(newLogger(cfg.LogLevel))

	class, err := camera.ParseDeviceClass(cfg.DeviceClass)
	if err != nil {
		return err
	}
	view, err := orchestrator.ParseDebugView(cfg.DebugView)
	if err != nil {
		return err
	}

	headless := opts.frames > 0
	var win window.Window
	if !headless {
		if win, err = window.NewWindow(window.WithTitle("stereo preview"), window.WithSize(cfg.Width, cfg.Height)); err != nil {
			return err
		}
		defer win.Close()
	}

	presentMode := renderer.PresentModeUncapped
	if opts.vsync {
		presentMode = renderer.PresentModeVSync
	}
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(opts.software),
	)
	defer r.Release()

	pose := camera.NewOrbitPoseProvider()
	orch, err := orchestrator.NewOrchestrator(r, pose,
		orchestrator.WithSize(cfg.Width, cfg.Height),
		orchestrator.WithEyes(cfg.Eyes),
		orchestrator.WithUniformLayout(cfg.UniformLayout),
		orchestrator.WithProfile(camera.NewProfile(class, cfg.FovY)),
		orchestrator.WithBrightParams(effect.BrightParams{Threshold: cfg.BloomThreshold, Knee: cfg.BloomKnee}),
		orchestrator.WithCompositeWeights(cfg.CompositeWeights),
		orchestrator.WithCacheCapacity(cfg.CacheCapacity),
		orchestrator.WithDebugView(view),
	)
	if err != nil {
		return err
	}
	defer orch.Release()

	scene, err := newDemoScene(cfg.TexturePath, cfg.MaxTexture)
	if err != nil {
		return err
	}
	defer scene.release()

	ctl := &controls{pose: pose, orch: orch}
	engineOpts := []engine.EngineBuilderOption{engine.WithProfiling(opts.profile), engine.WithResizer(r)}
	if win != nil {
		engineOpts = append(engineOpts, engine.WithWindow(win))
		win.SetKeyCallback(ctl.key)
		win.SetScrollCallback(ctl.scroll)
		win.SetDragCallback(ctl.dragged)
	}
	eng := engine.NewEngine(engineOpts...)

	frames := 0
	eng.SetRenderCallback(func(dt float32) (bool, error) {
		scene.update(dt)
		if err := orch.Draw(scene.entities, scene.lights); err != nil {
			return false, err
		}
		if orch.State() != orchestrator.StateTracking {
			return false, nil
		}
		frames++
		if headless && frames >= opts.frames {
			ctl.capture.Store(true)
			eng.Quit()
		}
		if ctl.takeCapture() {
			if err := captureEyes(r, orch, scene, cfg); err != nil {
				common.Logger().Error("capture failed", "error", err)
			}
		}
		return true, nil
	})

	if win != nil {
		title := ""
		eng.SetUpdateCallback(func() {
			t := fmt.Sprintf("stereo preview | %s | %s", orch.State(), orch.DebugView())
			if t != title {
				title = t
				win.SetTitle(t)
			}
		})
	}

	common.Logger().Info("preview started",
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"eyes", cfg.Eyes,
		"device", class,
		"debug_view", view,
		"headless", headless,
	)
	if err := eng.Run(); err != nil {
		return err
	}
	if headless && frames < opts.frames {
		return errors.New("stopped before the requested frames were rendered")
	}
	return nil
}

// captureEyes writes every eye of the debug target. With no debug view selected it
// renders one extra frame with the composite view so there is something to read.
func captureEyes(r renderer.Renderer, orch orchestrator.Orchestrator, scene *demoScene, cfg config.Config) error {
	if orch.DebugView() == orchestrator.DebugViewNone {
		orch.SetDebugView(orchestrator.DebugViewComposite)
		defer orch.SetDebugView(orchestrator.DebugViewNone)
		if err := orch.Draw(scene.entities, scene.lights); err != nil {
			return err
		}
	}
	tex := orch.Outputs().Debug
	at := time.Now()
	for eye := range tex.Layers() {
		path, err := capture.SaveWebP(r, tex, eye, cfg.CaptureDir, float64(cfg.CaptureScale), at)
		if err != nil {
			return err
		}
		common.Logger().Info("capture written", "path", path, "view", orch.DebugView())
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "off":
		return nil
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
