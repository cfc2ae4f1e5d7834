package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Device classes accepted in DeviceClass.
var DeviceClasses = []string{"simulator", "headset", "desktop"}

// Debug views accepted in DebugView, indexed by their number key.
var DebugViews = []string{"none", "scene", "depth", "bright", "bloom", "volume", "composite"}

// LogLevels accepted in LogLevel.
var LogLevels = []string{"off", "debug", "info", "warn", "error"}

// Config holds the preview host and renderer settings.
type Config struct {
	// Output
	Width  int `json:"width"`
	Height int `json:"height"`
	Eyes   int `json:"eyes"`

	// UniformLayout is the uniform-texture layout version the consumer decodes.
	UniformLayout int `json:"uniform_layout"`

	// Camera
	DeviceClass string  `json:"device_class"`
	FovY        float32 `json:"fov_y_degrees"`

	// Effects
	BloomThreshold   float32    `json:"bloom_threshold"`
	BloomKnee        float32    `json:"bloom_knee"`
	CompositeWeights [4]float32 `json:"composite_weights"`

	// Resources
	CacheCapacity int    `json:"cache_capacity"`
	TexturePath   string `json:"texture_path"`
	MaxTexture    int    `json:"max_texture_size"`

	// Debug
	DebugView    string  `json:"debug_view"`
	CaptureDir   string  `json:"capture_dir"`
	CaptureScale float32 `json:"capture_scale"`
	LogLevel     string  `json:"log_level"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width       int
	Height      int
	Eyes        int
	DeviceClass string
	DebugView   string
	TexturePath string
	CaptureDir  string
	LogLevel    string
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve applies CLI overrides and fills any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Eyes > 0 {
		c.Eyes = flags.Eyes
	}
	if flags.DeviceClass != "" {
		c.DeviceClass = flags.DeviceClass
	}
	if flags.DebugView != "" {
		c.DebugView = flags.DebugView
	}
	if flags.TexturePath != "" {
		c.TexturePath = flags.TexturePath
	}
	if flags.CaptureDir != "" {
		c.CaptureDir = flags.CaptureDir
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 720
	}
	if c.Eyes <= 0 {
		c.Eyes = 2
	}
	if c.UniformLayout <= 0 {
		c.UniformLayout = 1
	}
	c.DeviceClass = strings.ToLower(c.DeviceClass)
	if c.DeviceClass == "" {
		c.DeviceClass = "simulator"
	}
	if c.FovY <= 0 {
		c.FovY = 60
	}
	if c.BloomThreshold <= 0 {
		c.BloomThreshold = 1.0
	}
	if c.BloomKnee <= 0 {
		c.BloomKnee = 0.5
	}
	if c.CompositeWeights == [4]float32{} {
		c.CompositeWeights = [4]float32{0, 0.25, 1, 2}
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = 256
	}
	if c.MaxTexture <= 0 {
		c.MaxTexture = 2048
	}
	c.DebugView = strings.ToLower(c.DebugView)
	if c.DebugView == "" {
		c.DebugView = "none"
	}
	if c.CaptureDir == "" {
		c.CaptureDir = "captures"
	}
	if !filepath.IsAbs(c.CaptureDir) {
		if cwd, err := os.Getwd(); err == nil {
			c.CaptureDir = filepath.Join(cwd, c.CaptureDir)
		}
	}
	if c.CaptureScale <= 0 {
		c.CaptureScale = 1
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports every setting that is out of range, joined into one error.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: output size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Eyes != 1 && c.Eyes != 2 {
		errs = append(errs, fmt.Errorf("config: eyes = %d, want 1 or 2", c.Eyes))
	}
	if !slices.Contains(DeviceClasses, c.DeviceClass) {
		errs = append(errs, fmt.Errorf("config: unknown device class %q", c.DeviceClass))
	}
	if c.FovY <= 0 || c.FovY >= 180 {
		errs = append(errs, fmt.Errorf("config: fov %v outside (0, 180)", c.FovY))
	}
	for i, w := range c.CompositeWeights {
		if w < 0 {
			errs = append(errs, fmt.Errorf("config: composite weight %d is negative", i))
		}
	}
	if c.CacheCapacity <= 0 {
		errs = append(errs, errors.New("config: cache capacity must be positive"))
	}
	if !slices.Contains(DebugViews, c.DebugView) {
		errs = append(errs, fmt.Errorf("config: unknown debug view %q", c.DebugView))
	}
	if !slices.Contains(LogLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("config: unknown log level %q", c.LogLevel))
	}
	if c.CaptureScale <= 0 || c.CaptureScale > 4 {
		errs = append(errs, fmt.Errorf("config: capture scale %v outside (0, 4]", c.CaptureScale))
	}
	return errors.Join(errs...)
}

// DebugViewIndex returns the position of DebugView in DebugViews, or 0.
func (c Config) DebugViewIndex() int {
	return max(0, slices.Index(DebugViews, c.DebugView))
}
