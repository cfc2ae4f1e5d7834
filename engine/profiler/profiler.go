package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-stereo/common"
)

// Stats is one profiler report.
type Stats struct {
	FPS float64

	// FrameTime is the mean frame time and MaxFrameTime the worst frame of the interval.
	FrameTime    time.Duration
	MaxFrameTime time.Duration

	// HeapMB is live heap memory, AllocRateMB the allocation rate in MB/s.
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64

	GCCount   uint32
	LastPause time.Duration
	MaxPause  time.Duration

	// Skipped counts frames Draw returned without rendering, e.g. before tracking starts.
	Skipped int
}

// Profiler tracks frame timing and memory statistics and logs a report once per interval.
// It is not safe for concurrent use; call it from the render goroutine.
type Profiler struct {
	now            func() time.Time
	updateInterval time.Duration
	lastTime       time.Time
	lastFrame      time.Time
	frameCount     int
	skipped        int
	maxFrame       time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a profiler reporting every interval. Non-positive intervals
// default to one second.
//
// Parameters:
//   - interval: the report interval
//   - now: the clock, nil for time.Now
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(interval time.Duration, now func() time.Time) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Profiler{now: now, updateInterval: interval, lastTime: t, lastFrame: t}
}

// Skip counts a frame that rendered nothing. It does not count towards FPS.
func (p *Profiler) Skip() {
	p.skipped++
}

// Tick records one rendered frame and logs a report when the interval has elapsed.
//
// Returns:
//   - Stats: the report, valid when reported is true
//   - bool: whether a report was produced this tick
func (p *Profiler) Tick() (Stats, bool) {
	t := p.now()
	p.frameCount++
	p.maxFrame = max(p.maxFrame, t.Sub(p.lastFrame))
	p.lastFrame = t

	elapsed := t.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		FrameTime:    elapsed / time.Duration(p.frameCount),
		MaxFrameTime: p.maxFrame,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		SysMB:        float64(p.memStats.Sys) / 1024 / 1024,
		GCCount:      p.memStats.NumGC,
		Skipped:      p.skipped,
	}
	if gc := p.memStats.NumGC; gc > 0 {
		// PauseNs is a ring of the last 256 pauses
		s.LastPause = time.Duration(p.memStats.PauseNs[(gc-1)%256])
		start := p.lastGCCount
		if gc-start > 256 {
			start = gc - 256
		}
		for i := start; i < gc; i++ {
			s.MaxPause = max(s.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	common.Logger().Info("frame stats",
		"fps", s.FPS,
		"frame_time", s.FrameTime,
		"max_frame_time", s.MaxFrameTime,
		"skipped", s.Skipped,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_pause", s.LastPause,
		"gc_max_pause", s.MaxPause,
		"sys_mb", s.SysMB,
	)

	p.frameCount = 0
	p.skipped = 0
	p.maxFrame = 0
	p.lastTime = t
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = s
	return s, true
}

// Last returns the most recent report.
func (p *Profiler) Last() Stats {
	return p.last
}
