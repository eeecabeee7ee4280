// Package progress reports the driver's level-by-level advance through the
// merge hierarchy (spec §4.J step 6's per-level emission loop), the
// segmentation analogue of the teacher's per-item batch progress callback.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Callback defines the interface for progress reporting across a hierarchy
// run. Level 0 is the level emitted right after the initial segmentation;
// each later emitted level has the next index. The totalLevels passed to
// OnStart is the caller's estimate of the level count; 0 means no estimate.
type Callback interface {
	// OnStart is called once, with the number of levels to be emitted if known.
	OnStart(totalLevels int)

	// OnLevel is called after each level finishes merging and is written out.
	OnLevel(level int, nRegions int, threshold float64)

	// OnComplete is called when the hierarchy is fully built.
	OnComplete()

	// OnError is called when a level fails to process.
	OnError(level int, err error)
}

// NoOp implements Callback but does nothing. The default when no progress
// reporting is needed.
type NoOp struct{}

func (NoOp) OnStart(totalLevels int)                      {}
func (NoOp) OnLevel(level int, nRegions int, threshold float64) {}
func (NoOp) OnComplete()                                  {}
func (NoOp) OnError(level int, err error)                 {}

// Console displays a one-line-per-level progress report on the console.
type Console struct {
	writer    io.Writer
	prefix    string
	mutex     sync.Mutex
	startTime time.Time
	showRate  bool
}

// NewConsole creates a new console progress reporter.
func NewConsole(writer io.Writer, prefix string) *Console {
	if writer == nil {
		writer = os.Stderr
	}
	return &Console{writer: writer, prefix: prefix, showRate: true}
}

// WithRate toggles the elapsed-time-per-level suffix.
func (c *Console) WithRate(showRate bool) *Console {
	c.showRate = showRate
	return c
}

func (c *Console) OnStart(totalLevels int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.startTime = time.Now()
	if totalLevels > 0 {
		_, _ = fmt.Fprintf(c.writer, "%sbuilding %d levels\n", c.prefix, totalLevels)
	} else {
		_, _ = fmt.Fprintf(c.writer, "%sbuilding hierarchy\n", c.prefix)
	}
}

func (c *Console) OnLevel(level int, nRegions int, threshold float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	line := fmt.Sprintf("%slevel %d: %d regions, threshold %.4f", c.prefix, level, nRegions, threshold)
	if c.showRate {
		line += fmt.Sprintf(" (%v elapsed)", time.Since(c.startTime).Round(time.Millisecond))
	}
	_, _ = fmt.Fprintln(c.writer, line)
}

func (c *Console) OnComplete() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, _ = fmt.Fprintf(c.writer, "%scompleted in %v\n", c.prefix, time.Since(c.startTime).Round(time.Millisecond))
}

func (c *Console) OnError(level int, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, _ = fmt.Fprintf(c.writer, "%serror at level %d: %v\n", c.prefix, level, err)
}

// Log reports progress via slog, one structured record per level.
type Log struct {
	logger    *slog.Logger
	level     slog.Level
	prefix    string
	startTime time.Time
}

// NewLog creates a new log-based progress reporter.
func NewLog(logger *slog.Logger, level slog.Level, prefix string) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger, level: level, prefix: prefix}
}

func (l *Log) OnStart(totalLevels int) {
	l.startTime = time.Now()
	l.logger.Log(nil, l.level, l.prefix+"hierarchy build starting", "total_levels", totalLevels)
}

func (l *Log) OnLevel(level int, nRegions int, threshold float64) {
	l.logger.Log(nil, l.level, l.prefix+"level complete",
		"level", level,
		"regions", nRegions,
		"threshold", threshold,
		"elapsed", time.Since(l.startTime).Round(time.Millisecond),
	)
}

func (l *Log) OnComplete() {
	l.logger.Log(nil, l.level, l.prefix+"hierarchy build complete",
		"elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *Log) OnError(level int, err error) {
	l.logger.Log(nil, slog.LevelError, l.prefix+"level failed", "level", level, "error", err)
}

// Multi fans out to several callbacks.
type Multi struct {
	callbacks []Callback
}

// NewMulti creates a progress callback that reports to multiple callbacks.
func NewMulti(callbacks ...Callback) *Multi {
	return &Multi{callbacks: callbacks}
}

// Add registers another callback.
func (m *Multi) Add(cb Callback) {
	m.callbacks = append(m.callbacks, cb)
}

func (m *Multi) OnStart(totalLevels int) {
	for _, cb := range m.callbacks {
		cb.OnStart(totalLevels)
	}
}

func (m *Multi) OnLevel(level int, nRegions int, threshold float64) {
	for _, cb := range m.callbacks {
		cb.OnLevel(level, nRegions, threshold)
	}
}

func (m *Multi) OnComplete() {
	for _, cb := range m.callbacks {
		cb.OnComplete()
	}
}

func (m *Multi) OnError(level int, err error) {
	for _, cb := range m.callbacks {
		cb.OnError(level, err)
	}
}

// barChar and emptyChar draw a coarse level-progress bar, used by
// RenderBar below for callers that want a width-bounded visual.
const (
	barChar   = "█"
	emptyChar = "░"
)

// RenderBar renders a fixed-width progress bar for level/total.
func RenderBar(level, total, width int) string {
	if total <= 0 {
		return strings.Repeat(emptyChar, width)
	}
	filled := width * level / total
	if filled > width {
		filled = width
	}
	return strings.Repeat(barChar, filled) + strings.Repeat(emptyChar, width-filled)
}
