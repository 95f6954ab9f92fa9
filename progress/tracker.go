// Package progress - Progress tracking and periodic reporting for blur runs.
package progress

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nvr-ai/go-boxblur/images/kernels"
)

// Snapshot is a point-in-time view of a Tracker.
type Snapshot struct {
	Name     string
	Done     int
	Total    int
	Percent  float64
	Elapsed  time.Duration
	Finished bool
}

// Options configures a Tracker.
type Options struct {
	// Name labels every report, typically the file being processed.
	Name string
	// Interval between reports. Zero disables periodic reporting; the final
	// report on Finished is still emitted.
	Interval time.Duration
	// Report receives each snapshot. Nil logs through kernels.Logger.
	Report func(Snapshot)
}

// Tracker is a kernels.ProgressSink backed by atomic counters. It is safe for
// concurrent use, so parallel blurs report into it without extra locking.
type Tracker struct {
	name     string
	interval time.Duration
	report   func(Snapshot)

	total    atomic.Int64
	done     atomic.Int64
	finished atomic.Bool

	mu        sync.Mutex
	startTime time.Time
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewTracker creates a tracker. Call Start to begin periodic reporting.
func NewTracker(opts Options) *Tracker {
	t := &Tracker{
		name:      opts.Name,
		interval:  opts.Interval,
		report:    opts.Report,
		startTime: time.Now(),
	}
	if t.report == nil {
		t.report = logSnapshot
	}
	return t
}

func logSnapshot(s Snapshot) {
	kernels.Logger().Info("progress",
		"name", s.Name,
		"done", s.Done,
		"total", s.Total,
		"percent", s.Percent,
		"elapsed", s.Elapsed,
		"finished", s.Finished)
}

// Start launches the reporting goroutine. Calling it again while running is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running || t.interval <= 0 {
		return
	}
	t.running = true
	t.startTime = time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.report(t.Snapshot())
			}
		}
	}()
}

// stop halts the reporting goroutine and waits for it to exit.
func (t *Tracker) stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	cancel := t.cancel
	t.running = false
	t.mu.Unlock()

	// The goroutine may be inside Snapshot, which takes mu.
	cancel()
	t.wg.Wait()
}

// TotalUnits implements kernels.ProgressSink.
func (t *Tracker) TotalUnits(n int) { t.total.Store(int64(n)) }

// UnitCompleted implements kernels.ProgressSink.
func (t *Tracker) UnitCompleted() { t.done.Add(1) }

// Finished implements kernels.ProgressSink. It stops periodic reporting and
// emits one final snapshot. Later calls do nothing.
func (t *Tracker) Finished() {
	if !t.finished.CompareAndSwap(false, true) {
		return
	}
	t.stop()
	t.report(t.Snapshot())
}

// ConcurrentSafe marks the tracker as safe for parallel blur passes.
func (*Tracker) ConcurrentSafe() {}

// Done returns the number of completed units.
func (t *Tracker) Done() int { return int(t.done.Load()) }

// Total returns the announced number of units.
func (t *Tracker) Total() int { return int(t.total.Load()) }

// IsFinished reports whether Finished has been called.
func (t *Tracker) IsFinished() bool { return t.finished.Load() }

// Percent returns completion in [0, 100]. It is 100 once finished with no work.
func (t *Tracker) Percent() float64 {
	total := t.Total()
	if total <= 0 {
		if t.IsFinished() {
			return 100
		}
		return 0
	}
	p := float64(t.Done()) / float64(total) * 100
	if p > 100 {
		p = 100
	}
	return p
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	start := t.startTime
	t.mu.Unlock()

	return Snapshot{
		Name:     t.name,
		Done:     t.Done(),
		Total:    t.Total(),
		Percent:  t.Percent(),
		Elapsed:  time.Since(start),
		Finished: t.IsFinished(),
	}
}

var _ kernels.ProgressSink = (*Tracker)(nil)
