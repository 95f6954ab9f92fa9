package kernels

import (
	"sync"
	"sync/atomic"
)

// ProgressSink receives units of completed work from a blur call.
//
// TotalUnits is called once before any work, UnitCompleted once per blurred row
// across both passes, and Finished exactly once when the call returns, whether it
// completed, was canceled or failed after validation.
type ProgressSink interface {
	TotalUnits(n int)
	UnitCompleted()
	Finished()
}

// NopProgress discards all progress reports.
type NopProgress struct{}

func (NopProgress) TotalUnits(int) {}
func (NopProgress) UnitCompleted() {}
func (NopProgress) Finished()      {}

// CountingProgress records progress with atomic counters and is safe for
// concurrent use.
type CountingProgress struct {
	total     atomic.Int64
	completed atomic.Int64
	finished  atomic.Int32
}

func (c *CountingProgress) TotalUnits(n int) { c.total.Store(int64(n)) }
func (c *CountingProgress) UnitCompleted()   { c.completed.Add(1) }
func (c *CountingProgress) Finished()        { c.finished.Add(1) }

// Total returns the last announced unit count.
func (c *CountingProgress) Total() int { return int(c.total.Load()) }

// Completed returns the number of completed units.
func (c *CountingProgress) Completed() int { return int(c.completed.Load()) }

// FinishedCalls returns how many times Finished was called.
func (c *CountingProgress) FinishedCalls() int { return int(c.finished.Load()) }

// lockedProgress serializes calls into a sink that may not be safe for
// concurrent use. Parallel passes report through it.
type lockedProgress struct {
	mu   sync.Mutex
	sink ProgressSink
}

func (l *lockedProgress) TotalUnits(n int) {
	l.mu.Lock()
	l.sink.TotalUnits(n)
	l.mu.Unlock()
}

func (l *lockedProgress) UnitCompleted() {
	l.mu.Lock()
	l.sink.UnitCompleted()
	l.mu.Unlock()
}

func (l *lockedProgress) Finished() {
	l.mu.Lock()
	l.sink.Finished()
	l.mu.Unlock()
}

// ConcurrentSafe is implemented by sinks that may be called from several
// goroutines at once without external locking.
type ConcurrentSafe interface {
	ConcurrentSafe()
}

func (NopProgress) ConcurrentSafe()       {}
func (*CountingProgress) ConcurrentSafe() {}

func syncProgress(p ProgressSink) ProgressSink {
	if _, ok := p.(ConcurrentSafe); ok {
		return p
	}
	return &lockedProgress{sink: p}
}

// SubProgress wraps a sink so that only UnitCompleted reaches it. Callers that
// run several blurs under one budget announce the total and call Finished on
// the outer sink themselves.
func SubProgress(p ProgressSink) ProgressSink {
	if p == nil {
		return NopProgress{}
	}
	return subProgress{sink: p}
}

type subProgress struct {
	sink ProgressSink
}

func (subProgress) TotalUnits(int)   {}
func (s subProgress) UnitCompleted() { s.sink.UnitCompleted() }
func (subProgress) Finished()        {}
