// Package timer implements the drift-free repeated-callback scheduler
// the Event Loop (spec §4.4) drains on every pass. It is the Go
// equivalent of open62541's UA_Timer, reshaped around container/heap
// the way _examples/other_examples' smux session.go uses a heap for its
// own internal scheduling (no third-party timer-wheel library appears
// anywhere in the retrieval pack, so this stays on the standard
// library — see DESIGN.md).
package timer

import (
	"container/heap"
	"fmt"
	"time"

	"github.com/imatic-tech/opcua/internal/coreerr"
)

// MinInterval is the smallest interval a repeated callback may run at.
// Anything smaller fails with BadInvalidArgument at the Client boundary.
const MinInterval = 5 * time.Millisecond

// Func is a repeated callback body. It takes no arguments; the caller
// closes over whatever state it needs (mirrors spec §3's userdata field,
// which in Go is just a closure capture instead of an opaque pointer).
type Func func()

type callback struct {
	id         uint64
	fn         Func
	intervalMs int64
	nextFireAt time.Time
	seq        uint64
	index      int
	cancelled  bool
}

// Scheduler is a min-heap of repeated callbacks keyed by nextFireAt,
// ties broken by insertion order (spec §3, §5 ordering guarantees).
//
// Not safe for concurrent use: like every other piece of the core, it is
// driven exclusively from the thread running the event loop.
type Scheduler struct {
	items  []*callback
	byID   map[uint64]*callback
	nextID uint64
	nextSeq uint64
	firing *callback // the callback currently executing, if any
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{byID: make(map[uint64]*callback)}
}

// Add registers fn to run every interval, first firing no later than
// now+interval. It returns the new callback's id, which is never reused.
func (s *Scheduler) Add(now time.Time, interval time.Duration, fn Func) (uint64, error) {
	if interval < MinInterval {
		return 0, coreerr.Wrap(ErrInvalidArgument, fmt.Sprintf("interval %s below minimum %s", interval, MinInterval))
	}
	s.nextID++
	s.nextSeq++
	cb := &callback{
		id:         s.nextID,
		fn:         fn,
		intervalMs: interval.Milliseconds(),
		nextFireAt: now.Add(interval),
		seq:        s.nextSeq,
	}
	s.byID[cb.id] = cb
	heap.Push(s, cb)
	return cb.id, nil
}

// Change updates the interval of an existing callback. Per spec §4.4 the
// new interval only takes effect starting from the *next* scheduled
// fire; the fire already queued keeps firing on the old schedule.
func (s *Scheduler) Change(id uint64, interval time.Duration) error {
	if interval < MinInterval {
		return coreerr.Wrap(ErrInvalidArgument, fmt.Sprintf("interval %s below minimum %s", interval, MinInterval))
	}
	cb, ok := s.byID[id]
	if !ok {
		return coreerr.Wrap(ErrInvalidArgument, fmt.Sprintf("no such callback %d", id))
	}
	cb.intervalMs = interval.Milliseconds()
	return nil
}

// Remove cancels a callback. If called while that callback is the one
// currently firing (re-entrant removal from inside itself), the
// cancellation is honored for all future fires but does not interrupt
// the in-progress invocation.
func (s *Scheduler) Remove(id uint64) {
	cb, ok := s.byID[id]
	if !ok {
		return
	}
	// Marking it cancelled also covers a callback already taken into
	// the current RunDue pass but not yet fired.
	cb.cancelled = true
	if s.firing == cb {
		return
	}
	delete(s.byID, id)
	if cb.index >= 0 && cb.index < len(s.items) && s.items[cb.index] == cb {
		heap.Remove(s, cb.index)
	}
}

// RunDue fires every callback whose nextFireAt is at or before now, then
// reschedules it at previousFireScheduledAt+interval (drift-free: the
// next fire is computed from the schedule, never from the actual fire
// time). Callbacks added by a firing callback are not considered due in
// this pass, even if their computed nextFireAt is <= now, because the
// due set is captured before any callback runs.
func (s *Scheduler) RunDue(now time.Time) {
	var due []*callback
	for len(s.items) > 0 && !s.items[0].nextFireAt.After(now) {
		due = append(due, heap.Pop(s).(*callback))
	}
	for _, cb := range due {
		if cb.cancelled {
			delete(s.byID, cb.id)
			continue
		}
		s.firing = cb
		cb.fn()
		s.firing = nil

		if cb.cancelled {
			delete(s.byID, cb.id)
			continue
		}
		cb.nextFireAt = cb.nextFireAt.Add(time.Duration(cb.intervalMs) * time.Millisecond)
		heap.Push(s, cb)
	}
}

// NextDue reports when the next callback is due, or ok=false if the
// scheduler is empty.
func (s *Scheduler) NextDue() (t time.Time, ok bool) {
	if len(s.items) == 0 {
		return time.Time{}, false
	}
	return s.items[0].nextFireAt, true
}

// Len reports the number of live callbacks.
func (s *Scheduler) Len() int { return len(s.items) }

// heap.Interface implementation. Exported because container/heap
// requires it, but callers outside this package have no business using
// it directly.

func (s *Scheduler) Less(i, j int) bool {
	a, b := s.items[i], s.items[j]
	if a.nextFireAt.Equal(b.nextFireAt) {
		return a.seq < b.seq
	}
	return a.nextFireAt.Before(b.nextFireAt)
}

func (s *Scheduler) Swap(i, j int) {
	s.items[i], s.items[j] = s.items[j], s.items[i]
	s.items[i].index = i
	s.items[j].index = j
}

func (s *Scheduler) Push(x interface{}) {
	cb := x.(*callback)
	cb.index = len(s.items)
	s.items = append(s.items, cb)
}

func (s *Scheduler) Pop() interface{} {
	n := len(s.items)
	cb := s.items[n-1]
	s.items[n-1] = nil
	cb.index = -1
	s.items = s.items[:n-1]
	return cb
}

// ErrInvalidArgument is wrapped into every validation failure this
// package returns, so callers can match it with errors.Is.
var ErrInvalidArgument = coreerr.Errorf("invalid argument")
