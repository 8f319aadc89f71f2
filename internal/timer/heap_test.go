package timer

import (
	"testing"
	"time"
)

func TestMinInterval(t *testing.T) {
	s := New()
	now := time.Unix(0, 0)

	if _, err := s.Add(now, 4*time.Millisecond, func() {}); err == nil {
		t.Fatal("expected error for interval below minimum")
	}
	if _, err := s.Add(now, 5*time.Millisecond, func() {}); err != nil {
		t.Fatalf("unexpected error for interval at minimum: %v", err)
	}
}

func TestIDsNeverReused(t *testing.T) {
	s := New()
	now := time.Unix(0, 0)

	seen := map[uint64]bool{}
	for i := 0; i < 10; i++ {
		id, err := s.Add(now, 10*time.Millisecond, func() {})
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Fatalf("id %d reused", id)
		}
		seen[id] = true
		s.Remove(id)
	}
}

func TestDriftFreeScheduling(t *testing.T) {
	s := New()
	start := time.Unix(0, 0)

	var fires []time.Time
	_, err := s.Add(start, 100*time.Millisecond, func() {
		// nextFireAt is not known inside the callback (no self-reference
		// exposed); record wall time passed in by the driver loop below.
	})
	if err != nil {
		t.Fatal(err)
	}

	// Drive the scheduler forward in irregular steps and record the
	// *scheduled* fire times by checking NextDue before each RunDue.
	now := start
	for i := 0; i < 10; i++ {
		due, ok := s.NextDue()
		if !ok {
			t.Fatal("expected a pending callback")
		}
		fires = append(fires, due)
		now = due.Add(time.Duration(i%3) * 7 * time.Millisecond) // the loop wakes up late by a varying amount
		s.RunDue(now)
	}

	for i, f := range fires {
		want := start.Add(time.Duration(i+1) * 100 * time.Millisecond)
		if !f.Equal(want) {
			t.Fatalf("fire %d: got %v want %v", i, f, want)
		}
	}
}

func TestTiesBrokenByInsertionOrder(t *testing.T) {
	s := New()
	now := time.Unix(0, 0)

	var order []int
	idA, _ := s.Add(now, 10*time.Millisecond, func() { order = append(order, 1) })
	idB, _ := s.Add(now, 10*time.Millisecond, func() { order = append(order, 2) })
	_ = idA
	_ = idB

	s.RunDue(now.Add(10 * time.Millisecond))
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected insertion order [1 2], got %v", order)
	}
}

func TestRemoveFromWithinCallbackAppliesToFutureFires(t *testing.T) {
	s := New()
	now := time.Unix(0, 0)

	fireCount := 0
	var id uint64
	id, _ = s.Add(now, 10*time.Millisecond, func() {
		fireCount++
		s.Remove(id)
	})

	s.RunDue(now.Add(10 * time.Millisecond))
	if fireCount != 1 {
		t.Fatalf("expected exactly one fire before removal, got %d", fireCount)
	}

	// the callback removed itself; it must not be rescheduled.
	if _, ok := s.NextDue(); ok {
		t.Fatal("expected no pending callbacks after self-removal")
	}
}

func TestCallbackAddedDuringTickDoesNotFireThatTick(t *testing.T) {
	s := New()
	now := time.Unix(0, 0)

	var added bool
	var fireCountB int
	s.Add(now, 10*time.Millisecond, func() {
		if !added {
			added = true
			// eligible in this same tick (due at 5ms, before the 10ms
			// tick), but must not fire until the next RunDue pass.
			s.Add(now, 5*time.Millisecond, func() {
				fireCountB++
			})
		}
	})

	s.RunDue(now.Add(10 * time.Millisecond))
	if fireCountB != 0 {
		t.Fatalf("callback added mid-tick fired in the same tick")
	}

	s.RunDue(now.Add(20 * time.Millisecond))
	if fireCountB != 1 {
		t.Fatalf("expected the newly added callback to fire on the next tick, got %d fires", fireCountB)
	}
}
