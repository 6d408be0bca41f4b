package channels

import "testing"

func TestNeutral(t *testing.T) {
	v := Neutral()
	for i, c := range v {
		if c != 1500 {
			t.Fatalf("channel %d = %d, want 1500", i+1, c)
		}
	}
}

func TestStateSetClampsAndMarksDirty(t *testing.T) {
	s := NewState()

	if s.ConsumeDirty() {
		t.Fatal("fresh state should not be dirty")
	}

	s.Set(1, 1700)
	if got := s.Get(1); got != 1700 {
		t.Fatalf("Get(1)=%d want 1700", got)
	}
	if !s.ConsumeDirty() {
		t.Fatal("Set with a new value should mark dirty")
	}
	if s.ConsumeDirty() {
		t.Fatal("ConsumeDirty should reset the flag")
	}

	// Same value again: no dirty edge.
	s.Set(1, 1700)
	if s.ConsumeDirty() {
		t.Fatal("Set with an unchanged value should not mark dirty")
	}

	s.Set(2, 2500)
	if got := s.Get(2); got != 2000 {
		t.Fatalf("Set should clamp high: got %d", got)
	}
	s.Set(3, 100)
	if got := s.Get(3); got != 1000 {
		t.Fatalf("Set should clamp low: got %d", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewState()
	s.Set(5, 1800)

	snap := s.Snapshot()
	s.Set(5, 1200)

	if snap[4] != 1800 {
		t.Fatalf("snapshot mutated after Set: %d", snap[4])
	}
	if s.Get(5) != 1200 {
		t.Fatalf("state not updated: %d", s.Get(5))
	}
}

func TestRawChanged(t *testing.T) {
	s := NewState()

	if !s.RawChanged("axis_0", 0.5) {
		t.Fatal("first observation must count as change")
	}
	if s.RawChanged("axis_0", 0.5) {
		t.Fatal("identical value must not count as change")
	}
	if s.RawChanged("axis_0", 0.50005) {
		t.Fatal("sub-epsilon wiggle must not count as change")
	}
	if !s.RawChanged("axis_0", 0.501) {
		t.Fatal("above-epsilon move must count as change")
	}
	if !s.RawChanged("axis_1", 0.5) {
		t.Fatal("separate keys are tracked independently")
	}
}
