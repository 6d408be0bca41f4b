package dispatch

import (
	"testing"
	"time"

	"github.com/mkorolev/joy2crsf/internal/channels"
)

func vec(ch1 int) channels.Vector {
	v := channels.Neutral()
	v[0] = ch1
	return v
}

func TestQueueLatestWins(t *testing.T) {
	q := NewQueue(10)

	q.Put(vec(1000))
	q.Put(vec(1200))
	q.Put(vec(1800))

	if q.Len() != 1 {
		t.Fatalf("queue should hold exactly one snapshot, got %d", q.Len())
	}

	got, ok := q.Pop(0)
	if !ok {
		t.Fatal("Pop returned nothing")
	}
	if got[0] != 1800 {
		t.Fatalf("consumer saw %d, want the newest snapshot 1800", got[0])
	}

	if _, ok := q.Pop(0); ok {
		t.Fatal("queue should be empty after the single snapshot")
	}
}

func TestQueuePopTimeout(t *testing.T) {
	q := NewQueue(10)

	start := time.Now()
	_, ok := q.Pop(20 * time.Millisecond)
	if ok {
		t.Fatal("Pop on empty queue should time out")
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Fatalf("Pop returned too early: %v", elapsed)
	}
}

func TestQueuePopBeforeTimeout(t *testing.T) {
	q := NewQueue(10)

	go func() {
		time.Sleep(5 * time.Millisecond)
		q.Put(vec(1300))
	}()

	got, ok := q.Pop(200 * time.Millisecond)
	if !ok {
		t.Fatal("Pop should see the snapshot put while waiting")
	}
	if got[0] != 1300 {
		t.Fatalf("got %d want 1300", got[0])
	}
}

func TestQueueConcurrentOrdering(t *testing.T) {
	q := NewQueue(10)
	done := make(chan struct{})

	var seen []int
	go func() {
		defer close(done)
		for {
			v, ok := q.Pop(50 * time.Millisecond)
			if !ok {
				return
			}
			seen = append(seen, v[0])
		}
	}()

	for i := 0; i < 100; i++ {
		q.Put(vec(1000 + i*10))
	}

	<-done

	if len(seen) == 0 {
		t.Fatal("consumer saw nothing")
	}
	// The consumer may miss intermediate snapshots but must observe a
	// strictly increasing suffix ending in the newest one.
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("stale snapshot after fresher one: %v", seen)
		}
	}
	if seen[len(seen)-1] != 1990 {
		t.Fatalf("last observed snapshot %d, want 1990", seen[len(seen)-1])
	}
}
