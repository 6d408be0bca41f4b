// Package dispatch decouples the control loop from the network sink with a
// bounded latest-wins queue and a background send worker.
package dispatch

import (
	"time"

	"github.com/mkorolev/joy2crsf/internal/channels"
)

// DefaultCapacity bounds the queue. The latest-wins policy keeps it near
// empty; the capacity only absorbs the producer/consumer race.
const DefaultCapacity = 10

// Queue is a bounded buffer of dispatch snapshots with a latest-wins
// insert: pending snapshots are discarded before the fresh one goes in,
// so the consumer never works through a backlog of stale vectors.
type Queue struct {
	ch chan channels.Vector
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{ch: make(chan channels.Vector, capacity)}
}

// Put replaces the queue contents with v. It reports false when the
// insert lost the race against a concurrent consumer refilling the
// buffer; the caller's next cycle supersedes the dropped snapshot.
func (q *Queue) Put(v channels.Vector) bool {
	for {
		select {
		case <-q.ch:
		default:
			select {
			case q.ch <- v:
				return true
			default:
				return false
			}
		}
	}
}

// Pop waits up to timeout for a snapshot.
func (q *Queue) Pop(timeout time.Duration) (channels.Vector, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
	}
	if timeout <= 0 {
		return channels.Vector{}, false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case v := <-q.ch:
		return v, true
	case <-timer.C:
		return channels.Vector{}, false
	}
}

// Len returns the number of queued snapshots.
func (q *Queue) Len() int {
	return len(q.ch)
}
