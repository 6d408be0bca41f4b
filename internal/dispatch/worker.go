package dispatch

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/mkorolev/joy2crsf/internal/channels"
)

// Sink is the remote channel-command endpoint. Both calls may fail or
// time out; failures are transient and never fatal.
type Sink interface {
	SetChannels(ctx context.Context, v channels.Vector) error
	SendChannels(ctx context.Context) error
}

// Dispatcher is what the control loop hands snapshots to.
type Dispatcher interface {
	Dispatch(v channels.Vector)
}

const (
	popTimeout   = 20 * time.Millisecond
	sendTimeout  = 250 * time.Millisecond
	drainTimeout = 500 * time.Millisecond
)

// Worker consumes snapshots from the queue and forwards them to the sink.
// It owns every network call; the control loop never blocks on I/O.
type Worker struct {
	queue   *Queue
	sink    Sink
	done    chan struct{}
	healthy atomic.Bool
	sent    atomic.Int64
}

func NewWorker(q *Queue, sink Sink) *Worker {
	return &Worker{
		queue: q,
		sink:  sink,
		done:  make(chan struct{}),
	}
}

// Dispatch enqueues v with latest-wins semantics. A drop is only possible
// during the insert race with the worker and is superseded next cycle.
func (w *Worker) Dispatch(v channels.Vector) {
	if !w.queue.Put(v) {
		log.Println("send queue full, dropping frame")
	}
}

// Run consumes the queue until ctx is cancelled, then drains whatever is
// still queued (bounded) so the final fail-safe snapshot reaches the sink.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		default:
		}

		v, ok := w.queue.Pop(popTimeout)
		if !ok {
			continue
		}
		if err := w.send(v); err != nil {
			// No retry: a superseding snapshot follows under the
			// control loop's own cadence.
			log.Printf("send failed: %v", err)
		}
	}
}

// Wait blocks until Run has returned or the timeout elapses.
func (w *Worker) Wait(timeout time.Duration) bool {
	select {
	case <-w.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Healthy reports whether the most recent sink call succeeded.
func (w *Worker) Healthy() bool {
	return w.healthy.Load()
}

// Sent returns the number of snapshots delivered so far.
func (w *Worker) Sent() int64 {
	return w.sent.Load()
}

func (w *Worker) drain() {
	deadline := time.Now().Add(drainTimeout)
	for time.Now().Before(deadline) {
		v, ok := w.queue.Pop(0)
		if !ok {
			return
		}
		if err := w.send(v); err != nil {
			log.Printf("send failed during shutdown flush: %v", err)
		}
	}
}

func (w *Worker) send(v channels.Vector) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := w.sink.SetChannels(ctx, v); err != nil {
		w.healthy.Store(false)
		return err
	}
	if err := w.sink.SendChannels(ctx); err != nil {
		w.healthy.Store(false)
		return err
	}
	w.healthy.Store(true)
	w.sent.Add(1)
	return nil
}

// Inline performs sink calls synchronously from the caller's goroutine.
// Used when concurrency is disabled; mapping and clamping behavior is
// identical to the queued path, only the latency decoupling is traded away.
type Inline struct {
	sink    Sink
	healthy atomic.Bool
	sent    atomic.Int64
}

func NewInline(sink Sink) *Inline {
	return &Inline{sink: sink}
}

func (d *Inline) Dispatch(v channels.Vector) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.sink.SetChannels(ctx, v); err != nil {
		d.healthy.Store(false)
		log.Printf("send failed: %v", err)
		return
	}
	if err := d.sink.SendChannels(ctx); err != nil {
		d.healthy.Store(false)
		log.Printf("send failed: %v", err)
		return
	}
	d.healthy.Store(true)
	d.sent.Add(1)
}

// Healthy reports whether the most recent sink call succeeded.
func (d *Inline) Healthy() bool {
	return d.healthy.Load()
}

// Sent returns the number of snapshots delivered so far.
func (d *Inline) Sent() int64 {
	return d.sent.Load()
}
