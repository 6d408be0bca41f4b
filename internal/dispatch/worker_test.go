package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mkorolev/joy2crsf/internal/channels"
)

// ---- fake sink ----

type fakeSink struct {
	mu       sync.Mutex
	set      []channels.Vector
	sent     int
	failNext bool
}

func (f *fakeSink) SetChannels(ctx context.Context, v channels.Vector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("sink down")
	}
	f.set = append(f.set, v)
	return nil
}

func (f *fakeSink) SendChannels(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return nil
}

func (f *fakeSink) last() (channels.Vector, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.set) == 0 {
		return channels.Vector{}, false
	}
	return f.set[len(f.set)-1], true
}

// ---- tests ----

func TestWorkerDeliversSnapshot(t *testing.T) {
	sink := &fakeSink{}
	q := NewQueue(10)
	w := NewWorker(q, sink)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	w.Dispatch(vec(1750))

	deadline := time.Now().Add(time.Second)
	for {
		if v, ok := sink.last(); ok {
			if v[0] != 1750 {
				t.Fatalf("delivered %d want 1750", v[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("worker never delivered the snapshot")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	if !w.Wait(time.Second) {
		t.Fatal("worker did not stop")
	}
	if got := w.Sent(); got != 1 {
		t.Fatalf("Sent()=%d want 1", got)
	}
}

func TestWorkerContinuesAfterSinkFailure(t *testing.T) {
	sink := &fakeSink{failNext: true}
	q := NewQueue(10)
	w := NewWorker(q, sink)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	w.Dispatch(vec(1100)) // fails, no retry
	time.Sleep(50 * time.Millisecond)
	w.Dispatch(vec(1900)) // superseding snapshot succeeds

	deadline := time.Now().Add(time.Second)
	for {
		if v, ok := sink.last(); ok && v[0] == 1900 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("worker never recovered after sink failure")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	w.Wait(time.Second)
}

func TestWorkerFlushesNeutralOnShutdown(t *testing.T) {
	sink := &fakeSink{}
	q := NewQueue(10)
	w := NewWorker(q, sink)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	w.Dispatch(vec(1234))
	time.Sleep(50 * time.Millisecond)

	// Shutdown order mirrors the control loop: the final neutral frame is
	// enqueued, then the worker is cancelled and drains it.
	w.Dispatch(channels.Neutral())
	cancel()

	if !w.Wait(time.Second) {
		t.Fatal("worker did not stop")
	}

	v, ok := sink.last()
	if !ok {
		t.Fatal("nothing delivered")
	}
	if v != channels.Neutral() {
		t.Fatalf("last delivered frame is not neutral: %v", v)
	}
}

func TestInlineDispatch(t *testing.T) {
	sink := &fakeSink{}
	d := NewInline(sink)

	d.Dispatch(vec(1660))

	v, ok := sink.last()
	if !ok || v[0] != 1660 {
		t.Fatalf("inline dispatch did not reach the sink: %v ok=%v", v, ok)
	}
	if sink.sent != 1 {
		t.Fatalf("SendChannels called %d times, want 1", sink.sent)
	}
	if got := d.Sent(); got != 1 {
		t.Fatalf("Sent()=%d want 1", got)
	}
}

func TestInlineSkipsSendAfterSetFailure(t *testing.T) {
	sink := &fakeSink{failNext: true}
	d := NewInline(sink)

	d.Dispatch(vec(1660))

	if sink.sent != 0 {
		t.Fatal("SendChannels should not run when SetChannels fails")
	}
}
