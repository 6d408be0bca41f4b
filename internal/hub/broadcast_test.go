package hub

import (
	"encoding/json"
	"testing"

	"github.com/mkorolev/joy2crsf/internal/channels"
	"github.com/mkorolev/joy2crsf/internal/sampler"
)

type fakeHealth struct {
	healthy bool
	sent    int64
}

func (f fakeHealth) Healthy() bool { return f.healthy }
func (f fakeHealth) Sent() int64   { return f.sent }

func TestBroadcasterIncludesDeliveryStats(t *testing.T) {
	h := New()
	updates := make(chan sampler.Update, 1)
	b := NewBroadcaster(h, updates, fakeHealth{healthy: true, sent: 42})

	v := channels.Neutral()
	v[0] = 1700
	b.send(sampler.Update{Device: "pad", Channels: v, RateHz: 50})

	// No clients connected: the payload is still kept for replay.
	if h.last == nil {
		t.Fatal("broadcast payload not retained")
	}

	var msg StatusMessage
	if err := json.Unmarshal(h.last, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Seq != 1 || msg.Device != "pad" || !msg.LinkOK {
		t.Errorf("header fields wrong: %+v", msg)
	}
	if msg.Sent != 42 {
		t.Errorf("sent=%d want 42", msg.Sent)
	}
	if msg.Clients != 0 {
		t.Errorf("clients=%d want 0", msg.Clients)
	}
	if msg.Channels[0] != 1700 {
		t.Errorf("channels[0]=%d want 1700", msg.Channels[0])
	}
}
