package hub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/mkorolev/joy2crsf/internal/sampler"
)

// fullSyncInterval re-sends the current state even without input changes
// so clients can tell a quiet link from a dead one.
const fullSyncInterval = time.Second

// HealthSource reports delivery state from the dispatch path: whether
// the last sink call succeeded and how many frames went out.
type HealthSource interface {
	Healthy() bool
	Sent() int64
}

// Broadcaster forwards sampler updates to the hub.
type Broadcaster struct {
	hub     *Hub
	updates <-chan sampler.Update
	health  HealthSource
	seq     int64
	last    sampler.Update
	hasLast bool
}

func NewBroadcaster(h *Hub, updates <-chan sampler.Update, health HealthSource) *Broadcaster {
	return &Broadcaster{
		hub:     h,
		updates: updates,
		health:  health,
	}
}

// Run forwards updates until ctx is cancelled. Should be run in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case u, ok := <-b.updates:
			if !ok {
				return
			}
			b.last = u
			b.hasLast = true
			b.send(u)

		case <-ticker.C:
			if b.hasLast {
				b.send(b.last)
			}
		}
	}
}

func (b *Broadcaster) send(u sampler.Update) {
	b.seq++
	msg := NewStatusMessage(b.seq, u.Device, u.Channels, u.RateHz, b.health.Healthy())
	msg.Sent = b.health.Sent()
	msg.Clients = b.hub.ClientCount()
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("status message marshal failed: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
