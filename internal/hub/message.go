package hub

import (
	"time"

	"github.com/mkorolev/joy2crsf/internal/channels"
)

// StatusMessage is the JSON payload sent to status clients.
type StatusMessage struct {
	Type      string  `json:"type"` // always "channels"
	Seq       int64   `json:"seq"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
	Device    string  `json:"device"`
	Channels  [16]int `json:"channels"`
	RateHz    float64 `json:"rateHz"`
	LinkOK    bool    `json:"linkOk"`
	Sent      int64   `json:"sent"`    // frames delivered to the sink
	Clients   int     `json:"clients"` // connected status clients
}

// NewStatusMessage builds a channels status message.
func NewStatusMessage(seq int64, device string, v channels.Vector, rateHz float64, linkOK bool) *StatusMessage {
	return &StatusMessage{
		Type:      "channels",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Device:    device,
		Channels:  v,
		RateHz:    rateHz,
		LinkOK:    linkOK,
	}
}
