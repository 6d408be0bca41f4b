package hub

import (
	"encoding/json"
	"testing"

	"github.com/mkorolev/joy2crsf/internal/channels"
)

func TestStatusMessageJSON(t *testing.T) {
	v := channels.Neutral()
	v[0] = 1200

	msg := NewStatusMessage(7, "Gamepad", v, 49.8, true)
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got struct {
		Type     string  `json:"type"`
		Seq      int64   `json:"seq"`
		Device   string  `json:"device"`
		Channels [16]int `json:"channels"`
		RateHz   float64 `json:"rateHz"`
		LinkOK   bool    `json:"linkOk"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Type != "channels" || got.Seq != 7 || got.Device != "Gamepad" {
		t.Errorf("header fields wrong: %+v", got)
	}
	if got.Channels[0] != 1200 || got.Channels[15] != 1500 {
		t.Errorf("channels wrong: %v", got.Channels)
	}
	if !got.LinkOK || got.RateHz != 49.8 {
		t.Errorf("status fields wrong: %+v", got)
	}
}
