package crsf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkorolev/joy2crsf/internal/channels"
)

func TestSetChannels(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Channels [16]int `json:"channels"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("method=%s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type=%s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)

	v := channels.Neutral()
	v[0] = 1200
	v[15] = 1800
	if err := c.SetChannels(context.Background(), v); err != nil {
		t.Fatalf("SetChannels err=%v", err)
	}

	if gotPath != "/api/command/setChannels" {
		t.Errorf("path=%s", gotPath)
	}
	if gotBody.Channels != [16]int(v) {
		t.Errorf("body channels=%v", gotBody.Channels)
	}
}

func TestSendChannelsAndSetMode(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
	}))
	defer srv.Close()

	c := New(srv.URL + "/") // trailing slash is tolerated

	if err := c.SetMode(context.Background(), "manual"); err != nil {
		t.Fatalf("SetMode err=%v", err)
	}
	if err := c.SendChannels(context.Background()); err != nil {
		t.Fatalf("SendChannels err=%v", err)
	}

	want := []string{"/api/command/setMode", "/api/command/sendChannels"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("paths=%v want %v", paths, want)
	}
}

func TestNon200IsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.SendChannels(context.Background()); err == nil {
		t.Fatal("expected error on HTTP 500")
	}
}

func TestConnectionFailureIsAnError(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here
	if err := c.SendChannels(context.Background()); err == nil {
		t.Fatal("expected error on refused connection")
	}
}
