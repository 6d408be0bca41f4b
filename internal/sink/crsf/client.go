// Package crsf is the HTTP client for the CRSF API server. It implements
// the channel-command sink: upload a full 16-channel vector, then trigger
// transmission.
package crsf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkorolev/joy2crsf/internal/channels"
)

const defaultTimeout = 500 * time.Millisecond

// Client talks to one CRSF API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8081".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// SetMode switches the server's work mode. The bridge requires "manual"
// so channel values come from the API instead of the radio link.
func (c *Client) SetMode(ctx context.Context, mode string) error {
	return c.post(ctx, "/api/command/setMode", map[string]string{"mode": mode})
}

// SetChannels uploads the full channel vector. Always all 16 values:
// the server replaces its channel state wholesale.
func (c *Client) SetChannels(ctx context.Context, v channels.Vector) error {
	return c.post(ctx, "/api/command/setChannels", map[string][16]int{"channels": v})
}

// SendChannels triggers transmission of the previously uploaded vector.
func (c *Client) SendChannels(ctx context.Context) error {
	return c.post(ctx, "/api/command/sendChannels", nil)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("crsf api: encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("crsf api: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crsf api: %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("crsf api: %s: HTTP %d", path, resp.StatusCode)
	}
	return nil
}
