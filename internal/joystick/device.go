// Package joystick provides the raw input-device backends: SDL3 for
// desktop use and the legacy /dev/input/jsX interface on Linux hosts
// without SDL.
package joystick

import (
	"fmt"
	"math"
)

// Device is the raw input device consumed by the control loop. Axis
// values are normalized to [-1,1], hat components to {-1,0,1}. All
// methods must be called from the goroutine that opened the device.
type Device interface {
	Name() string
	NumAxes() int
	NumButtons() int
	NumHats() int
	Axis(i int) float64
	Button(i int) bool
	Hat(i int) (x, y int)

	// Poll refreshes the device state. Call once per control cycle.
	Poll()
	Close()
}

// Open opens joystick number id using the requested backend.
// Backend "auto" prefers SDL and falls back to the Linux joystick
// interface when SDL is unavailable.
func Open(backend string, id int) (Device, error) {
	switch backend {
	case "sdl":
		return openSDL(id)
	case "js":
		return openJS(id)
	case "auto":
		d, sdlErr := openSDL(id)
		if sdlErr == nil {
			return d, nil
		}
		d, jsErr := openJS(id)
		if jsErr == nil {
			return d, nil
		}
		return nil, fmt.Errorf("no usable backend: sdl: %v; js: %v", sdlErr, jsErr)
	default:
		return nil, fmt.Errorf("unknown joystick backend %q", backend)
	}
}

// normalizeAxis converts a raw 16-bit axis value to [-1,1].
func normalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1 {
		v = -1
	}
	return v
}
