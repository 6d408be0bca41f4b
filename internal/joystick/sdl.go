package joystick

import (
	"fmt"
	"log"
	"sync"

	"github.com/jupiterrider/purego-sdl3/sdl"
)

// SDL hat bitmask values.
const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

var sdlInitOnce sync.Once
var sdlInitOK bool

// sdlDevice reads one joystick through the SDL3 Joystick API.
// The goroutine that calls openSDL must be locked to its OS thread for
// the lifetime of the device: SDL's event pump is thread-affine.
type sdlDevice struct {
	js        *sdl.Joystick
	id        sdl.JoystickID
	name      string
	axes      int
	buttons   int
	hats      int
	connected bool
}

func openSDL(index int) (Device, error) {
	sdlInitOnce.Do(func() {
		sdlInitOK = sdl.Init(sdl.InitJoystick)
	})
	if !sdlInitOK {
		return nil, fmt.Errorf("sdl init failed: %s", sdl.GetError())
	}

	ids := sdl.GetJoysticks()
	if len(ids) == 0 {
		return nil, fmt.Errorf("no joysticks found")
	}
	if index >= len(ids) {
		return nil, fmt.Errorf("joystick %d not found (%d available)", index, len(ids))
	}

	js := sdl.OpenJoystick(ids[index])
	if js == nil {
		return nil, fmt.Errorf("open joystick %d: %s", index, sdl.GetError())
	}

	d := &sdlDevice{
		js:        js,
		id:        sdl.GetJoystickID(js),
		name:      sdl.GetJoystickName(js),
		axes:      int(sdl.GetNumJoystickAxes(js)),
		buttons:   int(sdl.GetNumJoystickButtons(js)),
		hats:      int(sdl.GetNumJoystickHats(js)),
		connected: true,
	}

	log.Printf("joystick connected: %s (VID=%04X PID=%04X) axes=%d buttons=%d hats=%d",
		d.name, sdl.GetJoystickVendor(js), sdl.GetJoystickProduct(js),
		d.axes, d.buttons, d.hats)

	return d, nil
}

func (d *sdlDevice) Name() string    { return d.name }
func (d *sdlDevice) NumAxes() int    { return d.axes }
func (d *sdlDevice) NumButtons() int { return d.buttons }
func (d *sdlDevice) NumHats() int    { return d.hats }

func (d *sdlDevice) Axis(i int) float64 {
	if !d.connected || i >= d.axes {
		return 0
	}
	return normalizeAxis(sdl.GetJoystickAxis(d.js, int32(i)))
}

func (d *sdlDevice) Button(i int) bool {
	if !d.connected || i >= d.buttons {
		return false
	}
	return sdl.GetJoystickButton(d.js, int32(i))
}

func (d *sdlDevice) Hat(i int) (x, y int) {
	if !d.connected || i >= d.hats {
		return 0, 0
	}
	mask := sdl.GetJoystickHat(d.js, int32(i))
	if mask&hatLeft != 0 {
		x = -1
	} else if mask&hatRight != 0 {
		x = 1
	}
	if mask&hatDown != 0 {
		y = -1
	} else if mask&hatUp != 0 {
		y = 1
	}
	return x, y
}

// Poll pumps SDL events so joystick state stays fresh and disconnects
// are noticed.
func (d *sdlDevice) Poll() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickRemoved:
			if event.JDevice().Which == d.id && d.connected {
				d.connected = false
				log.Printf("joystick disconnected: %s", d.name)
			}
		case sdl.EventJoystickAdded:
			if event.JDevice().Which == d.id && !d.connected {
				d.connected = true
				log.Printf("joystick reconnected: %s", d.name)
			}
		}
	}
}

func (d *sdlDevice) Close() {
	if d.js != nil {
		sdl.CloseJoystick(d.js)
		d.js = nil
	}
	sdl.Quit()
}
