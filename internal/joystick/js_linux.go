//go:build linux

package joystick

import (
	"encoding/binary"
	"fmt"
	"log"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Legacy joystick interface ioctls (linux/joystick.h).
const (
	jsiocgAxes    = 0x80016a11
	jsiocgButtons = 0x80016a12
	jsiocgName    = 0x80006a13 + (128 << 16) // JSIOCGNAME(128)
)

// js event types. The init bit is set on the synthetic events the kernel
// emits right after open to describe the current state.
const (
	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80
)

type jsEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

// jsDevice reads /dev/input/jsN. The legacy interface reports hats as
// two extra axes, so NumHats is always zero here; hat sources need the
// SDL backend.
type jsDevice struct {
	fd      int
	name    string
	axes    []float64
	buttons []bool
}

func openJS(index int) (Device, error) {
	path := fmt.Sprintf("/dev/input/js%d", index)

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var nAxes, nButtons uint8
	if err := jsIoctl(fd, jsiocgAxes, unsafe.Pointer(&nAxes)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%s: axis count: %w", path, err)
	}
	if err := jsIoctl(fd, jsiocgButtons, unsafe.Pointer(&nButtons)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%s: button count: %w", path, err)
	}

	nameBuf := make([]byte, 128)
	name := path
	if err := jsIoctl(fd, jsiocgName, unsafe.Pointer(&nameBuf[0])); err == nil {
		for i, b := range nameBuf {
			if b == 0 {
				name = string(nameBuf[:i])
				break
			}
		}
	}

	d := &jsDevice{
		fd:      fd,
		name:    name,
		axes:    make([]float64, nAxes),
		buttons: make([]bool, nButtons),
	}

	log.Printf("joystick connected: %s (%s) axes=%d buttons=%d hats=0 (hats surface as axes on jsX)",
		name, path, nAxes, nButtons)

	// Consume the initial-state events so the first cycle sees real values.
	d.Poll()
	return d, nil
}

func (d *jsDevice) Name() string    { return d.name }
func (d *jsDevice) NumAxes() int    { return len(d.axes) }
func (d *jsDevice) NumButtons() int { return len(d.buttons) }
func (d *jsDevice) NumHats() int    { return 0 }

func (d *jsDevice) Axis(i int) float64 {
	if i >= len(d.axes) {
		return 0
	}
	return d.axes[i]
}

func (d *jsDevice) Button(i int) bool {
	if i >= len(d.buttons) {
		return false
	}
	return d.buttons[i]
}

func (d *jsDevice) Hat(i int) (x, y int) { return 0, 0 }

// Poll drains all pending events from the non-blocking fd.
func (d *jsDevice) Poll() {
	var buf [8]byte
	for {
		n, err := unix.Read(d.fd, buf[:])
		if err != nil || n < len(buf) {
			return
		}

		e := jsEvent{
			Time:   binary.LittleEndian.Uint32(buf[0:4]),
			Value:  int16(binary.LittleEndian.Uint16(buf[4:6])),
			Type:   buf[6],
			Number: buf[7],
		}

		switch e.Type &^ jsEventInit {
		case jsEventAxis:
			if int(e.Number) < len(d.axes) {
				d.axes[e.Number] = normalizeAxis(e.Value)
			}
		case jsEventButton:
			if int(e.Number) < len(d.buttons) {
				d.buttons[e.Number] = e.Value != 0
			}
		}
	}
}

func (d *jsDevice) Close() {
	if d.fd >= 0 {
		unix.Close(d.fd)
		d.fd = -1
	}
}

func jsIoctl(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
