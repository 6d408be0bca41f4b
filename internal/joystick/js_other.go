//go:build !linux

package joystick

import "errors"

func openJS(index int) (Device, error) {
	return nil, errors.New("the js backend needs /dev/input/jsX (linux only)")
}
