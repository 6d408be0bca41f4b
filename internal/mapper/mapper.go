// Package mapper converts raw joystick readings into CRSF channel values.
// All functions are pure; inputs are validated by the config layer.
package mapper

import "math"

// CRSF channel value range. 1500 is neutral/center.
const (
	ChannelMin     = 1000
	ChannelMax     = 2000
	ChannelNeutral = 1500
)

// HatAxis selects which component of a hat pair drives the channel.
type HatAxis uint8

const (
	HatX HatAxis = iota
	HatY
)

// Clamp forces v into the valid channel range.
func Clamp(v int) int {
	if v < ChannelMin {
		return ChannelMin
	}
	if v > ChannelMax {
		return ChannelMax
	}
	return v
}

// AxisToChannel converts an axis value in [-1,1] to a channel value.
// Values inside the deadzone map to neutral.
func AxisToChannel(value, deadzone float64, invert bool) int {
	if invert {
		value = -value
	}
	if math.Abs(value) < deadzone {
		value = 0
	}
	return Clamp(ChannelNeutral + int(value*500))
}

// ButtonToChannel maps a button state onto the two ends of [min,max].
func ButtonToChannel(pressed bool, min, max int, invert bool) int {
	if invert {
		pressed = !pressed
	}
	if pressed {
		return max
	}
	return min
}

// HatToChannel maps one component of a hat pair (each in {-1,0,1})
// onto the three detents 1000/1500/2000.
func HatToChannel(x, y int, axis HatAxis) int {
	v := x
	if axis == HatY {
		v = y
	}
	switch {
	case v < 0:
		return ChannelMin
	case v > 0:
		return ChannelMax
	default:
		return ChannelNeutral
	}
}

// ScaleToRange re-projects a standard channel value onto [min,max] linearly.
func ScaleToRange(v, min, max int) int {
	return min + (max-min)*(v-ChannelMin)/1000
}
