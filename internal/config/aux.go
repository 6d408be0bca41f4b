package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mkorolev/joy2crsf/internal/mapper"
)

// SourceKind identifies which joystick control drives an AUX channel.
type SourceKind string

const (
	KindAxis   SourceKind = "axis"
	KindButton SourceKind = "button"
	KindHat    SourceKind = "hat"
)

// OutputMode selects how a source value is turned into a channel value.
type OutputMode string

const (
	ModeRange  OutputMode = "range"  // linear mapping onto [Min,Max]
	ModeSwitch OutputMode = "switch" // two-position Min/Max
	ModeHat    OutputMode = "hat"    // three detents 1000/1500/2000
)

// AuxMapping binds one joystick source to one CRSF channel.
// Channel collisions with the primary axis channels are the caller's
// responsibility; no automatic check is performed.
type AuxMapping struct {
	Kind    SourceKind
	Source  int
	Channel int
	Invert  bool
	Min     int
	Max     int
	Mode    OutputMode
	HatAxis mapper.HatAxis
}

// FormatError describes a malformed AUX configuration string.
// It is startup-fatal and always names the offending input.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("aux config %q: %s", e.Input, e.Reason)
}

// ParseAux parses one colon-delimited AUX configuration string:
//
//	axis:<src>:<ch>[:invert]
//	button:<src>:<ch>[:invert | :<min>:<max>]
//	hat:<src>:<ch>[:x|y]
func ParseAux(s string) (AuxMapping, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return AuxMapping{}, &FormatError{s, "need at least kind:source:channel"}
	}

	src, err := strconv.Atoi(parts[1])
	if err != nil || src < 0 {
		return AuxMapping{}, &FormatError{s, "source index must be a non-negative integer"}
	}
	ch, err := strconv.Atoi(parts[2])
	if err != nil {
		return AuxMapping{}, &FormatError{s, "target channel must be an integer"}
	}
	if ch < 1 || ch > 16 {
		return AuxMapping{}, &FormatError{s, "target channel must be in 1..16"}
	}

	m := AuxMapping{
		Source:  src,
		Channel: ch,
		Min:     mapper.ChannelMin,
		Max:     mapper.ChannelMax,
	}

	switch SourceKind(strings.ToLower(parts[0])) {
	case KindAxis:
		m.Kind = KindAxis
		m.Mode = ModeRange
		if len(parts) >= 4 {
			m.Invert = strings.EqualFold(parts[3], "invert")
		}

	case KindButton:
		m.Kind = KindButton
		m.Mode = ModeSwitch
		if len(parts) >= 5 {
			min, err1 := strconv.Atoi(parts[3])
			max, err2 := strconv.Atoi(parts[4])
			if err1 != nil || err2 != nil {
				return AuxMapping{}, &FormatError{s, "button min/max must be integers"}
			}
			if min > max {
				return AuxMapping{}, &FormatError{s, "button min must not exceed max"}
			}
			if min < mapper.ChannelMin || max > mapper.ChannelMax {
				return AuxMapping{}, &FormatError{s, "button min/max must be in 1000..2000"}
			}
			m.Min, m.Max = min, max
			m.Mode = ModeRange
		} else if len(parts) >= 4 {
			m.Invert = strings.EqualFold(parts[3], "invert")
		}

	case KindHat:
		m.Kind = KindHat
		m.Mode = ModeHat
		m.HatAxis = mapper.HatX
		if len(parts) >= 4 && strings.EqualFold(parts[3], "y") {
			m.HatAxis = mapper.HatY
		}

	default:
		return AuxMapping{}, &FormatError{s, "unknown source kind (want axis, button or hat)"}
	}

	return m, nil
}

// ParseAuxAll parses a list of AUX configuration strings, failing on the
// first malformed entry.
func ParseAuxAll(specs []string) ([]AuxMapping, error) {
	out := make([]AuxMapping, 0, len(specs))
	for _, s := range specs {
		m, err := ParseAux(s)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
