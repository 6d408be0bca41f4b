// Package config holds the CLI surface, the AUX channel mini-language and
// the optional YAML mapping file for the joystick-to-CRSF bridge.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults mirror the stock bridge setup: a local CRSF API server and a
// 50 Hz control loop with a 5% deadzone.
const (
	DefaultAPIURL     = "http://localhost:8081"
	DefaultUpdateRate = 50.0
	DefaultDeadzone   = 0.05
	DefaultStatusAddr = ":8080"
)

// DefaultAxisMap routes the first four joystick axes onto the primary
// flight channels (CH1=Roll, CH2=Pitch, CH3=Throttle, CH4=Yaw).
var DefaultAxisMap = map[int]int{
	0: 4, // Yaw
	1: 3, // Throttle
	2: 1, // Roll
	3: 2, // Pitch
}

// DefaultInvertAxes flips throttle and pitch, matching common gamepads
// where pushing a stick forward reports a negative axis value.
var DefaultInvertAxes = []int{1, 3}

// DefaultAux is used when no AUX entries are configured at all.
var DefaultAux = []string{
	"axis:4:5",
	"axis:5:6",
	"button:0:7",
	"button:1:8",
}

// Config is the full set of tunables, resolved from flags, environment
// (JOY2CRSF_*) and the optional mapping file.
type Config struct {
	APIURL      string
	JoystickID  int
	Backend     string // "auto", "sdl" or "js"
	UpdateRate  float64
	Deadzone    float64
	InvertAxes  []int
	AxisMap     map[int]int
	AuxSpecs    []string
	Aux         []AuxMapping
	MappingFile string
	NoThread    bool
	StatusAddr  string
	Verbose     bool
}

// Load parses args into a Config. Flag values can be overridden by
// JOY2CRSF_* environment variables via viper.
func Load(name string, args []string) (*Config, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	fs.StringP("api-url", "a", DefaultAPIURL, "CRSF API server base URL")
	fs.IntP("joystick-id", "j", 0, "joystick index to use")
	fs.String("backend", "auto", "input backend: auto, sdl or js")
	fs.Float64P("update-rate", "r", DefaultUpdateRate, "channel update rate in Hz")
	fs.Float64P("deadzone", "d", DefaultDeadzone, "axis deadzone fraction (0.0-1.0)")
	fs.IntSlice("invert-axis", DefaultInvertAxes, "axis index to invert (repeatable)")
	fs.StringArray("aux-config", nil, "AUX channel mapping, e.g. axis:4:5:invert (repeatable)")
	fs.String("mapping-file", "", "YAML file with axis map, inversion set and AUX entries")
	fs.Bool("no-thread", false, "send inline from the control loop instead of the worker")
	fs.String("status-addr", DefaultStatusAddr, "status server listen address, empty to disable")
	fs.BoolP("verbose", "v", false, "log every dispatched frame")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	vp := viper.New()
	vp.SetEnvPrefix("joy2crsf")
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv()
	if err := vp.BindPFlags(fs); err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:      vp.GetString("api-url"),
		JoystickID:  vp.GetInt("joystick-id"),
		Backend:     strings.ToLower(vp.GetString("backend")),
		UpdateRate:  vp.GetFloat64("update-rate"),
		Deadzone:    vp.GetFloat64("deadzone"),
		InvertAxes:  vp.GetIntSlice("invert-axis"),
		AuxSpecs:    vp.GetStringSlice("aux-config"),
		MappingFile: vp.GetString("mapping-file"),
		NoThread:    vp.GetBool("no-thread"),
		StatusAddr:  vp.GetString("status-addr"),
		Verbose:     vp.GetBool("verbose"),
	}

	cfg.AxisMap = make(map[int]int, len(DefaultAxisMap))
	for axis, ch := range DefaultAxisMap {
		cfg.AxisMap[axis] = ch
	}

	if cfg.MappingFile != "" {
		if err := applyMappingFile(cfg, cfg.MappingFile); err != nil {
			return nil, err
		}
	}

	if len(cfg.AuxSpecs) == 0 {
		cfg.AuxSpecs = DefaultAux
	}
	aux, err := ParseAuxAll(cfg.AuxSpecs)
	if err != nil {
		return nil, err
	}
	cfg.Aux = aux

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks tunable ranges. Any failure is startup-fatal.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api-url must not be empty")
	}
	if c.JoystickID < 0 {
		return fmt.Errorf("joystick-id must be >= 0, got %d", c.JoystickID)
	}
	switch c.Backend {
	case "auto", "sdl", "js":
	default:
		return fmt.Errorf("backend must be auto, sdl or js, got %q", c.Backend)
	}
	if c.UpdateRate <= 0 {
		return fmt.Errorf("update-rate must be > 0, got %g", c.UpdateRate)
	}
	if c.Deadzone < 0 || c.Deadzone > 1 {
		return fmt.Errorf("deadzone must be in [0.0, 1.0], got %g", c.Deadzone)
	}
	for _, a := range c.InvertAxes {
		if a < 0 {
			return fmt.Errorf("invert-axis must be >= 0, got %d", a)
		}
	}
	for axis, ch := range c.AxisMap {
		if axis < 0 {
			return fmt.Errorf("axis map: axis index must be >= 0, got %d", axis)
		}
		if ch < 1 || ch > 16 {
			return fmt.Errorf("axis map: channel for axis %d must be in 1..16, got %d", axis, ch)
		}
	}
	return nil
}

// Inverted reports whether axis is in the inversion set.
func (c *Config) Inverted(axis int) bool {
	for _, a := range c.InvertAxes {
		if a == axis {
			return true
		}
	}
	return false
}
