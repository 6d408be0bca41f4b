// Package sampler runs the control loop: it reads the joystick, maps
// changed sources onto the channel vector and decides when to dispatch
// a snapshot to the transmission queue.
package sampler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/mkorolev/joy2crsf/internal/channels"
	"github.com/mkorolev/joy2crsf/internal/config"
	"github.com/mkorolev/joy2crsf/internal/dispatch"
	"github.com/mkorolev/joy2crsf/internal/mapper"
)

// Device is the slice of the joystick backend the sampler needs.
type Device interface {
	Name() string
	NumAxes() int
	NumButtons() int
	NumHats() int
	Axis(i int) float64
	Button(i int) bool
	Hat(i int) (x, y int)
	Poll()
}

// Update is a status report pushed after each dispatch. Consumed by the
// status hub; delivery is best-effort.
type Update struct {
	Channels  channels.Vector
	RateHz    float64
	Device    string
	Timestamp time.Time
}

// maxSleep bounds the per-cycle sleep so input-to-dispatch latency stays
// small even at low update rates.
const maxSleep = time.Millisecond

// Sampler owns the channel state and all input reads. Snapshots leave it
// only as immutable Vector copies, so no locking is involved.
type Sampler struct {
	dev      Device
	disp     dispatch.Dispatcher
	state    *channels.State
	interval time.Duration
	deadzone float64
	verbose  bool

	axisMap  map[int]int // axis index -> channel, anomalous entries removed
	inverted map[int]bool
	aux      []config.AuxMapping // anomalous entries removed

	updates chan Update
	rateHz  float64
}

// New builds a sampler from the validated configuration. Entries whose
// source index exceeds what the device reports are warned about once and
// skipped at runtime.
func New(cfg *config.Config, dev Device, disp dispatch.Dispatcher) *Sampler {
	s := &Sampler{
		dev:      dev,
		disp:     disp,
		state:    channels.NewState(),
		interval: time.Duration(float64(time.Second) / cfg.UpdateRate),
		deadzone: cfg.Deadzone,
		verbose:  cfg.Verbose,
		axisMap:  make(map[int]int),
		inverted: make(map[int]bool),
		updates:  make(chan Update, 64),
	}

	for axis, ch := range cfg.AxisMap {
		if axis >= dev.NumAxes() {
			log.Printf("warning: axis %d not available (device has %d axes), skipping",
				axis, dev.NumAxes())
			continue
		}
		s.axisMap[axis] = ch
		s.inverted[axis] = cfg.Inverted(axis)
	}

	for _, m := range cfg.Aux {
		switch m.Kind {
		case config.KindAxis:
			if m.Source >= dev.NumAxes() {
				log.Printf("warning: axis %d not available (device has %d axes), skipping aux entry",
					m.Source, dev.NumAxes())
				continue
			}
		case config.KindButton:
			if m.Source >= dev.NumButtons() {
				log.Printf("warning: button %d not available (device has %d buttons), skipping aux entry",
					m.Source, dev.NumButtons())
				continue
			}
		case config.KindHat:
			if m.Source >= dev.NumHats() {
				log.Printf("warning: hat %d not available (device has %d hats), skipping aux entry",
					m.Source, dev.NumHats())
				continue
			}
		}
		s.aux = append(s.aux, m)
	}

	return s
}

// Updates returns the status channel. Reports are dropped when the
// consumer lags; the next dispatch supersedes them.
func (s *Sampler) Updates() <-chan Update {
	return s.updates
}

// Run executes the control loop until ctx is cancelled, then dispatches
// one final neutral snapshot so the actuator is left in a safe state.
func (s *Sampler) Run(ctx context.Context) {
	sleepStep := s.interval / 4
	if sleepStep > maxSleep {
		sleepStep = maxSleep
	}

	log.Printf("control loop started: %.1f Hz (%s interval), deadzone %.1f%%, %d aux entries",
		float64(time.Second)/float64(s.interval), s.interval, s.deadzone*100, len(s.aux))

	lastDispatch := time.Now()
	lastStatus := time.Now()
	sends := 0

	for {
		select {
		case <-ctx.Done():
			log.Println("setting channels to neutral")
			s.disp.Dispatch(channels.Neutral())
			return
		default:
		}

		s.dev.Poll()
		s.sampleOnce()

		now := time.Now()

		// Dispatch on the configured cadence, or immediately on any
		// change for minimum input-to-actuator latency.
		if dirty := s.state.ConsumeDirty(); dirty || now.Sub(lastDispatch) >= s.interval {
			snap := s.state.Snapshot()
			s.disp.Dispatch(snap)
			lastDispatch = now
			sends++

			if s.verbose {
				log.Printf("dispatch: %v", snap)
			}
			s.emit(snap, now)
		}

		if now.Sub(lastStatus) >= time.Second {
			s.rateHz = float64(sends) / now.Sub(lastStatus).Seconds()
			s.logStatus()
			sends = 0
			lastStatus = now
		}

		// Short bounded sleeps instead of waiting out the full interval:
		// keeps input-to-dispatch latency at most one step without
		// spinning.
		time.Sleep(sleepStep)
	}
}

// sampleOnce reads every configured source and updates the channel state
// through the value mapper, but only for sources that actually changed.
func (s *Sampler) sampleOnce() {
	for axis, ch := range s.axisMap {
		raw := s.dev.Axis(axis)
		if s.state.RawChanged(fmt.Sprintf("axis_%d", axis), raw) {
			s.state.Set(ch, mapper.AxisToChannel(raw, s.deadzone, s.inverted[axis]))
		}
	}

	for _, m := range s.aux {
		switch m.Kind {
		case config.KindAxis:
			raw := s.dev.Axis(m.Source)
			if s.state.RawChanged(fmt.Sprintf("aux_axis_%d", m.Source), raw) {
				v := mapper.AxisToChannel(raw, s.deadzone, m.Invert)
				if m.Min != mapper.ChannelMin || m.Max != mapper.ChannelMax {
					v = mapper.ScaleToRange(v, m.Min, m.Max)
				}
				s.state.Set(m.Channel, v)
			}

		case config.KindButton:
			pressed := s.dev.Button(m.Source)
			s.state.Set(m.Channel, mapper.ButtonToChannel(pressed, m.Min, m.Max, m.Invert))

		case config.KindHat:
			x, y := s.dev.Hat(m.Source)
			s.state.Set(m.Channel, mapper.HatToChannel(x, y, m.HatAxis))
		}
	}
}

func (s *Sampler) emit(v channels.Vector, at time.Time) {
	u := Update{
		Channels:  v,
		RateHz:    s.rateHz,
		Device:    s.dev.Name(),
		Timestamp: at,
	}
	select {
	case s.updates <- u:
	default:
		// Drop rather than block the control loop.
	}
}

func (s *Sampler) logStatus() {
	line := fmt.Sprintf("CH1=%4d CH2=%4d CH3=%4d CH4=%4d rate: %.1f Hz",
		s.state.Get(1), s.state.Get(2), s.state.Get(3), s.state.Get(4), s.rateHz)

	auxCh := make([]int, 0, len(s.aux))
	seen := make(map[int]bool)
	for _, m := range s.aux {
		if !seen[m.Channel] {
			seen[m.Channel] = true
			auxCh = append(auxCh, m.Channel)
		}
	}
	sort.Ints(auxCh)
	for _, ch := range auxCh {
		line += fmt.Sprintf(" CH%d=%4d", ch, s.state.Get(ch))
	}

	log.Println(line)
}
