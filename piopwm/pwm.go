// Package piopwm generates a PWM square wave on a PIO state machine.
//
// The driver loads a fixed program into the engine, configures one lane to
// drive the output pin through side-set and queues the duty value. From
// then on the state machine renders the waveform without CPU involvement
// until [Driver.Stop] is called.
//
// The hardware is reached through the [Engine] and [ClockSource]
// interfaces. On RP2040/RP2350 targets these are provided by package rp2.
package piopwm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Pin is a GPIO number as seen by the PIO block.
type Pin uint8

// ClockDomain names a reference clock of the clock tree.
type ClockDomain uint8

const (
	ClockSystem ClockDomain = iota
	ClockPeripheral
)

func (d ClockDomain) String() string {
	switch d {
	case ClockSystem:
		return "clk_sys"
	case ClockPeripheral:
		return "clk_peri"
	}
	return "clk_unknown"
}

// ClockSource reports the frequency of a clock domain in Hz.
type ClockSource interface {
	Frequency(domain ClockDomain) uint32
}

// Engine is the PIO block the driver programs. All methods address an
// already initialized block and are expected to complete or fail immediately,
// except PutBlocking which waits for room in the lane's TX FIFO.
type Engine interface {
	// Init readies the engine for a fresh program load, releasing any
	// program previously loaded through this Engine.
	Init() error
	// LoadProgram copies instructions into instruction memory and returns the
	// offset they were loaded at. origin is -1 for relocatable programs.
	LoadProgram(instructions []uint16, origin int8) (offset uint8, err error)
	// ConfigureLane applies cfg to the lane, preloads cfg.Period and enables it.
	ConfigureLane(lane uint8, cfg LaneConfig) error
	// PutBlocking pushes value into the lane's TX FIFO, waiting while it is full.
	PutBlocking(lane uint8, value uint32) error
	// ResetLane halts the lane and clears its FIFOs and internal state.
	ResetLane(lane uint8) error
	// SetPin forces the level of pin from the lane.
	SetPin(lane uint8, pin Pin, level bool) error
}

// PWM errors.
var (
	ErrZeroFrequency       = errors.New("piopwm: zero frequency")
	ErrFrequencyOutOfRange = errors.New("piopwm: frequency above clock frequency")
	ErrDutyOutOfRange      = errors.New("piopwm: duty cycle out of range")
	ErrZeroPeriod          = errors.New("piopwm: zero period")
	ErrPeriodOutOfRange    = errors.New("piopwm: period not representable")
)

const (
	badClock  = "piopwm: clock source not set"
	badEngine = "piopwm: nil engine"
)

// Config configures a Driver.
type Config struct {
	// Lane is the state machine index within the engine. Defaults to 0.
	Lane uint8
	// Domain is the clock domain the state machine runs from.
	Domain ClockDomain
	// Clock may be left nil and supplied later with SetClock. It must be set
	// before the first call that needs it.
	Clock ClockSource
	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// Status describes the last arm of a Driver.
type Status struct {
	Armed       bool
	Pin         Pin
	Timing      Timing
	FrequencyHz uint32
}

// Driver drives one lane of an engine. Driver is not safe for concurrent
// use; callers own the lane and serialize access.
type Driver struct {
	engine Engine
	clock  ClockSource
	lane   uint8
	domain ClockDomain
	log    *slog.Logger
	status Status
}

// New returns a Driver programming lane cfg.Lane of engine.
func New(engine Engine, cfg Config) *Driver {
	if engine == nil {
		panic(badEngine)
	}
	return &Driver{
		engine: engine,
		clock:  cfg.Clock,
		lane:   cfg.Lane,
		domain: cfg.Domain,
		log:    cfg.Logger,
	}
}

// SetClock sets the clock source the driver reads its maximum frequency from.
func (d *Driver) SetClock(clock ClockSource) { d.clock = clock }

// Lane returns the state machine index the driver programs.
func (d *Driver) Lane() uint8 { return d.lane }

// Start arms the lane to output frequencyHz with dutyPercent percent duty
// on pin. Calling Start on an armed lane re-arms it with the new parameters.
//
// The period is maxHz/frequencyHz loop iterations of the program, not clock
// cycles. A duty of 0 still raises the pin for 2 cycles per PWM cycle; use
// Stop to hold the pin low.
func (d *Driver) Start(pin Pin, frequencyHz, dutyPercent uint32) error {
	maxHz := d.MaxFrequency()
	t, err := Compute(maxHz, frequencyHz, dutyPercent)
	if err != nil {
		return err
	}
	return d.arm(pin, t, t.Frequency(maxHz))
}

// Arm loads the program, configures the lane for pin with t.Period and
// queues t.Duty. On error the lane is left in an undefined state and should
// be stopped before retrying.
func (d *Driver) Arm(pin Pin, t Timing) error {
	maxHz := d.MaxFrequency()
	return d.arm(pin, t, t.Frequency(maxHz))
}

// arm runs the arm transaction. hz is only reported in Status.
func (d *Driver) arm(pin Pin, t Timing, hz uint32) error {
	if err := t.validate(); err != nil {
		return err
	}
	if err := d.engine.Init(); err != nil {
		return fmt.Errorf("piopwm: init engine: %w", err)
	}
	offset, err := d.engine.LoadProgram(pwmInstructions[:], pwmOrigin)
	if err != nil {
		return fmt.Errorf("piopwm: load program: %w", err)
	}
	if err := d.engine.ConfigureLane(d.lane, pwmLaneConfig(pin, offset, t.Period)); err != nil {
		return fmt.Errorf("piopwm: configure lane %d: %w", d.lane, err)
	}
	if err := d.engine.PutBlocking(d.lane, t.Duty); err != nil {
		return fmt.Errorf("piopwm: queue duty: %w", err)
	}
	d.status = Status{Armed: true, Pin: pin, Timing: t, FrequencyHz: hz}
	d.debug("armed",
		slog.Int("pin", int(pin)),
		slog.Uint64("lane", uint64(d.lane)),
		slog.Uint64("offset", uint64(offset)),
		slog.Uint64("period", uint64(t.Period)),
		slog.Uint64("duty", uint64(t.Duty)),
		slog.Uint64("hz", uint64(hz)),
	)
	return nil
}

// Stop halts the lane and drives pin low.
func (d *Driver) Stop(pin Pin) error {
	if err := d.engine.ResetLane(d.lane); err != nil {
		return fmt.Errorf("piopwm: reset lane %d: %w", d.lane, err)
	}
	d.status.Armed = false
	if err := d.engine.SetPin(d.lane, pin, false); err != nil {
		return fmt.Errorf("piopwm: park pin %d: %w", pin, err)
	}
	d.debug("stopped", slog.Int("pin", int(pin)), slog.Uint64("lane", uint64(d.lane)))
	return nil
}

// MaxDutyCycle returns the full-scale duty accepted by Start, which is a
// percentage regardless of the hardware resolution.
func (d *Driver) MaxDutyCycle() uint32 { return MaxDutyCycle }

// MaxFrequency returns the frequency of the clock feeding the state machine,
// which is also the highest PWM frequency reachable (period of 1).
// It panics if no clock source was set.
func (d *Driver) MaxFrequency() uint32 {
	if d.clock == nil {
		panic(badClock)
	}
	return d.clock.Frequency(d.domain)
}

// Status returns the parameters of the last successful arm.
func (d *Driver) Status() Status { return d.status }

func (d *Driver) debug(msg string, attrs ...slog.Attr) {
	if d.log == nil {
		return
	}
	d.log.LogAttrs(context.Background(), slog.LevelDebug, "piopwm: "+msg, attrs...)
}
