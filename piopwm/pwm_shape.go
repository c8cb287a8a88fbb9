package piopwm

import "errors"

// DefaultPeriod is the period in nanoseconds PWM.Configure uses when given
// zero, 500Hz.
const DefaultPeriod = nanosecondsInSecond / 500

// Errors recorded or returned by PWM.
var (
	ErrPinTaken   = errors.New("piopwm: PWM lane already drives another pin")
	ErrNoChannel  = errors.New("piopwm: PWM has no channel")
	ErrBadChannel = errors.New("piopwm: invalid PWM channel")
)

// PWM is a single channel PWM on the Driver's lane with the method set of
// TinyGo's machine PWM, minus the machine types. Package rp2 wraps it for
// the servo and tone drivers.
type PWM struct {
	d      *Driver
	period uint64
	ch     *Channel
	err    error
}

// NewPWM returns a PWM on the lane driven by d.
func NewPWM(d *Driver) *PWM {
	return &PWM{d: d}
}

// Configure sets the period in nanoseconds. Zero selects DefaultPeriod.
func (p *PWM) Configure(periodNs uint64) error {
	if periodNs == 0 {
		periodNs = DefaultPeriod
	}
	return p.SetPeriod(periodNs)
}

// SetPeriod sets the period in nanoseconds. A running channel is re-armed
// with the same duty fraction. On error the previous period is kept.
func (p *PWM) SetPeriod(periodNs uint64) error {
	if p.ch != nil {
		if err := p.ch.SetPeriod(periodNs); err != nil {
			return err
		}
	} else if _, err := LoopPeriod(p.d.MaxFrequency(), periodNs); err != nil {
		return err
	}
	p.period = periodNs
	return nil
}

// Channel binds pin to the lane and returns channel 0. The lane drives a
// single pin, so a second pin is rejected.
func (p *PWM) Channel(pin Pin) (uint8, error) {
	if p.ch != nil {
		if p.ch.Pin() != pin {
			return 0, ErrPinTaken
		}
		return 0, nil
	}
	ch := p.d.Channel(pin)
	if p.period != 0 {
		if err := ch.SetPeriod(p.period); err != nil {
			return 0, err
		}
	}
	p.ch = ch
	return 0, nil
}

// Top returns the Set value for 100% duty, or 0 before Channel.
func (p *PWM) Top() uint32 {
	if p.ch == nil {
		return 0
	}
	return p.ch.Top()
}

// Set arms the lane with value loop iterations high per period. Zero stops
// the lane with the pin low. The machine PWM shape has no error return, so
// failures are kept for Err.
func (p *PWM) Set(channel uint8, value uint32) {
	switch {
	case p.ch == nil:
		p.err = ErrNoChannel
	case channel != 0:
		p.err = ErrBadChannel
	default:
		if err := p.ch.Set(value); err != nil {
			p.err = err
		}
	}
}

// Err returns and clears the last error recorded by Set.
func (p *PWM) Err() error {
	err := p.err
	p.err = nil
	return err
}
