//go:build rp2040 || rp2350

package rp2

import (
	"machine"

	"tinygo.org/x/drivers/servo"
	"tinygo.org/x/drivers/tone"

	"github.com/swift-shade/tock/piopwm"
)

// PWM is a single channel PWM on one PIO lane, shaped like the machine
// package PWM so servo and tone drivers can run on it. Set failures are
// reported by Err.
type PWM struct {
	*piopwm.PWM
}

var (
	_ servo.PWM = (*PWM)(nil)
	_ tone.PWM  = (*PWM)(nil)
)

// NewPWM returns a PWM on the lane driven by d.
func NewPWM(d *piopwm.Driver) *PWM {
	return &PWM{PWM: piopwm.NewPWM(d)}
}

// Configure sets the PWM period. A zero period selects 500Hz.
func (p *PWM) Configure(config machine.PWMConfig) error {
	return p.PWM.Configure(config.Period)
}

// Channel binds pin to the lane. The lane drives a single pin, so a second
// pin is rejected.
func (p *PWM) Channel(pin machine.Pin) (uint8, error) {
	return p.PWM.Channel(piopwm.Pin(pin))
}
