package remote

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/swift-shade/tock/piopwm"
)

// DefaultFrequency is used by Pin when PWM is called with a zero frequency.
const DefaultFrequency = physic.KiloHertz

var errSubHertz = errors.New("remote: frequency below 1Hz")

// Pin is a board pin driven through the console. It implements gpio.PinOut
// so periph device drivers can use the board's PIO PWM.
type Pin struct {
	c    *Client
	n    piopwm.Pin
	freq physic.Frequency
	fn   string
}

// Pin returns the board pin n.
func (c *Client) Pin(n piopwm.Pin) *Pin {
	return &Pin{c: c, n: n, freq: DefaultFrequency, fn: "Out/Low"}
}

func (p *Pin) String() string   { return fmt.Sprintf("PIOPWM%d", p.n) }
func (p *Pin) Name() string     { return p.String() }
func (p *Pin) Number() int      { return int(p.n) }
func (p *Pin) Function() string { return p.fn }

// Halt stops the PWM and parks the pin low.
func (p *Pin) Halt() error {
	return p.Out(gpio.Low)
}

// Out parks the pin low, or drives it at full duty for gpio.High using the
// last frequency set with PWM.
func (p *Pin) Out(l gpio.Level) error {
	if l == gpio.Low {
		if err := p.c.Stop(p.n); err != nil {
			return err
		}
		p.fn = "Out/Low"
		return nil
	}
	return p.pwm(piopwm.MaxDutyCycle, p.freq, "Out/High")
}

// PWM arms the pin with duty at frequency f. f is truncated to whole Hz
// and duty is rounded to the nearest percent.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	if !duty.Valid() {
		return fmt.Errorf("remote: invalid duty %d", duty)
	}
	if f == 0 {
		f = DefaultFrequency
	}
	return p.pwm(dutyPercent(duty), f, "PWM")
}

func (p *Pin) pwm(pct uint32, f physic.Frequency, fn string) error {
	hz, err := wholeHertz(f)
	if err != nil {
		return err
	}
	if err := p.c.Start(p.n, hz, pct); err != nil {
		return err
	}
	p.freq = f
	p.fn = fn
	return nil
}

func dutyPercent(d gpio.Duty) uint32 {
	return uint32((int64(d)*piopwm.MaxDutyCycle + int64(gpio.DutyMax)/2) / int64(gpio.DutyMax))
}

func wholeHertz(f physic.Frequency) (uint32, error) {
	if f < physic.Hertz {
		return 0, errSubHertz
	}
	hz := f / physic.Hertz
	if hz > 1<<32-1 {
		return 0, fmt.Errorf("remote: frequency %s too high", f)
	}
	return uint32(hz), nil
}

var _ gpio.PinOut = &Pin{}
