package piopwm_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/swift-shade/tock/piopwm"
)

func TestPWMServo(t *testing.T) {
	c := qt.New(t)
	d, engine := newDriver(t)
	pwm := piopwm.NewPWM(d)
	// The sequence servo.New and SetMicroseconds(1500) run.
	c.Assert(pwm.Configure(20_000_000), qt.IsNil)
	ch, err := pwm.Channel(15)
	c.Assert(err, qt.IsNil)
	c.Assert(ch, qt.Equals, uint8(0))
	pwm.Set(ch, uint32(uint64(pwm.Top())*1500/20000))
	c.Assert(pwm.Err(), qt.IsNil)

	period, high := newStateMachine(engine.Lanes[0]).measure()
	c.Assert(period*nsPerCycle, qt.Satisfies, within(20_000_000, 3*nsPerCycle))
	c.Assert(high*nsPerCycle, qt.Satisfies, within(1_500_000, 6*nsPerCycle))
}

func TestPWMTone(t *testing.T) {
	c := qt.New(t)
	d, engine := newDriver(t)
	pwm := piopwm.NewPWM(d)
	c.Assert(pwm.Configure(1_000_000_000/55/2), qt.IsNil)
	ch, err := pwm.Channel(12)
	c.Assert(err, qt.IsNil)

	// The sequence tone.Speaker.SetPeriod runs for A4.
	const a4 = 1_000_000_000 / 440
	pwm.Set(ch, 0)
	c.Assert(pwm.SetPeriod(a4), qt.IsNil)
	pwm.Set(ch, pwm.Top()/2)
	c.Assert(pwm.Err(), qt.IsNil)

	period, _ := newStateMachine(engine.Lanes[0]).measure()
	c.Assert(uint64(sysClock)/period, qt.Equals, uint64(440))
}

func TestPWMDefaultPeriod(t *testing.T) {
	c := qt.New(t)
	d, _ := newDriver(t)
	pwm := piopwm.NewPWM(d)
	c.Assert(pwm.Configure(0), qt.IsNil)
	_, err := pwm.Channel(1)
	c.Assert(err, qt.IsNil)
	top, err := piopwm.LoopPeriod(sysClock, piopwm.DefaultPeriod)
	c.Assert(err, qt.IsNil)
	c.Assert(pwm.Top(), qt.Equals, top)
}

func TestPWMFailedSetPeriodKeepsPeriod(t *testing.T) {
	c := qt.New(t)
	d, _ := newDriver(t)
	pwm := piopwm.NewPWM(d)
	c.Assert(pwm.Configure(20_000_000), qt.IsNil)
	c.Assert(pwm.SetPeriod(1<<40), qt.ErrorIs, piopwm.ErrPeriodOutOfRange)
	_, err := pwm.Channel(15)
	c.Assert(err, qt.IsNil)
	c.Assert(pwm.Top(), qt.Equals, uint32(833_331))

	c.Assert(pwm.SetPeriod(1<<40), qt.ErrorIs, piopwm.ErrPeriodOutOfRange)
	c.Assert(pwm.Top(), qt.Equals, uint32(833_331))
}

func TestPWMSetErrors(t *testing.T) {
	c := qt.New(t)
	d, engine := newDriver(t)
	pwm := piopwm.NewPWM(d)
	c.Assert(pwm.Top(), qt.Equals, uint32(0))

	pwm.Set(0, 10)
	c.Assert(pwm.Err(), qt.ErrorIs, piopwm.ErrNoChannel)
	c.Assert(pwm.Err(), qt.IsNil)

	c.Assert(pwm.Configure(1_000_000), qt.IsNil)
	_, err := pwm.Channel(4)
	c.Assert(err, qt.IsNil)
	pwm.Set(1, 10)
	c.Assert(pwm.Err(), qt.ErrorIs, piopwm.ErrBadChannel)
	c.Assert(engine.Calls, qt.HasLen, 0)

	_, err = pwm.Channel(5)
	c.Assert(err, qt.ErrorIs, piopwm.ErrPinTaken)
	ch, err := pwm.Channel(4)
	c.Assert(err, qt.IsNil)
	c.Assert(ch, qt.Equals, uint8(0))
}
