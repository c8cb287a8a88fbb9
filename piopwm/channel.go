package piopwm

// Channel drives one pin at the full loop resolution of the program rather
// than in whole percent. Its Top/Set/SetPeriod methods follow the shape of
// TinyGo's machine PWM so that servo and tone drivers can run on a PIO lane.
//
// Unlike Start, periods are exact: SetPeriod accounts for the cycles every
// loop iteration takes.
//
// A Channel shares the Driver's lane: arming it replaces whatever the
// Driver was outputting.
type Channel struct {
	d       *Driver
	pin     Pin
	top     uint32
	value   uint32
	running bool
}

// Channel returns a Channel outputting on pin. SetPeriod must be called
// before Set.
func (d *Driver) Channel(pin Pin) *Channel {
	return &Channel{d: d, pin: pin}
}

// Pin returns the pin the channel outputs on.
func (ch *Channel) Pin() Pin { return ch.pin }

// SetPeriod sets the PWM period in nanoseconds. If the channel is running it
// is re-armed immediately keeping the same duty fraction.
func (ch *Channel) SetPeriod(periodNs uint64) error {
	top, err := LoopPeriod(ch.d.MaxFrequency(), periodNs)
	if err != nil {
		return err
	}
	oldTop := ch.top
	ch.top = top
	if !ch.running {
		return nil
	}
	return ch.Set(scaleDuty(ch.value, oldTop, top))
}

// Top returns the value passed to Set that produces 100% duty for the
// current period. One unit of Top is one loop iteration, 3 clock cycles.
func (ch *Channel) Top() uint32 { return ch.top }

// Set arms the lane with value loop iterations of high time per cycle,
// clamped to Top. A value of 0 stops the lane with the pin parked low.
func (ch *Channel) Set(value uint32) error {
	if ch.top == 0 {
		return ErrZeroPeriod
	}
	if value > ch.top {
		value = ch.top
	}
	if value == 0 {
		ch.running = false
		if err := ch.d.Stop(ch.pin); err != nil {
			return err
		}
		ch.value = 0
		return nil
	}
	hz := loopFrequency(ch.d.MaxFrequency(), ch.top)
	if err := ch.d.arm(ch.pin, Timing{Period: ch.top, Duty: value}, hz); err != nil {
		ch.running = false
		return err
	}
	ch.value = value
	ch.running = true
	return nil
}

// Value returns the last value the lane was armed with, after clamping.
func (ch *Channel) Value() uint32 { return ch.value }
