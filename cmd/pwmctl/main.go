// Command pwmctl controls the PIO PWM of a board running the serial console
// firmware.
//
//	pwmctl -port /dev/ttyACM0 -pin 25 -freq 1kHz -duty 25% start
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tarm/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/swift-shade/tock/piopwm"
	"github.com/swift-shade/tock/remote"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pwmctl: %v\n", err)
		os.Exit(2)
	}
}

// dutyFlag parses percentages and gpio.Duty values with gpio.ParseDuty.
type dutyFlag struct{ gpio.Duty }

func (d *dutyFlag) Set(s string) error {
	v, err := gpio.ParseDuty(s)
	if err != nil {
		return err
	}
	d.Duty = v
	return nil
}

var errUsage = errors.New("usage: pwmctl [flags] start|stop|limits|status")

func run(args []string) error {
	fs := flag.NewFlagSet("pwmctl", flag.ContinueOnError)
	port := fs.String("port", "/dev/ttyACM0", "serial device of the board")
	baud := fs.Int("baud", 115200, "serial baud rate")
	pin := fs.Uint("pin", 25, "GPIO number")
	verbose := fs.Bool("v", false, "log each request")
	freq := physic.KiloHertz
	fs.Var(&freq, "freq", "PWM frequency, e.g. 50Hz or 1kHz")
	duty := dutyFlag{gpio.DutyHalf}
	fs.Var(&duty, "duty", "duty cycle, e.g. 25%")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	if *pin >= 32 {
		return fmt.Errorf("invalid pin %d", *pin)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	conn, err := serial.OpenPort(&serial.Config{Name: *port, Baud: *baud, ReadTimeout: 2 * time.Second})
	if err != nil {
		return err
	}
	defer conn.Close()
	client := remote.NewClient(conn)
	log.Debug("pwmctl: connected", slog.String("port", *port), slog.Int("baud", *baud))

	p := client.Pin(piopwm.Pin(*pin))
	switch cmd := fs.Arg(0); cmd {
	case "start":
		log.Debug("pwmctl: start", slog.String("pin", p.Name()), slog.String("freq", freq.String()), slog.String("duty", duty.String()))
		return p.PWM(duty.Duty, freq)
	case "stop":
		log.Debug("pwmctl: stop", slog.String("pin", p.Name()))
		return p.Halt()
	case "limits":
		maxDuty, maxHz, err := client.Limits()
		if err != nil {
			return err
		}
		fmt.Printf("max_duty=%d max_freq=%s\n", maxDuty, physic.Frequency(maxHz)*physic.Hertz)
	case "status":
		st, err := client.Status()
		if err != nil {
			return err
		}
		fmt.Printf("armed=%t pin=%d freq=%s period=%d duty=%d\n",
			st.Armed, st.Pin, physic.Frequency(st.FrequencyHz)*physic.Hertz, st.Timing.Period, st.Timing.Duty)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return nil
}
