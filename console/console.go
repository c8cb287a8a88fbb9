// Package console serves the PWM capability contract as a line protocol
// over a serial link.
//
// Each request is one line of whitespace separated tokens, quoted and
// commented the way a shell would. Each request is answered with one line
// starting with "ok" or "err".
//
//	start <pin> <hz> <percent>
//	stop <pin>
//	limits
//	status
//	help
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/swift-shade/tock/piopwm"
)

// Controller is the PWM capability served by the console. *piopwm.Driver
// implements it.
type Controller interface {
	Start(pin piopwm.Pin, frequencyHz, dutyPercent uint32) error
	Stop(pin piopwm.Pin) error
	MaxDutyCycle() uint32
	MaxFrequency() uint32
}

// StatusController is implemented by controllers that can report their last arm.
type StatusController interface {
	Controller
	Status() piopwm.Status
}

const helpText = "commands: start <pin> <hz> <percent>, stop <pin>, limits, status, help"

var errUsage = errors.New("usage")

// Server executes console commands on a Controller.
type Server struct {
	ctl Controller
	log *slog.Logger
}

// NewServer returns a Server for ctl. logger may be nil.
func NewServer(ctl Controller, logger *slog.Logger) *Server {
	return &Server{ctl: ctl, log: logger}
}

// Serve reads commands from rw and writes replies to it until rw returns
// io.EOF, which is not reported as an error.
func (s *Server) Serve(rw io.ReadWriter) error {
	scanner := bufio.NewScanner(rw)
	for scanner.Scan() {
		reply := s.Exec(scanner.Text())
		if reply == "" {
			continue
		}
		if _, err := io.WriteString(rw, reply+"\n"); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Exec runs a single command line and returns the reply without the line
// terminator. Blank and comment-only lines return "".
func (s *Server) Exec(line string) string {
	args, err := shlex.Split(line)
	if err != nil {
		return s.fail(line, err)
	}
	if len(args) == 0 {
		return ""
	}
	reply, err := s.exec(args[0], args[1:])
	if err != nil {
		return s.fail(line, err)
	}
	if reply == "" {
		return "ok"
	}
	return "ok " + reply
}

func (s *Server) exec(cmd string, args []string) (string, error) {
	switch cmd {
	case "start":
		if len(args) != 3 {
			return "", fmt.Errorf("%w: start <pin> <hz> <percent>", errUsage)
		}
		pin, err := parsePin(args[0])
		if err != nil {
			return "", err
		}
		hz, err := parseUint32("frequency", args[1])
		if err != nil {
			return "", err
		}
		pct, err := parseUint32("duty", strings.TrimSuffix(args[2], "%"))
		if err != nil {
			return "", err
		}
		return "", s.ctl.Start(pin, hz, pct)
	case "stop":
		if len(args) != 1 {
			return "", fmt.Errorf("%w: stop <pin>", errUsage)
		}
		pin, err := parsePin(args[0])
		if err != nil {
			return "", err
		}
		return "", s.ctl.Stop(pin)
	case "limits":
		return fmt.Sprintf("max_duty=%d max_freq=%d", s.ctl.MaxDutyCycle(), s.ctl.MaxFrequency()), nil
	case "status":
		sc, ok := s.ctl.(StatusController)
		if !ok {
			return "", errors.New("status not supported")
		}
		st := sc.Status()
		return fmt.Sprintf("armed=%t pin=%d hz=%d period=%d duty=%d",
			st.Armed, st.Pin, st.FrequencyHz, st.Timing.Period, st.Timing.Duty), nil
	case "help":
		return helpText, nil
	}
	return "", fmt.Errorf("unknown command %q", cmd)
}

func (s *Server) fail(line string, err error) string {
	if s.log != nil {
		s.log.LogAttrs(context.Background(), slog.LevelWarn, "console: command failed",
			slog.String("line", line), slog.String("err", err.Error()))
	}
	return "err " + err.Error()
}

func parsePin(s string) (piopwm.Pin, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || v >= 32 {
		return 0, fmt.Errorf("invalid pin %q", s)
	}
	return piopwm.Pin(v), nil
}

func parseUint32(name, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return uint32(v), nil
}
