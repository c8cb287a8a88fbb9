// Package remote drives a board running the PWM console from the host.
package remote

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/swift-shade/tock/piopwm"
)

// Error is a failure reported by the board.
type Error struct {
	Cmd string
	Msg string
}

func (e *Error) Error() string { return "remote: " + e.Cmd + ": " + e.Msg }

var errBadReply = errors.New("remote: malformed reply")

// Client sends console commands over rw. Client is not safe for concurrent
// use: a request and its reply must not interleave with another.
type Client struct {
	w io.Writer
	r *bufio.Reader
}

// NewClient returns a Client talking over rw, usually a serial port.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{w: rw, r: bufio.NewReader(rw)}
}

// Start arms pin on the board.
func (c *Client) Start(pin piopwm.Pin, frequencyHz, dutyPercent uint32) error {
	_, err := c.do(fmt.Sprintf("start %d %d %d", pin, frequencyHz, dutyPercent))
	return err
}

// Stop halts the PWM on pin.
func (c *Client) Stop(pin piopwm.Pin) error {
	_, err := c.do(fmt.Sprintf("stop %d", pin))
	return err
}

// Limits returns the board's maximum duty value and maximum frequency in Hz.
func (c *Client) Limits() (maxDuty, maxHz uint32, err error) {
	fields, err := c.do("limits")
	if err != nil {
		return 0, 0, err
	}
	kv := parseFields(fields)
	maxDuty, err = kv.number("max_duty")
	if err != nil {
		return 0, 0, err
	}
	maxHz, err = kv.number("max_freq")
	if err != nil {
		return 0, 0, err
	}
	return maxDuty, maxHz, nil
}

// Status returns the board's report of its last arm.
func (c *Client) Status() (piopwm.Status, error) {
	fields, err := c.do("status")
	if err != nil {
		return piopwm.Status{}, err
	}
	kv := parseFields(fields)
	var st piopwm.Status
	st.Armed = kv["armed"] == "true"
	pin, err := kv.number("pin")
	if err != nil {
		return piopwm.Status{}, err
	}
	st.Pin = piopwm.Pin(pin)
	if st.FrequencyHz, err = kv.number("hz"); err != nil {
		return piopwm.Status{}, err
	}
	if st.Timing.Period, err = kv.number("period"); err != nil {
		return piopwm.Status{}, err
	}
	if st.Timing.Duty, err = kv.number("duty"); err != nil {
		return piopwm.Status{}, err
	}
	return st, nil
}

// do sends one command line and returns the fields of an "ok" reply.
func (c *Client) do(line string) ([]string, error) {
	if _, err := io.WriteString(c.w, line+"\n"); err != nil {
		return nil, fmt.Errorf("remote: write: %w", err)
	}
	reply, err := c.r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("remote: read: %w", err)
	}
	reply = strings.TrimRight(reply, "\r\n")
	cmd, _, _ := strings.Cut(line, " ")
	status, rest, _ := strings.Cut(reply, " ")
	switch status {
	case "ok":
		return strings.Fields(rest), nil
	case "err":
		return nil, &Error{Cmd: cmd, Msg: rest}
	}
	return nil, fmt.Errorf("%w: %q", errBadReply, reply)
}

type fieldMap map[string]string

func parseFields(fields []string) fieldMap {
	kv := make(fieldMap, len(fields))
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if ok {
			kv[k] = v
		}
	}
	return kv
}

func (kv fieldMap) number(key string) (uint32, error) {
	s, ok := kv[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", errBadReply, key)
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errBadReply, key, s)
	}
	return uint32(v), nil
}
