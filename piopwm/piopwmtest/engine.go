// Package piopwmtest provides an in-memory engine and clock for testing code
// built on package piopwm without hardware.
package piopwmtest

import (
	"errors"
	"fmt"

	"github.com/swift-shade/tock/piopwm"
)

const (
	// NumLanes is the number of state machines of the fake engine.
	NumLanes = 4
	// ProgramSize is the number of instruction slots of the fake engine.
	ProgramSize = 32
	// FIFODepth is the TX FIFO depth of each lane.
	FIFODepth = 4
)

// Engine errors.
var (
	ErrOutOfProgramSpace = errors.New("piopwmtest: out of program space")
	ErrBadLane           = errors.New("piopwmtest: invalid lane")
	ErrFIFOFull          = errors.New("piopwmtest: TX FIFO full")
)

// Clock is a ClockSource reporting the same frequency for every domain.
type Clock uint32

// Frequency implements piopwm.ClockSource.
func (c Clock) Frequency(piopwm.ClockDomain) uint32 { return uint32(c) }

// Lane is the observable state of one state machine.
type Lane struct {
	Config  piopwm.LaneConfig
	Enabled bool
	// ISR holds the period preloaded by ConfigureLane.
	ISR uint32
	// FIFO holds values pushed and not yet consumed.
	FIFO []uint32
}

// Engine is a fake piopwm.Engine recording every call. Fail* fields inject
// errors into the matching method.
type Engine struct {
	Calls []string
	Lanes [NumLanes]Lane
	// Pins holds the last level forced with SetPin.
	Pins map[piopwm.Pin]bool
	// Memory is the instruction memory, relocated.
	Memory [ProgramSize]uint16

	FailInit      error
	FailLoad      error
	FailConfigure error
	FailPut       error
	FailReset     error
	FailSetPin    error

	usedSpaceMask uint32
	loadedOffset  uint8
	loadedLen     uint8
	armed         uint8
}

// NewEngine returns an empty fake engine.
func NewEngine() *Engine {
	return &Engine{Pins: make(map[piopwm.Pin]bool)}
}

// Init disables the lanes enabled by ConfigureLane and frees the program
// loaded by the previous LoadProgram. Lanes enabled by the test directly are
// left alone, like lanes owned by other code on hardware.
func (e *Engine) Init() error {
	e.Calls = append(e.Calls, "init")
	if e.FailInit != nil {
		return e.FailInit
	}
	for i := range e.Lanes {
		if e.armed&(1<<i) != 0 {
			e.Lanes[i].Enabled = false
		}
	}
	e.armed = 0
	if e.loadedLen != 0 {
		e.usedSpaceMask &^= uint32((1<<e.loadedLen)-1) << e.loadedOffset
		e.loadedLen = 0
	}
	return nil
}

// LoadProgram places instructions at the highest free offset, relocating
// jump targets.
func (e *Engine) LoadProgram(instructions []uint16, origin int8) (uint8, error) {
	e.Calls = append(e.Calls, "load")
	if e.FailLoad != nil {
		return 0, e.FailLoad
	}
	offset := e.findOffset(instructions, origin)
	if offset < 0 {
		return 0, ErrOutOfProgramSpace
	}
	for i, instr := range instructions {
		if instr&0xe000 == 0 { // jmp
			instr += uint16(offset)
		}
		e.Memory[offset+i] = instr
	}
	n := uint8(len(instructions))
	e.usedSpaceMask |= uint32((1<<n)-1) << uint8(offset)
	e.loadedOffset, e.loadedLen = uint8(offset), n
	return uint8(offset), nil
}

func (e *Engine) findOffset(instructions []uint16, origin int8) int {
	n := len(instructions)
	if n == 0 || n > ProgramSize {
		return -1
	}
	mask := uint32((1 << n) - 1)
	if origin >= 0 {
		if int(origin) > ProgramSize-n || e.usedSpaceMask&(mask<<origin) != 0 {
			return -1
		}
		return int(origin)
	}
	for i := ProgramSize - n; i >= 0; i-- {
		if e.usedSpaceMask&(mask<<i) == 0 {
			return i
		}
	}
	return -1
}

// ConfigureLane stores cfg, clears the FIFO, preloads the period and enables
// the lane.
func (e *Engine) ConfigureLane(lane uint8, cfg piopwm.LaneConfig) error {
	e.Calls = append(e.Calls, fmt.Sprintf("configure %d", lane))
	if e.FailConfigure != nil {
		return e.FailConfigure
	}
	if lane >= NumLanes {
		return ErrBadLane
	}
	e.Lanes[lane] = Lane{Config: cfg, Enabled: true, ISR: cfg.Period}
	e.armed |= 1 << lane
	return nil
}

// PutBlocking appends value to the lane's FIFO. A fake cannot wait for the
// state machine to drain the FIFO so a full FIFO is reported as ErrFIFOFull.
func (e *Engine) PutBlocking(lane uint8, value uint32) error {
	e.Calls = append(e.Calls, fmt.Sprintf("put %d %d", lane, value))
	if e.FailPut != nil {
		return e.FailPut
	}
	if lane >= NumLanes {
		return ErrBadLane
	}
	l := &e.Lanes[lane]
	if len(l.FIFO) >= FIFODepth {
		return ErrFIFOFull
	}
	l.FIFO = append(l.FIFO, value)
	return nil
}

// ResetLane disables the lane and clears its FIFO and ISR.
func (e *Engine) ResetLane(lane uint8) error {
	e.Calls = append(e.Calls, fmt.Sprintf("reset %d", lane))
	if e.FailReset != nil {
		return e.FailReset
	}
	if lane >= NumLanes {
		return ErrBadLane
	}
	l := &e.Lanes[lane]
	l.Enabled = false
	l.FIFO = nil
	l.ISR = 0
	e.armed &^= 1 << lane
	return nil
}

// SetPin records level for pin.
func (e *Engine) SetPin(lane uint8, pin piopwm.Pin, level bool) error {
	e.Calls = append(e.Calls, fmt.Sprintf("setpin %d %d %t", lane, pin, level))
	if e.FailSetPin != nil {
		return e.FailSetPin
	}
	if lane >= NumLanes {
		return ErrBadLane
	}
	e.Pins[pin] = level
	return nil
}

// Duty returns the most recent value queued on lane, or false if the FIFO is
// empty.
func (e *Engine) Duty(lane uint8) (uint32, bool) {
	fifo := e.Lanes[lane].FIFO
	if len(fifo) == 0 {
		return 0, false
	}
	return fifo[len(fifo)-1], true
}

// Reset clears the recorded calls.
func (e *Engine) Reset() { e.Calls = e.Calls[:0] }
