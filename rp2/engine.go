//go:build rp2040 || rp2350

// Package rp2 runs package piopwm on the PIO blocks of RP2040 and RP2350
// microcontrollers.
package rp2

import (
	"errors"
	"machine"
	"runtime"

	pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/swift-shade/tock/piopwm"
)

const numLanes = 4

var (
	errBadLane    = errors.New("rp2: invalid state machine index")
	errLaneInUse  = errors.New("rp2: state machine claimed by other code")
	errNoProgram  = errors.New("rp2: no program loaded")
	errNilPIO     = errors.New("rp2: nil PIO block")
	errBigProgram = errors.New("rp2: program too large")
)

// Engine is a piopwm.Engine on one PIO block. An Engine only releases the
// program and lanes it set up itself, so each Driver sharing a block gets
// its own Engine. Four PWM programs fit in instruction memory.
//
// State machines claimed by ConfigureLane stay claimed for the life of the
// Engine; nothing releases them.
type Engine struct {
	pio *pio.PIO
	// Lanes this engine claimed and armed, as bitmasks.
	armed   uint8
	claimed uint8
	offset  uint8
	length  uint8
}

var _ piopwm.Engine = (*Engine)(nil)

// NewEngine returns an Engine on block, usually pio.PIO0.
func NewEngine(block *pio.PIO) *Engine {
	return &Engine{pio: block}
}

// Init disables the lanes armed through this engine and frees the
// instruction memory of the program it loaded.
func (e *Engine) Init() error {
	if e.pio == nil {
		return errNilPIO
	}
	for i := uint8(0); i < numLanes; i++ {
		if e.armed&(1<<i) != 0 {
			e.pio.StateMachine(i).SetEnabled(false)
		}
	}
	e.armed = 0
	if e.length != 0 {
		e.pio.ClearProgramSection(e.offset, e.length)
		e.length = 0
	}
	return nil
}

// LoadProgram adds instructions to the block's instruction memory.
func (e *Engine) LoadProgram(instructions []uint16, origin int8) (uint8, error) {
	if len(instructions) > 32 {
		return 0, errBigProgram
	}
	offset, err := e.pio.AddProgram(instructions, origin)
	if err != nil {
		return 0, err
	}
	e.offset, e.length = offset, uint8(len(instructions))
	return offset, nil
}

// ConfigureLane hands cfg.SidesetBase to the PIO, initializes the state
// machine at cfg.Offset, preloads cfg.Period into ISR and enables it.
func (e *Engine) ConfigureLane(lane uint8, cfg piopwm.LaneConfig) error {
	if e.length == 0 {
		return errNoProgram
	}
	sm, err := e.claim(lane)
	if err != nil {
		return err
	}
	pin := machine.Pin(cfg.SidesetBase)
	pin.Configure(machine.PinConfig{Mode: e.pio.PinMode()})
	sm.SetPindirsConsecutive(pin, 1, true)

	smcfg := pio.DefaultStateMachineConfig()
	smcfg.SetWrap(cfg.Offset+cfg.WrapTarget, cfg.Offset+cfg.Wrap)
	smcfg.SetSidesetParams(cfg.SidesetBits, cfg.SidesetOptional, cfg.SidesetPindirs)
	smcfg.SetSidesetPins(pin)
	smcfg.SetClkDivIntFrac(cfg.ClkDivWhole, cfg.ClkDivFrac)
	sm.Init(cfg.Offset, smcfg)

	// The program never writes ISR, so the period loaded here survives
	// every cycle.
	sm.TxPut(cfg.Period)
	sm.Exec(pio.EncodePull(false, false))
	sm.Exec(pio.EncodeOut(pio.SrcDestISR, 32))
	sm.SetEnabled(true)
	e.armed |= 1 << lane
	return nil
}

// PutBlocking waits for room in the lane's TX FIFO and pushes value.
func (e *Engine) PutBlocking(lane uint8, value uint32) error {
	if lane >= numLanes {
		return errBadLane
	}
	sm := e.pio.StateMachine(lane)
	for sm.IsTxFIFOFull() {
		runtime.Gosched()
	}
	sm.TxPut(value)
	return nil
}

// ResetLane halts the lane and returns it to its power-on state.
func (e *Engine) ResetLane(lane uint8) error {
	if lane >= numLanes {
		return errBadLane
	}
	sm := e.pio.StateMachine(lane)
	sm.SetEnabled(false)
	sm.ClearFIFOs()
	sm.Restart()
	sm.ClkDivRestart()
	e.armed &^= 1 << lane
	return nil
}

// SetPin drives pin to level through the lane.
func (e *Engine) SetPin(lane uint8, pin piopwm.Pin, level bool) error {
	if lane >= numLanes {
		return errBadLane
	}
	e.pio.StateMachine(lane).SetPinsConsecutive(machine.Pin(pin), 1, level)
	return nil
}

// claim returns the state machine for lane, claiming it on first use.
func (e *Engine) claim(lane uint8) (pio.StateMachine, error) {
	if lane >= numLanes {
		return pio.StateMachine{}, errBadLane
	}
	sm := e.pio.StateMachine(lane)
	if e.claimed&(1<<lane) == 0 {
		if !sm.TryClaim() {
			return pio.StateMachine{}, errLaneInUse
		}
		e.claimed |= 1 << lane
	}
	return sm, nil
}
