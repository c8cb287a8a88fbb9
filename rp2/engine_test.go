//go:build rp2040 || rp2350

package rp2

import (
	"errors"
	"testing"

	pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/swift-shade/tock/piopwm"
)

func TestConfigureLaneWithoutProgram(t *testing.T) {
	e := NewEngine(pio.PIO1)
	sm := pio.PIO1.StateMachine(3)
	if sm.IsClaimed() {
		t.Skip("state machine 3 of PIO1 is in use")
	}
	err := e.ConfigureLane(3, piopwm.LaneConfig{SidesetBase: 2, SidesetBits: 2, Period: 10})
	if !errors.Is(err, errNoProgram) {
		t.Fatalf("ConfigureLane got!=expected: %v != %v", err, errNoProgram)
	}
	if sm.IsClaimed() {
		t.Error("failed ConfigureLane kept the state machine claimed")
	}
}

func TestEngineBadLane(t *testing.T) {
	e := NewEngine(pio.PIO1)
	if err := e.PutBlocking(numLanes, 1); !errors.Is(err, errBadLane) {
		t.Errorf("PutBlocking got!=expected: %v != %v", err, errBadLane)
	}
	if err := e.ResetLane(numLanes); !errors.Is(err, errBadLane) {
		t.Errorf("ResetLane got!=expected: %v != %v", err, errBadLane)
	}
}
