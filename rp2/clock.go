//go:build rp2040 || rp2350

package rp2

import (
	"machine"

	pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/swift-shade/tock/piopwm"
)

// Clock reports the running clock frequencies. TinyGo feeds clk_peri from
// clk_sys, so both domains report the CPU frequency.
type Clock struct{}

var _ piopwm.ClockSource = Clock{}

// Frequency implements piopwm.ClockSource.
func (Clock) Frequency(piopwm.ClockDomain) uint32 {
	return machine.CPUFrequency()
}

// NewDriver returns a piopwm.Driver on lane of block with its own Engine,
// clocked from Clock unless cfg.Clock is set.
func NewDriver(block *pio.PIO, lane uint8, cfg piopwm.Config) *piopwm.Driver {
	cfg.Lane = lane
	if cfg.Clock == nil {
		cfg.Clock = Clock{}
	}
	return piopwm.New(NewEngine(block), cfg)
}
