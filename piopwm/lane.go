package piopwm

// LaneConfig describes how one state machine of the engine is wired for the
// PWM program. It is built fresh on every arm and handed to
// [Engine.ConfigureLane].
type LaneConfig struct {
	// SidesetBase is the lowest pin driven by side-set, the PWM output.
	SidesetBase Pin
	// SidesetBits is the side-set bit count including the optional-enable bit.
	SidesetBits uint8
	// SidesetOptional marks side-set as per-instruction so instructions
	// without a side-set leave the pin untouched.
	SidesetOptional bool
	// SidesetPindirs is true if side-set drives pin directions instead of levels.
	SidesetPindirs bool

	// Offset is where the program was loaded in instruction memory.
	Offset uint8
	// WrapTarget and Wrap are relative to Offset.
	WrapTarget uint8
	Wrap       uint8

	// Period is preloaded into ISR before the lane is enabled.
	Period uint32

	// Clock divider, state machine frequency = clock / (ClkDivWhole + ClkDivFrac/256).
	ClkDivWhole uint16
	ClkDivFrac  uint8
}

func pwmLaneConfig(pin Pin, offset uint8, period uint32) LaneConfig {
	return LaneConfig{
		SidesetBase:     pin,
		SidesetBits:     pwmSidesetBits,
		SidesetOptional: true,
		SidesetPindirs:  false,
		Offset:          offset,
		WrapTarget:      pwmWrapTarget,
		Wrap:            pwmWrap,
		Period:          period,
		ClkDivWhole:     1,
		ClkDivFrac:      0,
	}
}
