package piopwm

import "math"

// MaxDutyCycle is the full-scale duty value of the percentage contract.
const MaxDutyCycle = 100

const nanosecondsInSecond = 1_000_000_000

// Timing is the pair of values the PWM program consumes: the number of
// state machine loop iterations per PWM cycle and how many of them the
// output is held high.
type Timing struct {
	Period uint32
	Duty   uint32
}

// Compute returns the Timing that produces frequencyHz with dutyPercent
// percent duty on a state machine clocked at maxHz.
//
//	Period = maxHz / frequencyHz
//	Duty   = dutyPercent * Period / 100
func Compute(maxHz, frequencyHz, dutyPercent uint32) (Timing, error) {
	switch {
	case frequencyHz == 0:
		return Timing{}, ErrZeroFrequency
	case frequencyHz > maxHz:
		return Timing{}, ErrFrequencyOutOfRange
	case dutyPercent > MaxDutyCycle:
		return Timing{}, ErrDutyOutOfRange
	}
	period := maxHz / frequencyHz
	// Product overflows 32 bits for periods above ~42 million ticks.
	duty := uint64(dutyPercent) * uint64(period) / MaxDutyCycle
	return Timing{Period: period, Duty: uint32(duty)}, nil
}

// LoopPeriod returns the Period that makes the program repeat every
// periodNs nanoseconds on a state machine clocked at maxHz. Unlike Compute,
// it accounts for the cycles each loop iteration takes, so the result is
// exact to within one iteration. Periods too short for the program are
// raised to a Period of 1.
func LoopPeriod(maxHz uint32, periodNs uint64) (uint32, error) {
	if periodNs == 0 || periodNs > math.MaxUint64/uint64(math.MaxUint32) {
		return 0, ErrPeriodOutOfRange
	}
	cycles := uint64(maxHz) * periodNs / nanosecondsInSecond
	if cycles == 0 {
		return 0, ErrPeriodOutOfRange
	}
	iterations := cycles / pwmLoopCycles
	overhead := uint64(pwmPrologueCycles/pwmLoopCycles + 1)
	if iterations <= overhead {
		return 1, nil
	}
	period := iterations - overhead
	if period > math.MaxUint32 {
		return 0, ErrPeriodOutOfRange
	}
	return uint32(period), nil
}

// loopCycles returns the state machine cycles of one PWM cycle of period.
func loopCycles(period uint32) uint64 {
	return pwmPrologueCycles + pwmLoopCycles*(uint64(period)+1)
}

// loopFrequency returns the PWM frequency in Hz that period produces at maxHz.
func loopFrequency(maxHz, period uint32) uint32 {
	return uint32(uint64(maxHz) / loopCycles(period))
}

// Frequency returns the PWM frequency in Hz that t produces at maxHz.
func (t Timing) Frequency(maxHz uint32) uint32 {
	if t.Period == 0 {
		return 0
	}
	return maxHz / t.Period
}

func (t Timing) validate() error {
	if t.Period == 0 {
		return ErrZeroPeriod
	} else if t.Duty > t.Period {
		return ErrDutyOutOfRange
	}
	return nil
}

// scaleDuty returns value scaled from a full scale of from to a full scale of to.
func scaleDuty(value, from, to uint32) uint32 {
	if from == 0 {
		return 0
	}
	return uint32(uint64(value) * uint64(to) / uint64(from))
}
