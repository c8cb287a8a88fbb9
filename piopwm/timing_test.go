package piopwm

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		maxHz, hz, pct uint32
		want           Timing
	}{
		{125_000_000, 1000, 50, Timing{Period: 125000, Duty: 62500}},
		{125_000_000, 125_000_000, 100, Timing{Period: 1, Duty: 1}},
		{125_000_000, 125_000_000, 0, Timing{Period: 1, Duty: 0}},
		{125_000_000, 1, 100, Timing{Period: 125_000_000, Duty: 125_000_000}},
		{125_000_000, 1, 99, Timing{Period: 125_000_000, Duty: 123_750_000}},
		{125_000_000, 3, 33, Timing{Period: 41_666_666, Duty: 13_749_999}},
		{133_000_000, 7, 1, Timing{Period: 19_000_000, Duty: 190_000}},
	}
	for _, test := range tests {
		got, err := Compute(test.maxHz, test.hz, test.pct)
		if err != nil {
			t.Errorf("Compute(%d, %d, %d): %v", test.maxHz, test.hz, test.pct, err)
			continue
		}
		if got != test.want {
			t.Errorf("Compute(%d, %d, %d) got!=expected: %+v != %+v", test.maxHz, test.hz, test.pct, got, test.want)
		}
	}
}

func TestComputeProperties(t *testing.T) {
	const maxHz = 125_000_000
	for _, hz := range []uint32{1, 2, 3, 999, 1000, 44100, 1_000_000, maxHz / 2, maxHz - 1, maxHz} {
		for pct := uint32(0); pct <= MaxDutyCycle; pct++ {
			got, err := Compute(maxHz, hz, pct)
			if err != nil {
				t.Fatalf("Compute(%d, %d): %v", hz, pct, err)
			}
			if got.Period < 1 {
				t.Fatalf("Compute(%d, %d): zero period", hz, pct)
			}
			if got.Duty > got.Period {
				t.Fatalf("Compute(%d, %d): duty %d > period %d", hz, pct, got.Duty, got.Period)
			}
			if pct == 0 && got.Duty != 0 {
				t.Fatalf("Compute(%d, 0): duty %d", hz, got.Duty)
			}
			if pct == MaxDutyCycle && got.Duty != got.Period {
				t.Fatalf("Compute(%d, 100): duty %d != period %d", hz, got.Duty, got.Period)
			}
		}
	}
}

func TestComputeErrors(t *testing.T) {
	c := qt.New(t)
	_, err := Compute(125_000_000, 0, 50)
	c.Assert(err, qt.ErrorIs, ErrZeroFrequency)
	_, err = Compute(125_000_000, 125_000_001, 50)
	c.Assert(err, qt.ErrorIs, ErrFrequencyOutOfRange)
	_, err = Compute(125_000_000, 1000, 101)
	c.Assert(err, qt.ErrorIs, ErrDutyOutOfRange)
	_, err = Compute(0, 1, 0)
	c.Assert(err, qt.ErrorIs, ErrFrequencyOutOfRange)
}

func TestLoopPeriod(t *testing.T) {
	tests := []struct {
		periodNs uint64
		want     uint32
	}{
		{20_000_000, 833_331}, // 20ms servo frame, 2.5e6 cycles.
		{1_000_000, 41_664},
		{10_000, 414},
		{72, 1}, // 9 cycles, the shortest loop.
		{8, 1},  // Too short, raised to the shortest loop.
	}
	for _, test := range tests {
		got, err := LoopPeriod(125_000_000, test.periodNs)
		if err != nil {
			t.Errorf("LoopPeriod(%d): %v", test.periodNs, err)
			continue
		}
		if got != test.want {
			t.Errorf("LoopPeriod(%d) got!=expected: %d != %d", test.periodNs, got, test.want)
		}
		if test.want > 1 {
			// Exact to one iteration.
			if cycles := loopCycles(got); cycles+pwmLoopCycles < test.periodNs/8 || cycles > test.periodNs/8 {
				t.Errorf("LoopPeriod(%d): %d cycles per PWM cycle", test.periodNs, cycles)
			}
		}
	}

	c := qt.New(t)
	_, err := LoopPeriod(125_000_000, 0)
	c.Assert(err, qt.ErrorIs, ErrPeriodOutOfRange)
	_, err = LoopPeriod(125_000_000, 7) // Less than one cycle.
	c.Assert(err, qt.ErrorIs, ErrPeriodOutOfRange)
	_, err = LoopPeriod(125_000_000, 200_000_000_000) // 2.5e10 cycles.
	c.Assert(err, qt.ErrorIs, ErrPeriodOutOfRange)
}

func TestLoopFrequency(t *testing.T) {
	c := qt.New(t)
	c.Assert(loopCycles(1), qt.Equals, uint64(9))
	c.Assert(loopFrequency(125_000_000, 833_331), qt.Equals, uint32(50))
	c.Assert(loopFrequency(125_000_000, 41_664), qt.Equals, uint32(1000))
}

func TestTimingFrequency(t *testing.T) {
	c := qt.New(t)
	c.Assert(Timing{Period: 125000}.Frequency(125_000_000), qt.Equals, uint32(1000))
	c.Assert(Timing{}.Frequency(125_000_000), qt.Equals, uint32(0))
}

func TestScaleDuty(t *testing.T) {
	c := qt.New(t)
	c.Assert(scaleDuty(50, 100, 1000), qt.Equals, uint32(500))
	c.Assert(scaleDuty(2_500_000, 2_500_000, 125_000), qt.Equals, uint32(125_000))
	c.Assert(scaleDuty(1, 0, 10), qt.Equals, uint32(0))
}
