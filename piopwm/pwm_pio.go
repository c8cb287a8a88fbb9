package piopwm

// pwm
//
// Hand-assembled from the listing below. The two branches of the compare are
// both one instruction long so that a loop iteration is always three cycles
// whatever the outcome of the compare.
//
//	.program pwm
//	.side_set 1 opt
//	    pull noblock    side 0 ; Pull from FIFO to OSR if available, else copy X to OSR.
//	    mov x, osr             ; Copy most-recently-pulled value back to scratch X
//	    mov y, isr             ; ISR contains PWM period. Y used as counter.
//	countloop:
//	    jmp x!=y noset         ; Set pin high if X == Y, keep the two paths length matched
//	    jmp skip        side 1
//	noset:
//	    nop                    ; Single dummy cycle to keep the two paths the same length
//	skip:
//	    jmp y-- countloop      ; Loop until Y hits 0, then pull a fresh PWM value from FIFO

const (
	pwmWrapTarget = 0
	pwmWrap       = 6
	// pwmSidesetBits counts the side-set pin plus the optional-enable bit.
	pwmSidesetBits = 2
	pwmOrigin      = -1

	// A PWM cycle of Period runs pwmPrologueCycles then Period+1 countloop
	// iterations of pwmLoopCycles each. The pin is high for the last
	// Duty+1 iterations minus the compare cycle.
	pwmLoopCycles     = 3
	pwmPrologueCycles = 3
)

var pwmInstructions = [...]uint16{
	//     .wrap_target
	0x9080, //  0: pull   noblock         side 0
	0xa027, //  1: mov    x, osr
	0xa046, //  2: mov    y, isr
	0x00a5, //  3: jmp    x != y, 5
	0x1806, //  4: jmp    6               side 1
	0xa042, //  5: nop
	0x0083, //  6: jmp    y--, 3
	//     .wrap
}

// Program returns a copy of the PWM program as 16-bit instruction words,
// unrelocated. Jump targets are relative to the load offset.
func Program() []uint16 {
	prog := pwmInstructions
	return prog[:]
}
