package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opcore/mos6502/bus"
	"github.com/opcore/mos6502/irq"
)

// testRAM is a thin flat-memory bus with a fixed reset vector.
func testRAM(resetVector uint16) *bus.RAM {
	r := bus.NewRAM(false)
	r.SetVector(ResetVectorLow, resetVector)
	return r
}

func newChip(t *testing.T, variant Variant, resetVector uint16) (*Chip, *bus.RAM) {
	t.Helper()
	r := testRAM(resetVector)
	c, err := Init(ChipDef{Variant: variant, Bus: r})
	require.NoError(t, err)
	return c, r
}

func TestLDAImmediateBinary(t *testing.T) {
	c, r := newChip(t, NMOS6502, 0x0400)
	r.LoadAt(0x0400, []uint8{0xA9, 0x42})
	c.SetA(0x00)
	c.SetP(0x24)

	cycles, err := c.Step()
	require.NoError(t, err)
	if !assert.Equal(t, 2, cycles) {
		t.Log(spew.Sdump(c.Clone()))
	}
	assert.Equal(t, uint8(0x42), c.A())
	assert.Equal(t, uint8(0x24), c.P())
	assert.False(t, c.Zero())
	assert.False(t, c.Negative())
}

func TestBCDAdcWrapNMOSVsCMOS(t *testing.T) {
	for _, tc := range []struct {
		name         string
		variant      Variant
		wantCycles   int
		wantN, wantZ bool
	}{
		{"NMOS", NMOS6502, 2, false, false},
		{"CMOS", WDC65C02, 3, false, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, r := newChip(t, tc.variant, 0x0400)
			r.LoadAt(0x0400, []uint8{0x69, 0x27}) // ADC #$27
			c.SetA(0x15)
			c.SetDecimal(true)
			c.SetCarry(false)

			cycles, err := c.Step()
			require.NoError(t, err)
			if !assert.Equal(t, tc.wantCycles, cycles) {
				t.Log(spew.Sdump(c.Clone()))
			}
			assert.Equal(t, uint8(0x42), c.A())
			assert.False(t, c.Carry())
			assert.False(t, c.Overflow())
			assert.Equal(t, tc.wantN, c.Negative())
			assert.Equal(t, tc.wantZ, c.Zero())
		})
	}
}

func TestJMPIndirectPageBoundaryBug(t *testing.T) {
	t.Run("NMOS", func(t *testing.T) {
		c, r := newChip(t, NMOS6502, 0x0400)
		r.LoadAt(0x0400, []uint8{0x6C, 0xFF, 0x02})
		r.LoadAt(0x02FF, []uint8{0x34})
		r.LoadAt(0x0300, []uint8{0x80})
		r.LoadAt(0x0200, []uint8{0x12})

		cycles, err := c.Step()
		require.NoError(t, err)
		assert.Equal(t, 5, cycles)
		assert.Equal(t, uint16(0x1234), c.PC())
	})

	t.Run("CMOS", func(t *testing.T) {
		c, r := newChip(t, WDC65C02, 0x0400)
		r.LoadAt(0x0400, []uint8{0x6C, 0xFF, 0x02})
		r.LoadAt(0x02FF, []uint8{0x34})
		r.LoadAt(0x0300, []uint8{0x80})
		r.LoadAt(0x0200, []uint8{0x12})

		cycles, err := c.Step()
		require.NoError(t, err)
		assert.Equal(t, 6, cycles)
		assert.Equal(t, uint16(0x8034), c.PC())
	})
}

func TestBranchAcrossPage(t *testing.T) {
	t.Run("taken with page cross", func(t *testing.T) {
		c, r := newChip(t, NMOS6502, 0x04F0)
		r.LoadAt(0x04F0, []uint8{0xF0, 0x10}) // BEQ +16
		c.SetP(c.P() | FlagZero)

		cycles, err := c.Step()
		require.NoError(t, err)
		assert.Equal(t, 4, cycles)
		assert.Equal(t, uint16(0x0502), c.PC())
	})

	t.Run("not taken", func(t *testing.T) {
		c, r := newChip(t, NMOS6502, 0x04F0)
		r.LoadAt(0x04F0, []uint8{0xF0, 0x10})
		c.SetP(c.P() &^ FlagZero)

		cycles, err := c.Step()
		require.NoError(t, err)
		assert.Equal(t, 2, cycles)
		assert.Equal(t, uint16(0x04F2), c.PC())
	})
}

func TestJSRRTSRoundTrip(t *testing.T) {
	c, r := newChip(t, NMOS6502, 0x0400)
	r.LoadAt(0x0400, []uint8{0x20, 0x00, 0x80}) // JSR $8000
	r.LoadAt(0x8000, []uint8{0x60})             // RTS
	c.SetSP(0xFF)

	jsrCycles, err := c.Step()
	require.NoError(t, err)
	rtsCycles, err := c.Step()
	require.NoError(t, err)

	total := jsrCycles + rtsCycles
	if !assert.Equal(t, 12, total) {
		t.Log(spew.Sdump(c.Clone()))
	}
	assert.Equal(t, uint16(0x0403), c.PC())
	assert.Equal(t, uint8(0xFF), c.SP())
	assert.Equal(t, uint8(0x04), r.Peek(0x01FF))
	assert.Equal(t, uint8(0x02), r.Peek(0x01FE))
}

func TestIRQServicingWithInterruptsEnabled(t *testing.T) {
	// Signal the IRQ first, then step: the NOP still executes (the line
	// is only sampled during its cycles), and the service sequence runs
	// at the following instruction boundary.
	c, r := newChip(t, NMOS6502, 0x0400)
	r.LoadAt(0x0400, []uint8{0xEA}) // NOP
	r.SetVector(IRQVectorLow, 0x9000)
	c.SetSP(0xFD)
	c.SetInterrupt(false)
	c.SignalIRQ()

	nopCycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, 2, nopCycles)
	assert.Equal(t, uint16(0x0401), c.PC(), "the NOP ran before the IRQ was honored")

	irqCycles, err := c.Step()
	require.NoError(t, err)

	assert.Equal(t, 7, irqCycles)
	assert.Equal(t, uint16(0x9000), c.PC())
	assert.Equal(t, uint8(0xFA), c.SP())
	assert.True(t, c.Interrupt())
}

func TestIRQDeassertedBeforeRecognitionIsNotServiced(t *testing.T) {
	// Level-triggered: a line that drops again before the boundary poll
	// withdraws its sampled recognition.
	c, r := newChip(t, NMOS6502, 0x0400)
	r.LoadAt(0x0400, []uint8{0xEA, 0xEA}) // NOP, NOP
	r.SetVector(IRQVectorLow, 0x9000)
	c.SetInterrupt(false)
	c.SignalIRQ()

	// First cycle of the NOP samples the asserted line.
	done, err := c.Clock()
	require.NoError(t, err)
	require.False(t, done)
	c.ClearIRQ()
	// The NOP's final cycle re-samples the now-deasserted line.
	_, err = c.Clock()
	require.NoError(t, err)

	_, err = c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0402), c.PC(), "second NOP ran, no service")
}

func TestResetVectorsIn(t *testing.T) {
	c, _ := newChip(t, NMOS6502, 0xC000)
	assert.Equal(t, uint16(0xC000), c.PC())
	assert.Equal(t, uint8(0xFD), c.SP())
	assert.True(t, c.Interrupt())
}

func TestJamHaltsUntilReset(t *testing.T) {
	c, r := newChip(t, NMOS6502, 0x0400)
	r.LoadAt(0x0400, []uint8{0x02}) // JAM

	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, Jammed, c.Status())
	assert.Equal(t, uint8(0x02), c.HaltOpcode())

	// Further clocks do nothing but consume cycles while jammed.
	done, err := c.Clock()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, Jammed, c.Status())

	c.SignalReset()
	require.NoError(t, c.Reset())
	assert.Equal(t, Running, c.Status())
}

func TestIgnoreHaltStopWaitBypassesJam(t *testing.T) {
	r := testRAM(0x0400)
	r.LoadAt(0x0400, []uint8{0x02, 0xEA}) // JAM, then NOP
	c, err := Init(ChipDef{Variant: NMOS6502, Bus: r, IgnoreHaltStopWait: true})
	require.NoError(t, err)

	_, err = c.Step()
	require.NoError(t, err)
	assert.Equal(t, Bypassed, c.Status())
}

func TestWAIWakesOnMaskedIRQWithoutServicing(t *testing.T) {
	c, r := newChip(t, WDC65C02, 0x0400)
	r.LoadAt(0x0400, []uint8{0xCB, 0xEA}) // WAI, then NOP
	c.SetInterrupt(true)

	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, Waiting, c.Status())

	c.SignalIRQ()
	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, Running, c.Status())
	assert.Equal(t, 2, cycles) // the NOP runs normally; IRQ isn't serviced
	assert.True(t, c.Interrupt())
}

func TestRockwellDemotesWaiStpToNop(t *testing.T) {
	c, r := newChip(t, Rockwell65C02, 0x0400)
	// Each is a 2-byte NOP on Rockwell; the second byte is operand, not
	// opcode.
	r.LoadAt(0x0400, []uint8{0xCB, 0x00, 0xDB, 0x00})

	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, Running, c.Status())
	assert.Equal(t, 2, cycles)
	assert.Equal(t, uint16(0x0402), c.PC())

	cycles, err = c.Step()
	require.NoError(t, err)
	assert.Equal(t, Running, c.Status())
	assert.Equal(t, 2, cycles)
	assert.Equal(t, uint16(0x0404), c.PC())
}

func TestBRKClearsDecimalOnlyOnCMOS(t *testing.T) {
	t.Run("NMOS leaves D set", func(t *testing.T) {
		c, r := newChip(t, NMOS6502, 0x0400)
		r.LoadAt(0x0400, []uint8{0x00})
		r.SetVector(IRQVectorLow, 0x9000)
		c.SetDecimal(true)

		_, err := c.Step()
		require.NoError(t, err)
		assert.True(t, c.Decimal())
	})

	t.Run("CMOS clears D", func(t *testing.T) {
		c, r := newChip(t, WDC65C02, 0x0400)
		r.LoadAt(0x0400, []uint8{0x00})
		r.SetVector(IRQVectorLow, 0x9000)
		c.SetDecimal(true)

		_, err := c.Step()
		require.NoError(t, err)
		assert.False(t, c.Decimal())
	})
}

func TestExternalInterruptSenders(t *testing.T) {
	// A host can wire irq.Sender implementations into ChipDef instead of
	// using the Signal API; both sources feed the same boundary poll.
	line := &irq.Level{}
	edge := &irq.Edge{}
	r := testRAM(0x0400)
	r.LoadAt(0x0400, []uint8{0xEA, 0xEA})
	r.SetVector(IRQVectorLow, 0x9000)
	r.SetVector(NMIVectorLow, 0x9100)
	c, err := Init(ChipDef{Variant: NMOS6502, Bus: r, Irq: line, Nmi: edge})
	require.NoError(t, err)
	c.SetInterrupt(false)

	line.Assert()
	_, err = c.Step() // NOP; the wired sender is sampled during it
	require.NoError(t, err)
	_, err = c.Step() // IRQ service
	require.NoError(t, err)
	assert.Equal(t, uint16(0x9000), c.PC())
	line.Clear()

	r.LoadAt(0x9000, []uint8{0xEA})
	edge.Signal()
	_, err = c.Step() // NOP in the handler samples the edge
	require.NoError(t, err)
	_, err = c.Step() // NMI service; Consume clears the edge
	require.NoError(t, err)
	assert.Equal(t, uint16(0x9100), c.PC())
	assert.False(t, edge.Raised())
}

func TestRunMayEndMidInstruction(t *testing.T) {
	c, r := newChip(t, NMOS6502, 0x0400)
	r.LoadAt(0x0400, []uint8{0x20, 0x00, 0x80}) // JSR $8000 (6 cycles)

	ran, err := c.Run(4)
	require.NoError(t, err)
	assert.Equal(t, 4, ran)
	assert.False(t, c.InstructionComplete())

	ran, err = c.Run(2)
	require.NoError(t, err)
	assert.Equal(t, 2, ran)
	assert.True(t, c.InstructionComplete())
	assert.Equal(t, uint16(0x8000), c.PC())
}

func TestStepEnforcesSafetyBound(t *testing.T) {
	c, _ := newChip(t, NMOS6502, 0x0400)
	// Install a pipeline whose only op undoes Clock's cursor advance, so
	// the instruction never completes; no real table entry can trigger
	// this path, it exists purely to exercise the 100-cycle guard (a
	// library-level bug guard, not a CPU property).
	c.s.installPipeline([]MicroOp{func(s *State, b Bus) { s.cursor-- }})

	cycles, err := c.Step()
	var invalid InvalidCPUState
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 100, cycles)
}
