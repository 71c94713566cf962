package cpu

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opcore/mos6502/bus"
)

// opcodeCycles drives the documented-cycle-count sweeps below: each
// opcode is run once at $0400 on a zero-filled bus with X=Y=0 (so no
// indexed access crosses a page) and reset-default flags (I=1, all else
// clear), and must complete in exactly the documented base cycle count.
type opcodeCycles struct {
	op     uint8
	cycles int
}

func runCycleSweep(t *testing.T, variant Variant, cases []opcodeCycles) {
	t.Helper()
	for _, tc := range cases {
		t.Run(fmt.Sprintf("$%02X", tc.op), func(t *testing.T) {
			c, r := newChip(t, variant, 0x0400)
			r.LoadAt(0x0400, []uint8{tc.op, 0x00, 0x00})
			c.SetX(0x00)
			c.SetY(0x00)

			cycles, err := c.Step()
			require.NoError(t, err)
			if !assert.Equal(t, tc.cycles, cycles) {
				t.Log(spew.Sdump(c.Clone()))
			}
		})
	}
}

func TestDocumentedOpcodeCycleCountsNMOS(t *testing.T) {
	runCycleSweep(t, NMOS6502, []opcodeCycles{
		// LDA
		{0xA9, 2}, {0xA5, 3}, {0xB5, 4}, {0xAD, 4}, {0xBD, 4}, {0xB9, 4}, {0xA1, 6}, {0xB1, 5},
		// LDX
		{0xA2, 2}, {0xA6, 3}, {0xB6, 4}, {0xAE, 4}, {0xBE, 4},
		// LDY
		{0xA0, 2}, {0xA4, 3}, {0xB4, 4}, {0xAC, 4}, {0xBC, 4},
		// STA
		{0x85, 3}, {0x95, 4}, {0x8D, 4}, {0x9D, 5}, {0x99, 5}, {0x81, 6}, {0x91, 6},
		// STX / STY
		{0x86, 3}, {0x96, 4}, {0x8E, 4}, {0x84, 3}, {0x94, 4}, {0x8C, 4},
		// ADC
		{0x69, 2}, {0x65, 3}, {0x75, 4}, {0x6D, 4}, {0x7D, 4}, {0x79, 4}, {0x61, 6}, {0x71, 5},
		// SBC
		{0xE9, 2}, {0xE5, 3}, {0xF5, 4}, {0xED, 4}, {0xFD, 4}, {0xF9, 4}, {0xE1, 6}, {0xF1, 5},
		// AND
		{0x29, 2}, {0x25, 3}, {0x35, 4}, {0x2D, 4}, {0x3D, 4}, {0x39, 4}, {0x21, 6}, {0x31, 5},
		// ORA
		{0x09, 2}, {0x05, 3}, {0x15, 4}, {0x0D, 4}, {0x1D, 4}, {0x19, 4}, {0x01, 6}, {0x11, 5},
		// EOR
		{0x49, 2}, {0x45, 3}, {0x55, 4}, {0x4D, 4}, {0x5D, 4}, {0x59, 4}, {0x41, 6}, {0x51, 5},
		// CMP
		{0xC9, 2}, {0xC5, 3}, {0xD5, 4}, {0xCD, 4}, {0xDD, 4}, {0xD9, 4}, {0xC1, 6}, {0xD1, 5},
		// CPX / CPY
		{0xE0, 2}, {0xE4, 3}, {0xEC, 4}, {0xC0, 2}, {0xC4, 3}, {0xCC, 4},
		// BIT
		{0x24, 3}, {0x2C, 4},
		// ASL
		{0x0A, 2}, {0x06, 5}, {0x16, 6}, {0x0E, 6}, {0x1E, 7},
		// LSR
		{0x4A, 2}, {0x46, 5}, {0x56, 6}, {0x4E, 6}, {0x5E, 7},
		// ROL
		{0x2A, 2}, {0x26, 5}, {0x36, 6}, {0x2E, 6}, {0x3E, 7},
		// ROR
		{0x6A, 2}, {0x66, 5}, {0x76, 6}, {0x6E, 6}, {0x7E, 7},
		// INC / DEC
		{0xE6, 5}, {0xF6, 6}, {0xEE, 6}, {0xFE, 7},
		{0xC6, 5}, {0xD6, 6}, {0xCE, 6}, {0xDE, 7},
		// Register transfers and in/decrements
		{0xE8, 2}, {0xC8, 2}, {0xCA, 2}, {0x88, 2},
		{0xAA, 2}, {0x8A, 2}, {0xA8, 2}, {0x98, 2}, {0xBA, 2}, {0x9A, 2},
		// Stack
		{0x48, 3}, {0x68, 4}, {0x08, 3}, {0x28, 4},
		// Flags
		{0x18, 2}, {0x38, 2}, {0x58, 2}, {0x78, 2}, {0xB8, 2}, {0xD8, 2}, {0xF8, 2},
		{0xEA, 2},
		// Control flow
		{0x00, 7}, {0x20, 6}, {0x60, 6}, {0x40, 6}, {0x4C, 3}, {0x6C, 5},
		// Branches with reset-default flags (C=Z=N=V=0) and offset $00:
		// taken same-page costs 3, not taken 2.
		{0x90, 3}, {0xB0, 2}, // BCC taken, BCS not
		{0xD0, 3}, {0xF0, 2}, // BNE taken, BEQ not
		{0x10, 3}, {0x30, 2}, // BPL taken, BMI not
		{0x50, 3}, {0x70, 2}, // BVC taken, BVS not
	})
}

func TestIllegalOpcodeCycleCountsNMOS(t *testing.T) {
	sweep := []opcodeCycles{
		// LAX / SAX
		{0xA7, 3}, {0xB7, 4}, {0xAF, 4}, {0xBF, 4}, {0xA3, 6}, {0xB3, 5},
		{0x87, 3}, {0x97, 4}, {0x8F, 4}, {0x83, 6},
		// The RMW combos share their documented cousins' shapes.
		{0xC7, 5}, {0xD7, 6}, {0xCF, 6}, {0xDF, 7}, {0xDB, 7}, {0xC3, 8}, {0xD3, 8}, // DCP
		{0xE7, 5}, {0xF7, 6}, {0xEF, 6}, {0xFF, 7}, {0xFB, 7}, {0xE3, 8}, {0xF3, 8}, // ISC
		{0x07, 5}, {0x17, 6}, {0x0F, 6}, {0x1F, 7}, {0x1B, 7}, {0x03, 8}, {0x13, 8}, // SLO
		{0x27, 5}, {0x37, 6}, {0x2F, 6}, {0x3F, 7}, {0x3B, 7}, {0x23, 8}, {0x33, 8}, // RLA
		{0x47, 5}, {0x57, 6}, {0x4F, 6}, {0x5F, 7}, {0x5B, 7}, {0x43, 8}, {0x53, 8}, // SRE
		{0x67, 5}, {0x77, 6}, {0x6F, 6}, {0x7F, 7}, {0x7B, 7}, {0x63, 8}, {0x73, 8}, // RRA
		// Immediate-mode combos
		{0x0B, 2}, {0x2B, 2}, {0x4B, 2}, {0x6B, 2}, {0xCB, 2}, {0x8B, 2}, {0xAB, 2}, {0xEB, 2},
		// LAS / unstable stores
		{0xBB, 4}, {0x9F, 5}, {0x93, 6}, {0x9E, 5}, {0x9C, 5}, {0x9B, 5},
		// Multi-byte NOPs
		{0x1A, 2}, {0x3A, 2}, {0x5A, 2}, {0x7A, 2}, {0xDA, 2}, {0xFA, 2},
		{0x80, 2}, {0x82, 2}, {0x89, 2}, {0xC2, 2}, {0xE2, 2},
		{0x04, 3}, {0x44, 3}, {0x64, 3},
		{0x14, 4}, {0x34, 4}, {0x54, 4}, {0x74, 4}, {0xD4, 4}, {0xF4, 4},
		{0x0C, 4}, {0x1C, 4}, {0x3C, 4}, {0x5C, 4}, {0x7C, 4}, {0xDC, 4}, {0xFC, 4},
	}
	// Both NMOS variants share every illegal opcode's byte length and
	// cycle count; only the side effects differ.
	t.Run("NMOS6502", func(t *testing.T) { runCycleSweep(t, NMOS6502, sweep) })
	t.Run("NMOS6502NoIllegal", func(t *testing.T) { runCycleSweep(t, NMOS6502NoIllegal, sweep) })
}

func TestCMOSOpcodeCycleCounts(t *testing.T) {
	runCycleSweep(t, WDC65C02, []opcodeCycles{
		// Changed from NMOS: the indirect jump fix costs a cycle.
		{0x6C, 6},
		// New addressing mode (zp) on the ALU ops.
		{0x12, 5}, {0x32, 5}, {0x52, 5}, {0x72, 5}, {0xB2, 5}, {0xD2, 5}, {0xF2, 5}, {0x92, 5},
		// New opcodes.
		{0x80, 3},                                  // BRA, always taken
		{0xDA, 3}, {0xFA, 4}, {0x5A, 3}, {0x7A, 4}, // PHX/PLX/PHY/PLY
		{0x64, 3}, {0x74, 4}, {0x9C, 4}, {0x9E, 5}, // STZ
		{0x04, 5}, {0x0C, 6}, {0x14, 5}, {0x1C, 6}, // TSB/TRB
		{0x1A, 2}, {0x3A, 2}, // INC A / DEC A
		{0x89, 2}, {0x34, 4}, {0x3C, 4}, // BIT additions
		{0x7C, 6}, // JMP (abs,X)
		// Shift abs,X drops to 6 without a page cross; INC/DEC don't.
		{0x1E, 6}, {0x5E, 6}, {0x3E, 6}, {0x7E, 6}, {0xFE, 7}, {0xDE, 7},
		// RMB0/SMB0 and one of each branch-on-bit: zero-filled memory
		// means BBR branches (bit clear) and BBS doesn't.
		{0x07, 5}, {0x87, 5},
		{0x0F, 6}, {0x8F, 5},
		// WAI/STP latch their halt state on the third cycle.
		{0xCB, 3}, {0xDB, 3},
	})
}

func TestIllegalOpcodeSemantics(t *testing.T) {
	// Each case runs one illegal opcode on NMOS6502 with a small fixture
	// and checks the documented combined effect.
	type fixture struct {
		name    string
		program []uint8
		setup   func(c *Chip, r *bus.RAM)
		check   func(t *testing.T, c *Chip, r *bus.RAM)
	}
	for _, tc := range []fixture{
		{
			"LAX loads A and X together",
			[]uint8{0xA7, 0x10},
			func(c *Chip, r *bus.RAM) { r.Write(0x0010, 0x8F) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x8F), c.A())
				assert.Equal(t, uint8(0x8F), c.X())
				assert.True(t, c.Negative())
			},
		},
		{
			"SAX stores A AND X without flags",
			[]uint8{0x87, 0x10},
			func(c *Chip, r *bus.RAM) { c.SetA(0xF0); c.SetX(0x3C); c.SetP(FlagUnused) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x30), r.Peek(0x0010))
				assert.Equal(t, FlagUnused, c.P(), "no flags affected")
			},
		},
		{
			"DCP decrements then compares",
			[]uint8{0xC7, 0x10},
			func(c *Chip, r *bus.RAM) { r.Write(0x0010, 0x43); c.SetA(0x42) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x42), r.Peek(0x0010))
				assert.True(t, c.Zero(), "A equals decremented memory")
				assert.True(t, c.Carry())
			},
		},
		{
			"ISC increments then subtracts",
			[]uint8{0xE7, 0x10},
			func(c *Chip, r *bus.RAM) { r.Write(0x0010, 0x0F); c.SetA(0x20); c.SetCarry(true) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x10), r.Peek(0x0010))
				assert.Equal(t, uint8(0x10), c.A())
			},
		},
		{
			"SLO shifts then ORs",
			[]uint8{0x07, 0x10},
			func(c *Chip, r *bus.RAM) { r.Write(0x0010, 0x81); c.SetA(0x01) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x02), r.Peek(0x0010))
				assert.Equal(t, uint8(0x03), c.A())
				assert.True(t, c.Carry(), "carry from the shifted-out bit 7")
			},
		},
		{
			"RLA rotates then ANDs",
			[]uint8{0x27, 0x10},
			func(c *Chip, r *bus.RAM) { r.Write(0x0010, 0x40); c.SetA(0xFF); c.SetCarry(true) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x81), r.Peek(0x0010))
				assert.Equal(t, uint8(0x81), c.A())
			},
		},
		{
			"SRE shifts right then EORs",
			[]uint8{0x47, 0x10},
			func(c *Chip, r *bus.RAM) { r.Write(0x0010, 0x02); c.SetA(0xFF) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x01), r.Peek(0x0010))
				assert.Equal(t, uint8(0xFE), c.A())
			},
		},
		{
			"RRA rotates right then adds",
			[]uint8{0x67, 0x10},
			func(c *Chip, r *bus.RAM) { r.Write(0x0010, 0x02); c.SetA(0x10) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x01), r.Peek(0x0010))
				assert.Equal(t, uint8(0x11), c.A())
			},
		},
		{
			"ANC copies result bit 7 into carry",
			[]uint8{0x0B, 0x80},
			func(c *Chip, r *bus.RAM) { c.SetA(0xFF) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x80), c.A())
				assert.True(t, c.Carry())
				assert.True(t, c.Negative())
			},
		},
		{
			"ALR ANDs then shifts right",
			[]uint8{0x4B, 0x03},
			func(c *Chip, r *bus.RAM) { c.SetA(0xFF) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x01), c.A())
				assert.True(t, c.Carry(), "carry from the pre-shift bit 0")
			},
		},
		{
			"AXS sets X to (A AND X) minus imm",
			[]uint8{0xCB, 0x02},
			func(c *Chip, r *bus.RAM) { c.SetA(0x0F); c.SetX(0x07) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x05), c.X())
				assert.True(t, c.Carry())
			},
		},
		{
			"LAS loads A X and SP from memory AND SP",
			[]uint8{0xBB, 0x00, 0x03},
			func(c *Chip, r *bus.RAM) { r.Write(0x0300, 0x8F); c.SetSP(0xF0) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x80), c.A())
				assert.Equal(t, uint8(0x80), c.X())
				assert.Equal(t, uint8(0x80), c.SP())
			},
		},
		{
			"ANE mixes the magic constant",
			[]uint8{0x8B, 0xFF},
			func(c *Chip, r *bus.RAM) { c.SetA(0x00); c.SetX(0xFF) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				// (A | $EE) & X & imm
				assert.Equal(t, uint8(0xEE), c.A())
			},
		},
		{
			"LXA mixes the magic constant into A and X",
			[]uint8{0xAB, 0xFF},
			func(c *Chip, r *bus.RAM) { c.SetA(0x00); c.SetX(0x00) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0xEE), c.A())
				assert.Equal(t, uint8(0xEE), c.X())
			},
		},
		{
			"SHA stores A AND X AND high-plus-one",
			[]uint8{0x9F, 0x10, 0x03},
			func(c *Chip, r *bus.RAM) { c.SetA(0xFF); c.SetX(0xFF); c.SetY(0x02) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x04), r.Peek(0x0312))
			},
		},
		{
			"TAS loads SP from A AND X then stores like SHA",
			[]uint8{0x9B, 0x10, 0x03},
			func(c *Chip, r *bus.RAM) { c.SetA(0xF7); c.SetX(0x7F); c.SetY(0x02) },
			func(t *testing.T, c *Chip, r *bus.RAM) {
				assert.Equal(t, uint8(0x77), c.SP())
				assert.Equal(t, uint8(0x77)&0x04, r.Peek(0x0312))
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, r := newChip(t, NMOS6502, 0x0400)
			r.LoadAt(0x0400, tc.program)
			c.SetA(0x00)
			c.SetX(0x00)
			c.SetY(0x00)
			tc.setup(c, r)

			_, err := c.Step()
			require.NoError(t, err)
			tc.check(t, c, r)
		})
	}
}
