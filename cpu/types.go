// Package cpu implements a cycle-accurate micro-op pipeline engine for the
// MOS 6502 processor family: the original NMOS 6502 (with undocumented
// opcodes), the same silicon restricted to documented opcodes only, the
// WDC 65C02S, and the Rockwell 65C02. The engine decodes each opcode into
// an ordered sequence of one-cycle micro-ops and executes exactly one per
// Clock call, reproducing real silicon's bus activity cycle for cycle.
package cpu

import "fmt"

// Variant selects which member of the 6502 family a Chip emulates.
type Variant int

const (
	variantUnimplemented Variant = iota // start of valid enumeration
	// NMOS6502 is the original NMOS 6502 including the documented
	// "illegal"/undocumented opcodes.
	NMOS6502
	// NMOS6502NoIllegal is the same silicon but with illegal opcodes
	// behaving as NOPs of the correct byte length/cycle count, matching
	// how a strict "documented opcodes only" consumer wants to treat them.
	NMOS6502NoIllegal
	// WDC65C02 is the WDC 65C02S CMOS variant with the bit-manipulation
	// extensions (RMB/SMB/BBR/BBS) and the other CMOS-only opcodes.
	WDC65C02
	// Rockwell65C02 is the Rockwell 65C02: CMOS like WDC65C02 but WAI/STP
	// are demoted to documented-cycle-count NOPs instead of halting.
	Rockwell65C02
	variantMax // end of valid enumeration
)

func (v Variant) String() string {
	switch v {
	case NMOS6502:
		return "NMOS6502"
	case NMOS6502NoIllegal:
		return "NMOS6502NoIllegal"
	case WDC65C02:
		return "WDC65C02"
	case Rockwell65C02:
		return "Rockwell65C02"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// valid reports whether v is a usable variant value.
func (v Variant) valid() bool {
	return v > variantUnimplemented && v < variantMax
}

// isCMOS reports whether v is one of the 65C02 family members, which share
// BCD N/Z-from-decimal-result semantics, the extra decimal-mode cycle, the
// fixed JMP-indirect page-wrap bug, and the CMOS-only opcode overlay.
func (v Variant) isCMOS() bool {
	return v == WDC65C02 || v == Rockwell65C02
}

// Status is the execution status latched on the CPU by halt-class
// instructions or by ordinary running.
type Status int

const (
	// Running is the normal execution state.
	Running Status = iota
	// Stopped is latched by STP on CMOS variants; cleared only by Reset.
	Stopped
	// Jammed is latched by an illegal KIL/JAM opcode on NMOS; cleared only
	// by Reset.
	Jammed
	// Waiting is latched by WAI on CMOS variants; woken by any IRQ or NMI.
	Waiting
	// Bypassed records that a halt instruction (JAM/STP/WAI) was executed
	// while IgnoreHaltStopWait was set, so it was treated as a no-op
	// instead of actually halting.
	Bypassed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Jammed:
		return "Jammed"
	case Waiting:
		return "Waiting"
	case Bypassed:
		return "Bypassed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Pending is the kind of interrupt currently latched/being serviced.
type Pending int

const (
	// PendingNone means no interrupt is latched.
	PendingNone Pending = iota
	// PendingIRQ means a level-triggered IRQ is latched.
	PendingIRQ
	// PendingNMI means an edge-triggered NMI is latched.
	PendingNMI
	// PendingReset means a reset is latched; highest priority.
	PendingReset
)

func (p Pending) String() string {
	switch p {
	case PendingNone:
		return "None"
	case PendingIRQ:
		return "Irq"
	case PendingNMI:
		return "Nmi"
	case PendingReset:
		return "Reset"
	default:
		return fmt.Sprintf("Pending(%d)", int(p))
	}
}

// Status flag bitmasks within P. Bit 5 (u) is a phantom: it always reads
// as 1 and can never be cleared by a write.
const (
	FlagCarry     = uint8(0x01)
	FlagZero      = uint8(0x02)
	FlagInterrupt = uint8(0x04)
	FlagDecimal   = uint8(0x08)
	FlagBreak     = uint8(0x10)
	FlagUnused    = uint8(0x20)
	FlagOverflow  = uint8(0x40)
	FlagNegative  = uint8(0x80)
)

// Interrupt/reset vector addresses. Memory layout is little-endian: the
// low byte lives at the lower address.
const (
	NMIVectorLow   = uint16(0xFFFA)
	ResetVectorLow = uint16(0xFFFC)
	IRQVectorLow   = uint16(0xFFFE)
)

// StackBase is the fixed high byte of the stack page; SP indexes into it
// as StackBase | SP.
const StackBase = uint16(0x0100)

// InvalidCPUState is returned when the engine's internal pipeline-cursor
// bookkeeping reaches a state the pipeline tables should make impossible
// (including Step's 100-cycle guard), and by Init for an unusable ChipDef
// (invalid variant or nil Bus). It never reports a legitimate 6502
// behavior: the instruction set itself cannot produce an error.
type InvalidCPUState struct {
	Reason string
}

func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid cpu state: %s", e.Reason)
}
