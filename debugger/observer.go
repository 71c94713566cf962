// Package debugger provides an optional instruction-boundary observer for
// the cpu package: a thin wrapper that snapshots CPU state before and
// after each instruction and reports what changed. It is a host-side
// convenience built entirely on cpu's exported surface, not part of the
// core engine itself.
package debugger

import (
	"fmt"

	"github.com/go-test/deep"
	"github.com/opcore/mos6502/cpu"
)

// Report describes one instruction's execution: which opcode ran, where
// it was fetched from, how many cycles it took, and which exported State
// fields changed.
type Report struct {
	Opcode        uint8
	OpcodeAddress uint16
	Cycles        int
	Changes       []string
}

// Observer wraps a *cpu.Chip, stepping it one instruction at a time and
// diffing the CPU state across the step.
type Observer struct {
	chip *cpu.Chip
}

// New returns an Observer wrapping chip.
func New(chip *cpu.Chip) *Observer {
	return &Observer{chip: chip}
}

// StepAndDiff runs chip.Step() once and returns a Report describing the
// instruction that ran: the opcode/address it decoded, how many cycles it
// consumed, and a deep.Equal field diff between the state before and
// after (go-test/deep's default configuration skips unexported fields, so
// the diff naturally reports only the registers/flags/status a host
// cares about, never pipeline scratch).
func (o *Observer) StepAndDiff() (Report, error) {
	before := o.chip.Clone()

	cycles, err := o.chip.Step()

	after := o.chip.Clone()
	rpt := Report{
		Opcode:        o.chip.CurrentOpcode(),
		OpcodeAddress: o.chip.OpcodeAddress(),
		Cycles:        cycles,
		Changes:       deep.Equal(before, after),
	}
	return rpt, err
}

// String renders a Report as a single human-readable line, handy for
// logging a trace without pulling in a full formatter.
func (r Report) String() string {
	if len(r.Changes) == 0 {
		return fmt.Sprintf("opcode=$%02X @ $%04X cycles=%d (no state change)", r.Opcode, r.OpcodeAddress, r.Cycles)
	}
	return fmt.Sprintf("opcode=$%02X @ $%04X cycles=%d changes=%v", r.Opcode, r.OpcodeAddress, r.Cycles, r.Changes)
}
