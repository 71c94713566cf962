package cpu

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/opcore/mos6502/irq"
)

// ChipDef defines a 6502-family processor to construct with Init. This
// struct literal is the whole configuration contract between a host and
// the engine.
type ChipDef struct {
	// Variant selects which member of the family to emulate.
	Variant Variant
	// Bus is the memory/IO collaborator the engine drives every Clock.
	Bus Bus
	// Irq is an optional external interrupt source sampled after every
	// executed cycle, for the boundary poll, in addition to the engine's own SignalIRQ
	// latch (a host composing a PIA/VIA/timer chip can wire it here
	// instead of calling SignalIRQ/ClearIRQ by hand).
	Irq irq.Sender
	// Nmi is Irq's edge-triggered counterpart for NMI.
	Nmi irq.Sender
	// IgnoreHaltStopWait converts JAM/STP/WAI into Bypassed instead of
	// actually halting. A testing/analysis hook.
	IgnoreHaltStopWait bool
}

// Chip is one instance of the micro-op pipeline engine: a CPU state, the
// variant it's running, and the bus/interrupt collaborators it was wired
// to at Init time.
type Chip struct {
	s       State
	variant Variant
	bus     Bus
	irq     irq.Sender
	nmi     irq.Sender
}

// Init constructs a Chip of the requested variant, wires it to bus (and
// the optional interrupt sources), and brings it up in a powered-on
// state: randomized registers, then a full Reset sequence.
func Init(def ChipDef) (*Chip, error) {
	if !def.Variant.valid() {
		return nil, InvalidCPUState{Reason: fmt.Sprintf("variant %d is invalid", int(def.Variant))}
	}
	if def.Bus == nil {
		return nil, InvalidCPUState{Reason: "ChipDef.Bus must not be nil"}
	}
	c := &Chip{
		variant: def.Variant,
		bus:     def.Bus,
		irq:     def.Irq,
		nmi:     def.Nmi,
	}
	c.s.IgnoreHaltStopWait = def.IgnoreHaltStopWait
	if err := c.PowerOn(); err != nil {
		return nil, err
	}
	return c, nil
}

// PowerOn randomizes register contents, matching real hardware's
// undefined power-on state, then runs a full Reset sequence to bring PC
// in from the reset vector.
func (c *Chip) PowerOn() error {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	c.s.A = uint8(rnd.Intn(256))
	c.s.X = uint8(rnd.Intn(256))
	c.s.Y = uint8(rnd.Intn(256))
	c.s.SP = uint8(rnd.Intn(256))
	c.s.P = FlagUnused
	return c.Reset()
}

// Reset restores power-on register defaults (SP=$FD, I=1, u=1) and runs
// the 6-cycle reset sequence to load PC from the reset vector, modelling
// the suppressed stack pushes as dummy reads the way the silicon does.
func (c *Chip) Reset() error {
	s := &c.s
	s.Reset()
	s.installPipeline(resetSequence())
	for !s.instructionComplete {
		if _, err := c.Clock(); err != nil {
			return err
		}
	}
	return nil
}

// Clock advances the CPU by exactly one bus cycle: continuing the active
// instruction/interrupt-service pipeline, or, if
// none is active, polling for a pending interrupt and otherwise peeking
// the next opcode and installing its pipeline. Returns true iff the
// cycle just executed completed an instruction (or consumed a cycle
// while halted/waiting with nothing to do).
func (c *Chip) Clock() (bool, error) {
	s := &c.s
	if s.pipelineLen == 0 || s.cursor >= s.pipelineLen {
		if err := c.startNext(); err != nil {
			return true, err
		}
		if s.pipelineLen == 0 {
			// Halted or waiting with no wakeable interrupt pending: the
			// cycle is consumed without touching the bus.
			return true, nil
		}
	}
	if s.cursor < 0 || s.cursor >= s.pipelineLen || s.cursor >= maxPipelineLen {
		return true, InvalidCPUState{Reason: fmt.Sprintf("cursor %d out of range for pipeline length %d", s.cursor, s.pipelineLen)}
	}
	op := s.pipeline[s.cursor]
	s.cursor++
	op(s, c.bus)
	c.sampleInterrupts()
	if s.cursor >= s.pipelineLen {
		s.instructionComplete = true
		s.prevSkipInterruptPoll = s.skipInterruptPoll
		s.skipInterruptPoll = false
		s.pipelineLen = 0
		s.cursor = 0
	}
	return s.instructionComplete, nil
}

// Step calls Clock in a loop until an instruction completes, or until
// the 100-cycle safety bound is hit. The bound is a library-level guard
// against a pipeline-table bug, not a documented CPU property; no real
// 6502 instruction plus penalties exceeds ~12 cycles.
func (c *Chip) Step() (int, error) {
	cycles := 0
	for i := 0; i < 100; i++ {
		done, err := c.Clock()
		cycles++
		if err != nil {
			return cycles, err
		}
		if done {
			return cycles, nil
		}
	}
	return cycles, InvalidCPUState{Reason: "Step exceeded 100-cycle safety bound"}
}

// Run calls Clock exactly n times, possibly ending mid-instruction.
func (c *Chip) Run(n int) (int, error) {
	for i := 0; i < n; i++ {
		if _, err := c.Clock(); err != nil {
			return i, err
		}
	}
	return n, nil
}

// startNext is called whenever the working pipeline is empty/exhausted:
// it implements the halt/wait fast paths and the interrupt-priority
// check, then falls through to the ordinary opcode-fetch path when
// nothing preempts it.
func (c *Chip) startNext() error {
	s := &c.s

	switch s.Status {
	case Stopped, Jammed:
		if s.resetLatch {
			c.installReset()
			return nil
		}
		return nil // remains halted; nothing to execute this cycle.
	case Waiting:
		if s.resetLatch {
			c.installReset()
			return nil
		}
		irqPending, nmiPending := c.pendingSignals()
		switch {
		case nmiPending:
			c.installNMI()
			return nil
		case irqPending && s.Interrupt():
			// WAI's defining quirk: a masked IRQ still wakes the CPU, but
			// since it won't be serviced the instruction after WAI simply
			// runs next; fall through to the ordinary fetch path below.
			s.Status = Running
		case irqPending:
			c.installIRQ()
			return nil
		default:
			return nil // still waiting; nothing to execute this cycle.
		}
	}

	if s.resetLatch {
		c.installReset()
		return nil
	}

	// A taken same-page branch suppresses the interrupt poll for the instruction
	// immediately following it (state.go's skipInterruptPoll/
	// prevSkipInterruptPoll pair records this for exactly one boundary).
	// The poll itself honors the recognition latches sampled during the
	// previous instruction's cycles, never the live lines: a signal
	// asserted at this very boundary lets the next instruction run first.
	poll := !s.prevSkipInterruptPoll
	s.prevSkipInterruptPoll = false
	if poll {
		switch {
		case s.nmiSampled:
			c.installNMI()
			return nil
		case s.irqSampled && !s.Interrupt():
			c.installIRQ()
			return nil
		}
	}

	c.fetchAndInstall()
	return nil
}

// sampleInterrupts latches the IRQ/NMI input state once per executed
// cycle, feeding the boundary poll in startNext. The level-triggered IRQ
// sample follows the line (deasserting before the boundary withdraws
// it); the NMI sample holds until its edge is serviced.
func (c *Chip) sampleInterrupts() {
	irqPending, nmiPending := c.pendingSignals()
	c.s.irqSampled = irqPending
	if nmiPending {
		c.s.nmiSampled = true
	}
}

// pendingSignals reports whether an IRQ/NMI is currently asserted,
// combining the engine's own Signal* latches with any externally wired
// irq.Sender; the priority rules don't distinguish the two sources.
func (c *Chip) pendingSignals() (irqPending, nmiPending bool) {
	s := &c.s
	irqPending = s.irqLevel || (c.irq != nil && c.irq.Raised())
	nmiPending = s.nmiEdge || (c.nmi != nil && c.nmi.Raised())
	return irqPending, nmiPending
}

// installReset installs the 6-cycle reset sequence, the highest-priority
// interrupt. Unlike NMI/IRQ this doesn't touch P beyond setting I=1, and
// the pushes the hardware suppresses are modelled as dummy stack reads
// so SP still decrements three times.
func (c *Chip) installReset() {
	s := &c.s
	s.resetLatch = false
	s.nmiEdge = false
	s.irqSampled = false
	s.nmiSampled = false
	s.activeInterrupt = PendingReset
	s.installPipeline(resetSequence())
}

// installNMI installs the 7-cycle NMI service sequence (priority 2).
// NMI is edge-triggered: the latch (and any external Edge sender) is
// consumed here, not left for the host to clear.
func (c *Chip) installNMI() {
	s := &c.s
	s.nmiEdge = false
	s.nmiSampled = false
	if edge, ok := c.nmi.(*irq.Edge); ok {
		edge.Consume()
	}
	if s.Status == Waiting {
		s.Status = Running
	}
	s.activeInterrupt = PendingNMI
	s.installPipeline(buildInterruptSequence(NMIVectorLow, c.variant.isCMOS()))
}

// installIRQ installs the 7-cycle IRQ service sequence (priority 3,
// honoured only when I=0 or the CPU was Waiting). IRQ is level-triggered:
// the latch is intentionally left set; a host clears it via ClearIRQ once
// the interrupting device has been serviced.
func (c *Chip) installIRQ() {
	s := &c.s
	if s.Status == Waiting {
		s.Status = Running
	}
	s.activeInterrupt = PendingIRQ
	s.installPipeline(buildInterruptSequence(IRQVectorLow, c.variant.isCMOS()))
}

// fetchAndInstall peeks the opcode at PC (no cycle accounted), looks up
// this Chip's variant table, and installs the resulting pipeline with a
// shared opcode-fetch cycle prepended: the one real bus Read (and PC
// advance) every instruction spends decoding, common to every table
// entry and so not duplicated in each one.
func (c *Chip) fetchAndInstall() {
	s := &c.s
	op := c.bus.Peek(s.PC)
	seq := (*tableFor(c.variant))[op]
	s.installOpcodePipeline(seq)
}

// opcodeFetchCycle is the shared first cycle of every ordinary
// instruction: read the opcode byte at PC, advance PC, and record where
// it came from for diagnostics.
func opcodeFetchCycle(s *State, b Bus) {
	s.opcodeAddress = s.PC
	op := b.Read(s.PC)
	s.currentOpcode = op
	s.tempValue = uint16(op)
	s.PC++
}

// --- Signal API ---

// SignalReset latches a pending reset, serviced at the next instruction
// boundary regardless of current status.
func (c *Chip) SignalReset() { c.s.resetLatch = true }

// SignalNMI latches a rising edge on the NMI line.
func (c *Chip) SignalNMI() { c.s.nmiEdge = true }

// SignalIRQ asserts the level-triggered IRQ line.
func (c *Chip) SignalIRQ() { c.s.irqLevel = true }

// ClearIRQ deasserts the IRQ line.
func (c *Chip) ClearIRQ() { c.s.irqLevel = false }

// --- Introspection / register accessors ---

func (c *Chip) A() uint8   { return c.s.A }
func (c *Chip) X() uint8   { return c.s.X }
func (c *Chip) Y() uint8   { return c.s.Y }
func (c *Chip) SP() uint8  { return c.s.SP }
func (c *Chip) P() uint8   { return c.s.P }
func (c *Chip) PC() uint16 { return c.s.PC }

func (c *Chip) SetA(v uint8)   { c.s.A = v }
func (c *Chip) SetX(v uint8)   { c.s.X = v }
func (c *Chip) SetY(v uint8)   { c.s.Y = v }
func (c *Chip) SetSP(v uint8)  { c.s.SP = v }
func (c *Chip) SetP(v uint8)   { c.s.P = v | FlagUnused }
func (c *Chip) SetPC(v uint16) { c.s.PC = v }

func (c *Chip) Carry() bool     { return c.s.Carry() }
func (c *Chip) Zero() bool      { return c.s.Zero() }
func (c *Chip) Interrupt() bool { return c.s.Interrupt() }
func (c *Chip) Decimal() bool   { return c.s.Decimal() }
func (c *Chip) Overflow() bool  { return c.s.Overflow() }
func (c *Chip) Negative() bool  { return c.s.Negative() }

func (c *Chip) SetCarry(v bool)     { c.s.SetCarry(v) }
func (c *Chip) SetDecimal(v bool)   { c.s.SetDecimal(v) }
func (c *Chip) SetInterrupt(v bool) { c.s.SetInterrupt(v) }

// Status reports the current execution status (Running/Stopped/
// Jammed/Waiting/Bypassed).
func (c *Chip) Status() Status { return c.s.Status }

// Variant reports which family member this Chip emulates.
func (c *Chip) Variant() Variant { return c.variant }

// Pending reports which interrupt (if any) the working pipeline is
// currently servicing.
func (c *Chip) Pending() Pending { return c.s.activeInterrupt }

// InstructionComplete reports whether the most recent Clock call
// completed an instruction.
func (c *Chip) InstructionComplete() bool { return c.s.instructionComplete }

// HaltOpcode reports which opcode latched the current halt state (JAM or
// STP); zero while the CPU is running. Useful for a host surfacing a
// wedged CPU as a diagnostic event.
func (c *Chip) HaltOpcode() uint8 { return c.s.haltOpcode }

// CurrentOpcode and OpcodeAddress expose the opcode byte and address the
// active (or just-completed) instruction was fetched from, used by the
// debug observer and by tests asserting on specific instructions.
func (c *Chip) CurrentOpcode() uint8  { return c.s.currentOpcode }
func (c *Chip) OpcodeAddress() uint16 { return c.s.opcodeAddress }

// Clone returns an independent snapshot of the Chip's CPU state, safe to
// compare against a later snapshot; the debug observer builds on this.
func (c *Chip) Clone() *State { return c.s.Clone() }

// CopyFrom restores the Chip's CPU state from a snapshot taken by Clone.
func (c *Chip) CopyFrom(snap *State) { c.s.CopyFrom(snap) }
