package cpu

// maxPipelineLen is the fixed capacity of the working pipeline buffer.
// Worst case documented instruction length is 8 cycles (an RMW indirect
// X/Y); the longest traced sequence the engine ever installs is the
// 10-cycle JAM/KIL bus pattern. 16 leaves comfortable headroom for any
// additional penalty-cycle insertion without ever needing to grow on the
// hot path.
const maxPipelineLen = 16

// MicroOp is a single one-cycle step of instruction execution. It may
// perform at most one bus access (Read, Peek doesn't count, or Write) and
// may mutate State, including appending further MicroOps to the working
// pipeline via State.insertNext/State.appendTail to model a runtime
// penalty cycle (page crossing, branch taken, decimal-mode ADC/SBC tail).
type MicroOp func(s *State, b Bus)

// State holds all mutable CPU state: registers, execution status,
// interrupt latches, the active working pipeline, and scratch
// temporaries used while decoding/executing the current instruction.
type State struct {
	// Registers.
	A, X, Y, SP uint8
	PC          uint16
	P           uint8

	// Execution status.
	Status Status

	// Interrupt latches. irqLevel/nmiEdge/resetLatch are set by the
	// Signal* API. nmiEdge/resetLatch are cleared by the engine once
	// serviced; irqLevel is level-triggered and only ClearIRQ clears it.
	irqLevel   bool
	nmiEdge    bool
	resetLatch bool
	// activeInterrupt records which interrupt is currently being serviced
	// by the working pipeline (PendingNone when running ordinary code).
	activeInterrupt Pending

	// irqSampled/nmiSampled are the recognition latches: the engine
	// samples the IRQ/NMI inputs once per executed cycle, and the
	// boundary poll honors these sampled values, never the live lines.
	// A signal first asserted while the CPU sits between instructions is
	// therefore recognized one instruction later, the way silicon only
	// commits to an interrupt it sampled during the preceding
	// instruction. irqSampled tracks the level-triggered line each
	// sample; nmiSampled accumulates until the edge is serviced.
	irqSampled bool
	nmiSampled bool

	// Working pipeline: a fixed-capacity copy of the relevant table entry
	// (or of the interrupt-service sequence), plus the next-index cursor.
	pipeline            [maxPipelineLen]MicroOp
	pipelineLen         int
	cursor              int
	instructionComplete bool

	// Scratch used while decoding/executing the current instruction.
	tempAddress   uint16
	tempValue     uint16 // byte ops use the low 8 bits
	currentOpcode uint8
	opcodeAddress uint16

	// skipInterruptPoll/prevSkipInterruptPoll model the one-instruction
	// delay a taken branch imposes on interrupt sampling: a branch that's
	// taken without crossing a page lets the following instruction run
	// before an interrupt that arrived during the branch gets serviced
	// (matches real silicon pipelining quirks). A page-crossing taken
	// branch does not set it.
	skipInterruptPoll     bool
	prevSkipInterruptPoll bool

	// IgnoreHaltStopWait converts JAM/STP/WAI into Bypassed instead of
	// actually halting: the instruction advances PC normally, the status
	// flag just records that a halt was encountered. A testing/analysis
	// hook, not a correctness feature.
	IgnoreHaltStopWait bool

	haltOpcode uint8
}

// Bus is re-exported here so cpu package files don't need to import the
// bus package just to spell out the parameter type in MicroOp/Chip
// signatures; it's defined for real in package bus and any implementation
// of that interface satisfies this one too.
type Bus interface {
	Read(addr uint16) uint8
	Peek(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// Flag convenience accessors.

func (s *State) flag(mask uint8) bool { return s.P&mask != 0 }

func (s *State) setFlag(mask uint8, v bool) {
	if v {
		s.P |= mask
	} else {
		s.P &^= mask
	}
}

func (s *State) Carry() bool     { return s.flag(FlagCarry) }
func (s *State) Zero() bool      { return s.flag(FlagZero) }
func (s *State) Interrupt() bool { return s.flag(FlagInterrupt) }
func (s *State) Decimal() bool   { return s.flag(FlagDecimal) }
func (s *State) Overflow() bool  { return s.flag(FlagOverflow) }
func (s *State) Negative() bool  { return s.flag(FlagNegative) }

func (s *State) SetCarry(v bool)     { s.setFlag(FlagCarry, v) }
func (s *State) SetDecimal(v bool)   { s.setFlag(FlagDecimal, v) }
func (s *State) SetInterrupt(v bool) { s.setFlag(FlagInterrupt, v) }

// zeroCheck/negativeCheck/carryCheck/overflowCheck are the shared ALU
// flag helpers, reused by every ALU micro-op instead of each one
// reimplementing flag logic.

func (s *State) zeroCheck(v uint8) { s.setFlag(FlagZero, v == 0) }

func (s *State) negativeCheck(v uint8) { s.setFlag(FlagNegative, v&0x80 != 0) }

// carryCheck sets Carry if an 8-bit ALU op (passed as a widened result)
// produced a value >= 0x100. BCD fixups can produce values up to 0x1FF
// here; still a carry.
func (s *State) carryCheck(res uint16) { s.setFlag(FlagCarry, res >= 0x100) }

// overflowCheck sets Overflow if reg op arg -> res crossed a two's
// complement sign boundary. See http://www.righto.com/2012/12/the-6502-overflow-flag-explained.html
func (s *State) overflowCheck(reg, arg, res uint8) {
	s.setFlag(FlagOverflow, (reg^res)&(arg^res)&0x80 != 0)
}

// Reset restores power-on defaults without touching the bus: SP, P,
// status, pipeline cursor and interrupt latches go to their reset
// values; PC, A, X and Y are left as they are. Loading PC from the reset vector is the
// engine's job (it requires bus access); this only prepares the state for
// that.
func (s *State) Reset() {
	// The reset service sequence performs three dummy stack reads, each
	// decrementing SP; starting from $00 those land on the documented
	// post-reset value of $FD.
	s.SP = 0x00
	s.P = FlagUnused | FlagInterrupt
	s.Status = Running
	s.activeInterrupt = PendingNone
	s.irqLevel = false
	s.nmiEdge = false
	s.resetLatch = false
	s.irqSampled = false
	s.nmiSampled = false
	s.pipelineLen = 0
	s.cursor = 0
	s.instructionComplete = true
	s.skipInterruptPoll = false
	s.prevSkipInterruptPoll = false
	s.haltOpcode = 0
}

// Clone returns an independent copy of s. The pipeline buffer is a plain
// array so the copy is a flat value copy; there is no cyclic or
// pointer-backed state to deep-copy.
func (s *State) Clone() *State {
	cp := *s
	return &cp
}

// CopyFrom replaces s's contents with a copy of other's.
func (s *State) CopyFrom(other *State) {
	*s = *other
}

// insertNext splices op into the working pipeline immediately after the
// currently executing cycle, so it runs on the very next Clock call. The
// engine advances the cursor before invoking a micro-op, so the cursor
// already names the next-to-execute slot. Used by penalty-cycle
// primitives (indexed page-cross reads, taken branches, the CMOS
// decimal-mode tail) to extend the pipeline with data-dependent extra
// cycles. This mutates the *working* buffer only,
// never a shared table entry.
func (s *State) insertNext(op MicroOp) {
	at := s.cursor
	if s.pipelineLen >= maxPipelineLen {
		// Pipeline tables are constructed so this never happens; if it
		// does, drop the op rather than corrupt adjacent memory.
		return
	}
	copy(s.pipeline[at+1:s.pipelineLen+1], s.pipeline[at:s.pipelineLen])
	s.pipeline[at] = op
	s.pipelineLen++
}

// appendTail appends op to the end of the working pipeline, deferring
// instruction completion by one more cycle.
func (s *State) appendTail(op MicroOp) {
	if s.pipelineLen >= maxPipelineLen {
		return
	}
	s.pipeline[s.pipelineLen] = op
	s.pipelineLen++
}

// installPipeline copies base into the working buffer and resets the
// cursor, starting a fresh instruction (or interrupt service sequence).
func (s *State) installPipeline(base []MicroOp) {
	n := copy(s.pipeline[:], base)
	s.pipelineLen = n
	s.cursor = 0
	s.instructionComplete = false
}

// installOpcodePipeline prepends the shared opcode-fetch cycle to seq (an
// opcode table entry) and installs the result, since table entries never
// include that common first cycle themselves (tables.go's entries are
// sized to documented_cycles - 1 for exactly this reason).
func (s *State) installOpcodePipeline(seq []MicroOp) {
	s.pipeline[0] = opcodeFetchCycle
	n := copy(s.pipeline[1:], seq)
	s.pipelineLen = n + 1
	s.cursor = 0
	s.instructionComplete = false
}
