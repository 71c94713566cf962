package cpu

// CMOS-only micro-ops: the WDC 65C02S / Rockwell 65C02 extensions. These
// are never installed into an NMOS table entry.

// STZ has no micro-op of its own here: it reuses stzStage
// (microops_alu.go) plus writeToTempAddress.

// trbFinish implements TRB: Z is set from A&M (before the write), then
// M is written back with A's bits cleared from it.
func trbFinish(s *State, b Bus) {
	m := uint8(s.tempValue)
	s.zeroCheck(s.A & m)
	s.tempValue = uint16(m &^ s.A)
}

// tsbFinish implements TSB: Z is set from A&M (before the write), then
// M is written back with A's bits set into it.
func tsbFinish(s *State, b Bus) {
	m := uint8(s.tempValue)
	s.zeroCheck(s.A & m)
	s.tempValue = uint16(m | s.A)
}

// makeRMB returns the write-back micro-op for RMB<n>: clear bit n of the
// fetched zero-page byte.
func makeRMB(bit uint8) MicroOp {
	mask := ^(uint8(1) << bit)
	return func(s *State, b Bus) {
		s.tempValue = uint16(uint8(s.tempValue) & mask)
	}
}

// makeSMB returns the write-back micro-op for SMB<n>: set bit n of the
// fetched zero-page byte.
func makeSMB(bit uint8) MicroOp {
	mask := uint8(1) << bit
	return func(s *State, b Bus) {
		s.tempValue = uint16(uint8(s.tempValue) | mask)
	}
}

// makeBBR returns the branch-predicate micro-op for BBR<n>: branch if bit
// n of the fetched zero-page byte is clear. The caller composes this with
// a trailing makeBranch-style displacement cycle (see tables.go); unlike
// ordinary branches, BBR/BBS read the zero-page operand and the
// displacement as two separate fetch cycles before evaluating.
func makeBBR(bit uint8) func(s *State) bool {
	mask := uint8(1) << bit
	return func(s *State) bool { return uint8(s.tempValue)&mask == 0 }
}

// makeBBS returns the branch-predicate micro-op for BBS<n>: branch if bit
// n of the fetched zero-page byte is set.
func makeBBS(bit uint8) func(s *State) bool {
	mask := uint8(1) << bit
	return func(s *State) bool { return uint8(s.tempValue)&mask != 0 }
}

// bbrBbsBranch is the final cycle of a BBR/BBS sequence: it reads the
// branch displacement, tests the already-fetched zero-page byte held in
// tempValue against cond, and if true installs the taken-branch penalty
// cycle(s) exactly like an ordinary conditional branch.
func bbrBbsBranch(cond func(s *State) bool) MicroOp {
	return func(s *State, b Bus) {
		disp := int8(b.Read(s.PC))
		s.PC++
		if !cond(s) {
			return
		}
		oldPC := s.PC
		newPC := uint16(int32(oldPC) + int32(disp))
		s.insertNext(func(s *State, b Bus) {
			s.PC = (oldPC & 0xFF00) | (newPC & 0x00FF)
			b.Read(s.PC)
			if (newPC & 0xFF00) != (oldPC & 0xFF00) {
				s.insertNext(func(s *State, b Bus) {
					s.PC = newPC
					b.Read(s.PC)
				})
			}
		})
	}
}

// waiFinish implements WAI: the chip stops fetching new instructions
// until an IRQ or NMI is pending, at which point it resumes (for IRQ,
// even if the I flag is set; WAI's defining quirk is that it wakes on a
// masked IRQ without servicing it, simply falling through to the next
// instruction so software can poll). On Rockwell65C02 this op is never
// installed; RMB-style table construction in tables.go substitutes a
// plain NOP of the documented byte length/cycle count instead.
func waiFinish(s *State, b Bus) {
	if s.IgnoreHaltStopWait {
		s.Status = Bypassed
		return
	}
	s.Status = Waiting
}

// stpFinish implements STP: the chip stops permanently, recoverable only
// by Reset. Same Rockwell substitution note as waiFinish.
func stpFinish(s *State, b Bus) {
	if s.IgnoreHaltStopWait {
		s.Status = Bypassed
		return
	}
	s.Status = Stopped
	s.haltOpcode = s.currentOpcode
}
