package cpu

// Stack, branch, subroutine/interrupt-return, and interrupt-servicing
// micro-ops. The stack is fixed to page 1 ($0100-$01FF); SP always
// indexes within it and wraps at the byte level (push at $01FD, $01FC,
// ... rather than ever leaving the page), matching real silicon.

func pushByte(s *State, b Bus, v uint8) {
	b.Write(StackBase|uint16(s.SP), v)
	s.SP--
}

func pullByte(s *State, b Bus) uint8 {
	s.SP++
	return b.Read(StackBase | uint16(s.SP))
}

func phaFinish(s *State, b Bus) { pushByte(s, b, s.A) }
func phxFinish(s *State, b Bus) { pushByte(s, b, s.X) }
func phyFinish(s *State, b Bus) { pushByte(s, b, s.Y) }

// phpFinish pushes P with both Break and Unused forced to 1, matching the
// documented PHP/BRK push convention.
func phpFinish(s *State, b Bus) { pushByte(s, b, s.P|FlagBreak|FlagUnused) }

func plaFinish(s *State, b Bus) {
	s.A = pullByte(s, b)
	s.zeroCheck(s.A)
	s.negativeCheck(s.A)
}

func plxFinish(s *State, b Bus) {
	s.X = pullByte(s, b)
	s.zeroCheck(s.X)
	s.negativeCheck(s.X)
}

func plyFinish(s *State, b Bus) {
	s.Y = pullByte(s, b)
	s.zeroCheck(s.Y)
	s.negativeCheck(s.Y)
}

// plpFinish pulls P, forcing Unused to 1 and clearing Break (neither bit
// has physical storage in P; Break only exists in pushed copies).
func plpFinish(s *State, b Bus) {
	s.P = (pullByte(s, b) &^ FlagBreak) | FlagUnused
}

// dummyStackRead re-reads the current stack location without adjusting
// SP: PHA/PLA-family instructions spend one such cycle before the real
// push/pull (the "internal operation" cycle silicon spends decoding).
func dummyStackRead(s *State, b Bus) {
	b.Read(StackBase | uint16(s.SP))
}

// --- branches ---

// makeBranch returns a two-to-four-cycle branch micro-op sequence's first
// cycle: it reads the signed displacement, and if the condition holds,
// applies it and schedules the penalty cycle(s); if not, the instruction
// simply ends here (2 cycles total, already accounted for by the fetch
// cycle + this one).
func makeBranch(cond func(s *State) bool) MicroOp {
	return func(s *State, b Bus) {
		disp := int8(b.Read(s.PC))
		s.PC++
		if !cond(s) {
			return
		}
		oldPC := s.PC
		newPC := uint16(int32(oldPC) + int32(disp))
		s.tempAddress = newPC
		if (newPC & 0xFF00) == (oldPC & 0xFF00) {
			// A taken same-page branch defers interrupt sampling to the
			// instruction after the branch target; a page-crossing branch
			// samples normally during its penalty cycle.
			s.skipInterruptPoll = true
		}
		s.insertNext(func(s *State, b Bus) {
			// Taken-branch extra cycle: silicon reads the not-yet-updated
			// PC's page here before fully committing the new address.
			b.Read((oldPC & 0xFF00) | (s.tempAddress & 0x00FF))
			s.PC = (oldPC & 0xFF00) | (s.tempAddress & 0x00FF)
			if (s.tempAddress & 0xFF00) != (oldPC & 0xFF00) {
				s.insertNext(func(s *State, b Bus) {
					b.Read(s.PC)
					s.PC = s.tempAddress
				})
			}
		})
	}
}

// --- JSR/RTS/RTI/BRK and interrupt servicing ---

// jsrPushHigh/jsrPushLow push the return address (the address of JSR's
// own high operand byte, which PC already points at after
// fetchAddressLow advanced past only the low byte) in the documented two
// cycles, high byte first.
func jsrPushHigh(s *State, b Bus) {
	pushByte(s, b, uint8(s.PC>>8))
}

func jsrPushLow(s *State, b Bus) {
	pushByte(s, b, uint8(s.PC))
	// jsrFinish below fetches the high address byte at the now-current PC
	// and merges it with the low byte already staged in tempAddress by
	// fetchAddressLow.
}

func jsrFinish(s *State, b Bus) {
	hi := uint16(b.Read(s.PC))
	s.PC = s.tempAddress | (hi << 8)
}

func rtsPullLow(s *State, b Bus) {
	s.tempAddress = uint16(pullByte(s, b))
}

func rtsPullHigh(s *State, b Bus) {
	hi := uint16(pullByte(s, b))
	s.tempAddress |= hi << 8
}

func rtsFinish(s *State, b Bus) {
	// Final cycle reads (and discards) the instruction byte following the
	// restored PC, then commits PC+1 as documented for RTS.
	b.Read(s.tempAddress)
	s.PC = s.tempAddress + 1
}

func rtiPullP(s *State, b Bus) {
	s.P = (pullByte(s, b) &^ FlagBreak) | FlagUnused
}

func rtiPullLow(s *State, b Bus) {
	s.tempAddress = uint16(pullByte(s, b))
}

func rtiPullHigh(s *State, b Bus) {
	hi := uint16(pullByte(s, b))
	s.PC = s.tempAddress | (hi << 8)
}

// brkPushPCHigh/brkPushPCLow/brkPushP push the return address (PC, which
// has already been advanced past the signature byte) and status with
// Break set, matching BRK's documented software-interrupt push sequence.
func brkPushPCHigh(s *State, b Bus) { pushByte(s, b, uint8(s.PC>>8)) }
func brkPushPCLow(s *State, b Bus)  { pushByte(s, b, uint8(s.PC)) }
func brkPushP(s *State, b Bus)      { pushByte(s, b, s.P|FlagBreak|FlagUnused) }

func brkFetchVectorLow(s *State, b Bus) {
	s.tempAddress = uint16(b.Read(IRQVectorLow))
	s.SetInterrupt(true)
}

// brkFetchVectorLowCMOS is brkFetchVectorLow plus the CMOS-only D-flag
// clear BRK performs in the same cycle. NMOS BRK leaves D untouched, a
// real variant difference the pipeline tables encode via distinct BRK
// entries rather than a runtime branch threaded through every micro-op.
func brkFetchVectorLowCMOS(s *State, b Bus) {
	brkFetchVectorLow(s, b)
	s.SetDecimal(false)
}

// brkPadFetch reads BRK's signature/padding byte and advances PC past
// it, so the pushed return address is the instruction after BRK plus one
// (the documented "BRK is a 2-byte instruction" padding quirk).
func brkPadFetch(s *State, b Bus) {
	b.Read(s.PC)
	s.PC++
}

func brkFetchVectorHigh(s *State, b Bus) {
	hi := uint16(b.Read(IRQVectorLow + 1))
	s.PC = s.tempAddress | (hi << 8)
}

// buildInterruptSequence returns the 7-cycle hardware interrupt service
// sequence (NMI/IRQ): two dummy fetches, three pushes (PC high, PC low,
// P, with Break clear for a hardware interrupt, distinguishing it from
// BRK's software push), then two vector-fetch cycles. vectorLow selects
// which vector table entry to read; cmos clears D in the same cycle the
// vector's low byte is fetched, matching CMOS silicon (NMOS leaves D
// alone on both IRQ and NMI).
func buildInterruptSequence(vectorLow uint16, cmos bool) []MicroOp {
	return []MicroOp{
		dummyFetch,
		dummyFetch,
		func(s *State, b Bus) { pushByte(s, b, uint8(s.PC>>8)) },
		func(s *State, b Bus) { pushByte(s, b, uint8(s.PC)) },
		func(s *State, b Bus) { pushByte(s, b, (s.P&^FlagBreak)|FlagUnused) },
		func(s *State, b Bus) {
			s.tempAddress = uint16(b.Read(vectorLow))
			s.SetInterrupt(true)
			if cmos {
				s.SetDecimal(false)
			}
		},
		func(s *State, b Bus) {
			hi := uint16(b.Read(vectorLow + 1))
			s.PC = s.tempAddress | (hi << 8)
			s.activeInterrupt = PendingNone
		},
	}
}

// resetSequence models the 6-cycle documented reset: three dummy stack
// reads (SP decrements without writing, since the bus is effectively
// read-only during reset on real hardware) then the two vector fetch
// cycles, landing on PC.
func resetSequence() []MicroOp {
	return []MicroOp{
		dummyFetch,
		func(s *State, b Bus) { b.Read(StackBase | uint16(s.SP)); s.SP-- },
		func(s *State, b Bus) { b.Read(StackBase | uint16(s.SP)); s.SP-- },
		func(s *State, b Bus) { b.Read(StackBase | uint16(s.SP)); s.SP--; s.SetInterrupt(true) },
		func(s *State, b Bus) { s.tempAddress = uint16(b.Read(ResetVectorLow)) },
		func(s *State, b Bus) {
			hi := uint16(b.Read(ResetVectorLow + 1))
			s.PC = s.tempAddress | (hi << 8)
			s.activeInterrupt = PendingNone
			s.Status = Running
		},
	}
}
