package cpu

// This file builds the per-variant 256-entry opcode pipeline tables: for
// each opcode byte, the ordered sequence of MicroOps executed after the
// (shared, engine-driven) opcode fetch cycle. A table entry is installed
// into a Chip's working pipeline buffer unmodified; penalty cycles are
// spliced into the *working* copy at runtime by the micro-ops themselves
// (State.insertNext), never into the table slice, which is why the
// table's underlying arrays are safe to share across every Chip instance
// of a given variant: penalty insertion cannot corrupt the shared table
// by construction, not by convention.
//
// Building all 256 entries by hand for four variants would be 1024
// literal cases; instead each addressing mode has one combinator here
// (seqZPLoad, seqAbsoluteIndexedRMW, ...) and the table is assembled by
// calling those combinators once per opcode byte, parameterized by a
// profile describing which variant is being built.

// profile parameterizes table construction for one CPU variant.
type profile struct {
	cmos     bool // WDC65C02 or Rockwell65C02
	illegal  bool // include NMOS undocumented opcodes (else replace with NOP-equivalents)
	rockwell bool // WAI/STP demoted to NOP (Rockwell65C02 only)
}

// Table is a complete 256-entry opcode pipeline table for one variant.
type Table [256][]MicroOp

var (
	tableNMOS6502          Table
	tableNMOS6502NoIllegal Table
	tableWDC65C02          Table
	tableRockwell65C02     Table
)

func init() {
	tableNMOS6502 = buildTable(profile{cmos: false, illegal: true})
	tableNMOS6502NoIllegal = buildTable(profile{cmos: false, illegal: false})
	tableWDC65C02 = buildTable(profile{cmos: true, illegal: false})
	tableRockwell65C02 = buildTable(profile{cmos: true, illegal: false, rockwell: true})
}

// tableFor returns the pipeline table for v.
func tableFor(v Variant) *Table {
	switch v {
	case NMOS6502:
		return &tableNMOS6502
	case NMOS6502NoIllegal:
		return &tableNMOS6502NoIllegal
	case WDC65C02:
		return &tableWDC65C02
	case Rockwell65C02:
		return &tableRockwell65C02
	default:
		return &tableNMOS6502
	}
}

// --- addressing-mode sequence combinators ---
// Naming: seq<Mode><Kind>. Kind is Load (pure read, applies finish to the
// fetched byte), Store (applies stage then writes), RMW (read-modify-
// write), or bare for modes with no operand (implied/accumulator).

func seqImplied(finish MicroOp) []MicroOp {
	return []MicroOp{func(s *State, b Bus) { dummyFetch(s, b); finish(s, b) }}
}

func seqAccumulator(finish MicroOp) []MicroOp {
	return []MicroOp{func(s *State, b Bus) { dummyFetch(s, b); finish(s, b) }}
}

func seqImmediate(finish MicroOp) []MicroOp {
	return []MicroOp{func(s *State, b Bus) { fetchImmediate(s, b); finish(s, b) }}
}

func readAndFinish(finish MicroOp) MicroOp {
	return func(s *State, b Bus) {
		s.tempValue = uint16(b.Read(s.tempAddress))
		finish(s, b)
	}
}

func stageAndWrite(stage MicroOp) MicroOp {
	return func(s *State, b Bus) {
		stage(s, b)
		writeToTempAddress(s, b)
	}
}

func seqZPLoad(finish MicroOp) []MicroOp {
	return []MicroOp{fetchZPAddress, readAndFinish(finish)}
}

func seqZPStore(stage MicroOp) []MicroOp {
	return []MicroOp{fetchZPAddress, stageAndWrite(stage)}
}

// rmwAccess returns the data-read cycle plus the silicon-dependent middle
// cycle of a read-modify-write: NMOS writes the unmodified value straight
// back (the infamous RMW double-write, visible to memory-mapped IO), CMOS
// re-reads the address instead. One of the variant quirks the cycle-exact
// test vectors observe directly.
func (p profile) rmwAccess() (MicroOp, MicroOp) {
	read := func(s *State, b Bus) { s.tempValue = uint16(b.Read(s.tempAddress)) }
	if p.cmos {
		return read, dummyReadTempAddress
	}
	dummyWrite := func(s *State, b Bus) { b.Write(s.tempAddress, uint8(s.tempValue)) }
	return read, dummyWrite
}

func opAndWrite(op MicroOp) MicroOp {
	return func(s *State, b Bus) {
		op(s, b)
		writeToTempAddress(s, b)
	}
}

func (p profile) seqZPRMW(op MicroOp) []MicroOp {
	read, mid := p.rmwAccess()
	return []MicroOp{fetchZPAddress, read, mid, opAndWrite(op)}
}

func dummyReadThenAddIndex(getIndex func(*State) uint8) MicroOp {
	return func(s *State, b Bus) {
		b.Read(s.tempAddress)
		s.tempAddress = uint16(uint8(s.tempAddress) + getIndex(s))
	}
}

func seqZPIndexedLoad(getIndex func(*State) uint8, finish MicroOp) []MicroOp {
	return []MicroOp{fetchZPAddress, dummyReadThenAddIndex(getIndex), readAndFinish(finish)}
}

func seqZPIndexedStore(getIndex func(*State) uint8, stage MicroOp) []MicroOp {
	return []MicroOp{fetchZPAddress, dummyReadThenAddIndex(getIndex), stageAndWrite(stage)}
}

func (p profile) seqZPIndexedRMW(getIndex func(*State) uint8, op MicroOp) []MicroOp {
	read, mid := p.rmwAccess()
	return []MicroOp{fetchZPAddress, dummyReadThenAddIndex(getIndex), read, mid, opAndWrite(op)}
}

func seqAbsoluteLoad(finish MicroOp) []MicroOp {
	return []MicroOp{fetchAddressLow, fetchAddressHigh, readAndFinish(finish)}
}

func seqAbsoluteStore(stage MicroOp) []MicroOp {
	return []MicroOp{fetchAddressLow, fetchAddressHigh, stageAndWrite(stage)}
}

func (p profile) seqAbsoluteRMW(op MicroOp) []MicroOp {
	read, mid := p.rmwAccess()
	return []MicroOp{fetchAddressLow, fetchAddressHigh, read, mid, opAndWrite(op)}
}

func (p profile) seqAbsoluteIndexedLoad(getIndex func(*State) uint8, finish MicroOp) []MicroOp {
	return []MicroOp{fetchAddressLow, fetchAddressHigh, loadIndexed(p.cmos, getIndex, finish)}
}

func (p profile) seqAbsoluteIndexedStore(getIndex func(*State) uint8, stage MicroOp) []MicroOp {
	return []MicroOp{fetchAddressLow, fetchAddressHigh, indexedAlwaysExtra(p.cmos, getIndex), stageAndWrite(stage)}
}

func (p profile) seqAbsoluteIndexedRMW(getIndex func(*State) uint8, op MicroOp) []MicroOp {
	read, mid := p.rmwAccess()
	return []MicroOp{fetchAddressLow, fetchAddressHigh, indexedAlwaysExtra(p.cmos, getIndex), read, mid, opAndWrite(op)}
}

// seqShiftIndexedRMW is the abs,X shift/rotate RMW shape. On CMOS these
// four (ASL/LSR/ROL/ROR abs,X, not INC/DEC) only pay the indexing
// penalty on an actual page cross: 6 cycles straight, 7 crossed. NMOS
// keeps the unconditional 7-cycle form.
func (p profile) seqShiftIndexedRMW(op MicroOp) []MicroOp {
	if !p.cmos {
		return p.seqAbsoluteIndexedRMW(indexX, op)
	}
	return []MicroOp{fetchAddressLow, fetchAddressHigh, rmwIndexedResolveRead(indexX), dummyReadTempAddress, opAndWrite(op)}
}

func seqIndirectXLoad(finish MicroOp) []MicroOp {
	return []MicroOp{fetchZPAddress, addXToZPPointer, readPointerLowZP, readPointerHighZP, readAndFinish(finish)}
}

func seqIndirectXStore(stage MicroOp) []MicroOp {
	return []MicroOp{fetchZPAddress, addXToZPPointer, readPointerLowZP, readPointerHighZP, stageAndWrite(stage)}
}

func (p profile) seqIndirectXRMW(op MicroOp) []MicroOp {
	read, mid := p.rmwAccess()
	return []MicroOp{fetchZPAddress, addXToZPPointer, readPointerLowZP, readPointerHighZP, read, mid, opAndWrite(op)}
}

func (p profile) seqIndirectYLoad(finish MicroOp) []MicroOp {
	return []MicroOp{fetchZPAddress, readPointerLowZP, readPointerHighZP, loadIndexed(p.cmos, indexY, finish)}
}

func (p profile) seqIndirectYStore(stage MicroOp) []MicroOp {
	return []MicroOp{fetchZPAddress, readPointerLowZP, readPointerHighZP, indexedAlwaysExtra(p.cmos, indexY), stageAndWrite(stage)}
}

func (p profile) seqIndirectYRMW(op MicroOp) []MicroOp {
	read, mid := p.rmwAccess()
	return []MicroOp{fetchZPAddress, readPointerLowZP, readPointerHighZP, indexedAlwaysExtra(p.cmos, indexY), read, mid, opAndWrite(op)}
}

// seqZPIndirectLoad/Store implement the CMOS-only (zp) addressing mode:
// same pointer resolution as (indirect,X) minus the X-index step.
func seqZPIndirectLoad(finish MicroOp) []MicroOp {
	return []MicroOp{fetchZPAddress, readPointerLowZPPlain, readPointerHighZPPlain, readAndFinish(finish)}
}

func seqZPIndirectStore(stage MicroOp) []MicroOp {
	return []MicroOp{fetchZPAddress, readPointerLowZPPlain, readPointerHighZPPlain, stageAndWrite(stage)}
}

func seqBranch(cond func(*State) bool) []MicroOp {
	return []MicroOp{makeBranch(cond)}
}

func seqJMPAbsolute() []MicroOp {
	return []MicroOp{fetchAddressLow, func(s *State, b Bus) {
		hi := uint16(b.Read(s.PC))
		s.PC = s.tempAddress | (hi << 8)
	}}
}

func seqJMPIndirectNMOS() []MicroOp {
	return []MicroOp{fetchAddressLow, fetchAddressHigh, jmpIndNMOSReadLow, jmpIndNMOSReadHigh}
}

func seqJMPIndirectCMOS() []MicroOp {
	return []MicroOp{fetchAddressLow, fetchAddressHigh, jmpIndCMOSExtra, jmpIndCMOSReadLow, jmpIndCMOSReadHigh}
}

func seqJSR() []MicroOp {
	return []MicroOp{fetchAddressLow, dummyStackRead, jsrPushHigh, jsrPushLow, jsrFinish}
}

func seqRTS() []MicroOp {
	return []MicroOp{dummyFetch, dummyStackRead, rtsPullLow, rtsPullHigh, rtsFinish}
}

func seqRTI() []MicroOp {
	return []MicroOp{dummyFetch, dummyStackRead, rtiPullP, rtiPullLow, rtiPullHigh}
}

func seqBRK(cmos bool) []MicroOp {
	fetchLow := brkFetchVectorLow
	if cmos {
		fetchLow = brkFetchVectorLowCMOS
	}
	return []MicroOp{brkPadFetch, brkPushPCHigh, brkPushPCLow, brkPushP, fetchLow, brkFetchVectorHigh}
}

// seqPush is PHA/PHP/PHX/PHY's 3-cycle shape: the opcode fetch (supplied
// by the engine), a dummy read of the following byte, then the push
// itself: two single-bus-access cycles, never combined into one (a push
// instruction can't both read the discarded byte and write the stack in
// the same cycle).
func seqPush(push MicroOp) []MicroOp {
	return []MicroOp{dummyFetch, push}
}

// seqPull is PLA/PLP/PLX/PLY's 4-cycle shape: dummy read of the following
// byte, a dummy stack read (silicon's internal S-increment cycle), then
// the real pull.
func seqPull(pull MicroOp) []MicroOp {
	return []MicroOp{dummyFetch, dummyStackRead, pull}
}

// seqZPBitRMW (RMB/SMB) reuses the zero-page RMW shape.
func (p profile) seqZPBitRMW(op MicroOp) []MicroOp { return p.seqZPRMW(op) }

// seqBBx (BBR/BBS) reads the zero-page operand, tests it, then reads the
// branch displacement and conditionally takes it: 5 cycles untaken, 6/7
// taken/page-crossed, per documented CMOS timing.
func seqBBx(bit uint8, set bool) []MicroOp {
	var cond func(*State) bool
	if set {
		cond = makeBBS(bit)
	} else {
		cond = makeBBR(bit)
	}
	return []MicroOp{
		fetchZPAddress,
		readAndFinish(nopFinish),
		dummyReadTempAddress,
		bbrBbsBranch(cond),
	}
}

// --- table construction ---

func buildTable(p profile) Table {
	var t Table

	set := func(op uint8, seq []MicroOp) { t[op] = seq }

	adcFinish := makeAdcFinish(p.cmos)
	sbcFinish := makeSbcFinish(p.cmos)

	// Loads.
	set(0xA9, seqImmediate(ldaFinish))
	set(0xA5, seqZPLoad(ldaFinish))
	set(0xB5, seqZPIndexedLoad(indexX, ldaFinish))
	set(0xAD, seqAbsoluteLoad(ldaFinish))
	set(0xBD, p.seqAbsoluteIndexedLoad(indexX, ldaFinish))
	set(0xB9, p.seqAbsoluteIndexedLoad(indexY, ldaFinish))
	set(0xA1, seqIndirectXLoad(ldaFinish))
	set(0xB1, p.seqIndirectYLoad(ldaFinish))

	set(0xA2, seqImmediate(ldxFinish))
	set(0xA6, seqZPLoad(ldxFinish))
	set(0xB6, seqZPIndexedLoad(indexY, ldxFinish))
	set(0xAE, seqAbsoluteLoad(ldxFinish))
	set(0xBE, p.seqAbsoluteIndexedLoad(indexY, ldxFinish))

	set(0xA0, seqImmediate(ldyFinish))
	set(0xA4, seqZPLoad(ldyFinish))
	set(0xB4, seqZPIndexedLoad(indexX, ldyFinish))
	set(0xAC, seqAbsoluteLoad(ldyFinish))
	set(0xBC, p.seqAbsoluteIndexedLoad(indexX, ldyFinish))

	// Stores.
	set(0x85, seqZPStore(staStage))
	set(0x95, seqZPIndexedStore(indexX, staStage))
	set(0x8D, seqAbsoluteStore(staStage))
	set(0x9D, p.seqAbsoluteIndexedStore(indexX, staStage))
	set(0x99, p.seqAbsoluteIndexedStore(indexY, staStage))
	set(0x81, seqIndirectXStore(staStage))
	set(0x91, p.seqIndirectYStore(staStage))

	set(0x86, seqZPStore(stxStage))
	set(0x96, seqZPIndexedStore(indexY, stxStage))
	set(0x8E, seqAbsoluteStore(stxStage))

	set(0x84, seqZPStore(styStage))
	set(0x94, seqZPIndexedStore(indexX, styStage))
	set(0x8C, seqAbsoluteStore(styStage))

	// ALU register ops.
	for _, e := range []struct {
		imm, zp, zpx, abs, absx, absy, indx, indy uint8
		finish                                    MicroOp
	}{
		{0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71, adcFinish},
		{0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1, sbcFinish},
		{0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31, andFinish},
		{0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11, oraFinish},
		{0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51, eorFinish},
		{0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1, cmpAFinish},
	} {
		set(e.imm, seqImmediate(e.finish))
		set(e.zp, seqZPLoad(e.finish))
		set(e.zpx, seqZPIndexedLoad(indexX, e.finish))
		set(e.abs, seqAbsoluteLoad(e.finish))
		set(e.absx, p.seqAbsoluteIndexedLoad(indexX, e.finish))
		set(e.absy, p.seqAbsoluteIndexedLoad(indexY, e.finish))
		set(e.indx, seqIndirectXLoad(e.finish))
		set(e.indy, p.seqIndirectYLoad(e.finish))
	}

	set(0xE0, seqImmediate(cmpXFinish))
	set(0xE4, seqZPLoad(cmpXFinish))
	set(0xEC, seqAbsoluteLoad(cmpXFinish))
	set(0xC0, seqImmediate(cmpYFinish))
	set(0xC4, seqZPLoad(cmpYFinish))
	set(0xCC, seqAbsoluteLoad(cmpYFinish))

	set(0x24, seqZPLoad(bitFinish))
	set(0x2C, seqAbsoluteLoad(bitFinish))

	// Shifts/rotates.
	for _, e := range []struct {
		acc, zp, zpx, abs, absx uint8
		accFn, memFn            MicroOp
	}{
		{0x0A, 0x06, 0x16, 0x0E, 0x1E, aslAcc, aslMem},
		{0x4A, 0x46, 0x56, 0x4E, 0x5E, lsrAcc, lsrMem},
		{0x2A, 0x26, 0x36, 0x2E, 0x3E, rolAcc, rolMem},
		{0x6A, 0x66, 0x76, 0x6E, 0x7E, rorAcc, rorMem},
	} {
		set(e.acc, seqAccumulator(e.accFn))
		set(e.zp, p.seqZPRMW(e.memFn))
		set(e.zpx, p.seqZPIndexedRMW(indexX, e.memFn))
		set(e.abs, p.seqAbsoluteRMW(e.memFn))
		set(e.absx, p.seqShiftIndexedRMW(e.memFn))
	}

	set(0xE6, p.seqZPRMW(incMem))
	set(0xF6, p.seqZPIndexedRMW(indexX, incMem))
	set(0xEE, p.seqAbsoluteRMW(incMem))
	set(0xFE, p.seqAbsoluteIndexedRMW(indexX, incMem))
	set(0xC6, p.seqZPRMW(decMem))
	set(0xD6, p.seqZPIndexedRMW(indexX, decMem))
	set(0xCE, p.seqAbsoluteRMW(decMem))
	set(0xDE, p.seqAbsoluteIndexedRMW(indexX, decMem))

	set(0xE8, seqImplied(inxFinish))
	set(0xC8, seqImplied(inyFinish))
	set(0xCA, seqImplied(dexFinish))
	set(0x88, seqImplied(deyFinish))
	set(0xAA, seqImplied(taxFinish))
	set(0x8A, seqImplied(txaFinish))
	set(0xA8, seqImplied(tayFinish))
	set(0x98, seqImplied(tyaFinish))
	set(0xBA, seqImplied(tsxFinish))
	set(0x9A, seqImplied(txsFinish))

	set(0x48, seqPush(phaFinish))
	set(0x68, seqPull(plaFinish))
	set(0x08, seqPush(phpFinish))
	set(0x28, seqPull(plpFinish))

	set(0x18, seqImplied(clcFinish))
	set(0x38, seqImplied(secFinish))
	set(0x58, seqImplied(cliFinish))
	set(0x78, seqImplied(seiFinish))
	set(0xB8, seqImplied(clvFinish))
	set(0xD8, seqImplied(cldFinish))
	set(0xF8, seqImplied(sedFinish))
	set(0xEA, seqImplied(nopFinish))

	set(0x00, seqBRK(p.cmos))
	set(0x20, seqJSR())
	set(0x60, seqRTS())
	set(0x40, seqRTI())
	set(0x4C, seqJMPAbsolute())
	if p.cmos {
		set(0x6C, seqJMPIndirectCMOS())
	} else {
		set(0x6C, seqJMPIndirectNMOS())
	}

	set(0x90, seqBranch(func(s *State) bool { return !s.Carry() }))
	set(0xB0, seqBranch(func(s *State) bool { return s.Carry() }))
	set(0xD0, seqBranch(func(s *State) bool { return !s.Zero() }))
	set(0xF0, seqBranch(func(s *State) bool { return s.Zero() }))
	set(0x10, seqBranch(func(s *State) bool { return !s.Negative() }))
	set(0x30, seqBranch(func(s *State) bool { return s.Negative() }))
	set(0x50, seqBranch(func(s *State) bool { return !s.Overflow() }))
	set(0x70, seqBranch(func(s *State) bool { return s.Overflow() }))

	if !p.cmos {
		fillNMOSIllegalOrNOP(&t, p, sbcFinish)
	} else {
		fillCMOSExtensions(&t, p)
	}

	return t
}

// nopRMW builds a read-only stand-in for an RMW-shaped illegal opcode:
// the given addressing cycles, then a data read and two further dummy
// reads where the real opcode would dummy-write and write back.
func nopRMW(addr ...MicroOp) []MicroOp {
	return append(addr, readAndFinish(nopFinish), dummyReadTempAddress, dummyReadTempAddress)
}

// nopStore is nopRMW's analog for store-shaped illegal opcodes: the
// addressing cycles plus one dummy read standing in for the write.
func nopStore(addr ...MicroOp) []MicroOp {
	return append(addr, dummyReadTempAddress)
}

// fillNMOSIllegalOrNOP fills every opcode byte left unset above (NMOS
// leaves 105 of the 256 slots to the undocumented opcode set) with
// either their real undocumented behavior (illegal=true, NMOS6502) or a
// NOP of the matching addressing mode/cycle count (illegal=false,
// NMOS6502NoIllegal), so both variants keep identical bus timing and
// PC advancement for any program that merely encounters these bytes
// without depending on their side effects. The JAM bytes are the
// exception: they halt on NMOS6502 and run as 1-byte, 2-cycle NOPs on
// NMOS6502NoIllegal.
func fillNMOSIllegalOrNOP(t *Table, p profile, sbcFinish MicroOp) {
	illegal := p.illegal
	finish := func(real MicroOp) MicroOp {
		if illegal {
			return real
		}
		return nopReadFinish
	}

	type lax struct{ zp, zpy, abs, absy, indx, indy uint8 }
	l := lax{0xA7, 0xB7, 0xAF, 0xBF, 0xA3, 0xB3}
	t[l.zp] = seqZPLoad(finish(laxFinish))
	t[l.zpy] = seqZPIndexedLoad(indexY, finish(laxFinish))
	t[l.abs] = seqAbsoluteLoad(finish(laxFinish))
	t[l.absy] = p.seqAbsoluteIndexedLoad(indexY, finish(laxFinish))
	t[l.indx] = seqIndirectXLoad(finish(laxFinish))
	t[l.indy] = p.seqIndirectYLoad(finish(laxFinish))

	if illegal {
		t[0x87] = seqZPStore(saxStage)
		t[0x97] = seqZPIndexedStore(indexY, saxStage)
		t[0x8F] = seqAbsoluteStore(saxStage)
		t[0x83] = seqIndirectXStore(saxStage)
	} else {
		t[0x87] = seqZPLoad(nopReadFinish)
		t[0x97] = seqZPIndexedLoad(indexY, nopReadFinish)
		t[0x8F] = seqAbsoluteLoad(nopReadFinish)
		t[0x83] = seqIndirectXLoad(nopReadFinish)
	}

	type rmwFam struct {
		zp, zpx, abs, absx, absy, indx, indy uint8
		op                                   MicroOp
	}
	for _, f := range []rmwFam{
		{0xC7, 0xD7, 0xCF, 0xDF, 0xDB, 0xC3, 0xD3, dcpFinish},
		{0xE7, 0xF7, 0xEF, 0xFF, 0xFB, 0xE3, 0xF3, iscFinish},
		{0x07, 0x17, 0x0F, 0x1F, 0x1B, 0x03, 0x13, sloFinish},
		{0x27, 0x37, 0x2F, 0x3F, 0x3B, 0x23, 0x33, rlaFinish},
		{0x47, 0x57, 0x4F, 0x5F, 0x5B, 0x43, 0x53, sreFinish},
		{0x67, 0x77, 0x6F, 0x7F, 0x7B, 0x63, 0x73, rraFinish},
	} {
		if illegal {
			t[f.zp] = p.seqZPRMW(f.op)
			t[f.zpx] = p.seqZPIndexedRMW(indexX, f.op)
			t[f.abs] = p.seqAbsoluteRMW(f.op)
			t[f.absx] = p.seqAbsoluteIndexedRMW(indexX, f.op)
			t[f.absy] = p.seqAbsoluteIndexedRMW(indexY, f.op)
			t[f.indx] = p.seqIndirectXRMW(f.op)
			t[f.indy] = p.seqIndirectYRMW(f.op)
		} else {
			// NOP replacements keep the byte length and cycle count but
			// never write: the RMW dummy-write and write-back cycles become
			// reads of the resolved address, so a host's memory-mapped IO
			// can't be disturbed by a "documented opcodes only" CPU.
			t[f.zp] = nopRMW(fetchZPAddress)
			t[f.zpx] = nopRMW(fetchZPAddress, dummyReadThenAddIndex(indexX))
			t[f.abs] = nopRMW(fetchAddressLow, fetchAddressHigh)
			t[f.absx] = nopRMW(fetchAddressLow, fetchAddressHigh, indexedAlwaysExtra(false, indexX))
			t[f.absy] = nopRMW(fetchAddressLow, fetchAddressHigh, indexedAlwaysExtra(false, indexY))
			t[f.indx] = nopRMW(fetchZPAddress, addXToZPPointer, readPointerLowZP, readPointerHighZP)
			t[f.indy] = nopRMW(fetchZPAddress, readPointerLowZP, readPointerHighZP, indexedAlwaysExtra(false, indexY))
		}
	}

	setImm := func(op uint8, real MicroOp) {
		t[op] = seqImmediate(finish(real))
	}
	setImm(0x0B, ancFinish)
	setImm(0x2B, ancFinish)
	setImm(0x4B, alrFinish)
	setImm(0x6B, arrFinish)
	setImm(0xCB, axsFinish)
	setImm(0x8B, aneFinish)
	setImm(0xAB, lxaFinish)
	// $EB is the undocumented second encoding of SBC #imm; identical to
	// $E9 in every observable way.
	setImm(0xEB, sbcFinish)

	if illegal {
		t[0xBB] = p.seqAbsoluteIndexedLoad(indexY, lasFinish)
		// SHY uses abs,X addressing and SHX abs,Y: the stored register
		// and the indexing register are deliberately opposite pairs.
		t[0x9F] = p.seqAbsoluteIndexedStore(indexY, shaStage)
		t[0x93] = p.seqIndirectYStore(shaStage)
		t[0x9E] = p.seqAbsoluteIndexedStore(indexY, shxStage)
		t[0x9C] = p.seqAbsoluteIndexedStore(indexX, shyStage)
		t[0x9B] = p.seqAbsoluteIndexedStore(indexY, tasStage)
	} else {
		t[0xBB] = p.seqAbsoluteIndexedLoad(indexY, nopReadFinish)
		// The unstable-store family becomes read-only NOPs of the same
		// byte length and cycle count, like the RMW family above.
		t[0x9F] = nopStore(fetchAddressLow, fetchAddressHigh, indexedAlwaysExtra(false, indexY))
		t[0x93] = nopStore(fetchZPAddress, readPointerLowZP, readPointerHighZP, indexedAlwaysExtra(false, indexY))
		t[0x9E] = nopStore(fetchAddressLow, fetchAddressHigh, indexedAlwaysExtra(false, indexY))
		t[0x9C] = nopStore(fetchAddressLow, fetchAddressHigh, indexedAlwaysExtra(false, indexX))
		t[0x9B] = nopStore(fetchAddressLow, fetchAddressHigh, indexedAlwaysExtra(false, indexY))
	}

	// Implied-mode NOPs (1-byte, 2-cycle). These are true NOPs on both
	// NMOS6502 and NMOS6502NoIllegal: no documented variant gives them a
	// side effect, only a redundant cycle.
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		t[op] = seqImplied(nopFinish)
	}
	// Immediate-mode NOPs (2-byte, 2-cycle): read and discard the operand.
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		t[op] = seqImmediate(nopReadFinish)
	}
	// Zero-page NOPs (2-byte, 3-cycle).
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		t[op] = seqZPLoad(nopReadFinish)
	}
	// Zero-page,X NOPs (2-byte, 4-cycle).
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		t[op] = seqZPIndexedLoad(indexX, nopReadFinish)
	}
	// Absolute NOP (3-byte, 4-cycle).
	t[0x0C] = seqAbsoluteLoad(nopReadFinish)
	// Absolute,X NOPs (3-byte, 4/5-cycle).
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		t[op] = p.seqAbsoluteIndexedLoad(indexX, nopReadFinish)
	}

	// JAM/KIL/HLT: halts the processor until Reset (NMOS6502 only).
	for _, op := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		if illegal {
			t[op] = []MicroOp{jamFinish}
		} else {
			t[op] = seqImplied(nopFinish)
		}
	}
}

// fillCMOSExtensions fills every opcode byte not already set by the
// shared documented core above with the WDC 65C02S extensions: BRA,
// PHX/PHY/PLX/PLY, STZ, TRB/TSB, the CMOS-only (zp) addressing mode
// added to the existing ALU ops, INC A/DEC A, immediate/zp,X/abs,X BIT,
// RMB/SMB/BBR/BBS, and WAI/STP (demoted to documented-timing NOPs on
// Rockwell65C02). Every byte WDC left as a true reserved NOP becomes a
// plain single/multi-cycle NOP matching the documented (often 1-cycle
// shorter than NMOS illegal) CMOS "NOP" timing.
func fillCMOSExtensions(t *Table, p profile) {
	t[0x80] = seqBranch(func(s *State) bool { return true }) // BRA

	t[0xDA] = seqPush(phxFinish)
	t[0xFA] = seqPull(plxFinish)
	t[0x5A] = seqPush(phyFinish)
	t[0x7A] = seqPull(plyFinish)

	t[0x64] = seqZPStore(stzStage)
	t[0x74] = seqZPIndexedStore(indexX, stzStage)
	t[0x9C] = seqAbsoluteStore(stzStage)
	t[0x9E] = p.seqAbsoluteIndexedStore(indexX, stzStage)

	t[0x14] = p.seqZPRMW(trbFinish)
	t[0x1C] = p.seqAbsoluteRMW(trbFinish)
	t[0x04] = p.seqZPRMW(tsbFinish)
	t[0x0C] = p.seqAbsoluteRMW(tsbFinish)

	t[0x1A] = seqAccumulator(func(s *State, b Bus) { s.A++; s.zeroCheck(s.A); s.negativeCheck(s.A) })
	t[0x3A] = seqAccumulator(func(s *State, b Bus) { s.A--; s.zeroCheck(s.A); s.negativeCheck(s.A) })

	t[0x89] = seqImmediate(bitImmediateFinish)
	t[0x34] = seqZPIndexedLoad(indexX, bitFinish)
	t[0x3C] = p.seqAbsoluteIndexedLoad(indexX, bitFinish)

	t[0x12] = seqZPIndirectLoad(oraFinish)
	t[0x32] = seqZPIndirectLoad(andFinish)
	t[0x52] = seqZPIndirectLoad(eorFinish)
	t[0x72] = seqZPIndirectLoad(makeAdcFinish(true))
	t[0xB2] = seqZPIndirectLoad(ldaFinish)
	t[0xD2] = seqZPIndirectLoad(cmpAFinish)
	t[0xF2] = seqZPIndirectLoad(makeSbcFinish(true))
	t[0x92] = seqZPIndirectStore(staStage)

	t[0x7C] = seqJMPAbsoluteXIndirect()

	for bit := uint8(0); bit < 8; bit++ {
		t[0x07+bit*0x10] = p.seqZPBitRMW(makeRMB(bit))
		t[0x87+bit*0x10] = p.seqZPBitRMW(makeSMB(bit))
		t[0x0F+bit*0x10] = seqBBx(bit, false)
		t[0x8F+bit*0x10] = seqBBx(bit, true)
	}

	if p.rockwell {
		// Rockwell reserves these bytes: two-byte NOPs that fetch and
		// discard an operand, where WDC's 65C02S puts WAI/STP.
		t[0xCB] = seqImmediate(nopReadFinish)
		t[0xDB] = seqImmediate(nopReadFinish)
	} else {
		// WAI/STP are documented as 3-cycle, 1-byte instructions: the
		// opcode fetch, one internal dummy cycle, then the cycle that
		// actually latches the halt/wait status.
		t[0xCB] = []MicroOp{dummyFetch, waiFinish}
		t[0xDB] = []MicroOp{dummyFetch, stpFinish}
	}

	// Remaining reserved bytes: documented CMOS NOPs, which unlike the
	// NMOS illegal set have defined per-column byte lengths and cycle
	// counts on the 65C02 datasheet.
	//
	// Columns $x2 not claimed by (zp) ops and the leftover immediate
	// column bytes: 2-byte, 2-cycle.
	for _, op := range []uint8{0x02, 0x22, 0x42, 0x62, 0x82, 0xC2, 0xE2} {
		t[op] = seqImmediate(nopReadFinish)
	}
	// $44: 2-byte, 3-cycle (reads its zero-page operand).
	t[0x44] = seqZPLoad(nopReadFinish)
	// $54/$D4/$F4: 2-byte, 4-cycle.
	for _, op := range []uint8{0x54, 0xD4, 0xF4} {
		t[op] = seqZPIndexedLoad(indexX, nopReadFinish)
	}
	// $DC/$FC: 3-byte, 4-cycle (no page-cross penalty).
	for _, op := range []uint8{0xDC, 0xFC} {
		t[op] = seqAbsoluteLoad(nopReadFinish)
	}
	// $5C is the oddball: 3-byte, 8-cycle, spending its tail reading
	// $FFFF while the address bus shows the aborted operand fetch.
	t[0x5C] = []MicroOp{
		fetchAddressLow, fetchAddressHigh,
		jamReadAt(0xFFFF), jamReadAt(0xFFFF), jamReadAt(0xFFFF),
		jamReadAt(0xFFFF), jamReadAt(0xFFFF),
	}
	// Everything left (columns $x3 and $xB) is a 1-byte, 1-cycle NOP:
	// just the opcode fetch, no second cycle at all.
	for op := 0; op < 256; op++ {
		if t[op] == nil {
			t[op] = []MicroOp{}
		}
	}
}

// seqJMPAbsoluteXIndirect implements CMOS's JMP (abs,X): resolve
// abs+X first (with the always-present extra cycle, like other CMOS
// indexed-read forms needing the corrected address before the final
// fetch), then read the two-byte target from the resolved pointer.
func seqJMPAbsoluteXIndirect() []MicroOp {
	return []MicroOp{
		fetchAddressLow,
		fetchAddressHigh,
		indexedAlwaysExtra(true, indexX),
		func(s *State, b Bus) { s.tempValue = uint16(b.Read(s.tempAddress)) },
		func(s *State, b Bus) {
			hi := uint16(b.Read(s.tempAddress + 1))
			s.PC = (hi << 8) | s.tempValue
		},
	}
}
