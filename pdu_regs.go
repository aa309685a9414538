package slave

// handleReadRegs implements FC 0x03 (Read Holding Registers) and FC
// 0x04 (Read Input Registers). Unlike bit reads, a missing register
// anywhere in the requested range is an exception (spec.md §4.5); the
// caller passes table for whichever object kind applies.
func handleReadRegs(table []RegisterDescriptor, payload []byte, res []byte, maxQty int) (int, Status) {
	if len(payload) != 4 {
		return 0, StatusIllegalDataValue
	}
	addr := bytesToU16(payload[0:2])
	qty := bytesToU16(payload[2:4])
	if qty == 0 || int(qty) > maxQty {
		return 0, StatusIllegalDataValue
	}

	words, status := readRegisterRange(table, addr, int(qty))
	if status != StatusOK {
		return 0, status
	}

	bytes := u16sToBytes(words)
	res[0] = uint8(len(bytes))
	copy(res[1:], bytes)
	return 1 + len(bytes), StatusOK
}

// readRegisterRange reads count consecutive registers starting at addr
// from table, walking across descriptor boundaries as needed.
func readRegisterRange(table []RegisterDescriptor, addr uint16, count int) ([]uint16, Status) {
	words := make([]uint16, 0, count)
	pos := addr
	remaining := count

	for remaining > 0 {
		d, offset := findCoveringRegister(table, pos)
		if d == nil {
			return nil, StatusIllegalDataAddress
		}

		buf := make([]uint16, remaining)
		n, status := readRegister(d, int(offset), remaining, buf)
		if status != StatusOK {
			return nil, status
		}

		words = append(words, buf[:n]...)
		pos += uint16(n)
		remaining -= n
	}

	return words, StatusOK
}

// validateWriteRange walks count consecutive registers starting at
// addr in table, confirming every one accepts a write, and returns the
// descriptors/offsets/word-counts to apply (spec.md §4.3
// write_allowed(), §7 atomicity: callers must pre-validate the whole
// range before writing any of it).
type registerWriteTarget struct {
	d      *RegisterDescriptor
	offset int
	n      int
}

func validateWriteRange(table []RegisterDescriptor, addr uint16, count int) ([]registerWriteTarget, Status) {
	var targets []registerWriteTarget
	pos := addr
	remaining := count

	for remaining > 0 {
		d, offset := findCoveringRegister(table, pos)
		if d == nil {
			return nil, StatusIllegalDataAddress
		}
		n := registerWriteAllowed(d, int(offset), remaining)
		if n == 0 {
			return nil, StatusIllegalDataAddress
		}
		targets = append(targets, registerWriteTarget{d, int(offset), n})
		pos += uint16(n)
		remaining -= n
	}

	return targets, StatusOK
}

func applyWriteRange(targets []registerWriteTarget, words []uint16) Status {
	idx := 0
	for _, t := range targets {
		if _, status := writeRegister(t.d, t.offset, words[idx:idx+t.n]); status != StatusOK {
			return status
		}
		idx += t.n
	}
	return StatusOK
}

// handleWriteSingleRegister implements FC 0x06 (spec.md §4.5).
func handleWriteSingleRegister(table []RegisterDescriptor, payload []byte, res []byte) (int, Status) {
	if len(payload) != 4 {
		return 0, StatusIllegalDataValue
	}
	addr := bytesToU16(payload[0:2])
	value := bytesToU16(payload[2:4])

	targets, status := validateWriteRange(table, addr, 1)
	if status != StatusOK {
		return 0, status
	}
	if status := applyWriteRange(targets, []uint16{value}); status != StatusOK {
		return 0, status
	}

	return copy(res, payload), StatusOK
}

// handleWriteMultipleRegisters implements FC 0x10 (spec.md §4.5).
func handleWriteMultipleRegisters(inst *Instance, table []RegisterDescriptor, payload []byte, res []byte) (int, Status) {
	if len(payload) < 5 {
		return 0, StatusIllegalDataValue
	}
	addr := bytesToU16(payload[0:2])
	qty := bytesToU16(payload[2:4])
	byteCount := int(payload[4])
	if qty == 0 || qty > 123 {
		return 0, StatusIllegalDataValue
	}
	expected := int(qty) * 2
	if byteCount != expected || len(payload) != 5+expected {
		return 0, StatusIllegalDataValue
	}
	words := bytesToU16s(payload[5 : 5+expected])

	targets, status := validateWriteRange(table, addr, int(qty))
	if status != StatusOK {
		return 0, status
	}
	if status := applyWriteRange(targets, words); status != StatusOK {
		return 0, status
	}

	if inst.CommitRegsWrite != nil {
		inst.CommitRegsWrite()
	}
	return copy(res, payload[0:4]), StatusOK
}

// handleMaskWriteRegister implements FC 0x16 (spec.md §4.5): the
// target register must be exactly one word wide.
func handleMaskWriteRegister(table []RegisterDescriptor, payload []byte, res []byte) (int, Status) {
	if len(payload) != 6 {
		return 0, StatusIllegalDataValue
	}
	addr := bytesToU16(payload[0:2])
	andMask := bytesToU16(payload[2:4])
	orMask := bytesToU16(payload[4:6])

	d := findRegister(table, addr)
	if d == nil || d.Words() != 1 {
		return 0, StatusIllegalDataAddress
	}
	if d.WriteMode == AccessNone || (d.WriteLock != nil && d.WriteLock()) {
		return 0, StatusIllegalDataAddress
	}

	status, words := readRegisterWordsValue(d)
	if status != StatusOK {
		return 0, status
	}
	newValue := (words[0] & andMask) | (orMask &^ andMask)
	if _, status := writeRegister(d, 0, []uint16{newValue}); status != StatusOK {
		return 0, status
	}

	return copy(res, payload), StatusOK
}

// handleReadWriteMultipleRegisters implements FC 0x17. Writes are
// applied before the read is performed (spec.md §4.5).
func handleReadWriteMultipleRegisters(holdingRegs []RegisterDescriptor, payload []byte, res []byte) (int, Status) {
	if len(payload) < 9 {
		return 0, StatusIllegalDataValue
	}
	readAddr := bytesToU16(payload[0:2])
	readQty := bytesToU16(payload[2:4])
	writeAddr := bytesToU16(payload[4:6])
	writeQty := bytesToU16(payload[6:8])
	writeByteCount := int(payload[8])

	if readQty == 0 || readQty > 125 {
		return 0, StatusIllegalDataValue
	}
	if writeQty == 0 || writeQty > 121 {
		return 0, StatusIllegalDataValue
	}
	expected := int(writeQty) * 2
	if writeByteCount != expected || len(payload) != 9+expected {
		return 0, StatusIllegalDataValue
	}
	writeWords := bytesToU16s(payload[9 : 9+expected])

	targets, status := validateWriteRange(holdingRegs, writeAddr, int(writeQty))
	if status != StatusOK {
		return 0, status
	}
	if status := applyWriteRange(targets, writeWords); status != StatusOK {
		return 0, status
	}

	words, status := readRegisterRange(holdingRegs, readAddr, int(readQty))
	if status != StatusOK {
		return 0, status
	}

	bytes := u16sToBytes(words)
	res[0] = uint8(len(bytes))
	copy(res[1:], bytes)
	return 1 + len(bytes), StatusOK
}
