package slave

// handleReadBits implements FC 0x01 (Read Coils) and FC 0x02 (Read
// Discrete Inputs) against table (spec.md §4.5). The first requested
// address missing from table is an exception; a later missing address
// within the batch is zero-padded.
func handleReadBits(table []CoilDescriptor, payload []byte, res []byte) (int, Status) {
	if len(payload) != 4 {
		return 0, StatusIllegalDataValue
	}
	addr := bytesToU16(payload[0:2])
	qty := bytesToU16(payload[2:4])
	if qty == 0 || qty > 2000 {
		return 0, StatusIllegalDataValue
	}

	values := make([]bool, qty)
	for i := 0; i < int(qty); i++ {
		a := uint32(addr) + uint32(i)
		var d *CoilDescriptor
		if a <= 0xFFFF {
			d = findCoil(table, uint16(a))
		}

		if d == nil {
			if i == 0 {
				return 0, StatusIllegalDataAddress
			}
			continue
		}

		status, value := readCoilValue(d)
		if status == StatusIllegalDataAddress {
			if i == 0 {
				return 0, StatusIllegalDataAddress
			}
			continue
		}
		if status != StatusOK {
			return 0, status
		}
		values[i] = value
	}

	packed := encodeBools(values)
	res[0] = uint8(len(packed))
	copy(res[1:], packed)
	return 1 + len(packed), StatusOK
}

// handleWriteSingleCoil implements FC 0x05 (spec.md §4.5).
func handleWriteSingleCoil(table []CoilDescriptor, payload []byte, res []byte) (int, Status) {
	if len(payload) != 4 {
		return 0, StatusIllegalDataValue
	}
	addr := bytesToU16(payload[0:2])
	raw := bytesToU16(payload[2:4])
	if raw != 0x0000 && raw != 0xFF00 {
		return 0, StatusIllegalDataValue
	}

	d := findCoil(table, addr)
	if d == nil || !coilWriteAllowed(d) {
		return 0, StatusIllegalDataAddress
	}
	if status := writeCoil(d, raw == 0xFF00); status != StatusOK {
		return 0, status
	}

	return copy(res, payload), StatusOK
}

// handleWriteMultipleCoils implements FC 0x0F. Every target coil is
// validated before any write is applied (spec.md §7 atomicity).
func handleWriteMultipleCoils(inst *Instance, table []CoilDescriptor, payload []byte, res []byte) (int, Status) {
	if len(payload) < 5 {
		return 0, StatusIllegalDataValue
	}
	addr := bytesToU16(payload[0:2])
	qty := bytesToU16(payload[2:4])
	byteCount := int(payload[4])
	if qty == 0 || qty > 1968 {
		return 0, StatusIllegalDataValue
	}
	expected := (int(qty) + 7) / 8
	if byteCount != expected || len(payload) != 5+expected {
		return 0, StatusIllegalDataValue
	}
	values := decodeBools(qty, payload[5:5+expected])

	targets := make([]*CoilDescriptor, qty)
	for i := 0; i < int(qty); i++ {
		a := uint32(addr) + uint32(i)
		if a > 0xFFFF {
			return 0, StatusIllegalDataAddress
		}
		d := findCoil(table, uint16(a))
		if d == nil || !coilWriteAllowed(d) {
			return 0, StatusIllegalDataAddress
		}
		targets[i] = d
	}

	for i, d := range targets {
		if status := writeCoil(d, values[i]); status != StatusOK {
			return 0, status
		}
	}

	if inst.CommitCoilsWrite != nil {
		inst.CommitCoilsWrite()
	}
	return copy(res, payload[0:4]), StatusOK
}
