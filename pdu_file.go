package slave

const fileRefType = 0x06

// handleReadFileRecord implements FC 0x14 (spec.md §4.5). Each
// sub-request reads recLen consecutive records starting at recNo; the
// cumulative response body is capped at 245 bytes.
func handleReadFileRecord(table []FileDescriptor, payload []byte, res []byte) (int, Status) {
	if len(payload) < 1 {
		return 0, StatusIllegalDataValue
	}
	byteCount := int(payload[0])
	if byteCount < 7 || byteCount > 245 || byteCount%7 != 0 {
		return 0, StatusIllegalDataValue
	}
	if len(payload) != 1+byteCount {
		return 0, StatusIllegalDataValue
	}
	sub := payload[1:]

	pos := 1
	bodyBytes := 0
	for i := 0; i < byteCount; i += 7 {
		reftype := sub[i]
		fileNo := bytesToU16(sub[i+1 : i+3])
		recNo := bytesToU16(sub[i+3 : i+5])
		recLen := bytesToU16(sub[i+5 : i+7])

		if reftype != fileRefType || fileNo == 0 || recNo > 0x270F || recLen < 1 {
			return 0, StatusIllegalDataValue
		}

		f := findFile(table, fileNo)
		if f == nil {
			return 0, StatusIllegalDataAddress
		}

		words := make([]uint16, recLen)
		n, status := fileRead(f, recNo, int(recLen), words)
		if status != StatusOK {
			return 0, status
		}
		if n != int(recLen) {
			return 0, StatusIllegalDataAddress
		}

		subLen := 1 + 2*int(recLen)
		if 1+bodyBytes+1+subLen > 245 {
			return 0, StatusIllegalDataValue
		}

		res[pos] = uint8(subLen)
		res[pos+1] = fileRefType
		wbytes := u16sToBytes(words)
		copy(res[pos+2:], wbytes)
		pos += 2 + len(wbytes)
		bodyBytes += 1 + subLen
	}

	res[0] = uint8(bodyBytes)
	return pos, StatusOK
}

// handleWriteFileRecord implements FC 0x15 (spec.md §4.5). Every
// sub-request is validated before any is applied.
func handleWriteFileRecord(inst *Instance, table []FileDescriptor, payload []byte, res []byte) (int, Status) {
	if len(payload) < 1 {
		return 0, StatusIllegalDataValue
	}
	byteCount := int(payload[0])
	if len(payload) != 1+byteCount {
		return 0, StatusIllegalDataValue
	}
	sub := payload[1:]

	type writeFileTarget struct {
		f     *FileDescriptor
		recNo uint16
		words []uint16
	}
	var targets []writeFileTarget

	i := 0
	for i < len(sub) {
		if i+7 > len(sub) {
			return 0, StatusIllegalDataValue
		}
		reftype := sub[i]
		fileNo := bytesToU16(sub[i+1 : i+3])
		recNo := bytesToU16(sub[i+3 : i+5])
		recLen := bytesToU16(sub[i+5 : i+7])
		dataStart := i + 7
		dataLen := int(recLen) * 2

		if reftype != fileRefType || fileNo == 0 || recNo > 0x270F || recLen < 1 || dataStart+dataLen > len(sub) {
			return 0, StatusIllegalDataValue
		}

		f := findFile(table, fileNo)
		if f == nil {
			return 0, StatusIllegalDataAddress
		}
		if !fileWriteAllowed(f, recNo, int(recLen)) {
			return 0, StatusIllegalDataAddress
		}

		targets = append(targets, writeFileTarget{
			f:     f,
			recNo: recNo,
			words: bytesToU16s(sub[dataStart : dataStart+dataLen]),
		})
		i = dataStart + dataLen
	}

	for _, t := range targets {
		if status := fileWrite(t.f, t.recNo, t.words); status != StatusOK {
			return 0, status
		}
	}

	if inst.CommitRegsWrite != nil {
		inst.CommitRegsWrite()
	}
	return copy(res, payload), StatusOK
}
