package slave

// getDirectWords reads the current word values out of a direct-pointer
// binding, converting the typed storage to big-endian words.
func getDirectWords(d *RegisterDescriptor) []uint16 {
	switch d.Type {
	case TypeU8:
		if d.U8Ptr == nil {
			return []uint16{0}
		}
		return []uint16{uint16(*d.U8Ptr)}
	case TypeU16:
		if d.U16Ptr == nil {
			return []uint16{0}
		}
		return []uint16{*d.U16Ptr}
	case TypeU32:
		if d.U32Ptr == nil {
			return []uint16{0, 0}
		}
		return u32ToWords(*d.U32Ptr)
	case TypeI32:
		if d.I32Ptr == nil {
			return []uint16{0, 0}
		}
		return u32ToWords(uint32(*d.I32Ptr))
	case TypeF32:
		if d.F32Ptr == nil {
			return []uint16{0, 0}
		}
		return f32ToWords(*d.F32Ptr)
	case TypeU64:
		if d.U64Ptr == nil {
			return []uint16{0, 0, 0, 0}
		}
		return u64ToWords(*d.U64Ptr)
	case TypeI64:
		if d.I64Ptr == nil {
			return []uint16{0, 0, 0, 0}
		}
		return u64ToWords(uint64(*d.I64Ptr))
	case TypeF64:
		if d.F64Ptr == nil {
			return []uint16{0, 0, 0, 0}
		}
		return f64ToWords(*d.F64Ptr)
	case TypeBlockU8:
		return blockU8ToWords(d.BlockU8)
	case TypeBlockU16:
		return append([]uint16(nil), d.BlockU16...)
	default:
		return nil
	}
}

// setDirectWords writes words back into a direct-pointer binding's
// typed storage. words always has length d.Words().
func setDirectWords(d *RegisterDescriptor, words []uint16) {
	switch d.Type {
	case TypeU8:
		if d.U8Ptr != nil {
			*d.U8Ptr = uint8(words[0])
		}
	case TypeU16:
		if d.U16Ptr != nil {
			*d.U16Ptr = words[0]
		}
	case TypeU32:
		if d.U32Ptr != nil {
			*d.U32Ptr = wordsToU32(words)
		}
	case TypeI32:
		if d.I32Ptr != nil {
			*d.I32Ptr = int32(wordsToU32(words))
		}
	case TypeF32:
		if d.F32Ptr != nil {
			*d.F32Ptr = wordsToF32(words)
		}
	case TypeU64:
		if d.U64Ptr != nil {
			*d.U64Ptr = wordsToU64(words)
		}
	case TypeI64:
		if d.I64Ptr != nil {
			*d.I64Ptr = int64(wordsToU64(words))
		}
	case TypeF64:
		if d.F64Ptr != nil {
			*d.F64Ptr = wordsToF64(words)
		}
	case TypeBlockU8:
		wordsToBlockU8(words, d.BlockU8)
	case TypeBlockU16:
		copy(d.BlockU16, words)
	}
}

func blockU8ToWords(b []uint8) []uint16 {
	n := (len(b) + 1) / 2
	words := make([]uint16, n)
	for i := 0; i < n; i++ {
		hi := uint16(b[2*i]) << 8
		var lo uint16
		if 2*i+1 < len(b) {
			lo = uint16(b[2*i+1])
		}
		words[i] = hi | lo
	}
	return words
}

func wordsToBlockU8(words []uint16, b []uint8) {
	for i, w := range words {
		if 2*i < len(b) {
			b[2*i] = uint8(w >> 8)
		}
		if 2*i+1 < len(b) {
			b[2*i+1] = uint8(w)
		}
	}
}

// readRegisterWordsValue returns the descriptor's current full word set
// according to its read binding (spec.md §4.3 read()).
func readRegisterWordsValue(d *RegisterDescriptor) (Status, []uint16) {
	if d.ReadLock != nil && d.ReadLock() {
		return StatusIllegalDataAddress, nil
	}

	switch d.ReadMode {
	case AccessConstant:
		return StatusOK, d.ConstantWords
	case AccessDirect:
		return StatusOK, getDirectWords(d)
	case AccessCallback:
		if d.ReadCallback == nil {
			return StatusServerDeviceFailure, nil
		}
		words, ok := d.ReadCallback()
		if !ok {
			return StatusServerDeviceFailure, nil
		}
		return StatusOK, words
	default:
		return StatusServerDeviceFailure, nil
	}
}

// readRegister produces up to remaining words from d starting offset
// words into its own range, writing them into out (unless out is nil,
// in which case it only validates and reports the word count it would
// have produced). It never produces more than
// min(d.Words()-offset, remaining) words (spec.md §4.3).
func readRegister(d *RegisterDescriptor, offset int, remaining int, out []uint16) (int, Status) {
	status, words := readRegisterWordsValue(d)
	if status != StatusOK {
		return 0, status
	}

	total := len(words)
	if offset >= total {
		return 0, StatusOK
	}

	avail := total - offset
	n := remaining
	if n > avail {
		n = avail
	}

	if out != nil {
		copy(out, words[offset:offset+n])
	}
	return n, StatusOK
}

// registerWriteAllowed reports how many words of a write touching d at
// word-offset offset (with remaining words still to place) may actually
// be written; 0 means the write must be rejected for this descriptor
// (spec.md §4.3 write_allowed()).
func registerWriteAllowed(d *RegisterDescriptor, offset int, remaining int) int {
	if d.WriteMode == AccessNone {
		return 0
	}
	if d.WriteLock != nil && d.WriteLock() {
		return 0
	}

	total := d.Words()
	if offset >= total {
		return 0
	}

	avail := total - offset
	n := remaining
	if n > avail {
		n = avail
	}

	// A mid-descriptor start, or a write that doesn't cover the rest of
	// the descriptor, truncates the stored value unless partial writes
	// are explicitly allowed.
	if (offset > 0 || n < total) && !d.AllowPartialWrite {
		return 0
	}

	return n
}

// writeRegister writes in (up to the point registerWriteAllowed agreed
// to) at word-offset offset into d, atomically with respect to this one
// descriptor: either every word of d ends up consistent, or none of
// d's state changes (spec.md §4.3 write()). Callers must have already
// obtained a non-zero result from registerWriteAllowed for this call.
func writeRegister(d *RegisterDescriptor, offset int, in []uint16) (int, Status) {
	total := d.Words()
	n := len(in)
	if offset+n > total {
		n = total - offset
	}

	words := make([]uint16, total)
	if n < total {
		status, existing := readRegisterWordsValue(d)
		if status != StatusOK {
			return 0, status
		}
		copy(words, existing)
	}
	copy(words[offset:offset+n], in[:n])

	switch d.WriteMode {
	case AccessDirect:
		setDirectWords(d, words)
	case AccessCallback:
		if d.WriteCallback == nil {
			return 0, StatusServerDeviceFailure
		}
		if status := d.WriteCallback(words); status != StatusOK {
			return 0, status
		}
	default:
		return 0, StatusServerDeviceFailure
	}

	if d.PostWrite != nil {
		d.PostWrite(d.Address)
	}
	return n, StatusOK
}
