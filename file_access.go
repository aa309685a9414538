package slave

// fileRead walks recordLength consecutive 16-bit positions starting at
// recordNo within file's record table (spec.md §4.4 file_read()). A
// position with no covering descriptor, or one whose read is locked,
// is zero-filled and does not abort the read — unless it is the very
// first position requested, which is reported as ILLEGAL_DATA_ADDR.
// out may be nil to validate only; the word count actually produced
// (or that would have been produced) is always returned.
func fileRead(file *FileDescriptor, recordNo uint16, recordLength int, out []uint16) (int, Status) {
	pos := recordNo
	remaining := recordLength
	produced := 0
	first := true

	for remaining > 0 {
		d, offset := findCoveringRegister(file.Records, pos)
		if d == nil || d.ReadMode == AccessNone {
			if first {
				return 0, StatusIllegalDataAddress
			}
			if out != nil {
				out[produced] = 0
			}
			produced++
			pos++
			remaining--
			first = false
			continue
		}

		status, words := readRegisterWordsValue(d)
		if status == StatusIllegalDataAddress {
			if first {
				return 0, StatusIllegalDataAddress
			}
			if out != nil {
				out[produced] = 0
			}
			produced++
			pos++
			remaining--
			first = false
			continue
		}
		if status != StatusOK {
			return produced, status
		}

		n := len(words) - int(offset)
		if n > remaining {
			n = remaining
		}
		if out != nil {
			copy(out[produced:produced+n], words[int(offset):int(offset)+n])
		}
		produced += n
		pos += uint16(n)
		remaining -= n
		first = false
	}

	return produced, StatusOK
}

// fileWriteAllowed reports whether every one of recordLength positions
// starting at recordNo in file's record table accepts a write (spec.md
// §4.4 file_write_allowed()). It stops at the first position that
// cannot be written.
func fileWriteAllowed(file *FileDescriptor, recordNo uint16, recordLength int) bool {
	pos := recordNo
	remaining := recordLength

	for remaining > 0 {
		d, offset := findCoveringRegister(file.Records, pos)
		if d == nil {
			return false
		}
		n := registerWriteAllowed(d, int(offset), remaining)
		if n == 0 {
			return false
		}
		pos += uint16(n)
		remaining -= n
	}

	return true
}

// fileWrite writes values starting at recordNo in file's record table
// (spec.md §4.4 file_write()). Callers must have already obtained true
// from fileWriteAllowed covering the same range. On any underlying
// write returning a non-OK status, that status is returned immediately
// and the transaction is left partially applied.
func fileWrite(file *FileDescriptor, recordNo uint16, values []uint16) Status {
	pos := recordNo
	remaining := len(values)
	idx := 0

	for remaining > 0 {
		d, offset := findCoveringRegister(file.Records, pos)
		if d == nil {
			return StatusIllegalDataAddress
		}
		n, status := writeRegister(d, int(offset), values[idx:])
		if status != StatusOK {
			return status
		}
		idx += n
		pos += uint16(n)
		remaining -= n
	}

	return StatusOK
}
