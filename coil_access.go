package slave

// readCoil implements spec.md §4.2 coil read semantics.
func readCoil(d *CoilDescriptor) Status {
	status, _ := readCoilValue(d)
	return status
}

// readCoilValue returns the coil's boolean value together with the
// status; the value is only meaningful when status is StatusOK.
func readCoilValue(d *CoilDescriptor) (Status, bool) {
	if d.ReadLock != nil && d.ReadLock() {
		return StatusIllegalDataAddress, false
	}

	switch d.ReadMode {
	case AccessConstant:
		return StatusOK, d.ConstantValue
	case AccessDirect:
		if d.Cell == nil || d.BitIndex > 7 {
			return StatusServerDeviceFailure, false
		}
		return StatusOK, (*d.Cell>>d.BitIndex)&0x01 == 0x01
	case AccessCallback:
		if d.ReadCallback == nil {
			return StatusServerDeviceFailure, false
		}
		value, ok := d.ReadCallback()
		if !ok {
			return StatusServerDeviceFailure, false
		}
		return StatusOK, value
	default:
		return StatusServerDeviceFailure, false
	}
}

// coilWriteAllowed reports whether d currently accepts writes.
func coilWriteAllowed(d *CoilDescriptor) bool {
	if d.WriteMode == AccessNone {
		return false
	}
	if d.WriteLock != nil && d.WriteLock() {
		return false
	}
	return true
}

// writeCoil implements spec.md §4.2 coil write semantics. Callers must
// have already checked coilWriteAllowed.
func writeCoil(d *CoilDescriptor, value bool) Status {
	switch d.WriteMode {
	case AccessDirect:
		if d.Cell == nil || d.BitIndex > 7 {
			return StatusServerDeviceFailure
		}
		if value {
			*d.Cell |= 0x01 << d.BitIndex
		} else {
			*d.Cell &^= 0x01 << d.BitIndex
		}
	case AccessCallback:
		if d.WriteCallback == nil {
			return StatusServerDeviceFailure
		}
		if status := d.WriteCallback(value); status != StatusOK {
			return status
		}
	default:
		return StatusServerDeviceFailure
	}

	if d.PostWrite != nil {
		d.PostWrite(d.Address, value)
	}
	return StatusOK
}
