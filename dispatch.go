package slave

// maxPDUSize is the largest PDU size in bytes, function code byte
// included.
const maxPDUSize = 253

// HandleRequest is the PDU dispatcher (spec.md §4.6). req is the
// request PDU starting at the function code byte; res must have
// capacity for the largest possible response PDU. It returns the
// number of response bytes written to res; 0 means no reply should be
// sent (an empty request, or listen-only mode). A malformed request gets
// an exception response; broadcast suppression is left to the framing
// layers.
func (inst *Instance) HandleRequest(req []byte, res []byte) int {
	if len(req) < 1 {
		return 0
	}
	fc := req[0]

	if inst.isListenOnly && !isRestartRequest(req) {
		inst.events.append(EventSend | EventSendListenOnly)
		return 0
	}

	inst.msgCounter++
	wasListenOnly := inst.isListenOnly

	res[0] = req[0]
	var n int
	var status Status

	switch fc {
	case fcReadCoils:
		n, status = handleReadBits(inst.coils, req[1:], res[1:])
	case fcReadDiscreteInputs:
		n, status = handleReadBits(inst.discreteInputs, req[1:], res[1:])
	case fcReadHoldingRegisters:
		n, status = handleReadRegs(inst.holdingRegs, req[1:], res[1:], 125)
	case fcReadInputRegisters:
		n, status = handleReadRegs(inst.inputRegs, req[1:], res[1:], 125)
	case fcWriteSingleCoil:
		n, status = handleWriteSingleCoil(inst.coils, req[1:], res[1:])
	case fcWriteSingleRegister:
		n, status = handleWriteSingleRegister(inst.holdingRegs, req[1:], res[1:])
	case fcReadExceptionStatus:
		n, status = handleReadExceptionStatus(inst, res[1:])
	case fcDiagnostics:
		n, status = handleDiagnostics(inst, req, res[1:])
	case fcCommEventCounter:
		n, status = handleCommEventCounter(inst, res[1:])
	case fcCommEventLog:
		n, status = handleCommEventLog(inst, res[1:])
	case fcWriteMultipleCoils:
		n, status = handleWriteMultipleCoils(inst, inst.coils, req[1:], res[1:])
	case fcWriteMultipleRegisters:
		n, status = handleWriteMultipleRegisters(inst, inst.holdingRegs, req[1:], res[1:])
	case fcReadFileRecord:
		n, status = handleReadFileRecord(inst.files, req[1:], res[1:])
	case fcWriteFileRecord:
		n, status = handleWriteFileRecord(inst, inst.files, req[1:], res[1:])
	case fcMaskWriteRegister:
		n, status = handleMaskWriteRegister(inst.holdingRegs, req[1:], res[1:])
	case fcReadWriteMultipleRegisters:
		n, status = handleReadWriteMultipleRegisters(inst.holdingRegs, req[1:], res[1:])
	case fcEncapsulatedInterface:
		if len(req) >= 2 && req[1] == meiReadDeviceID {
			n, status = handleReadDeviceIdentification(inst, req[1:], res[1:])
		} else if inst.HandleFn != nil {
			n, status = inst.HandleFn(req, res[1:])
		} else {
			status = StatusIllegalFunction
		}
	default:
		if inst.HandleFn != nil {
			n, status = inst.HandleFn(req, res[1:])
		} else {
			status = StatusIllegalFunction
		}
	}

	resLen := 1 + n
	if status != StatusOK {
		res[0] = fc | 0x80
		res[1] = status.exceptionCode()
		resLen = 2
		inst.exceptionCounter++
		if status == StatusNegativeAcknowledge {
			inst.nakCounter++
		}
		if status == StatusServerDeviceBusy {
			inst.busyCounter++
		}
	} else if fc != fcDiagnostics && fc != fcCommEventCounter && fc != fcCommEventLog {
		inst.commEventCounter++
	}

	// a 0xFF00 restart just cleared the event log (pdu_diag.go); the
	// usual trailing send-event must not repopulate it (spec.md §4.6
	// step 8, §8 scenario 5).
	if status != StatusOK || !isClearLogRestartRequest(req) {
		inst.events.append(sendEventByte(status, wasListenOnly))
	}

	if wasListenOnly || inst.isListenOnly {
		return 0
	}
	return resLen
}

// isRestartRequest reports whether req is an FC 0x08 sub-function 0x01
// (Restart Communications Option) request, the only request a
// listen-only instance still processes (spec.md §4.6 step 2).
func isRestartRequest(req []byte) bool {
	return len(req) >= 3 && req[0] == fcDiagnostics && bytesToU16(req[1:3]) == subRestartComms
}

// isClearLogRestartRequest reports whether req is a Restart
// Communications Option request with data 0xFF00, which clears the
// event log (spec.md §4.5.1) rather than appending to it.
func isClearLogRestartRequest(req []byte) bool {
	return isRestartRequest(req) && len(req) == 5 && bytesToU16(req[3:5]) == 0xFF00
}

// sendEventByte builds the send-event byte appended after every
// processed request (spec.md §4.6 step 8, §6).
func sendEventByte(status Status, wasListenOnly bool) uint8 {
	event := EventSend

	switch status {
	case StatusIllegalFunction, StatusIllegalDataAddress, StatusIllegalDataValue:
		event |= EventSendReadEx
	case StatusServerDeviceFailure:
		event |= EventSendAbortEx
	case StatusAcknowledge, StatusServerDeviceBusy:
		event |= EventSendBusyEx
	case StatusNegativeAcknowledge:
		event |= EventSendNAKEx
	}

	if wasListenOnly {
		event |= EventSendListenOnly
	}

	return event
}
