package slave

// handleDiagnostics implements FC 0x08 and its sub-functions (spec.md
// §4.5.1). req is the full request PDU including the function code
// byte; res is the response body buffer (function code excluded).
func handleDiagnostics(inst *Instance, req []byte, res []byte) (int, Status) {
	if len(req) < 3 {
		return 0, StatusIllegalDataValue
	}
	subfn := bytesToU16(req[1:3])

	if subfn != subReturnQueryData && len(req) != 5 {
		return 0, StatusIllegalDataValue
	}

	switch subfn {
	case subReturnQueryData:
		return copy(res, req[1:]), StatusOK

	case subRestartComms:
		data := bytesToU16(req[3:5])
		if data != 0x0000 && data != 0xFF00 {
			return 0, StatusIllegalDataValue
		}
		if inst.RequestRestart != nil {
			inst.RequestRestart()
		}
		inst.isListenOnly = false
		inst.resetCounters()
		if data == 0xFF00 {
			inst.events.clear()
		} else {
			inst.events.append(EventCommRestart)
		}
		return copy(res, req[1:5]), StatusOK

	case subReturnDiagRegister:
		if bytesToU16(req[3:5]) != 0 {
			return 0, StatusIllegalDataValue
		}
		var value uint16
		if inst.ReadDiagnostics != nil {
			value = inst.ReadDiagnostics()
		}
		return diagEcho(res, subfn, value), StatusOK

	case subChangeASCIIDelimiter:
		hi, lo := req[3], req[4]
		if hi > 127 || lo != 0 {
			return 0, StatusIllegalDataValue
		}
		inst.asciiDelimiter = hi
		return copy(res, req[1:5]), StatusOK

	case subForceListenOnly:
		if bytesToU16(req[3:5]) != 0 {
			return 0, StatusIllegalDataValue
		}
		inst.isListenOnly = true
		inst.events.append(EventEnteredListenOnly)
		return copy(res, req[1:5]), StatusOK

	case subClearCountersAndDiag:
		if bytesToU16(req[3:5]) != 0 {
			return 0, StatusIllegalDataValue
		}
		inst.resetCounters()
		if inst.ResetDiagnostics != nil {
			inst.ResetDiagnostics()
		}
		return diagEcho(res, subfn, 0), StatusOK

	case subReturnBusMsgCount:
		return diagEcho(res, subfn, inst.busMsgCounter), StatusOK
	case subReturnBusCommErrCount:
		return diagEcho(res, subfn, inst.busCommErrCounter), StatusOK
	case subReturnExceptionCount:
		return diagEcho(res, subfn, inst.exceptionCounter), StatusOK
	case subReturnMsgCount:
		return diagEcho(res, subfn, inst.msgCounter), StatusOK
	case subReturnNoRespCount:
		return diagEcho(res, subfn, inst.noRespCounter), StatusOK
	case subReturnNAKCount:
		return diagEcho(res, subfn, inst.nakCounter), StatusOK
	case subReturnBusyCount:
		return diagEcho(res, subfn, inst.busyCounter), StatusOK
	case subReturnOverrunCount:
		return diagEcho(res, subfn, inst.busCharOverrunCounter), StatusOK

	case subClearOverrunCounter:
		if bytesToU16(req[3:5]) != 0 {
			return 0, StatusIllegalDataValue
		}
		inst.busCharOverrunCounter = 0
		return diagEcho(res, subfn, 0), StatusOK

	default:
		return 0, StatusIllegalFunction
	}
}

func diagEcho(res []byte, subfn uint16, data uint16) int {
	copy(res[0:2], u16ToBytes(subfn))
	copy(res[2:4], u16ToBytes(data))
	return 4
}

// handleCommEventCounter implements FC 0x0B (spec.md §4.5).
func handleCommEventCounter(inst *Instance, res []byte) (int, Status) {
	copy(res[0:2], u16ToBytes(inst.status))
	copy(res[2:4], u16ToBytes(inst.commEventCounter))
	return 4, StatusOK
}

// handleCommEventLog implements FC 0x0C (spec.md §4.5, §4.8).
func handleCommEventLog(inst *Instance, res []byte) (int, Status) {
	events := inst.events.snapshot()
	res[0] = uint8(6 + len(events))
	copy(res[1:3], u16ToBytes(inst.status))
	copy(res[3:5], u16ToBytes(inst.commEventCounter))
	copy(res[5:7], u16ToBytes(inst.busMsgCounter))
	copy(res[7:], events)
	return 7 + len(events), StatusOK
}

// handleReadExceptionStatus implements FC 0x07 (spec.md §4.5).
func handleReadExceptionStatus(inst *Instance, res []byte) (int, Status) {
	if inst.ReadExceptionStatus == nil {
		return 0, StatusIllegalFunction
	}
	value, ok := inst.ReadExceptionStatus()
	if !ok {
		return 0, StatusServerDeviceFailure
	}
	res[0] = value
	return 1, StatusOK
}
