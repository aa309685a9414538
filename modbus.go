package slave

import (
	"errors"
)

// Function codes.
const (
	fcReadCoils                  uint8 = 0x01
	fcReadDiscreteInputs         uint8 = 0x02
	fcReadHoldingRegisters       uint8 = 0x03
	fcReadInputRegisters         uint8 = 0x04
	fcWriteSingleCoil            uint8 = 0x05
	fcWriteSingleRegister        uint8 = 0x06
	fcReadExceptionStatus        uint8 = 0x07
	fcDiagnostics                uint8 = 0x08
	fcCommEventCounter           uint8 = 0x0B
	fcCommEventLog               uint8 = 0x0C
	fcWriteMultipleCoils         uint8 = 0x0F
	fcWriteMultipleRegisters     uint8 = 0x10
	fcReportSlaveID              uint8 = 0x11
	fcReadFileRecord             uint8 = 0x14
	fcWriteFileRecord            uint8 = 0x15
	fcMaskWriteRegister          uint8 = 0x16
	fcReadWriteMultipleRegisters uint8 = 0x17
	fcEncapsulatedInterface      uint8 = 0x2B

	meiReadDeviceID uint8 = 0x0E
)

// Diagnostics (FC 0x08) sub-function codes.
const (
	subReturnQueryData       uint16 = 0x00
	subRestartComms          uint16 = 0x01
	subReturnDiagRegister    uint16 = 0x02
	subChangeASCIIDelimiter  uint16 = 0x03
	subForceListenOnly       uint16 = 0x04
	subClearCountersAndDiag  uint16 = 0x0A
	subReturnBusMsgCount     uint16 = 0x0B
	subReturnBusCommErrCount uint16 = 0x0C
	subReturnExceptionCount  uint16 = 0x0D
	subReturnMsgCount        uint16 = 0x0E
	subReturnNoRespCount     uint16 = 0x0F
	subReturnNAKCount        uint16 = 0x10
	subReturnBusyCount       uint16 = 0x11
	subReturnOverrunCount    uint16 = 0x12
	subClearOverrunCounter   uint16 = 0x14
)

// Exception codes (spec.md §6).
const (
	ExIllegalFunction     uint8 = 0x01
	ExIllegalDataAddress  uint8 = 0x02
	ExIllegalDataValue    uint8 = 0x03
	ExServerDeviceFailure uint8 = 0x04
	ExAcknowledge         uint8 = 0x05
	ExServerDeviceBusy    uint8 = 0x06
	ExNegativeAcknowledge uint8 = 0x07
	ExMemoryParityError   uint8 = 0x08
)

// Status is the engine-level outcome of processing a request. It maps
// one-to-one onto a wire exception code (spec.md §7).
type Status uint8

const (
	StatusOK Status = iota
	StatusIllegalFunction
	StatusIllegalDataAddress
	StatusIllegalDataValue
	StatusServerDeviceFailure
	StatusAcknowledge
	StatusServerDeviceBusy
	StatusNegativeAcknowledge
	StatusMemoryParityError
)

// String implements fmt.Stringer for logging.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusIllegalFunction:
		return "illegal function"
	case StatusIllegalDataAddress:
		return "illegal data address"
	case StatusIllegalDataValue:
		return "illegal data value"
	case StatusServerDeviceFailure:
		return "server device failure"
	case StatusAcknowledge:
		return "acknowledge"
	case StatusServerDeviceBusy:
		return "server device busy"
	case StatusNegativeAcknowledge:
		return "negative acknowledge"
	case StatusMemoryParityError:
		return "memory parity error"
	default:
		return "unknown status"
	}
}

// exceptionCode returns the wire exception code for a non-OK status.
func (s Status) exceptionCode() uint8 {
	switch s {
	case StatusIllegalFunction:
		return ExIllegalFunction
	case StatusIllegalDataAddress:
		return ExIllegalDataAddress
	case StatusIllegalDataValue:
		return ExIllegalDataValue
	case StatusAcknowledge:
		return ExAcknowledge
	case StatusServerDeviceBusy:
		return ExServerDeviceBusy
	case StatusNegativeAcknowledge:
		return ExNegativeAcknowledge
	case StatusMemoryParityError:
		return ExMemoryParityError
	default:
		return ExServerDeviceFailure
	}
}

// Framing-layer errors. These never turn into Modbus exceptions: on any
// of these, the caller drops the frame silently (spec.md §7).
var (
	ErrShortFrame     = errors.New("short frame")
	ErrProtocolError  = errors.New("protocol error")
	ErrBadCRC         = errors.New("bad crc")
	ErrBadLRC         = errors.New("bad lrc")
	ErrUnknownProtoID = errors.New("unknown protocol identifier")
	ErrNotAddressed   = errors.New("frame not addressed to this instance")
	ErrConfiguration  = errors.New("configuration error")
)

// Broadcast and default-response addresses (spec.md §6).
const (
	BroadcastAddress       uint8 = 0x00
	DefaultResponseAddress uint8 = 0xF8
)
