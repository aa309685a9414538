package slave

import "errors"

// BroadcastAddress and DefaultResponseAddress are declared in modbus.go.

// RestartFunc is invoked when a host restart-communications request is
// processed (spec.md §3 "request_restart").
type RestartFunc func()

// ReadDiagnosticsFunc supplies the diagnostic register value returned
// by FC 0x08 sub-function 0x02.
type ReadDiagnosticsFunc func() uint16

// ResetDiagnosticsFunc is invoked by FC 0x08 sub-function 0x0A.
type ResetDiagnosticsFunc func()

// ReadExceptionStatusFunc supplies the single status byte returned by
// FC 0x07; ok=false signals a device failure.
type ReadExceptionStatusFunc func() (value uint8, ok bool)

// CommitWriteFunc notifies the host that a batch write (multiple
// coils/registers, or a file record write) has completed.
type CommitWriteFunc func()

// HandleFnFunc is invoked for function codes the engine does not
// implement internally (e.g. FC 0x11 Report Slave ID), and for FC 0x2B
// requests whose MEI type is not 0x0E (Read Device Identification is
// handled internally). It receives the request
// PDU (function code byte included) and must append its response body
// (function code excluded) to res, returning the number of bytes
// appended.
type HandleFnFunc func(req []byte, res []byte) (n int, status Status)

// Instance is one Modbus server's mutable state plus its descriptor
// tables. It is not safe for concurrent use: a single instance must be
// driven by one executor at a time (spec.md §5).
type Instance struct {
	log LeveledLogger

	slaveAddr               uint8
	allowDefaultResponseAddr bool
	asciiDelimiter          uint8
	isListenOnly            bool
	status                  uint16
	diagRegister            uint16

	busMsgCounter         uint16
	busCommErrCounter     uint16
	exceptionCounter      uint16
	msgCounter            uint16
	noRespCounter         uint16
	nakCounter            uint16
	busyCounter           uint16
	busCharOverrunCounter uint16
	commEventCounter      uint16

	events *eventLog

	coils          []CoilDescriptor
	discreteInputs []CoilDescriptor
	holdingRegs    []RegisterDescriptor
	inputRegs      []RegisterDescriptor
	files          []FileDescriptor

	RequestRestart            RestartFunc
	ReadDiagnostics           ReadDiagnosticsFunc
	ResetDiagnostics          ResetDiagnosticsFunc
	ReadExceptionStatus       ReadExceptionStatusFunc
	CommitCoilsWrite          CommitWriteFunc
	CommitRegsWrite           CommitWriteFunc
	HandleFn                  HandleFnFunc
	ReadDeviceIdentification  DeviceIdentificationFunc
}

// Option configures an Instance at construction time.
type Option func(*Instance) error

// Logger sets the instance's LeveledLogger.
func Logger(l LeveledLogger) Option {
	return func(inst *Instance) error {
		inst.log = l
		return nil
	}
}

// SlaveAddress sets the instance's own slave address (1-247).
func SlaveAddress(addr uint8) Option {
	return func(inst *Instance) error {
		if addr < 1 || addr > 247 {
			return errors.New("slave address must be in [1, 247]")
		}
		inst.slaveAddr = addr
		return nil
	}
}

// AllowDefaultResponseAddress makes the instance additionally accept
// frames addressed to 0xF8 (spec.md §4.7 "default response address").
func AllowDefaultResponseAddress() Option {
	return func(inst *Instance) error {
		inst.allowDefaultResponseAddr = true
		return nil
	}
}

// ASCIIDelimiter overrides the second framing delimiter byte an ASCII
// ADU ends in (spec.md §4.7.2); it defaults to 0x0A (LF) and can still
// be changed at runtime via FC 0x08 sub-function 0x03.
func ASCIIDelimiter(delim uint8) Option {
	return func(inst *Instance) error {
		if delim > 127 {
			return errors.New("ascii delimiter must be in [0, 127]")
		}
		inst.asciiDelimiter = delim
		return nil
	}
}

// DiscreteInputs supplies the read-only discrete input table.
func DiscreteInputs(table []CoilDescriptor) Option {
	return func(inst *Instance) error {
		inst.discreteInputs = table
		return nil
	}
}

// InputRegisters supplies the read-only input register table.
func InputRegisters(table []RegisterDescriptor) Option {
	return func(inst *Instance) error {
		inst.inputRegs = table
		return nil
	}
}

// Files supplies the file record tables served by FC 0x14/0x15.
func Files(table []FileDescriptor) Option {
	return func(inst *Instance) error {
		inst.files = table
		return nil
	}
}

// WithRequestRestart registers the restart-communications callback.
func WithRequestRestart(fn RestartFunc) Option {
	return func(inst *Instance) error {
		inst.RequestRestart = fn
		return nil
	}
}

// WithReadDiagnostics registers the diagnostic-register callback.
func WithReadDiagnostics(fn ReadDiagnosticsFunc) Option {
	return func(inst *Instance) error {
		inst.ReadDiagnostics = fn
		return nil
	}
}

// WithResetDiagnostics registers the clear-counters callback.
func WithResetDiagnostics(fn ResetDiagnosticsFunc) Option {
	return func(inst *Instance) error {
		inst.ResetDiagnostics = fn
		return nil
	}
}

// WithReadExceptionStatus registers the FC 0x07 callback.
func WithReadExceptionStatus(fn ReadExceptionStatusFunc) Option {
	return func(inst *Instance) error {
		inst.ReadExceptionStatus = fn
		return nil
	}
}

// WithCommitCoilsWrite registers the post-batch-write coil callback.
func WithCommitCoilsWrite(fn CommitWriteFunc) Option {
	return func(inst *Instance) error {
		inst.CommitCoilsWrite = fn
		return nil
	}
}

// WithCommitRegsWrite registers the post-batch-write register callback.
func WithCommitRegsWrite(fn CommitWriteFunc) Option {
	return func(inst *Instance) error {
		inst.CommitRegsWrite = fn
		return nil
	}
}

// WithHandleFn registers the fallback handler for unimplemented
// function codes (e.g. FC 0x11 Report Slave ID, or FC 0x2B with an MEI
// type other than 0x0E).
func WithHandleFn(fn HandleFnFunc) Option {
	return func(inst *Instance) error {
		inst.HandleFn = fn
		return nil
	}
}

// WithDeviceIdentification registers the FC 0x2B/0x0E Read Device
// Identification callback.
func WithDeviceIdentification(fn DeviceIdentificationFunc) Option {
	return func(inst *Instance) error {
		inst.ReadDeviceIdentification = fn
		return nil
	}
}

// New builds an Instance over the given coil and holding-register
// tables plus any additional tables/callbacks supplied as Options
// (spec.md §3 "Instance state"). Tables must already satisfy the
// sorting invariants of spec.md §3; New does not validate them.
func New(coils []CoilDescriptor, holdingRegs []RegisterDescriptor, opts ...Option) (*Instance, error) {
	inst := &Instance{
		log:             newLogger("modbus-slave"),
		slaveAddr:       1,
		asciiDelimiter:  0x0A,
		events:          newEventLog(),
		coils:           coils,
		holdingRegs:     holdingRegs,
	}

	for _, o := range opts {
		if err := o(inst); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

// resetCounters zeroes every counter (spec.md §4.5.1 sub-functions
// 0x01 and 0x0A).
func (inst *Instance) resetCounters() {
	inst.busMsgCounter = 0
	inst.busCommErrCounter = 0
	inst.exceptionCounter = 0
	inst.msgCounter = 0
	inst.noRespCounter = 0
	inst.nakCounter = 0
	inst.busyCounter = 0
	inst.busCharOverrunCounter = 0
	inst.commEventCounter = 0
}

// acceptsAddress reports whether a frame addressed to addr should be
// processed by this instance (spec.md §4.7 "Accepted slave addresses").
func (inst *Instance) acceptsAddress(addr uint8) bool {
	if addr == BroadcastAddress {
		return true
	}
	if addr == inst.slaveAddr {
		return true
	}
	if inst.allowDefaultResponseAddr && addr == DefaultResponseAddress {
		return true
	}
	return false
}
