// Package transport provides the byte-level I/O adapters spec.md §1
// scopes out of the core engine: it reads framed ADUs off a serial
// port or TCP socket, hands them to a slave.Instance, and writes back
// whatever the instance produces. None of this package's logic governs
// PDU semantics; it only discovers frame boundaries and moves bytes.
package transport

import (
	"time"

	"go.bug.st/serial"

	slave "github.com/hemlock-automation/modbus-slave"
)

// SerialConfig describes how to open the physical port backing an RTU
// link.
type SerialConfig struct {
	Device   string
	BaudRate int
	DataBits int
	Parity   serial.Parity
	StopBits serial.StopBits

	// InterFrameGap is the idle period that marks the end of one RTU
	// ADU; it should be at least 3.5 character times at BaudRate
	// (spec.md §1 "timing of the 3.5-character RTU inter-frame gap").
	InterFrameGap time.Duration
}

// SerialPort drives a slave.Instance over RTU framing on a physical
// serial port.
type SerialPort struct {
	cfg  SerialConfig
	port serial.Port
	inst *slave.Instance
	log  slave.LeveledLogger
}

// NewSerialPort opens cfg.Device and returns a SerialPort ready to
// serve inst.
func NewSerialPort(cfg SerialConfig, inst *slave.Instance, log slave.LeveledLogger) (*SerialPort, error) {
	if cfg.InterFrameGap <= 0 {
		cfg.InterFrameGap = 4 * time.Millisecond
	}

	port, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   cfg.Parity,
		StopBits: cfg.StopBits,
	})
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(cfg.InterFrameGap); err != nil {
		port.Close()
		return nil, err
	}

	return &SerialPort{cfg: cfg, port: port, inst: inst, log: log}, nil
}

// Close releases the underlying serial port.
func (sp *SerialPort) Close() error {
	return sp.port.Close()
}

// Serve reads RTU ADUs until the port is closed or a fatal I/O error
// occurs, dispatching each through the instance and writing back any
// produced response.
func (sp *SerialPort) Serve() error {
	rxbuf := make([]byte, 256)
	txbuf := make([]byte, 256)

	for {
		frame, err := sp.readFrame(rxbuf)
		if err != nil {
			return err
		}
		if len(frame) == 0 {
			continue
		}

		n := sp.inst.HandleRTUFrame(frame, txbuf)
		if n == 0 {
			continue
		}
		if _, err := sp.port.Write(txbuf[:n]); err != nil {
			sp.log.Warningf("serial write failed: %v", err)
		}
	}
}

// readFrame accumulates bytes until a read timeout (the configured
// inter-frame gap) is seen after at least one byte has arrived.
func (sp *SerialPort) readFrame(rxbuf []byte) ([]byte, error) {
	frame := rxbuf[:0]

	for {
		n, err := sp.port.Read(rxbuf[len(frame):cap(rxbuf)])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			if len(frame) > 0 {
				return frame, nil
			}
			continue
		}
		frame = rxbuf[:len(frame)+n]
		if len(frame) == cap(rxbuf) {
			return frame, nil
		}
	}
}
