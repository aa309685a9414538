package slave

import "testing"

func TestRTUFrameRejectsCorruptedBody(t *testing.T) {
	var cell uint16 = 0xAAAA
	regs := []RegisterDescriptor{u16Reg(0, &cell, false)}
	inst, err := New(nil, regs, SlaveAddress(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01}
	frame := appendCRC(body)
	frame[2] ^= 0xFF // corrupt a body byte, trailer left untouched

	out := make([]byte, 256)
	n := inst.HandleRTUFrame(frame, out)

	if n != 0 {
		t.Fatalf("corrupted frame produced a response: % x", out[:n])
	}
	if inst.busCommErrCounter != 1 {
		t.Fatalf("bus_comm_err_counter = %d, want 1", inst.busCommErrCounter)
	}
}

func TestASCIIFrameRejectsBadLRC(t *testing.T) {
	var cell uint16 = 0x4242
	regs := []RegisterDescriptor{u16Reg(0x6B, &cell, false)}
	inst, err := New(nil, regs, SlaveAddress(17))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// valid frame from the §8 boundary scenario with its last hex digit
	// of the LRC byte flipped
	frame := []byte(":1103006B00037F\r\n")
	out := make([]byte, 513)
	n := inst.HandleASCIIFrame(frame, out)

	if n != 0 {
		t.Fatalf("bad-LRC frame produced a response: %q", out[:n])
	}
	if inst.busCommErrCounter != 1 {
		t.Fatalf("bus_comm_err_counter = %d, want 1", inst.busCommErrCounter)
	}
}

func TestTCPFrameRejectsNonZeroProtocolID(t *testing.T) {
	var cell uint16
	regs := []RegisterDescriptor{u16Reg(0, &cell, false)}
	inst, err := New(nil, regs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x06, 0x01, 0x03, 0x00, 0x00, 0x00, 0x01}
	out := make([]byte, 260)
	n := inst.HandleTCPFrame(req, out)

	if n != 0 {
		t.Fatalf("non-zero protocol id frame produced a response: % x", out[:n])
	}
}

func TestTCPFrameRejectsLengthMismatch(t *testing.T) {
	var cell uint16
	regs := []RegisterDescriptor{u16Reg(0, &cell, false)}
	inst, err := New(nil, regs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x09, 0x01, 0x03, 0x00, 0x00, 0x00, 0x01}
	out := make([]byte, 260)
	n := inst.HandleTCPFrame(req, out)

	if n != 0 {
		t.Fatalf("mismatched-length frame produced a response: % x", out[:n])
	}
}

func TestRTUFrameAcceptsDefaultResponseAddressWhenAllowed(t *testing.T) {
	inst, err := New(nil, nil, SlaveAddress(9), AllowDefaultResponseAddress())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := []byte{DefaultResponseAddress, 0x08, 0x00, 0x00, 0xA5, 0x37}
	out := make([]byte, 256)
	n := inst.HandleRTUFrame(appendCRC(body), out)

	if n == 0 {
		t.Fatalf("frame addressed to the default response address was dropped")
	}
	if out[0] != DefaultResponseAddress {
		t.Fatalf("response address = 0x%02x, want 0x%02x", out[0], DefaultResponseAddress)
	}
}

func TestRTUFrameRejectsUnaddressedInstance(t *testing.T) {
	inst, err := New(nil, nil, SlaveAddress(9))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := []byte{0x02, 0x08, 0x00, 0x00, 0xA5, 0x37}
	frame := appendCRC(body)
	out := make([]byte, 256)
	n := inst.HandleRTUFrame(frame, out)

	if n != 0 {
		t.Fatalf("frame addressed to a different slave produced a response: % x", out[:n])
	}
	if inst.busMsgCounter != 1 {
		t.Fatalf("bus_msg_counter = %d, want 1 (still counted)", inst.busMsgCounter)
	}
}
