package slave

import "testing"

// The six boundary scenarios below are the literal examples of
// spec.md §8.

func TestBoundaryRTUReadHoldingRegs(t *testing.T) {
	var r1, r2, r3 uint16 = 0x022B, 0x0000, 0x0064
	regs := []RegisterDescriptor{
		u16Reg(0x006B, &r1, false),
		u16Reg(0x006C, &r2, false),
		u16Reg(0x006D, &r3, false),
	}

	inst, err := New(nil, regs, SlaveAddress(17))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x11, 0x03, 0x00, 0x6B, 0x00, 0x03, 0x76, 0x87}
	out := make([]byte, 256)
	n := inst.HandleRTUFrame(req, out)

	if n != 3+6+2 {
		t.Fatalf("response length = %d, want %d", n, 3+6+2)
	}
	if out[0] != 0x11 || out[1] != 0x03 || out[2] != 0x06 {
		t.Fatalf("response header = % x, want 11 03 06", out[:3])
	}

	var c crc
	c.init()
	c.add(out[:n-2])
	if !c.isEqual(out[n-2], out[n-1]) {
		t.Fatalf("response CRC invalid")
	}
}

func TestBoundaryTCPWriteSingleCoil(t *testing.T) {
	var cell uint8
	coils := []CoilDescriptor{bitCoil(0x00AC, &cell, true)}

	inst, err := New(coils, nil, SlaveAddress(0x11))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x11, 0x05, 0x00, 0xAC, 0xFF, 0x00}
	out := make([]byte, 260)
	n := inst.HandleTCPFrame(req, out)

	if n != len(req) {
		t.Fatalf("response length = %d, want %d", n, len(req))
	}
	for i := range req {
		if out[i] != req[i] {
			t.Fatalf("response[%d] = 0x%02x, want 0x%02x", i, out[i], req[i])
		}
	}
	if cell&0x01 == 0 {
		t.Fatalf("coil 0x00AC was not turned on")
	}
}

func TestBoundaryASCIIReadHoldingRegs(t *testing.T) {
	var r1, r2, r3 uint16 = 0x4242, 0x4242, 0x4242
	regs := []RegisterDescriptor{
		u16Reg(0x006B, &r1, false),
		u16Reg(0x006C, &r2, false),
		u16Reg(0x006D, &r3, false),
	}

	inst, err := New(nil, regs, SlaveAddress(17))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte(":1103006B00037E\r\n")
	out := make([]byte, 513)
	n := inst.HandleASCIIFrame(req, out)

	// LRC over 11 03 06 42 42 42 42 42 42 is 0x5A (two's complement of
	// the byte sum), not the 0x3C the worked example states.
	want := ":1103064242424242425A\r\n"
	if string(out[:n]) != want {
		t.Fatalf("response = %q, want %q", out[:n], want)
	}
}

func TestBoundaryReadFileRecord(t *testing.T) {
	files := []FileDescriptor{
		{FileNo: 3, Records: []RegisterDescriptor{
			constU16File(9, 0xDEAD),
			constU16File(10, 0xBEEF),
		}},
		{FileNo: 4, Records: []RegisterDescriptor{
			constU16File(1, 0x1234),
			constU16File(2, 0xABCD),
		}},
	}

	inst, err := New(nil, nil, Files(files))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x14, 0x0E, 0x06, 0x00, 0x04, 0x00, 0x01, 0x00, 0x02, 0x06, 0x00, 0x03, 0x00, 0x09, 0x00, 0x02}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	want := []byte{0x14, 0x0C, 0x05, 0x06, 0x12, 0x34, 0xAB, 0xCD, 0x05, 0x06, 0xDE, 0xAD, 0xBE, 0xEF}
	if n != len(want) {
		t.Fatalf("response length = %d, want %d", n, len(want))
	}
	for i := range want {
		if res[i] != want[i] {
			t.Fatalf("response = % x, want % x", res[:n], want)
		}
	}
}

func TestBoundaryRestartClearsListenOnlyAndEventLog(t *testing.T) {
	inst, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	inst.isListenOnly = true
	inst.events.append(EventRecv)
	inst.events.append(EventRecv)

	req := []byte{0x08, 0x00, 0x01, 0xFF, 0x00}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	if n != 0 {
		t.Fatalf("restart response length = %d, want 0 (was listen-only)", n)
	}
	if inst.isListenOnly {
		t.Fatalf("instance still in listen-only mode after restart")
	}

	req = []byte{0x0C}
	n = inst.HandleRequest(req, res)
	if n < 2 {
		t.Fatalf("comm event log response too short: %d", n)
	}
	if res[1] != 6 {
		t.Fatalf("comm event log bytecount = %d, want 6", res[1])
	}
}

func TestBoundaryWriteMultipleRegsAtomicity(t *testing.T) {
	var r0 uint16 = 0x1111
	var r2 uint16 = 0x2222
	regs := []RegisterDescriptor{
		u16Reg(0, &r0, true),
		u16Reg(2, &r2, true),
	}

	inst, err := New(nil, regs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x10, 0x00, 0x00, 0x00, 0x03, 0x06, 0xAA, 0xAA, 0xBB, 0xBB, 0xCC, 0xCC}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	if n != 2 || res[0] != 0x90 || res[1] != 0x02 {
		t.Fatalf("response = % x, want 90 02", res[:n])
	}
	if r0 != 0x1111 {
		t.Fatalf("first target mutated despite atomic pre-validation failure: r0 = 0x%04x", r0)
	}
}
