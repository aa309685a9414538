package slave

import "testing"

func TestWriteSingleRegisterThenReadRoundTrip(t *testing.T) {
	var cell uint16
	regs := []RegisterDescriptor{u16Reg(10, &cell, true)}
	inst, err := New(nil, regs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := make([]byte, maxPDUSize+2)
	writeReq := []byte{0x06, 0x00, 0x0A, 0x12, 0x34}
	if n := inst.HandleRequest(writeReq, res); n != 5 || res[0] != 0x06 {
		t.Fatalf("write response = % x", res[:n])
	}

	readReq := []byte{0x03, 0x00, 0x0A, 0x00, 0x01}
	n := inst.HandleRequest(readReq, res)
	want := []byte{0x03, 0x02, 0x12, 0x34}
	if n != len(want) {
		t.Fatalf("read response length = %d, want %d", n, len(want))
	}
	for i := range want {
		if res[i] != want[i] {
			t.Fatalf("read response = % x, want % x", res[:n], want)
		}
	}
}

func TestLoopbackDiagnostics(t *testing.T) {
	inst, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x08, 0x00, 0x00, 0xA5, 0x37}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	if n != len(req) {
		t.Fatalf("loopback response length = %d, want %d", n, len(req))
	}
	for i := range req {
		if res[i] != req[i] {
			t.Fatalf("loopback response = % x, want identical to request % x", res[:n], req)
		}
	}
}

func TestMaskWriteRegisterNoOp(t *testing.T) {
	var cell uint16 = 0xBEEF
	regs := []RegisterDescriptor{u16Reg(5, &cell, true)}
	inst, err := New(nil, regs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x16, 0x00, 0x05, 0xFF, 0xFF, 0x00, 0x00}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	if n != len(req) {
		t.Fatalf("mask write response length = %d, want %d", n, len(req))
	}
	if cell != 0xBEEF {
		t.Fatalf("mask write with and=0xffff or=0x0000 changed the register: 0x%04x", cell)
	}
}

func TestUnimplementedFunctionCodeResponse(t *testing.T) {
	inst, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x11}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	want := []byte{0x91, 0x01}
	if n != len(want) || res[0] != want[0] || res[1] != want[1] {
		t.Fatalf("response = % x, want % x", res[:n], want)
	}
}

func TestListenOnlyGateSuppressesNonRestart(t *testing.T) {
	inst, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	inst.isListenOnly = true

	msgCounterBefore := inst.msgCounter
	req := []byte{0x03, 0x00, 0x00, 0x00, 0x01}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	if n != 0 {
		t.Fatalf("response length = %d, want 0 (listen-only)", n)
	}
	if inst.msgCounter != msgCounterBefore {
		t.Fatalf("msg_counter changed in listen-only mode: %d -> %d", msgCounterBefore, inst.msgCounter)
	}
	if inst.events.count() != 1 {
		t.Fatalf("event log has %d entries, want exactly 1", inst.events.count())
	}
	last := inst.events.snapshot()[0]
	if last&EventSend == 0 || last&EventSendListenOnly == 0 {
		t.Fatalf("event byte = 0x%02x, want SEND|SEND_LISTEN_ONLY bits set", last)
	}
}

func TestBroadcastSuppressesReplyAndCountsNoResp(t *testing.T) {
	var cell uint8
	coils := []CoilDescriptor{bitCoil(1, &cell, true)}
	inst, err := New(coils, nil, SlaveAddress(5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pdu := []byte{0x05, 0x00, 0x01, 0xFF, 0x00}
	body := append([]byte{BroadcastAddress}, pdu...)
	out := make([]byte, 256)
	n := inst.HandleRTUFrame(appendCRC(body), out)

	if n != 0 {
		t.Fatalf("broadcast response length = %d, want 0", n)
	}
	if inst.noRespCounter != 1 {
		t.Fatalf("no_resp_counter = %d, want 1", inst.noRespCounter)
	}
	if cell&0x01 == 0 {
		t.Fatalf("broadcast write was not applied")
	}
}

// appendCRC frames body with a trailing little-endian CRC-16, for tests
// that build an RTU ADU by hand.
func appendCRC(body []byte) []byte {
	var c crc
	c.init()
	c.add(body)
	return append(append([]byte{}, body...), c.value()...)
}
