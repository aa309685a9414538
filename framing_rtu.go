package slave

// RTU ADU size bounds (spec.md §4.7.1, §6).
const (
	rtuMinFrameSize = 4
	rtuMaxFrameSize = 256
)

// buildRecvEvent assembles a RECV event byte (spec.md §6, §4.7.1).
func buildRecvEvent(inst *Instance, broadcast bool) uint8 {
	event := EventRecv
	if inst.isListenOnly {
		event |= EventRecvListenMode
	}
	if broadcast {
		event |= EventRecvBroadcast
	}
	return event
}

// HandleRTUFrame processes one RTU ADU: `[addr:1][pdu:1..253][crc16:2(LE)]`
// (spec.md §4.7.1). frame is the fully received ADU; out must have
// capacity for the largest possible RTU response (256 bytes). It
// returns the framed response length, or 0 if nothing should be sent
// (broadcast, listen-only, or a silently dropped frame). Framing-layer
// failures never produce a Modbus exception (spec.md §7).
func (inst *Instance) HandleRTUFrame(frame []byte, out []byte) int {
	if len(frame) < rtuMinFrameSize || len(frame) > rtuMaxFrameSize {
		return 0
	}
	inst.busMsgCounter++

	body, trailer := frame[:len(frame)-2], frame[len(frame)-2:]
	var c crc
	c.init()
	c.add(body)
	if !c.isEqual(trailer[0], trailer[1]) {
		inst.busCommErrCounter++
		inst.events.append(EventRecv | EventRecvCommError)
		return 0
	}

	addr := body[0]
	if !inst.acceptsAddress(addr) {
		inst.events.append(buildRecvEvent(inst, false))
		return 0
	}

	broadcast := addr == BroadcastAddress
	inst.events.append(buildRecvEvent(inst, broadcast))

	pduOut := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(body[1:], pduOut)

	if broadcast {
		if n > 0 {
			inst.noRespCounter++
		}
		return 0
	}
	if n == 0 {
		return 0
	}

	out[0] = addr
	copy(out[1:], pduOut[:n])
	var rc crc
	rc.init()
	rc.add(out[:1+n])
	copy(out[1+n:1+n+2], rc.value())

	return 1 + n + 2
}
