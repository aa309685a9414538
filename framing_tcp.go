package slave

// TCP (MBAP) ADU size bounds (spec.md §4.7.3, §6).
const (
	tcpMinFrameSize = 8
	tcpMaxFrameSize = 260
)

// HandleTCPFrame processes one MBAP ADU:
// `[txn_id:u16][proto_id:u16=0][length:u16][unit_id:u8][pdu:...]`
// (spec.md §4.7.3). frame is the fully received ADU; out must have
// capacity for the largest possible TCP response (260 bytes). Returns
// the framed response length, or 0 if nothing should be sent. There is
// no integrity field to check; a malformed header is simply dropped.
func (inst *Instance) HandleTCPFrame(frame []byte, out []byte) int {
	if len(frame) < tcpMinFrameSize || len(frame) > tcpMaxFrameSize {
		return 0
	}
	inst.busMsgCounter++

	c := newCursor(frame)
	txnIDField, _ := c.take(2)
	txnID := append([]byte(nil), txnIDField...)
	protoID, _ := c.takeU16()
	length, _ := c.takeU16()
	unitID, _ := c.takeByte()
	pdu := c.rest()

	if protoID != 0 {
		return 0
	}
	if int(length) != len(frame)-6 {
		return 0
	}

	if !inst.acceptsAddress(unitID) {
		inst.events.append(buildRecvEvent(inst, false))
		return 0
	}

	broadcast := unitID == BroadcastAddress
	inst.events.append(buildRecvEvent(inst, broadcast))

	pduOut := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(pdu, pduOut)

	if broadcast {
		if n > 0 {
			inst.noRespCounter++
		}
		return 0
	}
	if n == 0 {
		return 0
	}

	copy(out[0:2], txnID)
	out[2], out[3] = 0, 0
	copy(out[4:6], u16ToBytes(uint16(1+n)))
	out[6] = unitID
	copy(out[7:], pduOut[:n])

	return 7 + n
}
