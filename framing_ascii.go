package slave

import "encoding/hex"

// ASCII ADU size bounds, in characters (spec.md §4.7.2, §6).
const (
	asciiMinFrameSize = 11
	asciiMaxFrameSize = 513
)

// HandleASCIIFrame processes one ASCII ADU:
// `[':'][hex(addr)][hex(pdu)][hex(lrc)][CR][delim]` (spec.md §4.7.2).
// frame is the fully received ADU; out must have capacity for the
// largest possible ASCII response (513 bytes). Returns the framed
// response length, or 0 if nothing should be sent.
func (inst *Instance) HandleASCIIFrame(frame []byte, out []byte) int {
	if len(frame) < asciiMinFrameSize || len(frame) > asciiMaxFrameSize {
		return 0
	}
	if frame[0] != ':' || frame[len(frame)-2] != '\r' || frame[len(frame)-1] != inst.asciiDelimiter {
		return 0
	}

	hexBody := frame[1 : len(frame)-2]
	if len(hexBody)%2 != 0 {
		return 0
	}

	body := make([]byte, len(hexBody)/2)
	if _, err := hex.Decode(body, hexBody); err != nil {
		return 0
	}

	inst.busMsgCounter++

	if len(body) < 3 {
		return 0
	}

	pdu, lrcByte := body[:len(body)-1], body[len(body)-1]
	if calcLRC(pdu) != lrcByte {
		inst.busCommErrCounter++
		inst.events.append(EventRecv | EventRecvCommError)
		return 0
	}

	addr := pdu[0]
	if !inst.acceptsAddress(addr) {
		inst.events.append(buildRecvEvent(inst, false))
		return 0
	}

	broadcast := addr == BroadcastAddress
	inst.events.append(buildRecvEvent(inst, broadcast))

	pduOut := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(pdu[1:], pduOut)

	if broadcast {
		if n > 0 {
			inst.noRespCounter++
		}
		return 0
	}
	if n == 0 {
		return 0
	}

	respBody := make([]byte, 1+n)
	respBody[0] = addr
	copy(respBody[1:], pduOut[:n])
	respLRC := calcLRC(respBody)

	out[0] = ':'
	pos := 1
	pos += hex.Encode(out[pos:], respBody)
	pos += hex.Encode(out[pos:], []byte{respLRC})
	upperHex(out[1:pos])
	out[pos] = '\r'
	out[pos+1] = inst.asciiDelimiter

	return pos + 2
}

// upperHex uppercases the a-f hex digits encoding/hex.Encode produces,
// matching the wire convention used by Modbus ASCII.
func upperHex(b []byte) {
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - ('a' - 'A')
		}
	}
}
