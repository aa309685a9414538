package slave

// DeviceIDObject is one object returned from a Read Device
// Identification request (FC 0x2B/0x0E).
type DeviceIDObject struct {
	ID    uint8
	Value []byte
}

// DeviceIdentification is the full answer to a Read Device
// Identification request, built by the host's
// DeviceIdentificationFunc.
type DeviceIdentification struct {
	ConformityLevel uint8
	MoreFollows     bool
	NextObjectID    uint8
	Objects         []DeviceIDObject
}

// DeviceIdentificationFunc supplies device identification objects for
// the requested read-device-ID code (basic/regular/extended/specific,
// 0x01-0x04) and, for a specific-object request, the requested object
// ID. ok=false signals a device failure.
type DeviceIdentificationFunc func(readCode uint8, objectID uint8) (*DeviceIdentification, bool)

// handleReadDeviceIdentification implements the FC 0x2B/0x0E
// Encapsulated Interface Transport sub-function.
func handleReadDeviceIdentification(inst *Instance, payload []byte, res []byte) (int, Status) {
	if len(payload) != 3 {
		return 0, StatusIllegalDataValue
	}
	if payload[0] != meiReadDeviceID {
		return 0, StatusIllegalFunction
	}
	readCode := payload[1]
	if readCode < 1 || readCode > 4 {
		return 0, StatusIllegalDataValue
	}
	objectID := payload[2]

	if inst.ReadDeviceIdentification == nil {
		return 0, StatusIllegalFunction
	}
	info, ok := inst.ReadDeviceIdentification(readCode, objectID)
	if !ok {
		return 0, StatusServerDeviceFailure
	}

	res[0] = meiReadDeviceID
	res[1] = readCode
	res[2] = info.ConformityLevel
	if info.MoreFollows {
		res[3] = 0xFF
	} else {
		res[3] = 0x00
	}
	res[4] = info.NextObjectID
	res[5] = uint8(len(info.Objects))

	pos := 6
	for _, obj := range info.Objects {
		res[pos] = obj.ID
		res[pos+1] = uint8(len(obj.Value))
		copy(res[pos+2:], obj.Value)
		pos += 2 + len(obj.Value)
	}

	return pos, StatusOK
}
