package slave

import "testing"

func TestReadDeviceIdentificationBasic(t *testing.T) {
	inst, err := New(nil, nil, WithDeviceIdentification(func(readCode, objectID uint8) (*DeviceIdentification, bool) {
		if readCode != 0x01 {
			t.Fatalf("readCode = 0x%02x, want 0x01", readCode)
		}
		return &DeviceIdentification{
			ConformityLevel: 0x01,
			MoreFollows:     false,
			NextObjectID:    0x00,
			Objects: []DeviceIDObject{
				{ID: 0x00, Value: []byte("Acme")},
				{ID: 0x01, Value: []byte("Widget")},
			},
		}, true
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x2B, 0x0E, 0x01, 0x00}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	want := []byte{
		0x2B, 0x0E, 0x01, 0x01, 0x00, 0x00, 0x02,
		0x00, 0x04, 'A', 'c', 'm', 'e',
		0x01, 0x06, 'W', 'i', 'd', 'g', 'e', 't',
	}
	if n != len(want) {
		t.Fatalf("response length = %d, want %d", n, len(want))
	}
	for i := range want {
		if res[i] != want[i] {
			t.Fatalf("response = % x, want % x", res[:n], want)
		}
	}
}

func TestReadDeviceIdentificationInvalidReadCode(t *testing.T) {
	inst, err := New(nil, nil, WithDeviceIdentification(func(readCode, objectID uint8) (*DeviceIdentification, bool) {
		return &DeviceIdentification{}, true
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x2B, 0x0E, 0x09, 0x00}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	if n != 2 || res[0] != 0xAB || res[1] != StatusIllegalDataValue.exceptionCode() {
		t.Fatalf("response = % x, want exception illegal-data-value", res[:n])
	}
}

func TestReadDeviceIdentificationDeviceFailure(t *testing.T) {
	inst, err := New(nil, nil, WithDeviceIdentification(func(readCode, objectID uint8) (*DeviceIdentification, bool) {
		return nil, false
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x2B, 0x0E, 0x01, 0x00}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	if n != 2 || res[0] != 0xAB || res[1] != StatusServerDeviceFailure.exceptionCode() {
		t.Fatalf("response = % x, want exception server-device-failure", res[:n])
	}
}

func TestReadDeviceIdentificationNoCallbackConfigured(t *testing.T) {
	inst, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := []byte{0x2B, 0x0E, 0x01, 0x00}
	res := make([]byte, maxPDUSize+2)
	n := inst.HandleRequest(req, res)

	if n != 2 || res[0] != 0xAB || res[1] != StatusIllegalFunction.exceptionCode() {
		t.Fatalf("response = % x, want exception illegal-function", res[:n])
	}
}
