package slave

import "testing"

func TestCRC(t *testing.T) {
	var c crc

	c.init()
	if c.crc != 0xffff {
		t.Errorf("expected 0xffff, saw 0x%04x", c.crc)
	}

	out := c.value()
	if len(out) != 2 || out[0] != 0xff || out[1] != 0xff {
		t.Errorf("expected {0xff, 0xff}, got %v", out)
	}

	c.add([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	if c.crc != 0xbb2a {
		t.Errorf("expected 0xbb2a, saw 0x%04x", c.crc)
	}

	c.add([]byte{0x06})
	if c.crc != 0xddba {
		t.Errorf("expected 0xddba, saw 0x%04x", c.crc)
	}

	c.init()
	if c.crc != 0xffff {
		t.Errorf("expected 0xffff after re-init, saw 0x%04x", c.crc)
	}
}

func TestCRCIsEqual(t *testing.T) {
	var c crc

	c.init()
	c.add([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06})

	if c.crc != 0xddba {
		t.Errorf("expected 0xddba, saw 0x%04x", c.crc)
	}
	if !c.isEqual(0xba, 0xdd) {
		t.Error("isEqual() should have returned true")
	}
	if c.isEqual(0xdd, 0xba) {
		t.Error("isEqual() should have returned false")
	}

	c.init()
	if !c.isEqual(0xff, 0xff) {
		t.Error("an empty payload should CRC to 0xffff")
	}
}
