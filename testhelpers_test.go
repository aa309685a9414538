package slave

// u16Reg builds a single-word holding/input register descriptor backed
// by a dedicated uint16 cell, read-write unless writable is false.
func u16Reg(addr uint16, cell *uint16, writable bool) RegisterDescriptor {
	d := RegisterDescriptor{
		Address:  addr,
		Type:     TypeU16,
		ReadMode: AccessDirect,
		U16Ptr:   cell,
	}
	if writable {
		d.WriteMode = AccessDirect
	}
	return d
}

// bitCoil builds a single coil/discrete-input descriptor backed by its
// own dedicated byte (bit 0), read-write unless writable is false.
func bitCoil(addr uint16, cell *uint8, writable bool) CoilDescriptor {
	d := CoilDescriptor{
		Address:  addr,
		ReadMode: AccessDirect,
		Cell:     cell,
		BitIndex: 0,
	}
	if writable {
		d.WriteMode = AccessDirect
	}
	return d
}

// constU16File builds a one-word, read-only file record descriptor at
// recNo holding a fixed value.
func constU16File(recNo uint16, value uint16) RegisterDescriptor {
	return RegisterDescriptor{
		Address:  recNo,
		Type:     TypeU16,
		ReadMode: AccessConstant,
		ConstantWords: []uint16{value},
	}
}
