package slave

// AccessMode describes how a coil or register binds to storage for
// either reading or writing (spec.md §3, §9: "sum of {None,
// ConstantValue, BytePointer, TypedPointer, Callback}").
type AccessMode int

const (
	AccessNone AccessMode = iota
	AccessConstant
	AccessDirect
	AccessCallback
)

// RegisterType is the wire type a register descriptor carries. Types
// wider than one word occupy consecutive register addresses.
type RegisterType int

const (
	TypeU8 RegisterType = iota
	TypeU16
	TypeU32
	TypeI32
	TypeF32
	TypeU64
	TypeI64
	TypeF64
	TypeBlockU8
	TypeBlockU16
)

// WordCount returns how many consecutive 16-bit register addresses a
// descriptor of this type occupies. Length is only consulted for the
// block types: it is the element count (bytes for TypeBlockU8, words
// for TypeBlockU16).
func (t RegisterType) WordCount(length int) int {
	switch t {
	case TypeU8, TypeU16:
		return 1
	case TypeU32, TypeI32, TypeF32:
		return 2
	case TypeU64, TypeI64, TypeF64:
		return 4
	case TypeBlockU8:
		n := (length + 1) / 2
		if n < 1 {
			n = 1
		}
		return n
	case TypeBlockU16:
		if length < 1 {
			return 1
		}
		return length
	default:
		return 1
	}
}

// RegisterReadFunc and RegisterWriteFunc read or write the words of a
// register descriptor.
// Read callbacks return the descriptor's full word set and an ok flag;
// ok=false signals a device failure. Write callbacks return a Status.
type RegisterReadFunc func() (words []uint16, ok bool)
type RegisterWriteFunc func(words []uint16) Status

// CoilReadFunc signals a device failure with ok=false.
type CoilReadFunc func() (value bool, ok bool)
type CoilWriteFunc func(value bool) Status

// CoilDescriptor describes one addressable coil or discrete input.
type CoilDescriptor struct {
	Address uint16

	ReadMode  AccessMode // AccessNone, AccessConstant, AccessDirect (bit-in-byte) or AccessCallback
	WriteMode AccessMode // AccessNone, AccessDirect (bit-in-byte) or AccessCallback

	ConstantValue bool

	// Cell/BitIndex back AccessDirect for both read and write.
	Cell     *uint8
	BitIndex uint8

	ReadCallback  CoilReadFunc
	WriteCallback CoilWriteFunc

	ReadLock  func() bool
	WriteLock func() bool
	PostWrite func(addr uint16, value bool)
}

// RegisterDescriptor describes one addressable holding/input register,
// possibly spanning several consecutive word addresses.
type RegisterDescriptor struct {
	Address uint16
	Type    RegisterType
	Length  int // element count for TypeBlockU8/TypeBlockU16, ignored otherwise

	ReadMode  AccessMode
	WriteMode AccessMode

	ConstantWords []uint16

	// Typed direct-pointer bindings; exactly one is populated according
	// to Type when ReadMode/WriteMode == AccessDirect.
	U8Ptr  *uint8
	U16Ptr *uint16
	U32Ptr *uint32
	I32Ptr *int32
	F32Ptr *float32
	U64Ptr *uint64
	I64Ptr *int64
	F64Ptr *float64
	BlockU8  []uint8
	BlockU16 []uint16

	ReadCallback  RegisterReadFunc
	WriteCallback RegisterWriteFunc

	ReadLock          func() bool
	WriteLock         func() bool
	AllowPartialWrite bool
	PostWrite         func(addr uint16)
}

// Words returns how many consecutive register addresses this descriptor
// occupies.
func (d *RegisterDescriptor) Words() int {
	return d.Type.WordCount(d.Length)
}

// FileDescriptor describes one file: a sorted register-descriptor array
// addressed by record number (spec.md §3, §4.4).
type FileDescriptor struct {
	FileNo  uint16
	Records []RegisterDescriptor
}

// findCoil looks up a coil/discrete-input descriptor by address.
func findCoil(table []CoilDescriptor, addr uint16) *CoilDescriptor {
	idx, ok := findIndex(len(table), func(i int) uint16 { return table[i].Address }, addr)
	if !ok {
		return nil
	}
	return &table[idx]
}

// findRegister looks up the register descriptor whose address equals
// addr exactly (not one that merely covers addr).
func findRegister(table []RegisterDescriptor, addr uint16) *RegisterDescriptor {
	idx, ok := findIndex(len(table), func(i int) uint16 { return table[i].Address }, addr)
	if !ok {
		return nil
	}
	return &table[idx]
}

// findCoveringRegister returns the descriptor whose address range
// [Address, Address+Words()) contains addr, along with the word offset
// of addr within that descriptor. Table must be sorted by Address.
func findCoveringRegister(table []RegisterDescriptor, addr uint16) (*RegisterDescriptor, uint16) {
	// binary search for the last descriptor whose Address <= addr
	lo, hi := 0, len(table)-1
	best := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if table[mid].Address <= addr {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best < 0 {
		return nil, 0
	}
	d := &table[best]
	offset := addr - d.Address
	if int(offset) >= d.Words() {
		return nil, 0
	}
	return d, offset
}

// findFile looks up a file descriptor by file number.
func findFile(table []FileDescriptor, fileNo uint16) *FileDescriptor {
	idx, ok := findIndex(len(table), func(i int) uint16 { return table[i].FileNo }, fileNo)
	if !ok {
		return nil
	}
	return &table[idx]
}

// searchThreshold is the table length above which findIndex switches
// from a linear scan to binary search (spec.md §4.1). Tuned for small
// embedded descriptor tables; both branches must agree on every table.
const searchThreshold = 16

// findIndex locates key among n sorted, unique keys produced by keyOf.
// Above searchThreshold elements it binary searches; otherwise it scans
// linearly. Both paths yield identical results for a sorted, duplicate
// free table.
func findIndex(n int, keyOf func(int) uint16, key uint16) (int, bool) {
	if n > searchThreshold {
		lo, hi := 0, n-1
		for lo <= hi {
			mid := (lo + hi) / 2
			k := keyOf(mid)
			switch {
			case k == key:
				return mid, true
			case k < key:
				lo = mid + 1
			default:
				hi = mid - 1
			}
		}
		return 0, false
	}

	for i := 0; i < n; i++ {
		if keyOf(i) == key {
			return i, true
		}
	}
	return 0, false
}
