// Package config loads a Modbus slave instance's descriptor tables
// from a TOML file, the way a small embedded deployment would fix its
// data model at configuration time rather than in code.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	slave "github.com/hemlock-automation/modbus-slave"
)

// File is the root of a slave instance's TOML configuration.
type File struct {
	Instance         InstanceConfig   `toml:"instance"`
	Coils            []BitConfig      `toml:"coils"`
	DiscreteInputs   []BitConfig      `toml:"discrete_inputs"`
	HoldingRegisters []RegisterConfig `toml:"holding_registers"`
	InputRegisters   []RegisterConfig `toml:"input_registers"`
}

// InstanceConfig carries the instance-level settings of spec.md §3.
type InstanceConfig struct {
	SlaveAddress                uint8 `toml:"slave_address"`
	AllowDefaultResponseAddress bool  `toml:"allow_default_response_address"`
	ASCIIDelimiter              uint8 `toml:"ascii_delimiter"`
}

// BitConfig describes one coil or discrete input backed by a dedicated
// storage byte.
type BitConfig struct {
	Address  uint16 `toml:"address"`
	Writable bool   `toml:"writable"`
	Initial  bool   `toml:"initial"`
}

// RegisterConfig describes one holding or input register backed by
// dedicated typed storage.
type RegisterConfig struct {
	Address  uint16 `toml:"address"`
	Type     string `toml:"type"` // u8, u16, u32, i32, f32, u64, i64, f64
	Length   int    `toml:"length"`
	Writable bool   `toml:"writable"`
}

// Storage owns the backing memory the config-driven descriptor tables
// point into; it must outlive the Instance built from it.
type Storage struct {
	coilCells []uint8
	u8Cells   []uint8
	u16Cells  []uint16
	u32Cells  []uint32
	i32Cells  []int32
	f32Cells  []float32
	u64Cells  []uint64
	i64Cells  []int64
	f64Cells  []float64
}

// newStorage pre-sizes every backing slice to the worst case (every
// entry landing in the same slice) so that the append calls below
// never reallocate and invalidate a pointer handed out to an earlier
// descriptor.
func newStorage(f *File) *Storage {
	bits := len(f.Coils) + len(f.DiscreteInputs)
	regs := len(f.HoldingRegisters) + len(f.InputRegisters)
	return &Storage{
		coilCells: make([]uint8, 0, bits),
		u8Cells:   make([]uint8, 0, regs),
		u16Cells:  make([]uint16, 0, regs),
		u32Cells:  make([]uint32, 0, regs),
		i32Cells:  make([]int32, 0, regs),
		f32Cells:  make([]float32, 0, regs),
		u64Cells:  make([]uint64, 0, regs),
		i64Cells:  make([]int64, 0, regs),
		f64Cells:  make([]float64, 0, regs),
	}
}

// Load parses path as a TOML descriptor-table configuration.
func Load(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &f, nil
}

// Build constructs descriptor tables and a backing Storage from f, and
// opens a slave.Instance over them. Descriptor tables must come out
// sorted by address (spec.md §3); Build sorts them if the TOML file
// did not list them in order.
func Build(f *File, opts ...slave.Option) (*slave.Instance, *Storage, error) {
	st := newStorage(f)

	coils := make([]slave.CoilDescriptor, len(f.Coils))
	for i, c := range f.Coils {
		st.coilCells = append(st.coilCells, boolToU8(c.Initial))
		cell := &st.coilCells[len(st.coilCells)-1]
		coils[i] = slave.CoilDescriptor{
			Address:  c.Address,
			ReadMode: slave.AccessDirect,
			Cell:     cell,
			BitIndex: 0,
		}
		if c.Writable {
			coils[i].WriteMode = slave.AccessDirect
		}
	}
	sortCoils(coils)

	discreteInputs := make([]slave.CoilDescriptor, len(f.DiscreteInputs))
	for i, c := range f.DiscreteInputs {
		st.coilCells = append(st.coilCells, boolToU8(c.Initial))
		cell := &st.coilCells[len(st.coilCells)-1]
		discreteInputs[i] = slave.CoilDescriptor{
			Address:  c.Address,
			ReadMode: slave.AccessDirect,
			Cell:     cell,
			BitIndex: 0,
		}
	}
	sortCoils(discreteInputs)

	holdingRegs, err := st.buildRegisters(f.HoldingRegisters, true)
	if err != nil {
		return nil, nil, err
	}
	inputRegs, err := st.buildRegisters(f.InputRegisters, false)
	if err != nil {
		return nil, nil, err
	}
	sortRegisters(holdingRegs)
	sortRegisters(inputRegs)

	allOpts := make([]slave.Option, 0, len(opts)+4)
	allOpts = append(allOpts, slave.DiscreteInputs(discreteInputs), slave.InputRegisters(inputRegs))
	if f.Instance.SlaveAddress != 0 {
		allOpts = append(allOpts, slave.SlaveAddress(f.Instance.SlaveAddress))
	}
	if f.Instance.AllowDefaultResponseAddress {
		allOpts = append(allOpts, slave.AllowDefaultResponseAddress())
	}
	if f.Instance.ASCIIDelimiter != 0 {
		allOpts = append(allOpts, slave.ASCIIDelimiter(f.Instance.ASCIIDelimiter))
	}
	allOpts = append(allOpts, opts...)

	inst, err := slave.New(coils, holdingRegs, allOpts...)
	if err != nil {
		return nil, nil, err
	}
	return inst, st, nil
}

func (st *Storage) buildRegisters(cfgs []RegisterConfig, writable bool) ([]slave.RegisterDescriptor, error) {
	out := make([]slave.RegisterDescriptor, len(cfgs))
	for i, c := range cfgs {
		d := slave.RegisterDescriptor{
			Address:  c.Address,
			ReadMode: slave.AccessDirect,
			Length:   c.Length,
		}
		if writable && c.Writable {
			d.WriteMode = slave.AccessDirect
		}

		switch c.Type {
		case "u8":
			d.Type = slave.TypeU8
			st.u8Cells = append(st.u8Cells, 0)
			d.U8Ptr = &st.u8Cells[len(st.u8Cells)-1]
		case "u16", "":
			d.Type = slave.TypeU16
			st.u16Cells = append(st.u16Cells, 0)
			d.U16Ptr = &st.u16Cells[len(st.u16Cells)-1]
		case "u32":
			d.Type = slave.TypeU32
			st.u32Cells = append(st.u32Cells, 0)
			d.U32Ptr = &st.u32Cells[len(st.u32Cells)-1]
		case "i32":
			d.Type = slave.TypeI32
			st.i32Cells = append(st.i32Cells, 0)
			d.I32Ptr = &st.i32Cells[len(st.i32Cells)-1]
		case "f32":
			d.Type = slave.TypeF32
			st.f32Cells = append(st.f32Cells, 0)
			d.F32Ptr = &st.f32Cells[len(st.f32Cells)-1]
		case "u64":
			d.Type = slave.TypeU64
			st.u64Cells = append(st.u64Cells, 0)
			d.U64Ptr = &st.u64Cells[len(st.u64Cells)-1]
		case "i64":
			d.Type = slave.TypeI64
			st.i64Cells = append(st.i64Cells, 0)
			d.I64Ptr = &st.i64Cells[len(st.i64Cells)-1]
		case "f64":
			d.Type = slave.TypeF64
			st.f64Cells = append(st.f64Cells, 0)
			d.F64Ptr = &st.f64Cells[len(st.f64Cells)-1]
		default:
			return nil, fmt.Errorf("config: register at %d: unknown type %q", c.Address, c.Type)
		}
		out[i] = d
	}
	return out, nil
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func sortCoils(table []slave.CoilDescriptor) {
	for i := 1; i < len(table); i++ {
		for j := i; j > 0 && table[j-1].Address > table[j].Address; j-- {
			table[j-1], table[j] = table[j], table[j-1]
		}
	}
}

func sortRegisters(table []slave.RegisterDescriptor) {
	for i := 1; i < len(table); i++ {
		for j := i; j > 0 && table[j-1].Address > table[j].Address; j-- {
			table[j-1], table[j] = table[j], table[j-1]
		}
	}
}
