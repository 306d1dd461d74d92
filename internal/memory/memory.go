// Package memory implements DeadBolt's paged, byte-addressable address
// space: a sparse map of 256-byte pages, allocated lazily on first write,
// with big-endian multi-byte accessors.
package memory

import (
	"encoding/binary"
	"fmt"
)

const (
	pageSize = 256
	pageMask = pageSize - 1
	maxAddr  = 1<<32 - 1
)

// ErrIllicitAccess signals an address that does not fit in 32 bits.
var ErrIllicitAccess = fmt.Errorf("illicit memory access")

type page = [pageSize]byte

// Memory is a sparse, lazily allocated linear address space. The zero
// value is ready to use.
type Memory struct {
	pages map[uint32]*page
}

// New returns an empty Memory with no pages allocated.
func New() *Memory {
	return &Memory{pages: make(map[uint32]*page)}
}

func split(addr uint32) (pageNum uint32, offset uint32) {
	return addr >> 8, addr & pageMask
}

// ReadByte returns the byte at addr. Reading through an unallocated page
// returns 0 without allocating it. addr is a uint32, so it is always
// within the 32-bit address space by construction; only the multi-byte
// accessors below need an explicit bounds check, since a span starting
// near the top of the space can run past it.
func (m *Memory) ReadByte(addr uint32) (byte, error) {
	pageNum, offset := split(addr)
	p, ok := m.pages[pageNum]
	if !ok {
		return 0, nil
	}
	return p[offset], nil
}

// WriteByte writes b at addr, allocating the backing page if absent.
func (m *Memory) WriteByte(addr uint32, b byte) error {
	if m.pages == nil {
		m.pages = make(map[uint32]*page)
	}
	pageNum, offset := split(addr)
	p, ok := m.pages[pageNum]
	if !ok {
		p = &page{}
		m.pages[pageNum] = p
	}
	p[offset] = b
	return nil
}

// Load copies data into Memory starting at addr, used to boot a program
// image into address 0 before execution begins.
func (m *Memory) Load(addr uint32, data []byte) error {
	for i, b := range data {
		if err := m.WriteByte(addr+uint32(i), b); err != nil {
			return err
		}
	}
	return nil
}

// GetU16 reads a big-endian 16-bit word starting at addr.
func (m *Memory) GetU16(addr uint32) (uint16, error) {
	buf, err := m.readN(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

// GetU24 reads a big-endian 24-bit value starting at addr, widened into
// the low 24 bits of a uint32.
func (m *Memory) GetU24(addr uint32) (uint32, error) {
	buf, err := m.readN(addr, 3)
	if err != nil {
		return 0, err
	}
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]), nil
}

// GetU32 reads a big-endian 32-bit word starting at addr.
func (m *Memory) GetU32(addr uint32) (uint32, error) {
	buf, err := m.readN(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// WriteU32 writes v as a big-endian 32-bit word starting at addr.
func (m *Memory) WriteU32(addr uint32, v uint32) error {
	if uint64(addr)+3 > maxAddr {
		return fmt.Errorf("%w: 0x%X", ErrIllicitAccess, addr)
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	for i, b := range buf {
		if err := m.WriteByte(addr+uint32(i), b); err != nil {
			return err
		}
	}
	return nil
}

// readN reads n consecutive bytes starting at addr. The span is checked
// against the 32-bit address space with 64-bit arithmetic first, since
// addr+n-1 computed in uint32 would silently wrap instead of reporting
// illicit access for a multi-byte read that runs off the top of memory.
func (m *Memory) readN(addr uint32, n int) ([]byte, error) {
	if uint64(addr)+uint64(n)-1 > maxAddr {
		return nil, fmt.Errorf("%w: 0x%X", ErrIllicitAccess, addr)
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := m.ReadByte(addr + uint32(i))
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

// PageCount reports how many pages have been allocated so far. Used by
// tests to assert page laziness.
func (m *Memory) PageCount() int {
	return len(m.pages)
}
