// Package crc implements the checksum kinds a block can be protected with.
//
// CRC-16 matches CRC-16/CCITT-FALSE exactly (polynomial 0x1021, initial
// 0xFFFF, no reflection, no final XOR) so that images produced by this
// package stay bit-compatible with the original firmware's Crc16_Calculate.
package crc

import "hash/crc32"

// Kind identifies which checksum, if any, protects a block.
type Kind uint8

const (
	None Kind = iota
	CRC8
	CRC16
	CRC32
)

// Size returns the number of bytes Kind occupies on the medium.
func Size(k Kind) int {
	switch k {
	case CRC8:
		return 1
	case CRC16:
		return 2
	case CRC32:
		return 4
	default:
		return 0
	}
}

// Accumulator computes a checksum incrementally over one or more writes.
type Accumulator interface {
	Write(p []byte)
	Sum() uint32
	Reset()
}

// New returns a fresh accumulator for k, or nil for None.
func New(k Kind) Accumulator {
	switch k {
	case CRC8:
		return new(crc8Acc)
	case CRC16:
		return newCRC16Acc()
	case CRC32:
		return new(crc32Acc)
	default:
		return nil
	}
}

// Compute is a one-shot convenience wrapper around New(k).
func Compute(k Kind, data []byte) uint32 {
	acc := New(k)
	if acc == nil {
		return 0
	}
	acc.Write(data)
	return acc.Sum()
}

// Put writes sum into buf in little-endian order, sized for k. buf must be
// at least Size(k) bytes.
func Put(k Kind, buf []byte, sum uint32) {
	switch k {
	case CRC8:
		buf[0] = byte(sum)
	case CRC16:
		buf[0] = byte(sum)
		buf[1] = byte(sum >> 8)
	case CRC32:
		buf[0] = byte(sum)
		buf[1] = byte(sum >> 8)
		buf[2] = byte(sum >> 16)
		buf[3] = byte(sum >> 24)
	}
}

// Get reads a little-endian checksum of kind k from buf.
func Get(k Kind, buf []byte) uint32 {
	switch k {
	case CRC8:
		return uint32(buf[0])
	case CRC16:
		return uint32(buf[0]) | uint32(buf[1])<<8
	case CRC32:
		return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	default:
		return 0
	}
}

// crc32Acc wraps hash/crc32's IEEE table. No example repo hand-rolls a
// CRC-32 table, and this is the dependency any of them would reach for.
type crc32Acc struct {
	sum uint32
}

func (a *crc32Acc) Write(p []byte) { a.sum = crc32.Update(a.sum, crc32.IEEETable, p) }
func (a *crc32Acc) Sum() uint32    { return a.sum }
func (a *crc32Acc) Reset()        { a.sum = 0 }
