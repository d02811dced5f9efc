// Package layout computes and validates the byte offsets a block occupies
// on the storage medium, grounded on eeprom_layout.c/.h in the original
// firmware.
package layout

import (
	"errors"
	"fmt"

	"github.com/nvmctl/nvm/internal/crc"
)

var (
	ErrMisaligned  = errors.New("layout: offset not slot aligned")
	ErrOverlap     = errors.New("layout: regions overlap")
	ErrTooBig      = errors.New("layout: block does not fit in slot")
	ErrOutOfRange  = errors.New("layout: region exceeds medium capacity")
	ErrCRCNotPaged = errors.New("layout: crc region not page aligned")
)

// Params describes one block's placement request.
type Params struct {
	BlockSize      uint32
	CrcKind        crc.Kind
	SlotSize       uint32
	PageSize       uint32
	PrimaryOffset  uint64
	BackupOffset   *uint64 // Redundant blocks only
	DatasetCount   int     // Dataset blocks only (0 = not a dataset)
	MediumCapacity uint64
}

// Layout is the resolved set of byte regions for one slot.
type Layout struct {
	DataOffset uint64
	DataSize   uint32
	CrcOffset  uint64
	CrcSize    uint32
	SlotSize   uint32
}

// Calculate validates p and returns the resolved primary-slot layout.
func Calculate(p Params) (Layout, error) {
	if p.SlotSize == 0 || p.PrimaryOffset%uint64(p.SlotSize) != 0 {
		return Layout{}, fmt.Errorf("primary offset %d: %w", p.PrimaryOffset, ErrMisaligned)
	}
	crcSize := uint32(crc.Size(p.CrcKind))
	if uint64(p.BlockSize)+uint64(crcSize) > uint64(p.SlotSize) {
		return Layout{}, fmt.Errorf("block %d + crc %d > slot %d: %w", p.BlockSize, crcSize, p.SlotSize, ErrTooBig)
	}
	crcOffset := p.PrimaryOffset + uint64(p.BlockSize)
	if p.PageSize != 0 {
		pageStart := (crcOffset / uint64(p.PageSize)) * uint64(p.PageSize)
		if pageStart != crcOffset {
			// CRC region must begin on a page boundary; a block whose
			// payload ends mid-page is rejected, not padded.
			return Layout{}, fmt.Errorf("crc offset %d: %w", crcOffset, ErrCRCNotPaged)
		}
	}
	span := p.PrimaryOffset + uint64(p.SlotSize)
	if span > p.MediumCapacity {
		return Layout{}, fmt.Errorf("slot end %d > capacity %d: %w", span, p.MediumCapacity, ErrOutOfRange)
	}
	if p.BackupOffset != nil {
		if *p.BackupOffset%uint64(p.SlotSize) != 0 {
			return Layout{}, fmt.Errorf("backup offset %d: %w", *p.BackupOffset, ErrMisaligned)
		}
		if Overlaps(p.PrimaryOffset, uint64(p.SlotSize), *p.BackupOffset, uint64(p.SlotSize)) {
			return Layout{}, fmt.Errorf("primary/backup: %w", ErrOverlap)
		}
		if *p.BackupOffset+uint64(p.SlotSize) > p.MediumCapacity {
			return Layout{}, fmt.Errorf("backup end: %w", ErrOutOfRange)
		}
	}
	if p.DatasetCount > 0 {
		last := p.PrimaryOffset + uint64(p.DatasetCount)*uint64(p.SlotSize)
		if last > p.MediumCapacity {
			return Layout{}, fmt.Errorf("dataset span end %d: %w", last, ErrOutOfRange)
		}
	}
	return Layout{
		DataOffset: p.PrimaryOffset,
		DataSize:   p.BlockSize,
		CrcOffset:  crcOffset,
		CrcSize:    crcSize,
		SlotSize:   p.SlotSize,
	}, nil
}

// Overlaps reports whether the two [start, start+len) byte ranges intersect.
func Overlaps(aStart, aLen, bStart, bLen uint64) bool {
	aEnd, bEnd := aStart+aLen, bStart+bLen
	return aStart < bEnd && bStart < aEnd
}

// Spans returns the full set of byte ranges a registered block occupies,
// for cross-block overlap checks at the registry level: the primary slot,
// plus the backup slot for Redundant blocks, or the whole contiguous
// dataset span for Dataset blocks.
func Spans(p Params) [][2]uint64 {
	if p.DatasetCount > 0 {
		return [][2]uint64{{p.PrimaryOffset, p.PrimaryOffset + uint64(p.DatasetCount)*uint64(p.SlotSize)}}
	}
	spans := [][2]uint64{{p.PrimaryOffset, p.PrimaryOffset + uint64(p.SlotSize)}}
	if p.BackupOffset != nil {
		spans = append(spans, [2]uint64{*p.BackupOffset, *p.BackupOffset + uint64(p.SlotSize)})
	}
	return spans
}

// DatasetSlotOffset returns the byte offset of dataset slot i.
func DatasetSlotOffset(p Params, i int) uint64 {
	return p.PrimaryOffset + uint64(i)*uint64(p.SlotSize)
}

// PagePad returns the number of 0xFF filler bytes needed so that the CRC
// region (crcSize bytes) fills out a complete page.
func PagePad(pageSize uint32, crcSize uint32) uint32 {
	if pageSize == 0 || crcSize >= pageSize {
		return 0
	}
	return pageSize - crcSize
}
