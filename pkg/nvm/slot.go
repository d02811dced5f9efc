package nvm

import (
	"github.com/nvmctl/nvm/internal/crc"
	"github.com/nvmctl/nvm/internal/fault"
	"github.com/nvmctl/nvm/internal/medium"
)

// shim serializes the single active job's physical I/O and applies fault
// hooks at every point original_source's fault_injection.c instruments.
type shim struct {
	drv    medium.Driver
	faults *fault.Registry
}

// trySlotRead implements NvM_TryReadBlock: read the data region, and if
// protected, verify the stored checksum against a freshly computed one.
func (s *shim) trySlotRead(blockID uint8, offset uint64, data []byte, kind crc.Kind) bool {
	if err := s.drv.Read(offset, data); err != nil {
		return false
	}
	s.faults.HookAfterRead(blockID, data)

	if kind == crc.None {
		return true
	}
	crcOffset := offset + uint64(len(data))
	stored := make([]byte, crc.Size(kind))
	if err := s.drv.Read(crcOffset, stored); err != nil {
		return false
	}
	calc := crc.Compute(kind, data)
	if mutated, fired := s.faults.HookCRC(calc); fired {
		calc = mutated
	}
	if ok := crc.Get(kind, stored) == calc; !ok {
		s.drv.NoteCRCError()
		return false
	}
	return true
}

// writeSlotWithCRC implements NvM_WriteBlockWithCrc: erase, program data,
// then program a full page of checksum + 0xFF padding at the page-aligned
// checksum offset.
func (s *shim) writeSlotWithCRC(blockID uint8, offset uint64, data []byte, kind crc.Kind) error {
	var sum uint32
	if kind != crc.None {
		sum = crc.Compute(kind, data)
		if mutated, fired := s.faults.HookCRC(sum); fired {
			sum = mutated
		}
	}

	if s.faults.HookBeforeWrite(offset, len(data)) {
		return ErrCorrupt
	}

	g := s.drv.Geometry()
	blockSize := g.BlockSize
	if blockSize == 0 {
		blockSize = uint32(len(data))
	}
	if err := s.drv.Erase(alignDown(offset, uint64(blockSize))); err != nil {
		return err
	}
	if err := s.drv.Program(offset, data); err != nil {
		return err
	}
	if s.faults.HookAfterWrite(offset) {
		return ErrCorrupt
	}

	if kind == crc.None {
		return nil
	}
	crcOffset := offset + uint64(len(data))
	pageSize := g.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	page := make([]byte, pageSize)
	for i := range page {
		page[i] = 0xFF
	}
	crc.Put(kind, page, sum)
	return s.drv.Program(crcOffset, page)
}

func alignDown(v, align uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v / align) * align
}
