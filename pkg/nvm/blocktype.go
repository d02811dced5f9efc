package nvm

import (
	"bytes"

	"github.com/nvmctl/nvm/internal/layout"
)

// engine is the block-type-specific read/write algorithm, grounded
// line-for-line on original_source/src/nvm/nvm_block_types.c.
type engine interface {
	read(s *shim, b *BlockConfig, data []byte) error
	write(s *shim, b *BlockConfig, data []byte) error
}

func engineFor(t BlockType) engine {
	switch t {
	case Redundant:
		return redundantEngine{}
	case Dataset:
		return datasetEngine{}
	default:
		return nativeEngine{}
	}
}

func romFallback(b *BlockConfig, data []byte) bool {
	if len(b.ROMDefault) == 0 {
		return false
	}
	n := len(b.ROMDefault)
	if n > len(data) {
		n = len(data)
	}
	copy(data, b.ROMDefault[:n])
	return true
}

type nativeEngine struct{}

func (nativeEngine) read(s *shim, b *BlockConfig, data []byte) error {
	if s.trySlotRead(b.BlockID, b.EepromOffset, data, b.CrcKind) {
		b.State = Valid
		return nil
	}
	b.State = Invalid
	romFallback(b, data)
	return ErrCorrupt
}

func (nativeEngine) write(s *shim, b *BlockConfig, data []byte) error {
	if err := s.writeSlotWithCRC(b.BlockID, b.EepromOffset, data, b.CrcKind); err != nil {
		return err
	}
	b.EraseCount++
	b.State = Valid
	return nil
}

type redundantEngine struct{}

func (redundantEngine) read(s *shim, b *BlockConfig, data []byte) error {
	if s.trySlotRead(b.BlockID, b.EepromOffset, data, b.CrcKind) {
		b.State = Valid
		return nil
	}
	if s.trySlotRead(b.BlockID, b.RedundantOffset, data, b.CrcKind) {
		b.State = Recovered
		return nil
	}
	b.State = Invalid
	romFallback(b, data)
	return ErrCorrupt
}

func (redundantEngine) write(s *shim, b *BlockConfig, data []byte) error {
	if err := s.writeSlotWithCRC(b.BlockID, b.EepromOffset, data, b.CrcKind); err != nil {
		return err
	}

	verify := make([]byte, len(data))
	if len(data) <= 256 {
		if !s.trySlotRead(b.BlockID, b.EepromOffset, verify, b.CrcKind) {
			return ErrCorrupt
		}
		s.faults.HookVerify(b.EepromOffset, data, verify)
		if !bytes.Equal(verify, data) {
			b.State = Invalid
			return ErrCorrupt
		}
	}

	// Backup write failure is tolerated: primary already succeeded.
	_ = s.writeSlotWithCRC(b.BlockID, b.RedundantOffset, data, b.CrcKind)

	b.ActiveVersion++
	if b.VersionControlOffset != 0 {
		_ = s.drv.Program(b.VersionControlOffset, []byte{b.ActiveVersion})
	}
	b.EraseCount++
	b.State = Valid
	return nil
}

type datasetEngine struct{}

func (datasetEngine) read(s *shim, b *BlockConfig, data []byte) error {
	if b.DatasetCount == 0 {
		return ErrInvalidConfig
	}
	for i := uint8(0); i < b.DatasetCount; i++ {
		idx := (b.ActiveDatasetIndex + i) % b.DatasetCount
		offset := layout.DatasetSlotOffset(layout.Params{
			PrimaryOffset: b.EepromOffset,
			SlotSize:      b.DatasetSlotSize,
		}, int(idx))
		if s.trySlotRead(b.BlockID, offset, data, b.CrcKind) {
			if i == 0 {
				b.State = Valid
			} else {
				b.State = Recovered
				b.ActiveDatasetIndex = idx
			}
			return nil
		}
	}
	b.State = Invalid
	romFallback(b, data)
	return ErrCorrupt
}

func (datasetEngine) write(s *shim, b *BlockConfig, data []byte) error {
	if b.DatasetCount == 0 {
		return ErrInvalidConfig
	}
	next := (b.ActiveDatasetIndex + 1) % b.DatasetCount
	offset := layout.DatasetSlotOffset(layout.Params{
		PrimaryOffset: b.EepromOffset,
		SlotSize:      b.DatasetSlotSize,
	}, int(next))
	if err := s.writeSlotWithCRC(b.BlockID, offset, data, b.CrcKind); err != nil {
		return err
	}
	b.ActiveDatasetIndex = next
	b.EraseCount++
	b.State = Valid
	return nil
}
