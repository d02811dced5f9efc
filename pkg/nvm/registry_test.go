package nvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterBlockRejectsOverlappingOffsets(t *testing.T) {
	m, _, _ := newTestManager(t, false)
	require.NoError(t, m.RegisterBlock(BlockConfig{
		BlockID: 1, BlockSize: 64, Type: Native, CrcKind: Crc16, EepromOffset: 0,
	}))
	err := m.RegisterBlock(BlockConfig{
		BlockID: 2, BlockSize: 64, Type: Native, CrcKind: Crc16, EepromOffset: 0,
	})
	require.ErrorIs(t, err, ErrOverlap)
}

func TestRegisterBlockRejectsRedundantBackupOverlappingAnotherBlock(t *testing.T) {
	m, _, _ := newTestManager(t, false)
	require.NoError(t, m.RegisterBlock(BlockConfig{
		BlockID: 1, BlockSize: 64, Type: Native, CrcKind: Crc16, EepromOffset: 4096,
	}))
	err := m.RegisterBlock(BlockConfig{
		BlockID: 2, BlockSize: 64, Type: Redundant, CrcKind: Crc16,
		EepromOffset: 0, RedundantOffset: 4096,
	})
	require.ErrorIs(t, err, ErrOverlap)
}

func TestRegisterBlockAllowsDisjointOffsets(t *testing.T) {
	m, _, _ := newTestManager(t, false)
	require.NoError(t, m.RegisterBlock(BlockConfig{
		BlockID: 1, BlockSize: 64, Type: Native, CrcKind: Crc16, EepromOffset: 0,
	}))
	require.NoError(t, m.RegisterBlock(BlockConfig{
		BlockID: 2, BlockSize: 64, Type: Native, CrcKind: Crc16, EepromOffset: 4096,
	}))
}
