// Package nvm implements a non-volatile memory manager for embedded
// controllers: block registration, a priority job queue, a cooperative
// tick dispatcher (Manager.MainFunction), and a seqlock-protected RAM
// mirror, modeled on an AUTOSAR-style NvM module.
package nvm

import (
	"github.com/nvmctl/nvm/internal/crc"
)

// BlockType selects a block's redundancy strategy.
type BlockType uint8

const (
	Native BlockType = iota
	Redundant
	Dataset
)

// CrcKind re-exports the checksum kinds a block may be protected with.
type CrcKind = crc.Kind

const (
	CrcNone  = crc.None
	Crc8     = crc.CRC8
	Crc16    = crc.CRC16
	Crc32    = crc.CRC32
)

// BlockState mirrors NvM_BlockStateType_t.
type BlockState uint8

const (
	Uninitialized BlockState = iota
	Valid
	Invalid
	Recovering
	Recovered
)

func (s BlockState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case Recovering:
		return "recovering"
	case Recovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// JobType enumerates the four request kinds a caller can submit.
type JobType uint8

const (
	JobRead JobType = iota
	JobWrite
	JobReadAll
	JobWriteAll
)

// RequestResult mirrors NvM_RequestResultType.
type RequestResult uint8

const (
	ReqOK RequestResult = iota
	ReqNotOK
	ReqPending
	ReqInProgress
	ReqBlockSkipped // reserved: no producer in this implementation, kept for API parity
)

// AllBlocksID is the sentinel block_id used by ReadAll/WriteAll jobs.
const AllBlocksID uint8 = 0xFF

// Job is one queued unit of work.
type Job struct {
	Type         JobType
	BlockID      uint8
	Priority     uint8
	Immediate    bool
	Data         []byte
	SubmitTimeMs uint64
	TimeoutMs    uint64
	RetryCount   uint8
	MaxRetries   uint8
}

// BlockConfig describes one registered block's static layout plus its
// mutable runtime state.
type BlockConfig struct {
	BlockID          uint8
	BlockSize        uint16
	Type             BlockType
	CrcKind          CrcKind
	Priority         uint8
	Immediate        bool
	WriteProtected   bool
	ROMDefault       []byte
	EepromOffset     uint64

	RedundantOffset      uint64 // Redundant only
	VersionControlOffset uint64 // Redundant only, 0 = none
	ActiveVersion        uint8

	DatasetCount       uint8  // Dataset only
	ActiveDatasetIndex uint8  // Dataset only
	DatasetSlotSize    uint32 // Dataset only: fixed byte stride between versions

	State      BlockState
	EraseCount uint32
}

// Diagnostics mirrors NvM_Diagnostics_t.
type Diagnostics struct {
	TotalJobsProcessed uint32
	TotalJobsFailed    uint32
	TotalJobsRetried   uint32
	CurrentQueueDepth  uint32
	MaxQueueDepth      uint32
}
