// Package medium defines the storage medium contract the NVM manager
// drives (external to the core, per the original eeprom_driver.h) and a
// RAM-backed reference implementation used by tests and the demo CLI.
package medium

import "errors"

var (
	ErrMisaligned    = errors.New("medium: misaligned access")
	ErrOutOfRange    = errors.New("medium: address out of range")
	ErrNotErased     = errors.New("medium: target not in erase state")
	ErrEnduranceUsed = errors.New("medium: erase-block endurance exhausted")
)

// Geometry describes the physical shape of a medium.
type Geometry struct {
	Capacity  uint64
	PageSize  uint32
	BlockSize uint32 // erase granularity
	Endurance uint64 // max erase cycles per erase-block, 0 = unlimited
}

// Driver is the external collaborator the NVM core reads and writes
// through. Read is byte-granular; Program requires page alignment and an
// erased (0xFF) target; Erase is block-aligned and restores 0xFF.
// NoteCRCError lets the block-type engine report a CRC mismatch found
// above the driver, so it shows up in Diagnostics.CRCErrorCount.
type Driver interface {
	Read(addr uint64, buf []byte) error
	Program(addr uint64, buf []byte) error
	Erase(addr uint64) error
	Geometry() Geometry
	NoteCRCError()
}

// Diagnostics mirrors Eep_GetDiagnostics from the original driver.
type Diagnostics struct {
	TotalReadCount    uint64
	TotalWriteCount   uint64
	TotalEraseCount   uint64
	MaxEraseCount     uint64
	CRCErrorCount     uint64
	TotalBytesRead    uint64
	TotalBytesWritten uint64
}
