package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// BlockManifestEntry describes one block to register, loaded from a HJSON
// manifest. Field names mirror nvm.BlockConfig so the manifest reads as a
// plain projection of the runtime type.
type BlockManifestEntry struct {
	BlockID         uint8  `json:"block_id"`
	BlockSize       uint16 `json:"block_size"`
	Type            string `json:"type"` // native | redundant | dataset
	Crc             string `json:"crc"`  // none | crc8 | crc16 | crc32
	Priority        uint8  `json:"priority"`
	Immediate       bool   `json:"immediate"`
	WriteProtected  bool   `json:"write_protected"`
	EepromOffset    uint64 `json:"eeprom_offset"`
	RedundantOffset uint64 `json:"redundant_offset"`
	DatasetCount    uint8  `json:"dataset_count"`
}

// Manifest is the top-level demo configuration: medium geometry plus the
// blocks to register, layered as defaults -> one file. No command-line
// flag overrides manifest values.
type Manifest struct {
	MediumCapacity  uint64               `json:"medium_capacity"`
	MediumPageSize  uint32               `json:"medium_page_size"`
	MediumBlockSize uint32               `json:"medium_block_size"`
	MediumEndurance uint64               `json:"medium_endurance"`
	Blocks          []BlockManifestEntry `json:"blocks"`
}

// DefaultManifest mirrors DefaultConfig's role: sane defaults a loaded
// file only needs to override.
func DefaultManifest() Manifest {
	return Manifest{
		MediumCapacity:  64 * 1024,
		MediumPageSize:  256,
		MediumBlockSize: 1024,
		MediumEndurance: 100000,
	}
}

// LoadManifest reads a HJSON (JSON-with-comments) manifest file, falling
// back to DefaultManifest when path is empty.
func LoadManifest(path string) (Manifest, error) {
	m := DefaultManifest()
	if path == "" {
		return m, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := json.Unmarshal(std, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}
