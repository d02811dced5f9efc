package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvmctl/nvm/pkg/nvm"
)

func TestLoadManifestDefaultsWhenPathEmpty(t *testing.T) {
	m, err := LoadManifest("")
	require.NoError(t, err)
	require.Equal(t, DefaultManifest(), m)
}

func TestLoadManifestParsesHJSONWithComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.hjson")
	contents := `{
		// medium geometry
		"medium_capacity": 8192,
		"blocks": [
			{"block_id": 1, "block_size": 32, "type": "native", "crc": "crc16"},
		],
	}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Equal(t, uint64(8192), m.MediumCapacity)
	require.Len(t, m.Blocks, 1)
	require.Equal(t, uint8(1), m.Blocks[0].BlockID)
}

func TestToBlockConfigMapsTypeAndCrc(t *testing.T) {
	entry := BlockManifestEntry{BlockID: 2, BlockSize: 16, Type: "redundant", Crc: "crc32"}
	cfg, err := entry.toBlockConfig()
	require.NoError(t, err)
	require.Equal(t, nvm.Redundant, cfg.Type)
	require.Equal(t, nvm.Crc32, cfg.CrcKind)
}

func TestToBlockConfigRejectsUnknownType(t *testing.T) {
	entry := BlockManifestEntry{Type: "bogus"}
	_, err := entry.toBlockConfig()
	require.Error(t, err)
}
