// Command nvmdemo drives an in-memory NVM manager instance from a HJSON
// block manifest, for manual exploration and the power-cycle durability
// scenario.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/nvmctl/nvm/internal/fault"
	"github.com/nvmctl/nvm/internal/medium"
	"github.com/nvmctl/nvm/pkg/nvm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	flags := pflag.NewFlagSet("nvmdemo", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "path to a HJSON block manifest")
	snapshotPath := flags.StringP("snapshot", "s", "", "optional medium image to load/persist across runs")
	ticks := flags.IntP("ticks", "t", 1, "number of MainFunction ticks to run before exiting")
	interactive := flags.BoolP("interactive", "i", false, "drop into the fault-injection console instead of running ticks")
	diagFormat := flags.String("format", "yaml", "diagnostics output format: yaml|json")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	manifest, err := LoadManifest(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	geo := medium.Geometry{
		Capacity:  manifest.MediumCapacity,
		PageSize:  manifest.MediumPageSize,
		BlockSize: manifest.MediumBlockSize,
		Endurance: manifest.MediumEndurance,
	}

	var sim *medium.SimMedium
	if *snapshotPath != "" {
		if loaded, err := medium.LoadSimMedium(*snapshotPath, geo); err == nil {
			sim = loaded
			fmt.Fprintf(stdout, "loaded medium snapshot from %s\n", *snapshotPath)
		}
	}
	if sim == nil {
		sim = medium.NewSimMedium(geo)
	}

	faults := fault.NewRegistry(1)
	mgr := nvm.NewManager(nvm.Options{Driver: sim, Faults: faults})
	if err := mgr.Init(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	for _, b := range manifest.Blocks {
		cfg, err := b.toBlockConfig()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if err := mgr.RegisterBlock(cfg); err != nil {
			fmt.Fprintf(stderr, "register block %d: %v\n", b.BlockID, err)
			return 1
		}
	}

	if *interactive {
		runRepl(mgr, faults, sim, stdout)
	} else {
		for i := 0; i < *ticks; i++ {
			mgr.MainFunction(uint64(i) * 10)
		}
	}

	if *snapshotPath != "" {
		if err := sim.Snapshot(*snapshotPath); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	return writeDiagnostics(stdout, mgr, sim, *diagFormat)
}

func (b BlockManifestEntry) toBlockConfig() (nvm.BlockConfig, error) {
	t, err := parseBlockType(b.Type)
	if err != nil {
		return nvm.BlockConfig{}, err
	}
	k, err := parseCrcKind(b.Crc)
	if err != nil {
		return nvm.BlockConfig{}, err
	}
	return nvm.BlockConfig{
		BlockID:         b.BlockID,
		BlockSize:       b.BlockSize,
		Type:            t,
		CrcKind:         k,
		Priority:        b.Priority,
		Immediate:       b.Immediate,
		WriteProtected:  b.WriteProtected,
		EepromOffset:    b.EepromOffset,
		RedundantOffset: b.RedundantOffset,
		DatasetCount:    b.DatasetCount,
	}, nil
}

func parseBlockType(s string) (nvm.BlockType, error) {
	switch s {
	case "", "native":
		return nvm.Native, nil
	case "redundant":
		return nvm.Redundant, nil
	case "dataset":
		return nvm.Dataset, nil
	default:
		return 0, fmt.Errorf("unknown block type %q", s)
	}
}

func parseCrcKind(s string) (nvm.CrcKind, error) {
	switch s {
	case "", "none":
		return nvm.CrcNone, nil
	case "crc8":
		return nvm.Crc8, nil
	case "crc16":
		return nvm.Crc16, nil
	case "crc32":
		return nvm.Crc32, nil
	default:
		return 0, fmt.Errorf("unknown crc kind %q", s)
	}
}
