package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/nvmctl/nvm/internal/medium"
	"github.com/nvmctl/nvm/pkg/nvm"
)

// diagnosticsReport merges the manager's job/queue counters with the
// medium's byte/erase counters, mirroring Eep_GetDiagnostics and
// NvM_GetDiagnostics combined into one view.
type diagnosticsReport struct {
	Jobs   nvm.Diagnostics    `json:"jobs" yaml:"jobs"`
	Medium medium.Diagnostics `json:"medium" yaml:"medium"`
}

func writeDiagnostics(w io.Writer, mgr *nvm.Manager, sim *medium.SimMedium, format string) int {
	report := diagnosticsReport{
		Jobs:   mgr.GetDiagnostics(),
		Medium: sim.Diagnostics(),
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintln(w, err)
			return 1
		}
	default:
		out, err := yaml.Marshal(report)
		if err != nil {
			fmt.Fprintln(w, err)
			return 1
		}
		w.Write(out)
	}
	return 0
}
