package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/nvmctl/nvm/internal/fault"
	"github.com/nvmctl/nvm/internal/medium"
	"github.com/nvmctl/nvm/pkg/nvm"
)

// Commands:
//
//	tick [n]                  Run n MainFunction ticks (default 1)
//	read <block>              Enqueue a read job
//	write <block> <hex>       Enqueue a write job with the given hex payload
//	enable <fault>            Enable a fault kind by name
//	disable <fault>           Disable a fault kind by name
//	prob <fault> <percent>    Set a fault's trigger probability
//	state <block>             Show a block's error status
//	diag                      Show manager/medium diagnostics
//	help                      Show this help
//	exit / quit / q           Exit
func runRepl(mgr *nvm.Manager, faults *fault.Registry, sim *medium.SimMedium, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := replHistoryFile()
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	for {
		input, err := line.Prompt("nvmdemo> ")
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		switch fields[0] {
		case "exit", "quit", "q":
			saveReplHistory(line, historyPath)
			return
		case "help", "?":
			fmt.Fprintln(out, "commands: tick [n], read <block>, write <block> <hex>, enable <fault>, disable <fault>, prob <fault> <percent>, state <block>, diag, exit")
		case "tick":
			n := 1
			if len(fields) > 1 {
				n, _ = strconv.Atoi(fields[1])
			}
			for i := 0; i < n; i++ {
				mgr.MainFunction(uint64(i) * 10)
			}
		case "read":
			handleReplRead(mgr, fields, out)
		case "write":
			handleReplWrite(mgr, fields, out)
		case "enable", "disable":
			handleReplToggle(faults, fields, out)
		case "prob":
			handleReplProb(faults, fields, out)
		case "state":
			handleReplState(mgr, fields, out)
		case "diag":
			writeDiagnostics(out, mgr, sim, "yaml")
		default:
			fmt.Fprintf(out, "unknown command %q\n", fields[0])
		}
	}
	saveReplHistory(line, historyPath)
}

func handleReplRead(mgr *nvm.Manager, fields []string, out io.Writer) {
	if len(fields) < 2 {
		fmt.Fprintln(out, "usage: read <block>")
		return
	}
	id, _ := strconv.Atoi(fields[1])
	buf := make([]byte, 4096)
	if err := mgr.ReadBlock(uint8(id), buf); err != nil {
		fmt.Fprintln(out, err)
	}
}

func handleReplWrite(mgr *nvm.Manager, fields []string, out io.Writer) {
	if len(fields) < 3 {
		fmt.Fprintln(out, "usage: write <block> <hex>")
		return
	}
	id, _ := strconv.Atoi(fields[1])
	data, err := hex.DecodeString(fields[2])
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	if err := mgr.WriteBlock(uint8(id), data); err != nil {
		fmt.Fprintln(out, err)
	}
}

func handleReplToggle(faults *fault.Registry, fields []string, out io.Writer) {
	if len(fields) < 2 {
		fmt.Fprintln(out, "usage: enable|disable <fault>")
		return
	}
	k, ok := faultKindByName[fields[1]]
	if !ok {
		fmt.Fprintf(out, "unknown fault %q\n", fields[1])
		return
	}
	if fields[0] == "enable" {
		faults.Enable(k)
	} else {
		faults.Disable(k)
	}
}

func handleReplProb(faults *fault.Registry, fields []string, out io.Writer) {
	if len(fields) < 3 {
		fmt.Fprintln(out, "usage: prob <fault> <percent>")
		return
	}
	k, ok := faultKindByName[fields[1]]
	if !ok {
		fmt.Fprintf(out, "unknown fault %q\n", fields[1])
		return
	}
	pct, _ := strconv.Atoi(fields[2])
	faults.Configure(fault.Config{Kind: k, Enabled: true, TargetBlockID: fault.AllBlocks, ProbabilityPercent: uint8(pct)})
}

func handleReplState(mgr *nvm.Manager, fields []string, out io.Writer) {
	if len(fields) < 2 {
		fmt.Fprintln(out, "usage: state <block>")
		return
	}
	id, _ := strconv.Atoi(fields[1])
	state, err := mgr.GetErrorStatus(uint8(id))
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	fmt.Fprintln(out, state)
}

var faultKindByName = map[string]fault.Kind{
	"powerloss-program":   fault.PowerLossPageProgram,
	"powerloss-writeall":  fault.PowerLossWriteAll,
	"bitflip-single":      fault.BitFlipSingle,
	"bitflip-multi":       fault.BitFlipMulti,
	"timeout-mainfn":      fault.TimeoutMainFunction,
	"timeout-erase":       fault.TimeoutErase,
	"crc-invert":          fault.CRCInvert,
	"write-verify-fail":   fault.WriteVerifyFail,
	"ram-corrupt":         fault.RAMCorrupt,
	"queue-overflow":      fault.QueueOverflow,
}

func replHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nvmdemo_history"
	}
	return filepath.Join(home, ".nvmdemo_history")
}

func saveReplHistory(line *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
