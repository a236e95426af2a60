package main

import (
	"fmt"
	"os"

	"github.com/zintix-labs/reelslot/sdk/perf"
)

// makefile runner
func main() {
	cfg, err := bindVar(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := perf.Run(perf.DefaultDir, cfg.pprof, func() error { return executeSimulator(cfg, os.Stdout) }); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
