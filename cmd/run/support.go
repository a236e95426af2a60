package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/zintix-labs/reelslot"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/core"
	"github.com/zintix-labs/reelslot/sdk/perf"
	"github.com/zintix-labs/reelslot/spec"
	"github.com/zintix-labs/reelslot/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type config struct {
	file     string
	worker   int
	sessions int
	rounds   int
	unit     int
	seed     int64
	format   stats.Format
	progress bool
	pprof    perf.Mode
}

func bindVar(args []string) (*config, error) {
	cfg := new(config)
	var pmode, format string
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.StringVar(&cfg.file, "config", "", "game setting yaml (default: built-in classic)")
	fs.IntVar(&cfg.worker, "worker", 1, "number of workers")
	fs.IntVar(&cfg.sessions, "sessions", 1, "number of sessions; >1 simulates session experience")
	fs.IntVar(&cfg.rounds, "rounds", 1000000, "rounds per worker (or per session)")
	fs.IntVar(&cfg.unit, "unit", reelslot.DefaultScoreUnit, "score unit for distribution buckets")
	fs.Int64Var(&cfg.seed, "seed", 0, "int64 seed; 0 draws from crypto/rand")
	fs.StringVar(&format, "format", "table", "output: table|json|yaml")
	fs.BoolVar(&cfg.progress, "pb", true, "show progress bar")
	fs.StringVar(&pmode, "p", "", "pprof: '', cpu, heap, allocs")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	m, err := perf.ParseMode(pmode)
	if err != nil {
		return nil, err
	}
	cfg.pprof = m
	if cfg.format, err = stats.ParseFormat(format); err != nil {
		return nil, err
	}
	return cfg, cfg.valid()
}

func (cfg *config) valid() error {
	if cfg.worker < 1 {
		return errs.NewConfig("workers must > 0")
	}
	if cfg.sessions < 1 {
		return errs.NewConfig("sessions must > 0")
	}
	if cfg.rounds < 1 {
		return errs.NewConfig("rounds must > 0")
	}
	// 單一 session 超過 15000 局已無體驗意義，直接模擬長局數即可
	if cfg.sessions > 1 && cfg.rounds > 15000 {
		message.NewPrinter(language.English).Fprintf(os.Stderr, "too many rounds per session: %d resized to 15k\n", cfg.rounds)
		cfg.rounds = 15000
	}
	return nil
}

func loadSetting(file string) (*spec.GameSetting, error) {
	if file == "" {
		return reelslot.ClassicSetting()
	}
	return reelslot.LoadSetting(os.DirFS(filepath.Dir(file)), filepath.Base(file))
}

// executeSimulator 解析並分支要執行的模擬器
func executeSimulator(cfg *config, w io.Writer) error {
	gs, err := loadSetting(cfg.file)
	if err != nil {
		return err
	}
	var sim *reelslot.Simulator
	if cfg.seed == 0 {
		sim, err = reelslot.NewSimulator(gs, core.Default(), cfg.unit)
	} else {
		sim, err = reelslot.NewSimulatorWithSeed(gs, core.Default(), cfg.unit, cfg.seed)
	}
	if err != nil {
		return err
	}

	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	showpb := cfg.progress && cfg.format == stats.FormatTable

	if cfg.sessions == 1 {
		if cfg.format == stats.FormatTable {
			p.Fprintf(w, "%s[GAME:%s] [WORKERS:%d] [ROUNDS:%d] [SEED:%d]%s\n", green, gs.GameName, cfg.worker, cfg.worker*cfg.rounds, sim.Seed(), reset)
		}
		st, used, err := sim.SimMP(cfg.rounds, cfg.worker, showpb)
		if err != nil {
			return err
		}
		return stats.NewSimReport(sim.Seed(), st, nil, used).Write(w, cfg.format)
	}

	if cfg.format == stats.FormatTable {
		p.Fprintf(w, "%s[GAME:%s] [WORKERS:%d] [SESSIONS:%d ROUNDS:%d] [SEED:%d]%s\n", green, gs.GameName, cfg.worker, cfg.sessions, cfg.rounds, sim.Seed(), reset)
	}
	st, est, used, err := sim.SimSessions(cfg.worker, cfg.sessions, cfg.rounds, showpb)
	if err != nil {
		return err
	}
	return stats.NewSimReport(sim.Seed(), st, est, used).Write(w, cfg.format)
}
