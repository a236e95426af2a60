package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/reelslot"
	"github.com/zintix-labs/reelslot/corefmt"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/sdk/clock"
	"github.com/zintix-labs/reelslot/sdk/core"
	"github.com/zintix-labs/reelslot/sdk/present"
	"github.com/zintix-labs/reelslot/server/logger"
	"github.com/zintix-labs/reelslot/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 無畫面遊玩：以真實（或快轉）時鐘跑完整的起轉、錯開停輪與慶祝流程。
func main() {
	cfg, err := parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := play(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type config struct {
	file    string
	spins   int
	seed    int64
	speed   float64
	logMode logger.LogMode
	save    string
	restore string
}

func parse(args []string) (*config, error) {
	cfg := new(config)
	var mode string
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.StringVar(&cfg.file, "config", "", "game setting yaml (default: built-in classic)")
	fs.IntVar(&cfg.spins, "spins", 5, "number of spins")
	fs.Int64Var(&cfg.seed, "seed", 0, "int64 seed; 0 draws from crypto/rand")
	fs.Float64Var(&cfg.speed, "speed", 1, "time scale; 10 plays ten times faster")
	fs.StringVar(&mode, "log", "silence", "log mode: dev|prod|silence")
	fs.StringVar(&cfg.save, "save", "", "write rng state to this file when done")
	fs.StringVar(&cfg.restore, "restore", "", "resume rng state from this file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	m, err := logger.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	cfg.logMode = m
	if cfg.spins < 1 {
		return nil, errs.NewConfig("spins must > 0")
	}
	if cfg.speed <= 0 {
		return nil, errs.NewConfig("speed must > 0")
	}
	return cfg, nil
}

func loadSetting(file string) (*spec.GameSetting, error) {
	if file == "" {
		return reelslot.ClassicSetting()
	}
	return reelslot.LoadSetting(os.DirFS(filepath.Dir(file)), filepath.Base(file))
}

func play(ctx context.Context, cfg *config, w io.Writer) error {
	gs, err := loadSetting(cfg.file)
	if err != nil {
		return err
	}
	log := logger.NewLoggerTo(os.Stderr, cfg.logMode)
	clk := clock.Scaled{Base: clock.System{}, Factor: cfg.speed}
	deps := reelslot.Deps{
		Stage:  present.NewHeadless(clk, reelslot.DefaultCelebrate),
		Audio:  present.LogAudio{Log: log},
		Clock:  clk,
		Logger: log,
	}

	var s *reelslot.Session
	if cfg.seed == 0 {
		s, err = reelslot.NewRandom(gs, core.Default(), deps)
	} else {
		s, err = reelslot.New(gs, core.Default(), cfg.seed, deps)
	}
	if err != nil {
		return err
	}
	defer s.Close()

	if cfg.restore != "" {
		if err := restore(s, cfg.restore); err != nil {
			return err
		}
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(w, "[GAME:%s] [SEED:%d] [SPINS:%d]\n", s.GameName(), s.Seed(), cfg.spins)
	for i := 0; i < cfg.spins; i++ {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		out, err := s.Spin(ctx)
		if err != nil {
			return err
		}
		printOutcome(p, w, i+1, &out, time.Since(start))
	}
	p.Fprintf(w, "final score: %d after %d rounds\n", s.Score(), s.Rounds())

	if cfg.save != "" {
		return save(s, cfg.save)
	}
	return nil
}

func printOutcome(p *message.Printer, w io.Writer, n int, out *buf.Outcome, used time.Duration) {
	p.Fprintf(w, "--- spin %d (%v) ---\n%s\n", n, used.Round(time.Millisecond), out.Grid.String())
	for _, g := range out.Groups {
		p.Fprintf(w, "  %s x%d cells  value %d  multiply %d  => %d\n", runewidth.FillRight(g.Name, 8), len(g.Cells), g.BaseValue, g.Multiply, g.Score)
	}
	if out.Saturated {
		p.Fprintf(w, "  score ceiling exceeded, reset to 0\n")
	}
	p.Fprintf(w, "  delta %d  total %d\n", out.Delta, out.Total)
}

func save(s *reelslot.Session, path string) error {
	st, err := s.SnapshotRNG()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.WrapWithExtra(err, "create rng file failed", path)
	}
	defer f.Close()
	return corefmt.WriteBlobFrame(f, st)
}

func restore(s *reelslot.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.WrapWithExtra(err, "open rng file failed", path)
	}
	defer f.Close()
	st, err := corefmt.ReadBlobFrame(f, corefmt.MaxSnapBytes)
	if err != nil {
		return err
	}
	return s.RestoreRNG(st)
}
