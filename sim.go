// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reelslot

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/reelslot/catalog"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/recorder"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/sdk/calc"
	"github.com/zintix-labs/reelslot/sdk/clock"
	"github.com/zintix-labs/reelslot/sdk/core"
	"github.com/zintix-labs/reelslot/sdk/present"
	"github.com/zintix-labs/reelslot/spec"
	"github.com/zintix-labs/reelslot/stats"
)

const capPrepare int = 100

// DefaultScoreUnit 分數分桶的預設單位
const DefaultScoreUnit int = 10

// Simulator 跳過轉輪動畫，只抽盤面與計分，用於大量統計。
//
// 每個 worker 擁有自己的 PRNG、抽取器與計分器，彼此不共享狀態。
type Simulator struct {
	GameName  string
	gs        *spec.GameSetting
	cf        core.PRNGFactory
	unit      int
	initSeed  int64
	seedmaker *seedMaker
	wBuf      []*simWorker
	rBuf      []*recorder.OutcomeRecorder
	sBuf      []*stats.StatReport
}

type simWorker struct {
	cat  *catalog.Catalog
	eval *calc.Evaluator
	grid buf.Grid
}

func NewSimulator(gs *spec.GameSetting, cf core.PRNGFactory, unit int) (*Simulator, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, err
	}
	return NewSimulatorWithSeed(gs, cf, unit, seed)
}

func NewSimulatorWithSeed(gs *spec.GameSetting, cf core.PRNGFactory, unit int, seed int64) (*Simulator, error) {
	if gs == nil || cf == nil {
		return nil, errs.NewConfig("simulator needs game setting and prng factory")
	}
	if err := gs.Init(); err != nil {
		return nil, err
	}
	if unit <= 0 {
		unit = DefaultScoreUnit
	}
	s := &Simulator{
		GameName:  gs.GameName,
		gs:        gs,
		cf:        cf,
		unit:      unit,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		wBuf:      make([]*simWorker, 0, capPrepare),
		rBuf:      make([]*recorder.OutcomeRecorder, 0, capPrepare),
		sBuf:      make([]*stats.StatReport, 0, capPrepare),
	}
	// 第一台 worker 直接使用初始種子，單線模擬可由 seed 重現
	w, err := s.newWorker(seed)
	if err != nil {
		return nil, err
	}
	s.wBuf = append(s.wBuf, w)
	return s, nil
}

func (s *Simulator) Seed() int64 { return s.initSeed }

// Sim 單線模擬器：以一台 worker 連續跑指定 round 並回傳統計結果與用時
func (s *Simulator) Sim(round int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if round < 1 {
		return nil, 0, errs.NewConfig("round must > 0")
	}
	if err := s.prepareRecorders(1); err != nil {
		return nil, 0, err
	}
	r := s.rBuf[0]
	w := s.wBuf[0]

	bar := pb.StartNew(round)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < round; i++ {
		out := w.spin()
		r.Record(&out)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	result := r.Done()
	result.Done()

	return result, used, nil
}

// SimMP 平行執行多個 worker，總計 rounds*mp 次，合併統計結果後回傳統計結果與用時
func (s *Simulator) SimMP(rounds int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewConfig("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewConfig("round must > 0")
	}
	if err := s.prepareWorkers(mp); err != nil {
		return nil, 0, err
	}
	if err := s.prepareRecorders(mp); err != nil {
		return nil, 0, err
	}

	wg := new(sync.WaitGroup)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		w := s.wBuf[i]
		st := s.rBuf[i]
		wg.Go(func() {
			for r := 0; r < rounds; r++ {
				out := w.spin()
				st.Record(&out)
				bar.Increment()
			}
		})
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	st, err := recorder.MergeOutcomeRecorder(s.rBuf[:mp])
	if err != nil {
		return nil, 0, err
	}
	result := st.Done()
	result.Done()

	return result, used, nil
}

// SimSessions 模擬多個 session 各自從 0 分開始玩 rounds 局，
// 產出整體報表與 session 體驗評估（觸頂歸零比例、結束分數分位數）。
func (s *Simulator) SimSessions(mp int, sessions int, rounds int, showpb bool) (*stats.StatReport, *stats.EstimatorSessions, time.Duration, error) {
	defer s.reset()
	if sessions < 1 || rounds < 1 || mp < 1 {
		return nil, nil, 0, errs.NewConfig("invalid param")
	}
	if err := s.prepareWorkers(mp); err != nil {
		return nil, nil, 0, err
	}
	if err := s.prepareRecorders(sessions); err != nil {
		return nil, nil, 0, err
	}
	// 作一個2048大小的緩衝channel 使session依序處理
	jobs := make(chan *recorder.OutcomeRecorder, 2048)

	wg := new(sync.WaitGroup)
	bar := pb.StartNew(sessions)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for w := 0; w < mp; w++ {
		worker := s.wBuf[w]
		wg.Go(func() { simSessions(worker, jobs, rounds, bar) })
	}
	for _, j := range s.rBuf[:sessions] {
		jobs <- j
	}
	close(jobs)
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	record, err := recorder.MergeOutcomeRecorder(s.rBuf[:sessions])
	if err != nil {
		return nil, nil, 0, err
	}
	st := record.Done()
	st.Done()

	s.sBuf = make([]*stats.StatReport, sessions)
	for i, r := range s.rBuf[:sessions] {
		s.sBuf[i] = r.Done()
		s.sBuf[i].Done()
	}
	est := stats.EstimatorSessionExp(s.sBuf)
	return st, est, used, nil
}

func simSessions(w *simWorker, jobs chan *recorder.OutcomeRecorder, rounds int, bar *pb.ProgressBar) {
	for j := range jobs {
		w.eval.Reset()
		for range rounds {
			out := w.spin()
			j.RecordSession(&out)
		}
		bar.Increment()
	}
}

// spin 抽一個完整盤面並計分（不播放任何表現）
func (w *simWorker) spin() buf.Outcome {
	for i := range w.grid.Cells {
		w.grid.Cells[i] = w.cat.DrawCell()
	}
	// 盤面尺寸固定，Evaluate 不會回傳錯誤
	out, _ := w.eval.Evaluate(context.Background(), w.grid)
	return out
}

func (s *Simulator) newWorker(seed int64) (*simWorker, error) {
	log := slog.New(slog.DiscardHandler)
	stage := present.NewHeadless(clock.System{}, 0)
	cat, err := catalog.New(&s.gs.SymbolSetting, stage, core.New(s.cf.New(seed)), log)
	if err != nil {
		return nil, err
	}
	eval, err := calc.NewEvaluator(s.gs, calc.Options{Audio: present.NopAudio{}, Logger: log})
	if err != nil {
		return nil, err
	}
	scr := &s.gs.ScreenSetting
	return &simWorker{cat: cat, eval: eval, grid: buf.NewGrid(scr.Reels, scr.Rows)}, nil
}

func (s *Simulator) prepareWorkers(n int) error {
	for len(s.wBuf) < n {
		w, err := s.newWorker(s.seedmaker.next())
		if err != nil {
			return err
		}
		s.wBuf = append(s.wBuf, w)
	}
	return nil
}

func (s *Simulator) prepareRecorders(n int) error {
	for len(s.rBuf) < n {
		r, err := recorder.NewOutcomeRecorder(s.gs, s.unit)
		if err != nil {
			return err
		}
		s.rBuf = append(s.rBuf, r)
	}
	return nil
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
	s.sBuf = s.sBuf[:0]
	for _, w := range s.wBuf {
		w.eval.Reset()
	}
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫（例如 Runtime.Create）。
// 因此 state 的推進必須是原子的：使用 CAS 迴圈確保每次呼叫都會取得唯一的下一個 state。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
