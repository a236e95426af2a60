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
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/reelslot/catalog"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/sdk/calc"
	"github.com/zintix-labs/reelslot/sdk/clock"
	"github.com/zintix-labs/reelslot/sdk/core"
	"github.com/zintix-labs/reelslot/sdk/reel"
	"github.com/zintix-labs/reelslot/spec"
)

var (
	ErrBusy          = errs.New(errs.Busy, "session busy")
	ErrSessionClosed = errs.NewInvariant("session closed")
)

// State 是 session 的流程狀態，取代散落在按鈕上的忙碌旗標。
type State uint8

const (
	Idle State = iota
	Spinning
	Evaluating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Spinning:
		return "spinning"
	case Evaluating:
		return "evaluating"
	}
	return "unknown"
}

// Session 一台機台的一次遊玩期間：持有轉輪、計分器與累計分數。
//
// Spin 的流程：Idle -> Spinning（起轉、等待固定時間、依序停輪） -> Evaluating（計分、慶祝） -> Idle。
// 非 Idle 時的 Spin 與 Clear 一律回傳 ErrBusy。
type Session struct {
	gs      *spec.GameSetting
	seed    int64
	core    *core.Core
	cat     *catalog.Catalog
	reels   *reel.Manager
	eval    *calc.Evaluator
	clk     clock.Clock
	spinFor time.Duration
	log     *slog.Logger
	onState func(State)

	mu     sync.Mutex
	state  State
	rounds int64
	closed bool
}

func (s *Session) GameName() string { return s.gs.GameName }
func (s *Session) Seed() int64      { return s.seed }
func (s *Session) Score() int64     { return s.eval.Score() }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Rounds 回傳已完成的局數
func (s *Session) Rounds() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rounds
}

// Spin 執行完整一局並回傳結果。
//
// ctx 只在開始前檢查；一旦起轉，這一局必定跑到停妥並計分完成。
func (s *Session) Spin(ctx context.Context) (buf.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return buf.Outcome{}, err
	}
	if err := s.enter(); err != nil {
		return buf.Outcome{}, err
	}
	defer s.setState(Idle)

	run := context.WithoutCancel(ctx)
	round := uuid.NewString()
	log := s.log.With(slog.String("round", round))

	if !s.reels.StartSpin() {
		return buf.Outcome{}, ErrBusy
	}
	if _, err := clock.Sleep(run, s.clk, s.spinFor); err != nil {
		return buf.Outcome{}, err
	}
	if err := s.reels.StopSpin(); err != nil {
		return buf.Outcome{}, err
	}
	// 計分、慶祝結束後轉輪回到 Idle
	defer func() {
		if err := s.reels.Rearm(); err != nil {
			log.Warn("rearm reels failed", slog.Any("err", err))
		}
	}()
	log.Debug("reels settled", slog.Any("offsets", s.reels.StopOffsets()))

	grid, err := s.reels.ActiveGrid()
	if err != nil {
		return buf.Outcome{}, err
	}
	s.setState(Evaluating)
	out, err := s.eval.Evaluate(run, grid)
	if err != nil {
		return buf.Outcome{}, err
	}
	out.Round = round

	s.mu.Lock()
	s.rounds++
	s.mu.Unlock()
	log.Info("spin outcome",
		slog.String("grid", grid.String()),
		slog.Int64("delta", out.Delta),
		slog.Int64("total", out.Total),
		slog.Int("groups", len(out.Groups)),
		slog.Bool("saturated", out.Saturated),
	)
	return out, nil
}

// Clear 玩家清除分數；轉動或計分中回傳 ErrBusy。
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state != Idle {
		return ErrBusy
	}
	s.eval.Reset()
	s.log.Info("score cleared")
	return nil
}

// Paytable 資訊選單內容：圖標依分值由高到低，倍數樣式同名只列一次。
func (s *Session) Paytable() buf.Paytable {
	return PaytableOf(s.gs)
}

// PaytableOf 由設定檔產生賠付表
func PaytableOf(gs *spec.GameSetting) buf.Paytable {
	pt := buf.Paytable{}
	for _, d := range gs.SymbolSetting.Symbols {
		pt.Symbols = append(pt.Symbols, buf.PaySymbol{ID: d.ID, Name: d.Name, Value: d.Value})
	}
	slices.SortStableFunc(pt.Symbols, func(a, b buf.PaySymbol) int { return cmp.Compare(b.Value, a.Value) })

	idx := map[string]int{}
	for _, p := range gs.PatternSetting.Patterns {
		if i, ok := idx[p.Name]; ok {
			pt.Multipliers[i].Patterns++
			continue
		}
		idx[p.Name] = len(pt.Multipliers)
		pt.Multipliers = append(pt.Multipliers, buf.PayMultiplier{Name: p.Name, Multiplier: p.Multiplier, Patterns: 1})
	}
	return pt
}

// SnapshotRNG 取得 RNG 狀態；只在 Idle 時允許，確保狀態對應局與局之間。
func (s *Session) SnapshotRNG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return nil, ErrBusy
	}
	return s.core.Snapshot()
}

func (s *Session) RestoreRNG(state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return ErrBusy
	}
	// 狀態內容由呼叫端提供，格式錯誤屬於輸入問題
	if err := s.core.Restore(state); err != nil {
		e := errs.NewConfig("restore rng failed")
		e.Cause = err
		return e
	}
	return nil
}

// Close 歸還所有圖標實例；之後 Spin 回傳 ErrSessionClosed。
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.state != Idle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.closed = true
	s.mu.Unlock()
	if err := s.reels.Close(); err != nil {
		return err
	}
	s.cat.Close()
	return nil
}

// ** 以下內部方法 **

func (s *Session) enter() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != Idle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = Spinning
	s.mu.Unlock()
	s.notify(Spinning)
	return nil
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	changed := s.state != st
	s.state = st
	s.mu.Unlock()
	if changed {
		s.notify(st)
	}
}

func (s *Session) notify(st State) {
	if s.onState != nil {
		s.onState(st)
	}
}
