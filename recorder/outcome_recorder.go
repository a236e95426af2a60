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

package recorder

import (
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/spec"
	"github.com/zintix-labs/reelslot/stats"
)

// OutcomeRecorder 遊戲紀錄員
//
// OutcomeRecorder 負責紀錄每局結果，並透過Done輸出統計報表
type OutcomeRecorder struct {
	GameName string
	Unit     int
	Basic    *BasicRecord
	Dist     *DistRecord
	Symbols  []SymbolRecord
	Patterns []PatternRecord
	Session  *SessionRecord

	symIdx  map[int]int // symbol id -> index in Symbols
	session bool
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	TotalDelta  int64
	DeltaSqSum  float64 // 平方和
	MaxDelta    int64
	NoWin       int
	Saturations int
	Rounds      int
}

// DistRecord 分數區間落點統計
type DistRecord struct {
	Bucket  *stats.WinBucket
	Collect []int
}

type SymbolRecord struct {
	ID    int
	Name  string
	Value int
	Wins  int
	Score int64
}

type PatternRecord struct {
	Name       string
	Multiplier int
	Hits       int
}

// SessionRecord 單一 session 的累計狀態
type SessionRecord struct {
	Total       int64
	MaxTotal    int64
	Saturations int
}

// NewOutcomeRecorder 依設定建立紀錄員；unit 為分桶的分數單位。
//
// 注意：分桶建立不是併發安全的，請在啟動 worker 之前建立所有紀錄員。
func NewOutcomeRecorder(gs *spec.GameSetting, unit int) (*OutcomeRecorder, error) {
	if gs == nil {
		return nil, errs.NewConfig("nil game setting")
	}
	if err := gs.Init(); err != nil {
		return nil, err
	}
	if unit < 1 {
		return nil, errs.Configf("score unit must > 0, got: %d", unit)
	}
	r := &OutcomeRecorder{
		GameName: gs.GameName,
		Unit:     unit,
		Basic:    new(BasicRecord),
		Dist:     newDistRecord(unit),
		Session:  new(SessionRecord),
		symIdx:   make(map[int]int, len(gs.SymbolSetting.Symbols)),
	}
	for i, d := range gs.SymbolSetting.Symbols {
		r.symIdx[d.ID] = i
		r.Symbols = append(r.Symbols, SymbolRecord{ID: d.ID, Name: d.Name, Value: d.Value})
	}
	for _, p := range gs.PatternSetting.Patterns {
		r.Patterns = append(r.Patterns, PatternRecord{Name: p.Name, Multiplier: p.Multiplier})
	}
	return r, nil
}

// MergeOutcomeRecorder 合併多個紀錄員（不含 session 狀態）
func MergeOutcomeRecorder(r []*OutcomeRecorder) (*OutcomeRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewInvariant("merge outcome record err : empty input")
	}
	r0 := r[0]
	s := r0.emptyCopy()
	for _, v := range r {
		if v.GameName != r0.GameName {
			return s, errs.NewInvariant("merge outcome record err : different game name")
		}
		if v.Unit != r0.Unit {
			return s, errs.NewInvariant("merge outcome record err : different score unit")
		}
		if len(v.Symbols) != len(r0.Symbols) || len(v.Patterns) != len(r0.Patterns) {
			return s, errs.NewInvariant("merge outcome record err : different paytable")
		}
		s.Basic.TotalDelta += v.Basic.TotalDelta
		s.Basic.DeltaSqSum += v.Basic.DeltaSqSum
		s.Basic.MaxDelta = max(s.Basic.MaxDelta, v.Basic.MaxDelta)
		s.Basic.NoWin += v.Basic.NoWin
		s.Basic.Saturations += v.Basic.Saturations
		s.Basic.Rounds += v.Basic.Rounds

		for i := range v.Dist.Collect {
			s.Dist.Collect[i] += v.Dist.Collect[i]
		}
		for i := range v.Symbols {
			s.Symbols[i].Wins += v.Symbols[i].Wins
			s.Symbols[i].Score += v.Symbols[i].Score
		}
		for i := range v.Patterns {
			s.Patterns[i].Hits += v.Patterns[i].Hits
		}
	}
	return s, nil
}

// Record 以單局結果更新統計
func (s *OutcomeRecorder) Record(o *buf.Outcome) {
	s.recordBasic(o)
	s.recordGroups(o)
	s.Dist.Collect[s.Dist.Bucket.Index(o.Delta)]++
}

// RecordSession 在 Record 的基礎上更新 session 累計，並回傳本局是否觸頂歸零。
func (s *OutcomeRecorder) RecordSession(o *buf.Outcome) bool {
	s.Record(o)
	s.session = true
	ss := s.Session
	ss.Total = o.Total
	ss.MaxTotal = max(ss.MaxTotal, o.Total)
	if o.Saturated {
		ss.Saturations++
	}
	return o.Saturated
}

func (s *OutcomeRecorder) Done() *stats.StatReport {
	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:    s.GameName,
			Rounds:      s.Basic.Rounds,
			TotalDelta:  s.Basic.TotalDelta,
			DeltaSqSum:  s.Basic.DeltaSqSum,
			MaxDelta:    s.Basic.MaxDelta,
			NoWinRounds: s.Basic.NoWin,
			Saturations: s.Basic.Saturations,
		},
		Dist: &stats.DistReport{
			ScoreUnit: s.Unit,
			Bucket:    stats.Buckets.WinBucketStr(),
			Collect:   append([]int(nil), s.Dist.Collect...),
		},
	}
	for _, v := range s.Symbols {
		report.Symbols = append(report.Symbols, stats.SymbolReport{ID: v.ID, Name: v.Name, Value: v.Value, Wins: v.Wins, Score: v.Score})
	}
	for _, v := range s.Patterns {
		report.Patterns = append(report.Patterns, stats.PatternReport{Name: v.Name, Multiplier: v.Multiplier, Hits: v.Hits})
	}
	if s.session {
		report.Session = &stats.SessionReport{
			FinalTotal:  s.Session.Total,
			MaxTotal:    s.Session.MaxTotal,
			Saturations: s.Session.Saturations,
		}
	}
	return report
}

// ** 以下內部方法 **

func (s *OutcomeRecorder) recordBasic(o *buf.Outcome) {
	d := o.Delta
	s.Basic.TotalDelta += d
	s.Basic.DeltaSqSum += float64(d) * float64(d)
	if d > s.Basic.MaxDelta {
		s.Basic.MaxDelta = d
	}
	if len(o.Groups) == 0 {
		s.Basic.NoWin++
	}
	if o.Saturated {
		s.Basic.Saturations++
	}
	s.Basic.Rounds++
}

func (s *OutcomeRecorder) recordGroups(o *buf.Outcome) {
	for _, g := range o.Groups {
		if i, ok := s.symIdx[g.SymbolID]; ok {
			s.Symbols[i].Wins++
			s.Symbols[i].Score += g.Score
		}
		for _, pi := range g.Patterns {
			if pi >= 0 && pi < len(s.Patterns) {
				s.Patterns[pi].Hits++
			}
		}
	}
}

func (s *OutcomeRecorder) emptyCopy() *OutcomeRecorder {
	c := &OutcomeRecorder{
		GameName: s.GameName,
		Unit:     s.Unit,
		Basic:    new(BasicRecord),
		Dist:     newDistRecord(s.Unit),
		Session:  new(SessionRecord),
		symIdx:   s.symIdx,
	}
	for _, v := range s.Symbols {
		c.Symbols = append(c.Symbols, SymbolRecord{ID: v.ID, Name: v.Name, Value: v.Value})
	}
	for _, v := range s.Patterns {
		c.Patterns = append(c.Patterns, PatternRecord{Name: v.Name, Multiplier: v.Multiplier})
	}
	return c
}

func newDistRecord(unit int) *DistRecord {
	d := new(DistRecord)
	d.Bucket = stats.Buckets.GetBucketByUnit(unit)
	d.Collect = make([]int, len(stats.Buckets.WinBucketStr()))
	return d
}
