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

package calc

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/sdk/present"
	"github.com/zintix-labs/reelslot/spec"
)

// Celebrator 依盤面座標找到圖標實例並播放慶祝動畫（通常是 reel.Manager）。
type Celebrator interface {
	Celebrate(ctx context.Context, pos buf.Pos) error
}

type Options struct {
	Audio      present.Audio
	Celebrator Celebrator
	Logger     *slog.Logger
}

// Evaluator 持有累計分數，對停妥的盤面計分並驅動中獎表現。
//
// 分數只會被 Evaluate 與 Reset 修改；兩者都由 session 的忙碌保護序列化，mu 只保證讀取一致。
type Evaluator struct {
	mu sync.Mutex

	reels, rows int
	patterns    []Pattern
	names       map[int]string
	ceiling     int64
	winCue      string
	timeout     time.Duration

	audio      present.Audio
	celebrator Celebrator
	log        *slog.Logger

	matcher *Matcher
	score   int64
}

// NewEvaluator 建立計分器；空盤面、樣式越界等設定錯誤在此回傳。
func NewEvaluator(gs *spec.GameSetting, opt Options) (*Evaluator, error) {
	if gs == nil {
		return nil, errs.NewConfig("nil game setting")
	}
	if err := gs.Init(); err != nil {
		return nil, errs.Wrap(err, "evaluator setting invalid")
	}
	scr := &gs.ScreenSetting
	patterns, err := CompilePatterns(gs.PatternSetting.Patterns, scr.Reels, scr.Rows)
	if err != nil {
		return nil, err
	}
	e := &Evaluator{
		reels:      scr.Reels,
		rows:       scr.Rows,
		patterns:   patterns,
		names:      make(map[int]string, len(gs.SymbolSetting.Symbols)),
		ceiling:    gs.ScoreCeiling,
		winCue:     gs.CueSetting.Win,
		timeout:    gs.TimingSetting.CelebrateTimeout,
		audio:      opt.Audio,
		celebrator: opt.Celebrator,
		log:        opt.Logger,
		matcher:    NewMatcher(scr.Reels, scr.Rows, patterns),
	}
	for _, d := range gs.SymbolSetting.Symbols {
		e.names[d.ID] = d.Name
	}
	if e.audio == nil {
		e.audio = present.NopAudio{}
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	return e, nil
}

func (e *Evaluator) Score() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// Reset 分數歸零（玩家清除）
func (e *Evaluator) Reset() {
	e.mu.Lock()
	e.score = 0
	e.mu.Unlock()
}

func (e *Evaluator) Patterns() []Pattern { return e.patterns }

// Match 純計算：找出群組並套用倍數，不改變分數、不觸發表現
func (e *Evaluator) Match(g buf.Grid) ([]buf.WinGroup, int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	groups, delta, err := e.matcher.Match(g)
	if err != nil {
		return nil, 0, err
	}
	for i := range groups {
		groups[i].Name = e.names[groups[i].SymbolID]
	}
	return groups, delta, nil
}

// Evaluate 計分並累加，超過上限歸零；之後每個群組播放一次 win 音效，
// 並等待群組內所有格子的動畫完成才返回。
//
// 分數在表現開始前就已寫入。動畫或音效失敗只記錄不中斷；
// 單一動畫最長等待 CelebrateTimeout，ctx 的取消不會中止表現。
func (e *Evaluator) Evaluate(ctx context.Context, g buf.Grid) (buf.Outcome, error) {
	groups, delta, err := e.Match(g)
	if err != nil {
		return buf.Outcome{}, err
	}
	out := buf.Outcome{Grid: g.Clone(), Groups: groups, Delta: delta}

	e.mu.Lock()
	total := e.score + delta
	if total > e.ceiling {
		total = 0
		out.Saturated = true
	}
	e.score = total
	e.mu.Unlock()
	out.Total = total

	if len(groups) > 0 {
		e.celebrate(context.WithoutCancel(ctx), groups)
	}
	return out, nil
}

// ** 以下內部方法 **

func (e *Evaluator) celebrate(ctx context.Context, groups []buf.WinGroup) {
	var wg sync.WaitGroup
	for _, grp := range groups {
		errs.Swallow(e.log, e.audio.PlayCue(e.winCue), slog.String("cue", e.winCue), slog.Int("symbol", grp.SymbolID))
		if e.celebrator == nil {
			continue
		}
		for _, pos := range grp.Cells {
			wg.Go(func() {
				cctx := ctx
				if e.timeout > 0 {
					var cancel context.CancelFunc
					cctx, cancel = context.WithTimeout(ctx, e.timeout)
					defer cancel()
				}
				err := e.celebrator.Celebrate(cctx, pos)
				errs.Swallow(e.log, err, slog.Int("reel", pos.Reel), slog.Int("row", pos.Row))
			})
		}
	}
	wg.Wait()
}
