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

package reel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/sdk/clock"
	"github.com/zintix-labs/reelslot/sdk/present"
	"github.com/zintix-labs/reelslot/spec"
)

var (
	ErrNotSettled = errs.NewInvariant("reels not settled")
	ErrStopping   = errs.NewInvariant("stop already in progress")
)

// Options 注入協作者；nil 欄位使用預設（System clock、NopAudio、丟棄 log）。
type Options struct {
	Clock  clock.Clock
	Audio  present.Audio
	Logger *slog.Logger
}

// Manager 持有 N 個轉輪，負責同時起轉、依序停輪與盤面快照。
type Manager struct {
	mu sync.Mutex

	reels   []*Reel
	rows    int
	clk     clock.Clock
	audio   present.Audio
	log     *slog.Logger
	stagger time.Duration
	frame   time.Duration
	spinCue string

	spinning bool // StartSpin 到 StopSpin 完成之間為 true
	stopping bool
	loopDone chan struct{}
	offsets  []time.Duration
}

func NewManager(gs *spec.GameSetting, src Source, opt Options) (*Manager, error) {
	if gs == nil {
		return nil, errs.NewConfig("nil game setting")
	}
	if err := gs.Init(); err != nil {
		return nil, errs.Wrap(err, "reel manager setting invalid")
	}
	m := &Manager{
		rows:    gs.ScreenSetting.Rows,
		clk:     opt.Clock,
		audio:   opt.Audio,
		log:     opt.Logger,
		stagger: gs.TimingSetting.StopStagger,
		frame:   gs.TimingSetting.FrameInterval,
		spinCue: gs.CueSetting.Spin,
	}
	if m.clk == nil {
		m.clk = clock.System{}
	}
	if m.audio == nil {
		m.audio = present.NopAudio{}
	}
	if m.log == nil {
		m.log = slog.New(slog.DiscardHandler)
	}
	m.reels = make([]*Reel, gs.ScreenSetting.Reels)
	for col := range m.reels {
		r, err := New(col, gs, src, m.log)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.reels[col] = r
	}
	return m, nil
}

func (m *Manager) Reels() int { return len(m.reels) }
func (m *Manager) Rows() int  { return m.rows }

// Reel 回傳第 col 輪（測試與觀測用）
func (m *Manager) Reel(col int) *Reel { return m.reels[col] }

// Spinning 回傳是否在一次轉動週期中（起轉到停輪完成）
func (m *Manager) Spinning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spinning
}

// StartSpin 所有轉輪同時起轉並播放一次 spin 音效。轉動週期中重複呼叫不做事。
func (m *Manager) StartSpin() bool {
	m.mu.Lock()
	if m.spinning {
		m.mu.Unlock()
		return false
	}
	m.spinning = true
	for _, r := range m.reels {
		r.StartSpin()
	}
	done := make(chan struct{})
	m.loopDone = done
	m.mu.Unlock()

	errs.Swallow(m.log, m.audio.PlayCue(m.spinCue), slog.String("cue", m.spinCue))
	m.log.Debug("reels spinning", slog.Int("reels", len(m.reels)))
	go m.loop(done)
	return true
}

// StopSpin 依序停輪：第 k 輪在呼叫後 k*stagger 開始減速，
// 全部轉輪停妥且幀迴圈結束後才返回，最後停止 spin 音效。
//
// 停輪一旦開始就不可中斷。未在轉動時呼叫直接返回 nil。
func (m *Manager) StopSpin() error {
	m.mu.Lock()
	if !m.spinning {
		m.mu.Unlock()
		return nil
	}
	if m.stopping {
		m.mu.Unlock()
		return ErrStopping
	}
	m.stopping = true
	loopDone := m.loopDone
	m.mu.Unlock()

	start := m.clk.Now()
	offsets := make([]time.Duration, len(m.reels))
	settled := make([]<-chan struct{}, len(m.reels))
	for k, r := range m.reels {
		at := start
		if k > 0 {
			due := start.Add(time.Duration(k) * m.stagger)
			at = <-m.clk.After(due.Sub(m.clk.Now()))
		}
		offsets[k] = at.Sub(start)
		settled[k] = r.Stop()
		m.log.Debug("reel stopping", slog.Int("reel", k), slog.Duration("offset", offsets[k]))
	}
	for _, ch := range settled {
		<-ch
	}
	<-loopDone

	errs.Swallow(m.log, m.audio.StopCue(m.spinCue), slog.String("cue", m.spinCue))

	m.mu.Lock()
	m.offsets = offsets
	m.spinning = false
	m.stopping = false
	m.mu.Unlock()
	return nil
}

// StopOffsets 回傳上一次停輪時各輪開始減速的時間（相對於 StopSpin 呼叫）
func (m *Manager) StopOffsets() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.offsets...)
}

// ActiveGrid 建立 [reel][row] 的唯讀快照。必須在 StopSpin 返回後呼叫。
func (m *Manager) ActiveGrid() (buf.Grid, error) {
	if m.Spinning() {
		return buf.Grid{}, ErrNotSettled
	}
	g := buf.NewGrid(len(m.reels), m.rows)
	for col, r := range m.reels {
		syms, err := r.ActiveSymbols()
		if err != nil {
			return buf.Grid{}, errs.Wrap(err, "active grid unavailable")
		}
		for row, s := range syms {
			g.Set(col, row, s.Cell())
		}
	}
	return g, nil
}

// Rearm 計分與慶祝結束後把所有轉輪放回 Idle；轉動週期中回傳 ErrNotSettled。
func (m *Manager) Rearm() error {
	if m.Spinning() {
		return ErrNotSettled
	}
	for _, r := range m.reels {
		r.Rearm()
	}
	return nil
}

// Celebrate 播放盤面某一格的動畫直到完成
func (m *Manager) Celebrate(ctx context.Context, pos buf.Pos) error {
	if pos.Reel < 0 || pos.Reel >= len(m.reels) {
		return errs.Invariantf("celebrate reel %d out of range", pos.Reel)
	}
	s, err := m.reels[pos.Reel].SymbolAt(pos.Row)
	if err != nil {
		return err
	}
	return s.Play(ctx)
}

// Close 歸還所有轉輪的實例。轉動中呼叫回傳 ErrNotSettled。
func (m *Manager) Close() error {
	if m.Spinning() {
		return ErrNotSettled
	}
	for _, r := range m.reels {
		if r != nil {
			r.Close()
		}
	}
	return nil
}

// ** 以下內部方法 **

// loop 每個 frame 推進所有轉輪，全部停妥後結束
func (m *Manager) loop(done chan struct{}) {
	defer close(done)
	for {
		<-m.clk.After(m.frame)
		moving := false
		for _, r := range m.reels {
			if r.Advance(m.frame) {
				moving = true
			}
		}
		if !moving && m.allStopped() {
			return
		}
	}
}

func (m *Manager) allStopped() bool {
	for _, r := range m.reels {
		if r.State() != Stopped {
			return false
		}
	}
	return true
}
