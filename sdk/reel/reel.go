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
	"github.com/zintix-labs/reelslot/sdk/symbol"
	"github.com/zintix-labs/reelslot/spec"
)

// 位移以千分之一像素的整數計算，停輪對齊不受浮點誤差影響
const unit = 1000

// minBrake 減速時的最低速度比例
const minBrake = 0.25

// Source 是轉輪取得/歸還圖標實例的來源（通常是 catalog.Catalog）。
type Source interface {
	Draw() (*symbol.Symbol, error)
	Release(*symbol.Symbol)
}

// Reel 單一直向轉輪。
//
// strip 由上而下排列：[0, buffer) 在可見視窗上方，[buffer, buffer+rows) 為可見視窗。
// 轉動時整條 strip 往下位移 shift；每滿一格，最下方實例歸還 Source，最上方補入新抽的實例。
type Reel struct {
	mu sync.Mutex

	col       int
	rows      int
	buffer    int
	height    int64 // 單格高度（milli-px）
	x, y0     float64
	speed     float64 // px/s
	stopSteps int

	src Source
	log *slog.Logger

	strip     []*symbol.Symbol
	shift     int64
	state     State
	remaining int64 // 停輪剩餘距離
	brake     int64 // 停輪總距離
	settled   chan struct{}
}

// New 建立第 col 輪並填滿 strip；初始狀態為 Idle。
func New(col int, gs *spec.GameSetting, src Source, log *slog.Logger) (*Reel, error) {
	if src == nil {
		return nil, errs.NewConfig("reel requires a symbol source")
	}
	scr := &gs.ScreenSetting
	r := &Reel{
		col:       col,
		rows:      scr.Rows,
		buffer:    scr.Buffer,
		height:    int64(scr.SymbolHeight * unit),
		x:         scr.OriginX + float64(col)*scr.ReelWidth + (scr.ReelWidth-scr.SymbolWidth)/2,
		y0:        scr.OriginY,
		speed:     gs.TimingSetting.SpinSpeed,
		stopSteps: gs.TimingSetting.StopSteps,
		src:       src,
		log:       log,
		strip:     make([]*symbol.Symbol, scr.Buffer+scr.Rows),
		state:     Idle,
	}
	if r.height <= 0 {
		return nil, errs.Configf("reel %d has non-positive symbol height", col)
	}
	for i := range r.strip {
		s, err := src.Draw()
		if err != nil {
			r.Close()
			return nil, errs.WrapWithExtra(err, "populate reel failed", "")
		}
		r.strip[i] = s
	}
	r.layout()
	return r, nil
}

func (r *Reel) Col() int { return r.col }

func (r *Reel) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// StartSpin 開始轉動；已在轉動或減速中時不做事並回傳 false。
// 仍停在 Stopped 的轉輪先重新上膛回 Idle 再起轉。
func (r *Reel) StartSpin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Moving() {
		return false
	}
	if r.state == Stopped {
		r.rearm()
	}
	r.state = Spinning
	r.remaining, r.brake = 0, 0
	r.settled = make(chan struct{})
	return true
}

// Stop 進入減速，回傳停妥時關閉的 channel。
//
// 停輪距離 = 到下一個對齊位置的距離 + stopSteps 整格，最後 shift 必定歸零。
// 非轉動狀態呼叫時回傳已關閉的 channel。
func (r *Reel) Stop() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case Spinning:
		rem := (r.height-r.shift)%r.height + int64(r.stopSteps)*r.height
		if rem == 0 {
			r.settle()
			return r.settled
		}
		r.remaining, r.brake = rem, rem
		r.state = Stopping
		return r.settled
	case Stopping:
		return r.settled
	default:
		done := make(chan struct{})
		close(done)
		return done
	}
}

// StopSpin 是 Stop 的等待版本；ctx 只影響等待端，轉輪仍會自行停妥。
func (r *Reel) StopSpin(ctx context.Context) error {
	select {
	case <-r.Stop():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Advance 推進 dt 的位移，回傳是否仍在移動。由 Manager 的幀迴圈呼叫。
func (r *Reel) Advance(dt time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.state.Moving() {
		return false
	}
	step := int64(r.speed * dt.Seconds() * unit)
	if r.state == Stopping {
		f := float64(r.remaining) / float64(r.brake)
		if f < minBrake {
			f = minBrake
		}
		step = int64(float64(step) * f)
		if step > r.remaining {
			step = r.remaining
		}
	}
	if step < 1 {
		step = 1
	}
	if r.state == Stopping {
		r.remaining -= step
	}
	r.shift += step
	for r.shift >= r.height {
		r.shift -= r.height
		r.rotate()
	}
	if r.state == Stopping && r.remaining <= 0 {
		r.settle()
		return false
	}
	r.layout()
	return true
}

// ActiveSymbols 回傳可見視窗（不含緩衝區）。只有 Stopped 狀態合法。
func (r *Reel) ActiveSymbols() ([]*symbol.Symbol, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Stopped {
		return nil, errs.Invariantf("reel %d active symbols requested while %s", r.col, r.state)
	}
	out := make([]*symbol.Symbol, r.rows)
	copy(out, r.strip[r.buffer:])
	return out, nil
}

// Rearm Stopped -> Idle：這一局的盤面已用完，等待下一次 StartSpin。
// 非 Stopped 時不做事並回傳 false。
func (r *Reel) Rearm() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Stopped {
		return false
	}
	r.rearm()
	return true
}

func (r *Reel) rearm() {
	r.state = Idle
	r.settled = nil
}

// SymbolAt 回傳可見視窗第 row 格的實例
func (r *Reel) SymbolAt(row int) (*symbol.Symbol, error) {
	if row < 0 || row >= r.rows {
		return nil, errs.Invariantf("reel %d row %d out of range", r.col, row)
	}
	syms, err := r.ActiveSymbols()
	if err != nil {
		return nil, err
	}
	return syms[row], nil
}

// Close 歸還所有實例
func (r *Reel) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.strip {
		if s != nil {
			r.src.Release(s)
			r.strip[i] = nil
		}
	}
}

// ** 以下內部方法 **

// rotate 最下方實例移出並歸還，上方補入新實例
func (r *Reel) rotate() {
	last := len(r.strip) - 1
	out := r.strip[last]
	copy(r.strip[1:], r.strip[:last])
	in, err := r.src.Draw()
	if err != nil {
		// 抽不到新實例時沿用移出的實例，畫面不留空位
		errs.Swallow(r.log, err, slog.Int("reel", r.col))
		r.strip[0] = out
		return
	}
	r.strip[0] = in
	r.src.Release(out)
}

func (r *Reel) settle() {
	r.shift = 0
	r.remaining, r.brake = 0, 0
	r.state = Stopped
	r.layout()
	close(r.settled)
}

// layout 依 shift 更新每個實例的位置；完全落在視窗外的實例隱藏
func (r *Reel) layout() {
	h := float64(r.height) / unit
	top, bottom := r.y0-h, r.y0+float64(r.rows)*h
	for i, s := range r.strip {
		if s == nil {
			continue
		}
		y := r.y0 + float64(int64(i-r.buffer)*r.height+r.shift)/unit
		visible := y > top && y < bottom
		s.Place(buf.Pos{Reel: r.col, Row: i - r.buffer}, r.x, y, visible)
	}
}
