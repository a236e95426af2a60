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

package present

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/clock"
)

// Headless 是沒有畫面的 Stage：動畫播放固定時間後完成，位置只記錄不繪製。
// 伺服器與模擬器使用它。
//
// Fail / Stall 可針對特定名稱注入表現層故障：
// Fail 的名稱可解析但建立把手失敗（Transient）；Stall 的名稱 Play 永不完成。
type Headless struct {
	Clock    clock.Clock
	PlayFor  time.Duration
	Known    map[string]bool // nil 代表所有名稱都可解析
	attached atomic.Int64

	mu    sync.RWMutex
	fail  map[string]bool
	stall map[string]bool
}

func NewHeadless(clk clock.Clock, playFor time.Duration, names ...string) *Headless {
	h := &Headless{Clock: clk, PlayFor: playFor}
	if len(names) > 0 {
		h.Known = make(map[string]bool, len(names))
		for _, n := range names {
			h.Known[n] = true
		}
	}
	return h
}

func (h *Headless) Resolve(name string) error {
	if h.Known != nil && !h.Known[name] {
		return errs.Configf("animation %q not resolvable", name)
	}
	return nil
}

// Fail 讓之後對這些名稱的 NewAnimation 回傳 Transient 錯誤
func (h *Headless) Fail(names ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fail = addNames(h.fail, names)
}

// Stall 讓這些名稱的動畫 Play 永不完成，只能由呼叫端逾時放棄
func (h *Headless) Stall(names ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stall = addNames(h.stall, names)
}

func addNames(set map[string]bool, names []string) map[string]bool {
	if set == nil {
		set = make(map[string]bool, len(names))
	}
	for _, n := range names {
		set[n] = true
	}
	return set
}

func (h *Headless) failing(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fail[name]
}

func (h *Headless) stalled(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stall[name]
}

func (h *Headless) NewAnimation(name string) (Animation, error) {
	if err := h.Resolve(name); err != nil {
		return nil, err
	}
	if h.failing(name) {
		return nil, errs.Transientf("animation %q failed to attach", name)
	}
	h.attached.Add(1)
	return &headlessAnim{stage: h, name: name}, nil
}

// Attached 回傳目前掛在場景上的動畫數
func (h *Headless) Attached() int64 { return h.attached.Load() }

type headlessAnim struct {
	stage    *Headless
	name     string
	mu       sync.Mutex
	x, y     float64
	visible  bool
	detached bool
}

func (a *headlessAnim) Play() <-chan struct{} {
	done := make(chan struct{})
	if a.stage.stalled(a.name) {
		return done
	}
	if a.stage.Clock == nil || a.stage.PlayFor <= 0 {
		close(done)
		return done
	}
	fire := a.stage.Clock.After(a.stage.PlayFor)
	go func() {
		<-fire
		close(done)
	}()
	return done
}

func (a *headlessAnim) Stop() {}

func (a *headlessAnim) MoveTo(x, y float64) {
	a.mu.Lock()
	a.x, a.y = x, y
	a.mu.Unlock()
}

func (a *headlessAnim) SetVisible(v bool) {
	a.mu.Lock()
	a.visible = v
	a.mu.Unlock()
}

func (a *headlessAnim) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detached {
		return
	}
	a.detached = true
	a.stage.attached.Add(-1)
}

// LogAudio 把音效事件寫進 log，方便在無聲環境觀察節奏。
type LogAudio struct {
	Log *slog.Logger
}

func (a LogAudio) PlayCue(name string) error {
	if a.Log != nil {
		a.Log.Debug("cue play", slog.String("cue", name))
	}
	return nil
}

func (a LogAudio) StopCue(name string) error {
	if a.Log != nil {
		a.Log.Debug("cue stop", slog.String("cue", name))
	}
	return nil
}

// NopAudio 什麼都不做
type NopAudio struct{}

func (NopAudio) PlayCue(string) error { return nil }
func (NopAudio) StopCue(string) error { return nil }
