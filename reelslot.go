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

// Package reelslot 是三輪拉霸核心的組裝入口。
//
// 它把下列元件接在一起並交出 Session：
//  1. catalog.Catalog：圖標定義與實例池（經由注入的 PRNG 抽取，可設定落點權重）
//  2. reel.Manager：轉輪狀態機與依序停輪
//  3. calc.Evaluator：中獎判定、倍數連乘與累計分數
//
// 表現層（繪製、音效）與計時都以介面注入；未提供時使用無畫面的實作，
// 因此同一套核心可以直接跑在 HTTP 服務、模擬器與測試中。
package reelslot

import (
	"crypto/rand"
	"io/fs"
	"log/slog"
	"math"
	"math/big"
	"time"

	"github.com/zintix-labs/reelslot/catalog"
	"github.com/zintix-labs/reelslot/demo/demo_configs"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/calc"
	"github.com/zintix-labs/reelslot/sdk/clock"
	"github.com/zintix-labs/reelslot/sdk/core"
	"github.com/zintix-labs/reelslot/sdk/present"
	"github.com/zintix-labs/reelslot/sdk/reel"
	"github.com/zintix-labs/reelslot/spec"
)

// DefaultCelebrate 無畫面動畫的播放時間
const DefaultCelebrate = 800 * time.Millisecond

// Deps 注入的協作者；nil 欄位使用預設值。
type Deps struct {
	Stage   present.Stage
	Audio   present.Audio
	Clock   clock.Clock
	Logger  *slog.Logger
	OnState func(State) // 狀態切換通知（例如 UI 停用/啟用按鈕）
}

func (d *Deps) fill() {
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Stage == nil {
		d.Stage = present.NewHeadless(d.Clock, DefaultCelebrate)
	}
	if d.Audio == nil {
		d.Audio = present.LogAudio{Log: d.Logger}
	}
}

// LoadSetting 從 fs.FS 讀取設定檔（.yaml/.yml/.json）
func LoadSetting(fsys fs.FS, name string) (*spec.GameSetting, error) {
	return spec.GetGameSettingFromFS(fsys, name)
}

// ClassicSetting 回傳內建的三輪經典盤設定
func ClassicSetting() (*spec.GameSetting, error) {
	return LoadSetting(demo_configs.FS, demo_configs.ClassicName)
}

// New 以指定 seed 組裝 Session。所有設定錯誤在此回傳，Session 不會被建立。
func New(gs *spec.GameSetting, cf core.PRNGFactory, seed int64, deps Deps) (*Session, error) {
	if gs == nil {
		return nil, errs.NewConfig("game setting required")
	}
	if cf == nil {
		return nil, errs.NewConfig("prng factory required")
	}
	if err := gs.Init(); err != nil {
		return nil, err
	}
	deps.fill()
	log := deps.Logger.With(slog.String("game", gs.GameName))

	rng := core.New(cf.New(seed))
	cat, err := catalog.New(&gs.SymbolSetting, deps.Stage, rng, log)
	if err != nil {
		return nil, err
	}
	reels, err := reel.NewManager(gs, cat, reel.Options{Clock: deps.Clock, Audio: deps.Audio, Logger: log})
	if err != nil {
		cat.Close()
		return nil, err
	}
	eval, err := calc.NewEvaluator(gs, calc.Options{Audio: deps.Audio, Celebrator: reels, Logger: log})
	if err != nil {
		_ = reels.Close()
		cat.Close()
		return nil, err
	}
	return &Session{
		gs:      gs,
		seed:    seed,
		core:    rng,
		cat:     cat,
		reels:   reels,
		eval:    eval,
		clk:     deps.Clock,
		spinFor: gs.TimingSetting.SpinDuration,
		log:     log,
		onState: deps.OnState,
		state:   Idle,
	}, nil
}

// NewRandom 以 crypto/rand 產生 seed 組裝 Session；seed 可由 Session.Seed 取回。
func NewRandom(gs *spec.GameSetting, cf core.PRNGFactory, deps Deps) (*Session, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, err
	}
	return New(gs, cf, seed, deps)
}

func cryptoSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return seed.Int64(), nil
}
