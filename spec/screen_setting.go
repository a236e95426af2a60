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

package spec

import "github.com/zintix-labs/reelslot/errs"

// ScreenSetting 盤面與轉輪幾何。
//
// Reels x Rows 是可見盤面；Buffer 是每輪在可見視窗上方額外持有的圖標數，
// 轉動時由上方補入，因此視窗內永遠不會出現空位。
type ScreenSetting struct {
	Reels        int     `yaml:"reels"          json:"reels"`
	Rows         int     `yaml:"rows"           json:"rows"`
	Buffer       int     `yaml:"buffer"         json:"buffer"`
	ReelWidth    float64 `yaml:"reel_width"     json:"reel_width"`
	SymbolWidth  float64 `yaml:"symbol_width"   json:"symbol_width"`
	SymbolHeight float64 `yaml:"symbol_height"  json:"symbol_height"`
	OriginX      float64 `yaml:"origin_x"       json:"origin_x"`
	OriginY      float64 `yaml:"origin_y"       json:"origin_y"`
	ScreenSize   int     `yaml:"-"              json:"-"`
	initFlag     bool
}

func (ss *ScreenSetting) Init() error {
	// 檢查初始化旗標
	if ss.initFlag {
		return nil
	}
	if ss.Reels <= 0 || ss.Rows <= 0 {
		return errs.Configf("invalid screen dimensions: reels=%d rows=%d", ss.Reels, ss.Rows)
	}
	if ss.Buffer == 0 {
		ss.Buffer = 1
	}
	if ss.Buffer < 0 {
		return errs.Configf("invalid buffer: %d", ss.Buffer)
	}
	if ss.SymbolHeight <= 0 || ss.SymbolWidth <= 0 {
		return errs.Configf("invalid symbol size: %vx%v", ss.SymbolWidth, ss.SymbolHeight)
	}
	if ss.ReelWidth == 0 {
		ss.ReelWidth = ss.SymbolWidth
	}
	if ss.ReelWidth < ss.SymbolWidth {
		return errs.Configf("reel_width %v narrower than symbol_width %v", ss.ReelWidth, ss.SymbolWidth)
	}
	ss.ScreenSize = ss.Reels * ss.Rows
	ss.initFlag = true
	return nil
}

// Viewport 回傳可見區域高度與寬度（相對於原點）
func (ss *ScreenSetting) Viewport() (w, h float64) {
	return float64(ss.Reels) * ss.ReelWidth, float64(ss.Rows) * ss.SymbolHeight
}
