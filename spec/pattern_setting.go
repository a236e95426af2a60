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

import (
	"github.com/zintix-labs/reelslot/errs"
)

// MultiplierPattern 倍數樣式：Cells 全部落在中獎群組內時，群組分數乘上 Multiplier。
//
// Cells 每個元素為 [row, col]，col 即轉輪編號。同名樣式可以有多個，各自獨立判定。
type MultiplierPattern struct {
	Name       string   `yaml:"name"        json:"name"`
	Cells      [][2]int `yaml:"cells"       json:"cells"`
	Multiplier int      `yaml:"multiplier"  json:"multiplier"`
}

// PatternSetting 描述倍數樣式表，順序即套用順序。
type PatternSetting struct {
	Patterns []MultiplierPattern `yaml:"patterns"  json:"patterns"`
	initFlag bool
}

// Init 只做與盤面無關的檢查；範圍檢查需要 ScreenSetting，放在 Valid。
func (ps *PatternSetting) Init() error {
	if ps.initFlag {
		return nil
	}
	for i, p := range ps.Patterns {
		if len(p.Cells) == 0 {
			return errs.Configf("pattern[%d] %s has no cells", i, p.Name)
		}
		if p.Multiplier <= 0 {
			return errs.Configf("pattern[%d] %s has non-positive multiplier %d", i, p.Name, p.Multiplier)
		}
	}
	ps.initFlag = true
	return nil
}

// Valid 檢查所有樣式的格子都落在 reels x rows 之內。
func (ps *PatternSetting) Valid(reels, rows int) error {
	if reels <= 0 || rows <= 0 {
		return errs.Configf("empty grid: reels=%d rows=%d", reels, rows)
	}
	for i, p := range ps.Patterns {
		for _, c := range p.Cells {
			row, col := c[0], c[1]
			if row < 0 || row >= rows || col < 0 || col >= reels {
				return errs.Configf("pattern[%d] %s cell [%d,%d] outside %dx%d grid", i, p.Name, row, col, reels, rows)
			}
		}
	}
	return nil
}
