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
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/spec"
)

// CellMask 以位元表示盤面格子集合，位元索引為 buf.Pos.Index(rows)
type CellMask []uint64

func newCellMask(size int) CellMask { return make(CellMask, (size+63)/64) }

func (m CellMask) set(i int) { m[i>>6] |= 1 << (uint(i) & 63) }

func (m CellMask) clear() {
	for i := range m {
		m[i] = 0
	}
}

// SubsetOf 回傳 m 是否完全包含於 o
func (m CellMask) SubsetOf(o CellMask) bool {
	for i, w := range m {
		if w&^o[i] != 0 {
			return false
		}
	}
	return true
}

// Pattern 預處理後的倍數樣式
type Pattern struct {
	Name       string
	Cells      []buf.Pos
	Multiplier int
	mask       CellMask
}

// CompilePatterns 把設定檔中的 [row, col] 轉成盤面遮罩；任何越界都是設定錯誤。
func CompilePatterns(ps []spec.MultiplierPattern, reels, rows int) ([]Pattern, error) {
	if reels <= 0 || rows <= 0 {
		return nil, errs.Configf("empty grid: reels=%d rows=%d", reels, rows)
	}
	out := make([]Pattern, 0, len(ps))
	for i, p := range ps {
		if len(p.Cells) == 0 {
			return nil, errs.Configf("pattern[%d] %s has no cells", i, p.Name)
		}
		if p.Multiplier <= 0 {
			return nil, errs.Configf("pattern[%d] %s has non-positive multiplier %d", i, p.Name, p.Multiplier)
		}
		cp := Pattern{Name: p.Name, Multiplier: p.Multiplier, mask: newCellMask(reels * rows)}
		for _, c := range p.Cells {
			row, col := c[0], c[1]
			if row < 0 || row >= rows || col < 0 || col >= reels {
				return nil, errs.Configf("pattern[%d] %s cell [%d,%d] outside %dx%d grid", i, p.Name, row, col, reels, rows)
			}
			pos := buf.Pos{Reel: col, Row: row}
			cp.Cells = append(cp.Cells, pos)
			cp.mask.set(pos.Index(rows))
		}
		out = append(out, cp)
	}
	return out, nil
}

// Matcher 負責在停妥的盤面上找出中獎群組並套用倍數。
//
// 演算法：
//  1. 依第 0 輪由上而下取圖標 id，已處理過的 id 直接略過
//  2. 該 id 必須在每一輪至少出現一次，否則不中獎
//  3. 收集盤面上所有該 id 的格子成為群組，基礎分 = 圖標分值
//  4. 依樣式表順序，樣式格子全部落在群組內就把分數乘上倍數（連乘）
//
// Matcher 持有熱路徑暫存，不可併發使用；每個 goroutine 各自建立。
type Matcher struct {
	Reels    int
	Rows     int
	patterns []Pattern

	seen []int   // 已處理的 id
	mask CellMask // 當前群組遮罩
}

func NewMatcher(reels, rows int, patterns []Pattern) *Matcher {
	return &Matcher{
		Reels:    reels,
		Rows:     rows,
		patterns: patterns,
		seen:     make([]int, 0, rows),
		mask:     newCellMask(reels * rows),
	}
}

// Match 回傳中獎群組與總分。盤面尺寸不符屬於流程誤用。
func (m *Matcher) Match(g buf.Grid) ([]buf.WinGroup, int64, error) {
	if g.Reels != m.Reels || g.Rows != m.Rows || len(g.Cells) != m.Reels*m.Rows {
		return nil, 0, errs.Invariantf("grid %dx%d does not match evaluator %dx%d", g.Reels, g.Rows, m.Reels, m.Rows)
	}
	var groups []buf.WinGroup
	var delta int64
	m.seen = m.seen[:0]
	for row := 0; row < m.Rows; row++ {
		head := g.At(0, row)
		if m.resolved(head.ID) {
			continue
		}
		m.seen = append(m.seen, head.ID) // 紀錄處理過了
		if !inEveryReel(g, head.ID) {
			continue
		}
		wg := m.collect(g, head)
		m.applyPatterns(&wg)
		delta += wg.Score
		groups = append(groups, wg)
	}
	return groups, delta, nil
}

// FindGroups 不套用倍數樣式，只找出中獎群組（純函式）
func FindGroups(g buf.Grid) []buf.WinGroup {
	if g.Reels == 0 || g.Rows == 0 {
		return nil
	}
	groups, _, _ := NewMatcher(g.Reels, g.Rows, nil).Match(g)
	return groups
}

// ApplyPatterns 對單一群組套用樣式表（連乘），回傳群組分數
func ApplyPatterns(wg *buf.WinGroup, patterns []Pattern, reels, rows int) int64 {
	m := NewMatcher(reels, rows, patterns)
	m.mask.clear()
	for _, p := range wg.Cells {
		m.mask.set(p.Index(rows))
	}
	m.applyPatterns(wg)
	return wg.Score
}

// ** 以下內部方法 **

func (m *Matcher) resolved(id int) bool {
	for _, s := range m.seen {
		if s == id {
			return true
		}
	}
	return false
}

func inEveryReel(g buf.Grid, id int) bool {
	for reel := 0; reel < g.Reels; reel++ {
		found := false
		for _, c := range g.Reel(reel) {
			if c.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// collect 收集所有該 id 的格子並建立群組遮罩
func (m *Matcher) collect(g buf.Grid, head buf.Cell) buf.WinGroup {
	m.mask.clear()
	wg := buf.WinGroup{SymbolID: head.ID, BaseValue: head.Value, Multiply: 1}
	for reel := 0; reel < g.Reels; reel++ {
		for row, c := range g.Reel(reel) {
			if c.ID != head.ID {
				continue
			}
			pos := buf.Pos{Reel: reel, Row: row}
			wg.Cells = append(wg.Cells, pos)
			m.mask.set(pos.Index(m.Rows))
		}
	}
	return wg
}

// applyPatterns 依 m.mask 判定樣式，結果寫回 wg
func (m *Matcher) applyPatterns(wg *buf.WinGroup) {
	wg.Multiply = 1
	wg.Patterns = wg.Patterns[:0]
	for i := range m.patterns {
		p := &m.patterns[i]
		if p.mask.SubsetOf(m.mask) {
			wg.Multiply *= int64(p.Multiplier)
			wg.Patterns = append(wg.Patterns, i)
		}
	}
	wg.Score = int64(wg.BaseValue) * wg.Multiply
}
