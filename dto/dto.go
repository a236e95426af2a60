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

package dto

import (
	"github.com/zintix-labs/reelslot"
	"github.com/zintix-labs/reelslot/corefmt"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
)

// SessionDTO session 狀態
type SessionDTO struct {
	ID     string `json:"id"`
	Game   string `json:"game"`
	State  string `json:"state"`
	Score  int64  `json:"score"`
	Rounds int64  `json:"rounds"`
	Seed   int64  `json:"seed"`
}

// OutcomeDTO 一局的對外輸出
type OutcomeDTO struct {
	Round     string     `json:"round"`
	Screen    [][]int    `json:"screen"`              // [row][reel] 圖標 id
	Groups    []GroupDTO `json:"groups,omitempty"`
	Delta     int64      `json:"delta"`
	Total     int64      `json:"total"`
	Saturated bool       `json:"saturated,omitempty"` // 超過上限歸零
}

// GroupDTO 中獎群組；Cells 以 [row, reel] 表示，與設定檔中的樣式格式一致
type GroupDTO struct {
	Symbol   int      `json:"symbol"`
	Name     string   `json:"name"`
	Value    int      `json:"value"`
	Cells    [][2]int `json:"cells"`
	Patterns []int    `json:"patterns,omitempty"`
	Multiply int64    `json:"multiply"`
	Score    int64    `json:"score"`
}

// RNGStateDTO RNG 快照（base64url），用於存檔與續玩
type RNGStateDTO struct {
	StateB64U string `json:"state_b64u"`
}

func NewRNGStateDTO(state []byte) RNGStateDTO {
	return RNGStateDTO{StateB64U: corefmt.EncodeBase64URL(state)}
}

func NewSessionDTO(id string, s *reelslot.Session) SessionDTO {
	return SessionDTO{
		ID:     id,
		Game:   s.GameName(),
		State:  s.State().String(),
		Score:  s.Score(),
		Rounds: s.Rounds(),
		Seed:   s.Seed(),
	}
}

func NewOutcomeDTO(out *buf.Outcome) (OutcomeDTO, error) {
	if out == nil {
		return OutcomeDTO{}, errs.NewInvariant("outcome is nil")
	}
	g := out.Grid
	dto := OutcomeDTO{
		Round:     out.Round,
		Screen:    make([][]int, g.Rows),
		Delta:     out.Delta,
		Total:     out.Total,
		Saturated: out.Saturated,
	}
	for row := 0; row < g.Rows; row++ {
		dto.Screen[row] = make([]int, g.Reels)
		for reel := 0; reel < g.Reels; reel++ {
			dto.Screen[row][reel] = g.At(reel, row).ID
		}
	}
	if len(out.Groups) > 0 {
		dto.Groups = make([]GroupDTO, len(out.Groups))
		for i, wg := range out.Groups {
			dto.Groups[i] = newGroupDTO(wg)
		}
	}
	return dto, nil
}

func newGroupDTO(wg buf.WinGroup) GroupDTO {
	cells := make([][2]int, len(wg.Cells))
	for i, p := range wg.Cells {
		cells[i] = [2]int{p.Row, p.Reel}
	}
	return GroupDTO{
		Symbol:   wg.SymbolID,
		Name:     wg.Name,
		Value:    wg.BaseValue,
		Cells:    cells,
		Patterns: wg.Patterns,
		Multiply: wg.Multiply,
		Score:    wg.Score,
	}
}
