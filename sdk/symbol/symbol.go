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

package symbol

import (
	"context"
	"sync"

	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/sdk/present"
)

// Definition 圖標的領域資料，載入後不可變
type Definition struct {
	ID    int
	Name  string
	Value int
}

// Symbol 是放在轉輪上的一個圖標實例。
//
// 領域資料（Definition 與盤面座標）與表現把手（Animation）分開持有；
// 計分只會讀到 Cell()，動畫只在慶祝時經由 Play 觸發。
// 同一時間只會有一個轉輪擁有某個實例。
type Symbol struct {
	serial uint64
	def    Definition
	anim   present.Animation

	mu  sync.Mutex
	pos buf.Pos
}

func New(serial uint64, def Definition, anim present.Animation) *Symbol {
	return &Symbol{serial: serial, def: def, anim: anim}
}

func (s *Symbol) Serial() uint64  { return s.serial }
func (s *Symbol) Def() Definition { return s.def }
func (s *Symbol) ID() int         { return s.def.ID }

// Cell 回傳計分用的 (id, value)
func (s *Symbol) Cell() buf.Cell {
	return buf.Cell{ID: s.def.ID, Value: s.def.Value}
}

func (s *Symbol) Pos() buf.Pos {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Place 更新邏輯座標與畫面位置
func (s *Symbol) Place(pos buf.Pos, x, y float64, visible bool) {
	s.mu.Lock()
	s.pos = pos
	s.mu.Unlock()
	if s.anim != nil {
		s.anim.MoveTo(x, y)
		s.anim.SetVisible(visible)
	}
}

// Play 播放動畫直到完成。
//
// ctx 結束時停止動畫並回傳 Transient 錯誤，呼叫端應記錄後忽略。
func (s *Symbol) Play(ctx context.Context) error {
	if s.anim == nil {
		return nil
	}
	done := s.anim.Play()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.anim.Stop()
		e := errs.Transientf("animation %s did not complete", s.def.Name)
		e.Cause = ctx.Err()
		return e
	}
}

// Park 回收前呼叫：停止動畫並隱藏
func (s *Symbol) Park() {
	if s.anim == nil {
		return
	}
	s.anim.Stop()
	s.anim.SetVisible(false)
}

// Detach 從場景移除，之後不可再使用
func (s *Symbol) Detach() {
	if s.anim != nil {
		s.anim.Detach()
	}
}
