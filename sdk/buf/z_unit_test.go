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

package buf

import (
	"testing"
)

func TestGridOfLayout(t *testing.T) {
	g, err := GridOf([][]Cell{
		{{ID: 1, Value: 10}, {ID: 2, Value: 20}},
		{{ID: 3, Value: 30}, {ID: 4, Value: 40}},
		{{ID: 5, Value: 50}, {ID: 6, Value: 60}},
	})
	if err != nil {
		t.Fatalf("GridOf: %v", err)
	}
	if g.Reels != 3 || g.Rows != 2 {
		t.Fatalf("unexpected dims %dx%d", g.Reels, g.Rows)
	}
	if got := g.At(1, 1).ID; got != 4 {
		t.Fatalf("At(1,1) want 4 got %d", got)
	}
	if got := (Pos{Reel: 2, Row: 1}).Index(g.Rows); g.Cells[got].ID != 6 {
		t.Fatalf("Pos.Index mismatch: %d", got)
	}
	if s := g.String(); s != "1,3,5/2,4,6" {
		t.Fatalf("unexpected String: %s", s)
	}
}

func TestGridOfRejectsRagged(t *testing.T) {
	if _, err := GridOf(nil); err == nil {
		t.Fatalf("expected error for empty grid")
	}
	if _, err := GridOf([][]Cell{{{ID: 1}}, {{ID: 1}, {ID: 2}}}); err == nil {
		t.Fatalf("expected error for ragged grid")
	}
}

func TestGridCloneIsolated(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(0, 0, Cell{ID: 7, Value: 9})
	c := g.Clone()
	g.Set(0, 0, Cell{ID: 1, Value: 1})
	if c.At(0, 0).ID != 7 {
		t.Fatalf("clone shares storage with original")
	}
}

func TestOutcomeCounts(t *testing.T) {
	o := Outcome{Groups: []WinGroup{
		{SymbolID: 1, Cells: []Pos{{0, 0}, {1, 0}, {2, 0}}},
		{SymbolID: 2, Cells: []Pos{{0, 1}, {1, 2}, {2, 1}, {2, 2}}},
	}}
	if !o.IsWin() || o.CellCount() != 7 {
		t.Fatalf("unexpected counts: win=%v cells=%d", o.IsWin(), o.CellCount())
	}
}
