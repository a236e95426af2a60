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

package core

import (
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	for i := 0; i < 32; i++ {
		if c1.IntN(9) != c2.IntN(9) {
			t.Fatalf("IntN mismatch at %d", i)
		}
	}
}

func TestCoreIntNBounds(t *testing.T) {
	c := New(Default().New(3))
	if got := c.IntN(0); got != -1 {
		t.Fatalf("expected -1 for n=0, got %d", got)
	}
	seen := make([]bool, 9)
	for i := 0; i < 2000; i++ {
		v := c.IntN(9)
		if v < 0 || v >= 9 {
			t.Fatalf("IntN out of range: %d", v)
		}
		seen[v] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("value %d never drawn in 2000 draws", i)
		}
	}
}

func TestCorePick(t *testing.T) {
	c := New(Default().New(9))
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}
	src := []int{4, 5, 6}
	for i := 0; i < 50; i++ {
		v := c.Pick(src)
		if v < 4 || v > 6 {
			t.Fatalf("pick returned %d outside source", v)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := New(Default().New(42))
	_ = c.IntN(100)
	state, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := []int{c.IntN(100), c.IntN(100), c.IntN(100)}

	other := New(Default().New(1))
	if err := other.Restore(state); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for i, w := range want {
		if got := other.IntN(100); got != w {
			t.Fatalf("draw %d after restore: want %d got %d", i, w, got)
		}
	}
}
