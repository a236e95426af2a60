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
	"errors"
	"testing"
	"time"

	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/clock"
)

func TestHeadlessResolve(t *testing.T) {
	h := NewHeadless(nil, 0, "nine", "ten")
	if err := h.Resolve("nine"); err != nil {
		t.Fatalf("nine should resolve: %v", err)
	}
	err := h.Resolve("jack")
	if !errs.IsKind(err, errs.Config) {
		t.Fatalf("expected config error, got %v", err)
	}
	if _, err := h.NewAnimation("jack"); err == nil {
		t.Fatalf("expected NewAnimation to fail for unknown name")
	}
}

func TestHeadlessPlayCompletes(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	h := NewHeadless(m, 500*time.Millisecond)
	a, err := h.NewAnimation("nine")
	if err != nil {
		t.Fatalf("new animation: %v", err)
	}
	done := a.Play()
	m.BlockUntil(1)
	m.Advance(500 * time.Millisecond)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("animation never completed")
	}
	if h.Attached() != 1 {
		t.Fatalf("expected 1 attached, got %d", h.Attached())
	}
	a.Detach()
	a.Detach()
	if h.Attached() != 0 {
		t.Fatalf("expected 0 attached after detach, got %d", h.Attached())
	}
}

func TestHeadlessFailAndStall(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	h := NewHeadless(m, 100*time.Millisecond)
	h.Fail("ten")
	h.Stall("nine")

	// 可解析但建立失敗
	if err := h.Resolve("ten"); err != nil {
		t.Fatalf("ten should still resolve: %v", err)
	}
	if _, err := h.NewAnimation("ten"); !errs.IsKind(err, errs.Transient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if h.Attached() != 0 {
		t.Fatalf("failed attach should not count, attached=%d", h.Attached())
	}

	stuck, err := h.NewAnimation("nine")
	if err != nil {
		t.Fatalf("new animation: %v", err)
	}
	ok, err := h.NewAnimation("jack")
	if err != nil {
		t.Fatalf("new animation: %v", err)
	}
	stuckDone := stuck.Play()
	okDone := ok.Play()
	m.BlockUntil(1)
	m.Advance(time.Second)
	select {
	case <-okDone:
	case <-time.After(time.Second):
		t.Fatalf("jack never completed")
	}
	select {
	case <-stuckDone:
		t.Fatalf("stalled animation completed")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestCueLog(t *testing.T) {
	c := &CueLog{Fail: map[string]error{"win": errors.New("device busy")}}
	_ = c.PlayCue("spin")
	if err := c.PlayCue("win"); err == nil {
		t.Fatalf("expected configured failure")
	}
	_ = c.StopCue("spin")
	if c.Plays("spin") != 1 || c.Plays("win") != 1 {
		t.Fatalf("unexpected plays: %+v", c.Events())
	}
	if len(c.Events()) != 3 {
		t.Fatalf("expected 3 events, got %d", len(c.Events()))
	}
}
