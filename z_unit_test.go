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

package reelslot

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/sdk/clock"
	"github.com/zintix-labs/reelslot/sdk/core"
	"github.com/zintix-labs/reelslot/sdk/present"
	"github.com/zintix-labs/reelslot/sdk/reel"
	"github.com/zintix-labs/reelslot/spec"
)

var epoch = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// loneSetting 只有一種圖標：每局九格全中，所有樣式都成立
func loneSetting(t *testing.T) *spec.GameSetting {
	t.Helper()
	gs, err := ClassicSetting()
	require.NoError(t, err)
	gs.GameName = "lone"
	gs.SymbolSetting = spec.SymbolSetting{Symbols: []spec.SymbolDef{{ID: 8, Name: "nine", Value: 9}}}
	require.NoError(t, gs.Init())
	return gs
}

func drive(t *testing.T, clk *clock.Manual, done <-chan struct{}) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		select {
		case <-done:
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatalf("spin never finished")
		}
		clk.Advance(16 * time.Millisecond)
		time.Sleep(100 * time.Microsecond)
	}
}

type spinResult struct {
	out buf.Outcome
	err error
}

func spinAsync(t *testing.T, s *Session, clk *clock.Manual) spinResult {
	t.Helper()
	done := make(chan struct{})
	var res spinResult
	go func() {
		defer close(done)
		res.out, res.err = s.Spin(context.Background())
	}()
	drive(t, clk, done)
	return res
}

func newManualSession(t *testing.T, gs *spec.GameSetting, deps Deps) (*Session, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(epoch)
	deps.Clock = clk
	if deps.Stage == nil {
		deps.Stage = present.NewHeadless(clk, 300*time.Millisecond)
	}
	s, err := New(gs, core.Default(), 7, deps)
	require.NoError(t, err)
	return s, clk
}

func TestClassicSettingLoads(t *testing.T) {
	gs, err := ClassicSetting()
	require.NoError(t, err)
	assert.Len(t, gs.SymbolSetting.Symbols, 9)
	assert.Equal(t, 3, gs.ScreenSetting.Reels)
	assert.Equal(t, 3, gs.ScreenSetting.Rows)
	assert.Len(t, gs.PatternSetting.Patterns, 6)
	assert.Equal(t, spec.DefaultScoreCeiling, gs.ScoreCeiling)
}

func TestNewRejectsConfig(t *testing.T) {
	gs, err := ClassicSetting()
	require.NoError(t, err)
	gs.PatternSetting.Patterns[0].Cells = [][2]int{{3, 0}}

	_, err = New(gs, core.Default(), 1, Deps{})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.Config))

	_, err = New(nil, core.Default(), 1, Deps{})
	assert.True(t, errs.IsKind(err, errs.Config))

	gs, _ = ClassicSetting()
	_, err = New(gs, core.Default(), 1, Deps{Stage: present.NewHeadless(nil, 0, "h1")})
	assert.True(t, errs.IsKind(err, errs.Config), "unresolvable animation must stop the session")
}

func TestSessionSpinScoresAndSaturates(t *testing.T) {
	cues := &present.CueLog{}
	var mu sync.Mutex
	var states []State
	s, clk := newManualSession(t, loneSetting(t), Deps{
		Audio: cues,
		OnState: func(st State) {
			mu.Lock()
			states = append(states, st)
			mu.Unlock()
		},
	})
	defer s.Close()

	// 9 x 10^5 x 50
	const full = int64(45_000_000)

	r := spinAsync(t, s, clk)
	require.NoError(t, r.err)
	assert.NotEmpty(t, r.out.Round)
	require.Len(t, r.out.Groups, 1)
	assert.Len(t, r.out.Groups[0].Cells, 9)
	assert.Equal(t, full, r.out.Delta)
	assert.Equal(t, full, r.out.Total)
	assert.Equal(t, full, s.Score())

	r = spinAsync(t, s, clk)
	require.NoError(t, r.err)
	assert.Equal(t, 2*full, r.out.Total)
	assert.False(t, r.out.Saturated)

	// 135,000,000 > 99,999,999
	r = spinAsync(t, s, clk)
	require.NoError(t, r.err)
	assert.True(t, r.out.Saturated)
	assert.Equal(t, int64(0), r.out.Total)
	assert.Equal(t, int64(0), s.Score())

	assert.Equal(t, int64(3), s.Rounds())
	assert.Equal(t, Idle, s.State())
	for col := 0; col < 3; col++ {
		assert.Equal(t, reel.Idle, s.reels.Reel(col).State(), "reel %d rearmed", col)
	}
	assert.Equal(t, 3, cues.Plays("spin"))
	assert.Equal(t, 3, cues.Plays("win"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Spinning, Evaluating, Idle, Spinning, Evaluating, Idle, Spinning, Evaluating, Idle}, states)
}

func TestSessionBusyGuards(t *testing.T) {
	s, clk := newManualSession(t, loneSetting(t), Deps{})
	defer s.Close()

	done := make(chan struct{})
	var first error
	go func() {
		defer close(done)
		_, first = s.Spin(context.Background())
	}()
	require.Eventually(t, func() bool { return s.State() == Spinning }, time.Second, time.Millisecond)

	_, err := s.Spin(context.Background())
	assert.True(t, errors.Is(err, ErrBusy))
	assert.True(t, errs.IsKind(err, errs.Busy))
	assert.True(t, errors.Is(s.Clear(), ErrBusy))
	_, err = s.SnapshotRNG()
	assert.True(t, errors.Is(err, ErrBusy))
	assert.True(t, errors.Is(s.Close(), ErrBusy))

	drive(t, clk, done)
	require.NoError(t, first)
	assert.NotZero(t, s.Score())

	require.NoError(t, s.Clear())
	assert.Zero(t, s.Score())
}

func TestSessionSpinHonoursCancelledContextBeforeStart(t *testing.T) {
	s, _ := newManualSession(t, loneSetting(t), Deps{})
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Spin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Idle, s.State())
	assert.Zero(t, s.Rounds())
}

func TestSessionSpinCompletesAfterCancelMidway(t *testing.T) {
	s, clk := newManualSession(t, loneSetting(t), Deps{})
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var res spinResult
	go func() {
		defer close(done)
		res.out, res.err = s.Spin(ctx)
	}()
	require.Eventually(t, func() bool { return s.State() == Spinning }, time.Second, time.Millisecond)
	cancel()
	drive(t, clk, done)

	require.NoError(t, res.err)
	assert.Equal(t, int64(45_000_000), res.out.Total)
}

func TestSessionClosed(t *testing.T) {
	s, _ := newManualSession(t, loneSetting(t), Deps{})
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Spin(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, s.Clear(), ErrSessionClosed)
}

func TestPaytable(t *testing.T) {
	gs, err := ClassicSetting()
	require.NoError(t, err)
	pt := PaytableOf(gs)

	require.Len(t, pt.Symbols, 9)
	assert.Equal(t, "h2", pt.Symbols[0].Name)
	for i := 1; i < len(pt.Symbols); i++ {
		assert.GreaterOrEqual(t, pt.Symbols[i-1].Value, pt.Symbols[i].Value)
	}

	names := map[string]bool{}
	total := 0
	for _, m := range pt.Multipliers {
		assert.False(t, names[m.Name], "multiplier %s listed twice", m.Name)
		names[m.Name] = true
		total += m.Patterns
	}
	assert.Equal(t, len(gs.PatternSetting.Patterns), total)
}

func TestSnapshotRestoreRNG(t *testing.T) {
	gs, err := ClassicSetting()
	require.NoError(t, err)
	s, _ := newManualSession(t, gs, Deps{})
	defer s.Close()

	snap, err := s.SnapshotRNG()
	require.NoError(t, err)
	first := make([]int, 16)
	for i := range first {
		first[i] = s.core.IntN(1000)
	}
	require.NoError(t, s.RestoreRNG(snap))
	for i := range first {
		assert.Equal(t, first[i], s.core.IntN(1000), "draw %d", i)
	}

	assert.True(t, errs.IsKind(s.RestoreRNG([]byte("junk")), errs.Config))
}

func TestRuntimeLifecycle(t *testing.T) {
	clk := clock.NewManual(epoch)
	rt, err := NewRuntime(loneSetting(t), core.Default(), RuntimeOptions{
		Deps:        Deps{Clock: clk, Stage: present.NewHeadless(clk, 0)},
		MaxSessions: 2,
		Seed:        99,
	})
	require.NoError(t, err)

	id, s, err := rt.Create()
	require.NoError(t, err)
	got, err := rt.Get(id)
	require.NoError(t, err)
	assert.Same(t, s, got)

	done := make(chan struct{})
	var res spinResult
	go func() {
		defer close(done)
		res.out, res.err = rt.Spin(context.Background(), id)
	}()
	drive(t, clk, done)
	require.NoError(t, res.err)
	assert.Equal(t, int64(45_000_000), s.Score())

	_, _, err = rt.Create()
	require.NoError(t, err)
	_, _, err = rt.Create()
	assert.ErrorIs(t, err, ErrRuntimeFull)
	assert.Equal(t, 2, rt.Len())

	require.NoError(t, rt.Delete(id))
	_, err = rt.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, errs.IsKind(err, errs.NotFound))
	assert.ErrorIs(t, rt.Delete(id), ErrSessionNotFound)

	rt.Close()
	rt.Close()
	assert.True(t, rt.Closed())
	assert.Equal(t, "closed", rt.ClosedReason())
	assert.Zero(t, rt.Len())
	_, _, err = rt.Create()
	assert.Error(t, err)
	_, err = rt.Spin(context.Background(), id)
	assert.Error(t, err)
}

func TestRuntimeCloseWithReason(t *testing.T) {
	var b bytes.Buffer
	rt, err := NewRuntime(loneSetting(t), core.Default(), RuntimeOptions{
		Deps: Deps{Logger: slog.New(slog.NewJSONHandler(&b, nil))},
		Seed: 3,
	})
	require.NoError(t, err)
	_, _, err = rt.Create()
	require.NoError(t, err)

	rt.CloseWithReason("signal terminated")
	rt.Close()
	assert.Equal(t, "signal terminated", rt.ClosedReason())
	assert.Zero(t, rt.Len())
	assert.Contains(t, b.String(), `"msg":"runtime closed"`)
	assert.Contains(t, b.String(), `"sessions":1`)
	_, _, err = rt.Create()
	assert.ErrorContains(t, err, "signal terminated")
}

func TestSeedMakerUnique(t *testing.T) {
	sm := newSeedMaker(42)
	seen := make(map[int64]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 500 {
				v := sm.next()
				mu.Lock()
				if seen[v] {
					t.Errorf("duplicate seed %d", v)
				}
				seen[v] = true
				mu.Unlock()
				if v < 0 {
					t.Errorf("negative seed %d", v)
				}
			}
		})
	}
	wg.Wait()
	assert.Len(t, seen, 4000)
}

func TestSimulatorDeterministic(t *testing.T) {
	gs, err := ClassicSetting()
	require.NoError(t, err)

	a, err := NewSimulatorWithSeed(gs, core.Default(), 0, 1234)
	require.NoError(t, err)
	b, err := NewSimulatorWithSeed(gs, core.Default(), 0, 1234)
	require.NoError(t, err)

	ra, _, err := a.Sim(2000, false)
	require.NoError(t, err)
	rb, _, err := b.Sim(2000, false)
	require.NoError(t, err)

	assert.Equal(t, 2000, ra.Summary.Rounds)
	assert.Equal(t, ra.Summary.TotalDelta, rb.Summary.TotalDelta)
	assert.Equal(t, ra.Summary.NoWinRounds, rb.Summary.NoWinRounds)

	sum := 0
	for _, c := range ra.Dist.Collect {
		sum += c
	}
	assert.Equal(t, ra.Summary.Rounds, sum)
	assert.Equal(t, ra.Summary.NoWinRounds, ra.Dist.Collect[0])
}

func TestSimulatorLoneSymbolAlwaysWins(t *testing.T) {
	sim, err := NewSimulatorWithSeed(loneSetting(t), core.Default(), 0, 5)
	require.NoError(t, err)

	rep, _, err := sim.SimMP(30, 3, false)
	require.NoError(t, err)
	assert.Equal(t, 90, rep.Summary.Rounds)
	assert.Zero(t, rep.Summary.NoWinRounds)
	assert.Equal(t, 1.0, rep.Summary.HitRate)
	require.Len(t, rep.Symbols, 1)
	assert.Equal(t, 90, rep.Symbols[0].Wins)
	for _, p := range rep.Patterns {
		assert.Equal(t, 90, p.Hits, "pattern %s", p.Name)
	}
	// 每個 worker 各自累計：第 3 局觸頂
	assert.Equal(t, 3*10, rep.Summary.Saturations)
}

func TestSimulatorSessions(t *testing.T) {
	sim, err := NewSimulatorWithSeed(loneSetting(t), core.Default(), 0, 5)
	require.NoError(t, err)

	rep, est, _, err := sim.SimSessions(2, 10, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 20, rep.Summary.Rounds)
	assert.Equal(t, 10, est.Sessions)
	// 兩局不會觸頂：結束分數固定 90,000,000
	assert.Equal(t, float64(90_000_000), est.TotalStat.Median.Hat)
	assert.Zero(t, est.Saturation.Hat)
	assert.Equal(t, 1.0, est.EventStat.Hits.Two.Hat)

	_, _, _, err = sim.SimSessions(0, 1, 1, false)
	assert.True(t, errs.IsKind(err, errs.Config))
}
