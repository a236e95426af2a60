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

package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/spec"
)

func testSetting() *spec.GameSetting {
	return &spec.GameSetting{
		GameName: "rec_test",
		SymbolSetting: spec.SymbolSetting{Symbols: []spec.SymbolDef{
			{ID: 8, Name: "nine", Value: 9},
			{ID: 0, Name: "h2", Value: 17},
		}},
		ScreenSetting: spec.ScreenSetting{Reels: 3, Rows: 3, SymbolWidth: 125, SymbolHeight: 105},
		PatternSetting: spec.PatternSetting{Patterns: []spec.MultiplierPattern{
			{Name: "row", Cells: [][2]int{{0, 0}, {0, 1}, {0, 2}}, Multiplier: 10},
			{Name: "row", Cells: [][2]int{{1, 0}, {1, 1}, {1, 2}}, Multiplier: 10},
		}},
	}
}

func TestRecordAndDone(t *testing.T) {
	r, err := NewOutcomeRecorder(testSetting(), 10)
	require.NoError(t, err)

	r.Record(&buf.Outcome{})
	r.Record(&buf.Outcome{
		Groups: []buf.WinGroup{{SymbolID: 0, Score: 170, Patterns: []int{1}}},
		Delta:  170, Total: 170,
	})
	r.Record(&buf.Outcome{
		Groups: []buf.WinGroup{
			{SymbolID: 8, Score: 900, Patterns: []int{0, 1}},
			{SymbolID: 0, Score: 17},
		},
		Delta: 917, Saturated: true,
	})

	rep := r.Done()
	rep.Done()
	assert.Equal(t, 3, rep.Summary.Rounds)
	assert.Equal(t, int64(1087), rep.Summary.TotalDelta)
	assert.Equal(t, int64(917), rep.Summary.MaxDelta)
	assert.Equal(t, 1, rep.Summary.NoWinRounds)
	assert.Equal(t, 1, rep.Summary.Saturations)
	assert.Nil(t, rep.Session)

	require.Len(t, rep.Symbols, 2)
	assert.Equal(t, 1, rep.Symbols[0].Wins)
	assert.Equal(t, int64(900), rep.Symbols[0].Score)
	assert.Equal(t, 2, rep.Symbols[1].Wins)
	assert.Equal(t, int64(187), rep.Symbols[1].Score)

	require.Len(t, rep.Patterns, 2)
	assert.Equal(t, 1, rep.Patterns[0].Hits)
	assert.Equal(t, 2, rep.Patterns[1].Hits)

	sum := 0
	for _, c := range rep.Dist.Collect {
		sum += c
	}
	assert.Equal(t, 3, sum)
	assert.Equal(t, 1, rep.Dist.Collect[0])
}

func TestRecordSession(t *testing.T) {
	r, err := NewOutcomeRecorder(testSetting(), 10)
	require.NoError(t, err)

	assert.False(t, r.RecordSession(&buf.Outcome{Delta: 50, Total: 50, Groups: []buf.WinGroup{{SymbolID: 8}}}))
	assert.True(t, r.RecordSession(&buf.Outcome{Delta: 80, Total: 0, Saturated: true, Groups: []buf.WinGroup{{SymbolID: 8}}}))

	rep := r.Done()
	require.NotNil(t, rep.Session)
	assert.Equal(t, int64(0), rep.Session.FinalTotal)
	assert.Equal(t, int64(50), rep.Session.MaxTotal)
	assert.Equal(t, 1, rep.Session.Saturations)
}

func TestMerge(t *testing.T) {
	gs := testSetting()
	a, err := NewOutcomeRecorder(gs, 10)
	require.NoError(t, err)
	b, err := NewOutcomeRecorder(gs, 10)
	require.NoError(t, err)

	a.Record(&buf.Outcome{Delta: 10, Groups: []buf.WinGroup{{SymbolID: 8, Score: 10}}})
	b.Record(&buf.Outcome{Delta: 30, Groups: []buf.WinGroup{{SymbolID: 8, Score: 30, Patterns: []int{0}}}})
	b.Record(&buf.Outcome{})

	m, err := MergeOutcomeRecorder([]*OutcomeRecorder{a, b})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Basic.Rounds)
	assert.Equal(t, int64(40), m.Basic.TotalDelta)
	assert.Equal(t, float64(1000), m.Basic.DeltaSqSum)
	assert.Equal(t, int64(30), m.Basic.MaxDelta)
	assert.Equal(t, 2, m.Symbols[0].Wins)
	assert.Equal(t, 1, m.Patterns[0].Hits)
	// 來源不受影響
	assert.Equal(t, 1, a.Basic.Rounds)

	c, err := NewOutcomeRecorder(gs, 20)
	require.NoError(t, err)
	_, err = MergeOutcomeRecorder([]*OutcomeRecorder{a, c})
	assert.True(t, errs.IsKind(err, errs.Invariant))

	_, err = MergeOutcomeRecorder(nil)
	assert.Error(t, err)
}

func TestNewRejectsBadUnit(t *testing.T) {
	_, err := NewOutcomeRecorder(testSetting(), 0)
	assert.True(t, errs.IsKind(err, errs.Config))
	_, err = NewOutcomeRecorder(nil, 10)
	assert.True(t, errs.IsKind(err, errs.Config))
}
