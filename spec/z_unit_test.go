package spec

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/reelslot/errs"
)

const miniYAML = `
game_name: mini
symbol_setting:
  symbols:
    - { id: 1, name: a, value: 5 }
    - { id: 2, name: b, value: 7 }
    - { id: 1, name: a, value: 5 }
screen_setting:
  reels: 3
  rows: 3
  symbol_width: 100
  symbol_height: 100
pattern_setting:
  patterns:
    - name: row
      cells: [[1, 0], [1, 1], [1, 2]]
      multiplier: 2
`

func TestYAMLDefaultsAndDedup(t *testing.T) {
	gs, err := GetGameSettingByYAML([]byte(miniYAML))
	require.NoError(t, err)
	assert.Len(t, gs.SymbolSetting.Symbols, 2)
	assert.Equal(t, DefaultScoreCeiling, gs.ScoreCeiling)
	assert.Equal(t, 1, gs.ScreenSetting.Buffer)
	assert.Equal(t, 100.0, gs.ScreenSetting.ReelWidth)
	assert.Equal(t, 9, gs.ScreenSetting.ScreenSize)
	assert.Equal(t, 2*time.Second, gs.TimingSetting.SpinDuration)
	assert.Equal(t, 250*time.Millisecond, gs.TimingSetting.StopStagger)
	assert.Equal(t, "spin", gs.CueSetting.Spin)
	assert.Nil(t, gs.SymbolSetting.Weights())

	d, ok := gs.SymbolSetting.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "b", d.Name)
	_, ok = gs.SymbolSetting.Lookup(9)
	assert.False(t, ok)

	// 重複 Init 安全
	require.NoError(t, gs.Init())
}

func TestSymbolSettingRejects(t *testing.T) {
	cases := map[string][]SymbolDef{
		"empty":          nil,
		"value diverge":  {{ID: 1, Name: "a", Value: 1}, {ID: 1, Name: "a", Value: 2}},
		"name diverge":   {{ID: 1, Name: "a", Value: 1}, {ID: 1, Name: "b", Value: 1}},
		"weight diverge": {{ID: 1, Name: "a", Value: 1, Weight: 1}, {ID: 1, Name: "a", Value: 1, Weight: 2}},
		"shared name":    {{ID: 1, Name: "a", Value: 1}, {ID: 2, Name: "a", Value: 1}},
		"empty name":     {{ID: 1, Value: 1}},
		"negative value": {{ID: 1, Name: "a", Value: -1}},
	}
	for name, defs := range cases {
		ss := &SymbolSetting{Symbols: defs}
		assert.True(t, errs.IsKind(ss.Init(), errs.Config), name)
	}
}

func TestWeights(t *testing.T) {
	ss := &SymbolSetting{Symbols: []SymbolDef{{ID: 1, Name: "a"}, {ID: 2, Name: "b", Weight: 4}}}
	require.NoError(t, ss.Init())
	assert.Equal(t, []int{0, 4}, ss.Weights())
}

func TestPatternOutOfRange(t *testing.T) {
	gs, err := GetGameSettingByYAML([]byte(miniYAML))
	require.NoError(t, err)
	gs.PatternSetting = PatternSetting{Patterns: []MultiplierPattern{{Name: "x", Cells: [][2]int{{3, 0}}, Multiplier: 2}}}
	assert.True(t, errs.IsKind(gs.Init(), errs.Config))

	gs.PatternSetting = PatternSetting{Patterns: []MultiplierPattern{{Name: "x", Cells: [][2]int{{0, 0}}, Multiplier: 0}}}
	assert.True(t, errs.IsKind(gs.Init(), errs.Config))

	gs.PatternSetting = PatternSetting{Patterns: []MultiplierPattern{{Name: "x", Multiplier: 2}}}
	assert.True(t, errs.IsKind(gs.Init(), errs.Config))
}

func TestFrameTravelExceedsBuffer(t *testing.T) {
	gs, err := GetGameSettingByYAML([]byte(miniYAML))
	require.NoError(t, err)
	gs.TimingSetting = TimingSetting{SpinSpeed: 100000, FrameIntervalMs: 16}
	assert.True(t, errs.IsKind(gs.Init(), errs.Config))
}

func TestScreenRejects(t *testing.T) {
	for name, ss := range map[string]ScreenSetting{
		"no reels":    {Rows: 3, SymbolWidth: 1, SymbolHeight: 1},
		"neg buffer":  {Reels: 3, Rows: 3, Buffer: -1, SymbolWidth: 1, SymbolHeight: 1},
		"no size":     {Reels: 3, Rows: 3},
		"narrow reel": {Reels: 3, Rows: 3, SymbolWidth: 10, SymbolHeight: 10, ReelWidth: 5},
	} {
		assert.True(t, errs.IsKind(ss.Init(), errs.Config), name)
	}
}

func TestFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"mini.yaml": {Data: []byte(miniYAML)},
		"bad.json":  {Data: []byte(`{"game_name": 1}`)},
	}
	gs, err := GetGameSettingFromFS(fsys, "mini.yaml")
	require.NoError(t, err)
	assert.Equal(t, "mini", gs.GameName)

	_, err = GetGameSettingFromFS(fsys, "bad.json")
	assert.Error(t, err)
	_, err = GetGameSettingFromFS(fsys, "none.yaml")
	assert.True(t, errs.IsKind(err, errs.Config))
}
