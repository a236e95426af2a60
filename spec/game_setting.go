package spec

import (
	"github.com/zintix-labs/reelslot/errs"
)

// DefaultScoreCeiling 累計分數超過此值即歸零
const DefaultScoreCeiling int64 = 99_999_999

type GameSetting struct {
	GameName       string         `yaml:"game_name"        json:"game_name"`
	ScoreCeiling   int64          `yaml:"score_ceiling"    json:"score_ceiling"`
	SymbolSetting  SymbolSetting  `yaml:"symbol_setting"   json:"symbol_setting"`
	ScreenSetting  ScreenSetting  `yaml:"screen_setting"   json:"screen_setting"`
	PatternSetting PatternSetting `yaml:"pattern_setting"  json:"pattern_setting"`
	TimingSetting  TimingSetting  `yaml:"timing_setting"   json:"timing_setting"`
	CueSetting     CueSetting     `yaml:"cues"             json:"cues"`
}

// Init 驗證並補齊預設值。重複呼叫安全。
func (gs *GameSetting) Init() error {
	if err := gs.SymbolSetting.Init(); err != nil {
		return errs.WrapWithExtra(err, "symbol_setting invalid", gs.GameName)
	}
	if err := gs.ScreenSetting.Init(); err != nil {
		return errs.WrapWithExtra(err, "screen_setting invalid", gs.GameName)
	}
	if err := gs.PatternSetting.Init(); err != nil {
		return errs.WrapWithExtra(err, "pattern_setting invalid", gs.GameName)
	}
	if err := gs.TimingSetting.Init(); err != nil {
		return errs.WrapWithExtra(err, "timing_setting invalid", gs.GameName)
	}
	gs.CueSetting.Init()
	if gs.ScoreCeiling == 0 {
		gs.ScoreCeiling = DefaultScoreCeiling
	}
	return gs.valid()
}

func (gs *GameSetting) valid() error {
	if gs.ScoreCeiling < 0 {
		return errs.Configf("game_name: %s err:negative score_ceiling", gs.GameName)
	}
	scr := &gs.ScreenSetting
	if err := gs.PatternSetting.Valid(scr.Reels, scr.Rows); err != nil {
		return errs.WrapWithExtra(err, "pattern_setting out of range", gs.GameName)
	}
	// 每幀位移不可超過緩衝區高度，否則可見視窗可能出現空位
	travel := gs.TimingSetting.FrameTravel()
	if travel > float64(scr.Buffer)*scr.SymbolHeight {
		return errs.Configf("game_name: %s err:frame travel %.1fpx exceeds buffer %d x %.1fpx",
			gs.GameName, travel, scr.Buffer, scr.SymbolHeight)
	}
	return nil
}
