package svrcfg

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zintix-labs/reelslot"
	"github.com/zintix-labs/reelslot/sdk/clock"
	"github.com/zintix-labs/reelslot/sdk/core"
	"github.com/zintix-labs/reelslot/sdk/present"
	"github.com/zintix-labs/reelslot/server/logger"
	"github.com/zintix-labs/reelslot/spec"
)

// Build 依設定檔建立 logger、時鐘與 Runtime。
//
// 回傳的 cleanup 依序關閉 runtime、時間輪與 async log，需在程式結束前呼叫。
func (fc *FileCfg) Build() (*SvrCfg, func(), error) {
	mode, err := logger.ParseMode(fc.Log.Mode)
	if err != nil {
		return nil, nil, err
	}
	var log *slog.Logger
	var ah *logger.AsyncHandler
	if fc.Log.Async {
		log, ah = logger.NewAsync(fc.Log.Buffer, mode)
	} else {
		log = logger.NewDefaultLogger(mode)
	}

	gs, err := fc.gameSetting()
	if err != nil {
		if ah != nil {
			ah.Close()
		}
		return nil, nil, err
	}

	wheel := clock.NewWheel(fc.Game.ClockTick, fc.Game.WheelSize)
	rt, err := reelslot.NewRuntime(gs, core.Default(), reelslot.RuntimeOptions{
		Deps: reelslot.Deps{
			Stage:  present.NewHeadless(wheel, fc.Game.CelebrateFor),
			Audio:  present.LogAudio{Log: log},
			Clock:  wheel,
			Logger: log,
		},
		MaxSessions: fc.Server.MaxSessions,
		Seed:        fc.Game.Seed,
	})
	if err != nil {
		wheel.Stop()
		if ah != nil {
			ah.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		rt.Close()
		wheel.Stop()
		if ah != nil {
			ah.Close()
		}
	}
	return &SvrCfg{
		Log:         log,
		Runtime:     rt,
		Addr:        fc.Server.Addr,
		SpinTimeout: fc.Server.SpinTimeout,
	}, cleanup, nil
}

func (fc *FileCfg) gameSetting() (*spec.GameSetting, error) {
	if fc.Game.Config == "" {
		return reelslot.ClassicSetting()
	}
	dir, name := filepath.Split(fc.Game.Config)
	if dir == "" {
		dir = "."
	}
	return reelslot.LoadSetting(os.DirFS(dir), name)
}
