package spec

import (
	"time"

	"github.com/zintix-labs/reelslot/errs"
)

const (
	DefaultSpinDurationMs     = 2000
	DefaultStopStaggerMs      = 250
	DefaultFrameIntervalMs    = 16
	DefaultCelebrateTimeoutMs = 5000
	DefaultSpinSpeed          = 1800 // px/s
	DefaultStopSteps          = 1
)

// TimingSetting 轉動節奏。設定檔一律以毫秒整數表示，Init 後換算成 time.Duration。
type TimingSetting struct {
	SpinDurationMs     int     `yaml:"spin_duration_ms"      json:"spin_duration_ms"`
	StopStaggerMs      int     `yaml:"stop_stagger_ms"       json:"stop_stagger_ms"`
	FrameIntervalMs    int     `yaml:"frame_interval_ms"     json:"frame_interval_ms"`
	CelebrateTimeoutMs int     `yaml:"celebrate_timeout_ms"  json:"celebrate_timeout_ms"`
	SpinSpeed          float64 `yaml:"spin_speed"            json:"spin_speed"`
	StopSteps          int     `yaml:"stop_steps"            json:"stop_steps"`

	SpinDuration     time.Duration `yaml:"-"  json:"-"`
	StopStagger      time.Duration `yaml:"-"  json:"-"`
	FrameInterval    time.Duration `yaml:"-"  json:"-"`
	CelebrateTimeout time.Duration `yaml:"-"  json:"-"`
	initFlag         bool
}

func (ts *TimingSetting) Init() error {
	if ts.initFlag {
		return nil
	}
	if ts.SpinDurationMs < 0 || ts.StopStaggerMs < 0 || ts.FrameIntervalMs < 0 || ts.CelebrateTimeoutMs < 0 {
		return errs.NewConfig("timing values must be non-negative")
	}
	if ts.StopSteps < 0 {
		return errs.Configf("invalid stop_steps: %d", ts.StopSteps)
	}
	if ts.SpinSpeed < 0 {
		return errs.Configf("invalid spin_speed: %v", ts.SpinSpeed)
	}
	// 0 代表使用預設值
	ts.SpinDurationMs = orDefault(ts.SpinDurationMs, DefaultSpinDurationMs)
	ts.StopStaggerMs = orDefault(ts.StopStaggerMs, DefaultStopStaggerMs)
	ts.FrameIntervalMs = orDefault(ts.FrameIntervalMs, DefaultFrameIntervalMs)
	ts.CelebrateTimeoutMs = orDefault(ts.CelebrateTimeoutMs, DefaultCelebrateTimeoutMs)
	ts.StopSteps = orDefault(ts.StopSteps, DefaultStopSteps)
	if ts.SpinSpeed == 0 {
		ts.SpinSpeed = DefaultSpinSpeed
	}

	ts.SpinDuration = time.Duration(ts.SpinDurationMs) * time.Millisecond
	ts.StopStagger = time.Duration(ts.StopStaggerMs) * time.Millisecond
	ts.FrameInterval = time.Duration(ts.FrameIntervalMs) * time.Millisecond
	ts.CelebrateTimeout = time.Duration(ts.CelebrateTimeoutMs) * time.Millisecond
	ts.initFlag = true
	return nil
}

// FrameTravel 回傳每一幀的位移（px）
func (ts *TimingSetting) FrameTravel() float64 {
	return ts.SpinSpeed * ts.FrameInterval.Seconds()
}

// CueSetting 音效鍵值
type CueSetting struct {
	Spin string `yaml:"spin"  json:"spin"`
	Win  string `yaml:"win"   json:"win"`
}

func (cs *CueSetting) Init() {
	if cs.Spin == "" {
		cs.Spin = "spin"
	}
	if cs.Win == "" {
		cs.Win = "win"
	}
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
