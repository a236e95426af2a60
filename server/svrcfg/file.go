package svrcfg

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/server/logger"
)

// EnvPrefix 環境變數前綴，例如 REELSLOT_SERVER_ADDR
const EnvPrefix = "REELSLOT"

type ServerFileCfg struct {
	Addr        string        `mapstructure:"addr"`
	SpinTimeout time.Duration `mapstructure:"spin_timeout"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

type LogFileCfg struct {
	Mode   string `mapstructure:"mode"`
	Async  bool   `mapstructure:"async"`
	Buffer int    `mapstructure:"buffer"`
}

type GameFileCfg struct {
	// Config 遊戲設定檔路徑；空字串使用內建 classic
	Config       string        `mapstructure:"config"`
	Seed         int64         `mapstructure:"seed"`
	CelebrateFor time.Duration `mapstructure:"celebrate_for"`
	ClockTick    time.Duration `mapstructure:"clock_tick"`
	WheelSize    int64         `mapstructure:"wheel_size"`
}

// FileCfg 對應 server 設定檔（yaml/json/toml 皆可，由 viper 依副檔名判斷）
type FileCfg struct {
	Server ServerFileCfg `mapstructure:"server"`
	Log    LogFileCfg    `mapstructure:"log"`
	Game   GameFileCfg   `mapstructure:"game"`
}

// Load 讀取設定：預設值 < 設定檔 < 環境變數。path 為空時只用預設值與環境變數。
func Load(path string) (*FileCfg, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.WrapWithExtra(err, "read server config failed", path)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper 由已設定好的 viper 實例解碼並驗證
func LoadFromViper(v *viper.Viper) (*FileCfg, error) {
	fc := &FileCfg{}
	if err := v.Unmarshal(fc); err != nil {
		return nil, errs.Wrap(err, "decode server config failed")
	}
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	return fc, nil
}

func (fc *FileCfg) Validate() error {
	var bad []string
	if fc.Server.Addr == "" {
		bad = append(bad, "server.addr must not be empty")
	}
	if fc.Server.SpinTimeout <= 0 {
		bad = append(bad, "server.spin_timeout must be positive")
	}
	if fc.Server.MaxSessions < 0 {
		bad = append(bad, "server.max_sessions must not be negative")
	}
	if _, err := logger.ParseMode(fc.Log.Mode); err != nil {
		bad = append(bad, "log.mode must be one of [dev, prod, silence]")
	}
	if fc.Log.Async && fc.Log.Buffer <= 0 {
		bad = append(bad, "log.buffer must be positive when log.async is set")
	}
	if fc.Game.CelebrateFor < 0 {
		bad = append(bad, "game.celebrate_for must not be negative")
	}
	if fc.Game.ClockTick <= 0 {
		bad = append(bad, "game.clock_tick must be positive")
	}
	if fc.Game.WheelSize <= 0 {
		bad = append(bad, "game.wheel_size must be positive")
	}
	if len(bad) > 0 {
		return errs.NewWithExtra(errs.Config, "server config validation failed", strings.Join(bad, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5808")
	v.SetDefault("server.spin_timeout", DefaultSpinTimeout)
	v.SetDefault("server.max_sessions", 1024)

	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.async", true)
	v.SetDefault("log.buffer", 8192)

	v.SetDefault("game.config", "")
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.celebrate_for", 800*time.Millisecond)
	v.SetDefault("game.clock_tick", time.Millisecond)
	v.SetDefault("game.wheel_size", 512)
}
