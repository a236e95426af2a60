package svrcfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/reelslot/errs"
	"pgregory.net/rapid"
)

func TestLoadDefaults(t *testing.T) {
	fc, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":5808", fc.Server.Addr)
	assert.Equal(t, DefaultSpinTimeout, fc.Server.SpinTimeout)
	assert.Equal(t, 1024, fc.Server.MaxSessions)
	assert.Equal(t, "dev", fc.Log.Mode)
	assert.True(t, fc.Log.Async)
	assert.Equal(t, 800*time.Millisecond, fc.Game.CelebrateFor)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  spin_timeout: 5s
  max_sessions: 8
log:
  mode: prod
  async: false
game:
  seed: 42
`), 0o644))
	t.Setenv("REELSLOT_SERVER_ADDR", ":9100")

	fc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", fc.Server.Addr) // env > file
	assert.Equal(t, 5*time.Second, fc.Server.SpinTimeout)
	assert.Equal(t, 8, fc.Server.MaxSessions)
	assert.Equal(t, "prod", fc.Log.Mode)
	assert.False(t, fc.Log.Async)
	assert.Equal(t, int64(42), fc.Game.Seed)
	assert.Equal(t, 512, int(fc.Game.WheelSize)) // 預設值保留
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.Config))
}

func TestValidateCollectsViolations(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("server.addr", "")
	v.Set("log.mode", "loud")
	v.Set("game.clock_tick", 0)
	_, err := LoadFromViper(v)
	require.Error(t, err)
	e, ok := errs.AsErr(err)
	require.True(t, ok)
	assert.Equal(t, errs.Config, e.Kind)
	assert.Contains(t, e.Extra, "server.addr")
	assert.Contains(t, e.Extra, "log.mode")
	assert.Contains(t, e.Extra, "game.clock_tick")
}

func TestValidateMaxSessions(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := viper.New()
		setDefaults(v)
		n := rapid.IntRange(-1000, 1000).Draw(t, "max_sessions")
		v.Set("server.max_sessions", n)
		_, err := LoadFromViper(v)
		if (n < 0) != (err != nil) {
			t.Fatalf("max_sessions=%d err=%v", n, err)
		}
	})
}

func TestBuild(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("log.mode", "silence")
	v.Set("game.seed", 5)
	fc, err := LoadFromViper(v)
	require.NoError(t, err)

	sCfg, cleanup, err := fc.Build()
	require.NoError(t, err)
	defer cleanup()
	require.NoError(t, sCfg.Valid())
	assert.Equal(t, "classic", sCfg.Runtime.Setting().GameName)
	assert.Equal(t, ":5808", sCfg.Addr)

	_, _, err = sCfg.Runtime.Create()
	require.NoError(t, err)
	assert.Equal(t, 1, sCfg.Runtime.Len())
}

func TestBuildBadGameConfig(t *testing.T) {
	fc, err := Load("")
	require.NoError(t, err)
	fc.Log.Async = false
	fc.Game.Config = filepath.Join(t.TempDir(), "missing.yaml")
	_, _, err = fc.Build()
	require.Error(t, err)
}

func TestSvrCfgValid(t *testing.T) {
	sc := &SvrCfg{}
	require.True(t, errs.IsKind(sc.Valid(), errs.Config))
	assert.NotNil(t, sc.Log)
	assert.Equal(t, DefaultSpinTimeout, sc.SpinTimeout)
}
