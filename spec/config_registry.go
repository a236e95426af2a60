package spec

import (
	"encoding/json"
	"io/fs"
	"path"

	"github.com/zintix-labs/reelslot/errs"
	"gopkg.in/yaml.v3"
)

func GetGameSettingByYAML(data []byte) (*GameSetting, error) {
	gs := &GameSetting{}
	if err := yaml.Unmarshal(data, gs); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}

	// 設定檔初始化
	if err := gs.Init(); err != nil {
		return nil, errs.Wrap(err, "game setting initialized err")
	}

	return gs, nil
}

func GetGameSettingByJSON(data []byte) (*GameSetting, error) {
	gs := &GameSetting{}
	if err := json.Unmarshal(data, gs); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}

	// 設定檔初始化
	if err := gs.Init(); err != nil {
		return nil, errs.Wrap(err, "game setting initialized err")
	}

	return gs, nil
}

// GetGameSettingFromFS 依副檔名選擇解碼器（.json 走 JSON，其餘視為 YAML）
func GetGameSettingFromFS(fsys fs.FS, name string) (*GameSetting, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "read game setting failed", name)
	}
	if path.Ext(name) == ".json" {
		return GetGameSettingByJSON(data)
	}
	return GetGameSettingByYAML(data)
}
