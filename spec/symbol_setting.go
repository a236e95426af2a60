package spec

import (
	"github.com/zintix-labs/reelslot/errs"
)

// SymbolDef 單一圖標定義：ID 是唯一的比對鍵，Name 同時是動畫資源名稱
//
// Weight 為落點權重。所有圖標都未設定（0）時均勻抽樣；
// 只要有任一圖標設定權重，未設定者就不會落在轉輪上。
type SymbolDef struct {
	ID     int    `yaml:"id"                json:"id"`
	Name   string `yaml:"name"              json:"name"`
	Value  int    `yaml:"value"             json:"value"`
	Weight int    `yaml:"weight,omitempty"  json:"weight,omitempty"`
}

type SymbolSetting struct {
	Symbols  []SymbolDef    `yaml:"symbols"  json:"symbols"`
	ByID     map[int]int    `yaml:"-"        json:"-"` // id -> index in Symbols
	ByName   map[string]int `yaml:"-"        json:"-"` // name -> index in Symbols
	initFlag bool
}

func (ss *SymbolSetting) Init() error {
	// 檢查初始化旗標
	if ss.initFlag {
		return nil
	}
	if len(ss.Symbols) == 0 {
		return errs.NewConfig("symbols is empty")
	}

	// 同一個 id 重複出現時：value 不一致視為設定錯誤，一致則去重
	uniq := make([]SymbolDef, 0, len(ss.Symbols))
	ss.ByID = make(map[int]int, len(ss.Symbols))
	ss.ByName = make(map[string]int, len(ss.Symbols))
	for _, def := range ss.Symbols {
		if def.Name == "" {
			return errs.Configf("symbol id %d has empty name", def.ID)
		}
		if def.Value < 0 {
			return errs.Configf("symbol %s has negative value %d", def.Name, def.Value)
		}
		if def.Weight < 0 {
			return errs.Configf("symbol %s has negative weight %d", def.Name, def.Weight)
		}
		if idx, ok := ss.ByID[def.ID]; ok {
			prev := uniq[idx]
			if prev.Value != def.Value {
				return errs.Configf("symbol id %d declared with divergent values %d and %d", def.ID, prev.Value, def.Value)
			}
			if prev.Weight != def.Weight {
				return errs.Configf("symbol id %d declared with divergent weights %d and %d", def.ID, prev.Weight, def.Weight)
			}
			if prev.Name != def.Name {
				return errs.Configf("symbol id %d declared with divergent names %s and %s", def.ID, prev.Name, def.Name)
			}
			continue
		}
		if _, ok := ss.ByName[def.Name]; ok {
			return errs.Configf("symbol name %s used by more than one id", def.Name)
		}
		ss.ByID[def.ID] = len(uniq)
		ss.ByName[def.Name] = len(uniq)
		uniq = append(uniq, def)
	}
	ss.Symbols = uniq

	// set 初始化旗標
	ss.initFlag = true
	return nil
}

// Lookup 依 id 取得定義
func (ss *SymbolSetting) Lookup(id int) (SymbolDef, bool) {
	idx, ok := ss.ByID[id]
	if !ok {
		return SymbolDef{}, false
	}
	return ss.Symbols[idx], true
}

// Weights 回傳與 Symbols 同序的權重；全部未設定時回傳 nil（均勻抽樣）
func (ss *SymbolSetting) Weights() []int {
	var ws []int
	for i, d := range ss.Symbols {
		if d.Weight > 0 && ws == nil {
			ws = make([]int, len(ss.Symbols))
		}
		if ws != nil {
			ws[i] = d.Weight
		}
	}
	return ws
}
