package catalog

import (
	"log/slog"
	"sync"

	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/sdk/core"
	"github.com/zintix-labs/reelslot/sdk/present"
	"github.com/zintix-labs/reelslot/sdk/sampler"
	"github.com/zintix-labs/reelslot/sdk/symbol"
	"github.com/zintix-labs/reelslot/spec"
)

var (
	ErrUnknownSymbol = errs.NewInvariant("symbol not in catalog")
	ErrClosed        = errs.NewInvariant("catalog closed")
)

// Catalog 持有固定的圖標定義，並負責發放/回收圖標實例。
//
// 抽取與歷史無關：未設定權重時均勻分布於所有定義，否則依 alias table 加權。
// 回收的實例依定義分池保存，下一次抽到相同定義時直接重用，不重建動畫。
type Catalog struct {
	mu      sync.Mutex
	defs    []symbol.Definition
	byID    map[int]int
	byName  map[string]int
	stage   present.Stage
	core    *core.Core
	alias   *sampler.AliasTable // nil 表示均勻
	free    [][]*symbol.Symbol  // index 對應 defs
	serial  uint64
	live    int
	created int
	closed  bool
	log     *slog.Logger
}

// New 建立 Catalog。所有動畫名稱必須先能由 stage 解析，否則回傳 Config 錯誤。
func New(ss *spec.SymbolSetting, stage present.Stage, c *core.Core, log *slog.Logger) (*Catalog, error) {
	if ss == nil || stage == nil || c == nil {
		return nil, errs.NewConfig("catalog requires symbol setting, stage and core")
	}
	if err := ss.Init(); err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	cat := &Catalog{
		defs:   make([]symbol.Definition, 0, len(ss.Symbols)),
		byID:   make(map[int]int, len(ss.Symbols)),
		byName: make(map[string]int, len(ss.Symbols)),
		stage:  stage,
		core:   c,
		free:   make([][]*symbol.Symbol, len(ss.Symbols)),
		log:    log,
	}
	for _, d := range ss.Symbols {
		if err := stage.Resolve(d.Name); err != nil {
			return nil, errs.WrapWithExtra(err, "symbol animation not resolvable", d.Name)
		}
		cat.byID[d.ID] = len(cat.defs)
		cat.byName[d.Name] = len(cat.defs)
		cat.defs = append(cat.defs, symbol.Definition{ID: d.ID, Name: d.Name, Value: d.Value})
	}
	if ws := ss.Weights(); ws != nil {
		at, err := sampler.BuildAliasTable(ws)
		if err != nil {
			return nil, errs.Wrap(err, "can not create catalog")
		}
		cat.alias = at
	}
	if log != nil {
		log.Debug("catalog ready", slog.Int("symbols", len(cat.defs)))
	}
	return cat, nil
}

func (c *Catalog) Len() int { return len(c.defs) }

// Defs 回傳定義副本（設定檔順序）
func (c *Catalog) Defs() []symbol.Definition {
	return append([]symbol.Definition(nil), c.defs...)
}

func (c *Catalog) Lookup(id int) (symbol.Definition, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return symbol.Definition{}, false
	}
	return c.defs[idx], true
}

func (c *Catalog) LookupName(name string) (symbol.Definition, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return symbol.Definition{}, false
	}
	return c.defs[idx], true
}

// Draw 抽一個定義並交出實例；所有權轉給呼叫端，直到 Release。
func (c *Catalog) Draw() (*symbol.Symbol, error) {
	return c.take(c.pick())
}

func (c *Catalog) pick() int {
	if c.alias != nil {
		return c.alias.Pick(c.core)
	}
	return c.core.IntN(len(c.defs))
}

// DrawID 交出指定 id 的實例
func (c *Catalog) DrawID(id int) (*symbol.Symbol, error) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, errs.WrapWithExtra(ErrUnknownSymbol, "draw by id failed", "")
	}
	return c.take(idx)
}

// DrawCell 只抽領域資料，不建立實例；模擬器使用
func (c *Catalog) DrawCell() buf.Cell {
	d := c.defs[c.pick()]
	return buf.Cell{ID: d.ID, Value: d.Value}
}

// Release 收回實例。實例必須來自同一個 Catalog。
func (c *Catalog) Release(s *symbol.Symbol) {
	if s == nil {
		return
	}
	idx, ok := c.byID[s.ID()]
	if !ok {
		return
	}
	s.Park()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.live--
	if c.closed {
		s.Detach()
		return
	}
	c.free[idx] = append(c.free[idx], s)
}

// Live 回傳目前被轉輪持有的實例數
func (c *Catalog) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Created 回傳累計建立的實例數（含池中）
func (c *Catalog) Created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}

// Close 釋放池中所有實例；之後 Draw 會失敗
func (c *Catalog) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for i, pool := range c.free {
		for _, s := range pool {
			s.Detach()
		}
		c.free[i] = nil
	}
}

// ** 以下內部方法 **

func (c *Catalog) take(idx int) (*symbol.Symbol, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if n := len(c.free[idx]); n > 0 {
		s := c.free[idx][n-1]
		c.free[idx] = c.free[idx][:n-1]
		c.live++
		c.mu.Unlock()
		return s, nil
	}
	c.serial++
	serial := c.serial
	c.mu.Unlock()

	def := c.defs[idx]
	anim, err := c.stage.NewAnimation(def.Name)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "create symbol animation failed", def.Name)
	}
	c.mu.Lock()
	c.live++
	c.created++
	c.mu.Unlock()
	return symbol.New(serial, def, anim), nil
}
