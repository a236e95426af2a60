package buf

// WinGroup 單一圖標的中獎群組：該圖標出現在每一輪時，收集它在盤面上的所有格子。
type WinGroup struct {
	SymbolID  int    `json:"symbol_id"`
	Name      string `json:"name,omitempty"`
	BaseValue int    `json:"base_value"`
	Cells     []Pos  `json:"cells"`
	Patterns  []int  `json:"patterns,omitempty"` // 命中的倍數樣式索引（套用順序）
	Multiply  int64  `json:"multiply"`           // 累乘後倍數
	Score     int64  `json:"score"`
}

// Outcome 一次計分結果
type Outcome struct {
	Round     string     `json:"round"`
	Grid      Grid       `json:"grid"`
	Groups    []WinGroup `json:"groups"`
	Delta     int64      `json:"delta"`
	Total     int64      `json:"total"`
	Saturated bool       `json:"saturated"` // 本局超過上限而歸零
}

// IsWin 是否有任何中獎群組
func (o *Outcome) IsWin() bool { return len(o.Groups) > 0 }

// CellCount 回傳所有群組的格子總數（即需要播放的動畫數）
func (o *Outcome) CellCount() int {
	n := 0
	for _, g := range o.Groups {
		n += len(g.Cells)
	}
	return n
}

// PaySymbol 賠付表上的圖標
type PaySymbol struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// PayMultiplier 賠付表上的倍數（同名樣式只列一次）
type PayMultiplier struct {
	Name       string `json:"name"`
	Multiplier int    `json:"multiplier"`
	Patterns   int    `json:"patterns"`
}

// Paytable 給資訊選單使用
type Paytable struct {
	Symbols     []PaySymbol     `json:"symbols"`
	Multipliers []PayMultiplier `json:"multipliers"`
}
