package buf

import (
	"strconv"
	"strings"

	"github.com/zintix-labs/reelslot/errs"
)

// Cell 盤面上的一格：只保留比對與計分所需的領域資料
type Cell struct {
	ID    int `json:"id"`
	Value int `json:"value"`
}

// Pos 盤面座標
type Pos struct {
	Reel int `json:"reel"`
	Row  int `json:"row"`
}

// Index 回傳扁平索引（reel 優先）
func (p Pos) Index(rows int) int { return p.Reel*rows + p.Row }

// Grid 是停輪後的盤面快照，Cells 以 [reel][row] 扁平存放。
// Grid 建立後不應再被修改；需要變更時請先 Clone。
type Grid struct {
	Reels int    `json:"reels"`
	Rows  int    `json:"rows"`
	Cells []Cell `json:"cells"`
}

func NewGrid(reels, rows int) Grid {
	return Grid{Reels: reels, Rows: rows, Cells: make([]Cell, reels*rows)}
}

// GridOf 以 [reel][row] 的二維切片建立盤面；各輪長度必須一致。
func GridOf(cols [][]Cell) (Grid, error) {
	if len(cols) == 0 {
		return Grid{}, errs.NewInvariant("empty grid")
	}
	rows := len(cols[0])
	g := NewGrid(len(cols), rows)
	for r, col := range cols {
		if len(col) != rows {
			return Grid{}, errs.Invariantf("reel %d has %d rows, want %d", r, len(col), rows)
		}
		copy(g.Cells[r*rows:], col)
	}
	return g, nil
}

func (g Grid) At(reel, row int) Cell { return g.Cells[reel*g.Rows+row] }

func (g Grid) Set(reel, row int, c Cell) { g.Cells[reel*g.Rows+row] = c }

// Reel 回傳第 reel 輪（共用底層陣列，唯讀使用）
func (g Grid) Reel(reel int) []Cell { return g.Cells[reel*g.Rows : (reel+1)*g.Rows] }

func (g Grid) Size() int { return len(g.Cells) }

func (g Grid) Clone() Grid {
	c := g
	c.Cells = append([]Cell(nil), g.Cells...)
	return c
}

// String 以列為主輸出 id，方便除錯與 log
func (g Grid) String() string {
	var sb strings.Builder
	for row := 0; row < g.Rows; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		for reel := 0; reel < g.Reels; reel++ {
			if reel > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(g.At(reel, row).ID))
		}
	}
	return sb.String()
}
