package stats

const (
	maxLutMult int = 2000
	maxMult    int = 10000
)

// WinBuckets
//
// 用來快速定位得分 ->  DistRecord 位置 O(1)
//
// 請勿修改預設值
//   - 區間以 ScoreUnit 為單位: [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
type WinBuckets struct {
	winBucket    []int
	winBucketStr []string
	winBucketMap map[int]*WinBucket
}

type WinBucket struct {
	unit             int
	maxCheckWin      int64
	lutMaxWin        int64
	winBucketByScore []int64
	winBucketLUT     []int
	justOverIdx      int
	maxIdx           int
}

// Buckets
//
// 用來快速定位得分 ->  DistRecord 位置 O(1)
//
// 請勿修改預設值
//   - 區間以 ScoreUnit 為單位: [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
var Buckets *WinBuckets = &WinBuckets{
	winBucket:    []int{0, 1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 10000},
	winBucketStr: []string{"[0,0]", "(0,1)", "[1,2)", "[2,5)", "[5,10)", "[10,20)", "[20,50)", "[50,100)", "[100,300)", "[300,500)", "[500,1000)", "[1000,2000)", "[2000,10000)", "[10000,+inf)"},
	winBucketMap: make(map[int]*WinBucket),
}

func (b *WinBuckets) WinBucketStr() []string {
	return b.winBucketStr
}

// GetBucketByUnit 以分數單位取得（或建立）對應的分桶。
//
// 注意：建立過程不是併發安全的，請在啟動 worker 之前取得。
func (b *WinBuckets) GetBucketByUnit(unit int) *WinBucket {
	if unit < 1 {
		unit = 1
	}
	result, exist := b.winBucketMap[unit]
	if !exist {
		result = b.buildBucket(unit)
	}
	return result
}

func (b *WinBuckets) buildBucket(unit int) *WinBucket {
	// 我們只建到 2000 倍
	maxLut := unit * maxLutMult
	u := int64(unit)

	// 把「單位邊界」轉成「分數邊界」
	winGp := make([]int64, len(b.winBucket))
	for i, v := range b.winBucket {
		winGp[i] = u * int64(v)
	}

	// 建立LUT反查表
	lut := make([]int, maxLut) // lut[win] = idx

	// 由 (0,1) 這個區間開始
	idx := 1
	last := len(winGp) - 1

	lut[0] = 0
	for i := 1; i < maxLut; i++ {
		// 僅在還有更高邊界時才前進 idx，避免越界讀取
		for idx < last && int64(i) >= winGp[idx] {
			idx++
		}
		lut[i] = idx
	}

	result := &WinBucket{
		unit:             unit,
		maxCheckWin:      u * int64(maxMult),
		lutMaxWin:        int64(maxLut),
		winBucketByScore: winGp,
		winBucketLUT:     lut,
		justOverIdx:      len(winGp) - 1,
		maxIdx:           len(winGp),
	}

	b.winBucketMap[unit] = result
	return result
}

func (wb *WinBucket) Unit() int { return wb.unit }

func (wb *WinBucket) Index(win int64) int {
	if win <= 0 {
		return 0
	}
	if win >= wb.lutMaxWin {
		if win >= wb.maxCheckWin {
			return wb.maxIdx
		}
		return wb.justOverIdx
	}
	return wb.winBucketLUT[win]
}
