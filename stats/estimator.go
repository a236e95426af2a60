// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// EstimatorSessions 多 session 體驗評估
type EstimatorSessions struct {
	Sessions   int
	TotalStat  TotalStat
	EventStat  EventStat
	Saturation PointStat // 至少一次超過上限歸零的 session 比例
}

// 累計分數敘事
type TotalStat struct {
	Median PointStat
	P10    PointStat
	P90    PointStat
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64
	CI  CI
}

// 事件敘事
type EventStat struct {
	Hits   EventCount
	Bucket BucketEvent
}

// 事件點估計
type EventCount struct {
	Zero PointStat
	One  PointStat
	Two  PointStat
	More PointStat
}

// 對應分桶的統計
type BucketEvent struct {
	BucketLabel []string     // 分桶標籤
	BucketCount []EventCount // 分桶事件點估計
}

// ============================================================
// ** 對外 : session 體驗評估 **
// ============================================================

// EstimatorSessionExp 以每個 session 的報表做體驗評估
//
// 1. Total 敘事 : 結束時累計分數的分位數（含 95% CI）
//
// 2. Event 敘事 : 每個 session 中獎 0/1/2/3+ 次的比例，以及各分桶
//
// 3. Saturation : 至少一次觸頂歸零的 session 比例
func EstimatorSessionExp(sts []*StatReport) *EstimatorSessions {
	n := len(sts)
	out := &EstimatorSessions{Sessions: n}
	if n == 0 {
		return out
	}

	// 1) Total 敘事
	totals := make([]float64, n)
	for i, s := range sts {
		if s.Session != nil {
			totals[i] = float64(s.Session.FinalTotal)
		}
	}
	out.TotalStat = TotalStat{
		Median: quantileStat(totals, 0.5),
		P10:    quantileStat(totals, 0.10),
		P90:    quantileStat(totals, 0.90),
	}

	// 2) Event 敘事
	hits := make([]int, n)
	for i, s := range sts {
		hits[i] = s.Summary.Rounds - s.Summary.NoWinRounds
	}
	out.EventStat.Hits = eventCount(hits)

	labels := Buckets.WinBucketStr()
	L := len(labels)
	out.EventStat.Bucket = BucketEvent{BucketLabel: labels, BucketCount: make([]EventCount, L)}
	cnt := make([]int, n)
	for bi := 0; bi < L; bi++ {
		for i, s := range sts {
			cnt[i] = 0
			if s.Dist != nil && bi < len(s.Dist.Collect) {
				cnt[i] = s.Dist.Collect[bi]
			}
		}
		out.EventStat.Bucket.BucketCount[bi] = eventCount(cnt)
	}

	// 3) Saturation
	satK := 0
	for _, s := range sts {
		if s.Session != nil && s.Session.Saturations > 0 {
			satK++
		}
	}
	hat, ci := proportionCICP(satK, n, 0.95)
	out.Saturation = PointStat{Hat: hat, CI: ci}
	return out
}

func quantileStat(data []float64, q float64) PointStat {
	lo, hi := quantileCI(data, q, 0.95)
	return PointStat{Hat: quantilePoint(data, q), CI: CI{Lo: lo, Hi: hi}}
}

// eventCount 統計 0/1/2/3+ 次的比例（CP 95% CI）
func eventCount(counts []int) EventCount {
	n := len(counts)
	var c0, c1, c2, c3p int
	for _, c := range counts {
		switch {
		case c == 0:
			c0++
		case c == 1:
			c1++
		case c == 2:
			c2++
		default:
			c3p++
		}
	}
	point := func(k int) PointStat {
		hat, ci := proportionCICP(k, n, 0.95)
		return PointStat{Hat: hat, CI: ci}
	}
	return EventCount{Zero: point(c0), One: point(c1), Two: point(c2), More: point(c3p)}
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// 問題：給定樣本 data 與門檻 x0，估計 p = P(X ≤ x0) 的點估計與 CI 區間
// 回傳 (pHat, CI)
func percentileCIForValue(data []float64, x0 float64, confidence float64) (pHat float64, ci CI) {
	n := len(data)
	if n == 0 {
		return 0, CI{Lo: 0, Hi: 0}
	}
	// k = 數到 <= x0 的個數
	k := 0
	for _, v := range data {
		if v <= x0 {
			k++
		}
	}
	return proportionCICP(k, n, confidence)
}

// 想估「第 q 分位」的上下界。做法：把 order statistic 的秩視為二項→Beta 反推 p 範圍，再把 p 轉回樣本索引。
// 回傳 (loValue, hiValue)
func quantileCI(data []float64, q, confidence float64) (float64, float64) {
	n := len(data)
	if n == 0 {
		return 0, 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)

	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	// 以 CP 思想反推 p 範圍
	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := int(pLo * float64(n))
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	if li < 0 {
		li = 0
	}
	if li > n-1 {
		li = n - 1
	}
	if ui < 0 {
		ui = 0
	}
	if ui > n-1 {
		ui = n - 1
	}
	return cp[li], cp[ui]
}

// quantilePoint returns the empirical quantile point estimate at q.
func quantilePoint(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)
	// 最近秩法
	idx := int(q * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return cp[idx]
}

// ============================================================
// ** 輸出函數 **
// ============================================================

func (est *EstimatorSessions) Fprint(w io.Writer) {
	fmt.Fprintf(w, "=== Sessions: %d ===\n", est.Sessions)
	totalKeys := []string{"Median total", "P10 total", "P90 total", "Saturated sessions"}
	totalMsg := map[string]string{
		"Median total":       fmtHatCI(est.TotalStat.Median),
		"P10 total":          fmtHatCI(est.TotalStat.P10),
		"P90 total":          fmtHatCI(est.TotalStat.P90),
		"Saturated sessions": fmtHatCIpct01(est.Saturation.Hat, est.Saturation.CI),
	}
	printTable(w, "Final Score", totalKeys, totalMsg)

	fmt.Fprintln(w, "\n=== Events: wins per session ===")
	hitKeys := []string{"0 times", "1 time", "2 times", "3+ times"}
	hitMsg := map[string]string{
		"0 times":  fmtHatCIpct01(est.EventStat.Hits.Zero.Hat, est.EventStat.Hits.Zero.CI),
		"1 time":   fmtHatCIpct01(est.EventStat.Hits.One.Hat, est.EventStat.Hits.One.CI),
		"2 times":  fmtHatCIpct01(est.EventStat.Hits.Two.Hat, est.EventStat.Hits.Two.CI),
		"3+ times": fmtHatCIpct01(est.EventStat.Hits.More.Hat, est.EventStat.Hits.More.CI),
	}
	printTable(w, "Events: wins per session", hitKeys, hitMsg)

	fmt.Fprintln(w, "\n=== Events: Buckets (per session hits in bucket) ===")
	for i, label := range est.EventStat.Bucket.BucketLabel {
		ec := est.EventStat.Bucket.BucketCount[i]
		fmt.Fprintf(w, "%-20s : %s\n", label, fmtEventCount(ec))
	}
}

func printTable(w io.Writer, title string, keys []string, msg map[string]string) {
	fmt.Fprintln(w, title)
	maxKeyLen := 0
	for _, k := range keys {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
	}
	for _, k := range keys {
		fmt.Fprintf(w, "  %-*s : %s\n", maxKeyLen, k, msg[k])
	}
}

func fmtHatCI(ps PointStat) string {
	return fmt.Sprintf("%.0f [%.0f, %.0f]", ps.Hat, ps.CI.Lo, ps.CI.Hi)
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtHatCIpct01(hat float64, ci CI) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(hat), fmtPct01(ci.Lo), fmtPct01(ci.Hi))
}

func fmtEventCount(ec EventCount) string {
	return fmt.Sprintf("0x: %s | 1x: %s | 2x: %s | 3+x: %s",
		fmtHatCIpct01(ec.Zero.Hat, ec.Zero.CI),
		fmtHatCIpct01(ec.One.Hat, ec.One.CI),
		fmtHatCIpct01(ec.Two.Hat, ec.Two.CI),
		fmtHatCIpct01(ec.More.Hat, ec.More.CI),
	)
}
