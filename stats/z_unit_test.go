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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/stats"
)

// buildStatReport constructs a StatReport from a list of per-round deltas.
func buildStatReport(unit int, deltas []int64) *stats.StatReport {
	L := len(stats.Buckets.WinBucketStr())
	bucket := stats.Buckets.GetBucketByUnit(unit)
	collect := make([]int, L)

	var total int64
	var sq float64
	var maxD int64
	for _, d := range deltas {
		collect[bucket.Index(d)]++
		total += d
		sq += float64(d) * float64(d)
		maxD = max(maxD, d)
	}
	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:    "TestGame",
			Rounds:      len(deltas),
			TotalDelta:  total,
			DeltaSqSum:  sq,
			MaxDelta:    maxD,
			NoWinRounds: collect[0],
		},
		Symbols: []stats.SymbolReport{{ID: 1, Name: "a", Value: 10, Wins: len(deltas) - collect[0]}},
		Dist: &stats.DistReport{
			ScoreUnit: unit,
			Bucket:    stats.Buckets.WinBucketStr(),
			Collect:   collect,
		},
	}
	report.Done()
	return report
}

func TestStatReportCoreMetrics(t *testing.T) {
	rep := buildStatReport(10, []int64{0, 10, 20, 30})

	if got := rep.Mean(); math.Abs(got-15) > 1e-12 {
		t.Fatalf("mean got %.12f want 15", got)
	}
	// sample variance of {0,10,20,30} = 500/3
	wantStd := math.Sqrt(500.0 / 3.0)
	if got := rep.Std(); math.Abs(got-wantStd) > 1e-9 {
		t.Fatalf("std got %.12f want %.12f", got, wantStd)
	}
	if got := rep.Cv(); math.Abs(got-wantStd/15) > 1e-9 {
		t.Fatalf("cv got %.12f", got)
	}
	if rep.Summary.HitRate != 0.75 {
		t.Fatalf("hit rate got %.3f want 0.75", rep.Summary.HitRate)
	}
	if rep.Summary.HitCI.Lo > 0.75 || rep.Summary.HitCI.Hi < 0.75 {
		t.Fatalf("hit CI %+v does not cover estimate", rep.Summary.HitCI)
	}
	if rep.Symbols[0].WinRate != 0.75 {
		t.Fatalf("symbol win rate got %.3f", rep.Symbols[0].WinRate)
	}

	sum := 0.0
	for _, d := range rep.Dist.Dist {
		sum += d
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("distribution sums to %.6f", sum)
	}

	rep.Done() // idempotent
	if rep.Mean() != 15 {
		t.Fatalf("mean changed after second Done")
	}
}

func TestBucketIndex(t *testing.T) {
	b := stats.Buckets.GetBucketByUnit(10)
	cases := []struct {
		score int64
		want  int
	}{
		{0, 0}, {-5, 0}, {1, 1}, {9, 1}, {10, 2}, {19, 2}, {20, 3},
		{10 * 2000, 12}, {10*10000 - 1, 12}, {10 * 10000, 13}, {1 << 40, 13},
	}
	for _, c := range cases {
		if got := b.Index(c.score); got != c.want {
			t.Fatalf("Index(%d) got %d want %d", c.score, got, c.want)
		}
	}
	if b.Unit() != 10 {
		t.Fatalf("unit got %d", b.Unit())
	}
}

func TestEstimatorSessions(t *testing.T) {
	reports := make([]*stats.StatReport, 0, 100)
	for i := 0; i < 100; i++ {
		r := buildStatReport(10, []int64{int64(i)})
		r.Session = &stats.SessionReport{FinalTotal: int64(i), MaxTotal: int64(i)}
		if i < 20 {
			r.Session.Saturations = 1
		}
		reports = append(reports, r)
	}
	est := stats.EstimatorSessionExp(reports)
	if est.Sessions != 100 {
		t.Fatalf("sessions got %d", est.Sessions)
	}
	if math.Abs(est.TotalStat.Median.Hat-50) > 2 {
		t.Fatalf("median total expected ~50, got %.1f", est.TotalStat.Median.Hat)
	}
	if est.TotalStat.Median.CI.Lo > est.TotalStat.Median.Hat || est.TotalStat.Median.CI.Hi < est.TotalStat.Median.Hat {
		t.Fatalf("median CI %+v does not cover estimate", est.TotalStat.Median.CI)
	}
	if est.Saturation.Hat != 0.2 {
		t.Fatalf("saturation rate got %.2f want 0.20", est.Saturation.Hat)
	}
	// i == 0 is the only no-win session
	if est.EventStat.Hits.Zero.Hat != 0.01 || est.EventStat.Hits.One.Hat != 0.99 {
		t.Fatalf("hit events got %+v", est.EventStat.Hits)
	}

	var b strings.Builder
	est.Fprint(&b)
	if !strings.Contains(b.String(), "Saturated sessions") {
		t.Fatalf("missing saturation row:\n%s", b.String())
	}
}

func TestRenderers(t *testing.T) {
	rep := buildStatReport(10, []int64{0, 50, 500})

	var jb bytes.Buffer
	if err := rep.WriteWith(&jb, &stats.JsonStatReportRender{}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(jb.Bytes(), &back); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if _, ok := back["Summary"]; !ok {
		t.Fatalf("json missing Summary")
	}

	var yb bytes.Buffer
	if err := rep.WriteWith(&yb, &stats.YAMLStatReportRender{}); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(strings.ToLower(yb.String()), "collect: [") {
		t.Fatalf("yaml sequences should be flow style:\n%s", yb.String())
	}

	var tb strings.Builder
	rep.Fprint(&tb, 1500*time.Millisecond)
	if !strings.Contains(tb.String(), "TestGame") || !strings.Contains(tb.String(), "spins/sec") {
		t.Fatalf("table output:\n%s", tb.String())
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]stats.Format{"table": stats.FormatTable, "JSON": stats.FormatJSON, " yaml ": stats.FormatYAML} {
		got, err := stats.ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := stats.ParseFormat("xml"); !errs.IsKind(err, errs.Config) {
		t.Fatalf("xml should be config error, got %v", err)
	}
}

func TestSimReportWrite(t *testing.T) {
	st := buildStatReport(10, []int64{0, 50, 500})
	sessions := make([]*stats.StatReport, 0, 10)
	for i := 0; i < 10; i++ {
		r := buildStatReport(10, []int64{int64(i * 10)})
		r.Session = &stats.SessionReport{FinalTotal: int64(i * 10), MaxTotal: int64(i * 10)}
		sessions = append(sessions, r)
	}
	est := stats.EstimatorSessionExp(sessions)

	// 單局模擬不輸出 est
	var jb bytes.Buffer
	if err := stats.NewSimReport(7, st, nil, 1500*time.Millisecond).Write(&jb, stats.FormatJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(jb.Bytes(), &back); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if back["seed"] != float64(7) || back["used_ms"] != float64(1500) {
		t.Fatalf("seed/used_ms got %v / %v", back["seed"], back["used_ms"])
	}
	if _, ok := back["est"]; ok {
		t.Fatalf("est should be omitted without sessions")
	}

	rep := stats.NewSimReport(7, st, est, time.Second)
	jb.Reset()
	if err := rep.Write(&jb, stats.FormatJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(jb.String(), `"est"`) {
		t.Fatalf("json missing est:\n%s", jb.String())
	}

	var yb bytes.Buffer
	if err := rep.Write(&yb, stats.FormatYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(yb.String(), "est:") || !strings.Contains(yb.String(), "seed: 7") {
		t.Fatalf("yaml output:\n%s", yb.String())
	}

	var tb strings.Builder
	if err := rep.Write(&tb, stats.FormatTable); err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.Contains(tb.String(), "TestGame") || !strings.Contains(tb.String(), "Saturated sessions") {
		t.Fatalf("table output:\n%s", tb.String())
	}

	if err := (&stats.SimReport{}).Write(&tb, stats.FormatJSON); !errs.IsKind(err, errs.Invariant) {
		t.Fatalf("empty report should be invariant error, got %v", err)
	}
}
